package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/app/config"
	"github.com/themis-iprm/themis/internal/buildinfo"
)

// EffectiveConfig represents the final applied configuration for serialization
type EffectiveConfig struct {
	Meta    EffectiveConfigMeta    `json:"meta" yaml:"meta"`
	Storage EffectiveConfigStorage `json:"storage" yaml:"storage"`
	Flows   EffectiveConfigFlows   `json:"flows" yaml:"flows"`
	Journal EffectiveConfigJournal `json:"journal" yaml:"journal"`
	Logging EffectiveConfigLogging `json:"logging" yaml:"logging"`
}

// EffectiveConfigMeta contains metadata about the configuration
type EffectiveConfigMeta struct {
	Source         string   `json:"source" yaml:"source"`
	SettingPath    string   `json:"setting_path" yaml:"setting_path"`
	SourcePriority []string `json:"source_priority" yaml:"source_priority"`
	Version        string   `json:"version" yaml:"version"`
	TsUTC          string   `json:"ts_utc" yaml:"ts_utc"`
}

// EffectiveConfigStorage describes where the wizard record is kept
type EffectiveConfigStorage struct {
	Home      string `json:"home" yaml:"home"`
	Backend   string `json:"backend" yaml:"backend"`
	StateName string `json:"state_name" yaml:"state_name"`
	Location  string `json:"location" yaml:"location"`
}

// EffectiveConfigFlows describes where the flow catalog comes from
type EffectiveConfigFlows struct {
	Path    string `json:"path" yaml:"path"`
	BuiltIn bool   `json:"built_in" yaml:"built_in"`
}

// EffectiveConfigJournal represents journal configuration
type EffectiveConfigJournal struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// EffectiveConfigLogging represents logging configuration
type EffectiveConfigLogging struct {
	StderrLevel string `json:"stderr_level" yaml:"stderr_level"`
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (yaml, or json with --format json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			effective := buildEffectiveConfig(globalConfig, nowFunc())

			var out []byte
			var err error
			switch format := formatOf(cmd); format {
			case "", "yaml":
				out, err = yaml.Marshal(effective)
			case "json":
				out, err = json.MarshalIndent(effective, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return cmd
}

// buildEffectiveConfig resolves cfg into the paths and sources actually used
func buildEffectiveConfig(cfg config.Config, now time.Time) *EffectiveConfig {
	paths := app.ResolvePaths(cfg.Home())

	meta := EffectiveConfigMeta{
		Source:         cfg.ConfigSource(),
		SourcePriority: []string{"env", "json", "defaults"},
		Version:        buildinfo.GetVersion(),
		TsUTC:          now.UTC().Format(time.RFC3339Nano),
	}
	if cfg.SettingPath() != "" {
		meta.SettingPath, _ = filepath.Abs(cfg.SettingPath())
	}

	location := paths.StateFile(cfg.StateName())
	if cfg.Storage() == config.StorageSQLite {
		location = paths.DB
	}

	flows := EffectiveConfigFlows{Path: catalogPath(cfg, paths)}
	flows.BuiltIn = flows.Path == ""

	return &EffectiveConfig{
		Meta: meta,
		Storage: EffectiveConfigStorage{
			Home:      paths.Home,
			Backend:   cfg.Storage(),
			StateName: cfg.StateName(),
			Location:  location,
		},
		Flows:   flows,
		Journal: EffectiveConfigJournal{Enabled: cfg.Journal(), Path: paths.Journal},
		Logging: EffectiveConfigLogging{StderrLevel: cfg.StderrLevel()},
	}
}
