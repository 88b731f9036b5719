package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/themis-iprm/themis/internal/app/config"
)

// EnvPrefix is prepended (with "_") to every setting key to form its environment variable
const EnvPrefix = "themis"

// Setting keys
const (
	KeyHome        = "home"
	KeyStorage     = "storage"
	KeyStateName   = "state_name"
	KeyFlowsPath   = "flows_path"
	KeyJournal     = "journal"
	KeyStderrLevel = "stderr_level"
)

var allKeys = []string{KeyHome, KeyStorage, KeyStateName, KeyFlowsPath, KeyJournal, KeyStderrLevel}

// RawSettings is the structure of setting.json
type RawSettings struct {
	Home        *string `json:"home"`
	Storage     *string `json:"storage"`
	StateName   *string `json:"state_name"`
	FlowsPath   *string `json:"flows_path"`
	Journal     *bool   `json:"journal"`
	StderrLevel *string `json:"stderr_level"`
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// LoadSettings loads configuration for the home directory baseDir.
// Priority: THEMIS_* environment > <baseDir>/setting.json > defaults
func LoadSettings(fs afero.Fs, baseDir string) (*config.AppConfig, error) {
	v := viper.New()
	v.SetFs(fs)
	applyDefaults(v, baseDir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	configSource := "default"
	settingPath := ""

	jsonPath := filepath.Join(baseDir, "setting.json")
	if ok, _ := afero.Exists(fs, jsonPath); ok {
		v.SetConfigFile(jsonPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		configSource = "json"
		settingPath = jsonPath
	}

	if envOverrides() {
		configSource = "env"
	}

	cfg := config.NewAppConfig(
		v.GetString(KeyHome),
		strings.ToLower(strings.TrimSpace(v.GetString(KeyStorage))),
		v.GetString(KeyStateName),
		v.GetString(KeyFlowsPath),
		v.GetBool(KeyJournal),
		strings.ToLower(strings.TrimSpace(v.GetString(KeyStderrLevel))),
		configSource,
		settingPath,
	)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(v *viper.Viper, baseDir string) {
	v.SetDefault(KeyHome, baseDir)
	v.SetDefault(KeyStorage, config.StorageFile)
	v.SetDefault(KeyStateName, "themis-wizard-state")
	v.SetDefault(KeyFlowsPath, "")
	v.SetDefault(KeyJournal, true)
	v.SetDefault(KeyStderrLevel, "warn")
}

func envOverrides() bool {
	for _, k := range allKeys {
		if _, ok := os.LookupEnv(EnvVar(k)); ok {
			return true
		}
	}
	return false
}

// EnvVar returns the environment variable that overrides key
func EnvVar(key string) string {
	return strings.ToUpper(EnvPrefix + "_" + key)
}

func validate(cfg *config.AppConfig) error {
	switch cfg.Storage() {
	case config.StorageFile, config.StorageSQLite:
	default:
		return fmt.Errorf("invalid %s %q: must be %q or %q", KeyStorage, cfg.Storage(), config.StorageFile, config.StorageSQLite)
	}
	if !validLevels[cfg.StderrLevel()] {
		return fmt.Errorf("invalid %s %q: must be one of debug, info, warn, error", KeyStderrLevel, cfg.StderrLevel())
	}
	name := cfg.StateName()
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid %s %q", KeyStateName, name)
	}
	return nil
}

// CreateDefaultSettings returns the content of a setting.json holding every default
func CreateDefaultSettings(home string) []byte {
	if home == "" {
		home = ".themis"
	}
	storage := config.StorageFile
	stateName := "themis-wizard-state"
	flows := ""
	journal := true
	level := "warn"

	data, _ := json.MarshalIndent(&RawSettings{
		Home:        &home,
		Storage:     &storage,
		StateName:   &stateName,
		FlowsPath:   &flows,
		Journal:     &journal,
		StderrLevel: &level,
	}, "", "  ")
	return data
}
