package cli

import (
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/app/config"
	infraConfig "github.com/themis-iprm/themis/internal/infra/config"
)

var (
	// globalConfig holds the loaded configuration for all commands
	globalConfig config.Config
	// globalFs is the filesystem every command works on
	globalFs afero.Fs = afero.NewOsFs()
	// nowFunc is the clock used for session expiry
	nowFunc = time.Now
)

// resolveHome picks the home directory: flag, then THEMIS_HOME, then .themis
func resolveHome(flag string) string {
	if flag != "" {
		return flag
	}
	if home := os.Getenv(infraConfig.EnvVar(infraConfig.KeyHome)); home != "" {
		return home
	}
	return app.DefaultHome
}

func NewRoot() *cobra.Command {
	var home string

	cmd := &cobra.Command{
		Use:           "themis",
		Short:         "Themis IPRM wizard CLI",
		Long:          "Drive the role-based IPRM wizard: sign in, choose a role, walk the steps and capture their data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Priority: THEMIS_* env > setting.json > defaults
			cfg, err := infraConfig.LoadSettings(globalFs, resolveHome(home))
			if err != nil {
				return err
			}
			globalConfig = cfg

			logger := InitGlobalLogger(cfg.StderrLevel())
			InitializeLoggers(logger)
			logger.Debug("config loaded from %s (home=%s storage=%s)", cfg.ConfigSource(), cfg.Home(), cfg.Storage())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			GetLogger().Sync()
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.PersistentFlags().StringVar(&home, "home", "", "themis home directory (default $THEMIS_HOME or .themis)")
	cmd.PersistentFlags().String("format", "", "Output format (json for scripting)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newSignOutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newRoleCmd())
	cmd.AddCommand(newWizardCmd())
	cmd.AddCommand(newDataCmd())
	cmd.AddCommand(newFlowsCmd())
	cmd.AddCommand(newStateCmd())
	cmd.AddCommand(newJournalCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
