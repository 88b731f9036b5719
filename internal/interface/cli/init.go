package cli

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/app"
	infraConfig "github.com/themis-iprm/themis/internal/infra/config"
	"github.com/themis-iprm/themis/internal/infra/persistence/file"
	"github.com/themis-iprm/themis/internal/workflow"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the themis home with default settings and flows",
		Long: `Create the themis home directory.

setting.json holds every default setting and etc/flows.yaml holds the
built-in flow catalog, ready to be edited. Existing files are kept unless
--force is given. The wizard record and journal are created on first use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := app.ResolvePaths(globalConfig.Home())
			out := cmd.OutOrStdout()

			for _, d := range []string{paths.Etc, paths.Var} {
				if err := globalFs.MkdirAll(d, 0o755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", d, err)
				}
			}

			if err := writeInitFile(out, paths.Setting, infraConfig.CreateDefaultSettings(paths.Home), force); err != nil {
				return err
			}

			flows, err := workflow.MarshalCatalog(workflow.DefaultCatalog())
			if err != nil {
				return fmt.Errorf("failed to render flows: %w", err)
			}
			if err := writeInitFile(out, paths.Flows, flows, force); err != nil {
				return err
			}

			fmt.Fprintf(out, "Initialized themis home in %s\n", paths.Home)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return cmd
}

func writeInitFile(out io.Writer, path string, data []byte, force bool) error {
	exists, _ := afero.Exists(globalFs, path)
	if exists && !force {
		fmt.Fprintf(out, "SKIP: %s (exists; use --force to overwrite)\n", path)
		return nil
	}
	if err := file.WriteFileAtomic(globalFs, path, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if exists {
		fmt.Fprintf(out, "WROTE (force): %s\n", path)
	} else {
		fmt.Fprintf(out, "WROTE: %s\n", path)
	}
	return nil
}
