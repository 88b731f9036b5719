package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/app/config"
	"github.com/themis-iprm/themis/internal/application/flow"
	"github.com/themis-iprm/themis/internal/application/port/output"
	"github.com/themis-iprm/themis/internal/validator/integrated"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the wizard record, journal and flow catalog",
		Long:  "Performs every check of the themis home and reports one line per finding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd, func(ctx context.Context, repo output.StateRepository, paths app.Paths) error {
				doctorCfg := &integrated.DoctorConfig{
					Fs:          globalFs,
					StatePath:   paths.StateFile(globalConfig.StateName()),
					JournalPath: paths.Journal,
					FlowsPath:   catalogPath(globalConfig, paths),
					Schemas:     stepdata.Default(),
					UIs:         flow.DefaultUIs(),
				}
				if globalConfig.Storage() != config.StorageFile {
					st, err := verifyState(ctx, repo, paths)
					if err != nil {
						return fmt.Errorf("validation error: %w", err)
					}
					doctorCfg.State = st
				}

				report, err := integrated.RunIntegratedValidation(doctorCfg)
				if err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}

				if formatOf(cmd) == "json" {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					if err := enc.Encode(report); err != nil {
						return fmt.Errorf("failed to encode JSON: %w", err)
					}
				} else {
					outputTextReport(cmd, report)
				}

				if report.Summary.Error > 0 {
					return errVerifyFailed
				}
				return nil
			})
		},
	}
}

func outputTextReport(cmd *cobra.Command, report *integrated.IntegratedReport) {
	out := cmd.OutOrStdout()

	names := make([]string, 0, len(report.Components))
	for name := range report.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		component := report.Components[name]
		if component == nil {
			continue
		}
		fmt.Fprintf(out, "\n=== %s ===\n", name)
		printValidationText(out, cmd.ErrOrStderr(), component)
	}

	status := integrated.GetComponentStatus(report)
	fmt.Fprintf(out, "\nSUMMARY: components=%d ok=%d warn=%d error=%d (state=%s journal=%s flows=%s)\n",
		report.Summary.Components, report.Summary.OK, report.Summary.Warn, report.Summary.Error,
		status.State, status.Journal, status.Flows)
}
