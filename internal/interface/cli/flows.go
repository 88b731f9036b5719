package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/application/flow"
	"github.com/themis-iprm/themis/internal/validator/common"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
	workflowValidator "github.com/themis-iprm/themis/internal/validator/workflow"
	"github.com/themis-iprm/themis/internal/workflow"
)

func newFlowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flows",
		Short: "Flow catalog commands",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newFlowsListCmd())
	cmd.AddCommand(newFlowsVerifyCmd())
	return cmd
}

func newFlowsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Verify the flow catalog in use",
		Long: `Verify the flow catalog in use: flows_path, else etc/flows.yaml, else the
built-in flows. Flows without steps are reported as warnings since the
wizard shows them as not ready.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := app.ResolvePaths(globalConfig.Home())
			path := catalogPath(globalConfig, paths)
			if path == "" {
				result := common.NewValidationResult()
				result.AddFileResult(common.FileResult{
					File:   "built-in",
					Issues: workflowValidator.ValidateCatalog(workflow.DefaultCatalog(), flow.DefaultUIs()),
				})
				return reportValidation(cmd, result)
			}
			result, err := workflowValidator.ValidateFlowsFile(globalFs, path, stepdata.Default(), flow.DefaultUIs())
			if err != nil {
				return fmt.Errorf("validation error: %w", err)
			}
			return reportValidation(cmd, result)
		},
	}
}

func newFlowsListCmd() *cobra.Command {
	var role, profile string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the steps of every role and profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, func(_ context.Context, ws *workspace) error {
				flows, err := ws.useCase.ListFlows(role, profile)
				return present(cmd, "", flows, err)
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "Only list this role")
	cmd.Flags().StringVar(&profile, "profile", "", "Only list this implementer profile")
	return cmd
}
