package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Role selection commands",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newRoleSelectCmd())
	return cmd
}

func newRoleSelectCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "select <author|implementer|qa>",
		Short: "Choose the role (and implementer profile) the wizard runs for",
		Long: `Choose the role the wizard runs for.

The implementer role needs --profile (developer, tester or support); the
other roles take none. Selecting a role starts its flow from the first step.`,
		Example: `  themis role select author
  themis role select implementer --profile tester`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				view, err := ws.useCase.SelectRole(ctx, args[0], profile)
				return present(cmd, "Role selected", view, err)
			})
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Implementer profile (developer|tester|support)")
	return cmd
}
