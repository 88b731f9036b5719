package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session, role and wizard position",
		Long: `Show where the wizard currently stands.

An authenticated but expired session resets the wizard back to its first
step before anything is shown; the role is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				return present(cmd, "", ws.useCase.Status(ctx), nil)
			})
		},
	}
}
