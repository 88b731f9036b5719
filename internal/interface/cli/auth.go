package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Session commands",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "login",
		Short: "Start a 24 hour session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				return present(cmd, "Signed in", ws.useCase.Login(ctx), nil)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "End the session and clear all wizard progress",
		Args:  cobra.NoArgs,
		RunE:  runSignOut,
	})
	return cmd
}

func newSignOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the session and clear all wizard progress",
		Args:  cobra.NoArgs,
		RunE:  runSignOut,
	}
}

func runSignOut(cmd *cobra.Command, _ []string) error {
	return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
		return present(cmd, "Signed out", ws.useCase.SignOut(ctx), nil)
	})
}
