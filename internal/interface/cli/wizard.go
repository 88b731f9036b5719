package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/application/dto"
)

func newWizardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wizard",
		Aliases: []string{"w"},
		Short:   "Move through the steps of the active flow",
		RunE:    func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the steps of the active flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				return present(cmd, "", ws.useCase.Status(ctx), nil)
			})
		},
	})
	cmd.AddCommand(newMoveCmd("next", "Advance to the next step", func(ctx context.Context, ws *workspace, _ []string) (dto.MoveResult, error) {
		return ws.useCase.Next(ctx)
	}))
	cmd.AddCommand(newMoveCmd("prev", "Go back one step", func(ctx context.Context, ws *workspace, _ []string) (dto.MoveResult, error) {
		return ws.useCase.Previous(ctx)
	}))

	gotoCmd := newMoveCmd("goto <step>", "Jump to a completed step or the one after the current step", func(ctx context.Context, ws *workspace, args []string) (dto.MoveResult, error) {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return dto.MoveResult{}, fmt.Errorf("step must be a number, got %q", args[0])
		}
		return ws.useCase.JumpTo(ctx, n)
	})
	gotoCmd.Args = cobra.ExactArgs(1)
	cmd.AddCommand(gotoCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Go back to the first step and discard captured step data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				view, err := ws.useCase.Reset(ctx)
				return present(cmd, "Wizard reset", view, err)
			})
		},
	})
	return cmd
}

func newMoveCmd(use, short string, move func(ctx context.Context, ws *workspace, args []string) (dto.MoveResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				res, err := move(ctx, ws, args)
				return present(cmd, "", res, err)
			})
		},
	}
}
