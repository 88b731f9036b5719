package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/validator/integrated"
)

func newJournalCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent wizard changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := app.ResolvePaths(globalConfig.Home())
			entries, err := app.ReadJournal(globalFs, paths.Journal, limit)
			if err != nil {
				return presenterFor(cmd).PresentError(err)
			}
			if formatOf(cmd) == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if entries == nil {
					entries = []app.JournalEntry{}
				}
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No journal entries.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tOP\tROLE\tPROFILE\tSTEP\tKEY\tSESSION")
			for _, e := range entries {
				session := "valid"
				if !e.SessionValid {
					session = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n", e.Ts, e.Op, dash(e.Role), dash(e.Profile), e.Step+1, dash(e.StepKey), session)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of most recent entries to show (0 for all)")
	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Verify every journal line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := app.ResolvePaths(globalConfig.Home())
			return reportValidation(cmd, integrated.ValidateJournalFile(globalFs, paths.Journal))
		},
	})
	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
