package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/app/config"
	"github.com/themis-iprm/themis/internal/application/port/output"
	"github.com/themis-iprm/themis/internal/validator/common"
	"github.com/themis-iprm/themis/internal/validator/state"
)

// errVerifyFailed is returned when a check finds errors
var errVerifyFailed = errors.New("verification failed")

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Wizard record commands",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newStateVerifyCmd())
	return cmd
}

func newStateVerifyCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the persisted wizard record",
		Long: `Verify the persisted wizard record.

A record that fails verification is ignored when the wizard starts and
replaced by defaults on the next change. With --path the given file is
checked instead of the configured storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd, func(ctx context.Context, repo output.StateRepository, paths app.Paths) error {
				var result *common.ValidationResult
				var err error
				if filePath != "" {
					result, err = state.ValidateStateFile(globalFs, filePath)
				} else {
					result, err = verifyState(ctx, repo, paths)
				}
				if err != nil {
					return fmt.Errorf("validation error: %w", err)
				}
				return reportValidation(cmd, result)
			})
		},
	}
	cmd.Flags().StringVar(&filePath, "path", "", "Record file to verify (default: configured storage)")
	return cmd
}

// verifyState checks the configured record in whichever backend holds it
func verifyState(ctx context.Context, repo output.StateRepository, paths app.Paths) (*common.ValidationResult, error) {
	name := globalConfig.StateName()
	if globalConfig.Storage() == config.StorageFile {
		return state.ValidateStateFile(globalFs, paths.StateFile(name))
	}

	label := fmt.Sprintf("%s#%s", paths.DB, name)
	result := common.NewValidationResult()
	data, err := repo.Load(ctx, name)
	switch {
	case errors.Is(err, output.ErrStateNotFound):
		result.AddFileResult(common.FileResult{
			File:   label,
			Issues: []common.ValidationIssue{{Type: "warn", Message: "record not found"}},
		})
		return result, nil
	case err != nil:
		return nil, err
	}
	result.AddFileResult(common.FileResult{File: label, Issues: state.ValidateRecord(data)})
	return result, nil
}

// reportValidation prints result as text or JSON and fails on errors
func reportValidation(cmd *cobra.Command, result *common.ValidationResult) error {
	if formatOf(cmd) == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printValidationText(cmd.OutOrStdout(), cmd.ErrOrStderr(), result)
		fmt.Fprintf(cmd.OutOrStdout(), "SUMMARY: files=%d ok=%d warn=%d error=%d\n",
			result.Summary.Files, result.Summary.OK, result.Summary.Warn, result.Summary.Error)
	}
	if result.Summary.Error > 0 {
		return errVerifyFailed
	}
	return nil
}

func printValidationText(out, errOut io.Writer, result *common.ValidationResult) {
	for _, fileResult := range result.Files {
		name := filepath.Base(fileResult.File)
		if len(fileResult.Issues) == 0 {
			fmt.Fprintf(out, "OK: %s valid\n", name)
			continue
		}
		for _, issue := range fileResult.Issues {
			msg := issue.Message
			if issue.Field != "" {
				msg = issue.Field + ": " + msg
			}
			switch issue.Type {
			case "error":
				fmt.Fprintf(errOut, "ERROR: %s %s\n", name, msg)
			case "warn":
				fmt.Fprintf(out, "WARN: %s %s\n", name, msg)
			case "ok":
				fmt.Fprintf(out, "OK: %s %s\n", name, msg)
			}
		}
	}
}
