package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Step data commands",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newDataSetCmd())
	cmd.AddCommand(newDataShowCmd())
	return cmd
}

func newDataSetCmd() *cobra.Command {
	var (
		inline string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "set <step-key>",
		Short: "Capture the data of a step in the active flow",
		Long: `Capture the data of a step in the active flow.

The payload is a JSON object given inline with --json or read from --file
("-" reads stdin). It must match the schema of the step.`,
		Example: `  themis data set selectApp --json '{"applicationId":"app-1","applicationName":"Billing"}'
  themis data set iprmProfile --file profile.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, inline, file)
			if err != nil {
				return presenterFor(cmd).PresentError(err)
			}
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				item, err := ws.useCase.SetStepData(ctx, args[0], raw)
				return present(cmd, "Step data saved", item, err)
			})
		},
	}
	cmd.Flags().StringVar(&inline, "json", "", "Payload as a JSON object")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the payload from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("json", "file")
	return cmd
}

// readPayload decodes the --json or --file payload into a generic JSON value
func readPayload(cmd *cobra.Command, inline, file string) (any, error) {
	var data []byte
	switch {
	case inline != "":
		data = []byte(inline)
	case file == "-":
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(cmd.InOrStdin()); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		data = buf.Bytes()
	case file != "":
		b, err := afero.ReadFile(globalFs, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		data = b
	default:
		return nil, errors.New("a payload is required: use --json or --file")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return raw, nil
}

func newDataShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [step-key]",
		Short: "Show captured step data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return withWorkspace(cmd, func(ctx context.Context, ws *workspace) error {
				items, err := ws.useCase.StepData(ctx, key)
				return present(cmd, "", items, err)
			})
		},
	}
}
