package presenter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/themis-iprm/themis/internal/application/dto"
	"github.com/themis-iprm/themis/internal/application/port/output"
)

// CLIWizardPresenter implements output.Presenter for human-readable terminal output
type CLIWizardPresenter struct {
	output io.Writer
}

// NewCLIWizardPresenter creates a new CLI wizard presenter
func NewCLIWizardPresenter(output io.Writer) output.Presenter {
	return &CLIWizardPresenter{output: output}
}

// PresentSuccess presents a successful result
func (p *CLIWizardPresenter) PresentSuccess(message string, data interface{}) error {
	if message != "" {
		fmt.Fprintf(p.output, "✓ %s\n", message)
	}

	switch v := data.(type) {
	case nil:
		return nil
	case dto.WizardView:
		return p.presentView(v)
	case *dto.WizardView:
		return p.presentView(*v)
	case dto.MoveResult:
		if v.Notice != "" {
			fmt.Fprintf(p.output, "· %s\n", v.Notice)
		}
		return p.presentView(v.View)
	case []dto.FlowDTO:
		return p.presentFlows(v)
	case []dto.StepDataDTO:
		return p.presentStepData(v)
	case dto.StepDataDTO:
		return p.presentStepData([]dto.StepDataDTO{v})
	default:
		fmt.Fprintf(p.output, "%+v\n", data)
	}
	return nil
}

// PresentError presents an error
func (p *CLIWizardPresenter) PresentError(err error) error {
	fmt.Fprintf(p.output, "✗ Error: %v\n", err)
	return err
}

// PresentProgress renders a progress bar for step progress of total
func (p *CLIWizardPresenter) PresentProgress(message string, progress int, total int) error {
	if total <= 0 {
		fmt.Fprintf(p.output, "%s\n", message)
		return nil
	}
	if progress > total {
		progress = total
	}
	if progress < 0 {
		progress = 0
	}
	percentage := float64(progress) / float64(total) * 100
	bar := strings.Repeat("█", progress) + strings.Repeat("░", total-progress)
	fmt.Fprintf(p.output, "%s [%s] %.1f%%\n", message, bar, percentage)
	return nil
}

func (p *CLIWizardPresenter) presentView(v dto.WizardView) error {
	fmt.Fprintf(p.output, "\nUser: %s\n", v.DisplayName)
	fmt.Fprintf(p.output, "Session: %s\n", sessionLine(v.Session))

	switch v.Route {
	case "auth":
		fmt.Fprintf(p.output, "\nSign in with `themis auth login` to continue.\n")
		return nil
	case "select-role":
		fmt.Fprintf(p.output, "\nChoose a role with `themis role select <author|implementer|qa> [--profile developer|tester|support]`.\n")
		return nil
	}

	if !v.IsValidConfig {
		fmt.Fprintf(p.output, "\nNo flow is configured for %s. Choose another role with `themis role select`.\n", v.DisplayName)
		return nil
	}

	fmt.Fprintln(p.output)
	current := v.CurrentIndex + 1
	if current > v.TotalSteps {
		current = v.TotalSteps
	}
	_ = p.PresentProgress(fmt.Sprintf("Step %d of %d", v.CurrentIndex+1, v.TotalSteps), current, v.TotalSteps)

	fmt.Fprintln(p.output)
	for _, s := range v.Steps {
		fmt.Fprintf(p.output, "  %s %d. %s\n", stateMarker(s.State), s.Number, s.Title)
	}

	if v.Current != nil {
		fmt.Fprintf(p.output, "\nCurrent: %s (%s, ui %s", v.Current.Title, v.Current.Key, v.Current.UI)
		if v.Current.Schema != "" {
			fmt.Fprintf(p.output, ", schema %s", v.Current.Schema)
		}
		fmt.Fprintln(p.output, ")")
	}
	return nil
}

func (p *CLIWizardPresenter) presentFlows(flows []dto.FlowDTO) error {
	for i, f := range flows {
		if i > 0 {
			fmt.Fprintln(p.output)
		}
		name := f.Role
		if f.Profile != "" {
			name += "/" + f.Profile
		}
		if len(f.Steps) == 0 {
			fmt.Fprintf(p.output, "%s: (no steps)\n", name)
			continue
		}
		fmt.Fprintf(p.output, "%s:\n", name)
		for _, s := range f.Steps {
			fmt.Fprintf(p.output, "  %d. %-36s %-14s %s\n", s.Number, s.Title, s.Key, s.UI)
		}
	}
	return nil
}

func (p *CLIWizardPresenter) presentStepData(items []dto.StepDataDTO) error {
	if len(items) == 0 {
		fmt.Fprintln(p.output, "No step data captured yet.")
		return nil
	}
	for _, it := range items {
		b, err := json.MarshalIndent(it.Data, "  ", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(p.output, "%s (%s):\n  %s\n", it.Key, it.Kind, b)
	}
	return nil
}

func sessionLine(s dto.SessionDTO) string {
	switch {
	case !s.Authenticated:
		return "signed out"
	case !s.Valid:
		return "expired"
	case s.ExpiresAt != nil:
		return fmt.Sprintf("valid until %s (%s left)", s.ExpiresAt.UTC().Format(time.RFC3339), s.Remaining)
	default:
		return "valid"
	}
}

func stateMarker(state string) string {
	switch state {
	case "completed":
		return "✓"
	case "current":
		return "▶"
	case "accessible":
		return "○"
	default:
		return "·"
	}
}
