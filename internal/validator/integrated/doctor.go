package integrated

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/themis-iprm/themis/internal/application/flow"
	"github.com/themis-iprm/themis/internal/validator/common"
	journalValidator "github.com/themis-iprm/themis/internal/validator/journal"
	stateValidator "github.com/themis-iprm/themis/internal/validator/state"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
	workflowValidator "github.com/themis-iprm/themis/internal/validator/workflow"
	"github.com/themis-iprm/themis/internal/workflow"
)

// IntegratedReport represents the complete validation report from all components
type IntegratedReport struct {
	Version     int                                 `json:"version"`
	GeneratedAt string                              `json:"generated_at"`
	Components  map[string]*common.ValidationResult `json:"components"`
	Summary     IntegratedSummary                   `json:"summary"`
}

// IntegratedSummary contains aggregated validation statistics
type IntegratedSummary struct {
	Components int `json:"components"`
	OK         int `json:"ok"`
	Warn       int `json:"warn"`
	Error      int `json:"error"`
}

// ComponentStatus represents the status of each component for text output
type ComponentStatus struct {
	State   string
	Journal string
	Flows   string
}

// DoctorConfig contains configuration for doctor validation
type DoctorConfig struct {
	Fs afero.Fs

	// StatePath is verified unless State already holds a result,
	// as it does for records kept outside the filesystem
	StatePath string
	State     *common.ValidationResult

	JournalPath string

	// FlowsPath empty means the built-in flows are in use
	FlowsPath string
	Schemas   *stepdata.Registry
	UIs       flow.UIRegistry
}

// NewIntegratedReport creates a new integrated report
func NewIntegratedReport() *IntegratedReport {
	return &IntegratedReport{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Components:  make(map[string]*common.ValidationResult),
		Summary:     IntegratedSummary{},
	}
}

// RunIntegratedValidation performs all validations and returns an integrated report
func RunIntegratedValidation(config *DoctorConfig) (*IntegratedReport, error) {
	if config.Fs == nil {
		return nil, fmt.Errorf("doctor: no filesystem configured")
	}
	report := NewIntegratedReport()

	stateResult := config.State
	if stateResult == nil {
		var err error
		stateResult, err = stateValidator.ValidateStateFile(config.Fs, config.StatePath)
		if err != nil {
			stateResult = errorResult(config.StatePath, err)
		}
	}
	report.Components["state"] = stateResult

	report.Components["journal"] = ValidateJournalFile(config.Fs, config.JournalPath)

	report.Components["flows"] = validateFlows(config)

	report.Summary = calculateIntegratedSummary(report.Components)
	return report, nil
}

func errorResult(path string, err error) *common.ValidationResult {
	result := common.NewValidationResult()
	result.AddFileResult(common.FileResult{
		File: filepath.Base(path),
		Issues: []common.ValidationIssue{{
			Type:    "error",
			Message: fmt.Sprintf("validation error: %v", err),
		}},
	})
	return result
}

func validateFlows(config *DoctorConfig) *common.ValidationResult {
	if config.FlowsPath != "" {
		result, err := workflowValidator.ValidateFlowsFile(config.Fs, config.FlowsPath, config.Schemas, config.UIs)
		if err != nil {
			return errorResult(config.FlowsPath, err)
		}
		return result
	}

	result := common.NewValidationResult()
	issues := workflowValidator.ValidateCatalog(workflow.DefaultCatalog(), config.UIs)
	if len(issues) == 0 {
		issues = []common.ValidationIssue{{Type: "ok", Message: "built-in flows"}}
	}
	result.AddFileResult(common.FileResult{File: "built-in", Issues: issues})
	return result
}

// ValidateJournalFile converts journal validation to the common format
func ValidateJournalFile(fs afero.Fs, journalPath string) *common.ValidationResult {
	result := common.NewValidationResult()
	name := filepath.Base(journalPath)

	file, err := fs.Open(journalPath)
	if err != nil {
		issue := common.ValidationIssue{Type: "error", Message: fmt.Sprintf("cannot read file: %v", err)}
		if os.IsNotExist(err) {
			issue = common.ValidationIssue{Type: "warn", Message: "file not found"}
		}
		result.AddFileResult(common.FileResult{File: name, Issues: []common.ValidationIssue{issue}})
		return result
	}
	defer file.Close()

	journalResult, err := journalValidator.NewValidator(journalPath).ValidateFile(file)
	if err != nil {
		return errorResult(journalPath, err)
	}

	fileResult := common.FileResult{
		File:   name,
		Issues: []common.ValidationIssue{},
	}
	for _, line := range journalResult.Lines {
		for _, issue := range line.Issues {
			fileResult.Issues = append(fileResult.Issues, common.ValidationIssue{
				Type:    issue.Type,
				Field:   fmt.Sprintf("/line/%d/%s", line.Line, issue.Field),
				Message: issue.Message,
			})
		}
	}

	if len(fileResult.Issues) == 0 {
		fileResult.Issues = append(fileResult.Issues, common.ValidationIssue{
			Type:    "ok",
			Message: fmt.Sprintf("all %d journal entries valid", journalResult.Summary.Lines),
		})
	}
	result.AddFileResult(fileResult)
	return result
}

// calculateIntegratedSummary aggregates summaries from all components
func calculateIntegratedSummary(components map[string]*common.ValidationResult) IntegratedSummary {
	summary := IntegratedSummary{
		Components: len(components),
	}

	for _, component := range components {
		if component != nil {
			summary.OK += component.Summary.OK
			summary.Warn += component.Summary.Warn
			summary.Error += component.Summary.Error
		}
	}

	return summary
}

// GetComponentStatus determines the status string for each component
func GetComponentStatus(report *IntegratedReport) ComponentStatus {
	status := ComponentStatus{}

	if state := report.Components["state"]; state != nil {
		status.State = getStatusString(state.Summary)
	}
	if journal := report.Components["journal"]; journal != nil {
		status.Journal = getStatusString(journal.Summary)
	}
	if flows := report.Components["flows"]; flows != nil {
		status.Flows = getStatusString(flows.Summary)
	}

	return status
}

func getStatusString(summary common.Summary) string {
	if summary.Error > 0 {
		return "error"
	} else if summary.Warn > 0 {
		return "warn"
	}
	return "ok"
}
