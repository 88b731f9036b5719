package journal

import (
	"github.com/oklog/ulid/v2"

	"github.com/themis-iprm/themis/internal/application/wizardstore"
)

// ValidationIssue represents a single validation issue
type ValidationIssue struct {
	Type    string `json:"type"` // "ok", "warn", "error"
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// LineResult represents validation result for a single line
type LineResult struct {
	Line   int               `json:"line"`
	Issues []ValidationIssue `json:"issues"`
}

// ValidationResult represents the complete validation result
type ValidationResult struct {
	Version     int          `json:"version"`
	GeneratedAt string       `json:"generated_at"`
	File        string       `json:"file"`
	Lines       []LineResult `json:"lines"`
	Summary     Summary      `json:"summary"`
}

// Summary contains validation statistics
type Summary struct {
	Lines int `json:"lines"`
	OK    int `json:"ok"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
}

// Validator checks journal lines in order; ids must keep increasing
type Validator struct {
	filePath   string
	previousID ulid.ULID
	previousTs string
}

// RequiredKeys are present on every journal line; step_key is optional
var RequiredKeys = []string{"id", "ts", "op", "role", "profile", "step", "session_valid"}

// ValidOps defines the recorded wizard operations
var ValidOps = map[string]bool{
	wizardstore.OpSetAuthenticated: true,
	wizardstore.OpSetRole:          true,
	wizardstore.OpSetProfile:       true,
	wizardstore.OpSelectRole:       true,
	wizardstore.OpSetCurrentStep:   true,
	wizardstore.OpUpdateStepData:   true,
	wizardstore.OpResetWizard:      true,
	wizardstore.OpSignOut:          true,
}

// NewValidator creates a new journal validator
func NewValidator(filePath string) *Validator {
	return &Validator{filePath: filePath}
}
