package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
	"github.com/themis-iprm/themis/internal/validator/common"
)

// RecordVersion is the only persisted record version this build understands
const RecordVersion = 1

// ValidateStateFile validates a persisted wizard record on disk
func ValidateStateFile(fs afero.Fs, filePath string) (*common.ValidationResult, error) {
	result := common.NewValidationResult()

	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// File not found - add as warning
			result.AddFileResult(common.FileResult{
				File: filePath,
				Issues: []common.ValidationIssue{
					{Type: "warn", Message: "file not found"},
				},
			})
			return result, nil
		}
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	result.AddFileResult(common.FileResult{
		File:   filePath,
		Issues: ValidateRecord(data),
	})
	return result, nil
}

// ValidateRecord checks a raw record against the wizard state shape.
// An empty slice means the record can be loaded as-is.
func ValidateRecord(data []byte) []common.ValidationIssue {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return []common.ValidationIssue{{
			Type:    "error",
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}}
	}

	var issues []common.ValidationIssue

	common.ValidateRequiredKeys(raw, []string{"version", "state"}, "", &issues)

	if version, exists := raw["version"]; exists {
		exact := RecordVersion
		common.ValidateIntValue(version, "version", &exact, nil, &issues)
	}

	if st, exists := raw["state"]; exists {
		if m, ok := common.ValidateObjectValue(st, "state", &issues); ok {
			validateWizardState(m, &issues)
		}
	}

	if meta, exists := raw["meta"]; exists {
		if m, ok := common.ValidateObjectValue(meta, "meta", &issues); ok {
			if ts, ok := m["updated_at"].(string); ok {
				common.ValidateRFC3339NanoUTC(ts, "meta.updated_at", &issues)
			}
		}
	}

	return issues
}

// validateWizardState validates the "state" object of a record
func validateWizardState(data map[string]interface{}, issues *[]common.ValidationIssue) {
	required := []string{"role", "profile", "currentStepIndex", "stepData", "isAuthenticated", "sessionExpiry"}
	common.ValidateRequiredKeys(data, required, "state.", issues)

	if role, exists := data["role"]; exists {
		common.ValidateNullableEnumValue(role, "state.role", common.ValidRoles, issues)
	}

	if profile, exists := data["profile"]; exists {
		common.ValidateNullableEnumValue(profile, "state.profile", common.ValidProfiles, issues)
	}

	if idx, exists := data["currentStepIndex"]; exists {
		minValue := 0
		common.ValidateIntValue(idx, "state.currentStepIndex", nil, &minValue, issues)
	}

	if auth, exists := data["isAuthenticated"]; exists {
		common.ValidateBoolValue(auth, "state.isAuthenticated", issues)
	}

	if expiry, exists := data["sessionExpiry"]; exists {
		minValue := 0
		common.ValidateIntValue(expiry, "state.sessionExpiry", nil, &minValue, issues)
	}

	if sd, exists := data["stepData"]; exists {
		if m, ok := common.ValidateObjectValue(sd, "state.stepData", issues); ok {
			for key, payload := range m {
				field := "state.stepData." + key
				if key == "" {
					*issues = append(*issues, common.ValidationIssue{
						Type:    "error",
						Field:   field,
						Message: "step key cannot be empty",
					})
					continue
				}
				if _, err := wizard.DecodePayload(wizard.StepKey(key), payload); err != nil {
					*issues = append(*issues, common.ValidationIssue{
						Type:    "error",
						Field:   field,
						Message: err.Error(),
					})
				}
			}
		}
	}
}
