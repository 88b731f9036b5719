package state

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/themis-iprm/themis/internal/validator/common"
)

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantErrors    int
		checkMessages []string
	}{
		{
			name: "default state",
			content: `{"version":1,"state":{"role":null,"profile":null,"currentStepIndex":0,
				"stepData":{},"isAuthenticated":false,"sessionExpiry":0}}`,
			wantErrors: 0,
		},
		{
			name: "implementer mid-flow",
			content: `{"version":1,"state":{"role":"implementer","profile":"tester","currentStepIndex":2,
				"stepData":{"selectApp":{"applicationId":"app-1","applicationName":"Customer Portal"}},
				"isAuthenticated":true,"sessionExpiry":1790000000000},
				"meta":{"updated_at":"2026-10-17T01:45:00.123456789Z"}}`,
			wantErrors: 0,
		},
		{
			name:          "invalid JSON",
			content:       `{"version":`,
			wantErrors:    1,
			checkMessages: []string{"invalid JSON"},
		},
		{
			name:          "missing state",
			content:       `{"version":1}`,
			wantErrors:    1,
			checkMessages: []string{"missing required key: state"},
		},
		{
			name: "unsupported version",
			content: `{"version":2,"state":{"role":null,"profile":null,"currentStepIndex":0,
				"stepData":{},"isAuthenticated":false,"sessionExpiry":0}}`,
			wantErrors:    1,
			checkMessages: []string{"must be 1"},
		},
		{
			name:          "unknown role and missing fields",
			content:       `{"version":1,"state":{"role":"not-a-role"}}`,
			wantErrors:    6,
			checkMessages: []string{"invalid value: not-a-role", "missing required key: state.stepData"},
		},
		{
			name: "negative and fractional index",
			content: `{"version":1,"state":{"role":null,"profile":null,"currentStepIndex":-1,
				"stepData":{},"isAuthenticated":false,"sessionExpiry":1.5}}`,
			wantErrors:    2,
			checkMessages: []string{"must be >= 0", "must be an integer"},
		},
		{
			name: "wrong types",
			content: `{"version":1,"state":{"role":null,"profile":7,"currentStepIndex":0,
				"stepData":[],"isAuthenticated":"yes","sessionExpiry":0}}`,
			wantErrors:    3,
			checkMessages: []string{"must be a string", "must be an object", "must be a boolean"},
		},
		{
			name: "malformed typed payload",
			content: `{"version":1,"state":{"role":"author","profile":null,"currentStepIndex":0,
				"stepData":{"selectApp":"app-1"},"isAuthenticated":false,"sessionExpiry":0}}`,
			wantErrors:    1,
			checkMessages: []string{"state.stepData.selectApp"},
		},
		{
			name: "bad timestamp",
			content: `{"version":1,"state":{"role":null,"profile":null,"currentStepIndex":0,
				"stepData":{},"isAuthenticated":false,"sessionExpiry":0},"meta":{"updated_at":"yesterday"}}`,
			wantErrors:    2,
			checkMessages: []string{"not RFC3339Nano UTC Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateRecord([]byte(tt.content))

			errorCount := 0
			var all []string
			for _, issue := range issues {
				if issue.Type == "error" {
					errorCount++
				}
				all = append(all, issue.Field+": "+issue.Message)
			}
			if errorCount != tt.wantErrors {
				t.Errorf("errors = %d, want %d (%v)", errorCount, tt.wantErrors, all)
			}

			joined := strings.Join(all, "\n")
			for _, msg := range tt.checkMessages {
				if !strings.Contains(joined, msg) {
					t.Errorf("expected message containing %q in %v", msg, all)
				}
			}
		})
	}
}

func TestValidateStateFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	result, err := ValidateStateFile(fs, "/var/missing.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.Warn != 1 {
		t.Errorf("missing file should be a warning, summary = %+v", result.Summary)
	}

	valid := `{"version":1,"state":{"role":"author","profile":null,"currentStepIndex":1,
		"stepData":{},"isAuthenticated":true,"sessionExpiry":1790000000000}}`
	if err := afero.WriteFile(fs, "/var/state.json", []byte(valid), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err = ValidateStateFile(fs, "/var/state.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary.OK != 1 || result.Summary.Error != 0 {
		t.Errorf("summary = %+v, want one OK file", result.Summary)
	}
	if common.HasErrors(result.Files[0].Issues) {
		t.Errorf("unexpected issues: %+v", result.Files[0].Issues)
	}
}
