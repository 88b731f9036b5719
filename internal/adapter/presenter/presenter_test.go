package presenter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themis-iprm/themis/internal/adapter/presenter"
	"github.com/themis-iprm/themis/internal/application/dto"
)

func wizardView() dto.WizardView {
	exp := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return dto.WizardView{
		Route:         "wizard",
		DisplayName:   "Implementer - Tester",
		Role:          "implementer",
		Profile:       "tester",
		Session:       dto.SessionDTO{Authenticated: true, Valid: true, ExpiresAt: &exp, Remaining: "23h0m0s"},
		IsValidConfig: true,
		CurrentIndex:  1,
		TotalSteps:    4,
		Progress:      50,
		Steps: []dto.StepDTO{
			{Number: 1, Key: "selectApp", Title: "Select Application", State: "completed", HasData: true},
			{Number: 2, Key: "iprmProfile", Title: "Select IPRM Profile", State: "current"},
			{Number: 3, Key: "scenarios", Title: "Generate Test Scenarios", State: "accessible"},
			{Number: 4, Key: "trace", Title: "Check Traceability to Scripts", State: "locked"},
		},
		Current: &dto.StepDTO{Number: 2, Key: "iprmProfile", Title: "Select IPRM Profile", UI: "SelectProfile", Schema: "iprm_profile"},
	}
}

func TestCLIWizardPresenter_View(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.NewCLIWizardPresenter(buf)

	require.NoError(t, p.PresentSuccess("Wizard status", wizardView()))

	out := buf.String()
	assert.Contains(t, out, "✓ Wizard status")
	assert.Contains(t, out, "User: Implementer - Tester")
	assert.Contains(t, out, "valid until 2026-10-18T09:00:00Z (23h0m0s left)")
	assert.Contains(t, out, "Step 2 of 4 [██░░] 50.0%")
	assert.Contains(t, out, "✓ 1. Select Application")
	assert.Contains(t, out, "▶ 2. Select IPRM Profile")
	assert.Contains(t, out, "○ 3. Generate Test Scenarios")
	assert.Contains(t, out, "· 4. Check Traceability to Scripts")
	assert.Contains(t, out, "schema iprm_profile")
}

func TestCLIWizardPresenter_MoveNotice(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.NewCLIWizardPresenter(buf)

	res := dto.MoveResult{Moved: false, Notice: "step is not accessible: step 4", View: wizardView()}
	require.NoError(t, p.PresentSuccess("", res))

	out := buf.String()
	assert.Contains(t, out, "· step is not accessible: step 4")
	assert.Contains(t, out, "▶ 2. Select IPRM Profile")
	assert.NotContains(t, out, "✗")

	buf.Reset()
	require.NoError(t, p.PresentSuccess("", dto.MoveResult{Moved: true, View: wizardView()}))
	assert.NotContains(t, buf.String(), "not accessible")
}

func TestCLIWizardPresenter_Routes(t *testing.T) {
	tests := []struct {
		name string
		view dto.WizardView
		want string
	}{
		{name: "signed out", view: dto.WizardView{Route: "auth", DisplayName: "User"}, want: "themis auth login"},
		{name: "no role", view: dto.WizardView{Route: "select-role", DisplayName: "User", Session: dto.SessionDTO{Authenticated: true, Valid: true}}, want: "themis role select"},
		{name: "no flow", view: dto.WizardView{Route: "wizard", DisplayName: "QA", Session: dto.SessionDTO{Authenticated: true}}, want: "No flow is configured for QA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, presenter.NewCLIWizardPresenter(buf).PresentSuccess("", tt.view))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestCLIWizardPresenter_FlowsAndData(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.NewCLIWizardPresenter(buf)

	require.NoError(t, p.PresentSuccess("", []dto.FlowDTO{
		{Role: "author", Steps: []dto.StepDTO{{Number: 1, Key: "selectApp", Title: "Select Application", UI: "SelectApp"}}},
		{Role: "qa"},
	}))
	assert.Contains(t, buf.String(), "author:")
	assert.Contains(t, buf.String(), "qa: (no steps)")

	buf.Reset()
	require.NoError(t, p.PresentSuccess("", []dto.StepDataDTO{}))
	assert.Contains(t, buf.String(), "No step data captured yet.")

	buf.Reset()
	require.NoError(t, p.PresentSuccess("Saved", dto.StepDataDTO{Key: "selectApp", Kind: "selectApp", Data: map[string]any{"applicationId": "app-1"}}))
	assert.Contains(t, buf.String(), `"applicationId": "app-1"`)
}

func TestCLIWizardPresenter_PresentError(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.NewCLIWizardPresenter(buf)

	testErr := errors.New("test error")
	assert.Equal(t, testErr, p.PresentError(testErr))
	assert.Equal(t, "✗ Error: test error\n", buf.String())
}

func TestJSONPresenter_PresentSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.New("json", buf)

	require.NoError(t, p.PresentSuccess("Wizard status", wizardView()))

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(buf).Decode(&result))
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "Wizard status", result["message"])

	data := result["data"].(map[string]interface{})
	assert.Equal(t, "wizard", data["route"])
	assert.Equal(t, float64(4), data["total_steps"])
	assert.Len(t, data["steps"], 4)
}

func TestJSONPresenter_PresentErrorAndProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	p := presenter.NewJSONPresenter(buf)

	testErr := errors.New("boom")
	assert.Equal(t, testErr, p.PresentError(testErr))

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(buf).Decode(&result))
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "boom", result["error"])

	buf.Reset()
	require.NoError(t, p.PresentProgress("Step", 0, 0))
	require.NoError(t, json.NewDecoder(buf).Decode(&result))
	assert.Equal(t, float64(0), result["percent"])
}
