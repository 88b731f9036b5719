package wizard

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// StepKey identifies a step within a flow and keys its captured data
type StepKey string

const (
	StepSelectApp       StepKey = "selectApp"
	StepIPRMProfile     StepKey = "iprmProfile"
	StepSystemQuestions StepKey = "systemQs"
	StepDesign          StepKey = "design"
	StepGenerateCRS     StepKey = "generateCRS"
	StepReview          StepKey = "review"
	StepSysReqs         StepKey = "sysReqs"
	StepScenarios       StepKey = "scenarios"
	StepPeriodicOps     StepKey = "periodicOps"
	StepTrace           StepKey = "trace"
)

// ErrUnknownStep is returned when a step key is not part of the active flow
var ErrUnknownStep = errors.New("unknown step")

// String returns the string representation
func (k StepKey) String() string {
	return string(k)
}

// ParseStepKey normalizes user input into a StepKey.
// Keys are case-sensitive, so only NFKC and trimming are applied.
func ParseStepKey(s string) (StepKey, error) {
	v := strings.TrimSpace(norm.NFKC.String(s))
	if v == "" {
		return "", fmt.Errorf("step key is required")
	}
	return StepKey(v), nil
}

// UIRef names the presentation component that renders a step.
// It is opaque to the engine; the presentation layer resolves it.
type UIRef string

const (
	UISelectApp         UIRef = "SelectApp"
	UISelectProfile     UIRef = "SelectProfile"
	UISystemQuestions   UIRef = "SystemQuestions"
	UIDesignUploader    UIRef = "DesignUploader"
	UICRSGenerator      UIRef = "CRSGenerator"
	UISubmitReview      UIRef = "SubmitReview"
	UIReqGenerator      UIRef = "ReqGenerator"
	UITestScenarioGen   UIRef = "TestScenarioGen"
	UITraceabilityCheck UIRef = "TraceabilityCheck"
	UIOpsListForm       UIRef = "OpsListForm"
)

// KnownUIRefs lists every component the bundled presentation layer can mount
var KnownUIRefs = []UIRef{
	UISelectApp,
	UISelectProfile,
	UISystemQuestions,
	UIDesignUploader,
	UICRSGenerator,
	UISubmitReview,
	UIReqGenerator,
	UITestScenarioGen,
	UITraceabilityCheck,
	UIOpsListForm,
}

// Schema validates the captured data of a single step
type Schema interface {
	Name() string
	Validate(data any) error
}

// StepDefinition describes one step of a flow
type StepDefinition struct {
	Key    StepKey
	Title  string
	UIRef  UIRef
	Schema Schema // nil when the step has no validation contract
}

// HasSchema reports whether the step carries a validation contract
func (s StepDefinition) HasSchema() bool {
	return s.Schema != nil
}

// Flow is the ordered list of steps for a role/profile
type Flow []StepDefinition

// Len returns the number of steps
func (f Flow) Len() int {
	return len(f)
}

// At returns the step at index i
func (f Flow) At(i int) (StepDefinition, bool) {
	if i < 0 || i >= len(f) {
		return StepDefinition{}, false
	}
	return f[i], true
}

// IndexOf returns the index of the step with the given key, or -1
func (f Flow) IndexOf(key StepKey) int {
	for i, s := range f {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no backing array with f
func (f Flow) Clone() Flow {
	if f == nil {
		return Flow{}
	}
	out := make(Flow, len(f))
	copy(out, f)
	return out
}
