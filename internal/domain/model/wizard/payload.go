package wizard

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// Payload is the captured data of one step.
// Each step key with a known shape has its own variant; every other
// step uses GenericData.
type Payload interface {
	// Kind names the variant, used in logs and listings
	Kind() string
	// Map returns the payload as a plain JSON-compatible map
	Map() map[string]any
}

// RiskLevel is the risk rating captured by the IPRM profile step
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SelectAppData is captured by the selectApp step
type SelectAppData struct {
	ApplicationID   string `mapstructure:"applicationId"`
	ApplicationName string `mapstructure:"applicationName"`
}

func (SelectAppData) Kind() string { return "selectApp" }

func (d SelectAppData) Map() map[string]any {
	return map[string]any{
		"applicationId":   d.ApplicationID,
		"applicationName": d.ApplicationName,
	}
}

// IPRMProfileData is captured by the iprmProfile step
type IPRMProfileData struct {
	IPRMProfile string    `mapstructure:"iprmProfile"`
	RiskLevel   RiskLevel `mapstructure:"riskLevel"`
}

func (IPRMProfileData) Kind() string { return "iprmProfile" }

func (d IPRMProfileData) Map() map[string]any {
	return map[string]any{
		"iprmProfile": d.IPRMProfile,
		"riskLevel":   string(d.RiskLevel),
	}
}

// SystemQuestionsData is captured by the systemQs step
type SystemQuestionsData struct {
	DataClassification     string   `mapstructure:"dataClassification"`
	ComplianceRequirements []string `mapstructure:"complianceRequirements"`
	AdditionalNotes        string   `mapstructure:"additionalNotes"`
}

func (SystemQuestionsData) Kind() string { return "systemQs" }

func (d SystemQuestionsData) Map() map[string]any {
	reqs := make([]any, len(d.ComplianceRequirements))
	for i, r := range d.ComplianceRequirements {
		reqs[i] = r
	}
	m := map[string]any{
		"dataClassification":     d.DataClassification,
		"complianceRequirements": reqs,
	}
	if d.AdditionalNotes != "" {
		m["additionalNotes"] = d.AdditionalNotes
	}
	return m
}

// GenericData holds the free-form data of steps without a fixed shape
type GenericData struct {
	Fields map[string]any
}

func (GenericData) Kind() string { return "generic" }

func (d GenericData) Map() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		out[k] = v
	}
	return out
}

// DecodePayload converts raw captured data into the variant registered for key.
// Non-object data for a generic step is kept under the "value" field.
func DecodePayload(key StepKey, raw any) (Payload, error) {
	if raw == nil {
		return nil, fmt.Errorf("step %q: payload is empty", key)
	}

	switch key {
	case StepSelectApp:
		var d SelectAppData
		if err := decodeInto(raw, &d); err != nil {
			return nil, fmt.Errorf("step %q: %w", key, err)
		}
		return d, nil
	case StepIPRMProfile:
		var d IPRMProfileData
		if err := decodeInto(raw, &d); err != nil {
			return nil, fmt.Errorf("step %q: %w", key, err)
		}
		return d, nil
	case StepSystemQuestions:
		var d SystemQuestionsData
		if err := decodeInto(raw, &d); err != nil {
			return nil, fmt.Errorf("step %q: %w", key, err)
		}
		return d, nil
	}

	if m, ok := raw.(map[string]any); ok {
		return GenericData{Fields: m}, nil
	}
	return GenericData{Fields: map[string]any{"value": raw}}, nil
}

func decodeInto(raw any, out any) error {
	if _, ok := raw.(map[string]any); !ok {
		return fmt.Errorf("payload must be an object, got %T", raw)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ZeroFields: true,
		Result:     out,
		TagName:    "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// StepData maps step keys to their captured payloads
type StepData map[StepKey]Payload

// Has reports whether data has been captured for key
func (d StepData) Has(key StepKey) bool {
	p, ok := d[key]
	return ok && p != nil
}

// Clone returns a shallow copy of the map; payload values are immutable by convention
func (d StepData) Clone() StepData {
	out := make(StepData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Keys returns the captured keys in sorted order
func (d StepData) Keys() []StepKey {
	keys := make([]StepKey, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
