package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/themis-iprm/themis/internal/domain/model/wizard"
)

// ValidateFile validates a journal NDJSON stream and returns detailed results
func (v *Validator) ValidateFile(reader io.Reader) (*ValidationResult, error) {
	result := &ValidationResult{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339Nano),
		File:        v.filePath,
		Lines:       []LineResult{},
		Summary:     Summary{},
	}

	scanner := bufio.NewScanner(reader)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines
		if line == "" {
			continue
		}

		lineResult := v.validateLine(line, lineNumber)
		result.Lines = append(result.Lines, lineResult)

		result.Summary.Lines++
		switch worstType(lineResult.Issues) {
		case "error":
			result.Summary.Error++
		case "warn":
			result.Summary.Warn++
		default:
			result.Summary.OK++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}

func worstType(issues []ValidationIssue) string {
	worst := "ok"
	for _, issue := range issues {
		switch issue.Type {
		case "error":
			return "error"
		case "warn":
			worst = "warn"
		}
	}
	return worst
}

// validateLine validates a single NDJSON line
func (v *Validator) validateLine(line string, lineNumber int) LineResult {
	result := LineResult{
		Line:   lineNumber,
		Issues: []ValidationIssue{},
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		result.add("error", "", "invalid JSON: %v", err)
		return result
	}

	for _, key := range RequiredKeys {
		if _, exists := raw[key]; !exists {
			result.add("error", key, "missing required key: %s", key)
		}
	}
	for key := range raw {
		if !isKnownKey(key) {
			result.add("warn", key, "unknown key")
		}
	}

	// Validate whatever is present, even when keys are missing
	if id, ok := raw["id"]; ok {
		v.validateID(id, &result)
	}
	if ts, ok := raw["ts"]; ok {
		v.validateTimestamp(ts, &result)
	}
	if op, ok := raw["op"]; ok {
		validateOp(op, &result)
	}
	role, _ := raw["role"].(string)
	if r, ok := raw["role"]; ok {
		validateRole(r, &result)
	}
	if p, ok := raw["profile"]; ok {
		validateProfile(p, role, &result)
	}
	if step, ok := raw["step"]; ok {
		validateStep(step, &result)
	}
	if key, ok := raw["step_key"]; ok {
		if s, isString := key.(string); !isString || s == "" {
			result.add("error", "step_key", "step_key must be a non-empty string when present")
		}
	}
	if sv, ok := raw["session_valid"]; ok {
		if _, isBool := sv.(bool); !isBool {
			result.add("error", "session_valid", "session_valid must be a boolean")
		}
	}

	return result
}

// add appends an issue of typ for field
func (r *LineResult) add(typ, field, format string, args ...interface{}) {
	r.Issues = append(r.Issues, ValidationIssue{Type: typ, Field: field, Message: fmt.Sprintf(format, args...)})
}

func isKnownKey(key string) bool {
	if key == "step_key" {
		return true
	}
	for _, k := range RequiredKeys {
		if k == key {
			return true
		}
	}
	return false
}

// validateID checks the ULID and that ids keep increasing line by line
func (v *Validator) validateID(value interface{}, result *LineResult) {
	s, ok := value.(string)
	if !ok {
		result.add("error", "id", "id must be a string")
		return
	}
	id, err := ulid.ParseStrict(s)
	if err != nil {
		result.add("error", "id", "invalid ULID: %v", err)
		return
	}
	if v.previousID.Compare(ulid.ULID{}) != 0 && id.Compare(v.previousID) <= 0 {
		result.add("error", "id", "id must increase: %s after %s", id, v.previousID)
	}
	v.previousID = id
}

// validateTimestamp validates the ts field; going back in time is only a warning
func (v *Validator) validateTimestamp(value interface{}, result *LineResult) {
	ts, ok := value.(string)
	if !ok || ts == "" {
		result.add("error", "ts", "timestamp must be a non-empty string")
		return
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		result.add("error", "ts", "invalid RFC3339Nano format: %v", err)
		return
	}
	if !strings.HasSuffix(ts, "Z") {
		result.add("error", "ts", "timestamp must be UTC (end with Z)")
	}

	if v.previousTs != "" {
		if prev, err := time.Parse(time.RFC3339Nano, v.previousTs); err == nil && t.Before(prev) {
			result.add("warn", "ts", "timestamp goes back from %s", v.previousTs)
		}
	}
	v.previousTs = ts
}

func validateOp(value interface{}, result *LineResult) {
	op, _ := value.(string)
	if !ValidOps[op] {
		result.add("error", "op", "unknown op: %v", value)
	}
}

func validateRole(value interface{}, result *LineResult) {
	s, ok := value.(string)
	if !ok {
		result.add("error", "role", "role must be a string")
		return
	}
	if s != "" && !wizard.Role(s).IsValid() {
		result.add("error", "role", "invalid role: %s", s)
	}
}

func validateProfile(value interface{}, role string, result *LineResult) {
	s, ok := value.(string)
	if !ok {
		result.add("error", "profile", "profile must be a string")
		return
	}
	if s == "" {
		return
	}
	if !wizard.Profile(s).IsValid() {
		result.add("error", "profile", "invalid profile: %s", s)
		return
	}
	if role != "" && wizard.Role(role) != wizard.RoleImplementer {
		result.add("warn", "profile", "profile %s recorded for role %s", s, role)
	}
}

func validateStep(value interface{}, result *LineResult) {
	f, ok := value.(float64) // JSON numbers are float64
	if !ok || f != math.Trunc(f) {
		result.add("error", "step", "step must be an integer")
		return
	}
	if f < 0 {
		result.add("error", "step", "step must be >= 0, got %d", int(f))
	}
}
