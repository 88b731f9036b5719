package common

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// addError appends an error-level issue for field
func addError(issues *[]ValidationIssue, field, format string, args ...interface{}) {
	*issues = append(*issues, ValidationIssue{
		Type:    "error",
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

// ValidateRFC3339NanoUTC checks ts is an RFC3339Nano timestamp ending in Z
func ValidateRFC3339NanoUTC(ts string, fieldName string, issues *[]ValidationIssue) {
	if ts == "" {
		addError(issues, fieldName, "timestamp cannot be empty")
		return
	}
	if !strings.HasSuffix(ts, "Z") {
		addError(issues, fieldName, "not RFC3339Nano UTC Z")
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		addError(issues, fieldName, "invalid RFC3339Nano format: %v", err)
	}
}

// ValidateRequiredKeys reports every key of required missing from data
func ValidateRequiredKeys(data map[string]interface{}, required []string, prefix string, issues *[]ValidationIssue) {
	for _, key := range required {
		if _, ok := data[key]; !ok {
			addError(issues, prefix+key, "missing required key: %s", prefix+key)
		}
	}
}

// ValidateIntValue checks value is a whole JSON number, optionally equal to
// exactValue and at least minValue
func ValidateIntValue(value interface{}, fieldName string, exactValue *int, minValue *int, issues *[]ValidationIssue) {
	f, ok := value.(float64)
	if !ok || f != math.Trunc(f) {
		addError(issues, fieldName, "must be an integer")
		return
	}

	n := int(f)
	if exactValue != nil && n != *exactValue {
		addError(issues, fieldName, "must be %d", *exactValue)
	}
	if minValue != nil && n < *minValue {
		addError(issues, fieldName, "must be >= %d", *minValue)
	}
}

// ValidateEnumValue checks value is one of the allowed strings
func ValidateEnumValue(value interface{}, fieldName string, allowedValues map[string]bool, issues *[]ValidationIssue) {
	s, ok := value.(string)
	if !ok {
		addError(issues, fieldName, "must be a string")
		return
	}
	if allowedValues[s] {
		return
	}

	allowed := make([]string, 0, len(allowedValues))
	for k := range allowedValues {
		allowed = append(allowed, k)
	}
	sort.Strings(allowed)
	addError(issues, fieldName, "invalid value: %s (must be one of: %s)", s, strings.Join(allowed, "|"))
}

// ValidateNullableEnumValue is ValidateEnumValue that also accepts null
func ValidateNullableEnumValue(value interface{}, fieldName string, allowedValues map[string]bool, issues *[]ValidationIssue) {
	if value != nil {
		ValidateEnumValue(value, fieldName, allowedValues, issues)
	}
}

func ValidateBoolValue(value interface{}, fieldName string, issues *[]ValidationIssue) {
	if _, ok := value.(bool); !ok {
		addError(issues, fieldName, "must be a boolean")
	}
}

// ValidateObjectValue returns value as a JSON object, reporting when it is not one
func ValidateObjectValue(value interface{}, fieldName string, issues *[]ValidationIssue) (map[string]interface{}, bool) {
	m, ok := value.(map[string]interface{})
	if !ok {
		addError(issues, fieldName, "must be an object")
	}
	return m, ok
}
