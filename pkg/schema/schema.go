// Package schema validates raw form payloads before ingestion normalizes
// them. One fixed schema per submission type; a failed validation is the
// ValidationError path — nothing gets persisted.
package schema

import (
	"fmt"
	"regexp"

	"github.com/Ramsey-B/fern/pkg/models"
)

// PropertyDefinition describes one accepted raw form field.
type PropertyDefinition struct {
	Type   string `json:"type"`             // string, multi, boolish
	Format string `json:"format,omitempty"` // email, phone, digits
}

// PayloadSchema describes the accepted shape of one submission type's raw
// payload. Fields not listed are ignored by ingestion, so the schema stays
// permissive about extras.
type PayloadSchema struct {
	Required   []string                      `json:"required,omitempty"`
	Properties map[string]PropertyDefinition `json:"properties"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validating a raw payload
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validator validates raw payload data against a schema
type Validator struct {
	schema PayloadSchema
}

// NewValidator creates a new validator from a payload schema
func NewValidator(schema PayloadSchema) *Validator {
	return &Validator{schema: schema}
}

// ForType returns the built-in validator for a submission type.
func ForType(t models.SubmissionType) *Validator {
	return typeValidators[t]
}

// Validate validates raw payload data against the schema
func (v *Validator) Validate(data map[string]any) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []ValidationError{}}

	for _, required := range v.schema.Required {
		value, exists := data[required]
		if !exists || value == nil || value == "" {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   required,
				Message: "required field is missing",
			})
		}
	}

	for fieldName, fieldDef := range v.schema.Properties {
		value, exists := data[fieldName]
		if !exists || value == nil {
			continue
		}

		if !isValidType(value, fieldDef.Type) {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldName,
				Message: fmt.Sprintf("expected %s, got %s", fieldDef.Type, getTypeName(value)),
			})
			continue
		}

		if fieldDef.Format != "" {
			if err := validateFormat(value, fieldDef.Format); err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationError{
					Field:   fieldName,
					Message: err.Error(),
				})
			}
		}
	}

	return result
}

// isValidType checks a raw form value against the loose field types. Form
// posts deliver strings; JSON posts may deliver the native types, so both
// are accepted.
func isValidType(value any, expectedType string) bool {
	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "multi":
		// single scalar, repeated key, or JSON array are all legal
		switch value.(type) {
		case string, []string, []any:
			return true
		}
		return false
	case "boolish":
		switch value.(type) {
		case bool, string:
			return true
		}
		return false
	default:
		return true // Unknown types pass (permissive)
	}
}

// getTypeName returns a readable type name for a raw value
func getTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// validateFormat validates a string value against a format constraint
func validateFormat(value any, format string) error {
	str, ok := value.(string)
	if !ok || str == "" {
		return nil // Format only applies to non-empty strings
	}

	switch format {
	case "email":
		if !emailRegex.MatchString(str) {
			return fmt.Errorf("invalid email format")
		}
	case "phone":
		if !phoneRegex.MatchString(str) {
			return fmt.Errorf("invalid phone format")
		}
	case "digits":
		if !digitsRegex.MatchString(str) {
			return fmt.Errorf("expected digits (separators allowed)")
		}
	}

	return nil
}

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex  = regexp.MustCompile(`^[\d\s\-\+\(\)\.]{7,20}$`)
	digitsRegex = regexp.MustCompile(`^[\d\s\-]+$`)
)
