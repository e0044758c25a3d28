package common

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// Required - Common validation rules
func Required(fieldName string, value interface{}) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return &ValidationError{Field: fieldName, Message: "is required"}
		}
	}
	return nil
}

// NonEmpty requires a slice value with at least one element.
func NonEmpty(fieldName string, value interface{}) *ValidationError {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return &ValidationError{Field: fieldName, Message: "must contain at least one element"}
	}
	return nil
}

// HasSuffix builds a rule requiring a case-insensitive string suffix.
func HasSuffix(suffix string) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok || !strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix)) {
			return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("must end with %q", suffix)}
		}
		return nil
	}
}

// PlainFilename rejects values carrying directory components.
func PlainFilename(fieldName string, value interface{}) *ValidationError {
	str, _ := value.(string)
	if strings.ContainsAny(str, `/\`) || strings.Contains(str, "..") {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a plain file name"}
	}
	return nil
}

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

func CurrencyCode(fieldName string, value interface{}) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: "must be a string"}
	}
	if str == "" {
		return nil
	}

	// ISO 4217 currency codes are 3 letters
	if !currencyRegex.MatchString(str) {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be 3 uppercase letters (ISO 4217)",
		}
	}

	return nil
}

// AsInputError turns collected validation errors into an AppError wrapping ErrInvalidInput.
func (v *Validator) AsInputError() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError(CodeInvalidInput, v.ErrorMessage(), ErrInvalidInput)
}
