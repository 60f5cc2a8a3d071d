package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator is the request validator shared by handlers and services
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate runs struct tag validation only
func (v *Validator) Validate(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ToValidationErrors converts validator errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	result := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		result = append(result, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return result
}

// errorMessage returns user-friendly error messages
func errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "eqfield":
		return fmt.Sprintf("must match %s", err.Param())
	case "skillvault_role", "signup_role":
		return "must be a valid user role"
	case "difficulty":
		return "must be easy, medium, or hard"
	case "question_type":
		return "must be mcq, coding, practical, or mixed"
	case "assessment_duration":
		return "must be between 1 and 300 minutes"
	case "assessment_title":
		return "must be between 1 and 200 characters"
	case "shortlist_status":
		return "must be new, contacted, interviewing, hired, or rejected"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
