package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skillvault/skillvault-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	// Report json field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSignup checks the request shape and the college affiliation rule
func (bv *BusinessValidator) ValidateSignup(req *SignupRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Role.RequiresCollege() && (req.CollegeID == nil || strings.TrimSpace(*req.CollegeID) == "") {
		errors = append(errors, ValidationError{
			Field:   "college_id",
			Message: "is required for this role",
			Value:   req.Role,
			Rule:    "college_required",
		})
	}

	return errors
}

// ValidateAdminCreateUser applies the signup affiliation rule to admin-created users
func (bv *BusinessValidator) ValidateAdminCreateUser(req *AdminCreateUserRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Role.RequiresCollege() && (req.CollegeID == nil || *req.CollegeID == "") {
		errors = append(errors, ValidationError{
			Field:   "college_id",
			Message: "is required for this role",
			Value:   req.Role,
			Rule:    "college_required",
		})
	}

	return errors
}

// ValidateAssessmentCreate validates assessment creation business rules
func (bv *BusinessValidator) ValidateAssessmentCreate(req *AssessmentCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.PassingMarks > req.TotalMarks {
		errors = append(errors, ValidationError{
			Field:   "passing_marks",
			Message: "cannot exceed total marks",
			Value:   req.PassingMarks,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateAttemptRecord checks a completed attempt against its assessment
func (bv *BusinessValidator) ValidateAttemptRecord(req *AttemptRecordRequest, assessment *models.Assessment) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if !assessment.IsActive {
		errors = append(errors, ValidationError{
			Field:   "assessment_id",
			Message: "assessment is not active",
			Value:   req.AssessmentID,
			Rule:    "business_logic",
		})
	}

	if req.Score > float64(assessment.TotalMarks) {
		errors = append(errors, ValidationError{
			Field:   "score",
			Message: "cannot exceed total marks",
			Value:   req.Score,
			Rule:    "business_logic",
		})
	}

	return errors
}

func (bv *BusinessValidator) registerBusinessRules() {
	// Any known role
	bv.validate.RegisterValidation("skillvault_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	// Roles open to self-registration
	bv.validate.RegisterValidation("signup_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		return role.IsValid() && role != models.RoleSuperAdmin
	})

	bv.validate.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		switch models.DifficultyLevel(fl.Field().String()) {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch models.QuestionType(fl.Field().String()) {
		case models.QuestionMCQ, models.QuestionCoding, models.QuestionPractical, models.QuestionMixed:
			return true
		}
		return false
	})

	// Assessment duration validation (1-300 minutes)
	bv.validate.RegisterValidation("assessment_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 1 && duration <= 300
	})

	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("assessment_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	bv.validate.RegisterValidation("shortlist_status", func(fl validator.FieldLevel) bool {
		return models.ShortlistStatus(fl.Field().String()).IsValid()
	})
}
