package validator

import (
	"encoding/json"
	"time"

	"github.com/skillvault/skillvault-service/internal/models"
)

// ===== AUTH =====

// LoginRequest carries sign-in credentials. Their format is judged by the identity provider.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest creates an identity and its profile
type SignupRequest struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Role        models.UserRole `json:"role" validate:"required,signup_role"`
	CollegeID   *string         `json:"college_id" validate:"omitempty,max=36"`
	CollegeName *string         `json:"college_name" validate:"omitempty,max=200"`
}

// ===== COLLEGES =====

type CollegeRegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=200"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Location string  `json:"location" validate:"required,max=255"`
	Website  *string `json:"website" validate:"omitempty,url,max=500"`
}

type CollegeRejectRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// ===== CERTIFICATES =====

// IssueCertificateRequest holds the denormalized certificate fields
type IssueCertificateRequest struct {
	StudentID       string  `json:"student_id" validate:"required"`
	StudentName     string  `json:"student_name" validate:"required,max=100"`
	StudentEmail    string  `json:"student_email" validate:"required,email"`
	CollegeID       string  `json:"college_id"`
	CollegeName     string  `json:"college_name" validate:"max=200"`
	AssessmentID    string  `json:"assessment_id" validate:"required"`
	AssessmentTitle string  `json:"assessment_title" validate:"required,max=200"`
	Skill           string  `json:"skill" validate:"required,max=100"`
	Score           float64 `json:"score" validate:"min=0"`
	Percentage      float64 `json:"percentage" validate:"min=0,max=100"`
	PassingGrade    float64 `json:"passing_grade" validate:"min=0,max=100"`
	AttemptID       string  `json:"attempt_id" validate:"required"`
}

// ===== QUESTION GENERATION =====

type GenerateQuestionsRequest struct {
	Skill             string                 `json:"skill" validate:"required,max=100"`
	AssessmentTitle   string                 `json:"assessment_title" validate:"required,max=200"`
	Difficulty        models.DifficultyLevel `json:"difficulty" validate:"required,difficulty"`
	QuestionType      models.QuestionType    `json:"question_type" validate:"required,question_type"`
	NumberOfQuestions int                    `json:"number_of_questions" validate:"required,min=1,max=50"`
	Topics            []string               `json:"topics" validate:"omitempty,max=20,dive,max=100"`
}

type GenerateByTopicRequest struct {
	Skill      string                 `json:"skill" validate:"required,max=100"`
	Topic      string                 `json:"topic" validate:"required,max=100"`
	Count      int                    `json:"count" validate:"omitempty,min=1,max=50"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"omitempty,difficulty"`
}

// ===== ASSESSMENTS & ATTEMPTS =====

type AssessmentCreateRequest struct {
	Title        string                 `json:"title" validate:"required,assessment_title"`
	Description  *string                `json:"description" validate:"omitempty,max=1000"`
	Type         models.AssessmentType  `json:"type" validate:"required,question_type"`
	Skill        string                 `json:"skill" validate:"required,max=100"`
	Difficulty   models.DifficultyLevel `json:"difficulty" validate:"required,difficulty"`
	Duration     int                    `json:"duration" validate:"required,assessment_duration"`
	TotalMarks   int                    `json:"total_marks" validate:"required,min=1,max=1000"`
	PassingMarks int                    `json:"passing_marks" validate:"min=0"`
}

// AttemptRecordRequest records a completed attempt
type AttemptRecordRequest struct {
	AssessmentID string          `json:"assessment_id" validate:"required"`
	Answers      json.RawMessage `json:"answers"`
	Score        float64         `json:"score" validate:"min=0"`
	TimeSpent    int             `json:"time_spent" validate:"min=0"`
	StartedAt    *time.Time      `json:"started_at"`
}

// ===== PROFILE & ADMIN =====

type UpdateProfileRequest struct {
	Name  string  `json:"name" validate:"required,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type AdminCreateUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=6,max=128"`
	Name      string          `json:"name" validate:"required,min=2,max=100"`
	Role      models.UserRole `json:"role" validate:"required,skillvault_role"`
	CollegeID *string         `json:"college_id" validate:"omitempty,max=36"`
	Verified  bool            `json:"verified"`
}

type SetVerifiedRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

// ===== RECRUITER =====

type ShortlistAddRequest struct {
	StudentID string  `json:"student_id" validate:"required,max=255"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

type ShortlistUpdateRequest struct {
	Status models.ShortlistStatus `json:"status" validate:"required,shortlist_status"`
	Notes  *string                `json:"notes" validate:"omitempty,max=1000"`
}
