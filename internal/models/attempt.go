package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in-progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptEvaluated  AttemptStatus = "evaluated"
)

// AssessmentAttempt is recorded when a student completes an assessment and is read-only afterwards.
type AssessmentAttempt struct {
	ID           string         `json:"id" gorm:"primaryKey;size:36"`
	AssessmentID string         `json:"assessment_id" gorm:"not null;index;size:36"`
	StudentID    string         `json:"student_id" gorm:"not null;index;size:255"`
	CollegeID    string         `json:"college_id" gorm:"index;size:36"`
	Answers      datatypes.JSON `json:"answers"`
	Score        float64        `json:"score"`
	TotalMarks   int            `json:"total_marks"`
	Percentage   float64        `json:"percentage"`
	TimeSpent    int            `json:"time_spent"` // seconds
	Status       AttemptStatus  `json:"status" gorm:"not null;size:16;index"`
	StartedAt    time.Time      `json:"started_at"`
	SubmittedAt  *time.Time     `json:"submitted_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}
