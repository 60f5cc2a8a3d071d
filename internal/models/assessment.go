package models

import (
	"time"
)

type AssessmentType string

const (
	AssessmentMCQ       AssessmentType = "mcq"
	AssessmentCoding    AssessmentType = "coding"
	AssessmentPractical AssessmentType = "practical"
	AssessmentMixed     AssessmentType = "mixed"
)

type Assessment struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	Title        string          `json:"title" gorm:"not null;size:200;index"`
	Description  *string         `json:"description" gorm:"type:text"`
	Type         AssessmentType  `json:"type" gorm:"not null;size:16"`
	Skill        string          `json:"skill" gorm:"not null;size:100;index"`
	Difficulty   DifficultyLevel `json:"difficulty" gorm:"not null;size:16;default:medium"`
	Duration     int             `json:"duration" gorm:"not null"` // minutes
	TotalMarks   int             `json:"total_marks" gorm:"not null"`
	PassingMarks int             `json:"passing_marks" gorm:"not null"`
	CreatedBy    string          `json:"created_by" gorm:"not null;index;size:255"`
	CollegeID    string          `json:"college_id" gorm:"index;size:36"`
	IsActive     bool            `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// PassingGrade returns the pass mark as a percentage of total marks.
func (a *Assessment) PassingGrade() float64 {
	if a.TotalMarks <= 0 {
		return 0
	}
	return float64(a.PassingMarks) / float64(a.TotalMarks) * 100
}
