package models

import "time"

type CertificateStatus string

const (
	CertificateActive  CertificateStatus = "active"
	CertificateRevoked CertificateStatus = "revoked"
)

// Certificate is immutable once issued except for Status.
type Certificate struct {
	ID              string            `json:"id" gorm:"primaryKey;size:36"`
	CertificateID   string            `json:"certificate_id" gorm:"uniqueIndex;not null;size:64"`
	StudentID       string            `json:"student_id" gorm:"not null;index;size:255"`
	StudentName     string            `json:"student_name" gorm:"not null;size:100"`
	StudentEmail    string            `json:"student_email" gorm:"not null;size:255"`
	CollegeID       string            `json:"college_id" gorm:"index;size:36"`
	CollegeName     string            `json:"college_name" gorm:"size:200"`
	AssessmentID    string            `json:"assessment_id" gorm:"not null;index;size:36"`
	AssessmentTitle string            `json:"assessment_title" gorm:"not null;size:200"`
	Skill           string            `json:"skill" gorm:"not null;size:100"`
	Score           float64           `json:"score"`
	Percentage      float64           `json:"percentage"`
	PassingGrade    float64           `json:"passing_grade"`
	AttemptID       string            `json:"attempt_id" gorm:"uniqueIndex;not null;size:36"`
	IssuedDate      time.Time         `json:"issued_date"`
	VerificationURL string            `json:"verification_url" gorm:"size:500"`
	Status          CertificateStatus `json:"status" gorm:"not null;size:16;default:active;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// IsRevoked is the only status distinction that matters for verification.
func (c *Certificate) IsRevoked() bool {
	return c.Status == CertificateRevoked
}
