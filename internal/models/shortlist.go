package models

import (
	"time"

	"gorm.io/datatypes"
)

type ShortlistStatus string

const (
	ShortlistNew          ShortlistStatus = "new"
	ShortlistContacted    ShortlistStatus = "contacted"
	ShortlistInterviewing ShortlistStatus = "interviewing"
	ShortlistHired        ShortlistStatus = "hired"
	ShortlistRejected     ShortlistStatus = "rejected"
)

func (s ShortlistStatus) IsValid() bool {
	switch s {
	case ShortlistNew, ShortlistContacted, ShortlistInterviewing, ShortlistHired, ShortlistRejected:
		return true
	}
	return false
}

// ShortlistEntry is a recruiter's bookmark of a student. The candidate fields are a snapshot
// taken when the student was shortlisted.
type ShortlistEntry struct {
	ID                string                      `json:"id" gorm:"primaryKey;size:36"`
	RecruiterID       string                      `json:"recruiter_id" gorm:"not null;size:255;uniqueIndex:idx_shortlist_recruiter_student"`
	StudentID         string                      `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_shortlist_recruiter_student"`
	StudentName       string                      `json:"student_name" gorm:"not null;size:100"`
	StudentEmail      string                      `json:"student_email" gorm:"not null;size:255"`
	CollegeName       string                      `json:"college_name" gorm:"size:200"`
	Skills            datatypes.JSONSlice[string] `json:"skills"`
	AvgScore          float64                     `json:"avg_score"`
	CertificatesCount int                         `json:"certificates_count"`
	Notes             *string                     `json:"notes,omitempty" gorm:"size:1000"`
	Status            ShortlistStatus             `json:"status" gorm:"not null;size:16;default:new"`

	CreatedAt time.Time `json:"shortlisted_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShortlistEntry) TableName() string {
	return "shortlist_entries"
}
