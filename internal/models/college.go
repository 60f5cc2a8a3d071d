package models

import "time"

type CollegeStatus string

const (
	CollegePending  CollegeStatus = "pending"
	CollegeVerified CollegeStatus = "verified"
	CollegeRejected CollegeStatus = "rejected"
)

// DefaultRejectionReason is recorded when an admin rejects without a reason.
const DefaultRejectionReason = "Did not meet verification criteria"

type College struct {
	ID             string        `json:"id" gorm:"primaryKey;size:36"`
	Name           string        `json:"name" gorm:"not null;size:200;index"`
	Email          string        `json:"email" gorm:"not null;size:255"`
	Location       string        `json:"location" gorm:"not null;size:255"`
	Website        *string       `json:"website,omitempty" gorm:"size:500"`
	Status         CollegeStatus `json:"status" gorm:"not null;size:16;default:pending;index"`
	VerifiedAt     *time.Time    `json:"verified_at,omitempty"`
	RejectedReason *string       `json:"rejected_reason,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (College) TableName() string {
	return "colleges"
}

func (c *College) IsVerified() bool {
	return c.Status == CollegeVerified
}
