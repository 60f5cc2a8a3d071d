package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
)

// DashboardRepository interface for dashboard aggregate queries
type DashboardRepository interface {
	CountUsersByRole(ctx context.Context, tx *gorm.DB) (map[models.UserRole]int64, error)
	CountCollegesByStatus(ctx context.Context, tx *gorm.DB) (map[models.CollegeStatus]int64, error)

	// Student view
	GetStudentSummary(ctx context.Context, tx *gorm.DB, studentID string) (*StudentSummary, error)

	// College view (faculty and college admins)
	GetCollegeSummary(ctx context.Context, tx *gorm.DB, collegeID string) (*CollegeSummary, error)

	// Recruiter view
	CountActiveCertificates(ctx context.Context, tx *gorm.DB) (int64, error)
	GetTopSkills(ctx context.Context, tx *gorm.DB, limit int) ([]SkillCount, error)
}

// Data structures for dashboard responses

type StudentSummary struct {
	AttemptCount     int64   `json:"attempt_count"`
	AverageScore     float64 `json:"average_score"`
	CertificateCount int64   `json:"certificate_count"`
}

type CollegeSummary struct {
	StudentCount     int64   `json:"student_count"`
	FacultyCount     int64   `json:"faculty_count"`
	AssessmentCount  int64   `json:"assessment_count"`
	AttemptCount     int64   `json:"attempt_count"`
	AverageScore     float64 `json:"average_score"`
	CertificateCount int64   `json:"certificate_count"`
}

type SkillCount struct {
	Skill string `json:"skill"`
	Count int64  `json:"count"`
}
