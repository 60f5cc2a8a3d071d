package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
)

// CandidateFilters narrows a candidate search
type CandidateFilters struct {
	Skill         string  // Case-insensitive substring of the assessment skill
	CollegeID     *string // Restrict to one college
	MinPercentage float64 // Only attempts at or above this percentage count
	Limit         int
}

// CandidateSkillStats aggregates one student's completed attempts for the searched skill
type CandidateSkillStats struct {
	StudentID          string  `json:"student_id"`
	AvgScore           float64 `json:"avg_score"`
	BestScore          float64 `json:"best_score"`
	TotalAttempts      int64   `json:"total_attempts"`
	CertificatesEarned int64   `json:"certificates_earned"`
}

// RecruiterRepository backs candidate search and the recruiters' shortlists
type RecruiterRepository interface {
	// SearchCandidates returns per-student stats ordered by average score, best first
	SearchCandidates(ctx context.Context, tx *gorm.DB, filters CandidateFilters) ([]CandidateSkillStats, error)

	CreateShortlistEntry(ctx context.Context, tx *gorm.DB, entry *models.ShortlistEntry) error
	// GetShortlistEntry only finds entries owned by recruiterID
	GetShortlistEntry(ctx context.Context, tx *gorm.DB, id, recruiterID string) (*models.ShortlistEntry, error)
	ListShortlist(ctx context.Context, tx *gorm.DB, recruiterID string) ([]*models.ShortlistEntry, error)
	UpdateShortlistEntry(ctx context.Context, tx *gorm.DB, id, recruiterID string, status models.ShortlistStatus, notes *string) error
	DeleteShortlistEntry(ctx context.Context, tx *gorm.DB, id, recruiterID string) error
	IsShortlisted(ctx context.Context, tx *gorm.DB, recruiterID, studentID string) (bool, error)
	CountShortlist(ctx context.Context, tx *gorm.DB, recruiterID string) (int64, error)
}
