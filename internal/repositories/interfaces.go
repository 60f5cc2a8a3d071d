package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type CollegeFilters struct {
	Status    *models.CollegeStatus `json:"status"`
	SortBy    string                `json:"sort_by"`    // "created_at", "name"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

type CertificateFilters struct {
	StudentID *string                   `json:"student_id"`
	CollegeID *string                   `json:"college_id"`
	Status    *models.CertificateStatus `json:"status"`
	Limit     int                       `json:"limit"`
	Offset    int                       `json:"offset"`
}

type AssessmentFilters struct {
	CollegeID *string `json:"college_id"`
	CreatedBy *string `json:"created_by"`
	Skill     *string `json:"skill"`
	IsActive  *bool   `json:"is_active"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
}

type AttemptFilters struct {
	StudentID    *string               `json:"student_id"`
	AssessmentID *string               `json:"assessment_id"`
	Status       *models.AttemptStatus `json:"status"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type CollegeRepository interface {
	Create(ctx context.Context, tx *gorm.DB, college *models.College) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.College, error)
	// GetVerifiedForShare reads a verified college holding a shared row lock until tx ends.
	GetVerifiedForShare(ctx context.Context, tx *gorm.DB, id string) (*models.College, error)
	List(ctx context.Context, tx *gorm.DB, filters CollegeFilters) ([]*models.College, error)

	// UpdateStatus is an unconditional write of the status fields.
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.CollegeStatus, reason *string) error
}

type CertificateRepository interface {
	Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error
	GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Certificate, error)
	GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID string) (*models.Certificate, error)
	List(ctx context.Context, tx *gorm.DB, filters CertificateFilters) ([]*models.Certificate, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, certificateID string, status models.CertificateStatus) error
	ExistsByAttemptID(ctx context.Context, tx *gorm.DB, attemptID string) (bool, error)
}

type AssessmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Assessment, error)
	List(ctx context.Context, tx *gorm.DB, filters AssessmentFilters) ([]*models.Assessment, int64, error)
	SetActive(ctx context.Context, tx *gorm.DB, id string, active bool) error
}

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.AssessmentAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentAttempt, error)
	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.AssessmentAttempt, int64, error)
}
