package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.AssessmentAttempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.AssessmentAttempt, error) {
	db := a.getDB(tx)
	var attempt models.AssessmentAttempt
	if err := db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error; err != nil {
		return nil, wrapNotFound(err, "attempt")
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.AssessmentAttempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.AssessmentAttempt
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.AssessmentAttempt{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.AssessmentID != nil {
		query = query.Where("assessment_id = ?", *filters.AssessmentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list attempts: %w", err)
	}

	return attempts, total, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
