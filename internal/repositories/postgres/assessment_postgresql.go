package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	return nil
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Assessment, error) {
	db := a.getDB(tx)
	var assessment models.Assessment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&assessment).Error; err != nil {
		return nil, wrapNotFound(err, "assessment")
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	db := a.getDB(tx)
	var assessments []*models.Assessment
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.Assessment{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count assessments: %w", err)
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&assessments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list assessments: %w", err)
	}

	return assessments, total, nil
}

func (a *AssessmentPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id string, active bool) error {
	db := a.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update assessment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("assessment %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (a *AssessmentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AssessmentFilters) *gorm.DB {
	if filters.CollegeID != nil {
		query = query.Where("college_id = ?", *filters.CollegeID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Skill != nil {
		query = query.Where("skill = ?", *filters.Skill)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	return query
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (a *AssessmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
