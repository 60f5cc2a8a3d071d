package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

// CollegePostgreSQL caches list reads; every write drops the cached lists
type CollegePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCollegePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CollegeRepository {
	return &CollegePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (c *CollegePostgreSQL) Create(ctx context.Context, tx *gorm.DB, college *models.College) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(college).Error; err != nil {
		return fmt.Errorf("failed to create college: %w", err)
	}
	c.cacheManager.InvalidateColleges(ctx)
	return nil
}

func (c *CollegePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.College, error) {
	db := c.getDB(tx)
	var college models.College
	if err := db.WithContext(ctx).Where("id = ?", id).First(&college).Error; err != nil {
		return nil, wrapNotFound(err, "college")
	}
	return &college, nil
}

func (c *CollegePostgreSQL) GetVerifiedForShare(ctx context.Context, tx *gorm.DB, id string) (*models.College, error) {
	db := c.getDB(tx)
	var college models.College
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ? AND status = ?", id, models.CollegeVerified).
		First(&college).Error
	if err != nil {
		return nil, wrapNotFound(err, "verified college")
	}
	return &college, nil
}

func (c *CollegePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CollegeFilters) ([]*models.College, error) {
	if tx != nil || inTransaction(c.db) {
		return c.list(ctx, c.getDB(tx), filters)
	}

	var colleges []*models.College
	err := c.cacheManager.College.CacheOrExecute(ctx, collegeListKey(filters), &colleges, cache.CollegeCacheConfig.TTL, func() (interface{}, error) {
		return c.list(ctx, c.db, filters)
	})
	if err != nil {
		return nil, err
	}
	return colleges, nil
}

func (c *CollegePostgreSQL) list(ctx context.Context, db *gorm.DB, filters repositories.CollegeFilters) ([]*models.College, error) {
	var colleges []*models.College

	query := db.WithContext(ctx).Model(&models.College{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, 0, 0)

	if err := query.Find(&colleges).Error; err != nil {
		return nil, fmt.Errorf("failed to list colleges: %w", err)
	}
	return colleges, nil
}

func (c *CollegePostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.CollegeStatus, reason *string) error {
	db := c.getDB(tx)

	fields := map[string]interface{}{
		"status": status,
	}
	switch status {
	case models.CollegeVerified:
		fields["verified_at"] = time.Now()
		fields["rejected_reason"] = nil
	case models.CollegeRejected:
		fields["rejected_reason"] = reason
	}

	result := db.WithContext(ctx).
		Model(&models.College{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update college status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("college %s: %w", id, repositories.ErrNotFound)
	}
	c.cacheManager.InvalidateColleges(ctx)
	return nil
}

func collegeListKey(filters repositories.CollegeFilters) string {
	status := "all"
	if filters.Status != nil {
		status = string(*filters.Status)
	}
	return fmt.Sprintf("list:%s:%s:%s", status, filters.SortBy, filters.SortOrder)
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CollegePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
