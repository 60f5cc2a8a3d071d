package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

// CertificatePostgreSQL is deliberately uncached: verification must always see the stored status.
type CertificatePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewCertificatePostgreSQL(db *gorm.DB) repositories.CertificateRepository {
	return &CertificatePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (c *CertificatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, certificate *models.Certificate) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(certificate).Error; err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	return nil
}

func (c *CertificatePostgreSQL) GetByCertificateID(ctx context.Context, tx *gorm.DB, certificateID string) (*models.Certificate, error) {
	db := c.getDB(tx)
	var certificate models.Certificate
	if err := db.WithContext(ctx).Where("certificate_id = ?", certificateID).First(&certificate).Error; err != nil {
		return nil, wrapNotFound(err, "certificate")
	}
	return &certificate, nil
}

func (c *CertificatePostgreSQL) GetByAttemptID(ctx context.Context, tx *gorm.DB, attemptID string) (*models.Certificate, error) {
	db := c.getDB(tx)
	var certificate models.Certificate
	if err := db.WithContext(ctx).Where("attempt_id = ?", attemptID).First(&certificate).Error; err != nil {
		return nil, wrapNotFound(err, "certificate")
	}
	return &certificate, nil
}

func (c *CertificatePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.CertificateFilters) ([]*models.Certificate, int64, error) {
	db := c.getDB(tx)
	var certificates []*models.Certificate
	var total int64

	query := db.WithContext(ctx).Model(&models.Certificate{})
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.CollegeID != nil {
		query = query.Where("college_id = ?", *filters.CollegeID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count certificates: %w", err)
	}

	query = c.helpers.ApplyPaginationAndSort(query, "issued_date", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&certificates).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list certificates: %w", err)
	}

	return certificates, total, nil
}

func (c *CertificatePostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, certificateID string, status models.CertificateStatus) error {
	db := c.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("certificate_id = ?", certificateID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update certificate status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("certificate %s: %w", certificateID, repositories.ErrNotFound)
	}
	return nil
}

func (c *CertificatePostgreSQL) ExistsByAttemptID(ctx context.Context, tx *gorm.DB, attemptID string) (bool, error) {
	db := c.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Certificate{}).Where("attempt_id = ?", attemptID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check certificate: %w", err)
	}
	return count > 0, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (c *CertificatePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
