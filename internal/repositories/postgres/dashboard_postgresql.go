package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

type dashboardRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DashboardRepository {
	return &dashboardRepository{db: db, cacheManager: cacheManager}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== PLATFORM COUNTS =====

func (r *dashboardRepository) CountUsersByRole(ctx context.Context, tx *gorm.DB) (map[models.UserRole]int64, error) {
	db := r.getDB(tx)
	var rows []struct {
		Role  models.UserRole
		Count int64
	}

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Select("role, COUNT(*) as count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}

	counts := make(map[models.UserRole]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// CountCollegesByStatus is cached until the next college write
func (r *dashboardRepository) CountCollegesByStatus(ctx context.Context, tx *gorm.DB) (map[models.CollegeStatus]int64, error) {
	if tx != nil || inTransaction(r.db) {
		return r.countCollegesByStatus(ctx, r.getDB(tx))
	}

	var counts map[models.CollegeStatus]int64
	err := r.cacheManager.Stats.CacheOrExecute(ctx, "colleges:by-status", &counts, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return r.countCollegesByStatus(ctx, r.db)
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *dashboardRepository) countCollegesByStatus(ctx context.Context, db *gorm.DB) (map[models.CollegeStatus]int64, error) {
	var rows []struct {
		Status models.CollegeStatus
		Count  int64
	}

	if err := db.WithContext(ctx).
		Model(&models.College{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count colleges by status: %w", err)
	}

	counts := make(map[models.CollegeStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ===== STUDENT =====

func (r *dashboardRepository) GetStudentSummary(ctx context.Context, tx *gorm.DB, studentID string) (*repositories.StudentSummary, error) {
	db := r.getDB(tx)
	summary := &repositories.StudentSummary{}

	var attempts struct {
		Count int64
		Avg   float64
	}
	if err := db.WithContext(ctx).
		Model(&models.AssessmentAttempt{}).
		Select("COUNT(*) as count, COALESCE(AVG(percentage), 0) as avg").
		Where("student_id = ?", studentID).
		Scan(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get student attempts: %w", err)
	}
	summary.AttemptCount = attempts.Count
	summary.AverageScore = attempts.Avg

	if err := db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("student_id = ? AND status = ?", studentID, models.CertificateActive).
		Count(&summary.CertificateCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count student certificates: %w", err)
	}

	return summary, nil
}

// ===== COLLEGE =====

func (r *dashboardRepository) GetCollegeSummary(ctx context.Context, tx *gorm.DB, collegeID string) (*repositories.CollegeSummary, error) {
	db := r.getDB(tx)
	summary := &repositories.CollegeSummary{}

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("college_id = ? AND role = ?", collegeID, models.RoleStudent).
		Count(&summary.StudentCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("college_id = ? AND role = ?", collegeID, models.RoleFaculty).
		Count(&summary.FacultyCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count faculty: %w", err)
	}

	if err := db.WithContext(ctx).
		Model(&models.Assessment{}).
		Where("college_id = ?", collegeID).
		Count(&summary.AssessmentCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count assessments: %w", err)
	}

	var attempts struct {
		Count int64
		Avg   float64
	}
	if err := db.WithContext(ctx).
		Model(&models.AssessmentAttempt{}).
		Select("COUNT(*) as count, COALESCE(AVG(percentage), 0) as avg").
		Where("college_id = ?", collegeID).
		Scan(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get college attempts: %w", err)
	}
	summary.AttemptCount = attempts.Count
	summary.AverageScore = attempts.Avg

	if err := db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("college_id = ? AND status = ?", collegeID, models.CertificateActive).
		Count(&summary.CertificateCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count college certificates: %w", err)
	}

	return summary, nil
}

// ===== RECRUITER =====

func (r *dashboardRepository) CountActiveCertificates(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.Certificate{}).
		Where("status = ?", models.CertificateActive).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active certificates: %w", err)
	}

	return count, nil
}

func (r *dashboardRepository) GetTopSkills(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.SkillCount, error) {
	db := r.getDB(tx)
	if limit <= 0 {
		limit = 10
	}

	var skills []repositories.SkillCount
	if err := db.WithContext(ctx).
		Model(&models.Certificate{}).
		Select("skill, COUNT(*) as count").
		Where("status = ?", models.CertificateActive).
		Group("skill").
		Order("count DESC").
		Limit(limit).
		Scan(&skills).Error; err != nil {
		return nil, fmt.Errorf("failed to get top skills: %w", err)
	}

	return skills, nil
}
