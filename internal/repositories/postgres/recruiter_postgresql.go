package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

const defaultCandidateLimit = 50

type RecruiterPostgreSQL struct {
	db *gorm.DB
}

func NewRecruiterPostgreSQL(db *gorm.DB) repositories.RecruiterRepository {
	return &RecruiterPostgreSQL{db: db}
}

// ===== CANDIDATE SEARCH =====

func (r *RecruiterPostgreSQL) SearchCandidates(ctx context.Context, tx *gorm.DB, filters repositories.CandidateFilters) ([]repositories.CandidateSkillStats, error) {
	db := r.getDB(tx)
	skill := "%" + escapeLike(strings.ToLower(strings.TrimSpace(filters.Skill))) + "%"

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	query := db.WithContext(ctx).
		Table("assessment_attempts AS aa").
		Select("aa.student_id, AVG(aa.percentage) AS avg_score, MAX(aa.percentage) AS best_score, COUNT(*) AS total_attempts").
		Joins("JOIN assessments a ON a.id = aa.assessment_id").
		Joins("JOIN users u ON u.id = aa.student_id").
		Where("aa.status = ?", models.AttemptCompleted).
		Where("aa.percentage >= ?", filters.MinPercentage).
		Where("LOWER(a.skill) LIKE ? ESCAPE '\\'", skill).
		Where("u.role = ?", models.RoleStudent)
	if filters.CollegeID != nil {
		query = query.Where("u.college_id = ?", *filters.CollegeID)
	}

	var stats []repositories.CandidateSkillStats
	if err := query.
		Group("aa.student_id").
		Order("avg_score DESC").
		Order("aa.student_id").
		Limit(limit).
		Scan(&stats).Error; err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}
	if len(stats) == 0 {
		return stats, nil
	}

	studentIDs := make([]string, len(stats))
	for i, s := range stats {
		studentIDs[i] = s.StudentID
	}

	var certCounts []struct {
		StudentID string
		Count     int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Certificate{}).
		Select("student_id, COUNT(*) AS count").
		Where("student_id IN ?", studentIDs).
		Where("status = ?", models.CertificateActive).
		Where("LOWER(skill) LIKE ? ESCAPE '\\'", skill).
		Group("student_id").
		Scan(&certCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count candidate certificates: %w", err)
	}

	counts := make(map[string]int64, len(certCounts))
	for _, c := range certCounts {
		counts[c.StudentID] = c.Count
	}
	for i := range stats {
		stats[i].CertificatesEarned = counts[stats[i].StudentID]
	}

	return stats, nil
}

// ===== SHORTLIST =====

func (r *RecruiterPostgreSQL) CreateShortlistEntry(ctx context.Context, tx *gorm.DB, entry *models.ShortlistEntry) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("shortlist entry for %s: %w", entry.StudentID, repositories.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create shortlist entry: %w", err)
	}
	return nil
}

func (r *RecruiterPostgreSQL) GetShortlistEntry(ctx context.Context, tx *gorm.DB, id, recruiterID string) (*models.ShortlistEntry, error) {
	db := r.getDB(tx)
	var entry models.ShortlistEntry
	if err := db.WithContext(ctx).
		Where("id = ? AND recruiter_id = ?", id, recruiterID).
		First(&entry).Error; err != nil {
		return nil, wrapNotFound(err, "shortlist entry")
	}
	return &entry, nil
}

func (r *RecruiterPostgreSQL) ListShortlist(ctx context.Context, tx *gorm.DB, recruiterID string) ([]*models.ShortlistEntry, error) {
	db := r.getDB(tx)
	var entries []*models.ShortlistEntry
	if err := db.WithContext(ctx).
		Where("recruiter_id = ?", recruiterID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list shortlist: %w", err)
	}
	return entries, nil
}

func (r *RecruiterPostgreSQL) UpdateShortlistEntry(ctx context.Context, tx *gorm.DB, id, recruiterID string, status models.ShortlistStatus, notes *string) error {
	db := r.getDB(tx)

	fields := map[string]interface{}{"status": status}
	if notes != nil {
		fields["notes"] = *notes
	}

	result := db.WithContext(ctx).
		Model(&models.ShortlistEntry{}).
		Where("id = ? AND recruiter_id = ?", id, recruiterID).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update shortlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shortlist entry %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (r *RecruiterPostgreSQL) DeleteShortlistEntry(ctx context.Context, tx *gorm.DB, id, recruiterID string) error {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Where("id = ? AND recruiter_id = ?", id, recruiterID).
		Delete(&models.ShortlistEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete shortlist entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("shortlist entry %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (r *RecruiterPostgreSQL) IsShortlisted(ctx context.Context, tx *gorm.DB, recruiterID, studentID string) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.ShortlistEntry{}).
		Where("recruiter_id = ? AND student_id = ?", recruiterID, studentID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check shortlist: %w", err)
	}
	return count > 0, nil
}

func (r *RecruiterPostgreSQL) CountShortlist(ctx context.Context, tx *gorm.DB, recruiterID string) (int64, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.ShortlistEntry{}).
		Where("recruiter_id = ?", recruiterID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count shortlist: %w", err)
	}
	return count, nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *RecruiterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// escapeLike escapes LIKE wildcards so user input only matches literally
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
