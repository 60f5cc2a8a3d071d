package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

const (
	defaultMinPercentage = 70.0
	maxCandidateResults  = 50
)

type recruiterService struct {
	repo      repositories.Repository
	events    events.Publisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewRecruiterService(repo repositories.Repository, publisher events.Publisher, logger *slog.Logger, validator *validator.Validator) RecruiterService {
	return &recruiterService{
		repo:      repo,
		events:    publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CANDIDATE SEARCH =====

// SearchCandidates ranks students by their average completed-attempt percentage in assessments
// whose skill contains the query, case-insensitively
func (s *recruiterService) SearchCandidates(ctx context.Context, search CandidateSearch) ([]*Candidate, error) {
	skill := strings.TrimSpace(search.Skill)
	if skill == "" {
		return nil, ValidationErrors{{Field: "skill", Message: "is required", Rule: "required"}}
	}

	minPercentage := defaultMinPercentage
	if search.MinPercentage != nil {
		minPercentage = math.Max(0, math.Min(100, *search.MinPercentage))
	}
	limit := search.Limit
	if limit <= 0 || limit > maxCandidateResults {
		limit = maxCandidateResults
	}

	s.logger.Info("Searching candidates", "skill", skill, "min_percentage", minPercentage, "limit", limit)

	stats, err := s.repo.Recruiter().SearchCandidates(ctx, nil, repositories.CandidateFilters{
		Skill:         skill,
		CollegeID:     search.CollegeID,
		MinPercentage: minPercentage,
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}

	candidates := make([]*Candidate, 0, len(stats))
	for _, stat := range stats {
		student, err := s.repo.User().GetByID(ctx, nil, stat.StudentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to get candidate profile: %w", err)
		}

		candidates = append(candidates, &Candidate{
			ID:          student.ID,
			Name:        student.Name,
			Email:       student.Email,
			CollegeID:   student.CollegeID,
			CollegeName: student.CollegeName,
			Verified:    student.Verified,
			SkillData: CandidateSkillScore{
				Skill:              skill,
				AvgScore:           math.Round(stat.AvgScore),
				BestScore:          stat.BestScore,
				TotalAttempts:      stat.TotalAttempts,
				CertificatesEarned: stat.CertificatesEarned,
			},
		})
	}

	return candidates, nil
}

// StudentCertificates lists a student's active certificates for recruiter review
func (s *recruiterService) StudentCertificates(ctx context.Context, studentID string) ([]*models.Certificate, error) {
	if _, err := s.getStudent(ctx, studentID); err != nil {
		return nil, err
	}

	status := models.CertificateActive
	certs, _, err := s.repo.Certificate().List(ctx, nil, repositories.CertificateFilters{
		StudentID: &studentID,
		Status:    &status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// ===== SHORTLIST =====

// AddToShortlist snapshots the student's profile and certificate record into the recruiter's shortlist
func (s *recruiterService) AddToShortlist(ctx context.Context, recruiter *models.User, req *ShortlistAddRequest) (*models.ShortlistEntry, error) {
	s.logger.Info("Adding to shortlist", "recruiter_id", recruiter.ID, "student_id", req.StudentID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	exists, err := s.repo.Recruiter().IsShortlisted(ctx, nil, recruiter.ID, req.StudentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyShortlisted
	}

	student, err := s.getStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	certs, err := s.StudentCertificates(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	entry := &models.ShortlistEntry{
		ID:                uuid.NewString(),
		RecruiterID:       recruiter.ID,
		StudentID:         student.ID,
		StudentName:       student.Name,
		StudentEmail:      student.Email,
		Skills:            distinctSkills(certs),
		AvgScore:          averagePercentage(certs),
		CertificatesCount: len(certs),
		Notes:             trimmedNotes(req.Notes),
		Status:            models.ShortlistNew,
	}
	if student.CollegeName != nil {
		entry.CollegeName = *student.CollegeName
	}

	if err := s.repo.Recruiter().CreateShortlistEntry(ctx, nil, entry); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, ErrAlreadyShortlisted
		}
		return nil, fmt.Errorf("failed to add to shortlist: %w", err)
	}

	publishEvent(ctx, s.events, s.logger, events.CandidateShortlisted, map[string]any{
		"recruiter_id": recruiter.ID,
		"student_id":   student.ID,
	})
	s.logger.Info("Candidate shortlisted", "entry_id", entry.ID)

	return entry, nil
}

// ListShortlist returns the recruiter's own entries, most recently shortlisted first
func (s *recruiterService) ListShortlist(ctx context.Context, recruiter *models.User) ([]*models.ShortlistEntry, error) {
	entries, err := s.repo.Recruiter().ListShortlist(ctx, nil, recruiter.ID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *recruiterService) UpdateShortlistEntry(ctx context.Context, recruiter *models.User, id string, req *ShortlistUpdateRequest) (*models.ShortlistEntry, error) {
	s.logger.Info("Updating shortlist entry", "recruiter_id", recruiter.ID, "entry_id", id, "status", req.Status)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Recruiter().UpdateShortlistEntry(ctx, nil, id, recruiter.ID, req.Status, trimmedNotes(req.Notes)); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrShortlistEntryNotFound
		}
		return nil, fmt.Errorf("failed to update shortlist entry: %w", err)
	}

	entry, err := s.repo.Recruiter().GetShortlistEntry(ctx, nil, id, recruiter.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrShortlistEntryNotFound
		}
		return nil, fmt.Errorf("failed to get shortlist entry: %w", err)
	}
	return entry, nil
}

// RemoveFromShortlist deletes one of the recruiter's own entries
func (s *recruiterService) RemoveFromShortlist(ctx context.Context, recruiter *models.User, id string) error {
	s.logger.Info("Removing from shortlist", "recruiter_id", recruiter.ID, "entry_id", id)

	if err := s.repo.Recruiter().DeleteShortlistEntry(ctx, nil, id, recruiter.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrShortlistEntryNotFound
		}
		return fmt.Errorf("failed to remove shortlist entry: %w", err)
	}
	return nil
}

// ===== HELPERS =====

func (s *recruiterService) getStudent(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Role != models.RoleStudent {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func distinctSkills(certs []*models.Certificate) []string {
	seen := make(map[string]bool, len(certs))
	skills := make([]string, 0, len(certs))
	for _, cert := range certs {
		if !seen[cert.Skill] {
			seen[cert.Skill] = true
			skills = append(skills, cert.Skill)
		}
	}
	return skills
}

func averagePercentage(certs []*models.Certificate) float64 {
	if len(certs) == 0 {
		return 0
	}
	var total float64
	for _, cert := range certs {
		total += cert.Percentage
	}
	return math.Round(total / float64(len(certs)))
}

func trimmedNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	text := strings.TrimSpace(*notes)
	return &text
}
