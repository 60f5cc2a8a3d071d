package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

type collegeService struct {
	repo      repositories.Repository
	events    events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCollegeService(repo repositories.Repository, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator) CollegeService {
	return &collegeService{
		repo:      repo,
		events:    publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
	}
}

// Register records a public registration request in pending state
func (s *collegeService) Register(ctx context.Context, req *CollegeRegisterRequest) (*models.College, error) {
	s.logger.Info("Registering college", "name", req.Name)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	college := &models.College{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Location: strings.TrimSpace(req.Location),
		Status:   models.CollegePending,
	}
	if req.Website != nil && strings.TrimSpace(*req.Website) != "" {
		website := strings.TrimSpace(*req.Website)
		college.Website = &website
	}

	if err := s.repo.College().Create(ctx, nil, college); err != nil {
		return nil, fmt.Errorf("failed to create college: %w", err)
	}

	publishEvent(ctx, s.events, s.logger, events.CollegeRegistered, college)
	s.logger.Info("College registered", "college_id", college.ID)

	return college, nil
}

// Approve marks the college verified regardless of its current status
func (s *collegeService) Approve(ctx context.Context, id string) (*models.College, error) {
	college, err := s.setStatus(ctx, id, models.CollegeVerified, nil)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.events, s.logger, events.CollegeApproved, map[string]any{"college_id": id})
	return college, nil
}

// Reject marks the college rejected regardless of its current status
func (s *collegeService) Reject(ctx context.Context, id string, reason *string) (*models.College, error) {
	text := models.DefaultRejectionReason
	if reason != nil && strings.TrimSpace(*reason) != "" {
		text = strings.TrimSpace(*reason)
	}

	college, err := s.setStatus(ctx, id, models.CollegeRejected, &text)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.events, s.logger, events.CollegeRejected, map[string]any{"college_id": id, "reason": text})
	return college, nil
}

func (s *collegeService) setStatus(ctx context.Context, id string, status models.CollegeStatus, reason *string) (*models.College, error) {
	s.logger.Info("Updating college status", "college_id", id, "status", status)

	if err := s.repo.College().UpdateStatus(ctx, nil, id, status, reason); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCollegeNotFound
		}
		return nil, fmt.Errorf("failed to update college status: %w", err)
	}
	s.metrics.CollegeTransition(string(status))

	return s.Get(ctx, id)
}

func (s *collegeService) Get(ctx context.Context, id string) (*models.College, error) {
	college, err := s.repo.College().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCollegeNotFound
		}
		return nil, fmt.Errorf("failed to get college: %w", err)
	}
	return college, nil
}

func (s *collegeService) List(ctx context.Context) ([]*models.College, error) {
	return s.list(ctx, repositories.CollegeFilters{SortBy: "created_at", SortOrder: "desc"})
}

func (s *collegeService) ListVerified(ctx context.Context) ([]*models.College, error) {
	status := models.CollegeVerified
	return s.list(ctx, repositories.CollegeFilters{Status: &status, SortBy: "name", SortOrder: "asc"})
}

func (s *collegeService) ListPending(ctx context.Context) ([]*models.College, error) {
	status := models.CollegePending
	return s.list(ctx, repositories.CollegeFilters{Status: &status, SortBy: "created_at", SortOrder: "desc"})
}

func (s *collegeService) list(ctx context.Context, filters repositories.CollegeFilters) ([]*models.College, error) {
	colleges, err := s.repo.College().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list colleges: %w", err)
	}
	return colleges, nil
}

// IsVerified is a point-in-time read; an unknown college is simply not verified
func (s *collegeService) IsVerified(ctx context.Context, id string) (bool, error) {
	college, err := s.repo.College().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get college: %w", err)
	}
	return college.IsVerified(), nil
}
