package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// Record stores a completed attempt. Percentage is always derived from the assessment's total marks.
func (s *attemptService) Record(ctx context.Context, req *RecordAttemptRequest, student *models.User) (*models.AssessmentAttempt, error) {
	s.logger.Info("Recording assessment attempt",
		"assessment_id", req.AssessmentID,
		"student_id", student.ID)

	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(student.ID, "attempt", "create", "only students record attempts")
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, nil, req.AssessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateAttemptRecord(req, assessment); len(errs) > 0 {
		return nil, errs
	}

	if assessment.CollegeID != "" && !sameCollege(student, assessment.CollegeID) {
		return nil, NewPermissionError(student.ID, "assessment", "attempt", "assessment belongs to another college")
	}

	now := time.Now()
	startedAt := now.Add(-time.Duration(req.TimeSpent) * time.Second)
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	attempt := &models.AssessmentAttempt{
		ID:           uuid.NewString(),
		AssessmentID: assessment.ID,
		StudentID:    student.ID,
		CollegeID:    assessment.CollegeID,
		Answers:      answersJSON(req.Answers),
		Score:        req.Score,
		TotalMarks:   assessment.TotalMarks,
		Percentage:   attemptPercentage(req.Score, assessment.TotalMarks),
		TimeSpent:    req.TimeSpent,
		Status:       models.AttemptCompleted,
		StartedAt:    startedAt,
		SubmittedAt:  &now,
	}

	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt recorded",
		"attempt_id", attempt.ID,
		"percentage", attempt.Percentage)

	return attempt, nil
}

func (s *attemptService) Get(ctx context.Context, id string, viewer *models.User) (*models.AssessmentAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if !canViewAttempt(viewer, attempt) {
		return nil, NewPermissionError(viewer.ID, "attempt", "read", "not owner or insufficient permissions")
	}

	return attempt, nil
}

func (s *attemptService) ListByStudent(ctx context.Context, studentID string) (*AttemptListResponse, error) {
	attempts, total, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}

func (s *attemptService) ListByAssessment(ctx context.Context, assessmentID string, viewer *models.User) (*AttemptListResponse, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, nil, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if viewer.Role != models.RoleSuperAdmin && !sameCollege(viewer, assessment.CollegeID) {
		return nil, NewPermissionError(viewer.ID, "assessment", "view_attempts", "assessment belongs to another college")
	}

	attempts, total, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{AssessmentID: &assessmentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}

// ===== HELPERS =====

// canViewAttempt allows the student who took it, staff of the same college, and super-admins
func canViewAttempt(user *models.User, attempt *models.AssessmentAttempt) bool {
	switch user.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleStudent:
		return attempt.StudentID == user.ID
	case models.RoleFaculty, models.RoleCollegeAdmin:
		return sameCollege(user, attempt.CollegeID)
	}
	return false
}

func attemptPercentage(score float64, totalMarks int) float64 {
	if totalMarks <= 0 {
		return 0
	}
	return math.Round(score/float64(totalMarks)*10000) / 100
}

func answersJSON(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
