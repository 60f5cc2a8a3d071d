package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

type assessmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAssessmentService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) AssessmentService {
	return &assessmentService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE OPERATIONS =====

func (s *assessmentService) Create(ctx context.Context, req *CreateAssessmentRequest, creator *models.User) (*models.Assessment, error) {
	s.logger.Info("Creating assessment", "creator_id", creator.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateAssessmentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if !canAuthorAssessments(creator) {
		return nil, NewPermissionError(creator.ID, "assessment", "create", "insufficient role permissions")
	}

	assessment := &models.Assessment{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Type:         req.Type,
		Skill:        strings.TrimSpace(req.Skill),
		Difficulty:   req.Difficulty,
		Duration:     req.Duration,
		TotalMarks:   req.TotalMarks,
		PassingMarks: req.PassingMarks,
		CreatedBy:    creator.ID,
		IsActive:     true,
	}
	if creator.CollegeID != nil {
		assessment.CollegeID = *creator.CollegeID
	}

	if err := s.repo.Assessment().Create(ctx, nil, assessment); err != nil {
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}

	s.logger.Info("Assessment created successfully", "assessment_id", assessment.ID)
	return assessment, nil
}

func (s *assessmentService) Get(ctx context.Context, id string) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return assessment, nil
}

func (s *assessmentService) ListByCollege(ctx context.Context, collegeID string, activeOnly bool) (*AssessmentListResponse, error) {
	filters := repositories.AssessmentFilters{CollegeID: &collegeID}
	if activeOnly {
		active := true
		filters.IsActive = &active
	}

	assessments, total, err := s.repo.Assessment().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	return &AssessmentListResponse{Assessments: assessments, Total: total}, nil
}

// SetActive opens or closes an assessment for new attempts
func (s *assessmentService) SetActive(ctx context.Context, id string, active bool, actor *models.User) (*models.Assessment, error) {
	s.logger.Info("Updating assessment state", "assessment_id", id, "active", active, "actor_id", actor.ID)

	assessment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canManageAssessment(actor, assessment) {
		return nil, NewPermissionError(actor.ID, "assessment", "update_status", "not owner or insufficient permissions")
	}

	if err := s.repo.Assessment().SetActive(ctx, nil, id, active); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}

	assessment.IsActive = active
	return assessment, nil
}

// ===== PERMISSION HELPERS =====

func canAuthorAssessments(user *models.User) bool {
	switch user.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleFaculty, models.RoleCollegeAdmin:
		return user.CollegeID != nil && *user.CollegeID != ""
	}
	return false
}

// canManageAssessment allows the author, an admin of the owning college, and super-admins
func canManageAssessment(user *models.User, assessment *models.Assessment) bool {
	switch {
	case user.Role == models.RoleSuperAdmin:
		return true
	case assessment.CreatedBy == user.ID:
		return true
	case user.Role == models.RoleCollegeAdmin:
		return sameCollege(user, assessment.CollegeID)
	}
	return false
}

func sameCollege(user *models.User, collegeID string) bool {
	return user.CollegeID != nil && collegeID != "" && *user.CollegeID == collegeID
}
