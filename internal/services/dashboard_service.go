package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
)

const topSkillsLimit = 10

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger,
	}
}

// GetDashboard builds the summary for the caller's own role
func (s *dashboardService) GetDashboard(ctx context.Context, user *models.User) (*DashboardResponse, error) {
	s.logger.Info("Getting dashboard", "user_id", user.ID, "role", user.Role)

	resp := &DashboardResponse{Role: user.Role, User: user}

	var err error
	switch user.Role {
	case models.RoleStudent:
		resp.Student, err = s.studentDashboard(ctx, user.ID)
	case models.RoleFaculty, models.RoleCollegeAdmin:
		if user.CollegeID != nil && *user.CollegeID != "" {
			resp.College, err = s.repo.Dashboard().GetCollegeSummary(ctx, nil, *user.CollegeID)
		} else {
			resp.College = &repositories.CollegeSummary{}
		}
	case models.RoleRecruiter:
		resp.Recruiter, err = s.recruiterDashboard(ctx, user.ID)
	case models.RoleSuperAdmin:
		resp.Admin, err = s.adminDashboard(ctx)
	default:
		return nil, NewPermissionError(user.ID, "dashboard", "read", "unknown role")
	}
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *dashboardService) studentDashboard(ctx context.Context, studentID string) (*StudentDashboard, error) {
	summary, err := s.repo.Dashboard().GetStudentSummary(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student summary: %w", err)
	}

	active := models.CertificateActive
	certs, _, err := s.repo.Certificate().List(ctx, nil, repositories.CertificateFilters{
		StudentID: &studentID,
		Status:    &active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	return &StudentDashboard{StudentSummary: *summary, Certificates: certs}, nil
}

func (s *dashboardService) recruiterDashboard(ctx context.Context, recruiterID string) (*RecruiterDashboard, error) {
	count, err := s.repo.Dashboard().CountActiveCertificates(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count certificates: %w", err)
	}

	skills, err := s.repo.Dashboard().GetTopSkills(ctx, nil, topSkillsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top skills: %w", err)
	}

	shortlisted, err := s.repo.Recruiter().CountShortlist(ctx, nil, recruiterID)
	if err != nil {
		return nil, fmt.Errorf("failed to count shortlist: %w", err)
	}

	return &RecruiterDashboard{ActiveCertificates: count, TopSkills: skills, ShortlistCount: shortlisted}, nil
}

func (s *dashboardService) adminDashboard(ctx context.Context) (*AdminDashboard, error) {
	byRole, err := s.repo.Dashboard().CountUsersByRole(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	byStatus, err := s.repo.Dashboard().CountCollegesByStatus(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count colleges: %w", err)
	}

	pending := models.CollegePending
	colleges, err := s.repo.College().List(ctx, nil, repositories.CollegeFilters{
		Status:    &pending,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending colleges: %w", err)
	}

	active, err := s.repo.Dashboard().CountActiveCertificates(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count certificates: %w", err)
	}

	return &AdminDashboard{
		UsersByRole:       byRole,
		CollegesByStatus:  byStatus,
		PendingColleges:   colleges,
		ActiveCertificate: active,
	}, nil
}
