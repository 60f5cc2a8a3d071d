package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

const (
	defaultUserPageSize = 20
	maxUserPageSize     = 100
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*models.User, error) {
	s.logger.Info("Updating profile", "user_id", id)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	var phone *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		trimmed := strings.TrimSpace(*req.Phone)
		phone = &trimmed
	}

	if err := s.repo.User().UpdateProfile(ctx, nil, id, strings.TrimSpace(req.Name), phone); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.GetProfile(ctx, id)
}

// ChangePassword lets the identity provider verify the current password before replacing it
func (s *userService) ChangePassword(ctx context.Context, id string, req *ChangePasswordRequest) error {
	s.logger.Info("Changing password", "user_id", id)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	err := s.repo.Identity().ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword)
	if err == nil {
		return nil
	}

	switch repositories.IdentityErrorCode(err) {
	case repositories.IdentityWrongPassword, repositories.IdentityInvalidCredential:
		return ErrWrongPassword
	case repositories.IdentityUserNotFound:
		return ErrUserNotFound
	case repositories.IdentityWeakPassword:
		return ValidationErrors{{
			Field:   "new_password",
			Message: "is too weak",
			Rule:    "weak_password",
		}}
	}
	return fmt.Errorf("failed to change password: %w", err)
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultUserPageSize
	}
	if filters.Limit > maxUserPageSize {
		filters.Limit = maxUserPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

// CreateUser provisions an identity and its profile on behalf of a super-admin
func (s *userService) CreateUser(ctx context.Context, req *AdminCreateUserRequest) (*models.User, error) {
	s.logger.Info("Creating user", "email", req.Email, "role", req.Role)

	if errs := s.validator.GetBusinessValidator().ValidateAdminCreateUser(req); len(errs) > 0 {
		return nil, errs
	}

	var college *models.College
	if req.CollegeID != nil && *req.CollegeID != "" {
		var err error
		college, err = s.repo.College().GetByID(ctx, nil, *req.CollegeID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrCollegeNotFound
			}
			return nil, fmt.Errorf("failed to get college: %w", err)
		}
	}

	identity, err := s.repo.Identity().SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		if authErr := newAuthError(err, signupFailedMessage); authErr.Kind != AuthUnknown {
			return nil, authErr
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	user := &models.User{
		ID:       identity.UID,
		Name:     strings.TrimSpace(req.Name),
		Email:    identity.Email,
		Role:     req.Role,
		Verified: req.Verified,
	}
	if college != nil {
		user.CollegeID = &college.ID
		user.CollegeName = &college.Name
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if delErr := s.repo.Identity().Delete(context.WithoutCancel(ctx), identity.UID); delErr != nil {
			s.logger.Error("Failed to remove orphaned identity", "user_id", identity.UID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) SetVerified(ctx context.Context, id string, verified bool) (*models.User, error) {
	s.logger.Info("Setting user verification", "user_id", id, "verified", verified)

	if err := s.repo.User().SetVerified(ctx, nil, id, verified); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.GetProfile(ctx, id)
}
