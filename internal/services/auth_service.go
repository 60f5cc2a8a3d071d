package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
	"github.com/skillvault/skillvault-service/pkg/jwt"
)

// PublicHomePath is where a signed-out user lands
const PublicHomePath = "/"

type authService struct {
	repo      repositories.Repository
	tokens    *jwt.JWTService
	sessions  *cache.SessionStore
	authState AuthStateBus
	events    events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func NewAuthService(
	repo repositories.Repository,
	tokens *jwt.JWTService,
	sessions *cache.SessionStore,
	authState AuthStateBus,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		sessions:  sessions,
		authState: authState,
		events:    publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) *AuthResult {
	s.logger.Info("Login attempt", "email", email)

	identity, err := s.repo.Identity().SignIn(ctx, email, password)
	if err != nil {
		return s.fail("login", newAuthError(err, loginFailedMessage))
	}

	user, err := s.repo.User().GetByID(ctx, nil, identity.UID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			err = &ProfileNotFoundError{UserID: identity.UID}
		}
		return s.fail("login", newAuthError(err, loginFailedMessage))
	}

	result, err := s.openSession(ctx, user)
	if err != nil {
		return s.fail("login", newAuthError(err, loginFailedMessage))
	}

	s.metrics.AuthAttempt("login", "success")
	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return result
}

func (s *authService) Signup(ctx context.Context, req *SignupRequest) *AuthResult {
	s.logger.Info("Signup attempt", "email", req.Email, "role", req.Role)

	if errs := s.validator.GetBusinessValidator().ValidateSignup(req); len(errs) > 0 {
		return s.fail("signup", &AuthError{Kind: AuthInvalidInput, Message: "Invalid signup request", Details: errs, Err: errs})
	}

	// Point-in-time check so unverified colleges fail before an identity is created
	var college *models.College
	if req.Role.RequiresCollege() {
		var err error
		college, err = s.repo.College().GetByID(ctx, nil, strings.TrimSpace(*req.CollegeID))
		if err != nil && !repositories.IsNotFoundError(err) {
			return s.fail("signup", newAuthError(err, signupFailedMessage))
		}
		if college == nil || !college.IsVerified() {
			return s.fail("signup", collegeNotVerifiedError())
		}
	}

	identity, err := s.repo.Identity().SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return s.fail("signup", newAuthError(err, signupFailedMessage))
	}

	user := &models.User{
		ID:    identity.UID,
		Name:  strings.TrimSpace(req.Name),
		Email: identity.Email,
		Role:  req.Role,
	}
	if college != nil {
		user.CollegeID = &college.ID
		user.CollegeName = &college.Name
	} else if req.CollegeName != nil && *req.CollegeName != "" {
		user.CollegeName = req.CollegeName
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if college != nil {
			// Re-check under a shared row lock so a concurrent reject cannot slip in before the write
			if _, err := tx.College().GetVerifiedForShare(ctx, nil, college.ID); err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrCollegeNotVerified
				}
				return fmt.Errorf("failed to lock college: %w", err)
			}
		}
		if err := tx.User().Create(ctx, nil, user); err != nil {
			return fmt.Errorf("failed to create user profile: %w", err)
		}
		return nil
	})
	if err != nil {
		s.compensateSignup(ctx, identity.UID, err)
		if errors.Is(err, ErrCollegeNotVerified) {
			return s.fail("signup", collegeNotVerifiedError())
		}
		return s.fail("signup", newAuthError(err, signupFailedMessage))
	}

	publishEvent(ctx, s.events, s.logger, events.UserSignedUp, map[string]any{
		"user_id":    user.ID,
		"role":       user.Role,
		"college_id": user.CollegeID,
	})

	result, err := s.openSession(ctx, user)
	if err != nil {
		return s.fail("signup", newAuthError(err, signupFailedMessage))
	}

	s.metrics.AuthAttempt("signup", "success")
	s.logger.Info("User signed up", "user_id", user.ID, "role", user.Role)
	return result
}

func (s *authService) Logout(ctx context.Context, token string) *LogoutResult {
	result := &LogoutResult{Success: true, Redirect: PublicHomePath}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		// Nothing to clear for an invalid or expired token
		return result
	}

	if err := s.sessions.Delete(ctx, claims.SessionID()); err != nil {
		s.logger.Warn("Failed to delete session", "user_id", claims.UserID, "error", err)
	}
	s.notifyAuthState(ctx, claims.UserID, false)

	s.logger.Info("User logged out", "user_id", claims.UserID)
	return result
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, *jwt.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	session, err := s.sessions.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, cache.ErrCacheNotFound) {
			return nil, nil, ErrInvalidSession
		}
		return nil, nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, nil, ErrInvalidSession
	}

	user, err := s.repo.User().GetByID(ctx, nil, claims.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, &ProfileNotFoundError{UserID: claims.UserID}
		}
		return nil, nil, fmt.Errorf("failed to load user profile: %w", err)
	}

	return user, claims, nil
}

// openSession issues a token backed by a stored session and announces the sign-in
func (s *authService) openSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, sessionID, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	err = s.sessions.Create(ctx, sessionID, cache.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: now,
	}, s.tokens.Expiry())
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.notifyAuthState(ctx, user.ID, true)

	expiresAt := now.Add(s.tokens.Expiry())
	return &AuthResult{
		Success:   true,
		Token:     token,
		ExpiresAt: &expiresAt,
		User:      user,
		Redirect:  user.Role.HomePath(),
	}, nil
}

func (s *authService) notifyAuthState(ctx context.Context, userID string, signedIn bool) {
	if s.authState == nil {
		return
	}
	change := events.AuthStateChange{UserID: userID, SignedIn: signedIn}
	if err := s.authState.Publish(context.WithoutCancel(ctx), change); err != nil {
		s.logger.Warn("Failed to publish auth state change", "user_id", userID, "error", err)
	}
}

// compensateSignup removes an identity whose profile could not be written
func (s *authService) compensateSignup(ctx context.Context, uid string, cause error) {
	s.logger.Warn("Signup profile write failed, removing identity", "user_id", uid, "error", cause)

	if err := s.repo.Identity().Delete(context.WithoutCancel(ctx), uid); err != nil {
		s.logger.Error("Failed to remove orphaned identity", "user_id", uid, "error", err)
	}
}

func (s *authService) fail(operation string, authErr *AuthError) *AuthResult {
	s.metrics.AuthAttempt(operation, string(authErr.Kind))
	if authErr.Kind == AuthUnknown {
		s.logger.Error("Authentication failed", "operation", operation, "error", authErr.Err)
	} else {
		s.logger.Info("Authentication rejected", "operation", operation, "kind", authErr.Kind)
	}
	return &AuthResult{Success: false, Error: authErr}
}

func collegeNotVerifiedError() *AuthError {
	return &AuthError{
		Kind:    AuthCollegeNotVerified,
		Message: ErrCollegeNotVerified.Error(),
		Err:     ErrCollegeNotVerified,
	}
}
