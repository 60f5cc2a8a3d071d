package services

import (
	"errors"
	"fmt"

	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

// Generic errors
var (
	ErrValidationFailed        = errors.New("validation failed")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidSession          = errors.New("session is invalid or has expired")
)

// Domain errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCollegeNotFound     = errors.New("college not found")
	ErrCollegeNotVerified  = errors.New("Selected college is not verified. Please contact your college administrator.")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateExists   = errors.New("Certificate already exists for this attempt")
	ErrBelowPassingGrade   = errors.New("percentage is below the passing grade")
	ErrAssessmentNotFound  = errors.New("assessment not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptNotCompleted = errors.New("attempt is not completed")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrExportUnavailable   = errors.New("export storage is unavailable")

	ErrAlreadyShortlisted     = errors.New("Student already shortlisted")
	ErrShortlistEntryNotFound = errors.New("shortlist entry not found")
)

// ValidationErrors is the field error list produced by the request validator
type ValidationErrors = validator.ValidationErrors

// BusinessRuleError reports a request that is well formed but not allowed by the domain rules
type BusinessRuleError struct {
	Message string                 `json:"message"`
	Rule    string                 `json:"rule"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Message: message, Rule: rule, Context: context}
}

// PermissionError reports that a user may not perform an action on a resource
type PermissionError struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Action: action, Reason: reason}
}

// ===== AUTH =====

type AuthErrorKind string

const (
	AuthInvalidCredentials AuthErrorKind = "InvalidCredentials"
	AuthUserNotFound       AuthErrorKind = "UserNotFound"
	AuthAccountDisabled    AuthErrorKind = "AccountDisabled"
	AuthInvalidEmail       AuthErrorKind = "InvalidEmail"
	AuthEmailInUse         AuthErrorKind = "EmailInUse"
	AuthWeakPassword       AuthErrorKind = "WeakPassword"
	AuthProfileNotFound    AuthErrorKind = "ProfileNotFound"
	AuthCollegeNotVerified AuthErrorKind = "CollegeNotVerified"
	AuthInvalidInput       AuthErrorKind = "InvalidInput"
	AuthUnknown            AuthErrorKind = "Unknown"
)

const (
	loginFailedMessage  = "Failed to login"
	signupFailedMessage = "Failed to create account"
)

// AuthError is the user-facing failure of a login or signup
type AuthError struct {
	Kind    AuthErrorKind    `json:"kind"`
	Message string           `json:"message"`
	Details ValidationErrors `json:"details,omitempty"`
	Err     error            `json:"-"`
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// identityAuthErrors maps identity provider codes to kinds and messages
var identityAuthErrors = map[string]struct {
	kind    AuthErrorKind
	message string
}{
	repositories.IdentityUserNotFound:      {AuthUserNotFound, "No account found with this email"},
	repositories.IdentityWrongPassword:     {AuthInvalidCredentials, "Incorrect password"},
	repositories.IdentityInvalidCredential: {AuthInvalidCredentials, "Invalid email or password"},
	repositories.IdentityInvalidEmail:      {AuthInvalidEmail, "Invalid email address"},
	repositories.IdentityUserDisabled:      {AuthAccountDisabled, "This account has been disabled"},
	repositories.IdentityEmailInUse:        {AuthEmailInUse, "An account with this email already exists"},
	repositories.IdentityWeakPassword:      {AuthWeakPassword, "Password should be at least 6 characters"},
}

// newAuthError maps an identity provider failure; unknown codes get fallback as their message
func newAuthError(err error, fallback string) *AuthError {
	var profileErr *ProfileNotFoundError
	if errors.As(err, &profileErr) {
		return &AuthError{Kind: AuthProfileNotFound, Message: profileErr.Error(), Err: err}
	}

	if mapped, ok := identityAuthErrors[repositories.IdentityErrorCode(err)]; ok {
		return &AuthError{Kind: mapped.kind, Message: mapped.message, Err: err}
	}
	return &AuthError{Kind: AuthUnknown, Message: fallback, Err: err}
}

// ProfileNotFoundError means the identity exists but has no profile record
type ProfileNotFoundError struct {
	UserID string
}

func (e *ProfileNotFoundError) Error() string {
	return "User profile not found"
}

// ===== CERTIFICATE VERIFICATION =====

type VerificationStatus string

const (
	VerificationValid            VerificationStatus = "valid"
	VerificationRevoked          VerificationStatus = "revoked"
	VerificationNotFound         VerificationStatus = "not_found"
	VerificationTransportFailure VerificationStatus = "transport_failure"
)

// VerificationError distinguishes why a certificate did not verify
type VerificationError struct {
	Kind          VerificationStatus
	CertificateID string
	Err           error
}

func (e *VerificationError) Error() string {
	switch e.Kind {
	case VerificationNotFound:
		return "Certificate not found"
	case VerificationRevoked:
		return "This certificate has been revoked"
	default:
		return fmt.Sprintf("certificate lookup failed: %v", e.Err)
	}
}

func (e *VerificationError) Unwrap() error { return e.Err }

// ===== QUESTION GENERATION =====

type GenerationErrorKind string

const (
	GenerationParse       GenerationErrorKind = "parse"
	GenerationEmptyResult GenerationErrorKind = "empty_result"
	GenerationUpstream    GenerationErrorKind = "upstream"
	GenerationInvalid     GenerationErrorKind = "invalid_request"
)

// GenerationError is a failed question generation
type GenerationError struct {
	Kind    GenerationErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }
