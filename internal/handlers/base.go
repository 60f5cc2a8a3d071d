package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

// ErrorResponse is the error body returned by every API handler
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the logger shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming handler call with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.FromContext(c.Request.Context(), h.logger)
	if userID, ok := c.Get("user_id"); ok {
		args = append(args, "user_id", userID)
	}
	logger.Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	logger := utils.FromContext(c.Request.Context(), h.logger)
	args = append(args, "error", err, "path", c.FullPath())
	logger.Error(msg, args...)
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	var authError *services.AuthError
	if errors.As(err, &authError) {
		status := http.StatusBadRequest
		if authError.Kind == services.AuthEmailInUse {
			status = http.StatusConflict
		}
		c.JSON(status, ErrorResponse{
			Message: authError.Message,
			Details: map[string]interface{}{"kind": authError.Kind},
		})
		return
	}

	var verificationError *services.VerificationError
	if errors.As(err, &verificationError) {
		h.LogError(c, err, "Certificate lookup failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Certificate verification is temporarily unavailable",
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrCollegeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "College not found"})
	case errors.Is(err, services.ErrCertificateNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Certificate not found"})
	case errors.Is(err, services.ErrAssessmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Assessment not found"})
	case errors.Is(err, services.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Attempt not found"})
	case errors.Is(err, services.ErrShortlistEntryNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Shortlist entry not found"})
	case errors.Is(err, services.ErrCertificateExists), errors.Is(err, services.ErrAlreadyShortlisted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrCollegeNotVerified):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrAttemptNotCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Attempt is not completed"})
	case errors.Is(err, services.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Current password is incorrect"})
	case errors.Is(err, services.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Session is invalid or has expired"})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Access denied"})
	case errors.Is(err, services.ErrExportUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Export storage is unavailable"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// currentUser returns the authenticated profile or answers 401
func (h *BaseHandler) currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return nil, false
	}
	return user, true
}

// bindJSON decodes the body or answers 400
func (h *BaseHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return false
	}
	return true
}
