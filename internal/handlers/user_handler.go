package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
	"github.com/skillvault/skillvault-service/internal/validator"
)

const defaultPageSize = 20

var (
	errInvalidRole = errors.New("unknown role")
	errInvalidPage = errors.New("page and size must be positive integers")
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// UpdateProfile updates the caller's display name and phone
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.UpdateProfileRequest true "Profile data"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating profile")

	updated, err := h.service.UpdateProfile(c.Request.Context(), user.ID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ChangePassword changes the caller's password
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.ChangePasswordRequest true "Passwords"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /users/me/password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Changing password")

	if err := h.service.ChangePassword(c.Request.Context(), user.ID, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers lists users with optional filtering
// @Summary List users
// @Description Get a paginated list of users
// @Tags admin
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role"
// @Param college_id query string false "Filter by college"
// @Success 200 {object} services.UserListResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters, err := parseUserFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	users, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser provisions an identity and profile
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.AdminCreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.AdminCreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating user", "role", req.Role)

	user, err := h.service.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// SetVerified marks a profile verified or unverified
// @Summary Set user verification
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body validator.SetVerifiedRequest true "Verification flag"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/verified [put]
func (h *UserHandler) SetVerified(c *gin.Context) {
	var req validator.SetVerifiedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Verified == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "verified is required"})
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Setting user verification", "target_user_id", id, "verified", *req.Verified)

	user, err := h.service.SetVerified(c.Request.Context(), id, *req.Verified)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func parseUserFilters(c *gin.Context) (repositories.UserFilters, error) {
	filters := repositories.UserFilters{
		Query: strings.TrimSpace(c.Query("q")),
	}

	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		if !r.IsValid() {
			return filters, errInvalidRole
		}
		filters.Role = &r
	}
	if collegeID := c.Query("college_id"); collegeID != "" {
		filters.CollegeID = &collegeID
	}

	page, size := 1, defaultPageSize
	if v := c.Query("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return filters, errInvalidPage
		}
		page = p
	}
	if v := c.Query("size"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil || s < 1 {
			return filters, errInvalidPage
		}
		size = s
	}

	filters.Limit = size
	filters.Offset = (page - 1) * size
	return filters, nil
}
