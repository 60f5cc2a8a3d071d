package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

type AssessmentHandler struct {
	BaseHandler
	service services.AssessmentService
}

func NewAssessmentHandler(service services.AssessmentService, logger utils.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateAssessment creates an assessment in the author's college
// @Summary Create assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Param request body services.CreateAssessmentRequest true "Assessment data"
// @Success 201 {object} models.Assessment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /assessments [post]
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.CreateAssessmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating assessment", "title", req.Title)

	assessment, err := h.service.Create(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assessment)
}

// ListAssessments lists assessments of the caller's college
// @Summary List assessments
// @Description Super admins pass college_id; everyone else sees their own college.
// @Tags assessments
// @Produce json
// @Param college_id query string false "College ID (super admin only)"
// @Param active query bool false "Only active assessments"
// @Success 200 {object} services.AssessmentListResponse
// @Failure 400 {object} ErrorResponse
// @Router /assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	collegeID := ""
	if user.CollegeID != nil {
		collegeID = *user.CollegeID
	}
	if user.Role == models.RoleSuperAdmin && c.Query("college_id") != "" {
		collegeID = c.Query("college_id")
	}
	if collegeID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "college_id is required"})
		return
	}

	// Students only ever see active assessments
	activeOnly := user.Role == models.RoleStudent
	if v := c.Query("active"); v != "" && !activeOnly {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid active flag", Details: err.Error()})
			return
		}
		activeOnly = parsed
	}

	list, err := h.service.ListByCollege(c.Request.Context(), collegeID, activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetAssessment returns one assessment
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} models.Assessment
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	assessment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if user.Role != models.RoleSuperAdmin && !inCollege(user, assessment.CollegeID) {
		// Hide assessments of other colleges
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Assessment not found"})
		return
	}
	c.JSON(http.StatusOK, assessment)
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// SetAssessmentActive opens or closes an assessment
// @Summary Set assessment active
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param request body setActiveRequest true "Active flag"
// @Success 200 {object} models.Assessment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/active [put]
func (h *AssessmentHandler) SetAssessmentActive(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req setActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "active is required"})
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Setting assessment active", "assessment_id", id, "active", *req.Active)

	assessment, err := h.service.SetActive(c.Request.Context(), id, *req.Active, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}
