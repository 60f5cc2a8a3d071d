package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	service services.AttemptService
}

func NewAttemptHandler(service services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RecordAttempt stores a completed attempt for the calling student
// @Summary Record attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body services.RecordAttemptRequest true "Attempt result"
// @Success 201 {object} models.AssessmentAttempt
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts [post]
func (h *AttemptHandler) RecordAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.RecordAttemptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Recording attempt", "assessment_id", req.AssessmentID)

	attempt, err := h.service.Record(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

// GetAttempt returns one attempt
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.AssessmentAttempt
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	attempt, err := h.service.Get(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// ListMyAttempts lists the caller's attempts
// @Summary My attempts
// @Tags attempts
// @Produce json
// @Success 200 {object} services.AttemptListResponse
// @Router /attempts/me [get]
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	list, err := h.service.ListByStudent(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListAssessmentAttempts lists attempts of one assessment
// @Summary Assessment attempts
// @Tags attempts
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} services.AttemptListResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/assessment/{id} [get]
func (h *AttemptHandler) ListAssessmentAttempts(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	list, err := h.service.ListByAssessment(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
