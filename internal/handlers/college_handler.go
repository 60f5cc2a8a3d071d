package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
	"github.com/skillvault/skillvault-service/internal/validator"
)

type CollegeHandler struct {
	BaseHandler
	service services.CollegeService
}

func NewCollegeHandler(service services.CollegeService, logger utils.Logger) *CollegeHandler {
	return &CollegeHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// RegisterCollege submits a college for verification
// @Summary Register college
// @Description Public registration. New colleges start as pending.
// @Tags colleges
// @Accept json
// @Produce json
// @Param request body services.CollegeRegisterRequest true "College data"
// @Success 201 {object} models.College
// @Failure 400 {object} ErrorResponse
// @Router /colleges/register [post]
func (h *CollegeHandler) RegisterCollege(c *gin.Context) {
	var req services.CollegeRegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Registering college", "name", req.Name)

	college, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, college)
}

// ListVerifiedColleges lists colleges open for signup
// @Summary List verified colleges
// @Tags colleges
// @Produce json
// @Success 200 {array} models.College
// @Router /colleges/verified [get]
func (h *CollegeHandler) ListVerifiedColleges(c *gin.Context) {
	colleges, err := h.service.ListVerified(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, colleges)
}

// GetCollege returns one college
// @Summary Get college
// @Tags colleges
// @Produce json
// @Param id path string true "College ID"
// @Success 200 {object} models.College
// @Failure 404 {object} ErrorResponse
// @Router /colleges/{id} [get]
func (h *CollegeHandler) GetCollege(c *gin.Context) {
	college, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, college)
}

// ListColleges lists every college, newest first
// @Summary List colleges
// @Tags admin
// @Produce json
// @Success 200 {array} models.College
// @Router /admin/colleges [get]
func (h *CollegeHandler) ListColleges(c *gin.Context) {
	h.LogRequest(c, "Listing colleges")

	colleges, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, colleges)
}

// ListPendingColleges lists colleges awaiting review
// @Summary List pending colleges
// @Tags admin
// @Produce json
// @Success 200 {array} models.College
// @Router /admin/colleges/pending [get]
func (h *CollegeHandler) ListPendingColleges(c *gin.Context) {
	colleges, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, colleges)
}

// ApproveCollege marks a college verified
// @Summary Approve college
// @Tags admin
// @Produce json
// @Param id path string true "College ID"
// @Success 200 {object} models.College
// @Failure 404 {object} ErrorResponse
// @Router /admin/colleges/{id}/approve [put]
func (h *CollegeHandler) ApproveCollege(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Approving college", "college_id", id)

	college, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, college)
}

// RejectCollege marks a college rejected
// @Summary Reject college
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "College ID"
// @Param request body validator.CollegeRejectRequest false "Rejection reason"
// @Success 200 {object} models.College
// @Failure 404 {object} ErrorResponse
// @Router /admin/colleges/{id}/reject [put]
func (h *CollegeHandler) RejectCollege(c *gin.Context) {
	id := c.Param("id")

	var req validator.CollegeRejectRequest
	// The body is optional
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Rejecting college", "college_id", id)

	college, err := h.service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, college)
}
