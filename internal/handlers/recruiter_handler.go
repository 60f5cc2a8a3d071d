package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

var errInvalidCandidateQuery = errors.New("min_score and limit must be numbers")

type RecruiterHandler struct {
	BaseHandler
	service services.RecruiterService
}

func NewRecruiterHandler(service services.RecruiterService, logger utils.Logger) *RecruiterHandler {
	return &RecruiterHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SearchCandidates finds students who performed well in a skill
// @Summary Search candidates by skill
// @Tags recruiter
// @Produce json
// @Param skill query string true "Skill (substring, case-insensitive)"
// @Param college_id query string false "Restrict to one college"
// @Param min_score query number false "Minimum attempt percentage (default: 70)"
// @Param limit query int false "Maximum results (default and max: 50)"
// @Success 200 {array} services.Candidate
// @Failure 400 {object} ErrorResponse
// @Router /recruiter/candidates [get]
func (h *RecruiterHandler) SearchCandidates(c *gin.Context) {
	search, err := parseCandidateSearch(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Searching candidates", "skill", search.Skill)

	candidates, err := h.service.SearchCandidates(c.Request.Context(), search)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidates)
}

// StudentCertificates lists a student's active certificates
// @Summary Student certificates
// @Tags recruiter
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {array} models.Certificate
// @Failure 404 {object} ErrorResponse
// @Router /recruiter/students/{id}/certificates [get]
func (h *RecruiterHandler) StudentCertificates(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Listing student certificates", "student_id", id)

	certs, err := h.service.StudentCertificates(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, certs)
}

// ListShortlist returns the caller's shortlist
// @Summary List shortlist
// @Tags recruiter
// @Produce json
// @Success 200 {array} models.ShortlistEntry
// @Router /recruiter/shortlist [get]
func (h *RecruiterHandler) ListShortlist(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	entries, err := h.service.ListShortlist(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddToShortlist bookmarks a student
// @Summary Shortlist a student
// @Tags recruiter
// @Accept json
// @Produce json
// @Param request body services.ShortlistAddRequest true "Student to shortlist"
// @Success 201 {object} models.ShortlistEntry
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /recruiter/shortlist [post]
func (h *RecruiterHandler) AddToShortlist(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.ShortlistAddRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Shortlisting student", "student_id", req.StudentID)

	entry, err := h.service.AddToShortlist(c.Request.Context(), user, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateShortlistEntry moves an entry through the hiring pipeline
// @Summary Update shortlist entry
// @Tags recruiter
// @Accept json
// @Produce json
// @Param id path string true "Shortlist entry ID"
// @Param request body services.ShortlistUpdateRequest true "Status and notes"
// @Success 200 {object} models.ShortlistEntry
// @Failure 404 {object} ErrorResponse
// @Router /recruiter/shortlist/{id} [put]
func (h *RecruiterHandler) UpdateShortlistEntry(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req services.ShortlistUpdateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Updating shortlist entry", "entry_id", id, "status", req.Status)

	entry, err := h.service.UpdateShortlistEntry(c.Request.Context(), user, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveFromShortlist deletes an entry
// @Summary Remove shortlist entry
// @Tags recruiter
// @Param id path string true "Shortlist entry ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /recruiter/shortlist/{id} [delete]
func (h *RecruiterHandler) RemoveFromShortlist(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Removing shortlist entry", "entry_id", id)

	if err := h.service.RemoveFromShortlist(c.Request.Context(), user, id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseCandidateSearch(c *gin.Context) (services.CandidateSearch, error) {
	search := services.CandidateSearch{
		Skill: strings.TrimSpace(c.Query("skill")),
	}

	if collegeID := c.Query("college_id"); collegeID != "" {
		search.CollegeID = &collegeID
	}
	if raw := c.Query("min_score"); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return search, errInvalidCandidateQuery
		}
		search.MinPercentage = &minScore
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return search, errInvalidCandidateQuery
		}
		search.Limit = limit
	}

	return search, nil
}
