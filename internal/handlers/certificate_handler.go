package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

type CertificateHandler struct {
	BaseHandler
	service services.CertificateService
}

func NewCertificateHandler(service services.CertificateService, logger utils.Logger) *CertificateHandler {
	return &CertificateHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// VerifyCertificate is the public verification lookup
// @Summary Verify certificate
// @Description Look up a certificate by its public id. Revoked certificates answer 200 with status "revoked".
// @Tags certificates
// @Produce json
// @Param certificateId path string true "Certificate ID"
// @Success 200 {object} services.VerificationResult
// @Failure 404 {object} services.VerificationResult
// @Failure 503 {object} ErrorResponse
// @Router /certificates/verify/{certificateId} [get]
func (h *CertificateHandler) VerifyCertificate(c *gin.Context) {
	certificateID := c.Param("certificateId")
	h.LogRequest(c, "Verifying certificate", "certificate_id", certificateID)

	result, err := h.service.Verify(c.Request.Context(), certificateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if result.Status == services.VerificationNotFound {
		c.JSON(http.StatusNotFound, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// IssueCertificate issues a certificate from explicit fields
// @Summary Issue certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Param request body services.IssueCertificateRequest true "Certificate data"
// @Success 201 {object} models.Certificate
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /certificates [post]
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	var req services.IssueCertificateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Issuing certificate", "attempt_id", req.AttemptID)

	cert, err := h.service.Issue(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// IssueForAttempt issues the certificate for a completed attempt
// @Summary Issue certificate for attempt
// @Tags certificates
// @Produce json
// @Param attemptId path string true "Attempt ID"
// @Success 201 {object} models.Certificate
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /certificates/attempts/{attemptId} [post]
func (h *CertificateHandler) IssueForAttempt(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	attemptID := c.Param("attemptId")
	h.LogRequest(c, "Issuing certificate for attempt", "attempt_id", attemptID)

	cert, err := h.service.IssueForAttempt(c.Request.Context(), attemptID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cert)
}

// ListMyCertificates lists the caller's active certificates
// @Summary My certificates
// @Tags certificates
// @Produce json
// @Success 200 {array} models.Certificate
// @Router /certificates/me [get]
func (h *CertificateHandler) ListMyCertificates(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	certs, err := h.service.ListByStudent(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, certs)
}

// ListCollegeCertificates lists every certificate of a college
// @Summary College certificates
// @Tags certificates
// @Produce json
// @Param collegeId path string true "College ID"
// @Success 200 {array} models.Certificate
// @Failure 403 {object} ErrorResponse
// @Router /certificates/college/{collegeId} [get]
func (h *CertificateHandler) ListCollegeCertificates(c *gin.Context) {
	collegeID, ok := h.collegeScope(c)
	if !ok {
		return
	}

	certs, err := h.service.ListByCollege(c.Request.Context(), collegeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, certs)
}

// ExportCollegeCertificates exports a college's certificates as a workbook
// @Summary Export college certificates
// @Description Returns a download link when object storage is configured, otherwise the workbook itself.
// @Tags certificates
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param collegeId path string true "College ID"
// @Success 200 {object} services.CertificateExport
// @Failure 403 {object} ErrorResponse
// @Router /certificates/college/{collegeId}/export [get]
func (h *CertificateHandler) ExportCollegeCertificates(c *gin.Context) {
	collegeID, ok := h.collegeScope(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting certificates", "college_id", collegeID)

	export, err := h.service.ExportCollege(c.Request.Context(), collegeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if export.DownloadURL != "" {
		c.JSON(http.StatusOK, export)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// RevokeCertificate revokes a certificate. Revoking twice is a no-op.
// @Summary Revoke certificate
// @Tags certificates
// @Produce json
// @Param certificateId path string true "Certificate ID"
// @Success 200 {object} models.Certificate
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /certificates/{certificateId}/revoke [post]
func (h *CertificateHandler) RevokeCertificate(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	certificateID := c.Param("certificateId")
	h.LogRequest(c, "Revoking certificate", "certificate_id", certificateID)

	if user.Role != models.RoleSuperAdmin {
		cert, err := h.service.GetByCertificateID(c.Request.Context(), certificateID)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		if !inCollege(user, cert.CollegeID) {
			h.handleServiceError(c, services.NewPermissionError(user.ID, "certificate", "revoke", "certificate belongs to another college"))
			return
		}
	}

	cert, err := h.service.Revoke(c.Request.Context(), certificateID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cert)
}

// collegeScope resolves :collegeId and checks the caller belongs to it
func (h *CertificateHandler) collegeScope(c *gin.Context) (string, bool) {
	user, ok := h.currentUser(c)
	if !ok {
		return "", false
	}

	collegeID := c.Param("collegeId")
	if user.Role != models.RoleSuperAdmin && !inCollege(user, collegeID) {
		h.handleServiceError(c, services.NewPermissionError(user.ID, "college", "read", "not a member of this college"))
		return "", false
	}
	return collegeID, true
}

func inCollege(user *models.User, collegeID string) bool {
	return user.CollegeID != nil && collegeID != "" && *user.CollegeID == collegeID
}
