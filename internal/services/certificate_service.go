package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
)

// DefaultAppURL is used for verification links when no public origin is configured
const DefaultAppURL = "https://skillvault.app"

const (
	certificateIDPrefix   = "CERT"
	certificateRandLength = 6
	xlsxContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type certificateService struct {
	repo      repositories.Repository
	exports   ExportStore
	events    events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	appURL    string
	now       func() time.Time
}

func NewCertificateService(
	repo repositories.Repository,
	exports ExportStore,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	validator *validator.Validator,
	appURL string,
) CertificateService {
	if appURL == "" {
		appURL = DefaultAppURL
	}
	return &certificateService{
		repo:      repo,
		exports:   exports,
		events:    publisher,
		metrics:   m,
		logger:    logger,
		validator: validator,
		appURL:    strings.TrimRight(appURL, "/"),
		now:       time.Now,
	}
}

// ===== VERIFICATION =====

// Verify classifies a certificate by a single lookup. Only a revoked status fails verification;
// any other stored status is valid. Storage failures are returned as a VerificationError and
// never reported as not found.
func (s *certificateService) Verify(ctx context.Context, certificateID string) (*VerificationResult, error) {
	certificateID = strings.TrimSpace(certificateID)
	result := &VerificationResult{CertificateID: certificateID}

	if certificateID == "" {
		result.Status = VerificationNotFound
		result.Message = result.Err().Error()
		s.metrics.Verification(string(result.Status))
		return result, nil
	}

	cert, err := s.repo.Certificate().GetByCertificateID(ctx, nil, certificateID)
	switch {
	case err != nil && repositories.IsNotFoundError(err):
		result.Status = VerificationNotFound
	case err != nil:
		s.logger.Error("Certificate lookup failed", "certificate_id", certificateID, "error", err)
		s.metrics.Verification(string(VerificationTransportFailure))
		return nil, &VerificationError{Kind: VerificationTransportFailure, CertificateID: certificateID, Err: err}
	case cert.IsRevoked():
		result.Status = VerificationRevoked
		result.Certificate = cert
	default:
		result.Status = VerificationValid
		result.Message = "This certificate is valid"
		result.Certificate = cert
	}

	if result.Status != VerificationValid {
		result.Message = result.Err().Error()
	}
	s.metrics.Verification(string(result.Status))
	return result, nil
}

// ===== ISSUANCE =====

func (s *certificateService) Issue(ctx context.Context, req *IssueCertificateRequest) (*models.Certificate, error) {
	s.logger.Info("Issuing certificate", "attempt_id", req.AttemptID, "student_id", req.StudentID)

	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if req.Percentage < req.PassingGrade {
		return nil, NewBusinessRuleError("passing_grade", ErrBelowPassingGrade.Error(), map[string]interface{}{
			"percentage":    req.Percentage,
			"passing_grade": req.PassingGrade,
		})
	}

	exists, err := s.repo.Certificate().ExistsByAttemptID(ctx, nil, req.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing certificate: %w", err)
	}
	if exists {
		return nil, ErrCertificateExists
	}

	certificateID, err := s.newCertificateID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate certificate id: %w", err)
	}

	cert := &models.Certificate{
		ID:              uuid.NewString(),
		CertificateID:   certificateID,
		StudentID:       req.StudentID,
		StudentName:     req.StudentName,
		StudentEmail:    req.StudentEmail,
		CollegeID:       req.CollegeID,
		CollegeName:     req.CollegeName,
		AssessmentID:    req.AssessmentID,
		AssessmentTitle: req.AssessmentTitle,
		Skill:           req.Skill,
		Score:           req.Score,
		Percentage:      req.Percentage,
		PassingGrade:    req.PassingGrade,
		AttemptID:       req.AttemptID,
		IssuedDate:      s.now().UTC(),
		VerificationURL: s.verificationURL(certificateID),
		Status:          models.CertificateActive,
	}

	if err := s.repo.Certificate().Create(ctx, nil, cert); err != nil {
		// The unique attempt index catches a concurrent issue for the same attempt
		if exists, checkErr := s.repo.Certificate().ExistsByAttemptID(ctx, nil, req.AttemptID); checkErr == nil && exists {
			return nil, ErrCertificateExists
		}
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	s.metrics.CertificateIssued()
	publishEvent(ctx, s.events, s.logger, events.CertificateIssued, map[string]any{
		"certificate_id": cert.CertificateID,
		"student_id":     cert.StudentID,
		"attempt_id":     cert.AttemptID,
		"skill":          cert.Skill,
	})
	s.logger.Info("Certificate issued", "certificate_id", cert.CertificateID)

	return cert, nil
}

// IssueForAttempt builds the certificate from the stored attempt, assessment, student and college
func (s *certificateService) IssueForAttempt(ctx context.Context, attemptID string, issuer *models.User) (*models.Certificate, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.Status == models.AttemptInProgress {
		return nil, ErrAttemptNotCompleted
	}

	if issuer != nil && issuer.Role != models.RoleSuperAdmin {
		if issuer.CollegeID == nil || *issuer.CollegeID != attempt.CollegeID {
			return nil, NewPermissionError(issuer.ID, "certificate", "issue", "attempt belongs to another college")
		}
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, nil, attempt.AssessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	student, err := s.repo.User().GetByID(ctx, nil, attempt.StudentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	req := &IssueCertificateRequest{
		StudentID:       student.ID,
		StudentName:     student.Name,
		StudentEmail:    student.Email,
		CollegeID:       attempt.CollegeID,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		Skill:           assessment.Skill,
		Score:           attempt.Score,
		Percentage:      attempt.Percentage,
		PassingGrade:    assessment.PassingGrade(),
		AttemptID:       attempt.ID,
	}
	if student.CollegeName != nil {
		req.CollegeName = *student.CollegeName
	}
	if attempt.CollegeID != "" {
		if college, err := s.repo.College().GetByID(ctx, nil, attempt.CollegeID); err == nil {
			req.CollegeName = college.Name
		}
	}

	return s.Issue(ctx, req)
}

// ===== QUERIES =====

func (s *certificateService) GetByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	cert, err := s.repo.Certificate().GetByCertificateID(ctx, nil, certificateID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return cert, nil
}

func (s *certificateService) GetByAttempt(ctx context.Context, attemptID string) (*models.Certificate, error) {
	cert, err := s.repo.Certificate().GetByAttemptID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return cert, nil
}

// ListByStudent returns the student's active certificates, newest first
func (s *certificateService) ListByStudent(ctx context.Context, studentID string) ([]*models.Certificate, error) {
	status := models.CertificateActive
	certs, _, err := s.repo.Certificate().List(ctx, nil, repositories.CertificateFilters{
		StudentID: &studentID,
		Status:    &status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// ListByCollege returns every certificate of the college, newest first
func (s *certificateService) ListByCollege(ctx context.Context, collegeID string) ([]*models.Certificate, error) {
	certs, _, err := s.repo.Certificate().List(ctx, nil, repositories.CertificateFilters{CollegeID: &collegeID})
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// ===== REVOCATION =====

// Revoke is one-way; revoking an already revoked certificate changes nothing
func (s *certificateService) Revoke(ctx context.Context, certificateID string) (*models.Certificate, error) {
	cert, err := s.GetByCertificateID(ctx, certificateID)
	if err != nil {
		return nil, err
	}
	if cert.IsRevoked() {
		return cert, nil
	}

	if err := s.repo.Certificate().UpdateStatus(ctx, nil, certificateID, models.CertificateRevoked); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to revoke certificate: %w", err)
	}
	cert.Status = models.CertificateRevoked

	s.metrics.CertificateRevoked()
	publishEvent(ctx, s.events, s.logger, events.CertificateRevoked, map[string]any{
		"certificate_id": certificateID,
		"student_id":     cert.StudentID,
	})
	s.logger.Info("Certificate revoked", "certificate_id", certificateID)

	return cert, nil
}

// ===== EXPORT =====

var exportHeader = []interface{}{
	"Certificate ID", "Student", "Email", "Assessment", "Skill",
	"Score", "Percentage", "Passing Grade", "Issued", "Status", "Verification URL",
}

// ExportCollege renders the college's certificates as a workbook and uploads it when storage is configured
func (s *certificateService) ExportCollege(ctx context.Context, collegeID string) (*CertificateExport, error) {
	certs, err := s.ListByCollege(ctx, collegeID)
	if err != nil {
		return nil, err
	}

	data, err := buildCertificateWorkbook(certs)
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	export := &CertificateExport{
		FileName:    fmt.Sprintf("certificates-%s-%s.xlsx", collegeID, s.now().UTC().Format("20060102-150405")),
		ContentType: xlsxContentType,
		Count:       len(certs),
		Data:        data,
	}

	if s.exports != nil {
		link, err := s.exports.Upload(ctx, "certificates/"+export.FileName, data, xlsxContentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportUnavailable, err)
		}
		export.DownloadURL = link
	}

	s.logger.Info("Certificates exported", "college_id", collegeID, "count", len(certs))
	return export, nil
}

func buildCertificateWorkbook(certs []*models.Certificate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Certificates"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "K1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "K", 22); err != nil {
		return nil, err
	}

	for i, c := range certs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			c.CertificateID, c.StudentName, c.StudentEmail, c.AssessmentTitle, c.Skill,
			c.Score, c.Percentage, c.PassingGrade, c.IssuedDate.Format("2006-01-02"), string(c.Status), c.VerificationURL,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newCertificateID builds CERT-<base36 unix millis>-<6 random base36 chars>, upper-cased
func (s *certificateService) newCertificateID() (string, error) {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	suffix := make([]byte, certificateRandLength)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = alphabet[n.Int64()]
	}

	stamp := strconv.FormatInt(s.now().UnixMilli(), 36)
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", certificateIDPrefix, stamp, suffix)), nil
}

func (s *certificateService) verificationURL(certificateID string) string {
	return s.appURL + "/verify/" + certificateID
}
