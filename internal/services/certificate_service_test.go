package services

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/models"
)

func seedCertificate(t *testing.T, env *testEnv, certificateID string, status models.CertificateStatus) *models.Certificate {
	t.Helper()
	cert := &models.Certificate{
		ID:              uuid.NewString(),
		CertificateID:   certificateID,
		StudentID:       "student-1",
		StudentName:     "Priya",
		StudentEmail:    "priya@example.com",
		CollegeID:       "college-1",
		CollegeName:     "Acme Tech",
		AssessmentID:    "assessment-1",
		AssessmentTitle: "Go Fundamentals",
		Skill:           "Go",
		Score:           42,
		Percentage:      84,
		PassingGrade:    60,
		AttemptID:       uuid.NewString(),
		IssuedDate:      time.Now().UTC(),
		VerificationURL: "https://skillvault.test/verify/" + certificateID,
		Status:          status,
	}
	require.NoError(t, env.repo.Certificate().Create(context.Background(), nil, cert))
	return cert
}

func TestCertificateService_Verify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.certificateService(nil)

	seedCertificate(t, env, "CERT-2026-001234", models.CertificateActive)
	seedCertificate(t, env, "CERT-2026-001235", models.CertificateRevoked)
	seedCertificate(t, env, "CERT-2026-001236", models.CertificateStatus("pending"))

	tests := []struct {
		name        string
		id          string
		wantStatus  VerificationStatus
		wantMessage string
		wantCert    bool
	}{
		{name: "active", id: "CERT-2026-001234", wantStatus: VerificationValid, wantMessage: "This certificate is valid", wantCert: true},
		{name: "revoked keeps the record", id: "CERT-2026-001235", wantStatus: VerificationRevoked, wantMessage: "This certificate has been revoked", wantCert: true},
		{name: "unknown stored status is valid", id: "CERT-2026-001236", wantStatus: VerificationValid, wantCert: true},
		{name: "missing", id: "CERT-0000-000000", wantStatus: VerificationNotFound, wantMessage: "Certificate not found"},
		{name: "blank", id: "   ", wantStatus: VerificationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Repeated lookups classify the same way
			for i := 0; i < 2; i++ {
				result, err := svc.Verify(ctx, tt.id)
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, result.Status)
				if tt.wantMessage != "" {
					assert.Equal(t, tt.wantMessage, result.Message)
				}
				assert.Equal(t, tt.wantCert, result.Certificate != nil)
			}
		})
	}
}

func TestCertificateService_VerifyTransportFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := env.certificateService(nil)
	seedCertificate(t, env, "CERT-2026-001234", models.CertificateActive)

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	result, err := svc.Verify(context.Background(), "CERT-2026-001234")
	assert.Nil(t, result)

	var verr *VerificationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, VerificationTransportFailure, verr.Kind)
	assert.Equal(t, "CERT-2026-001234", verr.CertificateID)
}

func validIssueRequest(attemptID string) *IssueCertificateRequest {
	return &IssueCertificateRequest{
		StudentID:       "student-1",
		StudentName:     "Priya",
		StudentEmail:    "priya@example.com",
		CollegeID:       "college-1",
		CollegeName:     "Acme Tech",
		AssessmentID:    "assessment-1",
		AssessmentTitle: "Go Fundamentals",
		Skill:           "Go",
		Score:           42,
		Percentage:      84,
		PassingGrade:    60,
		AttemptID:       attemptID,
	}
}

func TestCertificateService_Issue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.certificateService(nil)

	cert, err := svc.Issue(ctx, validIssueRequest("attempt-1"))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CERT-[0-9A-Z]+-[0-9A-Z]{6}$`), cert.CertificateID)
	assert.Equal(t, "https://skillvault.test/verify/"+cert.CertificateID, cert.VerificationURL)
	assert.Equal(t, models.CertificateActive, cert.Status)
	assert.Equal(t, []string{events.CertificateIssued}, env.events.Types())

	t.Run("second certificate for the same attempt", func(t *testing.T) {
		_, err := svc.Issue(ctx, validIssueRequest("attempt-1"))
		assert.True(t, errors.Is(err, ErrCertificateExists))
		assert.Equal(t, "Certificate already exists for this attempt", err.Error())
	})

	t.Run("below passing grade", func(t *testing.T) {
		req := validIssueRequest("attempt-2")
		req.Percentage = 59.5

		_, err := svc.Issue(ctx, req)
		var ruleErr *BusinessRuleError
		require.True(t, errors.As(err, &ruleErr))
		assert.Equal(t, "passing_grade", ruleErr.Rule)
	})

	t.Run("invalid request", func(t *testing.T) {
		req := validIssueRequest("attempt-3")
		req.StudentEmail = "nope"

		_, err := svc.Issue(ctx, req)
		var verrs ValidationErrors
		assert.True(t, errors.As(err, &verrs))
	})
}

func TestCertificateService_RevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.certificateService(nil)
	seedCertificate(t, env, "CERT-2026-001234", models.CertificateActive)

	for i := 0; i < 2; i++ {
		cert, err := svc.Revoke(ctx, "CERT-2026-001234")
		require.NoError(t, err)
		assert.True(t, cert.IsRevoked())
	}
	assert.Equal(t, []string{events.CertificateRevoked}, env.events.Types())

	result, err := svc.Verify(ctx, "CERT-2026-001234")
	require.NoError(t, err)
	assert.Equal(t, VerificationRevoked, result.Status)

	active, err := svc.ListByStudent(ctx, "student-1")
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Revoke(ctx, "CERT-MISSING")
	assert.True(t, errors.Is(err, ErrCertificateNotFound))
}

func TestCertificateService_IssueForAttempt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.certificateService(nil)
	attempts := NewAttemptService(env.repo, env.logger, env.validator)

	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)
	other := env.seedCollege(t, "Other College", models.CollegeVerified)
	faculty := env.seedUser(t, models.RoleFaculty, acme)
	outsider := env.seedUser(t, models.RoleFaculty, other)
	student := env.seedUser(t, models.RoleStudent, acme)
	assessment := env.seedAssessment(t, faculty, 50, 30)

	attempt, err := attempts.Record(ctx, &RecordAttemptRequest{AssessmentID: assessment.ID, Score: 42, TimeSpent: 900}, student)
	require.NoError(t, err)
	assert.Equal(t, 84.0, attempt.Percentage)

	_, err = svc.IssueForAttempt(ctx, attempt.ID, outsider)
	var permErr *PermissionError
	require.True(t, errors.As(err, &permErr))

	cert, err := svc.IssueForAttempt(ctx, attempt.ID, faculty)
	require.NoError(t, err)
	assert.Equal(t, student.ID, cert.StudentID)
	assert.Equal(t, "Acme Tech", cert.CollegeName)
	assert.Equal(t, "Go", cert.Skill)
	assert.Equal(t, 60.0, cert.PassingGrade)

	byAttempt, err := svc.GetByAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, cert.CertificateID, byAttempt.CertificateID)

	_, err = svc.IssueForAttempt(ctx, "missing", faculty)
	assert.True(t, errors.Is(err, ErrAttemptNotFound))
}

type fakeExportStore struct {
	key  string
	data []byte
	err  error
}

func (f *fakeExportStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key = key
	f.data = data
	return "https://files.test/" + key, nil
}

func TestCertificateService_ExportCollege(t *testing.T) {
	env := newTestEnv(t)
	store := &fakeExportStore{}
	svc := env.certificateService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	seedCertificate(t, env, "CERT-2026-001234", models.CertificateActive)
	seedCertificate(t, env, "CERT-2026-001235", models.CertificateRevoked)

	export, err := svc.ExportCollege(context.Background(), "college-1")
	require.NoError(t, err)
	assert.Equal(t, 2, export.Count)
	assert.Equal(t, "certificates-college-1-20260301-100000.xlsx", export.FileName)
	assert.Equal(t, "certificates/"+export.FileName, store.key)
	assert.Equal(t, "https://files.test/certificates/"+export.FileName, export.DownloadURL)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Certificates")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Certificate ID", rows[0][0])

	ids := []string{rows[1][0], rows[2][0]}
	assert.ElementsMatch(t, []string{"CERT-2026-001234", "CERT-2026-001235"}, ids)
}

func TestCertificateService_ExportCollegeUploadFailure(t *testing.T) {
	env := newTestEnv(t)
	svc := env.certificateService(&fakeExportStore{err: errors.New("bucket unreachable")})
	seedCertificate(t, env, "CERT-2026-001234", models.CertificateActive)

	_, err := svc.ExportCollege(context.Background(), "college-1")
	assert.True(t, errors.Is(err, ErrExportUnavailable))
}
