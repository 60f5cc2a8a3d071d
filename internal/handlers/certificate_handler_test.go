package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
)

func TestVerifyCertificate_PublicRoutes(t *testing.T) {
	env := newAPIEnv(t)
	env.seedCertificate(t, "CERT-2026-001234", models.CertificateActive, "college-1")
	env.seedCertificate(t, "CERT-2026-001235", models.CertificateRevoked, "college-1")

	tests := []struct {
		name       string
		id         string
		wantCode   int
		wantStatus services.VerificationStatus
	}{
		{name: "valid", id: "CERT-2026-001234", wantCode: http.StatusOK, wantStatus: services.VerificationValid},
		{name: "revoked", id: "CERT-2026-001235", wantCode: http.StatusOK, wantStatus: services.VerificationRevoked},
		{name: "unknown", id: "CERT-NOPE", wantCode: http.StatusNotFound, wantStatus: services.VerificationNotFound},
	}

	for _, tt := range tests {
		for _, prefix := range []string{"/verify/", "/api/v1/certificates/verify/"} {
			t.Run(tt.name+" "+prefix, func(t *testing.T) {
				w := env.do(t, http.MethodGet, prefix+tt.id, "", nil)
				assert.Equal(t, tt.wantCode, w.Code)

				var result services.VerificationResult
				decode(t, w, &result)
				assert.Equal(t, tt.wantStatus, result.Status)
				assert.Equal(t, tt.id, result.CertificateID)
			})
		}
	}
}

func TestVerifyCertificate_StorageDown(t *testing.T) {
	env := newAPIEnv(t)
	env.seedCertificate(t, "CERT-2026-001234", models.CertificateActive, "college-1")

	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := env.do(t, http.MethodGet, "/verify/CERT-2026-001234", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "not_found")
}

func TestRevokeCertificate_CollegeScope(t *testing.T) {
	env := newAPIEnv(t)
	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)
	other := env.seedCollege(t, "Other", models.CollegeVerified)
	env.seedCertificate(t, "CERT-2026-001234", models.CertificateActive, acme.ID)

	outsider := env.sessionFor(t, env.seedUser(t, models.RoleCollegeAdmin, other))
	w := env.do(t, http.MethodPost, "/api/v1/certificates/CERT-2026-001234/revoke", outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	faculty := env.sessionFor(t, env.seedUser(t, models.RoleFaculty, acme))
	w = env.do(t, http.MethodPost, "/api/v1/certificates/CERT-2026-001234/revoke", faculty, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := env.sessionFor(t, env.seedUser(t, models.RoleCollegeAdmin, acme))
	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodPost, "/api/v1/certificates/CERT-2026-001234/revoke", admin, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/verify/CERT-2026-001234", "", nil)
	var result services.VerificationResult
	decode(t, w, &result)
	assert.Equal(t, services.VerificationRevoked, result.Status)

	w = env.do(t, http.MethodPost, "/api/v1/certificates/CERT-MISSING/revoke", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIssueForAttempt_OverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)
	faculty := env.seedUser(t, models.RoleFaculty, acme)
	student := env.seedUser(t, models.RoleStudent, acme)
	facultyToken := env.sessionFor(t, faculty)
	studentToken := env.sessionFor(t, student)

	w := env.do(t, http.MethodPost, "/api/v1/assessments", facultyToken, map[string]interface{}{
		"title":         "Go Fundamentals",
		"type":          "mcq",
		"skill":         "Go",
		"difficulty":    "medium",
		"duration":      30,
		"total_marks":   50,
		"passing_marks": 30,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var assessment models.Assessment
	decode(t, w, &assessment)

	w = env.do(t, http.MethodPost, "/api/v1/attempts", studentToken, map[string]interface{}{
		"assessment_id": assessment.ID,
		"score":         42,
		"time_spent":    900,
		"answers":       map[string]int{"q1": 1},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var attempt models.AssessmentAttempt
	decode(t, w, &attempt)
	assert.Equal(t, 84.0, attempt.Percentage)

	// Students cannot issue their own certificates
	w = env.do(t, http.MethodPost, "/api/v1/certificates/attempts/"+attempt.ID, studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/certificates/attempts/"+attempt.ID, facultyToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cert models.Certificate
	decode(t, w, &cert)
	assert.Equal(t, "https://skillvault.test/verify/"+cert.CertificateID, cert.VerificationURL)

	w = env.do(t, http.MethodPost, "/api/v1/certificates/attempts/"+attempt.ID, facultyToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	var errResp ErrorResponse
	decode(t, w, &errResp)
	assert.Equal(t, "Certificate already exists for this attempt", errResp.Message)

	w = env.do(t, http.MethodGet, "/api/v1/certificates/me", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.Certificate
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, cert.CertificateID, mine[0].CertificateID)
}

func TestExportCollegeCertificates_ReturnsWorkbook(t *testing.T) {
	env := newAPIEnv(t)
	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)
	env.seedCertificate(t, "CERT-2026-001234", models.CertificateActive, acme.ID)
	admin := env.sessionFor(t, env.seedUser(t, models.RoleCollegeAdmin, acme))

	w := env.do(t, http.MethodGet, "/api/v1/certificates/college/"+acme.ID+"/export", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "certificates-"+acme.ID)
	assert.NotEmpty(t, w.Body.Bytes())
}
