package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/verify/:certificateId", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/verify/CERT-1", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/verify/:certificateId", "200")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.Verification("valid")
	m.Verification("revoked")
	m.Verification("valid")
	m.CertificateIssued()
	m.CollegeTransition("verified")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.verifications.WithLabelValues("valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.certificatesIssued))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), "skillvault_college_status_changes_total"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AuthAttempt("login", "success")
		m.Verification("valid")
		m.CertificateIssued()
		m.CertificateRevoked()
		m.CollegeTransition("rejected")
		m.QuestionGeneration("mock", "success")
	})
}
