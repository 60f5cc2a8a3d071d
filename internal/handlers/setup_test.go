package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/llm"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/repositories/postgres"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
	"github.com/skillvault/skillvault-service/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnv struct {
	db       *gorm.DB
	repo     repositories.Repository
	tokens   *jwt.JWTService
	sessions *cache.SessionStore
	llm      *llm.MockProvider
	router   *gin.Engine
}

// newAPIEnv builds the full router over in-memory sqlite, miniredis and a scripted language model
func newAPIEnv(t *testing.T, responses ...llm.MockResponse) *apiEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Credential{},
		&models.College{},
		&models.Assessment{},
		&models.AssessmentAttempt{},
		&models.Certificate{},
		&models.ShortlistEntry{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := utils.NewNoopLogger()
	bus := events.NewAuthStateBus(log.Slog())
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:               db,
		RedisClient:      client,
		IdentityProvider: "local",
	})
	tokens := jwt.NewJWTService("test-secret", time.Hour)
	sessions := cache.NewSessionStore(client)
	provider := llm.NewMockProvider(responses...)
	m := metrics.New()

	sm := services.NewDefaultServiceManager(services.Dependencies{
		DB:        db,
		Repo:      repo,
		Logger:    log.Slog(),
		JWT:       tokens,
		Sessions:  sessions,
		AuthState: bus,
		Events:    events.NewMockPublisher(),
		LLM:       provider,
		Metrics:   m,
	}, "https://skillvault.test")
	require.NoError(t, sm.Initialize(context.Background()))
	t.Cleanup(func() { _ = sm.Shutdown(context.Background()) })

	router := gin.New()
	SetupMiddleware(router, log, m, "")
	NewHandlerManager(sm, log, m, HandlerOptions{QuestionGeneration: true}).SetupRoutes(router)

	return &apiEnv{db: db, repo: repo, tokens: tokens, sessions: sessions, llm: provider, router: router}
}

func (e *apiEnv) seedCollege(t *testing.T, name string, status models.CollegeStatus) *models.College {
	t.Helper()
	college := &models.College{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    "office@" + uuid.NewString()[:8] + ".edu",
		Location: "Chennai",
		Status:   status,
	}
	require.NoError(t, e.repo.College().Create(context.Background(), nil, college))
	return college
}

func (e *apiEnv) seedUser(t *testing.T, role models.UserRole, college *models.College) *models.User {
	t.Helper()
	user := &models.User{
		ID:    uuid.NewString(),
		Name:  "Test " + string(role),
		Email: uuid.NewString()[:8] + "@example.com",
		Role:  role,
	}
	if college != nil {
		user.CollegeID = &college.ID
		user.CollegeName = &college.Name
	}
	require.NoError(t, e.repo.User().Create(context.Background(), nil, user))
	return user
}

// sessionFor opens a stored session for user without going through the identity provider
func (e *apiEnv) sessionFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, sessionID, err := e.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	require.NoError(t, err)
	require.NoError(t, e.sessions.Create(context.Background(), sessionID, cache.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: time.Now(),
	}, time.Hour))
	return token
}

func (e *apiEnv) seedCertificate(t *testing.T, certificateID string, status models.CertificateStatus, collegeID string) {
	t.Helper()
	require.NoError(t, e.repo.Certificate().Create(context.Background(), nil, &models.Certificate{
		ID:              uuid.NewString(),
		CertificateID:   certificateID,
		StudentID:       "student-1",
		StudentName:     "Priya",
		StudentEmail:    "priya@example.com",
		CollegeID:       collegeID,
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
	}))
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(e *apiEnv, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
