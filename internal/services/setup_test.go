package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/repositories/postgres"
	"github.com/skillvault/skillvault-service/internal/utils"
	"github.com/skillvault/skillvault-service/internal/validator"
	"github.com/skillvault/skillvault-service/pkg/jwt"
)

// testEnv wires real repositories over in-memory sqlite and miniredis
type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	redis     *miniredis.Miniredis
	sessions  *cache.SessionStore
	tokens    *jwt.JWTService
	authState *events.AuthStateBus
	events    *events.MockPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
}

func newTestEnv(t *testing.T) *testEnv {
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

	log := utils.NewNoopLogger().Slog()
	bus := events.NewAuthStateBus(log)
	t.Cleanup(func() { _ = bus.Close() })

	return &testEnv{
		db: db,
		repo: postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
			DB:               db,
			RedisClient:      client,
			IdentityProvider: "local",
		}),
		redis:     mr,
		sessions:  cache.NewSessionStore(client),
		tokens:    jwt.NewJWTService("test-secret", time.Hour),
		authState: bus,
		events:    events.NewMockPublisher(),
		metrics:   metrics.New(),
		logger:    log,
		validator: validator.New(),
	}
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(e.repo, e.tokens, e.sessions, e.authState, e.events, e.metrics, e.logger, e.validator)
}

func (e *testEnv) collegeService() CollegeService {
	return NewCollegeService(e.repo, e.events, e.metrics, e.logger, e.validator)
}

func (e *testEnv) certificateService(exports ExportStore) *certificateService {
	svc := NewCertificateService(e.repo, exports, e.events, e.metrics, e.logger, e.validator, "https://skillvault.test")
	return svc.(*certificateService)
}

func (e *testEnv) seedCollege(t *testing.T, name string, status models.CollegeStatus) *models.College {
	t.Helper()
	college := &models.College{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    "admissions@" + uuid.NewString()[:8] + ".edu",
		Location: "Pune",
		Status:   status,
	}
	require.NoError(t, e.repo.College().Create(context.Background(), nil, college))
	return college
}

func (e *testEnv) seedUser(t *testing.T, role models.UserRole, college *models.College) *models.User {
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

func (e *testEnv) seedAssessment(t *testing.T, creator *models.User, totalMarks, passingMarks int) *models.Assessment {
	t.Helper()
	assessment := &models.Assessment{
		ID:           uuid.NewString(),
		Title:        "Go Fundamentals",
		Type:         models.AssessmentMCQ,
		Skill:        "Go",
		Difficulty:   models.DifficultyMedium,
		Duration:     30,
		TotalMarks:   totalMarks,
		PassingMarks: passingMarks,
		CreatedBy:    creator.ID,
		IsActive:     true,
	}
	if creator.CollegeID != nil {
		assessment.CollegeID = *creator.CollegeID
	}
	require.NoError(t, e.repo.Assessment().Create(context.Background(), nil, assessment))
	return assessment
}

func strPtr(s string) *string { return &s }
