package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/config"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/repositories/casdoor"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user        repositories.UserRepository
	identity    repositories.IdentityRepository
	college     repositories.CollegeRepository
	assessment  repositories.AssessmentRepository
	attempt     repositories.AttemptRepository
	certificate repositories.CertificateRepository
	dashboard   repositories.DashboardRepository
	recruiter   repositories.RecruiterRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client

	// IdentityProvider is "casdoor" or "local"
	IdentityProvider string
	CasdoorConfig    config.CasdoorConfig

	// Identity overrides the provider selection when set
	Identity repositories.IdentityRepository
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(cfg RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           cfg.DB,
		redisClient:  cfg.RedisClient,
		cacheManager: cache.NewCacheManager(cfg.RedisClient),
	}
	repo.bind(cfg.DB)

	switch {
	case cfg.Identity != nil:
		repo.identity = cfg.Identity
	case strings.EqualFold(cfg.IdentityProvider, "casdoor"):
		repo.identity = casdoor.NewIdentityCasdoor(cfg.CasdoorConfig)
	default:
		repo.identity = NewCredentialPostgreSQL(cfg.DB)
	}

	return repo
}

// bind (re)creates the database-backed sub-repositories on db
func (r *PostgreSQLRepository) bind(db *gorm.DB) {
	r.user = NewUserPostgreSQL(db, r.redisClient)
	r.college = NewCollegePostgreSQL(db, r.cacheManager)
	r.assessment = NewAssessmentPostgreSQL(db)
	r.attempt = NewAttemptPostgreSQL(db)
	r.certificate = NewCertificatePostgreSQL(db)
	r.dashboard = NewDashboardRepository(db, r.cacheManager)
	r.recruiter = NewRecruiterPostgreSQL(db)
}

// User returns the profile repository
func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

// Identity returns the identity provider adapter
func (r *PostgreSQLRepository) Identity() repositories.IdentityRepository {
	return r.identity
}

// College returns the college repository
func (r *PostgreSQLRepository) College() repositories.CollegeRepository {
	return r.college
}

// Assessment returns the assessment repository
func (r *PostgreSQLRepository) Assessment() repositories.AssessmentRepository {
	return r.assessment
}

// Attempt returns the attempt repository
func (r *PostgreSQLRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

// Certificate returns the certificate repository
func (r *PostgreSQLRepository) Certificate() repositories.CertificateRepository {
	return r.certificate
}

// Dashboard returns the dashboard repository
func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

// Recruiter returns the candidate search and shortlist repository
func (r *PostgreSQLRepository) Recruiter() repositories.RecruiterRepository {
	return r.recruiter
}

// WithTransaction executes a function within a database transaction
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}
		txRepo.bind(tx)

		// The identity provider is external and never joins the transaction
		txRepo.identity = r.identity

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(cfg RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: cfg,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
