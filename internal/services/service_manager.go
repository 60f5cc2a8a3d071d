package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/skillvault/skillvault-service/internal/cache"
	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/llm"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
	"github.com/skillvault/skillvault-service/pkg/jwt"
)

// Dependencies are the shared collaborators handed to every service
type Dependencies struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.Validator

	JWT       *jwt.JWTService
	Sessions  *cache.SessionStore
	AuthState AuthStateBus
	Events    events.Publisher
	LLM       llm.Provider
	Exports   ExportStore
	Metrics   *metrics.Metrics
}

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// AppURL is the public origin used in certificate verification links
	AppURL string

	// Service-specific configurations
	Auth              ServiceConfig
	College           ServiceConfig
	Certificate       ServiceConfig
	QuestionGenerator ServiceConfig
	Assessment        ServiceConfig
	Attempt           ServiceConfig
	User              ServiceConfig
	Recruiter         ServiceConfig

	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled bool
	Timeout time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   Dependencies
	logger *slog.Logger
	config ServiceManagerConfig

	// Service instances
	authService       AuthService
	sessionService    SessionService
	collegeService    CollegeService
	certificateSvc    CertificateService
	generatorService  QuestionGeneratorService
	assessmentService AssessmentService
	attemptService    AttemptService
	userService       UserService
	dashboardService  DashboardService
	recruiterService  RecruiterService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps Dependencies, config ServiceManagerConfig) ServiceManager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &serviceManager{
		deps:   deps,
		logger: deps.Logger,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with every service enabled
func NewDefaultServiceManager(deps Dependencies, appURL string) ServiceManager {
	enabled := ServiceConfig{Enabled: true, Timeout: 30 * time.Second}
	config := ServiceManagerConfig{
		AppURL:            appURL,
		Auth:              enabled,
		College:           enabled,
		Certificate:       enabled,
		QuestionGenerator: ServiceConfig{Enabled: true, Timeout: 60 * time.Second},
		Assessment:        enabled,
		Attempt:           enabled,
		User:              enabled,
		Recruiter:         enabled,
		DefaultTimeout:    30 * time.Second,
	}

	return NewServiceManager(deps, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(_ context.Context) error {
	d := sm.deps
	if d.Repo == nil {
		return errors.New("repository is required")
	}

	if sm.config.Auth.Enabled {
		if d.JWT == nil || d.Sessions == nil {
			return errors.New("auth service requires a token service and a session store")
		}
		sm.authService = NewAuthService(d.Repo, d.JWT, d.Sessions, d.AuthState, d.Events, d.Metrics, d.Logger, d.Validator)
		sm.logger.Info("Auth service initialized")

		if d.AuthState != nil {
			sm.sessionService = NewSessionService(d.Repo, d.AuthState, d.Logger)
			sm.logger.Info("Session service initialized")
		}
	}

	if sm.config.College.Enabled {
		sm.collegeService = NewCollegeService(d.Repo, d.Events, d.Metrics, d.Logger, d.Validator)
		sm.logger.Info("College service initialized")
	}

	if sm.config.Certificate.Enabled {
		sm.certificateSvc = NewCertificateService(d.Repo, d.Exports, d.Events, d.Metrics, d.Logger, d.Validator, sm.config.AppURL)
		sm.logger.Info("Certificate service initialized")
	}

	if sm.config.QuestionGenerator.Enabled && d.LLM != nil {
		sm.generatorService = NewQuestionGeneratorService(d.LLM, d.Metrics, d.Logger, d.Validator, sm.config.QuestionGenerator.Timeout)
		sm.logger.Info("Question generator service initialized", "model", d.LLM.ModelID())
	}

	if sm.config.Assessment.Enabled {
		sm.assessmentService = NewAssessmentService(d.Repo, d.Logger, d.Validator)
		sm.logger.Info("Assessment service initialized")
	}

	if sm.config.Attempt.Enabled {
		sm.attemptService = NewAttemptService(d.Repo, d.Logger, d.Validator)
		sm.logger.Info("Attempt service initialized")
	}

	if sm.config.User.Enabled {
		sm.userService = NewUserService(d.Repo, d.Logger, d.Validator)
		sm.logger.Info("User service initialized")
	}

	if sm.config.Recruiter.Enabled {
		sm.recruiterService = NewRecruiterService(d.Repo, d.Events, d.Logger, d.Validator)
		sm.logger.Info("Recruiter service initialized")
	}

	sm.dashboardService = NewDashboardService(d.Repo, d.Logger)
	sm.logger.Info("Dashboard service initialized")

	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.authService != nil {
		return sm.authService
	}
	panic("auth service not enabled or not initialized")
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.sessionService != nil {
		return sm.sessionService
	}
	panic("session service not enabled or not initialized")
}

func (sm *serviceManager) College() CollegeService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.collegeService != nil {
		return sm.collegeService
	}
	panic("college service not enabled or not initialized")
}

func (sm *serviceManager) Certificate() CertificateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.certificateSvc != nil {
		return sm.certificateSvc
	}
	panic("certificate service not enabled or not initialized")
}

func (sm *serviceManager) QuestionGenerator() QuestionGeneratorService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.generatorService != nil {
		return sm.generatorService
	}
	panic("question generator service not enabled or not initialized")
}

func (sm *serviceManager) Assessment() AssessmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.assessmentService != nil {
		return sm.assessmentService
	}
	panic("assessment service not enabled or not initialized")
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.attemptService != nil {
		return sm.attemptService
	}
	panic("attempt service not enabled or not initialized")
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.userService != nil {
		return sm.userService
	}
	panic("user service not enabled or not initialized")
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.dashboardService != nil {
		return sm.dashboardService
	}
	panic("dashboard service not initialized")
}

func (sm *serviceManager) Recruiter() RecruiterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()

	if sm.recruiterService != nil {
		return sm.recruiterService
	}
	panic("recruiter service not enabled or not initialized")
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	var errs []error
	if sm.deps.Events != nil {
		if err := sm.deps.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}
	if closer, ok := sm.deps.AuthState.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close auth state bus: %w", err))
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down")

	return errors.Join(errs...)
}

// publishEvent emits a domain event. Failures are logged and never undo the caller's write.
func publishEvent(ctx context.Context, publisher events.Publisher, logger *slog.Logger, eventType string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(context.WithoutCancel(ctx), eventType, payload); err != nil {
		logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}
