package repositories

import "context"

// Repository aggregates every repository used by the services
type Repository interface {
	// Profiles and identities
	User() UserRepository
	Identity() IdentityRepository

	// Colleges
	College() CollegeRepository

	// Assessments and attempts
	Assessment() AssessmentRepository
	Attempt() AttemptRepository

	// Certificates
	Certificate() CertificateRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Candidate search and shortlists
	Recruiter() RecruiterRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
