package services

import (
	"context"
	"time"

	"github.com/skillvault/skillvault-service/internal/events"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/repositories"
	"github.com/skillvault/skillvault-service/internal/validator"
	"github.com/skillvault/skillvault-service/pkg/jwt"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type SignupRequest = validator.SignupRequest
type LoginRequest = validator.LoginRequest
type CollegeRegisterRequest = validator.CollegeRegisterRequest
type IssueCertificateRequest = validator.IssueCertificateRequest
type GenerateQuestionsRequest = validator.GenerateQuestionsRequest
type GenerateByTopicRequest = validator.GenerateByTopicRequest
type CreateAssessmentRequest = validator.AssessmentCreateRequest
type RecordAttemptRequest = validator.AttemptRecordRequest
type UpdateProfileRequest = validator.UpdateProfileRequest
type ChangePasswordRequest = validator.ChangePasswordRequest
type AdminCreateUserRequest = validator.AdminCreateUserRequest
type ShortlistAddRequest = validator.ShortlistAddRequest
type ShortlistUpdateRequest = validator.ShortlistUpdateRequest

// AuthResult is returned by login and signup. Failures are reported in Error, never as a Go error.
type AuthResult struct {
	Success   bool         `json:"success"`
	Error     *AuthError   `json:"error,omitempty"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *models.User `json:"user,omitempty"`
	Redirect  string       `json:"redirect,omitempty"`
}

type LogoutResult struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

// VerificationResult is the public outcome of a certificate lookup
type VerificationResult struct {
	CertificateID string              `json:"certificate_id"`
	Status        VerificationStatus  `json:"status"`
	Message       string              `json:"message"`
	Certificate   *models.Certificate `json:"certificate,omitempty"`
}

// Err returns the VerificationError for a non-valid outcome
func (r *VerificationResult) Err() error {
	if r.Status == VerificationValid {
		return nil
	}
	return &VerificationError{Kind: r.Status, CertificateID: r.CertificateID}
}

type CertificateExport struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Count       int    `json:"count"`
	DownloadURL string `json:"download_url,omitempty"`
	Data        []byte `json:"-"`
}

// GenerationResult mirrors the generator's success/error contract
type GenerationResult struct {
	Success   bool                        `json:"success"`
	Questions []*models.GeneratedQuestion `json:"questions,omitempty"`
	Error     string                      `json:"error,omitempty"`
	Kind      GenerationErrorKind         `json:"kind,omitempty"`
	Model     string                      `json:"model,omitempty"`
}

type ProviderStatus struct {
	Model     string `json:"model"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type AttemptListResponse struct {
	Attempts []*models.AssessmentAttempt `json:"attempts"`
	Total    int64                       `json:"total"`
}

type AssessmentListResponse struct {
	Assessments []*models.Assessment `json:"assessments"`
	Total       int64                `json:"total"`
}

// DashboardResponse is the role-specific landing data. Only the section for the caller's role is set.
type DashboardResponse struct {
	Role      models.UserRole              `json:"role"`
	User      *models.User                 `json:"user"`
	Student   *StudentDashboard            `json:"student,omitempty"`
	College   *repositories.CollegeSummary `json:"college,omitempty"`
	Recruiter *RecruiterDashboard          `json:"recruiter,omitempty"`
	Admin     *AdminDashboard              `json:"admin,omitempty"`
}

type StudentDashboard struct {
	repositories.StudentSummary
	Certificates []*models.Certificate `json:"certificates"`
}

type RecruiterDashboard struct {
	ActiveCertificates int64                     `json:"active_certificates"`
	TopSkills          []repositories.SkillCount `json:"top_skills"`
	ShortlistCount     int64                     `json:"shortlist_count"`
}

// CandidateSearch narrows the student pool by demonstrated skill
type CandidateSearch struct {
	Skill         string
	CollegeID     *string
	MinPercentage *float64
	Limit         int
}

// Candidate is a student with completed attempts in the searched skill
type Candidate struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	CollegeID   *string             `json:"college_id,omitempty"`
	CollegeName *string             `json:"college_name,omitempty"`
	Verified    bool                `json:"verified"`
	SkillData   CandidateSkillScore `json:"skillData"`
}

type CandidateSkillScore struct {
	Skill              string  `json:"skill"`
	AvgScore           float64 `json:"avg_score"`
	BestScore          float64 `json:"best_score"`
	TotalAttempts      int64   `json:"total_attempts"`
	CertificatesEarned int64   `json:"certificates_earned"`
}

type AdminDashboard struct {
	UsersByRole       map[models.UserRole]int64      `json:"users_by_role"`
	CollegesByStatus  map[models.CollegeStatus]int64 `json:"colleges_by_status"`
	PendingColleges   []*models.College              `json:"pending_colleges"`
	ActiveCertificate int64                          `json:"active_certificates"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Login(ctx context.Context, email, password string) *AuthResult
	Signup(ctx context.Context, req *SignupRequest) *AuthResult
	Logout(ctx context.Context, token string) *LogoutResult
	// Authenticate resolves a session token to its live profile
	Authenticate(ctx context.Context, token string) (*models.User, *jwt.Claims, error)
}

type SessionService interface {
	// Open starts a session context for uid fed by that user's auth-state changes. It stops when ctx ends.
	Open(ctx context.Context, uid string) (*SessionContext, error)
}

type CollegeService interface {
	Register(ctx context.Context, req *CollegeRegisterRequest) (*models.College, error)
	Approve(ctx context.Context, id string) (*models.College, error)
	Reject(ctx context.Context, id string, reason *string) (*models.College, error)
	Get(ctx context.Context, id string) (*models.College, error)
	List(ctx context.Context) ([]*models.College, error)
	ListVerified(ctx context.Context) ([]*models.College, error)
	ListPending(ctx context.Context) ([]*models.College, error)
	IsVerified(ctx context.Context, id string) (bool, error)
}

type CertificateService interface {
	Verify(ctx context.Context, certificateID string) (*VerificationResult, error)
	Issue(ctx context.Context, req *IssueCertificateRequest) (*models.Certificate, error)
	IssueForAttempt(ctx context.Context, attemptID string, issuer *models.User) (*models.Certificate, error)
	GetByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
	GetByAttempt(ctx context.Context, attemptID string) (*models.Certificate, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Certificate, error)
	ListByCollege(ctx context.Context, collegeID string) ([]*models.Certificate, error)
	Revoke(ctx context.Context, certificateID string) (*models.Certificate, error)
	ExportCollege(ctx context.Context, collegeID string) (*CertificateExport, error)
}

type QuestionGeneratorService interface {
	Generate(ctx context.Context, req *GenerateQuestionsRequest) *GenerationResult
	GenerateByTopic(ctx context.Context, req *GenerateByTopicRequest) *GenerationResult
	ProviderStatus(ctx context.Context) *ProviderStatus
}

type AssessmentService interface {
	Create(ctx context.Context, req *CreateAssessmentRequest, creator *models.User) (*models.Assessment, error)
	Get(ctx context.Context, id string) (*models.Assessment, error)
	ListByCollege(ctx context.Context, collegeID string, activeOnly bool) (*AssessmentListResponse, error)
	SetActive(ctx context.Context, id string, active bool, actor *models.User) (*models.Assessment, error)
}

type AttemptService interface {
	Record(ctx context.Context, req *RecordAttemptRequest, student *models.User) (*models.AssessmentAttempt, error)
	Get(ctx context.Context, id string, viewer *models.User) (*models.AssessmentAttempt, error)
	ListByStudent(ctx context.Context, studentID string) (*AttemptListResponse, error)
	ListByAssessment(ctx context.Context, assessmentID string, viewer *models.User) (*AttemptListResponse, error)
}

type UserService interface {
	GetProfile(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, id string, req *ChangePasswordRequest) error
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	CreateUser(ctx context.Context, req *AdminCreateUserRequest) (*models.User, error)
	SetVerified(ctx context.Context, id string, verified bool) (*models.User, error)
}

type RecruiterService interface {
	SearchCandidates(ctx context.Context, search CandidateSearch) ([]*Candidate, error)
	StudentCertificates(ctx context.Context, studentID string) ([]*models.Certificate, error)
	AddToShortlist(ctx context.Context, recruiter *models.User, req *ShortlistAddRequest) (*models.ShortlistEntry, error)
	ListShortlist(ctx context.Context, recruiter *models.User) ([]*models.ShortlistEntry, error)
	UpdateShortlistEntry(ctx context.Context, recruiter *models.User, id string, req *ShortlistUpdateRequest) (*models.ShortlistEntry, error)
	RemoveFromShortlist(ctx context.Context, recruiter *models.User, id string) error
}

type DashboardService interface {
	GetDashboard(ctx context.Context, user *models.User) (*DashboardResponse, error)
}

// AuthStateBus carries identity state changes to live sessions
type AuthStateBus interface {
	Publish(ctx context.Context, change events.AuthStateChange) error
	Subscribe(ctx context.Context, uid string) (<-chan events.AuthStateChange, error)
}

// ExportStore uploads export files and returns a download link
type ExportStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Initialize(ctx context.Context) error

	Auth() AuthService
	Session() SessionService
	College() CollegeService
	Certificate() CertificateService
	QuestionGenerator() QuestionGeneratorService
	Assessment() AssessmentService
	Attempt() AttemptService
	User() UserService
	Dashboard() DashboardService
	Recruiter() RecruiterService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
