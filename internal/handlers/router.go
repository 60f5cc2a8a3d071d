package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

const serviceName = "skillvault-service"

// HandlerOptions toggles optional surfaces
type HandlerOptions struct {
	SecureCookies bool
	// QuestionGeneration mounts /questions; off when no language model is configured
	QuestionGeneration bool
}

type HandlerManager struct {
	authHandler        *AuthHandler
	collegeHandler     *CollegeHandler
	certificateHandler *CertificateHandler
	questionHandler    *QuestionHandler
	assessmentHandler  *AssessmentHandler
	attemptHandler     *AttemptHandler
	userHandler        *UserHandler
	dashboardHandler   *DashboardHandler
	recruiterHandler   *RecruiterHandler
	authMiddleware     *SessionAuthMiddleware

	serviceManager services.ServiceManager
	metrics        *metrics.Metrics
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	m *metrics.Metrics,
	opts HandlerOptions,
) *HandlerManager {
	hm := &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Auth(), serviceManager.Session(), opts.SecureCookies, logger),
		collegeHandler:     NewCollegeHandler(serviceManager.College(), logger),
		certificateHandler: NewCertificateHandler(serviceManager.Certificate(), logger),
		assessmentHandler:  NewAssessmentHandler(serviceManager.Assessment(), logger),
		attemptHandler:     NewAttemptHandler(serviceManager.Attempt(), logger),
		userHandler:        NewUserHandler(serviceManager.User(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), logger),
		recruiterHandler:   NewRecruiterHandler(serviceManager.Recruiter(), logger),
		authMiddleware:     NewSessionAuthMiddleware(serviceManager.Auth(), logger),
		serviceManager:     serviceManager,
		metrics:            m,
	}
	if opts.QuestionGeneration {
		hm.questionHandler = NewQuestionHandler(serviceManager.QuestionGenerator(), logger)
	}
	return hm
}

// SetupRoutes sets up all routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)
	if hm.metrics != nil {
		router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))
	}

	// Public verification page and guarded role dashboards
	router.GET("/verify/:certificateId", hm.certificateHandler.VerifyCertificate)
	router.GET("/dashboard/:role", hm.authMiddleware.DashboardGuard(), hm.dashboardHandler.GetDashboard)

	v1 := router.Group("/api/v1")

	// Public API
	{
		auth := v1.Group("/auth")
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/signup", hm.authHandler.Signup)
		auth.POST("/logout", hm.authHandler.Logout)

		v1.POST("/colleges/register", hm.collegeHandler.RegisterCollege)
		v1.GET("/colleges/verified", hm.collegeHandler.ListVerifiedColleges)
		v1.GET("/certificates/verify/:certificateId", hm.certificateHandler.VerifyCertificate)
	}

	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		authed.GET("/auth/me", hm.authHandler.Me)
		authed.GET("/session", hm.authHandler.Session)
		authed.GET("/session/stream", hm.authHandler.SessionStream)
		authed.GET("/dashboard", hm.dashboardHandler.GetDashboard)
		authed.GET("/colleges/:id", hm.collegeHandler.GetCollege)

		users := authed.Group("/users")
		{
			users.PUT("/me", hm.userHandler.UpdateProfile)
			users.POST("/me/password", hm.userHandler.ChangePassword)
		}

		staff := hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty, models.RoleCollegeAdmin)
		collegeAdmin := hm.authMiddleware.RequireRoleMiddleware(models.RoleCollegeAdmin)
		student := hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent)

		certificates := authed.Group("/certificates")
		{
			certificates.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleSuperAdmin), hm.certificateHandler.IssueCertificate)
			certificates.POST("/attempts/:attemptId", staff, hm.certificateHandler.IssueForAttempt)
			certificates.GET("/me", student, hm.certificateHandler.ListMyCertificates)
			certificates.GET("/college/:collegeId", staff, hm.certificateHandler.ListCollegeCertificates)
			certificates.GET("/college/:collegeId/export", collegeAdmin, hm.certificateHandler.ExportCollegeCertificates)
			certificates.POST("/:certificateId/revoke", collegeAdmin, hm.certificateHandler.RevokeCertificate)
		}

		if hm.questionHandler != nil {
			questions := authed.Group("/questions", staff)
			{
				questions.POST("/generate", hm.questionHandler.GenerateQuestions)
				questions.POST("/generate/topic", hm.questionHandler.GenerateByTopic)
				questions.GET("/status", hm.questionHandler.ProviderStatus)
			}
		}

		assessments := authed.Group("/assessments")
		{
			assessments.POST("", staff, hm.assessmentHandler.CreateAssessment)
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.PUT("/:id/active", staff, hm.assessmentHandler.SetAssessmentActive)
		}

		attempts := authed.Group("/attempts")
		{
			attempts.POST("", student, hm.attemptHandler.RecordAttempt)
			attempts.GET("/me", student, hm.attemptHandler.ListMyAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/assessment/:id", staff, hm.attemptHandler.ListAssessmentAttempts)
		}

		recruiter := authed.Group("/recruiter", hm.authMiddleware.RequireRoleMiddleware(models.RoleRecruiter))
		{
			recruiter.GET("/candidates", hm.recruiterHandler.SearchCandidates)
			recruiter.GET("/students/:id/certificates", hm.recruiterHandler.StudentCertificates)
			recruiter.GET("/shortlist", hm.recruiterHandler.ListShortlist)
			recruiter.POST("/shortlist", hm.recruiterHandler.AddToShortlist)
			recruiter.PUT("/shortlist/:id", hm.recruiterHandler.UpdateShortlistEntry)
			recruiter.DELETE("/shortlist/:id", hm.recruiterHandler.RemoveFromShortlist)
		}

		admin := authed.Group("/admin", hm.authMiddleware.RequireRoleMiddleware(models.RoleSuperAdmin))
		{
			admin.GET("/colleges", hm.collegeHandler.ListColleges)
			admin.GET("/colleges/pending", hm.collegeHandler.ListPendingColleges)
			admin.PUT("/colleges/:id/approve", hm.collegeHandler.ApproveCollege)
			admin.PUT("/colleges/:id/reject", hm.collegeHandler.RejectCollege)

			admin.GET("/users", hm.userHandler.ListUsers)
			admin.POST("/users", hm.userHandler.CreateUser)
			admin.PUT("/users/:id/verified", hm.userHandler.SetVerified)
		}
	}
}

// HealthCheck reports whether the database answers
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
