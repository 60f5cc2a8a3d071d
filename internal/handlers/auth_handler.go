package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/guard"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	authService    services.AuthService
	sessionService services.SessionService
	secureCookies  bool
}

func NewAuthHandler(authService services.AuthService, sessionService services.SessionService, secureCookies bool, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    NewBaseHandler(logger),
		authService:    authService,
		sessionService: sessionService,
		secureCookies:  secureCookies,
	}
}

// Login signs a user in
// @Summary Login
// @Description Sign in with email and password. Failures are reported in the result body.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Credentials"
// @Success 200 {object} services.AuthResult
// @Failure 400 {object} services.AuthResult
// @Failure 401 {object} services.AuthResult
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Login attempt")

	result := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if !result.Success {
		c.JSON(authFailureStatus(result.Error), result)
		return
	}

	h.setSessionCookie(c, result)
	c.JSON(http.StatusOK, result)
}

// Signup creates an account
// @Summary Sign up
// @Description Create an identity and profile. Affiliated roles need a verified college.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.SignupRequest true "Signup data"
// @Success 201 {object} services.AuthResult
// @Failure 400 {object} services.AuthResult
// @Failure 409 {object} services.AuthResult
// @Failure 422 {object} services.AuthResult
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Signup attempt", "role", req.Role)

	result := h.authService.Signup(c.Request.Context(), &req)
	if !result.Success {
		c.JSON(authFailureStatus(result.Error), result)
		return
	}

	h.setSessionCookie(c, result)
	c.JSON(http.StatusCreated, result)
}

// Logout ends the current session
// @Summary Logout
// @Description Delete the session. Calling it without a valid session still succeeds.
// @Tags auth
// @Produce json
// @Success 200 {object} services.LogoutResult
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	result := h.authService.Logout(c.Request.Context(), sessionToken(c))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, result)
}

// Me returns the authenticated profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// Session returns the current session snapshot
// @Summary Session snapshot
// @Tags session
// @Produce json
// @Success 200 {object} services.SessionState
// @Router /session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, guard.State{User: user})
}

// SessionStream streams session state changes as server-sent events
// @Summary Session stream
// @Description Emits a "session" event for every state change until the client disconnects or signs out.
// @Tags session
// @Produce text/event-stream
// @Success 200 {object} services.SessionState
// @Router /session/stream [get]
func (h *AuthHandler) SessionStream(c *gin.Context) {
	userID, ok := GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	h.LogRequest(c, "Opening session stream")

	sc, err := h.sessionService.Open(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	states, unsubscribe := sc.Subscribe()
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		state, ok := <-states
		if !ok {
			return false
		}
		c.SSEvent("session", state)
		// A signed-out session has nothing more to report
		return state.IsLoading || state.User != nil
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, result *services.AuthResult) {
	maxAge := 0
	if result.ExpiresAt != nil {
		maxAge = int(time.Until(*result.ExpiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, result.Token, maxAge, "/", "", h.secureCookies, true)
}

func authFailureStatus(err *services.AuthError) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Kind {
	case services.AuthInvalidCredentials, services.AuthUserNotFound, services.AuthProfileNotFound:
		return http.StatusUnauthorized
	case services.AuthAccountDisabled:
		return http.StatusForbidden
	case services.AuthEmailInUse:
		return http.StatusConflict
	case services.AuthCollegeNotVerified:
		return http.StatusUnprocessableEntity
	case services.AuthInvalidEmail, services.AuthWeakPassword, services.AuthInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
