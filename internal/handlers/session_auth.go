package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/guard"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

// SessionCookieName carries the session token for browser navigation
const SessionCookieName = "skillvault_session"

// SessionAuthMiddleware authenticates requests against stored sessions
type SessionAuthMiddleware struct {
	auth   services.AuthService
	logger utils.Logger
}

func NewSessionAuthMiddleware(auth services.AuthService, logger utils.Logger) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{auth: auth, logger: logger}
}

// AuthMiddleware requires a valid session token and loads the caller's profile
func (m *SessionAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			c.Abort()
			return
		}

		user, claims, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			m.rejectSession(c, err)
			return
		}

		setUserContext(c, user)
		c.Set("session_id", claims.SessionID())
		c.Set("session_token", token)

		c.Next()
	}
}

func (m *SessionAuthMiddleware) rejectSession(c *gin.Context, err error) {
	var profileErr *services.ProfileNotFoundError
	switch {
	case errors.Is(err, services.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "invalid or expired session",
		})
	case errors.As(err, &profileErr):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": profileErr.Error(),
		})
	default:
		utils.FromContext(c.Request.Context(), m.logger).Error("Failed to authenticate session", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "unavailable",
			"message": "session store unavailable",
		})
	}
	c.Abort()
}

// RequireRoleMiddleware answers 403 unless the caller has one of roles. Super admins pass every check.
func (m *SessionAuthMiddleware) RequireRoleMiddleware(roles ...models.UserRole) gin.HandlerFunc {
	allowed := guard.Roles(roles...)

	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "user role not found in context",
			})
			c.Abort()
			return
		}

		if role != models.RoleSuperAdmin && !allowed.Allows(role) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": fmt.Sprintf("insufficient permissions, required role: %v", roles),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// DashboardGuard protects /dashboard/<role> pages. The decision is recomputed on every request.
func (m *SessionAuthMiddleware) DashboardGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, ok := guard.RolesForPath(c.Request.URL.Path)
		if !ok {
			c.JSON(http.StatusNotFound, ErrorResponse{Message: "Unknown dashboard"})
			c.Abort()
			return
		}

		state := guard.State{}
		if token := sessionToken(c); token != "" {
			user, _, err := m.auth.Authenticate(c.Request.Context(), token)
			if err == nil {
				state.User = user
			} else if !errors.Is(err, services.ErrInvalidSession) {
				utils.FromContext(c.Request.Context(), m.logger).Warn("Dashboard session lookup failed", "error", err)
			}
		}

		decision := guard.Decide(state, allowed)
		switch decision {
		case guard.Render:
			setUserContext(c, state.User)
			c.Next()
		case guard.RedirectLogin, guard.RedirectHome:
			c.Redirect(http.StatusFound, guard.Target(decision, state))
			c.Abort()
		default:
			c.JSON(http.StatusAccepted, gin.H{"loading": true})
			c.Abort()
		}
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
		return "", errors.New("invalid authorization header format")
	}
	return tokenParts[1], nil
}

// sessionToken reads the bearer token, falling back to the session cookie
func sessionToken(c *gin.Context) string {
	if token, err := bearerToken(c); err == nil {
		return token
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

func setUserContext(c *gin.Context, user *models.User) {
	c.Set("user_id", user.ID)
	c.Set("user", user)
	c.Set("user_role", user.Role)
	c.Set("user_email", user.Email)
}

// GetUserFromContext extracts the authenticated profile from gin context
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok
}

// GetUserRoleFromContext extracts user role from gin context
func GetUserRoleFromContext(c *gin.Context) (models.UserRole, bool) {
	value, exists := c.Get("user_role")
	if !exists {
		return "", false
	}
	role, ok := value.(models.UserRole)
	return role, ok
}
