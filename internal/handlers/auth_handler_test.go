package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
)

func TestAuthFlow_SignupMeLogout(t *testing.T) {
	env := newAPIEnv(t)
	acme := env.seedCollege(t, "Acme Tech", models.CollegeVerified)

	w := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email":      "priya@example.com",
		"password":   "s3cret-pass",
		"name":       "Priya",
		"role":       "student",
		"college_id": acme.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var signup services.AuthResult
	decode(t, w, &signup)
	assert.True(t, signup.Success)
	assert.Equal(t, "/dashboard/student", signup.Redirect)
	require.NotEmpty(t, signup.Token)
	assert.Contains(t, w.Header().Get("Set-Cookie"), SessionCookieName+"=")

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", signup.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "priya@example.com", me.Email)
	assert.False(t, me.Verified)

	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", signup.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logout services.LogoutResult
	decode(t, w, &logout)
	assert.Equal(t, services.LogoutResult{Success: true, Redirect: "/"}, logout)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", signup.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Logging out twice is harmless
	w = env.do(t, http.MethodPost, "/api/v1/auth/logout", signup.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_Failures(t *testing.T) {
	env := newAPIEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email": "rita@example.com", "password": "s3cret-pass", "name": "Rita", "role": "recruiter",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
		wantKind   services.AuthErrorKind
		wantMsg    string
	}{
		{name: "wrong password", email: "rita@example.com", password: "nope-nope", wantStatus: http.StatusUnauthorized, wantKind: services.AuthInvalidCredentials, wantMsg: "Incorrect password"},
		{name: "unknown email", email: "ghost@example.com", password: "whatever", wantStatus: http.StatusUnauthorized, wantKind: services.AuthUserNotFound, wantMsg: "No account found with this email"},
		{name: "malformed email", email: "not-an-email", password: "whatever", wantStatus: http.StatusBadRequest, wantKind: services.AuthInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": tt.email, "password": tt.password})
			assert.Equal(t, tt.wantStatus, w.Code)

			var result services.AuthResult
			decode(t, w, &result)
			assert.False(t, result.Success)
			require.NotNil(t, result.Error)
			assert.Equal(t, tt.wantKind, result.Error.Kind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, result.Error.Message)
			}
			assert.Empty(t, result.Token)
		})
	}
}

func TestSignup_UnverifiedCollegeRejected(t *testing.T) {
	env := newAPIEnv(t)
	pending := env.seedCollege(t, "Pending Poly", models.CollegePending)

	w := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"email": "sam@example.com", "password": "s3cret-pass", "name": "Sam", "role": "faculty", "college_id": pending.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var result services.AuthResult
	decode(t, w, &result)
	require.NotNil(t, result.Error)
	assert.Equal(t, "Selected college is not verified. Please contact your college administrator.", result.Error.Message)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	env := newAPIEnv(t)

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{name: "missing header", header: "", wantMsg: "authorization header missing"},
		{name: "wrong scheme", header: "Basic abc", wantMsg: "invalid authorization header format"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantMsg: "invalid or expired session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newRequest(http.MethodGet, "/api/v1/auth/me")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(env, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]string
			decode(t, w, &body)
			assert.Equal(t, "unauthorized", body["error"])
			assert.Equal(t, tt.wantMsg, body["message"])
		})
	}
}

func TestAuthMiddleware_SessionWithoutProfile(t *testing.T) {
	env := newAPIEnv(t)
	token := env.sessionFor(t, &models.User{ID: "ghost", Email: "ghost@example.com", Role: models.RoleStudent})

	w := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User profile not found")
}

func TestSessionSnapshot(t *testing.T) {
	env := newAPIEnv(t)
	user := env.seedUser(t, models.RoleRecruiter, nil)

	w := env.do(t, http.MethodGet, "/api/v1/session", env.sessionFor(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state services.SessionState
	decode(t, w, &state)
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.User)
	assert.Equal(t, user.ID, state.User.ID)
}
