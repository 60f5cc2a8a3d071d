package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/services"
)

func (e *apiEnv) seedCompletedAttempt(t *testing.T, student *models.User, skill string, percentage float64) {
	t.Helper()
	ctx := context.Background()

	assessment := &models.Assessment{
		ID:           uuid.NewString(),
		Title:        skill + " Basics",
		Type:         models.AssessmentMCQ,
		Skill:        skill,
		Difficulty:   models.DifficultyEasy,
		Duration:     30,
		TotalMarks:   100,
		PassingMarks: 70,
		CreatedBy:    "faculty-1",
		IsActive:     true,
	}
	require.NoError(t, e.repo.Assessment().Create(ctx, nil, assessment))
	require.NoError(t, e.repo.Attempt().Create(ctx, nil, &models.AssessmentAttempt{
		ID:           uuid.NewString(),
		AssessmentID: assessment.ID,
		StudentID:    student.ID,
		Score:        percentage,
		TotalMarks:   100,
		Percentage:   percentage,
		Status:       models.AttemptCompleted,
		StartedAt:    time.Now().UTC(),
	}))
}

func TestRecruiterRoutes_RequireRecruiter(t *testing.T) {
	env := newAPIEnv(t)
	student := env.seedUser(t, models.RoleStudent, nil)
	admin := env.seedUser(t, models.RoleSuperAdmin, nil)

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{name: "anonymous", token: "", wantCode: http.StatusUnauthorized},
		{name: "student", token: env.sessionFor(t, student), wantCode: http.StatusForbidden},
		{name: "super-admin", token: env.sessionFor(t, admin), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/v1/recruiter/shortlist", tt.token, nil)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestRecruiterRoutes_SearchAndShortlist(t *testing.T) {
	env := newAPIEnv(t)
	college := env.seedCollege(t, "Acme Tech", models.CollegeVerified)
	student := env.seedUser(t, models.RoleStudent, college)
	env.seedCompletedAttempt(t, student, "Kubernetes", 88)

	token := env.sessionFor(t, env.seedUser(t, models.RoleRecruiter, nil))

	w := env.do(t, http.MethodGet, "/api/v1/recruiter/candidates?skill=kube&min_score=80", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var candidates []services.Candidate
	decode(t, w, &candidates)
	require.Len(t, candidates, 1)
	assert.Equal(t, student.ID, candidates[0].ID)
	assert.Equal(t, float64(88), candidates[0].SkillData.AvgScore)

	w = env.do(t, http.MethodGet, "/api/v1/recruiter/candidates?skill=kube&min_score=high", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recruiter/candidates", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recruiter/students/"+student.ID+"/certificates", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/recruiter/shortlist", token, map[string]any{"student_id": student.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry models.ShortlistEntry
	decode(t, w, &entry)
	assert.Equal(t, models.ShortlistNew, entry.Status)
	assert.Equal(t, "Acme Tech", entry.CollegeName)

	w = env.do(t, http.MethodPost, "/api/v1/recruiter/shortlist", token, map[string]any{"student_id": student.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Student already shortlisted")

	w = env.do(t, http.MethodPost, "/api/v1/recruiter/shortlist", token, map[string]any{"student_id": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/recruiter/shortlist/"+entry.ID, token, map[string]any{"status": "hired"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &entry)
	assert.Equal(t, models.ShortlistHired, entry.Status)

	w = env.do(t, http.MethodPut, "/api/v1/recruiter/shortlist/"+entry.ID, token, map[string]any{"status": "ghosted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/recruiter/shortlist", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.ShortlistEntry
	decode(t, w, &entries)
	assert.Len(t, entries, 1)

	w = env.do(t, http.MethodDelete, "/api/v1/recruiter/shortlist/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/recruiter/shortlist/"+entry.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
