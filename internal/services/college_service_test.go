package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillvault/skillvault-service/internal/models"
)

func TestCollegeService_StatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		actions []string
		want    models.CollegeStatus
	}{
		{name: "approve", actions: []string{"approve"}, want: models.CollegeVerified},
		{name: "approve twice", actions: []string{"approve", "approve"}, want: models.CollegeVerified},
		{name: "reject then approve", actions: []string{"reject", "approve"}, want: models.CollegeVerified},
		{name: "approve then reject", actions: []string{"approve", "reject"}, want: models.CollegeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := newTestEnv(t)
			svc := env.collegeService()
			college := env.seedCollege(t, "State College", models.CollegePending)

			for _, action := range tt.actions {
				var err error
				switch action {
				case "approve":
					_, err = svc.Approve(ctx, college.ID)
				case "reject":
					_, err = svc.Reject(ctx, college.ID, nil)
				}
				require.NoError(t, err)
			}

			got, err := svc.Get(ctx, college.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)

			verified, err := svc.IsVerified(ctx, college.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want == models.CollegeVerified, verified)
		})
	}
}

func TestCollegeService_RejectReason(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.collegeService()

	a := env.seedCollege(t, "Alpha", models.CollegePending)
	b := env.seedCollege(t, "Beta", models.CollegePending)

	rejected, err := svc.Reject(ctx, a.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, rejected.RejectedReason)
	assert.Equal(t, models.DefaultRejectionReason, *rejected.RejectedReason)

	rejected, err = svc.Reject(ctx, b.ID, strPtr("  Missing accreditation  "))
	require.NoError(t, err)
	assert.Equal(t, "Missing accreditation", *rejected.RejectedReason)
}

func TestCollegeService_UnknownCollege(t *testing.T) {
	ctx := context.Background()
	svc := newTestEnv(t).collegeService()

	_, err := svc.Approve(ctx, "missing")
	assert.True(t, errors.Is(err, ErrCollegeNotFound))

	_, err = svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrCollegeNotFound))

	verified, err := svc.IsVerified(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, verified)
}

func TestCollegeService_Lists(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := env.collegeService()

	env.seedCollege(t, "Zeta Institute", models.CollegeVerified)
	env.seedCollege(t, "Alpha University", models.CollegeVerified)
	env.seedCollege(t, "Pending Polytechnic", models.CollegePending)
	env.seedCollege(t, "Rejected Academy", models.CollegeRejected)

	verified, err := svc.ListVerified(ctx)
	require.NoError(t, err)
	require.Len(t, verified, 2)
	assert.Equal(t, "Alpha University", verified[0].Name)
	assert.Equal(t, "Zeta Institute", verified[1].Name)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Pending Polytechnic", pending[0].Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCollegeService_RegisterValidation(t *testing.T) {
	svc := newTestEnv(t).collegeService()

	_, err := svc.Register(context.Background(), &CollegeRegisterRequest{
		Name:     "X",
		Email:    "not-an-email",
		Location: "Delhi",
		Website:  strPtr("nope"),
	})

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["website"])
}
