package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type fixture struct {
	svc         *Service
	jwt         auth.JWTService
	revocations auth.RevocationStore
	clinic      *repotest.Clinic
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	jwtSvc := auth.NewJWTService("test-secret", "clinic-api", time.Hour)
	revocations := auth.NewMemoryRevocationStore()
	accounts := account.NewService(store.Users(), store.Doctors(), store.Guardians(), hasher)

	return &fixture{
		svc:         NewService(store.Users(), accounts, jwtSvc, revocations, hasher, audit.Nop{}),
		jwt:         jwtSvc,
		revocations: revocations,
		clinic:      clinic,
	}
}

func registration(role model.Role) model.RegisterRequest {
	return model.RegisterRequest{
		Name:                 "Marta Reis",
		Email:                "marta@example.com",
		Password:             "password123",
		PasswordConfirmation: "password123",
		RoleName:             role,
		Phone:                "555-0199",
		BirthDate:            "1985-03-10",
		DocumentNumber:       "ID-7781",
	}
}

func TestRegisterIssuesTokenCarryingProfile(t *testing.T) {
	f := setup(t)
	req := registration(model.RoleDoctor)
	req.Specialty = "Dermatology"
	req.LicenseNumber = "CRM-123"

	res, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Profile.Doctor)
	assert.Equal(t, "Dermatology", res.Profile.Doctor.Specialty)
	assert.True(t, res.Profile.Doctor.IsAvailable)

	id, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
	assert.Equal(t, model.RoleDoctor, id.Role)
	assert.Equal(t, res.Profile.Doctor.ID, id.ProfileID)
}

func TestRegisterPatientNeedsAssignment(t *testing.T) {
	f := setup(t)
	req := registration(model.RolePatient)

	_, err := f.svc.Register(context.Background(), req)
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode())

	req.GuardianID = &f.clinic.Guardians[0].ID
	req.DoctorID = &f.clinic.Doctors[1].ID
	res, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, f.clinic.Doctors[1].ID, res.Profile.Patient.DoctorID)
}

func TestLogin(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Register(context.Background(), registration(model.RoleAdmin))
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := f.svc.Login(context.Background(), model.LoginRequest{Email: "MARTA@example.com", Password: "password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Nil(t, res.Profile.Doctor)
	})

	for name, req := range map[string]model.LoginRequest{
		"wrong password": {Email: "marta@example.com", Password: "nope-nope"},
		"unknown email":  {Email: "ghost@example.com", Password: "password123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), req)
			require.Error(t, err)
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode())
			assert.Equal(t, MsgInvalidCredentials, appErr.Message)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	res, err := f.svc.Register(ctx, registration(model.RoleAdmin))
	require.NoError(t, err)

	id, err := f.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, id))

	revoked, err := f.revocations.IsRevoked(ctx, id.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMeReturnsProfile(t *testing.T) {
	f := setup(t)
	guardian := f.clinic.Guardians[1]

	user, profile, err := f.svc.Me(context.Background(), guardian.UserID)
	require.NoError(t, err)
	assert.Equal(t, guardian.User.Email, user.Email)
	require.NotNil(t, profile.Guardian)
	assert.Equal(t, guardian.ID, profile.Guardian.ID)
}
