package account

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
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

var today = time.Date(2030, 6, 15, 9, 0, 0, 0, time.UTC)

func newTestService(store *repotest.Store) *Service {
	svc := NewService(store.Users(), store.Doctors(), store.Guardians(), security.NewBcryptHasher(bcrypt.MinCost))
	svc.now = func() time.Time { return today }
	return svc
}

func fields(email, doc, birth string) model.NewUserFields {
	return model.NewUserFields{
		Name:           "Someone",
		Email:          email,
		Password:       "password123",
		Phone:          "555-0101",
		BirthDate:      birth,
		DocumentNumber: doc,
	}
}

func TestGuardianAgeBoundary(t *testing.T) {
	store := repotest.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	guardian := func() model.Profile {
		return model.Profile{Guardian: &model.Guardian{Relationship: model.RelationshipParent}}
	}

	_, err := svc.Open(ctx, fields("young@example.com", "D1", "2012-06-16"), model.RoleGuardian, guardian())
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.StatusCode())
	assert.Equal(t, []string{MsgGuardianTooYoung}, appErr.Fields["birth_date"])

	user, err := svc.Open(ctx, fields("adult@example.com", "D2", "2012-06-15"), model.RoleGuardian, guardian())
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuardian, user.Role)

	profile, err := store.Users().Profile(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, profile.Guardian)
	assert.Equal(t, user.ID, profile.Guardian.UserID)
}

func TestAgeLimitOnlyAppliesToGuardians(t *testing.T) {
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	svc := newTestService(store)

	profile := model.Profile{Patient: &model.Patient{GuardianID: clinic.Guardians[0].ID, DoctorID: clinic.Doctors[0].ID}}
	_, err := svc.Open(context.Background(), fields("kid@example.com", "D3", "2020-01-01"), model.RolePatient, profile)
	assert.NoError(t, err)
}

func TestOpenRejectsDuplicates(t *testing.T) {
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	svc := newTestService(store)

	existing := clinic.Doctors[0]
	_, err := svc.Open(context.Background(),
		fields(existing.User.Email, existing.User.DocumentNumber, "1980-02-02"),
		model.RoleDoctor,
		model.Profile{Doctor: &model.Doctor{Specialty: "GP", LicenseNumber: existing.LicenseNumber}},
	)
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{MsgEmailTaken}, appErr.Fields["email"])
	assert.Equal(t, []string{MsgDocumentTaken}, appErr.Fields["document_number"])
	assert.Equal(t, []string{MsgLicenseTaken}, appErr.Fields["license_number"])
}

func TestOpenPatientRequiresExistingAssignment(t *testing.T) {
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	svc := newTestService(store)

	profile := model.Profile{Patient: &model.Patient{GuardianID: clinic.Doctors[0].ID, DoctorID: clinic.Doctors[0].ID}}
	_, err := svc.Open(context.Background(), fields("p@example.com", "D4", "2015-01-01"), model.RolePatient, profile)
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{MsgInvalidGuardian}, appErr.Fields["guardian_id"])
	assert.NotContains(t, appErr.Fields, "doctor_id")
}
