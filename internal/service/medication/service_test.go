package medication

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

func setup(t *testing.T) (*Service, *repotest.Store, *repotest.Clinic, scope.Scope) {
	t.Helper()
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	return NewService(store.Medications(), audit.Nop{}, time.Minute), store, clinic, scope.New(clinic.AdminIdentity())
}

func create(t *testing.T, svc *Service, admin scope.Scope, name string, active bool) *model.Medication {
	t.Helper()
	m, err := svc.Create(context.Background(), admin, model.CreateMedicationRequest{Name: name, IsActive: &active})
	require.NoError(t, err)
	return m
}

func TestCreateDefaults(t *testing.T) {
	svc, _, _, admin := setup(t)
	m := create(t, svc, admin, "Amoxicillin", true)
	assert.True(t, m.RequiresPrescription)
	assert.True(t, m.IsActive)
}

func TestActiveIsSortedAndInvalidatedOnWrite(t *testing.T) {
	svc, _, _, admin := setup(t)
	ctx := context.Background()

	create(t, svc, admin, "Paracetamol", true)
	create(t, svc, admin, "Ibuprofen", true)
	retired := create(t, svc, admin, "Aspirin", false)

	active, err := svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Ibuprofen", active[0].Name)
	assert.Equal(t, "Paracetamol", active[1].Name)

	on := true
	_, err = svc.Update(ctx, admin, retired.ID, model.UpdateMedicationRequest{IsActive: &on})
	require.NoError(t, err)

	active, err = svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "Aspirin", active[0].Name)
}

func TestDeleteGuardedByPrescriptions(t *testing.T) {
	svc, store, clinic, admin := setup(t)
	ctx := context.Background()

	used := create(t, svc, admin, "Insulin", true)
	rx := &model.Prescription{
		Base:         model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		PatientID:    clinic.Patients[0].ID,
		DoctorID:     clinic.Doctors[0].ID,
		MedicationID: used.ID,
		Dosage:       "10u",
		Frequency:    "daily",
		IsActive:     true,
	}
	rx.SetCourse(time.Now(), 30)
	require.NoError(t, store.Prescriptions().Create(ctx, rx))

	err := svc.Delete(ctx, admin, used.ID)
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgInUse, appErr.Message)

	unused := create(t, svc, admin, "Saline", true)
	require.NoError(t, svc.Delete(ctx, admin, unused.ID))
	_, err = svc.Get(ctx, unused.ID)
	assert.True(t, errors.IsNotFound(err))
}
