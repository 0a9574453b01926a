package prescription

import (
	"context"
	"net/http"
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

type fixture struct {
	svc        *Service
	clinic     *repotest.Clinic
	medication *model.Medication
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	clinic := repotest.Seed(store)

	med := &model.Medication{Base: model.Base{ID: uuid.New()}, Name: "Amoxicillin", IsActive: true}
	require.NoError(t, store.Medications().Create(context.Background(), med))

	svc := NewService(store.Prescriptions(), store.Patients(), store.Doctors(), store.Medications(), store.Appointments(), audit.Nop{})
	svc.now = func() time.Time { return time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC) }
	return &fixture{svc: svc, clinic: clinic, medication: med}
}

func (f *fixture) request(patient int, start string, days int) model.CreatePrescriptionRequest {
	return model.CreatePrescriptionRequest{
		PatientID:    f.clinic.Patients[patient].ID,
		MedicationID: f.medication.ID,
		Dosage:       "500mg",
		Frequency:    "every 8 hours",
		DurationDays: days,
		StartDate:    start,
	}
}

func TestCourseEndDate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doctor := scope.New(f.clinic.DoctorIdentity(0))

	rx, err := f.svc.Create(ctx, doctor, f.request(0, "2025-01-01", 10))
	require.NoError(t, err)
	assert.Equal(t, f.clinic.Doctors[0].ID, rx.DoctorID)
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), rx.EndDate)

	twenty := 20
	rx, err = f.svc.Update(ctx, doctor, rx.ID, model.UpdatePrescriptionRequest{DurationDays: &twenty})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC), rx.EndDate)
}

func TestPrescriberResolution(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, scope.New(f.clinic.AdminIdentity()), f.request(0, "2025-01-01", 5))
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "doctor_id")

	req := f.request(0, "2025-01-01", 5)
	req.DoctorID = &f.clinic.Doctors[1].ID
	_, err = f.svc.Create(ctx, scope.New(f.clinic.DoctorIdentity(0)), req)
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode())

	_, err = f.svc.Create(ctx, scope.New(f.clinic.AdminIdentity()), req)
	assert.NoError(t, err)

	_, err = f.svc.Create(ctx, scope.New(f.clinic.GuardianIdentity(0)), f.request(0, "2025-01-01", 5))
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.StatusCode())
}

func TestCreateValidatesReferences(t *testing.T) {
	f := setup(t)
	req := f.request(0, "2025-01-01", 5)
	req.MedicationID = uuid.New()
	missing := uuid.New()
	req.AppointmentID = &missing

	_, err := f.svc.Create(context.Background(), scope.New(f.clinic.DoctorIdentity(0)), req)
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"The selected medication id is invalid."}, appErr.Fields["medication_id"])
	assert.Contains(t, appErr.Fields, "appointment_id")
	assert.NotContains(t, appErr.Fields, "patient_id")
}

func TestActiveFiltersEndedAndInactive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doctor := scope.New(f.clinic.DoctorIdentity(0))

	current, err := f.svc.Create(ctx, doctor, f.request(0, "2025-01-01", 10))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, doctor, f.request(0, "2024-12-01", 3))
	require.NoError(t, err)
	stopped, err := f.svc.Create(ctx, doctor, f.request(0, "2025-01-02", 30))
	require.NoError(t, err)
	off := false
	_, err = f.svc.Update(ctx, doctor, stopped.ID, model.UpdatePrescriptionRequest{IsActive: &off})
	require.NoError(t, err)

	rows, total, err := f.svc.Active(ctx, scope.New(f.clinic.GuardianIdentity(0)), model.Page{Number: 1, Size: 15})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, current.ID, rows[0].ID)

	_, total, err = f.svc.Active(ctx, scope.New(f.clinic.GuardianIdentity(1)), model.Page{Number: 1, Size: 15})
	require.NoError(t, err)
	assert.Zero(t, total)
}
