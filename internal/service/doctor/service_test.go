package doctor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

type fixture struct {
	svc    *Service
	store  *repotest.Store
	clinic *repotest.Clinic
	admin  scope.Scope
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	accounts := account.NewService(store.Users(), store.Doctors(), store.Guardians(), security.NewBcryptHasher(bcrypt.MinCost))
	return &fixture{
		svc:    NewService(store.Doctors(), store.Appointments(), accounts, audit.Nop{}, time.Minute),
		store:  store,
		clinic: clinic,
		admin:  scope.New(clinic.AdminIdentity()),
	}
}

func (f *fixture) book(t *testing.T, doctorID uuid.UUID, start time.Time) *model.Appointment {
	t.Helper()
	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: f.clinic.Patients[0].ID,
		DoctorID:  doctorID,
		Status:    model.AppointmentStatusScheduled,
		Type:      model.AppointmentTypeConsultation,
	}
	apt.Schedule(start, 30)
	require.NoError(t, f.store.Appointments().Create(context.Background(), apt))
	return apt
}

func (f *fixture) hire(t *testing.T) *model.DoctorWithUser {
	t.Helper()
	d, err := f.svc.Create(context.Background(), f.admin, model.CreateDoctorRequest{
		User: model.NewUserFields{
			Name:           "Dr. Costa",
			Email:          "costa@example.com",
			Password:       "password123",
			Phone:          "555-0111",
			BirthDate:      "1975-04-04",
			DocumentNumber: "DOC-COSTA",
		},
		Specialty:     "Neurology",
		LicenseNumber: "CRM-COSTA",
	})
	require.NoError(t, err)
	return d
}

func TestDeleteGuardedByFutureAppointments(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doctor := f.hire(t)

	apt := f.book(t, doctor.ID, time.Now().Add(24*time.Hour))

	err := f.svc.Delete(ctx, f.admin, doctor.ID)
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgActiveAppointments, appErr.Message)

	apt.Status = model.AppointmentStatusCancelled
	require.NoError(t, f.store.Appointments().Update(ctx, apt))

	require.NoError(t, f.svc.Delete(ctx, f.admin, doctor.ID))
	_, err = f.svc.Get(ctx, doctor.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestPastAppointmentsDoNotBlockDelete(t *testing.T) {
	f := setup(t)
	doctor := f.hire(t)

	f.book(t, doctor.ID, time.Now().Add(-24*time.Hour))
	assert.NoError(t, f.svc.Delete(context.Background(), f.admin, doctor.ID))
}

func TestDeleteGuardedByAssignedPatients(t *testing.T) {
	f := setup(t)

	err := f.svc.Delete(context.Background(), f.admin, f.clinic.Doctors[1].ID)
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, MsgAssignedPatients, appErr.Message)
}

func TestAvailableIsCachedUntilWrite(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	available, err := f.svc.Available(ctx)
	require.NoError(t, err)
	require.Len(t, available, 2)

	// A write behind the service's back is not seen until the cache expires.
	d := f.clinic.Doctors[0]
	d.IsAvailable = false
	require.NoError(t, f.store.Doctors().Update(ctx, d))
	available, err = f.svc.Available(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	off := false
	_, err = f.svc.Update(ctx, f.admin, f.clinic.Doctors[1].ID, model.UpdateDoctorRequest{IsAvailable: &off})
	require.NoError(t, err)
	available, err = f.svc.Available(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestUpdateRejectsTakenLicense(t *testing.T) {
	f := setup(t)
	license := f.clinic.Doctors[1].LicenseNumber

	_, err := f.svc.Update(context.Background(), f.admin, f.clinic.Doctors[0].ID, model.UpdateDoctorRequest{LicenseNumber: &license})
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{account.MsgLicenseTaken}, appErr.Fields["license_number"])
}

func TestAppointmentsAreScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doctor := f.clinic.Doctors[0]
	f.book(t, doctor.ID, time.Now().Add(time.Hour))

	rows, total, err := f.svc.Appointments(ctx, scope.New(f.clinic.DoctorIdentity(0)), doctor.ID, model.AppointmentFilters{}, model.Page{Number: 1, Size: 15})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, rows, 1)

	_, total, err = f.svc.Appointments(ctx, scope.New(f.clinic.DoctorIdentity(1)), doctor.ID, model.AppointmentFilters{}, model.Page{Number: 1, Size: 15})
	require.NoError(t, err)
	assert.Zero(t, total)
}
