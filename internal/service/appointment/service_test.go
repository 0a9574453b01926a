package appointment

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

var now = time.Date(2030, 5, 20, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2030, 5, 20, hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	svc      *Service
	clinic   *repotest.Clinic
	notifier *notification.Recorder
	metrics  *metrics.Metrics
	admin    scope.Scope
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	notifier := &notification.Recorder{}
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test")

	svc := NewService(store.Appointments(), store.Patients(), store.Doctors(), notifier, audit.Nop{}, m)
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:      svc,
		clinic:   clinic,
		notifier: notifier,
		metrics:  m,
		admin:    scope.New(clinic.AdminIdentity()),
	}
}

func (f *fixture) request(patient, doctor int, start time.Time, minutes int) model.CreateAppointmentRequest {
	return model.CreateAppointmentRequest{
		PatientID:       f.clinic.Patients[patient].ID,
		DoctorID:        f.clinic.Doctors[doctor].ID,
		AppointmentDate: start,
		DurationMinutes: &minutes,
		Type:            model.AppointmentTypeConsultation,
		Reason:          "checkup",
	}
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode())
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestCreateDetectsOverlap(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(10, 0), 30))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.admin, f.request(1, 0, at(10, 15), 30))
	requireAppError(t, err, http.StatusUnprocessableEntity, MsgSlotTaken)

	_, err = f.svc.Create(ctx, f.admin, f.request(1, 0, at(9, 0), 60))
	assert.NoError(t, err, "touching intervals do not conflict")

	_, err = f.svc.Create(ctx, f.admin, f.request(1, 1, at(10, 15), 30))
	assert.NoError(t, err, "other doctors are free")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingConflicts.WithLabelValues("appointment")))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.BookingsCreated.WithLabelValues("appointment")))
}

func TestCreateDefaultsAndNotifies(t *testing.T) {
	f := setup(t)
	req := f.request(0, 0, at(11, 0), 0)
	req.DurationMinutes = nil

	apt, err := f.svc.Create(context.Background(), f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppointmentMinutes, apt.DurationMinutes)
	assert.Equal(t, at(11, 30), apt.EndsAt)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	require.NotNil(t, apt.CreatedBy)
	assert.Equal(t, f.clinic.Admin.ID, *apt.CreatedBy)

	require.Equal(t, []string{model.EventAppointmentBooked}, f.notifier.Types())
	assert.Len(t, f.notifier.Events[0].Recipients, 2)
}

func TestCreateRejectsPastDates(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), f.admin, f.request(0, 0, now.Add(-time.Minute), 30))
	requireAppError(t, err, http.StatusUnprocessableEntity, MsgPastDate)
}

func TestCreateIsScoped(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  model.Identity
		patient int
		doctor  int
		allowed bool
	}{
		{"patient books for self", f.clinic.PatientIdentity(0), 0, 1, true},
		{"patient books for another", f.clinic.PatientIdentity(0), 1, 1, false},
		{"guardian books for ward", f.clinic.GuardianIdentity(1), 1, 0, true},
		{"guardian books for stranger", f.clinic.GuardianIdentity(1), 0, 0, false},
		{"doctor books as self", f.clinic.DoctorIdentity(0), 1, 0, true},
		{"doctor books for colleague", f.clinic.DoctorIdentity(0), 0, 1, false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := at(12+i, 0)
			_, err := f.svc.Create(ctx, scope.New(tt.caller), f.request(tt.patient, tt.doctor, start, 30))
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				requireAppError(t, err, http.StatusForbidden, errors.MsgForbidden)
			}
		})
	}
}

func TestUpdateExcludesItselfFromConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(10, 0), 30))
	require.NoError(t, err)

	later := at(10, 10)
	updated, err := f.svc.Update(ctx, f.admin, apt.ID, model.UpdateAppointmentRequest{AppointmentDate: &later})
	require.NoError(t, err)
	assert.Equal(t, at(10, 40), updated.EndsAt)

	other, err := f.svc.Create(ctx, f.admin, f.request(1, 0, at(11, 0), 30))
	require.NoError(t, err)

	clash := at(10, 30)
	_, err = f.svc.Update(ctx, f.admin, other.ID, model.UpdateAppointmentRequest{AppointmentDate: &clash})
	requireAppError(t, err, http.StatusUnprocessableEntity, MsgSlotTaken)

	past := now.Add(-time.Hour)
	_, err = f.svc.Update(ctx, f.admin, other.ID, model.UpdateAppointmentRequest{AppointmentDate: &past})
	requireAppError(t, err, http.StatusUnprocessableEntity, MsgPastReschedule)
}

func TestUpdateEnforcesTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(10, 0), 30))
	require.NoError(t, err)

	status := func(s model.AppointmentStatus) model.UpdateAppointmentRequest {
		return model.UpdateAppointmentRequest{Status: &s}
	}

	_, err = f.svc.Update(ctx, f.admin, apt.ID, status(model.AppointmentStatusCompleted))
	requireAppError(t, err, http.StatusUnprocessableEntity, "")

	_, err = f.svc.Update(ctx, f.admin, apt.ID, status(model.AppointmentStatusConfirmed))
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.admin, apt.ID, status(model.AppointmentStatusConfirmed))
	require.NoError(t, err, "re-applying the current status is allowed")
	_, err = f.svc.Update(ctx, f.admin, apt.ID, status(model.AppointmentStatusCompleted))
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, f.admin, apt.ID)
	requireAppError(t, err, http.StatusUnprocessableEntity, "")
}

func TestCancelFreesTheSlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(10, 0), 30))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, scope.New(f.clinic.PatientIdentity(0)), apt.ID))
	assert.Equal(t, []string{model.EventAppointmentBooked, model.EventAppointmentCancelled}, f.notifier.Types())

	_, err = f.svc.Create(ctx, f.admin, f.request(1, 0, at(10, 0), 30))
	assert.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, f.admin, apt.ID), "cancelling twice is a no-op")
}

func TestGetAndCancelOutOfScope(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	apt, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(10, 0), 30))
	require.NoError(t, err)

	stranger := scope.New(f.clinic.GuardianIdentity(1))
	_, err = f.svc.Get(ctx, stranger, apt.ID)
	requireAppError(t, err, http.StatusForbidden, "")

	err = f.svc.Cancel(ctx, stranger, apt.ID)
	requireAppError(t, err, http.StatusForbidden, "")

	detail, err := f.svc.Get(ctx, scope.New(f.clinic.GuardianIdentity(0)), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pia", detail.PatientName)
	assert.Equal(t, "Dr. Alves", detail.DoctorName)
}

func TestUpcomingIsScopedAndOrdered(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	late, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(15, 0), 30))
	require.NoError(t, err)
	early, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(9, 0), 30))
	require.NoError(t, err)
	cancelled, err := f.svc.Create(ctx, f.admin, f.request(0, 0, at(12, 0), 30))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, f.admin, cancelled.ID))
	_, err = f.svc.Create(ctx, f.admin, f.request(1, 1, at(10, 0), 30))
	require.NoError(t, err)

	upcoming, err := f.svc.Upcoming(ctx, scope.New(f.clinic.PatientIdentity(0)))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, early.ID, upcoming[0].ID)
	assert.Equal(t, late.ID, upcoming[1].ID)
}
