package appointment

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/handler/handlertest"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func setup() (*Handler, *repotest.Clinic) {
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	svc := appointment.NewService(
		store.Appointments(), store.Patients(), store.Doctors(),
		&notification.Recorder{}, audit.Nop{},
		metrics.NewMetrics(prometheus.NewRegistry(), "test"),
	)
	return NewHandler(svc), clinic
}

func tomorrowAt(hour int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func booking(clinic *repotest.Clinic, i int, start time.Time) gin.H {
	return gin.H{
		"patient_id":       clinic.Patients[i].ID,
		"doctor_id":        clinic.Doctors[i].ID,
		"appointment_date": start,
		"type":             "consultation",
		"reason":           "checkup",
	}
}

func TestCreateAppointment(t *testing.T) {
	h, clinic := setup()
	r := handlertest.As(clinic.GuardianIdentity(0), h.RegisterRoutes)

	w := handlertest.Do(t, r, http.MethodPost, "/api/v1/appointments", booking(clinic, 0, tomorrowAt(10)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := handlertest.Decode(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, MsgCreated, env.Message)

	var created appointmentResponse
	env.Into(t, &created)
	assert.Equal(t, model.DefaultAppointmentMinutes, created.DurationMinutes)
	assert.Equal(t, model.AppointmentStatusScheduled, created.Status)

	overlap := booking(clinic, 0, tomorrowAt(10).Add(15*time.Minute))
	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/appointments", overlap)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, appointment.MsgSlotTaken, handlertest.Decode(t, w).Message)
}

func TestCreateAppointmentRejects(t *testing.T) {
	h, clinic := setup()
	r := handlertest.As(clinic.GuardianIdentity(1), h.RegisterRoutes)

	w := handlertest.Do(t, r, http.MethodPost, "/api/v1/appointments", booking(clinic, 0, tomorrowAt(10)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/appointments", gin.H{"doctor_id": clinic.Doctors[0].ID})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := handlertest.Decode(t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "patient_id")
	assert.Contains(t, env.Errors, "reason")
	assert.Contains(t, env.Errors, "type")
}

func TestListIsScoped(t *testing.T) {
	h, clinic := setup()
	admin := handlertest.As(clinic.AdminIdentity(), h.RegisterRoutes)
	for i := range clinic.Patients {
		w := handlertest.Do(t, admin, http.MethodPost, "/api/v1/appointments", booking(clinic, i, tomorrowAt(9+i)))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	var rows []DetailResponse
	page := handlertest.Decode(t, handlertest.Do(t, admin, http.MethodGet, "/api/v1/appointments", nil)).Items(t, &rows)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.LastPage)

	doctor := handlertest.As(clinic.DoctorIdentity(1), h.RegisterRoutes)
	page = handlertest.Decode(t, handlertest.Do(t, doctor, http.MethodGet, "/api/v1/appointments", nil)).Items(t, &rows)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, clinic.Doctors[1].ID, rows[0].DoctorID)
	assert.Equal(t, "Dr. Brito", rows[0].DoctorName)

	w := handlertest.Do(t, doctor, http.MethodGet, "/api/v1/appointments?doctor_id=nope", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, handlertest.Decode(t, w).Errors, "doctor_id")

	var upcoming []DetailResponse
	handlertest.Decode(t, handlertest.Do(t, doctor, http.MethodGet, "/api/v1/appointments-upcoming", nil)).Into(t, &upcoming)
	assert.Len(t, upcoming, 1)
}

func TestShowAndCancel(t *testing.T) {
	h, clinic := setup()
	r := handlertest.As(clinic.PatientIdentity(0), h.RegisterRoutes)

	w := handlertest.Do(t, r, http.MethodGet, "/api/v1/appointments/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = handlertest.Do(t, r, http.MethodPost, "/api/v1/appointments", booking(clinic, 0, tomorrowAt(11)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created appointmentResponse
	handlertest.Decode(t, w).Into(t, &created)

	path := "/api/v1/appointments/" + created.ID.String()
	other := handlertest.As(clinic.PatientIdentity(1), h.RegisterRoutes)
	assert.Equal(t, http.StatusForbidden, handlertest.Do(t, other, http.MethodGet, path, nil).Code)

	w = handlertest.Do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgCancelled, handlertest.Decode(t, w).Message)

	var shown DetailResponse
	handlertest.Decode(t, handlertest.Do(t, r, http.MethodGet, path, nil)).Into(t, &shown)
	assert.Equal(t, model.AppointmentStatusCancelled, shown.Status)
	assert.Equal(t, "Pia", shown.PatientName)
}

func TestListDateRangeEndsAtMidnight(t *testing.T) {
	h, clinic := setup()
	admin := handlertest.As(clinic.AdminIdentity(), h.RegisterRoutes)

	lastSlot := tomorrowAt(23)
	midnight := tomorrowAt(0).AddDate(0, 0, 1)
	for _, start := range []time.Time{lastSlot, midnight} {
		w := handlertest.Do(t, admin, http.MethodPost, "/api/v1/appointments", booking(clinic, 0, start))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	day := lastSlot.Format("2006-01-02")
	var rows []DetailResponse
	page := handlertest.Decode(t, handlertest.Do(t, admin, http.MethodGet,
		"/api/v1/appointments?date_from="+day+"&date_to="+day, nil)).Items(t, &rows)
	require.Equal(t, 1, page.Total)
	assert.True(t, lastSlot.Equal(rows[0].AppointmentDate))

	next := midnight.Format("2006-01-02")
	page = handlertest.Decode(t, handlertest.Do(t, admin, http.MethodGet,
		"/api/v1/appointments?date_from="+day+"&date_to="+next, nil)).Items(t, &rows)
	assert.Equal(t, 2, page.Total)
}
