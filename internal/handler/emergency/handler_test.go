package emergency

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/handler/handlertest"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/emergency"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
)

func setup() (*Handler, *repotest.Clinic, *notification.Recorder) {
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	notifier := &notification.Recorder{}
	svc := emergency.NewService(store.Emergencies(), store.Patients(), store.Doctors(), store.Guardians(), notifier, audit.Nop{})
	return NewHandler(svc), clinic, notifier
}

func TestReportAndAcknowledge(t *testing.T) {
	h, clinic, notifier := setup()
	guardian := handlertest.As(clinic.GuardianIdentity(0), h.RegisterRoutes)
	doctor := handlertest.As(clinic.DoctorIdentity(0), h.RegisterRoutes)
	report := gin.H{"patient_id": clinic.Patients[0].ID, "description": "difficulty breathing"}

	w := handlertest.Do(t, doctor, http.MethodPost, "/api/v1/emergencies", report)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, emergency.MsgGuardiansOnly, handlertest.Decode(t, w).Message)

	w = handlertest.Do(t, guardian, http.MethodPost, "/api/v1/emergencies", report)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := handlertest.Decode(t, w)
	assert.Equal(t, MsgReported, env.Message)
	var reported emergencyResponse
	env.Into(t, &reported)
	assert.Equal(t, model.PriorityHigh, reported.Priority)

	path := "/api/v1/emergencies/" + reported.ID.String() + "/acknowledge"
	w = handlertest.Do(t, guardian, http.MethodPost, path, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, emergency.MsgDoctorsOnly, handlertest.Decode(t, w).Message)

	w = handlertest.Do(t, doctor, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env = handlertest.Decode(t, w)
	assert.Equal(t, MsgAcknowledged, env.Message)
	var acked emergencyResponse
	env.Into(t, &acked)
	assert.Equal(t, model.EmergencyStatusAcknowledged, acked.Status)
	assert.NotNil(t, acked.AcknowledgedAt)

	assert.Equal(t, []string{model.EventEmergencyReported, model.EventEmergencyAcknowledged}, notifier.Types())
}

func TestActiveEmergencies(t *testing.T) {
	h, clinic, _ := setup()
	guardian := handlertest.As(clinic.GuardianIdentity(1), h.RegisterRoutes)

	for _, p := range []string{"low", "critical"} {
		w := handlertest.Do(t, guardian, http.MethodPost, "/api/v1/emergencies", gin.H{
			"patient_id":  clinic.Patients[1].ID,
			"description": "fall",
			"priority":    p,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	var rows []emergencyDetailResponse
	page := handlertest.Decode(t, handlertest.Do(t, guardian, http.MethodGet, "/api/v1/emergencies-active", nil)).Items(t, &rows)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, model.PriorityCritical, rows[0].Priority)
	assert.Equal(t, "Rui", rows[0].PatientName)

	w := handlertest.Do(t, guardian, http.MethodPost, "/api/v1/emergencies", gin.H{
		"patient_id":  clinic.Patients[1].ID,
		"description": "fall",
		"priority":    "urgent",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, handlertest.Decode(t, w).Errors, "priority")

	other := handlertest.As(clinic.DoctorIdentity(0), h.RegisterRoutes)
	page = handlertest.Decode(t, handlertest.Do(t, other, http.MethodGet, "/api/v1/emergencies-active", nil)).Items(t, &rows)
	assert.Zero(t, page.Total)
}
