package prescription

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/handler/handlertest"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/repotest"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/prescription"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type fixture struct {
	h          *Handler
	clinic     *repotest.Clinic
	medication *model.Medication
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	clinic := repotest.Seed(store)
	med := &model.Medication{Base: model.Base{ID: uuid.New()}, Name: "Ibuprofen", IsActive: true}
	require.NoError(t, store.Medications().Create(context.Background(), med))

	svc := prescription.NewService(store.Prescriptions(), store.Patients(), store.Doctors(), store.Medications(), store.Appointments(), audit.Nop{})
	return &fixture{h: NewHandler(svc), clinic: clinic, medication: med}
}

func (f *fixture) body(start string, days int) gin.H {
	return gin.H{
		"patient_id":    f.clinic.Patients[0].ID,
		"medication_id": f.medication.ID,
		"dosage":        "200mg",
		"frequency":     "twice a day",
		"duration_days": days,
		"start_date":    start,
	}
}

func TestCreatePrescription(t *testing.T) {
	f := setup(t)
	doctor := handlertest.As(f.clinic.DoctorIdentity(0), f.h.RegisterRoutes)

	w := handlertest.Do(t, doctor, http.MethodPost, "/api/v1/prescriptions", f.body("2025-01-01", 10))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := handlertest.Decode(t, w)
	assert.Equal(t, MsgCreated, env.Message)

	var created prescriptionResponse
	env.Into(t, &created)
	assert.Equal(t, "2025-01-11", created.EndDate)
	assert.Equal(t, f.clinic.Doctors[0].ID, created.DoctorID)

	w = handlertest.Do(t, doctor, http.MethodPut, "/api/v1/prescriptions/"+created.ID.String(), gin.H{"duration_days": 20})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	handlertest.Decode(t, w).Into(t, &created)
	assert.Equal(t, "2025-01-21", created.EndDate)

	w = handlertest.Do(t, doctor, http.MethodPost, "/api/v1/prescriptions", f.body("01/02/2025", 10))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, handlertest.Decode(t, w).Errors, "start_date")
}

func TestPrescriptionGates(t *testing.T) {
	f := setup(t)
	patient := handlertest.As(f.clinic.PatientIdentity(0), f.h.RegisterRoutes)
	assert.Equal(t, http.StatusForbidden, handlertest.Do(t, patient, http.MethodPost, "/api/v1/prescriptions", f.body("2025-01-01", 3)).Code)

	doctor := handlertest.As(f.clinic.DoctorIdentity(0), f.h.RegisterRoutes)
	today := time.Now().UTC().Format(validator.DateLayout)
	require.Equal(t, http.StatusCreated, handlertest.Do(t, doctor, http.MethodPost, "/api/v1/prescriptions", f.body(today, 7)).Code)
	require.Equal(t, http.StatusCreated, handlertest.Do(t, doctor, http.MethodPost, "/api/v1/prescriptions", f.body("2020-01-01", 7)).Code)

	var rows []DetailResponse
	page := handlertest.Decode(t, handlertest.Do(t, patient, http.MethodGet, "/api/v1/prescriptions", nil)).Items(t, &rows)
	assert.Equal(t, 2, page.Total)

	page = handlertest.Decode(t, handlertest.Do(t, patient, http.MethodGet, "/api/v1/prescriptions-active", nil)).Items(t, &rows)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, today, rows[0].StartDate)
	assert.Equal(t, "Ibuprofen", rows[0].MedicationName)

	other := handlertest.As(f.clinic.PatientIdentity(1), f.h.RegisterRoutes)
	page = handlertest.Decode(t, handlertest.Do(t, other, http.MethodGet, "/api/v1/prescriptions", nil)).Items(t, &rows)
	assert.Zero(t, page.Total)
}
