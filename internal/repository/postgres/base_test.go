package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion violation", &pq.Error{Code: "23P01"}, repository.ErrSlotTaken},
		{"serialization failure", &pq.Error{Code: "40001"}, repository.ErrSlotTaken},
		{"foreign key", &pq.Error{Code: "23503", Constraint: "prescriptions_medication_id_fkey"}, repository.ErrStillReferenced},
		{"unique", &pq.Error{Code: "23505", Constraint: "users_email_key"}, repository.ErrDuplicate},
		{"wrapped", fmt.Errorf("failed to commit: %w", &pq.Error{Code: "40001"}), repository.ErrSlotTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, mapError(nil))

	other := &pq.Error{Code: "42P01"}
	assert.Same(t, other, mapError(other))
	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapError(plain))
}

func TestAppointmentWhereAddsScopeLast(t *testing.T) {
	doctorID := uuid.New()
	status := model.AppointmentStatusScheduled
	day := time.Date(2030, 5, 20, 0, 0, 0, 0, time.UTC)
	guardian := uuid.New()

	w := appointmentWhere(model.AppointmentFilters{
		DoctorID: &doctorID,
		Status:   &status,
		Range:    model.DateRange{From: day, To: day.AddDate(0, 0, 1)},
	})
	w.scoped(scope.New(model.Identity{Role: model.RoleGuardian, ProfileID: guardian}).Clause(scope.Booking, "a"))

	assert.Equal(t,
		" WHERE a.doctor_id = ? AND a.status = ? AND a.appointment_date >= ? AND a.appointment_date < ?"+
			" AND a.patient_id IN (SELECT id FROM patients WHERE guardian_id = ?)",
		w.String())
	assert.Equal(t, []interface{}{doctorID, status, day, day.AddDate(0, 0, 1), guardian}, w.args)

	assert.Equal(t,
		"SELECT COUNT(*) FROM appointments a WHERE a.doctor_id = $1 AND a.status = $2 AND a.appointment_date >= $3"+
			" AND a.appointment_date < $4 AND a.patient_id IN (SELECT id FROM patients WHERE guardian_id = $5)",
		sqlx.Rebind(sqlx.DOLLAR, "SELECT COUNT(*) FROM appointments a"+w.String()))
}

func TestWhereScopes(t *testing.T) {
	profile := uuid.New()
	tests := []struct {
		role model.Role
		want string
	}{
		{model.RoleAdmin, ""},
		{model.RoleDoctor, " WHERE h.doctor_id = ?"},
		{model.RolePatient, " WHERE h.patient_id = ?"},
		{model.RoleGuardian, " WHERE h.patient_id IN (SELECT id FROM patients WHERE guardian_id = ?)"},
	}
	for _, tt := range tests {
		var w where
		w.scoped(scope.New(model.Identity{Role: tt.role, ProfileID: profile}).Clause(scope.Booking, "h"))
		assert.Equal(t, tt.want, w.String(), tt.role)
	}

	var w where
	w.scoped(scope.New(model.Identity{Role: model.RoleDoctor}).Clause(scope.Booking, "h"))
	assert.Equal(t, " WHERE FALSE", w.String())
}

func TestLimit(t *testing.T) {
	assert.Equal(t, "", limit(model.Page{Number: 3}))
	assert.Equal(t, " LIMIT 15 OFFSET 30", limit(model.Page{Number: 3, Size: 15}))
}
