package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scheduling"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

func appointmentDetailSelect() string {
	return "SELECT " + columns("a", appointmentCols) +
		", pu.name AS patient_name, du.name AS doctor_name, d.specialty AS doctor_specialty" +
		" FROM appointments a" + partiesJoin("a")
}

func (r *appointmentRepository) Atomic(ctx context.Context, fn func(repository.AppointmentRepository) error) error {
	return r.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&appointmentRepository{r.bound(tx)})
	})
}

func (r *appointmentRepository) ActiveBookings(ctx context.Context, doctorID uuid.UUID, window scheduling.Interval) ([]scheduling.Booking, error) {
	var rows []struct {
		ID    uuid.UUID `db:"id"`
		Start time.Time `db:"appointment_date"`
		End   time.Time `db:"ends_at"`
	}
	query := `
		SELECT id, appointment_date, ends_at
		FROM appointments
		WHERE doctor_id = ? AND status <> ? AND appointment_date < ? AND ends_at > ?
	`
	if err := r.selectAll(ctx, &rows, query, doctorID, model.AppointmentStatusCancelled, window.End, window.Start); err != nil {
		return nil, fmt.Errorf("failed to load appointments: %w", err)
	}

	bookings := make([]scheduling.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = scheduling.Booking{ID: row.ID, Interval: scheduling.Interval{Start: row.Start, End: row.End}}
	}
	return bookings, nil
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := "INSERT INTO appointments (" + columns("", appointmentCols) + ") VALUES (" + placeholders(len(appointmentCols)) + ")"
	_, err := r.exec(ctx, query,
		a.ID, a.PatientID, a.DoctorID, a.CreatedBy, a.AppointmentDate, a.DurationMinutes, a.EndsAt,
		a.Status, a.Type, a.Reason, a.Notes, a.Diagnosis, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.get(ctx, &a, "SELECT "+columns("", appointmentCols)+" FROM appointments WHERE id = ?", id); err != nil {
		return nil, notFound("appointment", err)
	}
	return &a, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	var a model.AppointmentDetail
	if err := r.get(ctx, &a, appointmentDetailSelect()+" WHERE a.id = ?", id); err != nil {
		return nil, notFound("appointment", err)
	}
	return &a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	a.UpdatedAt = time.Now()
	query := `
		UPDATE appointments
		SET appointment_date = ?, duration_minutes = ?, ends_at = ?, status = ?, type = ?,
			reason = ?, notes = ?, diagnosis = ?, updated_at = ?
		WHERE id = ?
	`
	return r.execOne(ctx, "appointment", query,
		a.AppointmentDate, a.DurationMinutes, a.EndsAt, a.Status, a.Type,
		a.Reason, a.Notes, a.Diagnosis, a.UpdatedAt, a.ID,
	)
}

func appointmentWhere(f model.AppointmentFilters) where {
	var w where
	if f.PatientID != nil {
		w.add("a.patient_id = ?", *f.PatientID)
	}
	if f.DoctorID != nil {
		w.add("a.doctor_id = ?", *f.DoctorID)
	}
	if f.Status != nil {
		w.add("a.status = ?", *f.Status)
	}
	if !f.Range.From.IsZero() {
		w.add("a.appointment_date >= ?", f.Range.From)
	}
	if !f.Range.To.IsZero() {
		w.add("a.appointment_date < ?", f.Range.To)
	}
	return w
}

func (r *appointmentRepository) List(ctx context.Context, sc scope.Scope, filters model.AppointmentFilters, page model.Page) ([]*model.AppointmentDetail, int, error) {
	w := appointmentWhere(filters)
	w.scoped(sc.Clause(scope.Booking, "a"))

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM appointments a"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	var appointments []*model.AppointmentDetail
	query := appointmentDetailSelect() + w.String() + " ORDER BY a.appointment_date DESC" + limit(page)
	if err := r.selectAll(ctx, &appointments, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

// Upcoming lists non-cancelled appointments starting after the given instant, soonest first.
func (r *appointmentRepository) Upcoming(ctx context.Context, sc scope.Scope, after time.Time, n int) ([]*model.AppointmentDetail, error) {
	var w where
	w.add("a.appointment_date > ?", after)
	w.add("a.status <> ?", model.AppointmentStatusCancelled)
	w.scoped(sc.Clause(scope.Booking, "a"))

	var appointments []*model.AppointmentDetail
	query := appointmentDetailSelect() + w.String() + " ORDER BY a.appointment_date ASC" + limit(model.Page{Number: 1, Size: n})
	if err := r.selectAll(ctx, &appointments, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}
	return appointments, nil
}
