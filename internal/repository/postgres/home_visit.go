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

func homeVisitDetailSelect() string {
	return "SELECT " + columns("h", homeVisitCols) +
		", pu.name AS patient_name, du.name AS doctor_name" +
		" FROM home_visits h" + partiesJoin("h")
}

func (r *homeVisitRepository) Atomic(ctx context.Context, fn func(repository.HomeVisitRepository) error) error {
	return r.WithSerializableTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&homeVisitRepository{r.bound(tx)})
	})
}

func (r *homeVisitRepository) ActiveBookings(ctx context.Context, doctorID uuid.UUID, window scheduling.Interval) ([]scheduling.Booking, error) {
	var rows []struct {
		ID    uuid.UUID `db:"id"`
		Start time.Time `db:"visit_date"`
		End   time.Time `db:"ends_at"`
	}
	query := `
		SELECT id, visit_date, ends_at
		FROM home_visits
		WHERE doctor_id = ? AND status <> ? AND visit_date < ? AND ends_at > ?
	`
	if err := r.selectAll(ctx, &rows, query, doctorID, model.HomeVisitStatusCancelled, window.End, window.Start); err != nil {
		return nil, fmt.Errorf("failed to load home visits: %w", err)
	}

	bookings := make([]scheduling.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = scheduling.Booking{ID: row.ID, Interval: scheduling.Interval{Start: row.Start, End: row.End}}
	}
	return bookings, nil
}

func (r *homeVisitRepository) Create(ctx context.Context, v *model.HomeVisit) error {
	query := "INSERT INTO home_visits (" + columns("", homeVisitCols) + ") VALUES (" + placeholders(len(homeVisitCols)) + ")"
	_, err := r.exec(ctx, query,
		v.ID, v.PatientID, v.DoctorID, v.VisitDate, v.EstimatedDurationMinutes, v.EndsAt,
		v.Status, v.Address, v.Reason, v.Notes, v.Findings, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create home visit: %w", err)
	}
	return nil
}

func (r *homeVisitRepository) Get(ctx context.Context, id uuid.UUID) (*model.HomeVisit, error) {
	var v model.HomeVisit
	if err := r.get(ctx, &v, "SELECT "+columns("", homeVisitCols)+" FROM home_visits WHERE id = ?", id); err != nil {
		return nil, notFound("home visit", err)
	}
	return &v, nil
}

func (r *homeVisitRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.HomeVisitDetail, error) {
	var v model.HomeVisitDetail
	if err := r.get(ctx, &v, homeVisitDetailSelect()+" WHERE h.id = ?", id); err != nil {
		return nil, notFound("home visit", err)
	}
	return &v, nil
}

func (r *homeVisitRepository) Update(ctx context.Context, v *model.HomeVisit) error {
	v.UpdatedAt = time.Now()
	query := `
		UPDATE home_visits
		SET visit_date = ?, estimated_duration_minutes = ?, ends_at = ?, status = ?, address = ?,
			reason = ?, notes = ?, findings = ?, updated_at = ?
		WHERE id = ?
	`
	return r.execOne(ctx, "home visit", query,
		v.VisitDate, v.EstimatedDurationMinutes, v.EndsAt, v.Status, v.Address,
		v.Reason, v.Notes, v.Findings, v.UpdatedAt, v.ID,
	)
}

func (r *homeVisitRepository) List(ctx context.Context, sc scope.Scope, f model.HomeVisitFilters, page model.Page) ([]*model.HomeVisitDetail, int, error) {
	var w where
	if f.PatientID != nil {
		w.add("h.patient_id = ?", *f.PatientID)
	}
	if f.DoctorID != nil {
		w.add("h.doctor_id = ?", *f.DoctorID)
	}
	if f.Status != nil {
		w.add("h.status = ?", *f.Status)
	}
	if !f.Range.From.IsZero() {
		w.add("h.visit_date >= ?", f.Range.From)
	}
	if !f.Range.To.IsZero() {
		w.add("h.visit_date < ?", f.Range.To)
	}
	w.scoped(sc.Clause(scope.Booking, "h"))

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM home_visits h"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count home visits: %w", err)
	}

	var visits []*model.HomeVisitDetail
	query := homeVisitDetailSelect() + w.String() + " ORDER BY h.visit_date DESC" + limit(page)
	if err := r.selectAll(ctx, &visits, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list home visits: %w", err)
	}
	return visits, total, nil
}

func (r *homeVisitRepository) Upcoming(ctx context.Context, sc scope.Scope, after time.Time, n int) ([]*model.HomeVisitDetail, error) {
	var w where
	w.add("h.visit_date > ?", after)
	w.add("h.status <> ?", model.HomeVisitStatusCancelled)
	w.scoped(sc.Clause(scope.Booking, "h"))

	var visits []*model.HomeVisitDetail
	query := homeVisitDetailSelect() + w.String() + " ORDER BY h.visit_date ASC" + limit(model.Page{Number: 1, Size: n})
	if err := r.selectAll(ctx, &visits, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list upcoming home visits: %w", err)
	}
	return visits, nil
}
