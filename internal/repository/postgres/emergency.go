package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

const priorityRank = `CASE e.priority WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END`

func emergencyDetailSelect() string {
	return "SELECT " + columns("e", emergencyCols) +
		", pu.name AS patient_name, du.name AS doctor_name, gu.name AS guardian_name" +
		" FROM emergencies e" + partiesJoin("e") +
		" JOIN guardians g ON g.id = e.guardian_id JOIN users gu ON gu.id = g.user_id"
}

func (r *emergencyRepository) Create(ctx context.Context, e *model.Emergency) error {
	query := "INSERT INTO emergencies (" + columns("", emergencyCols) + ") VALUES (" + placeholders(len(emergencyCols)) + ")"
	_, err := r.exec(ctx, query,
		e.ID, e.PatientID, e.GuardianID, e.DoctorID, e.Description, e.Location, e.Status, e.Priority,
		e.ResponseNotes, e.AcknowledgedAt, e.ResolvedAt, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create emergency: %w", err)
	}
	return nil
}

func (r *emergencyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Emergency, error) {
	var e model.Emergency
	if err := r.get(ctx, &e, "SELECT "+columns("", emergencyCols)+" FROM emergencies WHERE id = ?", id); err != nil {
		return nil, notFound("emergency", err)
	}
	return &e, nil
}

func (r *emergencyRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.EmergencyDetail, error) {
	var e model.EmergencyDetail
	if err := r.get(ctx, &e, emergencyDetailSelect()+" WHERE e.id = ?", id); err != nil {
		return nil, notFound("emergency", err)
	}
	return &e, nil
}

func (r *emergencyRepository) Update(ctx context.Context, e *model.Emergency) error {
	e.UpdatedAt = time.Now()
	query := `
		UPDATE emergencies
		SET status = ?, priority = ?, response_notes = ?, acknowledged_at = ?, resolved_at = ?, updated_at = ?
		WHERE id = ?
	`
	return r.execOne(ctx, "emergency", query,
		e.Status, e.Priority, e.ResponseNotes, e.AcknowledgedAt, e.ResolvedAt, e.UpdatedAt, e.ID,
	)
}

func (r *emergencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "emergency", "DELETE FROM emergencies WHERE id = ?", id)
}

func (r *emergencyRepository) List(ctx context.Context, sc scope.Scope, f model.EmergencyFilters, page model.Page) ([]*model.EmergencyDetail, int, error) {
	var w where
	if f.Status != nil {
		w.add("e.status = ?", *f.Status)
	}
	if f.Priority != nil {
		w.add("e.priority = ?", *f.Priority)
	}
	if f.PatientID != nil {
		w.add("e.patient_id = ?", *f.PatientID)
	}
	if f.Unresolved {
		w.add("e.status <> ?", model.EmergencyStatusResolved)
	}
	w.scoped(sc.Clause(scope.Booking, "e"))

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM emergencies e"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count emergencies: %w", err)
	}

	order := " ORDER BY e.created_at DESC"
	if f.Unresolved {
		order = " ORDER BY " + priorityRank + " DESC, e.created_at DESC"
	}

	var emergencies []*model.EmergencyDetail
	query := emergencyDetailSelect() + w.String() + order + limit(page)
	if err := r.selectAll(ctx, &emergencies, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list emergencies: %w", err)
	}
	return emergencies, total, nil
}
