package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

func prescriptionDetailSelect() string {
	return "SELECT " + columns("rx", prescriptionCols) +
		", pu.name AS patient_name, du.name AS doctor_name, m.name AS medication_name" +
		" FROM prescriptions rx" + partiesJoin("rx") +
		" JOIN medications m ON m.id = rx.medication_id"
}

func (r *prescriptionRepository) Create(ctx context.Context, p *model.Prescription) error {
	query := "INSERT INTO prescriptions (" + columns("", prescriptionCols) + ") VALUES (" + placeholders(len(prescriptionCols)) + ")"
	_, err := r.exec(ctx, query,
		p.ID, p.PatientID, p.DoctorID, p.MedicationID, p.AppointmentID, p.Dosage, p.Frequency,
		p.DurationDays, p.Instructions, p.StartDate, p.EndDate, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	var p model.Prescription
	if err := r.get(ctx, &p, "SELECT "+columns("", prescriptionCols)+" FROM prescriptions WHERE id = ?", id); err != nil {
		return nil, notFound("prescription", err)
	}
	return &p, nil
}

func (r *prescriptionRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error) {
	var p model.PrescriptionDetail
	if err := r.get(ctx, &p, prescriptionDetailSelect()+" WHERE rx.id = ?", id); err != nil {
		return nil, notFound("prescription", err)
	}
	return &p, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, p *model.Prescription) error {
	p.UpdatedAt = time.Now()
	query := `
		UPDATE prescriptions
		SET dosage = ?, frequency = ?, duration_days = ?, instructions = ?, start_date = ?,
			end_date = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	return r.execOne(ctx, "prescription", query,
		p.Dosage, p.Frequency, p.DurationDays, p.Instructions, p.StartDate,
		p.EndDate, p.IsActive, p.UpdatedAt, p.ID,
	)
}

func (r *prescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "prescription", "DELETE FROM prescriptions WHERE id = ?", id)
}

func (r *prescriptionRepository) List(ctx context.Context, sc scope.Scope, f model.PrescriptionFilters, page model.Page) ([]*model.PrescriptionDetail, int, error) {
	var w where
	if f.PatientID != nil {
		w.add("rx.patient_id = ?", *f.PatientID)
	}
	if f.DoctorID != nil {
		w.add("rx.doctor_id = ?", *f.DoctorID)
	}
	if f.IsActive != nil {
		w.add("rx.is_active = ?", *f.IsActive)
	}
	if f.ActiveOn != nil {
		w.add("rx.end_date >= ?", *f.ActiveOn)
	}
	w.scoped(sc.Clause(scope.Booking, "rx"))

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM prescriptions rx"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}

	var prescriptions []*model.PrescriptionDetail
	query := prescriptionDetailSelect() + w.String() + " ORDER BY rx.created_at DESC" + limit(page)
	if err := r.selectAll(ctx, &prescriptions, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, total, nil
}
