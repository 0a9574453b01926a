package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

func (r *medicationRepository) Create(ctx context.Context, m *model.Medication) error {
	query := "INSERT INTO medications (" + columns("", medicationCols) + ") VALUES (" + placeholders(len(medicationCols)) + ")"
	_, err := r.exec(ctx, query,
		m.ID, m.Name, m.Description, m.DosageInfo, m.SideEffects, m.Contraindications,
		m.RequiresPrescription, m.IsActive, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	var m model.Medication
	if err := r.get(ctx, &m, "SELECT "+columns("", medicationCols)+" FROM medications WHERE id = ?", id); err != nil {
		return nil, notFound("medication", err)
	}
	return &m, nil
}

func (r *medicationRepository) Update(ctx context.Context, m *model.Medication) error {
	m.UpdatedAt = time.Now()
	query := `
		UPDATE medications
		SET name = ?, description = ?, dosage_info = ?, side_effects = ?, contraindications = ?,
			requires_prescription = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	return r.execOne(ctx, "medication", query,
		m.Name, m.Description, m.DosageInfo, m.SideEffects, m.Contraindications,
		m.RequiresPrescription, m.IsActive, m.UpdatedAt, m.ID,
	)
}

func (r *medicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "medication", "DELETE FROM medications WHERE id = ?", id)
}

func (r *medicationRepository) List(ctx context.Context, f model.MedicationFilters, page model.Page) ([]*model.Medication, int, error) {
	var w where
	if f.IsActive != nil {
		w.add("is_active = ?", *f.IsActive)
	}
	if f.RequiresPrescription != nil {
		w.add("requires_prescription = ?", *f.RequiresPrescription)
	}
	if f.Search != "" {
		w.add("LOWER(name) LIKE ?", search(f.Search))
	}

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM medications"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count medications: %w", err)
	}

	var medications []*model.Medication
	query := "SELECT " + columns("", medicationCols) + " FROM medications" + w.String() + " ORDER BY name ASC" + limit(page)
	if err := r.selectAll(ctx, &medications, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list medications: %w", err)
	}
	return medications, total, nil
}

func (r *medicationRepository) HasPrescriptions(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM prescriptions WHERE medication_id = ?", id)
}
