package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/scope"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

func patientWithUserSelect() string {
	return "SELECT " + patientColumns("p") + ", " + nested("u", "user", userCols) +
		" FROM patients p JOIN users u ON u.id = p.user_id"
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientWithUser, error) {
	var patient model.PatientWithUser
	if err := r.get(ctx, &patient, patientWithUserSelect()+" WHERE p.id = ?", id); err != nil {
		return nil, notFound("patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, sc scope.Scope, filters model.PatientFilters, page model.Page) ([]*model.PatientWithUser, int, error) {
	var w where
	if filters.DoctorID != nil {
		w.add("p.doctor_id = ?", *filters.DoctorID)
	}
	if filters.GuardianID != nil {
		w.add("p.guardian_id = ?", *filters.GuardianID)
	}
	if filters.Search != "" {
		w.add("(LOWER(u.name) LIKE ? OR u.document_number LIKE ?)", search(filters.Search), "%"+filters.Search+"%")
	}
	w.scoped(sc.Clause(scope.Patient, "p"))

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM patients p JOIN users u ON u.id = p.user_id"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	var patients []*model.PatientWithUser
	query := patientWithUserSelect() + w.String() + " ORDER BY p.created_at DESC" + limit(page)
	if err := r.selectAll(ctx, &patients, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.PatientWithUser) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		b := r.bound(tx)
		if err := updateUser(ctx, &b, &patient.User); err != nil {
			return fmt.Errorf("failed to update patient user: %w", err)
		}

		patient.UpdatedAt = time.Now()
		query := `
			UPDATE patients
			SET guardian_id = ?, doctor_id = ?, blood_type = ?, allergies = ?, medical_history = ?,
				current_medications = ?, emergency_contact_name = ?, emergency_contact_phone = ?, updated_at = ?
			WHERE id = ?
		`
		return b.execOne(ctx, "patient", query,
			patient.GuardianID, patient.DoctorID, patient.BloodType, patient.Allergies, patient.MedicalHistory,
			patient.CurrentMedications, patient.EmergencyContactName, patient.EmergencyContactPhone, patient.UpdatedAt,
			patient.ID,
		)
	})
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = (SELECT user_id FROM patients WHERE id = ?)`
	if err := r.execOne(ctx, "patient", query, id); err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}
