package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

func doctorWithUserSelect() string {
	return "SELECT " + doctorColumns("d") + ", " + nested("u", "user", userCols) +
		" FROM doctors d JOIN users u ON u.id = d.user_id"
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorWithUser, error) {
	var doctor model.DoctorWithUser
	if err := r.get(ctx, &doctor, doctorWithUserSelect()+" WHERE d.id = ?", id); err != nil {
		return nil, notFound("doctor", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) List(ctx context.Context, filters model.DoctorFilters, page model.Page) ([]*model.DoctorWithUser, int, error) {
	var w where
	if filters.IsAvailable != nil {
		w.add("d.is_available = ?", *filters.IsAvailable)
	}
	if filters.Specialty != "" {
		w.add("LOWER(d.specialty) LIKE ?", search(filters.Specialty))
	}
	if filters.Search != "" {
		w.add("LOWER(u.name) LIKE ?", search(filters.Search))
	}

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM doctors d JOIN users u ON u.id = d.user_id"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	var doctors []*model.DoctorWithUser
	query := doctorWithUserSelect() + w.String() + " ORDER BY u.name ASC" + limit(page)
	if err := r.selectAll(ctx, &doctors, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.DoctorWithUser) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		b := r.bound(tx)
		if err := updateUser(ctx, &b, &doctor.User); err != nil {
			return fmt.Errorf("failed to update doctor user: %w", err)
		}

		doctor.UpdatedAt = time.Now()
		query := `
			UPDATE doctors
			SET specialty = ?, license_number = ?, is_available = ?, bio = ?, updated_at = ?
			WHERE id = ?
		`
		return b.execOne(ctx, "doctor", query,
			doctor.Specialty, doctor.LicenseNumber, doctor.IsAvailable, doctor.Bio, doctor.UpdatedAt, doctor.ID)
	})
}

// Delete removes the backing user; the profile goes with it by cascade.
func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = (SELECT user_id FROM doctors WHERE id = ?)`
	if err := r.execOne(ctx, "doctor", query, id); err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) LicenseTaken(ctx context.Context, license string, exclude *uuid.UUID) (bool, error) {
	if exclude != nil {
		return r.exists(ctx, "SELECT 1 FROM doctors WHERE license_number = ? AND id <> ?", license, *exclude)
	}
	return r.exists(ctx, "SELECT 1 FROM doctors WHERE license_number = ?", license)
}

func (r *doctorRepository) HasActiveAppointments(ctx context.Context, id uuid.UUID, after time.Time) (bool, error) {
	query := `
		SELECT 1 FROM appointments
		WHERE doctor_id = ? AND appointment_date > ? AND status <> ?
	`
	return r.exists(ctx, query, id, after, model.AppointmentStatusCancelled)
}
