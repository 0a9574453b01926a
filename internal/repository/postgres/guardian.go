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

func guardianWithUserSelect() string {
	return "SELECT " + guardianColumns("g") + ", " + nested("u", "user", userCols) +
		" FROM guardians g JOIN users u ON u.id = g.user_id"
}

func (r *guardianRepository) Get(ctx context.Context, id uuid.UUID) (*model.GuardianWithUser, error) {
	var guardian model.GuardianWithUser
	if err := r.get(ctx, &guardian, guardianWithUserSelect()+" WHERE g.id = ?", id); err != nil {
		return nil, notFound("guardian", err)
	}
	return &guardian, nil
}

func (r *guardianRepository) List(ctx context.Context, term string, page model.Page) ([]*model.GuardianWithUser, int, error) {
	var w where
	if term != "" {
		w.add("LOWER(u.name) LIKE ?", search(term))
	}

	var total int
	if err := r.get(ctx, &total, "SELECT COUNT(*) FROM guardians g JOIN users u ON u.id = g.user_id"+w.String(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count guardians: %w", err)
	}

	var guardians []*model.GuardianWithUser
	query := guardianWithUserSelect() + w.String() + " ORDER BY u.name ASC" + limit(page)
	if err := r.selectAll(ctx, &guardians, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list guardians: %w", err)
	}
	return guardians, total, nil
}

func (r *guardianRepository) Update(ctx context.Context, guardian *model.GuardianWithUser) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		b := r.bound(tx)
		if err := updateUser(ctx, &b, &guardian.User); err != nil {
			return fmt.Errorf("failed to update guardian user: %w", err)
		}

		guardian.UpdatedAt = time.Now()
		query := `
			UPDATE guardians
			SET relationship = ?, relationship_notes = ?, is_primary_contact = ?, updated_at = ?
			WHERE id = ?
		`
		return b.execOne(ctx, "guardian", query,
			guardian.Relationship, guardian.RelationshipNotes, guardian.IsPrimaryContact, guardian.UpdatedAt, guardian.ID)
	})
}

func (r *guardianRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = (SELECT user_id FROM guardians WHERE id = ?)`
	if err := r.execOne(ctx, "guardian", query, id); err != nil {
		if apperrors.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("failed to delete guardian: %w", err)
	}
	return nil
}

func (r *guardianRepository) HasPatients(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM patients WHERE guardian_id = ?", id)
}
