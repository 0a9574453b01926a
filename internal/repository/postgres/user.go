package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
)

var userColumns = columns("", userCols)

func (r *userRepository) CreateWithProfile(ctx context.Context, user *model.User, profile model.Profile) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		b := r.bound(tx)
		if err := insertUser(ctx, &b, user); err != nil {
			return err
		}

		switch {
		case profile.Doctor != nil:
			return insertDoctor(ctx, &b, profile.Doctor)
		case profile.Guardian != nil:
			return insertGuardian(ctx, &b, profile.Guardian)
		case profile.Patient != nil:
			return insertPatient(ctx, &b, profile.Patient)
		}
		return nil
	})
}

func insertUser(ctx context.Context, b *BaseRepository, user *model.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, role, phone, birth_date,
			document_type, document_number, gender, address, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := b.exec(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Phone, user.BirthDate,
		user.DocumentType, user.DocumentNumber, user.Gender, user.Address, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func insertDoctor(ctx context.Context, b *BaseRepository, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (id, user_id, specialty, license_number, is_available, bio, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := b.exec(ctx, query, d.ID, d.UserID, d.Specialty, d.LicenseNumber, d.IsAvailable, d.Bio, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func insertGuardian(ctx context.Context, b *BaseRepository, g *model.Guardian) error {
	query := `
		INSERT INTO guardians (id, user_id, relationship, relationship_notes, is_primary_contact, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := b.exec(ctx, query, g.ID, g.UserID, g.Relationship, g.RelationshipNotes, g.IsPrimaryContact, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create guardian: %w", err)
	}
	return nil
}

func insertPatient(ctx context.Context, b *BaseRepository, p *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, user_id, guardian_id, doctor_id, blood_type, allergies, medical_history,
			current_medications, emergency_contact_name, emergency_contact_phone, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := b.exec(ctx, query,
		p.ID, p.UserID, p.GuardianID, p.DoctorID, p.BloodType, p.Allergies, p.MedicalHistory,
		p.CurrentMedications, p.EmergencyContactName, p.EmergencyContactPhone, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func updateUser(ctx context.Context, b *BaseRepository, user *model.User) error {
	user.UpdatedAt = time.Now()
	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, phone = ?, birth_date = ?,
			document_type = ?, document_number = ?, gender = ?, address = ?, updated_at = ?
		WHERE id = ?
	`
	return b.execOne(ctx, "user", query,
		user.Name, user.Email, user.PasswordHash, user.Phone, user.BirthDate,
		user.DocumentType, user.DocumentNumber, user.Gender, user.Address, user.UpdatedAt,
		user.ID,
	)
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.get(ctx, &user, "SELECT "+userColumns+" FROM users WHERE LOWER(email) = LOWER(?)", email); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	if err := updateUser(ctx, &r.BaseRepository, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM users WHERE LOWER(email) = LOWER(?)", email)
}

func (r *userRepository) DocumentTaken(ctx context.Context, documentNumber string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM users WHERE document_number = ?", documentNumber)
}

func (r *userRepository) Profile(ctx context.Context, user *model.User) (model.Profile, error) {
	var (
		profile model.Profile
		err     error
	)
	switch user.Role {
	case model.RoleDoctor:
		var d model.Doctor
		err = r.get(ctx, &d, "SELECT "+doctorColumns("")+" FROM doctors WHERE user_id = ?", user.ID)
		profile.Doctor = &d
	case model.RoleGuardian:
		var g model.Guardian
		err = r.get(ctx, &g, "SELECT "+guardianColumns("")+" FROM guardians WHERE user_id = ?", user.ID)
		profile.Guardian = &g
	case model.RolePatient:
		var p model.Patient
		err = r.get(ctx, &p, "SELECT "+patientColumns("")+" FROM patients WHERE user_id = ?", user.ID)
		profile.Patient = &p
	default:
		return profile, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, nil
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}
