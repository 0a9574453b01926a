// Package account opens user accounts together with their role profile. It
// backs self-registration and the admin create endpoints for doctors,
// guardians and patients.
package account

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

const (
	MsgGuardianTooYoung = "Guardian must be 18 years or older"
	MsgEmailTaken       = "The email has already been taken."
	MsgDocumentTaken    = "The document number has already been taken."
	MsgLicenseTaken     = "The license number has already been taken."
	MsgInvalidGuardian  = "The selected guardian id is invalid."
	MsgInvalidDoctor    = "The selected doctor id is invalid."
)

type Service struct {
	users     repository.UserRepository
	doctors   repository.DoctorRepository
	guardians repository.GuardianRepository
	hasher    security.PasswordHasher
	now       func() time.Time
}

func NewService(
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	guardians repository.GuardianRepository,
	hasher security.PasswordHasher,
) *Service {
	return &Service{
		users:     users,
		doctors:   doctors,
		guardians: guardians,
		hasher:    hasher,
		now:       time.Now,
	}
}

// Open creates a user with the given role and its profile in one write. The
// profile's ids and timestamps are assigned here; exactly one profile field
// must be set for non-admin roles.
func (s *Service) Open(ctx context.Context, fields model.NewUserFields, role model.Role, profile model.Profile) (*model.User, error) {
	birth, err := time.Parse(validator.DateLayout, fields.BirthDate)
	if err != nil {
		return nil, errors.FieldError("birth_date", "The birth date is not a valid date.")
	}
	if role == model.RoleGuardian && model.AgeOn(birth, s.now()) < model.GuardianMinimumAge {
		return nil, errors.FieldError("birth_date", MsgGuardianTooYoung)
	}

	if err := s.checkUnique(ctx, fields, profile); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, profile); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(fields.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		Base:           model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:           fields.Name,
		Email:          fields.Email,
		PasswordHash:   hash,
		Role:           role,
		Phone:          fields.Phone,
		BirthDate:      birth,
		DocumentType:   fields.DocumentType,
		DocumentNumber: fields.DocumentNumber,
		Gender:         fields.Gender,
		Address:        fields.Address,
	}
	base := model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	switch {
	case profile.Doctor != nil:
		profile.Doctor.Base, profile.Doctor.UserID = base, user.ID
	case profile.Guardian != nil:
		profile.Guardian.Base, profile.Guardian.UserID = base, user.ID
	case profile.Patient != nil:
		profile.Patient.Base, profile.Patient.UserID = base, user.ID
	}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.FieldError("email", MsgEmailTaken)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return user, nil
}

func (s *Service) checkUnique(ctx context.Context, fields model.NewUserFields, profile model.Profile) error {
	fieldErrs := map[string][]string{}

	taken, err := s.users.EmailTaken(ctx, fields.Email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		fieldErrs["email"] = []string{MsgEmailTaken}
	}

	taken, err = s.users.DocumentTaken(ctx, fields.DocumentNumber)
	if err != nil {
		return fmt.Errorf("failed to check document number: %w", err)
	}
	if taken {
		fieldErrs["document_number"] = []string{MsgDocumentTaken}
	}

	if profile.Doctor != nil {
		taken, err = s.doctors.LicenseTaken(ctx, profile.Doctor.LicenseNumber, nil)
		if err != nil {
			return fmt.Errorf("failed to check license number: %w", err)
		}
		if taken {
			fieldErrs["license_number"] = []string{MsgLicenseTaken}
		}
	}

	if len(fieldErrs) > 0 {
		return errors.Validation(fieldErrs)
	}
	return nil
}

func (s *Service) checkReferences(ctx context.Context, profile model.Profile) error {
	if profile.Patient == nil {
		return nil
	}
	return CheckAssignment(ctx, s.guardians, s.doctors, profile.Patient.GuardianID, profile.Patient.DoctorID)
}

// CheckAssignment verifies that a patient's guardian and doctor exist.
func CheckAssignment(ctx context.Context, guardians repository.GuardianRepository, doctors repository.DoctorRepository, guardianID, doctorID uuid.UUID) error {
	fieldErrs := map[string][]string{}
	if _, err := guardians.Get(ctx, guardianID); err != nil {
		if !errors.IsNotFound(err) {
			return err
		}
		fieldErrs["guardian_id"] = []string{MsgInvalidGuardian}
	}
	if _, err := doctors.Get(ctx, doctorID); err != nil {
		if !errors.IsNotFound(err) {
			return err
		}
		fieldErrs["doctor_id"] = []string{MsgInvalidDoctor}
	}
	if len(fieldErrs) > 0 {
		return errors.Validation(fieldErrs)
	}
	return nil
}
