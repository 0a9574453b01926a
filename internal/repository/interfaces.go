package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/scheduling"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		// CreateWithProfile inserts the user and its role profile in one transaction.
		CreateWithProfile(ctx context.Context, user *model.User, profile model.Profile) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		EmailTaken(ctx context.Context, email string) (bool, error)
		DocumentTaken(ctx context.Context, documentNumber string) (bool, error)
		// Profile loads the role profile owned by the user. Admins have none.
		Profile(ctx context.Context, user *model.User) (model.Profile, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.DoctorWithUser, error)
		List(ctx context.Context, filters model.DoctorFilters, page model.Page) ([]*model.DoctorWithUser, int, error)
		Update(ctx context.Context, doctor *model.DoctorWithUser) error
		// Delete removes the doctor and its backing user.
		Delete(ctx context.Context, id uuid.UUID) error
		LicenseTaken(ctx context.Context, license string, exclude *uuid.UUID) (bool, error)
		HasActiveAppointments(ctx context.Context, id uuid.UUID, after time.Time) (bool, error)
	}

	GuardianRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.GuardianWithUser, error)
		List(ctx context.Context, search string, page model.Page) ([]*model.GuardianWithUser, int, error)
		Update(ctx context.Context, guardian *model.GuardianWithUser) error
		Delete(ctx context.Context, id uuid.UUID) error
		HasPatients(ctx context.Context, id uuid.UUID) (bool, error)
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.PatientWithUser, error)
		List(ctx context.Context, sc scope.Scope, filters model.PatientFilters, page model.Page) ([]*model.PatientWithUser, int, error)
		Update(ctx context.Context, patient *model.PatientWithUser) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	AppointmentRepository interface {
		scheduling.Source
		// Atomic runs fn in a serializable transaction; fn receives a repository
		// bound to that transaction.
		Atomic(ctx context.Context, fn func(AppointmentRepository) error) error
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, sc scope.Scope, filters model.AppointmentFilters, page model.Page) ([]*model.AppointmentDetail, int, error)
		Upcoming(ctx context.Context, sc scope.Scope, after time.Time, limit int) ([]*model.AppointmentDetail, error)
	}

	HomeVisitRepository interface {
		scheduling.Source
		Atomic(ctx context.Context, fn func(HomeVisitRepository) error) error
		Create(ctx context.Context, visit *model.HomeVisit) error
		Get(ctx context.Context, id uuid.UUID) (*model.HomeVisit, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.HomeVisitDetail, error)
		Update(ctx context.Context, visit *model.HomeVisit) error
		List(ctx context.Context, sc scope.Scope, filters model.HomeVisitFilters, page model.Page) ([]*model.HomeVisitDetail, int, error)
		Upcoming(ctx context.Context, sc scope.Scope, after time.Time, limit int) ([]*model.HomeVisitDetail, error)
	}

	MedicationRepository interface {
		Create(ctx context.Context, medication *model.Medication) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
		Update(ctx context.Context, medication *model.Medication) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters model.MedicationFilters, page model.Page) ([]*model.Medication, int, error)
		HasPrescriptions(ctx context.Context, id uuid.UUID) (bool, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.PrescriptionDetail, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, sc scope.Scope, filters model.PrescriptionFilters, page model.Page) ([]*model.PrescriptionDetail, int, error)
	}

	EmergencyRepository interface {
		Create(ctx context.Context, emergency *model.Emergency) error
		Get(ctx context.Context, id uuid.UUID) (*model.Emergency, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.EmergencyDetail, error)
		Update(ctx context.Context, emergency *model.Emergency) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, sc scope.Scope, filters model.EmergencyFilters, page model.Page) ([]*model.EmergencyDetail, int, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters model.AuditFilters, page model.Page) ([]*model.AuditLog, int, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)
