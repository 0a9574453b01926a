package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	MsgActiveAppointments = "Cannot delete doctor with active appointments"
	MsgAssignedPatients   = "Cannot delete doctor with assigned patients"

	availableKey = "available"
)

type Service struct {
	repo         repository.DoctorRepository
	appointments repository.AppointmentRepository
	accounts     *account.Service
	auditor      audit.Recorder
	cache        *cache.Cache
	now          func() time.Time
}

// NewService caches the available-doctor listing for ttl; writes through
// this service drop the cached copy.
func NewService(
	repo repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	accounts *account.Service,
	auditor audit.Recorder,
	ttl time.Duration,
) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		accounts:     accounts,
		auditor:      auditor,
		cache:        cache.New(ttl, 2*ttl),
		now:          time.Now,
	}
}

func (s *Service) List(ctx context.Context, filters model.DoctorFilters, page model.Page) ([]*model.DoctorWithUser, int, error) {
	return s.repo.List(ctx, filters, page)
}

// Available lists every doctor accepting bookings, by name.
func (s *Service) Available(ctx context.Context) ([]*model.DoctorWithUser, error) {
	if cached, ok := s.cache.Get(availableKey); ok {
		return cached.([]*model.DoctorWithUser), nil
	}

	available := true
	doctors, _, err := s.repo.List(ctx, model.DoctorFilters{IsAvailable: &available}, model.Page{})
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(availableKey, doctors)
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DoctorWithUser, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreateDoctorRequest) (*model.DoctorWithUser, error) {
	profile := &model.Doctor{
		Specialty:     req.Specialty,
		LicenseNumber: req.LicenseNumber,
		IsAvailable:   true,
		Bio:           req.Bio,
	}
	user, err := s.accounts.Open(ctx, req.User, model.RoleDoctor, model.Profile{Doctor: profile})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(availableKey)
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityDoctor, profile.ID, profile)
	return &model.DoctorWithUser{Doctor: *profile, User: *user}, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdateDoctorRequest) (*model.DoctorWithUser, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.LicenseNumber != nil && *req.LicenseNumber != d.LicenseNumber {
		taken, err := s.repo.LicenseTaken(ctx, *req.LicenseNumber, &d.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.FieldError("license_number", account.MsgLicenseTaken)
		}
		d.LicenseNumber = *req.LicenseNumber
	}

	req.UpdateUserFields.Apply(&d.User)
	if req.Specialty != nil {
		d.Specialty = *req.Specialty
	}
	if req.IsAvailable != nil {
		d.IsAvailable = *req.IsAvailable
	}
	if req.Bio != nil {
		d.Bio = req.Bio
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	s.cache.Delete(availableKey)
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityDoctor, d.ID, req)
	return d, nil
}

// Delete refuses while the doctor has future non-cancelled appointments or
// assigned patients.
func (s *Service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	active, err := s.repo.HasActiveAppointments(ctx, id, s.now())
	if err != nil {
		return fmt.Errorf("failed to check appointments: %w", err)
	}
	if active {
		return errors.BusinessRule(MsgActiveAppointments)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrStillReferenced) {
			return errors.BusinessRule(MsgAssignedPatients)
		}
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	s.cache.Delete(availableKey)
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionDelete, model.AuditEntityDoctor, id, nil)
	return nil
}

// Appointments lists a doctor's appointments as seen by the caller.
func (s *Service) Appointments(ctx context.Context, sc scope.Scope, id uuid.UUID, filters model.AppointmentFilters, page model.Page) ([]*model.AppointmentDetail, int, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	filters.DoctorID = &id
	return s.appointments.List(ctx, sc, filters, page)
}
