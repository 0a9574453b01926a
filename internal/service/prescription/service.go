package prescription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type Service struct {
	repo         repository.PrescriptionRepository
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	medications  repository.MedicationRepository
	appointments repository.AppointmentRepository
	auditor      audit.Recorder
	now          func() time.Time
}

func NewService(
	repo repository.PrescriptionRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	medications repository.MedicationRepository,
	appointments repository.AppointmentRepository,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:         repo,
		patients:     patients,
		doctors:      doctors,
		medications:  medications,
		appointments: appointments,
		auditor:      auditor,
		now:          time.Now,
	}
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filters model.PrescriptionFilters, page model.Page) ([]*model.PrescriptionDetail, int, error) {
	return s.repo.List(ctx, sc, filters, page)
}

// Active lists prescriptions still flagged active whose course has not ended.
func (s *Service) Active(ctx context.Context, sc scope.Scope, page model.Page) ([]*model.PrescriptionDetail, int, error) {
	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	active := true
	return s.repo.List(ctx, sc, model.PrescriptionFilters{IsActive: &active, ActiveOn: &today}, page)
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.PrescriptionDetail, error) {
	rx, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, &rx.Prescription); err != nil {
		return nil, err
	}
	return rx, nil
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreatePrescriptionRequest) (*model.Prescription, error) {
	doctorID, err := s.prescriber(sc, req.DoctorID)
	if err != nil {
		return nil, err
	}
	start, err := time.Parse(validator.DateLayout, req.StartDate)
	if err != nil {
		return nil, errors.FieldError("start_date", "The start date is not a valid date.")
	}
	if err := s.checkReferences(ctx, req, doctorID); err != nil {
		return nil, err
	}

	now := s.now()
	rx := &model.Prescription{
		Base:          model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID:     req.PatientID,
		DoctorID:      doctorID,
		MedicationID:  req.MedicationID,
		AppointmentID: req.AppointmentID,
		Dosage:        req.Dosage,
		Frequency:     req.Frequency,
		Instructions:  req.Instructions,
		IsActive:      true,
	}
	rx.SetCourse(start, req.DurationDays)

	if err := s.repo.Create(ctx, rx); err != nil {
		return nil, fmt.Errorf("failed to create prescription: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityPrescription, rx.ID, rx)
	return rx, nil
}

// Update recomputes the end date whenever the start date or duration changes.
func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	rx, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, rx); err != nil {
		return nil, err
	}

	start, days := rx.StartDate, rx.DurationDays
	if req.StartDate != nil {
		if start, err = time.Parse(validator.DateLayout, *req.StartDate); err != nil {
			return nil, errors.FieldError("start_date", "The start date is not a valid date.")
		}
	}
	if req.DurationDays != nil {
		days = *req.DurationDays
	}
	rx.SetCourse(start, days)

	if req.Dosage != nil {
		rx.Dosage = *req.Dosage
	}
	if req.Frequency != nil {
		rx.Frequency = *req.Frequency
	}
	if req.Instructions != nil {
		rx.Instructions = req.Instructions
	}
	if req.IsActive != nil {
		rx.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, rx); err != nil {
		return nil, fmt.Errorf("failed to update prescription: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityPrescription, rx.ID, req)
	return rx, nil
}

func (s *Service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	rx, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, sc, rx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete prescription: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionDelete, model.AuditEntityPrescription, id, nil)
	return nil
}

// prescriber resolves the prescribing doctor. Doctors always prescribe as
// themselves; admins must name one.
func (s *Service) prescriber(sc scope.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	switch {
	case sc.Is(model.RoleDoctor):
		if requested != nil && *requested != sc.ProfileID() {
			return uuid.Nil, errors.Forbidden("")
		}
		return sc.ProfileID(), nil
	case sc.Unrestricted():
		if requested == nil {
			return uuid.Nil, errors.FieldError("doctor_id", "The doctor id field is required.")
		}
		return *requested, nil
	}
	return uuid.Nil, errors.Forbidden("")
}

func (s *Service) checkReferences(ctx context.Context, req model.CreatePrescriptionRequest, doctorID uuid.UUID) error {
	fieldErrs := map[string][]string{}
	check := func(field string, err error) error {
		if err == nil {
			return nil
		}
		if !errors.IsNotFound(err) {
			return err
		}
		fieldErrs[field] = []string{fmt.Sprintf("The selected %s is invalid.", strings.ReplaceAll(field, "_", " "))}
		return nil
	}

	_, err := s.patients.Get(ctx, req.PatientID)
	if err := check("patient_id", err); err != nil {
		return err
	}
	_, err = s.doctors.Get(ctx, doctorID)
	if err := check("doctor_id", err); err != nil {
		return err
	}
	_, err = s.medications.Get(ctx, req.MedicationID)
	if err := check("medication_id", err); err != nil {
		return err
	}
	if req.AppointmentID != nil {
		_, err = s.appointments.Get(ctx, *req.AppointmentID)
		if err := check("appointment_id", err); err != nil {
			return err
		}
	}

	if len(fieldErrs) > 0 {
		return errors.Validation(fieldErrs)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, sc scope.Scope, rx *model.Prescription) error {
	if sc.Unrestricted() {
		return nil
	}
	patient, err := s.patients.Get(ctx, rx.PatientID)
	if err != nil {
		return err
	}
	if !sc.Permits(scope.OfBooking(rx.DoctorID, &patient.Patient)) {
		return errors.Forbidden("")
	}
	return nil
}
