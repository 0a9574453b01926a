package emergency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	MsgGuardiansOnly  = "Only guardians can report emergencies"
	MsgNotYourPatient = "You can only report emergencies for your assigned patients"
	MsgDoctorsOnly    = "Only doctors can acknowledge emergencies"
	MsgInvalidPatient = "The selected patient id is invalid."
)

// DefaultPriority applies when a report names none.
const DefaultPriority = model.PriorityHigh

type Service struct {
	repo      repository.EmergencyRepository
	patients  repository.PatientRepository
	doctors   repository.DoctorRepository
	guardians repository.GuardianRepository
	notifier  notification.Notifier
	auditor   audit.Recorder
	now       func() time.Time
}

func NewService(
	repo repository.EmergencyRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	guardians repository.GuardianRepository,
	notifier notification.Notifier,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		doctors:   doctors,
		guardians: guardians,
		notifier:  notifier,
		auditor:   auditor,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filters model.EmergencyFilters, page model.Page) ([]*model.EmergencyDetail, int, error) {
	return s.repo.List(ctx, sc, filters, page)
}

// Active lists unresolved emergencies, most urgent first.
func (s *Service) Active(ctx context.Context, sc scope.Scope, page model.Page) ([]*model.EmergencyDetail, int, error) {
	return s.repo.List(ctx, sc, model.EmergencyFilters{Unresolved: true}, page)
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.EmergencyDetail, error) {
	e, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, &e.Emergency); err != nil {
		return nil, err
	}
	return e, nil
}

// Report opens an emergency for a patient in the calling guardian's care.
// The patient's doctor is notified.
func (s *Service) Report(ctx context.Context, sc scope.Scope, req model.CreateEmergencyRequest) (*model.Emergency, error) {
	if !sc.Is(model.RoleGuardian) {
		return nil, errors.Forbidden(MsgGuardiansOnly)
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.FieldError("patient_id", MsgInvalidPatient)
		}
		return nil, err
	}
	if patient.GuardianID != sc.ProfileID() {
		return nil, errors.Forbidden(MsgNotYourPatient)
	}

	priority := DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	now := s.now()
	e := &model.Emergency{
		Base:        model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID:   patient.ID,
		GuardianID:  patient.GuardianID,
		DoctorID:    patient.DoctorID,
		Description: req.Description,
		Location:    req.Location,
		Status:      model.EmergencyStatusReported,
		Priority:    priority,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to report emergency: %w", err)
	}

	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityEmergency, e.ID, e)
	if doctor, err := s.doctors.Get(ctx, e.DoctorID); err == nil {
		s.notifier.Notify(ctx, model.NotificationEvent{
			Type:       model.EventEmergencyReported,
			EntityID:   e.ID,
			Subject:    fmt.Sprintf("Emergency reported for %s (%s priority)", patient.User.Name, e.Priority),
			Recipients: []model.Recipient{notification.RecipientOf(&doctor.User)},
			Data: map[string]string{
				"patient":     patient.User.Name,
				"priority":    string(e.Priority),
				"description": e.Description,
			},
		})
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdateEmergencyRequest) (*model.Emergency, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.Unrestricted() && !(sc.Is(model.RoleDoctor) && sc.ProfileID() == e.DoctorID) {
		return nil, errors.Forbidden("")
	}

	if req.Status != nil {
		if err := e.ApplyStatus(*req.Status, s.now()); err != nil {
			return nil, errors.BusinessRule(err.Error())
		}
	}
	if req.Priority != nil {
		e.Priority = *req.Priority
	}
	if req.ResponseNotes != nil {
		e.ResponseNotes = req.ResponseNotes
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update emergency: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityEmergency, e.ID, req)
	return e, nil
}

// Acknowledge marks the emergency as seen by its doctor. Acknowledging again
// keeps the first timestamp.
func (s *Service) Acknowledge(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.Emergency, error) {
	if !sc.Is(model.RoleDoctor) {
		return nil, errors.Forbidden(MsgDoctorsOnly)
	}

	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, e); err != nil {
		return nil, err
	}

	first := e.AcknowledgedAt == nil
	if err := e.ApplyStatus(model.EmergencyStatusAcknowledged, s.now()); err != nil {
		return nil, errors.BusinessRule(err.Error())
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to acknowledge emergency: %w", err)
	}

	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityEmergency, e.ID, map[string]interface{}{
		"status": e.Status,
	})
	if first {
		s.notifyGuardian(ctx, e)
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionDelete, model.AuditEntityEmergency, id, nil)
	return nil
}

func (s *Service) authorize(ctx context.Context, sc scope.Scope, e *model.Emergency) error {
	if sc.Unrestricted() {
		return nil
	}
	patient, err := s.patients.Get(ctx, e.PatientID)
	if err != nil {
		return err
	}
	if !sc.Permits(scope.OfBooking(e.DoctorID, &patient.Patient)) {
		return errors.Forbidden("")
	}
	return nil
}

func (s *Service) notifyGuardian(ctx context.Context, e *model.Emergency) {
	guardian, err := s.guardians.Get(ctx, e.GuardianID)
	if err != nil {
		return
	}
	s.notifier.Notify(ctx, model.NotificationEvent{
		Type:       model.EventEmergencyAcknowledged,
		EntityID:   e.ID,
		Subject:    "Emergency acknowledged by the doctor",
		Recipients: []model.Recipient{notification.RecipientOf(&guardian.User)},
		Data:       map[string]string{"status": string(e.Status)},
	})
}
