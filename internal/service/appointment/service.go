package appointment

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scheduling"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const (
	MsgSlotTaken      = "The doctor already has an appointment at this time"
	MsgPastDate       = "Cannot schedule appointments in the past"
	MsgPastReschedule = "Cannot reschedule to a past date"
	MsgInvalidPatient = "The selected patient id is invalid."
	MsgInvalidDoctor  = "The selected doctor id is invalid."
)

const (
	UpcomingLimit = 10
	kind          = scheduling.KindAppointment
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	notifier notification.Notifier
	auditor  audit.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	notifier notification.Notifier,
	auditor audit.Recorder,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		notifier: notifier,
		auditor:  auditor,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filters model.AppointmentFilters, page model.Page) ([]*model.AppointmentDetail, int, error) {
	return s.repo.List(ctx, sc, filters, page)
}

// Upcoming returns the caller's next non-cancelled appointments, soonest first.
func (s *Service) Upcoming(ctx context.Context, sc scope.Scope) ([]*model.AppointmentDetail, error) {
	return s.repo.Upcoming(ctx, sc, s.now(), UpcomingLimit)
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.AppointmentDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, &detail.Appointment); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreateAppointmentRequest) (*model.Appointment, error) {
	patient, doctor, err := s.parties(ctx, req.PatientID, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !sc.Permits(scope.OfBooking(doctor.ID, &patient.Patient)) {
		return nil, errors.Forbidden("")
	}

	now := s.now()
	if req.AppointmentDate.Before(now) {
		return nil, errors.BusinessRule(MsgPastDate)
	}

	minutes := model.DefaultAppointmentMinutes
	if req.DurationMinutes != nil {
		minutes = *req.DurationMinutes
	}

	actor := sc.UserID()
	apt := &model.Appointment{
		Base:      model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		CreatedBy: &actor,
		Status:    model.AppointmentStatusScheduled,
		Type:      req.Type,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}
	apt.Schedule(req.AppointmentDate.UTC(), minutes)

	if err := s.book(ctx, apt, nil, func(tx repository.AppointmentRepository) error {
		return tx.Create(ctx, apt)
	}); err != nil {
		return nil, err
	}

	s.metrics.BookingsCreated.WithLabelValues(string(kind)).Inc()
	s.auditor.Log(ctx, actor, model.AuditActionCreate, model.AuditEntityAppointment, apt.ID, apt)
	s.notify(ctx, model.EventAppointmentBooked, "Appointment booked", apt, patient, doctor)
	return apt, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, apt); err != nil {
		return nil, err
	}

	before := *apt
	if req.Status != nil {
		if err := apt.Status.TransitionTo(*req.Status); err != nil {
			return nil, errors.BusinessRule(err.Error())
		}
		apt.Status = *req.Status
	}

	rescheduled := req.AppointmentDate != nil || req.DurationMinutes != nil
	if rescheduled {
		start, minutes := apt.AppointmentDate, apt.DurationMinutes
		if req.AppointmentDate != nil {
			if req.AppointmentDate.Before(s.now()) {
				return nil, errors.BusinessRule(MsgPastReschedule)
			}
			start = req.AppointmentDate.UTC()
		}
		if req.DurationMinutes != nil {
			minutes = *req.DurationMinutes
		}
		apt.Schedule(start, minutes)
	}

	if req.Type != nil {
		apt.Type = *req.Type
	}
	if req.Reason != nil {
		apt.Reason = *req.Reason
	}
	if req.Notes != nil {
		apt.Notes = req.Notes
	}
	if req.Diagnosis != nil {
		apt.Diagnosis = req.Diagnosis
	}

	write := func(tx repository.AppointmentRepository) error { return tx.Update(ctx, apt) }
	if rescheduled && apt.Status != model.AppointmentStatusCancelled {
		err = s.book(ctx, apt, &apt.ID, write)
	} else {
		err = s.repo.Update(ctx, apt)
	}
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityAppointment, apt.ID, map[string]interface{}{
		"before": before,
		"after":  apt,
	})
	if before.Status != model.AppointmentStatusCancelled && apt.Status == model.AppointmentStatusCancelled {
		s.notifyCancelled(ctx, apt)
	}
	return apt, nil
}

// Cancel is the delete operation: appointments are never removed.
func (s *Service) Cancel(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, sc, apt); err != nil {
		return err
	}
	if err := apt.Status.TransitionTo(model.AppointmentStatusCancelled); err != nil {
		return errors.BusinessRule(err.Error())
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return nil
	}

	apt.Status = model.AppointmentStatusCancelled
	if err := s.repo.Update(ctx, apt); err != nil {
		return err
	}

	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCancel, model.AuditEntityAppointment, apt.ID, nil)
	s.notifyCancelled(ctx, apt)
	return nil
}

// book runs write after a conflict check, both inside one serializable
// transaction. A lost race surfaces from the store as ErrSlotTaken.
func (s *Service) book(ctx context.Context, apt *model.Appointment, exclude *uuid.UUID, write func(repository.AppointmentRepository) error) error {
	err := s.repo.Atomic(ctx, func(tx repository.AppointmentRepository) error {
		interval := scheduling.NewInterval(apt.AppointmentDate, apt.DurationMinutes)
		conflict, err := scheduling.HasConflict(ctx, tx, apt.DoctorID, interval, exclude)
		if err != nil {
			return err
		}
		if conflict {
			return repository.ErrSlotTaken
		}
		return write(tx)
	})
	if stderrors.Is(err, repository.ErrSlotTaken) {
		s.metrics.BookingConflicts.WithLabelValues(string(kind)).Inc()
		return errors.BusinessRule(MsgSlotTaken)
	}
	if err != nil {
		return fmt.Errorf("failed to save appointment: %w", err)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, sc scope.Scope, apt *model.Appointment) error {
	if sc.Unrestricted() {
		return nil
	}
	patient, err := s.patients.Get(ctx, apt.PatientID)
	if err != nil {
		return err
	}
	if !sc.Permits(scope.OfBooking(apt.DoctorID, &patient.Patient)) {
		return errors.Forbidden("")
	}
	return nil
}

func (s *Service) parties(ctx context.Context, patientID, doctorID uuid.UUID) (*model.PatientWithUser, *model.DoctorWithUser, error) {
	fieldErrs := map[string][]string{}
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, nil, err
		}
		fieldErrs["patient_id"] = []string{MsgInvalidPatient}
	}
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, nil, err
		}
		fieldErrs["doctor_id"] = []string{MsgInvalidDoctor}
	}
	if len(fieldErrs) > 0 {
		return nil, nil, errors.Validation(fieldErrs)
	}
	return patient, doctor, nil
}

func (s *Service) notifyCancelled(ctx context.Context, apt *model.Appointment) {
	patient, doctor, err := s.parties(ctx, apt.PatientID, apt.DoctorID)
	if err != nil {
		return
	}
	s.notify(ctx, model.EventAppointmentCancelled, "Appointment cancelled", apt, patient, doctor)
}

func (s *Service) notify(ctx context.Context, event, subject string, apt *model.Appointment, patient *model.PatientWithUser, doctor *model.DoctorWithUser) {
	s.notifier.Notify(ctx, model.NotificationEvent{
		Type:     event,
		EntityID: apt.ID,
		Subject:  subject,
		Recipients: []model.Recipient{
			notification.RecipientOf(&patient.User),
			notification.RecipientOf(&doctor.User),
		},
		Data: map[string]string{
			"patient": patient.User.Name,
			"doctor":  doctor.User.Name,
			"date":    apt.AppointmentDate.Format(time.RFC3339),
			"reason":  apt.Reason,
		},
	})
}
