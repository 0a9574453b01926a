package homevisit

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
	MsgSlotTaken      = "The doctor already has a home visit at this time"
	MsgPastDate       = "Cannot schedule home visits in the past"
	MsgPastReschedule = "Cannot reschedule to a past date"
	MsgInvalidPatient = "The selected patient id is invalid."
	MsgInvalidDoctor  = "The selected doctor id is invalid."
)

const (
	UpcomingLimit = 10
	kind          = scheduling.KindHomeVisit
)

// Service books home visits. Visits are only checked against other visits of
// the same doctor, never against appointments.
type Service struct {
	repo     repository.HomeVisitRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	notifier notification.Notifier
	auditor  audit.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(
	repo repository.HomeVisitRepository,
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

func (s *Service) List(ctx context.Context, sc scope.Scope, filters model.HomeVisitFilters, page model.Page) ([]*model.HomeVisitDetail, int, error) {
	return s.repo.List(ctx, sc, filters, page)
}

func (s *Service) Upcoming(ctx context.Context, sc scope.Scope) ([]*model.HomeVisitDetail, error) {
	return s.repo.Upcoming(ctx, sc, s.now(), UpcomingLimit)
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.HomeVisitDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, &detail.HomeVisit); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreateHomeVisitRequest) (*model.HomeVisit, error) {
	if !sc.Is(model.RoleAdmin, model.RoleDoctor) {
		return nil, errors.Forbidden("")
	}

	patient, doctor, err := s.parties(ctx, req.PatientID, req.DoctorID)
	if err != nil {
		return nil, err
	}
	if !sc.Permits(scope.OfBooking(doctor.ID, &patient.Patient)) {
		return nil, errors.Forbidden("")
	}

	now := s.now()
	if req.VisitDate.Before(now) {
		return nil, errors.BusinessRule(MsgPastDate)
	}

	minutes := model.DefaultHomeVisitMinutes
	if req.EstimatedDurationMinutes != nil {
		minutes = *req.EstimatedDurationMinutes
	}

	visit := &model.HomeVisit{
		Base:      model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Status:    model.HomeVisitStatusScheduled,
		Address:   req.Address,
		Reason:    req.Reason,
		Notes:     req.Notes,
	}
	visit.Schedule(req.VisitDate.UTC(), minutes)

	if err := s.book(ctx, visit, nil, func(tx repository.HomeVisitRepository) error {
		return tx.Create(ctx, visit)
	}); err != nil {
		return nil, err
	}

	s.metrics.BookingsCreated.WithLabelValues(string(kind)).Inc()
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityHomeVisit, visit.ID, visit)
	s.notifier.Notify(ctx, model.NotificationEvent{
		Type:     model.EventHomeVisitScheduled,
		EntityID: visit.ID,
		Subject:  "Home visit scheduled",
		Recipients: []model.Recipient{
			notification.RecipientOf(&patient.User),
			notification.RecipientOf(&doctor.User),
		},
		Data: map[string]string{
			"patient": patient.User.Name,
			"doctor":  doctor.User.Name,
			"date":    visit.VisitDate.Format(time.RFC3339),
			"address": visit.Address,
		},
	})
	return visit, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdateHomeVisitRequest) (*model.HomeVisit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, sc, visit); err != nil {
		return nil, err
	}

	before := *visit
	if req.Status != nil {
		if err := visit.Status.TransitionTo(*req.Status); err != nil {
			return nil, errors.BusinessRule(err.Error())
		}
		visit.Status = *req.Status
	}

	rescheduled := req.VisitDate != nil || req.EstimatedDurationMinutes != nil
	if rescheduled {
		start, minutes := visit.VisitDate, visit.EstimatedDurationMinutes
		if req.VisitDate != nil {
			if req.VisitDate.Before(s.now()) {
				return nil, errors.BusinessRule(MsgPastReschedule)
			}
			start = req.VisitDate.UTC()
		}
		if req.EstimatedDurationMinutes != nil {
			minutes = *req.EstimatedDurationMinutes
		}
		visit.Schedule(start, minutes)
	}

	if req.Address != nil {
		visit.Address = *req.Address
	}
	if req.Reason != nil {
		visit.Reason = *req.Reason
	}
	if req.Notes != nil {
		visit.Notes = req.Notes
	}
	if req.Findings != nil {
		visit.Findings = req.Findings
	}

	if rescheduled && visit.Status != model.HomeVisitStatusCancelled {
		err = s.book(ctx, visit, &visit.ID, func(tx repository.HomeVisitRepository) error {
			return tx.Update(ctx, visit)
		})
	} else {
		err = s.repo.Update(ctx, visit)
	}
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityHomeVisit, visit.ID, map[string]interface{}{
		"before": before,
		"after":  visit,
	})
	return visit, nil
}

func (s *Service) Cancel(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, sc, visit); err != nil {
		return err
	}
	if err := visit.Status.TransitionTo(model.HomeVisitStatusCancelled); err != nil {
		return errors.BusinessRule(err.Error())
	}
	if visit.Status == model.HomeVisitStatusCancelled {
		return nil
	}

	visit.Status = model.HomeVisitStatusCancelled
	if err := s.repo.Update(ctx, visit); err != nil {
		return err
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCancel, model.AuditEntityHomeVisit, visit.ID, nil)
	return nil
}

func (s *Service) book(ctx context.Context, visit *model.HomeVisit, exclude *uuid.UUID, write func(repository.HomeVisitRepository) error) error {
	err := s.repo.Atomic(ctx, func(tx repository.HomeVisitRepository) error {
		interval := scheduling.NewInterval(visit.VisitDate, visit.EstimatedDurationMinutes)
		conflict, err := scheduling.HasConflict(ctx, tx, visit.DoctorID, interval, exclude)
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
		return fmt.Errorf("failed to save home visit: %w", err)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, sc scope.Scope, visit *model.HomeVisit) error {
	if sc.Unrestricted() {
		return nil
	}
	patient, err := s.patients.Get(ctx, visit.PatientID)
	if err != nil {
		return err
	}
	if !sc.Permits(scope.OfBooking(visit.DoctorID, &patient.Patient)) {
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
