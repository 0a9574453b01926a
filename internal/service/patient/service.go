package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

type Service struct {
	repo          repository.PatientRepository
	guardians     repository.GuardianRepository
	doctors       repository.DoctorRepository
	appointments  repository.AppointmentRepository
	prescriptions repository.PrescriptionRepository
	accounts      *account.Service
	auditor       audit.Recorder
}

func NewService(
	repo repository.PatientRepository,
	guardians repository.GuardianRepository,
	doctors repository.DoctorRepository,
	appointments repository.AppointmentRepository,
	prescriptions repository.PrescriptionRepository,
	accounts *account.Service,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:          repo,
		guardians:     guardians,
		doctors:       doctors,
		appointments:  appointments,
		prescriptions: prescriptions,
		accounts:      accounts,
		auditor:       auditor,
	}
}

func (s *Service) List(ctx context.Context, sc scope.Scope, filters model.PatientFilters, page model.Page) ([]*model.PatientWithUser, int, error) {
	return s.repo.List(ctx, sc, filters, page)
}

func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.PatientWithUser, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.Permits(scope.OfPatient(&p.Patient)) {
		return nil, errors.Forbidden("")
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreatePatientRequest) (*model.PatientWithUser, error) {
	profile := &model.Patient{
		GuardianID:            req.GuardianID,
		DoctorID:              req.DoctorID,
		BloodType:             req.BloodType,
		Allergies:             req.Allergies,
		MedicalHistory:        req.MedicalHistory,
		CurrentMedications:    req.CurrentMedications,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	}
	user, err := s.accounts.Open(ctx, req.User, model.RolePatient, model.Profile{Patient: profile})
	if err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityPatient, profile.ID, profile)
	return &model.PatientWithUser{Patient: *profile, User: *user}, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdatePatientRequest) (*model.PatientWithUser, error) {
	p, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	if req.GuardianID != nil || req.DoctorID != nil {
		guardianID, doctorID := p.GuardianID, p.DoctorID
		if req.GuardianID != nil {
			guardianID = *req.GuardianID
		}
		if req.DoctorID != nil {
			doctorID = *req.DoctorID
		}
		if err := account.CheckAssignment(ctx, s.guardians, s.doctors, guardianID, doctorID); err != nil {
			return nil, err
		}
		p.GuardianID, p.DoctorID = guardianID, doctorID
	}

	req.UpdateUserFields.Apply(&p.User)
	if req.BloodType != nil {
		p.BloodType = req.BloodType
	}
	if req.Allergies != nil {
		p.Allergies = req.Allergies
	}
	if req.MedicalHistory != nil {
		p.MedicalHistory = req.MedicalHistory
	}
	if req.CurrentMedications != nil {
		p.CurrentMedications = req.CurrentMedications
	}
	if req.EmergencyContactName != nil {
		p.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != nil {
		p.EmergencyContactPhone = req.EmergencyContactPhone
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityPatient, p.ID, req)
	return p, nil
}

// Delete removes the patient with their user account and booked history.
func (s *Service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionDelete, model.AuditEntityPatient, id, nil)
	return nil
}

func (s *Service) MedicalHistory(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.MedicalHistory, error) {
	p, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	completed := model.AppointmentStatusCompleted
	appointments, _, err := s.appointments.List(ctx, sc, model.AppointmentFilters{PatientID: &p.ID, Status: &completed}, model.Page{})
	if err != nil {
		return nil, err
	}
	prescriptions, _, err := s.prescriptions.List(ctx, sc, model.PrescriptionFilters{PatientID: &p.ID}, model.Page{})
	if err != nil {
		return nil, err
	}
	return &model.MedicalHistory{Patient: p, Appointments: appointments, Prescriptions: prescriptions}, nil
}
