package guardian

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const MsgAssignedPatients = "Cannot delete guardian with assigned patients"

type Service struct {
	repo     repository.GuardianRepository
	patients repository.PatientRepository
	accounts *account.Service
	auditor  audit.Recorder
}

func NewService(repo repository.GuardianRepository, patients repository.PatientRepository, accounts *account.Service, auditor audit.Recorder) *Service {
	return &Service{repo: repo, patients: patients, accounts: accounts, auditor: auditor}
}

func (s *Service) List(ctx context.Context, search string, page model.Page) ([]*model.GuardianWithUser, int, error) {
	return s.repo.List(ctx, search, page)
}

// Get is limited to admins and the guardian themself.
func (s *Service) Get(ctx context.Context, sc scope.Scope, id uuid.UUID) (*model.GuardianWithUser, error) {
	if !self(sc, id) {
		return nil, errors.Forbidden("")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreateGuardianRequest) (*model.GuardianWithUser, error) {
	profile := &model.Guardian{
		Relationship:      req.Relationship,
		RelationshipNotes: req.RelationshipNotes,
		IsPrimaryContact:  true,
	}
	if req.IsPrimaryContact != nil {
		profile.IsPrimaryContact = *req.IsPrimaryContact
	}

	user, err := s.accounts.Open(ctx, req.User, model.RoleGuardian, model.Profile{Guardian: profile})
	if err != nil {
		return nil, err
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityGuardian, profile.ID, profile)
	return &model.GuardianWithUser{Guardian: *profile, User: *user}, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdateGuardianRequest) (*model.GuardianWithUser, error) {
	g, err := s.Get(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	req.UpdateUserFields.Apply(&g.User)
	if req.Relationship != nil {
		g.Relationship = *req.Relationship
	}
	if req.RelationshipNotes != nil {
		g.RelationshipNotes = req.RelationshipNotes
	}
	if req.IsPrimaryContact != nil {
		g.IsPrimaryContact = *req.IsPrimaryContact
	}

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to update guardian: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityGuardian, g.ID, req)
	return g, nil
}

func (s *Service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	assigned, err := s.repo.HasPatients(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check patients: %w", err)
	}
	if assigned {
		return errors.BusinessRule(MsgAssignedPatients)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrStillReferenced) {
			return errors.BusinessRule(MsgAssignedPatients)
		}
		return fmt.Errorf("failed to delete guardian: %w", err)
	}
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionDelete, model.AuditEntityGuardian, id, nil)
	return nil
}

// Patients lists the patients under the guardian's care.
func (s *Service) Patients(ctx context.Context, sc scope.Scope, id uuid.UUID, page model.Page) ([]*model.PatientWithUser, int, error) {
	if _, err := s.Get(ctx, sc, id); err != nil {
		return nil, 0, err
	}
	return s.patients.List(ctx, sc, model.PatientFilters{GuardianID: &id}, page)
}

func self(sc scope.Scope, guardianID uuid.UUID) bool {
	return sc.Unrestricted() || (sc.Is(model.RoleGuardian) && sc.ProfileID() == guardianID)
}
