package medication

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
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	MsgInUse = "Cannot delete medication that is used in prescriptions. Consider deactivating it instead."

	activeKey = "active"
)

type Service struct {
	repo    repository.MedicationRepository
	auditor audit.Recorder
	cache   *cache.Cache
	now     func() time.Time
}

func NewService(repo repository.MedicationRepository, auditor audit.Recorder, ttl time.Duration) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		cache:   cache.New(ttl, 2*ttl),
		now:     time.Now,
	}
}

func (s *Service) List(ctx context.Context, filters model.MedicationFilters, page model.Page) ([]*model.Medication, int, error) {
	return s.repo.List(ctx, filters, page)
}

// Active lists active medications by name. The result is cached.
func (s *Service) Active(ctx context.Context) ([]*model.Medication, error) {
	if cached, ok := s.cache.Get(activeKey); ok {
		return cached.([]*model.Medication), nil
	}

	active := true
	meds, _, err := s.repo.List(ctx, model.MedicationFilters{IsActive: &active}, model.Page{})
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(activeKey, meds)
	return meds, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sc scope.Scope, req model.CreateMedicationRequest) (*model.Medication, error) {
	now := s.now()
	m := &model.Medication{
		Base:                 model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:                 req.Name,
		Description:          req.Description,
		DosageInfo:           req.DosageInfo,
		SideEffects:          req.SideEffects,
		Contraindications:    req.Contraindications,
		RequiresPrescription: true,
		IsActive:             true,
	}
	if req.RequiresPrescription != nil {
		m.RequiresPrescription = *req.RequiresPrescription
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}
	s.cache.Delete(activeKey)
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionCreate, model.AuditEntityMedication, m.ID, m)
	return m, nil
}

func (s *Service) Update(ctx context.Context, sc scope.Scope, id uuid.UUID, req model.UpdateMedicationRequest) (*model.Medication, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Description != nil {
		m.Description = req.Description
	}
	if req.DosageInfo != nil {
		m.DosageInfo = req.DosageInfo
	}
	if req.SideEffects != nil {
		m.SideEffects = req.SideEffects
	}
	if req.Contraindications != nil {
		m.Contraindications = req.Contraindications
	}
	if req.RequiresPrescription != nil {
		m.RequiresPrescription = *req.RequiresPrescription
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	s.cache.Delete(activeKey)
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionUpdate, model.AuditEntityMedication, m.ID, req)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, sc scope.Scope, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	used, err := s.repo.HasPrescriptions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check prescriptions: %w", err)
	}
	if used {
		return errors.BusinessRule(MsgInUse)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrStillReferenced) {
			return errors.BusinessRule(MsgInUse)
		}
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	s.cache.Delete(activeKey)
	s.auditor.Log(ctx, sc.UserID(), model.AuditActionDelete, model.AuditEntityMedication, id, nil)
	return nil
}
