package auth

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

const MsgInvalidCredentials = "Invalid credentials"

type Service struct {
	users       repository.UserRepository
	accounts    *account.Service
	jwtSvc      auth.JWTService
	revocations auth.RevocationStore
	hasher      security.PasswordHasher
	auditor     audit.Recorder
}

func NewService(
	users repository.UserRepository,
	accounts *account.Service,
	jwtSvc auth.JWTService,
	revocations auth.RevocationStore,
	hasher security.PasswordHasher,
	auditor audit.Recorder,
) *Service {
	return &Service{
		users:       users,
		accounts:    accounts,
		jwtSvc:      jwtSvc,
		revocations: revocations,
		hasher:      hasher,
		auditor:     auditor,
	}
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResult, error) {
	var profile model.Profile
	switch req.RoleName {
	case model.RoleDoctor:
		profile.Doctor = &model.Doctor{
			Specialty:     req.Specialty,
			LicenseNumber: req.LicenseNumber,
			IsAvailable:   true,
		}
	case model.RoleGuardian:
		profile.Guardian = &model.Guardian{Relationship: req.Relationship, IsPrimaryContact: true}
	case model.RolePatient:
		if req.GuardianID == nil || req.DoctorID == nil {
			return nil, errors.FieldError("guardian_id", "The guardian id field is required.")
		}
		profile.Patient = &model.Patient{GuardianID: *req.GuardianID, DoctorID: *req.DoctorID}
	}

	user, err := s.accounts.Open(ctx, req.UserFields(), req.RoleName, profile)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtSvc.GenerateAccessToken(user, profile.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.auditor.Log(ctx, user.ID, model.AuditActionRegister, model.AuditEntityUser, user.ID, map[string]interface{}{
		"role": user.Role,
	})
	return &model.AuthResult{User: user, Profile: profile, Token: token}, nil
}

// Login never reveals whether the email exists.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized(MsgInvalidCredentials, nil)
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if stderrors.Is(err, security.ErrPasswordMismatch) {
			return nil, errors.Unauthorized(MsgInvalidCredentials, nil)
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	profile, err := s.users.Profile(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtSvc.GenerateAccessToken(user, profile.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.auditor.Log(ctx, user.ID, model.AuditActionLogin, model.AuditEntityUser, user.ID, nil)
	return &model.AuthResult{User: user, Profile: profile, Token: token}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, id *model.Identity) error {
	if err := s.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.auditor.Log(ctx, id.UserID, model.AuditActionLogout, model.AuditEntityUser, id.UserID, nil)
	return nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, model.Profile, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, model.Profile{}, err
	}
	profile, err := s.users.Profile(ctx, user)
	if err != nil {
		return nil, model.Profile{}, err
	}
	return user, profile, nil
}
