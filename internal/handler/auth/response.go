package auth

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
)

// profileResponse flattens whichever role profile the user owns.
type profileResponse struct {
	ID            uuid.UUID                  `json:"id"`
	Specialty     string                     `json:"specialty,omitempty"`
	LicenseNumber string                     `json:"license_number,omitempty"`
	Relationship  model.GuardianRelationship `json:"relationship,omitempty"`
	GuardianID    *uuid.UUID                 `json:"guardian_id,omitempty"`
	DoctorID      *uuid.UUID                 `json:"doctor_id,omitempty"`
}

type authResponse struct {
	User    handler.UserResponse `json:"user"`
	Profile *profileResponse     `json:"profile,omitempty"`
	Token   string               `json:"token"`
}

type meResponse struct {
	User    handler.UserResponse `json:"user"`
	Profile *profileResponse     `json:"profile,omitempty"`
}

func newProfileResponse(p model.Profile) *profileResponse {
	switch {
	case p.Doctor != nil:
		return &profileResponse{ID: p.Doctor.ID, Specialty: p.Doctor.Specialty, LicenseNumber: p.Doctor.LicenseNumber}
	case p.Guardian != nil:
		return &profileResponse{ID: p.Guardian.ID, Relationship: p.Guardian.Relationship}
	case p.Patient != nil:
		return &profileResponse{ID: p.Patient.ID, GuardianID: &p.Patient.GuardianID, DoctorID: &p.Patient.DoctorID}
	}
	return nil
}

func newAuthResponse(r *model.AuthResult) authResponse {
	return authResponse{
		User:    handler.NewUserResponse(r.User),
		Profile: newProfileResponse(r.Profile),
		Token:   r.Token,
	}
}
