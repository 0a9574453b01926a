package doctor

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
)

type doctorResponse struct {
	ID            uuid.UUID            `json:"id"`
	Specialty     string               `json:"specialty"`
	LicenseNumber string               `json:"license_number"`
	IsAvailable   bool                 `json:"is_available"`
	Bio           *string              `json:"bio,omitempty"`
	User          handler.UserResponse `json:"user"`
}

// availableDoctorResponse is the compact listing used by booking forms.
type availableDoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
}

func newDoctorResponse(d *model.DoctorWithUser) doctorResponse {
	return doctorResponse{
		ID:            d.ID,
		Specialty:     d.Specialty,
		LicenseNumber: d.LicenseNumber,
		IsAvailable:   d.IsAvailable,
		Bio:           d.Bio,
		User:          handler.NewUserResponse(&d.User),
	}
}

func newDoctorList(rows []*model.DoctorWithUser) []doctorResponse {
	out := make([]doctorResponse, 0, len(rows))
	for _, d := range rows {
		out = append(out, newDoctorResponse(d))
	}
	return out
}

func newAvailableList(rows []*model.DoctorWithUser) []availableDoctorResponse {
	out := make([]availableDoctorResponse, 0, len(rows))
	for _, d := range rows {
		out = append(out, availableDoctorResponse{ID: d.ID, Name: d.User.Name, Specialty: d.Specialty})
	}
	return out
}
