package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type appointmentResponse struct {
	ID              uuid.UUID               `json:"id"`
	PatientID       uuid.UUID               `json:"patient_id"`
	DoctorID        uuid.UUID               `json:"doctor_id"`
	CreatedBy       *uuid.UUID              `json:"created_by,omitempty"`
	AppointmentDate time.Time               `json:"appointment_date"`
	DurationMinutes int                     `json:"duration_minutes"`
	EndsAt          time.Time               `json:"ends_at"`
	Status          model.AppointmentStatus `json:"status"`
	Type            model.AppointmentType   `json:"type"`
	Reason          string                  `json:"reason"`
	Notes           *string                 `json:"notes,omitempty"`
	Diagnosis       *string                 `json:"diagnosis,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// DetailResponse is returned by list, show and upcoming.
type DetailResponse struct {
	appointmentResponse
	PatientName     string `json:"patient_name"`
	DoctorName      string `json:"doctor_name"`
	DoctorSpecialty string `json:"doctor_specialty"`
}

func newAppointmentResponse(a *model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		CreatedBy:       a.CreatedBy,
		AppointmentDate: a.AppointmentDate,
		DurationMinutes: a.DurationMinutes,
		EndsAt:          a.EndsAt,
		Status:          a.Status,
		Type:            a.Type,
		Reason:          a.Reason,
		Notes:           a.Notes,
		Diagnosis:       a.Diagnosis,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func newDetailResponse(a *model.AppointmentDetail) DetailResponse {
	return DetailResponse{
		appointmentResponse: newAppointmentResponse(&a.Appointment),
		PatientName:         a.PatientName,
		DoctorName:          a.DoctorName,
		DoctorSpecialty:     a.Specialty,
	}
}

// NewDetailList renders appointment rows; doctor and patient handlers reuse it.
func NewDetailList(rows []*model.AppointmentDetail) []DetailResponse {
	out := make([]DetailResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, newDetailResponse(a))
	}
	return out
}
