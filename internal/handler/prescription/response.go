package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

type prescriptionResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	MedicationID  uuid.UUID  `json:"medication_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Dosage        string     `json:"dosage"`
	Frequency     string     `json:"frequency"`
	DurationDays  int        `json:"duration_days"`
	Instructions  *string    `json:"instructions,omitempty"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DetailResponse is returned by list, show and the patient medical history.
type DetailResponse struct {
	prescriptionResponse
	PatientName    string `json:"patient_name"`
	DoctorName     string `json:"doctor_name"`
	MedicationName string `json:"medication_name"`
}

func newPrescriptionResponse(p *model.Prescription) prescriptionResponse {
	return prescriptionResponse{
		ID:            p.ID,
		PatientID:     p.PatientID,
		DoctorID:      p.DoctorID,
		MedicationID:  p.MedicationID,
		AppointmentID: p.AppointmentID,
		Dosage:        p.Dosage,
		Frequency:     p.Frequency,
		DurationDays:  p.DurationDays,
		Instructions:  p.Instructions,
		StartDate:     p.StartDate.Format(validator.DateLayout),
		EndDate:       p.EndDate.Format(validator.DateLayout),
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

func newDetailResponse(p *model.PrescriptionDetail) DetailResponse {
	return DetailResponse{
		prescriptionResponse: newPrescriptionResponse(&p.Prescription),
		PatientName:          p.PatientName,
		DoctorName:           p.DoctorName,
		MedicationName:       p.MedicationName,
	}
}

func NewDetailList(rows []*model.PrescriptionDetail) []DetailResponse {
	out := make([]DetailResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, newDetailResponse(p))
	}
	return out
}
