package patient

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/handler/appointment"
	"github.com/jwalitptl/clinic-api/internal/handler/prescription"
	"github.com/jwalitptl/clinic-api/internal/model"
)

type PatientResponse struct {
	ID                    uuid.UUID            `json:"id"`
	GuardianID            uuid.UUID            `json:"guardian_id"`
	DoctorID              uuid.UUID            `json:"doctor_id"`
	BloodType             *model.BloodType     `json:"blood_type,omitempty"`
	Allergies             *string              `json:"allergies,omitempty"`
	MedicalHistory        *string              `json:"medical_history,omitempty"`
	CurrentMedications    *string              `json:"current_medications,omitempty"`
	EmergencyContactName  *string              `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string              `json:"emergency_contact_phone,omitempty"`
	User                  handler.UserResponse `json:"user"`
}

type medicalHistoryResponse struct {
	Patient       PatientResponse               `json:"patient"`
	Appointments  []appointment.DetailResponse  `json:"appointments"`
	Prescriptions []prescription.DetailResponse `json:"prescriptions"`
}

func NewPatientResponse(p *model.PatientWithUser) PatientResponse {
	return PatientResponse{
		ID:                    p.ID,
		GuardianID:            p.GuardianID,
		DoctorID:              p.DoctorID,
		BloodType:             p.BloodType,
		Allergies:             p.Allergies,
		MedicalHistory:        p.MedicalHistory,
		CurrentMedications:    p.CurrentMedications,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		User:                  handler.NewUserResponse(&p.User),
	}
}

func NewPatientList(rows []*model.PatientWithUser) []PatientResponse {
	out := make([]PatientResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, NewPatientResponse(p))
	}
	return out
}

func newMedicalHistoryResponse(h *model.MedicalHistory) medicalHistoryResponse {
	return medicalHistoryResponse{
		Patient:       NewPatientResponse(h.Patient),
		Appointments:  appointment.NewDetailList(h.Appointments),
		Prescriptions: prescription.NewDetailList(h.Prescriptions),
	}
}
