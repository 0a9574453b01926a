package emergency

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type emergencyResponse struct {
	ID             uuid.UUID               `json:"id"`
	PatientID      uuid.UUID               `json:"patient_id"`
	GuardianID     uuid.UUID               `json:"guardian_id"`
	DoctorID       uuid.UUID               `json:"doctor_id"`
	Description    string                  `json:"description"`
	Location       *string                 `json:"location,omitempty"`
	Status         model.EmergencyStatus   `json:"status"`
	Priority       model.EmergencyPriority `json:"priority"`
	ResponseNotes  *string                 `json:"response_notes,omitempty"`
	AcknowledgedAt *time.Time              `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time              `json:"resolved_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

type emergencyDetailResponse struct {
	emergencyResponse
	PatientName  string `json:"patient_name"`
	DoctorName   string `json:"doctor_name"`
	GuardianName string `json:"guardian_name"`
}

func newEmergencyResponse(e *model.Emergency) emergencyResponse {
	return emergencyResponse{
		ID:             e.ID,
		PatientID:      e.PatientID,
		GuardianID:     e.GuardianID,
		DoctorID:       e.DoctorID,
		Description:    e.Description,
		Location:       e.Location,
		Status:         e.Status,
		Priority:       e.Priority,
		ResponseNotes:  e.ResponseNotes,
		AcknowledgedAt: e.AcknowledgedAt,
		ResolvedAt:     e.ResolvedAt,
		CreatedAt:      e.CreatedAt,
	}
}

func newDetailResponse(e *model.EmergencyDetail) emergencyDetailResponse {
	return emergencyDetailResponse{
		emergencyResponse: newEmergencyResponse(&e.Emergency),
		PatientName:       e.PatientName,
		DoctorName:        e.DoctorName,
		GuardianName:      e.GuardianName,
	}
}

func newDetailList(rows []*model.EmergencyDetail) []emergencyDetailResponse {
	out := make([]emergencyDetailResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, newDetailResponse(e))
	}
	return out
}
