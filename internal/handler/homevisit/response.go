package homevisit

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type visitResponse struct {
	ID                       uuid.UUID             `json:"id"`
	PatientID                uuid.UUID             `json:"patient_id"`
	DoctorID                 uuid.UUID             `json:"doctor_id"`
	VisitDate                time.Time             `json:"visit_date"`
	EstimatedDurationMinutes int                   `json:"estimated_duration_minutes"`
	EndsAt                   time.Time             `json:"ends_at"`
	Status                   model.HomeVisitStatus `json:"status"`
	Address                  string                `json:"address"`
	Reason                   string                `json:"reason"`
	Notes                    *string               `json:"notes,omitempty"`
	Findings                 *string               `json:"findings,omitempty"`
	CreatedAt                time.Time             `json:"created_at"`
	UpdatedAt                time.Time             `json:"updated_at"`
}

type visitDetailResponse struct {
	visitResponse
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
}

func newVisitResponse(v *model.HomeVisit) visitResponse {
	return visitResponse{
		ID:                       v.ID,
		PatientID:                v.PatientID,
		DoctorID:                 v.DoctorID,
		VisitDate:                v.VisitDate,
		EstimatedDurationMinutes: v.EstimatedDurationMinutes,
		EndsAt:                   v.EndsAt,
		Status:                   v.Status,
		Address:                  v.Address,
		Reason:                   v.Reason,
		Notes:                    v.Notes,
		Findings:                 v.Findings,
		CreatedAt:                v.CreatedAt,
		UpdatedAt:                v.UpdatedAt,
	}
}

func newDetailResponse(v *model.HomeVisitDetail) visitDetailResponse {
	return visitDetailResponse{
		visitResponse: newVisitResponse(&v.HomeVisit),
		PatientName:   v.PatientName,
		DoctorName:    v.DoctorName,
	}
}

func newDetailList(rows []*model.HomeVisitDetail) []visitDetailResponse {
	out := make([]visitDetailResponse, 0, len(rows))
	for _, v := range rows {
		out = append(out, newDetailResponse(v))
	}
	return out
}
