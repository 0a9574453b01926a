package medication

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

type medicationResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Description          *string   `json:"description,omitempty"`
	DosageInfo           *string   `json:"dosage_info,omitempty"`
	SideEffects          *string   `json:"side_effects,omitempty"`
	Contraindications    *string   `json:"contraindications,omitempty"`
	RequiresPrescription bool      `json:"requires_prescription"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type activeMedicationResponse struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	DosageInfo           *string   `json:"dosage_info,omitempty"`
	RequiresPrescription bool      `json:"requires_prescription"`
}

func newMedicationResponse(m *model.Medication) medicationResponse {
	return medicationResponse{
		ID:                   m.ID,
		Name:                 m.Name,
		Description:          m.Description,
		DosageInfo:           m.DosageInfo,
		SideEffects:          m.SideEffects,
		Contraindications:    m.Contraindications,
		RequiresPrescription: m.RequiresPrescription,
		IsActive:             m.IsActive,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func newMedicationList(rows []*model.Medication) []medicationResponse {
	out := make([]medicationResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, newMedicationResponse(m))
	}
	return out
}

func newActiveList(rows []*model.Medication) []activeMedicationResponse {
	out := make([]activeMedicationResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, activeMedicationResponse{
			ID:                   m.ID,
			Name:                 m.Name,
			DosageInfo:           m.DosageInfo,
			RequiresPrescription: m.RequiresPrescription,
		})
	}
	return out
}
