package model

type Medication struct {
	Base
	Name                 string  `db:"name" json:"name"`
	Description          *string `db:"description" json:"description,omitempty"`
	DosageInfo           *string `db:"dosage_info" json:"dosage_info,omitempty"`
	SideEffects          *string `db:"side_effects" json:"side_effects,omitempty"`
	Contraindications    *string `db:"contraindications" json:"contraindications,omitempty"`
	RequiresPrescription bool    `db:"requires_prescription" json:"requires_prescription"`
	IsActive             bool    `db:"is_active" json:"is_active"`
}

type MedicationFilters struct {
	IsActive             *bool
	RequiresPrescription *bool
	Search               string
}

type CreateMedicationRequest struct {
	Name                 string  `json:"name" binding:"required,max=255"`
	Description          *string `json:"description"`
	DosageInfo           *string `json:"dosage_info"`
	SideEffects          *string `json:"side_effects"`
	Contraindications    *string `json:"contraindications"`
	RequiresPrescription *bool   `json:"requires_prescription"`
	IsActive             *bool   `json:"is_active"`
}

type UpdateMedicationRequest struct {
	Name                 *string `json:"name" binding:"omitempty,max=255"`
	Description          *string `json:"description"`
	DosageInfo           *string `json:"dosage_info"`
	SideEffects          *string `json:"side_effects"`
	Contraindications    *string `json:"contraindications"`
	RequiresPrescription *bool   `json:"requires_prescription"`
	IsActive             *bool   `json:"is_active"`
}
