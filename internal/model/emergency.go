package model

import (
	"time"

	"github.com/google/uuid"
)

type EmergencyPriority string

const (
	PriorityLow      EmergencyPriority = "low"
	PriorityMedium   EmergencyPriority = "medium"
	PriorityHigh     EmergencyPriority = "high"
	PriorityCritical EmergencyPriority = "critical"
)

// Emergency carries a doctor and guardian copied from the patient at report time.
type Emergency struct {
	Base
	PatientID      uuid.UUID         `db:"patient_id" json:"patient_id"`
	GuardianID     uuid.UUID         `db:"guardian_id" json:"guardian_id"`
	DoctorID       uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Description    string            `db:"description" json:"description"`
	Location       *string           `db:"location" json:"location,omitempty"`
	Status         EmergencyStatus   `db:"status" json:"status"`
	Priority       EmergencyPriority `db:"priority" json:"priority"`
	ResponseNotes  *string           `db:"response_notes" json:"response_notes,omitempty"`
	AcknowledgedAt *time.Time        `db:"acknowledged_at" json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time        `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ApplyStatus moves the emergency to next and stamps acknowledged_at or
// resolved_at the first time the matching status is reached. Stamps are never
// overwritten.
func (e *Emergency) ApplyStatus(next EmergencyStatus, now time.Time) error {
	if err := e.Status.TransitionTo(next); err != nil {
		return err
	}
	e.Status = next
	switch next {
	case EmergencyStatusAcknowledged:
		if e.AcknowledgedAt == nil {
			e.AcknowledgedAt = &now
		}
	case EmergencyStatusResolved:
		if e.ResolvedAt == nil {
			e.ResolvedAt = &now
		}
	}
	return nil
}

type EmergencyDetail struct {
	Emergency
	PatientName  string `db:"patient_name"`
	DoctorName   string `db:"doctor_name"`
	GuardianName string `db:"guardian_name"`
}

type EmergencyFilters struct {
	Status    *EmergencyStatus
	Priority  *EmergencyPriority
	PatientID *uuid.UUID
	// Unresolved keeps only emergencies not yet resolved, most urgent first.
	Unresolved bool
}

type CreateEmergencyRequest struct {
	PatientID   uuid.UUID          `json:"patient_id" binding:"required"`
	Description string             `json:"description" binding:"required,max=2000"`
	Priority    *EmergencyPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	Location    *string            `json:"location" binding:"omitempty,max=500"`
}

type UpdateEmergencyRequest struct {
	Status        *EmergencyStatus   `json:"status" binding:"omitempty,oneof=reported acknowledged in_progress resolved"`
	Priority      *EmergencyPriority `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	ResponseNotes *string            `json:"response_notes" binding:"omitempty,max=2000"`
}
