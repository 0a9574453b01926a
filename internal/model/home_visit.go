package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinHomeVisitMinutes     = 30
	MaxHomeVisitMinutes     = 480
	DefaultHomeVisitMinutes = 60
)

type HomeVisit struct {
	Base
	PatientID                uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID                 uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	VisitDate                time.Time       `db:"visit_date" json:"visit_date"`
	EstimatedDurationMinutes int             `db:"estimated_duration_minutes" json:"estimated_duration_minutes"`
	EndsAt                   time.Time       `db:"ends_at" json:"ends_at"`
	Status                   HomeVisitStatus `db:"status" json:"status"`
	Address                  string          `db:"address" json:"address"`
	Reason                   string          `db:"reason" json:"reason"`
	Notes                    *string         `db:"notes" json:"notes,omitempty"`
	Findings                 *string         `db:"findings" json:"findings,omitempty"`
}

// Schedule sets the start and duration and keeps EndsAt in step.
func (v *HomeVisit) Schedule(start time.Time, minutes int) {
	v.VisitDate = start
	v.EstimatedDurationMinutes = minutes
	v.EndsAt = start.Add(time.Duration(minutes) * time.Minute)
}

type HomeVisitDetail struct {
	HomeVisit
	PatientName string `db:"patient_name"`
	DoctorName  string `db:"doctor_name"`
}

type HomeVisitFilters struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *HomeVisitStatus
	Range     DateRange
}

type CreateHomeVisitRequest struct {
	PatientID                uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID                 uuid.UUID `json:"doctor_id" binding:"required"`
	VisitDate                time.Time `json:"visit_date" binding:"required"`
	EstimatedDurationMinutes *int      `json:"estimated_duration_minutes" binding:"omitempty,min=30,max=480"`
	Address                  string    `json:"address" binding:"required,max=500"`
	Reason                   string    `json:"reason" binding:"required,max=1000"`
	Notes                    *string   `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateHomeVisitRequest struct {
	VisitDate                *time.Time       `json:"visit_date"`
	EstimatedDurationMinutes *int             `json:"estimated_duration_minutes" binding:"omitempty,min=30,max=480"`
	Status                   *HomeVisitStatus `json:"status" binding:"omitempty,oneof=scheduled in_progress completed cancelled"`
	Address                  *string          `json:"address" binding:"omitempty,max=500"`
	Reason                   *string          `json:"reason" binding:"omitempty,max=1000"`
	Notes                    *string          `json:"notes" binding:"omitempty,max=2000"`
	Findings                 *string          `json:"findings" binding:"omitempty,max=5000"`
}
