package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentType string

const (
	AppointmentTypeConsultation   AppointmentType = "consultation"
	AppointmentTypeFollowUp       AppointmentType = "follow_up"
	AppointmentTypeEmergency      AppointmentType = "emergency"
	AppointmentTypeRoutineCheckup AppointmentType = "routine_checkup"
)

const (
	MinAppointmentMinutes     = 15
	MaxAppointmentMinutes     = 240
	DefaultAppointmentMinutes = 30
)

type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	CreatedBy       *uuid.UUID        `db:"created_by" json:"created_by,omitempty"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	DurationMinutes int               `db:"duration_minutes" json:"duration_minutes"`
	EndsAt          time.Time         `db:"ends_at" json:"ends_at"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Type            AppointmentType   `db:"type" json:"type"`
	Reason          string            `db:"reason" json:"reason"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
	Diagnosis       *string           `db:"diagnosis" json:"diagnosis,omitempty"`
}

// Schedule sets the start and duration and keeps EndsAt in step.
func (a *Appointment) Schedule(start time.Time, minutes int) {
	a.AppointmentDate = start
	a.DurationMinutes = minutes
	a.EndsAt = start.Add(time.Duration(minutes) * time.Minute)
}

// AppointmentDetail is an appointment joined with the display names of its parties.
type AppointmentDetail struct {
	Appointment
	PatientName string `db:"patient_name"`
	DoctorName  string `db:"doctor_name"`
	Specialty   string `db:"doctor_specialty"`
}

type AppointmentFilters struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *AppointmentStatus
	Range     DateRange
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID       `json:"patient_id" binding:"required"`
	DoctorID        uuid.UUID       `json:"doctor_id" binding:"required"`
	AppointmentDate time.Time       `json:"appointment_date" binding:"required"`
	DurationMinutes *int            `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	Type            AppointmentType `json:"type" binding:"required,oneof=consultation follow_up emergency routine_checkup"`
	Reason          string          `json:"reason" binding:"required,max=1000"`
	Notes           *string         `json:"notes" binding:"omitempty,max=2000"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate *time.Time         `json:"appointment_date"`
	DurationMinutes *int               `json:"duration_minutes" binding:"omitempty,min=15,max=240"`
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled confirmed in_progress completed cancelled rescheduled"`
	Type            *AppointmentType   `json:"type" binding:"omitempty,oneof=consultation follow_up emergency routine_checkup"`
	Reason          *string            `json:"reason" binding:"omitempty,max=1000"`
	Notes           *string            `json:"notes" binding:"omitempty,max=2000"`
	Diagnosis       *string            `json:"diagnosis" binding:"omitempty,max=5000"`
}
