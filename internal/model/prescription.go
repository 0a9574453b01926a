package model

import (
	"time"

	"github.com/google/uuid"
)

type Prescription struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	MedicationID  uuid.UUID  `db:"medication_id" json:"medication_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Dosage        string     `db:"dosage" json:"dosage"`
	Frequency     string     `db:"frequency" json:"frequency"`
	DurationDays  int        `db:"duration_days" json:"duration_days"`
	Instructions  *string    `db:"instructions" json:"instructions,omitempty"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       time.Time  `db:"end_date" json:"end_date"`
	IsActive      bool       `db:"is_active" json:"is_active"`
}

// SetCourse sets the start date and duration and recomputes EndDate.
func (p *Prescription) SetCourse(start time.Time, days int) {
	p.StartDate = start
	p.DurationDays = days
	p.EndDate = start.AddDate(0, 0, days)
}

type PrescriptionDetail struct {
	Prescription
	PatientName    string `db:"patient_name"`
	DoctorName     string `db:"doctor_name"`
	MedicationName string `db:"medication_name"`
}

type PrescriptionFilters struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	IsActive  *bool
	// ActiveOn keeps only prescriptions whose end date is on or after this day.
	ActiveOn *time.Time
}

type CreatePrescriptionRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID      *uuid.UUID `json:"doctor_id"`
	MedicationID  uuid.UUID  `json:"medication_id" binding:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Dosage        string     `json:"dosage" binding:"required,max=255"`
	Frequency     string     `json:"frequency" binding:"required,max=255"`
	DurationDays  int        `json:"duration_days" binding:"required,min=1"`
	Instructions  *string    `json:"instructions" binding:"omitempty,max=2000"`
	StartDate     string     `json:"start_date" binding:"required,datetime=2006-01-02"`
}

type UpdatePrescriptionRequest struct {
	Dosage       *string `json:"dosage" binding:"omitempty,max=255"`
	Frequency    *string `json:"frequency" binding:"omitempty,max=255"`
	DurationDays *int    `json:"duration_days" binding:"omitempty,min=1"`
	Instructions *string `json:"instructions" binding:"omitempty,max=2000"`
	StartDate    *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	IsActive     *bool   `json:"is_active"`
}
