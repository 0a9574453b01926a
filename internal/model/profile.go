package model

import (
	"github.com/google/uuid"
)

type GuardianRelationship string

const (
	RelationshipParent  GuardianRelationship = "parent"
	RelationshipSpouse  GuardianRelationship = "spouse"
	RelationshipSibling GuardianRelationship = "sibling"
	RelationshipChild   GuardianRelationship = "child"
	RelationshipOther   GuardianRelationship = "other"
)

type BloodType string

type Doctor struct {
	Base
	UserID        uuid.UUID `db:"user_id" json:"user_id"`
	Specialty     string    `db:"specialty" json:"specialty"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	IsAvailable   bool      `db:"is_available" json:"is_available"`
	Bio           *string   `db:"bio" json:"bio,omitempty"`
}

type Guardian struct {
	Base
	UserID            uuid.UUID            `db:"user_id" json:"user_id"`
	Relationship      GuardianRelationship `db:"relationship" json:"relationship"`
	RelationshipNotes *string              `db:"relationship_notes" json:"relationship_notes,omitempty"`
	IsPrimaryContact  bool                 `db:"is_primary_contact" json:"is_primary_contact"`
}

// Patient references exactly one guardian and one doctor; neither is owned.
type Patient struct {
	Base
	UserID                uuid.UUID  `db:"user_id" json:"user_id"`
	GuardianID            uuid.UUID  `db:"guardian_id" json:"guardian_id"`
	DoctorID              uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	BloodType             *BloodType `db:"blood_type" json:"blood_type,omitempty"`
	Allergies             *string    `db:"allergies" json:"allergies,omitempty"`
	MedicalHistory        *string    `db:"medical_history" json:"medical_history,omitempty"`
	CurrentMedications    *string    `db:"current_medications" json:"current_medications,omitempty"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
}

// DoctorWithUser, GuardianWithUser and PatientWithUser are profile rows joined
// with their owning user.
type DoctorWithUser struct {
	Doctor
	User User `db:"user"`
}

type GuardianWithUser struct {
	Guardian
	User User `db:"user"`
}

type PatientWithUser struct {
	Patient
	User User `db:"user"`
}

// Profile is the role-specific row created alongside a user at registration.
// Exactly one field is set, matching the user's role; admins have none.
type Profile struct {
	Doctor   *Doctor
	Guardian *Guardian
	Patient  *Patient
}

// ID returns the id of whichever profile is set.
func (p Profile) ID() uuid.UUID {
	switch {
	case p.Doctor != nil:
		return p.Doctor.ID
	case p.Guardian != nil:
		return p.Guardian.ID
	case p.Patient != nil:
		return p.Patient.ID
	}
	return uuid.Nil
}

type DoctorFilters struct {
	IsAvailable *bool
	Specialty   string
	Search      string
}

type PatientFilters struct {
	DoctorID   *uuid.UUID
	GuardianID *uuid.UUID
	Search     string
}

type CreateDoctorRequest struct {
	User          NewUserFields `json:"user" binding:"required"`
	Specialty     string        `json:"specialty" binding:"required,max=255"`
	LicenseNumber string        `json:"license_number" binding:"required,max=50"`
	Bio           *string       `json:"bio" binding:"omitempty,max=2000"`
}

type UpdateDoctorRequest struct {
	UpdateUserFields
	Specialty     *string `json:"specialty" binding:"omitempty,max=255"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=50"`
	IsAvailable   *bool   `json:"is_available"`
	Bio           *string `json:"bio" binding:"omitempty,max=2000"`
}

type CreateGuardianRequest struct {
	User              NewUserFields        `json:"user" binding:"required"`
	Relationship      GuardianRelationship `json:"relationship" binding:"required,oneof=parent spouse sibling child other"`
	RelationshipNotes *string              `json:"relationship_notes" binding:"omitempty,max=1000"`
	IsPrimaryContact  *bool                `json:"is_primary_contact"`
}

type UpdateGuardianRequest struct {
	UpdateUserFields
	Relationship      *GuardianRelationship `json:"relationship" binding:"omitempty,oneof=parent spouse sibling child other"`
	RelationshipNotes *string               `json:"relationship_notes" binding:"omitempty,max=1000"`
	IsPrimaryContact  *bool                 `json:"is_primary_contact"`
}

type CreatePatientRequest struct {
	User                  NewUserFields `json:"user" binding:"required"`
	GuardianID            uuid.UUID     `json:"guardian_id" binding:"required"`
	DoctorID              uuid.UUID     `json:"doctor_id" binding:"required"`
	BloodType             *BloodType    `json:"blood_type" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies             *string       `json:"allergies"`
	MedicalHistory        *string       `json:"medical_history"`
	CurrentMedications    *string       `json:"current_medications"`
	EmergencyContactName  *string       `json:"emergency_contact_name" binding:"omitempty,max=255"`
	EmergencyContactPhone *string       `json:"emergency_contact_phone" binding:"omitempty,max=20"`
}

type UpdatePatientRequest struct {
	UpdateUserFields
	GuardianID            *uuid.UUID `json:"guardian_id"`
	DoctorID              *uuid.UUID `json:"doctor_id"`
	BloodType             *BloodType `json:"blood_type" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies             *string    `json:"allergies"`
	MedicalHistory        *string    `json:"medical_history"`
	CurrentMedications    *string    `json:"current_medications"`
	EmergencyContactName  *string    `json:"emergency_contact_name" binding:"omitempty,max=255"`
	EmergencyContactPhone *string    `json:"emergency_contact_phone" binding:"omitempty,max=20"`
}

// NewUserFields is the user half of an admin-created profile.
type NewUserFields struct {
	Name           string  `json:"name" binding:"required,max=255"`
	Email          string  `json:"email" binding:"required,email,max=255"`
	Password       string  `json:"password" binding:"required,min=8"`
	Phone          string  `json:"phone" binding:"required,max=20"`
	BirthDate      string  `json:"birth_date" binding:"required,datetime=2006-01-02,before_today"`
	DocumentType   *string `json:"document_type" binding:"omitempty,max=20"`
	DocumentNumber string  `json:"document_number" binding:"required,max=50"`
	Gender         *Gender `json:"gender" binding:"omitempty,oneof=male female other"`
	Address        *string `json:"address" binding:"omitempty,max=500"`
}

// MedicalHistory is a patient's completed appointments and prescriptions,
// newest first.
type MedicalHistory struct {
	Patient       *PatientWithUser
	Appointments  []*AppointmentDetail
	Prescriptions []*PrescriptionDetail
}
