package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDoctor   Role = "doctor"
	RolePatient  Role = "patient"
	RoleGuardian Role = "guardian"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient, RoleGuardian:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// GuardianMinimumAge is the youngest a guardian account may be, in whole years.
const GuardianMinimumAge = 18

type User struct {
	Base
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           Role      `db:"role" json:"role"`
	Phone          string    `db:"phone" json:"phone"`
	BirthDate      time.Time `db:"birth_date" json:"birth_date"`
	DocumentType   *string   `db:"document_type" json:"document_type,omitempty"`
	DocumentNumber string    `db:"document_number" json:"document_number"`
	Gender         *Gender   `db:"gender" json:"gender,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
}

// AgeOn returns the user's age in whole years on the given day.
func AgeOn(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}

type RegisterRequest struct {
	Name                 string  `json:"name" binding:"required,max=255"`
	Email                string  `json:"email" binding:"required,email,max=255"`
	Password             string  `json:"password" binding:"required,min=8"`
	PasswordConfirmation string  `json:"password_confirmation" binding:"required,eqfield=Password"`
	RoleName             Role    `json:"role_name" binding:"required,oneof=admin doctor patient guardian"`
	Phone                string  `json:"phone" binding:"required,max=20"`
	BirthDate            string  `json:"birth_date" binding:"required,datetime=2006-01-02,before_today"`
	DocumentType         *string `json:"document_type" binding:"omitempty,max=20"`
	DocumentNumber       string  `json:"document_number" binding:"required,max=50"`
	Gender               *Gender `json:"gender" binding:"omitempty,oneof=male female other"`
	Address              *string `json:"address" binding:"omitempty,max=500"`

	Specialty     string               `json:"specialty" binding:"required_if=RoleName doctor,max=255"`
	LicenseNumber string               `json:"license_number" binding:"required_if=RoleName doctor,max=50"`
	Relationship  GuardianRelationship `json:"relationship" binding:"required_if=RoleName guardian,omitempty,oneof=parent spouse sibling child other"`
	GuardianID    *uuid.UUID           `json:"guardian_id" binding:"required_if=RoleName patient"`
	DoctorID      *uuid.UUID           `json:"doctor_id" binding:"required_if=RoleName patient"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserFields holds the user columns editable through a profile endpoint.
type UpdateUserFields struct {
	Name    *string `json:"name" binding:"omitempty,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=20"`
	Address *string `json:"address" binding:"omitempty,max=500"`
}

// Apply copies the set fields onto u.
func (f UpdateUserFields) Apply(u *User) {
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Phone != nil {
		u.Phone = *f.Phone
	}
	if f.Address != nil {
		u.Address = f.Address
	}
}

// UserFields returns the user half of the registration.
func (r RegisterRequest) UserFields() NewUserFields {
	return NewUserFields{
		Name:           r.Name,
		Email:          r.Email,
		Password:       r.Password,
		Phone:          r.Phone,
		BirthDate:      r.BirthDate,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Gender:         r.Gender,
		Address:        r.Address,
	}
}
