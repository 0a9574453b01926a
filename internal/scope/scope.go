// Package scope narrows reads and writes to the rows an identity may see.
//
// A Scope is computed once per request from the authenticated identity and
// consumed by every listing, either as a SQL predicate (Clause) or as an
// in-memory check (Permits).
package scope

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Kind names the shape of a scoped row.
type Kind int

const (
	// Booking rows carry doctor_id and patient_id: appointments, home visits,
	// prescriptions and emergencies.
	Booking Kind = iota
	// Patient rows are patient profiles; they carry doctor_id and guardian_id.
	Patient
)

// Ownership identifies the profiles a row belongs to.
type Ownership struct {
	DoctorID   uuid.UUID
	PatientID  uuid.UUID
	GuardianID uuid.UUID
}

// Clause is a SQL predicate using ? placeholders. An empty clause means no
// restriction.
type Clause struct {
	SQL  string
	Args []interface{}
}

func (c Clause) Empty() bool {
	return c.SQL == ""
}

var denyAll = Clause{SQL: "FALSE"}

type Scope struct {
	userID    uuid.UUID
	role      model.Role
	profileID uuid.UUID
}

func New(id model.Identity) Scope {
	return Scope{userID: id.UserID, role: id.Role, profileID: id.ProfileID}
}

// UserID is the caller's user id, recorded as the actor of writes.
func (s Scope) UserID() uuid.UUID {
	return s.userID
}

// Is reports whether the caller holds one of roles.
func (s Scope) Is(roles ...model.Role) bool {
	for _, r := range roles {
		if s.role == r {
			return true
		}
	}
	return false
}

func (s Scope) Role() model.Role {
	return s.role
}

// ProfileID is the caller's doctor, patient or guardian profile id.
func (s Scope) ProfileID() uuid.UUID {
	return s.profileID
}

// Unrestricted reports whether the scope sees every row.
func (s Scope) Unrestricted() bool {
	return s.role == model.RoleAdmin
}

// Permits reports whether a row with the given owners is visible.
func (s Scope) Permits(o Ownership) bool {
	if s.Unrestricted() {
		return true
	}
	if s.profileID == uuid.Nil {
		return false
	}
	switch s.role {
	case model.RoleDoctor:
		return o.DoctorID == s.profileID
	case model.RolePatient:
		return o.PatientID == s.profileID
	case model.RoleGuardian:
		return o.GuardianID == s.profileID
	}
	return false
}

// Clause returns the predicate restricting rows of kind under table alias.
func (s Scope) Clause(kind Kind, alias string) Clause {
	if s.Unrestricted() {
		return Clause{}
	}
	if s.profileID == uuid.Nil {
		return denyAll
	}

	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}

	switch kind {
	case Booking:
		switch s.role {
		case model.RoleDoctor:
			return Clause{SQL: col("doctor_id") + " = ?", Args: []interface{}{s.profileID}}
		case model.RolePatient:
			return Clause{SQL: col("patient_id") + " = ?", Args: []interface{}{s.profileID}}
		case model.RoleGuardian:
			return Clause{
				SQL:  col("patient_id") + " IN (SELECT id FROM patients WHERE guardian_id = ?)",
				Args: []interface{}{s.profileID},
			}
		}
	case Patient:
		switch s.role {
		case model.RoleDoctor:
			return Clause{SQL: col("doctor_id") + " = ?", Args: []interface{}{s.profileID}}
		case model.RolePatient:
			return Clause{SQL: col("id") + " = ?", Args: []interface{}{s.profileID}}
		case model.RoleGuardian:
			return Clause{SQL: col("guardian_id") + " = ?", Args: []interface{}{s.profileID}}
		}
	}
	return denyAll
}

// Filter keeps the rows Permits allows. Applying it twice yields the same set.
func Filter[T any](s Scope, rows []T, owner func(T) Ownership) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if s.Permits(owner(r)) {
			out = append(out, r)
		}
	}
	return out
}

// OfPatient returns the ownership of a patient profile.
func OfPatient(p *model.Patient) Ownership {
	return Ownership{DoctorID: p.DoctorID, PatientID: p.ID, GuardianID: p.GuardianID}
}

// OfBooking returns the ownership of a row booked for patient with doctor.
// The guardian always comes from the patient record.
func OfBooking(doctorID uuid.UUID, patient *model.Patient) Ownership {
	return Ownership{DoctorID: doctorID, PatientID: patient.ID, GuardianID: patient.GuardianID}
}
