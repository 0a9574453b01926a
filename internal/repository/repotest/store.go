// Package repotest provides map-backed repositories for tests. They honour the
// same contracts as the postgres implementations: not-found errors, unique
// and foreign-key violations, scope restriction and listing order.
package repotest

import (
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

// Store holds every table. Repositories returned by its accessors share it.
type Store struct {
	mu sync.Mutex
	// tx serializes Atomic blocks the way SERIALIZABLE isolation does.
	tx sync.Mutex

	users         map[uuid.UUID]model.User
	doctors       map[uuid.UUID]model.Doctor
	guardians     map[uuid.UUID]model.Guardian
	patients      map[uuid.UUID]model.Patient
	appointments  map[uuid.UUID]model.Appointment
	visits        map[uuid.UUID]model.HomeVisit
	medications   map[uuid.UUID]model.Medication
	prescriptions map[uuid.UUID]model.Prescription
	emergencies   map[uuid.UUID]model.Emergency
	audits        []model.AuditLog
}

func NewStore() *Store {
	return &Store{
		users:         map[uuid.UUID]model.User{},
		doctors:       map[uuid.UUID]model.Doctor{},
		guardians:     map[uuid.UUID]model.Guardian{},
		patients:      map[uuid.UUID]model.Patient{},
		appointments:  map[uuid.UUID]model.Appointment{},
		visits:        map[uuid.UUID]model.HomeVisit{},
		medications:   map[uuid.UUID]model.Medication{},
		prescriptions: map[uuid.UUID]model.Prescription{},
		emergencies:   map[uuid.UUID]model.Emergency{},
	}
}

func (s *Store) Users() repository.UserRepository { return &userRepo{s} }
func (s *Store) Doctors() repository.DoctorRepository { return &doctorRepo{s} }
func (s *Store) Guardians() repository.GuardianRepository { return &guardianRepo{s} }
func (s *Store) Patients() repository.PatientRepository { return &patientRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepo{s} }
func (s *Store) HomeVisits() repository.HomeVisitRepository { return &homeVisitRepo{s} }
func (s *Store) Medications() repository.MedicationRepository { return &medicationRepo{s} }
func (s *Store) Prescriptions() repository.PrescriptionRepository { return &prescriptionRepo{s} }
func (s *Store) Emergencies() repository.EmergencyRepository { return &emergencyRepo{s} }
func (s *Store) Audits() repository.AuditRepository { return &auditRepo{s} }

func notFound(resource string) error {
	return apperrors.NotFound(resource, sql.ErrNoRows)
}

// paginate returns the rows of page and the total row count.
func paginate[T any](rows []T, page model.Page) ([]T, int) {
	total := len(rows)
	if page.Size <= 0 {
		return rows, total
	}
	start := page.Offset()
	if start >= total {
		return []T{}, total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	return rows[start:end], total
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortBy[T any](rows []T, less func(a, b T) bool) {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

// bookingOwner resolves the ownership of a row booked for patientID with
// doctorID. Callers hold s.mu.
func (s *Store) bookingOwner(doctorID, patientID uuid.UUID) scope.Ownership {
	p := s.patients[patientID]
	return scope.Ownership{DoctorID: doctorID, PatientID: patientID, GuardianID: p.GuardianID}
}

func (s *Store) userName(profileUserID uuid.UUID) string {
	return s.users[profileUserID].Name
}

func (s *Store) patientName(id uuid.UUID) string {
	return s.userName(s.patients[id].UserID)
}

func (s *Store) doctorName(id uuid.UUID) string {
	return s.userName(s.doctors[id].UserID)
}

func (s *Store) emailTaken(email string, exclude uuid.UUID) bool {
	for id, u := range s.users {
		if id != exclude && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) documentTaken(doc string, exclude uuid.UUID) bool {
	for id, u := range s.users {
		if id != exclude && u.DocumentNumber == doc {
			return true
		}
	}
	return false
}

func (s *Store) licenseTaken(license string, exclude uuid.UUID) bool {
	for id, d := range s.doctors {
		if id != exclude && d.LicenseNumber == license {
			return true
		}
	}
	return false
}

// deleteUser removes a user and cascades to the owned profile and its rows.
// Patients still pointing at a doctor or guardian profile block the delete.
func (s *Store) deleteUser(userID uuid.UUID) error {
	for id, d := range s.doctors {
		if d.UserID != userID {
			continue
		}
		for _, p := range s.patients {
			if p.DoctorID == id {
				return repository.ErrStillReferenced
			}
		}
		s.cascadeDoctor(id)
		delete(s.doctors, id)
	}
	for id, g := range s.guardians {
		if g.UserID != userID {
			continue
		}
		for _, p := range s.patients {
			if p.GuardianID == id {
				return repository.ErrStillReferenced
			}
		}
		for eid, e := range s.emergencies {
			if e.GuardianID == id {
				delete(s.emergencies, eid)
			}
		}
		delete(s.guardians, id)
	}
	for id, p := range s.patients {
		if p.UserID == userID {
			s.cascadePatient(id)
			delete(s.patients, id)
		}
	}
	for id, a := range s.appointments {
		if a.CreatedBy != nil && *a.CreatedBy == userID {
			a.CreatedBy = nil
			s.appointments[id] = a
		}
	}
	delete(s.users, userID)
	return nil
}

func (s *Store) cascadeDoctor(id uuid.UUID) {
	for aid, a := range s.appointments {
		if a.DoctorID == id {
			s.dropAppointment(aid)
		}
	}
	for vid, v := range s.visits {
		if v.DoctorID == id {
			delete(s.visits, vid)
		}
	}
	for rid, rx := range s.prescriptions {
		if rx.DoctorID == id {
			delete(s.prescriptions, rid)
		}
	}
	for eid, e := range s.emergencies {
		if e.DoctorID == id {
			delete(s.emergencies, eid)
		}
	}
}

func (s *Store) cascadePatient(id uuid.UUID) {
	for aid, a := range s.appointments {
		if a.PatientID == id {
			s.dropAppointment(aid)
		}
	}
	for vid, v := range s.visits {
		if v.PatientID == id {
			delete(s.visits, vid)
		}
	}
	for rid, rx := range s.prescriptions {
		if rx.PatientID == id {
			delete(s.prescriptions, rid)
		}
	}
	for eid, e := range s.emergencies {
		if e.PatientID == id {
			delete(s.emergencies, eid)
		}
	}
}

func (s *Store) dropAppointment(id uuid.UUID) {
	delete(s.appointments, id)
	for rid, rx := range s.prescriptions {
		if rx.AppointmentID != nil && *rx.AppointmentID == id {
			rx.AppointmentID = nil
			s.prescriptions[rid] = rx
		}
	}
}
