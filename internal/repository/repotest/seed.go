package repotest

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Clinic is a small seeded world: one admin, two doctors, two guardians and
// one patient per guardian, each patient assigned to the doctor of the same
// index.
type Clinic struct {
	Admin     *model.User
	Doctors   []*model.DoctorWithUser
	Guardians []*model.GuardianWithUser
	Patients  []*model.PatientWithUser
}

// Seed fills s with a Clinic.
func Seed(s *Store) *Clinic {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &Clinic{Admin: s.seedUser("Admin", model.RoleAdmin)}
	for i, name := range []string{"Dr. Alves", "Dr. Brito"} {
		u := s.seedUser(name, model.RoleDoctor)
		d := model.Doctor{
			Base:          newBase(),
			UserID:        u.ID,
			Specialty:     []string{"Pediatrics", "Cardiology"}[i],
			LicenseNumber: "LIC-" + u.ID.String()[:8],
			IsAvailable:   true,
		}
		s.doctors[d.ID] = d
		c.Doctors = append(c.Doctors, &model.DoctorWithUser{Doctor: d, User: *u})
	}
	for _, name := range []string{"Gina", "Hugo"} {
		u := s.seedUser(name, model.RoleGuardian)
		g := model.Guardian{Base: newBase(), UserID: u.ID, Relationship: model.RelationshipParent, IsPrimaryContact: true}
		s.guardians[g.ID] = g
		c.Guardians = append(c.Guardians, &model.GuardianWithUser{Guardian: g, User: *u})
	}
	for i, name := range []string{"Pia", "Rui"} {
		u := s.seedUser(name, model.RolePatient)
		p := model.Patient{
			Base:       newBase(),
			UserID:     u.ID,
			GuardianID: c.Guardians[i].ID,
			DoctorID:   c.Doctors[i].ID,
		}
		s.patients[p.ID] = p
		c.Patients = append(c.Patients, &model.PatientWithUser{Patient: p, User: *u})
	}
	return c
}

// Identity returns the identity a token for the given seeded profile carries.
func Identity(role model.Role, userID, profileID uuid.UUID) model.Identity {
	return model.Identity{UserID: userID, Role: role, ProfileID: profileID, TokenID: uuid.NewString()}
}

func (c *Clinic) AdminIdentity() model.Identity {
	return Identity(model.RoleAdmin, c.Admin.ID, uuid.Nil)
}

func (c *Clinic) DoctorIdentity(i int) model.Identity {
	return Identity(model.RoleDoctor, c.Doctors[i].UserID, c.Doctors[i].ID)
}

func (c *Clinic) GuardianIdentity(i int) model.Identity {
	return Identity(model.RoleGuardian, c.Guardians[i].UserID, c.Guardians[i].ID)
}

func (c *Clinic) PatientIdentity(i int) model.Identity {
	return Identity(model.RolePatient, c.Patients[i].UserID, c.Patients[i].ID)
}

func newBase() model.Base {
	now := time.Now()
	return model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (s *Store) seedUser(name string, role model.Role) *model.User {
	b := newBase()
	u := model.User{
		Base:           b,
		Name:           name,
		Email:          b.ID.String()[:8] + "@clinic.test",
		PasswordHash:   "x",
		Role:           role,
		Phone:          "555-0100",
		BirthDate:      time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		DocumentNumber: "DOC-" + b.ID.String()[:8],
	}
	s.users[u.ID] = u
	return &u
}
