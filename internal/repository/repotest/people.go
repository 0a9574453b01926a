package repotest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

type userRepo struct{ s *Store }

func (r *userRepo) CreateWithProfile(_ context.Context, user *model.User, profile model.Profile) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, user.ID) || s.documentTaken(user.DocumentNumber, user.ID) {
		return repository.ErrDuplicate
	}
	if d := profile.Doctor; d != nil && s.licenseTaken(d.LicenseNumber, d.ID) {
		return repository.ErrDuplicate
	}
	if p := profile.Patient; p != nil {
		if _, ok := s.guardians[p.GuardianID]; !ok {
			return repository.ErrStillReferenced
		}
		if _, ok := s.doctors[p.DoctorID]; !ok {
			return repository.ErrStillReferenced
		}
	}

	s.users[user.ID] = *user
	switch {
	case profile.Doctor != nil:
		s.doctors[profile.Doctor.ID] = *profile.Doctor
	case profile.Guardian != nil:
		s.guardians[profile.Guardian.ID] = *profile.Guardian
	case profile.Patient != nil:
		s.patients[profile.Patient.ID] = *profile.Patient
	}
	return nil
}

func (r *userRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r *userRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.putUser(user)
}

func (r *userRepo) EmailTaken(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.emailTaken(email, uuid.Nil), nil
}

func (r *userRepo) DocumentTaken(_ context.Context, doc string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.documentTaken(doc, uuid.Nil), nil
}

func (r *userRepo) Profile(_ context.Context, user *model.User) (model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var profile model.Profile
	switch user.Role {
	case model.RoleDoctor:
		for _, d := range r.s.doctors {
			if d.UserID == user.ID {
				d := d
				profile.Doctor = &d
			}
		}
	case model.RoleGuardian:
		for _, g := range r.s.guardians {
			if g.UserID == user.ID {
				g := g
				profile.Guardian = &g
			}
		}
	case model.RolePatient:
		for _, p := range r.s.patients {
			if p.UserID == user.ID {
				p := p
				profile.Patient = &p
			}
		}
	}
	return profile, nil
}

func (s *Store) putUser(user *model.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return notFound("user")
	}
	if s.emailTaken(user.Email, user.ID) || s.documentTaken(user.DocumentNumber, user.ID) {
		return repository.ErrDuplicate
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

type doctorRepo struct{ s *Store }

func (r *doctorRepo) withUser(d model.Doctor) *model.DoctorWithUser {
	return &model.DoctorWithUser{Doctor: d, User: r.s.users[d.UserID]}
}

func (r *doctorRepo) Get(_ context.Context, id uuid.UUID) (*model.DoctorWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return nil, notFound("doctor")
	}
	return r.withUser(d), nil
}

func (r *doctorRepo) List(_ context.Context, filters model.DoctorFilters, page model.Page) ([]*model.DoctorWithUser, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.DoctorWithUser
	for _, d := range r.s.doctors {
		row := r.withUser(d)
		if filters.IsAvailable != nil && d.IsAvailable != *filters.IsAvailable {
			continue
		}
		if filters.Specialty != "" && !contains(d.Specialty, filters.Specialty) {
			continue
		}
		if filters.Search != "" && !contains(row.User.Name, filters.Search) {
			continue
		}
		rows = append(rows, row)
	}
	sortBy(rows, func(a, b *model.DoctorWithUser) bool { return a.User.Name < b.User.Name })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *doctorRepo) Update(_ context.Context, doctor *model.DoctorWithUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.doctors[doctor.ID]; !ok {
		return notFound("doctor")
	}
	if r.s.licenseTaken(doctor.LicenseNumber, doctor.ID) {
		return repository.ErrDuplicate
	}
	if err := r.s.putUser(&doctor.User); err != nil {
		return err
	}
	doctor.UpdatedAt = time.Now()
	r.s.doctors[doctor.ID] = doctor.Doctor
	return nil
}

func (r *doctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.doctors[id]
	if !ok {
		return notFound("doctor")
	}
	return r.s.deleteUser(d.UserID)
}

func (r *doctorRepo) LicenseTaken(_ context.Context, license string, exclude *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ex := uuid.Nil
	if exclude != nil {
		ex = *exclude
	}
	return r.s.licenseTaken(license, ex), nil
}

func (r *doctorRepo) HasActiveAppointments(_ context.Context, id uuid.UUID, after time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.appointments {
		if a.DoctorID == id && a.AppointmentDate.After(after) && a.Status != model.AppointmentStatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

type guardianRepo struct{ s *Store }

func (r *guardianRepo) withUser(g model.Guardian) *model.GuardianWithUser {
	return &model.GuardianWithUser{Guardian: g, User: r.s.users[g.UserID]}
}

func (r *guardianRepo) Get(_ context.Context, id uuid.UUID) (*model.GuardianWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.guardians[id]
	if !ok {
		return nil, notFound("guardian")
	}
	return r.withUser(g), nil
}

func (r *guardianRepo) List(_ context.Context, search string, page model.Page) ([]*model.GuardianWithUser, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.GuardianWithUser
	for _, g := range r.s.guardians {
		row := r.withUser(g)
		if search != "" && !contains(row.User.Name, search) && !contains(row.User.Email, search) {
			continue
		}
		rows = append(rows, row)
	}
	sortBy(rows, func(a, b *model.GuardianWithUser) bool { return a.User.Name < b.User.Name })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *guardianRepo) Update(_ context.Context, guardian *model.GuardianWithUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.guardians[guardian.ID]; !ok {
		return notFound("guardian")
	}
	if err := r.s.putUser(&guardian.User); err != nil {
		return err
	}
	guardian.UpdatedAt = time.Now()
	r.s.guardians[guardian.ID] = guardian.Guardian
	return nil
}

func (r *guardianRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.guardians[id]
	if !ok {
		return notFound("guardian")
	}
	return r.s.deleteUser(g.UserID)
}

func (r *guardianRepo) HasPatients(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.patients {
		if p.GuardianID == id {
			return true, nil
		}
	}
	return false, nil
}

type patientRepo struct{ s *Store }

func (r *patientRepo) withUser(p model.Patient) *model.PatientWithUser {
	return &model.PatientWithUser{Patient: p, User: r.s.users[p.UserID]}
}

func (r *patientRepo) Get(_ context.Context, id uuid.UUID) (*model.PatientWithUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, notFound("patient")
	}
	return r.withUser(p), nil
}

func (r *patientRepo) List(_ context.Context, sc scope.Scope, filters model.PatientFilters, page model.Page) ([]*model.PatientWithUser, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.PatientWithUser
	for _, p := range r.s.patients {
		row := r.withUser(p)
		if filters.DoctorID != nil && p.DoctorID != *filters.DoctorID {
			continue
		}
		if filters.GuardianID != nil && p.GuardianID != *filters.GuardianID {
			continue
		}
		if filters.Search != "" && !contains(row.User.Name, filters.Search) && !contains(row.User.DocumentNumber, filters.Search) {
			continue
		}
		rows = append(rows, row)
	}
	rows = scope.Filter(sc, rows, func(p *model.PatientWithUser) scope.Ownership { return scope.OfPatient(&p.Patient) })
	sortBy(rows, func(a, b *model.PatientWithUser) bool { return a.CreatedAt.After(b.CreatedAt) })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *patientRepo) Update(_ context.Context, patient *model.PatientWithUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[patient.ID]; !ok {
		return notFound("patient")
	}
	if _, ok := r.s.guardians[patient.GuardianID]; !ok {
		return repository.ErrStillReferenced
	}
	if _, ok := r.s.doctors[patient.DoctorID]; !ok {
		return repository.ErrStillReferenced
	}
	if err := r.s.putUser(&patient.User); err != nil {
		return err
	}
	patient.UpdatedAt = time.Now()
	r.s.patients[patient.ID] = patient.Patient
	return nil
}

func (r *patientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.patients[id]
	if !ok {
		return notFound("patient")
	}
	return r.s.deleteUser(p.UserID)
}
