package repotest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scheduling"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

func inRange(t time.Time, r model.DateRange) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

type appointmentRepo struct{ s *Store }

func (r *appointmentRepo) Atomic(ctx context.Context, fn func(repository.AppointmentRepository) error) error {
	r.s.tx.Lock()
	defer r.s.tx.Unlock()
	return fn(r)
}

func (r *appointmentRepo) ActiveBookings(_ context.Context, doctorID uuid.UUID, window scheduling.Interval) ([]scheduling.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.activeBookings(doctorID, window), nil
}

func (r *appointmentRepo) activeBookings(doctorID uuid.UUID, window scheduling.Interval) []scheduling.Booking {
	var out []scheduling.Booking
	for _, a := range r.s.appointments {
		if a.DoctorID != doctorID || a.Status == model.AppointmentStatusCancelled {
			continue
		}
		iv := scheduling.NewInterval(a.AppointmentDate, a.DurationMinutes)
		if iv.Overlaps(window) {
			out = append(out, scheduling.Booking{ID: a.ID, Interval: iv})
		}
	}
	return out
}

// excluded mirrors the exclusion constraint on appointments.
func (r *appointmentRepo) excluded(a *model.Appointment) bool {
	if a.Status == model.AppointmentStatusCancelled {
		return false
	}
	iv := scheduling.NewInterval(a.AppointmentDate, a.DurationMinutes)
	return scheduling.Conflicts(r.activeBookings(a.DoctorID, iv), iv, &a.ID)
}

func (r *appointmentRepo) Create(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[a.PatientID]; !ok {
		return repository.ErrStillReferenced
	}
	if _, ok := r.s.doctors[a.DoctorID]; !ok {
		return repository.ErrStillReferenced
	}
	if r.excluded(a) {
		return repository.ErrSlotTaken
	}
	r.s.appointments[a.ID] = *a
	return nil
}

func (r *appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("appointment")
	}
	return &a, nil
}

func (r *appointmentRepo) detail(a model.Appointment) *model.AppointmentDetail {
	return &model.AppointmentDetail{
		Appointment: a,
		PatientName: r.s.patientName(a.PatientID),
		DoctorName:  r.s.doctorName(a.DoctorID),
		Specialty:   r.s.doctors[a.DoctorID].Specialty,
	}
}

func (r *appointmentRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, notFound("appointment")
	}
	return r.detail(a), nil
}

func (r *appointmentRepo) Update(_ context.Context, a *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[a.ID]; !ok {
		return notFound("appointment")
	}
	if r.excluded(a) {
		return repository.ErrSlotTaken
	}
	a.UpdatedAt = time.Now()
	r.s.appointments[a.ID] = *a
	return nil
}

func (r *appointmentRepo) scoped(sc scope.Scope, rows []*model.AppointmentDetail) []*model.AppointmentDetail {
	return scope.Filter(sc, rows, func(a *model.AppointmentDetail) scope.Ownership {
		return r.s.bookingOwner(a.DoctorID, a.PatientID)
	})
}

func (r *appointmentRepo) List(_ context.Context, sc scope.Scope, f model.AppointmentFilters, page model.Page) ([]*model.AppointmentDetail, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.AppointmentDetail
	for _, a := range r.s.appointments {
		if f.PatientID != nil && a.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		if !inRange(a.AppointmentDate, f.Range) {
			continue
		}
		rows = append(rows, r.detail(a))
	}
	rows = r.scoped(sc, rows)
	sortBy(rows, func(a, b *model.AppointmentDetail) bool { return a.AppointmentDate.After(b.AppointmentDate) })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *appointmentRepo) Upcoming(_ context.Context, sc scope.Scope, after time.Time, n int) ([]*model.AppointmentDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.AppointmentDetail
	for _, a := range r.s.appointments {
		if a.AppointmentDate.After(after) && a.Status != model.AppointmentStatusCancelled {
			rows = append(rows, r.detail(a))
		}
	}
	rows = r.scoped(sc, rows)
	sortBy(rows, func(a, b *model.AppointmentDetail) bool { return a.AppointmentDate.Before(b.AppointmentDate) })
	out, _ := paginate(rows, model.Page{Number: 1, Size: n})
	return out, nil
}

type homeVisitRepo struct{ s *Store }

func (r *homeVisitRepo) Atomic(ctx context.Context, fn func(repository.HomeVisitRepository) error) error {
	r.s.tx.Lock()
	defer r.s.tx.Unlock()
	return fn(r)
}

func (r *homeVisitRepo) ActiveBookings(_ context.Context, doctorID uuid.UUID, window scheduling.Interval) ([]scheduling.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.activeBookings(doctorID, window), nil
}

func (r *homeVisitRepo) activeBookings(doctorID uuid.UUID, window scheduling.Interval) []scheduling.Booking {
	var out []scheduling.Booking
	for _, v := range r.s.visits {
		if v.DoctorID != doctorID || v.Status == model.HomeVisitStatusCancelled {
			continue
		}
		iv := scheduling.NewInterval(v.VisitDate, v.EstimatedDurationMinutes)
		if iv.Overlaps(window) {
			out = append(out, scheduling.Booking{ID: v.ID, Interval: iv})
		}
	}
	return out
}

func (r *homeVisitRepo) excluded(v *model.HomeVisit) bool {
	if v.Status == model.HomeVisitStatusCancelled {
		return false
	}
	iv := scheduling.NewInterval(v.VisitDate, v.EstimatedDurationMinutes)
	return scheduling.Conflicts(r.activeBookings(v.DoctorID, iv), iv, &v.ID)
}

func (r *homeVisitRepo) Create(_ context.Context, v *model.HomeVisit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[v.PatientID]; !ok {
		return repository.ErrStillReferenced
	}
	if _, ok := r.s.doctors[v.DoctorID]; !ok {
		return repository.ErrStillReferenced
	}
	if r.excluded(v) {
		return repository.ErrSlotTaken
	}
	r.s.visits[v.ID] = *v
	return nil
}

func (r *homeVisitRepo) Get(_ context.Context, id uuid.UUID) (*model.HomeVisit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visits[id]
	if !ok {
		return nil, notFound("home visit")
	}
	return &v, nil
}

func (r *homeVisitRepo) detail(v model.HomeVisit) *model.HomeVisitDetail {
	return &model.HomeVisitDetail{
		HomeVisit:   v,
		PatientName: r.s.patientName(v.PatientID),
		DoctorName:  r.s.doctorName(v.DoctorID),
	}
}

func (r *homeVisitRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.HomeVisitDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visits[id]
	if !ok {
		return nil, notFound("home visit")
	}
	return r.detail(v), nil
}

func (r *homeVisitRepo) Update(_ context.Context, v *model.HomeVisit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.visits[v.ID]; !ok {
		return notFound("home visit")
	}
	if r.excluded(v) {
		return repository.ErrSlotTaken
	}
	v.UpdatedAt = time.Now()
	r.s.visits[v.ID] = *v
	return nil
}

func (r *homeVisitRepo) scoped(sc scope.Scope, rows []*model.HomeVisitDetail) []*model.HomeVisitDetail {
	return scope.Filter(sc, rows, func(v *model.HomeVisitDetail) scope.Ownership {
		return r.s.bookingOwner(v.DoctorID, v.PatientID)
	})
}

func (r *homeVisitRepo) List(_ context.Context, sc scope.Scope, f model.HomeVisitFilters, page model.Page) ([]*model.HomeVisitDetail, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.HomeVisitDetail
	for _, v := range r.s.visits {
		if f.PatientID != nil && v.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && v.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != nil && v.Status != *f.Status {
			continue
		}
		if !inRange(v.VisitDate, f.Range) {
			continue
		}
		rows = append(rows, r.detail(v))
	}
	rows = r.scoped(sc, rows)
	sortBy(rows, func(a, b *model.HomeVisitDetail) bool { return a.VisitDate.After(b.VisitDate) })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *homeVisitRepo) Upcoming(_ context.Context, sc scope.Scope, after time.Time, n int) ([]*model.HomeVisitDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.HomeVisitDetail
	for _, v := range r.s.visits {
		if v.VisitDate.After(after) && v.Status != model.HomeVisitStatusCancelled {
			rows = append(rows, r.detail(v))
		}
	}
	rows = r.scoped(sc, rows)
	sortBy(rows, func(a, b *model.HomeVisitDetail) bool { return a.VisitDate.Before(b.VisitDate) })
	out, _ := paginate(rows, model.Page{Number: 1, Size: n})
	return out, nil
}
