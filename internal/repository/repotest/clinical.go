package repotest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/scope"
)

type medicationRepo struct{ s *Store }

func (r *medicationRepo) Create(_ context.Context, m *model.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.medications[m.ID] = *m
	return nil
}

func (r *medicationRepo) Get(_ context.Context, id uuid.UUID) (*model.Medication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.medications[id]
	if !ok {
		return nil, notFound("medication")
	}
	return &m, nil
}

func (r *medicationRepo) Update(_ context.Context, m *model.Medication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.medications[m.ID]; !ok {
		return notFound("medication")
	}
	m.UpdatedAt = time.Now()
	r.s.medications[m.ID] = *m
	return nil
}

func (r *medicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.medications[id]; !ok {
		return notFound("medication")
	}
	for _, rx := range r.s.prescriptions {
		if rx.MedicationID == id {
			return repository.ErrStillReferenced
		}
	}
	delete(r.s.medications, id)
	return nil
}

func (r *medicationRepo) List(_ context.Context, f model.MedicationFilters, page model.Page) ([]*model.Medication, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.Medication
	for _, m := range r.s.medications {
		if f.IsActive != nil && m.IsActive != *f.IsActive {
			continue
		}
		if f.RequiresPrescription != nil && m.RequiresPrescription != *f.RequiresPrescription {
			continue
		}
		if f.Search != "" && !contains(m.Name, f.Search) {
			continue
		}
		m := m
		rows = append(rows, &m)
	}
	sortBy(rows, func(a, b *model.Medication) bool { return a.Name < b.Name })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *medicationRepo) HasPrescriptions(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rx := range r.s.prescriptions {
		if rx.MedicationID == id {
			return true, nil
		}
	}
	return false, nil
}

type prescriptionRepo struct{ s *Store }

func (r *prescriptionRepo) Create(_ context.Context, p *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[p.PatientID]; !ok {
		return repository.ErrStillReferenced
	}
	if _, ok := r.s.medications[p.MedicationID]; !ok {
		return repository.ErrStillReferenced
	}
	r.s.prescriptions[p.ID] = *p
	return nil
}

func (r *prescriptionRepo) Get(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prescriptions[id]
	if !ok {
		return nil, notFound("prescription")
	}
	return &p, nil
}

func (r *prescriptionRepo) detail(p model.Prescription) *model.PrescriptionDetail {
	return &model.PrescriptionDetail{
		Prescription:   p,
		PatientName:    r.s.patientName(p.PatientID),
		DoctorName:     r.s.doctorName(p.DoctorID),
		MedicationName: r.s.medications[p.MedicationID].Name,
	}
}

func (r *prescriptionRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.PrescriptionDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prescriptions[id]
	if !ok {
		return nil, notFound("prescription")
	}
	return r.detail(p), nil
}

func (r *prescriptionRepo) Update(_ context.Context, p *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prescriptions[p.ID]; !ok {
		return notFound("prescription")
	}
	p.UpdatedAt = time.Now()
	r.s.prescriptions[p.ID] = *p
	return nil
}

func (r *prescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.prescriptions[id]; !ok {
		return notFound("prescription")
	}
	delete(r.s.prescriptions, id)
	return nil
}

func (r *prescriptionRepo) List(_ context.Context, sc scope.Scope, f model.PrescriptionFilters, page model.Page) ([]*model.PrescriptionDetail, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.PrescriptionDetail
	for _, p := range r.s.prescriptions {
		if f.PatientID != nil && p.PatientID != *f.PatientID {
			continue
		}
		if f.DoctorID != nil && p.DoctorID != *f.DoctorID {
			continue
		}
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.ActiveOn != nil && p.EndDate.Before(*f.ActiveOn) {
			continue
		}
		rows = append(rows, r.detail(p))
	}
	rows = scope.Filter(sc, rows, func(p *model.PrescriptionDetail) scope.Ownership {
		return r.s.bookingOwner(p.DoctorID, p.PatientID)
	})
	sortBy(rows, func(a, b *model.PrescriptionDetail) bool { return a.CreatedAt.After(b.CreatedAt) })
	out, total := paginate(rows, page)
	return out, total, nil
}

type emergencyRepo struct{ s *Store }

func (r *emergencyRepo) Create(_ context.Context, e *model.Emergency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[e.PatientID]; !ok {
		return repository.ErrStillReferenced
	}
	r.s.emergencies[e.ID] = *e
	return nil
}

func (r *emergencyRepo) Get(_ context.Context, id uuid.UUID) (*model.Emergency, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.emergencies[id]
	if !ok {
		return nil, notFound("emergency")
	}
	return &e, nil
}

func (r *emergencyRepo) detail(e model.Emergency) *model.EmergencyDetail {
	return &model.EmergencyDetail{
		Emergency:    e,
		PatientName:  r.s.patientName(e.PatientID),
		DoctorName:   r.s.doctorName(e.DoctorID),
		GuardianName: r.s.userName(r.s.guardians[e.GuardianID].UserID),
	}
}

func (r *emergencyRepo) GetDetail(_ context.Context, id uuid.UUID) (*model.EmergencyDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.emergencies[id]
	if !ok {
		return nil, notFound("emergency")
	}
	return r.detail(e), nil
}

func (r *emergencyRepo) Update(_ context.Context, e *model.Emergency) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emergencies[e.ID]; !ok {
		return notFound("emergency")
	}
	e.UpdatedAt = time.Now()
	r.s.emergencies[e.ID] = *e
	return nil
}

func (r *emergencyRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.emergencies[id]; !ok {
		return notFound("emergency")
	}
	delete(r.s.emergencies, id)
	return nil
}

func priorityRank(p model.EmergencyPriority) int {
	switch p {
	case model.PriorityCritical:
		return 4
	case model.PriorityHigh:
		return 3
	case model.PriorityMedium:
		return 2
	}
	return 1
}

func (r *emergencyRepo) List(_ context.Context, sc scope.Scope, f model.EmergencyFilters, page model.Page) ([]*model.EmergencyDetail, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.EmergencyDetail
	for _, e := range r.s.emergencies {
		if f.Status != nil && e.Status != *f.Status {
			continue
		}
		if f.Priority != nil && e.Priority != *f.Priority {
			continue
		}
		if f.PatientID != nil && e.PatientID != *f.PatientID {
			continue
		}
		if f.Unresolved && e.Status == model.EmergencyStatusResolved {
			continue
		}
		rows = append(rows, r.detail(e))
	}
	rows = scope.Filter(sc, rows, func(e *model.EmergencyDetail) scope.Ownership {
		return r.s.bookingOwner(e.DoctorID, e.PatientID)
	})
	sortBy(rows, func(a, b *model.EmergencyDetail) bool {
		if f.Unresolved {
			ra, rb := priorityRank(a.Priority), priorityRank(b.Priority)
			if ra != rb {
				return ra > rb
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	out, total := paginate(rows, page)
	return out, total, nil
}

type auditRepo struct{ s *Store }

func (r *auditRepo) Create(_ context.Context, log *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, *log)
	return nil
}

func (r *auditRepo) List(_ context.Context, f model.AuditFilters, page model.Page) ([]*model.AuditLog, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*model.AuditLog
	for _, l := range r.s.audits {
		if f.UserID != nil && l.UserID != *f.UserID {
			continue
		}
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if !inRange(l.CreatedAt, f.Range) {
			continue
		}
		l := l
		rows = append(rows, &l)
	}
	sortBy(rows, func(a, b *model.AuditLog) bool { return a.CreatedAt.After(b.CreatedAt) })
	out, total := paginate(rows, page)
	return out, total, nil
}

func (r *auditRepo) Cleanup(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.audits[:0]
	var removed int64
	for _, l := range r.s.audits {
		if l.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	r.s.audits = kept
	return removed, nil
}
