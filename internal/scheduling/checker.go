package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Kind separates booking ledgers. Bookings of different kinds never conflict.
type Kind string

const (
	KindAppointment Kind = "appointment"
	KindHomeVisit   Kind = "home_visit"
)

// Booking is an existing, non-cancelled reservation of a doctor's time.
type Booking struct {
	ID       uuid.UUID
	Interval Interval
}

// Source returns a doctor's non-cancelled bookings of one kind that may
// intersect window. Implementations may over-fetch; the checker filters.
type Source interface {
	ActiveBookings(ctx context.Context, doctorID uuid.UUID, window Interval) ([]Booking, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, doctorID uuid.UUID, window Interval) ([]Booking, error)

func (f SourceFunc) ActiveBookings(ctx context.Context, doctorID uuid.UUID, window Interval) ([]Booking, error) {
	return f(ctx, doctorID, window)
}

// HasConflict reports whether proposed overlaps any active booking of the
// doctor in src. The booking identified by exclude is ignored so that an
// update never collides with itself.
func HasConflict(ctx context.Context, src Source, doctorID uuid.UUID, proposed Interval, exclude *uuid.UUID) (bool, error) {
	bookings, err := src.ActiveBookings(ctx, doctorID, proposed)
	if err != nil {
		return false, fmt.Errorf("failed to load bookings: %w", err)
	}
	return Conflicts(bookings, proposed, exclude), nil
}

// Conflicts is the pure form of HasConflict over an in-memory set.
func Conflicts(bookings []Booking, proposed Interval, exclude *uuid.UUID) bool {
	for _, b := range bookings {
		if exclude != nil && b.ID == *exclude {
			continue
		}
		if b.Interval.Overlaps(proposed) {
			return true
		}
	}
	return false
}
