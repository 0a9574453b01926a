package repository

import "errors"

var (
	// ErrSlotTaken is returned when a booking write would overlap another
	// active booking, or lost a serialization race against one.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrStillReferenced is returned when a delete is blocked by a foreign key.
	ErrStillReferenced = errors.New("record is still referenced")
	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)
