// Package appointments owns booked appointment intervals: the read-side
// booked-interval index consumed by slot derivation, and the write-side
// admission path that serializes competing bookings per slot.
package appointments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment. Appointments are never
// physically deleted; cancellation is a status transition.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

var (
	// ErrSlotTaken reports that another booking won the race for this slot.
	ErrSlotTaken = errors.New("appointments: slot no longer available")

	// ErrNotFound reports an unknown appointment id.
	ErrNotFound = errors.New("appointments: not found")

	// ErrNotOwner reports an attempt to modify someone else's appointment.
	ErrNotOwner = errors.New("appointments: requesting user does not own this appointment")

	// ErrInvalidSlot reports a booking request that is off the scheduling
	// grid, in the past, or outside the doctor's availability.
	ErrInvalidSlot = errors.New("appointments: invalid slot")
)

// Interval is one booked or historical appointment. End is always exactly
// one grid step after Start.
type Interval struct {
	ID        uuid.UUID
	DoctorID  string
	PatientID string
	Start     time.Time
	End       time.Time
	Status    Status
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps reports whether the interval intersects [start, end). Any
// intersection counts, even a partial one from misaligned data.
func (i Interval) Overlaps(start, end time.Time) bool {
	return i.Start.Before(end) && i.End.After(start)
}
