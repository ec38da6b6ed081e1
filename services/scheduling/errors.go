package scheduling

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScheduleNotFound signals that no schedule exists for the provider
	// and the repository was asked not to create one.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrAppointmentNotFound signals an unknown appointment id.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrPastTime signals a proposed start at or before the current time on
	// today's date.
	ErrPastTime = errors.New("requested time is in the past")

	// ErrInvalidTimeRange signals start >= end in a schedule, break or
	// proposal.
	ErrInvalidTimeRange = errors.New("start must be before end")
)

// ValidationError rejects a malformed Schedule or Break mutation. The whole
// mutation is discarded; partial updates are never applied.
type ValidationError struct {
	Field  string
	Detail string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// ScheduleConflictError rejects a proposed interval that overlaps the
// provider's occupancy. Reasons carries one human-readable message per
// overlapping blocked interval.
type ScheduleConflictError struct {
	Reasons []string
}

func (e ScheduleConflictError) Error() string {
	return "schedule conflict: " + strings.Join(e.Reasons, "; ")
}

// StaleAvailabilityError is a commit-time conflict on a slot the caller
// pre-checked as free; another proposal won the race. Callers may recompute
// availability and retry; the engine itself never retries.
type StaleAvailabilityError struct {
	Reasons []string
}

func (e StaleAvailabilityError) Error() string {
	return "availability is stale: " + strings.Join(e.Reasons, "; ")
}

// InvalidTransitionError rejects a lifecycle transition out of a terminal
// state.
type InvalidTransitionError struct {
	AppointmentID string
	From, To      string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("appointment %s: cannot transition %s -> %s", e.AppointmentID, e.From, e.To)
}
