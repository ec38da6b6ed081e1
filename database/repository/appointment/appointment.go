package appointmentRepo

import (
	"context"
	"errors"

	"glowbook/models"
)

var (
	// ErrNotFound is returned when no appointment matches the given id.
	ErrNotFound = errors.New("appointment not found")
	// ErrBadState is returned when a conditional status update finds the
	// appointment in a state outside the allowed set.
	ErrBadState = errors.New("appointment not in an allowed state")
)

// Guard is invoked inside the booking transaction with the provider's
// active appointments for the target date, read in the same transaction.
// Returning an error aborts the insert.
type Guard func(active []models.Appointment) error

// AppointmentRepository defines the data access methods for appointments.
// Custom calendar events share the appointments collection.
type AppointmentRepository interface {
	// GetByID retrieves an appointment, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Appointment, error)

	// ListActive returns all pending and confirmed appointments for the
	// provider on the given date.
	ListActive(ctx context.Context, providerID, date string) ([]models.Appointment, error)

	// ListActiveRange returns all pending and confirmed appointments for
	// the provider with from <= date <= to (dates in "2006-01-02" order).
	ListActiveRange(ctx context.Context, providerID, from, to string) ([]models.Appointment, error)

	// ListActiveFrom returns all pending and confirmed appointments for
	// the provider with date >= from, unbounded above. Bookings can land
	// arbitrarily far ahead, so callers that must see every committed
	// appointment use this instead of a range.
	ListActiveFrom(ctx context.Context, providerID, from string) ([]models.Appointment, error)

	// CreateIfFree inserts the appointment only if guard accepts the
	// provider's active appointments for that date. Read, guard and insert
	// execute as one serializable unit, so two racing proposals for an
	// overlapping interval cannot both succeed.
	CreateIfFree(ctx context.Context, appt *models.Appointment, guard Guard) error

	// UpdateStatus transitions the appointment to the given status only if
	// its current status is in allowedFrom. Returns the updated document,
	// ErrNotFound, or ErrBadState.
	UpdateStatus(ctx context.Context, id string, allowedFrom []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error)
}
