package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used across the engine.
const DateLayout = "2006-01-02"

// AppointmentStatus is the booking lifecycle state. Pending and confirmed
// appointments occupy the calendar; failed and cancelled ones free it.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusFailed    AppointmentStatus = "failed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Occupies reports whether an appointment in this status blocks its slot.
func (s AppointmentStatus) Occupies() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transition is allowed out of s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusCancelled
}

// PaymentType records how the client pays. Payment capture itself is
// handled outside this service.
type PaymentType string

const (
	PaymentDeposit     PaymentType = "deposit"
	PaymentFull        PaymentType = "full"
	PaymentNotRequired PaymentType = "not_required"
	PaymentCustom      PaymentType = "custom"
)

// Duration is a service length in hours and minutes.
type Duration struct {
	Hours   int `bson:"hours" json:"hours"`
	Minutes int `bson:"minutes" json:"minutes"`
}

// TotalMinutes flattens the duration for interval arithmetic.
func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

// Appointment is one committed calendar entry: a client booking or a
// provider-created custom event (personal/admin time). Both kinds share the
// same occupancy rules.
type Appointment struct {
	ID         string            `bson:"id" json:"id"`
	ProviderID string            `bson:"provider_id" json:"provider_id"`
	ClientID   string            `bson:"client_id,omitempty" json:"client_id,omitempty"` // empty for custom events
	Date       string            `bson:"date" json:"date"`                               // "2006-01-02"
	Start      TimeOfDay         `bson:"start" json:"start"`
	Duration   Duration          `bson:"duration" json:"duration"`
	Status     AppointmentStatus `bson:"status" json:"status"`
	Payment    PaymentType       `bson:"payment" json:"payment"`
	Title      string            `bson:"title,omitempty" json:"title,omitempty"` // custom events only
	CreatedAt  time.Time         `bson:"created_at" json:"created_at"`
}

// Span returns the occupied interval [start, start+duration) in
// minute-of-day values. Buffers are not included.
func (a *Appointment) Span() (start, end int) {
	start = a.Start.Minutes()
	end = start + a.Duration.TotalMinutes()
	return start, end
}

// IsCustom reports whether this is a provider-created calendar event rather
// than a client booking.
func (a *Appointment) IsCustom() bool {
	return a.ClientID == ""
}

// ParseDate interprets the appointment's date in the given location.
func (a *Appointment) ParseDate(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment %s has invalid date %q: %w", a.ID, a.Date, err)
	}
	return day, nil
}
