package models

import (
	"fmt"
	"time"
)

// MinutesPerDay is the exclusive upper bound for any interval on a date.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time with no timezone attached. It is always
// interpreted against the owning schedule's timezone.
type TimeOfDay struct {
	Hour   int `bson:"hour" json:"hour"`
	Minute int `bson:"minute" json:"minute"`
}

// Minutes returns the minute-of-day value (e.g., 540 for 9:00 AM). All
// interval arithmetic in the engine works on these values.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Valid reports whether the time is a real wall-clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayFromMinutes converts a minute-of-day value back to a TimeOfDay.
func TimeOfDayFromMinutes(m int) TimeOfDay {
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// ParseTimeOfDay parses "HH:MM" in 24h format.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: out of range", s)
	}
	return t, nil
}

// WorkWindow is the bookable range for one weekday. When Enabled is false
// the whole day is closed regardless of Start/End.
type WorkWindow struct {
	Enabled bool      `bson:"enabled" json:"enabled"`
	Start   TimeOfDay `bson:"start" json:"start"`
	End     TimeOfDay `bson:"end" json:"end"`
}

// Break is a recurring weekly unavailable span (e.g., lunch). It is a
// template keyed by weekdays, not a concrete occurrence.
type Break struct {
	ID    string         `bson:"id" json:"id"`
	Name  string         `bson:"name" json:"name"`
	Days  []time.Weekday `bson:"days" json:"days"`
	Start TimeOfDay      `bson:"start" json:"start"`
	End   TimeOfDay      `bson:"end" json:"end"`
}

// AppliesOn reports whether the break recurs on the given weekday.
func (b Break) AppliesOn(day time.Weekday) bool {
	for _, d := range b.Days {
		if d == day {
			return true
		}
	}
	return false
}

// BufferPolicy is padding reserved around every appointment of the owning
// schedule. It is global per provider; there is no per-service override.
type BufferPolicy struct {
	BeforeMinutes int `bson:"before_minutes" json:"before_minutes"`
	AfterMinutes  int `bson:"after_minutes" json:"after_minutes"`
}

// Schedule is one provider's weekly setup: work hours, recurring breaks and
// the buffer policy. WorkHours is indexed by time.Weekday (Sunday = 0), so
// every weekday is structurally present. A schedule is never deleted, only
// overwritten; Version increments on every overwrite.
type Schedule struct {
	ProviderID string         `bson:"provider_id" json:"provider_id"`
	Timezone   string         `bson:"timezone" json:"timezone"` // IANA name, e.g. "America/New_York"
	WorkHours  [7]WorkWindow  `bson:"work_hours" json:"work_hours"`
	Breaks     []Break        `bson:"breaks" json:"breaks"`
	Buffer     BufferPolicy   `bson:"buffer" json:"buffer"`
	Version    int            `bson:"version" json:"version"`
	UpdatedAt  time.Time      `bson:"updated_at" json:"updated_at"`
}

// WindowFor returns the work window for the given weekday.
func (s *Schedule) WindowFor(day time.Weekday) WorkWindow {
	return s.WorkHours[int(day)]
}

// Location resolves the provider's fixed timezone. All time comparisons for
// this provider happen in this location, never in the client's.
func (s *Schedule) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule for provider %s has invalid timezone %q: %w", s.ProviderID, s.Timezone, err)
	}
	return loc, nil
}

// DefaultSchedule builds the schedule a provider gets on first access:
// Mon-Fri 09:00-17:00 enabled, weekends disabled, no breaks, 15-minute
// buffers on both sides. Each call returns a fresh value.
func DefaultSchedule(providerID, timezone string) *Schedule {
	s := &Schedule{
		ProviderID: providerID,
		Timezone:   timezone,
		Buffer:     BufferPolicy{BeforeMinutes: 15, AfterMinutes: 15},
		Version:    1,
		UpdatedAt:  time.Now(),
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		window := WorkWindow{
			Start: TimeOfDay{Hour: 9},
			End:   TimeOfDay{Hour: 17},
		}
		if day != time.Sunday && day != time.Saturday {
			window.Enabled = true
		}
		s.WorkHours[int(day)] = window
	}
	return s
}
