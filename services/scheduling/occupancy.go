package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "glowbook/database/repository/appointment"
	scheduleRepo "glowbook/database/repository/schedule"
	"glowbook/models"
)

// Human-readable conflict reasons attached to derived intervals.
const (
	reasonOutsideHours = "Outside business hours"
	reasonBooked       = "Conflicts with an existing appointment"
)

// OccupancyIndex derives every interval on a date that cannot be booked:
// outside-work-hours spans, expanded recurring breaks, booked appointment
// spans and the buffers around them.
type OccupancyIndex interface {
	// BlockedFor returns all blocked intervals for a provider on one date.
	BlockedFor(ctx context.Context, providerID, date string) ([]models.BlockedInterval, error)
	// BlockedForRange returns blocked intervals for each date in
	// [from, to], keyed by date. Used for calendar month views.
	BlockedForRange(ctx context.Context, providerID, from, to string) (map[string][]models.BlockedInterval, error)
}

// DefaultOccupancyIndex is the production implementation, reading committed
// state through the repositories. It holds no state of its own and is safe
// for concurrent use.
type DefaultOccupancyIndex struct {
	Schedules    scheduleRepo.ScheduleRepository
	Appointments appointmentRepo.AppointmentRepository
}

func (idx *DefaultOccupancyIndex) BlockedFor(ctx context.Context, providerID, date string) ([]models.BlockedInterval, error) {
	schedule, err := idx.schedule(ctx, providerID)
	if err != nil {
		return nil, err
	}
	active, err := idx.Appointments.ListActive(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active appointments: %w", err)
	}
	day, err := WeekdayOf(schedule, date)
	if err != nil {
		return nil, err
	}
	return DeriveBlocked(schedule, active, date, day), nil
}

func (idx *DefaultOccupancyIndex) BlockedForRange(ctx context.Context, providerID, from, to string) (map[string][]models.BlockedInterval, error) {
	schedule, err := idx.schedule(ctx, providerID)
	if err != nil {
		return nil, err
	}
	loc, err := schedule.Location()
	if err != nil {
		return nil, err
	}
	first, err := time.ParseInLocation(models.DateLayout, from, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", from, err)
	}
	last, err := time.ParseInLocation(models.DateLayout, to, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q: %w", to, err)
	}
	if last.Before(first) {
		return nil, ErrInvalidTimeRange
	}

	active, err := idx.Appointments.ListActiveRange(ctx, providerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list active appointments: %w", err)
	}
	byDate := make(map[string][]models.Appointment)
	for _, a := range active {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	out := make(map[string][]models.BlockedInterval)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(models.DateLayout)
		out[date] = DeriveBlocked(schedule, byDate[date], date, d.Weekday())
	}
	return out, nil
}

func (idx *DefaultOccupancyIndex) schedule(ctx context.Context, providerID string) (*models.Schedule, error) {
	schedule, err := idx.Schedules.Get(ctx, providerID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

// WeekdayOf resolves the weekday of a calendar date in the schedule's
// timezone.
func WeekdayOf(schedule *models.Schedule, date string) (time.Weekday, error) {
	loc, err := schedule.Location()
	if err != nil {
		return 0, err
	}
	day, err := time.ParseInLocation(models.DateLayout, date, loc)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return day.Weekday(), nil
}

// DeriveBlocked computes the full unmerged blocked-interval list for one
// date from a schedule snapshot and the active appointments on that date.
// It is a pure function: identical inputs always yield identical output,
// in a deterministic order.
func DeriveBlocked(schedule *models.Schedule, active []models.Appointment, date string, day time.Weekday) []models.BlockedInterval {
	var blocked []models.BlockedInterval

	// Outside work hours. A disabled day blocks [00:00, 24:00) whole.
	window := schedule.WindowFor(day)
	if !window.Enabled {
		blocked = append(blocked, models.BlockedInterval{
			Date: date, Start: 0, End: models.MinutesPerDay,
			Kind: models.BlockOutsideHours, Reason: reasonOutsideHours,
		})
	} else {
		if open := window.Start.Minutes(); open > 0 {
			blocked = append(blocked, models.BlockedInterval{
				Date: date, Start: 0, End: open,
				Kind: models.BlockOutsideHours, Reason: reasonOutsideHours,
			})
		}
		if close := window.End.Minutes(); close < models.MinutesPerDay {
			blocked = append(blocked, models.BlockedInterval{
				Date: date, Start: close, End: models.MinutesPerDay,
				Kind: models.BlockOutsideHours, Reason: reasonOutsideHours,
			})
		}
	}

	// Recurring breaks whose weekday set covers this date.
	for _, br := range schedule.Breaks {
		if !br.AppliesOn(day) {
			continue
		}
		blocked = append(blocked, models.BlockedInterval{
			Date: date, Start: br.Start.Minutes(), End: br.End.Minutes(),
			Kind: models.BlockBreak, Reason: "Conflicts with break: " + br.Name,
		})
	}

	// Booked spans plus buffers. Buffers clamp at midnight, they never
	// wrap to the adjacent day.
	for _, appt := range active {
		if !appt.Status.Occupies() {
			continue
		}
		blocked = append(blocked, deriveAppointmentBlocks(schedule.Buffer, &appt, date)...)
	}

	return blocked
}

// DeriveAppointmentOnlyBlocked is DeriveBlocked restricted to booked spans
// and their buffers. Used when gating break templates, where outside-hours
// and other breaks are not conflicts.
func DeriveAppointmentOnlyBlocked(buffer models.BufferPolicy, active []models.Appointment, date string) []models.BlockedInterval {
	var blocked []models.BlockedInterval
	for _, appt := range active {
		if !appt.Status.Occupies() {
			continue
		}
		blocked = append(blocked, deriveAppointmentBlocks(buffer, &appt, date)...)
	}
	return blocked
}

func deriveAppointmentBlocks(buffer models.BufferPolicy, appt *models.Appointment, date string) []models.BlockedInterval {
	start, end := appt.Span()
	blocked := []models.BlockedInterval{{
		Date: date, Start: start, End: end,
		Kind: models.BlockBooked, Reason: reasonBooked,
	}}
	if before := clampMinute(start - buffer.BeforeMinutes); before < start {
		blocked = append(blocked, models.BlockedInterval{
			Date: date, Start: before, End: start,
			Kind: models.BlockBuffer, Reason: reasonBooked,
		})
	}
	if after := clampMinute(end + buffer.AfterMinutes); after > end && end < models.MinutesPerDay {
		blocked = append(blocked, models.BlockedInterval{
			Date: date, Start: end, End: after,
			Kind: models.BlockBuffer, Reason: reasonBooked,
		})
	}
	return blocked
}

func clampMinute(m int) int {
	if m < 0 {
		return 0
	}
	if m > models.MinutesPerDay {
		return models.MinutesPerDay
	}
	return m
}
