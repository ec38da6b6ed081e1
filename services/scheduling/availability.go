package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	scheduleRepo "glowbook/database/repository/schedule"
	"glowbook/models"
)

// DefaultGranularityMinutes is the slot step used when the caller does not
// ask for a specific one.
const DefaultGranularityMinutes = 30

// AvailabilityCalculator enumerates bookable start times for a service
// duration on a date. Read-only and side-effect-free; safe to call
// concurrently and repeatedly.
type AvailabilityCalculator interface {
	SlotsFor(ctx context.Context, providerID, date string, durationMinutes, granularityMinutes int) ([]models.TimeOfDay, error)
}

// DefaultAvailabilityCalculator is the production implementation. Now is
// swappable for tests and defaults to time.Now.
type DefaultAvailabilityCalculator struct {
	Schedules scheduleRepo.ScheduleRepository
	Occupancy OccupancyIndex
	Now       func() time.Time
}

func (ac *DefaultAvailabilityCalculator) SlotsFor(ctx context.Context, providerID, date string, durationMinutes, granularityMinutes int) ([]models.TimeOfDay, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidTimeRange
	}
	if granularityMinutes <= 0 {
		granularityMinutes = DefaultGranularityMinutes
	}

	schedule, err := ac.Schedules.Get(ctx, providerID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	loc, err := schedule.Location()
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation(models.DateLayout, date, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	window := schedule.WindowFor(day.Weekday())
	if !window.Enabled {
		return nil, nil
	}

	blocked, err := ac.Occupancy.BlockedFor(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	// Candidates walk the granularity grid from opening time; in addition,
	// the end of every blocked interval is a candidate, so a slot can start
	// the moment a booking's after-buffer ends rather than waiting for the
	// next grid line.
	open, close := window.Start.Minutes(), window.End.Minutes()
	candidates := make(map[int]bool)
	for t := open; t < close; t += granularityMinutes {
		candidates[t] = true
	}
	for _, b := range blocked {
		if b.End >= open && b.End < close {
			candidates[b.End] = true
		}
	}

	// On today's date, starts at or before the current time are excluded.
	pastCutoff := -1
	now := time.Now
	if ac.Now != nil {
		now = ac.Now
	}
	if current := now().In(loc); current.Format(models.DateLayout) == date {
		pastCutoff = current.Hour()*60 + current.Minute()
	}

	var slots []models.TimeOfDay
	for t := range candidates {
		if t+durationMinutes > close {
			continue // the whole service must fit before closing
		}
		if t <= pastCutoff {
			continue
		}
		if CheckAgainst(blocked, t, t+durationMinutes).HasConflict {
			continue
		}
		slots = append(slots, models.TimeOfDayFromMinutes(t))
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Minutes() < slots[j].Minutes() })
	return slots, nil
}
