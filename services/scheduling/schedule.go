package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appointmentRepo "glowbook/database/repository/appointment"
	scheduleRepo "glowbook/database/repository/schedule"
	"glowbook/models"
	"glowbook/utils"
)

// ScheduleService manages a provider's schedule: work hours, buffer policy
// and recurring break templates. Every mutation validates the whole
// schedule and is applied fully or not at all.
type ScheduleService interface {
	Get(ctx context.Context, providerID string) (*models.Schedule, error)
	UpdateWorkHours(ctx context.Context, providerID string, hours [7]models.WorkWindow) (*models.Schedule, error)
	UpdateBuffer(ctx context.Context, providerID string, buffer models.BufferPolicy) (*models.Schedule, error)
	AddBreak(ctx context.Context, providerID string, br models.Break) (*models.Schedule, error)
	UpdateBreak(ctx context.Context, providerID string, br models.Break) (*models.Schedule, error)
	DeleteBreak(ctx context.Context, providerID, breakID string) (*models.Schedule, error)
}

// DefaultScheduleService is the production implementation.
type DefaultScheduleService struct {
	Schedules    scheduleRepo.ScheduleRepository
	Appointments appointmentRepo.AppointmentRepository
	Now          func() time.Time // optional, defaults to time.Now
}

// Get returns the provider's schedule, seeding the default one on first
// access.
func (svc *DefaultScheduleService) Get(ctx context.Context, providerID string) (*models.Schedule, error) {
	return svc.Schedules.GetOrCreate(ctx, providerID)
}

func (svc *DefaultScheduleService) UpdateWorkHours(ctx context.Context, providerID string, hours [7]models.WorkWindow) (*models.Schedule, error) {
	return svc.mutate(ctx, providerID, func(s *models.Schedule) error {
		s.WorkHours = hours
		return nil
	})
}

func (svc *DefaultScheduleService) UpdateBuffer(ctx context.Context, providerID string, buffer models.BufferPolicy) (*models.Schedule, error) {
	return svc.mutate(ctx, providerID, func(s *models.Schedule) error {
		s.Buffer = buffer
		return nil
	})
}

// AddBreak gates the new template through the same conflict check as a
// booking: it must not collide with any committed appointment (or its
// buffers) on any future date.
func (svc *DefaultScheduleService) AddBreak(ctx context.Context, providerID string, br models.Break) (*models.Schedule, error) {
	if br.ID == "" {
		br.ID = uuid.New().String()
	}
	return svc.mutate(ctx, providerID, func(s *models.Schedule) error {
		for _, existing := range s.Breaks {
			if existing.ID == br.ID {
				return ValidationError{Field: "break", Detail: fmt.Sprintf("break id %q already exists", br.ID)}
			}
		}
		if err := svc.gateBreak(ctx, s, br); err != nil {
			return err
		}
		s.Breaks = append(s.Breaks, br)
		return nil
	})
}

func (svc *DefaultScheduleService) UpdateBreak(ctx context.Context, providerID string, br models.Break) (*models.Schedule, error) {
	return svc.mutate(ctx, providerID, func(s *models.Schedule) error {
		for i, existing := range s.Breaks {
			if existing.ID != br.ID {
				continue
			}
			if err := svc.gateBreak(ctx, s, br); err != nil {
				return err
			}
			s.Breaks[i] = br
			return nil
		}
		return ValidationError{Field: "break", Detail: fmt.Sprintf("break %q not found", br.ID)}
	})
}

func (svc *DefaultScheduleService) DeleteBreak(ctx context.Context, providerID, breakID string) (*models.Schedule, error) {
	return svc.mutate(ctx, providerID, func(s *models.Schedule) error {
		for i, existing := range s.Breaks {
			if existing.ID == breakID {
				s.Breaks = append(s.Breaks[:i], s.Breaks[i+1:]...)
				return nil
			}
		}
		return ValidationError{Field: "break", Detail: fmt.Sprintf("break %q not found", breakID)}
	})
}

// mutate loads, edits, re-validates and replaces the schedule. A failed
// validation discards the whole edit.
func (svc *DefaultScheduleService) mutate(ctx context.Context, providerID string, edit func(*models.Schedule) error) (*models.Schedule, error) {
	schedule, err := svc.Schedules.GetOrCreate(ctx, providerID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	if err := edit(schedule); err != nil {
		return nil, err
	}
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}
	if err := svc.Schedules.Replace(ctx, schedule); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("schedule updated",
		zap.String("provider_id", providerID), zap.Int("version", schedule.Version))
	return schedule, nil
}

// gateBreak checks the template against every future committed
// appointment, however far ahead it was booked. Only the dates that
// actually carry active appointments need checking, so the scan stays
// bounded by the booked set. Outside-hours spans and other breaks are not
// conflicts here: a break outside work hours is inert, and overlapping
// breaks are deliberately permitted.
func (svc *DefaultScheduleService) gateBreak(ctx context.Context, schedule *models.Schedule, br models.Break) error {
	if err := ValidateBreak(br); err != nil {
		return err
	}
	loc, err := schedule.Location()
	if err != nil {
		return err
	}
	now := time.Now()
	if svc.Now != nil {
		now = svc.Now()
	}
	from := now.In(loc).Format(models.DateLayout)

	active, err := svc.Appointments.ListActiveFrom(ctx, schedule.ProviderID, from)
	if err != nil {
		return fmt.Errorf("failed to list active appointments: %w", err)
	}
	byDate := make(map[string][]models.Appointment)
	for _, a := range active {
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	start, end := br.Start.Minutes(), br.End.Minutes()
	for _, date := range dates {
		day, err := time.ParseInLocation(models.DateLayout, date, loc)
		if err != nil {
			return fmt.Errorf("stored appointment has invalid date %q: %w", date, err)
		}
		if !br.AppliesOn(day.Weekday()) {
			continue
		}
		blocked := DeriveAppointmentOnlyBlocked(schedule.Buffer, byDate[date], date)
		if v := CheckAgainst(blocked, start, end); v.HasConflict {
			return ScheduleConflictError{Reasons: append([]string{"Break overlaps booked time on " + date}, v.Reasons...)}
		}
	}
	return nil
}
