package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appointmentRepo "glowbook/database/repository/appointment"
	scheduleRepo "glowbook/database/repository/schedule"
	"glowbook/models"
	"glowbook/utils"
)

// ProposeRequest carries everything needed to create a pending appointment.
type ProposeRequest struct {
	ProviderID string             `json:"provider_id"`
	ClientID   string             `json:"client_id"`
	Date       string             `json:"date"`
	Start      models.TimeOfDay   `json:"start"`
	Duration   models.Duration    `json:"duration"`
	Payment    models.PaymentType `json:"payment"`
	Title      string             `json:"title"`
}

// ReminderScheduler schedules a confirmation-time reminder for an
// appointment. Dispatch itself happens outside this service.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt *models.Appointment) error
}

// BookingLifecycle drives an appointment through its state machine:
// pending on creation, then confirmed, failed or cancelled, all terminal.
// Every creation path re-validates through the conflict detector at the
// moment of commit; a client-side precheck is never trusted.
type BookingLifecycle interface {
	Propose(ctx context.Context, req ProposeRequest) (*models.Appointment, error)
	ProposeCustomEvent(ctx context.Context, req ProposeRequest) (*models.Appointment, error)
	Confirm(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Fail(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error)
}

// DefaultBookingLifecycle is the production implementation.
type DefaultBookingLifecycle struct {
	Schedules    scheduleRepo.ScheduleRepository
	Appointments appointmentRepo.AppointmentRepository
	Conflicts    ConflictDetector
	Reminders    ReminderScheduler // optional
	Now          func() time.Time  // optional, defaults to time.Now
}

// Propose creates a client booking in pending state.
func (lc *DefaultBookingLifecycle) Propose(ctx context.Context, req ProposeRequest) (*models.Appointment, error) {
	if req.ClientID == "" {
		return nil, ValidationError{Field: "proposal", Detail: "client id is required"}
	}
	if req.Payment == "" {
		return nil, ValidationError{Field: "proposal", Detail: "payment type is required"}
	}
	return lc.propose(ctx, req)
}

// ProposeCustomEvent creates a provider-owned calendar event (personal or
// admin time). It shares the appointment entity, occupancy rules and
// conflict gate with client bookings, but is a distinct operation.
func (lc *DefaultBookingLifecycle) ProposeCustomEvent(ctx context.Context, req ProposeRequest) (*models.Appointment, error) {
	if req.Title == "" {
		return nil, ValidationError{Field: "event", Detail: "title is required"}
	}
	req.ClientID = ""
	req.Payment = models.PaymentNotRequired
	return lc.propose(ctx, req)
}

func (lc *DefaultBookingLifecycle) propose(ctx context.Context, req ProposeRequest) (*models.Appointment, error) {
	logger := utils.GetLogger()

	schedule, err := lc.Schedules.GetOrCreate(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	loc, err := schedule.Location()
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation(models.DateLayout, req.Date, loc)
	if err != nil {
		return nil, ValidationError{Field: "proposal", Detail: fmt.Sprintf("invalid date %q", req.Date)}
	}

	start := req.Start.Minutes()
	end := start + req.Duration.TotalMinutes()
	if !req.Start.Valid() || req.Duration.TotalMinutes() <= 0 || end > models.MinutesPerDay {
		return nil, ErrInvalidTimeRange
	}

	// Past-time check runs in the provider's timezone, never the client's.
	now := lc.now().In(loc)
	today := now.Format(models.DateLayout)
	if req.Date < today || (req.Date == today && start <= now.Hour()*60+now.Minute()) {
		return nil, ErrPastTime
	}

	// Convenience precheck: a conflict here is a genuine one the caller
	// should surface to the user.
	verdict, err := lc.Conflicts.Check(ctx, req.ProviderID, req.Date, start, end)
	if err != nil {
		return nil, err
	}
	if verdict.HasConflict {
		return nil, ScheduleConflictError{Reasons: verdict.Reasons}
	}

	appt := &models.Appointment{
		ID:         uuid.New().String(),
		ProviderID: req.ProviderID,
		ClientID:   req.ClientID,
		Date:       req.Date,
		Start:      req.Start,
		Duration:   req.Duration,
		Status:     models.StatusPending,
		Payment:    req.Payment,
		Title:      req.Title,
		CreatedAt:  lc.now(),
	}

	// Authoritative re-check. The guard runs on the active set read inside
	// the same transaction as the insert; if it rejects now, the slot was
	// taken after the precheck, so the caller gets the stale variant and
	// can recompute availability. The engine never retries on its own.
	guard := func(active []models.Appointment) error {
		blocked := DeriveBlocked(schedule, active, req.Date, day.Weekday())
		if v := CheckAgainst(blocked, start, end); v.HasConflict {
			return StaleAvailabilityError{Reasons: v.Reasons}
		}
		return nil
	}
	if err := lc.Appointments.CreateIfFree(ctx, appt, guard); err != nil {
		var stale StaleAvailabilityError
		if errors.As(err, &stale) {
			logger.Info("proposal lost slot race",
				zap.String("provider_id", req.ProviderID),
				zap.String("date", req.Date),
				zap.Int("start", start))
			return nil, stale
		}
		return nil, fmt.Errorf("booking transaction failed: %w", err)
	}

	logger.Info("appointment proposed",
		zap.String("appointment_id", appt.ID),
		zap.String("provider_id", appt.ProviderID),
		zap.String("date", appt.Date),
		zap.String("start", appt.Start.String()))
	return appt, nil
}

// Confirm moves pending -> confirmed. The slot was already reserved when
// the pending appointment was created, so no re-check happens here.
func (lc *DefaultBookingLifecycle) Confirm(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := lc.transition(ctx, appointmentID,
		[]models.AppointmentStatus{models.StatusPending}, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if lc.Reminders != nil {
		if err := lc.Reminders.ScheduleReminder(ctx, appt); err != nil {
			// The confirmation stands; the reminder is best effort.
			utils.GetLogger().Warn("failed to schedule reminder",
				zap.String("appointment_id", appt.ID), zap.Error(err))
		}
	}
	return appt, nil
}

// Fail moves pending -> failed and frees the slot immediately.
func (lc *DefaultBookingLifecycle) Fail(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return lc.transition(ctx, appointmentID,
		[]models.AppointmentStatus{models.StatusPending}, models.StatusFailed)
}

// Cancel moves any non-terminal-for-cancellation state (pending or
// confirmed) -> cancelled. The slot is free for the very next occupancy
// computation; freed slots are never cached.
func (lc *DefaultBookingLifecycle) Cancel(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return lc.transition(ctx, appointmentID,
		[]models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}, models.StatusCancelled)
}

func (lc *DefaultBookingLifecycle) transition(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := lc.Appointments.UpdateStatus(ctx, id, from, to)
	if err == nil {
		utils.GetLogger().Info("appointment transitioned",
			zap.String("appointment_id", id), zap.String("status", string(to)))
		return appt, nil
	}
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if errors.Is(err, appointmentRepo.ErrBadState) {
		current, getErr := lc.Appointments.GetByID(ctx, id)
		if getErr != nil {
			return nil, ErrAppointmentNotFound
		}
		return nil, InvalidTransitionError{AppointmentID: id, From: string(current.Status), To: string(to)}
	}
	return nil, fmt.Errorf("error transitioning appointment %s: %w", id, err)
}

func (lc *DefaultBookingLifecycle) now() time.Time {
	if lc.Now != nil {
		return lc.Now()
	}
	return time.Now()
}
