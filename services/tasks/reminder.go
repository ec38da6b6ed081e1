package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"glowbook/config"
	"glowbook/models"
)

const TypeSendReminder = "reminder:send"

// ReminderPayload is what the worker needs to dispatch one reminder.
type ReminderPayload struct {
	AppointmentID string `json:"appointment_id"`
	ProviderID    string `json:"provider_id"`
	ClientID      string `json:"client_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
}

// NewReminderTask builds an asynq task scheduled for fireAt.
func NewReminderTask(payload ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	return asynq.NewTask(TypeSendReminder, b), []asynq.Option{asynq.ProcessAt(fireAt)}, nil
}

// ReminderQueue enqueues appointment reminders at confirmation time. It
// implements scheduling.ReminderScheduler; the reminder fires a
// configurable lead time before the appointment start.
type ReminderQueue struct {
	Client   *asynq.Client
	Timezone string
}

// NewReminderQueue builds a queue over the shared redis config.
func NewReminderQueue() *ReminderQueue {
	return &ReminderQueue{
		Client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisCacheDB,
		}),
		Timezone: config.AppConfig.DefaultTimezone,
	}
}

func (q *ReminderQueue) ScheduleReminder(ctx context.Context, appt *models.Appointment) error {
	if appt.IsCustom() {
		return nil // providers get no reminders for their own events
	}
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(models.DateLayout, appt.Date, loc)
	if err != nil {
		return fmt.Errorf("invalid appointment date %q: %w", appt.Date, err)
	}
	startsAt := day.Add(time.Duration(appt.Start.Minutes()) * time.Minute)
	fireAt := startsAt.Add(-time.Duration(config.AppConfig.ReminderLeadTimeHours) * time.Hour)

	task, opts, err := NewReminderTask(ReminderPayload{
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		ClientID:      appt.ClientID,
		Date:          appt.Date,
		Start:         appt.Start.String(),
	}, fireAt)
	if err != nil {
		return err
	}
	if _, err := q.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for appointment %s: %w", appt.ID, err)
	}
	return nil
}
