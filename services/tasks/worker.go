package tasks

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"

	"glowbook/config"
)

// ReminderSender dispatches one reminder to the client. The actual
// push/email/SMS machinery lives outside this service.
type ReminderSender interface {
	SendReminder(ctx context.Context, payload ReminderPayload) error
}

// LogSender is the default sender used until a real dispatch integration
// is plugged in; it only records that the reminder fired.
type LogSender struct{}

func (LogSender) SendReminder(_ context.Context, p ReminderPayload) error {
	log.Printf("[ReminderSender] reminder due for appointment %s (client %s)", p.AppointmentID, p.ClientID)
	return nil
}

// InitReminderWorker runs the async reminder worker in the background.
func InitReminderWorker(sender ReminderSender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSendReminder, handleReminderTask(sender))

	go func() {
		log.Println("[ReminderWorker] starting async worker")
		if err := srv.Run(mux); err != nil {
			log.Printf("[ReminderWorker] worker stopped: %v", err)
		}
	}()
}

func handleReminderTask(sender ReminderSender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}
		log.Printf("[ReminderHandler] reminding client %s about appointment %s on %s %s",
			p.ClientID, p.AppointmentID, p.Date, p.Start)
		return sender.SendReminder(ctx, p)
	}
}
