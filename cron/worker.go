package cron

import (
	"context"
	"encoding/json"
	"log"

	"gatepass/config"
	"gatepass/models"
	"gatepass/services/notification"
	"gatepass/services/tasks"

	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async reminder worker in background.
func InitReminderWorker(notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
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
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(notifSvc))

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Printf("reminder worker stopped: %v", err)
		}
	}()
}

// NewQueueClient creates an asynq client for enqueueing reminders.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}

func handleReminderTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload models.ReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}

		return notifSvc.SendUserPush(ctx, payload.UserID,
			"Check-in opens soon",
			"Check-in for "+payload.EventTitle+" opens at "+payload.OpensAt.Format("15:04"),
			map[string]string{"eventId": payload.EventID},
		)
	}
}
