package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// ReminderNotifier is told when a reminder becomes due.
type ReminderNotifier interface {
	NotifyReminder(item *entities.ScheduledItem)
}

// ReminderHandler processes TypeReminderDue tasks. The item is re-read so
// deleted or rescheduled reminders are dropped.
type ReminderHandler struct {
	schedule repositories.ScheduleRepository
	notifier ReminderNotifier
	logger   *zap.Logger
}

func NewReminderHandler(schedule repositories.ScheduleRepository, notifier ReminderNotifier, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{schedule: schedule, notifier: notifier, logger: logger}
}

// ProcessTask implements asynq.Handler
func (h *ReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p reminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	item, err := h.schedule.GetByID(ctx, p.ItemID)
	if errors.Is(err, repositories.ErrNotFound) {
		h.logger.Info("Reminder no longer exists", zap.Int64("item_id", p.ItemID))
		return nil
	}
	if err != nil {
		return err
	}

	if !item.IsReminder || item.StartTime == nil || item.StartTime.Unix() != p.StartUnix {
		h.logger.Info("Reminder changed since it was scheduled", zap.Int64("item_id", p.ItemID))
		return nil
	}

	h.logger.Info("Reminder due", zap.Int64("item_id", item.ID), zap.String("title", item.Title))
	h.notifier.NotifyReminder(item)
	return nil
}

// Worker runs the asynq server consuming reminder tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker builds a worker for the Redis instance at redisURL.
func NewWorker(redisURL string, handler *ReminderHandler, logger *zap.Logger) (*Worker, error) {
	if redisURL == "" {
		return nil, errors.New("asynq: redis URL is empty")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis URL: %w", err)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{reminderQueue: 1},
		Logger:      logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Reminder task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeReminderDue, handler)

	return &Worker{server: srv, mux: mux, logger: logger}, nil
}

// Run starts processing and blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("asynq: start worker: %w", err)
	}
	w.logger.Info("Reminder worker started")

	<-ctx.Done()
	w.server.Shutdown()
	w.logger.Info("Reminder worker stopped")
	return nil
}
