// Package queue delivers reminder notifications at their start time through asynq.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// TypeReminderDue is the asynq task type for a reminder reaching its start time.
const TypeReminderDue = "reminder:due"

const reminderQueue = "reminders"

type reminderPayload struct {
	ItemID    int64 `json:"item_id"`
	StartUnix int64 `json:"start_unix"`
}

// ReminderScheduler enqueues one delayed task per reminder start time.
type ReminderScheduler struct {
	client *asynq.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewReminderScheduler connects to the Redis instance at redisURL.
func NewReminderScheduler(redisURL string, logger *zap.Logger) (*ReminderScheduler, error) {
	if redisURL == "" {
		return nil, errors.New("asynq: redis URL is empty")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("asynq: parse redis URL: %w", err)
	}
	return &ReminderScheduler{
		client: asynq.NewClient(opt),
		logger: logger,
		now:    time.Now,
	}, nil
}

var _ repositories.ReminderScheduler = (*ReminderScheduler)(nil)

// ScheduleReminder implements repositories.ReminderScheduler. Events, undated
// reminders and reminders in the past are ignored.
func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, item *entities.ScheduledItem) error {
	task, opts, ok, err := newReminderTask(item, s.now())
	if err != nil || !ok {
		return err
	}

	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("asynq: enqueue reminder %d: %w", item.ID, err)
	}

	s.logger.Debug("Reminder scheduled",
		zap.Int64("item_id", item.ID),
		zap.String("task_id", info.ID),
		zap.Time("process_at", info.NextProcessAt))
	return nil
}

// Close releases the Redis connection.
func (s *ReminderScheduler) Close() error {
	return s.client.Close()
}

// newReminderTask builds the task for item. The task id includes the start
// time so rescheduling an item enqueues a new task while repeats are deduplicated.
func newReminderTask(item *entities.ScheduledItem, now time.Time) (*asynq.Task, []asynq.Option, bool, error) {
	if item == nil || !item.IsReminder || item.StartTime == nil || !item.StartTime.After(now) {
		return nil, nil, false, nil
	}

	start := item.StartTime.UTC()
	payload, err := json.Marshal(reminderPayload{ItemID: item.ID, StartUnix: start.Unix()})
	if err != nil {
		return nil, nil, false, fmt.Errorf("asynq: encode reminder payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.ProcessAt(start),
		asynq.TaskID(fmt.Sprintf("reminder:%d:%d", item.ID, start.Unix())),
		asynq.Queue(reminderQueue),
		asynq.MaxRetry(3),
		asynq.Retention(24 * time.Hour),
	}
	return asynq.NewTask(TypeReminderDue, payload), opts, true, nil
}
