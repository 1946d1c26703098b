package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/intent"
)

// ScheduleService manages reminders and events and carries out routed intents.
type ScheduleService struct {
	repo      repositories.ScheduleRepository
	reminders repositories.ReminderScheduler
	logger    *zap.Logger
}

// NewScheduleService creates a new schedule service. reminders may be nil, in
// which case no reminder notifications are scheduled.
func NewScheduleService(
	repo repositories.ScheduleRepository,
	reminders repositories.ReminderScheduler,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		repo:      repo,
		reminders: reminders,
		logger:    logger,
	}
}

// List returns every reminder and event ordered by start time.
func (s *ScheduleService) List(ctx context.Context) ([]*entities.ScheduledItem, error) {
	return s.repo.List(ctx)
}

// Create stores a new item and schedules its notification.
func (s *ScheduleService) Create(ctx context.Context, item *entities.ScheduledItem) error {
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.logger.Info("Scheduled item created",
		zap.Int64("id", item.ID),
		zap.String("kind", item.Kind()),
		zap.Bool("has_start_time", item.StartTime != nil))
	s.scheduleReminder(ctx, item)
	return nil
}

// Update overwrites only the fields present in patch.
func (s *ScheduleService) Update(ctx context.Context, id int64, patch entities.ScheduledItemPatch) (*entities.ScheduledItem, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Apply(patch)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Scheduled item updated", zap.Int64("id", id))
	s.scheduleReminder(ctx, item)
	return item, nil
}

// Delete removes the item with the given id.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Scheduled item deleted", zap.Int64("id", id))
	return nil
}

// ApplyIntent performs the store action of in and returns the text to answer
// with. Missing parameters and unknown ids produce an apologetic answer, not an
// error; only store failures are returned as errors.
func (s *ScheduleService) ApplyIntent(ctx context.Context, in intent.Intent, reply string) (string, error) {
	switch in.Kind {
	case intent.KindDelete:
		if !in.Complete() {
			return "Sorry, I could not determine which reminder or event to delete. Please mention it as \"ID: <number>\".", nil
		}
		item, err := s.repo.GetByID(ctx, *in.ItemID)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundAnswer(*in.ItemID), nil
		}
		if err != nil {
			return "", err
		}
		if err := s.Delete(ctx, item.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return notFoundAnswer(item.ID), nil
			}
			return "", err
		}
		return fmt.Sprintf("Deleted %s %q (ID: %d).", item.Kind(), item.Title, item.ID), nil

	case intent.KindUpdate:
		if !in.Complete() {
			return "Sorry, I could not determine which item to update or its new title. Please say \"update title: <new title> ID: <number>\".", nil
		}
		title := in.NewTitle
		item, err := s.Update(ctx, *in.ItemID, entities.ScheduledItemPatch{Title: &title})
		if errors.Is(err, repositories.ErrNotFound) {
			return notFoundAnswer(*in.ItemID), nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated %s (ID: %d) with the new title %q.", item.Kind(), item.ID, item.Title), nil

	case intent.KindCreate:
		item := &entities.ScheduledItem{
			Title:       in.Title,
			Description: reply,
			StartTime:   in.StartTime,
			IsReminder:  in.IsReminder,
		}
		if err := s.Create(ctx, item); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s Saved %s (ID: %d).", reply, item.Kind(), item.ID), nil

	default:
		return reply, nil
	}
}

func notFoundAnswer(id int64) string {
	return fmt.Sprintf("Sorry, I could not find a reminder or event with ID %d.", id)
}

func (s *ScheduleService) scheduleReminder(ctx context.Context, item *entities.ScheduledItem) {
	if s.reminders == nil || !item.IsReminder || item.StartTime == nil {
		return
	}
	if err := s.reminders.ScheduleReminder(ctx, item); err != nil {
		s.logger.Warn("Failed to schedule reminder notification",
			zap.Int64("id", item.ID),
			zap.Error(err))
	}
}
