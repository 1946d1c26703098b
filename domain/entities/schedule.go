package entities

import (
	"sort"
	"strings"
	"time"
)

// ScheduledItem is a reminder or a calendar event.
type ScheduledItem struct {
	ID          int64      `json:"id" bson:"_id" db:"id"`
	Title       string     `json:"title" bson:"title" db:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty" db:"description"`
	StartTime   *time.Time `json:"start_time" bson:"start_time,omitempty" db:"start_time"`
	EndTime     *time.Time `json:"end_time" bson:"end_time,omitempty" db:"end_time"`
	IsReminder  bool       `json:"is_reminder" bson:"is_reminder" db:"is_reminder"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
}

// ScheduledItemPatch carries the fields of a partial update. Nil fields are left untouched.
type ScheduledItemPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	IsReminder  *bool      `json:"is_reminder"`
}

// Kind returns "reminder" or "event".
func (s *ScheduledItem) Kind() string {
	if s.IsReminder {
		return "reminder"
	}
	return "event"
}

// Apply overwrites the supplied fields of the patch onto the item.
func (s *ScheduledItem) Apply(p ScheduledItemPatch) {
	if p.Title != nil {
		s.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.StartTime != nil {
		t := p.StartTime.UTC()
		s.StartTime = &t
	}
	if p.EndTime != nil {
		t := p.EndTime.UTC()
		s.EndTime = &t
	}
	if p.IsReminder != nil {
		s.IsReminder = *p.IsReminder
	}
}

// IsEmpty reports whether the patch carries no fields at all.
func (p ScheduledItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartTime == nil && p.EndTime == nil && p.IsReminder == nil
}

func (s *ScheduledItem) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return validationError("title is required")
	}
	if s.StartTime != nil && s.EndTime != nil && s.EndTime.Before(*s.StartTime) {
		return validationError("end time must not be before start time")
	}
	return nil
}

// SortByStartTime orders items ascending by start time, items without a start
// time last, ties broken by id.
func SortByStartTime(items []*ScheduledItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.StartTime == nil && b.StartTime == nil:
			return a.ID < b.ID
		case a.StartTime == nil:
			return false
		case b.StartTime == nil:
			return true
		case !a.StartTime.Equal(*b.StartTime):
			return a.StartTime.Before(*b.StartTime)
		default:
			return a.ID < b.ID
		}
	})
}
