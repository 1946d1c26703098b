// Package intent decides whether a chat message asks for a change to the
// reminders and events store, and extracts the parameters of that change.
package intent

import "time"

// Kind is the action a message asks for.
type Kind string

const (
	KindQuestion Kind = "question"
	KindCreate   Kind = "create"
	KindUpdate   Kind = "update"
	KindDelete   Kind = "delete"
)

// Intent is the classification of one message.
//
// For KindUpdate and KindDelete, ItemID is nil when no identifier could be
// extracted; for KindUpdate, NewTitle is empty when no title could be extracted.
type Intent struct {
	Kind       Kind
	ItemID     *int64
	NewTitle   string
	Title      string
	StartTime  *time.Time
	IsReminder bool
}

// Complete reports whether every parameter needed by the action was extracted.
func (i Intent) Complete() bool {
	switch i.Kind {
	case KindDelete:
		return i.ItemID != nil
	case KindUpdate:
		return i.ItemID != nil && i.NewTitle != ""
	case KindCreate:
		return i.Title != ""
	default:
		return true
	}
}

// Classifier maps a free-text message to an Intent.
type Classifier interface {
	Classify(message string) Intent
}
