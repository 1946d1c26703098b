package entities

import (
	"strings"
	"time"
)

// ConversationTurn is one question/answer exchange in the conversation log.
// Turns are written once and never modified.
type ConversationTurn struct {
	ID                int64     `json:"id" bson:"_id" db:"id"`
	UserID            string    `json:"user_id,omitempty" bson:"user_id" db:"user_id"`
	UserMessage       string    `json:"user_message" bson:"user_message" db:"user_message"`
	AssistantResponse string    `json:"assistant_response" bson:"assistant_response" db:"assistant_response"`
	Timestamp         time.Time `json:"timestamp" bson:"timestamp" db:"timestamp"`
}

// NewConversationTurn builds a turn stamped with the current UTC time.
func NewConversationTurn(userID, userMessage, assistantResponse string) *ConversationTurn {
	return &ConversationTurn{
		UserID:            userID,
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
		Timestamp:         time.Now().UTC(),
	}
}

func (t *ConversationTurn) Validate() error {
	if strings.TrimSpace(t.UserMessage) == "" {
		return validationError("user message is required")
	}
	if strings.TrimSpace(t.AssistantResponse) == "" {
		return validationError("assistant response is required")
	}
	return nil
}
