package api

import (
	"time"

	"github.com/satriahrh/arunika-assistant/domain/entities"
)

// CredentialsRequest is the payload of register and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the response payload for a successful login
type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// QuestionRequest is the payload of ask-question
type QuestionRequest struct {
	Question string `json:"question"`
}

// AnswerResponse is the reply to ask-question
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// TranscriptResponse is the reply to speech-to-text. Error is set instead of
// Transcript when nothing could be recognized.
type TranscriptResponse struct {
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SynthesizeRequest is the payload of text-to-speech
type SynthesizeRequest struct {
	Text string `json:"text"`
}

// ChatsResponse lists the caller's conversation history
type ChatsResponse struct {
	Chats []*entities.ConversationTurn `json:"chats"`
}

// EventsResponse lists reminders and events
type EventsResponse struct {
	Events []*entities.ScheduledItem `json:"events"`
}

// EventResponse is the reply to update-event
type EventResponse struct {
	Message string                  `json:"message"`
	Event   *entities.ScheduledItem `json:"event"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
