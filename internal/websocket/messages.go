package websocket

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/satriahrh/arunika-assistant/domain/entities"
)

// MessageType represents the type of a live channel message
type MessageType string

const (
	// Client to server
	MessageTypeQuestion   MessageType = "question"
	MessageTypeAudio      MessageType = "audio"
	MessageTypeSynthesize MessageType = "synthesize"
	MessageTypePing       MessageType = "ping"

	// Server to client
	MessageTypeTranscript  MessageType = "transcript"
	MessageTypeAnswer      MessageType = "answer"
	MessageTypeAudioResult MessageType = "audio"
	MessageTypeReminderDue MessageType = "reminder_due"
	MessageTypeError       MessageType = "error"
	MessageTypePong        MessageType = "pong"
)

// ClientMessage is a request sent by a connected client. MessageID is echoed back
// on every reply so clients can match responses to requests.
type ClientMessage struct {
	Type      MessageType `json:"type"`
	MessageID string      `json:"message_id,omitempty"`
	Text      string      `json:"text,omitempty"`
	AudioData string      `json:"audio_data,omitempty"` // base64 encoded
}

// ServerMessage is pushed to clients. Only the fields relevant to Type are set.
type ServerMessage struct {
	Type        MessageType             `json:"type"`
	MessageID   string                  `json:"message_id,omitempty"`
	Timestamp   string                  `json:"timestamp"`
	Text        string                  `json:"text,omitempty"`
	AudioData   string                  `json:"audio_data,omitempty"` // base64 encoded
	ContentType string                  `json:"content_type,omitempty"`
	Item        *entities.ScheduledItem `json:"item,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// ParseClientMessage decodes and validates an incoming message.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch msg.Type {
	case MessageTypeQuestion, MessageTypeSynthesize:
		if strings.TrimSpace(msg.Text) == "" {
			return nil, fmt.Errorf("text is required for %s messages", msg.Type)
		}
	case MessageTypeAudio:
		if msg.AudioData == "" {
			return nil, fmt.Errorf("audio_data is required")
		}
	case MessageTypePing:
	case "":
		return nil, fmt.Errorf("message type is required")
	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
	return &msg, nil
}

// DecodeAudio returns the raw bytes carried by an audio message.
func (m *ClientMessage) DecodeAudio() ([]byte, error) {
	audio, err := base64.StdEncoding.DecodeString(m.AudioData)
	if err != nil {
		return nil, fmt.Errorf("audio_data is not valid base64: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("audio_data is empty")
	}
	return audio, nil
}

func newServerMessage(t MessageType, messageID string) *ServerMessage {
	return &ServerMessage{
		Type:      t,
		MessageID: messageID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// CreateErrorMessage creates an error reply
func CreateErrorMessage(messageID, message string) *ServerMessage {
	msg := newServerMessage(MessageTypeError, messageID)
	msg.Error = message
	return msg
}

// CreateTranscriptMessage creates a transcript reply
func CreateTranscriptMessage(messageID, transcript string) *ServerMessage {
	msg := newServerMessage(MessageTypeTranscript, messageID)
	msg.Text = transcript
	return msg
}

// CreateAnswerMessage creates an answer reply
func CreateAnswerMessage(messageID, answer string) *ServerMessage {
	msg := newServerMessage(MessageTypeAnswer, messageID)
	msg.Text = answer
	return msg
}

// CreateAudioMessage creates a synthesized audio reply
func CreateAudioMessage(messageID string, audio []byte, contentType string) *ServerMessage {
	msg := newServerMessage(MessageTypeAudioResult, messageID)
	msg.AudioData = base64.StdEncoding.EncodeToString(audio)
	msg.ContentType = contentType
	return msg
}

// CreateReminderDueMessage creates the broadcast sent when a reminder fires
func CreateReminderDueMessage(item *entities.ScheduledItem) *ServerMessage {
	msg := newServerMessage(MessageTypeReminderDue, "")
	msg.Item = item
	msg.Text = fmt.Sprintf("Reminder: %s", item.Title)
	return msg
}

// CreatePongMessage creates a pong reply
func CreatePongMessage(messageID string) *ServerMessage {
	return newServerMessage(MessageTypePong, messageID)
}
