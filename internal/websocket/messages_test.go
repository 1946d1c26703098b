package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/satriahrh/arunika-assistant/domain/entities"
)

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantErr  bool
		wantType MessageType
	}{
		{
			name:     "valid question",
			message:  `{"type": "question", "text": "What time is it?", "message_id": "m1"}`,
			wantType: MessageTypeQuestion,
		},
		{
			name:    "question without text",
			message: `{"type": "question", "text": "   "}`,
			wantErr: true,
		},
		{
			name:     "valid audio",
			message:  `{"type": "audio", "audio_data": "SGVsbG8="}`,
			wantType: MessageTypeAudio,
		},
		{
			name:    "audio without data",
			message: `{"type": "audio"}`,
			wantErr: true,
		},
		{
			name:     "valid synthesize",
			message:  `{"type": "synthesize", "text": "Hello"}`,
			wantType: MessageTypeSynthesize,
		},
		{
			name:    "synthesize without text",
			message: `{"type": "synthesize"}`,
			wantErr: true,
		},
		{
			name:     "ping",
			message:  `{"type": "ping"}`,
			wantType: MessageTypePing,
		},
		{
			name:    "missing type",
			message: `{"text": "hi"}`,
			wantErr: true,
		},
		{
			name:    "unsupported type",
			message: `{"type": "listening_start"}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			message: `{"type": "question"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseClientMessage([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClientMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && msg.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", msg.Type, tt.wantType)
			}
		})
	}
}

func TestClientMessage_DecodeAudio(t *testing.T) {
	msg := &ClientMessage{Type: MessageTypeAudio, AudioData: "SGVsbG8="}
	audio, err := msg.DecodeAudio()
	if err != nil {
		t.Fatalf("DecodeAudio() error = %v", err)
	}
	if string(audio) != "Hello" {
		t.Errorf("DecodeAudio() = %q, want %q", audio, "Hello")
	}

	msg.AudioData = "not base64!"
	if _, err := msg.DecodeAudio(); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestCreateReminderDueMessage(t *testing.T) {
	start := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	item := &entities.ScheduledItem{ID: 7, Title: "Call mom", StartTime: &start, IsReminder: true}

	payload, err := json.Marshal(CreateReminderDueMessage(item))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["type"] != "reminder_due" {
		t.Errorf("type = %v, want reminder_due", decoded["type"])
	}
	itemField, ok := decoded["item"].(map[string]interface{})
	if !ok {
		t.Fatalf("item missing from payload: %s", payload)
	}
	if itemField["id"] != float64(7) {
		t.Errorf("item.id = %v, want 7", itemField["id"])
	}
	if _, ok := decoded["error"]; ok {
		t.Error("error field should be omitted")
	}
}

func TestCreateAudioMessage(t *testing.T) {
	msg := CreateAudioMessage("m2", []byte("Hello"), "audio/mpeg")
	if msg.Type != MessageTypeAudioResult {
		t.Errorf("Type = %q, want %q", msg.Type, MessageTypeAudioResult)
	}
	if msg.AudioData != "SGVsbG8=" {
		t.Errorf("AudioData = %q, want SGVsbG8=", msg.AudioData)
	}
	if msg.ContentType != "audio/mpeg" || msg.MessageID != "m2" {
		t.Errorf("unexpected message %+v", msg)
	}
}
