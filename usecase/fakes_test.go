package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

type fakeLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	received [][]repositories.ChatMessage
}

func (f *fakeLLM) GenerateChat(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := append([]repositories.ChatMessage(nil), history...)
	f.received = append(f.received, copied)
	return &fakeChatSession{llm: f, history: copied}, nil
}

type fakeChatSession struct {
	llm     *fakeLLM
	history []repositories.ChatMessage
}

func (s *fakeChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	if s.llm.err != nil {
		return repositories.ChatMessage{}, s.llm.err
	}
	reply := repositories.ChatMessage{Role: repositories.AssistantRole, Content: s.llm.reply}
	s.history = append(s.history, message, reply)
	return reply, nil
}

func (s *fakeChatSession) History() ([]repositories.ChatMessage, error) {
	return s.history, nil
}

type fakeNormalizer struct {
	err error
}

func (f *fakeNormalizer) Normalize(ctx context.Context, data []byte) (*repositories.NormalizedAudio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &repositories.NormalizedAudio{PCM: data, SampleRate: repositories.NormalizedSampleRate}, nil
}

type fakeSTT struct {
	transcript string
	err        error
	config     repositories.AudioConfig
}

func (f *fakeSTT) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	f.config = config
	return f.transcript, f.err
}

type fakeTTS struct {
	calls int
	err   error
}

func (f *fakeTTS) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan []byte, 1)
	ch <- []byte("audio:" + text)
	close(ch)
	return ch, nil
}

func (f *fakeTTS) ContentType() string { return "audio/mpeg" }

type fakeReminders struct {
	mu        sync.Mutex
	scheduled []int64
	err       error
}

func (f *fakeReminders) ScheduleReminder(ctx context.Context, item *entities.ScheduledItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, item.ID)
	return nil
}

var errBoom = errors.New("boom")

type failingAppendRepository struct {
	repositories.ConversationRepository
}

func (f failingAppendRepository) Append(ctx context.Context, turn *entities.ConversationTurn) error {
	return errBoom
}
