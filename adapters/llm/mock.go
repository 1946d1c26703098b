package llm

import (
	"context"
	"fmt"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// MockLLM answers without calling any provider. It is used for local
// development when no API key is configured.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

var _ repositories.LargeLanguageModel = (*MockLLM)(nil)

// GenerateChat implements repositories.LargeLanguageModel
func (m *MockLLM) GenerateChat(ctx context.Context, history []repositories.ChatMessage) (repositories.ChatSession, error) {
	return &MockChatSession{history: append([]repositories.ChatMessage(nil), history...)}, nil
}

// MockChatSession implements repositories.ChatSession
type MockChatSession struct {
	history []repositories.ChatMessage
}

// SendMessage implements repositories.ChatSession
func (m *MockChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return repositories.ChatMessage{}, err
	}

	m.history = append(m.history, message)

	response := "Hello! How can I help you today?"
	if message.Content != "" {
		response = fmt.Sprintf("You said: %q. I'm running in offline mode, so this is all I can tell you.", message.Content)
	}

	reply := repositories.ChatMessage{Role: repositories.AssistantRole, Content: response}
	m.history = append(m.history, reply)
	return reply, nil
}

// History implements repositories.ChatSession
func (m *MockChatSession) History() ([]repositories.ChatMessage, error) {
	return m.history, nil
}
