package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("language model returned no content")

// GeminiChatSession implements the ChatSession interface
type GeminiChatSession struct {
	client            *genai.Client
	config            GeminiConfig
	logger            *zap.Logger
	systemInstruction *genai.Content
	history           []*genai.Content
}

func newGeminiChatSession(client *genai.Client, config GeminiConfig, logger *zap.Logger, history []repositories.ChatMessage) *GeminiChatSession {
	system, contents := convertRepositoryToGeminiFormat(history)
	return &GeminiChatSession{
		client:            client,
		config:            config,
		logger:            logger,
		systemInstruction: system,
		history:           contents,
	}
}

// SendMessage sends a message and gets a response, updating the history.
// Failures are returned to the caller without retrying.
func (s *GeminiChatSession) SendMessage(ctx context.Context, message repositories.ChatMessage) (repositories.ChatMessage, error) {
	userContent := genai.NewContentFromText(message.Content, genai.RoleUser)

	contents := make([]*genai.Content, 0, len(s.history)+1)
	contents = append(contents, s.history...)
	contents = append(contents, userContent)

	config := &genai.GenerateContentConfig{
		SystemInstruction: s.systemInstruction,
		SafetySettings:    safetySettings,
		Temperature:       genai.Ptr(s.config.Temperature),
		TopP:              genai.Ptr(s.config.TopP),
		TopK:              genai.Ptr(s.config.TopK),
		MaxOutputTokens:   int32(s.config.MaxOutputTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.config.TimeoutSeconds)*time.Second)
	defer cancel()

	response, err := s.client.Models.GenerateContent(ctx, s.config.Model, contents, config)
	if err != nil {
		s.logger.Error("Failed to generate content", zap.String("model", s.config.Model), zap.Error(err))
		return repositories.ChatMessage{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	responseText := responseText(response)
	if responseText == "" {
		s.logger.Warn("Empty response in chat session", zap.String("model", s.config.Model))
		return repositories.ChatMessage{}, ErrEmptyResponse
	}

	s.history = append(s.history, userContent, genai.NewContentFromText(responseText, genai.RoleModel))

	s.logger.Debug("Chat session message processed",
		zap.Int("response_length", len(responseText)),
		zap.Int("history_length", len(s.history)))

	return repositories.ChatMessage{
		Role:    repositories.AssistantRole,
		Content: responseText,
	}, nil
}

// History returns the current conversation history
func (s *GeminiChatSession) History() ([]repositories.ChatMessage, error) {
	return convertGeminiToRepositoryFormat(s.history), nil
}

func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	candidate := response.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// convertRepositoryToGeminiFormat separates system messages, which Gemini takes
// as a system instruction, from the conversation contents.
func convertRepositoryToGeminiFormat(messages []repositories.ChatMessage) (*genai.Content, []*genai.Content) {
	var (
		system   []string
		contents []*genai.Content
	)

	for _, msg := range messages {
		switch msg.Role {
		case repositories.SystemRole:
			system = append(system, msg.Content)
		case repositories.AssistantRole:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(system) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser), contents
}

// convertGeminiToRepositoryFormat converts Gemini content to repository messages
func convertGeminiToRepositoryFormat(contents []*genai.Content) []repositories.ChatMessage {
	var messages []repositories.ChatMessage

	for _, content := range contents {
		role := repositories.UserRole
		if content.Role == string(genai.RoleModel) {
			role = repositories.AssistantRole
		}

		var text string
		for _, part := range content.Parts {
			if part != nil {
				text += part.Text
			}
		}

		if text != "" {
			messages = append(messages, repositories.ChatMessage{Role: role, Content: text})
		}
	}

	return messages
}
