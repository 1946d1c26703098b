package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/intent"
)

// SystemInstruction opens every language model conversation.
const SystemInstruction = "You are Arunika, a friendly voice assistant. Keep answers short and easy to read aloud. " +
	"When the user asks to be reminded of something or mentions an appointment, confirm it in one sentence."

// ConversationConfig holds conversation settings
type ConversationConfig struct {
	// LLMTimeout bounds a single language model call. Zero means no timeout.
	LLMTimeout time.Duration
}

// ConversationService answers questions with the language model, keeping a
// per-user history and routing reminder and event requests to the schedule.
type ConversationService struct {
	conversations repositories.ConversationRepository
	llm           repositories.LargeLanguageModel
	classifier    intent.Classifier
	schedule      *ScheduleService
	config        ConversationConfig
	logger        *zap.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(
	conversations repositories.ConversationRepository,
	llm repositories.LargeLanguageModel,
	classifier intent.Classifier,
	schedule *ScheduleService,
	config ConversationConfig,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		llm:           llm,
		classifier:    classifier,
		schedule:      schedule,
		config:        config,
		logger:        logger,
	}
}

// Ask answers question for userID and appends exactly one turn to the history.
// Nothing is stored when the language model or the schedule action fails. A
// schedule change that succeeded is kept even when saving the turn fails.
func (s *ConversationService) Ask(ctx context.Context, userID, question string) (*entities.ConversationTurn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	history, err := s.conversations.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	reply, err := s.generate(ctx, history, question)
	if err != nil {
		return nil, err
	}

	in := s.classifier.Classify(question)
	answer, err := s.schedule.ApplyIntent(ctx, in, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s intent: %w", in.Kind, err)
	}

	turn := entities.NewConversationTurn(userID, question, answer)
	if err := s.conversations.Append(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	s.logger.Info("Question answered",
		zap.String("user_id", userID),
		zap.String("intent", string(in.Kind)),
		zap.Int("history_turns", len(history)),
		zap.Int64("turn_id", turn.ID))

	return turn, nil
}

// History returns the user's turns in chronological order.
func (s *ConversationService) History(ctx context.Context, userID string) ([]*entities.ConversationTurn, error) {
	return s.conversations.History(ctx, userID)
}

func (s *ConversationService) generate(ctx context.Context, history []*entities.ConversationTurn, question string) (string, error) {
	if s.config.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.LLMTimeout)
		defer cancel()
	}

	session, err := s.llm.GenerateChat(ctx, BuildChatHistory(history))
	if err != nil {
		return "", fmt.Errorf("failed to start chat: %w", err)
	}

	resp, err := session.SendMessage(ctx, repositories.ChatMessage{
		Role:    repositories.UserRole,
		Content: question,
	})
	if err != nil {
		return "", fmt.Errorf("language model request failed: %w", err)
	}

	reply := strings.TrimSpace(resp.Content)
	if reply == "" {
		return "", errors.New("language model returned an empty reply")
	}
	return reply, nil
}

// BuildChatHistory renders stored turns as the message list sent to the
// language model, led by the system instruction.
func BuildChatHistory(turns []*entities.ConversationTurn) []repositories.ChatMessage {
	messages := make([]repositories.ChatMessage, 0, 1+2*len(turns))
	messages = append(messages, repositories.ChatMessage{Role: repositories.SystemRole, Content: SystemInstruction})
	for _, t := range turns {
		messages = append(messages,
			repositories.ChatMessage{Role: repositories.UserRole, Content: t.UserMessage},
			repositories.ChatMessage{Role: repositories.AssistantRole, Content: t.AssistantResponse},
		)
	}
	return messages
}
