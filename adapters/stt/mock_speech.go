package stt

import (
	"context"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// MockSpeechToText returns a fixed transcript for any non-empty audio.
type MockSpeechToText struct {
	transcript string
	logger     *zap.Logger
}

// NewMockSpeechToText creates a new mock speech-to-text service
func NewMockSpeechToText(transcript string, logger *zap.Logger) *MockSpeechToText {
	if transcript == "" {
		transcript = "What is the weather like today?"
	}
	return &MockSpeechToText{transcript: transcript, logger: logger}
}

var _ repositories.SpeechToText = (*MockSpeechToText)(nil)

// TranscribeAudio implements repositories.SpeechToText
func (s *MockSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", repositories.ErrRecognitionCanceled
	}
	if len(audioData) == 0 {
		return "", repositories.ErrNoSpeech
	}

	s.logger.Info("Mock transcription",
		zap.Int("bytes", len(audioData)),
		zap.Int("sampleRate", config.SampleRate),
		zap.String("language", config.Language))
	return s.transcript, nil
}
