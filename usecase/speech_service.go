package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// SpeechConfig holds speech settings
type SpeechConfig struct {
	Language string
}

// SpeechService turns recordings into text and text into audio.
type SpeechService struct {
	normalizer repositories.AudioNormalizer
	stt        repositories.SpeechToText
	tts        repositories.TextToSpeech
	language   string
	logger     *zap.Logger
}

// NewSpeechService creates a new speech service
func NewSpeechService(
	normalizer repositories.AudioNormalizer,
	stt repositories.SpeechToText,
	tts repositories.TextToSpeech,
	config SpeechConfig,
	logger *zap.Logger,
) *SpeechService {
	if config.Language == "" {
		config.Language = "en-US"
		logger.Info("Using default recognition language", zap.String("language", config.Language))
	}
	return &SpeechService{
		normalizer: normalizer,
		stt:        stt,
		tts:        tts,
		language:   config.Language,
		logger:     logger,
	}
}

// Transcribe normalizes the recording to 16 kHz mono PCM and recognizes it.
// ErrNoSpeech and ErrRecognitionCanceled are passed through unwrapped.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}

	normalized, err := s.normalizer.Normalize(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("failed to normalize audio: %w", err)
	}

	transcript, err := s.stt.TranscribeAudio(ctx, normalized.PCM, repositories.AudioConfig{
		SampleRate: normalized.SampleRate,
		Encoding:   "LINEAR16",
		Language:   s.language,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Transcription completed",
		zap.Int("input_bytes", len(audio)),
		zap.Int("pcm_bytes", len(normalized.PCM)),
		zap.Int("transcript_length", len(transcript)))
	return transcript, nil
}

// Synthesize starts speech synthesis of text. The synthesis service is not
// called for blank text.
func (s *SpeechService) Synthesize(ctx context.Context, text string) (<-chan []byte, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", ErrEmptyText
	}

	chunks, err := s.tts.ConvertTextToSpeech(ctx, text)
	if err != nil {
		return nil, "", fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return chunks, s.tts.ContentType(), nil
}
