package tts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/adapters/audio"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// MockTextToSpeech produces a short silent WAV clip for any text. It is used
// for local development without an Eleven Labs key.
type MockTextToSpeech struct {
	logger *zap.Logger
}

func NewMockTextToSpeech(logger *zap.Logger) *MockTextToSpeech {
	return &MockTextToSpeech{logger: logger}
}

var _ repositories.TextToSpeech = (*MockTextToSpeech)(nil)

// ConvertTextToSpeech implements repositories.TextToSpeech
func (m *MockTextToSpeech) ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// 50 ms of silence per word keeps the clip length proportional to the text.
	words := len(strings.Fields(text))
	pcm := make([]byte, words*repositories.NormalizedSampleRate/20*2)
	clip, err := audio.EncodeWAV(pcm, repositories.NormalizedSampleRate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrSynthesisFailed, err)
	}

	m.logger.Debug("Mock synthesis", zap.Int("words", words), zap.Int("bytes", len(clip)))

	ch := make(chan []byte, 1)
	ch <- clip
	close(ch)
	return ch, nil
}

// ContentType implements repositories.TextToSpeech
func (m *MockTextToSpeech) ContentType() string {
	return "audio/wav"
}
