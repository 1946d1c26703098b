// Package audio converts uploaded recordings into 16 kHz mono 16-bit PCM.
package audio

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// ErrUnsupportedFormat is returned for recordings that cannot be decoded.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Normalizer decodes PCM WAV natively and hands anything else to ffmpeg when
// it is available.
type Normalizer struct {
	wav    *WAVNormalizer
	ffmpeg *FFmpegNormalizer
	logger *zap.Logger
}

// NewNormalizer creates a normalizer. ffmpeg may be nil, in which case only
// PCM WAV input is accepted.
func NewNormalizer(ffmpeg *FFmpegNormalizer, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		wav:    NewWAVNormalizer(),
		ffmpeg: ffmpeg,
		logger: logger,
	}
}

var _ repositories.AudioNormalizer = (*Normalizer)(nil)

// Normalize implements repositories.AudioNormalizer
func (n *Normalizer) Normalize(ctx context.Context, data []byte) (*repositories.NormalizedAudio, error) {
	if isWAV(data) {
		out, err := n.wav.Normalize(ctx, data)
		if err == nil {
			return out, nil
		}
		if n.ffmpeg == nil {
			return nil, err
		}
		n.logger.Debug("Native WAV decoding failed, falling back to ffmpeg", zap.Error(err))
	}

	if n.ffmpeg == nil {
		return nil, ErrUnsupportedFormat
	}
	return n.ffmpeg.Normalize(ctx, data)
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE"))
}
