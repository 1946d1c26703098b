package audio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-audio/wav"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

const wavFormatPCM = 1

// WAVNormalizer decodes uncompressed PCM WAV files.
type WAVNormalizer struct{}

func NewWAVNormalizer() *WAVNormalizer {
	return &WAVNormalizer{}
}

var _ repositories.AudioNormalizer = (*WAVNormalizer)(nil)

// Normalize implements repositories.AudioNormalizer
func (w *WAVNormalizer) Normalize(ctx context.Context, data []byte) (*repositories.NormalizedAudio, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV encoding %d is not PCM", ErrUnsupportedFormat, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 || buf.Format.SampleRate == 0 {
		return nil, fmt.Errorf("%w: WAV header has no format", ErrUnsupportedFormat)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mono := downmix(buf.Data, buf.Format.NumChannels, int(d.BitDepth))
	resampled := resampleLinear(mono, buf.Format.SampleRate, repositories.NormalizedSampleRate)

	return &repositories.NormalizedAudio{
		PCM:        pcmBytes(resampled),
		SampleRate: repositories.NormalizedSampleRate,
	}, nil
}
