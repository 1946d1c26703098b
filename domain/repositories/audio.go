package repositories

import "context"

// PCM format expected by speech recognition.
const (
	NormalizedSampleRate = 16000
	NormalizedChannels   = 1
	NormalizedBitDepth   = 16
)

// NormalizedAudio is raw little-endian 16-bit mono PCM.
type NormalizedAudio struct {
	PCM        []byte
	SampleRate int
}

// AudioNormalizer converts an uploaded recording into NormalizedAudio.
type AudioNormalizer interface {
	Normalize(ctx context.Context, data []byte) (*NormalizedAudio, error)
}
