package repositories

import (
	"context"
	"errors"
)

// ErrSynthesisFailed is returned when the synthesis service rejects a request.
var ErrSynthesisFailed = errors.New("speech synthesis failed")

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	// ConvertTextToSpeech starts synthesis and streams the produced audio in chunks.
	// The channel is closed when the audio is complete.
	ConvertTextToSpeech(ctx context.Context, text string) (<-chan []byte, error)
	// ContentType is the MIME type of the produced audio.
	ContentType() string
}
