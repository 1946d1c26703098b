package repositories

import (
	"context"
	"errors"
)

var (
	// ErrNoSpeech is returned when the recognizer heard no recognizable speech.
	ErrNoSpeech = errors.New("no speech could be recognized")
	// ErrRecognitionCanceled is returned when the recognition request was canceled.
	ErrRecognitionCanceled = errors.New("speech recognition canceled")
)

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts audio data to text. Failures other than transport
	// errors are reported as ErrNoSpeech or ErrRecognitionCanceled.
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}
