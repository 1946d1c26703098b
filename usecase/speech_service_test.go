package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

func TestSpeechService_Transcribe(t *testing.T) {
	ctx := context.Background()
	stt := &fakeSTT{transcript: "hello there"}
	s := NewSpeechService(&fakeNormalizer{}, stt, &fakeTTS{}, SpeechConfig{}, zaptest.NewLogger(t))

	text, err := s.Transcribe(ctx, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.Equal(t, repositories.AudioConfig{SampleRate: 16000, Encoding: "LINEAR16", Language: "en-US"}, stt.config)

	_, err = s.Transcribe(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyAudio)

	stt.err = repositories.ErrNoSpeech
	_, err = s.Transcribe(ctx, []byte{1, 2})
	assert.ErrorIs(t, err, repositories.ErrNoSpeech)

	failing := NewSpeechService(&fakeNormalizer{err: errBoom}, stt, &fakeTTS{}, SpeechConfig{Language: "id-ID"}, zaptest.NewLogger(t))
	_, err = failing.Transcribe(ctx, []byte{1, 2})
	assert.ErrorIs(t, err, errBoom)
}

func TestSpeechService_Synthesize(t *testing.T) {
	ctx := context.Background()
	tts := &fakeTTS{}
	s := NewSpeechService(&fakeNormalizer{}, &fakeSTT{}, tts, SpeechConfig{}, zaptest.NewLogger(t))

	_, _, err := s.Synthesize(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.ErrorIs(t, err, entities.ErrValidation)
	assert.Equal(t, 0, tts.calls, "synthesis must not be invoked for blank text")

	chunks, contentType, err := s.Synthesize(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", contentType)
	var got []byte
	for c := range chunks {
		got = append(got, c...)
	}
	assert.Equal(t, "audio:hi", string(got))

	tts.err = repositories.ErrSynthesisFailed
	_, _, err = s.Synthesize(ctx, "hi")
	assert.ErrorIs(t, err, repositories.ErrSynthesisFailed)
}
