package stt

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

func TestTranscriptFromResponse(t *testing.T) {
	resp := &speechpb.RecognizeResponse{
		Results: []*speechpb.SpeechRecognitionResult{
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "remind me "}, {Transcript: "ignored"}}},
			{},
			{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "to call mom"}}},
		},
	}
	text, err := transcriptFromResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "remind me to call mom", text)

	_, err = transcriptFromResponse(&speechpb.RecognizeResponse{})
	assert.ErrorIs(t, err, repositories.ErrNoSpeech)
}

func TestMapRecognizeError(t *testing.T) {
	assert.ErrorIs(t, mapRecognizeError(status.Error(codes.Canceled, "client went away")), repositories.ErrRecognitionCanceled)
	assert.ErrorIs(t, mapRecognizeError(fmt.Errorf("rpc: %w", context.Canceled)), repositories.ErrRecognitionCanceled)

	transport := status.Error(codes.Unavailable, "connection refused")
	mapped := mapRecognizeError(transport)
	assert.False(t, errors.Is(mapped, repositories.ErrRecognitionCanceled))
	assert.ErrorIs(t, mapped, transport)
}

func TestGetAudioEncoding(t *testing.T) {
	enc, err := getAudioEncoding("LINEAR16")
	require.NoError(t, err)
	assert.Equal(t, speechpb.RecognitionConfig_LINEAR16, enc)

	_, err = getAudioEncoding("MP3")
	assert.Error(t, err)
}

func TestValidateGoogleSpeechConfig(t *testing.T) {
	assert.NoError(t, ValidateGoogleSpeechConfig(GoogleSpeechConfig{}))
	assert.NoError(t, ValidateGoogleSpeechConfig(GoogleSpeechConfig{Region: "eu"}))
	assert.Error(t, ValidateGoogleSpeechConfig(GoogleSpeechConfig{Region: "https://x"}))
	assert.Error(t, ValidateGoogleSpeechConfig(GoogleSpeechConfig{CredentialsFile: "/nonexistent/key.json"}))
	assert.Equal(t, "eu-speech.googleapis.com:443", regionalEndpoint("eu"))
}

func TestMockSpeechToText(t *testing.T) {
	m := NewMockSpeechToText("", zaptest.NewLogger(t))
	text, err := m.TranscribeAudio(context.Background(), []byte{1}, repositories.AudioConfig{SampleRate: 16000})
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	_, err = m.TranscribeAudio(context.Background(), nil, repositories.AudioConfig{})
	assert.ErrorIs(t, err, repositories.ErrNoSpeech)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.TranscribeAudio(ctx, []byte{1}, repositories.AudioConfig{})
	assert.ErrorIs(t, err, repositories.ErrRecognitionCanceled)
}
