// Package stt recognizes speech in normalized PCM audio.
package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// GoogleSpeechConfig holds Google Cloud Speech settings
type GoogleSpeechConfig struct {
	// CredentialsFile is a service account key file. Empty uses application default credentials.
	CredentialsFile string
	// Region selects a regional endpoint such as "eu". Empty uses the global endpoint.
	Region string
	// Model is the recognition model, e.g. "latest_short".
	Model string
}

// NewGoogleSpeechConfigFromEnv reads SPEECH_CREDENTIALS_FILE, SPEECH_REGION and SPEECH_MODEL
func NewGoogleSpeechConfigFromEnv() GoogleSpeechConfig {
	return GoogleSpeechConfig{
		CredentialsFile: os.Getenv("SPEECH_CREDENTIALS_FILE"),
		Region:          os.Getenv("SPEECH_REGION"),
		Model:           os.Getenv("SPEECH_MODEL"),
	}
}

// ValidateGoogleSpeechConfig validates the GoogleSpeechConfig
func ValidateGoogleSpeechConfig(config GoogleSpeechConfig) error {
	if config.CredentialsFile != "" {
		if _, err := os.Stat(config.CredentialsFile); err != nil {
			return fmt.Errorf("speech credentials file: %w", err)
		}
	}
	if strings.ContainsAny(config.Region, "/: ") {
		return fmt.Errorf("invalid speech region %q", config.Region)
	}
	return nil
}

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	client *speech.Client
	model  string
	logger *zap.Logger
}

// NewGoogleSpeechToText creates the speech client once for the process lifetime.
func NewGoogleSpeechToText(ctx context.Context, config GoogleSpeechConfig, logger *zap.Logger) (*GoogleSpeechToText, error) {
	if err := ValidateGoogleSpeechConfig(config); err != nil {
		return nil, fmt.Errorf("invalid speech config: %w", err)
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}
	if config.Region != "" {
		opts = append(opts, option.WithEndpoint(regionalEndpoint(config.Region)))
	}
	if config.Model == "" {
		config.Model = "latest_short"
		logger.Info("Using default speech model", zap.String("model", config.Model))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &GoogleSpeechToText{client: client, model: config.Model, logger: logger}, nil
}

var _ repositories.SpeechToText = (*GoogleSpeechToText)(nil)

// TranscribeAudio converts audio data to text using synchronous recognition.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	encoding, err := getAudioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encoding,
			SampleRateHertz:            int32(config.SampleRate),
			AudioChannelCount:          repositories.NormalizedChannels,
			LanguageCode:               config.Language,
			Model:                      g.model,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		err = mapRecognizeError(err)
		g.logger.Warn("Speech recognition failed", zap.Error(err))
		return "", err
	}

	return transcriptFromResponse(resp)
}

// Close releases the underlying gRPC connection.
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

func regionalEndpoint(region string) string {
	return region + "-speech.googleapis.com:443"
}

func mapRecognizeError(err error) error {
	if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
		return repositories.ErrRecognitionCanceled
	}
	return fmt.Errorf("speech recognition request failed: %w", err)
}

// transcriptFromResponse joins the best alternative of every result.
func transcriptFromResponse(resp *speechpb.RecognizeResponse) (string, error) {
	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", repositories.ErrNoSpeech
	}
	return strings.Join(parts, " "), nil
}

// getAudioEncoding converts string encoding to Google Speech API enum
func getAudioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
