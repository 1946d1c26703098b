package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

// FFmpegNormalizer converts any format ffmpeg understands through temporary files.
type FFmpegNormalizer struct {
	path   string
	tmpDir string
	logger *zap.Logger
}

// NewFFmpegNormalizer locates the ffmpeg binary. An empty path searches $PATH.
func NewFFmpegNormalizer(path string, logger *zap.Logger) (*FFmpegNormalizer, error) {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	logger.Info("Using ffmpeg for audio conversion", zap.String("path", resolved))
	return &FFmpegNormalizer{path: resolved, logger: logger}, nil
}

var _ repositories.AudioNormalizer = (*FFmpegNormalizer)(nil)

// Normalize implements repositories.AudioNormalizer. Both temporary files are
// removed on every return path.
func (f *FFmpegNormalizer) Normalize(ctx context.Context, data []byte) (*repositories.NormalizedAudio, error) {
	in, err := os.CreateTemp(f.tmpDir, "upload-*.audio")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp input: %w", err)
	}
	defer os.Remove(in.Name())

	_, writeErr := in.Write(data)
	closeErr := in.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return nil, fmt.Errorf("failed to write temp input: %w", err)
	}

	out, err := os.CreateTemp(f.tmpDir, "converted-*.pcm")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp output: %w", err)
	}
	out.Close()
	defer os.Remove(out.Name())

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.path,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", in.Name(),
		"-ac", strconv.Itoa(repositories.NormalizedChannels),
		"-ar", strconv.Itoa(repositories.NormalizedSampleRate),
		"-f", "s16le",
		out.Name(),
	)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn("ffmpeg conversion failed",
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(err))
		return nil, fmt.Errorf("%w: ffmpeg: %v", ErrUnsupportedFormat, err)
	}

	pcm, err := os.ReadFile(out.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	return &repositories.NormalizedAudio{PCM: pcm, SampleRate: repositories.NormalizedSampleRate}, nil
}
