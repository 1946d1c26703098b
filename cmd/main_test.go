package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika-assistant/internal/config"
)

func TestRun_ReturnsStartupErrors(t *testing.T) {
	cfg := &config.Config{
		Port:        "0",
		JWTSecret:   "test-secret-0123456789",
		StoreDriver: config.StoreMemory,
		RedisURL:    "ftp://localhost:6379",
		LLMProvider: config.ProviderMock,
		STTProvider: config.ProviderMock,
		TTSProvider: config.ProviderMock,
	}

	err := run(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
