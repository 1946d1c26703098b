// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Provider names
const (
	ProviderMock       = "mock"
	ProviderGemini     = "gemini"
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
)

// developmentSecret signs tokens when JWT_SECRET is unset in development.
const developmentSecret = "arunika-development-secret"

// Config holds the server settings. Adapter specific settings (GEMINI_*,
// SPEECH_*, ELEVEN_LABS_*, MONGODB_*) are read by the adapters themselves.
type Config struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration

	JWTSecret    string
	TokenTTL     time.Duration
	AuthRequired bool

	StoreDriver string
	DatabaseURL string
	RedisURL    string

	LLMProvider    string
	STTProvider    string
	TTSProvider    string
	LLMTimeout     time.Duration
	SpeechLanguage string
	FFmpegPath     string
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the configuration from the environment and applies defaults.
func Load() (*Config, error) {
	c := &Config{
		Port:           envOr("PORT", "8080"),
		Env:            envOr("APP_ENV", "production"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		StoreDriver:    strings.ToLower(envOr("STORE_DRIVER", StoreMemory)),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DB_URL")),
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
		SpeechLanguage: envOr("SPEECH_LANGUAGE", "en-US"),
		FFmpegPath:     os.Getenv("FFMPEG_PATH"),
	}

	var err error
	if c.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if c.TokenTTL, err = durationEnv("TOKEN_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if c.LLMTimeout, err = durationEnv("LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if c.AuthRequired, err = boolEnv("AUTH_REQUIRED", false); err != nil {
		return nil, err
	}

	c.LLMProvider = providerEnv("LLM_PROVIDER", "GEMINI_API_KEY", ProviderGemini)
	c.STTProvider = providerEnv("STT_PROVIDER", "SPEECH_CREDENTIALS_FILE", ProviderGoogle)
	c.TTSProvider = providerEnv("TTS_PROVIDER", "ELEVEN_LABS_API_KEY", ProviderElevenLabs)

	if c.JWTSecret == "" && c.IsDevelopment() {
		c.JWTSecret = developmentSecret
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required outside development")
	}

	switch c.StoreDriver {
	case StoreMemory, StoreMongo:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s, %s or %s)", c.StoreDriver, StoreMemory, StorePostgres, StoreMongo)
	}

	if err := oneOf("LLM_PROVIDER", c.LLMProvider, ProviderMock, ProviderGemini); err != nil {
		return err
	}
	if err := oneOf("STT_PROVIDER", c.STTProvider, ProviderMock, ProviderGoogle); err != nil {
		return err
	}
	return oneOf("TTS_PROVIDER", c.TTSProvider, ProviderMock, ProviderElevenLabs)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// providerEnv returns the explicit provider, else the real provider when its
// credential variable is set, else the mock.
func providerEnv(key, credentialKey, real string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return strings.ToLower(v)
	}
	if os.Getenv(credentialKey) != "" {
		return real
	}
	return ProviderMock
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q (want one of %s)", key, value, strings.Join(allowed, ", "))
}
