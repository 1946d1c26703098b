package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/adapters/audio"
	"github.com/satriahrh/arunika-assistant/adapters/llm"
	"github.com/satriahrh/arunika-assistant/adapters/memory"
	mongostore "github.com/satriahrh/arunika-assistant/adapters/mongo"
	"github.com/satriahrh/arunika-assistant/adapters/postgres"
	"github.com/satriahrh/arunika-assistant/adapters/queue"
	redisstore "github.com/satriahrh/arunika-assistant/adapters/redis"
	"github.com/satriahrh/arunika-assistant/adapters/stt"
	"github.com/satriahrh/arunika-assistant/adapters/tts"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/api"
	"github.com/satriahrh/arunika-assistant/internal/auth"
	"github.com/satriahrh/arunika-assistant/internal/config"
	"github.com/satriahrh/arunika-assistant/internal/intent"
	"github.com/satriahrh/arunika-assistant/internal/websocket"
	"github.com/satriahrh/arunika-assistant/usecase"
)

// stores bundles the repositories of the selected backend.
type stores struct {
	conversations repositories.ConversationRepository
	schedule      repositories.ScheduleRepository
	users         repositories.UserRepository
	close         func(ctx context.Context)
}

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}

	if envErr != nil {
		logger.Debug(".env file not loaded", zap.Error(envErr))
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run wires the server and blocks until it is interrupted. Resources opened
// here are released before it returns.
func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}
	defer st.close(context.Background())

	denylist, closeDenylist, err := openDenylist(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer closeDenylist()

	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.TokenTTL}, denylist, logger)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	// Initialize adapters
	languageModel, err := newLanguageModel(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create language model: %w", err)
	}
	speechToText, closeSTT, err := newSpeechToText(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create speech-to-text: %w", err)
	}
	defer closeSTT()
	textToSpeech, err := newTextToSpeech(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create text-to-speech: %w", err)
	}

	ffmpeg, err := audio.NewFFmpegNormalizer(cfg.FFmpegPath, logger)
	if err != nil {
		logger.Warn("ffmpeg unavailable, only PCM WAV uploads are accepted", zap.Error(err))
	}
	normalizer := audio.NewNormalizer(ffmpeg, logger)

	var reminders repositories.ReminderScheduler
	if cfg.RedisURL != "" {
		scheduler, err := queue.NewReminderScheduler(cfg.RedisURL, logger)
		if err != nil {
			return fmt.Errorf("failed to create reminder scheduler: %w", err)
		}
		defer scheduler.Close()
		reminders = scheduler
	} else {
		logger.Info("REDIS_URL not set, reminder notifications disabled")
	}

	// Initialize usecase services
	scheduleService := usecase.NewScheduleService(st.schedule, reminders, logger)
	conversationService := usecase.NewConversationService(
		st.conversations,
		languageModel,
		intent.NewKeywordClassifier(nil),
		scheduleService,
		usecase.ConversationConfig{LLMTimeout: cfg.LLMTimeout},
		logger,
	)
	speechService := usecase.NewSpeechService(normalizer, speechToText, textToSpeech, usecase.SpeechConfig{Language: cfg.SpeechLanguage}, logger)
	accountService := usecase.NewAccountService(st.users, tokens, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(conversationService, speechService, logger)
	go hub.Run(ctx)

	if cfg.RedisURL != "" {
		worker, err := queue.NewWorker(cfg.RedisURL, queue.NewReminderHandler(st.schedule, hub, logger), logger)
		if err != nil {
			return fmt.Errorf("failed to create reminder worker: %w", err)
		}
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Error("Reminder worker stopped", zap.Error(err))
			}
		}()
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	}))

	// Initialize API routes
	api.InitRoutes(e, api.Dependencies{
		Conversations: conversationService,
		Schedule:      scheduleService,
		Speech:        speechService,
		Accounts:      accountService,
		Tokens:        tokens,
		Hub:           hub,
		AuthRequired:  cfg.AuthRequired,
		SecureCookie:  !cfg.IsDevelopment(),
	}, logger)

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
		zap.String("llm", cfg.LLMProvider),
		zap.String("stt", cfg.STTProvider),
		zap.String("tts", cfg.TTSProvider),
		zap.Bool("auth_required", cfg.AuthRequired))

	// Wait for interrupt signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("server stopped: %w", err)
	}

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			conversations: postgres.NewConversationRepository(pool),
			schedule:      postgres.NewScheduleRepository(pool),
			users:         postgres.NewUserRepository(pool),
			close:         func(context.Context) { pool.Close() },
		}, nil

	case config.StoreMongo:
		client, err := mongostore.NewClient(ctx, mongostore.NewClientConfigFromEnv(), logger)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(context.Background())
			return nil, err
		}
		return &stores{
			conversations: mongostore.NewConversationRepository(client.Database),
			schedule:      mongostore.NewScheduleRepository(client.Database),
			users:         mongostore.NewUserRepository(client.Database),
			close:         func(ctx context.Context) { _ = client.Close(ctx) },
		}, nil

	default:
		logger.Warn("Using in-memory store, data is lost on restart")
		return &stores{
			conversations: memory.NewConversationRepository(),
			schedule:      memory.NewScheduleRepository(),
			users:         memory.NewUserRepository(),
			close:         func(context.Context) {},
		}, nil
	}
}

func openDenylist(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.TokenDenylist, func(), error) {
	if cfg.RedisURL == "" {
		return memory.NewTokenDenylist(), func() {}, nil
	}
	client, err := redisstore.NewClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return redisstore.NewTokenDenylist(client), func() { _ = client.Close() }, nil
}

func newLanguageModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.LargeLanguageModel, error) {
	if cfg.LLMProvider == config.ProviderGemini {
		gemini, err := llm.NewGeminiLLM(ctx, llm.NewGeminiConfigFromEnv(), logger)
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
	logger.Warn("Using mock language model")
	return llm.NewMockLLM(), nil
}

func newSpeechToText(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.SpeechToText, func(), error) {
	if cfg.STTProvider == config.ProviderGoogle {
		client, err := stt.NewGoogleSpeechToText(ctx, stt.NewGoogleSpeechConfigFromEnv(), logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { _ = client.Close() }, nil
	}
	logger.Warn("Using mock speech-to-text")
	return stt.NewMockSpeechToText("", logger), func() {}, nil
}

func newTextToSpeech(cfg *config.Config, logger *zap.Logger) (repositories.TextToSpeech, error) {
	if cfg.TTSProvider == config.ProviderElevenLabs {
		elevenLabs, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
		if err != nil {
			return nil, err
		}
		return elevenLabs, nil
	}
	logger.Warn("Using mock text-to-speech")
	return tts.NewMockTextToSpeech(logger), nil
}
