package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/adapters/audio"
	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
	"github.com/satriahrh/arunika-assistant/internal/auth"
	"github.com/satriahrh/arunika-assistant/internal/websocket"
	"github.com/satriahrh/arunika-assistant/usecase"
)

// Max accepted upload for speech-to-text.
const maxAudioUploadBytes = 25 << 20

// Dependencies are the services the HTTP surface is built on
type Dependencies struct {
	Conversations *usecase.ConversationService
	Schedule      *usecase.ScheduleService
	Speech        *usecase.SpeechService
	Accounts      *usecase.AccountService
	Tokens        *auth.TokenManager
	Hub           *websocket.Hub

	// AuthRequired rejects anonymous callers on conversational and event endpoints.
	AuthRequired bool
	// SecureCookie marks the session cookie Secure.
	SecureCookie bool
}

type handler struct {
	Dependencies
	logger *zap.Logger
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	h := &handler{Dependencies: deps, logger: logger}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "arunika-assistant",
		})
	})

	optionalAuth := auth.Middleware(deps.Tokens, false, logger)
	userAuth := auth.Middleware(deps.Tokens, deps.AuthRequired, logger)

	api := e.Group("/api")

	// Account APIs
	api.POST("/register", h.register, optionalAuth)
	api.POST("/login", h.login, optionalAuth)
	api.POST("/logout", h.logout, optionalAuth)

	// Assistant APIs
	api.POST("/speech-to-text", h.speechToText, userAuth)
	api.POST("/ask-question", h.askQuestion, userAuth)
	api.POST("/text-to-speech", h.textToSpeech, userAuth)
	api.GET("/get-chats", h.getChats, userAuth)
	api.GET("/get-reminders-and-events", h.getRemindersAndEvents, userAuth)
	api.DELETE("/delete-event/:id", h.deleteEvent, userAuth)
	api.PUT("/update-event/:id", h.updateEvent, userAuth)

	// Live voice channel
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(deps.Hub, c, auth.UserID(c))
	}, userAuth)
}

func (h *handler) speechToText(c echo.Context) error {
	file, err := c.FormFile("audio_data")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No audio file provided", Code: "missing_audio"})
	}
	if file.Size > maxAudioUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Audio file is too large", Code: "audio_too_large"})
	}

	src, err := file.Open()
	if err != nil {
		return h.errorResponse(c, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return h.errorResponse(c, err)
	}

	transcript, err := h.Speech.Transcribe(c.Request().Context(), data)
	switch {
	case errors.Is(err, repositories.ErrNoSpeech):
		return c.JSON(http.StatusOK, TranscriptResponse{Error: "No speech could be recognized"})
	case errors.Is(err, repositories.ErrRecognitionCanceled):
		return c.JSON(http.StatusOK, TranscriptResponse{Error: "Speech recognition canceled"})
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "unsupported_audio"})
	case err != nil:
		return h.errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, TranscriptResponse{Transcript: transcript})
}

func (h *handler) askQuestion(c echo.Context) error {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Code: "invalid_request"})
	}

	turn, err := h.Conversations.Ask(c.Request().Context(), auth.UserID(c), req.Question)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, AnswerResponse{Answer: turn.AssistantResponse})
}

func (h *handler) textToSpeech(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Code: "invalid_request"})
	}

	chunks, contentType, err := h.Speech.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		return h.errorResponse(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentType)
	res.WriteHeader(http.StatusOK)
	for chunk := range chunks {
		if _, err := res.Write(chunk); err != nil {
			h.logger.Warn("Client went away during audio stream", zap.Error(err))
			go func() {
				for range chunks {
				}
			}()
			return nil
		}
		res.Flush()
	}
	return nil
}

func (h *handler) getChats(c echo.Context) error {
	turns, err := h.Conversations.History(c.Request().Context(), auth.UserID(c))
	if err != nil {
		return h.errorResponse(c, err)
	}
	if turns == nil {
		turns = []*entities.ConversationTurn{}
	}
	return c.JSON(http.StatusOK, ChatsResponse{Chats: turns})
}

func (h *handler) getRemindersAndEvents(c echo.Context) error {
	items, err := h.Schedule.List(c.Request().Context())
	if err != nil {
		return h.errorResponse(c, err)
	}
	if items == nil {
		items = []*entities.ScheduledItem{}
	}
	return c.JSON(http.StatusOK, EventsResponse{Events: items})
}

func (h *handler) deleteEvent(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid event ID", Code: "invalid_id"})
	}

	if err := h.Schedule.Delete(c.Request().Context(), id); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

func (h *handler) updateEvent(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid event ID", Code: "invalid_id"})
	}

	var patch entities.ScheduledItemPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Code: "invalid_request"})
	}

	item, err := h.Schedule.Update(c.Request().Context(), id, patch)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, EventResponse{Message: "Event updated successfully", Event: item})
}

func (h *handler) register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Code: "invalid_request"})
	}

	if _, err := h.Accounts.Register(c.Request().Context(), req.Email, req.Password); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

func (h *handler) login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Code: "invalid_request"})
	}

	session, err := h.Accounts.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.errorResponse(c, err)
	}

	c.SetCookie(h.sessionCookie(session.Token, session.ExpiresAt))
	return c.JSON(http.StatusOK, LoginResponse{
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (h *handler) logout(c echo.Context) error {
	claims, _ := auth.ClaimsFromContext(c)
	if err := h.Accounts.Logout(c.Request().Context(), claims); err != nil {
		return h.errorResponse(c, err)
	}

	cookie := h.sessionCookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	c.SetCookie(cookie)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (h *handler) sessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// errorResponse maps domain errors onto HTTP statuses.
func (h *handler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entities.ErrValidation):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"})
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Email already registered", Code: "duplicate_email"})
	case errors.Is(err, repositories.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Event not found", Code: "not_found"})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password", Code: "invalid_credentials"})
	}

	h.logger.Error("Request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "internal_error"})
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
