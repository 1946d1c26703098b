package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/adapters/queue"
	"github.com/satriahrh/arunika-assistant/domain/entities"
	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Audio arrives base64 encoded.
	maxMessageSize = 16 * 1024 * 1024

	// Upper bound for answering or synthesizing a single request.
	requestTimeout = 2 * time.Minute
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Answerer answers a question on behalf of a user
type Answerer interface {
	Ask(ctx context.Context, userID, question string) (*entities.ConversationTurn, error)
}

// Speech transcribes recordings and synthesizes replies
type Speech interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Synthesize(ctx context.Context, text string) (<-chan []byte, string, error)
}

// Hub maintains the set of active clients and broadcasts messages to the clients.
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	// Closed when Run returns.
	done chan struct{}

	answerer Answerer
	speech   Speech

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(answerer Answerer, speech Speech, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		answerer:   answerer,
		speech:     speech,
		logger:     logger,
	}
}

var _ queue.ReminderNotifier = (*Hub)(nil)

// Run starts the hub's main loop. It returns when ctx is done, after
// disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered",
				zap.String("client_id", client.id),
				zap.String("user_id", client.userID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.close()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("client_id", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				client.close()
			}
			h.mu.Unlock()
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every connected client
func (h *Hub) Broadcast(msg *ServerMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.sendMessage(msg)
	}
}

// NotifyReminder implements queue.ReminderNotifier
func (h *Hub) NotifyReminder(item *entities.ScheduledItem) {
	h.logger.Info("Broadcasting due reminder",
		zap.Int64("item_id", item.ID),
		zap.Int("clients", h.ClientCount()))
	h.Broadcast(CreateReminderDueMessage(item))
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	id     string
	userID string

	// ctx is canceled when the connection goes away so in-flight requests stop.
	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// HandleWebSocket upgrades the request and attaches a client owned by userID.
// An empty userID is an anonymous client.
func HandleWebSocket(hub *Hub, c echo.Context, userID string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 256),
		id:     id,
		userID: userID,
		ctx:    ctx,
		cancel: cancel,
		logger: hub.logger.With(zap.String("client_id", id)),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		cancel()
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// close stops in-flight work and closes the outbound channel. Called with the hub lock held.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.send)
}

// sendMessage queues msg without blocking. Messages for a closed or stalled client are dropped.
func (c *Client) sendMessage(msg *ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to encode message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Send buffer full, dropping message", zap.String("type", string(msg.Type)))
	}
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.sendMessage(CreateErrorMessage("", "only text messages are supported"))
			continue
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage validates a client message and handles it off the read loop
// so pongs keep being read while a request is in flight.
func (c *Client) processMessage(message []byte) {
	msg, err := ParseClientMessage(message)
	if err != nil {
		c.logger.Warn("Rejected client message", zap.Error(err))
		c.sendMessage(CreateErrorMessage("", err.Error()))
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.sendMessage(CreatePongMessage(msg.MessageID))
	case MessageTypeQuestion:
		go c.handleQuestion(msg.MessageID, msg.Text)
	case MessageTypeAudio:
		go c.handleAudio(msg)
	case MessageTypeSynthesize:
		go c.handleSynthesize(msg.MessageID, msg.Text)
	}
}

func (c *Client) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, requestTimeout)
}

func (c *Client) handleQuestion(messageID, question string) {
	ctx, cancel := c.requestContext()
	defer cancel()
	c.answer(ctx, messageID, question)
}

func (c *Client) answer(ctx context.Context, messageID, question string) {
	turn, err := c.hub.answerer.Ask(ctx, c.userID, question)
	if err != nil {
		c.logger.Error("Failed to answer question", zap.Error(err))
		c.sendMessage(CreateErrorMessage(messageID, clientError(err, "failed to answer question")))
		return
	}
	c.sendMessage(CreateAnswerMessage(messageID, turn.AssistantResponse))
}

// handleAudio transcribes the recording, reports the transcript, then answers it.
func (c *Client) handleAudio(msg *ClientMessage) {
	audio, err := msg.DecodeAudio()
	if err != nil {
		c.sendMessage(CreateErrorMessage(msg.MessageID, err.Error()))
		return
	}

	ctx, cancel := c.requestContext()
	defer cancel()

	transcript, err := c.hub.speech.Transcribe(ctx, audio)
	if err != nil {
		c.logger.Warn("Transcription failed", zap.Error(err))
		c.sendMessage(CreateErrorMessage(msg.MessageID, clientError(err, "failed to transcribe audio")))
		return
	}
	c.sendMessage(CreateTranscriptMessage(msg.MessageID, transcript))
	c.answer(ctx, msg.MessageID, transcript)
}

// handleSynthesize collects the synthesized stream and replies with one audio message.
func (c *Client) handleSynthesize(messageID, text string) {
	ctx, cancel := c.requestContext()
	defer cancel()

	chunks, contentType, err := c.hub.speech.Synthesize(ctx, text)
	if err != nil {
		c.logger.Error("Synthesis failed", zap.Error(err))
		c.sendMessage(CreateErrorMessage(messageID, clientError(err, "failed to synthesize speech")))
		return
	}

	var buf bytes.Buffer
	for chunk := range chunks {
		buf.Write(chunk)
	}
	if ctx.Err() != nil {
		return
	}
	c.sendMessage(CreateAudioMessage(messageID, buf.Bytes(), contentType))
}

// clientError exposes validation and recognition failures verbatim and hides the rest.
func clientError(err error, fallback string) string {
	switch {
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, repositories.ErrNoSpeech),
		errors.Is(err, repositories.ErrRecognitionCanceled):
		return err.Error()
	default:
		return fallback
	}
}
