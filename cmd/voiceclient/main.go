// Command voiceclient talks to the assistant over the live voice channel.
//
//	voiceclient -email ada@example.com -password secret123 -audio sample_audio.wav
//	voiceclient -question "Remind me to call mom tomorrow at 5pm" -listen
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika-assistant/internal/api"
	ws "github.com/satriahrh/arunika-assistant/internal/websocket"
)

func main() {
	server := flag.String("server", "localhost:8080", "server host:port")
	email := flag.String("email", "", "account email; empty connects anonymously")
	password := flag.String("password", "", "account password")
	register := flag.Bool("register", false, "register the account before logging in")
	audioPath := flag.String("audio", "", "recording to transcribe and answer")
	question := flag.String("question", "", "question to ask")
	synthesize := flag.String("synthesize", "", "text to synthesize")
	outDir := flag.String("out", "audio_responses", "directory for synthesized audio")
	listen := flag.Bool("listen", false, "keep listening for reminders after the replies arrive")
	timeout := flag.Duration("timeout", time.Minute, "how long to wait for replies")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	var token string
	if *email != "" {
		if *register {
			if err := registerAccount(*server, *email, *password); err != nil {
				logger.Fatal("Failed to register", zap.Error(err))
			}
			logger.Info("Registered", zap.String("email", *email))
		}
		var err error
		token, err = login(*server, *email, *password)
		if err != nil {
			logger.Fatal("Failed to log in", zap.Error(err))
		}
		logger.Info("Logged in", zap.String("email", *email))
	}

	u := url.URL{Scheme: "ws", Host: *server, Path: "/ws"}
	headers := http.Header{}
	if token != "" {
		headers.Add("Authorization", "Bearer "+token)
	}

	c, _, err := websocket.DefaultDialer.Dial(u.String(), headers)
	if err != nil {
		logger.Fatal("dial", zap.String("url", u.String()), zap.Error(err))
	}
	defer c.Close()
	logger.Info("Connected", zap.String("url", u.String()))

	var requests []ws.ClientMessage
	if *audioPath != "" {
		data, err := os.ReadFile(*audioPath)
		if err != nil {
			logger.Fatal("Failed to read recording", zap.Error(err))
		}
		requests = append(requests, ws.ClientMessage{
			Type:      ws.MessageTypeAudio,
			MessageID: "audio-1",
			AudioData: base64.StdEncoding.EncodeToString(data),
		})
	}
	if *question != "" {
		requests = append(requests, ws.ClientMessage{Type: ws.MessageTypeQuestion, MessageID: "question-1", Text: *question})
	}
	if *synthesize != "" {
		requests = append(requests, ws.ClientMessage{Type: ws.MessageTypeSynthesize, MessageID: "synthesize-1", Text: *synthesize})
	}

	for _, req := range requests {
		if err := c.WriteJSON(req); err != nil {
			logger.Fatal("Failed to send message", zap.String("type", string(req.Type)), zap.Error(err))
		}
		logger.Info("Sent", zap.String("type", string(req.Type)), zap.String("message_id", req.MessageID))
	}

	replies := make(chan ws.ServerMessage)
	go readReplies(c, replies, logger)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	pending := len(requests)
	deadline := time.After(*timeout)
	for pending > 0 || *listen {
		select {
		case msg, ok := <-replies:
			if !ok {
				return
			}
			if handleReply(msg, *outDir, logger) {
				pending--
			}
		case <-deadline:
			if !*listen {
				logger.Warn("Timed out waiting for replies", zap.Int("pending", pending))
				closeConnection(c)
				return
			}
		case <-interrupt:
			closeConnection(c)
			return
		}
	}
	closeConnection(c)
}

// handleReply logs a server message and reports whether it completes a request.
func handleReply(msg ws.ServerMessage, outDir string, logger *zap.Logger) bool {
	switch msg.Type {
	case ws.MessageTypeTranscript:
		logger.Info("Transcript", zap.String("message_id", msg.MessageID), zap.String("text", msg.Text))
		return false
	case ws.MessageTypeAnswer:
		logger.Info("Answer", zap.String("message_id", msg.MessageID), zap.String("text", msg.Text))
		return true
	case ws.MessageTypeAudioResult:
		path, err := saveAudio(outDir, msg)
		if err != nil {
			logger.Error("Failed to save audio", zap.Error(err))
		} else {
			logger.Info("Audio saved", zap.String("path", path))
		}
		return true
	case ws.MessageTypeReminderDue:
		logger.Info("Reminder due", zap.String("text", msg.Text))
		return false
	case ws.MessageTypeError:
		logger.Warn("Server error", zap.String("message_id", msg.MessageID), zap.String("error", msg.Error))
		return msg.MessageID != ""
	default:
		logger.Info("Received", zap.String("type", string(msg.Type)))
		return false
	}
}

func readReplies(c *websocket.Conn, out chan<- ws.ServerMessage, logger *zap.Logger) {
	defer close(out)
	for {
		var msg ws.ServerMessage
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Info("read", zap.Error(err))
			}
			return
		}
		out <- msg
	}
}

func saveAudio(dir string, msg ws.ServerMessage) (string, error) {
	data, err := base64.StdEncoding.DecodeString(msg.AudioData)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ext := ".bin"
	if exts, _ := mime.ExtensionsByType(msg.ContentType); len(exts) > 0 {
		ext = exts[0]
	}
	path := filepath.Join(dir, fmt.Sprintf("%d%s", time.Now().Unix(), ext))
	return path, os.WriteFile(path, data, 0o644)
}

func closeConnection(c *websocket.Conn) {
	_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func registerAccount(server, email, password string) error {
	_, err := postJSON(server, "/api/register", api.CredentialsRequest{Email: email, Password: password}, http.StatusCreated)
	return err
}

func login(server, email, password string) (string, error) {
	body, err := postJSON(server, "/api/login", api.CredentialsRequest{Email: email, Password: password}, http.StatusOK)
	if err != nil {
		return "", err
	}
	var resp api.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func postJSON(server, path string, payload interface{}, wantStatus int) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := http.Post("http://"+server+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("%s failed with status %d: %s", path, resp.StatusCode, body)
	}
	return body, nil
}
