// Package live implements the bidirectional generation API over WebSocket.
// A [Session] holds one full-duplex conversation: the client streams content
// as it becomes available and the model streams partial turns back, without
// the request/response framing of the REST surface.
package live

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/verdantlabs/googleai/content"
)

// DefaultEndpoint is the live API's WebSocket endpoint.
const DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// Config configures a live session.
type Config struct {
	// APIKey authenticates the connection. Required.
	APIKey string
	// Model is the model to converse with, e.g. "models/gemini-2.0-flash".
	// Required.
	Model string
	// Endpoint overrides the WebSocket URL, mainly for tests.
	Endpoint string
	// Dialer overrides the WebSocket dialer.
	Dialer *websocket.Dialer
}

// Session is one live conversation. Send and Recv may be used from
// different goroutines; neither may be called concurrently with itself.
type Session struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// setup is the first client message on a fresh connection.
type setup struct {
	Setup struct {
		Model string `json:"model"`
	} `json:"setup"`
}

// clientMessage is a content-bearing client turn.
type clientMessage struct {
	ClientContent *ClientContent `json:"clientContent,omitempty"`
}

// ClientContent is one batch of client turns.
type ClientContent struct {
	Turns        []content.Content `json:"turns"`
	TurnComplete bool              `json:"turnComplete"`
}

// ServerMessage is one message streamed by the service.
type ServerMessage struct {
	// SetupComplete acknowledges the handshake. After Connect returns it
	// never appears again.
	SetupComplete *struct{} `json:"setupComplete,omitempty"`
	// ServerContent carries a partial or complete model turn.
	ServerContent *ServerContent `json:"serverContent,omitempty"`
}

// ServerContent is the model's streamed output.
type ServerContent struct {
	ModelTurn    *content.Content `json:"modelTurn,omitempty"`
	TurnComplete bool             `json:"turnComplete,omitempty"`
	Interrupted  bool             `json:"interrupted,omitempty"`
}

// Connect dials the live endpoint and performs the setup handshake. The
// returned session is ready for Send and Recv; the context bounds only the
// dial and handshake, not the session lifetime.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("live: an API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("live: a model is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	header.Set("x-goog-api-key", cfg.APIKey)
	conn, res, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if res != nil {
			return nil, fmt.Errorf("live: dial: %w (status %d)", err, res.StatusCode)
		}
		return nil, fmt.Errorf("live: dial: %w", err)
	}

	s := &Session{conn: conn}

	var hello setup
	hello.Setup.Model = cfg.Model
	if err := s.writeJSON(hello); err != nil {
		s.Close()
		return nil, fmt.Errorf("live: setup: %w", err)
	}

	ack, err := s.Recv()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("live: handshake: %w", err)
	}
	if ack.SetupComplete == nil {
		s.Close()
		return nil, fmt.Errorf("live: handshake: expected setupComplete, got %+v", ack)
	}
	return s, nil
}

// Send streams client turns to the model, marking the turn complete so the
// model starts answering.
func (s *Session) Send(turns ...content.Content) error {
	return s.writeJSON(clientMessage{ClientContent: &ClientContent{
		Turns:        turns,
		TurnComplete: true,
	}})
}

// SendText is shorthand for a single user text turn.
func (s *Session) SendText(text string) error {
	return s.Send(content.UserText(text))
}

// Recv blocks for the next server message. A server-initiated close surfaces
// as an error; use Collect to gather one full turn instead.
func (s *Session) Recv() (*ServerMessage, error) {
	var msg ServerMessage
	if err := s.conn.ReadJSON(&msg); err != nil {
		return nil, fmt.Errorf("live: recv: %w", err)
	}
	return &msg, nil
}

// Collect reads server messages until the model completes its turn and
// returns the concatenated text.
func (s *Session) Collect() (string, error) {
	var out string
	for {
		msg, err := s.Recv()
		if err != nil {
			return out, err
		}
		sc := msg.ServerContent
		if sc == nil {
			continue
		}
		if sc.ModelTurn != nil {
			out += sc.ModelTurn.Joined()
		}
		if sc.TurnComplete || sc.Interrupted {
			return out, nil
		}
	}
}

// Close ends the session. Safe to call more than once.
func (s *Session) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	return s.conn.Close()
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}
