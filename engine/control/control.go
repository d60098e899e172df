// Package control exposes the viewer's colour and model controls over HTTP and WebSocket.
package control

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed assets/index.html
var indexPage []byte

// Message types exchanged over the WebSocket.
const (
	MessageColor  = "color"
	MessageStatus = "status"
	MessageReload = "reload"
	MessageError  = "error"
)

// Target is what the control surface drives. engine.Engine implements it.
type Target interface {
	ChangeColor(value any)
	Status() engine.Status
	Reload() error
}

// Message is a request sent by a client.
type Message struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

// Reply is sent back to clients. Error replies carry the reason in Status.Error.
type Reply struct {
	Type string `json:"type"`
	engine.Status
}

func errorReply(reason string) Reply {
	return Reply{Type: MessageError, Status: engine.Status{Error: reason}}
}

// client is one WebSocket connection. gorilla connections allow a single concurrent writer.
type client struct {
	id   string
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (c *client) send(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteJSON(v)
}

// server is the implementation of the Server interface.
type server struct {
	mu       *sync.Mutex
	logger   *zap.Logger
	target   Target
	addr     string
	upgrader websocket.Upgrader
	clients  map[string]*client
}

// Server serves the colour page, the WebSocket endpoint and the POST endpoint.
type Server interface {
	// Handler returns the HTTP handler with every route mounted.
	//
	// Returns:
	//   - http.Handler: the handler
	Handler() http.Handler

	// Addr returns the configured listen address.
	//
	// Returns:
	//   - string: host:port
	Addr() string

	// Clients returns the number of connected WebSocket clients.
	//
	// Returns:
	//   - int: the client count
	Clients() int

	// Broadcast sends the current status to every connected client.
	Broadcast()

	// ListenAndServe serves on Addr until ctx ends, then shuts down gracefully.
	//
	// Parameters:
	//   - ctx: stops the server when done
	//
	// Returns:
	//   - error: a listen or serve error; nil after a ctx-initiated shutdown
	ListenAndServe(ctx context.Context) error
}

var _ Server = &server{}

// NewServer creates a control Server for target. The default address is 127.0.0.1:8080.
//
// Parameters:
//   - target: the viewer to control
//   - options: variadic list of ServerBuilderOption functions
//
// Returns:
//   - Server: the new server
func NewServer(target Target, options ...ServerBuilderOption) Server {
	s := &server{
		mu:      &sync.Mutex{},
		logger:  zap.NewNop(),
		target:  target,
		addr:    "127.0.0.1:8080",
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /color", s.handleColor)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

func (s *server) Addr() string {
	return s.addr
}

func (s *server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *server) Broadcast() {
	reply := s.statusReply()

	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(reply); err != nil {
			s.logger.Debug("broadcast failed", zap.String("client", c.id), zap.Error(err))
		}
	}
}

func (s *server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control surface listening", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("control server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("control server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("control server: %w", err)
	}
	return nil
}

func (s *server) statusReply() Reply {
	return Reply{Type: MessageStatus, Status: s.target.Status()}
}

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.statusReply())
}

func (s *server) handleColor(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&msg); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if msg.Value == nil {
		http.Error(w, "missing value", http.StatusBadRequest)
		return
	}

	s.target.ChangeColor(msg.Value)
	s.logger.Debug("colour requested", zap.String("source", "http"), zap.Any("value", msg.Value))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.logger.Info("client connected", zap.String("client", c.id), zap.String("remote", conn.RemoteAddr().String()))

	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		_ = conn.Close()
		s.logger.Info("client disconnected", zap.String("client", c.id))
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				var syntaxErr *json.SyntaxError
				if errors.As(err, &syntaxErr) {
					_ = c.send(errorReply("invalid message"))
					continue
				}
				s.logger.Debug("read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}

		if err := s.dispatch(c, msg); err != nil {
			s.logger.Debug("write failed", zap.String("client", c.id), zap.Error(err))
			return
		}
	}
}

// dispatch handles one client message and writes the reply.
func (s *server) dispatch(c *client, msg Message) error {
	switch msg.Type {
	case MessageColor:
		if msg.Value == nil {
			return c.send(errorReply("missing value"))
		}
		s.target.ChangeColor(msg.Value)
		s.logger.Debug("colour requested", zap.String("client", c.id), zap.Any("value", msg.Value))
		return c.send(s.statusReply())
	case MessageStatus:
		return c.send(s.statusReply())
	case MessageReload:
		if err := s.target.Reload(); err != nil {
			return c.send(errorReply(err.Error()))
		}
		return c.send(s.statusReply())
	default:
		return c.send(errorReply("unknown message type " + msg.Type))
	}
}
