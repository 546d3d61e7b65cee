// Package server exposes the cave over HTTP: a banner, health, the current
// thought and the websocket stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dyluth/whirlpool/internal/cave"
)

// Snapshotter exposes the latest committed event.
type Snapshotter interface {
	Snapshot() cave.Event
}

// Pinger checks a backing store. *blackboard.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports connected subscribers. *gateway.Hub implements it.
type Counter interface {
	Count() int
}

// Options configure a Server.
type Options struct {
	Addr    string
	Version string
	Cave    Snapshotter
	Stream  http.Handler // Mounted at /ws
	Hub     Counter
	Redis   Pinger // Optional; nil means no mirror is configured
}

// Server serves the HTTP endpoints.
type Server struct {
	opts   Options
	server *http.Server
	ln     net.Listener
}

// HealthResponse is the JSON response structure for health checks.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
	Sinks  int    `json:"sinks"`
	Error  string `json:"error,omitempty"`
}

// New creates a server. Start must be called to listen.
func New(opts Options) *Server {
	s := &Server{opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.helloHandler)
	mux.HandleFunc("/healthz", s.healthCheckHandler)
	mux.HandleFunc("/thought", s.thoughtHandler)
	if opts.Stream != nil {
		mux.Handle("/ws", opts.Stream)
	}

	// No WriteTimeout: it would cut long-lived websocket connections.
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves in the background.
// Returns an error if the address cannot be bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	s.ln = ln

	go func() {
		log.Printf("[Server] Listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Server] Error: %v", err)
		}
	}()

	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.opts.Addr
	}
	return s.ln.Addr().String()
}

// Shutdown gracefully shuts down the server. Websocket connections are hijacked
// and must be ended by cancelling the stream's base context.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) helloHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Hello, World! %s", s.opts.Version)
}

// healthCheckHandler handles GET /healthz requests.
// Returns 200 OK when the mirror is reachable or not configured, 503 otherwise.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{Status: "healthy"}
	if s.opts.Hub != nil {
		response.Sinks = s.opts.Hub.Count()
	}

	code := http.StatusOK
	if s.opts.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.opts.Redis.Ping(ctx); err != nil {
			response.Status = "unhealthy"
			response.Redis = "disconnected"
			response.Error = err.Error()
			code = http.StatusServiceUnavailable
		} else {
			response.Redis = "connected"
		}
	}

	writeJSON(w, code, response)
}

// thoughtHandler handles GET /thought with the latest event.
// Returns 204 No Content before the first commit.
func (s *Server) thoughtHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	event := s.opts.Cave.Snapshot()
	if event.IsZero() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to write response: %v", err)
	}
}
