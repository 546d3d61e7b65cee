package gateway

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single write to the peer.
	writeWait = 10 * time.Second
	// maxMessageSize caps inbound frames. Clients have nothing to say.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebsocketSink delivers messages over one websocket connection.
type WebsocketSink struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewWebsocketSink wraps an upgraded connection.
func NewWebsocketSink(conn *websocket.Conn) *WebsocketSink {
	return &WebsocketSink{conn: conn}
}

// Send writes msg as a text frame.
func (s *WebsocketSink) Send(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close sends a close frame and closes the connection. Safe to call twice.
func (s *WebsocketSink) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

// Handler upgrades requests to websockets and attaches them to the hub.
// Connections end when the client disconnects, delivery fails or base is
// cancelled.
func (h *Hub) Handler(base context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[Gateway] Upgrade failed: %v", err)
			return
		}

		ctx, cancel := context.WithCancel(base)
		defer cancel()
		stop := context.AfterFunc(r.Context(), cancel)
		defer stop()

		sink := NewWebsocketSink(conn)
		go readPump(conn, cancel)

		_ = h.Attach(ctx, sink)
	})
}

// readPump discards client frames and cancels the delivery loop once the
// connection is closed by the peer.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
