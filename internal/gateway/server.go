package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/opencowork/opencowork/internal/observability"
	"github.com/opencowork/opencowork/internal/provider"
	"github.com/opencowork/opencowork/internal/runner"
	"github.com/opencowork/opencowork/internal/session"
	"github.com/opencowork/opencowork/internal/tools"
)

const (
	wsMaxPayloadBytes = 1 << 20
	wsPongWait        = 45 * time.Second
	wsPingInterval    = 20 * time.Second
	wsWriteWait       = 10 * time.Second
)

// Server is the C7 event bus and client command handler: it owns the
// registry and runner dependencies, serves the WebSocket control plane,
// and fans every server-event out to every connected client.
type Server struct {
	Sessions *session.Registry
	Tools    *tools.Registry
	Runner   *runner.Runner

	log *observability.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewServer wires a registry, tool registry, and provider adapter set
// into a ready-to-serve gateway Server.
func NewServer(sessions *session.Registry, toolRegistry *tools.Registry, providers map[string]provider.Adapter, log *observability.Logger) *Server {
	s := &Server{
		Sessions: sessions,
		Tools:    toolRegistry,
		log:      log,
		conns:    map[*conn]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.Runner = &runner.Runner{
		Sessions:  sessions,
		Tools:     toolRegistry,
		Providers: providers,
		Emit:      s,
	}
	return s
}

// conn is one connected client: a WebSocket plus its outbound send
// queue, grounded in the teacher's per-connection read/write pump split.
type conn struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
}

// Routes returns the HTTP mux serving the WebSocket control plane and a
// liveness probe.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &conn{id: uuid.NewString(), ws: ws, send: make(chan []byte, 64)}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if s.log != nil {
		s.log.Info("client connected", "conn_id", c.id)
	}

	go s.writePump(ctx, c)
	s.readPump(ctx, c)

	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	close(c.send)
	_ = ws.Close()

	if s.log != nil {
		s.log.Info("client disconnected", "conn_id", c.id)
	}
}

func (s *Server) readPump(ctx context.Context, c *conn) {
	c.ws.SetReadLimit(wsMaxPayloadBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var cmd ClientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.emitTo(c, "runner.error", map[string]any{"error": "invalid command envelope"})
			continue
		}
		s.handleCommand(ctx, c, cmd)
	}
}

func (s *Server) writePump(ctx context.Context, c *conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Emit implements runner.Emitter: it is the emit primitive of spec §4.7,
// broadcasting one server event to every connected client. Failures to
// marshal are the only emission failure this transport can surface;
// per-connection write failures just drop that connection (it is
// already being torn down by its own read pump).
func (s *Server) Emit(sessionID, tag string, payload map[string]any) {
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	if _, ok := out["sessionId"]; !ok {
		out["sessionId"] = sessionID
	}
	s.broadcast(tag, out)
}

func (s *Server) broadcast(tag string, payload any) {
	data, err := json.Marshal(ServerEvent{Type: tag, Payload: payload})
	if err != nil {
		if s.log != nil {
			s.log.Error("failed to marshal server event", "tag", tag, "error", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		select {
		case c.send <- data:
		default:
			// Slow consumer; drop rather than block the whole hub.
		}
	}
}

func (s *Server) emitTo(c *conn, tag string, payload any) {
	data, err := json.Marshal(ServerEvent{Type: tag, Payload: payload})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
