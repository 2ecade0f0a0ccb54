package server

import (
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/simulation"
	"github.com/fermisquasar/Filling-the-Void/pkg/concurrent"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const writeWait = 2 * time.Second

// HubConfig tunes the snapshot feed.
type HubConfig struct {
	BroadcastHz    float64
	Burst          int
	MaxClients     int
	SendBuffer     int
	AllowedOrigins []string
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans HUD snapshots out to websocket clients. Publishing never blocks the
// simulation: broadcasts are rate limited and slow clients miss frames.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader
	limiter  *rate.Limiter
	logger   log.Log

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  *simulation.Snapshot
	encoded []byte
	closed  bool
	dropped atomic.Uint64
}

func NewHub(cfg HubConfig, logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 8
	}
	return &Hub{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.BroadcastHz), max(cfg.Burst, 1)),
		logger:  logger.With(log.String("component", "telemetry")),
		clients: make(map[*client]struct{}),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// Publish stores snap as the latest state and broadcasts it when the rate
// limit allows. It reports whether a broadcast happened.
func (h *Hub) Publish(snap simulation.Snapshot) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.latest = &snap
	h.encoded = nil
	h.mu.Unlock()

	if !h.limiter.Allow() {
		return false
	}
	msg, err := h.Latest()
	if err != nil {
		h.logger.Warn("Failed to encode snapshot", log.Error(err))
		return false
	}
	h.broadcast(msg)
	return true
}

// Latest returns the encoded latest snapshot, or nil before the first publish.
func (h *Hub) Latest() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return nil, nil
	}
	if h.encoded == nil {
		b, err := json.Marshal(h.latest)
		if err != nil {
			return nil, err
		}
		h.encoded = b
	}
	return h.encoded, nil
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams snapshots until either side closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, h.cfg.SendBuffer)}
	initial, _ := h.Latest()
	if err := h.register(c, initial); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	h.logger.Debug("Client connected", log.String("remote", conn.RemoteAddr().String()))
	go h.writeLoop(c)

	// the feed is read-only; reading only detects the peer going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
	h.logger.Debug("Client disconnected", log.String("remote", conn.RemoteAddr().String()))
}

// register adds c and queues initial so a new client sees the current state
// before the next broadcast.
func (h *Hub) register(c *client, initial []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrServerClosed
	}
	if h.cfg.MaxClients > 0 && len(h.clients) >= h.cfg.MaxClients {
		return ErrMaxClientsReached
	}
	h.clients[c] = struct{}{}
	if initial != nil {
		c.send <- initial
	}
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.unregister(c)
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Close disconnects every client. Later publishes are ignored.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrServerClosed
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	concurrent.ParallelMust(clients, func(c *client) {
		close(c.send)
	})
	h.logger.Info("Telemetry hub closed", log.Int("clients", len(clients)), log.Uint64("dropped", h.dropped.Load()))
	return nil
}
