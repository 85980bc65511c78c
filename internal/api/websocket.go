package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"fusion-arena/internal/intent"
	"fusion-arena/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// maxIntentMessageSize caps one inbound intent frame
	maxIntentMessageSize = 1024
)

// Broadcast event names.
const (
	EventGameState = "game:state"
	EventStats     = "game:stats"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Use the centralized origin checker
		if IsAllowedOrigin(origin) {
			return true
		}

		// Log rejected origin for security monitoring
		logger.For("ws").WithField("origin", origin).Warn("⚠️ WebSocket connection rejected from origin")
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP and intent budget
type wsClient struct {
	conn    *websocket.Conn
	ip      string
	intents *rate.Limiter
}

// WebSocketHub manages all WebSocket connections with DoS protection
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	// Connection limiting per IP
	wsLimiter  *ConnLimiter
	intentRate IntentRateConfig
	log        *logrus.Entry
}

// NewWebSocketHub creates a new hub with connection limiting
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		wsLimiter:  NewConnLimiter(MaxWSConnectionsPerIP),
		intentRate: DefaultIntentRateConfig,
		log:        logger.For("ws"),
	}
}

// Run starts the hub. It returns after Stop.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			h.log.WithFields(logrus.Fields{"ip": client.ip, "total": count}).Info("📱 Client connected")
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(conn)
			count := len(h.clients)
			h.mu.Unlock()

			h.log.WithField("remaining", count).Info("📱 Client disconnected")
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.removeLocked(conn)
				}
			}
			count := len(h.clients)
			h.mu.Unlock()
			UpdateWSConnections(count)
			IncrementWSMessages()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.clients {
				h.removeLocked(conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return
		}
	}
}

// removeLocked closes conn and releases its IP slot. Caller holds h.mu.
func (h *WebSocketHub) removeLocked(conn *websocket.Conn) {
	client, ok := h.clients[conn]
	if !ok {
		return
	}
	h.wsLimiter.Release(client.ip)
	delete(h.clients, conn)
	conn.Close()
}

// Stop ends Run and the broadcast loop and closes every connection.
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}

	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Warn("broadcast marshal failed")
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the latest snapshot ratePerSecond times a second
// while clients are connected. Unchanged snapshots are not resent.
func (h *WebSocketHub) StartBroadcastLoop(engine EngineInterface, ratePerSecond int) {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(ratePerSecond))

	go func() {
		defer ticker.Stop()
		var lastSeq uint64
		var ticks int
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
			}

			ticks++
			// Event log counters are exported about once a second
			if ticks%ratePerSecond == 0 {
				stats := engine.GetEventLogStats()
				total, _ := stats["total"].(uint64)
				dropped, _ := stats["dropped"].(uint64)
				UpdateEventLogStats(total, dropped)
			}

			if h.ClientCount() == 0 {
				continue
			}

			snap := engine.GetSnapshot()
			if snap == nil || snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			h.Broadcast(EventGameState, snap)

			if ticks%ratePerSecond == 0 {
				h.Broadcast(EventStats, map[string]interface{}{
					"intents":  engine.IntentStats(),
					"eventLog": engine.GetEventLogStats(),
				})
			}
		}
	}()
}

// HandleWebSocket upgrades the connection and forwards decoded intents from
// the client to engine.Submit.
func (h *WebSocketHub) HandleWebSocket(engine EngineInterface, w http.ResponseWriter, r *http.Request) {
	// Get client IP for rate limiting
	ip := GetClientIP(r)

	// Check total connection limit
	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		h.log.WithField("total", totalConnections).Warn("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	// Check per-IP connection limit
	if !h.wsLimiter.Acquire(ip) {
		h.log.WithField("ip", ip).Warn("⚠️ WebSocket connection rejected: per-IP limit reached")
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade error")
		h.wsLimiter.Release(ip) // Release the slot we reserved
		return
	}
	conn.SetReadLimit(maxIntentMessageSize)

	client := &wsClient{conn: conn, ip: ip, intents: NewIntentLimiter(h.intentRate)}
	select {
	case h.register <- client:
	case <-h.done:
		h.wsLimiter.Release(ip)
		conn.Close()
		return
	}

	go h.readIntents(engine, client)
}

// readIntents is the per-connection read loop.
func (h *WebSocketHub) readIntents(engine EngineInterface, client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client.conn:
		case <-h.done:
		}
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		if !client.intents.Allow() {
			RecordConnectionRejected("intent_rate")
			continue
		}

		var in intent.Intent
		if err := json.Unmarshal(message, &in); err != nil {
			RecordWSIntent("invalid")
			continue
		}

		if err := engine.Submit(in); err != nil {
			RecordWSIntent("rejected")
			h.log.WithFields(logrus.Fields{
				"ip":     client.ip,
				"kind":   in.Kind,
				"reason": err.Error(),
			}).Debug("intent rejected")
			continue
		}
		RecordWSIntent("accepted")
	}
}
