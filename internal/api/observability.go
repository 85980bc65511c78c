package api

import (
	"net/http"
	"net/http/pprof"
	"os"
	"sync"
	"time"

	"fusion-arena/internal/game"
	"fusion-arena/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality (no per-enemy labels)
var (
	// Simulation metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one simulation step",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	enemiesAlive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_enemies_alive",
		Help: "Enemies alive after the last tick",
	})

	currentWave = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_wave_index",
		Help: "Current wave number (0 before the first wave)",
	})

	inCombat = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_in_combat",
		Help: "1 while the combat session is active",
	})

	wavePhase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arena_wave_phase",
		Help: "1 for the scheduler's current phase, 0 for the others",
	}, []string{"phase"}) // Bounded: the WavePhase constants

	killsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_kills_total",
		Help: "Enemies killed by the player and credited to waves",
	})

	fusionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_fusion_triggers_total",
		Help: "Fusion combo triggers",
	})

	// Event log metrics
	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "intent_rate"

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is path pattern, not full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})

	wsIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_intents_total",
		Help: "Intents received over WebSocket by outcome",
	}, []string{"result"}) // Bounded: "accepted", "invalid", "rejected"
)

var allPhases = []game.WavePhase{
	game.PhaseIdle,
	game.PhaseSpawning,
	game.PhaseWaiting,
	game.PhaseCleared,
	game.PhaseComplete,
	game.PhaseStopped,
}

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // MUST be "127.0.0.1:6060" in production
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:       true,
		ListenAddr:    "127.0.0.1:6060", // Localhost only - NEVER expose externally
		BasicAuthUser: os.Getenv("DEBUG_USER"),
		BasicAuthPass: os.Getenv("DEBUG_PASS"),
	}
}

// StartDebugServer starts the internal observability server
// CRITICAL: This MUST bind to localhost only to prevent pprof-based DoS
func StartDebugServer(cfg ObservabilityConfig) error {
	log := logger.For("debug")
	if !cfg.Enabled {
		log.Info("📊 Debug server disabled")
		return nil
	}

	// SECURITY: Validate address is localhost
	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		// Only allow external binding if explicitly enabled via env
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Warn("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	handler := debugHandler(cfg)

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("📊 Debug server starting")
		log.Infof("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Infof("   - metrics: http://%s/metrics", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.WithError(err).Warn("⚠️ Debug server error")
		}
	}()

	return nil
}

// debugHandler builds the pprof, metrics and health mux.
func debugHandler(cfg ObservabilityConfig) http.Handler {
	mux := http.NewServeMux()

	// pprof endpoints for profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.BasicAuthUser != "" {
		return basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}
	return mux
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// counterTracker converts monotonically growing totals into counter deltas.
// A total lower than the last one (session reset) starts a new baseline.
type counterTracker struct {
	mu   sync.Mutex
	last map[string]uint64
}

func newCounterTracker() *counterTracker {
	return &counterTracker{last: make(map[string]uint64)}
}

// delta returns how much name grew since the previous call.
func (c *counterTracker) delta(name string, total uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.last[name]
	c.last[name] = total
	if total < prev {
		return total
	}
	return total - prev
}

// NewTickObserver returns a game.Engine tick observer that feeds the
// simulation metrics.
func NewTickObserver() func(game.TickStats) {
	tracker := newCounterTracker()
	return func(s game.TickStats) {
		RecordTick(s.Duration)
		enemiesAlive.Set(float64(s.Enemies))
		currentWave.Set(float64(s.Wave))
		if s.InCombat {
			inCombat.Set(1)
		} else {
			inCombat.Set(0)
		}
		for _, p := range allPhases {
			v := 0.0
			if p == s.Phase {
				v = 1
			}
			wavePhase.WithLabelValues(string(p)).Set(v)
		}
		killsTotal.Add(float64(tracker.delta("kills", uint64(max(s.Kills, 0)))))
		fusionsTotal.Add(float64(tracker.delta("fusions", uint64(max(s.Fusions, 0)))))
	}
}

// RecordTick records tick timing for metrics
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

var eventLogTracker = newCounterTracker()

// UpdateEventLogStats feeds event log totals into the counters as deltas.
// It is called periodically from the broadcast loop.
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Add(float64(eventLogTracker.delta("total", total)))
	eventLogDropped.Add(float64(eventLogTracker.delta("dropped", dropped)))
}

// RecordConnectionRejected increments the rejection counter
// reason must be one of: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit", "intent_rate"
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// RecordWSIntent counts one intent received over WebSocket.
// result must be one of: "accepted", "invalid", "rejected"
func RecordWSIntent(result string) {
	wsIntentsTotal.WithLabelValues(result).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
