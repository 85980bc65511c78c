package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the IP-based rate limiter
type RateLimitConfig struct {
	RequestsPerSecond float64       // Requests allowed per second per IP
	Burst             int           // Maximum burst size
	CleanupInterval   time.Duration // How often to clean up stale limiters
}

// DefaultRateLimitConfig returns production-safe defaults
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 20,              // Polling dashboards plus intent posts
	Burst:             40,              // Allow burst of 40
	CleanupInterval:   5 * time.Minute, // Clean up every 5 minutes
}

// LimiterStats counts limiter decisions.
type LimiterStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
	Tracked  int    `json:"tracked"` // IPs with live state
}

// ipLimiterEntry tracks per-IP rate limiting state
type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// IPRateLimiter applies a token bucket per client IP to HTTP requests.
// Entries idle for two cleanup intervals are dropped.
type IPRateLimiter struct {
	limiters sync.Map // map[string]*ipLimiterEntry
	config   RateLimitConfig
	stopChan chan struct{}
	stopOnce sync.Once

	allowed  atomic.Uint64
	rejected atomic.Uint64
}

// NewIPRateLimiter creates a limiter and starts its cleanup goroutine.
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	rl := &IPRateLimiter{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

func (rl *IPRateLimiter) entry(ip string) *ipLimiterEntry {
	if v, ok := rl.limiters.Load(ip); ok {
		return v.(*ipLimiterEntry)
	}
	e := &ipLimiterEntry{
		limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
	}
	v, _ := rl.limiters.LoadOrStore(ip, e)
	return v.(*ipLimiterEntry)
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *IPRateLimiter) cleanup() {
	cutoff := time.Now().Add(-2 * rl.config.CleanupInterval).UnixNano()
	rl.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiterEntry).lastSeen.Load() < cutoff {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Allow consumes one token for ip.
func (rl *IPRateLimiter) Allow(ip string) bool {
	e := rl.entry(ip)
	e.lastSeen.Store(time.Now().UnixNano())
	if e.limiter.Allow() {
		rl.allowed.Add(1)
		return true
	}
	rl.rejected.Add(1)
	return false
}

// Middleware rejects requests over the per-IP budget with 429.
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Stats returns limiter counters.
func (rl *IPRateLimiter) Stats() LimiterStats {
	tracked := 0
	rl.limiters.Range(func(_, _ any) bool {
		tracked++
		return true
	})
	return LimiterStats{
		Allowed:  rl.allowed.Load(),
		Rejected: rl.rejected.Load(),
		Tracked:  tracked,
	}
}

// GetClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For wins over X-Real-IP, which wins over RemoteAddr.
// Forwarding headers can be spoofed unless a trusted proxy sets them.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ConnLimiter caps concurrent WebSocket connections per IP. IPs without
// open connections hold no state.
type ConnLimiter struct {
	mu       sync.Mutex
	open     map[string]int
	maxPerIP int
	rejected uint64
}

// NewConnLimiter creates a limiter allowing maxPerIP connections per IP.
func NewConnLimiter(maxPerIP int) *ConnLimiter {
	return &ConnLimiter{open: make(map[string]int), maxPerIP: maxPerIP}
}

// Acquire reserves a connection slot for ip.
func (c *ConnLimiter) Acquire(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open[ip] >= c.maxPerIP {
		c.rejected++
		return false
	}
	c.open[ip]++
	return true
}

// Release frees a slot reserved by Acquire.
func (c *ConnLimiter) Release(ip string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch n := c.open[ip]; {
	case n > 1:
		c.open[ip] = n - 1
	case n == 1:
		delete(c.open, ip)
	}
}

// Open returns the number of open connections for ip.
func (c *ConnLimiter) Open(ip string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open[ip]
}

// Rejected returns how many Acquire calls were refused.
func (c *ConnLimiter) Rejected() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejected
}

// IntentRateConfig bounds how fast one WebSocket connection may submit
// intents.
type IntentRateConfig struct {
	PerSecond float64
	Burst     int
}

// DefaultIntentRateConfig allows comfortably more than human input speed.
var DefaultIntentRateConfig = IntentRateConfig{
	PerSecond: 30,
	Burst:     30,
}

// NewIntentLimiter returns the limiter for one connection.
func NewIntentLimiter(cfg IntentRateConfig) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst)
}

// AllowedOrigins lists exact origins accepted for WebSocket upgrades in
// addition to any localhost origin.
var AllowedOrigins = []string{
	"http://localhost",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// IsAllowedOrigin checks if an origin is in the allowed list.
// An empty origin (non-browser client) is accepted.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}
	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
