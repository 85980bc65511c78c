package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fusion-arena/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCounterTrackerDeltas tests total to delta conversion, including a
// reset to a lower total.
func TestCounterTrackerDeltas(t *testing.T) {
	c := newCounterTracker()
	assert.Equal(t, uint64(3), c.delta("kills", 3))
	assert.Equal(t, uint64(0), c.delta("kills", 3))
	assert.Equal(t, uint64(2), c.delta("kills", 5))
	assert.Equal(t, uint64(1), c.delta("kills", 1), "reset starts a new baseline")
	assert.Equal(t, uint64(4), c.delta("fusions", 4), "names are independent")
}

// TestTickObserver tests that the observer accepts every phase without
// panicking on label lookups.
func TestTickObserver(t *testing.T) {
	observe := NewTickObserver()
	for i, phase := range allPhases {
		observe(game.TickStats{
			Duration:   time.Millisecond,
			TickNumber: uint64(i + 1),
			Enemies:    i,
			Wave:       1,
			Phase:      phase,
			InCombat:   i%2 == 0,
			Kills:      i,
			Fusions:    i / 2,
		})
	}
}

// TestDebugHandler tests the health, metrics and auth wiring.
func TestDebugHandler(t *testing.T) {
	h := debugHandler(ObservabilityConfig{Enabled: true})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	RecordTick(2 * time.Millisecond)
	RecordWSIntent("accepted")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "arena_tick_duration_seconds"))
	assert.True(t, strings.Contains(body, `websocket_intents_total{result="accepted"}`))

	authed := debugHandler(ObservabilityConfig{Enabled: true, BasicAuthUser: "ops", BasicAuthPass: "s3cret"})
	rec = httptest.NewRecorder()
	authed.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.SetBasicAuth("ops", "s3cret")
	rec = httptest.NewRecorder()
	authed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestStartDebugServerDisabled tests that a disabled server starts nothing.
func TestStartDebugServerDisabled(t *testing.T) {
	assert.NoError(t, StartDebugServer(ObservabilityConfig{Enabled: false}))
}
