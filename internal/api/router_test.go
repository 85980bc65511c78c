package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fusion-arena/internal/game"
	"fusion-arena/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, eng EngineInterface) http.Handler {
	t.Helper()
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1000,
		Burst:             1000,
		CleanupInterval:   time.Hour,
	})
	t.Cleanup(limiter.Stop)
	return NewRouter(RouterConfig{
		Engine:         eng,
		RateLimiter:    limiter,
		DisableLogging: true,
	})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// TestAPIGetState tests that the state endpoint serves the latest snapshot.
func TestAPIGetState(t *testing.T) {
	eng := newMockEngine()
	h := newTestRouter(t, eng)

	rec := doJSON(t, h, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(40), snap.TickNumber)
	assert.Equal(t, 200, snap.Player.HP)
	require.Len(t, snap.Enemies, 1)
	assert.Equal(t, game.StateChase, snap.Enemies[0].State)
	assert.Equal(t, game.PhaseSpawning, snap.Waves.Phase)

	eng.setSnapshot(nil)
	rec = doJSON(t, h, http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestAPIGetStats tests the aggregated stats payload.
func TestAPIGetStats(t *testing.T) {
	h := newTestRouter(t, newMockEngine())

	rec := doJSON(t, h, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	assert.EqualValues(t, 40, body["tickNumber"])
	assert.EqualValues(t, 20, body["tickRate"])
	assert.EqualValues(t, 1, body["enemies"])
	combat := body["combat"].(map[string]any)
	assert.EqualValues(t, 2, combat["kills"])
	assert.EqualValues(t, 1, combat["fusionTriggers"])
	eventLog := body["eventLog"].(map[string]any)
	assert.EqualValues(t, 7, eventLog["total"])
	assert.Contains(t, body, "intents")
	assert.Contains(t, body, "waves")
}

// TestAPIContent tests the read-only content endpoints.
func TestAPIContent(t *testing.T) {
	h := newTestRouter(t, newMockEngine())

	rec := doJSON(t, h, http.MethodGet, "/api/content/attacks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var attacks []game.AttackDefinition
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attacks))
	require.NotEmpty(t, attacks)
	for i := 1; i < len(attacks); i++ {
		assert.Less(t, attacks[i-1].ID, attacks[i].ID, "attacks sorted by id")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/content/waves", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["waves"], len(game.DefaultCatalog().Waves))
	current := body["current"].(map[string]any)
	assert.EqualValues(t, 1, current["waveIndex"])
}

// TestAPIPlayerAttack tests attack submission and error mapping.
func TestAPIPlayerAttack(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		engineErr  error
		wantStatus int
	}{
		{"accepted", map[string]string{"attackId": "slash"}, nil, http.StatusOK},
		{"malformed body", "{not json", nil, http.StatusBadRequest},
		{"missing id", map[string]string{}, nil, http.StatusBadRequest},
		{"unknown attack", map[string]string{"attackId": "x"}, fmt.Errorf("%w: %q", game.ErrUnknownAttack, "x"), http.StatusNotFound},
		{"not in loadout", map[string]string{"attackId": "claw"}, game.ErrNotInLoadout, http.StatusBadRequest},
		{"automatic", map[string]string{"attackId": "fusion_burst"}, game.ErrAutomaticAttack, http.StatusBadRequest},
		{"cooldown", map[string]string{"attackId": "slash"}, fmt.Errorf("%w: 0.40s remaining", game.ErrOnCooldown), http.StatusConflict},
		{"energy", map[string]string{"attackId": "sweep"}, game.ErrNotEnoughEnergy, http.StatusConflict},
		{"dead", map[string]string{"attackId": "slash"}, game.ErrPlayerDead, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := newMockEngine()
			eng.attackErr = tt.engineErr
			h := newTestRouter(t, eng)

			rec := doJSON(t, h, http.MethodPost, "/api/player/attack", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, []string{"slash"}, eng.attacks)
				return
			}
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

// TestAPIPlayerMove tests that movement is forwarded unchanged.
func TestAPIPlayerMove(t *testing.T) {
	eng := newMockEngine()
	h := newTestRouter(t, eng)

	rec := doJSON(t, h, http.MethodPost, "/api/player/move", map[string]float64{"x": 0, "y": -1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []game.Vec2{{X: 0, Y: -1}}, eng.moves)

	rec = doJSON(t, h, http.MethodPost, "/api/player/move", "nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestAPIWaveControl tests start, skip and reset.
func TestAPIWaveControl(t *testing.T) {
	eng := newMockEngine()
	h := newTestRouter(t, eng)

	rec := doJSON(t, h, http.MethodPost, "/api/waves/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["started"])
	rec = doJSON(t, h, http.MethodPost, "/api/waves/start", nil)
	assert.Equal(t, false, decodeBody(t, rec)["started"])

	rec = doJSON(t, h, http.MethodPost, "/api/waves/skip", map[string]int{"wave": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{3}, eng.skips)

	eng.skipErr = fmt.Errorf("%w: 99", game.ErrInvalidWave)
	rec = doJSON(t, h, http.MethodPost, "/api/waves/skip", map[string]int{"wave": 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/session/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, eng.resets)
}

// TestStatusForError tests the error to status code table.
func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrUnknownAttack, http.StatusNotFound},
		{game.ErrInvalidWave, http.StatusBadRequest},
		{intent.ErrUnknownKind, http.StatusBadRequest},
		{intent.ErrMissingAttackID, http.StatusBadRequest},
		{game.ErrCasting, http.StatusConflict},
		{game.ErrPlayerStunned, http.StatusConflict},
		{intent.ErrQueueFull, http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", intent.ErrQueueFull), http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

// TestAPICORSHeaders tests that local origins get CORS headers.
func TestAPICORSHeaders(t *testing.T) {
	h := newTestRouter(t, newMockEngine())

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

// TestAPIRateLimiting tests that the IP limiter rejects bursts.
func TestAPIRateLimiting(t *testing.T) {
	limiter := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Hour,
	})
	defer limiter.Stop()
	h := NewRouter(RouterConfig{Engine: newMockEngine(), RateLimiter: limiter, DisableLogging: true})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, doJSON(t, h, http.MethodGet, "/api/state", nil).Code)
	}
	assert.Equal(t, []int{200, 200, 429, 429}, codes)
	assert.Equal(t, LimiterStats{Allowed: 2, Rejected: 2, Tracked: 1}, limiter.Stats())
}

// TestAPIRedirectRoot tests the index redirect.
func TestAPIRedirectRoot(t *testing.T) {
	h := newTestRouter(t, newMockEngine())
	rec := doJSON(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/api/state", rec.Header().Get("Location"))
}
