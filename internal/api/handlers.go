package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fusion-arena/internal/game"
	"fusion-arena/internal/intent"
	"fusion-arena/internal/logger"

	"github.com/sirupsen/logrus"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot read; never touches the engine mutex
	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]interface{}{
		"tickNumber": snap.TickNumber,
		"tickRate":   h.engine.TickRate(),
		"simTime":    snap.SimTime,
		"enemies":    len(snap.Enemies),
		"inCombat":   snap.Session.InCombat,
		"waves":      snap.Waves,
		"combat":     snap.Stats,
		"wallet":     snap.Wallet,
		"intents":    h.engine.IntentStats(),
		"eventLog":   h.engine.GetEventLogStats(),
	})
}

func (h *routerHandlers) handleGetAttacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Catalog().AttackList())
}

func (h *routerHandlers) handleGetWaves(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"waves": h.engine.Catalog().Waves,
	}
	if snap := h.engine.GetSnapshot(); snap != nil {
		resp["current"] = snap.Waves
	}
	writeJSON(w, resp)
}

func (h *routerHandlers) handlePlayerAttack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AttackID string `json:"attackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.AttackID == "" {
		writeError(w, "attackId is required", http.StatusBadRequest)
		return
	}

	if err := h.engine.UseAttack(req.AttackID); err != nil {
		logger.For("api").WithFields(logrus.Fields{
			"attack": req.AttackID,
			"reason": err.Error(),
		}).Debug("attack refused")
		writeError(w, err.Error(), statusForError(err))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "attackId": req.AttackID})
}

func (h *routerHandlers) handlePlayerMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	h.engine.Move(req.X, req.Y)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleWavesStart(w http.ResponseWriter, r *http.Request) {
	started := h.engine.StartWaves()
	writeJSON(w, map[string]bool{"success": true, "started": started})
}

func (h *routerHandlers) handleWavesSkip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Wave int `json:"wave"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.engine.SkipToWave(req.Wave); err != nil {
		writeError(w, err.Error(), statusForError(err))
		return
	}
	writeJSON(w, map[string]interface{}{"success": true, "wave": req.Wave})
}

func (h *routerHandlers) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	logger.For("api").Info("🔄 Session reset requested via API")
	h.engine.ResetSession()
	writeJSON(w, map[string]bool{"success": true})
}

// statusForError maps engine and intent errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownAttack):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNotInLoadout),
		errors.Is(err, game.ErrAutomaticAttack),
		errors.Is(err, game.ErrInvalidWave),
		errors.Is(err, intent.ErrUnknownKind),
		errors.Is(err, intent.ErrMissingAttackID):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrOnCooldown),
		errors.Is(err, game.ErrNotEnoughEnergy),
		errors.Is(err, game.ErrCasting),
		errors.Is(err, game.ErrPlayerStunned),
		errors.Is(err, game.ErrPlayerDead):
		return http.StatusConflict
	case errors.Is(err, intent.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
