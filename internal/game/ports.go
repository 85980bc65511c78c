package game

import "sync/atomic"

// EffectHandle identifies a running visual effect so it can be stopped.
type EffectHandle uint64

// Presenter receives fire-and-forget presentation cues.
// The simulation never waits on or branches on these calls.
type Presenter interface {
	PlayEffect(id string, pos Vec2) EffectHandle
	StopEffect(h EffectHandle)
	PlaySound(id string)
}

// Progression receives rewards. Persistence is the implementer's concern.
type Progression interface {
	GrantExperience(amount int)
	GrantCurrency(amount int)
}

// Spatial answers broad-phase queries for target selection.
type Spatial interface {
	// FindTargetsInShape returns live combatants whose hit circle overlaps
	// the circle of radius around origin, in a stable order.
	FindTargetsInShape(origin Vec2, radius float64) []*Combatant
	Distance(a, b Vec2) float64
}

// NopPresenter discards every cue. Handles are still unique so that
// callers can exercise stop paths.
type NopPresenter struct {
	next atomic.Uint64
}

func (p *NopPresenter) PlayEffect(id string, pos Vec2) EffectHandle {
	if id == "" {
		return 0
	}
	return EffectHandle(p.next.Add(1))
}

func (p *NopPresenter) StopEffect(EffectHandle) {}
func (p *NopPresenter) PlaySound(string)        {}

// Wallet is an in-memory Progression.
type Wallet struct {
	Experience int `json:"experience"`
	Currency   int `json:"currency"`
}

func (w *Wallet) GrantExperience(amount int) {
	if amount > 0 {
		w.Experience += amount
	}
}

func (w *Wallet) GrantCurrency(amount int) {
	if amount > 0 {
		w.Currency += amount
	}
}
