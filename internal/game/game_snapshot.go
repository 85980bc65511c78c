package game

import (
	"sync/atomic"
	"time"
)

// SnapshotLimits caps slice sizes in a snapshot so readers see bounded
// payloads regardless of simulation load.
type SnapshotLimits struct {
	MaxEnemies  int // Enemies rendered per snapshot
	MaxStatuses int // Status entries per combatant
}

// DefaultSnapshotLimits provides production-safe default limits
var DefaultSnapshotLimits = SnapshotLimits{
	MaxEnemies:  200,
	MaxStatuses: 16,
}

// StatusSnapshot is one active effect on a combatant.
type StatusSnapshot struct {
	EffectID  string  `json:"effectId"`
	Remaining float64 `json:"remaining"`
	SourceID  string  `json:"sourceId"`
}

// CooldownSnapshot is the recharge state of one loadout attack.
type CooldownSnapshot struct {
	AttackID  string  `json:"attackId"`
	Remaining float64 `json:"remaining"`
	Progress  float64 `json:"progress"`
	Ready     bool    `json:"ready"`
}

// PlayerSnapshot is an immutable copy of player state.
// Uses value types (not pointers) to ensure immutability
type PlayerSnapshot struct {
	ID        string             `json:"id"`
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	FacingX   float64            `json:"facingX"`
	FacingY   float64            `json:"facingY"`
	HP        int                `json:"hp"`
	MaxHP     int                `json:"maxHp"`
	Alive     bool               `json:"alive"`
	Stunned   bool               `json:"stunned"`
	Speed     float64            `json:"speed"`
	Energy    float64            `json:"energy"`
	MaxEnergy float64            `json:"maxEnergy"`
	Casting   string             `json:"casting,omitempty"`
	Kills     int                `json:"kills"`
	Deaths    int                `json:"deaths"`
	Statuses  []StatusSnapshot   `json:"statuses"`
	Cooldowns []CooldownSnapshot `json:"cooldowns"`
}

// EnemySnapshot is an immutable copy of one enemy.
type EnemySnapshot struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Archetype string           `json:"archetype"`
	State     EnemyState       `json:"state"`
	X         float64          `json:"x"`
	Y         float64          `json:"y"`
	HP        int              `json:"hp"`
	MaxHP     int              `json:"maxHp"`
	Wave      int              `json:"wave"`
	Boss      bool             `json:"boss"`
	Stunned   bool             `json:"stunned"`
	Speed     float64          `json:"speed"`
	Statuses  []StatusSnapshot `json:"statuses"`
}

// Snapshot is a complete immutable simulation state for HTTP and
// WebSocket readers.
type Snapshot struct {
	Sequence   uint64    `json:"sequence"`   // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"`  // When snapshot was created
	TickNumber uint64    `json:"tickNumber"` // Simulation tick this represents
	SimTime    float64   `json:"simTime"`
	RNGSeed    int64     `json:"rngSeed"` // Seed for deterministic replay

	Player  PlayerSnapshot     `json:"player"`
	Enemies []EnemySnapshot    `json:"enemies"`
	Session CombatSessionState `json:"session"`
	Waves   SpawnScheduleState `json:"waves"`
	Combo   ComboState         `json:"combo"`
	Wallet  *Wallet            `json:"wallet,omitempty"`
	Stats   SimStats           `json:"stats"`
}

// Snapshot copies the current state, capped by limits.
func (s *Simulation) Snapshot(limits SnapshotLimits) *Snapshot {
	p := s.player
	snap := &Snapshot{
		Timestamp:  time.Now(),
		TickNumber: s.tick,
		SimTime:    s.clock,
		RNGSeed:    s.seed,
		Player: PlayerSnapshot{
			ID:        p.ID,
			X:         p.Pos.X,
			Y:         p.Pos.Y,
			FacingX:   p.Facing.X,
			FacingY:   p.Facing.Y,
			HP:        p.HP,
			MaxHP:     p.MaxHP,
			Alive:     p.Alive,
			Stunned:   p.Stunned,
			Speed:     p.Speed,
			Energy:    p.Energy,
			MaxEnergy: p.MaxEnergy,
			Casting:   p.CastingAttack(),
			Kills:     p.Kills,
			Deaths:    p.Deaths,
			Statuses:  s.statusSnapshots(p.Combatant, limits.MaxStatuses),
			Cooldowns: s.cooldownSnapshots(),
		},
		Enemies: make([]EnemySnapshot, 0, min(len(s.order), limits.MaxEnemies)),
		Session: s.session.State(),
		Waves:   s.waves.State(),
		Combo:   s.combo.State(),
		Stats:   s.stats,
	}
	if w, ok := s.progression.(*Wallet); ok {
		copied := *w
		snap.Wallet = &copied
	}

	for _, e := range s.order {
		if len(snap.Enemies) >= limits.MaxEnemies {
			break
		}
		if e.IsDead() {
			continue
		}
		snap.Enemies = append(snap.Enemies, EnemySnapshot{
			ID:        e.ID,
			Name:      e.Name,
			Archetype: e.Archetype.ID,
			State:     e.State(),
			X:         e.Pos.X,
			Y:         e.Pos.Y,
			HP:        e.HP,
			MaxHP:     e.MaxHP,
			Wave:      e.Wave,
			Boss:      e.Boss,
			Stunned:   e.Stunned,
			Speed:     e.Speed,
			Statuses:  s.statusSnapshots(e.Combatant, limits.MaxStatuses),
		})
	}
	return snap
}

func (s *Simulation) statusSnapshots(c *Combatant, limit int) []StatusSnapshot {
	active := s.statuses.Active(c)
	out := make([]StatusSnapshot, 0, min(len(active), limit))
	for _, eff := range active {
		if len(out) >= limit {
			break
		}
		out = append(out, StatusSnapshot{EffectID: eff.Def.ID, Remaining: eff.Remaining, SourceID: eff.Source})
	}
	return out
}

func (s *Simulation) cooldownSnapshots() []CooldownSnapshot {
	p := s.player
	out := make([]CooldownSnapshot, 0, len(p.Loadout)+1)
	add := func(a *AttackDefinition) {
		rem := s.cooldowns.Remaining(p.ID, a, s.clock)
		out = append(out, CooldownSnapshot{
			AttackID:  a.ID,
			Remaining: rem,
			Progress:  s.cooldowns.Progress(p.ID, a, s.clock),
			Ready:     rem <= 0,
		})
	}
	for _, id := range p.Loadout {
		if a, err := s.catalog.Attack(id); err == nil {
			add(a)
		}
	}
	if fusion := s.combo.Fusion(); fusion != nil {
		add(fusion)
	}
	return out
}

// SnapshotStore publishes snapshots from the tick goroutine to readers.
// Readers never block the producer.
type SnapshotStore struct {
	current  atomic.Pointer[Snapshot]
	sequence atomic.Uint64
	limits   SnapshotLimits
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(limits SnapshotLimits) *SnapshotStore {
	return &SnapshotStore{limits: limits}
}

// Publish stamps snap with the next sequence number and makes it current.
func (p *SnapshotStore) Publish(snap *Snapshot) {
	snap.Sequence = p.sequence.Add(1)
	p.current.Store(snap)
}

// Load returns the latest snapshot, or nil if none was published yet.
func (p *SnapshotStore) Load() *Snapshot { return p.current.Load() }

// Limits returns the caps applied to snapshots.
func (p *SnapshotStore) Limits() SnapshotLimits { return p.limits }
