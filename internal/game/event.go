package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary with RNG seed
	EventTypeSpawn
	EventTypeAttack
	EventTypeDamage
	EventTypeKill
	EventTypeStatusApplied
	EventTypeStatusExpired
	EventTypeFusion
	EventTypeStateChange
	EventTypeWaveStart
	EventTypeWaveComplete
	EventTypeSessionEnter
	EventTypeSessionExit
	EventTypePlayerDeath

	eventTypeCount = int(EventTypePlayerDeath) + 1
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Simulation tick this occurred in
	ActorID   string    `json:"actorId"`   // Source combatant (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeSpawn:
		return "spawn"
	case EventTypeAttack:
		return "attack"
	case EventTypeDamage:
		return "damage"
	case EventTypeKill:
		return "kill"
	case EventTypeStatusApplied:
		return "status_applied"
	case EventTypeStatusExpired:
		return "status_expired"
	case EventTypeFusion:
		return "fusion"
	case EventTypeStateChange:
		return "state_change"
	case EventTypeWaveStart:
		return "wave_start"
	case EventTypeWaveComplete:
		return "wave_complete"
	case EventTypeSessionEnter:
		return "session_enter"
	case EventTypeSessionExit:
		return "session_exit"
	case EventTypePlayerDeath:
		return "player_death"
	default:
		return "unknown"
	}
}

// MarshalText lets event types appear by name in JSON consumers.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// TickPayload contains tick boundary information for replay
type TickPayload struct {
	RNGSeed     int64   `json:"rngSeed"`
	EnemyCount  int     `json:"enemyCount"`
	DeltaTimeNs int64   `json:"deltaTimeNs"`
	SimTime     float64 `json:"simTime"`
}

// SpawnPayload describes a spawned enemy
type SpawnPayload struct {
	EnemyID   string  `json:"enemyId"`
	Archetype string  `json:"archetype"`
	Wave      int     `json:"wave"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	MaxHP     int     `json:"maxHp"`
	Boss      bool    `json:"boss"`
}

// AttackPayload marks the resolution of one attack use
type AttackPayload struct {
	AttackerID string `json:"attackerId"`
	AttackID   string `json:"attackId"`
	Hits       int    `json:"hits"`
}

// DamagePayload contains damage event details
type DamagePayload struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
	Damage     int    `json:"damage"`
	VictimHP   int    `json:"victimHp"`
	Source     string `json:"source"` // attack or status effect ID
	Crit       bool   `json:"crit"`
}

// KillPayload contains kill event details
type KillPayload struct {
	KillerID   string `json:"killerId"`
	VictimID   string `json:"victimId"`
	TotalKills int    `json:"totalKills"`
	Cleared    bool   `json:"cleared"`
}

// StatusPayload describes an applied or expired effect
type StatusPayload struct {
	TargetID string `json:"targetId"`
	EffectID string `json:"effectId"`
	SourceID string `json:"sourceId"`
}

// FusionPayload records an automatic fusion trigger
type FusionPayload struct {
	OwnerID  string `json:"ownerId"`
	AttackID string `json:"attackId"`
	Triggers int    `json:"triggers"`
}

// StateChangePayload records an enemy behavior transition
type StateChangePayload struct {
	EnemyID string `json:"enemyId"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// WavePayload describes a wave boundary
type WavePayload struct {
	Wave           int  `json:"wave"`
	EnemyCount     int  `json:"enemyCount"`
	ExpReward      int  `json:"expReward"`
	CurrencyReward int  `json:"currencyReward"`
	Boss           bool `json:"boss"`
}

// SessionPayload records a combat session transition
type SessionPayload struct {
	InCombat bool    `json:"inCombat"`
	SimTime  float64 `json:"simTime"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, actorID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		ActorID:   actorID,
		Payload:   EncodePayload(payload),
	}
}

// EventSink receives simulation events. EventLog implements it.
type EventSink interface {
	EmitSimple(eventType EventType, tickNum uint64, actorID string, payload interface{}) bool
}

// EventRecorder is an in-memory EventSink, used by the headless runner
// and tests.
type EventRecorder struct {
	Events []Event
}

func (r *EventRecorder) EmitSimple(eventType EventType, tickNum uint64, actorID string, payload interface{}) bool {
	r.Events = append(r.Events, NewEvent(eventType, tickNum, actorID, payload))
	return true
}

// Count returns how many events of type t were recorded.
func (r *EventRecorder) Count(t EventType) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type discardSink struct{}

func (discardSink) EmitSimple(EventType, uint64, string, interface{}) bool { return false }
