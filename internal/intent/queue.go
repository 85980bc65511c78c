// Package intent carries already-decoded player actions from the network
// layer to the simulation tick.
package intent

import (
	"errors"
	"sync/atomic"
	"time"

	"fusion-arena/internal/logger"

	"github.com/sirupsen/logrus"
)

// Kind is the action an intent asks for.
type Kind string

const (
	KindUseAttack Kind = "use_attack"
	KindMove      Kind = "move"
	KindFace      Kind = "face"
	KindStop      Kind = "stop"
)

// ErrQueueFull is returned when the buffer has no room for another intent.
var ErrQueueFull = errors.New("intent queue full")

// Validate errors.
var (
	ErrUnknownKind     = errors.New("unknown intent kind")
	ErrMissingAttackID = errors.New("use_attack requires attackId")
)

// Intent is one decoded player action.
type Intent struct {
	Kind       Kind      `json:"kind"`
	AttackID   string    `json:"attackId,omitempty"`
	X          float64   `json:"x,omitempty"` // direction for move/face
	Y          float64   `json:"y,omitempty"`
	ReceivedAt time.Time `json:"-"`
}

// Validate checks that the intent is well formed.
func (in Intent) Validate() error {
	switch in.Kind {
	case KindUseAttack:
		if in.AttackID == "" {
			return ErrMissingAttackID
		}
	case KindMove, KindFace, KindStop:
	default:
		return ErrUnknownKind
	}
	return nil
}

// Queue is a bounded, non-blocking intent buffer. Producers are network
// goroutines; the single consumer is the simulation tick, which drains it.
type Queue struct {
	intents chan Intent

	// Metrics
	enqueued    atomic.Uint64
	drained     atomic.Uint64
	dropped     atomic.Uint64
	avgWaitTime atomic.Int64 // nanoseconds, exponential moving average
}

// DefaultBufferSize is used when NewQueue gets a non-positive size.
const DefaultBufferSize = 256

// NewQueue creates a queue holding up to size intents.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Queue{intents: make(chan Intent, size)}
}

// Enqueue adds an intent without blocking.
// Returns ErrQueueFull if the buffer is full (intent dropped).
func (q *Queue) Enqueue(in Intent) error {
	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = time.Now()
	}

	select {
	case q.intents <- in:
		q.enqueued.Add(1)
		return nil
	default:
		// Queue full - drop to keep producers from blocking the tick
		dropped := q.dropped.Add(1)
		if dropped%100 == 1 {
			logger.For("intent").WithFields(logrus.Fields{
				"kind":          in.Kind,
				"total_dropped": dropped,
			}).Warn("intent queue full, dropping")
		}
		return ErrQueueFull
	}
}

// Drain removes every buffered intent and passes it to fn in arrival order.
// It never blocks. Returns the number of intents handled.
func (q *Queue) Drain(fn func(Intent)) int {
	n := 0
	for {
		select {
		case in := <-q.intents:
			q.updateAvgWaitTime(time.Since(in.ReceivedAt))
			fn(in)
			n++
		default:
			if n > 0 {
				q.drained.Add(uint64(n))
			}
			return n
		}
	}
}

// Len returns the number of buffered intents.
func (q *Queue) Len() int { return len(q.intents) }

// updateAvgWaitTime updates exponential moving average
func (q *Queue) updateAvgWaitTime(waitTime time.Duration) {
	current := q.avgWaitTime.Load()
	// EMA with alpha = 0.1 (smooth over ~10 samples)
	q.avgWaitTime.Store((current*9 + waitTime.Nanoseconds()) / 10)
}

// Stats returns current queue statistics
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:      q.enqueued.Load(),
		Drained:       q.drained.Load(),
		Dropped:       q.dropped.Load(),
		Pending:       len(q.intents),
		Capacity:      cap(q.intents),
		AvgWaitTimeMs: float64(q.avgWaitTime.Load()) / 1e6,
	}
}

// Stats holds queue metrics
type Stats struct {
	Enqueued      uint64  `json:"enqueued"`
	Drained       uint64  `json:"drained"`
	Dropped       uint64  `json:"dropped"`
	Pending       int     `json:"pending"`
	Capacity      int     `json:"capacity"`
	AvgWaitTimeMs float64 `json:"avgWaitTimeMs"`
}
