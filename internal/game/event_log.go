package game

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"fusion-arena/internal/logger"

	"golang.org/x/time/rate"
)

const (
	EventBufferSize     = 1024                   // Pending events held before the oldest is dropped
	MaxEventsPerSec     = 10000                  // Global rate limit
	MaxEventsPerActor   = 100                    // Per-actor rate limit per second
	BatchFlushInterval  = 100 * time.Millisecond // Writer wakeup period
	ActorLimiterCleanup = 5 * time.Minute        // Idle actor limiters are dropped after this
)

// EventLog is a bounded, rate-limited combat event journal written as
// newline-delimited JSON. It implements EventSink.
//
// Emit never blocks on disk: events queue in memory and a writer goroutine
// drains them every BatchFlushInterval. When the queue is full the oldest
// pending event is discarded.
type EventLog struct {
	mu      sync.Mutex
	pending []Event
	seq     uint64

	global *rate.Limiter
	actors sync.Map // actor id -> *actorBudget

	path    string
	out     *os.File
	running atomic.Bool
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup

	total   atomic.Uint64
	dropped atomic.Uint64
	byType  [eventTypeCount]atomic.Uint64
}

type actorBudget struct {
	limiter *rate.Limiter
	touched atomic.Int64 // unix nanoseconds
}

// NewEventLog creates a stopped event log.
func NewEventLog() *EventLog {
	return &EventLog{
		pending: make([]Event, 0, EventBufferSize),
		global:  rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		stop:    make(chan struct{}),
	}
}

// Start opens path for append and starts the writer. An empty path keeps
// counting events without writing them anywhere.
func (el *EventLog) Start(path string) error {
	if el.running.Load() {
		return nil
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		el.out = f
	}
	el.path = path
	el.running.Store(true)

	el.wg.Add(1)
	go el.run()

	logger.For("eventlog").WithField("path", path).Info("📝 Event log started")
	return nil
}

// Stop writes everything still pending and closes the file.
func (el *EventLog) Stop() {
	el.stopped.Do(func() {
		el.running.Store(false)
		close(el.stop)
		el.wg.Wait()
		if el.out != nil {
			el.out.Close()
		}
	})
}

// Emit queues event. It returns false when the log is not running or the
// event was rate limited.
func (el *EventLog) Emit(event Event) bool {
	if !el.running.Load() {
		return false
	}
	if !el.global.Allow() || (event.ActorID != "" && !el.budget(event.ActorID).Allow()) {
		el.dropped.Add(1)
		return false
	}

	el.mu.Lock()
	el.seq++
	event.Sequence = el.seq
	if len(el.pending) >= EventBufferSize {
		el.pending = append(el.pending[:0], el.pending[1:]...)
		el.dropped.Add(1)
	}
	el.pending = append(el.pending, event)
	el.mu.Unlock()

	el.total.Add(1)
	if int(event.Type) < eventTypeCount {
		el.byType[event.Type].Add(1)
	}
	return true
}

// EmitSimple builds an event from payload and emits it
func (el *EventLog) EmitSimple(eventType EventType, tickNum uint64, actorID string, payload interface{}) bool {
	return el.Emit(NewEvent(eventType, tickNum, actorID, payload))
}

func (el *EventLog) budget(actorID string) *rate.Limiter {
	now := time.Now().UnixNano()
	if v, ok := el.actors.Load(actorID); ok {
		b := v.(*actorBudget)
		b.touched.Store(now)
		return b.limiter
	}
	b := &actorBudget{limiter: rate.NewLimiter(MaxEventsPerActor, MaxEventsPerActor/10)}
	b.touched.Store(now)
	v, _ := el.actors.LoadOrStore(actorID, b)
	return v.(*actorBudget).limiter
}

func (el *EventLog) run() {
	defer el.wg.Done()

	flush := time.NewTicker(BatchFlushInterval)
	defer flush.Stop()
	sweep := time.NewTicker(ActorLimiterCleanup)
	defer sweep.Stop()

	var w *bufio.Writer
	if el.out != nil {
		w = bufio.NewWriter(el.out)
	}
	var spare []Event

	for {
		select {
		case <-el.stop:
			spare = el.drain(spare)
			el.write(w, spare)
			return
		case <-flush.C:
			spare = el.drain(spare)
			el.write(w, spare)
		case <-sweep.C:
			el.sweepActors(time.Now().Add(-ActorLimiterCleanup))
		}
	}
}

// drain swaps the pending queue with buf and returns the queued events.
func (el *EventLog) drain(buf []Event) []Event {
	el.mu.Lock()
	out := el.pending
	el.pending = buf[:0]
	el.mu.Unlock()
	return out
}

func (el *EventLog) write(w *bufio.Writer, batch []Event) {
	if w == nil || len(batch) == 0 {
		return
	}
	enc := json.NewEncoder(w)
	for i := range batch {
		if err := enc.Encode(&batch[i]); err != nil {
			logger.For("eventlog").WithError(err).Warn("event encode failed")
		}
	}
	if err := w.Flush(); err != nil {
		logger.For("eventlog").WithError(err).Warn("event log flush failed")
	}
}

func (el *EventLog) sweepActors(cutoff time.Time) {
	limit := cutoff.UnixNano()
	el.actors.Range(func(key, value interface{}) bool {
		if value.(*actorBudget).touched.Load() < limit {
			el.actors.Delete(key)
		}
		return true
	})
}

// TypeCounts returns accepted events per type name, omitting zero counts.
func (el *EventLog) TypeCounts() map[string]uint64 {
	out := make(map[string]uint64)
	for i := range el.byType {
		if n := el.byType[i].Load(); n > 0 {
			out[EventType(i).String()] = n
		}
	}
	return out
}

// GetStats returns metrics for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	el.mu.Lock()
	pending := len(el.pending)
	el.mu.Unlock()

	return map[string]interface{}{
		"total":   el.total.Load(),
		"dropped": el.dropped.Load(),
		"pending": pending,
		"running": el.running.Load(),
		"path":    el.path,
		"byType":  el.TypeCounts(),
	}
}

// GetDroppedCount returns the number of dropped events
func (el *EventLog) GetDroppedCount() uint64 { return el.dropped.Load() }

// GetTotalCount returns the number of accepted events
func (el *EventLog) GetTotalCount() uint64 { return el.total.Load() }
