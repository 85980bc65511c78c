package game

import (
	"sync"
	"time"

	"fusion-arena/internal/config"
	"fusion-arena/internal/game/spatial"
	"fusion-arena/internal/intent"
	"fusion-arena/internal/logger"

	"github.com/sirupsen/logrus"
)

// TickStats describes one completed tick, for metrics observers.
type TickStats struct {
	Duration   time.Duration
	TickNumber uint64
	Enemies    int
	Wave       int
	Phase      WavePhase
	InCombat   bool
	Kills      int
	Fusions    int
}

// Engine runs a Simulation in real time: a ticker goroutine steps it at the
// configured rate under a mutex, and readers get lock-free snapshots.
type Engine struct {
	mu sync.Mutex

	sim      *Simulation
	intents  *intent.Queue
	eventLog *EventLog
	wallet   *Wallet

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// Snapshot system for lock-free reader separation
	snapshots *SnapshotStore

	onTick func(TickStats)
	log    *logrus.Entry
}

// NewEngine creates an engine over catalog. It does not start ticking.
func NewEngine(cfg config.AppConfig, catalog *Catalog) (*Engine, error) {
	tickRate := cfg.Combat.TickRate
	if tickRate <= 0 {
		tickRate = 20
	}

	e := &Engine{
		intents:   intent.NewQueue(cfg.Server.IntentBuffer),
		eventLog:  NewEventLog(),
		wallet:    &Wallet{},
		tickRate:  tickRate,
		snapshots: NewSnapshotStore(DefaultSnapshotLimits),
		log:       logger.For("engine"),
	}

	sim, err := NewSimulation(cfg, catalog, SimulationOptions{
		Progression: e.wallet,
		Events:      e.eventLog,
		Intents:     e.intents,
	})
	if err != nil {
		return nil, err
	}
	e.sim = sim
	e.snapshots.Publish(sim.Snapshot(e.snapshots.Limits()))
	return e, nil
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopChan = make(chan struct{})
	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))
	ticker, stop := e.ticker, e.stopChan
	e.mu.Unlock()

	go func() {
		for {
			select {
			case <-ticker.C:
				e.tick()
			case <-stop:
				return
			}
		}
	}()

	e.log.WithFields(logrus.Fields{"tps": e.tickRate, "seed": e.sim.Seed()}).Info("🎮 Combat engine started")
}

// Stop stops the game loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	e.log.Info("🛑 Combat engine stopped")
}

// Running reports whether the ticker goroutine is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// tick is called at tickRate times per second
func (e *Engine) tick() {
	e.Advance(1.0 / float64(e.tickRate))
}

// Advance steps the simulation by dt and publishes a snapshot. The ticker
// calls it; tests and the headless runner may call it directly.
func (e *Engine) Advance(dt float64) {
	e.mu.Lock()
	start := time.Now()
	e.sim.Step(dt)
	snap := e.sim.Snapshot(e.snapshots.Limits())
	stats := TickStats{
		Duration:   time.Since(start),
		TickNumber: snap.TickNumber,
		Enemies:    len(snap.Enemies),
		Wave:       snap.Waves.WaveIndex,
		Phase:      snap.Waves.Phase,
		InCombat:   snap.Session.InCombat,
		Kills:      snap.Waves.TotalKills,
		Fusions:    snap.Stats.FusionTriggers,
	}
	observer := e.onTick
	e.mu.Unlock()

	// Produce immutable snapshot for lock-free reader access
	e.snapshots.Publish(snap)
	if observer != nil {
		observer(stats)
	}
}

// SetTickObserver installs fn to be called after every tick, outside the
// engine lock.
func (e *Engine) SetTickObserver(fn func(TickStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// GetSnapshot returns the latest immutable snapshot for lock-free reading
func (e *Engine) GetSnapshot() *Snapshot {
	return e.snapshots.Load()
}

// UseAttack starts a player attack and reports why it was refused.
func (e *Engine) UseAttack(attackID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.UseAttack(attackID)
}

// Move sets the player movement direction; zero stops.
func (e *Engine) Move(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sim.Move(Vec2{X: x, Y: y})
}

// Submit queues an intent for the next tick without waiting on the lock.
func (e *Engine) Submit(in intent.Intent) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return e.intents.Enqueue(in)
}

// SkipToWave jumps to wave n, clearing live enemies without rewards.
func (e *Engine) SkipToWave(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.sim.SkipToWave(n); err != nil {
		return err
	}
	e.log.WithField("wave", n).Info("⏭️ Skipped to wave")
	return nil
}

// StartWaves begins wave 1 if waves were not auto-started.
func (e *Engine) StartWaves() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.StartWaves()
}

// ResetSession restarts the combat session and publishes a fresh snapshot.
func (e *Engine) ResetSession() {
	e.mu.Lock()
	e.sim.Reset()
	snap := e.sim.Snapshot(e.snapshots.Limits())
	e.mu.Unlock()
	e.snapshots.Publish(snap)
}

// Catalog returns the immutable content set.
func (e *Engine) Catalog() *Catalog { return e.sim.Catalog() }

// TickRate returns the configured ticks per second.
func (e *Engine) TickRate() int { return e.tickRate }

// IntentStats returns intent queue statistics.
func (e *Engine) IntentStats() intent.Stats { return e.intents.Stats() }

// GetSpatialStats returns grid occupancy of the last tick.
func (e *Engine) GetSpatialStats() spatial.GridStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.SpatialStats()
}

// PendingTasks returns the number of suspended casts and spawner tasks.
func (e *Engine) PendingTasks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.PendingTasks()
}

// StartEventLog initializes the event logging system
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}
