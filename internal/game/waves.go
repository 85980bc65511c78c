package game

import (
	"math"
	"math/rand"

	"fusion-arena/internal/config"
)

// WavePhase is the scheduler's position in the wave cycle.
type WavePhase string

const (
	PhaseIdle     WavePhase = "idle"     // Not started or reset
	PhaseSpawning WavePhase = "spawning" // Spawning the current wave
	PhaseWaiting  WavePhase = "waiting"  // All spawned, waiting for clearance
	PhaseCleared  WavePhase = "cleared"  // Rewards granted, between-wave delay
	PhaseComplete WavePhase = "complete" // No more waves
	PhaseStopped  WavePhase = "stopped"  // Player died; frozen until Reset
)

// SpawnScheduleState is a copy of the scheduler counters.
type SpawnScheduleState struct {
	WaveIndex  int       `json:"waveIndex"`
	Phase      WavePhase `json:"phase"`
	Spawned    int       `json:"spawned"`
	EnemyCount int       `json:"enemyCount"`
	Alive      int       `json:"alive"`
	MaxAlive   int       `json:"maxAlive"`
	TotalKills int       `json:"totalKills"`
	WaveActive bool      `json:"waveActive"`
}

// SpawnRequest asks the simulation to create one enemy.
type SpawnRequest struct {
	Wave             int
	Archetype        string
	Pos              Vec2
	Boss             bool
	HealthMultiplier float64
	DamageMultiplier float64
}

// Spawner creates and removes enemies on behalf of the scheduler.
type Spawner interface {
	// SpawnEnemy creates an enemy and returns its ID, or "" on failure.
	SpawnEnemy(req SpawnRequest) string
	// ClearEnemy removes a live enemy without kill credit.
	ClearEnemy(id string)
	// PlayerPosition reports the player position if a player exists.
	PlayerPosition() (Vec2, bool)
}

// WaveScheduler paces enemy spawns wave by wave under a population cap.
type WaveScheduler struct {
	cfg         config.WaveConfig
	waves       []WaveDefinition
	runner      *TaskRunner
	spawner     Spawner
	progression Progression
	rng         *rand.Rand

	state     SpawnScheduleState
	current   WaveDefinition
	live      map[string]struct{}
	liveOrder []string
	task      *Task
	pointIdx  int

	onWaveStart    []func(WaveDefinition)
	onWaveComplete []func(WaveDefinition)
}

// NewWaveScheduler creates an idle scheduler. Its tasks run on runner.
func NewWaveScheduler(cfg config.WaveConfig, waves []WaveDefinition, runner *TaskRunner, spawner Spawner, progression Progression, rng *rand.Rand) *WaveScheduler {
	if cfg.MaxAlive < 1 {
		cfg.MaxAlive = 1
	}
	return &WaveScheduler{
		cfg:         cfg,
		waves:       waves,
		runner:      runner,
		spawner:     spawner,
		progression: progression,
		rng:         rng,
		state:       SpawnScheduleState{Phase: PhaseIdle, MaxAlive: cfg.MaxAlive},
		live:        make(map[string]struct{}),
	}
}

// OnWaveStart registers an observer called when a wave begins.
func (s *WaveScheduler) OnWaveStart(fn func(WaveDefinition)) {
	s.onWaveStart = append(s.onWaveStart, fn)
}

// OnWaveComplete registers an observer called when a wave is cleared.
func (s *WaveScheduler) OnWaveComplete(fn func(WaveDefinition)) {
	s.onWaveComplete = append(s.onWaveComplete, fn)
}

// Start begins wave 1. It only acts from the idle phase.
func (s *WaveScheduler) Start() bool {
	if s.state.Phase != PhaseIdle {
		return false
	}
	s.beginWave(1)
	return true
}

// OnPlayerDeath halts every in-flight operation and freezes the scheduler
// until Reset.
func (s *WaveScheduler) OnPlayerDeath() {
	s.cancelTask()
	s.state.Phase = PhaseStopped
	s.state.WaveActive = false
}

// Reset cancels in-flight work and returns to idle with zeroed counters.
// Live enemies are forgotten, not removed; the owner clears them.
func (s *WaveScheduler) Reset() {
	s.cancelTask()
	clear(s.live)
	s.liveOrder = s.liveOrder[:0]
	s.pointIdx = 0
	s.current = WaveDefinition{}
	s.state = SpawnScheduleState{Phase: PhaseIdle, MaxAlive: s.cfg.MaxAlive}
}

// SkipToWave cancels in-flight work, clears live enemies without credit and
// begins wave n as if newly reached.
func (s *WaveScheduler) SkipToWave(n int) error {
	if n < 1 || (!s.cfg.Infinite && n > len(s.waves)) {
		return ErrInvalidWave
	}
	s.cancelTask()

	ids := make([]string, len(s.liveOrder))
	copy(ids, s.liveOrder)
	clear(s.live)
	s.liveOrder = s.liveOrder[:0]
	s.state.Alive = 0
	for _, id := range ids {
		s.spawner.ClearEnemy(id)
	}

	s.state.WaveIndex = n - 1
	s.beginWave(n)
	return nil
}

// EnemyDefeated decrements the live count and credits a kill.
// Unknown or already-defeated IDs are ignored.
func (s *WaveScheduler) EnemyDefeated(id string) bool {
	if _, ok := s.live[id]; !ok {
		return false
	}
	delete(s.live, id)
	for i, l := range s.liveOrder {
		if l == id {
			s.liveOrder = append(s.liveOrder[:i], s.liveOrder[i+1:]...)
			break
		}
	}
	s.state.Alive--
	s.state.TotalKills++
	return true
}

// State returns a copy of the scheduler counters.
func (s *WaveScheduler) State() SpawnScheduleState { return s.state }

// Current returns the wave being run (possibly synthesized).
func (s *WaveScheduler) Current() WaveDefinition { return s.current }

// Phase returns the current phase.
func (s *WaveScheduler) Phase() WavePhase { return s.state.Phase }

// WaveFor returns the definition of wave n, synthesizing it in infinite mode.
// The second result is false when no such wave exists.
func (s *WaveScheduler) WaveFor(n int) (WaveDefinition, bool) {
	if n < 1 {
		return WaveDefinition{}, false
	}
	if n <= len(s.waves) {
		w := s.waves[n-1]
		w.Index = n
		return w, true
	}
	if !s.cfg.Infinite {
		return WaveDefinition{}, false
	}

	base := WaveDefinition{EnemyCount: 3, SpawnInterval: 1.0, ExpReward: 50, CurrencyReward: 10}
	if len(s.waves) > 0 {
		base = s.waves[len(s.waves)-1]
		// Boss waves do not repeat.
		base.Boss = false
		if base.EnemyCount < 1 {
			base.EnemyCount = 1
		}
	}

	k := n - len(s.waves)
	w := base
	w.Index = n
	w.EnemyCount = base.EnemyCount + k*s.cfg.CountIncrement
	w.SpawnInterval = base.SpawnInterval * math.Pow(s.cfg.IntervalDecay, float64(k))
	if w.SpawnInterval < s.cfg.MinInterval {
		w.SpawnInterval = s.cfg.MinInterval
	}
	w.HealthMultiplier = 1 + float64(k)*s.cfg.HealthScalePerWave
	w.DamageMultiplier = 1 + float64(k)*s.cfg.DamageScalePerWave
	return w, true
}

func (s *WaveScheduler) beginWave(n int) {
	w, ok := s.WaveFor(n)
	if !ok {
		s.state.Phase = PhaseComplete
		s.state.WaveActive = false
		return
	}

	s.current = w
	s.state.WaveIndex = n
	s.state.Phase = PhaseSpawning
	s.state.Spawned = 0
	s.state.EnemyCount = w.EnemyCount
	s.state.WaveActive = true

	for _, fn := range s.onWaveStart {
		fn(w)
	}
	s.task = s.runner.Spawn("wave", &waveRoutine{s: s})
}

func (s *WaveScheduler) cancelTask() {
	if s.task != nil {
		s.runner.Cancel(s.task)
		s.task = nil
	}
}

func (s *WaveScheduler) slotFree() bool { return s.state.Alive < s.cfg.MaxAlive }
func (s *WaveScheduler) cleared() bool  { return s.state.Alive == 0 }

func (s *WaveScheduler) spawnOne() {
	w := s.current
	req := SpawnRequest{
		Wave:             w.Index,
		Archetype:        w.Archetype,
		Pos:              s.spawnPosition(),
		Boss:             w.Boss && s.state.Spawned == 0,
		HealthMultiplier: nonZero(w.HealthMultiplier),
		DamageMultiplier: nonZero(w.DamageMultiplier),
	}
	s.state.Spawned++

	id := s.spawner.SpawnEnemy(req)
	if id == "" {
		return
	}
	if _, dup := s.live[id]; dup {
		return
	}
	s.live[id] = struct{}{}
	s.liveOrder = append(s.liveOrder, id)
	s.state.Alive++
}

// spawnPosition picks, in order of preference: the next configured spawn
// point, a random point within SpawnRadius of the origin, a point on the
// ring around the player, or the origin.
func (s *WaveScheduler) spawnPosition() Vec2 {
	if n := len(s.cfg.SpawnPoints); n > 0 {
		p := s.cfg.SpawnPoints[s.pointIdx%n]
		s.pointIdx++
		return Vec2{X: p.X, Y: p.Y}
	}

	origin := Vec2{X: s.cfg.Origin.X, Y: s.cfg.Origin.Y}
	if s.cfg.SpawnRadius > 0 {
		angle := s.rng.Float64() * 2 * math.Pi
		r := s.cfg.SpawnRadius * math.Sqrt(s.rng.Float64())
		return origin.Add(FromAngle(angle).Scale(r))
	}

	if s.cfg.RingRadius > 0 && s.spawner != nil {
		if player, ok := s.spawner.PlayerPosition(); ok {
			angle := s.rng.Float64() * 2 * math.Pi
			return player.Add(FromAngle(angle).Scale(s.cfg.RingRadius))
		}
	}

	return Vec2{}
}

func (s *WaveScheduler) completeWave() {
	w := s.current
	s.state.Phase = PhaseCleared
	s.state.WaveActive = false
	if s.progression != nil {
		s.progression.GrantExperience(w.ExpReward)
		s.progression.GrantCurrency(w.CurrencyReward)
	}
	for _, fn := range s.onWaveComplete {
		fn(w)
	}
}

func nonZero(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// Wave routine cursor positions.
const (
	waveAwaitSlot = iota
	waveSpawn
	waveAwaitClear
	waveRewarded
)

// waveRoutine is the resumable spawn-then-wait sequence of one wave.
type waveRoutine struct {
	s      *WaveScheduler
	cursor int
}

func (r *waveRoutine) Resume(now float64) Wait {
	s := r.s
	switch r.cursor {
	case waveAwaitSlot:
		if s.state.Spawned >= s.current.EnemyCount {
			s.state.Phase = PhaseWaiting
			r.cursor = waveAwaitClear
			return Until(s.cleared)
		}
		r.cursor = waveSpawn
		return Until(s.slotFree)

	case waveSpawn:
		s.spawnOne()
		r.cursor = waveAwaitSlot
		if s.state.Spawned >= s.current.EnemyCount {
			s.state.Phase = PhaseWaiting
			r.cursor = waveAwaitClear
			return Until(s.cleared)
		}
		return Sleep(s.current.SpawnInterval)

	case waveAwaitClear:
		s.completeWave()
		r.cursor = waveRewarded
		return Sleep(s.cfg.BetweenWaveDelay)

	case waveRewarded:
		s.task = nil
		s.beginWave(s.current.Index + 1)
		return Done()
	}
	return Done()
}
