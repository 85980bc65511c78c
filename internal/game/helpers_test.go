package game

import (
	"testing"

	"fusion-arena/internal/config"
	"fusion-arena/internal/logger"

	"github.com/stretchr/testify/require"
)

func init() {
	logger.Silence()
}

// testConfig is a deterministic configuration with waves off and no crits.
func testConfig() config.AppConfig {
	cfg := config.Default()
	cfg.Combat.Seed = 42
	cfg.Combat.CritChance = 0
	cfg.Waves.AutoStart = false
	cfg.Server.EventLogPath = ""
	return cfg
}

type testSim struct {
	*Simulation
	events *EventRecorder
	wallet *Wallet
}

func newTestSim(t testing.TB, cfg config.AppConfig, catalog *Catalog) *testSim {
	t.Helper()
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	rec := &EventRecorder{}
	wallet := &Wallet{}
	sim, err := NewSimulation(cfg, catalog, SimulationOptions{
		Progression: wallet,
		Events:      rec,
	})
	require.NoError(t, err)
	sim.Resolver().Crit = CritNever
	return &testSim{Simulation: sim, events: rec, wallet: wallet}
}

// stepFor advances the simulation by seconds in fixed 50ms ticks.
func (ts *testSim) stepFor(seconds float64) {
	const dt = 0.05
	for n := int(seconds/dt + 0.5); n > 0; n-- {
		ts.Step(dt)
	}
}

// stepUntil steps until cond holds, failing after max ticks.
func (ts *testSim) stepUntil(t testing.TB, maxTicks int, cond func() bool) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if cond() {
			return
		}
		ts.Step(0.05)
	}
	require.True(t, cond(), "condition not reached after %d ticks", maxTicks)
}

// spawnAt places an enemy of archetype outside any wave.
func (ts *testSim) spawnAt(t testing.TB, archetype string, pos Vec2) *Enemy {
	t.Helper()
	id := ts.SpawnEnemy(SpawnRequest{Archetype: archetype, Pos: pos, Wave: 1})
	require.NotEmpty(t, id)
	e, ok := ts.Enemy(id)
	require.True(t, ok)
	return e
}

// fakeController records enemy callbacks.
type fakeController struct {
	runner      *TaskRunner
	casts       int
	transitions [][2]EnemyState
	deaths      int
}

func newFakeController() *fakeController {
	return &fakeController{runner: NewTaskRunner(true)}
}

func (f *fakeController) startCast(e *Enemy, attack *AttackDefinition, now float64) *Task {
	f.casts++
	started := false
	return f.runner.Go("cast", func(float64) Wait {
		if started {
			return Done()
		}
		started = true
		return Sleep(attack.CastDelay + attack.AnimDuration)
	})
}

func (f *fakeController) enemyTransition(e *Enemy, from, to EnemyState, now float64) {
	f.transitions = append(f.transitions, [2]EnemyState{from, to})
}

func (f *fakeController) enemyDied(e *Enemy, now float64) { f.deaths++ }
