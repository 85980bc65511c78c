package game

import (
	"testing"
	"time"

	"fusion-arena/internal/config"
	"fusion-arena/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSimulationErrors tests construction failures.
func TestNewSimulationErrors(t *testing.T) {
	_, err := NewSimulation(testConfig(), nil, SimulationOptions{})
	assert.ErrorIs(t, err, ErrInvalidDefinition)

	cfg := testConfig()
	cfg.Player.Loadout = []string{"slash", "missing"}
	_, err = NewSimulation(cfg, DefaultCatalog(), SimulationOptions{})
	assert.ErrorIs(t, err, ErrUnknownAttack)
}

// TestUseAttackRejections tests each reason a player attack is refused.
func TestUseAttackRejections(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	p := ts.Player()

	assert.ErrorIs(t, ts.UseAttack("nope"), ErrUnknownAttack)
	assert.ErrorIs(t, ts.UseAttack("fusion_burst"), ErrAutomaticAttack)
	assert.ErrorIs(t, ts.UseAttack("claw"), ErrNotInLoadout)

	p.Stunned = true
	assert.ErrorIs(t, ts.UseAttack("slash"), ErrPlayerStunned)
	p.Stunned = false

	require.NoError(t, ts.UseAttack("slash"))
	assert.Equal(t, "slash", p.CastingAttack())
	assert.ErrorIs(t, ts.UseAttack("shock_palm"), ErrCasting)

	ts.stepUntil(t, 20, func() bool { return !p.Casting() })
	assert.ErrorIs(t, ts.UseAttack("slash"), ErrOnCooldown)

	p.Energy = 5
	assert.ErrorIs(t, ts.UseAttack("shock_palm"), ErrNotEnoughEnergy)

	p.Kill()
	assert.ErrorIs(t, ts.UseAttack("slash"), ErrPlayerDead)
}

// TestUseAttackSpendsEnergy tests energy cost and regeneration.
func TestUseAttackSpendsEnergy(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	p := ts.Player()

	require.NoError(t, ts.UseAttack("sweep"))
	assert.InDelta(t, 80.0, p.Energy, 1e-9)

	ts.stepFor(1)
	assert.InDelta(t, 90.0, p.Energy, 1e-6)
	ts.stepFor(5)
	assert.InDelta(t, 100.0, p.Energy, 1e-9, "capped at max")
}

// TestSlashHitsEnemy tests a basic hit after the cast delay.
func TestSlashHitsEnemy(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	grunt := ts.spawnAt(t, "grunt", Vec2{X: 1.5})

	require.NoError(t, ts.UseAttack("slash"))
	ts.Step(0.05)
	assert.Equal(t, 30, grunt.HP, "still winding up")
	ts.Step(0.05)

	assert.Equal(t, 21, grunt.HP)
	assert.Equal(t, 9, ts.Stats().DamageDealt)
	assert.Equal(t, 1, ts.Stats().Hits)
	assert.Contains(t, []EnemyState{StateChase, StateAttack}, grunt.State())
	assert.True(t, ts.Session().InCombat())
	assert.Equal(t, 1, ts.events.Count(EventTypeSessionEnter))
}

// TestSlashMissesBehind tests that single-target attacks follow facing.
func TestSlashMissesBehind(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	grunt := ts.spawnAt(t, "grunt", Vec2{X: -1.5})

	require.NoError(t, ts.UseAttack("slash"))
	ts.stepFor(0.1)
	assert.Equal(t, 30, grunt.HP)
	assert.Equal(t, 1, ts.Stats().AttacksResolved)
	assert.Zero(t, ts.Stats().Hits)
}

// TestFusionEndToEnd tests that both markers landing fire the fusion attack.
func TestFusionEndToEnd(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	grunt := ts.spawnAt(t, "grunt", Vec2{X: 2})
	p := ts.Player()

	require.NoError(t, ts.UseAttack("shock_palm"))
	ts.stepUntil(t, 40, func() bool { return !p.Casting() })
	assert.Equal(t, 23, grunt.HP)
	assert.Equal(t, 0, ts.Stats().FusionTriggers)

	require.NoError(t, ts.UseAttack("ether_lance"))
	ts.stepUntil(t, 40, func() bool { return ts.Stats().FusionTriggers > 0 })

	assert.Equal(t, 1, ts.Stats().FusionTriggers)
	assert.Equal(t, 1, ts.Combo().State().Triggers)
	assert.Equal(t, 1, ts.events.Count(EventTypeFusion))
	assert.True(t, grunt.IsDead(), "12 HP left before a 29 damage burst")

	fusion, err := ts.Catalog().Attack("fusion_burst")
	require.NoError(t, err)
	assert.Greater(t, ts.Cooldowns().Remaining(PlayerID, fusion, ts.Clock()), 0.0)
	assert.ErrorIs(t, ts.UseAttack("fusion_burst"), ErrAutomaticAttack)

	ts.Step(0.05)
	_, ok := ts.Enemy(grunt.ID)
	assert.False(t, ok, "dead enemies are pruned")

	// Direct spawns are not tracked by the scheduler and earn nothing.
	assert.Zero(t, ts.Stats().Kills)
	assert.Zero(t, ts.wallet.Experience)

	ts.stepFor(3.5)
	assert.False(t, ts.Session().InCombat())
	assert.Equal(t, 1, ts.events.Count(EventTypeSessionExit))
}

// TestWaveKillCredit tests archetype and wave rewards for scheduled enemies.
func TestWaveKillCredit(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Waves = []WaveDefinition{
		{Index: 1, EnemyCount: 1, SpawnInterval: 0.5, Archetype: "grunt", ExpReward: 50, CurrencyReward: 10},
	}
	cfg := testConfig()
	cfg.Waves.SpawnPoints = []config.Point{{X: 3}}
	ts := newTestSim(t, cfg, catalog)

	require.True(t, ts.StartWaves())
	assert.False(t, ts.StartWaves())
	ts.stepUntil(t, 10, func() bool { return len(ts.Enemies()) == 1 })

	ts.stepUntil(t, 200, func() bool {
		_ = ts.UseAttack("slash")
		return len(ts.Enemies()) == 0
	})
	ts.Step(0.05)

	assert.Equal(t, 1, ts.Stats().Kills)
	assert.Equal(t, 1, ts.Player().Kills)
	assert.Equal(t, 1, ts.Stats().WavesCleared)
	assert.Equal(t, PhaseCleared, ts.Waves().Phase())
	assert.Equal(t, Wallet{Experience: 60, Currency: 12}, *ts.wallet)
	assert.Equal(t, 1, ts.events.Count(EventTypeWaveComplete))

	ts.stepFor(3.5)
	assert.Equal(t, PhaseComplete, ts.Waves().Phase())
}

// TestSkipToWaveNoCredit tests that skipped enemies give no rewards.
func TestSkipToWaveNoCredit(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	require.True(t, ts.StartWaves())
	ts.stepFor(3)
	alive := len(ts.Enemies())
	require.Greater(t, alive, 0)

	require.NoError(t, ts.SkipToWave(3))
	assert.Empty(t, ts.Enemies())
	assert.Equal(t, 3, ts.Waves().State().WaveIndex)
	assert.Zero(t, ts.Stats().Kills)
	assert.Zero(t, ts.wallet.Experience)

	kills := 0
	for _, ev := range ts.events.Events {
		if ev.Type != EventTypeKill {
			continue
		}
		kills++
		assert.Empty(t, ev.ActorID)
		assert.Contains(t, string(ev.Payload), `"cleared":true`)
	}
	assert.Equal(t, alive, kills)

	assert.ErrorIs(t, ts.SkipToWave(9), ErrInvalidWave)
	assert.ErrorIs(t, ts.SkipToWave(0), ErrInvalidWave)
}

// TestPlayerDeathStopsWaves tests the stop-on-death path and Reset.
func TestPlayerDeathStopsWaves(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	p := ts.Player()
	p.HP = 1
	ts.spawnAt(t, "grunt", Vec2{X: 1})
	require.True(t, ts.StartWaves())

	ts.stepUntil(t, 100, func() bool { return !p.Alive })
	assert.Equal(t, PhaseStopped, ts.Waves().Phase())
	assert.Equal(t, 1, p.Deaths)
	assert.Equal(t, 1, ts.events.Count(EventTypePlayerDeath))
	assert.ErrorIs(t, ts.UseAttack("slash"), ErrPlayerDead)
	assert.ErrorIs(t, ts.SkipToWave(2), ErrPlayerDead)

	spawned := ts.Stats().Spawned
	ts.stepFor(5)
	assert.Equal(t, spawned, ts.Stats().Spawned, "no spawns after death")

	ts.Reset()
	assert.True(t, p.Alive)
	assert.Equal(t, p.MaxHP, p.HP)
	assert.Empty(t, ts.Enemies())
	assert.Equal(t, PhaseIdle, ts.Waves().Phase())
	assert.Zero(t, ts.PendingTasks())
	assert.False(t, ts.Session().InCombat())
	require.NoError(t, ts.UseAttack("slash"))
}

// TestResetAutoStart tests that Reset restarts wave 1 with auto-start on.
func TestResetAutoStart(t *testing.T) {
	cfg := testConfig()
	cfg.Waves.AutoStart = true
	ts := newTestSim(t, cfg, nil)
	assert.Equal(t, PhaseSpawning, ts.Waves().Phase())

	ts.stepFor(2)
	ts.Reset()
	st := ts.Waves().State()
	assert.Equal(t, 1, st.WaveIndex)
	assert.Equal(t, PhaseSpawning, st.Phase)
	assert.Zero(t, st.Spawned)
}

// TestIntentDrain tests that queued intents are applied at the next tick.
func TestIntentDrain(t *testing.T) {
	q := intent.NewQueue(8)
	sim, err := NewSimulation(testConfig(), DefaultCatalog(), SimulationOptions{Intents: q})
	require.NoError(t, err)

	require.NoError(t, q.Enqueue(intent.Intent{Kind: intent.KindUseAttack, AttackID: "nope"}))
	require.NoError(t, q.Enqueue(intent.Intent{Kind: intent.KindMove, Y: 2}))
	require.NoError(t, q.Enqueue(intent.Intent{Kind: intent.KindUseAttack, AttackID: "claw"}))
	require.NoError(t, q.Enqueue(intent.Intent{Kind: intent.KindUseAttack, AttackID: "slash"}))

	sim.Step(0.05)
	assert.Zero(t, q.Len())
	assert.Equal(t, 2, sim.Stats().IntentsRejected)
	assert.Equal(t, Vec2{Y: 1}, sim.Player().MoveDir)
	assert.InDelta(t, 0.3, sim.Player().Pos.Y, 1e-9)
	assert.True(t, sim.Player().Casting())

	require.NoError(t, q.Enqueue(intent.Intent{Kind: intent.KindStop}))
	sim.Step(0.05)
	assert.True(t, sim.Player().MoveDir.IsZero())
}

// TestSimulationDeterminism tests that equal seeds and inputs give equal state.
func TestSimulationDeterminism(t *testing.T) {
	run := func() *Snapshot {
		cfg := testConfig()
		cfg.Combat.CritChance = 0.2
		cfg.Waves.AutoStart = true
		cfg.Waves.RingRadius = 4
		ts := newTestSim(t, cfg, nil)
		ts.Resolver().Crit = CritRoll

		loadout := ts.Player().Loadout
		for i := 0; i < 400; i++ {
			if i%20 == 0 {
				ts.Face(FromAngle(float64(i) / 50))
			}
			_ = ts.UseAttack(loadout[i%len(loadout)])
			ts.Step(0.05)
		}
		snap := ts.Snapshot(DefaultSnapshotLimits)
		snap.Timestamp = time.Time{}
		return snap
	}

	a, b := run(), run()
	require.Greater(t, a.Stats.Hits, 0)
	assert.Equal(t, a, b)
}

// TestEnemySeparation tests that co-located enemies are pushed apart.
func TestEnemySeparation(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	a := ts.spawnAt(t, "grunt", Vec2{X: 50, Y: 50})
	b := ts.spawnAt(t, "grunt", Vec2{X: 50, Y: 50})

	ts.Step(0.05)
	assert.InDelta(t, 1.0, a.Pos.DistanceTo(b.Pos), 1e-9)
	assert.InDelta(t, 49.5, a.Pos.X, 1e-9)
	assert.InDelta(t, 50.5, b.Pos.X, 1e-9)

	ts.Step(0.05)
	assert.InDelta(t, 1.0, a.Pos.DistanceTo(b.Pos), 1e-9, "touching is not overlapping")
}

// TestSpawnEnemyFailures tests spawn refusals.
func TestSpawnEnemyFailures(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	assert.Empty(t, ts.SpawnEnemy(SpawnRequest{Archetype: "dragon"}))

	cfg := testConfig()
	cfg.World.MaxEntities = 3
	ts = newTestSim(t, cfg, nil)
	assert.NotEmpty(t, ts.SpawnEnemy(SpawnRequest{Pos: Vec2{X: 40}}))
	assert.NotEmpty(t, ts.SpawnEnemy(SpawnRequest{Pos: Vec2{X: 60}}))
	assert.Empty(t, ts.SpawnEnemy(SpawnRequest{Pos: Vec2{X: 80}}), "cap counts the player")

	e, ok := ts.Enemy("enemy_1")
	require.True(t, ok)
	assert.Equal(t, "grunt", e.Archetype.ID, "empty archetype uses the default")
}

// TestPeriodicDamageCredit tests that DoT from the player counts as dealt damage.
func TestPeriodicDamageCredit(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	grunt := ts.spawnAt(t, "grunt", Vec2{X: 50})
	burn := ts.Catalog().Effects["ether_burn"]

	require.NotNil(t, ts.Statuses().Apply(grunt.Combatant, burn, PlayerID))
	ts.stepFor(3.1)
	assert.Equal(t, 21, grunt.HP)
	assert.Equal(t, 9, ts.Stats().DamageDealt)
	assert.Equal(t, 1, ts.events.Count(EventTypeStatusExpired))
	assert.Positive(t, ts.events.Count(EventTypeStateChange), "damage alerts the enemy")
}

// TestSnapshotContents tests snapshot caps and cooldown entries.
func TestSnapshotContents(t *testing.T) {
	ts := newTestSim(t, testConfig(), nil)
	for i := 0; i < 3; i++ {
		ts.spawnAt(t, "grunt", Vec2{X: 40 + float64(i)*5})
	}
	require.NoError(t, ts.UseAttack("slash"))
	ts.Step(0.05)

	snap := ts.Snapshot(SnapshotLimits{MaxEnemies: 2, MaxStatuses: 1})
	assert.Len(t, snap.Enemies, 2)
	assert.Equal(t, "enemy_1", snap.Enemies[0].ID)
	assert.Equal(t, uint64(1), snap.TickNumber)
	assert.Equal(t, int64(42), snap.RNGSeed)
	assert.Equal(t, "slash", snap.Player.Casting)
	require.NotNil(t, snap.Wallet)

	ids := make([]string, 0, len(snap.Player.Cooldowns))
	for _, cd := range snap.Player.Cooldowns {
		ids = append(ids, cd.AttackID)
	}
	assert.Equal(t, []string{"slash", "shock_palm", "ether_lance", "sweep", "fusion_burst"}, ids)
	assert.False(t, snap.Player.Cooldowns[0].Ready)
	assert.True(t, snap.Player.Cooldowns[1].Ready)

	store := NewSnapshotStore(DefaultSnapshotLimits)
	assert.Nil(t, store.Load())
	store.Publish(snap)
	store.Publish(ts.Snapshot(store.Limits()))
	assert.Equal(t, uint64(2), store.Load().Sequence)
}
