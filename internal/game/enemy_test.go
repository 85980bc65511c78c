package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArchetype() (*EnemyArchetype, *AttackDefinition) {
	attack := &AttackDefinition{ID: "claw", BaseDamage: 6, Range: 1.5, Cooldown: 1.2, CastDelay: 0.3, AnimDuration: 0.3}
	arch := &EnemyArchetype{
		ID:                   "grunt",
		Name:                 "Grunt",
		MaxHP:                30,
		Defense:              1,
		Level:                1,
		Speed:                3,
		Radius:               0.5,
		DetectionRange:       10,
		AttackRange:          1.5,
		AttackCooldown:       1.5,
		AttackID:             "claw",
		BossHealthMultiplier: 3,
	}
	return arch, attack
}

type enemyFixture struct {
	enemy   *Enemy
	ctrl    *fakeController
	session *SessionTracker
	player  *Combatant
}

func newEnemyFixture(arch *EnemyArchetype, attack *AttackDefinition, playerPos Vec2) *enemyFixture {
	f := &enemyFixture{
		ctrl:    newFakeController(),
		session: NewSessionTracker(3),
		player:  testFighter(PlayerID, FactionPlayer, playerPos, 0),
	}
	f.enemy = NewEnemy(arch, attack, EnemyOptions{ID: "enemy_1"}, f.session, f.ctrl)
	return f
}

// TestEnemyDetectsPlayer tests idle to chase on detection and session registration.
func TestEnemyDetectsPlayer(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 8})

	assert.Equal(t, StateIdle, f.enemy.State())
	f.enemy.Evaluate(0.05, 0.05, f.player)

	assert.Equal(t, StateChase, f.enemy.State())
	assert.True(t, f.session.Contains("enemy_1"))
	assert.True(t, f.session.InCombat())
	assert.Equal(t, [][2]EnemyState{{StateIdle, StateChase}}, f.ctrl.transitions)
}

// TestEnemyIgnoresDistantPlayer tests that an out-of-range player leaves the enemy idle.
func TestEnemyIgnoresDistantPlayer(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 10.5})

	f.enemy.Evaluate(0.05, 0.05, f.player)
	assert.Equal(t, StateIdle, f.enemy.State())
	assert.False(t, f.session.InCombat())
}

// TestEnemyChaseAndAttack tests the approach, the engage edge and the attack cooldown.
func TestEnemyChaseAndAttack(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 5})

	now := 0.0
	for i := 0; i < 100 && f.enemy.State() != StateAttack; i++ {
		now += 0.05
		f.enemy.Evaluate(now, 0.05, f.player)
		f.ctrl.runner.Tick(now)
	}
	require.Equal(t, StateAttack, f.enemy.State())
	assert.LessOrEqual(t, f.enemy.Pos.DistanceTo(f.player.Pos), arch.AttackRange+1e-9)
	assert.InDelta(t, 1.0, f.enemy.Facing.X, 1e-9)

	// First evaluation in attack starts a cast immediately.
	now += 0.05
	f.enemy.Evaluate(now, 0.05, f.player)
	assert.Equal(t, 1, f.ctrl.casts)
	assert.True(t, f.enemy.Casting())

	// No second cast before the archetype cooldown.
	start := now
	for now < start+arch.AttackCooldown-0.1 {
		now += 0.05
		f.ctrl.runner.Tick(now)
		f.enemy.Evaluate(now, 0.05, f.player)
	}
	assert.Equal(t, 1, f.ctrl.casts)

	for now < start+arch.AttackCooldown+0.1 {
		now += 0.05
		f.ctrl.runner.Tick(now)
		f.enemy.Evaluate(now, 0.05, f.player)
	}
	assert.Equal(t, 2, f.ctrl.casts)
}

// TestEnemyHysteresis tests the disengage and lose-target margins.
func TestEnemyHysteresis(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 1})

	f.enemy.Evaluate(0.05, 0.05, f.player) // idle -> chase
	f.enemy.Evaluate(0.10, 0.05, f.player) // chase -> attack
	require.Equal(t, StateAttack, f.enemy.State())

	// Slightly beyond attack range but inside the disengage margin.
	f.player.Pos = Vec2{X: arch.AttackRange * 1.1}
	f.enemy.Evaluate(0.15, 0.05, f.player)
	assert.Equal(t, StateAttack, f.enemy.State())

	f.player.Pos = Vec2{X: arch.AttackRange*DisengageFactor + 0.1}
	f.enemy.Evaluate(0.20, 0.05, f.player)
	assert.Equal(t, StateChase, f.enemy.State())

	// Beyond detection range but inside the lose margin keeps chasing.
	f.player.Pos = Vec2{X: arch.DetectionRange * 1.3}
	f.enemy.Evaluate(0.25, 0.05, f.player)
	assert.Equal(t, StateChase, f.enemy.State())

	f.player.Pos = Vec2{X: 100}
	f.enemy.Evaluate(0.30, 0.05, f.player)
	assert.Equal(t, StateIdle, f.enemy.State())
	assert.False(t, f.session.Contains("enemy_1"), "losing the target unregisters")
}

// TestEnemyLosesDeadPlayer tests that a dead player counts as out of range.
func TestEnemyLosesDeadPlayer(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 3})

	f.enemy.Evaluate(0.05, 0.05, f.player)
	require.Equal(t, StateChase, f.enemy.State())
	f.player.Kill()
	f.enemy.Evaluate(0.10, 0.05, f.player)
	assert.Equal(t, StateIdle, f.enemy.State())
}

// TestEnemyPatrol tests idle to patrol and waypoint cycling with waits.
func TestEnemyPatrol(t *testing.T) {
	arch, attack := testArchetype()
	arch.PatrolOffsets = []Vec2{{X: 1}, {Y: 1}}
	arch.PatrolWait = 0.5
	f := newEnemyFixture(arch, attack, Vec2{X: 100})

	f.enemy.Evaluate(0.05, 0.05, f.player)
	require.Equal(t, StatePatrol, f.enemy.State())

	// Speed 3: one unit takes about 0.35s, then a 0.5s wait.
	now := 0.05
	for i := 0; i < 7; i++ {
		now += 0.05
		f.enemy.Evaluate(now, 0.05, f.player)
	}
	assert.InDelta(t, 1.0, f.enemy.Pos.X, 1e-9)
	assert.Equal(t, 0, f.enemy.PatrolIndex(), "waiting at the first waypoint")

	for i := 0; i < 10; i++ {
		now += 0.05
		f.enemy.Evaluate(now, 0.05, f.player)
	}
	assert.Equal(t, 1, f.enemy.PatrolIndex())

	f.player.Pos = f.enemy.Pos.Add(Vec2{X: 2})
	f.enemy.Evaluate(now+0.05, 0.05, f.player)
	assert.Equal(t, StateChase, f.enemy.State())
}

// TestEnemyStunned tests that a stunned enemy holds its state.
func TestEnemyStunned(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 5})
	f.enemy.Stunned = true

	f.enemy.Evaluate(0.05, 0.05, f.player)
	assert.Equal(t, StateIdle, f.enemy.State())
	assert.Empty(t, f.ctrl.transitions)
}

// TestEnemyOnHit tests that taking damage alerts an idle enemy.
func TestEnemyOnHit(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 50})

	f.enemy.OnHit(1)
	assert.Equal(t, StateChase, f.enemy.State())
	f.enemy.OnHit(2)
	assert.Equal(t, StateChase, f.enemy.State())
}

// TestEnemyDie tests the terminal state and the single death callback.
func TestEnemyDie(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 5})
	f.enemy.Evaluate(0.05, 0.05, f.player)
	require.True(t, f.session.Contains("enemy_1"))

	f.enemy.Kill()
	f.enemy.Die(1)
	f.enemy.Die(2)

	assert.True(t, f.enemy.IsDead())
	assert.Equal(t, 1, f.ctrl.deaths)
	assert.False(t, f.session.Contains("enemy_1"))

	// Nothing leaves dead.
	f.enemy.Evaluate(3, 0.05, f.player)
	f.enemy.OnHit(3)
	assert.Equal(t, StateDead, f.enemy.State())
}

// TestEnemyNoIdleToAttack tests that the machine rejects edges it does not define.
func TestEnemyNoIdleToAttack(t *testing.T) {
	arch, attack := testArchetype()
	f := newEnemyFixture(arch, attack, Vec2{X: 1})

	f.enemy.fire(evEngage, 0)
	assert.Equal(t, StateIdle, f.enemy.State())
	f.enemy.fire(evDisengage, 0)
	assert.Equal(t, StateIdle, f.enemy.State())
	assert.Empty(t, f.ctrl.transitions)
}

// TestEnemyBossHealth tests boss and wave health scaling.
func TestEnemyBossHealth(t *testing.T) {
	arch, attack := testArchetype()
	ctrl := newFakeController()
	session := NewSessionTracker(3)

	normal := NewEnemy(arch, attack, EnemyOptions{ID: "n"}, session, ctrl)
	boss := NewEnemy(arch, attack, EnemyOptions{ID: "b", Boss: true}, session, ctrl)
	scaled := NewEnemy(arch, attack, EnemyOptions{ID: "s", Boss: true, HealthMultiplier: 1.5, DamageMultiplier: 1.2}, session, ctrl)

	assert.Equal(t, 30, normal.MaxHP)
	assert.Equal(t, 90, boss.MaxHP)
	assert.Equal(t, "Boss Grunt", boss.Name)
	assert.Equal(t, 135, scaled.MaxHP)
	assert.InDelta(t, 1.2, scaled.DamageMultiplier, 1e-9)
}
