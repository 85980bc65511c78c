package game

import (
	"context"
	"math"

	"fusion-arena/internal/logger"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

// EnemyState is a node of the enemy behavior state machine.
type EnemyState string

const (
	StateIdle   EnemyState = "idle"
	StatePatrol EnemyState = "patrol"
	StateChase  EnemyState = "chase"
	StateAttack EnemyState = "attack"
	StateDead   EnemyState = "dead"
)

// State machine events. Only these edges exist: there is no idle->attack
// edge and nothing leaves dead.
const (
	evPatrol    = "start_patrol"
	evDetect    = "detect"
	evEngage    = "engage"
	evLose      = "lose_target"
	evDisengage = "disengage"
	evDie       = "die"
)

// Hysteresis factors applied to the archetype ranges.
const (
	LoseTargetFactor = 1.5 // chase -> idle beyond detection * factor
	DisengageFactor  = 1.2 // attack -> chase beyond attack range * factor
	approachFactor   = 0.9 // chase stops this fraction inside attack range
)

func enemyEvents() fsm.Events {
	live := []string{string(StateIdle), string(StatePatrol), string(StateChase), string(StateAttack)}
	return fsm.Events{
		{Name: evPatrol, Src: []string{string(StateIdle)}, Dst: string(StatePatrol)},
		{Name: evDetect, Src: []string{string(StateIdle), string(StatePatrol)}, Dst: string(StateChase)},
		{Name: evEngage, Src: []string{string(StateChase)}, Dst: string(StateAttack)},
		{Name: evLose, Src: []string{string(StateChase)}, Dst: string(StateIdle)},
		{Name: evDisengage, Src: []string{string(StateAttack)}, Dst: string(StateChase)},
		{Name: evDie, Src: live, Dst: string(StateDead)},
	}
}

// enemyController is the part of the simulation an enemy calls back into.
type enemyController interface {
	startCast(e *Enemy, attack *AttackDefinition, now float64) *Task
	enemyTransition(e *Enemy, from, to EnemyState, now float64)
	enemyDied(e *Enemy, now float64)
}

// EnemyOptions configures NewEnemy.
type EnemyOptions struct {
	ID               string
	Pos              Vec2
	Wave             int
	Boss             bool
	HealthMultiplier float64
	DamageMultiplier float64
}

// Enemy is a hostile combatant driven by a behavior state machine.
type Enemy struct {
	*Combatant

	Archetype *EnemyArchetype
	Attack    *AttackDefinition
	Wave      int
	Boss      bool
	SpawnPos  Vec2

	// Cleared marks enemies removed by a wave skip rather than killed.
	Cleared bool

	machine *fsm.FSM
	session *SessionTracker
	ctrl    enemyController

	patrol     []Vec2
	patrolIdx  int
	patrolWait float64

	lastAttack float64
	attacked   bool
	cast       *Task
}

// NewEnemy creates an idle enemy of archetype arch.
func NewEnemy(arch *EnemyArchetype, attack *AttackDefinition, opts EnemyOptions, session *SessionTracker, ctrl enemyController) *Enemy {
	hpMul := opts.HealthMultiplier
	if hpMul <= 0 {
		hpMul = 1
	}
	if opts.Boss && arch.BossHealthMultiplier > 0 {
		hpMul *= arch.BossHealthMultiplier
	}

	name := arch.Name
	if opts.Boss {
		name = "Boss " + name
	}

	e := &Enemy{
		Combatant: NewCombatant(CombatantOptions{
			ID:               opts.ID,
			Name:             name,
			Faction:          FactionEnemy,
			MaxHP:            int(math.Round(float64(arch.MaxHP) * hpMul)),
			Defense:          arch.Defense,
			Level:            arch.Level,
			Speed:            arch.Speed,
			Radius:           arch.Radius,
			Pos:              opts.Pos,
			DamageMultiplier: opts.DamageMultiplier,
		}),
		Archetype: arch,
		Attack:    attack,
		Wave:      opts.Wave,
		Boss:      opts.Boss,
		SpawnPos:  opts.Pos,
		session:   session,
		ctrl:      ctrl,
	}
	for _, off := range arch.PatrolOffsets {
		e.patrol = append(e.patrol, opts.Pos.Add(off))
	}

	e.machine = fsm.NewFSM(string(StateIdle), enemyEvents(), fsm.Callbacks{
		"enter_state": func(_ context.Context, ev *fsm.Event) {
			e.ctrl.enemyTransition(e, EnemyState(ev.Src), EnemyState(ev.Dst), eventTime(ev))
		},
		"enter_" + string(StateChase): func(_ context.Context, ev *fsm.Event) {
			e.session.Register(e.ID)
		},
		"enter_" + string(StateIdle): func(_ context.Context, ev *fsm.Event) {
			// Losing the player ends this enemy's part in the session.
			e.session.Unregister(e.ID, eventTime(ev))
		},
		"enter_" + string(StateDead): func(_ context.Context, ev *fsm.Event) {
			e.onDead(eventTime(ev))
		},
	})
	return e
}

// eventTime reads the simulation time passed as the first event argument.
func eventTime(ev *fsm.Event) float64 {
	if len(ev.Args) > 0 {
		if t, ok := ev.Args[0].(float64); ok {
			return t
		}
	}
	return 0
}

// State returns the current behavior state.
func (e *Enemy) State() EnemyState {
	return EnemyState(e.machine.Current())
}

// IsDead reports whether the enemy reached the terminal state.
func (e *Enemy) IsDead() bool {
	return e.machine.Is(string(StateDead))
}

// Casting reports whether an attack cast is in flight.
func (e *Enemy) Casting() bool {
	return e.cast.Active()
}

// Evaluate runs one behavior update against player.
// Stunned enemies keep their state and do nothing.
func (e *Enemy) Evaluate(now, dt float64, player *Combatant) {
	if e.IsDead() || e.Stunned {
		return
	}

	dist := math.Inf(1)
	if player != nil && player.Alive {
		dist = e.Pos.DistanceTo(player.Pos)
	}
	arch := e.Archetype

	switch e.State() {
	case StateIdle:
		if dist <= arch.DetectionRange {
			e.fire(evDetect, now)
			return
		}
		if len(e.patrol) > 0 {
			e.fire(evPatrol, now)
		}

	case StatePatrol:
		if dist <= arch.DetectionRange {
			e.fire(evDetect, now)
			return
		}
		e.patrolStep(dt)

	case StateChase:
		if dist > LoseTargetFactor*arch.DetectionRange {
			e.fire(evLose, now)
			return
		}
		e.Face(player.Pos)
		if dist <= arch.AttackRange {
			e.fire(evEngage, now)
			return
		}
		e.approach(player.Pos, dt)

	case StateAttack:
		if dist > DisengageFactor*arch.AttackRange {
			e.fire(evDisengage, now)
			return
		}
		e.Face(player.Pos)
		if e.Casting() {
			return
		}
		if !e.attacked || now+timeEpsilon >= e.lastAttack+arch.AttackCooldown {
			e.cast = e.ctrl.startCast(e, e.Attack, now)
			e.lastAttack = now
			e.attacked = true
		}
	}
}

// OnHit alerts an idle or patrolling enemy.
func (e *Enemy) OnHit(now float64) {
	switch e.State() {
	case StateIdle, StatePatrol:
		e.fire(evDetect, now)
	}
}

// Die moves the enemy to the terminal state. Calling it twice is a no-op.
func (e *Enemy) Die(now float64) {
	if e.IsDead() {
		return
	}
	e.fire(evDie, now)
}

func (e *Enemy) onDead(now float64) {
	e.Speed = 0
	e.Stunned = false
	e.session.Unregister(e.ID, now)
	e.ctrl.enemyDied(e, now)
}

func (e *Enemy) fire(event string, now float64) {
	if err := e.machine.Event(context.Background(), event, now); err != nil {
		logger.For("enemy").WithFields(logrus.Fields{
			"enemy_id": e.ID,
			"event":    event,
			"state":    e.machine.Current(),
		}).WithError(err).Debug("transition rejected")
	}
}

// approach closes in on target, stopping just inside attack range.
func (e *Enemy) approach(target Vec2, dt float64) {
	dir := target.Sub(e.Pos)
	dist := dir.Len()
	stop := e.Archetype.AttackRange * approachFactor
	if dist <= stop {
		return
	}
	goal := target.Sub(dir.Norm().Scale(stop))
	e.Pos, _ = MoveToward(e.Pos, goal, e.Speed*dt)
}

func (e *Enemy) patrolStep(dt float64) {
	if e.patrolWait > 0 {
		e.patrolWait -= dt
		if e.patrolWait <= timeEpsilon {
			e.patrolWait = 0
			e.patrolIdx = (e.patrolIdx + 1) % len(e.patrol)
		}
		return
	}

	target := e.patrol[e.patrolIdx]
	e.Face(target)
	pos, reached := MoveToward(e.Pos, target, e.Speed*dt)
	e.Pos = pos
	if !reached {
		return
	}
	if e.Archetype.PatrolWait > 0 {
		e.patrolWait = e.Archetype.PatrolWait
	} else {
		e.patrolIdx = (e.patrolIdx + 1) % len(e.patrol)
	}
}

// PatrolIndex returns the waypoint currently targeted.
func (e *Enemy) PatrolIndex() int { return e.patrolIdx }
