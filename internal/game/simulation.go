package game

import (
	"fmt"
	"math/rand"
	"time"

	"fusion-arena/internal/config"
	"fusion-arena/internal/game/spatial"
	"fusion-arena/internal/intent"
	"fusion-arena/internal/logger"

	"github.com/sirupsen/logrus"
)

// SimStats aggregates counters over a session.
type SimStats struct {
	Ticks           uint64 `json:"ticks"`
	AttacksResolved int    `json:"attacksResolved"`
	Hits            int    `json:"hits"`
	Crits           int    `json:"crits"`
	DamageDealt     int    `json:"damageDealt"` // by the player, including DoT
	DamageTaken     int    `json:"damageTaken"`
	StatusesApplied int    `json:"statusesApplied"`
	FusionTriggers  int    `json:"fusionTriggers"`
	Kills           int    `json:"kills"`
	Spawned         int    `json:"spawned"`
	WavesCleared    int    `json:"wavesCleared"`
	IntentsRejected int    `json:"intentsRejected"`
}

// SimulationOptions supplies the collaborators of a simulation.
// Nil fields get in-memory defaults.
type SimulationOptions struct {
	Presenter   Presenter
	Progression Progression
	Events      EventSink
	Intents     *intent.Queue
	Rand        *rand.Rand
}

// Simulation owns one combat session: the player, enemies and every combat
// subsystem. It is single-threaded; Step advances it by one tick.
type Simulation struct {
	cfg     config.AppConfig
	catalog *Catalog
	log     *logrus.Entry

	presenter   Presenter
	progression Progression
	events      EventSink
	intents     *intent.Queue
	rng         *rand.Rand
	seed        int64

	clock  float64
	tick   uint64
	bounds spatial.Bounds

	player      *Player
	enemies     map[string]*Enemy
	order       []*Enemy // spawn order, for deterministic evaluation
	nextEnemyID int

	resolver  *Resolver
	statuses  *StatusManager
	cooldowns *Cooldowns
	combo     *ComboTracker
	session   *SessionTracker
	casts     *TaskRunner
	spawns    *TaskRunner
	waves     *WaveScheduler
	index     *GridIndex
	crowd     *spatial.SweepAndPrune
	bodies    []spatial.Body

	stats SimStats
}

// NewSimulation builds a simulation over catalog. The catalog is shared by
// reference and must not be mutated afterwards.
func NewSimulation(cfg config.AppConfig, catalog *Catalog, opts SimulationOptions) (*Simulation, error) {
	if catalog == nil {
		return nil, fmt.Errorf("simulation: %w: nil catalog", ErrInvalidDefinition)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}

	seed := cfg.Combat.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	s := &Simulation{
		cfg:         cfg,
		catalog:     catalog,
		log:         logger.For("simulation"),
		presenter:   opts.Presenter,
		progression: opts.Progression,
		events:      opts.Events,
		intents:     opts.Intents,
		rng:         rng,
		seed:        seed,
		bounds:      spatial.Centered(cfg.World.Width, cfg.World.Height),
		enemies:     make(map[string]*Enemy),
	}
	if s.presenter == nil {
		s.presenter = &NopPresenter{}
	}
	if s.progression == nil {
		s.progression = &Wallet{}
	}
	if s.events == nil {
		s.events = discardSink{}
	}

	for _, id := range cfg.Player.Loadout {
		if _, err := catalog.Attack(id); err != nil {
			return nil, fmt.Errorf("simulation: loadout: %w", err)
		}
	}

	var fusion *AttackDefinition
	if catalog.Combo.Fusion != "" {
		fusion, _ = catalog.Attack(catalog.Combo.Fusion)
	}

	s.player = NewPlayer(cfg.Player)
	s.resolver = NewResolver(cfg.Combat, rng)
	s.statuses = NewStatusManager(s.presenter)
	s.cooldowns = NewCooldowns()
	s.combo = NewComboTracker(PlayerID, catalog.Combo, fusion, cfg.Combat.ComboWindow, s.cooldowns)
	s.session = NewSessionTracker(cfg.Combat.ExitDelay)
	s.casts = NewTaskRunner(cfg.Combat.Debug)
	s.spawns = NewTaskRunner(cfg.Combat.Debug)
	s.waves = NewWaveScheduler(cfg.Waves, catalog.Waves, s.spawns, s, s.progression, rng)
	s.index = NewGridIndex(cfg.World, cfg.Combat.HitRadius)
	s.crowd = spatial.NewSweepAndPrune(cfg.World.MaxEntities)

	s.session.Subscribe(s.onSessionChange)
	s.waves.OnWaveStart(s.onWaveStart)
	s.waves.OnWaveComplete(s.onWaveComplete)

	if cfg.Waves.AutoStart {
		s.waves.Start()
	}
	return s, nil
}

// Step advances the simulation by dt seconds. Order within a tick:
// intents, status effects, casts, enemy behavior, spawner, combo window,
// session timeout, energy regeneration.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.tick++
	s.stats.Ticks++
	s.clock += dt
	now := s.clock

	if s.intents != nil {
		s.intents.Drain(s.applyIntent)
	}

	s.tickStatuses(dt)
	s.player.UpdateMovement(dt, s.bounds)
	s.rebuildIndex()

	s.casts.Tick(now)

	for _, e := range s.order {
		if !e.IsDead() {
			e.Evaluate(now, dt, s.player.Combatant)
			e.Pos.X = clampFloat(e.Pos.X, s.bounds.MinX, s.bounds.MaxX)
			e.Pos.Y = clampFloat(e.Pos.Y, s.bounds.MinY, s.bounds.MaxY)
		}
	}
	s.separateEnemies()

	s.spawns.Tick(now)
	s.combo.Tick(dt)
	s.session.Tick(now)
	s.player.RegenEnergy(dt)
	s.pruneDead()

	s.events.EmitSimple(EventTypeTick, s.tick, "", TickPayload{
		RNGSeed:     s.seed,
		EnemyCount:  len(s.order),
		DeltaTimeNs: int64(dt * 1e9),
		SimTime:     now,
	})
}

// UseAttack starts a player cast of attack id.
func (s *Simulation) UseAttack(id string) error {
	p := s.player
	if !p.Alive {
		return ErrPlayerDead
	}
	attack, err := s.catalog.Attack(id)
	if err != nil {
		return err
	}
	if fusion := s.combo.Fusion(); fusion != nil && fusion.ID == id {
		return ErrAutomaticAttack
	}
	if !p.HasInLoadout(id) {
		return fmt.Errorf("%w: %q", ErrNotInLoadout, id)
	}
	if p.Stunned {
		return ErrPlayerStunned
	}
	if p.Casting() {
		return ErrCasting
	}
	if rem := s.cooldowns.Remaining(p.ID, attack, s.clock); rem > 0 {
		return fmt.Errorf("%w: %.2fs remaining", ErrOnCooldown, rem)
	}
	if p.Energy+timeEpsilon < attack.EnergyCost {
		return fmt.Errorf("%w: need %.0f, have %.0f", ErrNotEnoughEnergy, attack.EnergyCost, p.Energy)
	}

	s.cooldowns.Engage(p.ID, attack, s.clock)
	p.Energy -= attack.EnergyCost
	if p.Energy < 0 {
		p.Energy = 0
	}
	p.cast = s.spawnCast(p.Combatant, attack)
	p.casting = attack.ID
	return nil
}

// Move sets the player's movement direction. A zero vector stops.
func (s *Simulation) Move(dir Vec2) {
	p := s.player
	if dir.IsZero() {
		p.MoveDir = Vec2{}
		return
	}
	p.MoveDir = dir.Norm()
	p.Facing = p.MoveDir
}

// Face turns the player toward dir without moving.
func (s *Simulation) Face(dir Vec2) {
	if !dir.IsZero() {
		s.player.Facing = dir.Norm()
	}
}

// StartWaves begins wave 1 when waves were not auto-started.
func (s *Simulation) StartWaves() bool { return s.waves.Start() }

// SkipToWave clears live enemies without rewards and starts wave n.
// It is rejected while the scheduler is stopped by player death.
func (s *Simulation) SkipToWave(n int) error {
	if !s.player.Alive || s.waves.Phase() == PhaseStopped {
		return ErrPlayerDead
	}
	return s.waves.SkipToWave(n)
}

// Reset restarts the session: every task is cancelled, enemies are removed,
// the player respawns and, with auto-start, wave 1 begins again.
func (s *Simulation) Reset() {
	s.casts.CancelAll()
	s.waves.Reset()
	s.spawns.CancelAll()

	s.order = s.order[:0]
	clear(s.enemies)

	s.statuses.Reset()
	s.cooldowns.Reset()
	s.combo.Reset()
	s.session.Reset()
	s.player.Respawn()
	s.stats = SimStats{Ticks: s.stats.Ticks}

	s.log.WithField("sim_time", s.clock).Info("session reset")
	if s.cfg.Waves.AutoStart {
		s.waves.Start()
	}
}

// applyIntent routes one decoded intent. Rejections are counted and logged.
func (s *Simulation) applyIntent(in intent.Intent) {
	var err error
	switch in.Kind {
	case intent.KindUseAttack:
		err = s.UseAttack(in.AttackID)
	case intent.KindMove:
		s.Move(Vec2{X: in.X, Y: in.Y})
	case intent.KindFace:
		s.Face(Vec2{X: in.X, Y: in.Y})
	case intent.KindStop:
		s.Move(Vec2{})
	default:
		err = intent.ErrUnknownKind
	}
	if err != nil {
		s.stats.IntentsRejected++
		s.log.WithFields(logrus.Fields{
			"kind":      in.Kind,
			"attack_id": in.AttackID,
		}).WithError(err).Debug("intent rejected")
	}
}

// tickStatuses advances effects on the player, then enemies in spawn order.
// Periodic damage goes through dealDamage like any hit.
func (s *Simulation) tickStatuses(dt float64) {
	s.tickStatusesOf(s.player.Combatant, dt)
	for _, e := range s.order {
		if !e.IsDead() {
			s.tickStatusesOf(e.Combatant, dt)
		}
	}
}

func (s *Simulation) tickStatusesOf(target *Combatant, dt float64) {
	res := s.statuses.Tick(target, dt)
	for _, td := range res.Fired {
		if !target.Alive {
			break
		}
		s.dealDamage(s.combatant(td.Effect.Source), target, td.Amount, td.Effect.Def.ID, false)
	}
	for _, eff := range res.Expired {
		s.events.EmitSimple(EventTypeStatusExpired, s.tick, target.ID, StatusPayload{
			TargetID: target.ID,
			EffectID: eff.Def.ID,
			SourceID: eff.Source,
		})
	}
}

func (s *Simulation) rebuildIndex() {
	list := make([]*Combatant, 0, len(s.order))
	for _, e := range s.order {
		list = append(list, e.Combatant)
	}
	s.index.Rebuild(list)
}

// separateEnemies pushes overlapping live enemies apart, half each, so
// crowds chasing the player do not collapse onto one point.
func (s *Simulation) separateEnemies() {
	s.bodies = s.bodies[:0]
	live := make([]*Enemy, 0, len(s.order))
	for _, e := range s.order {
		if e.IsDead() {
			continue
		}
		r := e.Radius
		if r <= 0 {
			r = s.cfg.Combat.HitRadius
		}
		s.bodies = append(s.bodies, spatial.Body{X: e.Pos.X, Y: e.Pos.Y, Radius: r})
		live = append(live, e)
	}
	if len(live) < 2 {
		return
	}

	for _, pair := range s.crowd.Overlapping(s.bodies) {
		a, b := live[pair.A], live[pair.B]
		d := b.Pos.Sub(a.Pos)
		dist := d.Len()
		overlap := s.bodies[pair.A].Radius + s.bodies[pair.B].Radius - dist
		if overlap <= 0 {
			continue
		}
		dir := Vec2{X: 1}
		if dist > timeEpsilon {
			dir = d.Scale(1 / dist)
		}
		push := dir.Scale(overlap / 2)
		a.Pos = a.Pos.Sub(push)
		b.Pos = b.Pos.Add(push)
	}
}

// combatant looks up a live or dead combatant by ID.
func (s *Simulation) combatant(id string) *Combatant {
	if id == PlayerID {
		return s.player.Combatant
	}
	if e, ok := s.enemies[id]; ok {
		return e.Combatant
	}
	return nil
}

// Cast routine cursor positions.
const (
	castWindup = iota
	castRecover
	castFinished
)

// castRoutine waits out the cast delay, resolves the attack if the caster
// can still act, then holds for the animation.
type castRoutine struct {
	sim      *Simulation
	attacker *Combatant
	attack   *AttackDefinition
	started  float64
	cursor   int
}

func (r *castRoutine) Resume(now float64) Wait {
	switch r.cursor {
	case castWindup:
		if remaining := r.started + r.attack.CastDelay - now; remaining > timeEpsilon {
			return Sleep(remaining)
		}
		r.cursor = castRecover
		if r.attacker.Alive && !r.attacker.Stunned {
			r.sim.performAttack(r.attacker, r.attack, now)
		}
		if r.attack.AnimDuration > 0 {
			return Sleep(r.attack.AnimDuration)
		}
		return Done()
	case castRecover:
		r.cursor = castFinished
	}
	return Done()
}

func (s *Simulation) spawnCast(attacker *Combatant, attack *AttackDefinition) *Task {
	name := "cast:" + attacker.ID + ":" + attack.ID
	return s.casts.Spawn(name, &castRoutine{sim: s, attacker: attacker, attack: attack, started: s.clock})
}

// performAttack resolves attack from attacker and applies the hits.
// Player hits feed the combo tracker, which may fire the fusion attack.
func (s *Simulation) performAttack(attacker *Combatant, attack *AttackDefinition, now float64) []ResolvedHit {
	var candidates []*Combatant
	if attacker.Faction == FactionPlayer {
		candidates = s.index.FindTargetsInShape(attacker.Pos, attack.Reach())
	} else if s.player.Alive {
		candidates = []*Combatant{s.player.Combatant}
	}

	hits := s.resolver.Resolve(attack, attacker, candidates)
	s.stats.AttacksResolved++
	s.presenter.PlayEffect(attack.VFX, attacker.Pos)
	if attack.SFX != "" {
		s.presenter.PlaySound(attack.SFX)
	}
	s.events.EmitSimple(EventTypeAttack, s.tick, attacker.ID, AttackPayload{
		AttackerID: attacker.ID,
		AttackID:   attack.ID,
		Hits:       len(hits),
	})

	for _, hit := range hits {
		s.stats.Hits++
		if hit.Crit {
			s.stats.Crits++
		}
		s.dealDamage(attacker, hit.Target, hit.Damage, attack.ID, hit.Crit)
		for _, def := range hit.Effects {
			if s.statuses.Apply(hit.Target, def, attacker.ID) == nil {
				continue
			}
			s.stats.StatusesApplied++
			s.events.EmitSimple(EventTypeStatusApplied, s.tick, attacker.ID, StatusPayload{
				TargetID: hit.Target.ID,
				EffectID: def.ID,
				SourceID: attacker.ID,
			})
		}
	}

	if attacker.Faction == FactionPlayer && len(hits) > 0 {
		if fusion := s.combo.OnAttackLanded(attacker, attack, now); fusion != nil {
			s.stats.FusionTriggers++
			s.events.EmitSimple(EventTypeFusion, s.tick, attacker.ID, FusionPayload{
				OwnerID:  attacker.ID,
				AttackID: fusion.ID,
				Triggers: s.combo.State().Triggers,
			})
			s.log.WithFields(logrus.Fields{
				"attack_id": fusion.ID,
				"triggers":  s.combo.State().Triggers,
			}).Info("fusion triggered")
			s.rebuildIndex()
			s.performAttack(attacker, fusion, now)
		}
	}
	return hits
}

// dealDamage is the single damage path for hits and periodic effects.
// source may be nil for effects whose applier is gone.
func (s *Simulation) dealDamage(source, target *Combatant, amount int, cause string, crit bool) int {
	dealt, killed := target.ApplyDamage(amount)
	if dealt == 0 {
		return 0
	}

	sourceID := ""
	if source != nil {
		sourceID = source.ID
	}
	if target.Faction == FactionPlayer {
		s.stats.DamageTaken += dealt
	} else if sourceID == PlayerID {
		s.stats.DamageDealt += dealt
	}
	s.events.EmitSimple(EventTypeDamage, s.tick, sourceID, DamagePayload{
		AttackerID: sourceID,
		VictimID:   target.ID,
		Damage:     dealt,
		VictimHP:   target.HP,
		Source:     cause,
		Crit:       crit,
	})

	if killed {
		s.onKilled(sourceID, target)
		return dealt
	}
	if e, ok := s.enemies[target.ID]; ok {
		e.OnHit(s.clock)
	}
	return dealt
}

func (s *Simulation) onKilled(killerID string, target *Combatant) {
	s.statuses.Clear(target)
	if target.Faction == FactionPlayer {
		s.playerDied(killerID)
		return
	}
	if e, ok := s.enemies[target.ID]; ok {
		e.Die(s.clock)
	}
}

func (s *Simulation) playerDied(killerID string) {
	p := s.player
	p.Deaths++
	p.MoveDir = Vec2{}
	if p.cast != nil {
		s.casts.Cancel(p.cast)
	}
	s.combo.Reset()
	s.waves.OnPlayerDeath()

	s.events.EmitSimple(EventTypePlayerDeath, s.tick, killerID, KillPayload{
		KillerID: killerID,
		VictimID: p.ID,
	})
	s.log.WithFields(logrus.Fields{
		"killer_id": killerID,
		"wave":      s.waves.State().WaveIndex,
		"sim_time":  s.clock,
	}).Warn("player died")
}

// pruneDead drops dead enemies from the evaluation list.
func (s *Simulation) pruneDead() {
	kept := s.order[:0]
	for _, e := range s.order {
		if e.IsDead() {
			delete(s.enemies, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(s.order); i++ {
		s.order[i] = nil
	}
	s.order = kept
}

// --- Spawner ---

// SpawnEnemy creates an enemy for the wave scheduler.
func (s *Simulation) SpawnEnemy(req SpawnRequest) string {
	if s.cfg.World.MaxEntities > 0 && len(s.order)+1 >= s.cfg.World.MaxEntities {
		s.log.WithField("max_entities", s.cfg.World.MaxEntities).Warn("entity cap reached, spawn skipped")
		return ""
	}
	arch, err := s.catalog.Archetype(req.Archetype)
	if err != nil {
		s.log.WithError(err).Error("spawn failed")
		return ""
	}
	attack, err := s.catalog.Attack(arch.AttackID)
	if err != nil {
		s.log.WithError(err).Error("spawn failed")
		return ""
	}

	s.nextEnemyID++
	pos := Vec2{
		X: clampFloat(req.Pos.X, s.bounds.MinX, s.bounds.MaxX),
		Y: clampFloat(req.Pos.Y, s.bounds.MinY, s.bounds.MaxY),
	}
	e := NewEnemy(arch, attack, EnemyOptions{
		ID:               fmt.Sprintf("enemy_%d", s.nextEnemyID),
		Pos:              pos,
		Wave:             req.Wave,
		Boss:             req.Boss,
		HealthMultiplier: req.HealthMultiplier,
		DamageMultiplier: req.DamageMultiplier,
	}, s.session, s)
	s.enemies[e.ID] = e
	s.order = append(s.order, e)
	s.stats.Spawned++

	s.presenter.PlayEffect("spawn", pos)
	s.events.EmitSimple(EventTypeSpawn, s.tick, e.ID, SpawnPayload{
		EnemyID:   e.ID,
		Archetype: arch.ID,
		Wave:      req.Wave,
		X:         pos.X,
		Y:         pos.Y,
		MaxHP:     e.MaxHP,
		Boss:      e.Boss,
	})
	if e.Boss {
		s.log.WithFields(logrus.Fields{"enemy_id": e.ID, "wave": req.Wave, "max_hp": e.MaxHP}).Info("boss spawned")
	}
	return e.ID
}

// ClearEnemy removes a live enemy without kill credit (wave skip).
func (s *Simulation) ClearEnemy(id string) {
	e, ok := s.enemies[id]
	if !ok || e.IsDead() {
		return
	}
	e.Cleared = true
	s.statuses.Clear(e.Combatant)
	e.Kill()
	e.Die(s.clock)
}

// PlayerPosition reports the live player position.
func (s *Simulation) PlayerPosition() (Vec2, bool) {
	if s.player == nil || !s.player.Alive {
		return Vec2{}, false
	}
	return s.player.Pos, true
}

// --- enemyController ---

func (s *Simulation) startCast(e *Enemy, attack *AttackDefinition, now float64) *Task {
	if attack == nil {
		return nil
	}
	return s.spawnCast(e.Combatant, attack)
}

func (s *Simulation) enemyTransition(e *Enemy, from, to EnemyState, now float64) {
	s.events.EmitSimple(EventTypeStateChange, s.tick, e.ID, StateChangePayload{
		EnemyID: e.ID,
		From:    string(from),
		To:      string(to),
	})
}

func (s *Simulation) enemyDied(e *Enemy, now float64) {
	if e.cast != nil {
		s.casts.Cancel(e.cast)
	}
	s.cooldowns.Forget(e.ID)
	credited := s.waves.EnemyDefeated(e.ID)

	if credited && !e.Cleared {
		s.stats.Kills++
		s.player.Kills++
		s.progression.GrantExperience(e.Archetype.ExpReward)
		s.progression.GrantCurrency(e.Archetype.CurrencyReward)
	}
	killerID := PlayerID
	if e.Cleared {
		killerID = ""
	}
	s.presenter.PlayEffect("death", e.Pos)
	s.events.EmitSimple(EventTypeKill, s.tick, killerID, KillPayload{
		VictimID:   e.ID,
		KillerID:   killerID,
		TotalKills: s.waves.State().TotalKills,
		Cleared:    e.Cleared,
	})
}

// --- Observers ---

func (s *Simulation) onSessionChange(ev SessionEvent) {
	t := EventTypeSessionExit
	if ev.InCombat {
		t = EventTypeSessionEnter
	}
	s.events.EmitSimple(t, s.tick, "", SessionPayload{InCombat: ev.InCombat, SimTime: ev.At})
	s.log.WithFields(logrus.Fields{"in_combat": ev.InCombat, "sim_time": ev.At}).Debug("combat session changed")
}

func (s *Simulation) onWaveStart(w WaveDefinition) {
	s.presenter.PlaySound("wave_start")
	s.events.EmitSimple(EventTypeWaveStart, s.tick, "", WavePayload{
		Wave:       w.Index,
		EnemyCount: w.EnemyCount,
		Boss:       w.Boss,
	})
	s.log.WithFields(logrus.Fields{
		"wave":     w.Index,
		"enemies":  w.EnemyCount,
		"interval": w.SpawnInterval,
		"boss":     w.Boss,
	}).Info("wave started")
}

func (s *Simulation) onWaveComplete(w WaveDefinition) {
	s.stats.WavesCleared++
	s.presenter.PlaySound("wave_complete")
	s.events.EmitSimple(EventTypeWaveComplete, s.tick, "", WavePayload{
		Wave:           w.Index,
		EnemyCount:     w.EnemyCount,
		ExpReward:      w.ExpReward,
		CurrencyReward: w.CurrencyReward,
		Boss:           w.Boss,
	})
	s.log.WithFields(logrus.Fields{
		"wave":     w.Index,
		"exp":      w.ExpReward,
		"currency": w.CurrencyReward,
	}).Info("wave cleared")
}

// --- Accessors ---

// Player returns the player. Callers must not retain it across ticks
// without holding the owner's lock.
func (s *Simulation) Player() *Player { return s.player }

// Enemy returns a live enemy by ID.
func (s *Simulation) Enemy(id string) (*Enemy, bool) {
	e, ok := s.enemies[id]
	return e, ok
}

// Enemies returns live enemies in spawn order.
func (s *Simulation) Enemies() []*Enemy {
	out := make([]*Enemy, 0, len(s.order))
	for _, e := range s.order {
		if !e.IsDead() {
			out = append(out, e)
		}
	}
	return out
}

func (s *Simulation) Clock() float64                  { return s.clock }
func (s *Simulation) TickNumber() uint64              { return s.tick }
func (s *Simulation) Seed() int64                     { return s.seed }
func (s *Simulation) Catalog() *Catalog               { return s.catalog }
func (s *Simulation) Waves() *WaveScheduler           { return s.waves }
func (s *Simulation) Session() *SessionTracker        { return s.session }
func (s *Simulation) Combo() *ComboTracker            { return s.combo }
func (s *Simulation) Statuses() *StatusManager        { return s.statuses }
func (s *Simulation) Cooldowns() *Cooldowns           { return s.cooldowns }
func (s *Simulation) Resolver() *Resolver             { return s.resolver }
func (s *Simulation) Progression() Progression        { return s.progression }
func (s *Simulation) Stats() SimStats                 { return s.stats }
func (s *Simulation) SpatialStats() spatial.GridStats { return s.index.Stats() }
func (s *Simulation) PendingTasks() int               { return s.casts.Pending() + s.spawns.Pending() }
