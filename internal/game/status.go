package game

// ActiveStatusEffect is one running instance of a status effect.
type ActiveStatusEffect struct {
	Def       *StatusEffectDefinition
	Remaining float64      // seconds until expiry
	NextTick  float64      // seconds until the next periodic tick
	Handle    EffectHandle // presentation handle, stopped on removal
	Source    string       // ID of the combatant that applied it
}

// TickDamage is one periodic damage event produced by Tick.
type TickDamage struct {
	Effect *ActiveStatusEffect
	Amount int
}

// TickResult lists what happened to a target during one Tick.
type TickResult struct {
	Fired   []TickDamage
	Expired []*ActiveStatusEffect
}

// statusTrack holds the effects of one target and the speed baseline
// recorded when the first movement modifier was applied.
type statusTrack struct {
	target      *Combatant
	effects     []*ActiveStatusEffect
	baseline    float64
	hasBaseline bool
}

// StatusManager owns every active timed effect in a simulation.
// Reapplying an effect that is already running adds an independent
// instance; durations are not refreshed.
type StatusManager struct {
	tracks    map[string]*statusTrack
	presenter Presenter
}

// NewStatusManager creates a manager that reports cues to presenter.
func NewStatusManager(presenter Presenter) *StatusManager {
	if presenter == nil {
		presenter = &NopPresenter{}
	}
	return &StatusManager{
		tracks:    make(map[string]*statusTrack),
		presenter: presenter,
	}
}

// Apply starts a new instance of def on target. Applying to a dead target
// is a no-op and returns nil. It panics on a nil definition.
func (m *StatusManager) Apply(target *Combatant, def *StatusEffectDefinition, source string) *ActiveStatusEffect {
	if def == nil {
		panic("game: Apply called with nil status effect")
	}
	if target == nil || !target.Alive {
		return nil
	}

	tr := m.track(target)
	if (def.Stun || def.SlowPercent > 0) && !tr.hasBaseline {
		tr.baseline = target.Speed
		tr.hasBaseline = true
	}

	eff := &ActiveStatusEffect{
		Def:       def,
		Remaining: def.Duration,
		NextTick:  def.TickInterval,
		Handle:    m.presenter.PlayEffect(def.VFX, target.Pos),
		Source:    source,
	}
	if def.SFX != "" {
		m.presenter.PlaySound(def.SFX)
	}
	tr.effects = append(tr.effects, eff)
	m.refresh(tr)
	return eff
}

// Tick advances every effect on target by dt. Periodic damage is reported,
// not applied: the caller routes it through the normal damage path.
func (m *StatusManager) Tick(target *Combatant, dt float64) TickResult {
	var res TickResult
	tr, ok := m.tracks[target.ID]
	if !ok || dt <= 0 {
		return res
	}

	for _, eff := range tr.effects {
		eff.Remaining -= dt
		def := eff.Def
		if def.DamagePerTick > 0 && def.TickInterval > 0 {
			eff.NextTick -= dt
			// A deadline counts only if it fell before expiry.
			for eff.NextTick <= timeEpsilon && eff.NextTick <= eff.Remaining+timeEpsilon {
				res.Fired = append(res.Fired, TickDamage{Effect: eff, Amount: def.DamagePerTick})
				eff.NextTick += def.TickInterval
			}
		}
		if eff.Remaining <= timeEpsilon {
			res.Expired = append(res.Expired, eff)
		}
	}

	if len(res.Expired) > 0 {
		kept := tr.effects[:0]
		for _, eff := range tr.effects {
			if eff.Remaining > timeEpsilon {
				kept = append(kept, eff)
			} else {
				m.presenter.StopEffect(eff.Handle)
			}
		}
		tr.effects = kept
		m.refresh(tr)
		if len(tr.effects) == 0 {
			delete(m.tracks, target.ID)
		}
	}
	return res
}

// Active returns a copy of the effects running on target.
func (m *StatusManager) Active(target *Combatant) []*ActiveStatusEffect {
	tr, ok := m.tracks[target.ID]
	if !ok {
		return nil
	}
	out := make([]*ActiveStatusEffect, len(tr.effects))
	copy(out, tr.effects)
	return out
}

// Has reports whether an instance of effectID runs on target.
func (m *StatusManager) Has(target *Combatant, effectID string) bool {
	tr, ok := m.tracks[target.ID]
	if !ok {
		return false
	}
	for _, eff := range tr.effects {
		if eff.Def.ID == effectID {
			return true
		}
	}
	return false
}

// Clear removes every effect from target and reverts its modifiers.
// Called on death and despawn.
func (m *StatusManager) Clear(target *Combatant) {
	tr, ok := m.tracks[target.ID]
	if !ok {
		return
	}
	for _, eff := range tr.effects {
		m.presenter.StopEffect(eff.Handle)
	}
	tr.effects = nil
	m.refresh(tr)
	delete(m.tracks, target.ID)
}

// Reset drops all tracks without touching targets.
func (m *StatusManager) Reset() {
	for _, tr := range m.tracks {
		for _, eff := range tr.effects {
			m.presenter.StopEffect(eff.Handle)
		}
	}
	clear(m.tracks)
}

// Count returns the number of active instances across all targets.
func (m *StatusManager) Count() int {
	n := 0
	for _, tr := range m.tracks {
		n += len(tr.effects)
	}
	return n
}

func (m *StatusManager) track(target *Combatant) *statusTrack {
	tr, ok := m.tracks[target.ID]
	if !ok {
		tr = &statusTrack{target: target}
		m.tracks[target.ID] = tr
	}
	return tr
}

// refresh recomputes stun and speed from the remaining effects.
// Slows stack multiplicatively; the baseline is restored only once no
// movement modifier remains.
func (m *StatusManager) refresh(tr *statusTrack) {
	if !tr.hasBaseline {
		return
	}
	stunned := false
	mult := 1.0
	modifiers := 0
	for _, eff := range tr.effects {
		if eff.Def.Stun {
			stunned = true
			modifiers++
		}
		if eff.Def.SlowPercent > 0 {
			mult *= 1 - eff.Def.SlowPercent
			modifiers++
		}
	}

	t := tr.target
	t.Stunned = stunned && t.Alive
	t.Speed = tr.baseline * mult
	if modifiers == 0 {
		tr.hasBaseline = false
	}
}
