package game

import (
	"math"
	"math/rand"
	"sort"

	"fusion-arena/internal/config"
)

// CritMode overrides the critical-hit roll, used by tests and replays.
type CritMode uint8

const (
	CritRoll   CritMode = iota // Bernoulli trial with CritChance
	CritAlways                 // Every hit is critical
	CritNever                  // No hit is critical
)

// ResolvedHit is the outcome of one attack against one target.
type ResolvedHit struct {
	Target   *Combatant
	Damage   int
	Crit     bool
	Effects  []*StatusEffectDefinition // Effects whose apply roll succeeded
	Distance float64
}

// Resolver turns an attack use into a list of hits. It never mutates
// combatants; applying the hits is the caller's job.
type Resolver struct {
	critChance     float64
	critMultiplier float64
	hitRadius      float64
	rng            *rand.Rand

	// Crit overrides the roll when not CritRoll.
	Crit CritMode
}

// NewResolver creates a resolver drawing from rng.
// The same seed yields the same crit and effect outcomes.
func NewResolver(cfg config.CombatConfig, rng *rand.Rand) *Resolver {
	hitRadius := cfg.HitRadius
	if hitRadius <= 0 {
		hitRadius = 0.5
	}
	return &Resolver{
		critChance:     cfg.CritChance,
		critMultiplier: cfg.CritMultiplier,
		hitRadius:      hitRadius,
		rng:            rng,
	}
}

// ComputeDamage applies level scaling and defense.
// The result is never below 1.
func ComputeDamage(baseDamage float64, level, defense int) int {
	if level < 1 {
		level = 1
	}
	if baseDamage < 0 {
		baseDamage = 0
	}
	scaled := int(math.Round(baseDamage * (1 + 0.1*float64(level-1))))
	return max(1, scaled-defense)
}

// ApplyCrit multiplies damage by the crit multiplier, rounded.
func ApplyCrit(damage int, multiplier float64) int {
	return int(math.Round(float64(damage) * multiplier))
}

// SelectTargets returns the candidates hit by attack, ordered nearest first.
// ShapeNone yields at most one target.
func (r *Resolver) SelectTargets(attack *AttackDefinition, attacker *Combatant, candidates []*Combatant) []*Combatant {
	type scored struct {
		c   *Combatant
		key float64
	}

	hb := NewHitbox(attack, attacker)
	hits := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || c == attacker || !c.Alive {
			continue
		}
		radius := c.Radius
		if radius <= 0 {
			radius = r.hitRadius
		}
		if ok, key := hb.Check(c.Pos, radius); ok {
			hits = append(hits, scored{c, key})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].key != hits[j].key {
			return hits[i].key < hits[j].key
		}
		return hits[i].c.ID < hits[j].c.ID
	})

	if attack.Shape == ShapeNone && len(hits) > 1 {
		hits = hits[:1]
	}

	out := make([]*Combatant, len(hits))
	for i, h := range hits {
		out[i] = h.c
	}
	return out
}

// Resolve computes damage, crits and effect rolls for every target hit.
// It panics if attack or attacker is nil.
func (r *Resolver) Resolve(attack *AttackDefinition, attacker *Combatant, candidates []*Combatant) []ResolvedHit {
	if attack == nil {
		panic("game: Resolve called with nil attack")
	}
	if attacker == nil {
		panic("game: Resolve called with nil attacker")
	}
	if len(candidates) == 0 {
		return nil
	}

	targets := r.SelectTargets(attack, attacker, candidates)
	if len(targets) == 0 {
		return nil
	}

	base := float64(attack.BaseDamage) * attacker.DamageMultiplier
	hits := make([]ResolvedHit, 0, len(targets))
	for _, t := range targets {
		damage := ComputeDamage(base, attacker.Level, t.Defense)
		crit := r.rollCrit()
		if crit {
			damage = ApplyCrit(damage, r.critMultiplier)
		}

		var applied []*StatusEffectDefinition
		for _, ec := range attack.Effects {
			if ec.Effect != nil && r.roll(ec.Chance) {
				applied = append(applied, ec.Effect)
			}
		}

		hits = append(hits, ResolvedHit{
			Target:   t,
			Damage:   damage,
			Crit:     crit,
			Effects:  applied,
			Distance: attacker.Pos.DistanceTo(t.Pos),
		})
	}
	return hits
}

func (r *Resolver) rollCrit() bool {
	switch r.Crit {
	case CritAlways:
		return true
	case CritNever:
		return false
	}
	return r.roll(r.critChance)
}

// roll is a Bernoulli trial. Certain outcomes do not consume randomness.
func (r *Resolver) roll(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.rng.Float64() < p
}
