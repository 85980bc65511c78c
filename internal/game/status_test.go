package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPresenter counts presentation cues.
type recordingPresenter struct {
	NopPresenter
	played  []string
	stopped []EffectHandle
	sounds  []string
}

func (p *recordingPresenter) PlayEffect(id string, pos Vec2) EffectHandle {
	p.played = append(p.played, id)
	return p.NopPresenter.PlayEffect(id, pos)
}

func (p *recordingPresenter) StopEffect(h EffectHandle) { p.stopped = append(p.stopped, h) }
func (p *recordingPresenter) PlaySound(id string)       { p.sounds = append(p.sounds, id) }

var (
	testStun    = &StatusEffectDefinition{ID: "stun", Duration: 1, Stun: true, VFX: "vfx_stun", SFX: "sfx_stun"}
	testBurn    = &StatusEffectDefinition{ID: "burn", Duration: 4, TickInterval: 1, DamagePerTick: 2, VFX: "vfx_burn"}
	testChill   = &StatusEffectDefinition{ID: "chill", Duration: 2, SlowPercent: 0.3}
	testCripple = &StatusEffectDefinition{ID: "cripple", Duration: 3, SlowPercent: 0.5}
)

// TestStatusStun tests that a stun holds for its duration and then clears.
func TestStatusStun(t *testing.T) {
	pres := &recordingPresenter{}
	m := NewStatusManager(pres)
	target := testFighter("t", FactionEnemy, Vec2{}, 0)

	eff := m.Apply(target, testStun, "src")
	require.NotNil(t, eff)
	assert.True(t, target.Stunned)
	assert.Equal(t, []string{"vfx_stun"}, pres.played)
	assert.Equal(t, []string{"sfx_stun"}, pres.sounds)

	res := m.Tick(target, 0.5)
	assert.Empty(t, res.Expired)
	assert.True(t, target.Stunned)

	res = m.Tick(target, 0.5)
	require.Len(t, res.Expired, 1)
	assert.False(t, target.Stunned)
	assert.InDelta(t, 3.0, target.Speed, 1e-9)
	assert.Equal(t, []EffectHandle{eff.Handle}, pres.stopped)
	assert.Equal(t, 0, m.Count())
}

// TestStatusSlowStacking tests multiplicative slows and baseline restoration.
func TestStatusSlowStacking(t *testing.T) {
	m := NewStatusManager(nil)
	target := testFighter("t", FactionEnemy, Vec2{}, 0)

	m.Apply(target, testChill, "src")
	m.Apply(target, testCripple, "src")
	assert.InDelta(t, 3.0*0.7*0.5, target.Speed, 1e-9)

	m.Tick(target, 2)
	assert.InDelta(t, 3.0*0.5, target.Speed, 1e-9)
	assert.False(t, m.Has(target, "chill"))
	assert.True(t, m.Has(target, "cripple"))

	m.Tick(target, 1)
	assert.InDelta(t, 3.0, target.Speed, 1e-9)
}

// TestStatusPeriodicDamage tests tick counts for small and oversized steps.
func TestStatusPeriodicDamage(t *testing.T) {
	tests := []struct {
		name  string
		steps []float64
		fired int
	}{
		{"one second steps", []float64{1, 1, 1, 1}, 4},
		{"single oversized step stops at expiry", []float64{10}, 4},
		{"half second steps", []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 4},
		{"stop before expiry", []float64{2.5}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStatusManager(nil)
			target := testFighter("t", FactionEnemy, Vec2{}, 0)
			m.Apply(target, testBurn, "src")

			fired := 0
			for _, dt := range tt.steps {
				res := m.Tick(target, dt)
				for _, td := range res.Fired {
					assert.Equal(t, 2, td.Amount)
					assert.Equal(t, "src", td.Effect.Source)
					fired++
				}
			}
			assert.Equal(t, tt.fired, fired)
			assert.Equal(t, 100, target.HP, "damage is reported, not applied")
		})
	}
}

// TestStatusReapplyStacks tests that reapplying adds an independent instance.
func TestStatusReapplyStacks(t *testing.T) {
	m := NewStatusManager(nil)
	target := testFighter("t", FactionEnemy, Vec2{}, 0)

	m.Apply(target, testBurn, "a")
	m.Tick(target, 1)
	m.Apply(target, testBurn, "b")
	require.Equal(t, 2, m.Count())

	active := m.Active(target)
	assert.InDelta(t, 3.0, active[0].Remaining, 1e-9)
	assert.InDelta(t, 4.0, active[1].Remaining, 1e-9)

	m.Tick(target, 3)
	assert.Equal(t, 1, m.Count())
}

// TestStatusDeadTarget tests that dead targets take no effects.
func TestStatusDeadTarget(t *testing.T) {
	m := NewStatusManager(nil)
	target := testFighter("t", FactionEnemy, Vec2{}, 0)
	target.Kill()

	assert.Nil(t, m.Apply(target, testStun, "src"))
	assert.Equal(t, 0, m.Count())
}

// TestStatusClear tests that clearing reverts modifiers and stops visuals.
func TestStatusClear(t *testing.T) {
	pres := &recordingPresenter{}
	m := NewStatusManager(pres)
	target := testFighter("t", FactionEnemy, Vec2{}, 0)

	m.Apply(target, testStun, "src")
	m.Apply(target, testCripple, "src")
	m.Clear(target)

	assert.False(t, target.Stunned)
	assert.InDelta(t, 3.0, target.Speed, 1e-9)
	assert.Len(t, pres.stopped, 2)
	assert.Empty(t, m.Active(target))
}

// TestStatusApplyNilPanics tests the nil definition guard.
func TestStatusApplyNilPanics(t *testing.T) {
	m := NewStatusManager(nil)
	target := testFighter("t", FactionEnemy, Vec2{}, 0)
	assert.Panics(t, func() { m.Apply(target, nil, "src") })
}
