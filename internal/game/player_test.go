package game

import (
	"testing"

	"fusion-arena/internal/config"
	"fusion-arena/internal/game/spatial"

	"github.com/stretchr/testify/assert"
)

// TestNewPlayer tests player construction from config.
func TestNewPlayer(t *testing.T) {
	cfg := config.DefaultPlayer()
	p := NewPlayer(cfg)

	assert.Equal(t, PlayerID, p.ID)
	assert.Equal(t, FactionPlayer, p.Faction)
	assert.Equal(t, cfg.MaxHP, p.HP)
	assert.Equal(t, cfg.MaxEnergy, p.Energy)
	assert.Equal(t, Vec2{X: 1}, p.Facing)
	assert.True(t, p.HasInLoadout("slash"))
	assert.False(t, p.HasInLoadout("fusion_burst"))
	assert.False(t, p.Casting())
	assert.Empty(t, p.CastingAttack())

	// The loadout is copied.
	cfg.Loadout[0] = "changed"
	assert.Equal(t, "slash", p.Loadout[0])
}

// TestPlayerMovement tests movement, bounds clamping and stun.
func TestPlayerMovement(t *testing.T) {
	bounds := spatial.Centered(10, 10)
	tests := []struct {
		name    string
		dir     Vec2
		stunned bool
		dt      float64
		want    Vec2
	}{
		{"still", Vec2{}, false, 1, Vec2{}},
		{"right", Vec2{X: 1}, false, 0.5, Vec2{X: 3}},
		{"clamped", Vec2{Y: -1}, false, 10, Vec2{Y: -5}},
		{"stunned", Vec2{X: 1}, true, 1, Vec2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(config.DefaultPlayer())
			p.MoveDir = tt.dir
			p.Stunned = tt.stunned
			p.UpdateMovement(tt.dt, bounds)
			assert.InDelta(t, tt.want.X, p.Pos.X, 1e-9)
			assert.InDelta(t, tt.want.Y, p.Pos.Y, 1e-9)
		})
	}
}

// TestPlayerRegenEnergy tests regeneration caps and the dead case.
func TestPlayerRegenEnergy(t *testing.T) {
	p := NewPlayer(config.DefaultPlayer())
	p.Energy = 50
	p.RegenEnergy(2)
	assert.InDelta(t, 70.0, p.Energy, 1e-9)

	p.RegenEnergy(100)
	assert.Equal(t, p.MaxEnergy, p.Energy)

	p.Energy = 0
	p.Kill()
	p.RegenEnergy(1)
	assert.Zero(t, p.Energy)
}

// TestPlayerRespawn tests that respawn restores every transient field.
func TestPlayerRespawn(t *testing.T) {
	p := NewPlayer(config.DefaultPlayer())
	p.Pos = Vec2{X: 4, Y: 4}
	p.Facing = Vec2{Y: 1}
	p.MoveDir = Vec2{Y: 1}
	p.Speed = 1
	p.Energy = 3
	p.Kill()

	p.Respawn()
	assert.True(t, p.Alive)
	assert.Equal(t, p.MaxHP, p.HP)
	assert.Equal(t, Vec2{}, p.Pos)
	assert.Equal(t, Vec2{X: 1}, p.Facing)
	assert.True(t, p.MoveDir.IsZero())
	assert.Equal(t, 6.0, p.Speed)
	assert.Equal(t, p.MaxEnergy, p.Energy)
}
