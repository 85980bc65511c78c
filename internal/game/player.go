package game

import (
	"fusion-arena/internal/config"
	"fusion-arena/internal/game/spatial"
)

// PlayerID is the combatant ID of the single player in a simulation.
const PlayerID = "player"

// Player is the controllable combatant. Its attacks come from intents.
type Player struct {
	*Combatant

	Energy      float64  `json:"energy"`
	MaxEnergy   float64  `json:"maxEnergy"`
	EnergyRegen float64  `json:"energyRegen"` // per second
	Loadout     []string `json:"loadout"`

	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`

	// MoveDir is the unit movement direction; zero means standing still.
	MoveDir Vec2 `json:"moveDir"`

	baseSpeed float64
	spawnPos  Vec2
	cast      *Task
	casting   string
}

// NewPlayer creates a player at the world origin from config.
func NewPlayer(cfg config.PlayerConfig) *Player {
	p := &Player{
		Combatant: NewCombatant(CombatantOptions{
			ID:      PlayerID,
			Name:    "Player",
			Faction: FactionPlayer,
			MaxHP:   cfg.MaxHP,
			Defense: cfg.Defense,
			Level:   cfg.Level,
			Speed:   cfg.Speed,
			Radius:  0.5,
		}),
		Energy:      cfg.MaxEnergy,
		MaxEnergy:   cfg.MaxEnergy,
		EnergyRegen: cfg.EnergyRegen,
		Loadout:     append([]string(nil), cfg.Loadout...),
		baseSpeed:   cfg.Speed,
	}
	return p
}

// HasInLoadout reports whether attackID is one of the usable attacks.
func (p *Player) HasInLoadout(attackID string) bool {
	for _, id := range p.Loadout {
		if id == attackID {
			return true
		}
	}
	return false
}

// Casting reports whether a player attack is winding up or recovering.
func (p *Player) Casting() bool { return p.cast.Active() }

// CastingAttack returns the ID of the attack in flight, or "".
func (p *Player) CastingAttack() string {
	if !p.Casting() {
		return ""
	}
	return p.casting
}

// RegenEnergy restores energy over dt seconds, capped at MaxEnergy.
func (p *Player) RegenEnergy(dt float64) {
	if !p.Alive || p.EnergyRegen <= 0 {
		return
	}
	p.Energy += p.EnergyRegen * dt
	if p.Energy > p.MaxEnergy {
		p.Energy = p.MaxEnergy
	}
}

// UpdateMovement moves along MoveDir at the current speed, staying inside
// bounds. Stunned or dead players do not move.
func (p *Player) UpdateMovement(dt float64, bounds spatial.Bounds) {
	if !p.Alive || p.Stunned || p.MoveDir.IsZero() {
		return
	}
	p.Pos = p.Pos.Add(p.MoveDir.Scale(p.Speed * dt))
	p.Pos.X = clampFloat(p.Pos.X, bounds.MinX, bounds.MaxX)
	p.Pos.Y = clampFloat(p.Pos.Y, bounds.MinY, bounds.MaxY)
}

// Respawn restores the player to full health and energy at its spawn point.
func (p *Player) Respawn() {
	p.HP = p.MaxHP
	p.Alive = true
	p.Stunned = false
	p.Speed = p.baseSpeed
	p.Energy = p.MaxEnergy
	p.Pos = p.spawnPos
	p.MoveDir = Vec2{}
	p.Facing = Vec2{X: 1}
	p.cast = nil
	p.casting = ""
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
