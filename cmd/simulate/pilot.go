package main

import (
	"math"

	"fusion-arena/internal/game"
)

// pilot drives the player: close in on the nearest enemy, then cast the
// first ready attack from its rotation. The rotation opens with the combo
// markers so runs exercise the fusion.
type pilot struct {
	sim      *game.Simulation
	rotation []string
	reach    float64
}

func newPilot(sim *game.Simulation) *pilot {
	p := &pilot{sim: sim, reach: math.Inf(1)}
	combo := sim.Catalog().Combo
	rotation := []string{combo.MarkerA, combo.MarkerB}
	for _, id := range sim.Player().Loadout {
		if id != combo.MarkerA && id != combo.MarkerB {
			rotation = append(rotation, id)
		}
	}
	for _, id := range rotation {
		a, err := sim.Catalog().Attack(id)
		if err != nil || !sim.Player().HasInLoadout(id) {
			continue
		}
		p.rotation = append(p.rotation, id)
		p.reach = math.Min(p.reach, a.Reach())
	}
	if math.IsInf(p.reach, 1) {
		p.reach = 1
	}
	return p
}

// Act issues this tick's move and attack.
func (p *pilot) Act() {
	player := p.sim.Player()
	if !player.Alive {
		return
	}

	target, dist := p.nearest()
	if target == nil {
		p.sim.Move(game.Vec2{})
		return
	}

	dir := target.Pos.Sub(player.Pos)
	if dist > p.reach*0.9 {
		p.sim.Move(dir)
		return
	}
	p.sim.Move(game.Vec2{})
	p.sim.Face(dir)

	if player.Casting() {
		return
	}
	for _, id := range p.rotation {
		if p.sim.UseAttack(id) == nil {
			return
		}
	}
}

func (p *pilot) nearest() (*game.Enemy, float64) {
	pos := p.sim.Player().Pos
	var best *game.Enemy
	bestDist := math.Inf(1)
	for _, e := range p.sim.Enemies() {
		if e.IsDead() {
			continue
		}
		if d := pos.DistanceTo(e.Pos); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, bestDist
}
