package game

import (
	"sort"

	"fusion-arena/internal/config"
	"fusion-arena/internal/game/spatial"
)

// GridIndex implements Spatial on top of a uniform grid rebuilt each tick.
type GridIndex struct {
	grid      *spatial.SpatialGrid
	entities  []*Combatant
	hitRadius float64
	seen      []uint32
}

// NewGridIndex creates an index covering the configured world.
func NewGridIndex(world config.WorldConfig, hitRadius float64) *GridIndex {
	return &GridIndex{
		grid:      spatial.NewSpatialGrid(spatial.Centered(world.Width, world.Height), world.CellSize, world.MaxEntities),
		entities:  make([]*Combatant, 0, world.MaxEntities),
		hitRadius: hitRadius,
	}
}

// Rebuild replaces the indexed set with the live combatants in list.
func (g *GridIndex) Rebuild(list []*Combatant) {
	g.grid.Clear()
	g.entities = g.entities[:0]
	for _, c := range list {
		if c == nil || !c.Alive {
			continue
		}
		g.grid.Insert(uint32(len(g.entities)), c.Pos.X, c.Pos.Y)
		g.entities = append(g.entities, c)
	}
}

// FindTargetsInShape returns live combatants whose hit circle overlaps the
// query circle, in insertion order.
func (g *GridIndex) FindTargetsInShape(origin Vec2, radius float64) []*Combatant {
	maxR := g.hitRadius
	for _, c := range g.entities {
		if c.Radius > maxR {
			maxR = c.Radius
		}
	}

	candidates := g.grid.QueryRadius(origin.X, origin.Y, radius+maxR)
	g.seen = append(g.seen[:0], candidates...)
	sort.Slice(g.seen, func(i, j int) bool { return g.seen[i] < g.seen[j] })

	out := make([]*Combatant, 0, len(g.seen))
	for _, idx := range g.seen {
		c := g.entities[idx]
		if !c.Alive {
			continue
		}
		r := c.Radius
		if r <= 0 {
			r = g.hitRadius
		}
		if origin.DistanceTo(c.Pos) <= radius+r {
			out = append(out, c)
		}
	}
	return out
}

// Distance is the straight-line distance.
func (g *GridIndex) Distance(a, b Vec2) float64 { return a.DistanceTo(b) }

// Stats exposes grid occupancy for the debug endpoints.
func (g *GridIndex) Stats() spatial.GridStats { return g.grid.Stats() }
