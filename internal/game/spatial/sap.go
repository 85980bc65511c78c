package spatial

import (
	"sort"
)

// SweepAndPrune is a one-axis broad phase for circle overlap. It projects
// body intervals onto the X axis, sorts endpoints and reports overlapping
// intervals.
//
// Insertion sort is used by default: arena crowds are small and bodies are
// appended in spawn order, which is usually close to sorted.
type SweepAndPrune struct {
	endpoints  []SAPEndpoint   // All min/max endpoints
	pairs      []CollisionPair // Output buffer (reused)
	active     []uint32        // Active interval set (reused)
	useInsSort bool            // Insertion sort instead of sort.SliceStable
}

// SAPEndpoint represents one end of a bounding interval on the sweep axis.
type SAPEndpoint struct {
	Value    float64 // X coordinate
	EntityID uint32  // Index into the caller's body slice
	IsMin    bool    // true = start of interval, false = end
}

// CollisionPair represents two bodies whose X intervals overlap.
// A is always the lower index.
type CollisionPair struct {
	A, B uint32
}

// Body is a circle in the plane.
type Body struct {
	X, Y   float64
	Radius float64
}

// NewSweepAndPrune creates a new sweep-and-prune broad phase.
// maxEntities is used to preallocate buffers.
func NewSweepAndPrune(maxEntities int) *SweepAndPrune {
	return &SweepAndPrune{
		endpoints:  make([]SAPEndpoint, 0, maxEntities*2),
		pairs:      make([]CollisionPair, 0, maxEntities),
		active:     make([]uint32, 0, maxEntities/4+1),
		useInsSort: true,
	}
}

// Update rebuilds endpoints from bodies and returns every pair whose X
// intervals overlap, sorted by (A, B). The returned slice is reused on
// subsequent calls.
func (s *SweepAndPrune) Update(bodies []Body) []CollisionPair {
	s.pairs = s.pairs[:0]
	s.endpoints = s.endpoints[:0]

	for i, b := range bodies {
		s.endpoints = append(s.endpoints,
			SAPEndpoint{b.X - b.Radius, uint32(i), true},
			SAPEndpoint{b.X + b.Radius, uint32(i), false},
		)
	}

	if s.useInsSort && len(s.endpoints) > 1 {
		insertionSortEndpoints(s.endpoints)
	} else {
		sort.SliceStable(s.endpoints, func(i, j int) bool {
			return endpointLess(s.endpoints[i], s.endpoints[j])
		})
	}

	// Sweep: track active intervals
	s.active = s.active[:0]
	for _, ep := range s.endpoints {
		if ep.IsMin {
			for _, other := range s.active {
				a, b := ep.EntityID, other
				if a > b {
					a, b = b, a
				}
				s.pairs = append(s.pairs, CollisionPair{a, b})
			}
			s.active = append(s.active, ep.EntityID)
			continue
		}
		for i, id := range s.active {
			if id == ep.EntityID {
				s.active[i] = s.active[len(s.active)-1]
				s.active = s.active[:len(s.active)-1]
				break
			}
		}
	}

	// Deterministic output order regardless of endpoint ties
	sort.Slice(s.pairs, func(i, j int) bool {
		if s.pairs[i].A != s.pairs[j].A {
			return s.pairs[i].A < s.pairs[j].A
		}
		return s.pairs[i].B < s.pairs[j].B
	})
	return s.pairs
}

// Overlapping narrows Update's pairs to bodies whose circles intersect.
func (s *SweepAndPrune) Overlapping(bodies []Body) []CollisionPair {
	pairs := s.Update(bodies)
	kept := pairs[:0]
	for _, p := range pairs {
		a, b := bodies[p.A], bodies[p.B]
		dx, dy := b.X-a.X, b.Y-a.Y
		r := a.Radius + b.Radius
		if dx*dx+dy*dy < r*r {
			kept = append(kept, p)
		}
	}
	s.pairs = kept
	return kept
}

// SetInsertionSort enables/disables insertion sort optimization.
// When false, uses Go's standard sort which is O(n log n).
func (s *SweepAndPrune) SetInsertionSort(enabled bool) {
	s.useInsSort = enabled
}

// endpointLess orders by coordinate; at equal coordinates starts come
// before ends so touching intervals count as overlapping.
func endpointLess(a, b SAPEndpoint) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.IsMin && !b.IsMin
}

// insertionSortEndpoints sorts endpoints in-place using insertion sort.
func insertionSortEndpoints(eps []SAPEndpoint) {
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && endpointLess(key, eps[j]) {
			eps[j+1] = eps[j]
			j--
		}
		eps[j+1] = key
	}
}
