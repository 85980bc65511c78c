// Package spatial provides the broad-phase index used for attack target
// selection and proximity queries.
//
// Structures use preallocated slices with integer indices (not pointers)
// to minimize GC pressure.
package spatial

import (
	"math"
)

// Bounds is an axis-aligned world rectangle.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Centered returns bounds of the given size centered on the origin.
func Centered(width, height float64) Bounds {
	return Bounds{MinX: -width / 2, MinY: -height / 2, MaxX: width / 2, MaxY: height / 2}
}

// SpatialGrid provides O(1) average radius queries via fixed-size cells.
//
// Optimal cell size equals the most common query radius. For the arena:
//   - Detection range: ~10 units
//   - Attack reach: 1.5 to 6 units
//
// Positions outside the bounds are clamped into the border cells.
// Memory layout: cells are stored in row-major order (cells[row*cols+col])
type SpatialGrid struct {
	bounds      Bounds
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32 // cells[row*cols+col] = entity indices
	scratch     []uint32   // reusable buffer for query results
	count       int
}

// NewSpatialGrid creates a grid over bounds.
// maxEntities is used to preallocate cell capacity.
func NewSpatialGrid(bounds Bounds, cellSize float64, maxEntities int) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil((bounds.MaxX - bounds.MinX) / cellSize))
	rows := int(math.Ceil((bounds.MaxY - bounds.MinY) / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &SpatialGrid{
		bounds:      bounds,
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds an entity at (x, y). entityID is an index into the
// caller's entity slice.
func (g *SpatialGrid) Insert(entityID uint32, x, y float64) {
	col, row := g.cell(x, y)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], entityID)
	g.count++
}

func (g *SpatialGrid) cell(x, y float64) (col, row int) {
	col = clampInt(int(math.Floor((x-g.bounds.MinX)*g.invCellSize)), 0, g.cols-1)
	row = clampInt(int(math.Floor((y-g.bounds.MinY)*g.invCellSize)), 0, g.rows-1)
	return col, row
}

// QueryRadius returns entity IDs potentially within radius of (cx, cy),
// in ascending cell order.
//
// IMPORTANT: The returned slice is reused on subsequent calls.
// Copy the results if you need to persist them.
//
// Candidates may lie outside the radius; the caller does the narrow phase.
func (g *SpatialGrid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, minRow := g.cell(cx-radius, cy-radius)
	maxCol, maxRow := g.cell(cx+radius, cy+radius)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}

// QueryCell returns entity IDs in the cell containing (x, y).
func (g *SpatialGrid) QueryCell(x, y float64) []uint32 {
	col, row := g.cell(x, y)
	return g.cells[row*g.cols+col]
}

// Len returns the number of inserted entities.
func (g *SpatialGrid) Len() int { return g.count }

// Stats returns grid statistics for debugging/profiling.
func (g *SpatialGrid) Stats() GridStats {
	var maxInCell, nonEmpty int
	for _, cell := range g.cells {
		if n := len(cell); n > 0 {
			nonEmpty++
			if n > maxInCell {
				maxInCell = n
			}
		}
	}

	avg := 0.0
	if nonEmpty > 0 {
		avg = float64(g.count) / float64(nonEmpty)
	}

	return GridStats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntities:  g.count,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avg,
	}
}

// GridStats contains grid statistics for debugging.
type GridStats struct {
	TotalCells     int     `json:"totalCells"`
	NonEmptyCells  int     `json:"nonEmptyCells"`
	TotalEntities  int     `json:"totalEntities"`
	MaxInCell      int     `json:"maxInCell"`
	AvgPerNonEmpty float64 `json:"avgPerNonEmpty"`
}

// Dimensions returns the grid dimensions.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
