// Package systems provides ECS systems for the arena simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	Delta  r3.Vec  // from query origin, horizontal only
	DistSq float64 // squared horizontal distance
}

// SpatialGrid provides O(1) neighbor lookups on the XZ plane using a
// cell-based grid over the arena bounds. Positions outside are clamped
// into the border cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	minX     float64
	minZ     float64
	cells    [][]ecs.Entity // flat grid of entity lists
}

// NewSpatialGrid creates a spatial grid covering bounds.
func NewSpatialGrid(bounds r3.Box, cellSize float64) *SpatialGrid {
	size := bounds.Size()
	cols := int(size.X/cellSize) + 1
	rows := int(size.Z/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		minX:     bounds.Min.X,
		minZ:     bounds.Min.Z,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, pos r3.Vec) {
	col, row := g.cellCoords(pos)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 64

// QueryRadiusInto finds entities within radius of center (horizontally) and
// appends to dst (up to MaxQueryResults). Reuse dst across calls to avoid
// allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, center r3.Vec, radius float64, exclude ecs.Entity, posMap *ecs.Map[components.Transform]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(center)
	radiusSq := radius * radius

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				tf := posMap.Get(e)
				if tf == nil {
					continue
				}

				delta := r3.Vec{X: tf.Position.X - center.X, Z: tf.Position.Z - center.Z}
				distSq := delta.X*delta.X + delta.Z*delta.Z
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, Delta: delta, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellCoords returns the clamped cell column and row for a position.
func (g *SpatialGrid) cellCoords(pos r3.Vec) (col, row int) {
	col = int((pos.X - g.minX) / g.cellSize)
	row = int((pos.Z - g.minZ) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
