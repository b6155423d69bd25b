package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/components"
)

func TestSpatialGridQueryRadius(t *testing.T) {
	a := newTestArena()
	grid := NewSpatialGrid(testBounds, 4)
	tfMap := ecs.NewMap[components.Transform](a.world)

	near := a.addCar(1, r3.Vec{X: 1, Z: 1}, 0)
	high := a.addCar(2, r3.Vec{X: -1, Y: 3, Z: 0}, 0)
	far := a.addCar(3, r3.Vec{X: 10, Z: 10}, 0)
	self := a.addCar(4, r3.Vec{}, 0)
	outside := a.addCar(5, r3.Vec{X: 50, Z: 0}, 0) // clamped into the border column

	for _, e := range []ecs.Entity{near, high, far, self, outside} {
		grid.Insert(e, tfMap.Get(e).Position)
	}

	got := grid.QueryRadiusInto(nil, r3.Vec{}, 2, self, tfMap)
	found := map[ecs.Entity]Neighbor{}
	for _, n := range got {
		found[n.E] = n
	}

	assert.Len(t, found, 2)
	assert.Contains(t, found, near)
	assert.Contains(t, found, high, "height is ignored")
	assert.InDelta(t, 2.0, found[near].DistSq, 1e-9)
	assert.Equal(t, r3.Vec{X: -1}, found[high].Delta)

	border := grid.QueryRadiusInto(nil, r3.Vec{X: 19, Z: 0}, 2, ecs.Entity{}, tfMap)
	assert.Empty(t, border, "clamped entities keep their real distance")

	grid.Clear()
	assert.Empty(t, grid.QueryRadiusInto(nil, r3.Vec{}, 100, ecs.Entity{}, tfMap))
}

// TestSpatialGridResultCap verifies queries stop at MaxQueryResults.
func TestSpatialGridResultCap(t *testing.T) {
	a := newTestArena()
	grid := NewSpatialGrid(testBounds, 4)
	tfMap := ecs.NewMap[components.Transform](a.world)

	for i := 0; i < MaxQueryResults+10; i++ {
		e := a.addCar(uint32(i+1), r3.Vec{X: 0.01 * float64(i)}, 0)
		grid.Insert(e, tfMap.Get(e).Position)
	}

	got := grid.QueryRadiusInto(nil, r3.Vec{}, 5, ecs.Entity{}, tfMap)
	assert.Len(t, got, MaxQueryResults)
}
