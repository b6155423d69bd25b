package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/components"
)

var testBounds = r3.Box{Min: r3.Vec{X: -20, Z: -20}, Max: r3.Vec{X: 20, Y: 4, Z: 20}}

func box(minX, minY, minZ, maxX, maxY, maxZ float64) r3.Box {
	return r3.Box{Min: r3.Vec{X: minX, Y: minY, Z: minZ}, Max: r3.Vec{X: maxX, Y: maxY, Z: maxZ}}
}

// testArena is a world with static obstacles and helpers to place cars.
type testArena struct {
	world *ecs.World
	ray   *Raycaster
	index *Combatants
	cars  *ecs.Map6[components.Transform, components.Motion, components.Drive, components.Chassis, components.Health, components.Combatant]
}

func newTestArena(obstacles ...r3.Box) *testArena {
	w := ecs.NewWorld()
	obsMap := ecs.NewMap1[components.Obstacle](w)
	for _, b := range obstacles {
		obs := components.Obstacle{Box: b}
		obsMap.NewEntity(&obs)
	}
	return &testArena{
		world: w,
		ray:   NewRaycaster(w),
		index: NewCombatants(w),
		cars:  ecs.NewMap6[components.Transform, components.Motion, components.Drive, components.Chassis, components.Health, components.Combatant](w),
	}
}

func testChassis() components.Chassis {
	return components.Chassis{
		Radius:       1,
		Height:       1,
		MaxSpeed:     20,
		Acceleration: 10,
		TurnSpeed:    90,
		JumpForce:    8,
	}
}

func (a *testArena) addCar(id uint32, pos r3.Vec, yaw float64) ecs.Entity {
	tf := components.Transform{Position: pos, Yaw: yaw}
	mo := components.Motion{}
	drive := components.Drive{}
	ch := testChassis()
	hp := components.Health{Current: 100, Max: 100}
	cb := components.Combatant{ID: id, Tag: components.TagBot}
	e := a.cars.NewEntity(&tf, &mo, &drive, &ch, &hp, &cb)
	a.index.Add(id, e)
	return e
}

func (a *testArena) vehicleParams() VehicleParams {
	return VehicleParams{
		Gravity:             10,
		MaxVerticalSpeed:    6,
		Restitution:         0.2,
		GroundCheckOffset:   0.25,
		GroundCheckDistance: 0.3,
		Bounds:              testBounds,
	}
}

// indexedIDs returns the index's identities in ascending order.
func indexedIDs(c *Combatants) []uint32 {
	ids := make([]uint32, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
