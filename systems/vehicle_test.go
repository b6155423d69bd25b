package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/components"
)

type carView struct {
	tf    *ecs.Map[components.Transform]
	mo    *ecs.Map[components.Motion]
	drive *ecs.Map[components.Drive]
	hp    *ecs.Map[components.Health]
}

func newCarView(w *ecs.World) carView {
	return carView{
		tf:    ecs.NewMap[components.Transform](w),
		mo:    ecs.NewMap[components.Motion](w),
		drive: ecs.NewMap[components.Drive](w),
		hp:    ecs.NewMap[components.Health](w),
	}
}

func runVehicles(vs *VehicleSystem, steps int, dt float64) {
	for i := 0; i < steps; i++ {
		vs.Update(dt)
	}
}

// TestVehicleThrottle verifies forward drive, speed cap and coasting.
func TestVehicleThrottle(t *testing.T) {
	a := newTestArena()
	vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
	view := newCarView(a.world)
	e := a.addCar(1, r3.Vec{Z: -18}, 0)

	view.drive.Get(e).Throttle = 1
	runVehicles(vs, 10, 0.1)

	tf, mo := view.tf.Get(e), view.mo.Get(e)
	assert.InDelta(t, 10.0, mo.Velocity.Z, 1e-9, "1s at acceleration 10")
	assert.InDelta(t, 0.0, mo.Velocity.X, 1e-9)
	assert.Greater(t, tf.Position.Z, -14.0)
	assert.Zero(t, tf.Position.Y)
	assert.True(t, view.drive.Get(e).Grounded)

	runVehicles(vs, 12, 0.1)
	assert.InDelta(t, 20.0, math.Hypot(mo.Velocity.X, mo.Velocity.Z), 1e-9, "capped at MaxSpeed")

	view.drive.Get(e).Throttle = 0
	runVehicles(vs, 5, 0.1)
	assert.Less(t, mo.Velocity.Z, 20.0)
	assert.Greater(t, mo.Velocity.Z, 0.0)
}

func TestVehicleSteering(t *testing.T) {
	tests := []struct {
		name     string
		throttle float64
		speed    float64
		turn     float64
		wantSign float64
	}{
		{"right while driving", 1, 5, 1, 1},
		{"left while driving", 1, 5, -1, -1},
		{"right while reversing", -1, -5, 1, -1},
		{"no turn", 1, 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestArena()
			vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
			view := newCarView(a.world)
			e := a.addCar(1, r3.Vec{}, 0)

			view.mo.Get(e).Velocity = r3.Vec{Z: tt.speed}
			d := view.drive.Get(e)
			d.Throttle, d.Turn = tt.throttle, tt.turn

			vs.Update(0.1)
			yaw := view.tf.Get(e).Yaw
			switch tt.wantSign {
			case 0:
				assert.Zero(t, yaw)
			default:
				assert.InDelta(t, tt.wantSign*math.Pi/2*0.1, yaw, 1e-9)
			}
		})
	}
}

// TestVehicleJump verifies jumps only leave the ground and the car lands again.
func TestVehicleJump(t *testing.T) {
	a := newTestArena()
	vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
	view := newCarView(a.world)
	e := a.addCar(1, r3.Vec{}, 0)

	view.drive.Get(e).JumpRequested = true
	vs.Update(0.02)
	require.False(t, view.drive.Get(e).JumpRequested, "request is consumed")
	mo := view.mo.Get(e)
	assert.InDelta(t, 6.0, mo.Velocity.Y, 1e-9, "jump capped at max vertical speed")
	assert.Greater(t, view.tf.Get(e).Position.Y, 0.0)

	// Airborne: a second request does nothing.
	runVehicles(vs, 10, 0.02)
	vy := mo.Velocity.Y
	view.drive.Get(e).JumpRequested = true
	vs.Update(0.02)
	assert.InDelta(t, vy-10*0.02, mo.Velocity.Y, 1e-9)

	runVehicles(vs, 100, 0.02)
	assert.Zero(t, view.tf.Get(e).Position.Y)
	assert.Zero(t, mo.Velocity.Y)
	assert.True(t, view.drive.Get(e).Grounded)
}

// TestVehicleObstacle verifies a car cannot drive through a tall box.
func TestVehicleObstacle(t *testing.T) {
	a := newTestArena(box(-5, 0, 5, 5, 3, 6))
	vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
	view := newCarView(a.world)
	e := a.addCar(1, r3.Vec{}, 0)

	view.drive.Get(e).Throttle = 1
	runVehicles(vs, 100, 0.02)

	pos := view.tf.Get(e).Position
	assert.LessOrEqual(t, pos.Z, 4.0+1e-9, "stopped by the wall face")
	assert.Greater(t, pos.Z, 3.0)
}

// TestVehicleStepOnto verifies a car lands on a low box it falls onto.
func TestVehicleStepOnto(t *testing.T) {
	a := newTestArena(box(-5, 0, -5, 5, 0.5, 5))
	vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
	view := newCarView(a.world)
	e := a.addCar(1, r3.Vec{Y: 2}, 0)

	runVehicles(vs, 100, 0.02)
	assert.InDelta(t, 0.5, view.tf.Get(e).Position.Y, 1e-9)
	assert.True(t, view.drive.Get(e).Grounded)
}

// TestVehicleBounds verifies the arena walls contain the car.
func TestVehicleBounds(t *testing.T) {
	a := newTestArena()
	vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
	view := newCarView(a.world)
	e := a.addCar(1, r3.Vec{X: 15}, math.Pi/2) // facing +X

	view.drive.Get(e).Throttle = 1
	runVehicles(vs, 200, 0.02)

	x := view.tf.Get(e).Position.X
	assert.LessOrEqual(t, x, 19.0)
	assert.Greater(t, x, 17.5)
}

// TestVehicleSkipsDead verifies dead cars do not move.
func TestVehicleSkipsDead(t *testing.T) {
	a := newTestArena()
	vs := NewVehicleSystem(a.world, a.ray, a.vehicleParams())
	view := newCarView(a.world)
	e := a.addCar(1, r3.Vec{}, 0)

	view.hp.Get(e).Dead = true
	d := view.drive.Get(e)
	d.Throttle, d.JumpRequested = 1, true
	vs.Update(0.1)

	assert.Equal(t, r3.Vec{}, view.tf.Get(e).Position)
	assert.False(t, d.JumpRequested)
}
