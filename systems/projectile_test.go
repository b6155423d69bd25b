package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/components"
)

var _ bot.Spawner = (*ProjectileSystem)(nil)

const projDT = 0.02

type projectileRig struct {
	*testArena
	grid  *SpatialGrid
	proj  *ProjectileSystem
	tfMap *ecs.Map[components.Transform]
}

func newProjectileRig(obstacles ...r3.Box) *projectileRig {
	a := newTestArena(obstacles...)
	grid := NewSpatialGrid(testBounds, 4)
	return &projectileRig{
		testArena: a,
		grid:      grid,
		proj: NewProjectileSystem(a.world, a.ray, grid, ProjectileParams{
			Lifetime:  1,
			ArmDelay:  0.05,
			Damage:    10,
			Radius:    0.25,
			Mass:      1,
			CarRadius: 1,
			CarHeight: 1,
		}),
		tfMap: ecs.NewMap[components.Transform](a.world),
	}
}

// step rebuilds the grid and advances projectiles once.
func (r *projectileRig) step() []Hit {
	r.grid.Clear()
	for _, id := range indexedIDs(r.index) {
		if e, ok := r.index.Entity(id); ok {
			r.grid.Insert(e, r.tfMap.Get(e).Position)
		}
	}
	return r.proj.Update(projDT)
}

func (r *projectileRig) run(n int) []Hit {
	var hits []Hit
	for i := 0; i < n; i++ {
		hits = append(hits, r.step()...)
	}
	return hits
}

func (r *projectileRig) fire(shooter bot.ID, origin, dir r3.Vec, impulse float64) {
	err := r.proj.SpawnProjectile(bot.Shot{Origin: origin, Direction: dir, Impulse: impulse, Shooter: shooter})
	if err != nil {
		panic(err)
	}
}

// TestProjectileSpawn verifies orientation, velocity and shooter stamping.
func TestProjectileSpawn(t *testing.T) {
	r := newProjectileRig()
	err := r.proj.SpawnProjectile(bot.Shot{
		Origin:            r3.Vec{Y: 0.5},
		Direction:         r3.Vec{X: 2},
		InheritedVelocity: r3.Vec{Z: 3},
		Impulse:           30,
		Shooter:           7,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.proj.Count())
	assert.Equal(t, 1, r.proj.Spawned())

	filter := ecs.NewFilter3[components.Transform, components.Motion, components.Projectile](r.world)
	query := filter.Query()
	require.True(t, query.Next())
	tf, mo, pr := query.Get()
	assert.InDelta(t, 1.5707963267948966, tf.Yaw, 1e-9)
	assert.Equal(t, r3.Vec{X: 30, Z: 3}, mo.Velocity)
	assert.Equal(t, uint32(7), pr.ShooterID)
	assert.Equal(t, 10.0, pr.Damage)
	query.Close()
}

func TestProjectileSpawnRejects(t *testing.T) {
	r := newProjectileRig()
	assert.ErrorIs(t, r.proj.SpawnProjectile(bot.Shot{Direction: r3.Vec{Z: 1}, Impulse: 1}), ErrBadShot)
	assert.ErrorIs(t, r.proj.SpawnProjectile(bot.Shot{Impulse: 1, Shooter: 1}), ErrBadShot)
	assert.Zero(t, r.proj.Count())
}

// TestProjectileHitsTarget verifies a shot travels to and damages the victim once.
func TestProjectileHitsTarget(t *testing.T) {
	r := newProjectileRig()
	r.addCar(1, r3.Vec{}, 0)
	r.addCar(2, r3.Vec{Z: 10}, 0)

	r.fire(1, r3.Vec{Y: 0.5, Z: 1.6}, r3.Vec{Z: 1}, 30)
	hits := r.run(20)

	require.Len(t, hits, 1)
	assert.Equal(t, uint32(1), hits[0].Shooter)
	assert.Equal(t, uint32(2), hits[0].Victim)
	assert.Equal(t, 10.0, hits[0].Damage)
	assert.Zero(t, r.proj.Count())
}

// TestProjectileIgnoresShooter verifies a shot never damages the car that fired it.
func TestProjectileIgnoresShooter(t *testing.T) {
	r := newProjectileRig()
	r.addCar(1, r3.Vec{}, 0)

	r.fire(1, r3.Vec{Y: 0.5}, r3.Vec{Z: 1}, 1)
	assert.Empty(t, r.run(10))
	assert.Equal(t, 1, r.proj.Count())

	// The same spot is lethal for a shot fired by someone else.
	r.fire(2, r3.Vec{Y: 0.5}, r3.Vec{Z: 1}, 1)
	hits := r.run(5)
	require.Len(t, hits, 1)
	assert.Equal(t, uint32(2), hits[0].Shooter)
	assert.Equal(t, uint32(1), hits[0].Victim)
}

// TestProjectileArmDelay verifies no damage is dealt before the arm delay.
func TestProjectileArmDelay(t *testing.T) {
	r := newProjectileRig()
	r.addCar(2, r3.Vec{}, 0)

	r.fire(1, r3.Vec{Y: 0.5}, r3.Vec{Z: 1}, 1)
	assert.Empty(t, r.step())
	assert.Empty(t, r.step())
	assert.Len(t, r.step(), 1)
}

func TestProjectileMisses(t *testing.T) {
	tests := []struct {
		name      string
		obstacles []r3.Box
		dead      bool
		origin    r3.Vec
		dir       r3.Vec
	}{
		{"blocked by obstacle", []r3.Box{box(-2, 0, 4, 2, 2, 5)}, false, r3.Vec{Y: 0.5}, r3.Vec{Z: 1}},
		{"hits the ground", nil, false, r3.Vec{Y: 0.5}, r3.Vec{Y: -1, Z: 1}},
		{"passes overhead", nil, false, r3.Vec{Y: 3}, r3.Vec{Z: 1}},
		{"dead victim", nil, true, r3.Vec{Y: 0.5}, r3.Vec{Z: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newProjectileRig(tt.obstacles...)
			victim := r.addCar(2, r3.Vec{Z: 8}, 0)
			if tt.dead {
				ecs.NewMap[components.Health](r.world).Get(victim).Dead = true
			}

			r.fire(1, tt.origin, tt.dir, 30)
			assert.Empty(t, r.run(30))
		})
	}
}

// TestProjectileLifetime verifies projectiles expire.
func TestProjectileLifetime(t *testing.T) {
	r := newProjectileRig()
	r.fire(1, r3.Vec{Y: 0.5}, r3.Vec{Z: 1}, 1)

	r.run(49)
	assert.Equal(t, 1, r.proj.Count())
	r.run(2)
	assert.Zero(t, r.proj.Count())
}
