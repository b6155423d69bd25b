package systems

import (
	"errors"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/components"
	"github.com/pthm-cable/botarena/vmath"
)

// ErrBadShot is returned for shots with no direction or no shooter.
var ErrBadShot = errors.New("systems: invalid shot")

// ProjectileParams holds the values stamped on every new projectile.
type ProjectileParams struct {
	Lifetime  float64
	ArmDelay  float64
	Damage    float64
	Radius    float64
	Mass      float64
	CarRadius float64
	CarHeight float64
}

// Hit is a projectile striking a combatant.
type Hit struct {
	Shooter  uint32
	Victim   uint32
	Damage   float64
	Position r3.Vec
}

// ProjectileSystem spawns, moves, expires and resolves projectiles.
type ProjectileSystem struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Transform, components.Motion, components.Projectile]
	filter *ecs.Filter3[components.Transform, components.Motion, components.Projectile]
	tfMap  *ecs.Map[components.Transform]
	cbMap  *ecs.Map[components.Combatant]
	hpMap  *ecs.Map[components.Health]
	ray    *Raycaster
	grid   *SpatialGrid
	params ProjectileParams

	spawned   int
	neighbors []Neighbor
	toRemove  []ecs.Entity
}

// NewProjectileSystem creates a projectile system. grid must be rebuilt
// with combatant positions before each Update.
func NewProjectileSystem(w *ecs.World, ray *Raycaster, grid *SpatialGrid, params ProjectileParams) *ProjectileSystem {
	return &ProjectileSystem{
		world:  w,
		mapper: ecs.NewMap3[components.Transform, components.Motion, components.Projectile](w),
		filter: ecs.NewFilter3[components.Transform, components.Motion, components.Projectile](w),
		tfMap:  ecs.NewMap[components.Transform](w),
		cbMap:  ecs.NewMap[components.Combatant](w),
		hpMap:  ecs.NewMap[components.Health](w),
		ray:    ray,
		grid:   grid,
		params: params,
	}
}

// SpawnProjectile creates a projectile oriented along the shot direction.
// Its velocity is the inherited velocity plus the impulse over its mass.
// Must not be called while a query is open.
func (s *ProjectileSystem) SpawnProjectile(shot bot.Shot) error {
	if shot.Shooter == bot.None || vmath.IsZero(shot.Direction) {
		return ErrBadShot
	}
	dir := r3.Unit(shot.Direction)

	tf := components.Transform{Position: shot.Origin, Yaw: vmath.YawOf(dir)}
	mo := components.Motion{Velocity: r3.Add(shot.InheritedVelocity, r3.Scale(shot.Impulse/s.params.Mass, dir))}
	pr := components.Projectile{
		ShooterID: uint32(shot.Shooter),
		Lifetime:  s.params.Lifetime,
		ArmDelay:  s.params.ArmDelay,
		Damage:    s.params.Damage,
		Radius:    s.params.Radius,
	}
	s.mapper.NewEntity(&tf, &mo, &pr)
	s.spawned++
	return nil
}

// Update ages and moves projectiles and returns the hits of this step.
// Projectiles that hit, expire or strike geometry are removed.
func (s *ProjectileSystem) Update(dt float64) []Hit {
	var hits []Hit
	s.toRemove = s.toRemove[:0]

	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		tf, mo, pr := query.Get()

		pr.Age += dt
		if pr.Age >= pr.Lifetime {
			s.toRemove = append(s.toRemove, e)
			continue
		}

		from := tf.Position
		tf.Position = r3.Add(from, r3.Scale(dt, mo.Velocity))

		if s.hitsGeometry(from, tf.Position, pr.Radius) {
			s.toRemove = append(s.toRemove, e)
			continue
		}

		if pr.Age < pr.ArmDelay {
			continue
		}
		if victim, ok := s.findVictim(tf.Position, pr); ok {
			hits = append(hits, Hit{Shooter: pr.ShooterID, Victim: victim, Damage: pr.Damage, Position: tf.Position})
			s.toRemove = append(s.toRemove, e)
		}
	}

	for _, e := range s.toRemove {
		s.world.RemoveEntity(e)
	}
	return hits
}

func (s *ProjectileSystem) hitsGeometry(from, to r3.Vec, radius float64) bool {
	if to.Y <= 0 {
		return true
	}
	step := r3.Sub(to, from)
	dist := r3.Norm(step)
	if dist == 0 {
		return false
	}
	_, hit := s.ray.Raycast(from, step, dist+radius, LayerObstacles)
	return hit
}

// findVictim returns the first living combatant overlapping the projectile
// that is not its shooter.
func (s *ProjectileSystem) findVictim(pos r3.Vec, pr *components.Projectile) (uint32, bool) {
	reach := s.params.CarRadius + pr.Radius
	s.neighbors = s.grid.QueryRadiusInto(s.neighbors[:0], pos, reach, ecs.Entity{}, s.tfMap)

	best := uint32(0)
	bestDist := math.Inf(1)
	for _, n := range s.neighbors {
		cb := s.cbMap.Get(n.E)
		if cb == nil || cb.ID == pr.ShooterID {
			continue
		}
		if hp := s.hpMap.Get(n.E); hp == nil || hp.Dead {
			continue
		}
		base := s.tfMap.Get(n.E).Position.Y
		if pos.Y < base-pr.Radius || pos.Y > base+s.params.CarHeight+pr.Radius {
			continue
		}
		if n.DistSq < bestDist {
			bestDist = n.DistSq
			best = cb.ID
		}
	}
	return best, best != 0
}

// Count returns the number of projectiles in flight.
func (s *ProjectileSystem) Count() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Spawned returns the number of projectiles created so far.
func (s *ProjectileSystem) Spawned() int {
	return s.spawned
}
