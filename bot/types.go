package bot

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ID identifies a combat-capable entity for the lifetime of the match.
// Zero is never assigned.
type ID uint32

// None is the zero identity.
const None ID = 0

// Contact is a registry entry: an entity and where it currently is.
type Contact struct {
	ID       ID
	Position r3.Vec
}

// RayHit describes the nearest intersection of a probe.
type RayHit struct {
	Point    r3.Vec
	Distance float64
}

// Shot is everything a Spawner needs to create a projectile.
type Shot struct {
	Origin            r3.Vec
	Direction         r3.Vec // unit aim direction
	InheritedVelocity r3.Vec
	Impulse           float64
	Shooter           ID
}

// Body is the locomotion actuator and pose query of the controlled unit.
type Body interface {
	Position() r3.Vec
	Forward() r3.Vec
	Velocity() r3.Vec
	// Speed is the horizontal speed.
	Speed() float64
	IsGrounded() bool
	Jump()
	// SetInputs sets normalized steering and throttle; implementations clamp to [-1,1].
	SetInputs(turn, throttle float64)
	// FirePoint reports the muzzle position, false if the unit has none.
	FirePoint() (r3.Vec, bool)
}

// Probe casts rays against the obstacle layer.
type Probe interface {
	Raycast(origin, dir r3.Vec, maxDist float64) (RayHit, bool)
}

// Registry enumerates living combat-capable entities.
type Registry interface {
	Combatants(exclude ID) []Contact
	// Locate re-resolves an identity; false if it no longer exists.
	Locate(id ID) (r3.Vec, bool)
}

// Spawner creates projectiles.
type Spawner interface {
	SpawnProjectile(shot Shot) error
}

// Random is a source of uniform values in [0, 1). *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// Diagnostics returned by Tick and FixedTick. They never stop the simulation.
var (
	ErrNoBody      = errors.New("bot: no body")
	ErrNoProbe     = errors.New("bot: no obstacle probe")
	ErrNoRegistry  = errors.New("bot: no entity registry")
	ErrNoSpawner   = errors.New("bot: no projectile spawner")
	ErrNoFirePoint = errors.New("bot: no fire point")
)
