// Package components defines ECS components for the arena.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Tag groups combatants for scoring.
type Tag uint8

const (
	TagBot   Tag = iota // controller-driven car
	TagDummy            // stationary training target
)

func (t Tag) String() string {
	switch t {
	case TagBot:
		return "bot"
	case TagDummy:
		return "dummy"
	}
	return "unknown"
}

// Drive holds the locomotion inputs of a car and its ground contact.
// Inputs are written by the controller, consumed by the vehicle system.
type Drive struct {
	Turn          float64 // -1..1, positive turns right
	Throttle      float64 // -1..1, negative reverses
	JumpRequested bool
	Grounded      bool
}

// Health tracks hit points.
type Health struct {
	Current float64
	Max     float64
	Dead    bool
}

// Combatant marks an entity that can be targeted and damaged.
type Combatant struct {
	ID  uint32 // never 0
	Tag Tag
}

// Projectile is a bullet in flight.
type Projectile struct {
	ShooterID uint32
	Age       float64
	Lifetime  float64
	ArmDelay  float64
	Damage    float64
	Radius    float64
}

// Obstacle is static blocking geometry.
type Obstacle struct {
	Box r3.Box
}
