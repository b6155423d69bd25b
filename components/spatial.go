package components

import "gonum.org/v1/gonum/spatial/r3"

// Transform represents an entity's world position and heading.
// Position is the base of the body; Yaw is radians, 0 facing +Z.
type Transform struct {
	Position r3.Vec
	Yaw      float64
}

// Motion represents an entity's linear and angular velocity.
type Motion struct {
	Velocity r3.Vec
	YawRate  float64 // radians per second
}
