// Package vmath provides horizontal-plane vector helpers on top of gonum's r3.
//
// The world is Y-up. Agents live on the XZ plane: yaw 0 faces +Z and a
// positive yaw delta turns the agent to its right (+X at yaw 0).
package vmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the world up axis.
var Up = r3.Vec{Y: 1}

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// Forward returns the unit forward direction for a yaw in radians.
func Forward(yaw float64) r3.Vec {
	s, c := math.Sincos(yaw)
	return r3.Vec{X: s, Z: c}
}

// Right returns the unit right direction for a yaw in radians.
func Right(yaw float64) r3.Vec {
	s, c := math.Sincos(yaw)
	return r3.Vec{X: c, Z: -s}
}

// Flat drops the vertical component.
func Flat(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// IsZero reports whether v is shorter than Epsilon.
func IsZero(v r3.Vec) bool {
	return r3.Norm2(v) < Epsilon*Epsilon
}

// SafeUnit returns the unit vector of v, or fallback when v is (near) zero.
// r3.Unit yields NaN for the zero vector.
func SafeUnit(v, fallback r3.Vec) r3.Vec {
	if IsZero(v) {
		return fallback
	}
	return r3.Unit(v)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// SignedAngle returns the angle in degrees from `from` to `to`, signed by the
// rotation direction about axis. Returns 0 if either vector is zero.
func SignedAngle(from, to, axis r3.Vec) float64 {
	if IsZero(from) || IsZero(to) {
		return 0
	}
	cos := Clamp(r3.Cos(from, to), -1, 1)
	deg := math.Acos(cos) * 180 / math.Pi
	if r3.Dot(axis, r3.Cross(from, to)) < 0 {
		return -deg
	}
	return deg
}

// Clamp clamps v into [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampUnit clamps v into [-1, 1].
func ClampUnit(v float64) float64 {
	return Clamp(v, -1, 1)
}

// Lerp interpolates linearly between a and b, t clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp(t, 0, 1)
}

// NormalizeAngle wraps an angle in radians to [-Pi, Pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// YawOf returns the yaw whose forward direction points along v on the XZ plane.
func YawOf(v r3.Vec) float64 {
	return math.Atan2(v.X, v.Z)
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
