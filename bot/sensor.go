package bot

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/vmath"
)

// Avoidance is the result of one obstacle query. It is never stored.
type Avoidance struct {
	Blocked       bool
	IsLowObstacle bool
	LeftClear     bool
	RightClear    bool

	// Jump is set for a low obstacle the agent can clear while grounded.
	Jump bool

	// Steering to use verbatim when Blocked.
	Turn     float64
	Throttle float64
}

// ObstacleSensor probes ahead and to the sides of an agent. It keeps no
// memory between calls; the tie-break side is drawn fresh every time.
type ObstacleSensor struct {
	probe Probe
	rng   Random

	forwardDist float64
	sideDist    float64
	jumpable    float64
	originY     float64
	strength    float64
	fwdThrottle float64
	revThrottle float64
}

// NewObstacleSensor creates a sensor from a sanitized config.
func NewObstacleSensor(probe Probe, rng Random, cfg Config) *ObstacleSensor {
	return &ObstacleSensor{
		probe:       probe,
		rng:         rng,
		forwardDist: cfg.ObstacleProbeDistance,
		sideDist:    cfg.SideProbeDistance,
		jumpable:    cfg.JumpableHeight,
		originY:     cfg.ProbeHeight,
		strength:    cfg.AvoidanceTurnStrength,
		fwdThrottle: cfg.AvoidThrottle,
		revThrottle: cfg.AvoidReverseThrottle,
	}
}

// Sense runs the forward probe and, if needed, the lateral probes.
func (s *ObstacleSensor) Sense(pos, forward r3.Vec, grounded bool) Avoidance {
	if s.probe == nil {
		return Avoidance{}
	}

	fwd := vmath.SafeUnit(vmath.Flat(forward), r3.Vec{Z: 1})
	origin := r3.Add(pos, r3.Scale(s.originY, vmath.Up))

	hit, ok := s.probe.Raycast(origin, fwd, s.forwardDist)
	if !ok {
		return Avoidance{}
	}

	height := s.obstacleHeight(pos, fwd, hit)
	if height <= s.jumpable && grounded {
		return Avoidance{IsLowObstacle: true, Jump: true}
	}

	// Right of forward about +Y.
	right := r3.Vec{X: fwd.Z, Z: -fwd.X}
	_, leftHit := s.probe.Raycast(origin, r3.Scale(-1, right), s.sideDist)
	_, rightHit := s.probe.Raycast(origin, right, s.sideDist)

	res := Avoidance{
		Blocked:       true,
		IsLowObstacle: height <= s.jumpable,
		LeftClear:     !leftHit,
		RightClear:    !rightHit,
	}
	res.Turn = s.turn(res.LeftClear, res.RightClear)
	if res.LeftClear || res.RightClear {
		res.Throttle = s.fwdThrottle
	} else {
		res.Throttle = s.revThrottle
	}
	return res
}

// heightProbeMargin is how far past the hit face and above the jumpable
// threshold the height probe starts.
const heightProbeMargin = 0.05

// obstacleHeight measures the top of the obstacle behind a forward hit by
// probing straight down from just above the jumpable threshold. A probe that
// starts inside the obstacle hits at once and reports it as too tall. When the
// height probe finds nothing the forward hit point is used.
func (s *ObstacleSensor) obstacleHeight(pos, fwd r3.Vec, hit RayHit) float64 {
	top := r3.Add(hit.Point, r3.Scale(heightProbeMargin, fwd))
	top.Y = pos.Y + s.jumpable + heightProbeMargin

	down, ok := s.probe.Raycast(top, r3.Scale(-1, vmath.Up), s.jumpable+heightProbeMargin)
	if !ok {
		return hit.Point.Y - pos.Y
	}
	return down.Point.Y - pos.Y
}

func (s *ObstacleSensor) turn(leftClear, rightClear bool) float64 {
	strength := vmath.Clamp(s.strength, 0, 1)
	if strength == 0 {
		strength = 1
	}
	switch {
	case leftClear && !rightClear:
		return -strength
	case rightClear && !leftClear:
		return strength
	}
	return randomSign(s.rng) * strength
}

// randomSign returns -1 or +1 with equal probability.
func randomSign(rng Random) float64 {
	if rng == nil || rng.Float64() < 0.5 {
		return -1
	}
	return 1
}
