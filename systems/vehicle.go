package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/components"
	"github.com/pthm-cable/botarena/vmath"
)

const (
	throttleDeadzone = 0.01
	rollingDrag      = 0.8 // fraction of horizontal speed lost per second with no throttle
	landingTolerance = 0.2 // how far below an obstacle top a car may be and still land on it
	reverseThreshold = 0.1 // forward speed below which steering flips
)

// VehicleParams holds the physics constants shared by every car.
type VehicleParams struct {
	Gravity             float64
	MaxVerticalSpeed    float64
	Restitution         float64
	GroundCheckOffset   float64
	GroundCheckDistance float64
	Bounds              r3.Box
}

// VehicleSystem is the locomotion actuator: it turns Drive inputs into
// motion for every car on each fixed step.
type VehicleSystem struct {
	filter *ecs.Filter5[components.Transform, components.Motion, components.Drive, components.Chassis, components.Health]
	ray    *Raycaster
	params VehicleParams
}

// NewVehicleSystem creates a vehicle system.
func NewVehicleSystem(w *ecs.World, ray *Raycaster, params VehicleParams) *VehicleSystem {
	return &VehicleSystem{
		filter: ecs.NewFilter5[components.Transform, components.Motion, components.Drive, components.Chassis, components.Health](w),
		ray:    ray,
		params: params,
	}
}

// Update advances every living car by dt seconds.
func (s *VehicleSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		tf, mo, drive, ch, hp := query.Get()
		if hp.Dead {
			drive.JumpRequested = false
			continue
		}
		s.step(dt, tf, mo, drive, ch)
	}
}

// IsGrounded casts the ground check ray for a car at pos.
func (s *VehicleSystem) IsGrounded(pos r3.Vec) bool {
	origin := r3.Add(pos, r3.Vec{Y: s.params.GroundCheckOffset})
	_, hit := s.ray.Raycast(origin, r3.Vec{Y: -1}, s.params.GroundCheckDistance, LayerGround|LayerObstacles)
	return hit
}

func (s *VehicleSystem) step(dt float64, tf *components.Transform, mo *components.Motion, drive *components.Drive, ch *components.Chassis) {
	p := s.params
	drive.Grounded = s.IsGrounded(tf.Position)

	forward := vmath.Forward(tf.Yaw)
	right := vmath.Right(tf.Yaw)
	throttle := vmath.ClampUnit(drive.Throttle)
	turn := vmath.ClampUnit(drive.Turn)

	vel := mo.Velocity
	if math.Abs(throttle) > throttleDeadzone {
		vel = r3.Add(vel, r3.Scale(throttle*ch.Acceleration*dt, forward))
	} else {
		damp := math.Max(0, 1-rollingDrag*dt)
		vel.X *= damp
		vel.Z *= damp
	}

	// No sideways slip.
	vel = r3.Sub(vel, r3.Scale(r3.Dot(vel, right), right))

	// Steering follows the direction of travel, like a car in reverse.
	dir := 1.0
	if r3.Dot(vel, forward) < -reverseThreshold {
		dir = -1
	}
	mo.YawRate = turn * ch.TurnSpeed * math.Pi / 180 * dir
	tf.Yaw = vmath.NormalizeAngle(tf.Yaw + mo.YawRate*dt)

	if drive.JumpRequested && drive.Grounded {
		vel.Y = ch.JumpForce
	}
	drive.JumpRequested = false

	if !drive.Grounded || vel.Y > 0 {
		vel.Y -= p.Gravity * dt
	}
	if vel.Y > p.MaxVerticalSpeed {
		vel.Y = p.MaxVerticalSpeed
	}

	if h := math.Hypot(vel.X, vel.Z); h > ch.MaxSpeed {
		k := ch.MaxSpeed / h
		vel.X *= k
		vel.Z *= k
	}

	pos := r3.Add(tf.Position, r3.Scale(dt, vel))
	pos, vel = s.collide(pos, vel, ch)

	tf.Position = pos
	mo.Velocity = vel
}

// collide resolves the car against the ground, obstacles and arena walls.
func (s *VehicleSystem) collide(pos, vel r3.Vec, ch *components.Chassis) (r3.Vec, r3.Vec) {
	p := s.params

	if pos.Y < 0 {
		pos.Y = 0
		if vel.Y < 0 {
			vel.Y = 0
		}
	}

	for _, box := range s.ray.Boxes() {
		if pos.Y >= box.Max.Y || pos.Y+ch.Height <= box.Min.Y {
			continue
		}
		if pos.Y >= box.Max.Y-landingTolerance && vel.Y <= 0 {
			if _, _, overlap := ResolveCircleBox(pos, ch.Radius, box); overlap {
				pos.Y = box.Max.Y
				vel.Y = 0
				continue
			}
		}
		resolved, normal, overlap := ResolveCircleBox(pos, ch.Radius, box)
		if !overlap {
			continue
		}
		pos = resolved
		if into := r3.Dot(vel, normal); into < 0 {
			vel = r3.Sub(vel, r3.Scale((1+p.Restitution)*into, normal))
		}
	}

	b := p.Bounds
	if pos.X < b.Min.X+ch.Radius {
		pos.X = b.Min.X + ch.Radius
		vel.X = math.Abs(vel.X) * p.Restitution
	} else if pos.X > b.Max.X-ch.Radius {
		pos.X = b.Max.X - ch.Radius
		vel.X = -math.Abs(vel.X) * p.Restitution
	}
	if pos.Z < b.Min.Z+ch.Radius {
		pos.Z = b.Min.Z + ch.Radius
		vel.Z = math.Abs(vel.Z) * p.Restitution
	} else if pos.Z > b.Max.Z-ch.Radius {
		pos.Z = b.Max.Z - ch.Radius
		vel.Z = -math.Abs(vel.Z) * p.Restitution
	}

	return pos, vel
}
