package game

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/vmath"
)

// carBody adapts a car entity to bot.Body. A body whose entity was removed
// reports a zero pose and ignores inputs.
type carBody struct {
	g *Game
	e ecs.Entity
}

func (b *carBody) alive() bool {
	return b.g.world.Alive(b.e)
}

func (b *carBody) Position() r3.Vec {
	if !b.alive() {
		return r3.Vec{}
	}
	return b.g.tfMap.Get(b.e).Position
}

func (b *carBody) Forward() r3.Vec {
	if !b.alive() {
		return r3.Vec{Z: 1}
	}
	return vmath.Forward(b.g.tfMap.Get(b.e).Yaw)
}

func (b *carBody) Velocity() r3.Vec {
	if !b.alive() {
		return r3.Vec{}
	}
	return b.g.moMap.Get(b.e).Velocity
}

// Speed is ground speed; jumping and falling do not count.
func (b *carBody) Speed() float64 {
	return r3.Norm(vmath.Flat(b.Velocity()))
}

func (b *carBody) IsGrounded() bool {
	if !b.alive() {
		return false
	}
	return b.g.driveMap.Get(b.e).Grounded
}

// Jump requests a jump; the vehicle system applies it on the next step if
// the car is grounded.
func (b *carBody) Jump() {
	if b.alive() {
		b.g.driveMap.Get(b.e).JumpRequested = true
	}
}

func (b *carBody) SetInputs(turn, throttle float64) {
	if !b.alive() {
		return
	}
	d := b.g.driveMap.Get(b.e)
	d.Turn = vmath.ClampUnit(turn)
	d.Throttle = vmath.ClampUnit(throttle)
}

// FirePoint converts the chassis muzzle offset to world space.
func (b *carBody) FirePoint() (r3.Vec, bool) {
	if !b.alive() {
		return r3.Vec{}, false
	}
	tf := b.g.tfMap.Get(b.e)
	fp := b.g.chassisMap.Get(b.e).FirePoint

	p := tf.Position
	p = r3.Add(p, r3.Scale(fp[0], vmath.Right(tf.Yaw)))
	p = r3.Add(p, r3.Vec{Y: fp[1]})
	p = r3.Add(p, r3.Scale(fp[2], vmath.Forward(tf.Yaw)))
	return p, true
}
