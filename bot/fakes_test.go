package bot

import (
	"errors"
	"io"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/vmath"
)

// fakeBody records the last commands it received.
type fakeBody struct {
	pos      r3.Vec
	forward  r3.Vec
	velocity r3.Vec
	speed    float64
	grounded bool

	muzzle    r3.Vec
	hasMuzzle bool

	turn, throttle float64
	inputs         int
	jumps          int
}

func newFakeBody(pos r3.Vec) *fakeBody {
	return &fakeBody{
		pos:       pos,
		forward:   r3.Vec{Z: 1},
		grounded:  true,
		muzzle:    r3.Add(pos, r3.Vec{Y: 0.5, Z: 1}),
		hasMuzzle: true,
	}
}

func (b *fakeBody) Position() r3.Vec { return b.pos }
func (b *fakeBody) Forward() r3.Vec { return b.forward }
func (b *fakeBody) Velocity() r3.Vec { return b.velocity }
func (b *fakeBody) Speed() float64 { return b.speed }
func (b *fakeBody) IsGrounded() bool { return b.grounded }
func (b *fakeBody) Jump() { b.jumps++ }
func (b *fakeBody) FirePoint() (r3.Vec, bool) { return b.muzzle, b.hasMuzzle }

func (b *fakeBody) SetInputs(turn, throttle float64) {
	b.turn = vmath.ClampUnit(turn)
	b.throttle = vmath.ClampUnit(throttle)
	b.inputs++
}

// rayCall is one recorded Raycast invocation.
type rayCall struct {
	origin, dir r3.Vec
	maxDist     float64
}

// scriptedProbe answers rays by comparing their direction with the
// configured forward, left and right axes.
type scriptedProbe struct {
	forward  r3.Vec
	front    *RayHit
	leftHit  bool
	rightHit bool
	calls    []rayCall
}

func (p *scriptedProbe) Raycast(origin, dir r3.Vec, maxDist float64) (RayHit, bool) {
	p.calls = append(p.calls, rayCall{origin, dir, maxDist})
	fwd := r3.Unit(p.forward)
	right := r3.Vec{X: fwd.Z, Z: -fwd.X}
	switch {
	case r3.Dot(dir, fwd) > 0.99:
		if p.front == nil {
			return RayHit{}, false
		}
		return *p.front, true
	case r3.Dot(dir, right) > 0.99:
		return RayHit{Point: r3.Add(origin, r3.Scale(maxDist/2, dir))}, p.rightHit
	case r3.Dot(dir, right) < -0.99:
		return RayHit{Point: r3.Add(origin, r3.Scale(maxDist/2, dir))}, p.leftHit
	}
	return RayHit{}, false
}

// clearProbe never hits anything.
type clearProbe struct{}

func (clearProbe) Raycast(r3.Vec, r3.Vec, float64) (RayHit, bool) { return RayHit{}, false }

// staticRegistry is a mutable map of positions.
type staticRegistry struct {
	order []ID
	pos   map[ID]r3.Vec
}

func newRegistry() *staticRegistry {
	return &staticRegistry{pos: make(map[ID]r3.Vec)}
}

func (r *staticRegistry) put(id ID, p r3.Vec) {
	if _, ok := r.pos[id]; !ok {
		r.order = append(r.order, id)
	}
	r.pos[id] = p
}

func (r *staticRegistry) remove(id ID) {
	delete(r.pos, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *staticRegistry) Combatants(exclude ID) []Contact {
	var out []Contact
	for _, id := range r.order {
		if id == exclude {
			continue
		}
		out = append(out, Contact{ID: id, Position: r.pos[id]})
	}
	return out
}

func (r *staticRegistry) Locate(id ID) (r3.Vec, bool) {
	p, ok := r.pos[id]
	return p, ok
}

// recordingSpawner keeps every shot.
type recordingSpawner struct {
	shots []Shot
	err   error
}

func (s *recordingSpawner) SpawnProjectile(shot Shot) error {
	if s.err != nil {
		return s.err
	}
	s.shots = append(s.shots, shot)
	return nil
}

var errSpawnFailed = errors.New("spawn failed")

// seqRandom cycles through fixed values.
type seqRandom struct {
	vals []float64
	i    int
}

func (r *seqRandom) Float64() float64 {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// rig bundles a controller with its fakes.
type rig struct {
	ctrl    *Controller
	body    *fakeBody
	probe   *scriptedProbe
	reg     *staticRegistry
	spawner *recordingSpawner
}

const selfID ID = 1

func newRig(cfg Config) *rig {
	body := newFakeBody(r3.Vec{})
	probe := &scriptedProbe{forward: body.forward}
	reg := newRegistry()
	reg.put(selfID, body.pos)
	spawner := &recordingSpawner{}
	ctrl := New(selfID, Deps{
		Body:     body,
		Probe:    probe,
		Registry: reg,
		Spawner:  spawner,
		Random:   &seqRandom{vals: []float64{0.9}},
	}, cfg, discardLogger())
	return &rig{ctrl: ctrl, body: body, probe: probe, reg: reg, spawner: spawner}
}

// tick runs n logic and physics ticks.
func (r *rig) tick(n int, dt float64) {
	for i := 0; i < n; i++ {
		_ = r.ctrl.Tick(dt)
		_ = r.ctrl.FixedTick(dt)
	}
}
