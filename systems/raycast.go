package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/components"
)

// Layer selects which geometry a ray is tested against.
type Layer uint8

const (
	LayerObstacles Layer = 1 << iota
	LayerGround
)

// Raycaster intersects rays with static obstacle boxes and the ground plane.
// Obstacles are static; call Refresh after adding or removing any.
type Raycaster struct {
	filter *ecs.Filter1[components.Obstacle]
	boxes  []r3.Box
}

// NewRaycaster creates a raycaster over the world's obstacles.
func NewRaycaster(w *ecs.World) *Raycaster {
	r := &Raycaster{filter: ecs.NewFilter1[components.Obstacle](w)}
	r.Refresh()
	return r
}

// Refresh re-reads the obstacle boxes from the world.
func (r *Raycaster) Refresh() {
	r.boxes = r.boxes[:0]
	query := r.filter.Query()
	for query.Next() {
		obs := query.Get()
		r.boxes = append(r.boxes, obs.Box)
	}
}

// Boxes returns the cached obstacle boxes.
func (r *Raycaster) Boxes() []r3.Box {
	return r.boxes
}

// Raycast returns the nearest hit within maxDist along dir (need not be
// unit length) against the selected layers.
func (r *Raycaster) Raycast(origin, dir r3.Vec, maxDist float64, mask Layer) (bot.RayHit, bool) {
	n := r3.Norm(dir)
	if n == 0 || maxDist <= 0 {
		return bot.RayHit{}, false
	}
	dir = r3.Scale(1/n, dir)

	best := math.Inf(1)
	if mask&LayerObstacles != 0 {
		for _, box := range r.boxes {
			if t, ok := rayBox(origin, dir, box); ok && t < best {
				best = t
			}
		}
	}
	if mask&LayerGround != 0 && dir.Y < 0 && origin.Y >= 0 {
		if t := -origin.Y / dir.Y; t < best {
			best = t
		}
	}

	if best > maxDist {
		return bot.RayHit{}, false
	}
	return bot.RayHit{Point: r3.Add(origin, r3.Scale(best, dir)), Distance: best}, true
}

// Probe returns a bot.Probe bound to the given layers.
func (r *Raycaster) Probe(mask Layer) bot.Probe {
	return layerProbe{r: r, mask: mask}
}

type layerProbe struct {
	r    *Raycaster
	mask Layer
}

func (p layerProbe) Raycast(origin, dir r3.Vec, maxDist float64) (bot.RayHit, bool) {
	return p.r.Raycast(origin, dir, maxDist, p.mask)
}

// rayBox intersects a unit ray with an axis-aligned box using the slab
// method. A ray starting inside the box hits at t=0.
func rayBox(origin, dir r3.Vec, box r3.Box) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)

	slab := func(o, d, lo, hi float64) bool {
		if d == 0 {
			return o >= lo && o <= hi
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		return tmin <= tmax
	}

	if !slab(origin.X, dir.X, box.Min.X, box.Max.X) ||
		!slab(origin.Y, dir.Y, box.Min.Y, box.Max.Y) ||
		!slab(origin.Z, dir.Z, box.Min.Z, box.Max.Z) {
		return 0, false
	}
	return tmin, true
}

// ResolveCircleBox pushes a vertical cylinder (center pos, radius) out of a
// box's XZ footprint. It returns the corrected position and the horizontal
// push normal, or false if there is no overlap.
func ResolveCircleBox(pos r3.Vec, radius float64, box r3.Box) (r3.Vec, r3.Vec, bool) {
	cx := math.Max(box.Min.X, math.Min(pos.X, box.Max.X))
	cz := math.Max(box.Min.Z, math.Min(pos.Z, box.Max.Z))
	dx, dz := pos.X-cx, pos.Z-cz
	d2 := dx*dx + dz*dz

	if d2 > radius*radius {
		return pos, r3.Vec{}, false
	}

	if d2 > 0 {
		d := math.Sqrt(d2)
		normal := r3.Vec{X: dx / d, Z: dz / d}
		push := radius - d
		return r3.Add(pos, r3.Scale(push, normal)), normal, true
	}

	// Center inside the footprint: leave through the nearest face.
	left := pos.X - box.Min.X
	right := box.Max.X - pos.X
	back := pos.Z - box.Min.Z
	front := box.Max.Z - pos.Z
	switch math.Min(math.Min(left, right), math.Min(back, front)) {
	case left:
		return r3.Vec{X: box.Min.X - radius, Y: pos.Y, Z: pos.Z}, r3.Vec{X: -1}, true
	case right:
		return r3.Vec{X: box.Max.X + radius, Y: pos.Y, Z: pos.Z}, r3.Vec{X: 1}, true
	case back:
		return r3.Vec{X: pos.X, Y: pos.Y, Z: box.Min.Z - radius}, r3.Vec{Z: -1}, true
	}
	return r3.Vec{X: pos.X, Y: pos.Y, Z: box.Max.Z + radius}, r3.Vec{Z: 1}, true
}
