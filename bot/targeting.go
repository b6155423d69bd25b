package bot

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// TargetAcquisition periodically picks the nearest other combatant.
// The target is a weak reference: an identity resolved through the
// Registry every time it is used.
type TargetAcquisition struct {
	interval float64
	timer    float64
	target   ID
}

// NewTargetAcquisition creates a scanner that scans on its first update.
func NewTargetAcquisition(interval float64) *TargetAcquisition {
	return &TargetAcquisition{interval: interval, timer: interval}
}

// Update advances the scan timer and rescans when it elapses.
// Returns true if a scan ran.
func (t *TargetAcquisition) Update(dt float64, self ID, pos r3.Vec, reg Registry) bool {
	t.timer += dt
	if t.timer < t.interval {
		return false
	}
	t.timer = 0
	if reg == nil {
		t.target = None
		return true
	}
	t.target = Nearest(pos, reg.Combatants(self), self)
	return true
}

// Resolve returns the target's current position. A stale reference is
// cleared and a rescan is scheduled for the next update.
func (t *TargetAcquisition) Resolve(reg Registry) (r3.Vec, bool) {
	if t.target == None || reg == nil {
		return r3.Vec{}, false
	}
	pos, ok := reg.Locate(t.target)
	if !ok {
		t.target = None
		t.timer = t.interval
		return r3.Vec{}, false
	}
	return pos, true
}

// Target returns the current target identity, None if idle.
func (t *TargetAcquisition) Target() ID {
	return t.target
}

// Nearest returns the closest contact to pos, skipping self. No upper
// distance bound applies. Ties keep the first candidate found.
func Nearest(pos r3.Vec, candidates []Contact, self ID) ID {
	best := None
	bestDistSq := math.Inf(1)
	for _, c := range candidates {
		if c.ID == self || c.ID == None {
			continue
		}
		d := r3.Norm2(r3.Sub(c.Position, pos))
		if d < bestDistSq {
			bestDistSq = d
			best = c.ID
		}
	}
	return best
}
