package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestNearest checks nearest selection, self exclusion and ties.
func TestNearest(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Contact
		want       ID
	}{
		{"empty", nil, None},
		{"only self", []Contact{{ID: selfID}}, None},
		{"picks closest", []Contact{
			{ID: 2, Position: r3.Vec{Z: 10}},
			{ID: 3, Position: r3.Vec{X: 4}},
			{ID: 4, Position: r3.Vec{X: -6}},
		}, 3},
		{"self is skipped even if closest", []Contact{
			{ID: selfID, Position: r3.Vec{}},
			{ID: 5, Position: r3.Vec{Z: 100}},
		}, 5},
		{"no upper bound", []Contact{{ID: 9, Position: r3.Vec{X: 1e6}}}, 9},
		{"tie keeps first", []Contact{
			{ID: 7, Position: r3.Vec{X: 2}},
			{ID: 8, Position: r3.Vec{X: -2}},
		}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nearest(r3.Vec{}, tt.candidates, selfID))
		})
	}
}

// TestTargetAcquisitionInterval verifies the first update scans and later
// scans wait for the interval.
func TestTargetAcquisitionInterval(t *testing.T) {
	reg := newRegistry()
	reg.put(2, r3.Vec{Z: 10})
	ta := NewTargetAcquisition(2)

	assert.True(t, ta.Update(0.5, selfID, r3.Vec{}, reg))
	assert.Equal(t, ID(2), ta.Target())

	// A closer entity appears; it is only picked up at the next scan.
	reg.put(3, r3.Vec{Z: 1})
	for i := 0; i < 3; i++ {
		assert.False(t, ta.Update(0.5, selfID, r3.Vec{}, reg))
		assert.Equal(t, ID(2), ta.Target())
	}
	assert.True(t, ta.Update(0.5, selfID, r3.Vec{}, reg))
	assert.Equal(t, ID(3), ta.Target())
}

// TestTargetAcquisitionNoCandidates verifies the target clears to idle.
func TestTargetAcquisitionNoCandidates(t *testing.T) {
	reg := newRegistry()
	reg.put(2, r3.Vec{X: 3})
	ta := NewTargetAcquisition(1)
	ta.Update(0.5, selfID, r3.Vec{}, reg)
	assert.Equal(t, ID(2), ta.Target())

	reg.remove(2)
	ta.Update(1, selfID, r3.Vec{}, reg)
	assert.Equal(t, None, ta.Target())

	_, ok := ta.Resolve(reg)
	assert.False(t, ok)
}

// TestTargetAcquisitionStaleReference verifies a vanished target is
// dropped on resolve and rescanned on the next update.
func TestTargetAcquisitionStaleReference(t *testing.T) {
	reg := newRegistry()
	reg.put(2, r3.Vec{X: 3})
	reg.put(3, r3.Vec{X: 8})
	ta := NewTargetAcquisition(2)
	ta.Update(0.25, selfID, r3.Vec{}, reg)
	assert.Equal(t, ID(2), ta.Target())

	pos, ok := ta.Resolve(reg)
	assert.True(t, ok)
	assert.Equal(t, r3.Vec{X: 3}, pos)

	reg.remove(2)
	_, ok = ta.Resolve(reg)
	assert.False(t, ok)
	assert.Equal(t, None, ta.Target())

	assert.True(t, ta.Update(0.25, selfID, r3.Vec{}, reg), "stale target forces a rescan")
	assert.Equal(t, ID(3), ta.Target())
}

// TestTargetAcquisitionNilRegistry verifies a missing registry means idle.
func TestTargetAcquisitionNilRegistry(t *testing.T) {
	ta := NewTargetAcquisition(2)
	ta.Update(0.5, selfID, r3.Vec{}, nil)
	assert.Equal(t, None, ta.Target())
	_, ok := ta.Resolve(nil)
	assert.False(t, ok)
}
