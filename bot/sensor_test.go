package bot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func sensorConfig() Config {
	cfg := DefaultConfig()
	cfg.JumpableHeight = 0.6
	return cfg
}

// TestSenseClearPath verifies an empty forward probe reports not blocked.
func TestSenseClearPath(t *testing.T) {
	probe := &scriptedProbe{forward: r3.Vec{Z: 1}}
	s := NewObstacleSensor(probe, &seqRandom{vals: []float64{0.1}}, sensorConfig())

	av := s.Sense(r3.Vec{}, r3.Vec{Z: 1}, true)

	assert.False(t, av.Blocked)
	assert.False(t, av.Jump)
	require.Len(t, probe.calls, 1, "lateral probes only run after a forward hit")
	assert.InDelta(t, 0.2, probe.calls[0].origin.Y, 1e-9)
	assert.InDelta(t, 5, probe.calls[0].maxDist, 1e-9)
}

// TestSenseClassification checks the height threshold against grounded state.
func TestSenseClassification(t *testing.T) {
	tests := []struct {
		name        string
		height      float64
		grounded    bool
		wantBlocked bool
		wantJump    bool
	}{
		{"low obstacle grounded", 0.4, true, false, true},
		{"exactly jumpable grounded", 0.6, true, false, true},
		{"low obstacle airborne", 0.4, false, true, false},
		{"tall obstacle grounded", 2.0, true, true, false},
		{"tall obstacle airborne", 2.0, false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &scriptedProbe{
				forward: r3.Vec{Z: 1},
				front:   &RayHit{Point: r3.Vec{Y: tt.height, Z: 3}, Distance: 3},
			}
			s := NewObstacleSensor(probe, &seqRandom{vals: []float64{0.1}}, sensorConfig())

			av := s.Sense(r3.Vec{}, r3.Vec{Z: 1}, tt.grounded)

			assert.Equal(t, tt.wantBlocked, av.Blocked)
			assert.Equal(t, tt.wantJump, av.Jump)
			if tt.wantBlocked {
				assert.Len(t, probe.calls, 4)
			}
		})
	}
}

// TestSenseSteering checks the steer sign and throttle for each lateral case.
func TestSenseSteering(t *testing.T) {
	tests := []struct {
		name         string
		leftHit      bool
		rightHit     bool
		wantTurn     float64
		wantThrottle float64
	}{
		{"only left clear", false, true, -1, 0.5},
		{"only right clear", true, false, 1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &scriptedProbe{
				forward:  r3.Vec{Z: 1},
				front:    &RayHit{Point: r3.Vec{Y: 3, Z: 2}, Distance: 2},
				leftHit:  tt.leftHit,
				rightHit: tt.rightHit,
			}
			s := NewObstacleSensor(probe, &seqRandom{vals: []float64{0.1, 0.9}}, DefaultConfig())

			// Lateral clearance alone decides the sign, whatever the random source says.
			for i := 0; i < 4; i++ {
				av := s.Sense(r3.Vec{}, r3.Vec{Z: 1}, true)
				require.True(t, av.Blocked)
				assert.Equal(t, tt.wantTurn, av.Turn)
				assert.Equal(t, tt.wantThrottle, av.Throttle)
			}
		})
	}
}

// TestSenseTieBreak verifies both-clear and neither-clear yield a random ±1.
func TestSenseTieBreak(t *testing.T) {
	tests := []struct {
		name         string
		sidesHit     bool
		wantThrottle float64
	}{
		{"both clear", false, 0.5},
		{"neither clear", true, -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := &scriptedProbe{
				forward:  r3.Vec{Z: 1},
				front:    &RayHit{Point: r3.Vec{Y: 3, Z: 2}, Distance: 2},
				leftHit:  tt.sidesHit,
				rightHit: tt.sidesHit,
			}
			s := NewObstacleSensor(probe, &seqRandom{vals: []float64{0.1, 0.9}}, DefaultConfig())

			first := s.Sense(r3.Vec{}, r3.Vec{Z: 1}, true)
			second := s.Sense(r3.Vec{}, r3.Vec{Z: 1}, true)

			for _, av := range []Avoidance{first, second} {
				require.True(t, av.Blocked)
				assert.False(t, math.IsNaN(av.Turn))
				assert.Equal(t, 1.0, math.Abs(av.Turn))
				assert.Equal(t, tt.wantThrottle, av.Throttle)
			}
			assert.Equal(t, -1.0, first.Turn)
			assert.Equal(t, 1.0, second.Turn)
		})
	}
}

// TestSenseRotatedForward verifies lateral probes follow the agent's heading.
func TestSenseRotatedForward(t *testing.T) {
	// Facing +X, the agent's right is -Z.
	probe := &scriptedProbe{
		forward:  r3.Vec{X: 1},
		front:    &RayHit{Point: r3.Vec{X: 2, Y: 3}, Distance: 2},
		leftHit:  true,
		rightHit: false,
	}
	s := NewObstacleSensor(probe, nil, DefaultConfig())

	av := s.Sense(r3.Vec{}, r3.Vec{X: 1}, true)

	require.True(t, av.Blocked)
	assert.Equal(t, 1.0, av.Turn)
	require.Len(t, probe.calls, 4)
	assert.InDelta(t, -1, probe.calls[3].dir.Z, 1e-9)
	assert.InDelta(t, 3, probe.calls[3].maxDist, 1e-9)
}

// TestSenseWithoutProbe verifies a missing probe never blocks.
func TestSenseWithoutProbe(t *testing.T) {
	s := NewObstacleSensor(nil, nil, DefaultConfig())
	av := s.Sense(r3.Vec{}, r3.Vec{Z: 1}, true)
	assert.Equal(t, Avoidance{}, av)
}

// TestSenseNeverBlockedOnClearWorld exercises a probe that never hits.
func TestSenseNeverBlockedOnClearWorld(t *testing.T) {
	s := NewObstacleSensor(clearProbe{}, nil, DefaultConfig())
	for _, fwd := range []r3.Vec{{Z: 1}, {X: 1}, {X: -1, Z: -1}, {}} {
		assert.False(t, s.Sense(r3.Vec{X: 4, Z: 4}, fwd, false).Blocked)
	}
}
