package bot

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/vmath"
)

// StuckMonitor samples displacement every interval and, when the agent has
// neither moved nor picked up speed, runs a timed reverse-and-turn override.
type StuckMonitor struct {
	interval float64
	minMove  float64
	minSpeed float64
	duration float64

	checkTimer   float64
	lastPosition r3.Vec

	reversing    bool
	reverseTimer float64
	turn         float64
	episodes     int
}

// timerEpsilon absorbs float drift in accumulated frame times so a timer
// expires on the tick its duration is reached.
const timerEpsilon = 1e-9

// NewStuckMonitor creates a monitor whose first sample is start.
func NewStuckMonitor(cfg Config, start r3.Vec) *StuckMonitor {
	return &StuckMonitor{
		interval:     cfg.StuckInterval,
		minMove:      cfg.StuckDistance,
		minSpeed:     cfg.StuckSpeed,
		duration:     cfg.ReverseDuration,
		lastPosition: start,
	}
}

// Update advances the monitor. It returns true when a new episode started.
func (m *StuckMonitor) Update(dt float64, pos r3.Vec, speed float64, rng Random) bool {
	if m.reversing {
		m.reverseTimer += dt
		if m.reverseTimer >= m.duration-timerEpsilon {
			m.reversing = false
			m.reverseTimer = 0
		}
	}

	m.checkTimer += dt
	if m.checkTimer < m.interval-timerEpsilon {
		return false
	}

	started := false
	moved := vmath.Distance(pos, m.lastPosition)
	if !m.reversing && moved < m.minMove && speed < m.minSpeed {
		m.reversing = true
		m.reverseTimer = 0
		m.turn = randomSign(rng)
		m.episodes++
		started = true
	}
	m.lastPosition = pos
	m.checkTimer = 0
	return started
}

// Active reports whether the reverse override is running.
func (m *StuckMonitor) Active() bool {
	return m.reversing
}

// Command returns the override's turn and throttle.
func (m *StuckMonitor) Command() (turn, throttle float64) {
	return m.turn, -1
}

// Episodes returns how many stuck episodes have started.
func (m *StuckMonitor) Episodes() int {
	return m.episodes
}
