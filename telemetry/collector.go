package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	shots         int
	hits          int
	damage        float64
	kills         int
	respawns      int
	stuckEpisodes int
	stateChanges  int

	// State occupancy, summed over per-tick samples
	occupancy    Occupancy
	agentSamples int
}

// Occupancy counts agents per behavior state.
type Occupancy struct {
	Chase   int
	Attack  int
	RunAway int
	Unstuck int // overlaps the other three
}

// Sample holds the world state read at flush time.
type Sample struct {
	Alive       int
	Projectiles int
	Healths     []float64
	Speeds      []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec/dt + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventShot:
		c.shots++
	case EventHit:
		c.hits++
		c.damage += e.Amount
	case EventKill:
		c.kills++
	case EventRespawn:
		c.respawns++
	case EventStuck:
		c.stuckEpisodes++
	case EventStateChange:
		c.stateChanges++
	}
}

// SampleStates adds one tick's state occupancy.
func (c *Collector) SampleStates(o Occupancy) {
	c.occupancy.Chase += o.Chase
	c.occupancy.Attack += o.Attack
	c.occupancy.RunAway += o.RunAway
	c.occupancy.Unstuck += o.Unstuck
	c.agentSamples += o.Chase + o.Attack + o.RunAway
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	var hitRate float64
	if c.shots > 0 {
		hitRate = float64(c.hits) / float64(c.shots)
	}

	healthMean, healthP10, healthP50, healthP90 := ComputeDistribution(s.Healths)
	speedMean, _, speedP50, speedP90 := ComputeDistribution(s.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Alive:       s.Alive,
		Projectiles: s.Projectiles,

		Shots:         c.shots,
		Hits:          c.hits,
		Damage:        c.damage,
		Kills:         c.kills,
		Respawns:      c.respawns,
		StuckEpisodes: c.stuckEpisodes,
		StateChanges:  c.stateChanges,
		HitRate:       hitRate,

		HealthMean: healthMean,
		HealthP10:  healthP10,
		HealthP50:  healthP50,
		HealthP90:  healthP90,

		SpeedMean: speedMean,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,
	}

	if c.agentSamples > 0 {
		n := float64(c.agentSamples)
		stats.ChaseFrac = float64(c.occupancy.Chase) / n
		stats.AttackFrac = float64(c.occupancy.Attack) / n
		stats.RunAwayFrac = float64(c.occupancy.RunAway) / n
		stats.UnstuckFrac = float64(c.occupancy.Unstuck) / n
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.shots = 0
	c.hits = 0
	c.damage = 0
	c.kills = 0
	c.respawns = 0
	c.stuckEpisodes = 0
	c.stateChanges = 0
	c.occupancy = Occupancy{}
	c.agentSamples = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
