package bot

// Config holds the tunable thresholds of a single agent.
// Distances are world units, speeds units/s, durations seconds.
type Config struct {
	EngagementDistance float64
	StoppingDistance   float64
	StoppingSpeed      float64

	ObstacleProbeDistance float64
	SideProbeDistance     float64
	JumpableHeight        float64
	AvoidanceTurnStrength float64
	ProbeHeight           float64 // probe origin above the agent's base

	FireForce    float64
	FireCooldown float64

	TargetInterval  float64
	RunAwayDuration float64
	StuckInterval   float64
	StuckDistance   float64
	StuckSpeed      float64
	ReverseDuration float64

	TurnAngleScale       float64 // degrees mapped to full turn input while fleeing
	AvoidThrottle        float64 // throttle while steering around with a clear side
	AvoidReverseThrottle float64 // throttle while boxed in; negative
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		EngagementDistance: 3,
		StoppingDistance:   5,
		StoppingSpeed:      10,

		ObstacleProbeDistance: 5,
		SideProbeDistance:     3,
		JumpableHeight:        0.5,
		AvoidanceTurnStrength: 1,
		ProbeHeight:           0.2,

		FireForce:    30,
		FireCooldown: 0.25,

		TargetInterval:  2,
		RunAwayDuration: 3,
		StuckInterval:   2,
		StuckDistance:   1,
		StuckSpeed:      1,
		ReverseDuration: 1,

		TurnAngleScale:       45,
		AvoidThrottle:        0.5,
		AvoidReverseThrottle: -0.3,
	}
}

// Sanitize replaces non-positive values with their defaults and returns the
// names of the fields it changed. AvoidReverseThrottle must be negative.
func (c *Config) Sanitize() []string {
	def := DefaultConfig()
	var clamped []string

	fix := func(name string, v *float64, fallback float64) {
		if !(*v > 0) {
			*v = fallback
			clamped = append(clamped, name)
		}
	}

	fix("EngagementDistance", &c.EngagementDistance, def.EngagementDistance)
	fix("StoppingDistance", &c.StoppingDistance, def.StoppingDistance)
	fix("StoppingSpeed", &c.StoppingSpeed, def.StoppingSpeed)
	fix("ObstacleProbeDistance", &c.ObstacleProbeDistance, def.ObstacleProbeDistance)
	fix("SideProbeDistance", &c.SideProbeDistance, def.SideProbeDistance)
	fix("JumpableHeight", &c.JumpableHeight, def.JumpableHeight)
	fix("AvoidanceTurnStrength", &c.AvoidanceTurnStrength, def.AvoidanceTurnStrength)
	fix("ProbeHeight", &c.ProbeHeight, def.ProbeHeight)
	fix("FireForce", &c.FireForce, def.FireForce)
	fix("FireCooldown", &c.FireCooldown, def.FireCooldown)
	fix("TargetInterval", &c.TargetInterval, def.TargetInterval)
	fix("RunAwayDuration", &c.RunAwayDuration, def.RunAwayDuration)
	fix("StuckInterval", &c.StuckInterval, def.StuckInterval)
	fix("StuckDistance", &c.StuckDistance, def.StuckDistance)
	fix("StuckSpeed", &c.StuckSpeed, def.StuckSpeed)
	fix("ReverseDuration", &c.ReverseDuration, def.ReverseDuration)
	fix("TurnAngleScale", &c.TurnAngleScale, def.TurnAngleScale)
	fix("AvoidThrottle", &c.AvoidThrottle, def.AvoidThrottle)

	if !(c.AvoidReverseThrottle < 0) {
		c.AvoidReverseThrottle = def.AvoidReverseThrottle
		clamped = append(clamped, "AvoidReverseThrottle")
	}

	return clamped
}
