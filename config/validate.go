package config

import (
	"log/slog"
	"strings"
	"unicode"
)

// Validate clamps values the simulation cannot run with back to their
// defaults and logs a warning per field. It returns the clamped field paths.
func (c *Config) Validate() []string {
	def := mustDefaults()
	v := &validator{}

	v.positive("arena.width", &c.Arena.Width, def.Arena.Width)
	v.positive("arena.depth", &c.Arena.Depth, def.Arena.Depth)
	v.positive("arena.wall_height", &c.Arena.WallHeight, def.Arena.WallHeight)
	v.positive("arena.grid_cell_size", &c.Arena.GridCellSize, def.Arena.GridCellSize)

	v.positive("physics.dt", &c.Physics.DT, def.Physics.DT)
	v.positive("physics.fixed_dt", &c.Physics.FixedDT, def.Physics.FixedDT)
	v.positive("physics.gravity", &c.Physics.Gravity, def.Physics.Gravity)
	v.positive("physics.max_vertical_speed", &c.Physics.MaxVerticalSpeed, def.Physics.MaxVerticalSpeed)
	v.within("physics.restitution", &c.Physics.Restitution, 0, 1, def.Physics.Restitution)

	v.within("car.speed_stat", &c.Car.SpeedStat, 0, 100, def.Car.SpeedStat)
	v.within("car.acceleration_stat", &c.Car.AccelerationStat, 0, 100, def.Car.AccelerationStat)
	v.within("car.jump_stat", &c.Car.JumpStat, 0, 100, def.Car.JumpStat)
	v.within("car.health_stat", &c.Car.HealthStat, 0, 100, def.Car.HealthStat)
	v.within("car.turn_stat", &c.Car.TurnStat, 0, 100, def.Car.TurnStat)
	v.span("car.speed_range", &c.Car.SpeedRange, def.Car.SpeedRange)
	v.span("car.acceleration_range", &c.Car.AccelerationRange, def.Car.AccelerationRange)
	v.span("car.jump_range", &c.Car.JumpRange, def.Car.JumpRange)
	v.span("car.health_range", &c.Car.HealthRange, def.Car.HealthRange)
	v.span("car.turn_range", &c.Car.TurnRange, def.Car.TurnRange)
	v.positive("car.radius", &c.Car.Radius, def.Car.Radius)
	v.positive("car.height", &c.Car.Height, def.Car.Height)
	v.positive("car.ground_check_offset", &c.Car.GroundCheckOffset, def.Car.GroundCheckOffset)
	v.positive("car.ground_check_distance", &c.Car.GroundCheckDistance, def.Car.GroundCheckDistance)

	params := c.BotParams()
	for _, field := range params.Sanitize() {
		v.clamped = append(v.clamped, "bot."+snake(field))
	}
	c.SetBotParams(params)

	v.positive("projectile.lifetime", &c.Projectile.Lifetime, def.Projectile.Lifetime)
	v.nonNegative("projectile.arm_delay", &c.Projectile.ArmDelay, def.Projectile.ArmDelay)
	v.positive("projectile.damage", &c.Projectile.Damage, def.Projectile.Damage)
	v.positive("projectile.radius", &c.Projectile.Radius, def.Projectile.Radius)
	v.positive("projectile.mass", &c.Projectile.Mass, def.Projectile.Mass)

	if c.Match.Bots < 0 {
		c.Match.Bots = def.Match.Bots
		v.clamped = append(v.clamped, "match.bots")
	}
	v.nonNegative("match.duration", &c.Match.Duration, def.Match.Duration)
	v.nonNegative("match.countdown", &c.Match.Countdown, def.Match.Countdown)
	v.nonNegative("match.respawn_delay", &c.Match.RespawnDelay, def.Match.RespawnDelay)

	v.positive("telemetry.stats_window", &c.Telemetry.StatsWindow, def.Telemetry.StatsWindow)
	if c.Telemetry.PerfCollectorWindow <= 0 {
		c.Telemetry.PerfCollectorWindow = def.Telemetry.PerfCollectorWindow
		v.clamped = append(v.clamped, "telemetry.perf_collector_window")
	}

	for _, field := range v.clamped {
		slog.Warn("config value out of range, using default", "field", field)
	}
	return v.clamped
}

type validator struct {
	clamped []string
}

func (v *validator) positive(name string, p *float64, def float64) {
	if !(*p > 0) {
		*p = def
		v.clamped = append(v.clamped, name)
	}
}

func (v *validator) nonNegative(name string, p *float64, def float64) {
	if !(*p >= 0) {
		*p = def
		v.clamped = append(v.clamped, name)
	}
}

func (v *validator) within(name string, p *float64, lo, hi, def float64) {
	if !(*p >= lo && *p <= hi) {
		*p = def
		v.clamped = append(v.clamped, name)
	}
}

func (v *validator) span(name string, r *Range, def Range) {
	if !(r.Min > 0 && r.Max >= r.Min) {
		*r = def
		v.clamped = append(v.clamped, name)
	}
}

func mustDefaults() *Config {
	def, err := Defaults()
	if err != nil {
		panic(err)
	}
	return def
}

// snake converts a Go field name to its yaml key.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
