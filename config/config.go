// Package config provides configuration loading and access for the arena.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/vmath"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Arena      ArenaConfig      `yaml:"arena"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Car        CarConfig        `yaml:"car"`
	Bot        BotConfig        `yaml:"bot"`
	Projectile ProjectileConfig `yaml:"projectile"`
	Match      MatchConfig      `yaml:"match"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec3 is a point in YAML flow form: [x, y, z].
type Vec3 [3]float64

// Vec converts to an r3 vector.
func (v Vec3) Vec() r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

// Range is an inclusive [min, max] interval a stat interpolates over.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// At returns the value for a stat percentage in [0, 100].
func (r Range) At(stat float64) float64 {
	return vmath.Lerp(r.Min, r.Max, stat/100)
}

// ArenaConfig holds the playing field layout.
// The floor is y=0 and spans [-width/2, width/2] x [-depth/2, depth/2].
type ArenaConfig struct {
	Width        float64          `yaml:"width"`
	Depth        float64          `yaml:"depth"`
	WallHeight   float64          `yaml:"wall_height"`
	GridCellSize float64          `yaml:"grid_cell_size"`
	Obstacles    []ObstacleConfig `yaml:"obstacles"`
	SpawnPoints  []SpawnConfig    `yaml:"spawn_points"`
	Dummies      []Vec3           `yaml:"dummies"` // combat-capable targets without a controller
}

// ObstacleConfig is an axis-aligned box.
type ObstacleConfig struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// SpawnConfig is a spawn position and facing in degrees.
type SpawnConfig struct {
	Position Vec3    `yaml:"position"`
	Yaw      float64 `yaml:"yaw"`
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT               float64 `yaml:"dt"`       // logic frame
	FixedDT          float64 `yaml:"fixed_dt"` // physics step
	Gravity          float64 `yaml:"gravity"`
	MaxVerticalSpeed float64 `yaml:"max_vertical_speed"`
	Restitution      float64 `yaml:"restitution"` // fraction of speed kept after hitting a wall
}

// CarConfig holds chassis stats. Each stat is a percentage interpolated
// over its range, the same way for every car.
type CarConfig struct {
	SpeedStat        float64 `yaml:"speed_stat"`
	AccelerationStat float64 `yaml:"acceleration_stat"`
	JumpStat         float64 `yaml:"jump_stat"`
	HealthStat       float64 `yaml:"health_stat"`
	TurnStat         float64 `yaml:"turn_stat"`

	SpeedRange        Range `yaml:"speed_range"`
	AccelerationRange Range `yaml:"acceleration_range"`
	JumpRange         Range `yaml:"jump_range"`
	HealthRange       Range `yaml:"health_range"`
	TurnRange         Range `yaml:"turn_range"` // degrees per second

	Radius              float64 `yaml:"radius"`
	Height              float64 `yaml:"height"`
	GroundCheckOffset   float64 `yaml:"ground_check_offset"`
	GroundCheckDistance float64 `yaml:"ground_check_distance"`
	FirePoint           Vec3    `yaml:"fire_point"` // local: x right, y up, z forward
}

// BotConfig holds controller thresholds (see bot.Config).
type BotConfig struct {
	EngagementDistance    float64 `yaml:"engagement_distance"`
	StoppingDistance      float64 `yaml:"stopping_distance"`
	StoppingSpeed         float64 `yaml:"stopping_speed"`
	ObstacleProbeDistance float64 `yaml:"obstacle_probe_distance"`
	SideProbeDistance     float64 `yaml:"side_probe_distance"`
	JumpableHeight        float64 `yaml:"jumpable_height"`
	AvoidanceTurnStrength float64 `yaml:"avoidance_turn_strength"`
	ProbeHeight           float64 `yaml:"probe_height"`
	FireForce             float64 `yaml:"fire_force"`
	FireCooldown          float64 `yaml:"fire_cooldown"`
	TargetInterval        float64 `yaml:"target_interval"`
	RunAwayDuration       float64 `yaml:"run_away_duration"`
	StuckInterval         float64 `yaml:"stuck_interval"`
	StuckDistance         float64 `yaml:"stuck_distance"`
	StuckSpeed            float64 `yaml:"stuck_speed"`
	ReverseDuration       float64 `yaml:"reverse_duration"`
	TurnAngleScale        float64 `yaml:"turn_angle_scale"`
	AvoidThrottle         float64 `yaml:"avoid_throttle"`
	AvoidReverseThrottle  float64 `yaml:"avoid_reverse_throttle"`
}

// ProjectileConfig holds projectile parameters.
type ProjectileConfig struct {
	Lifetime float64 `yaml:"lifetime"`
	ArmDelay float64 `yaml:"arm_delay"` // seconds before a projectile can deal damage
	Damage   float64 `yaml:"damage"`
	Radius   float64 `yaml:"radius"`
	Mass     float64 `yaml:"mass"`
}

// MatchConfig holds match flow parameters.
type MatchConfig struct {
	Bots         int     `yaml:"bots"`
	Duration     float64 `yaml:"duration"`  // seconds of play after the countdown; 0 = endless
	Countdown    float64 `yaml:"countdown"` // seconds controllers stay idle at start
	RespawnDelay float64 `yaml:"respawn_delay"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxSpeed     float64 // Car.SpeedRange at SpeedStat
	Acceleration float64
	JumpForce    float64
	MaxHealth    float64
	TurnSpeed    float64 // degrees per second
	Bounds       r3.Box  // arena floor footprint, Y spans the wall height
	FixedSteps   int     // physics steps per logic frame
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Invalid values are
// clamped by Validate before derived values are computed.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Validate()
	cfg.computeDerived()
	return cfg, nil
}

// Defaults returns the embedded default configuration, unvalidated.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Refresh recomputes derived values after fields were changed in code.
func (c *Config) Refresh() {
	c.Validate()
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	car := c.Car
	c.Derived.MaxSpeed = car.SpeedRange.At(car.SpeedStat)
	c.Derived.Acceleration = car.AccelerationRange.At(car.AccelerationStat)
	c.Derived.JumpForce = car.JumpRange.At(car.JumpStat)
	c.Derived.MaxHealth = car.HealthRange.At(car.HealthStat)
	c.Derived.TurnSpeed = car.TurnRange.At(car.TurnStat)

	hw, hd := c.Arena.Width/2, c.Arena.Depth/2
	c.Derived.Bounds = r3.Box{
		Min: r3.Vec{X: -hw, Y: 0, Z: -hd},
		Max: r3.Vec{X: hw, Y: c.Arena.WallHeight, Z: hd},
	}

	steps := int(c.Physics.DT/c.Physics.FixedDT + 0.5)
	if steps < 1 {
		steps = 1
	}
	c.Derived.FixedSteps = steps
}

// BotParams converts the bot section into controller thresholds.
func (c *Config) BotParams() bot.Config {
	b := c.Bot
	return bot.Config{
		EngagementDistance:    b.EngagementDistance,
		StoppingDistance:      b.StoppingDistance,
		StoppingSpeed:         b.StoppingSpeed,
		ObstacleProbeDistance: b.ObstacleProbeDistance,
		SideProbeDistance:     b.SideProbeDistance,
		JumpableHeight:        b.JumpableHeight,
		AvoidanceTurnStrength: b.AvoidanceTurnStrength,
		ProbeHeight:           b.ProbeHeight,
		FireForce:             b.FireForce,
		FireCooldown:          b.FireCooldown,
		TargetInterval:        b.TargetInterval,
		RunAwayDuration:       b.RunAwayDuration,
		StuckInterval:         b.StuckInterval,
		StuckDistance:         b.StuckDistance,
		StuckSpeed:            b.StuckSpeed,
		ReverseDuration:       b.ReverseDuration,
		TurnAngleScale:        b.TurnAngleScale,
		AvoidThrottle:         b.AvoidThrottle,
		AvoidReverseThrottle:  b.AvoidReverseThrottle,
	}
}

// SetBotParams stores controller thresholds back into the bot section.
func (c *Config) SetBotParams(p bot.Config) {
	c.Bot = BotConfig{
		EngagementDistance:    p.EngagementDistance,
		StoppingDistance:      p.StoppingDistance,
		StoppingSpeed:         p.StoppingSpeed,
		ObstacleProbeDistance: p.ObstacleProbeDistance,
		SideProbeDistance:     p.SideProbeDistance,
		JumpableHeight:        p.JumpableHeight,
		AvoidanceTurnStrength: p.AvoidanceTurnStrength,
		ProbeHeight:           p.ProbeHeight,
		FireForce:             p.FireForce,
		FireCooldown:          p.FireCooldown,
		TargetInterval:        p.TargetInterval,
		RunAwayDuration:       p.RunAwayDuration,
		StuckInterval:         p.StuckInterval,
		StuckDistance:         p.StuckDistance,
		StuckSpeed:            p.StuckSpeed,
		ReverseDuration:       p.ReverseDuration,
		TurnAngleScale:        p.TurnAngleScale,
		AvoidThrottle:         p.AvoidThrottle,
		AvoidReverseThrottle:  p.AvoidReverseThrottle,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
