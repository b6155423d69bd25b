package main

import (
	"github.com/pthm-cable/botarena/bot"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable controller thresholds.
// Defaults match the arena tuning in config/defaults.yaml.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "engagement_distance", Path: "bot.engagement_distance", Min: 2, Max: 30, Default: 10},
			{Name: "stopping_distance", Path: "bot.stopping_distance", Min: 3, Max: 40, Default: 15},
			{Name: "obstacle_probe_distance", Path: "bot.obstacle_probe_distance", Min: 2, Max: 20, Default: 10},
			{Name: "side_probe_distance", Path: "bot.side_probe_distance", Min: 1, Max: 10, Default: 4},
			{Name: "avoidance_turn_strength", Path: "bot.avoidance_turn_strength", Min: 0.2, Max: 1, Default: 1},
			{Name: "fire_cooldown", Path: "bot.fire_cooldown", Min: 0.1, Max: 1.5, Default: 0.25},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// Apply returns base with the (clamped) parameter values written over it.
// Order must match Specs order.
func (pv *ParamVector) Apply(base bot.Config, values []float64) bot.Config {
	c := pv.Clamp(values)
	base.EngagementDistance = c[0]
	base.StoppingDistance = c[1]
	base.ObstacleProbeDistance = c[2]
	base.SideProbeDistance = c[3]
	base.AvoidanceTurnStrength = c[4]
	base.FireCooldown = c[5]
	return base
}

// Extract reads the current parameter values from a controller config.
func (pv *ParamVector) Extract(cfg bot.Config) []float64 {
	return []float64{
		cfg.EngagementDistance,
		cfg.StoppingDistance,
		cfg.ObstacleProbeDistance,
		cfg.SideProbeDistance,
		cfg.AvoidanceTurnStrength,
		cfg.FireCooldown,
	}
}
