package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// World state at window end
	Alive       int `csv:"alive"`
	Projectiles int `csv:"projectiles"`

	// Events during window
	Shots         int     `csv:"shots"`
	Hits          int     `csv:"hits"`
	Damage        float64 `csv:"damage"`
	Kills         int     `csv:"kills"`
	Respawns      int     `csv:"respawns"`
	StuckEpisodes int     `csv:"stuck"`
	StateChanges  int     `csv:"state_changes"`
	HitRate       float64 `csv:"hit_rate"`

	// Health distribution (sampled at window end)
	HealthMean float64 `csv:"health_mean"`
	HealthP10  float64 `csv:"health_p10"`
	HealthP50  float64 `csv:"health_p50"`
	HealthP90  float64 `csv:"health_p90"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Fraction of agent-ticks spent in each state
	ChaseFrac   float64 `csv:"chase_frac"`
	AttackFrac  float64 `csv:"attack_frac"`
	RunAwayFrac float64 `csv:"runaway_frac"`
	UnstuckFrac float64 `csv:"unstuck_frac"`
}

// ComputeDistribution returns the mean and the empirical 10th, 50th and
// 90th percentiles of values. Returns zeros for an empty slice.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("alive", s.Alive),
		slog.Int("projectiles", s.Projectiles),
		slog.Int("shots", s.Shots),
		slog.Int("hits", s.Hits),
		slog.Float64("damage", s.Damage),
		slog.Int("kills", s.Kills),
		slog.Int("respawns", s.Respawns),
		slog.Int("stuck", s.StuckEpisodes),
		slog.Int("state_changes", s.StateChanges),
		slog.Float64("hit_rate", s.HitRate),
		slog.Float64("health_mean", s.HealthMean),
		slog.Float64("health_p10", s.HealthP10),
		slog.Float64("health_p50", s.HealthP50),
		slog.Float64("health_p90", s.HealthP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("chase_frac", s.ChaseFrac),
		slog.Float64("attack_frac", s.AttackFrac),
		slog.Float64("runaway_frac", s.RunAwayFrac),
		slog.Float64("unstuck_frac", s.UnstuckFrac),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"alive", s.Alive,
		"projectiles", s.Projectiles,
		"shots", s.Shots,
		"hits", s.Hits,
		"kills", s.Kills,
		"respawns", s.Respawns,
		"stuck", s.StuckEpisodes,
		"hit_rate", s.HitRate,
		"health_p50", s.HealthP50,
		"speed_mean", s.SpeedMean,
		"attack_frac", s.AttackFrac,
		"runaway_frac", s.RunAwayFrac,
	)
}
