package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pthm-cable/botarena/config"
	"github.com/pthm-cable/botarena/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until the match ends)")
	bots := flag.Int("bots", 0, "Number of bots (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *bots > 0 {
		cfg.Match.Bots = *bots
		cfg.Refresh()
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	g := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		Logger:         logger,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
	})
	defer g.Unload()

	slog.Info("starting match",
		"seed", rngSeed,
		"bots", cfg.Match.Bots,
		"duration", cfg.Match.Duration,
		"max_ticks", *maxTicks,
	)

	if cfg.Match.Duration <= 0 && *maxTicks <= 0 {
		slog.Warn("endless match without -max-ticks; interrupt to stop")
	}

	for !g.Finished() {
		g.Update(cfg.Physics.DT)

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
