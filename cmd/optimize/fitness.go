package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/config"
	"github.com/pthm-cable/botarena/game"
	"github.com/pthm-cable/botarena/telemetry"
)

// FitnessEvaluator runs headless matches pitting candidate thresholds
// against the baseline and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	baseline   bot.Config
	logger     *slog.Logger

	mu        sync.Mutex
	lastMatch matchResult // summed over the seeds of the most recent Evaluate call
}

// matchResult holds the outcome of one match for each team.
// Even roster slots field the candidate, odd slots the baseline.
type matchResult struct {
	candidateKills int
	baselineKills  int
	candidateShots int
	candidateHits  int
}

// NewFitnessEvaluator creates a new evaluator. The base config must have
// a finite match duration.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		baseline:   baseCfg.BotParams(),
		logger:     slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
}

// LastMatch returns the kills and accuracy summed over the seeds of the
// most recent evaluation.
func (fe *FitnessEvaluator) LastMatch() (candidateKills, baselineKills int, hitRate float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	m := fe.lastMatch
	if m.candidateShots > 0 {
		hitRate = float64(m.candidateHits) / float64(m.candidateShots)
	}
	return m.candidateKills, m.baselineKills, hitRate
}

// Evaluate computes fitness for a parameter vector (lower = better):
// the negated mean kill margin of the candidate over the baseline.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	candidate := fe.params.Apply(fe.baseline, x)

	results := make([]matchResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runMatch(candidate, s)
		}(i, seed)
	}
	wg.Wait()

	var total matchResult
	margins := make([]float64, len(results))
	for i, r := range results {
		margins[i] = float64(r.candidateKills - r.baselineKills)
		total.candidateKills += r.candidateKills
		total.baselineKills += r.baselineKills
		total.candidateShots += r.candidateShots
		total.candidateHits += r.candidateHits
	}

	fe.mu.Lock()
	fe.lastMatch = total
	fe.mu.Unlock()

	return computeFitness(margins)
}

// runMatch plays one seeded match to the end of its timer.
func (fe *FitnessEvaluator) runMatch(candidate bot.Config, seed int64) matchResult {
	cfg := fe.copyConfig()

	g := game.NewGameWithOptions(game.Options{
		Config: cfg,
		Seed:   seed,
		Logger: fe.logger,
		BotParams: func(slot int) bot.Config {
			if slot%2 == 0 {
				return candidate
			}
			return fe.baseline
		},
	})
	defer g.Unload()

	for !g.Finished() {
		g.Update(cfg.Physics.DT)
	}
	return tally(g, g.Scores())
}

// tally splits the scoreboard into the two teams.
func tally(g *game.Game, scores []telemetry.ScoreEntry) matchResult {
	var r matchResult
	for _, e := range scores {
		slot := g.Slot(e.ID)
		switch {
		case slot < 0:
			// dummy
		case slot%2 == 0:
			r.candidateKills += e.Kills
			r.candidateShots += e.Shots
			r.candidateHits += e.Hits
		default:
			r.baselineKills += e.Kills
		}
	}
	return r
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Arena.Obstacles = append([]config.ObstacleConfig(nil), fe.baseConfig.Arena.Obstacles...)
	cfg.Arena.SpawnPoints = append([]config.SpawnConfig(nil), fe.baseConfig.Arena.SpawnPoints...)
	cfg.Arena.Dummies = append([]config.Vec3(nil), fe.baseConfig.Arena.Dummies...)
	return &cfg
}

// computeFitness negates the mean kill margin. No matches is the worst
// possible score.
func computeFitness(margins []float64) float64 {
	if len(margins) == 0 {
		return math.Inf(1)
	}
	return -stat.Mean(margins, nil)
}
