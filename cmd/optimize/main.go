// Package main provides CMA-ES optimization of the bot controller
// thresholds, scored by kill margin against the baseline tuning.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/botarena/config"
)

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval                  int     `csv:"eval"`
	Fitness               float64 `csv:"fitness"`
	CandidateKills        int     `csv:"candidate_kills"`
	BaselineKills         int     `csv:"baseline_kills"`
	HitRate               float64 `csv:"hit_rate"`
	EngagementDistance    float64 `csv:"engagement_distance"`
	StoppingDistance      float64 `csv:"stopping_distance"`
	ObstacleProbeDistance float64 `csv:"obstacle_probe_distance"`
	SideProbeDistance     float64 `csv:"side_probe_distance"`
	AvoidanceTurnStrength float64 `csv:"avoidance_turn_strength"`
	FireCooldown          float64 `csv:"fire_cooldown"`
}

func newEvalRecord(eval int, fitness float64, values []float64) EvalRecord {
	return EvalRecord{
		Eval:                  eval,
		Fitness:               fitness,
		EngagementDistance:    values[0],
		StoppingDistance:      values[1],
		ObstacleProbeDistance: values[2],
		SideProbeDistance:     values[3],
		AvoidanceTurnStrength: values[4],
		FireCooldown:          values[5],
	}
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	duration := flag.Float64("duration", 0, "Match duration in seconds (0 = use config)")
	bots := flag.Int("bots", 0, "Bots per match, split evenly between candidate and baseline (0 = use config)")
	seeds := flag.Int("seeds", 4, "Number of matches per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Create output directory
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Load base config
	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *duration > 0 {
		baseCfg.Match.Duration = *duration
	}
	if *bots > 0 {
		baseCfg.Match.Bots = *bots
	}
	baseCfg.Refresh()
	if baseCfg.Match.Duration <= 0 {
		log.Fatal("match duration must be positive")
	}
	if baseCfg.Match.Bots < 2 {
		log.Fatal("need at least two bots")
	}

	params := NewParamVector()

	// Generate seeds for evaluation
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.Extract(baseCfg.BotParams()))

	// Population size
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; each evaluation runs its seeds in parallel
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Denormalize and clamp to get actual parameter values
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			cand, base, hitRate := evaluator.LastMatch()
			rec := newEvalRecord(evalCount, fitness, clamped)
			rec.CandidateKills = cand
			rec.BaselineKills = base
			rec.HitRate = hitRate

			records := []EvalRecord{rec}
			if evalCount == 1 {
				err = gocsv.Marshal(records, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(records, logFile)
			}
			if err != nil {
				log.Printf("failed to write log: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: kills %d vs %d hit_rate=%.2f fitness=%.2f (best=%.2f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, cand, base, hitRate, fitness, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Matches per evaluation: %d, %d bots, %.0fs each\n",
		*seeds, baseCfg.Match.Bots, baseCfg.Match.Duration)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.2f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	// Save best config
	baseCfg.SetBotParams(params.Apply(baseCfg.BotParams(), bestParams))
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
