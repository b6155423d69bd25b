// Package game drives the arena: it owns the ECS world, the systems and one
// controller per bot, and advances them in a fixed order every update.
package game

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/components"
	"github.com/pthm-cable/botarena/config"
	"github.com/pthm-cable/botarena/systems"
	"github.com/pthm-cable/botarena/telemetry"
)

// Options configures a new game.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	Logger         *slog.Logger // nil = slog.Default()
	LogStats       bool
	StatsWindowSec float64 // 0 = config
	OutputDir      string
	StatsCallback  func(telemetry.WindowStats)

	// BotParams returns the controller thresholds for the bot in the given
	// slot (0-based). nil = the config bot section for every bot.
	BotParams func(slot int) bot.Config
}

// agent is a controller-driven car.
type agent struct {
	id   uint32
	slot int
	ctrl *bot.Controller
	body *carBody

	// Last observed controller counters, for event detection.
	lastState bot.State
	lastStuck int
	lastShots int
	lastDiag  string
}

// Game holds the complete game state.
type Game struct {
	cfg    *config.Config
	world  *ecs.World
	rng    *rand.Rand
	logger *slog.Logger

	carMapper *ecs.Map6[
		components.Transform,
		components.Motion,
		components.Drive,
		components.Chassis,
		components.Health,
		components.Combatant,
	]
	obstacleMapper *ecs.Map1[components.Obstacle]
	combatFilter   *ecs.Filter2[components.Combatant, components.Health]

	// Individual component mappers for lookups
	tfMap      *ecs.Map1[components.Transform]
	moMap      *ecs.Map1[components.Motion]
	driveMap   *ecs.Map1[components.Drive]
	chassisMap *ecs.Map1[components.Chassis]
	hpMap      *ecs.Map1[components.Health]

	// Systems
	ray         *systems.Raycaster
	grid        *systems.SpatialGrid
	index       *systems.Combatants
	vehicles    *systems.VehicleSystem
	projectiles *systems.ProjectileSystem
	health      *systems.HealthSystem
	registry    *systems.SystemRegistry

	// Controllers by combatant ID
	agents    map[uint32]*agent
	agentIDs  []uint32
	botParams func(slot int) bot.Config

	spawns  *spawnPicker
	pending []respawn
	dummies map[uint32]config.Vec3

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	scoreboard       *telemetry.Scoreboard
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool

	// State
	tick      int32
	simTime   float64
	countdown float64
	matchTime float64
	finished  bool
	nextID    uint32
}

// NewGameWithOptions creates a game, builds the arena and spawns every car.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:    cfg,
		world:  world,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		logger: logger,
		carMapper: ecs.NewMap6[
			components.Transform,
			components.Motion,
			components.Drive,
			components.Chassis,
			components.Health,
			components.Combatant,
		](world),
		obstacleMapper: ecs.NewMap1[components.Obstacle](world),
		combatFilter:   ecs.NewFilter2[components.Combatant, components.Health](world),
		tfMap:          ecs.NewMap1[components.Transform](world),
		moMap:          ecs.NewMap1[components.Motion](world),
		driveMap:       ecs.NewMap1[components.Drive](world),
		chassisMap:     ecs.NewMap1[components.Chassis](world),
		hpMap:          ecs.NewMap1[components.Health](world),
		agents:         make(map[uint32]*agent),
		dummies:        make(map[uint32]config.Vec3),
		botParams:      opts.BotParams,
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		countdown:      cfg.Match.Countdown,
		nextID:         1,
	}

	g.buildArena()

	bounds := cfg.Derived.Bounds
	g.ray = systems.NewRaycaster(world)
	g.grid = systems.NewSpatialGrid(bounds, cfg.Arena.GridCellSize)
	g.index = systems.NewCombatants(world)
	g.vehicles = systems.NewVehicleSystem(world, g.ray, systems.VehicleParams{
		Gravity:             cfg.Physics.Gravity,
		MaxVerticalSpeed:    cfg.Physics.MaxVerticalSpeed,
		Restitution:         cfg.Physics.Restitution,
		GroundCheckOffset:   cfg.Car.GroundCheckOffset,
		GroundCheckDistance: cfg.Car.GroundCheckDistance,
		Bounds:              bounds,
	})
	g.projectiles = systems.NewProjectileSystem(world, g.ray, g.grid, systems.ProjectileParams{
		Lifetime:  cfg.Projectile.Lifetime,
		ArmDelay:  cfg.Projectile.ArmDelay,
		Damage:    cfg.Projectile.Damage,
		Radius:    cfg.Projectile.Radius,
		Mass:      cfg.Projectile.Mass,
		CarRadius: cfg.Car.Radius,
		CarHeight: cfg.Car.Height,
	})
	g.health = systems.NewHealthSystem(world, g.index)
	g.registry = systems.NewSystemRegistry()
	g.spawns = newSpawnPicker(cfg.Arena.SpawnPoints, g.rng)

	// Telemetry
	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Physics.DT)
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	g.scoreboard = telemetry.NewScoreboard(cfg.Physics.DT)
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		logger.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config", "error", err)
	}

	g.spawnInitialCars()

	logger.Info("arena ready",
		"bots", len(g.agents),
		"dummies", len(g.dummies),
		"obstacles", len(g.ray.Boxes()),
		"spawn_points", len(cfg.Arena.SpawnPoints),
		"seed", opts.Seed,
	)
	return g
}

// Update advances the game by one logic frame of dt seconds (<= 0 uses
// the configured frame): every controller ticks once, then the physics runs
// in fixed steps.
func (g *Game) Update(dt float64) {
	if g.finished {
		return
	}
	if dt <= 0 {
		dt = g.cfg.Physics.DT
	}

	g.perfCollector.StartTick()

	playing := g.countdown <= 0
	if playing {
		g.perfCollector.StartPhase(telemetry.PhaseControl)
		g.updateControllers(dt)
	} else {
		g.countdown -= dt
	}

	steps := int(dt/g.cfg.Physics.FixedDT + 0.5)
	if steps < 1 {
		steps = 1
	}
	fixedDT := dt / float64(steps)
	for i := 0; i < steps; i++ {
		g.fixedStep(fixedDT, playing)
	}

	g.simTime += dt
	g.perfCollector.StartPhase(telemetry.PhaseRespawn)
	g.processRespawns()

	if playing {
		g.matchTime += dt
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.flushTelemetry()

	g.perfCollector.EndTick()

	if playing && g.cfg.Match.Duration > 0 && g.matchTime >= g.cfg.Match.Duration {
		g.finish()
	}
}

// fixedStep runs one physics step.
func (g *Game) fixedStep(dt float64, playing bool) {
	if playing {
		g.perfCollector.StartPhase(telemetry.PhaseFiring)
		g.updateFiring(dt)
	}

	g.perfCollector.StartPhase(telemetry.PhaseVehicles)
	g.vehicles.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.updateSpatialGrid()

	g.perfCollector.StartPhase(telemetry.PhaseProjectiles)
	hits := g.projectiles.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseDamage)
	g.resolveDamage(g.health.Apply(hits))

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()
}

// updateControllers ticks every living bot in identity order.
func (g *Game) updateControllers(dt float64) {
	var occ telemetry.Occupancy
	for _, id := range g.agentIDs {
		a := g.agents[id]
		if !g.carAlive(a.body.e) {
			continue
		}

		g.reportDiag(a, a.ctrl.Tick(dt))

		if s := a.ctrl.State(); s != a.lastState {
			a.lastState = s
			g.collector.Record(telemetry.NewStateChangeEvent(g.tick, id, s.String()))
		}
		if n := a.ctrl.StuckEpisodes(); n != a.lastStuck {
			for ; a.lastStuck < n; a.lastStuck++ {
				g.collector.Record(telemetry.NewStuckEvent(g.tick, id))
				g.scoreboard.RecordStuck(id)
			}
		}

		switch a.ctrl.State() {
		case bot.Chase:
			occ.Chase++
		case bot.Attack:
			occ.Attack++
		case bot.RunAway:
			occ.RunAway++
		}
		if a.ctrl.Unstuck() {
			occ.Unstuck++
		}
	}
	g.collector.SampleStates(occ)
}

// updateFiring runs the fixed-step half of every living controller.
func (g *Game) updateFiring(dt float64) {
	for _, id := range g.agentIDs {
		a := g.agents[id]
		if !g.carAlive(a.body.e) {
			continue
		}

		g.reportDiag(a, a.ctrl.FixedTick(dt))

		for ; a.lastShots < a.ctrl.Shots(); a.lastShots++ {
			g.collector.Record(telemetry.NewShotEvent(g.tick, id))
			g.scoreboard.RecordShot(id)
		}
	}
}

// updateSpatialGrid rebuilds the spatial index with living combatants.
func (g *Game) updateSpatialGrid() {
	g.grid.Clear()

	query := g.combatFilter.Query()
	for query.Next() {
		_, hp := query.Get()
		if hp.Dead {
			continue
		}
		e := query.Entity()
		g.grid.Insert(e, g.tfMap.Get(e).Position)
	}
}

// reportDiag logs a controller diagnostic when it first appears or changes.
func (g *Game) reportDiag(a *agent, err error) {
	if err == nil {
		a.lastDiag = ""
		return
	}
	if msg := err.Error(); msg != a.lastDiag {
		a.lastDiag = msg
		g.logger.Warn("controller diagnostic", "agent", a.id, "error", err)
	}
}

// carAlive reports whether e is a car in the world that has not died.
func (g *Game) carAlive(e ecs.Entity) bool {
	if !g.world.Alive(e) {
		return false
	}
	hp := g.hpMap.Get(e)
	return hp != nil && !hp.Dead
}

// finish ends the match and writes the final scores.
func (g *Game) finish() {
	g.finished = true
	g.scoreboard.Finalize(g.tick)
	g.logMatchEnd()

	if err := g.outputManager.WriteScores(g.scoreboard.Entries()); err != nil {
		g.logger.Error("failed to write scores", "error", err)
	}
}

// Unload releases resources.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		g.logger.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of logic frames run.
func (g *Game) Tick() int32 {
	return g.tick
}

// SimTime returns the simulated seconds since start, countdown included.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// MatchTime returns the seconds played since the countdown ended.
func (g *Game) MatchTime() float64 {
	return g.matchTime
}

// Finished reports whether the match timer has expired.
func (g *Game) Finished() bool {
	return g.finished
}

// AgentIDs returns the identities of every bot in ascending order.
func (g *Game) AgentIDs() []uint32 {
	return append([]uint32(nil), g.agentIDs...)
}

// Controller returns the current controller of a bot, or nil.
func (g *Game) Controller(id uint32) *bot.Controller {
	if a := g.agents[id]; a != nil {
		return a.ctrl
	}
	return nil
}

// Slot returns the roster slot of a bot, or -1.
func (g *Game) Slot(id uint32) int {
	if a := g.agents[id]; a != nil {
		return a.slot
	}
	return -1
}

// AliveCount returns the number of living combatants.
func (g *Game) AliveCount() int {
	n := 0
	query := g.combatFilter.Query()
	for query.Next() {
		if _, hp := query.Get(); !hp.Dead {
			n++
		}
	}
	return n
}

// ProjectileCount returns the number of projectiles in flight.
func (g *Game) ProjectileCount() int {
	return g.projectiles.Count()
}

// Scoreboard returns the match scoreboard.
func (g *Game) Scoreboard() *telemetry.Scoreboard {
	return g.scoreboard
}

// Scores returns the ranked scoreboard entries.
func (g *Game) Scores() []telemetry.ScoreEntry {
	return g.scoreboard.Entries()
}

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perfCollector.Stats()
}


func (g *Game) addAgent(a *agent) {
	g.agents[a.id] = a
	g.agentIDs = append(g.agentIDs, a.id)
	sort.Slice(g.agentIDs, func(i, j int) bool { return g.agentIDs[i] < g.agentIDs[j] })
}
