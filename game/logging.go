package game

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/systems"
	"github.com/pthm-cable/botarena/telemetry"
)

// logWorldState logs one line per bot and a summary of the arena.
func (g *Game) logWorldState() {
	var chase, attack, runAway, unstuck, dead int

	for _, id := range g.agentIDs {
		a := g.agents[id]
		if !g.carAlive(a.body.e) {
			dead++
			continue
		}

		switch a.ctrl.State() {
		case bot.Chase:
			chase++
		case bot.Attack:
			attack++
		case bot.RunAway:
			runAway++
		}
		if a.ctrl.Unstuck() {
			unstuck++
		}

		pos := a.body.Position()
		g.logger.Debug("agent",
			"tick", g.tick,
			"id", id,
			"state", a.ctrl.State().String(),
			"target", uint32(a.ctrl.Target()),
			"unstuck", a.ctrl.Unstuck(),
			"health", g.hpMap.Get(a.body.e).Current,
			"speed", r3.Norm(a.body.Velocity()),
			"x", pos.X,
			"z", pos.Z,
		)
	}

	g.logger.Info("world",
		"tick", g.tick,
		"match_time", g.matchTime,
		"alive", g.AliveCount(),
		"projectiles", g.projectiles.Count(),
		"pending_respawns", len(g.pending),
		slog.Group("bots",
			"chase", chase,
			"attack", attack,
			"run_away", runAway,
			"unstuck", unstuck,
			"dead", dead,
		),
	)
}

// logMatchEnd logs the final standings.
func (g *Game) logMatchEnd() {
	entries := g.scoreboard.Entries()
	leader, kills, ok := g.scoreboard.Leader()

	g.logger.Info("match over",
		"tick", g.tick,
		"match_time", g.matchTime,
		"combatants", len(entries),
		"projectiles_fired", g.projectiles.Spawned(),
		"leader", leader,
		"leader_kills", kills,
		"decisive", ok,
	)
	for rank, e := range entries {
		g.logger.Info("score",
			"rank", rank+1,
			"id", e.ID,
			"tag", e.Tag,
			"kills", e.Kills,
			"deaths", e.Deaths,
			"shots", e.Shots,
			"hits", e.Hits,
			"damage", e.Damage,
			"stuck", e.Stuck,
			"time_alive", e.TimeAlive,
		)
	}
}

// logPerf logs tick timing with phase time grouped by system category.
func (g *Game) logPerf(s telemetry.PerfStats) {
	g.logger.Info("perf", perfAttrs(g.registry, s)...)
}

// perfAttrs sums phase percentages per registry category and names the
// single most expensive system.
func perfAttrs(reg *systems.SystemRegistry, s telemetry.PerfStats) []any {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}

	for _, cat := range reg.Categories() {
		var pct float64
		for _, info := range reg.ByCategory(cat) {
			pct += s.PhasePct[info.ID]
		}
		attrs = append(attrs, cat+"_pct", math.Round(pct*10)/10)
	}

	hottest, hottestPct := "", 0.0
	for _, info := range reg.All() {
		if pct := s.PhasePct[info.ID]; pct > hottestPct {
			hottest, hottestPct = info.ID, pct
		}
	}
	if hottest != "" {
		attrs = append(attrs, "hottest", reg.GetName(hottest))
	}
	return attrs
}
