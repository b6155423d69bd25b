package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/botarena/bot"
	"github.com/pthm-cable/botarena/systems"
	"github.com/pthm-cable/botarena/telemetry"
)

// resolveDamage scores applied hits, notifies surviving victims and
// records kills.
func (g *Game) resolveDamage(damage []systems.Damage) {
	for _, d := range damage {
		g.collector.Record(telemetry.NewHitEvent(g.tick, d.Shooter, d.Victim, d.Damage))
		g.scoreboard.RecordHit(d.Shooter, d.Damage)

		if !d.Killed {
			if a := g.agents[d.Victim]; a != nil {
				a.ctrl.OnHit(bot.ID(d.Shooter))
			}
			continue
		}

		g.collector.Record(telemetry.NewKillEvent(g.tick, d.Shooter, d.Victim))
		rec := g.scoreboard.RecordKill(d.Shooter, d.Victim, g.tick)
		g.logger.Info("kill",
			"tick", g.tick,
			"killer", d.Shooter,
			"killer_tag", rec.KillerTag,
			"victim", d.Victim,
			"victim_tag", rec.VictimTag,
		)
		if err := g.outputManager.WriteKill(rec); err != nil {
			g.logger.Error("failed to write kill", "error", err)
		}

		for _, bm := range g.bookmarkDetector.CheckKill(g.tick, d.Shooter, d.Victim, g.scoreboard) {
			g.emitBookmark(bm)
		}
	}
}

// recordRespawn logs a combatant re-entering the arena.
func (g *Game) recordRespawn(id uint32, pos r3.Vec) {
	g.collector.Record(telemetry.NewRespawnEvent(g.tick, id))
	g.logger.Info("respawn", "tick", g.tick, "id", id, "x", pos.X, "z", pos.Z)
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleWorld())
	perfStats := g.perfCollector.Stats()

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		g.logPerf(perfStats)
		g.logWorldState()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		g.logger.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		g.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		g.emitBookmark(bm)
	}
}

func (g *Game) emitBookmark(bm telemetry.Bookmark) {
	if g.logStats {
		bm.LogBookmark()
	}
	if err := g.outputManager.WriteBookmark(bm); err != nil {
		g.logger.Error("failed to write bookmark", "error", err)
	}
}

// sampleWorld reads the health and speed of every living combatant.
func (g *Game) sampleWorld() telemetry.Sample {
	s := telemetry.Sample{Projectiles: g.projectiles.Count()}

	query := g.combatFilter.Query()
	for query.Next() {
		_, hp := query.Get()
		if hp.Dead {
			continue
		}
		e := query.Entity()
		s.Alive++
		s.Healths = append(s.Healths, hp.Current)
		s.Speeds = append(s.Speeds, r3.Norm(g.moMap.Get(e).Velocity))
	}
	return s
}
