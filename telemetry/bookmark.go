package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstBlood BookmarkType = "first_blood"
	BookmarkLeadChange BookmarkType = "lead_change"
	BookmarkKillSpike  BookmarkType = "kill_spike"
	BookmarkStuckSurge BookmarkType = "stuck_surge"
	BookmarkStalemate  BookmarkType = "stalemate"
)

// stalemateWindows is how many consecutive hitless windows make a stalemate.
const stalemateWindows = 3

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a match.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	anyKill        bool
	leader         uint32
	hitlessWindows int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for rolling averages
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// CheckKill inspects the scoreboard right after a kill.
func (bd *BookmarkDetector) CheckKill(tick int32, killer, victim uint32, sb *Scoreboard) []Bookmark {
	var bookmarks []Bookmark

	if !bd.anyKill {
		bd.anyKill = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFirstBlood,
			Tick:        tick,
			Description: fmt.Sprintf("Agent %d scored the first kill on %d", killer, victim),
		})
	}

	if id, kills, ok := sb.Leader(); ok && id != bd.leader {
		prev := bd.leader
		bd.leader = id
		if prev != 0 {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkLeadChange,
				Tick:        tick,
				Description: fmt.Sprintf("Agent %d took the lead from %d with %d kills", id, prev, kills),
			})
		}
	}

	return bookmarks
}

// Check analyzes the latest window stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkKillSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStuckSurge(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkStalemate(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkKillSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Kills
	}
	avg := float64(total) / float64(len(history))

	if stats.Kills >= 3 && float64(stats.Kills) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkKillSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d kills in window vs %.1f average", stats.Kills, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStuckSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Alive == 0 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.StuckEpisodes
	}
	avg := float64(total) / float64(len(history))

	if stats.StuckEpisodes >= stats.Alive && float64(stats.StuckEpisodes) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkStuckSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d stuck episodes among %d agents vs %.1f average", stats.StuckEpisodes, stats.Alive, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStalemate(stats WindowStats) *Bookmark {
	if stats.Hits > 0 || stats.Alive < 2 {
		bd.hitlessWindows = 0
		return nil
	}

	bd.hitlessWindows++
	if bd.hitlessWindows == stalemateWindows { // trigger once per stretch
		return &Bookmark{
			Type:        BookmarkStalemate,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("No hits for %d windows with %d agents alive", stalemateWindows, stats.Alive),
		}
	}
	return nil
}
