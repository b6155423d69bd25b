package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/botarena/config"
)

// csvLog is an append-only CSV file whose header is written with the first record.
type csvLog struct {
	name          string
	file          *os.File
	headerWritten bool
}

func openCSV(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, file: f}, nil
}

func (l *csvLog) write(records any) error {
	if !l.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing %s: %w", l.name, err)
		}
		l.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	return nil
}

// OutputManager handles structured match output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvLog
	perf      *csvLog
	kills     *csvLog
	bookmarks *csvLog
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, spec := range []struct {
		name string
		dst  **csvLog
	}{
		{"telemetry.csv", &om.telemetry},
		{"perf.csv", &om.perf},
		{"kills.csv", &om.kills},
		{"bookmarks.csv", &om.bookmarks},
	} {
		l, err := openCSV(dir, spec.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*spec.dst = l
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteKill writes a kill record to kills.csv.
func (om *OutputManager) WriteKill(k KillRecord) error {
	if om == nil {
		return nil
	}
	return om.kills.write([]KillRecord{k})
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// WriteScores writes the final scoreboard to scores.csv, replacing any
// previous one.
func (om *OutputManager) WriteScores(entries []ScoreEntry) error {
	if om == nil {
		return nil
	}

	f, err := os.Create(filepath.Join(om.dir, "scores.csv"))
	if err != nil {
		return fmt.Errorf("creating scores.csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&entries, f); err != nil {
		return fmt.Errorf("writing scores.csv: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, l := range []*csvLog{om.telemetry, om.perf, om.kills, om.bookmarks} {
		if l == nil {
			continue
		}
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
