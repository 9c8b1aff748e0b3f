// Package telemetry records per-step flock statistics to CSV for offline
// analysis of a simulation run.
package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

// StepStats is one CSV row: the step counter plus the velocity statistics
// the engine reports for that step.
type StepStats struct {
	Step      int     `csv:"step"`
	MeanVX    float64 `csv:"mean_vx"`
	MeanVY    float64 `csv:"mean_vy"`
	MeanSpeed float64 `csv:"mean_speed"`
	StdevVX   float64 `csv:"stdev_vx"`
	StdevVY   float64 `csv:"stdev_vy"`
}

// NewStepStats flattens engine statistics into a CSV row.
func NewStepStats(step int, s flock.Statistics) StepStats {
	return StepStats{
		Step:      step,
		MeanVX:    s.MeanVelocity.X,
		MeanVY:    s.MeanVelocity.Y,
		MeanSpeed: s.MeanVelocity.Len(),
		StdevVX:   s.StdevVelocity.X,
		StdevVY:   s.StdevVelocity.Y,
	}
}

// LogValue implements slog.LogValuer for structured logging of a row.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("step", s.Step),
		slog.Float64("mean_vx", s.MeanVX),
		slog.Float64("mean_vy", s.MeanVY),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("stdev_vx", s.StdevVX),
		slog.Float64("stdev_vy", s.StdevVY),
	)
}

// Recorder appends StepStats rows to a stats.csv file in the output
// directory. A nil Recorder is valid and discards everything, so callers
// don't have to branch on whether telemetry is enabled.
type Recorder struct {
	file          *os.File
	headerWritten bool
}

// NewRecorder creates the output directory and the stats file inside it.
// Returns a nil Recorder (telemetry disabled) when dir is empty.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "stats.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	return &Recorder{file: f}, nil
}

// Record writes one statistics row; the first write includes the header.
func (r *Recorder) Record(step int, s flock.Statistics) error {
	if r == nil {
		return nil
	}

	rows := []StepStats{NewStepStats(step, s)}

	if !r.headerWritten {
		if err := gocsv.Marshal(rows, r.file); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, r.file); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

// Close flushes and closes the stats file.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}
