package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

func TestRecorder_Disabled(t *testing.T) {
	r, err := NewRecorder("")
	if err != nil {
		t.Fatalf("NewRecorder(\"\") error = %v", err)
	}
	if r != nil {
		t.Fatal("NewRecorder(\"\") should return a nil recorder")
	}

	// A nil recorder must be safe to use.
	if err := r.Record(1, flock.Statistics{}); err != nil {
		t.Errorf("nil Record() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestRecorder_WritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRecorder(dir)
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}

	stats := flock.Statistics{
		MeanVelocity:  geometry.Vector2D{X: 3, Y: 4},
		StdevVelocity: geometry.Vector2D{X: 0.5, Y: 0.25},
	}
	for step := 1; step <= 3; step++ {
		if err := r.Record(step, stats); err != nil {
			t.Fatalf("Record(%d) error = %v", step, err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")

	if len(lines) != 4 {
		t.Fatalf("got %d lines; want header + 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "step,mean_vx,mean_vy,mean_speed") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,3,4,5") {
		t.Errorf("unexpected first row: %q", lines[1])
	}
}

func TestNewStepStats(t *testing.T) {
	s := NewStepStats(7, flock.Statistics{
		MeanVelocity:  geometry.Vector2D{X: 3, Y: 4},
		StdevVelocity: geometry.Vector2D{X: 1, Y: 2},
	})

	if s.Step != 7 || s.MeanVX != 3 || s.MeanVY != 4 || s.StdevVX != 1 || s.StdevVY != 2 {
		t.Errorf("NewStepStats produced %+v", s)
	}
	if s.MeanSpeed != 5 {
		t.Errorf("MeanSpeed = %v; want 5", s.MeanSpeed)
	}
}
