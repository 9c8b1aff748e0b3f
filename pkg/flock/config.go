package flock

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidConfig is returned by New and Validate when a configuration
// violates the construction invariants. It signals a caller programming
// error, not a recoverable runtime condition.
var ErrInvalidConfig = errors.New("invalid flock configuration")

//go:embed flock.schema.json
var configSchema string

// Config captures the immutable parameters of a simulation run.
// The engine reads it only at construction; it never changes afterwards.
type Config struct {
	// Population
	NumBirds int `json:"numBirds"`

	// Rule weights
	Separation float64 `json:"separation"`
	Alignment  float64 `json:"alignment"`
	Cohesion   float64 `json:"cohesion"`

	// Interaction geometry
	Distance           float64 `json:"distance"`           // neighbor perception radius
	SeparationDistance float64 `json:"separationDistance"` // repulsion trigger, also predator trigger
	ViewAngle          float64 `json:"viewAngle"`          // forward perception cone threshold, radians

	// Predator
	WithPredator bool `json:"withPredator"`

	// Canvas Dimensions
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
}

// DefaultConfig returns a configuration that produces visible flocking
// on a 1000x800 canvas.
func DefaultConfig() *Config {
	return &Config{
		NumBirds:           150,
		Separation:         0.05,
		Alignment:          0.05,
		Cohesion:           0.0005,
		Distance:           70.0,
		SeparationDistance: 20.0,
		ViewAngle:          2 * math.Pi / 3,
		WithPredator:       false,
		CanvasWidth:        1000,
		CanvasHeight:       800,
	}
}

// Validate checks the construction invariants: positive population and
// canvas, non-negative weights, distances and view angle.
func (c *Config) Validate() error {
	if c.NumBirds <= 0 {
		return fmt.Errorf("%w: numBirds must be positive, got %d", ErrInvalidConfig, c.NumBirds)
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"separation", c.Separation},
		{"alignment", c.Alignment},
		{"cohesion", c.Cohesion},
		{"distance", c.Distance},
		{"separationDistance", c.SeparationDistance},
		{"viewAngle", c.ViewAngle},
	}
	for _, p := range nonNegative {
		if p.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("%w: canvas must be positive, got %vx%v", ErrInvalidConfig, c.CanvasWidth, c.CanvasHeight)
	}
	return nil
}

// LoadConfig loads a configuration from a JSON file, validates it against
// the embedded schema, and merges it over the defaults: fields absent from
// the file keep their DefaultConfig value.
func LoadConfig(configFile string) (*Config, error) {
	sch, err := jsonschema.CompileString("flock.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
