// Package flock implements a bird-flocking simulation engine: a fixed
// population of birds steered each step by the classic separation,
// alignment and cohesion rules, an optional predator the flock avoids,
// soft canvas boundaries, and aggregate velocity statistics.
//
// The engine is single-threaded and step-based. It exclusively owns its
// population; external collaborators (renderers, reporters, drivers) read
// state through Snapshot, Predator and ComputeStatistics and never mutate.
package flock

import (
	"math/rand/v2"
)

// Flock owns the bird population and the optional predator, and advances
// them one tick at a time.
type Flock struct {
	cfg      Config
	rng      *rand.Rand
	birds    []Bird
	prev     []Bird // start-of-step snapshot, reused across steps
	predator Bird
}

// New constructs an engine from the given configuration, spawning the
// population uniformly at random within the canvas with velocity
// components in [-SpawnVelocityRange, SpawnVelocityRange].
//
// rng is the engine's random source; it makes runs reproducible under a
// fixed seed. Pass nil to seed from the process-global source.
// New fails with ErrInvalidConfig if the population size is not positive
// or any weight or distance is negative.
func New(cfg *Config, rng *rand.Rand) (*Flock, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f := &Flock{
		cfg:   *cfg,
		rng:   rng,
		birds: make([]Bird, cfg.NumBirds),
		prev:  make([]Bird, 0, cfg.NumBirds),
	}
	for i := range f.birds {
		f.birds[i] = f.spawnBird()
	}
	if cfg.WithPredator {
		f.predator = f.spawnBird()
	}
	return f, nil
}

func (f *Flock) spawnBird() Bird {
	b := Bird{}
	b.Pos.X = f.rng.Float64() * f.cfg.CanvasWidth
	b.Pos.Y = f.rng.Float64() * f.cfg.CanvasHeight
	b.Vel.X = (f.rng.Float64()*2 - 1) * SpawnVelocityRange
	b.Vel.Y = (f.rng.Float64()*2 - 1) * SpawnVelocityRange
	return b
}

// Step advances the simulation by exactly one tick.
//
// The predator moves strictly before the regular population, so birds
// react to its updated position within the same tick; this simultaneity
// approximation is part of the behavioral contract. Each bird then reads
// neighbors from the start-of-step population snapshot, accumulates its
// rule deltas, clamps speed, applies boundary steering and integrates.
// All writes for a bird happen after all of its reads, and no rule ever
// mutates a bird other than its subject.
func (f *Flock) Step() {
	f.evolvePredator()

	// Freeze the pre-step population. Neighbor discovery for every bird in
	// this step reads this snapshot, not the partially advanced slice.
	f.prev = append(f.prev[:0], f.birds...)

	for i := range f.birds {
		b := f.prev[i]
		neighbors := Neighbors(f.prev, i, b, f.cfg.Distance, f.cfg.ViewAngle)

		if len(neighbors) > 0 {
			b.Vel = b.Vel.Add(Separation(neighbors, b, f.cfg.SeparationDistance, f.cfg.Separation))
			b.Vel = b.Vel.Add(Alignment(neighbors, b, f.cfg.Alignment))
			b.Vel = b.Vel.Add(Cohesion(neighbors, b, f.cfg.Cohesion))
		}
		if f.cfg.WithPredator {
			b.Vel = b.Vel.Add(AvoidPredator(f.prev, b, i, f.predator, f.cfg.SeparationDistance, f.cfg.ViewAngle))
		}

		b.Vel = ClampSpeed(b.Vel, BirdMinSpeed, BirdMaxSpeed)
		b.Vel = b.Vel.Add(AvoidBoundaries(b, f.cfg.CanvasWidth, f.cfg.CanvasHeight))
		b.integrate(BirdVelocityScale)

		f.birds[i] = b
	}
}

// evolvePredator advances the predator against the regular population:
// doubled cohesion toward the flock's local center of mass, a fixed small
// alignment, its own speed band and integration factor.
func (f *Flock) evolvePredator() {
	if !f.cfg.WithPredator {
		return
	}
	p := f.predator
	neighbors := Neighbors(f.birds, -1, p, f.cfg.Distance, f.cfg.ViewAngle)

	if len(neighbors) > 0 {
		p.Vel = p.Vel.Add(Cohesion(neighbors, p, f.cfg.Cohesion*PredatorCohesionBoost))
		p.Vel = p.Vel.Add(Alignment(neighbors, p, PredatorAlignment))
	}

	p.Vel = ClampSpeed(p.Vel, PredatorMinSpeed, PredatorMaxSpeed)
	p.Vel = p.Vel.Add(AvoidBoundaries(p, f.cfg.CanvasWidth, f.cfg.CanvasHeight))
	p.integrate(PredatorVelocityScale)

	f.predator = p
}

// PopulationSize returns the number of regular birds; the predator is not
// counted.
func (f *Flock) PopulationSize() int {
	return len(f.birds)
}

// Snapshot returns an ordered copy of the population for read-only
// consumers such as renderers. Mutating the returned slice has no effect
// on the engine.
func (f *Flock) Snapshot() []Bird {
	out := make([]Bird, len(f.birds))
	copy(out, f.birds)
	return out
}

// Predator returns the predator's current state; ok is false when the
// simulation runs without one.
func (f *Flock) Predator() (p Bird, ok bool) {
	if !f.cfg.WithPredator {
		return Bird{}, false
	}
	return f.predator, true
}

// Config returns a copy of the configuration the engine was built with.
func (f *Flock) Config() Config {
	return f.cfg
}

// ComputeStatistics recomputes the aggregate velocity statistics from the
// live population. Nothing is cached between calls.
func (f *Flock) ComputeStatistics() Statistics {
	return computeStatistics(f.birds)
}
