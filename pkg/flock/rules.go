package flock

import (
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Empirically tuned movement constants, kept as named values rather than
// re-derived. Changing them changes the look of the flock, not its
// correctness.
const (
	// Regular bird speed band and integration factor.
	BirdMinSpeed      = 2.0
	BirdMaxSpeed      = 5.0
	BirdVelocityScale = 0.9

	// The predator is faster and integrates at a distinct factor.
	PredatorMinSpeed      = 2.0
	PredatorMaxSpeed      = 15.0
	PredatorVelocityScale = 0.8

	// Predator steering: cohesion weight is doubled relative to the flock's,
	// alignment is a fixed small constant.
	PredatorCohesionBoost = 2.0
	PredatorAlignment     = 0.001

	// Predator avoidance: repulsion strength away from the predator and a
	// small pull back toward the rest of the flock while fleeing.
	// PredatorRepulsion exceeds BirdMaxSpeed so a bird heading straight at
	// the predator still turns around within a single step.
	PredatorRepulsion = 6.0
	RegroupFactor     = 0.005

	// Soft boundary handling: inside BoundaryMargin of an edge the bird is
	// steered back with TurnFactor per step; past the canvas the term jumps
	// above the speed floor and keeps growing with the overshoot, so even a
	// bird whose outward heading the minimum-speed clamp keeps restoring
	// turns around within a step of crossing.
	BoundaryMargin = 100.0
	TurnFactor     = 0.2

	// Initial velocity components are sampled uniformly from
	// [-SpawnVelocityRange, SpawnVelocityRange].
	SpawnVelocityRange = 5.0
)

// Neighbors returns every bird of population that the subject perceives:
// strictly closer than maxDistance, strictly farther than zero (a bird at
// the exact same position is a degenerate duplicate, not a neighbor), and
// within the forward view cone of the subject's velocity.
//
// self is the subject's index in population and is excluded by identity,
// never by position. Pass a negative self for a subject that is not part
// of the population, such as the predator.
//
// The scan is exhaustive over the population; O(n²) per step across all
// birds is the intended complexity, there is no spatial index.
func Neighbors(population []Bird, self int, subject Bird, maxDistance, viewAngle float64) []Bird {
	maxSq := maxDistance * maxDistance
	var neighbors []Bird

	for i, other := range population {
		if i == self {
			continue
		}
		distSq := subject.Pos.DistanceSquaredTo(other.Pos)
		if distSq <= 0 || distSq >= maxSq {
			continue
		}
		angle := other.Pos.Sub(subject.Pos).AngleBetween(subject.Vel)
		if angle < viewAngle {
			neighbors = append(neighbors, other)
		}
	}
	return neighbors
}

// Separation returns a repulsive velocity delta pointing away from every
// neighbor strictly closer than separationDistance, weighted by weight.
// Neighbors at or beyond separationDistance contribute nothing; with no
// qualifying neighbor the delta is the zero vector.
func Separation(neighbors []Bird, subject Bird, separationDistance, weight float64) geometry.Vector2D {
	sepSq := separationDistance * separationDistance
	var repulsion geometry.Vector2D

	for _, n := range neighbors {
		if subject.Pos.DistanceSquaredTo(n.Pos) < sepSq {
			repulsion = repulsion.Add(subject.Pos.Sub(n.Pos))
		}
	}
	return repulsion.Mul(weight)
}

// Alignment returns a velocity delta steering the subject toward the mean
// heading of its neighbors: weight * (meanVelocity - subject.Vel).
func Alignment(neighbors []Bird, subject Bird, weight float64) geometry.Vector2D {
	if len(neighbors) == 0 {
		return geometry.Vector2D{}
	}
	var sum geometry.Vector2D
	for _, n := range neighbors {
		sum = sum.Add(n.Vel)
	}
	mean := sum.Mul(1 / float64(len(neighbors)))
	return mean.Sub(subject.Vel).Mul(weight)
}

// Cohesion returns a velocity delta steering the subject toward the
// centroid of its neighbors: weight * (centroid - subject.Pos).
func Cohesion(neighbors []Bird, subject Bird, weight float64) geometry.Vector2D {
	if len(neighbors) == 0 {
		return geometry.Vector2D{}
	}
	var sum geometry.Vector2D
	for _, n := range neighbors {
		sum = sum.Add(n.Pos)
	}
	centroid := sum.Mul(1 / float64(len(neighbors)))
	return centroid.Sub(subject.Pos).Mul(weight)
}

// AvoidPredator returns a strong repulsive velocity delta away from the
// predator when it is within triggerDistance and inside the subject's
// forward view cone, plus a small pull toward the centroid of the rest of
// the population so fleeing birds regroup instead of scattering.
//
// self is the subject's index in population; it only excludes the subject
// from the regroup centroid. No bird other than the subject is affected.
func AvoidPredator(population []Bird, subject Bird, self int, predator Bird, triggerDistance, viewAngle float64) geometry.Vector2D {
	toPredator := predator.Pos.Sub(subject.Pos)
	if toPredator.Len() >= triggerDistance {
		return geometry.Vector2D{}
	}
	if toPredator.AngleBetween(subject.Vel) >= viewAngle {
		return geometry.Vector2D{}
	}

	delta := toPredator.Mul(-1).Normalize().Mul(PredatorRepulsion)

	var sum geometry.Vector2D
	peers := 0
	for i, other := range population {
		if i == self {
			continue
		}
		sum = sum.Add(other.Pos)
		peers++
	}
	if peers > 0 {
		centroid := sum.Mul(1 / float64(peers))
		delta = delta.Add(centroid.Sub(subject.Pos).Mul(RegroupFactor))
	}
	return delta
}

// ClampSpeed rescales a velocity whose magnitude falls outside
// [minSpeed, maxSpeed] back onto the nearest bound, preserving direction.
// A zero velocity has no direction to scale up, so it is returned
// unchanged; boundary and flocking terms will move such a bird again.
func ClampSpeed(vel geometry.Vector2D, minSpeed, maxSpeed float64) geometry.Vector2D {
	speed := vel.Len()
	if speed < geometry.Epsilon {
		return vel
	}
	if speed > maxSpeed {
		return vel.Mul(maxSpeed / speed)
	}
	if speed < minSpeed {
		return vel.Mul(minSpeed / speed)
	}
	return vel
}

// AvoidBoundaries returns a corrective steering delta that turns a bird
// back toward the canvas interior. It is a soft turn, never a hard clamp
// or reflection: inside BoundaryMargin of an edge the term is TurnFactor.
// Past the canvas the term must overpower the speed-floor rescale: the
// clamp runs before boundary steering and restores an outward heading to
// the minimum speed every step, so any past-edge term weaker than that
// floor leaves an equilibrium outside the canvas where the bird parks.
// The term therefore starts above the floor the moment an edge is
// crossed and grows with the overshoot, flipping the heading inward
// within a step.
func AvoidBoundaries(subject Bird, width, height float64) geometry.Vector2D {
	return geometry.Vector2D{
		X: edgeTurn(subject.Pos.X, width),
		Y: edgeTurn(subject.Pos.Y, height),
	}
}

// edgeTurn computes the one-axis boundary steering term for position p on
// an axis of the given limit. BirdMinSpeed is the speed floor to beat;
// the predator shares the same floor.
func edgeTurn(p, limit float64) float64 {
	switch {
	case p < 0:
		return TurnFactor + BirdMinSpeed*(1+(-p)/BoundaryMargin)
	case p < BoundaryMargin:
		return TurnFactor
	case p > limit:
		return -TurnFactor - BirdMinSpeed*(1+(p-limit)/BoundaryMargin)
	case p > limit-BoundaryMargin:
		return -TurnFactor
	}
	return 0
}
