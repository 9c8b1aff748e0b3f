package flock

import "github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"

// Bird is the atomic unit of simulation state: a position and a velocity.
// It has no identity beyond its index in the population slice.
type Bird struct {
	Pos geometry.Vector2D `json:"pos"`
	Vel geometry.Vector2D `json:"vel"`
}

// integrate advances the position from the velocity, scaled by the
// per-kind integration factor (birds and the predator use different ones).
func (b *Bird) integrate(scale float64) {
	b.Pos = b.Pos.Add(b.Vel.Mul(scale))
}

// Speed returns the magnitude of the bird's velocity.
func (b Bird) Speed() float64 {
	return b.Vel.Len()
}
