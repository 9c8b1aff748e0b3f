package flock

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Statistics summarizes the population's velocity distribution: the mean
// velocity vector and the per-axis population standard deviation.
type Statistics struct {
	MeanVelocity  geometry.Vector2D `json:"meanVelocity"`
	StdevVelocity geometry.Vector2D `json:"stdevVelocity"`
}

// computeStatistics derives Statistics from the given population.
// The standard deviation is the population one (divide by N, not N-1),
// computed independently per axis. An empty population yields zero
// vectors rather than a division by zero; the engine invariant of a
// positive population size means that case never occurs in a live run.
func computeStatistics(birds []Bird) Statistics {
	n := len(birds)
	if n == 0 {
		return Statistics{}
	}

	vxs := make([]float64, n)
	vys := make([]float64, n)
	for i, b := range birds {
		vxs[i] = b.Vel.X
		vys[i] = b.Vel.Y
	}

	meanX := stat.Mean(vxs, nil)
	meanY := stat.Mean(vys, nil)

	// MomentAbout with the mean is the population variance (second central
	// moment over N).
	stdevX := math.Sqrt(stat.MomentAbout(2, vxs, meanX, nil))
	stdevY := math.Sqrt(stat.MomentAbout(2, vys, meanY, nil))

	return Statistics{
		MeanVelocity:  geometry.Vector2D{X: meanX, Y: meanY},
		StdevVelocity: geometry.Vector2D{X: stdevX, Y: stdevY},
	}
}
