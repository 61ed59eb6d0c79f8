package beam

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/gotrack/constants"
)

// Statistics summarizes a beam: counts, first and second moments of
// the active particles, the kinetic energy range, and the transverse
// emittances. RMS values are population RMS about the mean.
type Statistics struct {
	Total  int
	Active int
	Lost   int

	MeanPos r3.Vec
	RMSSize r3.Vec

	MeanMom r3.Vec
	RMSMom  r3.Vec

	MeanEnergy float64
	RMSEnergy  float64
	MinEnergy  float64
	MaxEnergy  float64

	// Geometric emittances, sqrt(<x^2><x'^2> - <x x'>^2), with
	// x' = px/pz.
	EmittanceX float64
	EmittanceY float64

	// Normalized emittances, beta gamma epsilon at the reference
	// momentum.
	NormEmittanceX float64
	NormEmittanceY float64
}

// Statistics computes beam statistics over the active particles. Lost
// particles count toward Total and Lost but contribute to no moment.
func (s *System) Statistics() Statistics {
	stats := Statistics{Total: len(s.particles)}
	if stats.Total == 0 {
		return stats
	}

	n := 0
	for i := range s.particles {
		if s.particles[i].Active {
			n++
		}
	}
	stats.Active = n
	stats.Lost = stats.Total - n
	if n == 0 {
		return stats
	}

	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	zs := make([]float64, 0, n)
	pxs := make([]float64, 0, n)
	pys := make([]float64, 0, n)
	pzs := make([]float64, 0, n)
	eks := make([]float64, 0, n)

	for i := range s.particles {
		p := &s.particles[i]
		if !p.Active {
			continue
		}
		xs, ys, zs = append(xs, p.Pos.X), append(ys, p.Pos.Y), append(zs, p.Pos.Z)
		pxs, pys, pzs = append(pxs, p.Mom.X), append(pys, p.Mom.Y), append(pzs, p.Mom.Z)
		eks = append(eks, p.KineticEnergy())
	}

	stats.MeanPos = r3.Vec{
		X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil), Z: stat.Mean(zs, nil),
	}
	stats.MeanMom = r3.Vec{
		X: stat.Mean(pxs, nil), Y: stat.Mean(pys, nil), Z: stat.Mean(pzs, nil),
	}
	stats.RMSSize = r3.Vec{
		X: popRMS(xs, stats.MeanPos.X),
		Y: popRMS(ys, stats.MeanPos.Y),
		Z: popRMS(zs, stats.MeanPos.Z),
	}
	stats.RMSMom = r3.Vec{
		X: popRMS(pxs, stats.MeanMom.X),
		Y: popRMS(pys, stats.MeanMom.Y),
		Z: popRMS(pzs, stats.MeanMom.Z),
	}

	stats.MeanEnergy = stat.Mean(eks, nil)
	stats.RMSEnergy = popRMS(eks, stats.MeanEnergy)
	stats.MinEnergy = floats.Min(eks)
	stats.MaxEnergy = floats.Max(eks)

	stats.EmittanceX, stats.EmittanceY = s.emittances(stats.MeanPos, float64(n))

	if s.pRef > 0 {
		var mass float64
		for i := range s.particles {
			if s.particles[i].Active {
				mass = s.particles[i].Mass
				break
			}
		}
		gamma := constants.GammaFromMomentum(s.pRef, mass)
		betaGamma := constants.BetaFromGamma(gamma) * gamma
		stats.NormEmittanceX = betaGamma * stats.EmittanceX
		stats.NormEmittanceY = betaGamma * stats.EmittanceY
	}

	return stats
}

// popRMS is the population RMS deviation about mean.
func popRMS(xs []float64, mean float64) float64 {
	return math.Sqrt(stat.MomentAbout(2, xs, mean, nil))
}

// emittances computes the geometric emittances. Positions are centered
// on the beam mean; the angles x' = px/pz are taken as-is. Particles
// with negligible pz are left out of the sums, but n stays the full
// active count.
func (s *System) emittances(meanPos r3.Vec, n float64) (ex, ey float64) {
	sumX2, sumXp2, sumXXp := 0.0, 0.0, 0.0
	sumY2, sumYp2, sumYYp := 0.0, 0.0, 0.0

	for i := range s.particles {
		p := &s.particles[i]
		if !p.Active {
			continue
		}
		pz := p.Mom.Z
		if math.Abs(pz) <= 1e-30 {
			continue
		}

		x := p.Pos.X - meanPos.X
		y := p.Pos.Y - meanPos.Y
		xp := p.Mom.X / pz
		yp := p.Mom.Y / pz

		sumX2 += x * x
		sumXp2 += xp * xp
		sumXXp += x * xp

		sumY2 += y * y
		sumYp2 += yp * yp
		sumYYp += y * yp
	}

	avgX2, avgXp2, avgXXp := sumX2/n, sumXp2/n, sumXXp/n
	ex = math.Sqrt(math.Max(0, avgX2*avgXp2-avgXXp*avgXXp))

	avgY2, avgYp2, avgYYp := sumY2/n, sumYp2/n, sumYYp/n
	ey = math.Sqrt(math.Max(0, avgY2*avgYp2-avgYYp*avgYYp))
	return ex, ey
}
