package analyze

import (
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/gotrack/particle"
)

// Transverse returns the (position, angle) phase-space coordinates of
// the active particles in one transverse plane, with the paraxial
// angle x' = px/pz. Particles with no longitudinal momentum are
// skipped.
func Transverse(ps []particle.Particle, plane Plane) (pos, angle []float64) {
	pos, angle = []float64{}, []float64{}
	for i := range ps {
		if !ps[i].Active || ps[i].Mom.Z == 0 {
			continue
		}

		if plane == Vertical {
			pos = append(pos, ps[i].Pos.Y)
			angle = append(angle, ps[i].Mom.Y/ps[i].Mom.Z)
		} else {
			pos = append(pos, ps[i].Pos.X)
			angle = append(angle, ps[i].Mom.X/ps[i].Mom.Z)
		}
	}
	return pos, angle
}

// Longitudinal returns the (z - <z>, delta) phase-space coordinates of
// the active particles, where delta = (|p| - pRef)/pRef. A pRef that
// is zero or negative is replaced by the snapshot's mean momentum.
func Longitudinal(ps []particle.Particle, pRef float64) (dz, delta []float64) {
	zs, moms := []float64{}, []float64{}
	for i := range ps {
		if !ps[i].Active {
			continue
		}
		zs = append(zs, ps[i].Pos.Z)
		moms = append(moms, ps[i].Momentum())
	}
	if len(zs) == 0 {
		return nil, nil
	}

	if pRef <= 0 {
		pRef = stat.Mean(moms, nil)
	}
	zMean := stat.Mean(zs, nil)

	dz, delta = make([]float64, len(zs)), make([]float64, len(zs))
	for i := range zs {
		dz[i] = zs[i] - zMean
		delta[i] = (moms[i] - pRef) / pRef
	}
	return dz, delta
}
