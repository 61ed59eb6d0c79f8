package analyze

import (
	"go-hep.org/x/hep/fmom"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/particle"
)

// FourMomentum returns p as a four-momentum in GeV, the unit fmom's
// kinematic accessors expect.
func FourMomentum(p *particle.Particle) fmom.PxPyPzE {
	f := constants.C / constants.GeV
	return fmom.NewPxPyPzE(
		p.Mom.X*f, p.Mom.Y*f, p.Mom.Z*f, p.Energy()/constants.GeV,
	)
}

// Summary describes the collective kinematics of a snapshot. Momenta
// and masses are in GeV, angles in radians and pseudorapidity.
type Summary struct {
	N             int
	MeanPt        float64
	EtaSpread     float64
	PhiSpread     float64
	InvariantMass float64
}

// Summarize computes summary statistics over the active particles in
// ps: the mean transverse momentum, the eta and phi spreads, and the
// invariant mass of the summed four-momentum. An all-inactive
// snapshot returns the zero Summary.
func Summarize(ps []particle.Particle) Summary {
	pts := []float64{}
	etas := []float64{}
	phis := []float64{}

	sum := fmom.NewPxPyPzE(0, 0, 0, 0)
	var total fmom.P4 = &sum
	for i := range ps {
		if !ps[i].Active {
			continue
		}

		p4 := FourMomentum(&ps[i])
		pts = append(pts, p4.Pt())
		etas = append(etas, p4.Eta())
		phis = append(phis, p4.Phi())
		total = fmom.Add(total, &p4)
	}
	if len(pts) == 0 {
		return Summary{}
	}

	return Summary{
		N:             len(pts),
		MeanPt:        stat.Mean(pts, nil),
		EtaSpread:     stat.StdDev(etas, nil),
		PhiSpread:     stat.StdDev(phis, nil),
		InvariantMass: total.M(),
	}
}
