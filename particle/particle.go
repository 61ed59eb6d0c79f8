/*package particle represents single point charges in 6D phase space.
Positions are in meters, momenta in kg m/s, masses in kg, charges in
Coulombs. The relativistic scalars (gamma, beta, energies) are always
derived from the current momentum, so they cannot drift out of sync
with it.
*/
package particle

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/constants"
)

// speedLimit is the fraction of c that over-c velocity inputs are
// clamped down to.
const speedLimit = 0.999999

// Particle is one tracked point charge. Pos and Mom may be written
// directly: every derived quantity is recomputed from Mom on demand.
type Particle struct {
	ID     int64
	Pos    r3.Vec // m
	Mom    r3.Vec // kg m/s
	Mass   float64
	Charge float64
	Active bool
}

// Species identifies a particle type by rest mass and charge.
type Species struct {
	Name   string
	Mass   float64
	Charge float64
}

var (
	Electron   = Species{"electron", constants.ElectronMass, -constants.E}
	Positron   = Species{"positron", constants.ElectronMass, +constants.E}
	Proton     = Species{"proton", constants.ProtonMass, +constants.E}
	Antiproton = Species{"antiproton", constants.ProtonMass, -constants.E}
)

// SpeciesByName maps the lowercase species names used in configuration
// files to their Species. The second return is false for unknown names.
func SpeciesByName(name string) (Species, bool) {
	switch name {
	case "electron":
		return Electron, true
	case "positron":
		return Positron, true
	case "proton":
		return Proton, true
	case "antiproton":
		return Antiproton, true
	}
	return Species{}, false
}

// New returns an active particle of species s at the origin with zero
// momentum. The id is zero until a beam system adopts the particle.
func (s Species) New() Particle {
	return Particle{Mass: s.Mass, Charge: s.Charge, Active: true}
}

// Gamma returns the Lorentz factor sqrt(1 + (|p|/(m c))^2). Massless or
// momentum-free particles report gamma = 1.
func (p *Particle) Gamma() float64 {
	mom := r3.Norm(p.Mom)
	if mom <= 0 || p.Mass <= 0 {
		return 1
	}
	return constants.GammaFromMomentum(mom, p.Mass)
}

// Beta returns v/c in [0, 1).
func (p *Particle) Beta() float64 {
	gamma := p.Gamma()
	if gamma <= 1 {
		return 0
	}
	return constants.BetaFromGamma(gamma)
}

// Velocity returns p/(gamma m) in m/s.
func (p *Particle) Velocity() r3.Vec {
	if p.Mass <= 0 {
		return r3.Vec{}
	}
	return p.Mom.Scale(1 / (p.Gamma() * p.Mass))
}

// Momentum returns |p| in kg m/s.
func (p *Particle) Momentum() float64 { return r3.Norm(p.Mom) }

// Energy returns the total energy gamma m c^2 in Joules.
func (p *Particle) Energy() float64 {
	return constants.TotalEnergyFromGamma(p.Gamma(), p.Mass)
}

// KineticEnergy returns (gamma - 1) m c^2 in Joules.
func (p *Particle) KineticEnergy() float64 {
	return constants.KineticEnergyFromGamma(p.Gamma(), p.Mass)
}

// SetVelocity sets the momentum from a velocity. Above-light inputs are
// scaled down to 0.999999 c before converting, so gamma stays finite.
func (p *Particle) SetVelocity(v r3.Vec) {
	speed := r3.Norm(v)
	if speed >= constants.C {
		v = v.Scale(speedLimit * constants.C / speed)
		speed = r3.Norm(v)
	}
	if speed <= 0 {
		p.Mom = r3.Vec{}
		return
	}

	gamma := constants.GammaFromVelocity(speed)
	p.Mom = v.Scale(gamma * p.Mass)
}

// SetKineticEnergy sets |p| from a kinetic energy (J) along dir. A dir
// shorter than 1e-10 falls back to the current momentum direction, or
// +z if the particle has none.
func (p *Particle) SetKineticEnergy(ek float64, dir r3.Vec) {
	if r3.Norm(dir) < 1e-10 {
		if r3.Norm(p.Mom) > 1e-30 {
			dir = p.Mom
		} else {
			dir = r3.Vec{Z: 1}
		}
	}
	dir = r3.Unit(dir)

	gamma := constants.GammaFromKineticEnergy(ek, p.Mass)
	p.Mom = dir.Scale(constants.MomentumFromGamma(gamma, p.Mass))
}

// MomentumDeviation returns delta = (|p| - pRef)/pRef relative to a
// reference momentum.
func (p *Particle) MomentumDeviation(pRef float64) float64 {
	return (r3.Norm(p.Mom) - pRef) / pRef
}
