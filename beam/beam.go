/*package beam generates and manages particle bunches. A System owns a
slice of particles, hands out ids, and remembers the reference momentum
that beam-frame coordinates (x', y', delta) are measured against.

Bunches are drawn from Gaussian, flat, or waterbag distributions around
a reference orbit. The transverse momentum spread is specified relative
to the reference momentum, so the same parameters describe the same
beam optics at any energy.
*/
package beam

import (
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/particle"
)

// Distribution selects the phase-space shape of a generated bunch.
type Distribution int

const (
	// Gaussian draws every coordinate from a normal distribution.
	Gaussian Distribution = iota
	// Uniform draws from flat distributions with the same RMS widths.
	Uniform
	// Waterbag fills a uniformly populated ellipsoid in real space.
	// Momentum coordinates use the flat distribution.
	Waterbag
)

// DistByName maps the lowercase distribution names used in
// configuration files to their Distribution. The second return is
// false for unknown names.
func DistByName(name string) (Distribution, bool) {
	switch name {
	case "gaussian":
		return Gaussian, true
	case "uniform":
		return Uniform, true
	case "waterbag":
		return Waterbag, true
	}
	return Gaussian, false
}

// Params describes a bunch to generate. The Sigma fields are 1-sigma
// widths: positions in meters, transverse momenta and energy spread
// relative to the reference momentum.
type Params struct {
	Species       particle.Species
	N             int
	KineticEnergy float64 // J
	SigmaX        float64
	SigmaY        float64
	SigmaZ        float64
	SigmaPx       float64
	SigmaPy       float64
	SigmaDelta    float64
	Offset        r3.Vec
	Direction     r3.Vec
	Distribution  Distribution
	Seed          uint64
}

// DefaultParams returns the reference bunch: 1000 protons at 1 GeV
// moving along +z with millimeter-scale transverse size.
func DefaultParams() Params {
	return Params{
		Species:       particle.Proton,
		N:             1000,
		KineticEnergy: 1e9 * constants.EV,
		SigmaX:        1e-3,
		SigmaY:        1e-3,
		SigmaZ:        1e-2,
		SigmaPx:       1e-4,
		SigmaPy:       1e-4,
		SigmaDelta:    1e-3,
		Direction:     r3.Vec{Z: 1},
		Distribution:  Gaussian,
		Seed:          42,
	}
}

// System is a collection of particles plus the bookkeeping needed to
// generate and cull them.
type System struct {
	particles []particle.Particle
	pRef      float64
	nextID    int64
	src       rand.Source
}

// NewSystem returns an empty System.
func NewSystem() *System {
	return &System{src: rand.NewSource(42)}
}

// Len returns the number of particles, active or not.
func (s *System) Len() int { return len(s.particles) }

// ActiveCount returns the number of active particles.
func (s *System) ActiveCount() int {
	n := 0
	for i := range s.particles {
		if s.particles[i].Active {
			n++
		}
	}
	return n
}

// Particles returns the underlying particle slice. Callers may mutate
// the particles in place.
func (s *System) Particles() []particle.Particle { return s.particles }

// Particle returns a pointer to the i'th particle.
func (s *System) Particle(i int) *particle.Particle { return &s.particles[i] }

// ReferenceMomentum returns the momentum that delta and the transverse
// angles are measured against.
func (s *System) ReferenceMomentum() float64 { return s.pRef }

// SetReferenceMomentum overrides the reference momentum.
func (s *System) SetReferenceMomentum(p float64) { s.pRef = p }

// Clear removes every particle. The id counter keeps running so ids
// stay unique across generations.
func (s *System) Clear() { s.particles = s.particles[:0] }

// Add adopts a particle, assigning it the next free id.
func (s *System) Add(p particle.Particle) {
	p.ID = s.nextID
	s.nextID++
	s.particles = append(s.particles, p)
}

// RemoveInactive deletes lost particles from the slice.
func (s *System) RemoveInactive() {
	kept := s.particles[:0]
	for i := range s.particles {
		if s.particles[i].Active {
			kept = append(kept, s.particles[i])
		}
	}
	s.particles = kept
}

// Generate replaces the current particles with a bunch drawn from
// params. The reference momentum is set from the bunch energy, and the
// generator is reseeded from params.Seed so equal params give equal
// bunches.
func (s *System) Generate(params Params) {
	s.Clear()
	s.src.Seed(params.Seed)

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: s.src}
	flat := distuv.Uniform{Min: -1, Max: 1, Src: s.src}

	gamma := constants.GammaFromKineticEnergy(
		params.KineticEnergy, params.Species.Mass)
	beta := constants.BetaFromGamma(gamma)
	pRef := gamma * beta * params.Species.Mass * constants.C
	s.pRef = pRef

	dir := r3.Unit(params.Direction)
	perp1, perp2 := transverseBasis(dir)

	for i := 0; i < params.N; i++ {
		p := params.Species.New()

		var dx, dy, dz float64
		switch params.Distribution {
		case Gaussian:
			dx = normal.Rand() * params.SigmaX
			dy = normal.Rand() * params.SigmaY
			dz = normal.Rand() * params.SigmaZ
		case Uniform:
			dx = flat.Rand() * params.SigmaX * math.Sqrt(3)
			dy = flat.Rand() * params.SigmaY * math.Sqrt(3)
			dz = flat.Rand() * params.SigmaZ * math.Sqrt(3)
		default:
			// Uniformly filled ellipsoid.
			r := math.Cbrt(math.Abs(flat.Rand()))
			theta := math.Acos(flat.Rand())
			phi := flat.Rand() * math.Pi
			dx = r * math.Sin(theta) * math.Cos(phi) * params.SigmaX
			dy = r * math.Sin(theta) * math.Sin(phi) * params.SigmaY
			dz = r * math.Cos(theta) * params.SigmaZ
		}
		p.Pos = params.Offset.Add(r3.Vec{X: dx, Y: dy, Z: dz})

		var dpx, dpy, delta float64
		if params.Distribution == Gaussian {
			dpx = normal.Rand() * params.SigmaPx
			dpy = normal.Rand() * params.SigmaPy
			delta = normal.Rand() * params.SigmaDelta
		} else {
			dpx = flat.Rand() * params.SigmaPx * math.Sqrt(3)
			dpy = flat.Rand() * params.SigmaPy * math.Sqrt(3)
			delta = flat.Rand() * params.SigmaDelta * math.Sqrt(3)
		}

		pMag := pRef * (1 + delta)
		p.Mom = dir.Scale(pMag).
			Add(perp1.Scale(pRef * dpx)).
			Add(perp2.Scale(pRef * dpy))

		s.Add(p)
	}
}

// transverseBasis returns two unit vectors spanning the plane
// perpendicular to dir.
func transverseBasis(dir r3.Vec) (perp1, perp2 r3.Vec) {
	if math.Abs(dir.Y) < 0.9 {
		perp1 = r3.Unit(dir.Cross(r3.Vec{Y: 1}))
	} else {
		perp1 = r3.Unit(dir.Cross(r3.Vec{X: 1}))
	}
	perp2 = dir.Cross(perp1)
	return perp1, perp2
}

// WithinAperture reports whether p lies within a circular aperture of
// the given radius around the z axis.
func WithinAperture(p *particle.Particle, radius float64) bool {
	rr := p.Pos.X*p.Pos.X + p.Pos.Y*p.Pos.Y
	return rr <= radius*radius
}

// ApplyAperture deactivates active particles outside a circular
// aperture and returns the number lost.
func (s *System) ApplyAperture(radius float64) int {
	lost := 0
	for i := range s.particles {
		p := &s.particles[i]
		if p.Active && !WithinAperture(p, radius) {
			p.Active = false
			lost++
		}
	}
	return lost
}
