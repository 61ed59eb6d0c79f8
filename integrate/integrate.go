/*package integrate advances particles through electromagnetic fields.
Four schemes are provided. Boris is the workhorse: it splits the
electric kick around an exact magnetic rotation, so it conserves energy
in pure magnetic fields no matter how many steps are taken. RK4 trades
that property for fourth-order local accuracy. Euler and velocity
Verlet are kept for comparison runs.

All schemes integrate the relativistic equations of motion

	dr/dt = p / (gamma m)
	dp/dt = q (E + v x B)

and skip inactive particles.
*/
package integrate

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/field"
	"github.com/phil-mansfield/gotrack/particle"
)

// Integrator advances one particle by one time step.
type Integrator interface {
	// Step updates p's position and momentum in place using the fields
	// in m, evaluated at simulation time t over a step of dt seconds.
	Step(p *particle.Particle, m *field.Manager, t, dt float64)
	Name() string
	Order() int
}

// Type selects an integration scheme. The numeric values are the codes
// used in simulation config files.
type Type int

const (
	Euler Type = iota
	VelocityVerlet
	Boris
	RK4
)

// New returns an integrator of the given type. Unknown types fall back
// to Boris.
func New(t Type) Integrator {
	switch t {
	case Euler:
		return &euler{}
	case VelocityVerlet:
		return &verlet{}
	case Boris:
		return &boris{}
	case RK4:
		return &rk4{}
	}
	return &boris{}
}

// ByName returns the integrator matching name ("Euler", "Verlet",
// "VelocityVerlet", "Boris", "RK4"). Unknown names fall back to Boris.
func ByName(name string) Integrator {
	switch name {
	case "Euler":
		return New(Euler)
	case "Verlet", "VelocityVerlet":
		return New(VelocityVerlet)
	case "Boris":
		return New(Boris)
	case "RK4":
		return New(RK4)
	}
	return New(Boris)
}

// lorentz returns q (E + v x B).
func lorentz(q float64, vel r3.Vec, f field.Value) r3.Vec {
	return f.E.Add(vel.Cross(f.B)).Scale(q)
}

type euler struct{}

func (euler) Name() string { return "Euler" }
func (euler) Order() int   { return 1 }

func (euler) Step(p *particle.Particle, m *field.Manager, t, dt float64) {
	if !p.Active {
		return
	}

	f := m.Eval(p.Pos, t)
	force := lorentz(p.Charge, p.Velocity(), f)

	p.Mom = p.Mom.Add(force.Scale(dt))
	p.Pos = p.Pos.Add(p.Velocity().Scale(dt))
}

type verlet struct{}

func (verlet) Name() string { return "Velocity Verlet" }
func (verlet) Order() int   { return 2 }

func (verlet) Step(p *particle.Particle, m *field.Manager, t, dt float64) {
	if !p.Active {
		return
	}

	f := m.Eval(p.Pos, t)
	vel := p.Velocity()
	force := lorentz(p.Charge, vel, f)

	// Drift half a step on the old velocity, kick a full step on the
	// starting force, then drift the other half on the new velocity.
	halfPos := p.Pos.Add(vel.Scale(dt / 2))
	p.Mom = p.Mom.Add(force.Scale(dt))
	p.Pos = halfPos.Add(p.Velocity().Scale(dt / 2))
}

type boris struct{}

func (boris) Name() string { return "Boris" }
func (boris) Order() int   { return 2 }

func (boris) Step(p *particle.Particle, m *field.Manager, t, dt float64) {
	if !p.Active {
		return
	}

	f := m.Eval(p.Pos, t)
	q, mass := p.Charge, p.Mass

	// First half of the electric kick.
	momMinus := p.Mom.Add(f.E.Scale(q * dt / 2))

	gamma := constants.GammaFromMomentum(r3.Norm(momMinus), mass)

	// Rotate the velocity around B by the exact cyclotron angle for
	// this gamma.
	tv := f.B.Scale(q * dt / (2 * gamma * mass))
	sv := tv.Scale(2 / (1 + tv.Dot(tv)))

	uMinus := momMinus.Scale(1 / (gamma * mass))
	uPrime := uMinus.Add(uMinus.Cross(tv))
	uPlus := uMinus.Add(uPrime.Cross(sv))

	momPlus := uPlus.Scale(gamma * mass)

	// Second half of the electric kick.
	p.Mom = momPlus.Add(f.E.Scale(q * dt / 2))
	p.Pos = p.Pos.Add(p.Velocity().Scale(dt))
}

type rk4 struct{}

func (rk4) Name() string { return "RK4" }
func (rk4) Order() int   { return 4 }

// deriv is the phase-space derivative (dr/dt, dp/dt) at the given
// position and momentum.
type deriv struct {
	vel, force r3.Vec
}

func (rk4) eval(
	p *particle.Particle, pos, mom r3.Vec, m *field.Manager, t float64,
) deriv {
	gamma := constants.GammaFromMomentum(r3.Norm(mom), p.Mass)
	vel := mom.Scale(1 / (gamma * p.Mass))
	f := m.Eval(pos, t)
	return deriv{vel: vel, force: lorentz(p.Charge, vel, f)}
}

func (in rk4) Step(p *particle.Particle, m *field.Manager, t, dt float64) {
	if !p.Active {
		return
	}

	pos, mom := p.Pos, p.Mom

	k1 := in.eval(p, pos, mom, m, t)
	k2 := in.eval(p, pos.Add(k1.vel.Scale(dt/2)),
		mom.Add(k1.force.Scale(dt/2)), m, t+dt/2)
	k3 := in.eval(p, pos.Add(k2.vel.Scale(dt/2)),
		mom.Add(k2.force.Scale(dt/2)), m, t+dt/2)
	k4 := in.eval(p, pos.Add(k3.vel.Scale(dt)),
		mom.Add(k3.force.Scale(dt)), m, t+dt)

	dPos := k1.vel.Add(k2.vel.Scale(2)).Add(k3.vel.Scale(2)).Add(k4.vel)
	dMom := k1.force.Add(k2.force.Scale(2)).Add(k3.force.Scale(2)).Add(k4.force)

	p.Pos = pos.Add(dPos.Scale(dt / 6))
	p.Mom = mom.Add(dMom.Scale(dt / 6))
}
