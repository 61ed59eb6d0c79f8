package particle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/constants"
)

func TestSpeciesByName(t *testing.T) {
	table := []struct {
		name   string
		mass   float64
		charge float64
		ok     bool
	}{
		{"electron", constants.ElectronMass, -constants.E, true},
		{"positron", constants.ElectronMass, +constants.E, true},
		{"proton", constants.ProtonMass, +constants.E, true},
		{"antiproton", constants.ProtonMass, -constants.E, true},
		{"muon", 0, 0, false},
		{"", 0, 0, false},
	}

	for i, test := range table {
		s, ok := SpeciesByName(test.name)
		if ok != test.ok {
			t.Errorf("%d) SpeciesByName(%q) ok = %v, want %v",
				i, test.name, ok, test.ok)
		} else if ok && (s.Mass != test.mass || s.Charge != test.charge) {
			t.Errorf("%d) SpeciesByName(%q) = %+v", i, test.name, s)
		}
	}
}

func TestNewParticle(t *testing.T) {
	p := Proton.New()
	assert.True(t, p.Active)
	assert.Equal(t, constants.ProtonMass, p.Mass)
	assert.Equal(t, +constants.E, p.Charge)
	assert.Equal(t, 1.0, p.Gamma())
	assert.Equal(t, 0.0, p.Beta())
	assert.Equal(t, r3.Vec{}, p.Velocity())
	assert.Equal(t, 0.0, p.KineticEnergy())
}

func TestSetVelocityRoundTrip(t *testing.T) {
	betas := []float64{1e-6, 0.01, 0.5, 0.9, 0.999, 0.9999999}
	for _, beta := range betas {
		p := Electron.New()
		p.SetVelocity(r3.Vec{X: beta * constants.C})

		v := p.Velocity()
		gotBeta := r3.Norm(v) / constants.C
		assert.InEpsilon(t, beta, gotBeta, 1e-9,
			"beta = %g", beta)
		assert.InEpsilon(t, constants.GammaFromBeta(beta), p.Gamma(), 1e-9,
			"beta = %g", beta)
	}
}

func TestSetVelocityClamp(t *testing.T) {
	p := Proton.New()
	p.SetVelocity(r3.Vec{Z: 2 * constants.C})

	assert.InEpsilon(t, 0.999999, p.Beta(), 1e-9)
	v := p.Velocity()
	assert.True(t, v.Z > 0 && v.X == 0 && v.Y == 0,
		"clamping must preserve direction, got %v", v)
	assert.False(t, math.IsInf(p.Gamma(), 0) || math.IsNaN(p.Gamma()))
}

func TestSetKineticEnergy(t *testing.T) {
	p := Proton.New()
	p.SetKineticEnergy(1e9*constants.EV, r3.Vec{Z: 1})

	assert.InEpsilon(t, 1e9*constants.EV, p.KineticEnergy(), 1e-12)
	wantGamma := 1 + 1e9*constants.EV/constants.ProtonRestEnergy
	assert.InEpsilon(t, wantGamma, p.Gamma(), 1e-12)

	// Consistency of the derived scalars against the momentum.
	mom := p.Momentum()
	gamma := math.Sqrt(1 + (mom*mom)/(p.Mass*p.Mass*constants.C2))
	assert.InEpsilon(t, gamma, p.Gamma(), 1e-12)
}

func TestSetKineticEnergyDirectionFallback(t *testing.T) {
	// Zero direction on a moving particle keeps its heading.
	p := Proton.New()
	p.SetKineticEnergy(1e8*constants.EV, r3.Vec{X: 1, Y: 1})
	before := r3.Unit(p.Mom)
	p.SetKineticEnergy(5e8*constants.EV, r3.Vec{})
	after := r3.Unit(p.Mom)
	assert.InDelta(t, 1, r3.Dot(before, after), 1e-12)

	// Zero direction on a resting particle defaults to +z.
	q := Electron.New()
	q.SetKineticEnergy(1e6*constants.EV, r3.Vec{})
	assert.True(t, q.Mom.Z > 0 && q.Mom.X == 0 && q.Mom.Y == 0,
		"got %v", q.Mom)
}

func TestLHCProton(t *testing.T) {
	p := Proton.New()
	p.SetKineticEnergy(7e12*constants.EV, r3.Vec{Z: 1})

	assert.InDelta(t, 7461, p.Gamma(), 10)
	assert.True(t, p.Beta() > 0.999999, "beta = %v", p.Beta())
	assert.InEpsilon(t, 7e12*constants.EV, p.KineticEnergy(), 1e-9)
	assert.InEpsilon(t, p.KineticEnergy()+constants.ProtonRestEnergy,
		p.Energy(), 1e-12)
}

func TestMomentumDeviation(t *testing.T) {
	p := Proton.New()
	p.SetKineticEnergy(1e9*constants.EV, r3.Vec{Z: 1})
	pRef := p.Momentum()

	assert.InDelta(t, 0, p.MomentumDeviation(pRef), 1e-15)

	p.Mom = p.Mom.Scale(1.001)
	assert.InDelta(t, 0.001, p.MomentumDeviation(pRef), 1e-9)
}

func BenchmarkGamma(b *testing.B) {
	p := Proton.New()
	p.SetKineticEnergy(1e9*constants.EV, r3.Vec{Z: 1})
	for i := 0; i < b.N; i++ {
		p.Gamma()
	}
}
