package analyze

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/lattice"
	"github.com/phil-mansfield/gotrack/particle"
)

func TestTuneCosine(t *testing.T) {
	// A pure cosine at 16 cycles per 64 samples peaks in bin 16.
	n := 64
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = math.Cos(2 * math.Pi * 16 * float64(i) / float64(n))
	}

	tune, spectrum := Tune(xs)
	require.Len(t, spectrum, n/2+1)
	assert.Equal(t, 0.25, tune)

	// An on-bin cosine of amplitude 1 has magnitude n/2 at its bin and
	// only rounding noise elsewhere.
	assert.InDelta(t, 32.0, spectrum[16], 1e-9)
	assert.InDelta(t, 0.0, spectrum[8], 1e-9)
	assert.InDelta(t, 0.0, spectrum[0], 1e-9)
}

func TestTuneShortSignals(t *testing.T) {
	tune, spectrum := Tune(nil)
	assert.Equal(t, 0.0, tune)
	assert.Nil(t, spectrum)

	tune, spectrum = Tune([]float64{1.0})
	assert.Equal(t, 0.0, tune)
	assert.Nil(t, spectrum)
}

func TestTuneFromHits(t *testing.T) {
	// Horizontal motion at tune 0.3, vertical at tune 0.1.
	n := 20
	hits := make([]lattice.Hit, n)
	for i := range hits {
		phase := 2 * math.Pi * float64(i) / float64(n)
		hits[i] = lattice.Hit{
			Time:       float64(i) * 1e-9,
			Pos:        r3.Vec{X: math.Sin(6 * phase), Y: math.Cos(2 * phase)},
			ParticleID: 0,
		}
	}

	tune, spectrum := TuneFromHits(hits, Horizontal)
	require.NotNil(t, spectrum)
	assert.Equal(t, 0.3, tune)
	assert.InDelta(t, 10.0, spectrum[6], 1e-9)

	tune, _ = TuneFromHits(hits, Vertical)
	assert.Equal(t, 0.1, tune)

	tune, spectrum = TuneFromHits(nil, Horizontal)
	assert.Equal(t, 0.0, tune)
	assert.Nil(t, spectrum)
}

func TestFourMomentum(t *testing.T) {
	p := particle.Proton.New()
	p.SetKineticEnergy(constants.GeV, r3.Vec{Z: 1})

	p4 := FourMomentum(&p)
	mGeV := constants.ProtonMass * constants.C * constants.C / constants.GeV

	assert.InEpsilon(t, 1+mGeV, p4.E(), 1e-12)
	assert.InEpsilon(t, p.Momentum()*constants.C/constants.GeV, p4.Pz(), 1e-12)
	assert.Equal(t, 0.0, p4.Pt())
	assert.Equal(t, 0.0, p4.Phi())
	assert.InEpsilon(t, mGeV, p4.M(), 1e-9)

	// A beam exactly along +z is at (or within rounding of) eta = +inf.
	assert.Greater(t, p4.Eta(), 15.0)
}

func TestSummarize(t *testing.T) {
	pz, px := 5e-19, 1e-20
	mk := func(x float64) particle.Particle {
		p := particle.Proton.New()
		p.Mom = r3.Vec{X: x, Z: pz}
		return p
	}

	dead := mk(1e-15)
	dead.Active = false
	ps := []particle.Particle{mk(px), mk(-px), dead}

	s := Summarize(ps)
	assert.Equal(t, 2, s.N)

	ptGeV := px * constants.C / constants.GeV
	assert.InEpsilon(t, ptGeV, s.MeanPt, 1e-12)

	// Mirrored px means identical eta, and phi values of 0 and pi.
	assert.Equal(t, 0.0, s.EtaSpread)
	assert.InEpsilon(t, math.Pi/math.Sqrt2, s.PhiSpread, 1e-12)

	// Transverse momenta cancel in the sum, so the pair's invariant
	// mass is 2*sqrt(m^2 + pt^2).
	mGeV := constants.ProtonMass * constants.C * constants.C / constants.GeV
	want := 2 * math.Sqrt(mGeV*mGeV+ptGeV*ptGeV)
	assert.InEpsilon(t, want, s.InvariantMass, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	dead := particle.Proton.New()
	dead.Mom = r3.Vec{Z: 1e-19}
	dead.Active = false
	assert.Equal(t, Summary{}, Summarize([]particle.Particle{dead}))
}

func TestTransverse(t *testing.T) {
	ps := []particle.Particle{
		{
			Pos:    r3.Vec{X: 0.001, Y: -0.002},
			Mom:    r3.Vec{X: 1e-21, Y: 2e-21, Z: 5e-19},
			Active: true,
		},
		{
			Pos:    r3.Vec{X: 0.003, Y: 0.004},
			Mom:    r3.Vec{X: -2.5e-21, Z: 5e-19},
			Active: true,
		},
		// No longitudinal momentum: the paraxial angle is undefined.
		{Pos: r3.Vec{X: 9}, Mom: r3.Vec{X: 1e-21}, Active: true},
		{Pos: r3.Vec{X: 9}, Mom: r3.Vec{Z: 1e-19}, Active: false},
	}

	xs, xps := Transverse(ps, Horizontal)
	require.Equal(t, []float64{0.001, 0.003}, xs)
	assert.Equal(t, []float64{1e-21 / 5e-19, -2.5e-21 / 5e-19}, xps)

	ys, yps := Transverse(ps, Vertical)
	require.Equal(t, []float64{-0.002, 0.004}, ys)
	assert.Equal(t, []float64{2e-21 / 5e-19, 0}, yps)
}

func TestLongitudinal(t *testing.T) {
	ps := []particle.Particle{
		{Pos: r3.Vec{Z: 1}, Mom: r3.Vec{Z: 4}, Active: true},
		{Pos: r3.Vec{Z: 2}, Mom: r3.Vec{Z: 5}, Active: true},
		{Pos: r3.Vec{Z: 3}, Mom: r3.Vec{Z: 6}, Active: true},
		{Pos: r3.Vec{Z: 100}, Mom: r3.Vec{Z: 9}, Active: false},
	}

	dz, delta := Longitudinal(ps, 5)
	assert.Equal(t, []float64{-1, 0, 1}, dz)
	assert.Equal(t, []float64{-0.2, 0, 0.2}, delta)

	// A non-positive pRef falls back to the mean momentum, which is
	// also 5 here.
	dz, delta = Longitudinal(ps, 0)
	assert.Equal(t, []float64{-1, 0, 1}, dz)
	assert.Equal(t, []float64{-0.2, 0, 0.2}, delta)

	dz, delta = Longitudinal(ps[3:], 5)
	assert.Nil(t, dz)
	assert.Nil(t, delta)
}
