package constants

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestEnergies(t *testing.T) {
	assert.InDelta(t, 0.51099895, ElectronRestEnergyMeV, 1e-6,
		"electron rest energy")
	assert.InDelta(t, 938.27208816, ProtonRestEnergyMeV, 1e-5,
		"proton rest energy")

	assert.Equal(t, ElectronRestEnergy, RestEnergy(ElectronMass))
	assert.InDelta(t, 939.6, RestEnergy(NeutronMass)/MeV, 0.1)
}

func TestGammaBetaRoundTrip(t *testing.T) {
	gammas := []float64{1.0001, 1.5, 2, 10, 100, 7461}
	for _, gamma := range gammas {
		beta := BetaFromGamma(gamma)
		// 1 - beta^2 cancels to ~gamma^2 ulps once beta nears 1, so
		// the round trip degrades quadratically with gamma.
		assert.InEpsilon(t, gamma, GammaFromBeta(beta), 1e-12*gamma*gamma)
		if !(beta >= 0 && beta < 1) {
			t.Errorf("BetaFromGamma(%g) = %g, outside [0, 1)", gamma, beta)
		}
	}
}

func TestGammaFromKineticEnergy(t *testing.T) {
	// A particle at rest.
	assert.Equal(t, 1.0, GammaFromKineticEnergy(0, ProtonMass))

	// 7 TeV proton, the LHC design energy.
	gamma := GammaFromKineticEnergy(7e12*EV, ProtonMass)
	assert.InDelta(t, 7461, gamma, 10, "LHC proton gamma")
	assert.True(t, BetaFromGamma(gamma) > 0.999999)
}

func TestMomentumGammaRoundTrip(t *testing.T) {
	masses := []float64{ElectronMass, ProtonMass}
	eks := []float64{1 * KeV, 1 * MeV, 1 * GeV, 1 * TeV}

	for _, m := range masses {
		for _, ek := range eks {
			gamma := GammaFromKineticEnergy(ek, m)
			p := MomentumFromGamma(gamma, m)
			assert.InEpsilon(t, gamma, GammaFromMomentum(p, m), 1e-12)
			// gamma - 1 keeps few bits when ek is far below the rest
			// energy, so a 1 KeV proton only round-trips to ~1e-10.
			assert.InEpsilon(t, ek, KineticEnergyFromGamma(gamma, m), 1e-9)
		}
	}
}

func TestEnergyUnits(t *testing.T) {
	assert.InEpsilon(t, KeV, EV*1e3, 1e-15)
	assert.InEpsilon(t, MeV, EV*1e6, 1e-15)
	assert.InEpsilon(t, GeV, EV*1e9, 1e-15)
	assert.InEpsilon(t, TeV, EV*1e12, 1e-15)
	assert.Equal(t, E, EV, "1 eV numerically equals the elementary charge")
}

func TestClassicalRelations(t *testing.T) {
	// alpha = e^2 / (4 pi eps0 hbar c)
	alpha := E * E / (4 * math.Pi * Epsilon0 * Hbar * C)
	assert.InEpsilon(t, Alpha, alpha, 1e-9)

	// mu0 eps0 c^2 = 1
	assert.InEpsilon(t, 1, Mu0*Epsilon0*C2, 1e-9)
}
