/*package constants collects the physical constants and relativistic
conversion functions used throughout gotrack. Values are the CODATA 2018
recommended ones (https://physics.nist.gov/cuu/Constants/), in SI units.
*/
package constants

import (
	"math"
)

const (
	// C is the speed of light in vacuum (m/s).
	C = 299792458.0
	// C2 is the speed of light squared (m^2/s^2).
	C2 = C * C

	// E is the elementary charge (C).
	E = 1.602176634e-19

	// ElectronMass is the electron rest mass (kg).
	ElectronMass = 9.1093837015e-31
	// ProtonMass is the proton rest mass (kg).
	ProtonMass = 1.67262192369e-27
	// NeutronMass is the neutron rest mass (kg).
	NeutronMass = 1.67492749804e-27
	// AtomicMassUnit is the unified atomic mass unit (kg).
	AtomicMassUnit = 1.66053906660e-27

	// Epsilon0 is the vacuum permittivity (F/m).
	Epsilon0 = 8.8541878128e-12
	// Mu0 is the vacuum permeability (H/m).
	Mu0 = 1.25663706212e-6

	// H is the Planck constant (J s).
	H = 6.62607015e-34
	// Hbar is the reduced Planck constant (J s).
	Hbar = H / (2 * math.Pi)

	// KB is the Boltzmann constant (J/K).
	KB = 1.380649e-23
	// NA is the Avogadro constant (1/mol).
	NA = 6.02214076e23

	// Alpha is the fine structure constant.
	Alpha = 7.2973525693e-3
	// ElectronRadius is the classical electron radius (m).
	ElectronRadius = 2.8179403262e-15
	// BohrRadius is the Bohr radius (m).
	BohrRadius = 5.29177210903e-11
)

// Energy unit conversion factors. Multiplying converts into Joules,
// dividing converts out of them.
const (
	EV  = 1.602176634e-19
	KeV = 1.602176634e-16
	MeV = 1.602176634e-13
	GeV = 1.602176634e-10
	TeV = 1.602176634e-7

	// ElectronRestEnergy is the electron rest energy (J).
	ElectronRestEnergy = ElectronMass * C2
	// ProtonRestEnergy is the proton rest energy (J).
	ProtonRestEnergy = ProtonMass * C2

	// ElectronRestEnergyMeV is the electron rest energy (MeV), about 0.511.
	ElectronRestEnergyMeV = ElectronRestEnergy / MeV
	// ProtonRestEnergyMeV is the proton rest energy (MeV), about 938.3.
	ProtonRestEnergyMeV = ProtonRestEnergy / MeV
)

// RestEnergy returns m c^2 in Joules for a rest mass m (kg).
func RestEnergy(m float64) float64 {
	return m * C2
}

// GammaFromVelocity returns the Lorentz factor of a particle moving at
// speed v (m/s).
func GammaFromVelocity(v float64) float64 {
	beta := v / C
	return 1 / math.Sqrt(1-beta*beta)
}

// GammaFromBeta returns the Lorentz factor 1/sqrt(1 - beta^2).
func GammaFromBeta(beta float64) float64 {
	return 1 / math.Sqrt(1-beta*beta)
}

// BetaFromGamma returns v/c = sqrt(1 - 1/gamma^2).
func BetaFromGamma(gamma float64) float64 {
	return math.Sqrt(1 - 1/(gamma*gamma))
}

// GammaFromKineticEnergy returns 1 + Ek/(m c^2) for a particle of rest
// mass m (kg) with kinetic energy ek (J).
func GammaFromKineticEnergy(ek, m float64) float64 {
	return 1 + ek/(m*C2)
}

// KineticEnergyFromGamma returns (gamma - 1) m c^2 in Joules.
func KineticEnergyFromGamma(gamma, m float64) float64 {
	return (gamma - 1) * m * C2
}

// TotalEnergyFromGamma returns gamma m c^2 in Joules.
func TotalEnergyFromGamma(gamma, m float64) float64 {
	return gamma * m * C2
}

// MomentumFromGamma returns the momentum magnitude gamma beta m c
// (kg m/s) of a particle of rest mass m (kg).
func MomentumFromGamma(gamma, m float64) float64 {
	return gamma * BetaFromGamma(gamma) * m * C
}

// GammaFromMomentum returns sqrt(1 + (p/(m c))^2).
func GammaFromMomentum(p, m float64) float64 {
	pmc := p / (m * C)
	return math.Sqrt(1 + pmc*pmc)
}
