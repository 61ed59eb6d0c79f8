package io

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/phil-mansfield/gotrack/lattice"
)

const ExampleSimFile = `{
    "simulation": {
        "timeStep": 1e-11,
        "timeScale": 1e6,
        "integratorType": 2,
        "particleCount": 1000,
        "beamEnergy": 1e9
    },
    "window": {
        "width": 1280,
        "height": 720,
        "vsync": true,
        "fullscreen": false
    }
}`

const ExampleLatticeFile = `{
    "latticeType": "circular",
    "components": [
        { "name": "QF1", "type": "quadrupole", "length": 0.5,
          "gradient": 50.0, "aperture": 0.05 },
        { "name": "D1", "type": "drift", "length": 4.5, "aperture": 0.05 },
        { "name": "QD1", "type": "quadrupole", "length": 0.5,
          "gradient": -50.0, "aperture": 0.05 },
        { "name": "D2", "type": "drift", "length": 4.5, "aperture": 0.05 }
    ]
}`

// SimConfig is the "simulation" block of a simulation file. BeamEnergy
// is a kinetic energy in eV; everything else is SI.
type SimConfig struct {
	TimeStep       float64 `json:"timeStep"`
	TimeScale      float64 `json:"timeScale"`
	IntegratorType int     `json:"integratorType"`
	ParticleCount  int     `json:"particleCount"`
	BeamEnergy     float64 `json:"beamEnergy"`
}

// DefaultSimConfig returns the simulation parameters used when a file
// leaves them unset: 10 ps steps at a million times real time, Boris
// integration, and a 1000-particle 1 GeV beam.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		TimeStep:       1e-11,
		TimeScale:      1e6,
		IntegratorType: 2,
		ParticleCount:  1000,
		BeamEnergy:     1e9,
	}
}

// SimFile is a simulation file: the simulation block plus an opaque
// window block that round-trips untouched.
type SimFile struct {
	Simulation SimConfig       `json:"simulation"`
	Window     json.RawMessage `json:"window,omitempty"`
}

// LoadSim reads a simulation file. Keys missing from the file keep
// their defaults.
func LoadSim(path string) (*SimFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sf := &SimFile{Simulation: DefaultSimConfig()}
	if err := json.Unmarshal(data, sf); err != nil {
		return nil, fmt.Errorf("Could not parse %s: %s.", path, err.Error())
	}
	return sf, nil
}

// SaveSim writes a simulation file.
func SaveSim(path string, sf *SimFile) error {
	data, err := json.MarshalIndent(sf, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// jsonComponent is the on-disk form of one beamline component. The
// pointer fields are only meaningful for the component types that use
// them.
type jsonComponent struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Length    float64  `json:"length"`
	Aperture  float64  `json:"aperture"`
	SPosition float64  `json:"sPosition"`
	Field     *float64 `json:"field,omitempty"`
	Gradient  *float64 `json:"gradient,omitempty"`
	Voltage   *float64 `json:"voltage,omitempty"`
	Frequency *float64 `json:"frequency,omitempty"`
	Phase     *float64 `json:"phase,omitempty"`
}

type jsonLattice struct {
	LatticeType string          `json:"latticeType"`
	TotalLength float64         `json:"totalLength"`
	Components  []jsonComponent `json:"components"`
}

// LoadLattice reads a beamline from a JSON lattice file, computes
// s-positions, and closes the ring for circular lattices. Components
// of unknown type are skipped with a warning.
func LoadLattice(path string) (*lattice.Lattice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		LatticeType string            `json:"latticeType"`
		Components  []json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("Could not parse %s: %s.", path, err.Error())
	}

	l := lattice.New()
	if file.LatticeType == "circular" {
		l.SetType(lattice.Circular)
	}

	for i, raw := range file.Components {
		jc := jsonComponent{Name: "unnamed", Length: 1.0, Aperture: 0.05}
		if err := json.Unmarshal(raw, &jc); err != nil {
			return nil, fmt.Errorf(
				"Component %d of %s: %s.", i, path, err.Error(),
			)
		}

		if jc.Length < 0 {
			return nil, fmt.Errorf(
				"Component '%s' of %s has a negative length, %g.",
				jc.Name, path, jc.Length,
			)
		} else if jc.Aperture < 0 {
			return nil, fmt.Errorf(
				"Component '%s' of %s has a negative aperture, %g.",
				jc.Name, path, jc.Aperture,
			)
		}

		ap := lattice.CircularAperture(jc.Aperture)
		switch jc.Type {
		case "drift", "beampipe":
			l.Add(lattice.NewBeamPipe(jc.Name, jc.Length, ap))
		case "dipole":
			l.Add(lattice.NewDipole(
				jc.Name, jc.Length, orDefault(jc.Field, 1.0), ap,
			))
		case "quadrupole":
			l.Add(lattice.NewQuadrupole(
				jc.Name, jc.Length, orDefault(jc.Gradient, 10.0), ap,
			))
		case "rfcavity":
			l.Add(lattice.NewRFCavity(
				jc.Name, jc.Length, orDefault(jc.Voltage, 1e6),
				orDefault(jc.Frequency, 5e8), orDefault(jc.Phase, 0), ap,
			))
		case "detector":
			l.Add(lattice.NewDetector(jc.Name, ap))
		default:
			log.Printf("Config: Unknown component type '%s' in %s, skipping",
				jc.Type, path)
		}
	}

	l.Compute()
	log.Printf("Config: Loaded lattice from %s with %d components",
		path, l.Len())
	return l, nil
}

// SaveLattice writes a beamline to a JSON lattice file.
func SaveLattice(path string, l *lattice.Lattice) error {
	file := jsonLattice{
		LatticeType: "linear",
		TotalLength: l.TotalLength(),
		Components:  []jsonComponent{},
	}
	if l.Closed() {
		file.LatticeType = "circular"
	}

	for _, c := range l.Components() {
		jc := jsonComponent{
			Name:      c.Name(),
			Type:      kindName(c.Kind()),
			Length:    c.Length(),
			Aperture:  c.Aperture().RadiusX,
			SPosition: c.SPosition(),
		}
		switch c.Kind() {
		case lattice.Dipole:
			jc.Field = f64(c.Field())
		case lattice.Quadrupole:
			jc.Gradient = f64(c.Gradient())
		case lattice.RFCavity:
			jc.Voltage = f64(c.Voltage())
			jc.Frequency = f64(c.Frequency())
			jc.Phase = f64(c.Phase())
		}
		file.Components = append(file.Components, jc)
	}

	data, err := json.MarshalIndent(&file, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func kindName(k lattice.Kind) string {
	switch k {
	case lattice.BeamPipe:
		return "drift"
	case lattice.Dipole:
		return "dipole"
	case lattice.Quadrupole:
		return "quadrupole"
	case lattice.RFCavity:
		return "rfcavity"
	case lattice.Detector:
		return "detector"
	}
	return "unknown"
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func f64(v float64) *float64 { return &v }
