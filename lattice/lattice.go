package lattice

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/gotrack/field"
)

// Type distinguishes single-pass from periodic machines.
type Type int

const (
	// Linear machines track each particle through once.
	Linear Type = iota
	// Circular machines wrap s-coordinates modulo the circumference.
	Circular
)

// FODOParams sizes a standard focus-drift-defocus-drift cell.
type FODOParams struct {
	CellLength   float64 // full cell length (m)
	QuadLength   float64 // length of each quadrupole (m)
	QuadGradient float64 // gradient magnitude (T/m)
	DriftLength  float64 // drift length (m), computed when <= 0
	Aperture     float64 // aperture radius (m)
}

// DefaultFODOParams returns a 10 m cell with half-meter, 50 T/m
// quadrupoles.
func DefaultFODOParams() FODOParams {
	return FODOParams{
		CellLength:   10.0,
		QuadLength:   0.5,
		QuadGradient: 50.0,
		Aperture:     0.05,
	}
}

// Lattice is an ordered sequence of components forming a beamline.
type Lattice struct {
	components   []*Component
	typ          Type
	totalLength  float64
	driftCounter int
}

// New returns an empty linear lattice.
func New() *Lattice { return &Lattice{} }

// SetType sets whether the lattice is linear or circular.
func (l *Lattice) SetType(t Type) { l.typ = t }

// Type returns the lattice type.
func (l *Lattice) Type() Type { return l.typ }

// Closed reports whether the lattice is circular.
func (l *Lattice) Closed() bool { return l.typ == Circular }

// Len returns the number of components.
func (l *Lattice) Len() int { return len(l.components) }

// TotalLength returns the summed length of all components, as of the
// last Compute.
func (l *Lattice) TotalLength() float64 { return l.totalLength }

// Circumference is TotalLength under its circular-machine name.
func (l *Lattice) Circumference() float64 { return l.totalLength }

// Components returns the underlying component slice in beamline order.
func (l *Lattice) Components() []*Component { return l.components }

// Add appends a component to the end of the beamline. nil components
// are ignored.
func (l *Lattice) Add(c *Component) {
	if c != nil {
		l.components = append(l.components, c)
	}
}

// Insert places a component before index i. Out-of-range indices and
// nil components are ignored.
func (l *Lattice) Insert(i int, c *Component) {
	if c == nil || i < 0 || i > len(l.components) {
		return
	}
	l.components = append(l.components, nil)
	copy(l.components[i+1:], l.components[i:])
	l.components[i] = c
}

// RemoveAt deletes the component at index i, if present.
func (l *Lattice) RemoveAt(i int) {
	if i < 0 || i >= len(l.components) {
		return
	}
	l.components = append(l.components[:i], l.components[i+1:]...)
}

// Remove deletes every component with the given name.
func (l *Lattice) Remove(name string) {
	kept := l.components[:0]
	for _, c := range l.components {
		if c.Name() != name {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(l.components); i++ {
		l.components[i] = nil
	}
	l.components = kept
}

// Clear removes every component and resets the drift counter.
func (l *Lattice) Clear() {
	l.components = nil
	l.totalLength = 0
	l.driftCounter = 0
}

// At returns the component at index i, or nil when out of range.
func (l *Lattice) At(i int) *Component {
	if i < 0 || i >= len(l.components) {
		return nil
	}
	return l.components[i]
}

// ByName returns the first component with the given name, or nil.
func (l *Lattice) ByName(name string) *Component {
	for _, c := range l.components {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// AtS returns the component occupying the s-coordinate, or nil if s
// falls in no component. Circular lattices wrap s modulo the
// circumference, with negative values measured backward from the end.
func (l *Lattice) AtS(s float64) *Component {
	if l.typ == Circular && l.totalLength > 0 {
		s = mod(s, l.totalLength)
	}
	for _, c := range l.components {
		if c.ContainsS(s) {
			return c
		}
	}
	return nil
}

// mod wraps s into [0, length).
func mod(s, length float64) float64 {
	s = math.Mod(s, length)
	if s < 0 {
		s += length
	}
	return s
}

// BuildFODOCell appends one FODO cell: a focusing quadrupole, a drift,
// a defocusing quadrupole, and a closing drift. Component names are
// derived from cellName, which defaults to "FODO".
func (l *Lattice) BuildFODOCell(params FODOParams, cellName string) {
	if cellName == "" {
		cellName = "FODO"
	}

	drift := params.DriftLength
	if drift <= 0 {
		drift = (params.CellLength - 2*params.QuadLength) / 2
	}

	ap := CircularAperture(params.Aperture)

	l.Add(NewQuadrupole(cellName+"_QF", params.QuadLength,
		params.QuadGradient, ap))
	l.AddDrift(drift, cellName+"_D1")
	l.Add(NewQuadrupole(cellName+"_QD", params.QuadLength,
		-params.QuadGradient, ap))
	l.AddDrift(drift, cellName+"_D2")
}

// BuildFODOLattice appends n FODO cells named FODO_1 through FODO_n.
func (l *Lattice) BuildFODOLattice(params FODOParams, n int) {
	for i := 0; i < n; i++ {
		l.BuildFODOCell(params, fmt.Sprintf("FODO_%d", i+1))
	}
}

// AddDrift appends a field-free pipe with the default aperture. An
// empty name draws the next "Drift_N" name from the drift counter.
func (l *Lattice) AddDrift(length float64, name string) {
	if name == "" {
		l.driftCounter++
		name = fmt.Sprintf("Drift_%d", l.driftCounter)
	}
	l.Add(NewBeamPipe(name, length, DefaultAperture()))
}

// Compute assigns each component its s-position by accumulating
// lengths in beamline order, and records the total length. Call it
// after the lattice is assembled and before tracking.
func (l *Lattice) Compute() {
	s := 0.0
	for _, c := range l.components {
		c.SetSPosition(s)
		s += c.Length()
	}
	l.totalLength = s
}

// CloseRing marks the lattice circular and recomputes s-positions.
func (l *Lattice) CloseRing() {
	l.typ = Circular
	l.Compute()
}

// PopulateFields registers every component field source with the
// manager. Field-free components are skipped.
func (l *Lattice) PopulateFields(m *field.Manager) {
	for _, c := range l.components {
		if src := c.FieldSource(); src != nil {
			m.Add(src)
		}
	}
}

// Dipoles returns the dipoles in beamline order.
func (l *Lattice) Dipoles() []*Component { return l.byKind(Dipole) }

// Quadrupoles returns the quadrupoles in beamline order.
func (l *Lattice) Quadrupoles() []*Component { return l.byKind(Quadrupole) }

// RFCavities returns the RF cavities in beamline order.
func (l *Lattice) RFCavities() []*Component { return l.byKind(RFCavity) }

// Detectors returns the detectors in beamline order.
func (l *Lattice) Detectors() []*Component { return l.byKind(Detector) }

func (l *Lattice) byKind(k Kind) []*Component {
	var out []*Component
	for _, c := range l.components {
		if c.Kind() == k {
			out = append(out, c)
		}
	}
	return out
}

// DipoleCount returns the number of dipoles.
func (l *Lattice) DipoleCount() int { return len(l.byKind(Dipole)) }

// QuadrupoleCount returns the number of quadrupoles.
func (l *Lattice) QuadrupoleCount() int { return len(l.byKind(Quadrupole)) }

// TotalBendingAngle sums the bending angles of every dipole for a
// particle of the given momentum.
func (l *Lattice) TotalBendingAngle(momentum float64) float64 {
	total := 0.0
	for _, d := range l.Dipoles() {
		total += d.BendingAngle(momentum)
	}
	return total
}
