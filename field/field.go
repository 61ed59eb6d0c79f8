/*package field models electromagnetic field sources and their
superposition. A Source reports E and B at a point in space and time,
gated by an axis-aligned bounding box. The Manager sums every enabled
source that claims the query point, so overlapping elements simply
superpose.
*/
package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/geom"
)

// Value is the electromagnetic field at a single point. E is in V/m,
// B in Tesla.
type Value struct {
	E, B r3.Vec
}

// Add returns the superposition of two field values.
func (v Value) Add(u Value) Value {
	return Value{E: v.E.Add(u.E), B: v.B.Add(u.B)}
}

// Scale returns the field value scaled by s.
func (v Value) Scale(s float64) Value {
	return Value{E: v.E.Scale(s), B: v.B.Scale(s)}
}

// Source is a single field-generating region.
type Source interface {
	// Eval returns the field at a global position and time. Positions
	// outside the source's region evaluate to a zero Value.
	Eval(pos r3.Vec, t float64) Value
	// Bounds returns the axis-aligned box enclosing the region.
	Bounds() geom.Box
	// Contains reports whether pos is inside the region's box.
	Contains(pos r3.Vec) bool
	Enabled() bool
	SetEnabled(on bool)
}

// enabler provides the Enabled/SetEnabled half of Source. Its zero
// value is enabled.
type enabler struct {
	disabled bool
}

func (e *enabler) Enabled() bool      { return !e.disabled }
func (e *enabler) SetEnabled(on bool) { e.disabled = !on }

// Manager sums the contributions of a set of sources.
type Manager struct {
	sources []Source
}

// NewManager returns an empty Manager.
func NewManager() *Manager { return &Manager{} }

// Add appends a source. nil sources are ignored.
func (m *Manager) Add(src Source) {
	if src != nil {
		m.sources = append(m.sources, src)
	}
}

// Remove deletes the first occurrence of src, if present.
func (m *Manager) Remove(src Source) {
	for i, s := range m.sources {
		if s == src {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return
		}
	}
}

// Clear removes every source.
func (m *Manager) Clear() { m.sources = m.sources[:0] }

// Len returns the number of sources.
func (m *Manager) Len() int { return len(m.sources) }

// Sources returns the underlying source slice.
func (m *Manager) Sources() []Source { return m.sources }

// Eval returns the total field at pos and time t. Only enabled sources
// whose region contains pos contribute.
func (m *Manager) Eval(pos r3.Vec, t float64) Value {
	total := Value{}
	for _, src := range m.sources {
		if src != nil && src.Enabled() && src.Contains(pos) {
			total = total.Add(src.Eval(pos, t))
		}
	}
	return total
}

// UniformB is a constant magnetic field filling a box, the hard-edge
// model of a dipole magnet.
type UniformB struct {
	enabler
	field  r3.Vec
	bounds geom.Box
}

// NewUniformB creates a constant field b Tesla inside bounds. Use
// geom.Infinite() for a field with no boundary.
func NewUniformB(b r3.Vec, bounds geom.Box) *UniformB {
	return &UniformB{field: b, bounds: bounds}
}

func (u *UniformB) Eval(pos r3.Vec, t float64) Value {
	if !u.bounds.IsInfinite() && !u.bounds.Contains(pos) {
		return Value{}
	}
	return Value{B: u.field}
}

func (u *UniformB) Bounds() geom.Box         { return u.bounds }
func (u *UniformB) Contains(pos r3.Vec) bool { return u.bounds.Contains(pos) }
func (u *UniformB) Field() r3.Vec            { return u.field }
func (u *UniformB) SetField(b r3.Vec)        { u.field = b }

// Quadrupole is a linear-gradient magnetic lens. In coordinates local
// to its center the field is Bx = G y, By = G x, Bz = 0, with G in
// T/m. A positive gradient focuses positive charge moving along +z in
// the horizontal plane and defocuses it vertically.
type Quadrupole struct {
	enabler
	gradient float64
	center   r3.Vec
	length   float64
	aperture float64
	bounds   geom.Box
}

// NewQuadrupole creates a quadrupole of the given gradient (T/m)
// centered at center, extending length/2 up and down the z axis with a
// circular aperture of the given radius.
func NewQuadrupole(
	gradient float64, center r3.Vec, length, aperture float64,
) *Quadrupole {
	q := &Quadrupole{
		gradient: gradient,
		center:   center,
		length:   length,
		aperture: aperture,
	}
	half := length / 2
	q.bounds = geom.NewBox(
		r3.Vec{X: center.X - aperture, Y: center.Y - aperture, Z: center.Z - half},
		r3.Vec{X: center.X + aperture, Y: center.Y + aperture, Z: center.Z + half},
	)
	return q
}

func (q *Quadrupole) Eval(pos r3.Vec, t float64) Value {
	if !q.bounds.Contains(pos) {
		return Value{}
	}

	x := pos.X - q.center.X
	y := pos.Y - q.center.Y
	if math.Sqrt(x*x+y*y) > q.aperture {
		return Value{}
	}

	return Value{B: r3.Vec{X: q.gradient * y, Y: q.gradient * x}}
}

func (q *Quadrupole) Bounds() geom.Box         { return q.bounds }
func (q *Quadrupole) Contains(pos r3.Vec) bool { return q.bounds.Contains(pos) }
func (q *Quadrupole) Gradient() float64        { return q.gradient }
func (q *Quadrupole) SetGradient(g float64)    { q.gradient = g }
func (q *Quadrupole) Aperture() float64        { return q.aperture }

// RF is an oscillating longitudinal electric field, the pillbox model
// of an accelerating cavity: Ez = (V/L) cos(omega t + phi).
type RF struct {
	enabler
	voltage   float64
	frequency float64
	omega     float64
	phase     float64
	center    r3.Vec
	length    float64
	aperture  float64
	bounds    geom.Box
}

// NewRF creates an RF cavity field with peak voltage in Volts,
// frequency in Hz, and phase in radians, centered at center.
func NewRF(
	voltage, frequency, phase float64,
	center r3.Vec, length, aperture float64,
) *RF {
	rf := &RF{
		voltage:   voltage,
		frequency: frequency,
		omega:     2 * math.Pi * frequency,
		phase:     phase,
		center:    center,
		length:    length,
		aperture:  aperture,
	}
	half := length / 2
	rf.bounds = geom.NewBox(
		r3.Vec{X: center.X - aperture, Y: center.Y - aperture, Z: center.Z - half},
		r3.Vec{X: center.X + aperture, Y: center.Y + aperture, Z: center.Z + half},
	)
	return rf
}

func (rf *RF) Eval(pos r3.Vec, t float64) Value {
	if !rf.bounds.Contains(pos) {
		return Value{}
	}

	x := pos.X - rf.center.X
	y := pos.Y - rf.center.Y
	if math.Sqrt(x*x+y*y) > rf.aperture {
		return Value{}
	}

	ez := (rf.voltage / rf.length) * math.Cos(rf.omega*t+rf.phase)
	return Value{E: r3.Vec{Z: ez}}
}

func (rf *RF) Bounds() geom.Box         { return rf.bounds }
func (rf *RF) Contains(pos r3.Vec) bool { return rf.bounds.Contains(pos) }

func (rf *RF) Voltage() float64     { return rf.voltage }
func (rf *RF) SetVoltage(v float64) { rf.voltage = v }
func (rf *RF) Frequency() float64   { return rf.frequency }
func (rf *RF) Phase() float64       { return rf.phase }
func (rf *RF) SetPhase(phi float64) { rf.phase = phi }

// SetFrequency updates the frequency and the cached angular frequency
// together.
func (rf *RF) SetFrequency(f float64) {
	rf.frequency = f
	rf.omega = 2 * math.Pi * f
}
