/*package lattice arranges beamline elements along an accelerator and
exposes their fields to the tracking engine. Components are placed by
order of insertion; Compute assigns each one its s-position, the
longitudinal coordinate of its entrance measured along the beamline.

Magnetic elements build their field sources lazily and cache them, so
changing a magnet's strength invalidates the cache while geometry
queries stay cheap.
*/
package lattice

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/phil-mansfield/gotrack/constants"
	"github.com/phil-mansfield/gotrack/field"
	"github.com/phil-mansfield/gotrack/geom"
)

// Kind identifies the component variety.
type Kind int

const (
	BeamPipe Kind = iota
	Dipole
	Quadrupole
	Sextupole
	RFCavity
	Detector
	Custom
)

func (k Kind) String() string {
	switch k {
	case BeamPipe:
		return "BeamPipe"
	case Dipole:
		return "Dipole"
	case Quadrupole:
		return "Quadrupole"
	case Sextupole:
		return "Sextupole"
	case RFCavity:
		return "RFCavity"
	case Detector:
		return "Detector"
	case Custom:
		return "Custom"
	}
	return "Unknown"
}

// ApertureShape selects the cross-section of a component's vacuum
// chamber.
type ApertureShape int

const (
	CircularShape ApertureShape = iota
	EllipticalShape
	RectangularShape
)

// Aperture is the transverse opening of a component. RadiusX doubles
// as the half-width for rectangular apertures, RadiusY as the
// half-height.
type Aperture struct {
	Shape   ApertureShape
	RadiusX float64
	RadiusY float64
}

// DefaultAperture returns the standard 5 cm circular aperture.
func DefaultAperture() Aperture {
	return Aperture{Shape: CircularShape, RadiusX: 0.05, RadiusY: 0.05}
}

// CircularAperture returns a circular aperture of the given radius.
func CircularAperture(r float64) Aperture {
	return Aperture{Shape: CircularShape, RadiusX: r, RadiusY: r}
}

// Inside reports whether the local transverse point (x, y) is within
// the aperture. Boundaries count as inside.
func (a Aperture) Inside(x, y float64) bool {
	switch a.Shape {
	case CircularShape:
		return math.Sqrt(x*x+y*y) <= a.RadiusX
	case EllipticalShape:
		nx, ny := x/a.RadiusX, y/a.RadiusY
		return nx*nx+ny*ny <= 1
	case RectangularShape:
		return math.Abs(x) <= a.RadiusX && math.Abs(y) <= a.RadiusY
	}
	return true
}

// Hit records one particle crossing a detector plane.
type Hit struct {
	Time       float64
	Pos        r3.Vec
	Mom        r3.Vec
	ParticleID int64
}

// Component is one beamline element. The zero value is unusable;
// construct components with the New* functions. A component's local
// frame has z running from 0 at the entrance to Length at the exit.
type Component struct {
	name     string
	kind     Kind
	length   float64
	aperture Aperture
	sPos     float64
	tr       geom.Transform

	// Variant parameters. Only the fields matching kind are
	// meaningful.
	fieldT    float64 // Dipole: vertical field (T)
	gradient  float64 // Quadrupole: gradient (T/m)
	voltage   float64 // RFCavity: peak voltage (V)
	frequency float64 // RFCavity: frequency (Hz)
	phase     float64 // RFCavity: synchronous phase (rad)

	src  field.Source
	hits []Hit
}

// NewBeamPipe returns a field-free drift section.
func NewBeamPipe(name string, length float64, ap Aperture) *Component {
	return &Component{name: name, kind: BeamPipe, length: length, aperture: ap}
}

// NewDipole returns a bending magnet with a vertical field of the
// given strength in Tesla.
func NewDipole(name string, length, fieldT float64, ap Aperture) *Component {
	return &Component{
		name: name, kind: Dipole, length: length, aperture: ap,
		fieldT: fieldT,
	}
}

// NewQuadrupole returns a focusing magnet with the given gradient in
// T/m. Positive gradients focus positive particles horizontally.
func NewQuadrupole(name string, length, gradient float64, ap Aperture) *Component {
	return &Component{
		name: name, kind: Quadrupole, length: length, aperture: ap,
		gradient: gradient,
	}
}

// NewRFCavity returns an accelerating cavity.
func NewRFCavity(
	name string, length, voltage, frequency, phase float64, ap Aperture,
) *Component {
	return &Component{
		name: name, kind: RFCavity, length: length, aperture: ap,
		voltage: voltage, frequency: frequency, phase: phase,
	}
}

// detectorLength is the thickness of the (nominally zero-length)
// detector plane.
const detectorLength = 0.001

// NewDetector returns a thin detector plane that records particle
// crossings.
func NewDetector(name string, ap Aperture) *Component {
	return &Component{
		name: name, kind: Detector, length: detectorLength, aperture: ap,
	}
}

func (c *Component) Name() string       { return c.name }
func (c *Component) Kind() Kind         { return c.kind }
func (c *Component) Length() float64    { return c.length }
func (c *Component) Aperture() Aperture { return c.aperture }

// SPosition returns the s-coordinate of the component entrance.
func (c *Component) SPosition() float64     { return c.sPos }
func (c *Component) SetSPosition(s float64) { c.sPos = s }
func (c *Component) EntranceS() float64     { return c.sPos }
func (c *Component) ExitS() float64         { return c.sPos + c.length }

// Position returns the component origin in global coordinates.
func (c *Component) Position() r3.Vec { return c.tr.Pos }

// SetPosition places the component origin. An already-built field
// source keeps its old bounds; set strengths after placing.
func (c *Component) SetPosition(pos r3.Vec) { c.tr.Pos = pos }

// Rotation returns the component orientation.
func (c *Component) Rotation() r3.Rotation { return c.tr.Rot }

// SetRotation orients the component by a rotation of alpha radians
// about axis.
func (c *Component) SetRotation(alpha float64, axis r3.Vec) {
	c.tr.SetRotation(alpha, axis)
}

// ToLocal transforms a global position into the component frame.
func (c *Component) ToLocal(pt r3.Vec) r3.Vec { return c.tr.ToLocal(pt) }

// ToGlobal transforms a component-frame position to global
// coordinates.
func (c *Component) ToGlobal(pt r3.Vec) r3.Vec { return c.tr.ToGlobal(pt) }

// InsideAperture reports whether a global position lies within the
// component volume: longitudinally within [0, Length] and
// transversally within the aperture.
func (c *Component) InsideAperture(pt r3.Vec) bool {
	local := c.ToLocal(pt)
	if local.Z < 0 || local.Z > c.length {
		return false
	}
	return c.aperture.Inside(local.X, local.Y)
}

// ContainsS reports whether s falls within [EntranceS, ExitS).
func (c *Component) ContainsS(s float64) bool {
	return s >= c.sPos && s < c.sPos+c.length
}

// FieldSource returns the component's field source, building and
// caching it on first use. Field-free components return nil.
func (c *Component) FieldSource() field.Source {
	switch c.kind {
	case Dipole:
		if c.src == nil {
			r := c.aperture.RadiusX
			half := c.length / 2
			pos := c.tr.Pos
			bounds := geom.NewBox(
				r3.Vec{X: pos.X - r, Y: pos.Y - r, Z: pos.Z - half},
				r3.Vec{X: pos.X + r, Y: pos.Y + r, Z: pos.Z + half},
			)
			c.src = field.NewUniformB(r3.Vec{Y: c.fieldT}, bounds)
		}
		return c.src
	case Quadrupole:
		if c.src == nil {
			c.src = field.NewQuadrupole(
				c.gradient, c.tr.Pos, c.length, c.aperture.RadiusX)
		}
		return c.src
	case RFCavity:
		if c.src == nil {
			c.src = field.NewRF(c.voltage, c.frequency, c.phase,
				c.tr.Pos, c.length, c.aperture.RadiusX)
		}
		return c.src
	}
	return nil
}

// Field returns a dipole's field strength in Tesla.
func (c *Component) Field() float64 { return c.fieldT }

// SetField updates a dipole's field and drops the cached source.
func (c *Component) SetField(b float64) {
	c.fieldT = b
	c.src = nil
}

// BendingAngle returns the angle in radians through which a dipole
// bends a particle of the given momentum: theta = e |B| L / p.
func (c *Component) BendingAngle(momentum float64) float64 {
	return constants.E * math.Abs(c.fieldT) * c.length / momentum
}

// BendingRadius returns the bending radius rho = p / (e |B|), or +Inf
// for a field too weak to measure.
func (c *Component) BendingRadius(momentum float64) float64 {
	if math.Abs(c.fieldT) < 1e-10 {
		return math.Inf(1)
	}
	return momentum / (constants.E * math.Abs(c.fieldT))
}

// Gradient returns a quadrupole's gradient in T/m.
func (c *Component) Gradient() float64 { return c.gradient }

// SetGradient updates a quadrupole's gradient and drops the cached
// source.
func (c *Component) SetGradient(g float64) {
	c.gradient = g
	c.src = nil
}

// K1 returns the normalized quadrupole strength e G / p in 1/m^2.
func (c *Component) K1(momentum float64) float64 {
	return constants.E * c.gradient / momentum
}

// Focusing reports whether a quadrupole focuses in the horizontal
// plane.
func (c *Component) Focusing() bool { return c.gradient > 0 }

// Voltage returns an RF cavity's peak voltage in Volts.
func (c *Component) Voltage() float64 { return c.voltage }

func (c *Component) SetVoltage(v float64) {
	c.voltage = v
	c.src = nil
}

// Frequency returns an RF cavity's frequency in Hz.
func (c *Component) Frequency() float64 { return c.frequency }

func (c *Component) SetFrequency(f float64) {
	c.frequency = f
	c.src = nil
}

// Phase returns an RF cavity's synchronous phase in radians.
func (c *Component) Phase() float64 { return c.phase }

func (c *Component) SetPhase(phi float64) {
	c.phase = phi
	c.src = nil
}

// EnergyGain returns the energy in Joules a unit charge gains crossing
// the cavity at the given phase: e V cos(phase).
func (c *Component) EnergyGain(phase float64) float64 {
	return constants.E * c.voltage * math.Cos(phase)
}

// RecordHit appends a crossing record to a detector.
func (c *Component) RecordHit(h Hit) {
	c.hits = append(c.hits, h)
}

// Hits returns the recorded detector crossings.
func (c *Component) Hits() []Hit { return c.hits }

// HitCount returns the number of recorded crossings.
func (c *Component) HitCount() int { return len(c.hits) }

// ClearHits discards all recorded crossings.
func (c *Component) ClearHits() { c.hits = c.hits[:0] }
