/*package geom provides the small amount of 3D geometry the tracking core
needs: axis-aligned boxes for field regions and rigid transforms for
placing beamline components.
*/
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned bounding box. The zero value is the empty box;
// use Infinite for an all-space box.
type Box struct {
	Min, Max r3.Vec
}

// Infinite returns a box containing every point.
func Infinite() Box {
	inf := math.Inf(1)
	return Box{
		Min: r3.Vec{X: -inf, Y: -inf, Z: -inf},
		Max: r3.Vec{X: +inf, Y: +inf, Z: +inf},
	}
}

// NewBox returns the box spanning [min, max] on each axis.
func NewBox(min, max r3.Vec) Box {
	return Box{Min: min, Max: max}
}

// Contains reports whether pt is inside b. Bounds are closed.
func (b *Box) Contains(pt r3.Vec) bool {
	return pt.X >= b.Min.X && pt.X <= b.Max.X &&
		pt.Y >= b.Min.Y && pt.Y <= b.Max.Y &&
		pt.Z >= b.Min.Z && pt.Z <= b.Max.Z
}

// IsInfinite reports whether b extends to infinity. Only the x faces are
// inspected: boxes are either fully infinite or fully finite here, so
// checking one axis is enough.
func (b *Box) IsInfinite() bool {
	return math.IsInf(b.Min.X, -1) || math.IsInf(b.Max.X, +1)
}

// Transform is a rigid placement: a translation followed by a rotation.
// A zero-valued Rot is treated as the identity, so the zero Transform
// leaves points where they are.
type Transform struct {
	Pos r3.Vec
	Rot r3.Rotation
}

// NewTransform returns a transform that translates by pos with no
// rotation.
func NewTransform(pos r3.Vec) Transform {
	return Transform{Pos: pos}
}

// SetRotation sets the rotation to alpha radians about axis.
func (t *Transform) SetRotation(alpha float64, axis r3.Vec) {
	t.Rot = r3.NewRotation(alpha, axis)
}

// ToLocal maps a global point into the transform's local frame:
// undo the translation, then undo the rotation.
func (t *Transform) ToLocal(pt r3.Vec) r3.Vec {
	d := pt.Sub(t.Pos)
	if t.Rot == (r3.Rotation{}) {
		return d
	}
	inv := r3.Rotation(quat.Conj(quat.Number(t.Rot)))
	return inv.Rotate(d)
}

// ToGlobal maps a local point back to global coordinates: rotate, then
// translate.
func (t *Transform) ToGlobal(pt r3.Vec) r3.Vec {
	if t.Rot == (r3.Rotation{}) {
		return pt.Add(t.Pos)
	}
	return t.Rot.Rotate(pt).Add(t.Pos)
}
