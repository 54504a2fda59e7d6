// Package spline tessellates declarative road/track spline definitions into
// triangulated geometry. A spline is a planar arc (signed radius, 0 =
// straight) composed with a vertical height cubic, linearly varying cant
// (roll) and skew (lateral shear), extruded along a cross-section profile.
package spline

import (
	"github.com/chewxy/math32"

	vecmath "github.com/o3dtools/o3dkit/pkg/math"
)

// Def is one spline definition from a map file. Immutable after
// construction.
type Def struct {
	Path    string // .sli profile path, relative to the installation root
	ID      int
	NextID  int
	PrevID  int
	LocalID int

	Pos    vecmath.Vec3 // world position of the spline start
	Rot    float32      // heading at the start, degrees clockwise
	Length float32
	Radius float32 // signed turn radius; sign = turn direction, 0 = straight

	// Grades are endpoint slopes in percent. When UseDeltaHeight is set the
	// total height difference is prescribed as well and the vertical profile
	// becomes a full Hermite cubic instead of the grade-only quadratic.
	StartGrade     float32
	EndGrade       float32
	DeltaHeight    float32
	UseDeltaHeight bool

	CantStart float32 // percent
	CantEnd   float32
	SkewStart float32
	SkewEnd   float32

	Mirror bool
}

// Preview returns a copy with grade and cant zeroed, the flattened variant
// used while a spline is still being placed.
func (d Def) Preview() Def {
	d.StartGrade = 0
	d.EndGrade = 0
	d.DeltaHeight = 0
	d.UseDeltaHeight = false
	d.CantStart = 0
	d.CantEnd = 0
	return d
}

// Evaluator caches the derived curve coefficients of one definition.
type Evaluator struct {
	def Def

	// Height cubic h(s) = c1*s + c2*s^2 + c3*s^3 with h(0) = 0.
	c1, c2, c3 float32
}

// NewEvaluator derives the vertical-profile coefficients.
//
// Grade-only definitions interpolate the slope linearly, giving a quadratic
// height curve. With a prescribed delta height the coefficients are the
// closed-form Hermite fit matching both endpoint slopes and the total rise.
func NewEvaluator(def Def) *Evaluator {
	e := &Evaluator{def: def}
	l := def.Length
	if l <= 0 {
		return e
	}

	g0 := def.StartGrade / 100
	g1 := def.EndGrade / 100
	e.c1 = g0
	if def.UseDeltaHeight {
		dh := def.DeltaHeight
		e.c2 = (3*dh - (2*g0+g1)*l) / (l * l)
		e.c3 = (-2*dh + (g0+g1)*l) / (l * l * l)
	} else {
		e.c2 = (g1 - g0) / (2 * l)
	}
	return e
}

// Def returns the definition the evaluator was built from.
func (e *Evaluator) Def() Def { return e.def }

// Height returns the centerline height at distance s.
func (e *Evaluator) Height(s float32) float32 {
	return s * (e.c1 + s*(e.c2+s*e.c3))
}

// Slope returns dh/ds at distance s.
func (e *Evaluator) Slope(s float32) float32 {
	return e.c1 + s*(2*e.c2+s*3*e.c3)
}

// cant returns the interpolated cant at distance s, in percent.
func (e *Evaluator) cant(s float32) float32 {
	t := s / e.def.Length
	return e.def.CantStart + (e.def.CantEnd-e.def.CantStart)*t
}

// skew returns the interpolated lateral shear factor at distance s.
func (e *Evaluator) skew(s float32) float32 {
	t := s / e.def.Length
	return e.def.SkewStart + (e.def.SkewEnd-e.def.SkewStart)*t
}

// Evaluate returns the position and orientation of the point at distance s
// along the spline, displaced laterally by xOffset in the slice plane. The
// rotation is returned as (pitch, roll, yaw) euler angles in radians. With
// world set, the frame is transformed by the definition's start position and
// heading into tile space.
func (e *Evaluator) Evaluate(s, xOffset float32, world bool) (vecmath.Vec3, vecmath.Vec3) {
	pos := e.point(s, xOffset, 0)
	rot := vecmath.Vec3{
		X: math32.Atan(e.Slope(s)),
		Y: -math32.Atan(e.cant(s) / 100),
		Z: e.yaw(s),
	}
	if world {
		pos = e.toWorld(pos)
		rot.Z -= deg2rad(e.def.Rot)
	}
	return pos, rot
}

// yaw returns the heading change accumulated by the arc at distance s.
func (e *Evaluator) yaw(s float32) float32 {
	if e.def.Radius == 0 {
		return 0
	}
	rho := math32.Abs(e.def.Radius)
	dir := math32.Copysign(1, e.def.Radius)
	return -s / rho * dir
}

// point places a slice-local offset (x lateral, z vertical) at distance s.
// The slice is sheared by skew, rolled by cant, pitched by the height slope
// and finally swept along the arc about the curve center.
func (e *Evaluator) point(s, x, z float32) vecmath.Vec3 {
	if e.def.Mirror {
		x = -x
	}

	// Shear along the direction of travel.
	y := e.skew(s) * x

	// Roll about the forward axis.
	roll := -math32.Atan(e.cant(s) / 100)
	sinR, cosR := math32.Sincos(roll)
	x, z = x*cosR+z*sinR, -x*sinR+z*cosR

	// Pitch about the lateral axis.
	pitch := math32.Atan(e.Slope(s))
	sinP, cosP := math32.Sincos(pitch)
	y, z = y*cosP-z*sinP, y*sinP+z*cosP

	h := e.Height(s)
	if e.def.Radius == 0 {
		return vecmath.Vec3{X: x, Y: s + y, Z: h + z}
	}

	// Rotate about the curve center at (dir*rho, 0).
	rho := math32.Abs(e.def.Radius)
	dir := math32.Copysign(1, e.def.Radius)
	alpha := s / rho
	sinA, cosA := math32.Sincos(alpha)
	cx := dir * rho
	px := cx + (x-cx)*cosA + dir*sinA*y
	py := dir*sinA*(cx-x) + y*cosA
	return vecmath.Vec3{X: px, Y: py, Z: h + z}
}

// toWorld applies the definition's start heading and position.
func (e *Evaluator) toWorld(p vecmath.Vec3) vecmath.Vec3 {
	sinH, cosH := math32.Sincos(-deg2rad(e.def.Rot))
	return vecmath.Vec3{
		X: e.def.Pos.X + p.X*cosH - p.Y*sinH,
		Y: e.def.Pos.Y + p.X*sinH + p.Y*cosH,
		Z: e.def.Pos.Z + p.Z,
	}
}

func deg2rad(d float32) float32 {
	return d * math32.Pi / 180
}
