package observer

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/trace"
)

// A Transform places an observer in the scene frame: an orthonormal
// rotation basis plus a translation. Directions rotate, points rotate
// and translate.
type Transform struct {
	bx, by, bz r3.Vector
	origin     r3.Vector
}

// Identity returns the identity placement.
func Identity() Transform {
	return Transform{
		bx: r3.Vector{X: 1},
		by: r3.Vector{Y: 1},
		bz: r3.Vector{Z: 1},
	}
}

// Translate returns a pure translation.
func Translate(x, y, z float64) Transform {
	t := Identity()
	t.origin = r3.Vector{X: x, Y: y, Z: z}
	return t
}

// Rotate returns a rotation built from yaw (about Y), pitch (about X)
// and roll (about Z), applied in that order. Angles are in degrees.
func Rotate(yaw, pitch, roll float64) Transform {
	sy, cy := math.Sincos(yaw * math.Pi / 180)
	sp, cp := math.Sincos(pitch * math.Pi / 180)
	sr, cr := math.Sincos(roll * math.Pi / 180)

	ry := Transform{
		bx: r3.Vector{X: cy, Z: -sy},
		by: r3.Vector{Y: 1},
		bz: r3.Vector{X: sy, Z: cy},
	}
	rx := Transform{
		bx: r3.Vector{X: 1},
		by: r3.Vector{Y: cp, Z: sp},
		bz: r3.Vector{Y: -sp, Z: cp},
	}
	rz := Transform{
		bx: r3.Vector{X: cr, Y: sr},
		by: r3.Vector{X: -sr, Y: cr},
		bz: r3.Vector{Z: 1},
	}
	return ry.Mul(rx).Mul(rz)
}

// Mul composes two transforms: the result applies b first, then a.
func (a Transform) Mul(b Transform) Transform {
	return Transform{
		bx:     a.Direction(b.bx),
		by:     a.Direction(b.by),
		bz:     a.Direction(b.bz),
		origin: a.Point(b.origin),
	}
}

// Point maps a local point into the parent frame.
func (t Transform) Point(p r3.Vector) r3.Vector {
	return t.bx.Mul(p.X).Add(t.by.Mul(p.Y)).Add(t.bz.Mul(p.Z)).Add(t.origin)
}

// Direction maps a local direction into the parent frame.
func (t Transform) Direction(d r3.Vector) r3.Vector {
	return t.bx.Mul(d.X).Add(t.by.Mul(d.Y)).Add(t.bz.Mul(d.Z))
}

// Ray maps a local ray into the parent frame.
func (t Transform) Ray(r trace.Ray) trace.Ray {
	return trace.Ray{
		Origin: t.Point(r.Origin),
		Dir:    t.Direction(r.Dir),
	}
}
