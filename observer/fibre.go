package observer

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/pipeline"
	"github.com/spica-project/spica/sampling"
	"github.com/spica-project/spica/trace"
)

// A Fibre is a non-imaging fibre-optic probe: a single sensing element
// whose circular face collects light over a uniform cone of directions
// around the local +Z axis. Its etendue converts collected power to a
// calibrated flux.
type Fibre struct {
	Observer

	radius     float64 // face radius, m
	acceptance float64 // cone half angle, degrees

	// Derived by updateGeometry.
	halfAngle float64 // radians
	faceArea  float64
	projOmega float64
}

// NewFibre creates a fibre-optic probe with the given pipelines
// attached. Defaults: 0.5 mm face radius, 10 degree acceptance angle.
func NewFibre(name string, pipes []pipeline.Pipeline) (*Fibre, error) {
	f := &Fibre{
		radius:     0.0005,
		acceptance: 10,
	}
	if err := f.Observer.init(name, f, pipes); err != nil {
		return nil, err
	}
	f.updateGeometry()
	return f, nil
}

// Radius returns the fibre face radius in meters.
func (f *Fibre) Radius() float64 {
	return f.radius
}

// AcceptanceAngle returns the cone half angle in degrees.
func (f *Fibre) AcceptanceAngle() float64 {
	return f.acceptance
}

// SetRadius sets the fibre face radius in meters.
func (f *Fibre) SetRadius(r float64) error {
	if err := f.guard(); err != nil {
		return err
	}
	if r <= 0 {
		return ErrInvalidRadius
	}
	f.radius = r
	f.updateGeometry()
	return nil
}

// SetAcceptanceAngle sets the cone half angle in degrees.
func (f *Fibre) SetAcceptanceAngle(degrees float64) error {
	if err := f.guard(); err != nil {
		return err
	}
	if degrees <= 0 || degrees > 90 {
		return ErrInvalidAcceptance
	}
	f.acceptance = degrees
	f.updateGeometry()
	return nil
}

func (f *Fibre) updateGeometry() {
	f.halfAngle, f.faceArea, f.projOmega = fibreGeometry(f.radius, f.acceptance)
	f.invalidate()
}

// fibreGeometry derives the acceptance cone half angle in radians, the
// face area and the projected solid angle pi*sin^2(theta).
func fibreGeometry(radius, acceptanceDeg float64) (halfAngle, faceArea, projOmega float64) {
	halfAngle = acceptanceDeg * math.Pi / 180
	faceArea = math.Pi * radius * radius
	sin := math.Sin(halfAngle)
	projOmega = math.Pi * sin * sin
	return halfAngle, faceArea, projOmega
}

func (f *Fibre) elements() (w, h int) {
	return 1, 1
}

func (f *Fibre) area() float64 {
	return f.faceArea
}

func (f *Fibre) projSolidAngle() float64 {
	return f.projOmega
}

func (f *Fibre) generators(subSample bool) (sampling.PointGenerator, sampling.VectorGenerator) {
	points := sampling.PointGenerator(sampling.SinglePoint{})
	if subSample {
		points = sampling.Disk{Radius: f.radius}
	}
	return points, sampling.ConeUniform{HalfAngle: f.halfAngle}
}

func (f *Fibre) mapSample(x, y int, point, dir r3.Vector) trace.Ray {
	return trace.Ray{Origin: point, Dir: dir}
}
