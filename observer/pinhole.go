package observer

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/pipeline"
	"github.com/spica-project/spica/sampling"
	"github.com/spica-project/spica/trace"
)

// A Pinhole observes a perspective projection: all rays originate at
// the aperture and pass through a virtual image plane one unit along
// the local +Z axis. Radiance pipelines attached to a pinhole report
// the per-pixel mean of the traced radiance directly, since a pinhole
// has no physical collecting throughput.
type Pinhole struct {
	Observer

	pixelsX int
	pixelsY int
	fov     float64 // horizontal field of view, degrees

	// Derived by updateGeometry: image plane extents at z=1.
	planeW float64
	planeH float64
	delta  float64
}

// NewPinhole creates a perspective camera with the given pipelines
// attached. Defaults: 720x480 pixels, 45 degree horizontal field of
// view.
func NewPinhole(name string, pipes []pipeline.Pipeline) (*Pinhole, error) {
	p := &Pinhole{
		pixelsX: 720,
		pixelsY: 480,
		fov:     45,
	}
	if err := p.Observer.init(name, p, pipes); err != nil {
		return nil, err
	}
	p.updateGeometry()
	return p, nil
}

// Pixels returns the pixel grid dimensions.
func (p *Pinhole) Pixels() (x, y int) {
	return p.pixelsX, p.pixelsY
}

// Fov returns the horizontal field of view in degrees.
func (p *Pinhole) Fov() float64 {
	return p.fov
}

// SetPixels resizes the pixel grid and re-derives the image plane.
func (p *Pinhole) SetPixels(x, y int) error {
	if err := p.guard(); err != nil {
		return err
	}
	if x < 1 || y < 1 {
		return ErrInvalidPixelCount
	}
	p.pixelsX, p.pixelsY = x, y
	p.updateGeometry()
	return nil
}

// SetFov sets the horizontal field of view in degrees.
func (p *Pinhole) SetFov(fov float64) error {
	if err := p.guard(); err != nil {
		return err
	}
	if fov <= 0 || fov >= 180 {
		return ErrInvalidFov
	}
	p.fov = fov
	p.updateGeometry()
	return nil
}

func (p *Pinhole) updateGeometry() {
	p.planeW, p.planeH, p.delta = pinholeGeometry(p.pixelsX, p.pixelsY, p.fov)
	p.invalidate()
}

// pinholeGeometry derives the image plane extents at unit focal
// distance from the pixel grid and field of view.
func pinholeGeometry(pixelsX, pixelsY int, fov float64) (planeW, planeH, delta float64) {
	planeW = 2 * math.Tan(0.5*fov*math.Pi/180)
	delta = planeW / float64(pixelsX)
	planeH = delta * float64(pixelsY)
	return planeW, planeH, delta
}

func (p *Pinhole) elements() (w, h int) {
	return p.pixelsX, p.pixelsY
}

func (p *Pinhole) area() float64 {
	// Pixel footprint on the virtual image plane.
	return p.delta * p.delta
}

func (p *Pinhole) projSolidAngle() float64 {
	// The unprojection weight is 1; traced radiance passes through
	// unnormalized.
	return 1
}

func (p *Pinhole) generators(subSample bool) (sampling.PointGenerator, sampling.VectorGenerator) {
	points := sampling.PointGenerator(sampling.SinglePoint{})
	if subSample {
		points = sampling.Rectangle{Width: p.delta, Height: p.delta}
	}
	// Direction is derived from the image-plane point in mapSample.
	return points, sampling.Fixed{Dir: r3.Vector{Z: 1}}
}

func (p *Pinhole) mapSample(x, y int, point, dir r3.Vector) trace.Ray {
	// Jittered position on the image plane, then unproject through the
	// aperture at the local origin.
	cx := -0.5*p.planeW + p.delta*(float64(x)+0.5) + point.X
	cy := 0.5*p.planeH - p.delta*(float64(y)+0.5) + point.Y

	return trace.Ray{
		Dir: r3.Vector{X: cx, Y: cy, Z: 1}.Normalize(),
	}
}
