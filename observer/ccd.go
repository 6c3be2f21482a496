package observer

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/spica-project/spica/pipeline"
	"github.com/spica-project/spica/sampling"
	"github.com/spica-project/spica/trace"
)

// A CCD observes an orthographic projection of the scene: every pixel
// collects light over the cosine-weighted hemisphere above its own
// footprint on the sensor plane, with no perspective effects. The
// sensor looks along its local +Z axis.
type CCD struct {
	Observer

	pixelsX int
	pixelsY int
	width   float64

	// Derived by updateGeometry.
	delta  float64
	startX float64
	startY float64
}

// NewCCD creates an orthographic sensor with the given pipelines
// attached. Defaults: 720x480 pixels over a 36 mm wide sensor.
func NewCCD(name string, pipes []pipeline.Pipeline) (*CCD, error) {
	c := &CCD{
		pixelsX: 720,
		pixelsY: 480,
		width:   0.036,
	}
	if err := c.Observer.init(name, c, pipes); err != nil {
		return nil, err
	}
	c.updateGeometry()
	return c, nil
}

// Pixels returns the pixel grid dimensions.
func (c *CCD) Pixels() (x, y int) {
	return c.pixelsX, c.pixelsY
}

// Width returns the physical sensor width in meters.
func (c *CCD) Width() float64 {
	return c.width
}

// PixelPitch returns the physical size of one pixel in meters.
func (c *CCD) PixelPitch() float64 {
	return c.delta
}

// SetPixels resizes the pixel grid. The pixel pitch and every element
// transform are re-derived before this returns.
func (c *CCD) SetPixels(x, y int) error {
	if err := c.guard(); err != nil {
		return err
	}
	if x < 1 || y < 1 {
		return ErrInvalidPixelCount
	}
	c.pixelsX, c.pixelsY = x, y
	c.updateGeometry()
	return nil
}

// SetWidth sets the physical sensor width in meters. The height
// follows from the pixel aspect.
func (c *CCD) SetWidth(w float64) error {
	if err := c.guard(); err != nil {
		return err
	}
	if w <= 0 {
		return ErrInvalidWidth
	}
	c.width = w
	c.updateGeometry()
	return nil
}

func (c *CCD) updateGeometry() {
	c.delta, c.startX, c.startY = ccdGeometry(c.pixelsX, c.pixelsY, c.width)
	c.invalidate()
}

// ccdGeometry derives the pixel pitch and the sensor-frame coordinates
// of the first pixel corner from the grid and physical width.
func ccdGeometry(pixelsX, pixelsY int, width float64) (delta, startX, startY float64) {
	delta = width / float64(pixelsX)
	startX = 0.5 * float64(pixelsX) * delta
	startY = 0.5 * float64(pixelsY) * delta
	return delta, startX, startY
}

func (c *CCD) elements() (w, h int) {
	return c.pixelsX, c.pixelsY
}

func (c *CCD) area() float64 {
	return c.delta * c.delta
}

func (c *CCD) projSolidAngle() float64 {
	// Cosine-weighted hemisphere above the pixel.
	return math.Pi
}

func (c *CCD) generators(subSample bool) (sampling.PointGenerator, sampling.VectorGenerator) {
	if subSample {
		return sampling.Rectangle{Width: c.delta, Height: c.delta}, sampling.HemisphereCosine{}
	}
	return sampling.SinglePoint{}, sampling.HemisphereCosine{}
}

func (c *CCD) mapSample(x, y int, point, dir r3.Vector) trace.Ray {
	// Pixel centre on the sensor plane; the local origin sits at the
	// sensor middle with +X left and +Y up.
	px := c.startX - c.delta*(float64(x)+0.5)
	py := c.startY - c.delta*(float64(y)+0.5)

	return trace.Ray{
		Origin: r3.Vector{X: px + point.X, Y: py + point.Y},
		Dir:    dir,
	}
}
