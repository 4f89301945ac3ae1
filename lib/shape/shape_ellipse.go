package shape

import (
	"math"

	"github.com/structview/structview/lib/geo"
)

type shapeEllipse struct {
	baseShape
}

func NewEllipse(box *geo.Box) Shape {
	return shapeEllipse{
		baseShape: baseShape{
			Kind: Ellipse,
			Box:  box,
		},
	}
}

// ellipseInner is the largest box inscribed in the ellipse with the same aspect ratio.
func ellipseInner(box *geo.Box) *geo.Box {
	dx := box.Width * (1 - 1/math.Sqrt2) / 2
	dy := box.Height * (1 - 1/math.Sqrt2) / 2
	return inset(box, dy, dx, dy, dx)
}

func (s shapeEllipse) GetInnerBox() *geo.Box {
	return ellipseInner(s.Box)
}

func (s shapeEllipse) Perimeter() []geo.Intersectable {
	return []geo.Intersectable{geo.NewEllipse(s.Box.Center(), s.Box.Width/2, s.Box.Height/2)}
}

func (s shapeEllipse) GetSVGPathData() []string {
	return []string{ellipsePath(s.Box).PathData()}
}

type shapeCircle struct {
	baseShape
}

// NewCircle draws a circle of the box's smaller dimension, centred in the box.
func NewCircle(box *geo.Box) Shape {
	return shapeCircle{
		baseShape: baseShape{
			Kind: Circle,
			Box:  box,
		},
	}
}

func (s shapeCircle) circleBox() *geo.Box {
	d := math.Min(s.Box.Width, s.Box.Height)
	c := s.Box.Center()
	return geo.NewBox(geo.NewPoint(c.X-d/2, c.Y-d/2), d, d)
}

func (s shapeCircle) GetInnerBox() *geo.Box {
	return ellipseInner(s.circleBox())
}

func (s shapeCircle) Perimeter() []geo.Intersectable {
	b := s.circleBox()
	return []geo.Intersectable{geo.NewEllipse(b.Center(), b.Width/2, b.Height/2)}
}

func (s shapeCircle) GetSVGPathData() []string {
	return []string{ellipsePath(s.circleBox()).PathData()}
}
