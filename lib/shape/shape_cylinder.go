package shape

import (
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

type shapeCylinder struct {
	baseShape
}

func NewCylinder(box *geo.Box) Shape {
	return shapeCylinder{
		baseShape: baseShape{
			Kind: Cylinder,
			Box:  box,
		},
	}
}

func getArcHeight(box *geo.Box) float64 {
	return math.Min(defaultArcDepth, box.Height/4)
}

func cylinderOuterPath(box *geo.Box) *svg.SvgPathContext {
	arcHeight := getArcHeight(box)
	multiplier := 0.45
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(0, arcHeight))
	pc.C(false, 0, 0, box.Width*multiplier, 0, box.Width/2, 0)
	pc.C(false, box.Width-box.Width*multiplier, 0, box.Width, 0, box.Width, arcHeight)
	pc.V(false, box.Height-arcHeight)
	pc.C(false, box.Width, box.Height, box.Width-box.Width*multiplier, box.Height, box.Width/2, box.Height)
	pc.C(false, box.Width*multiplier, box.Height, 0, box.Height, 0, box.Height-arcHeight)
	pc.V(false, arcHeight)
	pc.Z()
	return pc
}

// the lower half of the top ellipse
func cylinderInnerPath(box *geo.Box) *svg.SvgPathContext {
	arcHeight := getArcHeight(box)
	multiplier := 0.45
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(0, arcHeight))
	pc.C(false, 0, arcHeight*2, box.Width*multiplier, arcHeight*2, box.Width/2, arcHeight*2)
	pc.C(false, box.Width-box.Width*multiplier, arcHeight*2, box.Width, arcHeight*2, box.Width, arcHeight)
	return pc
}

func (s shapeCylinder) GetInnerBox() *geo.Box {
	arcHeight := getArcHeight(s.Box)
	return inset(s.Box, arcHeight*2, 0, arcHeight, 0)
}

func (s shapeCylinder) Perimeter() []geo.Intersectable {
	return cylinderOuterPath(s.Box).Path
}

func (s shapeCylinder) GetSVGPathData() []string {
	return []string{
		cylinderOuterPath(s.Box).PathData(),
		cylinderInnerPath(s.Box).PathData(),
	}
}

// Buckets are cylinders that narrow towards the base.
type shapeBucket struct {
	baseShape
}

func NewBucket(box *geo.Box) Shape {
	return shapeBucket{
		baseShape: baseShape{
			Kind: Bucket,
			Box:  box,
		},
	}
}

func bucketTaper(box *geo.Box) float64 {
	return box.Width / 10
}

func bucketOuterPath(box *geo.Box) *svg.SvgPathContext {
	arcHeight := getArcHeight(box)
	t := bucketTaper(box)
	multiplier := 0.45
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(0, arcHeight))
	pc.C(false, 0, 0, box.Width*multiplier, 0, box.Width/2, 0)
	pc.C(false, box.Width-box.Width*multiplier, 0, box.Width, 0, box.Width, arcHeight)
	pc.L(false, box.Width-t, box.Height-arcHeight)
	pc.C(false, box.Width-t, box.Height, box.Width/2+t, box.Height, box.Width/2, box.Height)
	pc.C(false, box.Width/2-t, box.Height, t, box.Height, t, box.Height-arcHeight)
	pc.L(false, 0, arcHeight)
	pc.Z()
	return pc
}

func (s shapeBucket) GetInnerBox() *geo.Box {
	arcHeight := getArcHeight(s.Box)
	t := bucketTaper(s.Box)
	return inset(s.Box, arcHeight*2, t, arcHeight, t)
}

func (s shapeBucket) Perimeter() []geo.Intersectable {
	return bucketOuterPath(s.Box).Path
}

func (s shapeBucket) GetSVGPathData() []string {
	return []string{
		bucketOuterPath(s.Box).PathData(),
		cylinderInnerPath(s.Box).PathData(),
	}
}
