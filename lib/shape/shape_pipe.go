package shape

import (
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

// Pipes are cylinders lying on their side.
type shapePipe struct {
	baseShape
}

func NewPipe(box *geo.Box) Shape {
	return shapePipe{
		baseShape: baseShape{
			Kind: Pipe,
			Box:  box,
		},
	}
}

func getArcWidth(box *geo.Box) float64 {
	return math.Min(defaultArcDepth, box.Width/4)
}

func pipeOuterPath(box *geo.Box) *svg.SvgPathContext {
	arcWidth := getArcWidth(box)
	multiplier := 0.45
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(arcWidth, 0))
	pc.H(false, box.Width-arcWidth)
	pc.C(false, box.Width, 0, box.Width, box.Height*multiplier, box.Width, box.Height/2)
	pc.C(false, box.Width, box.Height-box.Height*multiplier, box.Width, box.Height, box.Width-arcWidth, box.Height)
	pc.H(false, arcWidth)
	pc.C(false, 0, box.Height, 0, box.Height-box.Height*multiplier, 0, box.Height/2)
	pc.C(false, 0, box.Height*multiplier, 0, 0, arcWidth, 0)
	pc.Z()
	return pc
}

// the left half of the right ellipse
func pipeInnerPath(box *geo.Box) *svg.SvgPathContext {
	arcWidth := getArcWidth(box)
	multiplier := 0.45
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(box.Width-arcWidth, 0))
	pc.C(false, box.Width-arcWidth*2, 0, box.Width-arcWidth*2, box.Height*multiplier, box.Width-arcWidth*2, box.Height/2)
	pc.C(false, box.Width-arcWidth*2, box.Height-box.Height*multiplier, box.Width-arcWidth*2, box.Height, box.Width-arcWidth, box.Height)
	return pc
}

func (s shapePipe) GetInnerBox() *geo.Box {
	arcWidth := getArcWidth(s.Box)
	return inset(s.Box, 0, arcWidth*2, 0, arcWidth)
}

func (s shapePipe) Perimeter() []geo.Intersectable {
	return pipeOuterPath(s.Box).Path
}

func (s shapePipe) GetSVGPathData() []string {
	return []string{
		pipeOuterPath(s.Box).PathData(),
		pipeInnerPath(s.Box).PathData(),
	}
}
