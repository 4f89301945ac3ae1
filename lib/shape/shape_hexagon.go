package shape

import (
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

type shapeHexagon struct {
	baseShape
}

func NewHexagon(box *geo.Box) Shape {
	return shapeHexagon{
		baseShape: baseShape{
			Kind: Hexagon,
			Box:  box,
		},
	}
}

func hexagonPath(box *geo.Box) *svg.SvgPathContext {
	halfYFactor := 43.6 / 87.3
	pc := svg.NewSVGPathContext(box.TopLeft, box.Width, box.Height)
	pc.StartAt(pc.Absolute(0.25, 0))
	pc.L(false, 0, halfYFactor)
	pc.L(false, 0.25, 1)
	pc.L(false, 0.75, 1)
	pc.L(false, 1, halfYFactor)
	pc.L(false, 0.75, 0)
	pc.Z()
	return pc
}

func (s shapeHexagon) GetInnerBox() *geo.Box {
	return inset(s.Box, 0, s.Box.Width/4, 0, s.Box.Width/4)
}

func (s shapeHexagon) Perimeter() []geo.Intersectable {
	return hexagonPath(s.Box).Path
}

func (s shapeHexagon) GetSVGPathData() []string {
	return []string{hexagonPath(s.Box).PathData()}
}

type shapeDiamond struct {
	baseShape
}

func NewDiamond(box *geo.Box) Shape {
	return shapeDiamond{
		baseShape: baseShape{
			Kind: Diamond,
			Box:  box,
		},
	}
}

func diamondPath(box *geo.Box) *svg.SvgPathContext {
	pc := svg.NewSVGPathContext(box.TopLeft, box.Width, box.Height)
	pc.StartAt(pc.Absolute(0.5, 0))
	pc.L(false, 1, 0.5)
	pc.L(false, 0.5, 1)
	pc.L(false, 0, 0.5)
	pc.Z()
	return pc
}

func (s shapeDiamond) GetInnerBox() *geo.Box {
	return inset(s.Box, s.Box.Height/4, s.Box.Width/4, s.Box.Height/4, s.Box.Width/4)
}

func (s shapeDiamond) Perimeter() []geo.Intersectable {
	return diamondPath(s.Box).Path
}

func (s shapeDiamond) GetSVGPathData() []string {
	return []string{diamondPath(s.Box).PathData()}
}
