package shape

import (
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

type shapeFolder struct {
	baseShape
}

const (
	folderTabWidthFactor = 0.4
	folderTabMaxHeight   = 30.
)

func NewFolder(box *geo.Box) Shape {
	return shapeFolder{
		baseShape: baseShape{
			Kind: Folder,
			Box:  box,
		},
	}
}

func folderTabHeight(box *geo.Box) float64 {
	return math.Min(folderTabMaxHeight, box.Height/5)
}

func folderPath(box *geo.Box) *svg.SvgPathContext {
	tabW := box.Width * folderTabWidthFactor
	tabH := folderTabHeight(box)
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(0, 0))
	pc.L(false, tabW-tabH/2, 0)
	pc.L(false, tabW, tabH)
	pc.L(false, box.Width, tabH)
	pc.L(false, box.Width, box.Height)
	pc.L(false, 0, box.Height)
	pc.Z()
	return pc
}

func (s shapeFolder) GetInnerBox() *geo.Box {
	return inset(s.Box, folderTabHeight(s.Box), 0, 0, 0)
}

func (s shapeFolder) Perimeter() []geo.Intersectable {
	return folderPath(s.Box).Path
}

func (s shapeFolder) GetSVGPathData() []string {
	return []string{folderPath(s.Box).PathData()}
}

type shapeComponent struct {
	baseShape
}

const (
	componentTabWidth  = 40.
	componentTabHeight = 20.
)

func NewComponent(box *geo.Box) Shape {
	return shapeComponent{
		baseShape: baseShape{
			Kind: Component,
			Box:  box,
		},
	}
}

// componentTabs are the two small boxes straddling the left edge.
func componentTabs(box *geo.Box) []*svg.SvgPathContext {
	tabs := make([]*svg.SvgPathContext, 0, 2)
	for _, y := range []float64{box.Height / 4, box.Height*3/4 - componentTabHeight} {
		tab := geo.NewBox(geo.NewPoint(box.TopLeft.X-componentTabWidth/2, box.TopLeft.Y+y), componentTabWidth, componentTabHeight)
		tabs = append(tabs, boxPath(tab))
	}
	return tabs
}

func (s shapeComponent) IsRectangular() bool {
	return true
}

func (s shapeComponent) GetInnerBox() *geo.Box {
	return inset(s.Box, 0, 0, 0, componentTabWidth/2)
}

func (s shapeComponent) GetSVGPathData() []string {
	paths := []string{boxPath(s.Box).PathData()}
	for _, tab := range componentTabs(s.Box) {
		paths = append(paths, tab.PathData())
	}
	return paths
}
