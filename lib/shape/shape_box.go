package shape

import (
	"github.com/structview/structview/lib/geo"
)

type shapeBox struct {
	baseShape
}

func NewBox(box *geo.Box) Shape {
	return shapeBox{
		baseShape: baseShape{
			Kind: Box,
			Box:  box,
		},
	}
}

func (s shapeBox) IsRectangular() bool {
	return true
}

type shapeRoundedBox struct {
	baseShape
}

const roundedBoxRadius = 20.

func NewRoundedBox(box *geo.Box) Shape {
	return shapeRoundedBox{
		baseShape: baseShape{
			Kind: RoundedBox,
			Box:  box,
		},
	}
}

func (s shapeRoundedBox) Perimeter() []geo.Intersectable {
	return roundedBoxPath(s.Box, roundedBoxRadius).Path
}

func (s shapeRoundedBox) GetSVGPathData() []string {
	return []string{roundedBoxPath(s.Box, roundedBoxRadius).PathData()}
}
