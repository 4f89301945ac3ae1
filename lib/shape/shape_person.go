package shape

import (
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

type shapePerson struct {
	baseShape
}

// the head takes up the top part of the box; the body the rest
const personHeadFactor = 0.4

func NewPerson(box *geo.Box) Shape {
	return shapePerson{
		baseShape: baseShape{
			Kind: Person,
			Box:  box,
		},
	}
}

func personHeadBox(box *geo.Box) *geo.Box {
	d := math.Min(box.Height*personHeadFactor, box.Width/2)
	return geo.NewBox(geo.NewPoint(box.Center().X-d/2, box.TopLeft.Y), d, d)
}

func personBodyBox(box *geo.Box) *geo.Box {
	head := personHeadBox(box)
	top := head.Height * 0.9
	return geo.NewBox(geo.NewPoint(box.TopLeft.X, box.TopLeft.Y+top), box.Width, box.Height-top)
}

func personBodyPath(box *geo.Box) *svg.SvgPathContext {
	return roundedBoxPath(personBodyBox(box), personBodyBox(box).Height/3)
}

func (s shapePerson) GetInnerBox() *geo.Box {
	body := personBodyBox(s.Box)
	r := body.Height / 3
	return inset(body, r/2, r/2, r/2, r/2)
}

func (s shapePerson) Perimeter() []geo.Intersectable {
	head := personHeadBox(s.Box)
	return append(personBodyPath(s.Box).Path, geo.NewEllipse(head.Center(), head.Width/2, head.Height/2))
}

func (s shapePerson) GetSVGPathData() []string {
	return []string{
		personBodyPath(s.Box).PathData(),
		ellipsePath(personHeadBox(s.Box)).PathData(),
	}
}

type shapeRobot struct {
	baseShape
}

func NewRobot(box *geo.Box) Shape {
	return shapeRobot{
		baseShape: baseShape{
			Kind: Robot,
			Box:  box,
		},
	}
}

func robotHeadBox(box *geo.Box) *geo.Box {
	d := math.Min(box.Height*personHeadFactor, box.Width/2)
	return geo.NewBox(geo.NewPoint(box.Center().X-d/2, box.TopLeft.Y), d, d*0.9)
}

func (s shapeRobot) GetInnerBox() *geo.Box {
	body := personBodyBox(s.Box)
	return inset(body, 10, 10, 10, 10)
}

func (s shapeRobot) Perimeter() []geo.Intersectable {
	return append(roundedBoxPath(personBodyBox(s.Box), 20).Path, boxPath(robotHeadBox(s.Box)).Path...)
}

func (s shapeRobot) GetSVGPathData() []string {
	return []string{
		roundedBoxPath(personBodyBox(s.Box), 20).PathData(),
		roundedBoxPath(robotHeadBox(s.Box), 10).PathData(),
	}
}
