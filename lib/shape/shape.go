package shape

import (
	"fmt"
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

// Kind enumerates the element shapes a style may request.
type Kind int

const (
	Box Kind = iota
	RoundedBox
	Cylinder
	Bucket
	Person
	Robot
	Ellipse
	Circle
	Hexagon
	Diamond
	Pipe
	Folder
	Component
	WebBrowser
	Window
	Terminal
	Shell
	MobileDevicePortrait
	MobileDeviceLandscape
)

var kindNames = [...]string{
	Box:                   "Box",
	RoundedBox:            "RoundedBox",
	Cylinder:              "Cylinder",
	Bucket:                "Bucket",
	Person:                "Person",
	Robot:                 "Robot",
	Ellipse:               "Ellipse",
	Circle:                "Circle",
	Hexagon:               "Hexagon",
	Diamond:               "Diamond",
	Pipe:                  "Pipe",
	Folder:                "Folder",
	Component:             "Component",
	WebBrowser:            "WebBrowser",
	Window:                "Window",
	Terminal:              "Terminal",
	Shell:                 "Shell",
	MobileDevicePortrait:  "MobileDevicePortrait",
	MobileDeviceLandscape: "MobileDeviceLandscape",
}

// Kinds lists every Kind in declaration order.
var Kinds = func() []Kind {
	ks := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		ks = append(ks, Kind(k))
	}
	return ks
}()

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a style shape name to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return Box, false
}

const (
	defaultArcDepth = 24.
	// kappa places cubic control points to approximate a quarter ellipse.
	kappa = 0.5522847498
)

type Shape interface {
	GetKind() Kind

	IsRectangular() bool

	GetBox() *geo.Box
	// GetInnerBox is the area available for the icon and text stack.
	GetInnerBox() *geo.Box

	// Perimeter returns a slice of geo.Intersectables that together constitute the shape border
	Perimeter() []geo.Intersectable

	// GetSVGPathData returns the outline first, then any decoration paths.
	GetSVGPathData() []string
}

type baseShape struct {
	Kind Kind
	Box  *geo.Box
}

func (s baseShape) GetKind() Kind {
	return s.Kind
}

func (s baseShape) IsRectangular() bool {
	return false
}

func (s baseShape) GetBox() *geo.Box {
	return s.Box
}

func (s baseShape) GetInnerBox() *geo.Box {
	return s.Box
}

func (s baseShape) Perimeter() []geo.Intersectable {
	return boxPath(s.Box).Path
}

func (s baseShape) GetSVGPathData() []string {
	return []string{boxPath(s.Box).PathData()}
}

var constructors = map[Kind]func(*geo.Box) Shape{
	Box:                   NewBox,
	RoundedBox:            NewRoundedBox,
	Cylinder:              NewCylinder,
	Bucket:                NewBucket,
	Person:                NewPerson,
	Robot:                 NewRobot,
	Ellipse:               NewEllipse,
	Circle:                NewCircle,
	Hexagon:               NewHexagon,
	Diamond:               NewDiamond,
	Pipe:                  NewPipe,
	Folder:                NewFolder,
	Component:             NewComponent,
	WebBrowser:            NewWebBrowser,
	Window:                NewWindow,
	Terminal:              NewTerminal,
	Shell:                 NewShell,
	MobileDevicePortrait:  NewMobileDevicePortrait,
	MobileDeviceLandscape: NewMobileDeviceLandscape,
}

// HasOutline reports whether k has a registered outline.
func HasOutline(k Kind) bool {
	_, ok := constructors[k]
	return ok
}

func NewShape(k Kind, box *geo.Box) Shape {
	if c, ok := constructors[k]; ok {
		return c(box)
	}
	return NewBox(box)
}

// TraceToShapeBorder takes the point on the rectangular border
// r here is the point on rectangular border
// p is the prev point (used to calculate slope)
// s is the point on the actual shape border that'll be returned
//
// .      p
// .      │
// .      ▼
// . ┌────r─────────────────────────┐
// . │    │                         │
// . │    ▼  xxxxx       xxxx       │
// . │    sxxx               xx     │
// . │   x                    xx    │
// . │   xxxx             xxxx      │
// . └──────xxxxxxxxxxxxxx──────────┘
func TraceToShapeBorder(shape Shape, rectBorderPoint, prevPoint *geo.Point) *geo.Point {
	if shape.IsRectangular() {
		return rectBorderPoint
	}

	// Extend the line all the way through to the other end of the shape to get the intersections
	scaleSize := shape.GetBox().Width
	if prevPoint.X == rectBorderPoint.X {
		scaleSize = shape.GetBox().Height
	}
	if prevPoint.Equals(rectBorderPoint) {
		return rectBorderPoint
	}
	extendedSegment := geo.Segment{Start: prevPoint, End: prevPoint.Extend(rectBorderPoint, scaleSize)}

	closestD := math.Inf(1)
	closestPoint := rectBorderPoint

	for _, perimeterSegment := range shape.Perimeter() {
		for _, intersectingPoint := range perimeterSegment.Intersections(extendedSegment) {
			d := prevPoint.Distance(intersectingPoint)
			if d < closestD {
				closestD = d
				closestPoint = intersectingPoint
			}
		}
	}

	return geo.NewPoint(math.Round(closestPoint.X), math.Round(closestPoint.Y))
}

// ClipToBorder returns where the segment from the box centre towards p leaves the shape.
func ClipToBorder(s Shape, toward *geo.Point) *geo.Point {
	center := s.GetBox().Center()
	rectHits := s.GetBox().Intersections(geo.Segment{Start: center, End: toward})
	if len(rectHits) == 0 {
		return center
	}
	return TraceToShapeBorder(s, rectHits[0], toward)
}

func boxPath(box *geo.Box) *svg.SvgPathContext {
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(0, 0))
	pc.L(false, box.Width, 0)
	pc.L(false, box.Width, box.Height)
	pc.L(false, 0, box.Height)
	pc.Z()
	return pc
}

func roundedBoxPath(box *geo.Box, r float64) *svg.SvgPathContext {
	r = math.Min(r, math.Min(box.Width, box.Height)/2)
	k := r * (1 - kappa)
	w, h := box.Width, box.Height
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(r, 0))
	pc.H(false, w-r)
	pc.C(false, w-k, 0, w, k, w, r)
	pc.V(false, h-r)
	pc.C(false, w, h-k, w-k, h, w-r, h)
	pc.H(false, r)
	pc.C(false, k, h, 0, h-k, 0, h-r)
	pc.V(false, r)
	pc.C(false, 0, k, k, 0, r, 0)
	pc.Z()
	return pc
}

func ellipsePath(box *geo.Box) *svg.SvgPathContext {
	w, h := box.Width, box.Height
	ox, oy := w/2*kappa, h/2*kappa
	pc := svg.NewSVGPathContext(box.TopLeft, 1, 1)
	pc.StartAt(pc.Absolute(0, h/2))
	pc.C(false, 0, h/2-oy, w/2-ox, 0, w/2, 0)
	pc.C(false, w/2+ox, 0, w, h/2-oy, w, h/2)
	pc.C(false, w, h/2+oy, w/2+ox, h, w/2, h)
	pc.C(false, w/2-ox, h, 0, h/2+oy, 0, h/2)
	pc.Z()
	return pc
}

func inset(box *geo.Box, top, right, bottom, left float64) *geo.Box {
	return geo.NewBox(
		geo.NewPoint(box.TopLeft.X+left, box.TopLeft.Y+top),
		math.Max(0, box.Width-left-right),
		math.Max(0, box.Height-top-bottom),
	)
}
