package shape

import (
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
)

// Frames are rounded boxes with a toolbar band across the top.
type shapeFrame struct {
	baseShape
	bar float64
}

const (
	frameRadius    = 15.
	frameBarHeight = 40.
)

func newFrame(k Kind, box *geo.Box) shapeFrame {
	return shapeFrame{
		baseShape: baseShape{
			Kind: k,
			Box:  box,
		},
		bar: math.Min(frameBarHeight, box.Height/4),
	}
}

func NewWebBrowser(box *geo.Box) Shape {
	return newFrame(WebBrowser, box)
}

func NewWindow(box *geo.Box) Shape {
	return newFrame(Window, box)
}

func NewTerminal(box *geo.Box) Shape {
	return newFrame(Terminal, box)
}

func NewShell(box *geo.Box) Shape {
	return newFrame(Shell, box)
}

func (s shapeFrame) GetInnerBox() *geo.Box {
	return inset(s.Box, s.bar, 0, 0, 0)
}

func (s shapeFrame) Perimeter() []geo.Intersectable {
	return roundedBoxPath(s.Box, frameRadius).Path
}

func (s shapeFrame) GetSVGPathData() []string {
	paths := []string{roundedBoxPath(s.Box, frameRadius).PathData()}

	bar := svg.NewSVGPathContext(s.Box.TopLeft, 1, 1)
	bar.StartAt(bar.Absolute(0, s.bar))
	bar.H(false, s.Box.Width)
	paths = append(paths, bar.PathData())

	switch s.Kind {
	case WebBrowser:
		// address bar
		addr := geo.NewBox(geo.NewPoint(s.Box.TopLeft.X+s.bar*2, s.Box.TopLeft.Y+s.bar/4), math.Max(0, s.Box.Width-s.bar*3), s.bar/2)
		paths = append(paths, roundedBoxPath(addr, s.bar/4).PathData())
		fallthrough
	case Window:
		r := s.bar / 5
		for i := 0; i < 3; i++ {
			cx := s.Box.TopLeft.X + s.bar/2 + float64(i)*r*2.5
			dot := geo.NewBox(geo.NewPoint(cx-r/2, s.Box.TopLeft.Y+s.bar/2-r/2), r, r)
			paths = append(paths, ellipsePath(dot).PathData())
		}
	case Terminal, Shell:
		// prompt
		p := svg.NewSVGPathContext(s.Box.TopLeft, 1, 1)
		x, y := s.bar/2, s.bar*1.5
		p.StartAt(p.Absolute(x, y))
		p.L(false, x+s.bar/4, y+s.bar/4)
		p.L(false, x, y+s.bar/2)
		paths = append(paths, p.PathData())
		if s.Kind == Shell {
			u := svg.NewSVGPathContext(s.Box.TopLeft, 1, 1)
			u.StartAt(u.Absolute(x+s.bar/2, y+s.bar/2))
			u.H(false, x+s.bar)
			paths = append(paths, u.PathData())
		}
	}
	return paths
}

// Mobile devices have a speaker band at one end and a button band at the other.
type shapeMobile struct {
	baseShape
}

const mobileBand = 0.1

func NewMobileDevicePortrait(box *geo.Box) Shape {
	return shapeMobile{baseShape{Kind: MobileDevicePortrait, Box: box}}
}

func NewMobileDeviceLandscape(box *geo.Box) Shape {
	return shapeMobile{baseShape{Kind: MobileDeviceLandscape, Box: box}}
}

func (s shapeMobile) band() float64 {
	if s.Kind == MobileDeviceLandscape {
		return s.Box.Width * mobileBand
	}
	return s.Box.Height * mobileBand
}

func (s shapeMobile) GetInnerBox() *geo.Box {
	b := s.band()
	if s.Kind == MobileDeviceLandscape {
		return inset(s.Box, 0, b, 0, b)
	}
	return inset(s.Box, b, 0, b, 0)
}

func (s shapeMobile) Perimeter() []geo.Intersectable {
	return roundedBoxPath(s.Box, frameRadius).Path
}

func (s shapeMobile) GetSVGPathData() []string {
	paths := []string{roundedBoxPath(s.Box, frameRadius).PathData()}
	screen := s.GetInnerBox()
	paths = append(paths, boxPath(screen).PathData())
	b := s.band()
	var button *geo.Box
	if s.Kind == MobileDeviceLandscape {
		button = geo.NewBox(geo.NewPoint(screen.Right()+b/4, s.Box.Center().Y-b/4), b/2, b/2)
	} else {
		button = geo.NewBox(geo.NewPoint(s.Box.Center().X-b/4, screen.Bottom()+b/4), b/2, b/2)
	}
	return append(paths, ellipsePath(button).PathData())
}
