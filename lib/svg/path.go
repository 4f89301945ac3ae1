package svg

import (
	"fmt"
	"math"
	"strings"

	"github.com/structview/structview/lib/geo"
)

// curveSamples is how many straight segments approximate a cubic curve
// when the path is used for border intersection.
const curveSamples = 12

type SvgPathContext struct {
	Path     []geo.Intersectable
	Commands []string
	Start    *geo.Point
	Current  *geo.Point
	TopLeft  *geo.Point
	ScaleX   float64
	ScaleY   float64
}

func chopPrecision(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func NewSVGPathContext(tl *geo.Point, sx, sy float64) *SvgPathContext {
	return &SvgPathContext{TopLeft: tl.Copy(), ScaleX: sx, ScaleY: sy}
}

func (c *SvgPathContext) Relative(base *geo.Point, dx, dy float64) *geo.Point {
	return geo.NewPoint(chopPrecision(base.X+c.ScaleX*dx), chopPrecision(base.Y+c.ScaleY*dy))
}
func (c *SvgPathContext) Absolute(x, y float64) *geo.Point {
	return c.Relative(c.TopLeft, x, y)
}

func (c *SvgPathContext) StartAt(p *geo.Point) {
	c.Start = p
	c.Commands = append(c.Commands, fmt.Sprintf("M %v %v", p.X, p.Y))
	c.Current = p.Copy()
}

func (c *SvgPathContext) Z() {
	c.Path = append(c.Path, &geo.Segment{Start: c.Current.Copy(), End: c.Start.Copy()})
	c.Commands = append(c.Commands, "Z")
	c.Current = c.Start.Copy()
}

func (c *SvgPathContext) L(isLowerCase bool, x, y float64) {
	var endPoint *geo.Point
	if isLowerCase {
		endPoint = c.Relative(c.Current, x, y)
	} else {
		endPoint = c.Absolute(x, y)
	}
	c.Path = append(c.Path, &geo.Segment{Start: c.Current.Copy(), End: endPoint})
	c.Commands = append(c.Commands, fmt.Sprintf("L %v %v", endPoint.X, endPoint.Y))
	c.Current = endPoint.Copy()
}

func (c *SvgPathContext) C(isLowerCase bool, x1, y1, x2, y2, x3, y3 float64) {
	p := func(x, y float64) *geo.Point {
		if isLowerCase {
			return c.Relative(c.Current, x, y)
		}
		return c.Absolute(x, y)
	}
	points := []*geo.Point{c.Current.Copy(), p(x1, y1), p(x2, y2), p(x3, y3)}
	prev := points[0]
	for i := 1; i <= curveSamples; i++ {
		next := CubicAt(points, float64(i)/curveSamples)
		c.Path = append(c.Path, &geo.Segment{Start: prev, End: next})
		prev = next
	}
	c.Commands = append(c.Commands, fmt.Sprintf(
		"C %v %v %v %v %v %v",
		points[1].X, points[1].Y,
		points[2].X, points[2].Y,
		points[3].X, points[3].Y,
	))
	c.Current = points[3].Copy()
}

func (c *SvgPathContext) H(isLowerCase bool, x float64) {
	var endPoint *geo.Point
	if isLowerCase {
		endPoint = c.Relative(c.Current, x, 0)
	} else {
		endPoint = c.Absolute(x, 0)
		endPoint.Y = c.Current.Y
	}
	c.Path = append(c.Path, &geo.Segment{Start: c.Current.Copy(), End: endPoint.Copy()})
	c.Commands = append(c.Commands, fmt.Sprintf("H %v", endPoint.X))
	c.Current = endPoint.Copy()
}

func (c *SvgPathContext) V(isLowerCase bool, y float64) {
	var endPoint *geo.Point
	if isLowerCase {
		endPoint = c.Relative(c.Current, 0, y)
	} else {
		endPoint = c.Absolute(0, y)
		endPoint.X = c.Current.X
	}
	c.Path = append(c.Path, &geo.Segment{Start: c.Current.Copy(), End: endPoint})
	c.Commands = append(c.Commands, fmt.Sprintf("V %v", endPoint.Y))
	c.Current = endPoint.Copy()
}

func (c *SvgPathContext) PathData() string {
	return strings.Join(c.Commands, " ")
}

// CubicAt evaluates the cubic bezier with control points cp at t.
func CubicAt(cp []*geo.Point, t float64) *geo.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	cc := 3 * mt * t * t
	d := t * t * t
	return geo.NewPoint(
		chopPrecision(a*cp[0].X+b*cp[1].X+cc*cp[2].X+d*cp[3].X),
		chopPrecision(a*cp[0].Y+b*cp[1].Y+cc*cp[2].Y+d*cp[3].Y),
	)
}

// PolylineData renders points as an open path.
func PolylineData(points []*geo.Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&b, "M %v %v", chopPrecision(p.X), chopPrecision(p.Y))
			continue
		}
		fmt.Fprintf(&b, " L %v %v", chopPrecision(p.X), chopPrecision(p.Y))
	}
	return b.String()
}

// CurveData renders a smooth open path through points. Interior points are
// joined with cubic segments whose tangents follow the neighbouring points.
func CurveData(points []*geo.Point) string {
	if len(points) < 3 {
		return PolylineData(points)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %v %v", chopPrecision(points[0].X), chopPrecision(points[0].Y))
	for i := 0; i < len(points)-1; i++ {
		p0 := points[max(i-1, 0)]
		p1 := points[i]
		p2 := points[i+1]
		p3 := points[min(i+2, len(points)-1)]
		c1 := geo.NewPoint(p1.X+(p2.X-p0.X)/6, p1.Y+(p2.Y-p0.Y)/6)
		c2 := geo.NewPoint(p2.X-(p3.X-p1.X)/6, p2.Y-(p3.Y-p1.Y)/6)
		fmt.Fprintf(&b, " C %v %v %v %v %v %v",
			chopPrecision(c1.X), chopPrecision(c1.Y),
			chopPrecision(c2.X), chopPrecision(c2.Y),
			chopPrecision(p2.X), chopPrecision(p2.Y))
	}
	return b.String()
}
