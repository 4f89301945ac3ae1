package geo

import (
	"fmt"
	"math"
)

type Box struct {
	TopLeft *Point
	Width   float64
	Height  float64
}

func NewBox(tl *Point, width, height float64) *Box {
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

// BoxFromCorners builds the box spanning two arbitrary corners.
func BoxFromCorners(a, b *Point) *Box {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return NewBox(NewPoint(x0, y0), x1-x0, y1-y0)
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.TopLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

func (b *Box) Right() float64 {
	return b.TopLeft.X + b.Width
}

func (b *Box) Bottom() float64 {
	return b.TopLeft.Y + b.Height
}

func (b *Box) Translate(dx, dy float64) {
	b.TopLeft.Translate(dx, dy)
}

// Contains reports whether o lies fully inside b, edges included.
func (b *Box) Contains(o *Box) bool {
	return o.TopLeft.X >= b.TopLeft.X && o.TopLeft.Y >= b.TopLeft.Y &&
		o.Right() <= b.Right() && o.Bottom() <= b.Bottom()
}

func (b *Box) ContainsPoint(p *Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.Right() && p.Y >= b.TopLeft.Y && p.Y <= b.Bottom()
}

// Intersects reports whether the two boxes overlap, touching edges included.
func (b *Box) Intersects(o *Box) bool {
	return b.TopLeft.X <= o.Right() && o.TopLeft.X <= b.Right() &&
		b.TopLeft.Y <= o.Bottom() && o.TopLeft.Y <= b.Bottom()
}

// Union returns the smallest box containing both. A nil receiver yields a copy of o.
func (b *Box) Union(o *Box) *Box {
	if b == nil {
		return o.Copy()
	}
	if o == nil {
		return b.Copy()
	}
	x0 := math.Min(b.TopLeft.X, o.TopLeft.X)
	y0 := math.Min(b.TopLeft.Y, o.TopLeft.Y)
	x1 := math.Max(b.Right(), o.Right())
	y1 := math.Max(b.Bottom(), o.Bottom())
	return NewBox(NewPoint(x0, y0), x1-x0, y1-y0)
}

// Expand grows the box by the given margins.
func (b *Box) Expand(top, right, bottom, left float64) *Box {
	return NewBox(NewPoint(b.TopLeft.X-left, b.TopLeft.Y-top), b.Width+left+right, b.Height+top+bottom)
}

// Intersections returns where s crosses the border of b.
func (b *Box) Intersections(s Segment) []*Point {
	tl := b.TopLeft
	tr := NewPoint(b.Right(), tl.Y)
	br := NewPoint(b.Right(), b.Bottom())
	bl := NewPoint(tl.X, b.Bottom())

	var pts []*Point
	for _, edge := range [][2]*Point{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}} {
		if p := intersect(s.Start, s.End, edge[0], edge[1]); p != nil {
			pts = append(pts, p)
		}
	}
	return pts
}

func (b *Box) String() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %v, Width: %.0f, Height: %.0f}", b.TopLeft, b.Width, b.Height)
}
