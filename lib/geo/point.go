package geo

import (
	"fmt"
	"math"
	"strings"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

// Equals compares exactly. Two nil points are equal.
func (p *Point) Equals(o *Point) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.X == o.X && p.Y == o.Y
}

func (p *Point) Copy() *Point {
	return &Point{X: p.X, Y: p.Y}
}

// Translate moves p in place.
func (p *Point) Translate(dx, dy float64) {
	p.X += dx
	p.Y += dy
}

func (p *Point) Distance(o *Point) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Lerp returns the point t of the way from p to o.
func (p *Point) Lerp(o *Point, t float64) *Point {
	return NewPoint(p.X+(o.X-p.X)*t, p.Y+(o.Y-p.Y)*t)
}

// Extend returns the point by units past toward on the ray from p through
// toward. It returns toward when both are the same point.
func (p *Point) Extend(toward *Point, by float64) *Point {
	l := p.Distance(toward)
	if l == 0 {
		return toward.Copy()
	}
	return p.Lerp(toward, (l+by)/l)
}

func (p *Point) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

// Points is a polyline such as a route or a set of user vertices.
type Points []*Point

// Copy deep copies ps, keeping nil as nil.
func (ps Points) Copy() Points {
	if ps == nil {
		return nil
	}
	out := make(Points, len(ps))
	for i, p := range ps {
		out[i] = p.Copy()
	}
	return out
}

func (ps Points) Equals(o Points) bool {
	if len(ps) != len(o) {
		return false
	}
	for i, p := range ps {
		if !p.Equals(o[i]) {
			return false
		}
	}
	return true
}

func (ps Points) String() string {
	strs := make([]string, len(ps))
	for i, p := range ps {
		strs[i] = p.String()
	}
	return strings.Join(strs, ", ")
}
