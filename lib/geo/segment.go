package geo

import "fmt"

// Intersectable is a piece of outline that segments can cross.
type Intersectable interface {
	Intersections(s Segment) []*Point
}

type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(start, end *Point) *Segment {
	return &Segment{Start: start, End: end}
}

func (s Segment) String() string {
	return fmt.Sprintf("%v -> %v", s.Start, s.End)
}

func (s Segment) Length() float64 {
	return s.Start.Distance(s.End)
}

func (s Segment) Intersections(o Segment) []*Point {
	if p := intersect(s.Start, s.End, o.Start, o.End); p != nil {
		return []*Point{p}
	}
	return nil
}
