package geo

import "math"

type Ellipse struct {
	Center *Point
	Rx     float64
	Ry     float64
}

func NewEllipse(center *Point, rx, ry float64) *Ellipse {
	return &Ellipse{
		Center: center,
		Rx:     rx,
		Ry:     ry,
	}
}

// Intersections returns where segment crosses the outline of e, ordered
// from the segment start.
func (e Ellipse) Intersections(segment Segment) []*Point {
	if e.Rx <= 0 || e.Ry <= 0 {
		return nil
	}
	// Scale to the unit circle and solve |s + t*d| = 1 for t in [0, 1].
	sx := (segment.Start.X - e.Center.X) / e.Rx
	sy := (segment.Start.Y - e.Center.Y) / e.Ry
	dx := (segment.End.X - segment.Start.X) / e.Rx
	dy := (segment.End.Y - segment.Start.Y) / e.Ry

	a := dx*dx + dy*dy
	if a == 0 {
		return nil
	}
	b := 2 * (sx*dx + sy*dy)
	c := sx*sx + sy*sy - 1
	disc := b*b - 4*a*c
	if math.Abs(disc) < 1e-9 {
		// Tangent.
		disc = 0
	}
	if disc < 0 {
		return nil
	}
	root := math.Sqrt(disc)
	ts := []float64{(-b - root) / (2 * a)}
	if root > 0 {
		ts = append(ts, (-b+root)/(2*a))
	}

	var out []*Point
	for _, t := range ts {
		if t < -1e-4 || t > 1+1e-4 {
			continue
		}
		out = append(out, segment.Start.Lerp(segment.End, t))
	}
	return out
}
