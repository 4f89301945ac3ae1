package svscene

import (
	"math"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/svworkspace"
)

// Routings a link may use.
const (
	RoutingDirect     = "Direct"
	RoutingOrthogonal = "Orthogonal"
	RoutingCurved     = "Curved"
)

// Reroute recomputes the drawn route of link c from its endpoints and
// vertices. The route starts and ends on the endpoint outlines.
func Reroute(c *Cell) {
	if !c.IsLink() || c.Source == nil || c.Target == nil {
		return
	}
	points := []*geo.Point{c.Source.Box.Center()}
	for _, v := range c.Vertices {
		points = append(points, v.Copy())
	}
	points = append(points, c.Target.Box.Center())

	if c.Routing == RoutingOrthogonal {
		points = orthogonal(points)
	}
	points = dedupe(points)
	if len(points) < 2 {
		c.Route = points
		return
	}

	points[0] = borderPoint(c.Source, points[0], points[1])
	n := len(points)
	points[n-1] = borderPoint(c.Target, points[n-1], points[n-2])
	c.Route = points
}

// RerouteAll recomputes every link route.
func (s *Scene) RerouteAll() {
	for _, c := range s.cells {
		if c.IsLink() {
			Reroute(c)
		}
	}
}

// orthogonal inserts elbows so every segment is horizontal or vertical. Each
// leg goes horizontally first.
func orthogonal(points []*geo.Point) []*geo.Point {
	out := []*geo.Point{points[0]}
	for i := 1; i < len(points); i++ {
		prev, p := out[len(out)-1], points[i]
		if prev.X != p.X && prev.Y != p.Y {
			out = append(out, geo.NewPoint(p.X, prev.Y))
		}
		out = append(out, p)
	}
	return out
}

func dedupe(points []*geo.Point) []*geo.Point {
	out := make([]*geo.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Equals(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// borderPoint is where the segment from inside (in c) towards outside leaves
// c's outline. It falls back to inside when nothing crosses.
func borderPoint(c *Cell, inside, outside *geo.Point) *geo.Point {
	if c.Outline == nil {
		return inside
	}
	seg := geo.Segment{Start: inside, End: outside}
	var best *geo.Point
	bestDist := math.Inf(1)
	for _, edge := range c.Outline.Perimeter() {
		for _, p := range edge.Intersections(seg) {
			d := p.Distance(outside)
			if d < bestDist {
				best, bestDist = p, d
			}
		}
	}
	if best == nil {
		return inside
	}
	return best
}

// SyncVertices writes c's vertices back to its relationship view.
func SyncVertices(c *Cell) {
	if c.RelationshipView == nil {
		return
	}
	vs := make([]svworkspace.Vertex, 0, len(c.Vertices))
	for _, v := range c.Vertices {
		vs = append(vs, svworkspace.Vertex{X: math.Round(v.X), Y: math.Round(v.Y)})
	}
	if len(vs) == 0 {
		vs = nil
	}
	c.RelationshipView.Vertices = vs
}
