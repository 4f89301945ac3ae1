// Package svlayout positions the elements of a view with graphviz dot.
package svlayout

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cdr.dev/slog"
	"github.com/goccy/go-graphviz"
	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svworkspace"
)

const (
	DefaultRankSeparation = 300
	DefaultNodeSeparation = 300
	DefaultMargin         = 50

	pointsPerInch = 72.
)

type Opts struct {
	RankDirection  string
	RankSeparation int
	NodeSeparation int
	Vertices       bool
	Margin         float64
}

// OptsFromView reads the view's automatic layout settings, filling in defaults.
func OptsFromView(v *svworkspace.View) Opts {
	opts := Opts{
		RankDirection:  "TopBottom",
		RankSeparation: DefaultRankSeparation,
		NodeSeparation: DefaultNodeSeparation,
		Margin:         DefaultMargin,
	}
	al := v.AutomaticLayout
	if al == nil {
		return opts
	}
	if al.RankDirection != "" {
		opts.RankDirection = al.RankDirection
	}
	if al.RankSeparation > 0 {
		opts.RankSeparation = al.RankSeparation
	}
	if al.NodeSeparation > 0 {
		opts.NodeSeparation = al.NodeSeparation
	}
	opts.Vertices = al.Vertices
	return opts
}

func rankDir(s string) string {
	switch s {
	case "BottomTop":
		return "BT"
	case "LeftRight":
		return "LR"
	case "RightLeft":
		return "RL"
	default:
		return "TB"
	}
}

// Edge is a relationship to lay out. Edges with an endpoint outside the node
// set are ignored.
type Edge struct {
	ID     string
	Source string
	Target string
}

type Result struct {
	// Positions are top left corners keyed by element ID.
	Positions map[string]*geo.Point

	// Vertices are keyed by relationship ID and only set when Opts.Vertices is.
	Vertices map[string][]*geo.Point
}

// Edges lists the relationships of v with both endpoints in sizes.
func Edges(ws *svworkspace.Workspace, v *svworkspace.View, sizes map[string]*geo.Box) []Edge {
	var edges []Edge
	for _, rv := range v.Relationships {
		r := ws.Relationship(rv.ID)
		if r == nil {
			continue
		}
		if sizes[r.SourceID] == nil || sizes[r.DestinationID] == nil {
			continue
		}
		edges = append(edges, Edge{ID: r.ID, Source: r.SourceID, Target: r.DestinationID})
	}
	return edges
}

// ToDOT renders the graph in dot syntax. Node sizes are fixed so dot keeps
// the rendered shape dimensions.
func ToDOT(sizes map[string]*geo.Box, edges []Edge, opts Opts) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [rankdir=%s, ranksep=%s, nodesep=%s];\n",
		rankDir(opts.RankDirection), inches(float64(opts.RankSeparation)), inches(float64(opts.NodeSeparation)))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")

	for _, id := range sortedIDs(sizes) {
		b := sizes[id]
		fmt.Fprintf(&buf, "  %q [width=%s, height=%s];\n", id, inches(b.Width), inches(b.Height))
	}
	for _, e := range edges {
		if sizes[e.Source] == nil || sizes[e.Target] == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.Source, e.Target, e.ID)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

func sortedIDs(sizes map[string]*geo.Box) []string {
	ids := make([]string, 0, len(sizes))
	for id := range sizes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Layout runs dot over the elements in sizes and the given edges. Sizes are
// only read for their width and height.
func Layout(ctx context.Context, sizes map[string]*geo.Box, edges []Edge, opts Opts) (_ *Result, err error) {
	defer xdefer.Errorf(&err, "failed to lay out %d elements", len(sizes))

	if len(sizes) == 0 {
		return &Result{Positions: map[string]*geo.Point{}, Vertices: map[string][]*geo.Point{}}, nil
	}

	dot := ToDOT(sizes, edges, opts)
	log.Debug(ctx, "running dot", slog.F("nodes", len(sizes)), slog.F("edges", len(edges)))

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse dot: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return readLayout(buf.Bytes(), sizes, opts)
}

// readLayout reads pos attributes back from laid out dot. dot coordinates
// are points with y growing upwards; one point is one pixel here.
func readLayout(laidOut []byte, sizes map[string]*geo.Box, opts Opts) (*Result, error) {
	g, err := graphviz.ParseBytes(laidOut)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	defer g.Close()

	bb, err := parseFloats(g.GetStr("bb"), 4)
	if err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}
	height := bb[3]
	toScreen := func(x, y float64) *geo.Point {
		return geo.NewPoint(x-bb[0]+opts.Margin, height-y+opts.Margin)
	}

	res := &Result{
		Positions: make(map[string]*geo.Point, len(sizes)),
		Vertices:  make(map[string][]*geo.Point),
	}
	n, err := g.FirstNode()
	for ; err == nil && n != nil; n, err = g.NextNode(n) {
		id, err := n.Name()
		if err != nil {
			return nil, err
		}
		size, ok := sizes[id]
		if !ok {
			continue
		}
		pos, err := parseFloats(n.GetStr("pos"), 2)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", id, err)
		}
		centre := toScreen(pos[0], pos[1])
		res.Positions[id] = geo.NewPoint(centre.X-size.Width/2, centre.Y-size.Height/2)

		if !opts.Vertices {
			continue
		}
		e, err := g.FirstOut(n)
		for ; err == nil && e != nil; e, err = g.NextOut(e) {
			relID := e.GetStr("id")
			if relID == "" {
				continue
			}
			points, err := splinePoints(e.GetStr("pos"))
			if err != nil {
				return nil, fmt.Errorf("edge %q: %w", relID, err)
			}
			var vertices []*geo.Point
			for _, p := range interior(points) {
				vertices = append(vertices, toScreen(p.X, p.Y))
			}
			res.Vertices[relID] = vertices
		}
		if err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	if len(res.Positions) != len(sizes) {
		return nil, fmt.Errorf("dot placed %d of %d elements", len(res.Positions), len(sizes))
	}
	return res, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) < n {
		return nil, fmt.Errorf("expected %d coordinates in %q", n, s)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// splinePoints parses an edge pos attribute: optional s,x,y and e,x,y
// endpoints followed by cubic bezier control points.
func splinePoints(s string) ([]*geo.Point, error) {
	var points []*geo.Point
	for _, f := range strings.Fields(strings.ReplaceAll(s, "\\\n", "")) {
		if strings.HasPrefix(f, "s,") || strings.HasPrefix(f, "e,") {
			continue
		}
		xy, err := parseFloats(f, 2)
		if err != nil {
			return nil, err
		}
		points = append(points, geo.NewPoint(xy[0], xy[1]))
	}
	return points, nil
}

// interior keeps the joints between bezier segments, dropping the ends and
// control points.
func interior(points []*geo.Point) []*geo.Point {
	var out []*geo.Point
	for i := 3; i < len(points)-1; i += 3 {
		out = append(out, points[i])
	}
	return out
}
