package svlayout

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/internal/svtest"
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svworkspace"
)

func box(w, h float64) *geo.Box {
	return geo.NewBox(geo.NewPoint(0, 0), w, h)
}

func TestOptsFromView(t *testing.T) {
	t.Parallel()

	opts := OptsFromView(&svworkspace.View{})
	assert.Equal(t, "TopBottom", opts.RankDirection)
	assert.Equal(t, DefaultRankSeparation, opts.RankSeparation)
	assert.False(t, opts.Vertices)

	opts = OptsFromView(&svworkspace.View{AutomaticLayout: &svworkspace.AutomaticLayout{
		RankDirection:  "LeftRight",
		NodeSeparation: 144,
		Vertices:       true,
	}})
	assert.Equal(t, "LeftRight", opts.RankDirection)
	assert.Equal(t, DefaultRankSeparation, opts.RankSeparation)
	assert.Equal(t, 144, opts.NodeSeparation)
	assert.True(t, opts.Vertices)
}

func TestToDOT(t *testing.T) {
	t.Parallel()

	sizes := map[string]*geo.Box{"b": box(450, 300), "a": box(144, 72)}
	edges := []Edge{{ID: "r1", Source: "a", Target: "b"}, {ID: "r2", Source: "a", Target: "missing"}}
	dot := ToDOT(sizes, edges, Opts{RankDirection: "RightLeft", RankSeparation: 144, NodeSeparation: 72})

	assert.Contains(t, dot, "rankdir=RL, ranksep=2.0000, nodesep=1.0000")
	assert.Contains(t, dot, `"a" [width=2.0000, height=1.0000];`)
	assert.Contains(t, dot, `"b" [width=6.2500, height=4.1667];`)
	assert.Contains(t, dot, `"a" -> "b" [id="r1"];`)
	assert.NotContains(t, dot, "missing")
	assert.Less(t, strings.Index(dot, `"a" [`), strings.Index(dot, `"b" [`))
}

func TestEdges(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	v := ws.View("Containers")
	sizes := map[string]*geo.Box{"3": box(1, 1), "5": box(1, 1), "4": box(1, 1)}
	var ids []string
	for _, e := range Edges(ws, v, sizes) {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"r3", "r3b", "r4"}, ids)
}

func TestSplinePoints(t *testing.T) {
	t.Parallel()

	points, err := splinePoints("e,100,10 100,200 100,150 110,120 120,100 130,80 100,40 100,20")
	assert.NoError(t, err)
	assert.Len(t, points, 7)

	in := interior(points)
	assert.Len(t, in, 1)
	assert.Equal(t, 120., in[0].X)
	assert.Equal(t, 100., in[0].Y)

	_, err = splinePoints("1,x")
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	sizes := map[string]*geo.Box{"a": box(450, 300), "b": box(450, 300), "c": box(450, 300)}
	edges := []Edge{{ID: "r1", Source: "a", Target: "b"}, {ID: "r2", Source: "b", Target: "c"}, {ID: "r3", Source: "a", Target: "c"}}
	res, err := Layout(ctx, sizes, edges, Opts{RankDirection: "TopBottom", RankSeparation: 100, NodeSeparation: 100, Margin: 50, Vertices: true})
	if !assert.NoError(t, err) {
		return
	}
	assert.Len(t, res.Positions, 3)
	a, b, c := res.Positions["a"], res.Positions["b"], res.Positions["c"]
	assert.Less(t, a.Y, b.Y)
	assert.Less(t, b.Y, c.Y)
	assert.GreaterOrEqual(t, b.Y-a.Y, 300.)
	for _, p := range res.Positions {
		assert.GreaterOrEqual(t, p.X, 50.-0.5)
		assert.GreaterOrEqual(t, p.Y, 50.-0.5)
	}

	empty, err := Layout(ctx, nil, nil, Opts{})
	assert.NoError(t, err)
	assert.Empty(t, empty.Positions)
}
