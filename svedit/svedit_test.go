package svedit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

type fixture struct {
	scene *svscene.Scene
	ed    *Editor
	a     *svscene.Cell
	b     *svscene.Cell
	c     *svscene.Cell
	ab    *svscene.Cell
}

func newFixture(t *testing.T) *fixture {
	s := svscene.New("test")
	add := func(id string, x, y, w, h float64) *svscene.Cell {
		box := geo.NewBox(geo.NewPoint(x, y), w, h)
		c, err := s.AddNode(&svscene.Cell{
			ID:          id,
			Role:        svscene.RoleElement,
			Box:         box,
			Outline:     shape.NewShape(shape.Box, box.Copy()),
			ElementView: &svworkspace.ElementView{ID: id, X: x, Y: y},
			Interactive: true,
		})
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	f := &fixture{scene: s}
	f.a = add("a", 0, 0, 100, 100)
	f.b = add("b", 300, 50, 100, 50)
	f.c = add("c", 100, 400, 200, 100)
	rv := &svworkspace.RelationshipView{ID: "r", Vertices: []svworkspace.Vertex{{X: 200, Y: 0}}}
	ab, err := s.AddLink(&svscene.Cell{
		ID:               "r",
		Source:           f.a,
		Target:           f.b,
		Vertices:         []*geo.Point{geo.NewPoint(200, 0)},
		RelationshipView: rv,
	})
	if err != nil {
		t.Fatal(err)
	}
	f.ab = ab
	s.RerouteAll()
	f.ed = New(s, nil)
	return f
}

func positions(s *svscene.Scene) map[string]geo.Point {
	out := map[string]geo.Point{}
	for _, c := range s.Nodes() {
		out[c.ID] = *c.Box.TopLeft
	}
	return out
}

func TestSelect(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ed.Select(f.a, false)
	f.ed.Select(f.b, true)
	assert.Equal(t, []*svscene.Cell{f.a, f.b}, f.ed.Selection())
	assert.True(t, f.a.Selected)

	f.ed.Select(f.c, false)
	assert.Equal(t, []*svscene.Cell{f.c}, f.ed.Selection())
	assert.False(t, f.a.Selected)

	f.ed.Lasso(geo.NewBox(geo.NewPoint(-10, -10), 350, 150), false)
	assert.ElementsMatch(t, []*svscene.Cell{f.a, f.b}, f.ed.Selection())

	f.ed.ClearSelection()
	assert.Empty(t, f.ed.Selection())
	assert.Empty(t, f.scene.Selected())
}

func TestMove(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	f := newFixture(t)
	f.ed.Select(f.a, false)
	f.ed.Select(f.b, true)
	assert.NoError(t, f.ed.Move(ctx, f.a, 10, 20))

	assert.Equal(t, geo.Point{X: 10, Y: 20}, *f.a.Box.TopLeft)
	assert.Equal(t, geo.Point{X: 310, Y: 70}, *f.b.Box.TopLeft)
	assert.Equal(t, geo.Point{X: 100, Y: 400}, *f.c.Box.TopLeft)
	assert.Equal(t, 10., f.a.ElementView.X)
	assert.Equal(t, 20., f.a.ElementView.Y)
	// Both ends moved, so the vertex moved too.
	assert.Equal(t, []svworkspace.Vertex{{X: 210, Y: 20}}, f.ab.RelationshipView.Vertices)

	// An unselected cell moves alone.
	assert.NoError(t, f.ed.Move(ctx, f.c, -100, 0))
	assert.Equal(t, geo.Point{X: 0, Y: 400}, *f.c.Box.TopLeft)
	assert.Equal(t, geo.Point{X: 10, Y: 20}, *f.a.Box.TopLeft)
}

func TestAlignAndDistribute(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	f := newFixture(t)
	f.ed.Select(f.a, false)
	f.ed.Select(f.b, true)
	f.ed.Select(f.c, true)

	assert.NoError(t, f.ed.AlignLeft(ctx))
	assert.Equal(t, 0., f.b.Box.TopLeft.X)
	assert.Equal(t, 0., f.c.Box.TopLeft.X)

	assert.NoError(t, f.ed.AlignVerticalCentre(ctx))
	assert.Equal(t, 0., f.b.Box.TopLeft.X)
	assert.Equal(t, -50., f.c.Box.TopLeft.X)

	assert.NoError(t, f.ed.AlignRight(ctx))
	assert.Equal(t, -100., f.c.Box.TopLeft.X)

	assert.NoError(t, f.ed.AlignHorizontalCentre(ctx))
	assert.Equal(t, 25., f.b.Box.TopLeft.Y)
	assert.Equal(t, 0., f.c.Box.TopLeft.Y)

	assert.NoError(t, f.ed.AlignBottom(ctx))
	assert.Equal(t, 50., f.b.Box.TopLeft.Y)

	assert.NoError(t, f.ed.AlignTop(ctx))
	assert.Equal(t, 0., f.b.Box.TopLeft.Y)
	assert.Equal(t, 0., f.c.Box.TopLeft.Y)

	// a 0..100, b 0..100, c -100..100 horizontally: put them side by side first.
	f.a.SetPosition(0, 0)
	f.b.SetPosition(150, 0)
	f.c.SetPosition(600, 0)
	assert.NoError(t, f.ed.DistributeHorizontally(ctx))
	// Span 0..800 holds 400 of widths, leaving two gaps of 200.
	assert.Equal(t, 0., f.a.Box.TopLeft.X)
	assert.Equal(t, 300., f.b.Box.TopLeft.X)
	assert.Equal(t, 600., f.c.Box.TopLeft.X)

	f.a.SetPosition(0, 0)
	f.b.SetPosition(0, 10)
	f.c.SetPosition(0, 500)
	assert.NoError(t, f.ed.DistributeVertically(ctx))
	// Span 0..600 holds 250 of heights, leaving two gaps of 175.
	assert.Equal(t, 275., f.b.Box.TopLeft.Y)
}

func TestUndo(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	f := newFixture(t)
	before := positions(f.scene)
	route := geo.Points(f.ab.Route).Copy()

	f.ed.Select(f.a, false)
	f.ed.Select(f.b, true)
	f.ed.Select(f.c, true)
	assert.NoError(t, f.ed.Move(ctx, f.a, 40, 40))
	assert.NoError(t, f.ed.AlignLeft(ctx))
	assert.NoError(t, f.ed.DistributeVertically(ctx))
	assert.Equal(t, 3, f.ed.UndoStack.Len())

	for f.ed.Undo(ctx) {
	}
	assert.Equal(t, before, positions(f.scene))
	assert.True(t, geo.Points(route).Equals(f.ab.Route))
	assert.Equal(t, []svworkspace.Vertex{{X: 200, Y: 0}}, f.ab.RelationshipView.Vertices)
	assert.Equal(t, 0., f.a.ElementView.X)
	assert.False(t, f.ed.Undo(ctx))
}

func TestPanicRestores(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	f := newFixture(t)
	before := positions(f.scene)
	calls := 0
	f.ed.Listeners = append(f.ed.Listeners, func() { calls++ })

	err := f.ed.mutate(ctx, "broken", func() {
		f.scene.Translate(f.a, 500, 500)
		panic("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, before, positions(f.scene))
	assert.Equal(t, 0, f.ed.UndoStack.Len())
	assert.Equal(t, 0, calls)

	assert.NoError(t, f.ed.Move(ctx, f.a, 1, 1))
	assert.Equal(t, 1, f.ed.UndoStack.Len())
	assert.Equal(t, 1, calls)
}
