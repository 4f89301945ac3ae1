package svscene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svworkspace"
)

func node(t *testing.T, s *Scene, id string, x, y, w, h float64) *Cell {
	t.Helper()
	box := geo.NewBox(geo.NewPoint(x, y), w, h)
	c, err := s.AddNode(&Cell{
		ID:          id,
		Role:        RoleElement,
		Box:         box,
		Outline:     shape.NewShape(shape.Box, box.Copy()),
		ElementView: &svworkspace.ElementView{ID: id},
		Interactive: true,

		ComputedStyle: ComputedStyle{Opacity: Opaque},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestEmbed(t *testing.T) {
	t.Parallel()

	s := New("test")
	a := node(t, s, "a", 0, 0, 100, 100)
	b := node(t, s, "b", 10, 10, 20, 20)
	c := node(t, s, "c", 12, 12, 5, 5)

	assert.NoError(t, s.Embed(a, b))
	assert.NoError(t, s.Embed(b, c))
	assert.Error(t, s.Embed(c, a))
	assert.Error(t, s.Embed(a, a))

	assert.Equal(t, []*Cell{b, a}, c.Ancestors())
	assert.Equal(t, []*Cell{b, c}, a.Descendants())
	assert.Equal(t, 2, c.Depth())
	assert.Equal(t, []*Cell{a}, s.TopLevel())

	// re-embedding moves the child
	assert.NoError(t, s.Embed(a, c))
	assert.Empty(t, b.Embeds)
	assert.Equal(t, a, c.Parent)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	s := New("test")
	a := node(t, s, "a", 0, 0, 100, 100)
	b := node(t, s, "b", 10, 10, 20, 20)
	assert.NoError(t, s.Embed(a, b))

	s.Translate(a, 5, -5)
	assert.Equal(t, 5., a.Box.TopLeft.X)
	assert.Equal(t, 15., b.Box.TopLeft.X)
	assert.Equal(t, 5., b.ElementView.Y)
	assert.Equal(t, 15., b.Outline.GetBox().TopLeft.X)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := New("test")
	a := node(t, s, "a", 0, 0, 100, 100)
	b := node(t, s, "b", 10, 10, 20, 20)
	c := node(t, s, "c", 200, 0, 20, 20)
	assert.NoError(t, s.Embed(a, b))
	_, err := s.AddLink(&Cell{ID: "l", Source: b, Target: c})
	assert.NoError(t, err)
	_, err = s.AddLink(&Cell{ID: "bad", Source: b})
	assert.Error(t, err)
	_, err = s.AddNode(&Cell{ID: "c", Box: geo.NewBox(geo.NewPoint(0, 0), 1, 1)})
	assert.Error(t, err)

	s.Remove(a)
	assert.Equal(t, []*Cell{c}, s.Cells())
	assert.Nil(t, s.Cell("l"))
	assert.Nil(t, s.Cell("b"))
}

func TestSortContainers(t *testing.T) {
	t.Parallel()

	s := New("test")
	e := node(t, s, "e", 10, 10, 20, 20)
	inner := node(t, s, "inner", 0, 0, 50, 50)
	inner.Role = RoleGroup
	outer := node(t, s, "outer", 0, 0, 100, 100)
	outer.Role = RoleBoundary
	assert.NoError(t, s.Embed(outer, inner))
	assert.NoError(t, s.Embed(inner, e))

	s.SortContainers()
	assert.Equal(t, []*Cell{outer, inner, e}, s.Cells())
}

func TestToBack(t *testing.T) {
	t.Parallel()

	s := New("test")
	a := node(t, s, "a", 0, 0, 10, 10)
	b := node(t, s, "b", 0, 0, 10, 10)
	c := node(t, s, "c", 0, 0, 10, 10)
	d := node(t, s, "d", 0, 0, 10, 10)

	s.ToBack(d, b, d)
	assert.Equal(t, []*Cell{d, b, a, c}, s.Cells())

	// a parent created after its child still ends up beneath it
	s = New("test")
	child := node(t, s, "child", 10, 10, 10, 10)
	parent := node(t, s, "parent", 0, 0, 100, 100)
	parent.Role = RoleBoundary
	assert.NoError(t, s.Embed(parent, child))
	s.SortContainers()
	assert.Equal(t, []*Cell{parent, child}, s.Cells())
}

func TestOpacity(t *testing.T) {
	t.Parallel()

	s := New("test")
	hidden, err := s.AddNode(&Cell{
		ID:            "hidden",
		Box:           geo.NewBox(geo.NewPoint(0, 0), 10, 10),
		ComputedStyle: ComputedStyle{Opacity: 0},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, hidden.ComputedStyle.Opacity)
	assert.Equal(t, 0, hidden.Opacity)

	half, err := s.AddNode(&Cell{
		ID:            "half",
		Box:           geo.NewBox(geo.NewPoint(0, 0), 10, 10),
		ComputedStyle: ComputedStyle{Opacity: 50},
	})
	assert.NoError(t, err)
	assert.Equal(t, 50, half.Opacity)

	half.Opacity = 10
	hidden.Opacity = 10
	s.ResetOpacity()
	assert.Equal(t, 50, half.Opacity)
	assert.Equal(t, 0, hidden.Opacity)
}

func TestBounds(t *testing.T) {
	t.Parallel()

	s := New("test")
	assert.Equal(t, 0., s.ContentBounds().Width)

	a := node(t, s, "a", 0, 0, 100, 100)
	b := node(t, s, "b", 300, 50, 100, 100)
	l, err := s.AddLink(&Cell{ID: "l", Source: a, Target: b, Vertices: []*geo.Point{geo.NewPoint(200, 400)}})
	assert.NoError(t, err)
	assert.Equal(t, RoleRelationship, l.Role)

	box := s.ContentBounds()
	assert.Equal(t, 400., box.Width)
	assert.Equal(t, 400., box.Height)

	hits := s.Intersecting(geo.NewBox(geo.NewPoint(50, 50), 10, 10))
	assert.Equal(t, []*Cell{a}, hits)

	a.Opacity = 10
	s.ResetOpacity()
	assert.Equal(t, 100, a.Opacity)
}

func TestReroute(t *testing.T) {
	t.Parallel()

	s := New("test")
	a := node(t, s, "a", 0, 0, 100, 100)
	b := node(t, s, "b", 300, 300, 100, 100)
	l, err := s.AddLink(&Cell{ID: "l", Source: a, Target: b, RelationshipView: &svworkspace.RelationshipView{ID: "l"}})
	assert.NoError(t, err)

	Reroute(l)
	if assert.Len(t, l.Route, 2) {
		assert.True(t, l.Route[0].Equals(geo.NewPoint(100, 100)), l.Route[0].String())
		assert.True(t, l.Route[1].Equals(geo.NewPoint(300, 300)), l.Route[1].String())
	}

	l.Routing = RoutingOrthogonal
	Reroute(l)
	if assert.Len(t, l.Route, 3) {
		assert.True(t, l.Route[0].Equals(geo.NewPoint(100, 50)))
		assert.True(t, l.Route[1].Equals(geo.NewPoint(350, 50)))
		assert.True(t, l.Route[2].Equals(geo.NewPoint(350, 300)))
	}

	l.Routing = RoutingDirect
	l.Vertices = []*geo.Point{geo.NewPoint(50.4, 250)}
	Reroute(l)
	assert.Len(t, l.Route, 3)
	SyncVertices(l)
	assert.Equal(t, []svworkspace.Vertex{{X: 50, Y: 250}}, l.RelationshipView.Vertices)
}
