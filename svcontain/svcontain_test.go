package svcontain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/internal/svtest"
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svcontain"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svshapes"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svworkspace"
)

type fixture struct {
	ws     *svworkspace.Workspace
	view   *svworkspace.View
	scene  *svscene.Scene
	engine *svcontain.Engine
	cells  map[string]*svscene.Cell
}

func newFixture(ctx context.Context, t *testing.T, viewKey string, ids ...string) *fixture {
	ws := svtest.Workspace(t)
	view := ws.View(viewKey)
	rc := svstyle.NewRenderingContext(svstyle.RenderingContextOpts{})
	r := svstyle.NewResolver(rc, ws)
	f, err := svshapes.NewFactory()
	if err != nil {
		t.Fatal(err)
	}
	scene := svscene.New("test")

	cells := make(map[string]*svscene.Cell)
	for _, id := range ids {
		e := ws.Element(id)
		ev := view.ElementView(id)
		style := r.Element(e, false)
		c := f.CreateShape(ctx, style.Kind(), e, style, geo.NewPoint(float64(ev.X), float64(ev.Y)), svshapes.Content{Name: e.Name})
		c.ElementView = ev
		if _, err := scene.AddNode(c); err != nil {
			t.Fatal(err)
		}
		cells[id] = c
	}
	return &fixture{
		ws:     ws,
		view:   view,
		scene:  scene,
		engine: svcontain.New(ctx, scene, f, r, ws, view, false),
		cells:  cells,
	}
}

// assertContains checks that every container holds its members plus padding.
func assertContains(t *testing.T, eng *svcontain.Engine, scene *svscene.Scene) {
	t.Helper()
	for _, c := range scene.Nodes() {
		if len(c.Embeds) == 0 {
			continue
		}
		p := eng.Padding(c) - 0.001
		for _, m := range c.Embeds {
			assert.True(t, c.Box.Contains(m.Box.Expand(p, p, p, p)), "%s does not contain %s", c.ID, m.ID)
		}
	}
}

func TestNestedGroups(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	fx := newFixture(ctx, t, "Containers", "3", "4", "5")
	eng := fx.engine
	boundary := eng.Boundary(ctx, fx.ws.Element("2"), []*svscene.Cell{fx.cells["3"], fx.cells["4"], fx.cells["5"]})
	assert.Equal(t, svscene.RoleBoundary, boundary.Role)
	assertContains(t, eng, fx.scene)

	for _, id := range []string{"3", "4", "5"} {
		eng.AddToGroup(ctx, fx.cells[id])
	}

	team := eng.Groups()["2_Team"]
	backend := eng.Groups()["2_Team:Backend"]
	if !assert.NotNil(t, team) || !assert.NotNil(t, backend) {
		return
	}
	assert.Len(t, eng.Groups(), 2)
	assert.Equal(t, team, backend.Parent)
	assert.Equal(t, boundary, team.Parent)
	assert.Equal(t, backend, fx.cells["4"].Parent)
	assert.Equal(t, backend, fx.cells["5"].Parent)
	assert.Equal(t, team, fx.cells["3"].Parent)
	assert.Equal(t, "Backend", backend.Texts[0].Lines[0])
	assert.Equal(t, "#00aa00", backend.ComputedStyle.Stroke)

	assert.Equal(t, team, eng.FindRootGroup("Team:Backend", "2"))
	assert.Equal(t, team, eng.FindRootGroup("Team", "2"))
	assert.Nil(t, eng.FindRootGroup("Team", "External"))
	assert.Equal(t, backend, eng.FindOrCreateGroup(ctx, "Team:Backend", "2"))

	assertContains(t, eng, fx.scene)

	fx.scene.Translate(fx.cells["4"], 500, 700)
	eng.Reposition(ctx, fx.cells["4"].Parent)
	assertContains(t, eng, fx.scene)
}

func TestScope(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	fx := newFixture(ctx, t, "Landscape")
	assert.Equal(t, "External", fx.engine.Scope(fx.ws.Element("1")))
	assert.Equal(t, "Internal", fx.engine.Scope(fx.ws.Element("2")))
	assert.Equal(t, "2", fx.engine.Scope(fx.ws.Element("3")))

	dfx := newFixture(ctx, t, "Live")
	assert.Equal(t, "Live", dfx.engine.Scope(dfx.ws.Element("d1")))
	assert.Equal(t, "d2", dfx.engine.Scope(dfx.ws.Element("c1")))
}

func TestDeployment(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	fx := newFixture(ctx, t, "Live", "c1", "c2", "c3", "i1")
	nodes := fx.engine.Deployment(ctx, fx.cells)

	assert.Len(t, nodes, 3)
	assert.Nil(t, fx.scene.Cell("d4"))
	assert.Nil(t, fx.scene.Cell("d5"))
	// the view itself is left alone
	assert.NotNil(t, fx.view.ElementView("d4"))

	d1, d2, d3 := nodes["d1"], nodes["d2"], nodes["d3"]
	assert.Equal(t, d2, fx.cells["c1"].Parent)
	assert.Equal(t, d2, fx.cells["c2"].Parent)
	assert.Equal(t, d3, fx.cells["c3"].Parent)
	assert.Equal(t, d1, fx.cells["i1"].Parent)
	assert.Equal(t, d1, d2.Parent)
	assert.Equal(t, d1, d3.Parent)
	assert.Nil(t, d1.Parent)
	assert.Equal(t, "EC2", d2.Texts[0].Lines[0])

	assertContains(t, fx.engine, fx.scene)
}

func TestEnterpriseBoundary(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	fx := newFixture(ctx, t, "Landscape", "2", "8")
	b := fx.engine.EnterpriseBoundary(ctx, []*svscene.Cell{fx.cells["2"], fx.cells["8"]})
	assert.Equal(t, "boundary:"+svcontain.EnterpriseBoundaryID, b.ID)
	assert.Equal(t, "Big Bank plc", b.Texts[0].Lines[0])
	assertContains(t, fx.engine, fx.scene)
}
