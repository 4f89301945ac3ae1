package svsvg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svscene"
)

func testScene(t *testing.T) *svscene.Scene {
	s := svscene.New("0b7e3f2a-9c1d-4e5f-8a6b-123456789abc")
	s.Background = "#ffffff"
	add := func(id string, x, y float64) *svscene.Cell {
		box := geo.NewBox(geo.NewPoint(x, y), 100, 50)
		c, err := s.AddNode(&svscene.Cell{
			ID:            id,
			Role:          svscene.RoleElement,
			Box:           box,
			Outline:       shape.NewShape(shape.Box, box.Copy()),
			ComputedStyle: svscene.ComputedStyle{Fill: "#438dd5", Stroke: "#3c7ebf", StrokeWidth: 2, Opacity: 100},
			Interactive:   true,
			Texts:         []svscene.Text{{Lines: []string{"Name & co"}, X: 50, Y: 10, FontSize: 20, LineHeight: 24, Anchor: "middle"}},
		})
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	a := add("a", 0, 0)
	b := add("b", 300, 0)
	a.Tooltip = "Customer\n[Person]"
	a.Selected = true
	b.URL = "https://example.com"

	_, err := s.AddLink(&svscene.Cell{
		ID:            "r1",
		Source:        a,
		Target:        b,
		Route:         []*geo.Point{geo.NewPoint(100, 25), geo.NewPoint(300, 25)},
		ComputedStyle: svscene.ComputedStyle{Stroke: "#aa0000", StrokeWidth: 2, Opacity: 100},
		Dashed:        "Dashed",
		LabelPosition: 50,
		LabelWidth:    40,
		Texts:         []svscene.Text{{Lines: []string{"Uses"}, Y: -12, FontSize: 20, LineHeight: 24, Anchor: "middle"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestIDPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "svg-0b7e3f2a", IDPrefix("0b7e3f2a-9c1d-4e5f-8a6b-123456789abc"))
	p := IDPrefix("not hex at all")
	assert.Len(t, p, len("svg-")+8)
	assert.Equal(t, p, IDPrefix("not hex at all"))
	assert.NotEqual(t, CellID(p, "a"), CellID(p, "b"))
}

func TestRenderInteractive(t *testing.T) {
	t.Parallel()

	out, err := Render(testScene(t), &RenderOpts{Interactive: true})
	assert.NoError(t, err)
	svg := string(out)

	assert.Contains(t, svg, `id="svg-0b7e3f2a"`)
	assert.Contains(t, svg, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, svg, `data-cell-id="a"`)
	assert.Contains(t, svg, `data-interactive="true" style="cursor: move"`)
	assert.Contains(t, svg, `class="cell element selected"`)
	assert.Contains(t, svg, `class="selection"`)
	assert.Contains(t, svg, `class="navigation"`)
	assert.Contains(t, svg, "<title>Customer&#xA;[Person]</title>")
	assert.Contains(t, svg, "Name &amp; co")
	assert.Contains(t, svg, `marker-end="url(#svg-0b7e3f2a-arrow-0)"`)
	assert.Contains(t, svg, `<path d="M 0 0 L 10 5 L 0 10 z" fill="#aa0000">`)
	assert.Contains(t, svg, `stroke-dasharray="10,10"`)
	assert.Contains(t, svg, ">Uses</tspan>")

	// Elements are drawn before links.
	assert.Less(t, strings.Index(svg, `data-cell-id="b"`), strings.Index(svg, `data-cell-id="r1"`))
}

func TestRenderStatic(t *testing.T) {
	t.Parallel()

	out, err := Render(testScene(t), &RenderOpts{Salt: "ffffffff", Hide: map[svscene.Role]bool{svscene.RoleRelationship: true}})
	assert.NoError(t, err)
	svg := string(out)

	assert.Contains(t, svg, `id="svg-ffffffff"`)
	assert.NotContains(t, svg, "data-cell-id")
	assert.NotContains(t, svg, "cursor")
	assert.NotContains(t, svg, "navigation")
	assert.NotContains(t, svg, "Uses")
	assert.NotContains(t, svg, "<defs>")
}

func TestJumpData(t *testing.T) {
	t.Parallel()

	route := []*geo.Point{geo.NewPoint(0, 50), geo.NewPoint(100, 50)}
	under := []geo.Segment{*geo.NewSegment(geo.NewPoint(50, 0), geo.NewPoint(50, 100))}
	assert.Equal(t, "M 0 50 L 42 50 A 8 8 0 0 1 58 50 L 100 50", jumpData(route, under))
	assert.Equal(t, "M 0 50 L 100 50", jumpData(route, nil))
}
