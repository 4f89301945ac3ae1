package svexport_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/internal/svtest"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svexport"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svsvg"
)

func render(t *testing.T, ctx context.Context, view string) *svdiagram.Diagram {
	t.Helper()
	d, err := svdiagram.New(svtest.Workspace(t), svdiagram.Opts{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.ChangeView(ctx, view); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestStrip(t *testing.T) {
	t.Parallel()

	in := `<?xml version="1.0" encoding="utf-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 10">` +
		`<g id="a" class="cell element selected" data-cell-id="1" data-interactive="true" style="cursor: move; fill: red">` +
		`<path d="M 0 0 L 1 1"></path>` +
		`<rect class="selection" x="0" y="0" width="1" height="1"></rect>` +
		`<g class="navigation"><a href="https://example.com" xlink:href="https://example.com"><rect></rect></a></g>` +
		`</g>` +
		`<g id="b" class="cell relationship" style="cursor: move"><text>A &amp; B</text></g>` +
		`</svg>`
	out, err := svexport.Strip([]byte(in))
	assert.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="utf-8"?>`))
	assert.Contains(t, s, `viewBox="0 0 10 10"`)
	assert.Contains(t, s, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
	assert.Contains(t, s, `class="cell element"`)
	assert.Contains(t, s, `style="fill: red"`)
	assert.Contains(t, s, `A &amp; B`)
	assert.Contains(t, s, `<path d="M 0 0 L 1 1"></path>`)
	for _, gone := range []string{svsvg.AttrCellID, svsvg.AttrInteractive, "cursor", svsvg.ClassNavigation, svsvg.ClassSelection, "selected", "example.com"} {
		assert.NotContains(t, s, gone)
	}

	_, err = svexport.Strip([]byte("<div></div>"))
	assert.Error(t, err)
}

func TestSVG(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d := render(t, ctx, "SystemContext")
	sys := d.Scene().ElementCell("2")
	d.Editor().Select(sys, false)
	d.SetScale(2)

	out, err := svexport.SVG(ctx, d, nil)
	assert.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, s, "Internet Banking System")
	assert.Contains(t, s, "Friday 1 March 2024")
	assert.NotContains(t, s, svsvg.AttrCellID)
	assert.NotContains(t, s, svsvg.ClassSelection)

	// The interactive state is back.
	assert.True(t, sys.Selected)
	assert.Equal(t, 2., d.Scale())

	out, err = svexport.SVG(ctx, d, &svexport.Opts{HideTitle: true, HideDescription: true, HideMetadata: true})
	assert.NoError(t, err)
	assert.NotContains(t, string(out), "Friday 1 March 2024")
	assert.NotContains(t, string(out), "The system context diagram")
}

func TestSVGNeedsRender(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d, err := svdiagram.New(svtest.Workspace(t), svdiagram.Opts{})
	assert.NoError(t, err)
	_, err = svexport.SVG(ctx, d, nil)
	assert.Error(t, err)
}

func TestCrop(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d := render(t, ctx, "Components")
	out, err := svexport.SVG(ctx, d, &svexport.Opts{Crop: true, HideMetadata: true, HideTitle: true, HideDescription: true})
	assert.NoError(t, err)

	var visible []*svscene.Cell
	for _, c := range d.Scene().Cells() {
		switch c.Role {
		case svscene.RoleTitle, svscene.RoleDescription, svscene.RoleMetadata, svscene.RoleLogo:
		default:
			visible = append(visible, c)
		}
	}
	b := svscene.BoundingBox(visible)
	m := svexport.CropMargin
	assert.Contains(t, string(out), `width="`+num(b.Width+2*m)+`"`)
	assert.Contains(t, string(out), `height="`+num(b.Height+2*m)+`"`)
}

func num(f float64) string {
	return fmt.Sprint(math.Round(f*100) / 100)
}

func TestNativePNG(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d := render(t, ctx, "Containers")
	out, err := svexport.PNG(ctx, d, &svexport.NativeRasterizer{}, nil)
	assert.NoError(t, err)
	img, format, err := image.Decode(bytes.NewReader(out))
	assert.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, int(math.Ceil(d.Scene().Width)), img.Bounds().Dx())
	assert.Equal(t, int(math.Ceil(d.Scene().Height)), img.Bounds().Dy())
	assert.True(t, strings.HasPrefix(svexport.DataURI(out), "data:image/png;base64,"))

	thumb, err := svexport.Thumbnail(out, 0)
	assert.NoError(t, err)
	timg, _, err := image.Decode(bytes.NewReader(thumb))
	assert.NoError(t, err)
	assert.Equal(t, svexport.ThumbnailWidth, timg.Bounds().Dx())
	exp := float64(img.Bounds().Dy()) * svexport.ThumbnailWidth / float64(img.Bounds().Dx())
	assert.InDelta(t, exp, float64(timg.Bounds().Dy()), 1)

	doubled, err := svexport.PNG(ctx, d, &svexport.NativeRasterizer{Scale: 2}, &svexport.Opts{Crop: true})
	assert.NoError(t, err)
	dimg, _, err := image.Decode(bytes.NewReader(doubled))
	assert.NoError(t, err)
	b := d.Scene().ContentBounds()
	assert.Equal(t, int(math.Ceil((b.Width+2*svexport.CropMargin)*2)), dimg.Bounds().Dx())
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := svexport.Thumbnail([]byte("not a png"), 100)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d := render(t, ctx, "Containers")
	key := svexport.KeyScene(ctx, d)

	var elements, links []*svscene.Cell
	for _, c := range key.Cells() {
		switch {
		case c.IsLink():
			links = append(links, c)
		case c.Role == svscene.RoleElement:
			elements = append(elements, c)
		}
	}
	assert.Len(t, links, 1)
	assert.GreaterOrEqual(t, len(elements), 3)

	styles := make(map[string]bool)
	cylinder := false
	for _, c := range elements {
		assert.False(t, styles[c.ComputedStyle.StyleKey])
		styles[c.ComputedStyle.StyleKey] = true
		assert.Equal(t, 225., c.Box.Width)
		assert.Equal(t, 150., c.Box.Height)
		if c.ComputedStyle.Shape == shape.Cylinder {
			cylinder = true
			assert.Equal(t, []string{"Container, Database"}, c.Texts[0].Lines)
		}
	}
	assert.True(t, cylinder)
	assert.InDelta(t, 400, links[0].Route[len(links[0].Route)-1].X-links[0].Route[0].X, 1e-9)

	// Relationships start a new row.
	assert.Greater(t, links[0].Source.Box.TopLeft.Y, elements[0].Box.Bottom())
	assert.LessOrEqual(t, key.Width, 25+5*(450+25.))

	out, err := svexport.Key(ctx, d)
	assert.NoError(t, err)
	assert.Contains(t, string(out), "Container, Database")
}

func TestAnimatedSVG(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	d := render(t, ctx, "SystemContext")
	out, err := svexport.AnimatedSVG(ctx, d, time.Second, nil)
	assert.NoError(t, err)
	s := string(out)
	assert.Equal(t, 3, strings.Count(s, `<g class="frame `))
	assert.Contains(t, s, "3s step-end infinite")
	assert.Contains(t, s, "@keyframes")
	assert.False(t, d.Animation().Running())
	for _, c := range d.Scene().Cells() {
		assert.Equal(t, c.ComputedStyle.Opacity, c.Opacity, c.ID)
	}

	d = render(t, ctx, "Landscape")
	_, err = svexport.AnimatedSVG(ctx, d, 0, nil)
	assert.Error(t, err)
}
