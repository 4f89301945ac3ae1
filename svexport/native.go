package svexport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"sync"

	"cdr.dev/slog"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/structview/structview/lib/color"
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/svg"
	"github.com/structview/structview/lib/syncmap"
	"github.com/structview/structview/lib/textmeasure"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svsvg"
)

const labelPadding = 5.

// NativeRasterizer draws the scene directly. It needs no browser but only
// knows the bundled fonts and raster images.
type NativeRasterizer struct {
	Scale float64

	once  sync.Once
	err   error
	fonts map[textmeasure.FontStyle]*truetype.Font
	faces syncmap.SyncMap[textmeasure.Font, font.Face]
}

func (n *NativeRasterizer) loadFonts() error {
	n.once.Do(func() {
		n.fonts = make(map[textmeasure.FontStyle]*truetype.Font)
		n.faces = syncmap.New[textmeasure.Font, font.Face]()
		for _, style := range textmeasure.FontStyles {
			f, err := truetype.Parse(textmeasure.FontFaces[style])
			if err != nil {
				n.err = fmt.Errorf("failed to parse %s font: %w", style, err)
				return
			}
			n.fonts[style] = f
		}
	})
	return n.err
}

func (n *NativeRasterizer) face(size int, bold bool) font.Face {
	style := textmeasure.FontStyleRegular
	if bold {
		style = textmeasure.FontStyleBold
	}
	key := textmeasure.NewFont(size, style)
	if f, ok := n.faces.Lookup(key); ok {
		return f
	}
	return n.faces.LoadOrStore(key, truetype.NewFace(n.fonts[style], &truetype.Options{Size: float64(size)}))
}

func (n *NativeRasterizer) Rasterize(ctx context.Context, p *Page) ([]byte, error) {
	if err := n.loadFonts(); err != nil {
		return nil, err
	}
	scale := n.Scale
	if scale <= 0 {
		scale = 1
	}
	vb := p.ViewBox
	if vb == nil {
		vb = p.Scene.ContentBounds()
	}
	w, h := int(math.Ceil(vb.Width*scale)), int(math.Ceil(vb.Height*scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("nothing to draw in a %vx%v page", vb.Width, vb.Height)
	}

	dc := gg.NewContext(w, h)
	bg := p.Scene.Background
	if bg == "" {
		bg = color.White
	}
	setColor(dc, bg, 100)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-vb.TopLeft.X, -vb.TopLeft.Y)

	d := &drawer{n: n, dc: dc, page: p, ctx: ctx, scale: scale}
	for _, c := range svsvg.DrawOrder(p.Scene.Cells()) {
		if p.Hide[c.Role] {
			continue
		}
		if c.IsLink() {
			d.link(c)
		} else {
			d.node(c)
		}
	}

	buf := &bytes.Buffer{}
	if err := dc.EncodePNG(buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	log.Debug(ctx, "rasterized natively", slog.F("width", w), slog.F("height", h))
	return buf.Bytes(), nil
}

type drawer struct {
	n     *NativeRasterizer
	dc    *gg.Context
	page  *Page
	ctx   context.Context
	scale float64
}

func setColor(dc *gg.Context, c string, opacity int) bool {
	if c == "" || c == color.None {
		return false
	}
	rgba, err := color.RGBA(c, float64(opacity))
	if err != nil {
		return false
	}
	dc.SetColor(rgba)
	return true
}

func setDash(dc *gg.Context, border string, width float64) {
	dash := svg.StrokeDash(border, width)
	if dash == "" {
		dc.SetDash()
		return
	}
	var lengths []float64
	for _, f := range strings.FieldsFunc(dash, func(r rune) bool { return r == ',' || r == ' ' }) {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			lengths = append(lengths, v)
		}
	}
	dc.SetDash(lengths...)
}

func (d *drawer) node(c *svscene.Cell) {
	if c.Box == nil {
		return
	}
	cs := c.ComputedStyle
	if c.Outline != nil {
		fill := cs.Fill
		if (c.Role == svscene.RoleGroup || c.Role == svscene.RoleBoundary) && fill == d.page.Scene.Background {
			fill = ""
		}
		for i, data := range c.Outline.GetSVGPathData() {
			tracePath(d.dc, data)
			if i == 0 && setColor(d.dc, fill, c.Opacity) {
				d.dc.FillPreserve()
			}
			if setColor(d.dc, cs.Stroke, c.Opacity) && cs.StrokeWidth > 0 {
				d.dc.SetLineWidth(float64(cs.StrokeWidth))
				setDash(d.dc, cs.Border, float64(cs.StrokeWidth))
				d.dc.StrokePreserve()
			}
			d.dc.ClearPath()
		}
	}
	if c.Icon != nil {
		d.image(c.Box.TopLeft, c.Icon)
	}
	for _, t := range c.Texts {
		d.text(c.Box.TopLeft, t, c.Opacity)
	}
}

func (d *drawer) image(tl *geo.Point, icon *svscene.Icon) {
	if icon.Box == nil || icon.Href == "" || d.page.Image == nil {
		return
	}
	data, ok := d.page.Image(icon.Href)
	if !ok {
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data.Data))
	if err != nil {
		log.Debug(d.ctx, "skipping image the native rasterizer cannot decode", slog.F("href", icon.Href), slog.Error(err))
		return
	}
	b := icon.Box
	// Resample at output resolution, then draw in page units.
	fitted := imaging.Fit(img, int(math.Max(1, b.Width*d.scale)), int(math.Max(1, b.Height*d.scale)), imaging.Lanczos)
	fw := float64(fitted.Bounds().Dx()) / d.scale
	fh := float64(fitted.Bounds().Dy()) / d.scale
	x := tl.X + b.TopLeft.X + (b.Width-fw)/2
	y := tl.Y + b.TopLeft.Y + (b.Height-fh)/2
	d.dc.Push()
	d.dc.Translate(x, y)
	d.dc.Scale(1/d.scale, 1/d.scale)
	d.dc.DrawImage(fitted, 0, 0)
	d.dc.Pop()
}

func (d *drawer) text(origin *geo.Point, t svscene.Text, opacity int) {
	if len(t.Lines) == 0 {
		return
	}
	fill := t.Color
	if fill == "" {
		fill = color.Black
	}
	if !setColor(d.dc, fill, opacity) {
		return
	}
	d.dc.SetFontFace(d.n.face(t.FontSize, t.Bold))
	ax := 0.
	switch t.Anchor {
	case "middle":
		ax = .5
	case "end":
		ax = 1
	}
	x := origin.X + t.X
	y := origin.Y + t.Y + float64(t.FontSize)
	for i, line := range t.Lines {
		d.dc.DrawStringAnchored(line, x, y+float64(i)*t.LineHeight, ax, 0)
	}
}

func (d *drawer) link(c *svscene.Cell) {
	route := c.Route
	if len(route) < 2 {
		return
	}
	cs := c.ComputedStyle
	stroke := cs.Stroke
	if stroke == "" {
		stroke = "#707070"
	}
	width := float64(cs.StrokeWidth)
	if width <= 0 {
		width = 1
	}

	data := svg.PolylineData(route)
	if c.Routing == svscene.RoutingCurved {
		data = svg.CurveData(route)
	}
	if setColor(d.dc, stroke, c.Opacity) {
		tracePath(d.dc, data)
		d.dc.SetLineWidth(width)
		setDash(d.dc, c.Dashed, width)
		d.dc.Stroke()
		d.dc.SetDash()
		arrowHead(d.dc, route[len(route)-2], route[len(route)-1], width)
	}

	if len(c.Texts) == 0 {
		return
	}
	at := geo.Route(route).PointAtPercent(float64(c.LabelPosition))
	h := 0.
	for _, t := range c.Texts {
		h += t.Height()
	}
	bg := d.page.Scene.Background
	if bg == "" {
		bg = color.White
	}
	if setColor(d.dc, bg, c.Opacity) {
		d.dc.DrawRectangle(at.X-c.LabelWidth/2-labelPadding, at.Y-h/2-labelPadding, c.LabelWidth+2*labelPadding, h+2*labelPadding)
		d.dc.Fill()
	}
	for _, t := range c.Texts {
		d.text(at, t, c.Opacity)
	}
}

// arrowHead fills a triangle at to pointing away from from, sized like the
// SVG marker.
func arrowHead(dc *gg.Context, from, to *geo.Point, width float64) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	size := 5 * width
	bx, by := to.X-ux*size, to.Y-uy*size
	dc.MoveTo(to.X, to.Y)
	dc.LineTo(bx-uy*size/2, by+ux*size/2)
	dc.LineTo(bx+uy*size/2, by-ux*size/2)
	dc.ClosePath()
	dc.Fill()
}

// tracePath adds absolute SVG path data made of M, L, H, V, C and Z
// commands to the current path. Other commands are skipped with their
// arguments.
func tracePath(dc *gg.Context, data string) {
	tokens := strings.Fields(strings.ReplaceAll(data, ",", " "))
	var cx, cy, sx, sy float64
	next := func(i *int, n int) ([]float64, bool) {
		if *i+n >= len(tokens) {
			return nil, false
		}
		out := make([]float64, n)
		for k := 0; k < n; k++ {
			v, err := strconv.ParseFloat(tokens[*i+1+k], 64)
			if err != nil {
				return nil, false
			}
			out[k] = v
		}
		*i += n
		return out, true
	}
	dc.NewSubPath()
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "M":
			v, ok := next(&i, 2)
			if !ok {
				return
			}
			cx, cy, sx, sy = v[0], v[1], v[0], v[1]
			dc.MoveTo(cx, cy)
		case "L":
			v, ok := next(&i, 2)
			if !ok {
				return
			}
			cx, cy = v[0], v[1]
			dc.LineTo(cx, cy)
		case "H":
			v, ok := next(&i, 1)
			if !ok {
				return
			}
			cx = v[0]
			dc.LineTo(cx, cy)
		case "V":
			v, ok := next(&i, 1)
			if !ok {
				return
			}
			cy = v[0]
			dc.LineTo(cx, cy)
		case "C":
			v, ok := next(&i, 6)
			if !ok {
				return
			}
			dc.CubicTo(v[0], v[1], v[2], v[3], v[4], v[5])
			cx, cy = v[4], v[5]
		case "A":
			v, ok := next(&i, 7)
			if !ok {
				return
			}
			cx, cy = v[5], v[6]
			dc.LineTo(cx, cy)
		case "Z", "z":
			dc.ClosePath()
			cx, cy = sx, sy
		}
	}
}
