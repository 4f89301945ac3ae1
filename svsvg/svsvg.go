// Package svsvg renders a scene as SVG.
//
// Interactive renders carry the markup a host needs to hit test and move
// cells: data-cell-id and data-interactive attributes, a move cursor, the
// selected class and a navigation group per linked element. Exports strip
// that markup again.
package svsvg

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/svg"
	"github.com/structview/structview/svscene"
)

const (
	// Classes and attributes of interaction markup.
	ClassCell       = "cell"
	ClassSelected   = "selected"
	ClassSelection  = "selection"
	ClassNavigation = "navigation"
	AttrCellID      = "data-cell-id"
	AttrInteractive = "data-interactive"

	labelPadding = 5.
	jumpRadius   = 8.
)

type RenderOpts struct {
	// Salt makes element ids unique per render pass. It is usually the
	// scene ID.
	Salt string

	Interactive bool

	// Image maps an icon or image href to the href written out.
	Image func(href string) string

	// Hide leaves cells with these roles out.
	Hide map[svscene.Role]bool

	// ViewBox overrides the page. Defaults to the scene size, or the content
	// bounds when the scene has no size.
	ViewBox *geo.Box
}

// IDPrefix derives the svg-<8 hex> id prefix from a salt.
func IDPrefix(salt string) string {
	hex := strings.ReplaceAll(salt, "-", "")
	if len(hex) >= 8 && isHex(hex[:8]) {
		return "svg-" + strings.ToLower(hex[:8])
	}
	h := fnv.New32a()
	h.Write([]byte(salt))
	return fmt.Sprintf("svg-%08x", h.Sum32())
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// CellID is the element id written for a cell.
func CellID(prefix, id string) string {
	return prefix + "-" + base64.RawURLEncoding.EncodeToString([]byte(id))
}

func Render(s *svscene.Scene, opts *RenderOpts) ([]byte, error) {
	if opts == nil {
		opts = &RenderOpts{}
	}
	salt := opts.Salt
	if salt == "" {
		salt = s.ID
	}
	prefix := IDPrefix(salt)

	vb := opts.ViewBox
	if vb == nil {
		if s.Width > 0 && s.Height > 0 {
			vb = geo.NewBox(geo.NewPoint(0, 0), s.Width, s.Height)
		} else {
			vb = s.ContentBounds()
		}
	}

	r := &renderer{
		scene:   s,
		opts:    opts,
		prefix:  prefix,
		markers: make(map[string]string),
	}

	body := &bytes.Buffer{}
	for _, c := range DrawOrder(s.Cells()) {
		if opts.Hide[c.Role] {
			continue
		}
		var err error
		if c.IsLink() {
			err = r.drawLink(body, c)
		} else {
			err = r.drawNode(body, c)
		}
		if err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, `<?xml version="1.0" encoding="utf-8"?>`+"\n")
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" id="%s" width="%s" height="%s" viewBox="%s %s %s %s">`,
		prefix, num(vb.Width), num(vb.Height), num(vb.TopLeft.X), num(vb.TopLeft.Y), num(vb.Width), num(vb.Height))
	fontName := s.FontName
	if fontName == "" {
		fontName = "Arial"
	}
	fmt.Fprintf(buf, `<style type="text/css"><![CDATA[#%s text { font-family: %s, sans-serif; } #%s .%s > .shape { stroke-width: 4; }]]></style>`,
		prefix, svg.EscapeText(fontName), prefix, ClassSelected)
	r.writeDefs(buf)
	if s.Background != "" {
		fmt.Fprintf(buf, `<rect class="background" x="%s" y="%s" width="%s" height="%s" fill="%s"></rect>`,
			num(vb.TopLeft.X), num(vb.TopLeft.Y), num(vb.Width), num(vb.Height), s.Background)
	}
	buf.Write(body.Bytes())
	buf.WriteString("</svg>")
	return buf.Bytes(), nil
}

type renderer struct {
	scene  *svscene.Scene
	opts   *RenderOpts
	prefix string

	// markers maps a colour to its arrowhead marker id.
	markers map[string]string

	// drawn holds the segments of links already drawn, for jumps.
	drawn []geo.Segment
}

func drawRank(c *svscene.Cell) int {
	switch {
	case c.IsLink():
		return 2
	case c.IsContainer():
		return 0
	case c.Role == svscene.RoleTitle, c.Role == svscene.RoleDescription, c.Role == svscene.RoleMetadata, c.Role == svscene.RoleLogo:
		return 3
	default:
		return 1
	}
}

// DrawOrder puts containers first, outermost first, then elements, links and
// diagram chrome. Scene order is kept otherwise.
func DrawOrder(cells []*svscene.Cell) []*svscene.Cell {
	out := append([]*svscene.Cell(nil), cells...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := drawRank(out[i]), drawRank(out[j])
		if ri != rj {
			return ri < rj
		}
		if ri == 0 {
			return out[i].Depth() < out[j].Depth()
		}
		return false
	})
	return out
}

func num(f float64) string {
	return fmt.Sprint(math.Round(f*100) / 100)
}

func opacity(c *svscene.Cell) string {
	if c.Opacity >= 100 || c.Opacity < 0 {
		return ""
	}
	return fmt.Sprintf(` opacity="%s"`, num(float64(c.Opacity)/100))
}

func (r *renderer) openCell(w io.Writer, c *svscene.Cell, class string) {
	classes := []string{ClassCell, class}
	if r.opts.Interactive && c.Selected {
		classes = append(classes, ClassSelected)
	}
	fmt.Fprintf(w, `<g id="%s" class="%s"%s`, CellID(r.prefix, c.ID), strings.Join(classes, " "), opacity(c))
	if r.opts.Interactive {
		fmt.Fprintf(w, ` %s="%s"`, AttrCellID, svg.EscapeText(c.ID))
		if c.Interactive {
			fmt.Fprintf(w, ` %s="true" style="cursor: move"`, AttrInteractive)
		}
	}
	fmt.Fprint(w, ">")
	if c.Tooltip != "" {
		fmt.Fprintf(w, "<title>%s</title>", svg.EscapeText(c.Tooltip))
	}
}

func (r *renderer) href(h string) string {
	if r.opts.Image != nil {
		return r.opts.Image(h)
	}
	return h
}

func (r *renderer) drawNode(w io.Writer, c *svscene.Cell) error {
	if c.Box == nil {
		return fmt.Errorf("cell %q has no box", c.ID)
	}
	r.openCell(w, c, string(c.Role))
	tl := c.Box.TopLeft
	cs := c.ComputedStyle

	switch c.Role {
	case svscene.RoleImage, svscene.RoleLogo:
		if c.Icon != nil {
			r.drawImage(w, tl, c.Icon)
		}
	default:
		if c.Outline != nil {
			fill := cs.Fill
			if fill == "" || ((c.Role == svscene.RoleGroup || c.Role == svscene.RoleBoundary) && fill == r.scene.Background) {
				fill = "none"
			}
			stroke := cs.Stroke
			if stroke == "" {
				stroke = "none"
			}
			dash := svg.StrokeDash(cs.Border, float64(cs.StrokeWidth))
			dashAttr := ""
			if dash != "" {
				dashAttr = fmt.Sprintf(` stroke-dasharray="%s"`, dash)
			}
			fmt.Fprint(w, `<g class="shape">`)
			for i, d := range c.Outline.GetSVGPathData() {
				f := fill
				if i > 0 {
					f = "none"
				}
				fmt.Fprintf(w, `<path d="%s" fill="%s" stroke="%s" stroke-width="%d"%s></path>`, d, f, stroke, cs.StrokeWidth, dashAttr)
			}
			fmt.Fprint(w, `</g>`)
		}
		if c.Icon != nil {
			r.drawImage(w, tl, c.Icon)
		}
	}
	for _, t := range c.Texts {
		drawText(w, tl, t)
	}

	if r.opts.Interactive {
		if c.Selected {
			b := c.Box
			fmt.Fprintf(w, `<rect class="%s" x="%s" y="%s" width="%s" height="%s" fill="none" stroke="#1e90ff" stroke-width="2" stroke-dasharray="6,4"></rect>`,
				ClassSelection, num(b.TopLeft.X-5), num(b.TopLeft.Y-5), num(b.Width+10), num(b.Height+10))
		}
		if c.URL != "" {
			drawNavigation(w, c)
		}
	}
	fmt.Fprint(w, "</g>")
	return nil
}

func (r *renderer) drawImage(w io.Writer, tl *geo.Point, icon *svscene.Icon) {
	if icon.Box == nil || icon.Href == "" {
		return
	}
	b := icon.Box
	fmt.Fprintf(w, `<image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet"></image>`,
		svg.EscapeText(r.href(icon.Href)), num(tl.X+b.TopLeft.X), num(tl.Y+b.TopLeft.Y), num(b.Width), num(b.Height))
}

// drawText writes t relative to origin. Lines sit on baselines one line
// height apart, starting at the text's top.
func drawText(w io.Writer, origin *geo.Point, t svscene.Text) {
	if len(t.Lines) == 0 {
		return
	}
	anchor := t.Anchor
	if anchor == "" {
		anchor = "start"
	}
	weight := ""
	if t.Bold {
		weight = ` font-weight="bold"`
	}
	fill := t.Color
	if fill == "" {
		fill = "#000000"
	}
	x := origin.X + t.X
	y := origin.Y + t.Y + float64(t.FontSize)
	fmt.Fprintf(w, `<text x="%s" y="%s" font-size="%d" fill="%s" text-anchor="%s"%s>`, num(x), num(y), t.FontSize, fill, anchor, weight)
	for i, line := range t.Lines {
		dy := t.LineHeight
		if i == 0 {
			dy = 0
		}
		escaped := svg.EscapeText(line)
		if escaped == "" {
			escaped = " "
		}
		fmt.Fprintf(w, `<tspan x="%s" dy="%s">%s</tspan>`, num(x), num(dy), escaped)
	}
	fmt.Fprint(w, "</text>")
}

// drawNavigation adds a link icon to the top right of c.
func drawNavigation(w io.Writer, c *svscene.Cell) {
	b := c.Box
	x, y := b.Right()-30, b.TopLeft.Y+6
	fmt.Fprintf(w, `<g class="%s"><a href="%s" xlink:href="%[2]s">`, ClassNavigation, svg.EscapeText(c.URL))
	fmt.Fprintf(w, `<rect x="%s" y="%s" width="24" height="24" rx="4" fill="#ffffff" fill-opacity="0.8"></rect>`, num(x), num(y))
	fmt.Fprintf(w, `<path d="M %s %s h 8 M %s %s h 8 M %s %s v 8" stroke="#444444" stroke-width="2" fill="none"></path>`,
		num(x+6), num(y+12), num(x+10), num(y+8), num(x+18), num(y+8))
	fmt.Fprint(w, `</a></g>`)
}

func (r *renderer) marker(color string) string {
	if id, ok := r.markers[color]; ok {
		return id
	}
	id := fmt.Sprintf("%s-arrow-%d", r.prefix, len(r.markers))
	r.markers[color] = id
	return id
}

func (r *renderer) writeDefs(w io.Writer) {
	if len(r.markers) == 0 {
		return
	}
	colors := make([]string, 0, len(r.markers))
	for c := range r.markers {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		return r.markers[colors[i]] < r.markers[colors[j]]
	})
	fmt.Fprint(w, "<defs>")
	for _, c := range colors {
		fmt.Fprintf(w, `<marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="5" markerHeight="5" orient="auto-start-reverse">`, r.markers[c])
		fmt.Fprintf(w, `<path d="M 0 0 L 10 5 L 0 10 z" fill="%s"></path></marker>`, c)
	}
	fmt.Fprint(w, "</defs>")
}

func (r *renderer) drawLink(w io.Writer, c *svscene.Cell) error {
	route := c.Route
	if len(route) < 2 {
		return nil
	}
	cs := c.ComputedStyle
	stroke := cs.Stroke
	if stroke == "" {
		stroke = "#707070"
	}

	var d string
	switch {
	case c.Routing == svscene.RoutingCurved:
		d = svg.CurveData(route)
	case c.Jump:
		d = jumpData(route, r.drawn)
	default:
		d = svg.PolylineData(route)
	}
	for i := 0; i < len(route)-1; i++ {
		r.drawn = append(r.drawn, *geo.NewSegment(route[i], route[i+1]))
	}

	r.openCell(w, c, string(c.Role))
	dashAttr := ""
	if dash := svg.StrokeDash(c.Dashed, float64(cs.StrokeWidth)); dash != "" {
		dashAttr = fmt.Sprintf(` stroke-dasharray="%s"`, dash)
	}
	fmt.Fprintf(w, `<path class="connection" d="%s" fill="none" stroke="%s" stroke-width="%d"%s marker-end="url(#%s)"></path>`,
		d, stroke, cs.StrokeWidth, dashAttr, r.marker(stroke))

	if len(c.Texts) > 0 {
		at := geo.Route(route).PointAtPercent(float64(c.LabelPosition))
		h := 0.
		for _, t := range c.Texts {
			h += t.Height()
		}
		bg := r.scene.Background
		if bg == "" {
			bg = "#ffffff"
		}
		fmt.Fprintf(w, `<rect class="label" x="%s" y="%s" width="%s" height="%s" fill="%s"></rect>`,
			num(at.X-c.LabelWidth/2-labelPadding), num(at.Y-h/2-labelPadding), num(c.LabelWidth+2*labelPadding), num(h+2*labelPadding), bg)
		for _, t := range c.Texts {
			drawText(w, at, t)
		}
	}
	fmt.Fprint(w, "</g>")
	return nil
}

// jumpData draws route with a small arc wherever it crosses a segment in
// under.
func jumpData(route []*geo.Point, under []geo.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s", num(route[0].X), num(route[0].Y))
	for i := 0; i < len(route)-1; i++ {
		seg := geo.NewSegment(route[i], route[i+1])
		length := seg.Length()
		if length == 0 {
			continue
		}
		ux, uy := (seg.End.X-seg.Start.X)/length, (seg.End.Y-seg.Start.Y)/length

		var cuts []float64
		for _, o := range under {
			for _, p := range seg.Intersections(o) {
				dist := seg.Start.Distance(p)
				if dist > jumpRadius && dist < length-jumpRadius {
					cuts = append(cuts, dist)
				}
			}
		}
		sort.Float64s(cuts)
		last := -jumpRadius * 2
		for _, dist := range cuts {
			if dist-last < jumpRadius*2 {
				continue
			}
			last = dist
			sx, sy := seg.Start.X+ux*(dist-jumpRadius), seg.Start.Y+uy*(dist-jumpRadius)
			ex, ey := seg.Start.X+ux*(dist+jumpRadius), seg.Start.Y+uy*(dist+jumpRadius)
			fmt.Fprintf(&b, " L %s %s A %s %s 0 0 1 %s %s", num(sx), num(sy), num(jumpRadius), num(jumpRadius), num(ex), num(ey))
		}
		fmt.Fprintf(&b, " L %s %s", num(seg.End.X), num(seg.End.Y))
	}
	return b.String()
}
