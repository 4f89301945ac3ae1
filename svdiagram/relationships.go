package svdiagram

import (
	"context"
	"math"
	"strconv"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svshapes"
	"github.com/structview/structview/svworkspace"
)

// SiblingGap separates relationships drawn between the same two elements.
const SiblingGap = 100.

// addRelationships draws the relationships of v and spreads apart those
// sharing both ends.
func (d *Diagram) addRelationships(ctx context.Context, v *svworkspace.View) {
	rvs := v.Relationships
	if v.Type == svworkspace.DynamicView {
		rvs = d.ws.SortedDynamicRelationships(v)
	}
	for _, rv := range rvs {
		r := d.ws.Relationship(rv.ID)
		if r == nil {
			log.Warn(ctx, "view references unknown relationship", slog.F("relationship", rv.ID))
			continue
		}
		src, dst := d.scene.ElementCell(r.SourceID), d.scene.ElementCell(r.DestinationID)
		if v.Type == svworkspace.DynamicView && rv.Response {
			src, dst = dst, src
		}
		if src == nil || dst == nil {
			log.Warn(ctx, "skipping relationship with an end not on the view",
				slog.F("relationship", r.ID), slog.F("source", r.SourceID), slog.F("destination", r.DestinationID))
			continue
		}
		c := d.newLink(v, r, rv, src, dst)
		if _, err := d.scene.AddLink(c); err != nil {
			log.Warn(ctx, "could not add relationship", slog.F("relationship", r.ID), slog.Error(err))
		}
	}
	d.spreadSiblings()
	d.scene.RerouteAll()
}

// linkID is unique in the scene even when a dynamic view uses a
// relationship more than once.
func (d *Diagram) linkID(rv *svworkspace.RelationshipView) string {
	id := rv.ID
	if d.scene.Cell(id) != nil {
		id += "/" + rv.Order
	}
	for n := 2; d.scene.Cell(id) != nil; n++ {
		id = rv.ID + "/" + rv.Order + "/" + strconv.Itoa(n)
	}
	return id
}

func (d *Diagram) newLink(v *svworkspace.View, r *svworkspace.Relationship, rv *svworkspace.RelationshipView, src, dst *svscene.Cell) *svscene.Cell {
	style := d.resolver.Relationship(r, d.dark)

	desc := r.Description
	if rv.Description != "" {
		desc = rv.Description
	}
	if v.Type == svworkspace.DynamicView && rv.Order != "" {
		desc = rv.Order + ": " + desc
	}
	var texts []svscene.Text
	if desc != "" {
		texts = append(texts, d.factory.TextBlock(desc, style.FontSize, false, float64(style.Width), style.Color))
	}
	if md := d.ws.RelationshipMetadataText(r); md != "" {
		texts = append(texts, d.factory.TextBlock(md, svshapes.MetadataFontSize(style.FontSize), false, float64(style.Width), style.Color))
	}
	total, width := 0., 0.
	for _, t := range texts {
		total += t.Height()
		width = math.Max(width, d.factory.TextWidth(t))
	}
	y := -total / 2
	for i := range texts {
		texts[i].Anchor = "middle"
		texts[i].Y = y
		y += texts[i].Height()
	}

	routing := style.Routing
	if rv.Routing != "" {
		routing = rv.Routing
	}
	position := style.Position
	if rv.Position != nil {
		position = *rv.Position
	}
	var vertices []*geo.Point
	for _, vx := range rv.Vertices {
		vertices = append(vertices, geo.NewPoint(vx.X, vx.Y))
	}

	return &svscene.Cell{
		ID:               d.linkID(rv),
		Role:             svscene.RoleRelationship,
		Source:           src,
		Target:           dst,
		Relationship:     r,
		RelationshipView: rv,
		Vertices:         vertices,
		Routing:          routing,
		Jump:             style.Jump,
		Dashed:           style.Style,
		LabelPosition:    position,
		LabelWidth:       width,
		Texts:            texts,
		Interactive:      true,
		URL:              r.URL,
		ComputedStyle: svscene.ComputedStyle{
			Stroke:      style.Color,
			Color:       style.Color,
			StrokeWidth: style.Thickness,
			Opacity:     style.Opacity,
			FontSize:    style.FontSize,
			StyleKey:    style.Key(),
			Tags:        style.Tags,
		},
	}
}

type pairKey struct {
	a, b *svscene.Cell
}

// spreadSiblings bends relationships that share both ends so they do not
// overlap. Siblings are indexed in drawing order regardless of direction;
// those with their own vertices keep them but still take an index.
func (d *Diagram) spreadSiblings() {
	var order []pairKey
	siblings := make(map[pairKey][]*svscene.Cell)
	for _, l := range d.scene.Links() {
		k := canonicalPair(l.Source, l.Target)
		if _, ok := siblings[k]; !ok {
			order = append(order, k)
		}
		siblings[k] = append(siblings[k], l)
	}
	for _, k := range order {
		links := siblings[k]
		if len(links) < 2 {
			continue
		}
		from, to := k.a.Box.Center(), k.b.Box.Center()
		dx, dy := to.X-from.X, to.Y-from.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length, dx/length
		mid := geo.NewPoint((from.X+to.X)/2, (from.Y+to.Y)/2)
		for i, l := range links {
			if len(l.Vertices) > 0 {
				continue
			}
			off := SiblingOffset(i, len(links))
			if off == 0 {
				continue
			}
			l.Vertices = []*geo.Point{geo.NewPoint(mid.X+nx*off, mid.Y+ny*off)}
		}
	}
}

// canonicalPair orders the ends of a link so both directions share a key.
func canonicalPair(a, b *svscene.Cell) pairKey {
	if b.ID < a.ID {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// SiblingOffset is the perpendicular offset of sibling i of n. An odd count
// runs 0, +gap, -gap, +2gap, -2gap and so on; an even count straddles the
// direct line at +gap/2, -gap/2, +3gap/2, -3gap/2.
func SiblingOffset(i, n int) float64 {
	if n%2 == 1 {
		if i == 0 {
			return 0
		}
		k := float64((i + 1) / 2)
		if i%2 == 1 {
			return k * SiblingGap
		}
		return -k * SiblingGap
	}
	mag := float64(2*(i/2)+1) * SiblingGap / 2
	if i%2 == 0 {
		return mag
	}
	return -mag
}
