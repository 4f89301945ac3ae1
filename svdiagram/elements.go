package svdiagram

import (
	"context"
	"sort"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svlayout"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svshapes"
	"github.com/structview/structview/svworkspace"
)

// foreign reports whether e may not be drawn on v even though v lists it:
// the scoped software system of a container view, the scoped container and
// its software system on a component view, and components on a container
// view.
func (d *Diagram) foreign(v *svworkspace.View, e *svworkspace.Element) bool {
	switch v.Type {
	case svworkspace.ContainerView:
		return e.ID == v.SoftwareSystemID || e.Type == svworkspace.Component
	case svworkspace.ComponentView:
		if e.ID == v.ContainerID {
			return true
		}
		if c := d.ws.Element(v.ContainerID); c != nil && e.ID == c.ParentID {
			return true
		}
	}
	return false
}

// represented is the element whose name and description an element cell
// shows. Instances show the element they are an instance of.
func (d *Diagram) represented(e *svworkspace.Element) *svworkspace.Element {
	var id string
	switch e.Type {
	case svworkspace.SoftwareSystemInstance:
		id = e.SoftwareSystemID
	case svworkspace.ContainerInstance:
		id = e.ContainerID
	default:
		return e
	}
	if base := d.ws.Element(id); base != nil {
		return base
	}
	return e
}

// addElements creates a cell per element of v, keyed by element id.
// Deployment nodes are left to the containment engine.
func (d *Diagram) addElements(ctx context.Context, v *svworkspace.View) map[string]*svscene.Cell {
	cells := make(map[string]*svscene.Cell)
	for _, ev := range v.Elements {
		e := d.ws.Element(ev.ID)
		if e == nil {
			log.Warn(ctx, "view references unknown element", slog.F("element", ev.ID))
			continue
		}
		if e.Type == svworkspace.DeploymentNode {
			continue
		}
		if d.foreign(v, e) {
			log.Info(ctx, "skipping element that does not belong on view", slog.F("element", e.ID), slog.F("type", e.Type))
			continue
		}

		style := d.resolver.Element(e, d.dark)
		shown := d.represented(e)
		content := svshapes.Content{
			Name:        shown.Name,
			Metadata:    d.ws.MetadataText(shown, true),
			Description: shown.Description,
			Icon:        style.Icon,
		}
		c := d.factory.CreateShape(ctx, style.Kind(), e, style, geo.NewPoint(ev.X, ev.Y), content)
		c.ElementView = ev
		if c.URL == "" {
			c.URL = shown.URL
		}
		if _, err := d.scene.AddNode(c); err != nil {
			log.Warn(ctx, "could not add element", slog.F("element", e.ID), slog.Error(err))
			continue
		}
		cells[e.ID] = c
	}
	return cells
}

// needsLayout reports whether v is laid out automatically: it asks for it,
// or none of its elements has been positioned.
func needsLayout(v *svworkspace.View) bool {
	return v.AutomaticLayout != nil || (len(v.Elements) > 0 && !v.IsPositioned())
}

// autoLayout positions cells with graphviz. Failures leave the positions as
// they were.
func (d *Diagram) autoLayout(ctx context.Context, v *svworkspace.View, cells map[string]*svscene.Cell) {
	if !needsLayout(v) || len(cells) == 0 {
		return
	}
	sizes := make(map[string]*geo.Box, len(cells))
	for id, c := range cells {
		sizes[id] = c.Box
	}
	opts := svlayout.OptsFromView(v)
	res, err := svlayout.Layout(ctx, sizes, svlayout.Edges(d.ws, v, sizes), opts)
	if err != nil {
		log.Warn(ctx, "automatic layout failed", slog.Error(err))
		return
	}
	for id, p := range res.Positions {
		if c, ok := cells[id]; ok {
			d.scene.Translate(c, p.X-c.Box.TopLeft.X, p.Y-c.Box.TopLeft.Y)
		}
	}
	if !opts.Vertices {
		return
	}
	for id, vs := range res.Vertices {
		rv := v.RelationshipView(id)
		if rv == nil {
			continue
		}
		rv.Vertices = nil
		for _, p := range vs {
			rv.Vertices = append(rv.Vertices, svworkspace.Vertex{X: p.X, Y: p.Y})
		}
	}
}

func visible(flag *bool) bool {
	return flag != nil && *flag
}

// addBoundaries draws enterprise, software system and container boundaries.
func (d *Diagram) addBoundaries(ctx context.Context, v *svworkspace.View, cells map[string]*svscene.Cell) {
	switch v.Type {
	case svworkspace.SystemLandscapeView, svworkspace.SystemContextView:
		d.addEnterpriseBoundary(ctx, v, cells)
	case svworkspace.ContainerView:
		d.addParentBoundaries(ctx, cells, svworkspace.Container, v.SoftwareSystemID, visible(v.ExternalSoftwareSystemBoundariesVisible))
	case svworkspace.ComponentView:
		d.addParentBoundaries(ctx, cells, svworkspace.Component, v.ContainerID, visible(v.ExternalContainerBoundariesVisible))
	case svworkspace.DynamicView:
		d.addParentBoundaries(ctx, cells, svworkspace.Container, v.ElementID, visible(v.ExternalSoftwareSystemBoundariesVisible))
		d.addParentBoundaries(ctx, cells, svworkspace.Component, v.ElementID, visible(v.ExternalContainerBoundariesVisible))
	}
}

func (d *Diagram) addEnterpriseBoundary(ctx context.Context, v *svworkspace.View, cells map[string]*svscene.Cell) {
	if !d.ws.EnterpriseBoundary(v) {
		return
	}
	if v.EnterpriseBoundaryVisible != nil && !*v.EnterpriseBoundaryVisible {
		return
	}
	var members []*svscene.Cell
	for _, ev := range v.Elements {
		c, ok := cells[ev.ID]
		if !ok {
			continue
		}
		if c.Element.Location == svworkspace.LocationInternal {
			members = append(members, c)
		}
	}
	if len(members) == 0 {
		return
	}
	d.engine.EnterpriseBoundary(ctx, members)
}

// addParentBoundaries draws a boundary around the cells of kind for each
// parent they share. The scoped parent always gets one; other parents only
// when external is set.
func (d *Diagram) addParentBoundaries(ctx context.Context, cells map[string]*svscene.Cell, kind svworkspace.ElementType, scope string, external bool) {
	byParent := make(map[string][]*svscene.Cell)
	for _, c := range cells {
		if c.Element.Type == kind && c.Element.ParentID != "" {
			byParent[c.Element.ParentID] = append(byParent[c.Element.ParentID], c)
		}
	}
	parents := make([]string, 0, len(byParent))
	for id := range byParent {
		parents = append(parents, id)
	}
	sort.Strings(parents)
	for _, id := range parents {
		if id != scope && !external {
			continue
		}
		parent := d.ws.Element(id)
		if parent == nil {
			continue
		}
		members := byParent[id]
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		d.engine.Boundary(ctx, parent, members)
	}
}

// addGroups nests element cells in their groups, in view order.
func (d *Diagram) addGroups(ctx context.Context, v *svworkspace.View, cells map[string]*svscene.Cell) {
	if !d.ws.Groups(v) {
		return
	}
	for _, ev := range v.Elements {
		if c, ok := cells[ev.ID]; ok {
			d.engine.AddToGroup(ctx, c)
		}
	}
}
