// Package svcontain nests scene cells into groups, boundaries and deployment
// nodes and sizes containers around their members.
package svcontain

import (
	"context"
	"sort"
	"strings"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svshapes"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svworkspace"
)

const EnterpriseBoundaryID = "enterprise"

// Engine is owned by one render pass.
type Engine struct {
	scene    *svscene.Scene
	factory  *svshapes.Factory
	resolver *svstyle.Resolver
	ws       *svworkspace.Workspace
	view     *svworkspace.View
	dark     bool

	separator             string
	groupPadding          float64
	deploymentNodePadding float64
	boundaryPadding       float64

	groups map[string]*svscene.Cell
}

func New(ctx context.Context, scene *svscene.Scene, factory *svshapes.Factory, resolver *svstyle.Resolver, ws *svworkspace.Workspace, view *svworkspace.View, dark bool) *Engine {
	return &Engine{
		scene:                 scene,
		factory:               factory,
		resolver:              resolver,
		ws:                    ws,
		view:                  view,
		dark:                  dark,
		separator:             ws.GroupSeparator(view),
		groupPadding:          float64(ws.GroupPadding(ctx, view)),
		deploymentNodePadding: float64(ws.DeploymentNodePadding(ctx, view)),
		boundaryPadding:       float64(ws.BoundaryPadding(ctx, view)),
		groups:                make(map[string]*svscene.Cell),
	}
}

// Scope is the namespace groups of e are registered under.
func (eng *Engine) Scope(e *svworkspace.Element) string {
	if e.ParentID != "" {
		return e.ParentID
	}
	switch eng.view.Type {
	case svworkspace.SystemLandscapeView, svworkspace.SystemContextView:
		if e.Location == svworkspace.LocationExternal {
			return svworkspace.LocationExternal
		}
		return svworkspace.LocationInternal
	case svworkspace.DeploymentView:
		return e.Environment
	}
	return ""
}

func groupKey(name, scope string) string {
	return scope + "_" + name
}

// Padding returns the padding kept around the members of c.
func (eng *Engine) Padding(c *svscene.Cell) float64 {
	switch {
	case c.Role == svscene.RoleGroup:
		return eng.groupPadding
	case c.Role == svscene.RoleBoundary:
		return eng.boundaryPadding
	default:
		return eng.deploymentNodePadding
	}
}

// Embed nests child in parent and resizes parent and its ancestors.
func (eng *Engine) Embed(ctx context.Context, parent, child *svscene.Cell) {
	if err := eng.scene.Embed(parent, child); err != nil {
		log.Warn(ctx, "could not embed cell", slog.F("parent", parent.ID), slog.F("child", child.ID), slog.Error(err))
		return
	}
	eng.Reposition(ctx, parent)
}

// Reposition fits parent around its embedded cells plus padding and room for
// its label, then does the same for every ancestor.
func (eng *Engine) Reposition(ctx context.Context, parent *svscene.Cell) {
	for c := parent; c != nil; c = c.Parent {
		eng.fit(c)
	}
}

func (eng *Engine) fit(c *svscene.Cell) {
	members := c.Embeds
	if len(members) == 0 {
		return
	}
	union := svscene.BoundingBox(members)
	p := eng.Padding(c)
	box := union.Expand(p, p, p+svshapes.ContainerLabelHeight(c), p)
	c.SetPosition(box.TopLeft.X, box.TopLeft.Y)
	c.Resize(box.Width, box.Height)
	svshapes.PlaceContainerLabel(c)
}

// RepositionAll fits every container, deepest first.
func (eng *Engine) RepositionAll(ctx context.Context) {
	var containers []*svscene.Cell
	for _, c := range eng.scene.Nodes() {
		if c.IsContainer() {
			containers = append(containers, c)
		}
	}
	sort.SliceStable(containers, func(i, j int) bool {
		return containers[i].Depth() > containers[j].Depth()
	})
	for _, c := range containers {
		eng.fit(c)
	}
}

func (eng *Engine) newContainer(ctx context.Context, id string, role svscene.Role, e *svworkspace.Element, style svstyle.ElementStyle, name, metadata string) *svscene.Cell {
	box := geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	c := &svscene.Cell{
		ID:            id,
		Role:          role,
		Box:           box,
		Outline:       shape.NewShape(style.Kind(), box.Copy()),
		Element:       e,
		ComputedStyle: svshapes.ComputedStyle(style.Kind(), style),
	}
	eng.factory.ContainerLabel(c, name, metadata, style.Icon, style)
	if _, err := eng.scene.AddNode(c); err != nil {
		log.Warn(ctx, "could not add container", slog.F("id", id), slog.Error(err))
		return eng.scene.Cell(id)
	}
	return c
}

// FindOrCreateGroup returns the group cell for name in scope, creating it and
// any parent groups it is nested in.
func (eng *Engine) FindOrCreateGroup(ctx context.Context, name, scope string) *svscene.Cell {
	key := groupKey(name, scope)
	if g, ok := eng.groups[key]; ok {
		return g
	}

	var parent *svscene.Cell
	label := name
	if eng.separator != "" {
		if i := strings.LastIndex(name, eng.separator); i > 0 {
			parent = eng.FindOrCreateGroup(ctx, name[:i], scope)
			label = name[i+len(eng.separator):]
		}
	}

	style := eng.resolver.Group(name, eng.dark)
	g := eng.newContainer(ctx, "group:"+key, svscene.RoleGroup, svstyle.GroupElement(name), style, label, "")
	eng.groups[key] = g
	if parent != nil {
		if err := eng.scene.Embed(parent, g); err != nil {
			log.Warn(ctx, "could not nest group", slog.F("group", name), slog.Error(err))
		}
	}
	return g
}

// FindRootGroup returns the outermost group of name in scope, or nil.
func (eng *Engine) FindRootGroup(name, scope string) *svscene.Cell {
	root := name
	if eng.separator != "" {
		if i := strings.Index(name, eng.separator); i > 0 {
			root = name[:i]
		}
	}
	return eng.groups[groupKey(root, scope)]
}

// Groups returns the group cells created so far.
func (eng *Engine) Groups() map[string]*svscene.Cell {
	return eng.groups
}

// AddToGroup moves c into the group of its element. When c was nested in a
// boundary or node, the root group takes its place there.
func (eng *Engine) AddToGroup(ctx context.Context, c *svscene.Cell) {
	e := c.Element
	if e == nil || e.Group == "" {
		return
	}
	scope := eng.Scope(e)
	previous := c.Parent
	g := eng.FindOrCreateGroup(ctx, e.Group, scope)
	eng.Embed(ctx, g, c)
	if previous != nil {
		if root := eng.FindRootGroup(e.Group, scope); root != nil && root != previous {
			eng.Embed(ctx, previous, root)
		}
	}
}

// Boundary draws a boundary for e around members.
func (eng *Engine) Boundary(ctx context.Context, e *svworkspace.Element, members []*svscene.Cell) *svscene.Cell {
	style := eng.resolver.Boundary(e, eng.dark)
	b := eng.newContainer(ctx, "boundary:"+e.ID, svscene.RoleBoundary, e, style, e.Name, eng.ws.MetadataText(e, false))
	for _, m := range members {
		if err := eng.scene.Embed(b, m); err != nil {
			log.Warn(ctx, "could not embed in boundary", slog.F("boundary", e.ID), slog.F("member", m.ID), slog.Error(err))
		}
	}
	eng.Reposition(ctx, b)
	return b
}

// EnterpriseBoundary draws the enterprise boundary around members.
func (eng *Engine) EnterpriseBoundary(ctx context.Context, members []*svscene.Cell) *svscene.Cell {
	name := "Enterprise"
	if eng.ws.Model.Enterprise != nil && eng.ws.Model.Enterprise.Name != "" {
		name = eng.ws.Model.Enterprise.Name
	}
	e := &svworkspace.Element{ID: EnterpriseBoundaryID, Type: svworkspace.Enterprise, Name: name}
	style := eng.resolver.Boundary(e, eng.dark)
	b := eng.newContainer(ctx, "boundary:"+EnterpriseBoundaryID, svscene.RoleBoundary, nil, style, name, "["+eng.ws.Terminology(svworkspace.Enterprise)+"]")
	for _, m := range members {
		if err := eng.scene.Embed(b, m); err != nil {
			log.Warn(ctx, "could not embed in enterprise boundary", slog.F("member", m.ID), slog.Error(err))
		}
	}
	eng.Reposition(ctx, b)
	return b
}
