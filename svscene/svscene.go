// Package svscene is the in-memory scene graph a diagram is rendered into.
// Cells are nodes or links; nodes may embed other cells.
package svscene

import (
	"fmt"
	"math"
	"sort"

	"oss.terrastruct.com/util-go/go2"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svworkspace"
)

type Kind int

const (
	KindNode Kind = iota
	KindLink
)

// Role says what a cell represents.
type Role string

const (
	RoleElement      Role = "element"
	RoleRelationship Role = "relationship"
	RoleBoundary     Role = "boundary"
	RoleGroup        Role = "group"
	RoleTitle        Role = "title"
	RoleDescription  Role = "description"
	RoleMetadata     Role = "metadata"
	RoleLogo         Role = "logo"
	RoleImage        Role = "image"
	RolePlaceholder  Role = "placeholder"
)

// Opaque is the opacity of a fully visible cell.
const Opaque = 100

// ComputedStyle is the final presentation of a cell.
type ComputedStyle struct {
	Fill        string
	Stroke      string
	Color       string
	StrokeWidth int

	// Opacity is the resolved opacity in [0,100]. Cell.Opacity may fade below it.
	// Cells not built from a resolved style use Opaque.
	Opacity  int
	Border   string
	FontSize int
	Shape    shape.Kind

	// StyleKey identifies the resolved style the cell was built from.
	StyleKey string
	Tags     []string
}

// Text is a block of wrapped lines. X and Y are relative to the top left of
// the owning cell's box; Y is the top of the first line.
type Text struct {
	Lines      []string
	X          float64
	Y          float64
	FontSize   int
	LineHeight float64
	Bold       bool
	Color      string

	// Anchor is start, middle or end.
	Anchor string
}

func (t Text) Height() float64 {
	return float64(len(t.Lines)) * t.LineHeight
}

type Icon struct {
	Href string
	// Box is relative to the owning cell's box.
	Box *geo.Box
}

type Cell struct {
	ID   string
	Kind Kind
	Role Role

	Box     *geo.Box
	Outline shape.Shape

	Texts []Text
	Icon  *Icon

	ComputedStyle ComputedStyle

	// Opacity is the current opacity in [0,100].
	Opacity int

	Element          *svworkspace.Element
	ElementView      *svworkspace.ElementView
	Relationship     *svworkspace.Relationship
	RelationshipView *svworkspace.RelationshipView

	Parent *Cell
	Embeds []*Cell

	Source   *Cell
	Target   *Cell
	Vertices []*geo.Point

	// Route is the drawn path from source border to target border.
	Route   []*geo.Point
	Routing string
	Jump    bool
	Dashed  string

	// LabelPosition is the label location along the route, in percent.
	LabelPosition int
	LabelWidth    float64

	// Interactive cells can be selected and moved.
	Interactive bool
	Selected    bool
	URL         string
	Tooltip     string
}

func (c *Cell) IsNode() bool {
	return c.Kind == KindNode
}

func (c *Cell) IsLink() bool {
	return c.Kind == KindLink
}

func (c *Cell) IsContainer() bool {
	return c.Role == RoleGroup || c.Role == RoleBoundary || (c.Element != nil && c.Element.Type == svworkspace.DeploymentNode)
}

// Position is the top left corner of the cell's box.
func (c *Cell) Position() *geo.Point {
	return c.Box.TopLeft
}

// SetPosition moves the cell so its top left is at (x, y), without moving
// embedded cells.
func (c *Cell) SetPosition(x, y float64) {
	c.Box.TopLeft = geo.NewPoint(x, y)
	c.syncOutline()
	c.syncElementView()
}

// Resize changes the cell's size, keeping its top left.
func (c *Cell) Resize(w, h float64) {
	c.Box.Width = w
	c.Box.Height = h
	c.syncOutline()
}

func (c *Cell) syncOutline() {
	if c.Outline != nil {
		c.Outline = shape.NewShape(c.Outline.GetKind(), c.Box.Copy())
	}
}

func (c *Cell) syncElementView() {
	if c.ElementView != nil {
		c.ElementView.X = math.Round(c.Box.TopLeft.X)
		c.ElementView.Y = math.Round(c.Box.TopLeft.Y)
	}
}

func (c *Cell) String() string {
	return fmt.Sprintf("%s(%s)", c.Role, c.ID)
}

// Scene holds the cells of one render pass in z order.
type Scene struct {
	// ID salts identifiers written into rendered output.
	ID         string
	Background string
	FontName   string

	// Width and Height are the page size; zero means fit to content.
	Width  float64
	Height float64

	cells []*Cell
	byID  map[string]*Cell
}

func New(id string) *Scene {
	return &Scene{
		ID:   id,
		byID: make(map[string]*Cell),
	}
}

// Clear removes every cell.
func (s *Scene) Clear() {
	s.cells = nil
	s.byID = make(map[string]*Cell)
	s.Width = 0
	s.Height = 0
}

// add registers c. A zero computed opacity is taken as unset.
func (s *Scene) add(c *Cell) *Cell {
	c.Opacity = c.ComputedStyle.Opacity
	s.cells = append(s.cells, c)
	s.byID[c.ID] = c
	return c
}

// AddNode adds a node. Its ID must be unique in the scene.
func (s *Scene) AddNode(c *Cell) (*Cell, error) {
	if _, ok := s.byID[c.ID]; ok {
		return nil, fmt.Errorf("duplicate cell %q", c.ID)
	}
	c.Kind = KindNode
	if c.Box == nil {
		return nil, fmt.Errorf("cell %q has no box", c.ID)
	}
	return s.add(c), nil
}

// AddLink adds a link between two nodes already in the scene.
func (s *Scene) AddLink(c *Cell) (*Cell, error) {
	if _, ok := s.byID[c.ID]; ok {
		return nil, fmt.Errorf("duplicate cell %q", c.ID)
	}
	if c.Source == nil || c.Target == nil {
		return nil, fmt.Errorf("link %q is missing an endpoint", c.ID)
	}
	c.Kind = KindLink
	if c.Role == "" {
		c.Role = RoleRelationship
	}
	if c.Box == nil {
		c.Box = geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	}
	return s.add(c), nil
}

func (s *Scene) Cell(id string) *Cell {
	return s.byID[id]
}

// Cells returns every cell in z order.
func (s *Scene) Cells() []*Cell {
	return s.cells
}

func (s *Scene) Nodes() []*Cell {
	return go2.Filter(s.cells, (*Cell).IsNode)
}

func (s *Scene) Links() []*Cell {
	return go2.Filter(s.cells, (*Cell).IsLink)
}

// Elements returns the nodes that represent view elements.
func (s *Scene) Elements() []*Cell {
	return go2.Filter(s.cells, func(c *Cell) bool {
		return c.IsNode() && c.ElementView != nil
	})
}

// ElementCell returns the node drawn for element id.
func (s *Scene) ElementCell(id string) *Cell {
	for _, c := range s.cells {
		if c.IsNode() && c.ElementView != nil && c.ElementView.ID == id {
			return c
		}
	}
	return nil
}

// LinkFor returns the link drawn for rv.
func (s *Scene) LinkFor(rv *svworkspace.RelationshipView) *Cell {
	for _, c := range s.cells {
		if c.IsLink() && c.RelationshipView == rv {
			return c
		}
	}
	return nil
}

// ConnectedLinks returns links with c as source or target.
func (s *Scene) ConnectedLinks(c *Cell) []*Cell {
	return go2.Filter(s.cells, func(l *Cell) bool {
		return l.IsLink() && (l.Source == c || l.Target == c)
	})
}

// Remove deletes c, its embedded cells and every link attached to any of them.
func (s *Scene) Remove(c *Cell) {
	doomed := map[*Cell]bool{}
	var mark func(*Cell)
	mark = func(c *Cell) {
		doomed[c] = true
		for _, e := range c.Embeds {
			mark(e)
		}
	}
	mark(c)
	for _, l := range s.cells {
		if l.IsLink() && (doomed[l.Source] || doomed[l.Target]) {
			doomed[l] = true
		}
	}
	if c.Parent != nil {
		s.Unembed(c.Parent, c)
	}
	kept := s.cells[:0]
	for _, cell := range s.cells {
		if doomed[cell] {
			delete(s.byID, cell.ID)
			continue
		}
		kept = append(kept, cell)
	}
	s.cells = kept
}

// Embed makes child a member of parent, detaching it from any previous parent.
func (s *Scene) Embed(parent, child *Cell) error {
	if parent == child {
		return fmt.Errorf("cannot embed %s in itself", child)
	}
	for a := parent; a != nil; a = a.Parent {
		if a == child {
			return fmt.Errorf("cannot embed %s in its descendant %s", child, parent)
		}
	}
	if child.Parent == parent {
		return nil
	}
	if child.Parent != nil {
		s.Unembed(child.Parent, child)
	}
	child.Parent = parent
	parent.Embeds = append(parent.Embeds, child)
	return nil
}

func (s *Scene) Unembed(parent, child *Cell) {
	parent.Embeds = go2.Filter(parent.Embeds, func(c *Cell) bool { return c != child })
	if child.Parent == parent {
		child.Parent = nil
	}
}

// Ancestors returns c's parents, nearest first.
func (c *Cell) Ancestors() []*Cell {
	var out []*Cell
	for p := c.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Descendants returns every cell embedded in c, depth first.
func (c *Cell) Descendants() []*Cell {
	var out []*Cell
	for _, e := range c.Embeds {
		out = append(out, e)
		out = append(out, e.Descendants()...)
	}
	return out
}

// Depth is the number of ancestors.
func (c *Cell) Depth() int {
	return len(c.Ancestors())
}

// Translate moves c and everything embedded in it.
func (s *Scene) Translate(c *Cell, dx, dy float64) {
	if c.IsLink() {
		for _, v := range c.Vertices {
			v.Translate(dx, dy)
		}
		return
	}
	c.SetPosition(c.Box.TopLeft.X+dx, c.Box.TopLeft.Y+dy)
	for _, e := range c.Embeds {
		s.Translate(e, dx, dy)
	}
}

// ToBack moves cells before all others, in the order given.
func (s *Scene) ToBack(cells ...*Cell) {
	set := make(map[*Cell]bool, len(cells))
	back := make([]*Cell, 0, len(s.cells))
	for _, c := range cells {
		if set[c] || s.byID[c.ID] != c {
			continue
		}
		set[c] = true
		back = append(back, c)
	}
	for _, c := range s.cells {
		if !set[c] {
			back = append(back, c)
		}
	}
	s.cells = back
}

// SortContainers orders containers by depth behind all other cells so
// parents are drawn beneath their members.
func (s *Scene) SortContainers() {
	var containers []*Cell
	for _, c := range s.cells {
		if c.IsNode() && c.IsContainer() {
			containers = append(containers, c)
		}
	}
	sort.SliceStable(containers, func(i, j int) bool {
		return containers[i].Depth() < containers[j].Depth()
	})
	s.ToBack(containers...)
}

// TopLevel returns nodes without a parent.
func (s *Scene) TopLevel() []*Cell {
	return go2.Filter(s.cells, func(c *Cell) bool {
		return c.IsNode() && c.Parent == nil
	})
}

// BoundingBox is the union of the cells' boxes and link routes.
func BoundingBox(cells []*Cell) *geo.Box {
	var box *geo.Box
	for _, c := range cells {
		if c.IsLink() {
			for _, p := range linkPoints(c) {
				box = box.Union(geo.NewBox(p.Copy(), 0, 0))
			}
			continue
		}
		box = box.Union(c.Box)
	}
	return box
}

func linkPoints(c *Cell) []*geo.Point {
	if len(c.Route) > 0 {
		return c.Route
	}
	return c.Vertices
}

// ContentBounds is the bounding box of every cell, or an empty box when the
// scene has none.
func (s *Scene) ContentBounds() *geo.Box {
	b := BoundingBox(s.cells)
	if b == nil {
		return geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	}
	return b
}

// Intersecting returns top level nodes whose box intersects r.
func (s *Scene) Intersecting(r *geo.Box) []*Cell {
	return go2.Filter(s.TopLevel(), func(c *Cell) bool {
		return c.Interactive && c.Box.Intersects(r)
	})
}

func (s *Scene) Selected() []*Cell {
	return go2.Filter(s.cells, func(c *Cell) bool { return c.Selected })
}

// ResetOpacity restores every cell to its computed opacity.
func (s *Scene) ResetOpacity() {
	for _, c := range s.cells {
		c.Opacity = c.ComputedStyle.Opacity
	}
}
