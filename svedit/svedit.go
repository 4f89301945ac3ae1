// Package svedit implements selection and geometry editing of a rendered
// scene with undo.
package svedit

import (
	"context"
	"fmt"
	"sort"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/go2"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svcontain"
	"github.com/structview/structview/svscene"
)

// Editor is owned by one render pass. Element positions and relationship
// vertices it changes are written through to the view.
type Editor struct {
	scene  *svscene.Scene
	engine *svcontain.Engine

	UndoStack UndoStack
	// Listeners are called after every successful edit.
	Listeners []func()

	// selection is in selection order; the first member anchors alignment.
	selection []*svscene.Cell
}

// New returns an editor for scene. engine may be nil when the scene has no
// containers.
func New(scene *svscene.Scene, engine *svcontain.Engine) *Editor {
	return &Editor{
		scene:  scene,
		engine: engine,
	}
}

// Selection returns the selected cells in the order they were selected.
func (ed *Editor) Selection() []*svscene.Cell {
	return ed.selection
}

// Select selects c. Without appendMode the previous selection is cleared
// first. Cells that are not interactive are ignored.
func (ed *Editor) Select(c *svscene.Cell, appendMode bool) {
	if !appendMode {
		ed.ClearSelection()
	}
	if c == nil || !c.Interactive || c.Selected {
		return
	}
	c.Selected = true
	ed.selection = append(ed.selection, c)
}

// Lasso selects every interactive top level node intersecting rect.
func (ed *Editor) Lasso(rect *geo.Box, appendMode bool) {
	if !appendMode {
		ed.ClearSelection()
	}
	for _, c := range ed.scene.Intersecting(rect) {
		ed.Select(c, true)
	}
	for _, c := range ed.scene.Nodes() {
		if c.Parent != nil && c.Interactive && c.Box.Intersects(rect) {
			ed.Select(c, true)
		}
	}
}

func (ed *Editor) ClearSelection() {
	for _, c := range ed.selection {
		c.Selected = false
	}
	ed.selection = nil
}

func (ed *Editor) selectedNodes() []*svscene.Cell {
	return go2.Filter(ed.selection, (*svscene.Cell).IsNode)
}

// mutate runs fn after pushing a snapshot. A panic in fn restores and drops
// the snapshot, so the stack only holds edits that completed.
func (ed *Editor) mutate(ctx context.Context, op string, fn func()) (err error) {
	snap := takeSnapshot(ed.scene)
	ed.UndoStack.push(snap)
	defer func() {
		if r := recover(); r != nil {
			log.Warn(ctx, "edit failed", slog.F("op", op), slog.F("panic", r))
			snap.restore(ed.scene)
			ed.UndoStack.pop()
			err = fmt.Errorf("%s failed: %v", op, r)
		}
	}()

	fn()
	ed.scene.RerouteAll()
	for _, l := range ed.scene.Links() {
		svscene.SyncVertices(l)
	}
	for _, l := range ed.Listeners {
		l()
	}
	return nil
}

// Undo restores the geometry before the last edit. It reports whether there
// was anything to undo.
func (ed *Editor) Undo(ctx context.Context) bool {
	snap := ed.UndoStack.pop()
	if snap == nil {
		return false
	}
	snap.restore(ed.scene)
	log.Debug(ctx, "undo", slog.F("remaining", ed.UndoStack.Len()))
	for _, l := range ed.Listeners {
		l()
	}
	return true
}

// Move translates c by dx, dy. When c is selected the whole selection moves,
// along with the vertices of links between moved cells.
func (ed *Editor) Move(ctx context.Context, c *svscene.Cell, dx, dy float64) error {
	cells := []*svscene.Cell{c}
	if c.Selected {
		cells = ed.selectedNodes()
	}
	return ed.mutate(ctx, "move", func() {
		ed.translate(ctx, cells, dx, dy)
	})
}

// MoveSelection translates every selected node.
func (ed *Editor) MoveSelection(ctx context.Context, dx, dy float64) error {
	cells := ed.selectedNodes()
	if len(cells) == 0 {
		return nil
	}
	return ed.mutate(ctx, "move", func() {
		ed.translate(ctx, cells, dx, dy)
	})
}

func (ed *Editor) translate(ctx context.Context, cells []*svscene.Cell, dx, dy float64) {
	moving := map[*svscene.Cell]bool{}
	for _, c := range cells {
		moving[c] = true
	}
	moved := map[*svscene.Cell]bool{}
	for _, c := range cells {
		if hasAncestorIn(c, moving) {
			continue
		}
		ed.scene.Translate(c, dx, dy)
		moved[c] = true
		for _, d := range c.Descendants() {
			moved[d] = true
		}
	}
	for _, l := range ed.scene.Links() {
		if moved[l.Source] && moved[l.Target] {
			ed.scene.Translate(l, dx, dy)
		}
	}
	ed.repositionParents(ctx, cells)
}

func hasAncestorIn(c *svscene.Cell, set map[*svscene.Cell]bool) bool {
	for _, a := range c.Ancestors() {
		if set[a] {
			return true
		}
	}
	return false
}

func (ed *Editor) repositionParents(ctx context.Context, cells []*svscene.Cell) {
	if ed.engine == nil {
		return
	}
	for _, c := range cells {
		if c.Parent != nil {
			ed.engine.Reposition(ctx, c.Parent)
		}
	}
}

// align moves every selected node except the anchor to the position pos
// returns for it.
func (ed *Editor) align(ctx context.Context, op string, pos func(anchor, c *geo.Box) (float64, float64)) error {
	nodes := ed.selectedNodes()
	if len(nodes) < 2 {
		return nil
	}
	anchor := nodes[0].Box
	return ed.mutate(ctx, op, func() {
		for _, c := range nodes[1:] {
			x, y := pos(anchor, c.Box)
			ed.scene.Translate(c, x-c.Box.TopLeft.X, y-c.Box.TopLeft.Y)
		}
		ed.repositionParents(ctx, nodes)
	})
}

func (ed *Editor) AlignLeft(ctx context.Context) error {
	return ed.align(ctx, "align left", func(a, b *geo.Box) (float64, float64) {
		return a.TopLeft.X, b.TopLeft.Y
	})
}

func (ed *Editor) AlignRight(ctx context.Context) error {
	return ed.align(ctx, "align right", func(a, b *geo.Box) (float64, float64) {
		return a.Right() - b.Width, b.TopLeft.Y
	})
}

func (ed *Editor) AlignTop(ctx context.Context) error {
	return ed.align(ctx, "align top", func(a, b *geo.Box) (float64, float64) {
		return b.TopLeft.X, a.TopLeft.Y
	})
}

func (ed *Editor) AlignBottom(ctx context.Context) error {
	return ed.align(ctx, "align bottom", func(a, b *geo.Box) (float64, float64) {
		return b.TopLeft.X, a.Bottom() - b.Height
	})
}

// AlignHorizontalCentre puts the centres of the selection on the anchor's
// horizontal centre line.
func (ed *Editor) AlignHorizontalCentre(ctx context.Context) error {
	return ed.align(ctx, "align horizontal centre", func(a, b *geo.Box) (float64, float64) {
		return b.TopLeft.X, a.Center().Y - b.Height/2
	})
}

// AlignVerticalCentre puts the centres of the selection on the anchor's
// vertical centre line.
func (ed *Editor) AlignVerticalCentre(ctx context.Context) error {
	return ed.align(ctx, "align vertical centre", func(a, b *geo.Box) (float64, float64) {
		return a.Center().X - b.Width/2, b.TopLeft.Y
	})
}

// DistributeHorizontally spaces the selection so the gaps between
// neighbours are equal. The leftmost and rightmost nodes stay put.
func (ed *Editor) DistributeHorizontally(ctx context.Context) error {
	return ed.distribute(ctx, "distribute horizontally",
		func(b *geo.Box) float64 { return b.TopLeft.X },
		func(b *geo.Box) float64 { return b.Width },
		func(c *svscene.Cell, d float64) { ed.scene.Translate(c, d, 0) })
}

func (ed *Editor) DistributeVertically(ctx context.Context) error {
	return ed.distribute(ctx, "distribute vertically",
		func(b *geo.Box) float64 { return b.TopLeft.Y },
		func(b *geo.Box) float64 { return b.Height },
		func(c *svscene.Cell, d float64) { ed.scene.Translate(c, 0, d) })
}

func (ed *Editor) distribute(ctx context.Context, op string, start, size func(*geo.Box) float64, shift func(*svscene.Cell, float64)) error {
	nodes := append([]*svscene.Cell(nil), ed.selectedNodes()...)
	if len(nodes) < 3 {
		return nil
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return start(nodes[i].Box) < start(nodes[j].Box)
	})
	first, last := nodes[0], nodes[len(nodes)-1]
	total := start(last.Box) + size(last.Box) - start(first.Box)
	for _, c := range nodes {
		total -= size(c.Box)
	}
	gap := total / float64(len(nodes)-1)

	return ed.mutate(ctx, op, func() {
		next := start(first.Box) + size(first.Box) + gap
		for _, c := range nodes[1 : len(nodes)-1] {
			shift(c, next-start(c.Box))
			next += size(c.Box) + gap
		}
		ed.repositionParents(ctx, nodes)
	})
}
