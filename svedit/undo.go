package svedit

import (
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svshapes"
)

// snapshot records the geometry of every cell in a scene.
type snapshot struct {
	boxes    map[*svscene.Cell]*geo.Box
	vertices map[*svscene.Cell][]*geo.Point
}

func takeSnapshot(s *svscene.Scene) *snapshot {
	snap := &snapshot{
		boxes:    make(map[*svscene.Cell]*geo.Box),
		vertices: make(map[*svscene.Cell][]*geo.Point),
	}
	for _, c := range s.Cells() {
		if c.IsLink() {
			snap.vertices[c] = geo.Points(c.Vertices).Copy()
			continue
		}
		snap.boxes[c] = c.Box.Copy()
	}
	return snap
}

func (snap *snapshot) restore(s *svscene.Scene) {
	for _, c := range s.Cells() {
		if c.IsLink() {
			if vs, ok := snap.vertices[c]; ok {
				c.Vertices = geo.Points(vs).Copy()
				svscene.SyncVertices(c)
			}
			continue
		}
		box, ok := snap.boxes[c]
		if !ok {
			continue
		}
		c.Resize(box.Width, box.Height)
		c.SetPosition(box.TopLeft.X, box.TopLeft.Y)
		if c.IsContainer() {
			svshapes.PlaceContainerLabel(c)
		}
	}
	s.RerouteAll()
}

// UndoStack holds the geometry before each edit, most recent last.
type UndoStack struct {
	snaps []*snapshot
}

func (u *UndoStack) Len() int {
	return len(u.snaps)
}

func (u *UndoStack) push(snap *snapshot) {
	u.snaps = append(u.snaps, snap)
}

func (u *UndoStack) pop() *snapshot {
	if len(u.snaps) == 0 {
		return nil
	}
	snap := u.snaps[len(u.snaps)-1]
	u.snaps = u.snaps[:len(u.snaps)-1]
	return snap
}

func (u *UndoStack) Clear() {
	u.snaps = nil
}
