package svdiagram

import (
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svsvg"
)

// UIState is the interactive state an export resets and then restores.
type UIState struct {
	Scale     float64
	PanX      float64
	PanY      float64
	Selection []*svscene.Cell
}

func (d *Diagram) SaveUIState() UIState {
	s := UIState{Scale: d.scale, PanX: d.panX, PanY: d.panY}
	if d.editor != nil {
		s.Selection = append([]*svscene.Cell(nil), d.editor.Selection()...)
	}
	return s
}

// ResetUIState shows the page unscaled with nothing selected.
func (d *Diagram) ResetUIState() {
	d.scale, d.panX, d.panY = 1, 0, 0
	if d.editor != nil {
		d.editor.ClearSelection()
	}
}

func (d *Diagram) RestoreUIState(s UIState) {
	d.scale, d.panX, d.panY = s.Scale, s.PanX, s.PanY
	if d.editor == nil {
		return
	}
	d.editor.ClearSelection()
	for _, c := range s.Selection {
		if d.scene.Cell(c.ID) == c {
			d.editor.Select(c, true)
		}
	}
}

// SVG renders the scene. Preloaded images are embedded as data URIs.
func (d *Diagram) SVG(interactive bool, hide map[svscene.Role]bool) ([]byte, error) {
	return svsvg.Render(d.scene, &svsvg.RenderOpts{
		Salt:        d.scene.ID,
		Interactive: interactive,
		Image:       d.ImageHref,
		Hide:        hide,
	})
}

// ImageHref maps href to the data URI of its preloaded image, if any.
func (d *Diagram) ImageHref(href string) string {
	if img, ok := d.rc.Image(href); ok {
		return img.DataURI()
	}
	return href
}
