package svdiagram

import (
	"context"
	"math"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
)

const (
	MinScale  = 0.1
	MaxScale  = 4.
	ZoomStep  = 0.1
	NudgeStep = 10.
	// FineNudgeStep is used when Shift is held.
	FineNudgeStep = 1.
	ScrollStep    = 50.
)

// Scale is the zoom factor from page to screen pixels.
func (d *Diagram) Scale() float64 {
	return d.scale
}

// PanOffset is the screen position of the page's top left corner.
func (d *Diagram) PanOffset() (float64, float64) {
	return d.panX, d.panY
}

func (d *Diagram) SetViewport(width, height float64) {
	d.opts.ViewportWidth = width
	d.opts.ViewportHeight = height
}

// SetScale zooms to scale, clamped to [MinScale, MaxScale] and rounded to
// two decimals.
func (d *Diagram) SetScale(scale float64) {
	d.scale = geo.Clamp(math.Round(scale*100)/100, MinScale, MaxScale)
}

func (d *Diagram) ZoomIn() {
	d.SetScale(d.scale + ZoomStep)
}

func (d *Diagram) ZoomOut() {
	d.SetScale(d.scale - ZoomStep)
}

// ZoomToFit shows the whole page in the viewport.
func (d *Diagram) ZoomToFit() {
	w, h := d.scene.Width, d.scene.Height
	if w <= 0 || h <= 0 || d.opts.ViewportWidth <= 0 || d.opts.ViewportHeight <= 0 {
		return
	}
	d.SetScale(math.Min(d.opts.ViewportWidth/w, d.opts.ViewportHeight/h))
	d.panX, d.panY = 0, 0
}

// ZoomToWidth fits the page's width to the viewport.
func (d *Diagram) ZoomToWidth() {
	if d.scene.Width <= 0 || d.opts.ViewportWidth <= 0 {
		return
	}
	d.SetScale(d.opts.ViewportWidth / d.scene.Width)
	d.panX, d.panY = 0, 0
}

// Pan scrolls the view by dx, dy screen pixels.
func (d *Diagram) Pan(dx, dy float64) {
	d.panX += dx
	d.panY += dy
}

// zoomToBox fits b in the viewport and scrolls it to the top left.
func (d *Diagram) zoomToBox(b *geo.Box) {
	if b == nil || b.Width <= 0 || b.Height <= 0 || d.opts.ViewportWidth <= 0 || d.opts.ViewportHeight <= 0 {
		return
	}
	b = b.Expand(PageMargin, PageMargin, PageMargin, PageMargin)
	d.SetScale(math.Min(d.opts.ViewportWidth/b.Width, d.opts.ViewportHeight/b.Height))
	d.panX = -b.TopLeft.X * d.scale
	d.panY = -b.TopLeft.Y * d.scale
}

type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// HandleKey applies a keyboard shortcut. Key names follow the DOM
// KeyboardEvent.key values. It reports whether the key was handled.
func (d *Diagram) HandleKey(ctx context.Context, key string, mods Modifiers) bool {
	if d.state != StateRendered {
		return false
	}
	step := NudgeStep
	if mods.Shift {
		step = FineNudgeStep
	}
	var dx, dy float64
	switch key {
	case "ArrowLeft":
		dx = -1
	case "ArrowRight":
		dx = 1
	case "ArrowUp":
		dy = -1
	case "ArrowDown":
		dy = 1
	case "+", "=":
		d.ZoomIn()
		return true
	case "-", "_":
		d.ZoomOut()
		return true
	case "z", "Z":
		d.editor.Undo(ctx)
		return true
	case "Escape":
		d.editor.ClearSelection()
		return true
	default:
		return false
	}

	if len(d.editor.Selection()) == 0 {
		d.Pan(-dx*ScrollStep, -dy*ScrollStep)
		return true
	}
	if err := d.editor.MoveSelection(ctx, dx*step, dy*step); err != nil {
		log.Warn(ctx, "could not move selection", slog.Error(err))
	}
	return true
}
