// Package svdiagram renders workspace views into a scene and owns the state
// around it: the current view, zoom, selection, filter and animation.
package svdiagram

import (
	"context"
	"fmt"

	"cdr.dev/slog"
	"github.com/google/uuid"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svanimate"
	"github.com/structview/structview/svcontain"
	"github.com/structview/structview/svedit"
	"github.com/structview/structview/svfilter"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svshapes"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svthemes"
	"github.com/structview/structview/svworkspace"
)

type State int

const (
	StateEmpty State = iota
	StateRendering
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateRendering:
		return "rendering"
	case StateRendered:
		return "rendered"
	default:
		return "empty"
	}
}

type Opts struct {
	RenderingContext *svstyle.RenderingContext
	// SystemDark is the host's colour scheme preference.
	SystemDark bool
	// ImageLoader fetches image view content. Nil uses a default loader.
	ImageLoader *svthemes.ImageLoader
	// ViewportWidth and ViewportHeight size the visible area for zooming.
	ViewportWidth  float64
	ViewportHeight float64
	// NewID returns the id of a render pass. Nil uses random UUIDs.
	NewID func() string
}

// Diagram is owned by a single goroutine.
type Diagram struct {
	ws       *svworkspace.Workspace
	rc       *svstyle.RenderingContext
	factory  *svshapes.Factory
	resolver *svstyle.Resolver
	opts     Opts

	state State
	// view is the view asked for; base is the view actually drawn, which
	// differs for filtered views.
	view *svworkspace.View
	base *svworkspace.View
	dark bool

	scene     *svscene.Scene
	engine    *svcontain.Engine
	editor    *svedit.Editor
	filter    svfilter.Filter
	animation *svanimate.Animation

	// perspective survives view changes.
	perspective string

	scale float64
	panX  float64
	panY  float64
}

func New(ws *svworkspace.Workspace, opts Opts) (*Diagram, error) {
	factory, err := svshapes.NewFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create shape factory: %w", err)
	}
	if opts.RenderingContext == nil {
		opts.RenderingContext = svstyle.NewRenderingContext(svstyle.RenderingContextOpts{})
	}
	if opts.ImageLoader == nil {
		opts.ImageLoader = &svthemes.ImageLoader{}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Diagram{
		ws:      ws,
		rc:      opts.RenderingContext,
		factory: factory,
		opts:    opts,
		scene:   svscene.New(""),
		scale:   1,
	}, nil
}

func (d *Diagram) State() State {
	return d.state
}

func (d *Diagram) Workspace() *svworkspace.Workspace {
	return d.ws
}

// View is the current view, or nil before the first render.
func (d *Diagram) View() *svworkspace.View {
	return d.view
}

// BaseView is the view whose elements are drawn.
func (d *Diagram) BaseView() *svworkspace.View {
	return d.base
}

func (d *Diagram) Scene() *svscene.Scene {
	return d.scene
}

func (d *Diagram) Editor() *svedit.Editor {
	return d.editor
}

func (d *Diagram) Animation() *svanimate.Animation {
	return d.animation
}

func (d *Diagram) Filter() svfilter.Filter {
	return d.filter
}

func (d *Diagram) Dark() bool {
	return d.dark
}

func (d *Diagram) Resolver() *svstyle.Resolver {
	return d.resolver
}

func (d *Diagram) Factory() *svshapes.Factory {
	return d.factory
}

func (d *Diagram) RenderingContext() *svstyle.RenderingContext {
	return d.rc
}

// ChangeView renders the view with key. It does nothing when that view is
// already rendered. An unknown key leaves the diagram as it was.
func (d *Diagram) ChangeView(ctx context.Context, key string) error {
	if d.state == StateRendered && d.view != nil && d.view.Key == key {
		return nil
	}
	v := d.ws.View(key)
	if v == nil {
		log.Warn(ctx, "no such view", slog.F("view", key))
		return fmt.Errorf("view %q does not exist", key)
	}
	return d.RenderView(ctx, v)
}

// RenderView rebuilds the scene for v.
func (d *Diagram) RenderView(ctx context.Context, v *svworkspace.View) (err error) {
	defer xdefer.Errorf(&err, "failed to render view %q", v.Key)

	base := v
	filter := svfilter.Filter{}
	if v.Type == svworkspace.FilteredView {
		base = d.ws.View(v.BaseViewKey)
		if base == nil || base.Type == svworkspace.FilteredView {
			log.Warn(ctx, "filtered view has no usable base view", slog.F("view", v.Key), slog.F("base", v.BaseViewKey))
			return fmt.Errorf("base view %q not found", v.BaseViewKey)
		}
		filter = svfilter.FromView(v)
	}
	if d.perspective != "" {
		filter.Active = true
		filter.Perspective = d.perspective
	}

	d.clear(ctx)
	d.state = StateRendering
	d.view = v
	d.base = base
	d.dark = d.rc.Dark(d.opts.SystemDark)
	d.resolver = svstyle.NewResolver(d.rc, d.ws)
	d.scene = svscene.New(d.opts.NewID())
	d.scene.Background = svstyle.ModeDefaults(d.dark).Background
	d.scene.FontName = d.rc.Branding(d.ws).Font.Name
	ctx = log.Fields(ctx, slog.F("view", v.Key), slog.F("render", d.scene.ID))
	log.Info(ctx, "rendering view")

	if base.Type == svworkspace.ImageView {
		d.renderImage(ctx, base)
	} else {
		d.engine = svcontain.New(ctx, d.scene, d.factory, d.resolver, d.ws, base, d.dark)
		cells := d.addElements(ctx, base)
		d.autoLayout(ctx, base, cells)
		if base.Type == svworkspace.DeploymentView {
			d.engine.Deployment(ctx, cells)
			d.addGroups(ctx, base, cells)
		} else {
			d.addBoundaries(ctx, base, cells)
			d.addGroups(ctx, base, cells)
		}
		d.engine.RepositionAll(ctx)
		d.addRelationships(ctx, base)
		d.scene.SortContainers()
	}
	d.editor = svedit.New(d.scene, d.engine)

	d.addMetadata(ctx, v)
	d.sizePage(v, base)
	d.addTooltips()

	d.filter = filter
	d.filter.Apply(d.scene, d.ws)
	d.animation = d.newAnimation()

	d.state = StateRendered
	log.Debug(ctx, "rendered view", slog.F("cells", len(d.scene.Cells())))
	return nil
}

// clear drops everything built for the previous view.
func (d *Diagram) clear(ctx context.Context) {
	if d.animation != nil {
		d.animation.Stop(ctx)
	}
	d.animation = nil
	if d.editor != nil {
		d.editor.ClearSelection()
		d.editor.UndoStack.Clear()
	}
	d.editor = nil
	d.engine = nil
	d.scene.Clear()
	d.filter = svfilter.Filter{}
	d.state = StateEmpty
}

// Rerender renders the current view again, for instance after the rendering
// mode changed.
func (d *Diagram) Rerender(ctx context.Context) error {
	if d.view == nil {
		return nil
	}
	return d.RenderView(ctx, d.view)
}

// SetPerspective fades everything outside perspective name. An empty name
// clears it. It keeps any tag filter of a filtered view.
func (d *Diagram) SetPerspective(ctx context.Context, name string) {
	d.perspective = name
	f := svfilter.Filter{}
	if d.view != nil && d.view.Type == svworkspace.FilteredView {
		f = svfilter.FromView(d.view)
	}
	if name != "" {
		f.Active = true
		f.Perspective = name
	}
	d.SetFilter(ctx, f)
}

// SetFilter replaces the active filter.
func (d *Diagram) SetFilter(ctx context.Context, f svfilter.Filter) {
	if d.animation != nil && d.animation.Running() {
		d.animation.Stop(ctx)
	}
	d.filter = f
	d.scene.ResetOpacity()
	d.filter.Apply(d.scene, d.ws)
	if d.base != nil {
		d.animation = d.newAnimation()
	}
	log.Debug(ctx, "filter changed", slog.F("active", f.Active), slog.F("tags", f.Tags), slog.F("perspective", f.Perspective))
}

func (d *Diagram) newAnimation() *svanimate.Animation {
	a := svanimate.New(d.scene, d.ws, d.base, d.filter)
	if d.ws.ZoomOnAnimation(d.base) {
		a.OnZoom = func(cells []*svscene.Cell) {
			d.zoomToBox(svscene.BoundingBox(cells))
		}
	}
	return a
}

// ContentBounds is the bounding box of everything drawn.
func (d *Diagram) ContentBounds() *geo.Box {
	return d.scene.ContentBounds()
}
