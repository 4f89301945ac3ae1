package svstyle

import (
	"context"
	"strings"
	"sync"
	"time"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/imgbundler"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svthemes"
	"github.com/structview/structview/svworkspace"
)

const DefaultFontName = "Arial"

type RenderingContextOpts struct {
	// ThemeBase replaces the prebuilt theme location when set.
	ThemeBase string
	ModeStore ModeStore
	Alerter   Alerter
	Now       func() time.Time
}

// RenderingContext holds what a render needs beyond the workspace: loaded
// themes, images that failed to load and the rendering mode.
type RenderingContext struct {
	ThemeBase string
	ModeStore ModeStore
	Alerter   Alerter
	Now       func() time.Time

	mu            sync.RWMutex
	themes        []*svthemes.Theme
	themeFailures []svthemes.LoadFailure
	ignored       map[string]struct{}
	images        map[string]imgbundler.Image
}

func NewRenderingContext(opts RenderingContextOpts) *RenderingContext {
	rc := &RenderingContext{
		ThemeBase: opts.ThemeBase,
		ModeStore: opts.ModeStore,
		Alerter:   opts.Alerter,
		Now:       opts.Now,
	}
	if rc.ModeStore == nil {
		rc.ModeStore = &MemoryModeStore{}
	}
	if rc.Alerter == nil {
		rc.Alerter = LogAlerter{}
	}
	if rc.Now == nil {
		rc.Now = time.Now
	}
	rc.Reset()
	return rc
}

// Reset drops loaded themes, images and the ignored set.
func (rc *RenderingContext) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.themes = nil
	rc.themeFailures = nil
	rc.ignored = make(map[string]struct{})
	rc.images = make(map[string]imgbundler.Image)
}

func (rc *RenderingContext) Themes() []*svthemes.Theme {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.themes
}

func (rc *RenderingContext) ThemeFailures() []svthemes.LoadFailure {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.themeFailures
}

// SetThemes installs already loaded themes.
func (rc *RenderingContext) SetThemes(themes []*svthemes.Theme) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.themes = themes
}

// LoadThemes fetches every theme the workspace references. Failed themes are
// replaced with empty ones and reported through the alerter; the returned
// error joins the failures but resolution can proceed regardless.
func (rc *RenderingContext) LoadThemes(ctx context.Context, ws *svworkspace.Workspace, loader *svthemes.Loader) error {
	urls := ws.Views.Configuration.Themes
	if len(urls) == 0 {
		rc.SetThemes(nil)
		return nil
	}
	if loader == nil {
		loader = &svthemes.Loader{}
	}
	if loader.Base == "" {
		loader.Base = rc.ThemeBase
	}

	res := loader.LoadAll(ctx, urls)
	rc.mu.Lock()
	rc.themes = res.Themes
	rc.themeFailures = res.Failures
	rc.mu.Unlock()

	for _, f := range res.Failures {
		rc.Alerter.Alert(ctx, "Could not load theme from "+f.URL)
	}
	return res.Err()
}

// PreloadImages fetches the given icons and images. Those that fail are
// added to the ignored set so styles drop them, and reported through the
// alerter in a single alert.
func (rc *RenderingContext) PreloadImages(ctx context.Context, il *svthemes.ImageLoader, hrefs []string) error {
	if len(hrefs) == 0 {
		return nil
	}
	res := il.Preload(ctx, hrefs)
	rc.mu.Lock()
	for href, img := range res.Images {
		rc.images[href] = img
	}
	rc.mu.Unlock()

	failed := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		log.Debug(ctx, "ignoring image", slog.F("href", f.URL), slog.Error(f.Err))
		rc.IgnoreImage(f.URL)
		failed = append(failed, f.URL)
	}
	switch len(failed) {
	case 0:
	case 1:
		rc.Alerter.Alert(ctx, "Could not load image from "+failed[0])
	default:
		rc.Alerter.Alert(ctx, "Could not load images from "+strings.Join(failed, ", "))
	}
	return res.Err()
}

// Image returns a preloaded image.
func (rc *RenderingContext) Image(href string) (imgbundler.Image, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	img, ok := rc.images[href]
	return img, ok
}

func (rc *RenderingContext) IgnoreImage(href string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.ignored[href] = struct{}{}
}

func (rc *RenderingContext) IsIgnored(href string) bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	_, ok := rc.ignored[href]
	return ok
}

// Dark reports whether to render in dark mode. The store is read on every
// call; systemDark is used when no mode has been chosen.
func (rc *RenderingContext) Dark(systemDark bool) bool {
	switch rc.ModeStore.Get() {
	case ModeDark:
		return true
	case ModeLight:
		return false
	default:
		return systemDark
	}
}

// Branding combines theme branding with the workspace's, the workspace
// winning. The font defaults to Arial.
func (rc *RenderingContext) Branding(ws *svworkspace.Workspace) svworkspace.Branding {
	var b svworkspace.Branding
	for _, t := range rc.Themes() {
		if t.Logo != "" {
			b.Logo = t.Logo
		}
		if t.Font != nil {
			b.Font = t.Font
		}
	}
	wb := ws.Branding()
	if wb.Logo != "" {
		b.Logo = wb.Logo
	}
	if wb.Font != nil {
		b.Font = wb.Font
	}
	if b.Font == nil {
		b.Font = &svthemes.Font{Name: DefaultFontName}
	}
	return b
}

// ImageHrefs lists icons referenced by the workspace and theme styles along
// with the branding logo.
func (rc *RenderingContext) ImageHrefs(ws *svworkspace.Workspace) []string {
	seen := make(map[string]bool)
	var hrefs []string
	add := func(h string) {
		if h == "" || seen[h] {
			return
		}
		seen[h] = true
		hrefs = append(hrefs, h)
	}
	for _, t := range rc.Themes() {
		for _, es := range t.Elements {
			if es.Icon != nil {
				add(*es.Icon)
			}
		}
	}
	for _, es := range ws.Views.Configuration.Styles.Elements {
		if es.Icon != nil {
			add(*es.Icon)
		}
	}
	add(rc.Branding(ws).Logo)
	return hrefs
}
