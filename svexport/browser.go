package svexport

import (
	"context"
	"sync"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/png"
)

// BrowserRasterizer draws the exported SVG in headless Chromium, which
// matches what a browser host shows, web fonts included. Chromium is
// started on first use and must be released with Close.
type BrowserRasterizer struct {
	Scale float64

	mu sync.Mutex
	b  *png.Browser
}

func (r *BrowserRasterizer) Rasterize(ctx context.Context, p *Page) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.b == nil {
		log.Info(ctx, "starting headless browser")
		b, err := png.Start(ctx)
		if err != nil {
			return nil, err
		}
		r.b = b
	}
	out, err := r.b.Rasterize(ctx, p.SVG, r.Scale)
	if err != nil {
		// A crashed page is not reusable.
		if rerr := r.b.Restart(); rerr != nil {
			log.Warn(ctx, "failed to restart browser", slog.Error(rerr))
		}
		return nil, err
	}
	return out, nil
}

func (r *BrowserRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.b == nil {
		return nil
	}
	err := r.b.Close()
	r.b = nil
	return err
}
