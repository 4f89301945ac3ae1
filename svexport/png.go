package svexport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/imgbundler"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svscene"
)

// ThumbnailWidth is the default width of thumbnails.
const ThumbnailWidth = 400

// Page is everything a rasterizer may draw from. Native rasterizers use the
// scene, browser based ones the exported SVG.
type Page struct {
	Scene   *svscene.Scene
	SVG     []byte
	ViewBox *geo.Box
	Hide    map[svscene.Role]bool
	// Image returns a preloaded icon or image.
	Image func(href string) (imgbundler.Image, bool)
}

type Rasterizer interface {
	Rasterize(ctx context.Context, p *Page) ([]byte, error)
}

// PNG exports the current view through r.
func PNG(ctx context.Context, d *svdiagram.Diagram, r Rasterizer, opts *Opts) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to export PNG")
	if d.State() != svdiagram.StateRendered {
		return nil, fmt.Errorf("diagram is %s", d.State())
	}
	if opts == nil {
		opts = &Opts{}
	}
	state := d.SaveUIState()
	defer d.RestoreUIState(state)
	d.ResetUIState()

	svg, err := exportSVG(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	return r.Rasterize(ctx, &Page{
		Scene:   d.Scene(),
		SVG:     svg,
		ViewBox: opts.viewBox(d.Scene()),
		Hide:    opts.hide(),
		Image:   d.RenderingContext().Image,
	})
}

// Thumbnail scales a PNG down to width pixels wide, or ThumbnailWidth when
// width is not positive.
func Thumbnail(pngBytes []byte, width int) ([]byte, error) {
	if width <= 0 {
		width = ThumbnailWidth
	}
	img, _, err := image.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, thumb); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
