package svdiagram

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"cdr.dev/slog"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/imgbundler"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

const (
	ImageCellID       = "image"
	PlaceholderCellID = "placeholder"

	// defaultImageSize is used when an image's size cannot be read, for
	// instance for SVG content.
	defaultImageSize = 1000.
)

// renderImage draws an image view: one image scaled to fit the page and
// centred on it, or a placeholder when the image could not be loaded.
func (d *Diagram) renderImage(ctx context.Context, v *svworkspace.View) {
	href := v.Content
	img, ok := d.loadImage(ctx, href)

	pw, ph, hasPage := pageSize(v)
	if !ok {
		w, h := defaultImageSize, defaultImageSize/2
		if hasPage {
			w, h = pw, ph
		}
		style := d.resolver.Diagram("Image", d.dark)
		t := d.factory.TextBlock("Image could not be loaded: "+href, style.FontSize, false, w, style.Color)
		t.Anchor = "middle"
		t.X = w / 2
		t.Y = (h - t.Height()) / 2
		box := geo.NewBox(geo.NewPoint(0, 0), w, h)
		c := &svscene.Cell{
			ID:      PlaceholderCellID,
			Role:    svscene.RolePlaceholder,
			Box:     box,
			Outline: shape.NewShape(shape.Box, box.Copy()),
			ComputedStyle: svscene.ComputedStyle{
				Stroke:      style.Stroke,
				StrokeWidth: style.StrokeWidth,
				Border:      "Dashed",
				Color:       style.Color,
				Opacity:     style.Opacity,
			},
			Texts: []svscene.Text{t},
		}
		if _, err := d.scene.AddNode(c); err != nil {
			log.Warn(ctx, "could not add placeholder", slog.Error(err))
		}
		return
	}

	iw, ih := imageSize(img)
	box := geo.NewBox(geo.NewPoint(0, 0), iw, ih)
	if hasPage {
		box = fitCentred(iw, ih, pw, ph)
	}
	c := &svscene.Cell{
		ID:   ImageCellID,
		Role: svscene.RoleImage,
		Box:  box,
		Icon: &svscene.Icon{Href: href, Box: geo.NewBox(geo.NewPoint(0, 0), box.Width, box.Height)},

		ComputedStyle: svscene.ComputedStyle{Opacity: svscene.Opaque},
	}
	if _, err := d.scene.AddNode(c); err != nil {
		log.Warn(ctx, "could not add image", slog.Error(err))
	}
}

// loadImage returns the content of an image view, fetching it when it was
// not preloaded.
func (d *Diagram) loadImage(ctx context.Context, href string) (imgbundler.Image, bool) {
	if href == "" {
		d.rc.Alerter.Alert(ctx, "Image view has no content")
		return imgbundler.Image{}, false
	}
	if d.rc.IsIgnored(href) {
		return imgbundler.Image{}, false
	}
	if img, ok := d.rc.Image(href); ok {
		return img, true
	}
	if err := d.rc.PreloadImages(ctx, d.opts.ImageLoader, []string{href}); err != nil {
		log.Debug(ctx, "could not load image view content", slog.F("href", href), slog.Error(err))
		return imgbundler.Image{}, false
	}
	return d.rc.Image(href)
}

// imageSize reads the pixel size of img without decoding it fully.
func imageSize(img imgbundler.Image) (float64, float64) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return defaultImageSize, defaultImageSize
	}
	return float64(cfg.Width), float64(cfg.Height)
}

// fitCentred scales a w by h image to fit a pw by ph page, keeping its
// aspect ratio, and centres it.
func fitCentred(w, h, pw, ph float64) *geo.Box {
	scale := math.Min(pw/w, ph/h)
	sw, sh := w*scale, h*scale
	return geo.NewBox(geo.NewPoint((pw-sw)/2, (ph-sh)/2), sw, sh)
}
