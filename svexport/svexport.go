// Package svexport turns a rendered diagram into standalone files: SVG, PNG,
// a key of the styles in use, thumbnails and an animated SVG.
//
// Every export resets the interactive state of the diagram first and puts
// it back afterwards, even when the export fails.
package svexport

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cdr.dev/slog"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/imgbundler"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svsvg"
)

// CropMargin surrounds the content of cropped exports.
const CropMargin = 50.

const xmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

type Opts struct {
	HideTitle       bool
	HideDescription bool
	HideMetadata    bool

	// Crop trims the page to the content plus CropMargin.
	Crop bool

	// BaseDir resolves relative image hrefs when inlining.
	BaseDir string
}

func (o *Opts) hide() map[svscene.Role]bool {
	if o == nil {
		return nil
	}
	hide := make(map[svscene.Role]bool)
	if o.HideTitle {
		hide[svscene.RoleTitle] = true
	}
	if o.HideDescription {
		hide[svscene.RoleDescription] = true
	}
	if o.HideMetadata {
		hide[svscene.RoleMetadata] = true
		hide[svscene.RoleLogo] = true
	}
	return hide
}

// viewBox is the page to export: the scene's page, or the visible content
// plus CropMargin.
func (o *Opts) viewBox(s *svscene.Scene) *geo.Box {
	if o == nil || !o.Crop {
		if s.Width > 0 && s.Height > 0 {
			return geo.NewBox(geo.NewPoint(0, 0), s.Width, s.Height)
		}
		return s.ContentBounds().Expand(CropMargin, CropMargin, CropMargin, CropMargin)
	}
	hide := o.hide()
	var visible []*svscene.Cell
	for _, c := range s.Cells() {
		if !hide[c.Role] {
			visible = append(visible, c)
		}
	}
	b := svscene.BoundingBox(visible)
	if b == nil {
		b = geo.NewBox(geo.NewPoint(0, 0), 0, 0)
	}
	return b.Expand(CropMargin, CropMargin, CropMargin, CropMargin)
}

// SVG exports the current view as a self contained SVG document.
func SVG(ctx context.Context, d *svdiagram.Diagram, opts *Opts) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to export SVG")
	if d.State() != svdiagram.StateRendered {
		return nil, fmt.Errorf("diagram is %s", d.State())
	}
	state := d.SaveUIState()
	defer d.RestoreUIState(state)
	d.ResetUIState()

	return exportSVG(ctx, d, opts)
}

func exportSVG(ctx context.Context, d *svdiagram.Diagram, opts *Opts) ([]byte, error) {
	if opts == nil {
		opts = &Opts{}
	}
	s := d.Scene()
	raw, err := svsvg.Render(s, &svsvg.RenderOpts{
		Salt:        s.ID,
		Interactive: true,
		Image:       d.ImageHref,
		Hide:        opts.hide(),
		ViewBox:     opts.viewBox(s),
	})
	if err != nil {
		return nil, err
	}
	out, err := Strip(raw)
	if err != nil {
		return nil, err
	}
	inlined, err := imgbundler.Inline(ctx, out, opts.BaseDir)
	if err != nil {
		log.Warn(ctx, "some images could not be embedded", slog.Error(err))
	}
	return inlined, nil
}

// Strip removes the markup only an interactive host uses: cell ids, the
// interactive flag and its move cursor, selection highlights and
// navigation links.
func Strip(svg []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	root := doc.Find("svg").First()
	if root.Length() == 0 {
		return nil, fmt.Errorf("no svg element found")
	}

	root.Find("." + svsvg.ClassNavigation).Remove()
	root.Find("." + svsvg.ClassSelection).Remove()
	root.Find("." + svsvg.ClassSelected).RemoveClass(svsvg.ClassSelected)
	root.Find("[" + svsvg.AttrCellID + "]").RemoveAttr(svsvg.AttrCellID)
	root.Find("[" + svsvg.AttrInteractive + "]").RemoveAttr(svsvg.AttrInteractive)
	root.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style := stripCursor(sel.AttrOr("style", ""))
		if style == "" {
			sel.RemoveAttr("style")
		} else {
			sel.SetAttr("style", style)
		}
	})

	buf := bytes.NewBufferString(xmlHeader)
	if err := html.Render(buf, root.Get(0)); err != nil {
		return nil, fmt.Errorf("failed to render svg: %w", err)
	}
	return buf.Bytes(), nil
}

// stripCursor drops cursor declarations from an inline style.
func stripCursor(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.TrimSpace(prop) == "cursor" {
			continue
		}
		kept = append(kept, decl)
	}
	return strings.Join(kept, "; ")
}

// DataURI encodes an exported PNG for embedding.
func DataURI(png []byte) string {
	return imgbundler.DataURI("image/png", png)
}
