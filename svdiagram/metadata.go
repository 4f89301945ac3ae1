package svdiagram

import (
	"bytes"
	"context"
	"image"
	"strings"
	"time"
	_ "time/tzdata"

	"cdr.dev/slog"
	"golang.org/x/text/language"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/version"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svworkspace"
)

const (
	// metadataGap separates the metadata block from the diagram above it.
	metadataGap = 50.
	logoHeight  = 100.
	logoGap     = 20.
)

// addMetadata places the title, description and last modified line below
// the diagram's content, left aligned, after the branding logo if any.
func (d *Diagram) addMetadata(ctx context.Context, v *svworkspace.View) {
	bounds := d.scene.ContentBounds()
	x := bounds.TopLeft.X
	y := bounds.Bottom() + metadataGap
	if len(d.scene.Cells()) == 0 {
		y = 0
	}

	var blocks []*svscene.Cell
	add := func(role svscene.Role, tag, text string, bold bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		style := d.resolver.Diagram(tag, d.dark)
		t := d.factory.TextBlock(text, style.FontSize, bold, 0, style.Color)
		t.Anchor = "start"
		blocks = append(blocks, &svscene.Cell{
			ID:   string(role),
			Role: role,
			Box:  geo.NewBox(geo.NewPoint(0, 0), d.factory.TextWidth(t), t.Height()),
			ComputedStyle: svscene.ComputedStyle{
				Color:    style.Color,
				FontSize: style.FontSize,
				Opacity:  style.Opacity,
				StyleKey: style.Key(),
			},
			Texts: []svscene.Text{t},
		})
	}
	if d.ws.ShowTitle(v) {
		add(svscene.RoleTitle, svstyle.TagDiagramTitle, d.ws.ViewTitle(v), true)
	}
	if d.ws.ShowDescription(v) {
		add(svscene.RoleDescription, svstyle.TagDiagramDescription, v.Description, false)
	}
	if d.ws.ShowMetadata(v) {
		add(svscene.RoleMetadata, svstyle.TagDiagramMetadata, d.metadataLine(v), false)
	}
	if len(blocks) == 0 {
		return
	}

	if logo := d.addLogo(ctx, x, y); logo != nil {
		x = logo.Box.Right() + logoGap
	}
	for _, c := range blocks {
		c.Box.TopLeft = geo.NewPoint(x, y)
		if _, err := d.scene.AddNode(c); err != nil {
			log.Warn(ctx, "could not add diagram metadata", slog.F("role", c.Role), slog.Error(err))
			continue
		}
		y += c.Box.Height
	}
}

// metadataLine is the last modified time and workspace version.
func (d *Diagram) metadataLine(v *svworkspace.View) string {
	var parts []string
	if t, ok := d.ws.LastModified(); ok {
		parts = append(parts, FormatTimestamp(t, d.ws.Timezone(v), d.ws.Locale(v)))
	}
	if d.ws.Version != "" {
		parts = append(parts, "Version "+d.ws.Version)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " | ")
}

// FormatTimestamp formats t in the time zone and locale given as IANA and
// BCP 47 names. Unknown names fall back to UTC and day first ordering.
func FormatTimestamp(t time.Time, tz, locale string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	layout := "Monday 2 January 2006 15:04 MST"
	if tag, err := language.Parse(locale); err == nil {
		if region, _ := tag.Region(); region.String() == "US" {
			layout = "Monday, January 2, 2006 3:04 PM MST"
		}
	}
	return t.In(loc).Format(layout)
}

// addLogo draws the branding logo with its top left at x, y.
func (d *Diagram) addLogo(ctx context.Context, x, y float64) *svscene.Cell {
	href := d.rc.Branding(d.ws).Logo
	if href == "" || d.rc.IsIgnored(href) {
		return nil
	}
	w := logoHeight
	if img, ok := d.rc.Image(href); ok {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data)); err == nil && cfg.Height > 0 {
			w = logoHeight * float64(cfg.Width) / float64(cfg.Height)
		}
	}
	c := &svscene.Cell{
		ID:   string(svscene.RoleLogo),
		Role: svscene.RoleLogo,
		Box:  geo.NewBox(geo.NewPoint(x, y), w, logoHeight),
		Icon: &svscene.Icon{Href: href, Box: geo.NewBox(geo.NewPoint(0, 0), w, logoHeight)},

		ComputedStyle: svscene.ComputedStyle{Opacity: svscene.Opaque},
	}
	if _, err := d.scene.AddNode(c); err != nil {
		log.Warn(ctx, "could not add logo", slog.Error(err))
		return nil
	}
	return c
}
