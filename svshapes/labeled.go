package svshapes

import (
	"context"
	"math"
	"strings"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/textmeasure"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svstyle"
)

const (
	segmentGap     = 10.
	iconTextGap    = 10.
	nameScale      = 1.25
	metadataScale  = 0.75
	iconFraction   = 0.3
	containerInset = 10.
)

// NameFontSize is the bold name size for a base font size.
func NameFontSize(fontSize int) int {
	return int(math.Round(float64(fontSize) * nameScale))
}

func MetadataFontSize(fontSize int) int {
	return int(math.Round(float64(fontSize) * metadataScale))
}

// TextBlock wraps s to maxWidth. A non-positive maxWidth disables wrapping.
func (f *Factory) TextBlock(s string, fontSize int, bold bool, maxWidth float64, color string) svscene.Text {
	style := textmeasure.FontStyleRegular
	if bold {
		style = textmeasure.FontStyleBold
	}
	font := textmeasure.NewFont(fontSize, style)
	var lines []string
	if maxWidth > 0 {
		lines = f.ruler.Wrap(font, s, maxWidth)
	} else if s != "" {
		lines = strings.Split(s, "\n")
	}
	return svscene.Text{
		Lines:      lines,
		FontSize:   fontSize,
		LineHeight: f.ruler.LineHeight(font),
		Bold:       bold,
		Color:      color,
	}
}

// TextWidth is the width of the widest line of t.
func (f *Factory) TextWidth(t svscene.Text) float64 {
	style := textmeasure.FontStyleRegular
	if t.Bold {
		style = textmeasure.FontStyleBold
	}
	font := textmeasure.NewFont(t.FontSize, style)
	w := 0.
	for _, l := range t.Lines {
		lw, _ := f.ruler.MeasurePrecise(font, l)
		w = math.Max(w, lw)
	}
	return w
}

// Layout stacks the icon, name, metadata and description inside inner and
// stores them on c. The stack is centred vertically; content taller than
// inner overflows with a warning.
func (f *Factory) Layout(ctx context.Context, c *svscene.Cell, inner *geo.Box, content Content, style svstyle.ElementStyle) {
	origin := c.Box.TopLeft

	var icon *geo.Box
	textBox := inner.Copy()
	if content.Icon != "" {
		switch style.IconPosition {
		case svstyle.IconLeft:
			size := math.Min(inner.Height*(1-iconFraction), inner.Width*iconFraction)
			icon = geo.NewBox(geo.NewPoint(inner.TopLeft.X, inner.Center().Y-size/2), size, size)
			textBox = geo.NewBox(geo.NewPoint(inner.TopLeft.X+size+iconTextGap, inner.TopLeft.Y),
				inner.Width-size-iconTextGap, inner.Height)
		default:
			size := math.Min(inner.Height, inner.Width) * iconFraction
			icon = geo.NewBox(geo.NewPoint(inner.Center().X-size/2, 0), size, size)
		}
	}

	var texts []svscene.Text
	if content.Name != "" {
		texts = append(texts, f.TextBlock(content.Name, NameFontSize(style.FontSize), true, textBox.Width, style.Color))
	}
	if content.Metadata != "" && style.Metadata {
		texts = append(texts, f.TextBlock(content.Metadata, MetadataFontSize(style.FontSize), false, textBox.Width, style.Color))
	}
	if content.Description != "" && style.Description {
		texts = append(texts, f.TextBlock(content.Description, style.FontSize, false, textBox.Width, style.Color))
	}

	total := 0.
	for i, t := range texts {
		if i > 0 {
			total += segmentGap
		}
		total += t.Height()
	}
	stacked := total
	if icon != nil && style.IconPosition != svstyle.IconLeft {
		stacked += icon.Height
		if len(texts) > 0 {
			stacked += segmentGap
		}
	}
	if stacked > inner.Height {
		log.Warn(ctx, "content does not fit shape",
			slog.F("id", c.ID), slog.F("height", stacked), slog.F("available", inner.Height))
	}

	y := inner.TopLeft.Y + (inner.Height-stacked)/2
	if icon != nil && style.IconPosition == svstyle.IconLeft {
		y = textBox.TopLeft.Y + (textBox.Height-total)/2
	}
	if icon != nil && style.IconPosition == svstyle.IconTop {
		icon.TopLeft.Y = y
		y += icon.Height + segmentGap
	}
	cx := textBox.Center().X
	for i := range texts {
		texts[i].X = cx - origin.X
		texts[i].Y = y - origin.Y
		texts[i].Anchor = "middle"
		y += texts[i].Height() + segmentGap
	}
	if icon != nil && style.IconPosition != svstyle.IconTop && style.IconPosition != svstyle.IconLeft {
		icon.TopLeft.Y = y
	}
	if icon != nil {
		icon.TopLeft = geo.NewPoint(icon.TopLeft.X-origin.X, icon.TopLeft.Y-origin.Y)
		c.Icon = &svscene.Icon{Href: content.Icon, Box: icon}
	}
	c.Texts = texts
}

// ContainerLabel sets the name and metadata of a group, boundary or
// deployment node. PlaceContainerLabel positions them once the box is known.
func (f *Factory) ContainerLabel(c *svscene.Cell, name, metadata, icon string, style svstyle.ElementStyle) {
	var texts []svscene.Text
	if name != "" {
		texts = append(texts, f.TextBlock(name, style.FontSize, true, 0, style.Color))
	}
	if metadata != "" && style.Metadata {
		texts = append(texts, f.TextBlock(metadata, MetadataFontSize(style.FontSize), false, 0, style.Color))
	}
	for i := range texts {
		texts[i].Anchor = "start"
	}
	c.Texts = texts
	c.Icon = nil
	if icon != "" && len(texts) > 0 {
		size := f.ContainerLabelHeight(c)
		c.Icon = &svscene.Icon{Href: icon, Box: geo.NewBox(geo.NewPoint(0, 0), size, size)}
	}
	PlaceContainerLabel(c)
}

// ContainerLabelHeight is the space the label needs below embedded cells.
func (f *Factory) ContainerLabelHeight(c *svscene.Cell) float64 {
	return ContainerLabelHeight(c)
}

func ContainerLabelHeight(c *svscene.Cell) float64 {
	h := 0.
	for _, t := range c.Texts {
		h += t.Height()
	}
	if h > 0 {
		h += containerInset
	}
	return h
}

// PlaceContainerLabel anchors the label to the bottom left of c's box.
func PlaceContainerLabel(c *svscene.Cell) {
	x := containerInset
	if c.Icon != nil {
		c.Icon.Box.TopLeft = geo.NewPoint(x, c.Box.Height-containerInset-c.Icon.Box.Height)
		x += c.Icon.Box.Width + iconTextGap
	}
	y := c.Box.Height - ContainerLabelHeight(c)
	for i := range c.Texts {
		c.Texts[i].X = x
		c.Texts[i].Y = y
		y += c.Texts[i].Height()
	}
}
