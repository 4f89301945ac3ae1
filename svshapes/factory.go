// Package svshapes builds scene cells for elements from their resolved style.
package svshapes

import (
	"context"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/lib/textmeasure"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svworkspace"
)

// Content is the text and icon stacked inside a shape.
type Content struct {
	Name        string
	Metadata    string
	Description string
	Icon        string
}

type builder func(ctx context.Context, f *Factory, c *svscene.Cell, content Content, style svstyle.ElementStyle)

// labeled lays content out inside the shape's inner box, shrunk by padding.
func labeled(padding float64) builder {
	return func(ctx context.Context, f *Factory, c *svscene.Cell, content Content, style svstyle.ElementStyle) {
		inner := c.Outline.GetInnerBox()
		inner = geo.NewBox(geo.NewPoint(inner.TopLeft.X+padding, inner.TopLeft.Y+padding),
			inner.Width-2*padding, inner.Height-2*padding)
		f.Layout(ctx, c, inner, content, style)
	}
}

// person keeps icons out of the head.
func person(ctx context.Context, f *Factory, c *svscene.Cell, content Content, style svstyle.ElementStyle) {
	if style.IconPosition == svstyle.IconTop {
		style.IconPosition = svstyle.IconBottom
	}
	labeled(10)(ctx, f, c, content, style)
}

var builders = map[shape.Kind]builder{
	shape.Box:                   labeled(20),
	shape.RoundedBox:            labeled(20),
	shape.Cylinder:              labeled(10),
	shape.Bucket:                labeled(10),
	shape.Person:                person,
	shape.Robot:                 person,
	shape.Ellipse:               labeled(5),
	shape.Circle:                labeled(5),
	shape.Hexagon:               labeled(5),
	shape.Diamond:               labeled(0),
	shape.Pipe:                  labeled(10),
	shape.Folder:                labeled(20),
	shape.Component:             labeled(20),
	shape.WebBrowser:            labeled(10),
	shape.Window:                labeled(10),
	shape.Terminal:              labeled(10),
	shape.Shell:                 labeled(10),
	shape.MobileDevicePortrait:  labeled(10),
	shape.MobileDeviceLandscape: labeled(10),
}

// HasBuilder reports whether k can be built.
func HasBuilder(k shape.Kind) bool {
	_, ok := builders[k]
	return ok
}

// Factory creates element cells. It owns a text ruler and is not safe for
// concurrent use.
type Factory struct {
	ruler *textmeasure.Ruler
}

func NewFactory() (*Factory, error) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return nil, err
	}
	return &Factory{ruler: ruler}, nil
}

func (f *Factory) Ruler() *textmeasure.Ruler {
	return f.ruler
}

// CreateShape builds the cell for element e at pos.
func (f *Factory) CreateShape(ctx context.Context, kind shape.Kind, e *svworkspace.Element, style svstyle.ElementStyle, pos *geo.Point, content Content) *svscene.Cell {
	box := geo.NewBox(pos.Copy(), float64(style.Width), float64(style.Height))
	c := &svscene.Cell{
		ID:            e.ID,
		Role:          svscene.RoleElement,
		Box:           box,
		Outline:       shape.NewShape(kind, box.Copy()),
		Element:       e,
		ComputedStyle: ComputedStyle(kind, style),
		Interactive:   true,
		URL:           e.URL,
	}
	b, ok := builders[kind]
	if !ok {
		b = builders[shape.Box]
	}
	b(ctx, f, c, content, style)
	return c
}

// ComputedStyle converts a resolved style into the presentation a cell carries.
func ComputedStyle(kind shape.Kind, style svstyle.ElementStyle) svscene.ComputedStyle {
	return svscene.ComputedStyle{
		Fill:        style.Background,
		Stroke:      style.Stroke,
		Color:       style.Color,
		StrokeWidth: style.StrokeWidth,
		Opacity:     style.Opacity,
		Border:      style.Border,
		FontSize:    style.FontSize,
		Shape:       kind,
		StyleKey:    style.Key(),
		Tags:        append([]string(nil), style.Tags...),
	}
}
