// Package svstyle resolves the effective style of elements and relationships
// from theme and workspace style definitions.
package svstyle

import (
	"fmt"
	"strings"

	"github.com/structview/structview/lib/shape"
)

const (
	DefaultElementWidth  = 450
	DefaultElementHeight = 300
	DefaultFontSize      = 24
	TitleFontSize        = 36
	DefaultStrokeWidth   = 2
	DefaultOpacity       = 100
	PersonSize           = 400

	DefaultRelationshipThickness = 2
	DefaultRelationshipWidth     = 200
	DefaultRelationshipPosition  = 50
)

// Tags of the diagram level pseudo-elements.
const (
	TagDiagramTitle       = "Diagram:Title"
	TagDiagramDescription = "Diagram:Description"
	TagDiagramMetadata    = "Diagram:Metadata"
)

// Border styles.
const (
	BorderSolid  = "Solid"
	BorderDashed = "Dashed"
	BorderDotted = "Dotted"
)

// Icon positions.
const (
	IconTop    = "Top"
	IconBottom = "Bottom"
	IconLeft   = "Left"
)

// Relationship routings.
const (
	RoutingDirect     = "Direct"
	RoutingOrthogonal = "Orthogonal"
	RoutingCurved     = "Curved"
)

type Defaults struct {
	Background  string
	Color       string
	StrokeWidth int
}

var (
	LightDefaults = Defaults{Background: "#ffffff", Color: "#444444", StrokeWidth: DefaultStrokeWidth}
	DarkDefaults  = Defaults{Background: "#111111", Color: "#cccccc", StrokeWidth: DefaultStrokeWidth}
)

func ModeDefaults(dark bool) Defaults {
	if dark {
		return DarkDefaults
	}
	return LightDefaults
}

// ElementStyle is a resolved element style. Boundary styles may leave
// Stroke, Color, StrokeWidth, Shape and Border empty; BoundaryStyleFor fills
// them from the element the boundary represents.
type ElementStyle struct {
	Tags []string

	Width  int
	Height int
	// DefaultSizeInUse is false once any matched definition sets a width or height.
	DefaultSizeInUse bool

	Background   string
	Stroke       string
	StrokeWidth  int
	Color        string
	FontSize     int
	Shape        string
	Icon         string
	IconPosition string
	Border       string
	Opacity      int
	Metadata     bool
	Description  bool
	Properties   map[string]string
}

// Kind maps the style's shape name to an outline kind.
func (s ElementStyle) Kind() shape.Kind {
	k, _ := shape.ParseKind(s.Shape)
	return k
}

// Key identifies the visual attributes of the style. Styles with equal keys
// render identically.
func (s ElementStyle) Key() string {
	return fmt.Sprintf("%d,%d,%s,%s,%d,%s,%d,%s,%s,%s,%s,%d,%t,%t",
		s.Width, s.Height, s.Background, s.Stroke, s.StrokeWidth, s.Color, s.FontSize,
		s.Shape, s.Icon, s.IconPosition, s.Border, s.Opacity, s.Metadata, s.Description)
}

// LegendTag is the most specific tag, used to label the style in a key.
func (s ElementStyle) LegendTag() string {
	if len(s.Tags) == 0 {
		return "Element"
	}
	return s.Tags[len(s.Tags)-1]
}

func (s ElementStyle) String() string {
	return strings.Join(s.Tags, ",") + ":" + s.Key()
}

type RelationshipStyle struct {
	Tags []string

	Thickness int
	Color     string
	Dashed    bool
	// Style is Solid, Dashed or Dotted.
	Style    string
	Routing  string
	Jump     bool
	FontSize int
	Width    int
	Position int
	Opacity  int
}

func (s RelationshipStyle) Key() string {
	return fmt.Sprintf("%d,%s,%s,%s,%t,%d,%d,%d,%d",
		s.Thickness, s.Color, s.Style, s.Routing, s.Jump, s.FontSize, s.Width, s.Position, s.Opacity)
}

func (s RelationshipStyle) LegendTag() string {
	if len(s.Tags) == 0 {
		return "Relationship"
	}
	return s.Tags[len(s.Tags)-1]
}

// BoundaryStyleFor derives the style of a boundary drawn around an element.
// Attributes the boundary definition leaves unset come from the element's
// style. Neither argument is modified.
func BoundaryStyleFor(element, boundary ElementStyle) ElementStyle {
	bs := boundary
	bs.Tags = append([]string(nil), boundary.Tags...)
	if bs.Stroke == "" {
		bs.Stroke = element.Stroke
	}
	if bs.Color == "" {
		bs.Color = element.Stroke
		if bs.Color == "" {
			bs.Color = element.Color
		}
	}
	if bs.StrokeWidth == 0 {
		bs.StrokeWidth = element.StrokeWidth
	}
	if bs.Shape == "" {
		bs.Shape = shape.Box.String()
	}
	if bs.Border == "" {
		bs.Border = BorderDashed
	}
	return bs
}
