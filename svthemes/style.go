// Package svthemes defines element and relationship style definitions as they
// appear in themes and workspaces, and loads theme documents over HTTP.
package svthemes

import (
	"sort"
)

// ElementStyleDef is one element style definition. A nil field means the
// definition does not specify that attribute.
type ElementStyleDef struct {
	Tag          string            `json:"tag"`
	ColorScheme  string            `json:"colorScheme,omitempty"`
	Width        *int              `json:"width,omitempty"`
	Height       *int              `json:"height,omitempty"`
	Background   *string           `json:"background,omitempty"`
	Stroke       *string           `json:"stroke,omitempty"`
	StrokeWidth  *int              `json:"strokeWidth,omitempty"`
	Color        *string           `json:"color,omitempty"`
	FontSize     *int              `json:"fontSize,omitempty"`
	Shape        *string           `json:"shape,omitempty"`
	Icon         *string           `json:"icon,omitempty"`
	IconPosition *string           `json:"iconPosition,omitempty"`
	Border       *string           `json:"border,omitempty"`
	Opacity      *int              `json:"opacity,omitempty"`
	Metadata     *bool             `json:"metadata,omitempty"`
	Description  *bool             `json:"description,omitempty"`
	Properties   map[string]string `json:"properties,omitempty"`
}

// MergeFrom copies every attribute o specifies onto def.
func (def *ElementStyleDef) MergeFrom(o *ElementStyleDef) {
	copyIfSet(&def.Width, o.Width)
	copyIfSet(&def.Height, o.Height)
	copyIfSet(&def.Background, o.Background)
	copyIfSet(&def.Stroke, o.Stroke)
	copyIfSet(&def.StrokeWidth, o.StrokeWidth)
	copyIfSet(&def.Color, o.Color)
	copyIfSet(&def.FontSize, o.FontSize)
	copyIfSet(&def.Shape, o.Shape)
	copyIfSet(&def.Icon, o.Icon)
	copyIfSet(&def.IconPosition, o.IconPosition)
	copyIfSet(&def.Border, o.Border)
	copyIfSet(&def.Opacity, o.Opacity)
	copyIfSet(&def.Metadata, o.Metadata)
	copyIfSet(&def.Description, o.Description)
}

// Copy returns a copy whose pointer fields can be merged into without
// affecting def.
func (def *ElementStyleDef) Copy() *ElementStyleDef {
	cp := &ElementStyleDef{Tag: def.Tag, ColorScheme: def.ColorScheme, Properties: def.Properties}
	cp.MergeFrom(def)
	return cp
}

// RelationshipStyleDef is one relationship style definition.
type RelationshipStyleDef struct {
	Tag         string            `json:"tag"`
	ColorScheme string            `json:"colorScheme,omitempty"`
	Thickness   *int              `json:"thickness,omitempty"`
	Color       *string           `json:"color,omitempty"`
	Dashed      *bool             `json:"dashed,omitempty"`
	Style       *string           `json:"style,omitempty"`
	Routing     *string           `json:"routing,omitempty"`
	Jump        *bool             `json:"jump,omitempty"`
	FontSize    *int              `json:"fontSize,omitempty"`
	Width       *int              `json:"width,omitempty"`
	Position    *int              `json:"position,omitempty"`
	Opacity     *int              `json:"opacity,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

func (def *RelationshipStyleDef) MergeFrom(o *RelationshipStyleDef) {
	copyIfSet(&def.Thickness, o.Thickness)
	copyIfSet(&def.Color, o.Color)
	copyIfSet(&def.Dashed, o.Dashed)
	copyIfSet(&def.Style, o.Style)
	copyIfSet(&def.Routing, o.Routing)
	copyIfSet(&def.Jump, o.Jump)
	copyIfSet(&def.FontSize, o.FontSize)
	copyIfSet(&def.Width, o.Width)
	copyIfSet(&def.Position, o.Position)
	copyIfSet(&def.Opacity, o.Opacity)
}

func (def *RelationshipStyleDef) Copy() *RelationshipStyleDef {
	cp := &RelationshipStyleDef{Tag: def.Tag, ColorScheme: def.ColorScheme, Properties: def.Properties}
	cp.MergeFrom(def)
	return cp
}

func copyIfSet[T any](dst **T, src *T) {
	if src == nil {
		return
	}
	v := *src
	*dst = &v
}

// Color schemes a definition may be restricted to.
const (
	ColorSchemeLight = "Light"
	ColorSchemeDark  = "Dark"
)

func colorSchemeRank(s string) int {
	switch s {
	case "":
		return 0
	case ColorSchemeDark:
		return 1
	default:
		return 2
	}
}

// SortElementStyles orders definitions so that those without a color scheme
// come first, then Dark, then Light, each by tag. Document order is kept
// within a tag.
func SortElementStyles(defs []*ElementStyleDef) {
	sort.SliceStable(defs, func(i, j int) bool {
		ri, rj := colorSchemeRank(defs[i].ColorScheme), colorSchemeRank(defs[j].ColorScheme)
		if ri != rj {
			return ri < rj
		}
		return defs[i].Tag < defs[j].Tag
	})
}

func SortRelationshipStyles(defs []*RelationshipStyleDef) {
	sort.SliceStable(defs, func(i, j int) bool {
		ri, rj := colorSchemeRank(defs[i].ColorScheme), colorSchemeRank(defs[j].ColorScheme)
		if ri != rj {
			return ri < rj
		}
		return defs[i].Tag < defs[j].Tag
	})
}
