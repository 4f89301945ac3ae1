package svstyle

import (
	"strings"

	"github.com/structview/structview/lib/color"
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/svthemes"
	"github.com/structview/structview/svworkspace"
)

// Resolver computes styles for one workspace under one rendering context.
// Styles are recomputed on every call.
type Resolver struct {
	rc *RenderingContext
	ws *svworkspace.Workspace
}

func NewResolver(rc *RenderingContext, ws *svworkspace.Workspace) *Resolver {
	return &Resolver{rc: rc, ws: ws}
}

func colorScheme(dark bool) string {
	if dark {
		return svthemes.ColorSchemeDark
	}
	return svthemes.ColorSchemeLight
}

// elementStylesByTag merges theme then workspace definitions per tag. A later
// definition copies the attributes it specifies onto the earlier ones.
func (r *Resolver) elementStylesByTag(dark bool) map[string]*svthemes.ElementStyleDef {
	var defs []*svthemes.ElementStyleDef
	for _, t := range r.rc.Themes() {
		defs = append(defs, t.Elements...)
	}
	defs = append(defs, r.ws.Views.Configuration.Styles.Elements...)

	scheme := colorScheme(dark)
	byTag := make(map[string]*svthemes.ElementStyleDef)
	for _, def := range defs {
		if def.ColorScheme != "" && def.ColorScheme != scheme {
			continue
		}
		tag := strings.TrimSpace(def.Tag)
		if existing, ok := byTag[tag]; ok {
			existing.MergeFrom(def)
			continue
		}
		byTag[tag] = def.Copy()
	}
	return byTag
}

func (r *Resolver) relationshipStylesByTag(dark bool) map[string]*svthemes.RelationshipStyleDef {
	var defs []*svthemes.RelationshipStyleDef
	for _, t := range r.rc.Themes() {
		defs = append(defs, t.Relationships...)
	}
	defs = append(defs, r.ws.Views.Configuration.Styles.Relationships...)

	scheme := colorScheme(dark)
	byTag := make(map[string]*svthemes.RelationshipStyleDef)
	for _, def := range defs {
		if def.ColorScheme != "" && def.ColorScheme != scheme {
			continue
		}
		tag := strings.TrimSpace(def.Tag)
		if existing, ok := byTag[tag]; ok {
			existing.MergeFrom(def)
			continue
		}
		byTag[tag] = def.Copy()
	}
	return byTag
}

// Element resolves the style of e. Tags are applied in the element's order
// and a later tag overrides the attributes an earlier one set.
func (r *Resolver) Element(e *svworkspace.Element, dark bool) ElementStyle {
	defaults := ModeDefaults(dark)
	byTag := r.elementStylesByTag(dark)

	style := ElementStyle{
		Tags:             []string{"Element"},
		Width:            DefaultElementWidth,
		Height:           DefaultElementHeight,
		DefaultSizeInUse: true,
		IconPosition:     IconBottom,
		Opacity:          DefaultOpacity,
		Metadata:         true,
		Description:      true,
	}
	switch e.Type {
	case svworkspace.DeploymentNode:
		style.Tags = append(style.Tags, "Deployment Node")
	case svworkspace.Group:
		style.Tags = append(style.Tags, "Group")
	case svworkspace.Boundary:
		style.Tags = append(style.Tags, "Boundary")
	}

	var strokeWidth *int
	var fontSize *int
	for _, tag := range r.ws.AllTagsForElement(e) {
		def, ok := byTag[tag]
		if !ok {
			continue
		}
		if def.Width != nil || def.Height != nil {
			style.DefaultSizeInUse = false
		}
		setIf(&style.Width, def.Width)
		setIf(&style.Height, def.Height)
		setIf(&style.Background, def.Background)
		setIf(&style.Stroke, def.Stroke)
		setIf(&style.Color, def.Color)
		setIf(&style.Shape, def.Shape)
		setIf(&style.Icon, def.Icon)
		setIf(&style.IconPosition, def.IconPosition)
		setIf(&style.Border, def.Border)
		setIf(&style.Opacity, def.Opacity)
		setIf(&style.Metadata, def.Metadata)
		setIf(&style.Description, def.Description)
		if def.StrokeWidth != nil {
			strokeWidth = def.StrokeWidth
		}
		if def.FontSize != nil {
			fontSize = def.FontSize
		}
		if def.Properties != nil {
			style.Properties = def.Properties
		}

		recorded := strings.TrimPrefix(tag, "Group:")
		if !contains(style.Tags, recorded) {
			style.Tags = append(style.Tags, recorded)
		}
	}

	isBoundary := e.Type == svworkspace.Boundary

	if style.Background != "" && style.Stroke == "" {
		style.Stroke = color.Shade(style.Background, -10)
	}
	if style.Background == "" {
		style.Background = defaults.Background
	}
	if style.Stroke == "" && !isBoundary {
		style.Stroke = defaults.Color
	}
	if style.Color == "" && !isBoundary {
		style.Color = defaults.Color
	}
	switch {
	case strokeWidth != nil:
		style.StrokeWidth = int(geo.Clamp(float64(*strokeWidth), 1, 10))
	case !isBoundary:
		style.StrokeWidth = defaults.StrokeWidth
	}
	if style.Shape == "" && !isBoundary {
		style.Shape = "Box"
	}
	if style.Border == "" && !isBoundary {
		if e.Type == svworkspace.Group {
			style.Border = BorderDotted
		} else {
			style.Border = BorderSolid
		}
	}

	switch style.Shape {
	case "MobileDevicePortrait":
		if style.Height < style.Width {
			style.Width, style.Height = style.Height, style.Width
		}
	case "MobileDeviceLandscape":
		if style.Height > style.Width {
			style.Width, style.Height = style.Height, style.Width
		}
	}

	if style.DefaultSizeInUse && (style.Shape == "Person" || style.Shape == "Robot") {
		style.Width = PersonSize
		style.Height = PersonSize
	}

	if style.Icon != "" && r.rc.IsIgnored(style.Icon) {
		style.Icon = ""
	}

	style.Opacity = int(geo.Clamp(float64(style.Opacity), 0, 100))

	if fontSize != nil {
		style.FontSize = *fontSize
	} else if contains(svworkspace.SplitTags(e.Tags), TagDiagramTitle) {
		style.FontSize = TitleFontSize
	} else {
		style.FontSize = DefaultFontSize
	}
	return style
}

// Relationship resolves the style of rel.
func (r *Resolver) Relationship(rel *svworkspace.Relationship, dark bool) RelationshipStyle {
	defaults := ModeDefaults(dark)
	byTag := r.relationshipStylesByTag(dark)

	style := RelationshipStyle{
		Tags:      []string{"Relationship"},
		Thickness: DefaultRelationshipThickness,
		Color:     defaults.Color,
		Dashed:    true,
		Routing:   RoutingDirect,
		FontSize:  DefaultFontSize,
		Width:     DefaultRelationshipWidth,
		Position:  DefaultRelationshipPosition,
		Opacity:   DefaultOpacity,
	}

	for _, tag := range r.ws.AllTagsForRelationship(rel) {
		def, ok := byTag[tag]
		if !ok {
			continue
		}
		setIf(&style.Thickness, def.Thickness)
		setIf(&style.Color, def.Color)
		setIf(&style.Dashed, def.Dashed)
		setIf(&style.Style, def.Style)
		setIf(&style.Routing, def.Routing)
		setIf(&style.Jump, def.Jump)
		setIf(&style.FontSize, def.FontSize)
		setIf(&style.Width, def.Width)
		setIf(&style.Position, def.Position)
		setIf(&style.Opacity, def.Opacity)
		if !contains(style.Tags, tag) {
			style.Tags = append(style.Tags, tag)
		}
	}

	if style.Style == "" {
		if style.Dashed {
			style.Style = BorderDashed
		} else {
			style.Style = BorderSolid
		}
	}
	style.Thickness = int(geo.Clamp(float64(style.Thickness), 1, 10))
	style.Opacity = int(geo.Clamp(float64(style.Opacity), 0, 100))
	return style
}

// Group resolves the style of a synthetic group named name.
func (r *Resolver) Group(name string, dark bool) ElementStyle {
	return r.Element(GroupElement(name), dark)
}

// GroupElement is the synthetic element styled for group name.
func GroupElement(name string) *svworkspace.Element {
	return &svworkspace.Element{
		ID:   "group:" + name,
		Type: svworkspace.Group,
		Name: name,
		Tags: "Group,Group:" + name,
	}
}

// Boundary resolves the style of a boundary drawn around e.
func (r *Resolver) Boundary(e *svworkspace.Element, dark bool) ElementStyle {
	tags := []string{"Boundary"}
	switch e.Type {
	case svworkspace.SoftwareSystem:
		tags = append(tags, "Boundary:SoftwareSystem")
	case svworkspace.Container:
		tags = append(tags, "Boundary:Container")
	case svworkspace.Enterprise:
		tags = append(tags, "Boundary:Enterprise")
	}
	be := &svworkspace.Element{
		ID:   "boundary:" + e.ID,
		Type: svworkspace.Boundary,
		Name: e.Name,
		Tags: strings.Join(tags, ","),
	}
	bs := r.Element(be, dark)
	if e.Type == svworkspace.Enterprise {
		return BoundaryStyleFor(ElementStyle{Stroke: ModeDefaults(dark).Color, Color: ModeDefaults(dark).Color, StrokeWidth: DefaultStrokeWidth}, bs)
	}
	return BoundaryStyleFor(r.Element(e, dark), bs)
}

// Diagram resolves the style of a diagram pseudo-element such as the title.
func (r *Resolver) Diagram(tag string, dark bool) ElementStyle {
	return r.Element(&svworkspace.Element{ID: tag, Tags: tag}, dark)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
