package svworkspace

import (
	"context"
	"strconv"
	"strings"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svthemes"
)

// Configuration property names.
const (
	PropGroupSeparator        = "structurizr.groupSeparator"
	PropTitle                 = "structurizr.title"
	PropDescription           = "structurizr.description"
	PropMetadata              = "structurizr.metadata"
	PropGroupPadding          = "structurizr.groupPadding"
	PropDeploymentNodePadding = "structurizr.deploymentNodePadding"
	PropBoundaryPadding       = "structurizr.boundaryPadding"
	PropEnterpriseBoundary    = "structurizr.enterpriseBoundary"
	PropZoomOnAnimation       = "structurizr.zoomOnAnimation"
	PropGroups                = "structurizr.groups"
	PropTimezone              = "structurizr.timezone"
	PropLocale                = "structurizr.locale"
	PropSort                  = "structurizr.sort"
)

const (
	DefaultGroupPadding          = 25
	DefaultDeploymentNodePadding = 50
	DefaultBoundaryPadding       = 40
)

func svthemesSort(c *Configuration) {
	svthemes.SortElementStyles(c.Styles.Elements)
	svthemes.SortRelationshipStyles(c.Styles.Relationships)
}

// Property looks name up on the view, then the view set configuration.
func (ws *Workspace) Property(v *View, name, def string) string {
	if v != nil {
		if val, ok := v.Properties[name]; ok {
			return val
		}
	}
	if val, ok := ws.Views.Configuration.Properties[name]; ok {
		return val
	}
	return def
}

func (ws *Workspace) boolProperty(v *View, name string, def bool) bool {
	s := strings.TrimSpace(ws.Property(v, name, ""))
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func (ws *Workspace) intProperty(ctx context.Context, v *View, name string, def int) int {
	s := strings.TrimSpace(ws.Property(v, name, ""))
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Warn(ctx, "invalid integer property, using default", slog.F("property", name), slog.F("value", s), slog.F("default", def))
		return def
	}
	return i
}

func (ws *Workspace) GroupSeparator(v *View) string {
	return ws.Property(v, PropGroupSeparator, "")
}

func (ws *Workspace) ShowTitle(v *View) bool {
	return ws.boolProperty(v, PropTitle, true)
}

func (ws *Workspace) ShowDescription(v *View) bool {
	return ws.boolProperty(v, PropDescription, true)
}

func (ws *Workspace) ShowMetadata(v *View) bool {
	return ws.boolProperty(v, PropMetadata, true)
}

func (ws *Workspace) GroupPadding(ctx context.Context, v *View) int {
	return ws.intProperty(ctx, v, PropGroupPadding, DefaultGroupPadding)
}

func (ws *Workspace) DeploymentNodePadding(ctx context.Context, v *View) int {
	return ws.intProperty(ctx, v, PropDeploymentNodePadding, DefaultDeploymentNodePadding)
}

func (ws *Workspace) BoundaryPadding(ctx context.Context, v *View) int {
	return ws.intProperty(ctx, v, PropBoundaryPadding, DefaultBoundaryPadding)
}

func (ws *Workspace) EnterpriseBoundary(v *View) bool {
	return ws.boolProperty(v, PropEnterpriseBoundary, true)
}

func (ws *Workspace) ZoomOnAnimation(v *View) bool {
	return ws.boolProperty(v, PropZoomOnAnimation, false)
}

func (ws *Workspace) Groups(v *View) bool {
	return ws.boolProperty(v, PropGroups, true)
}

func (ws *Workspace) Timezone(v *View) string {
	return ws.Property(v, PropTimezone, "UTC")
}

func (ws *Workspace) Locale(v *View) string {
	return ws.Property(v, PropLocale, "en-GB")
}

var terminologyKeys = map[ElementType]struct{ key, def string }{
	Person:                 {"person", "Person"},
	SoftwareSystem:         {"softwareSystem", "Software System"},
	SoftwareSystemInstance: {"softwareSystem", "Software System"},
	Container:              {"container", "Container"},
	ContainerInstance:      {"container", "Container"},
	Component:              {"component", "Component"},
	DeploymentNode:         {"deploymentNode", "Deployment Node"},
	InfrastructureNode:     {"infrastructureNode", "Infrastructure Node"},
	Enterprise:             {"enterprise", "Enterprise"},
	RelationshipItem:       {"relationship", "Relationship"},
}

// Terminology returns the display name for an element type, honouring the
// configured terminology overrides.
func (ws *Workspace) Terminology(t ElementType) string {
	k, ok := terminologyKeys[t]
	if !ok {
		return ""
	}
	if v, ok := ws.Views.Configuration.Terminology[k.key]; ok {
		return v
	}
	return k.def
}

var metadataSymbols = map[string][2]string{
	"SquareBrackets":      {"[", "]"},
	"RoundBrackets":       {"(", ")"},
	"CurlyBrackets":       {"{", "}"},
	"AngleBrackets":       {"<", ">"},
	"DoubleAngleBrackets": {"<<", ">>"},
	"None":                {"", ""},
}

func (ws *Workspace) symbols() (string, string) {
	s, ok := metadataSymbols[ws.Views.Configuration.MetadataSymbols]
	if !ok {
		s = metadataSymbols["SquareBrackets"]
	}
	return s[0], s[1]
}

// MetadataText is the bracketed type line shown under an element's name.
func (ws *Workspace) MetadataText(e *Element, includeTechnology bool) string {
	opening, closing := ws.symbols()
	if e.Type == Custom {
		if e.Metadata == "" {
			return ""
		}
		return opening + e.Metadata + closing
	}
	term := ws.Terminology(e.Type)
	if includeTechnology && e.Technology != "" {
		return opening + term + ": " + e.Technology + closing
	}
	return opening + term + closing
}

func (ws *Workspace) RelationshipMetadataText(r *Relationship) string {
	if r.Technology == "" {
		return ""
	}
	opening, closing := ws.symbols()
	return opening + r.Technology + closing
}

// ViewTitle returns the explicit title or a default derived from the view's scope.
func (ws *Workspace) ViewTitle(v *View) string {
	if v == nil {
		return ""
	}
	if strings.TrimSpace(v.Title) != "" {
		return v.Title
	}
	if v.Type == FilteredView {
		if base := ws.View(v.BaseViewKey); base != nil && base != v {
			return ws.ViewTitle(base)
		}
	}
	if strings.TrimSpace(v.Name) != "" {
		return v.Name
	}
	return ws.DefaultViewName(v)
}

func (ws *Workspace) DefaultViewName(v *View) string {
	if v.Type == FilteredView {
		base := ws.View(v.BaseViewKey)
		if base == nil || base == v {
			return "Filtered View: " + v.BaseViewKey
		}
		v = base
	}
	name := func(id string) string {
		if e := ws.Element(id); e != nil {
			return e.Name
		}
		return id
	}

	switch v.Type {
	case CustomView:
		return "Custom View: Untitled"
	case SystemLandscapeView:
		if ws.Model.Enterprise != nil && ws.Model.Enterprise.Name != "" {
			return "System Landscape View: " + ws.Model.Enterprise.Name
		}
		return "System Landscape View"
	case SystemContextView:
		return "System Context View: " + name(v.SoftwareSystemID)
	case ContainerView:
		return "Container View: " + name(v.SoftwareSystemID)
	case ComponentView:
		c := ws.Element(v.ContainerID)
		if c == nil {
			return "Component View: " + v.ContainerID
		}
		return "Component View: " + name(c.ParentID) + " - " + c.Name
	case DynamicView:
		id := v.ElementID
		if id == "" {
			id = v.SoftwareSystemID
		}
		e := ws.Element(id)
		switch {
		case e == nil:
			return "Dynamic View"
		case e.Type == Container:
			return "Dynamic View: " + name(e.ParentID) + " - " + e.Name
		default:
			return "Dynamic View: " + e.Name
		}
	case DeploymentView:
		if v.SoftwareSystemID != "" {
			return "Deployment View: " + name(v.SoftwareSystemID) + " - " + v.Environment
		}
		return "Deployment View: " + v.Environment
	case ImageView:
		return "Image View: " + v.Key
	}
	return ""
}

// AllTagsForElement returns the element's tags, preceded by those of the
// software system or container an instance represents.
func (ws *Workspace) AllTagsForElement(e *Element) []string {
	tags := e.Tags
	switch e.Type {
	case SoftwareSystemInstance:
		if ss := ws.Element(e.SoftwareSystemID); ss != nil && ss.Tags != "" {
			tags = ss.Tags + "," + tags
		}
	case ContainerInstance:
		if c := ws.Element(e.ContainerID); c != nil && c.Tags != "" {
			tags = c.Tags + "," + tags
		}
	}
	return SplitTags(tags)
}

// AllTagsForRelationship prepends the tags of every linked relationship.
func (ws *Workspace) AllTagsForRelationship(r *Relationship) []string {
	tags := r.Tags
	seen := map[string]bool{r.ID: true}
	for linked := r.LinkedRelationshipID; linked != "" && !seen[linked]; {
		seen[linked] = true
		lr := ws.Relationship(linked)
		if lr == nil {
			break
		}
		if lr.Tags != "" {
			tags = lr.Tags + "," + tags
		}
		linked = lr.LinkedRelationshipID
	}
	return SplitTags(tags)
}

// AllPropertiesForElement merges in the properties of the element an instance
// represents. The instance's own properties win.
func (ws *Workspace) AllPropertiesForElement(e *Element) map[string]string {
	props := make(map[string]string, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	var base *Element
	switch e.Type {
	case SoftwareSystemInstance:
		base = ws.Element(e.SoftwareSystemID)
	case ContainerInstance:
		base = ws.Element(e.ContainerID)
	}
	if base != nil {
		for k, v := range base.Properties {
			if props[k] == "" {
				props[k] = v
			}
		}
	}
	return props
}

func (ws *Workspace) AllPropertiesForRelationship(r *Relationship) map[string]string {
	props := make(map[string]string, len(r.Properties))
	for k, v := range r.Properties {
		props[k] = v
	}
	seen := map[string]bool{r.ID: true}
	for linked := r.LinkedRelationshipID; linked != "" && !seen[linked]; {
		seen[linked] = true
		lr := ws.Relationship(linked)
		if lr == nil {
			break
		}
		for k, v := range lr.Properties {
			if props[k] == "" {
				props[k] = v
			}
		}
		linked = lr.LinkedRelationshipID
	}
	return props
}

// RelationshipHasPerspective follows linked relationships until one declares
// the perspective, stopping on a cycle.
func (ws *Workspace) RelationshipHasPerspective(r *Relationship, name string) bool {
	seen := map[string]bool{}
	for r != nil && !seen[r.ID] {
		if r.HasPerspective(name) {
			return true
		}
		seen[r.ID] = true
		if r.LinkedRelationshipID == "" {
			return false
		}
		r = ws.Relationship(r.LinkedRelationshipID)
	}
	return false
}
