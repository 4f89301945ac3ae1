package svworkspace

import (
	"github.com/structview/structview/svthemes"
)

type ViewType string

const (
	CustomView          ViewType = "Custom"
	SystemLandscapeView ViewType = "SystemLandscape"
	SystemContextView   ViewType = "SystemContext"
	ContainerView       ViewType = "Container"
	ComponentView       ViewType = "Component"
	DynamicView         ViewType = "Dynamic"
	DeploymentView      ViewType = "Deployment"
	FilteredView        ViewType = "Filtered"
	ImageView           ViewType = "Image"
)

// Filter modes of a filtered view.
const (
	FilterInclude = "Include"
	FilterExclude = "Exclude"
)

type ElementView struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type RelationshipView struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Order       string   `json:"order,omitempty"`
	Response    bool     `json:"response,omitempty"`
	Vertices    []Vertex `json:"vertices,omitempty"`
	Routing     string   `json:"routing,omitempty"`
	Position    *int     `json:"position,omitempty"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type AnimationStep struct {
	Order         int      `json:"order"`
	Elements      []string `json:"elements,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
}

type AutomaticLayout struct {
	Implementation string `json:"implementation,omitempty"`
	RankDirection  string `json:"rankDirection,omitempty"`
	RankSeparation int    `json:"rankSeparation,omitempty"`
	NodeSeparation int    `json:"nodeSeparation,omitempty"`
	EdgeSeparation int    `json:"edgeSeparation,omitempty"`
	Vertices       bool   `json:"vertices,omitempty"`
}

type View struct {
	Type        ViewType `json:"-"`
	Key         string   `json:"key"`
	Order       int      `json:"order,omitempty"`
	Title       string   `json:"title,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`

	SoftwareSystemID string `json:"softwareSystemId,omitempty"`
	ContainerID      string `json:"containerId,omitempty"`
	ElementID        string `json:"elementId,omitempty"`
	Environment      string `json:"environment,omitempty"`

	// Filtered views.
	BaseViewKey string   `json:"baseViewKey,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	// Image views.
	Content     string `json:"content,omitempty"`
	ContentType string `json:"contentType,omitempty"`

	EnterpriseBoundaryVisible               *bool `json:"enterpriseBoundaryVisible,omitempty"`
	ExternalSoftwareSystemBoundariesVisible *bool `json:"externalSoftwareSystemBoundariesVisible,omitempty"`
	ExternalContainerBoundariesVisible      *bool `json:"externalContainerBoundariesVisible,omitempty"`

	Elements        []*ElementView      `json:"elements,omitempty"`
	Relationships   []*RelationshipView `json:"relationships,omitempty"`
	Animations      []*AnimationStep    `json:"animations,omitempty"`
	AutomaticLayout *AutomaticLayout    `json:"automaticLayout,omitempty"`
	Dimensions      *Dimensions         `json:"dimensions,omitempty"`
	PaperSize       string              `json:"paperSize,omitempty"`
	Properties      map[string]string   `json:"properties,omitempty"`

	// docOrder is the position of the view in the document.
	docOrder int
}

// ElementView returns the view's entry for element id.
func (v *View) ElementView(id string) *ElementView {
	for _, ev := range v.Elements {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}

func (v *View) RelationshipView(id string) *RelationshipView {
	for _, rv := range v.Relationships {
		if rv.ID == id {
			return rv
		}
	}
	return nil
}

// HasElement reports whether element id is placed on the view.
func (v *View) HasElement(id string) bool {
	return v.ElementView(id) != nil
}

// RemoveElement drops element id from the view.
func (v *View) RemoveElement(id string) {
	out := v.Elements[:0]
	for _, ev := range v.Elements {
		if ev.ID != id {
			out = append(out, ev)
		}
	}
	v.Elements = out
}

// IsPositioned reports whether any element has a non zero position.
func (v *View) IsPositioned() bool {
	for _, ev := range v.Elements {
		if ev.X != 0 || ev.Y != 0 {
			return true
		}
	}
	return false
}

type Branding struct {
	Logo string         `json:"logo,omitempty"`
	Font *svthemes.Font `json:"font,omitempty"`
}

type Styles struct {
	Elements      []*svthemes.ElementStyleDef      `json:"elements,omitempty"`
	Relationships []*svthemes.RelationshipStyleDef `json:"relationships,omitempty"`
}

type Configuration struct {
	Branding        Branding          `json:"branding"`
	Styles          Styles            `json:"styles"`
	Themes          []string          `json:"themes,omitempty"`
	Theme           string            `json:"theme,omitempty"`
	Terminology     map[string]string `json:"terminology,omitempty"`
	MetadataSymbols string            `json:"metadataSymbols,omitempty"`
	DefaultView     string            `json:"defaultView,omitempty"`
	ViewSortOrder   string            `json:"viewSortOrder,omitempty"`
	Properties      map[string]string `json:"properties,omitempty"`
}

type ViewSet struct {
	CustomViews          []*View       `json:"customViews,omitempty"`
	SystemLandscapeViews []*View       `json:"systemLandscapeViews,omitempty"`
	SystemContextViews   []*View       `json:"systemContextViews,omitempty"`
	ContainerViews       []*View       `json:"containerViews,omitempty"`
	ComponentViews       []*View       `json:"componentViews,omitempty"`
	DynamicViews         []*View       `json:"dynamicViews,omitempty"`
	DeploymentViews      []*View       `json:"deploymentViews,omitempty"`
	FilteredViews        []*View       `json:"filteredViews,omitempty"`
	ImageViews           []*View       `json:"imageViews,omitempty"`
	Configuration        Configuration `json:"configuration"`
}
