package svworkspace

type ElementType string

const (
	Person                 ElementType = "Person"
	SoftwareSystem         ElementType = "SoftwareSystem"
	Container              ElementType = "Container"
	Component              ElementType = "Component"
	Custom                 ElementType = "Custom"
	DeploymentNode         ElementType = "DeploymentNode"
	InfrastructureNode     ElementType = "InfrastructureNode"
	SoftwareSystemInstance ElementType = "SoftwareSystemInstance"
	ContainerInstance      ElementType = "ContainerInstance"
	Group                  ElementType = "Group"
	Boundary               ElementType = "Boundary"

	// Pseudo types for terminology lookups.
	Enterprise       ElementType = "Enterprise"
	RelationshipItem ElementType = "Relationship"
)

// DefaultDeploymentEnvironmentName applies to deployment nodes and views
// without an environment.
const DefaultDeploymentEnvironmentName = "Default"

const (
	LocationInternal = "Internal"
	LocationExternal = "External"
)

// Default tags of the model, excluded from user defined tag lists.
var DefaultTags = []string{
	"Element",
	"Person",
	"Software System",
	"Container",
	"Component",
	"Deployment Node",
	"Infrastructure Node",
	"Software System Instance",
	"Container Instance",
	"Relationship",
}

var defaultTagsByType = map[ElementType]string{
	Person:                 "Element,Person",
	SoftwareSystem:         "Element,Software System",
	Container:              "Element,Container",
	Component:              "Element,Component",
	Custom:                 "Element",
	DeploymentNode:         "Element,Deployment Node",
	InfrastructureNode:     "Element,Infrastructure Node",
	SoftwareSystemInstance: "Software System Instance",
	ContainerInstance:      "Container Instance",
}

type Perspective struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
}

type Element struct {
	ID          string            `json:"id"`
	Type        ElementType       `json:"-"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Technology  string            `json:"technology,omitempty"`
	Metadata    string            `json:"metadata,omitempty"`
	Tags        string            `json:"tags,omitempty"`
	URL         string            `json:"url,omitempty"`
	Group       string            `json:"group,omitempty"`
	Location    string            `json:"location,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`

	Perspectives  []Perspective   `json:"perspectives,omitempty"`
	Relationships []*Relationship `json:"relationships,omitempty"`

	// ParentID is derived from the model nesting on load.
	ParentID string `json:"-"`

	Containers []*Element `json:"containers,omitempty"`
	Components []*Element `json:"components,omitempty"`

	Environment             string     `json:"environment,omitempty"`
	Instances               string     `json:"instances,omitempty"`
	Children                []*Element `json:"children,omitempty"`
	InfrastructureNodes     []*Element `json:"infrastructureNodes,omitempty"`
	SoftwareSystemInstances []*Element `json:"softwareSystemInstances,omitempty"`
	ContainerInstances      []*Element `json:"containerInstances,omitempty"`

	SoftwareSystemID string `json:"softwareSystemId,omitempty"`
	ContainerID      string `json:"containerId,omitempty"`
	InstanceID       int    `json:"instanceId,omitempty"`
}

func (e *Element) IsInstance() bool {
	return e.Type == SoftwareSystemInstance || e.Type == ContainerInstance
}

// HasPerspective reports whether the element declares a perspective named name.
func (e *Element) HasPerspective(name string) bool {
	return hasPerspective(e.Perspectives, name)
}

type Relationship struct {
	ID                   string            `json:"id"`
	SourceID             string            `json:"sourceId"`
	DestinationID        string            `json:"destinationId"`
	Description          string            `json:"description,omitempty"`
	Technology           string            `json:"technology,omitempty"`
	Tags                 string            `json:"tags,omitempty"`
	URL                  string            `json:"url,omitempty"`
	InteractionStyle     string            `json:"interactionStyle,omitempty"`
	LinkedRelationshipID string            `json:"linkedRelationshipId,omitempty"`
	Properties           map[string]string `json:"properties,omitempty"`
	Perspectives         []Perspective     `json:"perspectives,omitempty"`
}

func (r *Relationship) HasPerspective(name string) bool {
	return hasPerspective(r.Perspectives, name)
}

func hasPerspective(ps []Perspective, name string) bool {
	for _, p := range ps {
		if p.Name == name {
			return true
		}
	}
	return false
}

type EnterpriseInfo struct {
	Name string `json:"name"`
}

type Model struct {
	Enterprise      *EnterpriseInfo   `json:"enterprise,omitempty"`
	People          []*Element        `json:"people,omitempty"`
	SoftwareSystems []*Element        `json:"softwareSystems,omitempty"`
	DeploymentNodes []*Element        `json:"deploymentNodes,omitempty"`
	CustomElements  []*Element        `json:"customElements,omitempty"`
	Properties      map[string]string `json:"properties,omitempty"`
}
