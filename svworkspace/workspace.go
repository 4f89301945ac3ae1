// Package svworkspace is a read only view of a workspace document: the model,
// its views and the view configuration. The only mutable state is view local
// geometry (element positions and relationship vertices).
package svworkspace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"oss.terrastruct.com/util-go/xdefer"
)

type Workspace struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Version          string            `json:"version,omitempty"`
	LastModifiedDate string            `json:"lastModifiedDate,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
	Model            Model             `json:"model"`
	Views            ViewSet           `json:"views"`

	elements      map[string]*Element
	relationships map[string]*Relationship
	allViews      []*View
	viewsByKey    map[string]*View
}

func Load(r io.Reader) (ws *Workspace, err error) {
	defer xdefer.Errorf(&err, "failed to load workspace")

	ws = &Workspace{}
	dec := json.NewDecoder(r)
	if err := dec.Decode(ws); err != nil {
		return nil, err
	}
	if err := ws.init(); err != nil {
		return nil, err
	}
	return ws, nil
}

func LoadFile(path string) (*Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (ws *Workspace) init() error {
	ws.elements = make(map[string]*Element)
	ws.relationships = make(map[string]*Relationship)
	ws.viewsByKey = make(map[string]*View)
	ws.allViews = nil

	if ws.Properties == nil {
		ws.Properties = map[string]string{}
	}
	if ws.Model.Properties == nil {
		ws.Model.Properties = map[string]string{}
	}

	m := &ws.Model
	for _, e := range m.CustomElements {
		ws.registerElement(e, Custom, "")
	}
	for _, p := range m.People {
		ws.registerElement(p, Person, "")
	}
	for _, ss := range m.SoftwareSystems {
		ws.registerElement(ss, SoftwareSystem, "")
		for _, c := range ss.Containers {
			ws.registerElement(c, Container, ss.ID)
			for _, comp := range c.Components {
				ws.registerElement(comp, Component, c.ID)
			}
		}
	}
	for _, dn := range m.DeploymentNodes {
		if err := ws.registerDeploymentNode(dn, nil); err != nil {
			return err
		}
	}

	for _, e := range ws.elements {
		for _, r := range e.Relationships {
			ws.relationships[r.ID] = r
			if r.Tags == "" {
				r.Tags = "Relationship"
			}
			if r.Properties == nil {
				r.Properties = map[string]string{}
			}
		}
	}
	for _, r := range ws.relationships {
		ws.inheritURL(r)
	}

	ws.initViews()
	return nil
}

func (ws *Workspace) registerElement(e *Element, t ElementType, parentID string) {
	if e == nil {
		return
	}
	e.Type = t
	e.ParentID = parentID
	if e.Tags == "" {
		e.Tags = defaultTagsByType[t]
	}
	if strings.TrimSpace(e.URL) == "" {
		e.URL = ""
	}
	if e.Properties == nil {
		e.Properties = map[string]string{}
	}
	ws.elements[e.ID] = e
}

func (ws *Workspace) registerDeploymentNode(dn *Element, parent *Element) error {
	parentID := ""
	if parent != nil {
		parentID = parent.ID
	}
	if dn.Environment == "" {
		dn.Environment = DefaultDeploymentEnvironmentName
	}
	ws.registerElement(dn, DeploymentNode, parentID)

	for _, child := range dn.Children {
		if err := ws.registerDeploymentNode(child, dn); err != nil {
			return err
		}
	}

	for _, ssi := range dn.SoftwareSystemInstances {
		ss := ws.elements[ssi.SoftwareSystemID]
		if ss == nil {
			return fmt.Errorf("software system instance %s references unknown software system %q", ssi.ID, ssi.SoftwareSystemID)
		}
		ssi.Name = ss.Name
		if ssi.Description == "" {
			ssi.Description = ss.Description
		}
		if ssi.URL == "" {
			ssi.URL = ss.URL
		}
		if ssi.Environment == "" {
			ssi.Environment = dn.Environment
		}
		ws.registerElement(ssi, SoftwareSystemInstance, dn.ID)
	}

	for _, ci := range dn.ContainerInstances {
		c := ws.elements[ci.ContainerID]
		if c == nil {
			return fmt.Errorf("container instance %s references unknown container %q", ci.ID, ci.ContainerID)
		}
		ci.Name = c.Name
		if ci.Description == "" {
			ci.Description = c.Description
		}
		ci.Technology = c.Technology
		if ci.URL == "" {
			ci.URL = c.URL
		}
		if ci.Environment == "" {
			ci.Environment = dn.Environment
		}
		ws.registerElement(ci, ContainerInstance, dn.ID)
	}

	for _, in := range dn.InfrastructureNodes {
		if in.Environment == "" {
			in.Environment = dn.Environment
		}
		ws.registerElement(in, InfrastructureNode, dn.ID)
	}
	return nil
}

// inheritURL copies the URL of the first linked relationship that has one.
func (ws *Workspace) inheritURL(r *Relationship) {
	seen := map[string]bool{r.ID: true}
	for linked := r.LinkedRelationshipID; strings.TrimSpace(r.URL) == "" && linked != "" && !seen[linked]; {
		seen[linked] = true
		lr := ws.relationships[linked]
		if lr == nil {
			break
		}
		r.URL = lr.URL
		linked = lr.LinkedRelationshipID
	}
	r.URL = strings.TrimSpace(r.URL)
}

func (ws *Workspace) initViews() {
	register := func(views []*View, t ViewType) {
		for _, v := range views {
			v.Type = t
			v.docOrder = len(ws.allViews)
			if v.Properties == nil {
				v.Properties = map[string]string{}
			}
			if t == DeploymentView && strings.TrimSpace(v.Environment) == "" {
				v.Environment = DefaultDeploymentEnvironmentName
			}
			ws.allViews = append(ws.allViews, v)
			ws.viewsByKey[v.Key] = v
		}
	}
	vs := &ws.Views
	register(vs.CustomViews, CustomView)
	register(vs.SystemLandscapeViews, SystemLandscapeView)
	register(vs.SystemContextViews, SystemContextView)
	register(vs.ContainerViews, ContainerView)
	register(vs.ComponentViews, ComponentView)
	register(vs.DynamicViews, DynamicView)
	register(vs.DeploymentViews, DeploymentView)
	register(vs.FilteredViews, FilteredView)
	register(vs.ImageViews, ImageView)

	c := &vs.Configuration
	if c.Properties == nil {
		c.Properties = map[string]string{}
	}
	if c.Terminology == nil {
		c.Terminology = map[string]string{}
	}
	if c.MetadataSymbols == "" {
		c.MetadataSymbols = "SquareBrackets"
	}
	if c.Theme != "" {
		c.Themes = append([]string{c.Theme}, c.Themes...)
		c.Theme = ""
	}
	svthemesSort(c)
}

func (ws *Workspace) Element(id string) *Element {
	return ws.elements[id]
}

func (ws *Workspace) Relationship(id string) *Relationship {
	return ws.relationships[id]
}

// Elements returns every element ordered by id.
func (ws *Workspace) Elements() []*Element {
	els := make([]*Element, 0, len(ws.elements))
	for _, e := range ws.elements {
		els = append(els, e)
	}
	sort.Slice(els, func(i, j int) bool {
		return lessID(els[i].ID, els[j].ID)
	})
	return els
}

func (ws *Workspace) Relationships() []*Relationship {
	rels := make([]*Relationship, 0, len(ws.relationships))
	for _, r := range ws.relationships {
		rels = append(rels, r)
	}
	sort.Slice(rels, func(i, j int) bool {
		return lessID(rels[i].ID, rels[j].ID)
	})
	return rels
}

func (ws *Workspace) View(key string) *View {
	return ws.viewsByKey[key]
}

// Children returns the elements whose parent is id.
func (ws *Workspace) Children(id string) []*Element {
	var out []*Element
	for _, e := range ws.Elements() {
		if e.ParentID == id {
			out = append(out, e)
		}
	}
	return out
}

var defaultViewOrder = map[ViewType]int{
	CustomView:          0,
	ImageView:           1,
	SystemLandscapeView: 2,
	SystemContextView:   3,
	ContainerView:       4,
	ComponentView:       5,
	FilteredView:        6,
	DynamicView:         7,
	DeploymentView:      8,
}

// SortedViews returns every view, ordered by the structurizr.sort property.
func (ws *Workspace) SortedViews() []*View {
	views := make([]*View, len(ws.allViews))
	copy(views, ws.allViews)

	sortOrder := strings.ToLower(ws.Views.Configuration.Properties["structurizr.sort"])
	if sortOrder == "" {
		sortOrder = strings.ToLower(ws.Views.Configuration.ViewSortOrder)
	}
	switch sortOrder {
	case "key":
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Key < views[j].Key
		})
	case "type":
		sort.SliceStable(views, func(i, j int) bool {
			ti, tj := defaultViewOrder[views[i].Type], defaultViewOrder[views[j].Type]
			if ti != tj {
				return ti < tj
			}
			return views[i].Key < views[j].Key
		})
	case "created":
		sort.SliceStable(views, func(i, j int) bool {
			if views[i].Order != views[j].Order {
				return views[i].Order < views[j].Order
			}
			return views[i].docOrder < views[j].docOrder
		})
	default:
		sort.SliceStable(views, func(i, j int) bool {
			return defaultViewOrder[views[i].Type] < defaultViewOrder[views[j].Type]
		})
	}
	return views
}

// SortedDynamicRelationships orders a dynamic view's relationships by order,
// comparing dotted orders numerically, then by relationship id.
func (ws *Workspace) SortedDynamicRelationships(v *View) []*RelationshipView {
	rvs := make([]*RelationshipView, len(v.Relationships))
	copy(rvs, v.Relationships)
	sort.SliceStable(rvs, func(i, j int) bool {
		if c := CompareOrder(rvs[i].Order, rvs[j].Order); c != 0 {
			return c < 0
		}
		return lessID(rvs[i].ID, rvs[j].ID)
	})
	return rvs
}

// CompareOrder compares dynamic view orders such as "1.2" and "1.10" segment
// by segment, numerically where both segments are numbers.
func CompareOrder(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if ai != bi {
				if ai < bi {
					return -1
				}
				return 1
			}
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

func lessID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

// LastModified parses the lastModifiedDate attribute.
func (ws *Workspace) LastModified() (time.Time, bool) {
	if ws.LastModifiedDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, ws.LastModifiedDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Tags lists every distinct tag used in the model, sorted.
func (ws *Workspace) Tags() []string {
	seen := map[string]bool{}
	var tags []string
	add := func(s string) {
		for _, t := range SplitTags(s) {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	for _, e := range ws.elements {
		add(e.Tags)
	}
	for _, r := range ws.relationships {
		add(r.Tags)
	}
	sort.Strings(tags)
	return tags
}

// UserDefinedTags is the filter tag list: the structurizr.filter.tags
// property when set, otherwise every tag minus the default ones.
func (ws *Workspace) UserDefinedTags() []string {
	if s := ws.Views.Configuration.Properties["structurizr.filter.tags"]; s != "" {
		return SplitTags(s)
	}
	var out []string
	for _, t := range ws.Tags() {
		isDefault := false
		for _, d := range DefaultTags {
			if t == d {
				isDefault = true
				break
			}
		}
		if !isDefault {
			out = append(out, t)
		}
	}
	return out
}

func (ws *Workspace) PerspectiveNames() []string {
	seen := map[string]bool{}
	var names []string
	add := func(ps []Perspective) {
		for _, p := range ps {
			n := strings.TrimSpace(p.Name)
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	for _, e := range ws.elements {
		add(e.Perspectives)
	}
	for _, r := range ws.relationships {
		add(r.Perspectives)
	}
	sort.Strings(names)
	return names
}

// DefaultDeploymentEnvironment is the first environment by name, or Default.
func (ws *Workspace) DefaultDeploymentEnvironment() string {
	var envs []string
	for _, e := range ws.elements {
		if e.Type == DeploymentNode && e.Environment != "" {
			envs = append(envs, e.Environment)
		}
	}
	if len(envs) == 0 {
		return DefaultDeploymentEnvironmentName
	}
	sort.Strings(envs)
	return envs[0]
}

// Branding returns the workspace level logo and font.
func (ws *Workspace) Branding() Branding {
	return ws.Views.Configuration.Branding
}

// SplitTags splits a comma joined tag string, trimming and dropping empties.
func SplitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
