// Package svfilter fades the elements and relationships of a scene that do
// not match a tag and perspective filter.
package svfilter

import (
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

// FadedOpacity is the opacity of cells hidden by a filter or animation.
const FadedOpacity = 10

type Filter struct {
	Active bool
	// Mode is svworkspace.FilterInclude or svworkspace.FilterExclude.
	Mode        string
	Tags        []string
	Perspective string
}

// FromView builds the filter a filtered view applies to its base view.
func FromView(v *svworkspace.View) Filter {
	mode := v.Mode
	if mode == "" {
		mode = svworkspace.FilterInclude
	}
	return Filter{Active: true, Mode: mode, Tags: append([]string(nil), v.Tags...)}
}

// Visible reports whether an item with the given tags and perspective names
// passes the filter. An inactive filter shows everything. An empty tag list
// matches every item in either mode.
func (f Filter) Visible(tags, perspectives []string) bool {
	if !f.Active {
		return true
	}
	if len(f.Tags) > 0 {
		matched := false
		for _, t := range f.Tags {
			if contains(tags, t) {
				matched = true
				break
			}
		}
		if f.Mode == svworkspace.FilterExclude {
			if matched {
				return false
			}
		} else if !matched {
			return false
		}
	}
	if f.Perspective != "" && !contains(perspectives, f.Perspective) {
		return false
	}
	return true
}

func (f Filter) ElementVisible(ws *svworkspace.Workspace, e *svworkspace.Element) bool {
	return f.Visible(ws.AllTagsForElement(e), ElementPerspectives(ws, e))
}

func (f Filter) RelationshipVisible(ws *svworkspace.Workspace, r *svworkspace.Relationship) bool {
	return f.Visible(ws.AllTagsForRelationship(r), RelationshipPerspectives(ws, r))
}

// ElementPerspectives lists the perspectives declared on e and, for
// instances, on the element they represent.
func ElementPerspectives(ws *svworkspace.Workspace, e *svworkspace.Element) []string {
	names := perspectiveNames(nil, e.Perspectives)
	var base *svworkspace.Element
	switch e.Type {
	case svworkspace.SoftwareSystemInstance:
		base = ws.Element(e.SoftwareSystemID)
	case svworkspace.ContainerInstance:
		base = ws.Element(e.ContainerID)
	}
	if base != nil {
		names = perspectiveNames(names, base.Perspectives)
	}
	return names
}

// RelationshipPerspectives follows linked relationships and stops on a cycle.
func RelationshipPerspectives(ws *svworkspace.Workspace, r *svworkspace.Relationship) []string {
	var names []string
	seen := map[string]bool{}
	for r != nil && !seen[r.ID] {
		seen[r.ID] = true
		names = perspectiveNames(names, r.Perspectives)
		if r.LinkedRelationshipID == "" {
			break
		}
		r = ws.Relationship(r.LinkedRelationshipID)
	}
	return names
}

func perspectiveNames(names []string, ps []svworkspace.Perspective) []string {
	for _, p := range ps {
		if !contains(names, p.Name) {
			names = append(names, p.Name)
		}
	}
	return names
}

// CellVisible applies the filter to a scene cell. Cells that are neither
// elements nor relationships always pass.
func (f Filter) CellVisible(ws *svworkspace.Workspace, c *svscene.Cell) bool {
	switch {
	case c.Relationship != nil:
		return f.RelationshipVisible(ws, c.Relationship)
	case c.Role == svscene.RoleElement && c.Element != nil:
		return f.ElementVisible(ws, c.Element)
	case c.Element != nil && c.Element.Type == svworkspace.DeploymentNode:
		return f.ElementVisible(ws, c.Element)
	default:
		return true
	}
}

// Apply fades every cell of s that does not pass. It only lowers opacity;
// callers reset the scene first to undo a previous filter.
func (f Filter) Apply(s *svscene.Scene, ws *svworkspace.Workspace) {
	if !f.Active {
		return
	}
	for _, c := range s.Cells() {
		if !f.CellVisible(ws, c) {
			c.Opacity = min(c.Opacity, FadedOpacity)
		}
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
