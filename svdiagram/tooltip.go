package svdiagram

import (
	"sort"
	"strings"

	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

// Tooltip describes the element or relationship drawn as cell id. It is
// empty for any other cell.
func (d *Diagram) Tooltip(id string) string {
	c := d.scene.Cell(id)
	if c == nil {
		return ""
	}
	return d.tooltip(c)
}

func (d *Diagram) addTooltips() {
	for _, c := range d.scene.Cells() {
		c.Tooltip = d.tooltip(c)
	}
}

func (d *Diagram) tooltip(c *svscene.Cell) string {
	switch {
	case c.Relationship != nil:
		return d.relationshipTooltip(c)
	case c.ElementView != nil && c.Element != nil:
		return d.elementTooltip(c.Element)
	}
	return ""
}

func (d *Diagram) elementTooltip(e *svworkspace.Element) string {
	shown := d.represented(e)
	var lines []string
	lines = append(lines, shown.Name)
	if md := d.ws.MetadataText(shown, true); md != "" {
		lines = append(lines, md)
	}
	if p := d.ws.Element(shown.ParentID); p != nil && shown.Type != svworkspace.DeploymentNode {
		lines = append(lines, "from "+p.Name+" "+d.ws.MetadataText(p, false))
	}
	if shown.Description != "" {
		lines = append(lines, "", shown.Description)
	}
	lines = append(lines, d.details(d.ws.AllTagsForElement(e), d.ws.AllPropertiesForElement(e), shown.URL)...)
	perspectives := append([]svworkspace.Perspective(nil), e.Perspectives...)
	if shown != e {
		perspectives = append(perspectives, shown.Perspectives...)
	}
	for _, p := range perspectives {
		line := "Perspective " + p.Name
		if p.Description != "" {
			line += ": " + p.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (d *Diagram) relationshipTooltip(c *svscene.Cell) string {
	r := c.Relationship
	summary := r.Description
	if c.RelationshipView != nil && c.RelationshipView.Description != "" {
		summary = c.RelationshipView.Description
	}
	var lines []string
	if c.RelationshipView != nil && c.RelationshipView.Order != "" && d.base != nil && d.base.Type == svworkspace.DynamicView {
		lines = append(lines, c.RelationshipView.Order+": "+summary)
	} else if summary != "" {
		lines = append(lines, summary)
	}
	md := d.ws.RelationshipMetadataText(r)
	if md == "" {
		md = "[" + d.ws.Terminology(svworkspace.RelationshipItem) + "]"
	}
	lines = append(lines, md)

	src, dst := c.Source.Element, c.Target.Element
	if src != nil && dst != nil {
		lines = append(lines, "", d.represented(src).Name+" -- "+summary+" -> "+d.represented(dst).Name)
	}
	lines = append(lines, d.details(d.ws.AllTagsForRelationship(r), d.ws.AllPropertiesForRelationship(r), r.URL)...)
	return strings.Join(lines, "\n")
}

// details lists tags, sorted properties and a URL.
func (d *Diagram) details(tags []string, props map[string]string, url string) []string {
	var lines []string
	if len(tags) > 0 {
		lines = append(lines, "", "Tags: "+strings.Join(tags, ", "))
	}
	if len(props) > 0 {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines = append(lines, "", "Properties:")
		for _, k := range keys {
			lines = append(lines, k+" = "+props[k])
		}
	}
	if url != "" {
		lines = append(lines, "", "URL: "+url)
	}
	return lines
}
