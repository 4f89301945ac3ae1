package svworkspace_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/internal/svtest"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svworkspace"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	assert.Equal(t, "Internet Banking", ws.Name)

	c := ws.Element("5")
	if assert.NotNil(t, c) {
		assert.Equal(t, svworkspace.Container, c.Type)
		assert.Equal(t, "2", c.ParentID)
	}
	assert.Equal(t, "5", ws.Element("6").ParentID)
	assert.Equal(t, svworkspace.Component, ws.Element("6").Type)

	ci := ws.Element("c2")
	if assert.NotNil(t, ci) {
		assert.Equal(t, svworkspace.ContainerInstance, ci.Type)
		assert.Equal(t, "API Application", ci.Name)
		assert.Equal(t, "Go", ci.Technology)
		assert.Equal(t, "d2", ci.ParentID)
	}
	assert.Equal(t, svworkspace.InfrastructureNode, ws.Element("i1").Type)
	assert.Equal(t, "d1", ws.Element("d2").ParentID)

	r := ws.Relationship("ri1")
	if assert.NotNil(t, r) {
		assert.Equal(t, "Relationship", r.Tags)
	}

	lm, ok := ws.LastModified()
	assert.True(t, ok)
	assert.Equal(t, 2024, lm.Year())

	_, err := svworkspace.Load(strings.NewReader(`{"model": {"deploymentNodes": [{"id": "d", "name": "n", "softwareSystemInstances": [{"id": "x", "softwareSystemId": "404"}]}]}}`))
	assert.Error(t, err)

	_, err = svworkspace.Load(strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestViews(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	keys := func() []string {
		var out []string
		for _, v := range ws.SortedViews() {
			out = append(out, v.Key)
		}
		return out
	}

	assert.Equal(t, []string{"Logo", "Landscape", "SystemContext", "Containers", "Components", "NoDatabases", "Dynamic", "Live"}, keys())

	ws.Views.Configuration.Properties[svworkspace.PropSort] = "key"
	assert.Equal(t, []string{"Components", "Containers", "Dynamic", "Landscape", "Live", "Logo", "NoDatabases", "SystemContext"}, keys())

	ws.Views.Configuration.Properties[svworkspace.PropSort] = "created"
	assert.Equal(t, []string{"Landscape", "SystemContext", "Containers", "Components", "Dynamic", "Live", "NoDatabases", "Logo"}, keys())

	assert.Equal(t, svworkspace.FilteredView, ws.View("NoDatabases").Type)
	assert.Nil(t, ws.View("missing"))
}

func TestViewTitle(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	tcs := map[string]string{
		"Landscape":     "System Landscape View: Big Bank plc",
		"SystemContext": "System Context View: Internet Banking System",
		"Containers":    "Container View: Internet Banking System",
		"Components":    "Component View: Internet Banking System - API Application",
		"Dynamic":       "Dynamic View: Internet Banking System",
		"Live":          "Deployment View: Internet Banking System - Live",
		"NoDatabases":   "Container View: Internet Banking System",
		"Logo":          "Image View: Logo",
	}
	for key, exp := range tcs {
		assert.Equal(t, exp, ws.ViewTitle(ws.View(key)), key)
	}

	v := ws.View("Landscape")
	v.Title = "Everything"
	assert.Equal(t, "Everything", ws.ViewTitle(v))
}

func TestSortedDynamicRelationships(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	var got []string
	for _, rv := range ws.SortedDynamicRelationships(ws.View("Dynamic")) {
		got = append(got, rv.Order+":"+rv.ID)
	}
	assert.Equal(t, []string{"1:r2", "1:r3", "2:r4"}, got)

	assert.Equal(t, -1, svworkspace.CompareOrder("1.2", "1.10"))
	assert.Equal(t, 1, svworkspace.CompareOrder("10", "9"))
	assert.Equal(t, -1, svworkspace.CompareOrder("1", "1.1"))
	assert.Equal(t, 0, svworkspace.CompareOrder("3", "3"))
	assert.Equal(t, -1, svworkspace.CompareOrder("a", "b"))
}

func TestTagsAndProperties(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)

	assert.Equal(t, []string{"Element", "Container", "Database", "Container Instance"}, ws.AllTagsForElement(ws.Element("c3")))
	assert.Equal(t, []string{"Relationship", "Relationship"}, ws.AllTagsForRelationship(ws.Relationship("ri1")))

	props := ws.AllPropertiesForElement(ws.Element("c3"))
	assert.Equal(t, "data", props["tier"])
	// instance properties win over the container's
	props = ws.AllPropertiesForElement(ws.Element("c2"))
	assert.Equal(t, "app", props["tier"])

	assert.True(t, ws.RelationshipHasPerspective(ws.Relationship("ri1"), "Security"))
	assert.False(t, ws.RelationshipHasPerspective(ws.Relationship("ri2"), "Security"))

	assert.Contains(t, ws.UserDefinedTags(), "Database")
	assert.NotContains(t, ws.UserDefinedTags(), "Element")
	assert.Equal(t, []string{"Security"}, ws.PerspectiveNames())
}

func TestLinkedRelationshipCycle(t *testing.T) {
	t.Parallel()

	ws, err := svworkspace.Load(strings.NewReader(`{"model": {"people": [{"id": "1", "name": "a", "relationships": [
		{"id": "a", "sourceId": "1", "destinationId": "1", "tags": "A", "linkedRelationshipId": "b"},
		{"id": "b", "sourceId": "1", "destinationId": "1", "tags": "B", "linkedRelationshipId": "a"}
	]}]}}`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"B", "A"}, ws.AllTagsForRelationship(ws.Relationship("a")))
	assert.False(t, ws.RelationshipHasPerspective(ws.Relationship("a"), "x"))
}

func TestConfiguration(t *testing.T) {
	t.Parallel()
	ctx := log.WithTB(context.Background(), t, nil)

	ws := svtest.Workspace(t)
	v := ws.View("Containers")

	assert.Equal(t, ":", ws.GroupSeparator(v))
	assert.True(t, ws.ShowTitle(v))
	assert.Equal(t, 25, ws.GroupPadding(ctx, v))
	assert.Equal(t, 50, ws.DeploymentNodePadding(ctx, v))
	assert.Equal(t, 40, ws.BoundaryPadding(ctx, v))
	assert.False(t, ws.ZoomOnAnimation(v))
	assert.Equal(t, "UTC", ws.Timezone(v))
	assert.Equal(t, "en-GB", ws.Locale(v))

	v.Properties[svworkspace.PropGroupPadding] = "60"
	v.Properties[svworkspace.PropTitle] = "false"
	assert.Equal(t, 60, ws.GroupPadding(ctx, v))
	assert.False(t, ws.ShowTitle(v))
	// the view set value still applies to other views
	assert.True(t, ws.ShowTitle(ws.View("Landscape")))

	v.Properties[svworkspace.PropBoundaryPadding] = "wide"
	assert.Equal(t, 40, ws.BoundaryPadding(ctx, v))
}

func TestTerminologyAndMetadata(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	assert.Equal(t, "Software System", ws.Terminology(svworkspace.SoftwareSystemInstance))
	assert.Equal(t, "Relationship", ws.Terminology(svworkspace.RelationshipItem))
	assert.Equal(t, "[Container: PostgreSQL]", ws.MetadataText(ws.Element("4"), true))
	assert.Equal(t, "[Container]", ws.MetadataText(ws.Element("4"), false))
	assert.Equal(t, "[SQL]", ws.RelationshipMetadataText(ws.Relationship("r4")))
	assert.Equal(t, "", ws.RelationshipMetadataText(ws.Relationship("r1")))

	ws.Views.Configuration.Terminology["container"] = "Service"
	ws.Views.Configuration.MetadataSymbols = "DoubleAngleBrackets"
	assert.Equal(t, "<<Service: PostgreSQL>>", ws.MetadataText(ws.Element("4"), true))

	assert.Equal(t, "Live", ws.DefaultDeploymentEnvironment())
}
