package svfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/internal/svtest"
	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

func TestVisible(t *testing.T) {
	t.Parallel()

	tags := []string{"Element", "Container", "Database"}
	testCases := []struct {
		name         string
		filter       Filter
		tags         []string
		perspectives []string
		exp          bool
	}{
		{name: "inactive", filter: Filter{Mode: svworkspace.FilterInclude, Tags: []string{"Nope"}, Perspective: "Security"}, tags: tags, exp: true},
		{name: "include_match", filter: Filter{Active: true, Tags: []string{"Database"}}, tags: tags, exp: true},
		{name: "include_miss", filter: Filter{Active: true, Tags: []string{"Queue"}}, tags: tags, exp: false},
		{name: "exclude_match", filter: Filter{Active: true, Mode: svworkspace.FilterExclude, Tags: []string{"Database"}}, tags: tags, exp: false},
		{name: "exclude_miss", filter: Filter{Active: true, Mode: svworkspace.FilterExclude, Tags: []string{"Queue"}}, tags: tags, exp: true},
		{name: "perspective_only", filter: Filter{Active: true, Perspective: "Security"}, tags: tags, perspectives: []string{"Security"}, exp: true},
		{name: "perspective_missing", filter: Filter{Active: true, Perspective: "Security"}, tags: tags, exp: false},
		{name: "tags_and_perspective", filter: Filter{Active: true, Tags: []string{"Database"}, Perspective: "Security"}, tags: tags, perspectives: []string{"Ops"}, exp: false},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, tc.filter.Visible(tc.tags, tc.perspectives))
		})
	}
}

func TestPerspectives(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	assert.Equal(t, []string{"Security"}, RelationshipPerspectives(ws, ws.Relationship("ri1")))
	assert.Empty(t, RelationshipPerspectives(ws, ws.Relationship("ri2")))
	assert.Empty(t, ElementPerspectives(ws, ws.Element("c1")))

	// A linked relationship cycle terminates.
	ws.Relationship("r3").LinkedRelationshipID = "ri1"
	assert.Equal(t, []string{"Security"}, RelationshipPerspectives(ws, ws.Relationship("ri1")))
}

func TestApply(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	s := svscene.New("test")
	opaque := svscene.ComputedStyle{Opacity: svscene.Opaque}
	add := func(id string) *svscene.Cell {
		c, err := s.AddNode(&svscene.Cell{ID: id, Role: svscene.RoleElement, Element: ws.Element(id), Box: geo.NewBox(geo.NewPoint(0, 0), 10, 10), ComputedStyle: opaque})
		assert.NoError(t, err)
		return c
	}
	web, db, api := add("3"), add("4"), add("5")
	link, err := s.AddLink(&svscene.Cell{ID: "r4", Source: api, Target: db, Relationship: ws.Relationship("r4"), ComputedStyle: opaque})
	assert.NoError(t, err)
	group, err := s.AddNode(&svscene.Cell{ID: "group:x", Role: svscene.RoleGroup, Box: geo.NewBox(geo.NewPoint(0, 0), 10, 10), ComputedStyle: opaque})
	assert.NoError(t, err)

	Filter{Active: true, Mode: svworkspace.FilterExclude, Tags: []string{"Database"}}.Apply(s, ws)
	assert.Equal(t, 100, web.Opacity)
	assert.Equal(t, FadedOpacity, db.Opacity)
	assert.Equal(t, 100, api.Opacity)
	assert.Equal(t, 100, link.Opacity)
	assert.Equal(t, 100, group.Opacity)

	s.ResetOpacity()
	Filter{Active: true, Perspective: "Security"}.Apply(s, ws)
	for _, c := range []*svscene.Cell{web, db, api, link} {
		assert.Equal(t, FadedOpacity, c.Opacity, c.ID)
	}

	s.ResetOpacity()
	Filter{}.Apply(s, ws)
	for _, c := range s.Cells() {
		assert.Equal(t, 100, c.Opacity, c.ID)
	}
}

func TestFromView(t *testing.T) {
	t.Parallel()

	ws := svtest.Workspace(t)
	f := FromView(ws.View("NoDatabases"))
	assert.True(t, f.Active)
	assert.Equal(t, svworkspace.FilterExclude, f.Mode)
	assert.Equal(t, []string{"Database"}, f.Tags)
}
