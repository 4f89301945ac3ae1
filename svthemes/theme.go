package svthemes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PrebuiltThemesURL is where the published themes live. Loader.Base replaces
// it when set.
const PrebuiltThemesURL = "https://static.structurizr.com/themes/"

type Font struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Theme struct {
	Name          string                  `json:"name,omitempty"`
	Description   string                  `json:"description,omitempty"`
	URL           string                  `json:"-"`
	Elements      []*ElementStyleDef      `json:"elements"`
	Relationships []*RelationshipStyleDef `json:"relationships"`
	Logo          string                  `json:"logo,omitempty"`
	Font          *Font                   `json:"font,omitempty"`
}

// Parse decodes a theme document fetched from url. Relative icon paths are
// resolved against the directory of url.
func Parse(url string, data []byte) (*Theme, error) {
	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", url, err)
	}
	t.URL = url
	if t.Elements == nil {
		t.Elements = []*ElementStyleDef{}
	}
	if t.Relationships == nil {
		t.Relationships = []*RelationshipStyleDef{}
	}

	baseURL := url[:strings.LastIndex(url, "/")+1]
	for _, es := range t.Elements {
		if es.Icon != nil && *es.Icon != "" {
			icon := ResolveIcon(baseURL, *es.Icon)
			es.Icon = &icon
		}
	}
	SortElementStyles(t.Elements)
	SortRelationshipStyles(t.Relationships)
	return &t, nil
}

// ResolveIcon makes a relative icon path absolute against baseURL. HTTP URLs
// and data URIs are returned unchanged.
func ResolveIcon(baseURL, icon string) string {
	if strings.Contains(icon, "http") || strings.Contains(icon, "data:image") {
		return icon
	}
	return baseURL + icon
}

// Empty returns the theme used in place of one that failed to load.
func Empty(url string) *Theme {
	return &Theme{
		URL:           url,
		Elements:      []*ElementStyleDef{},
		Relationships: []*RelationshipStyleDef{},
	}
}
