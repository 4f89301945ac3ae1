package svcontain

import (
	"context"
	"sort"
	"strconv"

	"cdr.dev/slog"

	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svworkspace"
)

// Deployment nests a deployment view. cells holds the cells already built
// for instances and infrastructure nodes, keyed by element id.
//
// Nodes are created and their direct members embedded first, then nodes are
// nested in their parent nodes, since a child node may precede its parent in
// the view. Finally nodes with nothing but other nodes below them are removed
// until none remain.
func (eng *Engine) Deployment(ctx context.Context, cells map[string]*svscene.Cell) map[string]*svscene.Cell {
	nodes := make(map[string]*svscene.Cell)

	for _, ev := range eng.view.Elements {
		e := eng.ws.Element(ev.ID)
		if e == nil || e.Type != svworkspace.DeploymentNode {
			continue
		}
		nodes[e.ID] = eng.deploymentNode(ctx, e, ev)
	}
	for _, id := range sortedKeys(cells) {
		c := cells[id]
		e := eng.ws.Element(id)
		if e == nil || e.ParentID == "" {
			continue
		}
		if n, ok := nodes[e.ParentID]; ok {
			if err := eng.scene.Embed(n, c); err != nil {
				log.Warn(ctx, "could not embed in deployment node", slog.F("node", n.ID), slog.F("member", id), slog.Error(err))
			}
		}
	}

	for _, id := range sortedKeys(nodes) {
		n := nodes[id]
		e := eng.ws.Element(id)
		if p, ok := nodes[e.ParentID]; ok {
			if err := eng.scene.Embed(p, n); err != nil {
				log.Warn(ctx, "could not nest deployment node", slog.F("node", id), slog.Error(err))
			}
		}
	}

	for {
		removed := false
		for _, id := range sortedKeys(nodes) {
			n := nodes[id]
			if hasContent(n) {
				continue
			}
			log.Debug(ctx, "removing empty deployment node", slog.F("id", id))
			eng.scene.Remove(n)
			delete(nodes, id)
			removed = true
		}
		if !removed {
			break
		}
	}

	eng.RepositionAll(ctx)
	return nodes
}

func (eng *Engine) deploymentNode(ctx context.Context, e *svworkspace.Element, ev *svworkspace.ElementView) *svscene.Cell {
	style := eng.resolver.Element(e, eng.dark)
	name := e.Name
	if n, err := strconv.Atoi(e.Instances); err == nil && n > 1 {
		name += " x" + e.Instances
	}
	c := eng.newContainer(ctx, e.ID, svscene.RoleElement, e, style, name, eng.ws.MetadataText(e, true))
	c.ElementView = ev
	c.Interactive = true
	c.URL = e.URL
	return c
}

// hasContent reports whether anything other than a deployment node sits
// below c.
func hasContent(c *svscene.Cell) bool {
	for _, d := range c.Descendants() {
		if d.Element == nil || d.Element.Type != svworkspace.DeploymentNode {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]*svscene.Cell) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
