package svexport

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cdr.dev/slog"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/geo"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/shape"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svscene"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svsvg"
)

const (
	KeyColumns = 5
	// KeyScale shrinks element styles from their canonical 450x300 size.
	KeyScale        = 0.5
	keyElementW     = 450 * KeyScale
	keyElementH     = 300 * KeyScale
	keyLineWidth    = 400.
	keyCellWidth    = 450.
	keyCellHeight   = 200.
	keyGap          = 25.
	keyMinFontSize  = 12
	keyLabelWrapPad = 20.
)

// Key exports a legend of the styles in use in the current view: one cell
// per distinct element style, then one per relationship style.
func Key(ctx context.Context, d *svdiagram.Diagram) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to export key")
	if d.State() != svdiagram.StateRendered {
		return nil, fmt.Errorf("diagram is %s", d.State())
	}
	state := d.SaveUIState()
	defer d.RestoreUIState(state)
	d.ResetUIState()

	s := KeyScene(ctx, d)
	return svsvg.Render(s, &svsvg.RenderOpts{
		Salt:  "key-" + d.Scene().ID,
		Image: d.ImageHref,
	})
}

// KeyScene lays out the key of the current view as its own scene.
func KeyScene(ctx context.Context, d *svdiagram.Diagram) *svscene.Scene {
	src := d.Scene()
	key := svscene.New("key-" + src.ID)
	key.Background = src.Background
	key.FontName = src.FontName

	var elements, links []*svscene.Cell
	seen := make(map[string]bool)
	for _, c := range src.Cells() {
		if c.Role != svscene.RoleElement && c.Role != svscene.RoleRelationship {
			continue
		}
		k := string(c.Role) + ":" + c.ComputedStyle.StyleKey
		if seen[k] {
			continue
		}
		seen[k] = true
		if c.IsLink() {
			links = append(links, c)
		} else {
			elements = append(elements, c)
		}
	}

	slot := 0
	origin := func() *geo.Point {
		col, row := slot%KeyColumns, slot/KeyColumns
		slot++
		return geo.NewPoint(keyGap+float64(col)*(keyCellWidth+keyGap), keyGap+float64(row)*(keyCellHeight+keyGap))
	}
	for i, c := range elements {
		addKeyElement(ctx, d, key, fmt.Sprintf("element-%d", i), c, origin())
	}
	if len(elements) > 0 && slot%KeyColumns != 0 {
		slot += KeyColumns - slot%KeyColumns
	}
	for i, c := range links {
		addKeyRelationship(ctx, d, key, fmt.Sprintf("relationship-%d", i), c, origin())
	}

	rows := int(math.Ceil(float64(slot) / KeyColumns))
	cols := min(slot, KeyColumns)
	key.Width = keyGap + float64(cols)*(keyCellWidth+keyGap)
	key.Height = keyGap + float64(rows)*(keyCellHeight+keyGap)
	return key
}

// keyLabel names a style by its tags, leaving out the base tag when more
// specific ones exist.
func keyLabel(tags []string, base string) string {
	var specific []string
	for _, t := range tags {
		if t != base {
			specific = append(specific, t)
		}
	}
	if len(specific) == 0 {
		return base
	}
	return strings.Join(specific, ", ")
}

func keyFontSize(size int) int {
	return max(int(float64(size)*KeyScale), keyMinFontSize)
}

func addKeyElement(ctx context.Context, d *svdiagram.Diagram, key *svscene.Scene, id string, src *svscene.Cell, at *geo.Point) {
	cs := src.ComputedStyle
	box := geo.NewBox(geo.NewPoint(at.X+(keyCellWidth-keyElementW)/2, at.Y), keyElementW, keyElementH)
	fontSize := keyFontSize(cs.FontSize)
	t := d.Factory().TextBlock(keyLabel(cs.Tags, "Element"), fontSize, false, keyElementW-keyLabelWrapPad, cs.Color)
	t.Anchor = "middle"
	t.X = keyElementW / 2
	t.Y = (keyElementH - t.Height()) / 2
	c := &svscene.Cell{
		ID:            id,
		Role:          svscene.RoleElement,
		Box:           box,
		Outline:       shape.NewShape(cs.Shape, box.Copy()),
		ComputedStyle: cs,
		Texts:         []svscene.Text{t},
	}
	c.ComputedStyle.FontSize = fontSize
	if _, err := key.AddNode(c); err != nil {
		log.Warn(ctx, "could not add key element", slog.F("style", cs.StyleKey), slog.Error(err))
	}
}

func addKeyRelationship(ctx context.Context, d *svdiagram.Diagram, key *svscene.Scene, id string, src *svscene.Cell, at *geo.Point) {
	cs := src.ComputedStyle
	y := at.Y + keyElementH/2
	x := at.X + (keyCellWidth-keyLineWidth)/2
	from := &svscene.Cell{ID: id + "-from", Role: svscene.RolePlaceholder, Box: geo.NewBox(geo.NewPoint(x, y), 0, 0)}
	to := &svscene.Cell{ID: id + "-to", Role: svscene.RolePlaceholder, Box: geo.NewBox(geo.NewPoint(x+keyLineWidth, y), 0, 0)}
	for _, c := range []*svscene.Cell{from, to} {
		c.ComputedStyle.Opacity = svscene.Opaque
		if _, err := key.AddNode(c); err != nil {
			log.Warn(ctx, "could not add key anchor", slog.Error(err))
			return
		}
	}

	color := cs.Color
	if color == "" {
		color = svstyle.ModeDefaults(d.Dark()).Color
	}
	fontSize := keyFontSize(cs.FontSize)
	t := d.Factory().TextBlock(keyLabel(cs.Tags, "Relationship"), fontSize, false, keyLineWidth, color)
	t.Anchor = "middle"
	t.Y = -t.Height() / 2
	l := &svscene.Cell{
		ID:            id,
		Role:          svscene.RoleRelationship,
		Source:        from,
		Target:        to,
		Routing:       svscene.RoutingDirect,
		Dashed:        src.Dashed,
		LabelPosition: 50,
		LabelWidth:    d.Factory().TextWidth(t),
		ComputedStyle: cs,
		Texts:         []svscene.Text{t},
	}
	l.ComputedStyle.FontSize = fontSize
	if _, err := key.AddLink(l); err != nil {
		log.Warn(ctx, "could not add key relationship", slog.F("style", cs.StyleKey), slog.Error(err))
		return
	}
	svscene.Reroute(l)
}
