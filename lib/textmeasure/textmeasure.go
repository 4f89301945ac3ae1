// Package textmeasure sizes text set in the bundled fonts.
package textmeasure

import (
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const TAB_SIZE = 4

// Ruler measures text. Faces are created on first use per size.
//
// A Ruler is not safe for concurrent use.
type Ruler struct {
	// LineHeightFactor scales the font's line height between lines.
	LineHeightFactor float64

	ttfs  map[FontStyle]*truetype.Font
	faces map[Font]font.Face
}

func NewRuler() (*Ruler, error) {
	r := &Ruler{
		LineHeightFactor: 1.,
		ttfs:             make(map[FontStyle]*truetype.Font),
		faces:            make(map[Font]font.Face),
	}
	for _, style := range FontStyles {
		ttf, err := truetype.Parse(FontFaces[style])
		if err != nil {
			return nil, err
		}
		r.ttfs[style] = ttf
	}
	return r, nil
}

func (r *Ruler) face(f Font) font.Face {
	face, ok := r.faces[f]
	if !ok {
		face = truetype.NewFace(r.ttfs[f.Style], &truetype.Options{
			Size:    float64(f.Size),
			Hinting: font.HintingNone,
		})
		r.faces[f] = face
	}
	return face
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}

// LineHeight returns the distance between two baselines for f.
func (r *Ruler) LineHeight(f Font) float64 {
	return r.LineHeightFactor * toFloat(r.face(f).Metrics().Height)
}

func (r *Ruler) Measure(f Font, s string) (width, height int) {
	w, h := r.MeasurePrecise(f, s)
	return int(math.Ceil(w)), int(math.Ceil(h))
}

// MeasurePrecise returns the advance width of the widest line of s and the
// height from the top of the first line to the bottom of the last.
func (r *Ruler) MeasurePrecise(f Font, s string) (width, height float64) {
	if s == "" {
		return 0, 0
	}
	lines := strings.Split(strings.ReplaceAll(s, "\r", ""), "\n")
	for _, line := range lines {
		width = math.Max(width, r.lineWidth(f, line))
	}
	m := r.face(f).Metrics()
	height = float64(len(lines)-1)*r.LineHeight(f) + toFloat(m.Ascent+m.Descent)
	return width, height
}

// lineWidth measures one line. Graphemes wider than one cell, such as CJK
// and emoji, have no glyph in the bundled fonts and count as that many
// spaces.
func (r *Ruler) lineWidth(f Font, line string) float64 {
	face := r.face(f)
	line = strings.ReplaceAll(line, "\t", strings.Repeat(" ", TAB_SIZE))
	if uniseg.GraphemeClusterCount(line) == len(line) {
		return toFloat(font.MeasureString(face, line))
	}

	w := 0.
	var run strings.Builder
	flush := func() {
		w += toFloat(font.MeasureString(face, run.String()))
		run.Reset()
	}
	gr := uniseg.NewGraphemes(line)
	for gr.Next() {
		if gr.Width() <= 1 {
			run.WriteString(gr.Str())
			continue
		}
		flush()
		w += r.spaceWidth(f) * float64(gr.Width())
	}
	flush()
	return w
}

func (r *Ruler) spaceWidth(f Font) float64 {
	adv, _ := r.face(f).GlyphAdvance(' ')
	return toFloat(adv)
}
