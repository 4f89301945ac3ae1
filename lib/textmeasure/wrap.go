package textmeasure

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Wrap breaks s into lines no wider than maxWidth at font. Explicit newlines are kept.
// Words wider than maxWidth are split between grapheme clusters.
func (t *Ruler) Wrap(font Font, s string, maxWidth float64) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if t.width(font, candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			if t.width(font, word) <= maxWidth {
				line = word
				continue
			}
			pieces := t.splitWord(font, word, maxWidth)
			lines = append(lines, pieces[:len(pieces)-1]...)
			line = pieces[len(pieces)-1]
		}
		lines = append(lines, line)
	}
	return lines
}

// WrappedHeight is the height of lines at font including line spacing.
func (t *Ruler) WrappedHeight(font Font, lines []string) float64 {
	return float64(len(lines)) * t.LineHeight(font)
}

func (t *Ruler) width(font Font, s string) float64 {
	w, _ := t.Measure(font, s)
	return float64(w)
}

func (t *Ruler) splitWord(font Font, word string, maxWidth float64) []string {
	var pieces []string
	cur := ""
	gr := uniseg.NewGraphemes(word)
	for gr.Next() {
		next := cur + gr.Str()
		if cur != "" && t.width(font, next) > maxWidth {
			pieces = append(pieces, cur)
			cur = gr.Str()
			continue
		}
		cur = next
	}
	return append(pieces, cur)
}
