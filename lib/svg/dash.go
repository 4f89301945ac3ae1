package svg

import "fmt"

// StrokeDash returns the stroke-dasharray for a border or line style name,
// or "" for solid strokes.
func StrokeDash(style string, strokeWidth float64) string {
	if strokeWidth <= 0 {
		strokeWidth = 1
	}
	switch style {
	case "Dashed":
		return fmt.Sprintf("%v,%v", chopPrecision(strokeWidth*5), chopPrecision(strokeWidth*5))
	case "Dotted":
		return fmt.Sprintf("%v,%v", chopPrecision(strokeWidth), chopPrecision(strokeWidth*2))
	default:
		return ""
	}
}
