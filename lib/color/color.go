package color

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Shade scales each RGB channel by (100+percent)/100, truncating and capping at 255.
// Negative percentages darken. Inputs that fail to parse are returned unchanged.
func Shade(colorString string, percent float64) string {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return colorString
	}
	r, g, b, _ := c.RGBA255()
	scale := func(v uint8) int {
		s := int(float64(v) * (100 + percent) / 100)
		if s > 255 {
			s = 255
		}
		if s < 0 {
			s = 0
		}
		return s
	}
	return fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b))
}

// Darken decreases HSL lightness by 10%.
func Darken(colorString string) (string, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return "", err
	}
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	return colorful.Hsl(h, s, l-.1).Clamped().Hex(), nil
}

// Normalize returns colorString as lowercase #rrggbb.
func Normalize(colorString string) (string, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return "", err
	}
	return strings.ToLower(c.HexString()[:7]), nil
}

func Luminance(colorString string) (float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return 0, err
	}

	l := float64(
		float64(0.299)*float64(c.R) +
			float64(0.587)*float64(c.G) +
			float64(0.114)*float64(c.B),
	)
	return l, nil
}

// IsDark reports whether light text reads better on colorString.
func IsDark(colorString string) bool {
	l, err := Luminance(colorString)
	if err != nil {
		return false
	}
	return l < .5
}

// RGBA parses colorString for raster drawing with opacity in [0,100].
func RGBA(colorString string, opacity float64) (color.NRGBA, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b, a := c.RGBA255()
	alpha := float64(a) * math.Max(0, math.Min(100, opacity)) / 100
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(alpha))}, nil
}

const (
	White = "#ffffff"
	Black = "#000000"
	None  = "none"
)
