package textmeasure

import (
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type FontStyle string

const (
	FontStyleRegular FontStyle = "regular"
	FontStyleBold    FontStyle = "bold"
)

var FontStyles = []FontStyle{FontStyleRegular, FontStyleBold}

// Font identifies a face at a pixel size. The family is fixed to the bundled Go fonts;
// the family requested by a theme only affects the emitted SVG.
type Font struct {
	Style FontStyle
	Size  int
}

func NewFont(size int, style FontStyle) Font {
	return Font{Style: style, Size: size}
}

// FontFaces holds the TTF bytes per style.
var FontFaces = map[FontStyle][]byte{
	FontStyleRegular: goregular.TTF,
	FontStyleBold:    gobold.TTF,
}
