package svdiagram

import (
	"strings"

	"github.com/structview/structview/svworkspace"
)

// PageMargin surrounds the content of views without a paper size.
const PageMargin = 50.

// paperSizes are portrait pixel sizes at 300 dpi, except slides which are
// landscape.
var paperSizes = map[string][2]float64{
	"A6":          {1240, 1748},
	"A5":          {1748, 2480},
	"A4":          {2480, 3508},
	"A3":          {3508, 4961},
	"A2":          {4961, 7016},
	"A1":          {7016, 9933},
	"A0":          {9933, 14043},
	"Letter":      {2550, 3300},
	"Legal":       {2550, 4200},
	"Slide_4_3":   {3306, 2480},
	"Slide_16_9":  {3508, 1973},
	"Slide_16_10": {3508, 2193},
}

// PaperSize returns the size of a named paper size such as A4_Landscape.
func PaperSize(name string) (width, height float64, ok bool) {
	base := name
	landscape := false
	switch {
	case strings.HasSuffix(name, "_Landscape"):
		base = strings.TrimSuffix(name, "_Landscape")
		landscape = true
	case strings.HasSuffix(name, "_Portrait"):
		base = strings.TrimSuffix(name, "_Portrait")
	}
	size, ok := paperSizes[base]
	if !ok {
		return 0, 0, false
	}
	if landscape {
		return size[1], size[0], true
	}
	return size[0], size[1], true
}

// pageSize is the explicit page of v or its base view, if any.
func pageSize(views ...*svworkspace.View) (width, height float64, ok bool) {
	for _, v := range views {
		if v.Dimensions != nil && v.Dimensions.Width > 0 && v.Dimensions.Height > 0 {
			return v.Dimensions.Width, v.Dimensions.Height, true
		}
	}
	for _, v := range views {
		if w, h, ok := PaperSize(v.PaperSize); ok {
			return w, h, true
		}
	}
	return 0, 0, false
}

// sizePage sets the scene's page size: explicit dimensions, then the paper
// size, then the content plus a margin.
func (d *Diagram) sizePage(v, base *svworkspace.View) {
	if w, h, ok := pageSize(v, base); ok {
		d.scene.Width, d.scene.Height = w, h
		return
	}
	b := d.scene.ContentBounds()
	d.scene.Width = b.Right() + PageMargin
	d.scene.Height = b.Bottom() + PageMargin
}
