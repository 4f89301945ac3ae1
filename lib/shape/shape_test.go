package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/geo"
)

func TestEveryKindHasOutline(t *testing.T) {
	t.Parallel()

	box := geo.NewBox(geo.NewPoint(0, 0), 450, 300)
	for _, k := range Kinds {
		assert.True(t, HasOutline(k), k.String())
		s := NewShape(k, box)
		assert.Equal(t, k, s.GetKind())
		paths := s.GetSVGPathData()
		if assert.NotEmpty(t, paths, k.String()) {
			assert.Regexp(t, `^M `, paths[0])
		}
		inner := s.GetInnerBox()
		assert.True(t, inner.Width <= box.Width+componentTabWidth, k.String())
		assert.True(t, inner.Height <= box.Height, k.String())
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, ok := ParseKind("Cylinder")
	assert.True(t, ok)
	assert.Equal(t, Cylinder, k)

	k, ok = ParseKind("Blob")
	assert.False(t, ok)
	assert.Equal(t, Box, k)

	assert.Equal(t, "MobileDeviceLandscape", MobileDeviceLandscape.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestTraceToShapeBorder(t *testing.T) {
	t.Parallel()

	box := geo.NewBox(geo.NewPoint(0, 0), 200, 100)

	rect := NewBox(box)
	p := geo.NewPoint(100, 0)
	assert.Equal(t, p, TraceToShapeBorder(rect, p, geo.NewPoint(100, -50)))

	// a diamond's left vertex is inset on the rectangle's top edge
	diamond := NewDiamond(box)
	got := TraceToShapeBorder(diamond, geo.NewPoint(50, 0), geo.NewPoint(50, -50))
	assert.Equal(t, 50., got.X)
	assert.Equal(t, 25., got.Y)

	ellipse := NewEllipse(box)
	got = ClipToBorder(ellipse, geo.NewPoint(400, 50))
	assert.Equal(t, 200., got.X)
	assert.Equal(t, 50., got.Y)
}
