package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/geo"
)

func TestPathContext(t *testing.T) {
	pc := NewSVGPathContext(geo.NewPoint(10, 20), 1, 1)
	pc.StartAt(pc.Absolute(0, 0))
	pc.H(false, 100)
	pc.V(false, 50)
	pc.L(false, 0, 50)
	pc.Z()
	assert.Equal(t, "M 10 20 H 110 V 70 L 10 70 Z", pc.PathData())
	assert.Len(t, pc.Path, 4)
}

func TestCurveIsSampled(t *testing.T) {
	pc := NewSVGPathContext(geo.NewPoint(0, 0), 1, 1)
	pc.StartAt(pc.Absolute(0, 0))
	pc.C(false, 0, 50, 100, 50, 100, 0)
	assert.Len(t, pc.Path, curveSamples)
	end := CubicAt([]*geo.Point{geo.NewPoint(0, 0), geo.NewPoint(0, 50), geo.NewPoint(100, 50), geo.NewPoint(100, 0)}, 1)
	assert.True(t, end.Equals(geo.NewPoint(100, 0)))
}

func TestStrokeDash(t *testing.T) {
	assert.Equal(t, "", StrokeDash("Solid", 2))
	assert.Equal(t, "10,10", StrokeDash("Dashed", 2))
	assert.Equal(t, "2,4", StrokeDash("Dotted", 2))
}

func TestEscapeText(t *testing.T) {
	assert.Equal(t, "a &lt; b &amp;&amp; c", EscapeText("a < b && c"))
}

func TestCurveData(t *testing.T) {
	two := []*geo.Point{geo.NewPoint(0, 0), geo.NewPoint(10, 0)}
	assert.Equal(t, "M 0 0 L 10 0", CurveData(two))

	d := CurveData([]*geo.Point{geo.NewPoint(0, 0), geo.NewPoint(60, 60), geo.NewPoint(120, 0)})
	assert.Equal(t, "M 0 0 C 10 10 40 60 60 60 C 80 60 110 10 120 0", d)
}
