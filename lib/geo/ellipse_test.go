package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEllipseIntersections(t *testing.T) {
	t.Parallel()

	circle := NewEllipse(NewPoint(0, 0), 11, 11)
	testCases := []struct {
		name    string
		e       *Ellipse
		segment Segment
		exp     []*Point
	}{
		{
			name:    "vertical_through",
			e:       circle,
			segment: Segment{Start: NewPoint(0, 20), End: NewPoint(0, -20)},
			exp:     []*Point{NewPoint(0, 11), NewPoint(0, -11)},
		},
		{
			name:    "inside",
			e:       circle,
			segment: Segment{Start: NewPoint(0, 2), End: NewPoint(0, -2)},
		},
		{
			name:    "short_of_outline",
			e:       circle,
			segment: Segment{Start: NewPoint(2, 2), End: NewPoint(5, 5)},
		},
		{
			name:    "diagonal_out",
			e:       circle,
			segment: Segment{Start: NewPoint(2, 2), End: NewPoint(50, 50)},
			exp:     []*Point{NewPoint(11/math.Sqrt2, 11/math.Sqrt2)},
		},
		{
			name:    "tangent",
			e:       circle,
			segment: Segment{Start: NewPoint(-20, 11), End: NewPoint(20, 11)},
			exp:     []*Point{NewPoint(0, 11)},
		},
		{
			name:    "miss",
			e:       circle,
			segment: Segment{Start: NewPoint(-20, 12), End: NewPoint(20, 12)},
		},
		{
			name:    "offset_ellipse",
			e:       NewEllipse(NewPoint(100, 50), 40, 20),
			segment: Segment{Start: NewPoint(0, 50), End: NewPoint(200, 50)},
			exp:     []*Point{NewPoint(60, 50), NewPoint(140, 50)},
		},
		{
			name:    "degenerate",
			e:       NewEllipse(NewPoint(0, 0), 0, 5),
			segment: Segment{Start: NewPoint(-5, 0), End: NewPoint(5, 0)},
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.e.Intersections(tc.segment)
			assert.Len(t, got, len(tc.exp))
			for i := range got {
				assert.InDelta(t, tc.exp[i].X, got[i].X, 1e-6)
				assert.InDelta(t, tc.exp[i].Y, got[i].Y, 1e-6)
			}
		})
	}
}

func TestExtend(t *testing.T) {
	t.Parallel()

	p := NewPoint(0, 0).Extend(NewPoint(3, 4), 5)
	assert.InDelta(t, 6, p.X, 1e-9)
	assert.InDelta(t, 8, p.Y, 1e-9)

	same := NewPoint(1, 1).Extend(NewPoint(1, 1), 10)
	assert.Equal(t, 1., same.X)
	assert.Equal(t, 1., same.Y)
}
