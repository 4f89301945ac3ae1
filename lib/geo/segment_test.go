package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentIntersections(t *testing.T) {
	t.Parallel()

	diagonal := NewSegment(NewPoint(0, 0), NewPoint(10, 10))
	testCases := []struct {
		name  string
		other *Segment
		exp   *Point
	}{
		{name: "crossing", other: NewSegment(NewPoint(0, 10), NewPoint(10, 0)), exp: NewPoint(5, 5)},
		{name: "at_end", other: NewSegment(NewPoint(10, 10), NewPoint(10, 0)), exp: NewPoint(10, 10)},
		{name: "at_start", other: NewSegment(NewPoint(0, 0), NewPoint(0, 10)), exp: NewPoint(0, 0)},
		{name: "apart", other: NewSegment(NewPoint(3, 8), NewPoint(2, 15))},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := diagonal.Intersections(*tc.other)
			if tc.exp == nil {
				assert.Empty(t, got)
				return
			}
			if assert.Len(t, got, 1) {
				assert.True(t, got[0].Equals(tc.exp), got[0].String())
			}
		})
	}
}
