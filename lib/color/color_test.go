package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShade(t *testing.T) {
	testCases := []struct {
		in      string
		percent float64
		exp     string
	}{
		{"#ff0000", -10, "#e50000"},
		{"#1168bd", -10, "#0f5daa"},
		{"#999999", 10, "#a8a8a8"},
		{"#ffffff", 50, "#ffffff"},
		{"red", -10, "#e50000"},
		{"not a color", -10, "not a color"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.exp, Shade(tc.in, tc.percent))
		})
	}
}

func TestIsDark(t *testing.T) {
	assert.True(t, IsDark("#111111"))
	assert.False(t, IsDark("#ffffff"))
}

func TestRGBA(t *testing.T) {
	c, err := RGBA("#ff0000", 50)
	assert.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(128), c.A)
}
