package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{}
	assert.Equal(t, Version, fromBuildInfo(bi))
	bi.Main.Version = "(devel)"
	assert.Equal(t, Version, fromBuildInfo(bi))
	bi.Main.Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", fromBuildInfo(bi))
}
