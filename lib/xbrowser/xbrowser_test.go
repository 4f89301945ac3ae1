package xbrowser_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"oss.terrastruct.com/xos"

	"github.com/structview/structview/lib/xbrowser"
)

func TestOpenURL(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	ctx := context.Background()

	assert.NoError(t, xbrowser.OpenURL(ctx, xos.NewEnv([]string{"BROWSER=0"}), "http://localhost:1"))

	dir := t.TempDir()
	out := filepath.Join(dir, "url")
	script := filepath.Join(dir, "open.sh")
	err := os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s' \"$1\" > "+out+"\n"), 0755)
	if err != nil {
		t.Fatal(err)
	}
	env := xos.NewEnv([]string{"BROWSER=" + script})
	assert.NoError(t, xbrowser.OpenURL(ctx, env, "http://localhost:2/a b"))
	b, err := os.ReadFile(out)
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:2/a b", string(b))

	assert.Error(t, xbrowser.OpenURL(ctx, xos.NewEnv([]string{"BROWSER=false"}), "http://localhost:3"))
}
