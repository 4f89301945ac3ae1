package svcli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	"github.com/structview/structview/internal/svtest"
	"github.com/structview/structview/lib/log"
	"github.com/structview/structview/lib/version"
	"github.com/structview/structview/lib/xmain"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func testState(dir string, env *xos.Env, args ...string) (*xmain.State, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	if env == nil {
		env = xos.NewEnv(nil)
	}
	ms := &xmain.State{
		Name:   "structview",
		Stdin:  bytes.NewReader(nil),
		Stdout: nopCloser{stdout},
		Stderr: nopCloser{io.Discard},
		Env:    env,
		PWD:    dir,
	}
	ms.Log = cmdlog.New(env, io.Discard)
	ms.Opts = xmain.NewOpts(env, ms.Log, args)
	return ms, stdout
}

func writeWorkspace(t *testing.T) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "workspace.json")
	if err := os.WriteFile(path, svtest.FixtureJSON, 0644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestOutputFormat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		explicit string
		path     string
		exp      format
		expErr   bool
	}{
		{name: "svg_ext", path: "out.svg", exp: formatSVG},
		{name: "png_ext", path: "OUT.PNG", exp: formatPNG},
		{name: "stdout", path: "-", exp: formatSVG},
		{name: "explicit_wins", explicit: "key", path: "out.png", exp: formatKey},
		{name: "explicit_case", explicit: "Thumbnail", exp: formatThumbnail},
		{name: "unknown_ext", path: "out.pdf", expErr: true},
		{name: "unknown_format", explicit: "gif", expErr: true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, err := outputFormat(tc.explicit, tc.path)
			if tc.expErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.exp, f)
		})
	}

	assert.Equal(t, "a/workspace.png", defaultOutputPath("a/workspace.json", formatThumbnail))
	assert.Equal(t, "a/workspace.svg", defaultOutputPath("a/workspace.json", formatKey))
	assert.Equal(t, "-", defaultOutputPath("-", formatPNG))
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig("render.toml", []byte(`
view = "Containers"
crop = true
filter-tags = ["Database", "External"]
scale = 2
`))
	assert.NoError(t, err)
	assert.Equal(t, "Containers", cfg.View)
	assert.True(t, *cfg.Crop)
	assert.Nil(t, cfg.HideMetadata)
	assert.Equal(t, []string{"Database", "External"}, cfg.FilterTags)
	assert.Equal(t, int64(2), *cfg.Scale)

	cfg, err = ParseConfig("render.yml", []byte("mode: dark\nhide-metadata: false\nanimate-interval: 500\n"))
	assert.NoError(t, err)
	assert.Equal(t, "dark", cfg.Mode)
	assert.False(t, *cfg.HideMetadata)
	assert.Equal(t, int64(500), *cfg.AnimateInterval)

	cfg, err = ParseConfig("empty.yaml", nil)
	assert.NoError(t, err)
	assert.Empty(t, cfg.values())

	_, err = ParseConfig("render.toml", []byte(`colour = "red"`))
	assert.Error(t, err)
	_, err = ParseConfig("render.yaml", []byte("colour: red\n"))
	assert.Error(t, err)
	_, err = ParseConfig("render.json", []byte(`{}`))
	assert.Error(t, err)
}

func TestConfigApply(t *testing.T) {
	t.Parallel()

	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	view := flags.String("view", "", "")
	mode := flags.String("mode", "light", "")
	crop := flags.Bool("crop", false, "")
	tags := flags.StringSlice("filter-tags", nil, "")
	assert.NoError(t, flags.Parse([]string{"--view", "Live"}))

	cfg := &Config{
		View:       "Containers",
		Mode:       "dark",
		Crop:       new(bool),
		FilterTags: []string{"Database"},
	}
	*cfg.Crop = true
	err := cfg.apply(flags, func(flag string) bool {
		return flag == "mode"
	})
	assert.NoError(t, err)
	assert.Equal(t, "Live", *view)
	assert.Equal(t, "light", *mode)
	assert.True(t, *crop)
	assert.Equal(t, []string{"Database"}, *tags)

	err = (&Config{Host: "0.0.0.0"}).apply(flags, func(string) bool { return false })
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("svg", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)

		ms, _ := testState(dir, nil, "--view", "SystemContext", path)
		assert.NoError(t, Run(ctx, ms))
		out, err := os.ReadFile(filepath.Join(dir, "workspace.svg"))
		assert.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("<?xml")))
		assert.Contains(t, string(out), "Internet Banking System")
	})

	t.Run("png", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)

		outPath := filepath.Join(dir, "out", "containers.png")
		ms, _ := testState(dir, nil, "-v", "Containers", "--crop", path, outPath)
		assert.NoError(t, Run(ctx, ms))
		out, err := os.ReadFile(outPath)
		assert.NoError(t, err)
		assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG")))
	})

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)

		ms, stdout := testState(dir, nil, "--format", "key", "--view", "Containers", path, "-")
		assert.NoError(t, Run(ctx, ms))
		assert.Contains(t, stdout.String(), "<svg")
		assert.Contains(t, stdout.String(), "Container, Database")
	})

	t.Run("config", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)
		cfgPath := filepath.Join(dir, "render.toml")
		err := os.WriteFile(cfgPath, []byte("view = \"Dynamic\"\nformat = \"animated\"\n"), 0644)
		assert.NoError(t, err)

		ms, stdout := testState(dir, nil, "--config", cfgPath, path, "-")
		assert.NoError(t, Run(ctx, ms))
		assert.Contains(t, stdout.String(), "@keyframes")
	})

	t.Run("env", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)

		env := xos.NewEnv([]string{"STRUCTVIEW_VIEW=Containers", "STRUCTVIEW_HIDE_METADATA=1"})
		ms, stdout := testState(dir, env, path, "-")
		assert.NoError(t, Run(ctx, ms))
		assert.Contains(t, stdout.String(), "Database")
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)

		ms, stdout := testState(dir, nil, "--list", path)
		assert.NoError(t, Run(ctx, ms))
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		assert.Len(t, lines, 8)
		assert.True(t, strings.HasPrefix(lines[0], "Landscape\tSystemLandscape"))
		assert.True(t, strings.HasPrefix(lines[7], "Logo\tImage"))
		_, err := os.Stat(filepath.Join(dir, "workspace.svg"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("version", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)

		ms, stdout := testState(t.TempDir(), nil, "--version")
		assert.NoError(t, Run(ctx, ms))
		assert.Equal(t, version.Get()+"\n", stdout.String())
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)

		ms, stdout := testState(t.TempDir(), nil)
		assert.NoError(t, Run(ctx, ms))
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "--rasterizer")
		assert.Contains(t, stdout.String(), "$STRUCTVIEW_VIEW")
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		ctx := log.WithTB(context.Background(), t, nil)
		dir, path := writeWorkspace(t)

		for _, args := range [][]string{
			{"--view", "Missing", path, "-"},
			{"--format", "gif", path},
			{"--mode", "sepia", path},
			{"--rasterizer", "gpu", path, "out.png"},
			{"--scale", "0", path},
			{"--watch", "-"},
			{path, "a.svg", "b.svg"},
			{filepath.Join(dir, "missing.json")},
			{"--format", "animated", "--view", "Containers", path, "-"},
		} {
			ms, _ := testState(dir, nil, args...)
			assert.Error(t, Run(ctx, ms), "%v", args)
		}
	})
}
