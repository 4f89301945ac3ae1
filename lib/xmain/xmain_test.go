package xmain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func testState(env ...string) *State {
	e := xos.NewEnv(env)
	log := cmdlog.New(e, io.Discard)
	return &State{
		Name:   "test",
		Stdin:  bytes.NewReader(nil),
		Stdout: nopCloser{io.Discard},
		Stderr: nopCloser{io.Discard},
		Log:    log,
		Env:    e,
		Opts:   NewOpts(e, log, nil),
	}
}

func TestOptsEnv(t *testing.T) {
	t.Parallel()

	ms := testState("APP_NAME=env", "APP_COUNT=3", "APP_ON=true", "APP_TAGS=a,b")
	name := ms.Opts.String("APP_NAME", "name", "n", "default", "")
	count, err := ms.Opts.Int64("APP_COUNT", "count", "", 1, "")
	assert.NoError(t, err)
	on, err := ms.Opts.Bool("APP_ON", "on", "", false, "")
	assert.NoError(t, err)
	tags := ms.Opts.StringSlice("APP_TAGS", "tags", "", nil, "")
	off, err := ms.Opts.Bool("", "off", "", false, "")
	assert.NoError(t, err)

	assert.NoError(t, ms.Opts.Flags.Parse([]string{"-n", "flag"}))
	assert.Equal(t, "flag", *name)
	assert.Equal(t, int64(3), *count)
	assert.True(t, *on)
	assert.False(t, *off)
	assert.Equal(t, []string{"a", "b"}, *tags)

	help := ms.Opts.Help()
	assert.Contains(t, help, "--count")
	assert.Contains(t, help, "  - $APP_NAME\n  - $APP_COUNT")
}

func TestOptsInvalidEnv(t *testing.T) {
	t.Parallel()

	ms := testState("APP_COUNT=three", "APP_ON=yes")
	_, err := ms.Opts.Int64("APP_COUNT", "count", "", 1, "")
	assert.EqualError(t, err, `invalid environment variable APP_COUNT. Expected int64. Found "three".`)
	_, err = ms.Opts.Bool("APP_ON", "on", "", false, "")
	assert.Error(t, err)
}

func TestExitStatus(t *testing.T) {
	t.Parallel()

	code, msg := exitStatus(nil)
	assert.Equal(t, 0, code)
	assert.Empty(t, msg)

	code, msg = exitStatus(fmt.Errorf("wrapped: %w", ExitErrorf(3, "gone %d", 3)))
	assert.Equal(t, 3, code)
	assert.Equal(t, "gone 3", msg)

	code, msg = exitStatus(UsageErrorf("no input"))
	assert.Equal(t, 1, code)
	assert.Equal(t, "bad usage: no input\nRun with --help to see usage.", msg)

	code, msg = exitStatus(errors.New("boom"))
	assert.Equal(t, 1, code)
	assert.Equal(t, "boom", msg)
}

func TestStateMain(t *testing.T) {
	t.Parallel()

	t.Run("returns", func(t *testing.T) {
		t.Parallel()
		ms := testState()
		err := ms.Main(context.Background(), nil, func(context.Context, *State) error {
			return errors.New("done")
		})
		assert.EqualError(t, err, "done")
	})

	t.Run("sigterm", func(t *testing.T) {
		t.Parallel()
		ms := testState()
		sigs := make(chan os.Signal, 1)
		sigs <- syscall.SIGTERM
		err := ms.Main(context.Background(), sigs, func(ctx context.Context, _ *State) error {
			<-ctx.Done()
			return ctx.Err()
		})
		assert.NoError(t, err)
	})

	t.Run("interrupt", func(t *testing.T) {
		t.Parallel()
		ms := testState()
		sigs := make(chan os.Signal, 1)
		sigs <- os.Interrupt
		err := ms.Main(context.Background(), sigs, func(ctx context.Context, _ *State) error {
			<-ctx.Done()
			return nil
		})
		var ee ExitError
		assert.True(t, errors.As(err, &ee))
		assert.Equal(t, 1, ee.Code)
	})
}

func TestPaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ms := testState()
	ms.PWD = dir
	stdout := &bytes.Buffer{}
	ms.Stdout = nopCloser{stdout}

	fp := filepath.Join(dir, "a", "b.txt")
	assert.NoError(t, ms.WritePath(fp, []byte("hi")))
	b, err := ms.ReadPath(fp)
	assert.NoError(t, err)
	assert.Equal(t, "hi", string(b))

	assert.NoError(t, ms.WritePath("-", []byte("out")))
	assert.Equal(t, "out", stdout.String())

	assert.Equal(t, filepath.Join("a", "b.txt"), ms.HumanPath(fp))
	outside := filepath.Join(filepath.Dir(dir), "elsewhere.txt")
	assert.Equal(t, outside, ms.HumanPath(outside))
	assert.Equal(t, "-", ms.HumanPath("-"))
}
