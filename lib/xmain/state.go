package xmain

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

// State is everything a command touches outside of its arguments.
type State struct {
	Name string

	Stdin  io.Reader
	Stdout io.WriteCloser
	Stderr io.WriteCloser

	Log  *cmdlog.Logger
	Env  *xos.Env
	Opts *Opts

	// PWD is used to shorten paths in log output. Empty means os.Getwd.
	PWD string
}

// ReadPath reads fp, or stdin when fp is "-".
func (ms *State) ReadPath(fp string) ([]byte, error) {
	if fp == "-" {
		return io.ReadAll(ms.Stdin)
	}
	return os.ReadFile(fp)
}

// WritePath writes p to fp, creating its directory. "-" writes p to stdout
// and closes it.
func (ms *State) WritePath(fp string, p []byte) error {
	if fp != "-" {
		if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
			return err
		}
		return os.WriteFile(fp, p, 0644)
	}
	if _, err := ms.Stdout.Write(p); err != nil {
		return err
	}
	return ms.Stdout.Close()
}

// HumanPath makes fp relative to the working directory when it is below it.
func (ms *State) HumanPath(fp string) string {
	if fp == "-" {
		return fp
	}
	pwd := ms.PWD
	if pwd == "" {
		var err error
		if pwd, err = os.Getwd(); err != nil {
			return fp
		}
	}
	abs, err := filepath.Abs(fp)
	if err != nil {
		return fp
	}
	rel, err := filepath.Rel(pwd, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fp
	}
	return rel
}
