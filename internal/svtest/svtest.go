// Package svtest holds a sample workspace shared by package tests.
package svtest

import (
	"bytes"
	_ "embed"
	"testing"

	"github.com/structview/structview/svworkspace"
)

//go:embed fixture.json
var FixtureJSON []byte

// Workspace loads a fresh copy of the sample workspace.
func Workspace(t testing.TB) *svworkspace.Workspace {
	t.Helper()
	ws, err := svworkspace.Load(bytes.NewReader(FixtureJSON))
	if err != nil {
		t.Fatal(err)
	}
	return ws
}
