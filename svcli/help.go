package svcli

import (
	"fmt"
	"path/filepath"

	"github.com/structview/structview/lib/version"
	"github.com/structview/structview/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--view=key] [--format=svg] workspace.json [file.svg | file.png]
  %[1]s --list workspace.json

%[1]s renders a view of workspace.json to file.svg | file.png
It defaults to workspace.svg if an output path is not provided.

Use - to have %[1]s read from stdin or write to stdout.

Formats:
  svg        the view as a static SVG
  png        the view rasterized, natively or with --rasterizer=browser
  key        a legend of the element and relationship styles in the view
  thumbnail  a PNG scaled down to --thumbnail-width
  animated   one SVG stepping through the frames of a dynamic view

Flags:
%[3]s
`, filepath.Base(ms.Name), version.Get(), ms.Opts.Help())
}
