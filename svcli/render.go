package svcli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/xmain"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svexport"
	"github.com/structview/structview/svstyle"
	"github.com/structview/structview/svthemes"
	"github.com/structview/structview/svworkspace"
)

type format string

const (
	formatSVG       format = "svg"
	formatPNG       format = "png"
	formatKey       format = "key"
	formatThumbnail format = "thumbnail"
	formatAnimated  format = "animated"
)

var formats = []format{formatSVG, formatPNG, formatKey, formatThumbnail, formatAnimated}

// outputFormat picks the export for outputPath. An explicit format wins
// over the extension.
func outputFormat(explicit, outputPath string) (format, error) {
	if explicit != "" {
		for _, f := range formats {
			if string(f) == strings.ToLower(explicit) {
				return f, nil
			}
		}
		return "", xmain.UsageErrorf("unknown format %q: expected one of %v", explicit, formats)
	}
	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".png":
		return formatPNG, nil
	case ".svg", "":
		return formatSVG, nil
	default:
		return "", xmain.UsageErrorf("cannot infer the format of %s: pass --format", outputPath)
	}
}

func (f format) ext() string {
	if f == formatPNG || f == formatThumbnail {
		return ".png"
	}
	return ".svg"
}

func defaultOutputPath(inputPath string, f format) string {
	if inputPath == "-" {
		return "-"
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + f.ext()
}

type renderOpts struct {
	view            string
	format          format
	mode            string
	themeBase       string
	crop            bool
	hideMetadata    bool
	filterTags      []string
	filterMode      string
	perspective     string
	thumbnailWidth  int
	animateInterval time.Duration
}

func (ro *renderOpts) exportOpts(inputPath string) *svexport.Opts {
	opts := &svexport.Opts{
		Crop:         ro.crop,
		HideMetadata: ro.hideMetadata,
	}
	if inputPath != "-" {
		opts.BaseDir = filepath.Dir(inputPath)
	}
	return opts
}

// cmdAlerter shows alerts as CLI warnings.
type cmdAlerter struct {
	log *cmdlog.Logger
}

func (a cmdAlerter) Alert(ctx context.Context, msg string) {
	a.log.Warn.Print(msg)
}

func parseMode(s string) (string, error) {
	switch strings.ToLower(s) {
	case "", "system":
		return svstyle.ModeSystem, nil
	case svstyle.ModeLight:
		return svstyle.ModeLight, nil
	case svstyle.ModeDark:
		return svstyle.ModeDark, nil
	}
	return "", xmain.UsageErrorf("unknown mode %q: expected light, dark or system", s)
}

func loadWorkspace(ms *xmain.State, inputPath string) (*svworkspace.Workspace, error) {
	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return nil, err
	}
	return svworkspace.Load(bytes.NewReader(input))
}

// buildDiagram loads the workspace at inputPath and renders the selected
// view with the requested filter.
func buildDiagram(ctx context.Context, ms *xmain.State, ro *renderOpts, inputPath string) (_ *svdiagram.Diagram, err error) {
	defer xdefer.Errorf(&err, "failed to render %s", ms.HumanPath(inputPath))

	ws, err := loadWorkspace(ms, inputPath)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(ro.mode)
	if err != nil {
		return nil, err
	}
	rc := svstyle.NewRenderingContext(svstyle.RenderingContextOpts{
		ThemeBase: ro.themeBase,
		ModeStore: &svstyle.MemoryModeStore{},
		Alerter:   cmdAlerter{log: ms.Log},
	})
	rc.ModeStore.Set(mode)

	// Failed themes and images are alerted and skipped.
	if err := rc.LoadThemes(ctx, ws, nil); err != nil {
		ms.Log.Debug.Printf("theme errors: %v", err)
	}
	il := &svthemes.ImageLoader{}
	if inputPath != "-" {
		il.BaseDir = filepath.Dir(inputPath)
	}
	if err := rc.PreloadImages(ctx, il, rc.ImageHrefs(ws)); err != nil {
		ms.Log.Debug.Printf("image errors: %v", err)
	}

	d, err := svdiagram.New(ws, svdiagram.Opts{
		RenderingContext: rc,
		ImageLoader:      il,
	})
	if err != nil {
		return nil, err
	}

	key := ro.view
	if key == "" {
		views := ws.SortedViews()
		if len(views) == 0 {
			return nil, fmt.Errorf("workspace has no views")
		}
		key = views[0].Key
	}
	if ws.View(key) == nil {
		return nil, xmain.UsageErrorf("no view with key %q: run with --list to see the views", key)
	}
	if err := d.ChangeView(ctx, key); err != nil {
		return nil, err
	}
	ms.Log.Debug.Printf("rendered view %s", key)

	if ro.perspective != "" {
		d.SetPerspective(ctx, ro.perspective)
	}
	if len(ro.filterTags) > 0 {
		f := d.Filter()
		f.Active = true
		f.Tags = ro.filterTags
		f.Mode = ro.filterMode
		if f.Mode == "" {
			f.Mode = svworkspace.FilterInclude
		}
		d.SetFilter(ctx, f)
	}
	return d, nil
}

// export writes d in format f.
func export(ctx context.Context, d *svdiagram.Diagram, r svexport.Rasterizer, ro *renderOpts, opts *svexport.Opts) ([]byte, error) {
	switch ro.format {
	case formatSVG:
		return svexport.SVG(ctx, d, opts)
	case formatPNG:
		return svexport.PNG(ctx, d, r, opts)
	case formatThumbnail:
		png, err := svexport.PNG(ctx, d, r, opts)
		if err != nil {
			return nil, err
		}
		return svexport.Thumbnail(png, ro.thumbnailWidth)
	case formatKey:
		return svexport.Key(ctx, d)
	case formatAnimated:
		return svexport.AnimatedSVG(ctx, d, ro.animateInterval, opts)
	}
	return nil, fmt.Errorf("unknown format %q", ro.format)
}

type rasterizer interface {
	svexport.Rasterizer
	io.Closer
}

type nativeRasterizer struct {
	*svexport.NativeRasterizer
}

func (nativeRasterizer) Close() error {
	return nil
}

func newRasterizer(kind string, scale float64) (rasterizer, error) {
	switch strings.ToLower(kind) {
	case "", "native":
		return nativeRasterizer{&svexport.NativeRasterizer{Scale: scale}}, nil
	case "browser":
		return &svexport.BrowserRasterizer{Scale: scale}, nil
	}
	return nil, xmain.UsageErrorf("unknown rasterizer %q: expected native or browser", kind)
}

// listViews prints one line per view: key, type and title.
func listViews(ms *xmain.State, inputPath string) error {
	ws, err := loadWorkspace(ms, inputPath)
	if err != nil {
		return err
	}
	for _, v := range ws.SortedViews() {
		title := v.Title
		if title == "" {
			title = v.Name
		}
		fmt.Fprintf(ms.Stdout, "%s\t%s\t%s\n", v.Key, v.Type, title)
	}
	return nil
}
