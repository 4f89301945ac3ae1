// Package svcli implements the structview command.
package svcli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"github.com/structview/structview/lib/env"
	"github.com/structview/structview/lib/log"
	timelib "github.com/structview/structview/lib/time"
	"github.com/structview/structview/lib/version"
	"github.com/structview/structview/lib/xmain"
	"github.com/structview/structview/svexport"
)

// envKeys maps the flags a config file may set to their environment
// variables.
var envKeys = map[string]string{
	"view":             "STRUCTVIEW_VIEW",
	"format":           "STRUCTVIEW_FORMAT",
	"mode":             "STRUCTVIEW_MODE",
	"theme-base":       "STRUCTVIEW_THEME_BASE",
	"crop":             "STRUCTVIEW_CROP",
	"hide-metadata":    "STRUCTVIEW_HIDE_METADATA",
	"filter-tags":      "STRUCTVIEW_FILTER_TAGS",
	"filter-mode":      "STRUCTVIEW_FILTER_MODE",
	"perspective":      "STRUCTVIEW_PERSPECTIVE",
	"rasterizer":       "STRUCTVIEW_RASTERIZER",
	"scale":            "STRUCTVIEW_SCALE",
	"thumbnail-width":  "STRUCTVIEW_THUMBNAIL_WIDTH",
	"animate-interval": "STRUCTVIEW_ANIMATE_INTERVAL",
	"host":             "HOST",
	"port":             "PORT",
	"timeout":          "STRUCTVIEW_TIMEOUT",
}

func Run(ctx context.Context, ms *xmain.State) (err error) {
	// These should be kept up-to-date with help.go
	viewFlag := ms.Opts.String(envKeys["view"], "view", "v", "", "key of the view to render. Defaults to the first view in order.")
	formatFlag := ms.Opts.String(envKeys["format"], "format", "f", "", "output format: svg, png, key, thumbnail or animated. Defaults to the output's extension.")
	modeFlag := ms.Opts.String(envKeys["mode"], "mode", "m", "light", "rendering mode: light, dark or system")
	themeBaseFlag := ms.Opts.String(envKeys["theme-base"], "theme-base", "", "", "base URL that relative theme URLs resolve against")
	cropFlag, err := ms.Opts.Bool(envKeys["crop"], "crop", "", false, "trim the page to the diagram content plus a margin")
	if err != nil {
		return err
	}
	hideMetadataFlag, err := ms.Opts.Bool(envKeys["hide-metadata"], "hide-metadata", "", false, "leave the title, description, metadata and logo out of the export")
	if err != nil {
		return err
	}
	filterTagsFlag := ms.Opts.StringSlice(envKeys["filter-tags"], "filter-tags", "", nil, "comma separated tags to filter the view by")
	filterModeFlag := ms.Opts.String(envKeys["filter-mode"], "filter-mode", "", "Include", "whether --filter-tags keep (Include) or drop (Exclude) matching elements")
	perspectiveFlag := ms.Opts.String(envKeys["perspective"], "perspective", "", "", "render the view through the named perspective")
	rasterizerFlag := ms.Opts.String(envKeys["rasterizer"], "rasterizer", "", "native", "PNG rasterizer: native, or browser for headless Chromium through Playwright")
	scaleFlag, err := ms.Opts.Int64(envKeys["scale"], "scale", "", 1, "pixel ratio of PNG exports")
	if err != nil {
		return err
	}
	thumbnailWidthFlag, err := ms.Opts.Int64(envKeys["thumbnail-width"], "thumbnail-width", "", svexport.ThumbnailWidth, "width in pixels of thumbnail exports")
	if err != nil {
		return err
	}
	animateIntervalFlag, err := ms.Opts.Int64(envKeys["animate-interval"], "animate-interval", "", 0, "milliseconds each step is shown for in animated exports. 0 uses the default.")
	if err != nil {
		return err
	}
	watchFlag, err := ms.Opts.Bool("STRUCTVIEW_WATCH", "watch", "w", false, "watch for changes to input and live reload. Use $HOST and $PORT to specify the listening address.\n(default localhost:0, which will open on a randomly available local port).")
	if err != nil {
		return err
	}
	hostFlag := ms.Opts.String(envKeys["host"], "host", "", "localhost", "host listening address when used with watch")
	portFlag := ms.Opts.String(envKeys["port"], "port", "p", "0", "port listening address when used with watch")
	browserFlag := ms.Opts.String("BROWSER", "browser", "", "", "browser executable that watch opens. Setting to 0 opens no browser.")
	configFlag := ms.Opts.String("STRUCTVIEW_CONFIG", "config", "c", "", "TOML or YAML file with defaults for the flags above, keyed by flag name")
	listFlag, err := ms.Opts.Bool("", "list", "l", false, "list the views of the workspace and exit")
	if err != nil {
		return err
	}
	timeoutFlag, err := ms.Opts.Int64(envKeys["timeout"], "timeout", "", 120, "the maximum number of seconds a render runs for before timing out")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("STRUCTVIEW_DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid STRUCTVIEW_DEBUG flag value ignored")
		debugFlag = new(bool)
	}
	versionFlag, err := ms.Opts.Bool("", "version", "", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *versionFlag {
		fmt.Fprintln(ms.Stdout, version.Get())
		return nil
	}
	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
		ms.Env.Setenv("DEBUG", "1")
		ms.Env.Setenv("STRUCTVIEW_DEBUG", "1")
	}
	if *browserFlag != "" {
		ms.Env.Setenv("BROWSER", *browserFlag)
	}

	if *configFlag != "" {
		cfg, err := loadConfig(ms, *configFlag)
		if err != nil {
			return xmain.UsageErrorf("%v", err)
		}
		err = cfg.apply(ms.Opts.Flags, func(flag string) bool {
			return ms.Env.Getenv(envKeys[flag]) != ""
		})
		if err != nil {
			return xmain.UsageErrorf("%v", err)
		}
		ms.Log.Debug.Printf("using config %s", ms.HumanPath(*configFlag))
	}

	args := ms.Opts.Flags.Args()
	if len(args) == 0 {
		help(ms)
		return nil
	}
	if len(args) > 2 {
		return xmain.UsageErrorf("expected at most an input and an output path, got %d arguments", len(args))
	}
	inputPath := args[0]

	if *listFlag {
		return listViews(ms, inputPath)
	}

	f, err := outputFormat(*formatFlag, "")
	var outputPath string
	if len(args) == 2 {
		outputPath = args[1]
		f, err = outputFormat(*formatFlag, outputPath)
	}
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, f)
	}

	ro := &renderOpts{
		view:            *viewFlag,
		format:          f,
		mode:            *modeFlag,
		themeBase:       *themeBaseFlag,
		crop:            *cropFlag,
		hideMetadata:    *hideMetadataFlag,
		filterTags:      *filterTagsFlag,
		filterMode:      *filterModeFlag,
		perspective:     *perspectiveFlag,
		thumbnailWidth:  int(*thumbnailWidthFlag),
		animateInterval: time.Duration(*animateIntervalFlag) * time.Millisecond,
	}
	if ro.themeBase == "" {
		ro.themeBase = env.ThemeBase()
	}
	if _, err := parseMode(ro.mode); err != nil {
		return err
	}
	if *scaleFlag <= 0 {
		return xmain.UsageErrorf("--scale must be positive, got %d", *scaleFlag)
	}

	var r rasterizer
	if f == formatPNG || f == formatThumbnail {
		r, err = newRasterizer(*rasterizerFlag, float64(*scaleFlag))
		if err != nil {
			return err
		}
		defer func() {
			cerr := r.Close()
			if err == nil && cerr != nil {
				err = fmt.Errorf("failed to close rasterizer: %w", cerr)
			}
		}()
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		w, err := newWatcher(ms, watcherOpts{
			host:       *hostFlag,
			port:       *portFlag,
			inputPath:  inputPath,
			outputPath: outputPath,
			renderOpts: ro,
			rasterizer: r,
		})
		if err != nil {
			return err
		}
		return w.run(ctx)
	}

	timeout := time.Duration(*timeoutFlag) * time.Second
	ctx, cancel := timelib.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := build(ctx, ms, ro, r, inputPath)
	if err != nil {
		return err
	}
	if err := ms.WritePath(outputPath, out); err != nil {
		return err
	}
	ms.Log.Success.Printf("successfully rendered %s to %s", ms.HumanPath(inputPath), ms.HumanPath(outputPath))
	return nil
}

// build renders inputPath and exports it in the requested format.
func build(ctx context.Context, ms *xmain.State, ro *renderOpts, r rasterizer, inputPath string) ([]byte, error) {
	start := time.Now()
	d, err := buildDiagram(ctx, ms, ro, inputPath)
	if err != nil {
		return nil, err
	}
	out, err := export(ctx, d, r, ro, ro.exportOpts(inputPath))
	if err != nil {
		return nil, err
	}
	ms.Log.Debug.Printf("exported %s in %v", ro.format, time.Since(start))
	return out, nil
}
