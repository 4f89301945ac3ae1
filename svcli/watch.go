package svcli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/structview/structview/lib/xbrowser"
	"github.com/structview/structview/lib/xhttp"
	"github.com/structview/structview/lib/xmain"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svexport"
)

//go:embed static
var staticFS embed.FS

const (
	// burstQuiet is how long the file system has to be quiet before a
	// burst of events triggers a render.
	burstQuiet = time.Millisecond * 16
	// pollInterval catches changes fsnotify missed.
	pollInterval = time.Second * 10
)

type watcherOpts struct {
	host       string
	port       string
	inputPath  string
	outputPath string
	renderOpts *renderOpts
	rasterizer rasterizer
}

// watcher rerenders the input whenever it or one of its local images
// changes, and pushes the SVG to preview pages over a websocket.
type watcher struct {
	ms *xmain.State
	watcherOpts

	fw      *fsnotify.Watcher
	l       net.Listener
	hub     *previewHub
	renders chan struct{}
}

func newWatcher(ms *xmain.State, opts watcherOpts) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", net.JoinHostPort(opts.host, opts.port))
	if err != nil {
		fw.Close()
		return nil, err
	}
	ms.Log.Success.Printf("listening on http://%v", l.Addr())
	return &watcher{
		ms:          ms,
		watcherOpts: opts,
		fw:          fw,
		l:           l,
		hub:         newPreviewHub(ms.Log),
		renders:     make(chan struct{}, 1),
	}, nil
}

// run blocks until ctx is canceled or one of the loops fails.
func (w *watcher) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.watchLoop(ctx)
	})
	g.Go(func() error {
		return w.renderLoop(ctx)
	})
	g.Go(func() error {
		return w.serve(ctx)
	})
	err := g.Wait()

	w.hub.shutdown()
	if cerr := w.fw.Close(); err == nil {
		err = cerr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *watcher) requestRender() {
	select {
	case w.renders <- struct{}{}:
	default:
	}
}

func (w *watcher) watchLoop(ctx context.Context) error {
	modTimes := make(map[string]time.Time)

	mt, err := w.ensureAddWatch(ctx, w.inputPath)
	if err != nil {
		return err
	}
	modTimes[w.inputPath] = mt
	w.ms.Log.Info.Printf("rendering %v...", w.ms.HumanPath(w.inputPath))
	w.requestRender()

	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	poll := time.NewTicker(pollInterval)
	defer poll.Stop()

	pending := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-poll.C:
			stale := false
			for _, p := range w.fw.WatchList() {
				mt, err := w.ensureAddWatch(ctx, p)
				if err != nil {
					return err
				}
				if prev, ok := modTimes[p]; !ok || !prev.Equal(mt) {
					modTimes[p] = mt
					stale = true
				}
			}
			if stale {
				w.requestRender()
			}

		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Debug.Printf("received file system event %v", ev)
			mt, err := w.ensureAddWatch(ctx, ev.Name)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(modTimes[ev.Name]) {
					continue
				}
				modTimes[ev.Name] = mt
			}
			pending[ev.Name] = struct{}{}
			quiet.Reset(burstQuiet)

		case <-quiet.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, w.ms.HumanPath(p))
				delete(pending, p)
			}
			sort.Strings(changed)
			w.ms.Log.Info.Printf("detected change in %s: rerendering...", strings.Join(changed, ", "))
			w.requestRender()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			w.ms.Log.Warn.Printf("fsnotify error: %v", err)
		}
	}
}

// ensureAddWatch watches path, retrying with backoff while it is missing.
// Editors that save by rename briefly leave no file behind.
func (w *watcher) ensureAddWatch(ctx context.Context, path string) (time.Time, error) {
	backoff := time.Millisecond * 16
	for {
		mt, err := w.addWatch(path)
		if err == nil {
			return mt, nil
		}
		if backoff >= time.Second {
			w.ms.Log.Warn.Printf("failed to watch %q: %v (retrying in %v)", w.ms.HumanPath(path), err, backoff)
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
		backoff = min(max(backoff*2, time.Second), time.Second*16)
	}
}

func (w *watcher) addWatch(path string) (time.Time, error) {
	if err := w.fw.Add(path); err != nil {
		return time.Time{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// syncWatchList makes the watch list the input plus images.
func (w *watcher) syncWatchList(ctx context.Context, images []string) error {
	want := map[string]bool{w.inputPath: true}
	for _, p := range images {
		want[p] = true
	}
	for _, p := range w.fw.WatchList() {
		if want[p] {
			delete(want, p)
			continue
		}
		_ = w.fw.Remove(p)
	}
	for p := range want {
		if _, err := w.ensureAddWatch(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// localImages lists the images of d that are read from disk.
func localImages(d *svdiagram.Diagram, baseDir string) []string {
	var paths []string
	for _, href := range d.RenderingContext().ImageHrefs(d.Workspace()) {
		if strings.Contains(href, "://") || strings.HasPrefix(href, "data:") {
			continue
		}
		p := href
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

func (w *watcher) renderLoop(ctx context.Context) error {
	for i := 0; ; i++ {
		select {
		case <-w.renders:
		case <-ctx.Done():
			return ctx.Err()
		}

		res := &compileResult{}
		svg, err := w.render(ctx)
		res.SVG = string(svg)
		if err != nil {
			verb := "render"
			if i > 0 {
				verb = "rerender"
			}
			res.Err = fmt.Sprintf("failed to %s: %v", verb, err)
			w.ms.Log.Error.Print(res.Err)
		}
		w.hub.publish(res)

		if i == 0 {
			url := fmt.Sprintf("http://%s", w.l.Addr())
			if err := xbrowser.OpenURL(ctx, w.ms.Env, url); err != nil {
				w.ms.Log.Warn.Printf("failed to open browser to %v: %v", url, err)
			}
		}
	}
}

// render writes the output file and returns the SVG shown in the preview.
func (w *watcher) render(ctx context.Context) ([]byte, error) {
	d, err := buildDiagram(ctx, w.ms, w.renderOpts, w.inputPath)
	if err != nil {
		return nil, err
	}
	if err := w.syncWatchList(ctx, localImages(d, filepath.Dir(w.inputPath))); err != nil {
		return nil, err
	}

	opts := w.renderOpts.exportOpts(w.inputPath)
	svg, err := svexport.SVG(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	out := svg
	if w.renderOpts.format != formatSVG {
		out, err = export(ctx, d, w.rasterizer, w.renderOpts, opts)
		if err != nil {
			return svg, err
		}
	}
	if err := w.ms.WritePath(w.outputPath, out); err != nil {
		return svg, err
	}
	w.ms.Log.Success.Printf("successfully rendered %s to %s", w.ms.HumanPath(w.inputPath), w.ms.HumanPath(w.outputPath))
	return svg, nil
}

func (w *watcher) serve(ctx context.Context) error {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	m := http.NewServeMux()
	m.HandleFunc("/", w.handleRoot)
	m.Handle("/static/", http.StripPrefix("/static", http.FileServer(http.FS(static))))
	m.Handle("/watch", xhttp.HandlerFuncAdapter{Log: w.ms.Log, Func: w.hub.handler(ctx)})

	s := xhttp.NewServer(w.ms.Log.Warn, xhttp.Log(w.ms.Log, m))
	return xhttp.Serve(ctx, time.Second*30, s, w.l)
}

func (w *watcher) handleRoot(hw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(hw, r)
		return
	}
	hw.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(hw, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s</title>
	<script src="/static/watch.js"></script>
	<link rel="stylesheet" href="/static/watch.css">
</head>
<body>
	<div id="sv-err" style="display: none"></div>
	<div id="sv-svg-container"></div>
</body>
</html>`, html.EscapeString(filepath.Base(w.outputPath)))
}
