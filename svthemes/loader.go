package svthemes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"cdr.dev/slog"
	"go.uber.org/multierr"

	"github.com/structview/structview/lib/imgbundler"
	"github.com/structview/structview/lib/log"
)

// DefaultTimeout bounds a LoadAll or Preload call.
const DefaultTimeout = 10 * time.Second

const maxThemeSize = 1 << 22

// LoadFailure records one resource that could not be loaded.
type LoadFailure struct {
	URL string
	Err error
}

func (f LoadFailure) Error() string {
	return fmt.Sprintf("could not load %s: %v", f.URL, f.Err)
}

// LoadResult holds one theme per requested URL, in request order. Themes that
// failed are present as empty themes and listed in Failures.
type LoadResult struct {
	Themes   []*Theme
	Failures []LoadFailure
}

// Err joins every failure, or returns nil when all loads succeeded.
func (r LoadResult) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

type Loader struct {
	Client *http.Client
	// Base replaces PrebuiltThemesURL when set. It may be a URL or a directory.
	Base    string
	Timeout time.Duration
}

// ResolveURL applies Base to a prebuilt theme URL.
func (l *Loader) ResolveURL(url string) string {
	if l.Base != "" && strings.HasPrefix(url, PrebuiltThemesURL) {
		base := l.Base
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		return base + strings.TrimPrefix(url, PrebuiltThemesURL)
	}
	return url
}

type themeResp struct {
	i     int
	theme *Theme
	err   error
}

// LoadAll fetches every theme concurrently and waits for all of them or the
// timeout, whichever comes first.
func (l *Loader) LoadAll(ctx context.Context, urls []string) LoadResult {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var wg sync.WaitGroup
	respChan := make(chan themeResp, len(urls))
	wg.Add(len(urls))
	for i, url := range urls {
		go func(i int, url string) {
			defer wg.Done()
			t, err := l.load(ctx, url)
			respChan <- themeResp{i: i, theme: t, err: err}
		}(i, l.ResolveURL(url))
	}
	wg.Wait()
	close(respChan)

	res := LoadResult{Themes: make([]*Theme, len(urls))}
	for r := range respChan {
		if r.err != nil {
			url := l.ResolveURL(urls[r.i])
			log.Warn(ctx, "could not load theme", slog.F("url", url), slog.Error(r.err))
			res.Failures = append(res.Failures, LoadFailure{URL: url, Err: r.err})
			res.Themes[r.i] = Empty(url)
			continue
		}
		res.Themes[r.i] = r.theme
	}
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].URL < res.Failures[j].URL
	})
	return res
}

func (l *Loader) load(ctx context.Context, url string) (*Theme, error) {
	var data []byte
	var err error
	if imgbundler.IsRemote(url) {
		data, err = l.get(ctx, url)
	} else {
		data, err = os.ReadFile(strings.TrimPrefix(url, "file://"))
	}
	if err != nil {
		return nil, err
	}
	return Parse(url, data)
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error %d (%s)", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxThemeSize))
}

// ImageResult is the outcome of preloading icons and images.
type ImageResult struct {
	Images   map[string]imgbundler.Image
	Failures []LoadFailure
}

func (r ImageResult) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// ImageLoader preloads icons and image view content so failures are known
// before styles are resolved.
type ImageLoader struct {
	BaseDir string
	Timeout time.Duration
}

func (il *ImageLoader) Preload(ctx context.Context, hrefs []string) ImageResult {
	images, failures := imgbundler.FetchAll(ctx, hrefs, il.BaseDir, il.Timeout)
	res := ImageResult{Images: images}
	for href, err := range failures {
		res.Failures = append(res.Failures, LoadFailure{URL: href, Err: err})
	}
	sort.Slice(res.Failures, func(i, j int) bool {
		return res.Failures[i].URL < res.Failures[j].URL
	})
	return res
}
