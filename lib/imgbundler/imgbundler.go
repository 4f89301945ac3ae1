// Package imgbundler fetches icons and images and inlines them into SVG
// markup as data URIs.
package imgbundler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"cdr.dev/slog"
	"go.uber.org/multierr"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/log"
)

const maxImageSize int64 = 1 << 25

// DefaultTimeout bounds one Inline or FetchAll call.
const DefaultTimeout = 10 * time.Second

var imageRegex = regexp.MustCompile(`<image href="([^"]+)"`)

var httpClient = &http.Client{}

var imgCache sync.Map

// Image is a fetched image.
type Image struct {
	Href     string
	MimeType string
	Data     []byte
}

func (img Image) DataURI() string {
	return DataURI(img.MimeType, img.Data)
}

func DataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// IsRemote reports whether href must be fetched over HTTP.
func IsRemote(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// Fetch resolves href to image bytes. href may be an http(s) URL, a data URI
// or a file path relative to baseDir.
func Fetch(ctx context.Context, href, baseDir string) (img Image, err error) {
	defer xdefer.Errorf(&err, "failed to fetch image %q", href)

	if cached, ok := imgCache.Load(href); ok {
		return cached.(Image), nil
	}

	switch {
	case strings.HasPrefix(href, "data:"):
		img, err = decodeDataURI(href)
	case IsRemote(href):
		img, err = fetchRemote(ctx, href)
	default:
		img, err = readLocal(href, baseDir)
	}
	if err != nil {
		return Image{}, err
	}
	img.Href = href
	imgCache.Store(href, img)
	return img, nil
}

func fetchRemote(ctx context.Context, href string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", href, nil)
	if err != nil {
		return Image{}, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("expected status 200 but got %d %s", resp.StatusCode, resp.Status)
	}
	r := http.MaxBytesReader(nil, resp.Body, maxImageSize)
	data, err := io.ReadAll(r)
	if err != nil {
		return Image{}, err
	}
	return Image{MimeType: sniff(href, data, resp.Header.Get("Content-Type")), Data: data}, nil
}

func readLocal(href, baseDir string) (Image, error) {
	p := href
	if !filepath.IsAbs(p) && baseDir != "" {
		p = filepath.Join(baseDir, p)
	}
	fi, err := os.Stat(p)
	if err != nil {
		return Image{}, err
	}
	if fi.Size() > maxImageSize {
		return Image{}, fmt.Errorf("image larger than %d bytes", maxImageSize)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return Image{}, err
	}
	return Image{MimeType: sniff(p, data, ""), Data: data}, nil
}

func decodeDataURI(href string) (Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(href, "data:"), ",")
	if !ok {
		return Image{}, errors.New("malformed data URI")
	}
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return Image{MimeType: mimeType, Data: []byte(payload)}, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, err
	}
	return Image{MimeType: mimeType, Data: data}, nil
}

func sniff(name string, data []byte, header string) string {
	if header != "" && !strings.HasPrefix(header, "text/plain") && !strings.HasPrefix(header, "application/octet-stream") {
		mt, _, err := mime.ParseMediaType(header)
		if err == nil {
			return mt
		}
	}
	if strings.HasSuffix(strings.ToLower(name), ".svg") {
		return "image/svg+xml"
	}
	mimeType := http.DetectContentType(data)
	mimeType = strings.Replace(mimeType, "text/xml", "image/svg+xml", 1)
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return mimeType
}

type resp struct {
	href string
	img  Image
	err  error
}

// FetchAll fetches every href concurrently. Images that fail or do not finish
// before the timeout are reported in the returned error map.
func FetchAll(ctx context.Context, hrefs []string, baseDir string, timeout time.Duration) (map[string]Image, map[string]error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	uniq := make([]string, 0, len(hrefs))
	seen := make(map[string]struct{}, len(hrefs))
	for _, href := range hrefs {
		if _, ok := seen[href]; ok || href == "" {
			continue
		}
		seen[href] = struct{}{}
		uniq = append(uniq, href)
	}

	var wg sync.WaitGroup
	respChan := make(chan resp, len(uniq))
	wg.Add(len(uniq))
	for _, href := range uniq {
		go func(href string) {
			defer wg.Done()
			img, err := Fetch(ctx, href, baseDir)
			respChan <- resp{href: href, img: img, err: err}
		}(href)
	}
	wg.Wait()
	close(respChan)

	images := make(map[string]Image, len(uniq))
	failures := make(map[string]error)
	for r := range respChan {
		if r.err != nil {
			log.Warn(ctx, "image failed to fetch", slog.F("href", r.href), slog.Error(r.err))
			failures[r.href] = r.err
			continue
		}
		images[r.href] = r.img
	}
	return images, failures
}

// Inline replaces every non data URI <image href> in svg with a data URI.
// Images that fail to load keep their original href; their errors are joined
// into the returned error alongside the partially bundled output.
func Inline(ctx context.Context, svg []byte, baseDir string) ([]byte, error) {
	matches := imageRegex.FindAllStringSubmatch(string(svg), -1)
	hrefs := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.HasPrefix(m[1], "data:") {
			continue
		}
		hrefs = append(hrefs, m[1])
	}
	if len(hrefs) == 0 {
		return svg, nil
	}

	images, failures := FetchAll(ctx, hrefs, baseDir, DefaultTimeout)

	out := string(svg)
	for href, img := range images {
		out = strings.ReplaceAll(out, fmt.Sprintf(`<image href="%s"`, href), fmt.Sprintf(`<image href="%s"`, img.DataURI()))
	}

	failed := make([]string, 0, len(failures))
	for href := range failures {
		failed = append(failed, href)
	}
	sort.Strings(failed)
	var err error
	for _, href := range failed {
		err = multierr.Append(err, fmt.Errorf("%s: %w", href, failures[href]))
	}
	return []byte(out), err
}
