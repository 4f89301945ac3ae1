// Package png rasterizes SVG in headless Chromium.
package png

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"cdr.dev/slog"
	"github.com/playwright-community/playwright-go"
	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/lib/log"
)

//go:embed generate_png.js
var rasterizeScript string

const dataURLPrefix = "data:image/png;base64,"

// Browser is a Chromium page that SVGs are drawn on.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// Start launches Chromium, installing the playwright driver first when it
// is missing or does not match the library version.
func Start(ctx context.Context) (_ *Browser, err error) {
	defer xdefer.Errorf(&err, "failed to start browser")

	if err := ensureDriver(ctx); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	b := &Browser{pw: pw}
	if err := b.launch(); err != nil {
		_ = pw.Stop()
		return nil, err
	}
	return b, nil
}

func ensureDriver(ctx context.Context) error {
	driver, err := playwright.NewDriver(&playwright.RunOptions{})
	if err != nil {
		return err
	}
	_, err = os.Stat(driver.DriverBinaryLocation)
	if errors.Is(err, os.ErrNotExist) {
		log.Info(ctx, "installing playwright driver")
		return playwright.Install()
	}
	if err != nil {
		return err
	}
	out, err := exec.Command(driver.DriverBinaryLocation, "--version").Output()
	if err == nil && bytes.Contains(out, []byte(driver.Version)) {
		return nil
	}
	log.Info(ctx, "updating playwright driver", slog.F("version", driver.Version))
	return playwright.Install()
}

func (b *Browser) launch() error {
	browser, err := b.pw.Chromium.Launch()
	if err != nil {
		return err
	}
	bctx, err := browser.NewContext()
	if err != nil {
		_ = browser.Close()
		return err
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		return err
	}
	b.browser, b.page = browser, page
	return nil
}

// Restart replaces the browser, for when the page crashed.
func (b *Browser) Restart() error {
	if b.browser != nil {
		_ = b.browser.Close()
		b.browser, b.page = nil, nil
	}
	return b.launch()
}

func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if serr := b.pw.Stop(); err == nil {
		err = serr
	}
	return err
}

// Rasterize draws svg onto a canvas scaled by scale and returns the PNG.
func (b *Browser) Rasterize(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if b.page == nil {
		return nil, errors.New("browser has no page")
	}
	if scale <= 0 {
		scale = 1
	}
	log.Debug(ctx, "rasterizing in browser", slog.F("bytes", len(svg)), slog.F("scale", scale))

	v, err := b.page.Evaluate(rasterizeScript, map[string]interface{}{
		"url":   "data:image/svg+xml;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(svg),
		"scale": scale,
	})
	if err != nil {
		return nil, err
	}
	dataURL, _ := v.(string)
	if !strings.HasPrefix(dataURL, dataURLPrefix) {
		if len(dataURL) > 50 {
			dataURL = dataURL[:50] + "..."
		}
		return nil, fmt.Errorf("invalid PNG: %q", dataURL)
	}
	return base64.StdEncoding.DecodeString(dataURL[len(dataURLPrefix):])
}
