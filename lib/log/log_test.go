package log_test

import (
	"context"
	"errors"
	"testing"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/slogtest"

	"github.com/structview/structview/lib/log"
)

func TestContextLogger(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, nil)
	ctx = log.Fields(ctx, slog.F("view", "Containers"))
	log.Info(ctx, "rendered")
	log.Warn(ctx, "image skipped", slog.F("href", "logo.png"))
	log.Debug(ctx, "layout", slog.F("nodes", 3), slog.F("links", 2))

	ctx = log.Leveled(ctx, slog.LevelError)
	log.Debug(ctx, "not shown")
	log.Info(ctx, "not shown")
}

func TestErrorFields(t *testing.T) {
	t.Parallel()

	ctx := log.WithTB(context.Background(), t, &slogtest.Options{IgnoreErrors: true})
	log.Error(ctx, "render failed", slog.F("view", "Dynamic"), slog.Error(errors.New("boom")))
	log.Error(ctx, "render failed")
}
