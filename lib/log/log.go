// Package log carries an slog.Logger in a context.Context.
//
// Libraries log through the package functions so that tests can route
// their output to testing.TB with WithTB and commands to stderr.
package log

import (
	"context"
	stdlog "log"
	"os"
	"runtime/debug"
	"testing"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
	"cdr.dev/slog/sloggers/slogtest"

	"github.com/structview/structview/lib/env"
)

// fallback is used when a context carries no logger, which is a bug.
var fallback = slog.Make(sloghuman.Sink(os.Stderr)).Named("fallback")

func init() {
	stdlog.SetOutput(slog.Stdlib(context.Background(), fallback, slog.LevelInfo).Writer())
}

type ctxKey struct{}

func get(ctx context.Context) slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(slog.Logger); ok {
		return l
	}
	fallback.Warn(ctx, "no logger in context: use log.With", slog.F("stack", string(debug.Stack())))
	return fallback
}

func With(ctx context.Context, l slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithTB logs to t. Entries at Error fail the test unless opts ignores them.
// Debug entries are shown when $DEBUG is set.
func WithTB(ctx context.Context, t testing.TB, opts *slogtest.Options) context.Context {
	l := slogtest.Make(t, opts)
	if env.Debug() {
		l = l.Leveled(slog.LevelDebug)
	}
	return With(ctx, l)
}

func Leveled(ctx context.Context, level slog.Level) context.Context {
	return With(ctx, get(ctx).Leveled(level))
}

// Fields attaches fields to every entry logged through the returned context.
func Fields(ctx context.Context, fields ...slog.Field) context.Context {
	return With(ctx, get(ctx).With(fields...))
}

func Debug(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	get(ctx).Debug(ctx, msg, args(fields)...)
}

func Info(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	get(ctx).Info(ctx, msg, args(fields)...)
}

func Warn(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	get(ctx).Warn(ctx, msg, args(fields)...)
}

func Error(ctx context.Context, msg string, fields ...slog.Field) {
	slog.Helper()
	get(ctx).Error(ctx, msg, args(fields)...)
}

// args adapts fields to the ...any parameters of slog.Logger.
func args(fields []slog.Field) []any {
	a := make([]any, len(fields))
	for i, f := range fields {
		a[i] = f
	}
	return a
}
