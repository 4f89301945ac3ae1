// Package xmain runs commands: it wires up stdio, logging, flags and
// environment, and turns interrupts into context cancellation.
package xmain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	ctxlog "github.com/structview/structview/lib/log"
)

// ShutdownTimeout bounds how long a command may take to return after an
// interrupt.
const ShutdownTimeout = time.Minute

type RunFunc func(context.Context, *State) error

// Main runs run as the process and exits with its status.
func Main(run RunFunc) {
	var name string
	var args []string
	if len(os.Args) > 0 {
		name, args = os.Args[0], os.Args[1:]
	}

	env := xos.NewEnv(os.Environ())
	ms := &State{
		Name:   name,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    env,
		Log:    cmdlog.New(env, os.Stderr),
	}
	ms.Opts = NewOpts(ms.Env, ms.Log, args)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	ctx := ctxlog.With(context.Background(), slog.Make(sloghuman.Sink(os.Stderr)))
	code, msg := exitStatus(ms.Main(ctx, sigs, run))
	if msg != "" {
		ms.Log.Error.Print(msg)
	}
	if code != 0 {
		os.Exit(code)
	}
}

// exitStatus maps the error returned by a RunFunc to an exit code and the
// message printed for it.
func exitStatus(err error) (int, string) {
	if err == nil {
		return 0, ""
	}
	var ee ExitError
	if errors.As(err, &ee) {
		return ee.Code, ee.Message
	}
	var ue UsageError
	if errors.As(err, &ue) {
		return 1, err.Error() + "\nRun with --help to see usage."
	}
	return 1, err.Error()
}

// Main calls run, canceling its context on the first signal from sigs.
func (ms *State) Main(ctx context.Context, sigs <-chan os.Signal, run RunFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, ms)
	}()

	var sig os.Signal
	select {
	case err := <-done:
		return err
	case sig = <-sigs:
	}

	ms.Log.Warn.Printf("received signal %v: shutting down...", sig)
	cancel()

	t := time.NewTimer(ShutdownTimeout)
	defer t.Stop()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("failed to shutdown: %w", err)
		}
		if sig == syscall.SIGTERM {
			return nil
		}
		return ExitError{Code: 1}
	case <-t.C:
		return ExitErrorf(1, "took longer than %v to shutdown: exiting forcefully", ShutdownTimeout)
	}
}

type ExitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ExitErrorf(code int, msg string, v ...interface{}) ExitError {
	return ExitError{
		Code:    code,
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ee ExitError) Error() string {
	if ee.Message == "" {
		return fmt.Sprintf("exiting with code %d", ee.Code)
	}
	return fmt.Sprintf("exiting with code %d: %s", ee.Code, ee.Message)
}

// UsageError is an error caused by bad flags or arguments.
type UsageError struct {
	Message string `json:"message"`
}

func UsageErrorf(msg string, v ...interface{}) UsageError {
	return UsageError{
		Message: fmt.Sprintf(msg, v...),
	}
}

func (ue UsageError) Error() string {
	return "bad usage: " + ue.Message
}
