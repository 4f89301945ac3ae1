// Package xhttp holds the HTTP plumbing of the watch server: a server with
// sane limits, handlers that return errors, and request logging.
package xhttp

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"
)

const (
	maxHeaderBytes = 1 << 18
	maxBodyBytes   = 1 << 20
)

func NewServer(errLog *log.Logger, h http.Handler) *http.Server {
	return &http.Server{
		MaxHeaderBytes: maxHeaderBytes,
		ReadTimeout:    time.Minute,
		WriteTimeout:   time.Minute,
		IdleTimeout:    time.Hour,
		ErrorLog:       errLog,
		Handler:        http.MaxBytesHandler(h, maxBodyBytes),
	}
}

// Serve serves s on l until ctx is done, then shuts s down gracefully,
// waiting at most shutdownTimeout. Request contexts derive from ctx.
func Serve(ctx context.Context, shutdownTimeout time.Duration, s *http.Server, l net.Listener) error {
	s.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	served := make(chan error, 1)
	go func() {
		served <- s.Serve(l)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
