package xhttp

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"oss.terrastruct.com/cmdlog"
)

// recorder remembers the status and size of a response.
type recorder struct {
	http.ResponseWriter

	written  bool
	hijacked bool
	status   int
	length   int
}

func (rec *recorder) WriteHeader(code int) {
	if !rec.written {
		rec.written = true
		rec.status = code
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *recorder) Write(p []byte) (int, error) {
	if !rec.written {
		rec.written = true
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(p)
	rec.length += n
	return n, err
}

func (rec *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("%T cannot be hijacked", rec.ResponseWriter)
	}
	rec.hijacked = true
	return hj.Hijack()
}

func (rec *recorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rec *recorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// Log logs every request with its status, size and duration, and turns
// panics into a 500.
func Log(clog *cmdlog.Logger, next http.Handler) http.Handler {
	p := message.NewPrinter(language.English)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &recorder{ResponseWriter: w}
		start := time.Now()
		defer func() {
			if v := recover(); v != nil {
				clog.Error.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL, v, debug.Stack())
				if !rec.written && !rec.hijacked {
					JSON(clog, rec, http.StatusInternalServerError, map[string]interface{}{
						"error": http.StatusText(http.StatusInternalServerError),
					})
				}
			}
		}()

		next.ServeHTTP(rec, r)
		dur := time.Since(start)

		switch {
		case rec.hijacked:
			clog.Success.Printf("%s %s %v: hijacked", r.Method, r.URL, dur)
			return
		case !rec.written:
			clog.Warn.Printf("%s %s %v: no response written", r.Method, r.URL, dur)
			return
		}
		statusLog(clog, rec.status).Printf("%s %s %d %sB %v", r.Method, r.URL, rec.status, p.Sprint(rec.length), dur)
	})
}

func statusLog(clog *cmdlog.Logger, code int) *log.Logger {
	switch {
	case code < 300:
		return clog.Success
	case code < 400:
		return clog.Info
	case code < 500:
		return clog.Warn
	default:
		return clog.Error
	}
}
