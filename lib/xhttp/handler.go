package xhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"oss.terrastruct.com/cmdlog"
)

// Error carries the status code and the client facing message of a failed
// request. The wrapped Err is only logged.
type Error struct {
	Code int
	Resp interface{}
	Err  error
}

// Errorf returns an Error. A nil resp becomes the status text of code.
func Errorf(code int, resp interface{}, msg string, v ...interface{}) error {
	if resp == nil {
		resp = http.StatusText(code)
	}
	return Error{Code: code, Resp: resp, Err: fmt.Errorf(msg, v...)}
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Error() string {
	return fmt.Sprintf("http %d (%v): %v", e.Code, e.Resp, e.Err)
}

// HandlerFunc is an http.HandlerFunc that may fail.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// HandlerFuncAdapter serves Func and reports its error. Client errors are
// logged as warnings and everything else as errors with a 500.
type HandlerFuncAdapter struct {
	Log  *cmdlog.Logger
	Func HandlerFunc
}

func (a HandlerFuncAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := a.Func(w, r)
	if err == nil {
		return
	}

	var herr Error
	if !errors.As(err, &herr) || herr.Code < 400 || herr.Code > 599 {
		herr = Error{Code: http.StatusInternalServerError, Resp: http.StatusText(http.StatusInternalServerError), Err: err}
	}
	if herr.Code < 500 {
		a.Log.Warn.Printf("%s %s: %v", r.Method, r.URL, err)
	} else {
		a.Log.Error.Printf("%s %s: %v", r.Method, r.URL, err)
	}

	if rec, ok := w.(*recorder); ok && rec.written {
		// Too late for an error response.
		return
	}
	JSON(a.Log, w, herr.Code, map[string]interface{}{
		"error": herr.Resp,
	})
}

// JSON writes v with code. A nil v writes the status text.
func JSON(clog *cmdlog.Logger, w http.ResponseWriter, code int, v interface{}) {
	if v == nil {
		v = map[string]interface{}{
			"status": http.StatusText(code),
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		clog.Error.Printf("failed to marshal response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
