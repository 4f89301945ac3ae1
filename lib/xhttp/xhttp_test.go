package xhttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	"github.com/structview/structview/lib/xhttp"
)

func testLog(buf *bytes.Buffer) *cmdlog.Logger {
	return cmdlog.New(xos.NewEnv(nil), buf)
}

func TestHandlerFuncAdapter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		err     error
		expCode int
		expResp string
	}{
		{name: "ok"},
		{name: "client", err: xhttp.Errorf(http.StatusNotFound, "no such view", "view %q", "x"), expCode: 404, expResp: "no such view"},
		{name: "default_resp", err: xhttp.Errorf(http.StatusServiceUnavailable, nil, "closing"), expCode: 503, expResp: "Service Unavailable"},
		{name: "plain", err: errors.New("boom"), expCode: 500, expResp: "Internal Server Error"},
		{name: "bad_code", err: xhttp.Errorf(http.StatusOK, "fine", "not really"), expCode: 500, expResp: "Internal Server Error"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			logs := &bytes.Buffer{}
			h := xhttp.HandlerFuncAdapter{
				Log: testLog(logs),
				Func: func(w http.ResponseWriter, r *http.Request) error {
					if tc.err != nil {
						return tc.err
					}
					w.WriteHeader(http.StatusNoContent)
					return nil
				},
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/watch", nil))
			if tc.err == nil {
				assert.Equal(t, http.StatusNoContent, rr.Code)
				assert.Empty(t, logs.String())
				return
			}
			assert.Equal(t, tc.expCode, rr.Code)
			var body map[string]string
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.expResp, body["error"])
			assert.Contains(t, logs.String(), "/watch")
		})
	}
}

func TestLog(t *testing.T) {
	t.Parallel()

	logs := &bytes.Buffer{}
	h := xhttp.Log(testLog(logs), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/panic":
			panic("oops")
		case "/silent":
		default:
			_, _ = w.Write(bytes.Repeat([]byte("x"), 1234))
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, logs.String(), "GET / 200 1,234B")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logs.String(), "oops")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/silent", nil))
	assert.Contains(t, logs.String(), "no response written")
}

func TestServe(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := xhttp.NewServer(nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- xhttp.Serve(ctx, time.Second, s, l)
	}()

	resp, err := http.Get("http://" + l.Addr().String())
	if assert.NoError(t, err) {
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
