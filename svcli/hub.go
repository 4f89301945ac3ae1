package svcli

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"oss.terrastruct.com/cmdlog"

	"github.com/structview/structview/lib/xhttp"
)

// compileResult is the message preview pages receive after every render.
type compileResult struct {
	SVG string `json:"svg"`
	Err string `json:"err"`
}

// previewHub fans the latest compileResult out to every connected preview
// page. A client that falls behind only ever receives the newest result.
type previewHub struct {
	log *cmdlog.Logger

	mu      sync.Mutex
	closed  bool
	latest  *compileResult
	clients map[*previewClient]struct{}
	conns   sync.WaitGroup
}

type previewClient struct {
	conn  *websocket.Conn
	dirty chan struct{}
}

func newPreviewHub(log *cmdlog.Logger) *previewHub {
	return &previewHub{
		log:     log,
		clients: make(map[*previewClient]struct{}),
	}
}

func (h *previewHub) publish(res *compileResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = res

	n := len(h.clients)
	if n == 1 {
		h.log.Info.Print("broadcasting update to 1 client")
	} else {
		h.log.Info.Printf("broadcasting update to %d clients", n)
	}
	for cl := range h.clients {
		select {
		case cl.dirty <- struct{}{}:
		default:
		}
	}
}

func (h *previewHub) current() *compileResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

// shutdown refuses new clients and waits for connected ones to hang up.
// Connections end when the ctx given to handler is canceled.
func (h *previewHub) shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.conns.Wait()
}

// handler upgrades requests to websockets that live until ctx is done.
func (h *previewHub) handler(ctx context.Context) xhttp.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			return xhttp.Errorf(http.StatusServiceUnavailable, "server shutting down...", "server shutting down...")
		}
		h.conns.Add(1)
		h.mu.Unlock()

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			CompressionMode: websocket.CompressionDisabled,
		})
		if err != nil {
			h.conns.Done()
			return err
		}

		cl := &previewClient{
			conn:  c,
			dirty: make(chan struct{}, 1),
		}
		go func() {
			defer h.conns.Done()
			defer c.Close(websocket.StatusInternalError, "preview connection closed")

			h.mu.Lock()
			h.clients[cl] = struct{}{}
			h.mu.Unlock()
			defer func() {
				h.mu.Lock()
				delete(h.clients, cl)
				h.mu.Unlock()
			}()

			ctx, cancel := context.WithTimeout(ctx, time.Hour)
			defer cancel()
			ctx = c.CloseRead(ctx)
			go ping(ctx, c)
			_ = h.pump(ctx, cl)
		}()
		return nil
	}
}

// pump sends the latest result to cl now and again whenever it changes.
func (h *previewHub) pump(ctx context.Context, cl *previewClient) error {
	for {
		if res := h.current(); res != nil {
			wctx, cancel := context.WithTimeout(ctx, time.Second*30)
			err := wsjson.Write(wctx, cl.conn, res)
			cancel()
			if err != nil {
				return err
			}
		}

		select {
		case <-cl.dirty:
		case <-ctx.Done():
			cl.conn.Close(websocket.StatusGoingAway, "server shutting down...")
			return ctx.Err()
		}
	}
}

// ping keeps idle connections from being dropped by proxies.
func ping(ctx context.Context, c *websocket.Conn) {
	t := time.NewTicker(time.Second * 30)
	defer t.Stop()
	for {
		if err := c.Ping(ctx); err != nil {
			return
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
