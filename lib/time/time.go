package time

import (
	"context"
	"time"

	"github.com/structview/structview/lib/env"
)

// WithTimeout is context.WithTimeout with timeout replaced by
// $STRUCTVIEW_TIMEOUT seconds when set. A timeout of zero or less means no
// deadline.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if seconds, ok := env.Timeout(); ok {
		timeout = time.Duration(seconds) * time.Second
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
