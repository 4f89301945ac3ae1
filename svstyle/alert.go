package svstyle

import (
	"context"
	"sync"

	"github.com/structview/structview/lib/log"
)

// Alerter surfaces a message to the user.
type Alerter interface {
	Alert(ctx context.Context, msg string)
}

// LogAlerter writes alerts as warnings.
type LogAlerter struct{}

func (LogAlerter) Alert(ctx context.Context, msg string) {
	log.Warn(ctx, msg)
}

// RecordingAlerter keeps every alert, for hosts that show them later.
type RecordingAlerter struct {
	mu   sync.Mutex
	msgs []string
}

func (a *RecordingAlerter) Alert(ctx context.Context, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msgs = append(a.msgs, msg)
}

func (a *RecordingAlerter) Messages() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.msgs...)
}
