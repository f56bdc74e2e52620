package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Debouncer runs fn once after calls to Trigger have stopped for delay.
type Debouncer struct {
	delay time.Duration
	fn    func()
	timer *time.Timer
	mu    sync.Mutex
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, d.fn)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Debounce wraps handler so that a burst of events results in one call with
// the last event of the burst.
func Debounce(delay time.Duration, handler Handler) (Handler, *Debouncer) {
	var (
		last *ContentChanged
		mu   sync.Mutex
	)

	d := NewDebouncer(delay, func() {
		mu.Lock()
		e := last
		last = nil
		mu.Unlock()

		if e == nil {
			return
		}

		if err := handler(context.Background(), e); err != nil {
			zap.L().Error(err.Error(),
				zap.String("handler", "debounce"),
				zap.String("topic", e.Topic()),
			)
		}
	})

	debounced := func(ctx context.Context, e *ContentChanged) error {
		mu.Lock()
		last = e
		mu.Unlock()

		d.Trigger()
		return nil
	}

	return debounced, d
}
