package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// NewSimpleBus returns a process-local bus delivering events synchronously.
func NewSimpleBus() Bus {
	return &simpleBus{
		handlers: make([]Handler, 0),
	}
}

type simpleBus struct {
	handlers []Handler
	sync.RWMutex
}

func (bus *simpleBus) Publish(e *ContentChanged) error {
	bus.RLock()
	handlers := append([]Handler(nil), bus.handlers...)
	bus.RUnlock()

	ctx := context.Background()
	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			zap.L().Warn(err.Error(),
				zap.String("bus", "simple"),
				zap.String("topic", e.Topic()),
			)
		}
	}

	return nil
}

func (bus *simpleBus) Subscribe(handler Handler) error {
	bus.Lock()
	bus.handlers = append(bus.handlers, handler)
	bus.Unlock()
	return nil
}

// QueueSubscribe has a single member per process, so it equals Subscribe.
func (bus *simpleBus) QueueSubscribe(queue string, handler Handler) error {
	return bus.Subscribe(handler)
}

func (bus *simpleBus) Close() error {
	bus.Lock()
	bus.handlers = nil
	bus.Unlock()
	return nil
}
