package pubsub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/flarexio/cms/events"
)

// Subject matches every content change topic.
const Subject = "content.>"

// NATSBus carries content change events between cms instances.
type NATSBus struct {
	nc     *nats.Conn
	origin string
	subs   []*nats.Subscription
	sync.Mutex
}

func NewNATSBus(url string, name string, creds string) (*NATSBus, error) {
	opts := []nats.Option{
		nats.Name(name),
	}

	if creds != "" {
		opts = append(opts, nats.UserCredentials(creds))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	return &NATSBus{
		nc:     nc,
		origin: name,
		subs:   make([]*nats.Subscription, 0),
	}, nil
}

func (bus *NATSBus) Conn() *nats.Conn {
	return bus.nc
}

func (bus *NATSBus) Publish(e *events.ContentChanged) error {
	if e.Origin == "" {
		e.Origin = bus.origin
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return bus.nc.Publish(e.Topic(), data)
}

func (bus *NATSBus) Subscribe(handler events.Handler) error {
	sub, err := bus.nc.Subscribe(Subject, bus.dispatch(handler))
	if err != nil {
		return err
	}

	bus.track(sub)
	return nil
}

func (bus *NATSBus) QueueSubscribe(queue string, handler events.Handler) error {
	sub, err := bus.nc.QueueSubscribe(Subject, queue, bus.dispatch(handler))
	if err != nil {
		return err
	}

	bus.track(sub)
	return nil
}

func (bus *NATSBus) track(sub *nats.Subscription) {
	bus.Lock()
	bus.subs = append(bus.subs, sub)
	bus.Unlock()
}

func (bus *NATSBus) dispatch(handler events.Handler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		log := zap.L().With(
			zap.String("bus", "nats"),
			zap.String("topic", msg.Subject),
		)

		e, err := Decode(msg.Subject, msg.Data)
		if err != nil {
			log.Warn(err.Error())
			return
		}

		if err := handler(context.Background(), e); err != nil {
			log.Warn(err.Error())
		}
	}
}

func (bus *NATSBus) Close() error {
	bus.Lock()
	for _, sub := range bus.subs {
		sub.Unsubscribe()
	}
	bus.subs = nil
	bus.Unlock()

	return bus.nc.Drain()
}

// Decode reads an event and checks it against the topic it arrived on.
func Decode(topic string, data []byte) (*events.ContentChanged, error) {
	section, action, err := events.ParseTopic(topic)
	if err != nil {
		return nil, err
	}

	var e *events.ContentChanged
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}

	if e == nil {
		e = new(events.ContentChanged)
	}

	if e.Section == "" {
		e.Section = section
	}

	if e.Action == "" {
		e.Action = action
	}

	if e.Section != section || e.Action != action {
		return nil, events.ErrInvalidTopic
	}

	return e, nil
}
