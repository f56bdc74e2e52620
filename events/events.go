package events

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrInvalidTopic = errors.New("invalid topic")

type Action string

const (
	Created   Action = "created"
	Updated   Action = "updated"
	Deleted   Action = "deleted"
	Reordered Action = "reordered"
	Imported  Action = "imported"
	Synced    Action = "synced"
)

// ContentChanged is emitted after every mutation of site content or of the
// translation store.
type ContentChanged struct {
	Section   string    `json:"section"`
	Action    Action    `json:"action"`
	ItemID    string    `json:"item_id,omitempty"`
	Origin    string    `json:"origin,omitempty"`
	OccuredAt time.Time `json:"occured_at"`
}

func NewContentChanged(section string, action Action, itemID string) *ContentChanged {
	return &ContentChanged{
		Section:   section,
		Action:    action,
		ItemID:    itemID,
		OccuredAt: time.Now(),
	}
}

func (e *ContentChanged) Topic() string {
	return "content." + e.Section + "." + string(e.Action)
}

// TranslationsOnly reports whether the change touched the translation store
// alone, so it never needs a new sync.
func (e *ContentChanged) TranslationsOnly() bool {
	return e.Section == "translations"
}

// ParseTopic splits "content.<section>.<action>".
func ParseTopic(topic string) (string, Action, error) {
	ss := strings.Split(topic, ".")
	if len(ss) != 3 || ss[0] != "content" {
		return "", "", ErrInvalidTopic
	}

	return ss[1], Action(ss[2]), nil
}

type Handler func(ctx context.Context, e *ContentChanged) error

type Publisher interface {
	Publish(e *ContentChanged) error
}

type Bus interface {
	Publisher
	Subscribe(handler Handler) error

	// QueueSubscribe delivers each event to one member of the queue group.
	QueueSubscribe(queue string, handler Handler) error

	Close() error
}
