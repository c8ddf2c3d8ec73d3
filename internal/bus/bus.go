// package bus consumes the cross-surface event stream the daemon publishes.
// Queue updates and drop payloads arrive as JSON frames on one connection
// and fan out to local subscribers in arrival order.
package bus

import (
	"encoding/json"

	"github.com/desertthunder/grabbit/internal/models"
)

const (
	TopicQueueUpdate = "queue-update"
	TopicDrop        = "drop"
)

// frame is the wire format: a topic name and an opaque payload.
type frame struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Bus delivers daemon events to local subscribers. Handlers for one topic
// run in the order frames arrived; handlers must not block.
type Bus interface {
	// SubscribeQueue registers fn for queue snapshot frames.
	SubscribeQueue(fn func(models.QueueSnapshot)) *Subscription

	// SubscribeDrops registers fn for drop payload frames.
	SubscribeDrops(fn func(string)) *Subscription

	// Close tears down the connection and stops all delivery.
	Close() error
}

// Subscription is a handle on one registration.
type Subscription struct {
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	s.cancel()
}
