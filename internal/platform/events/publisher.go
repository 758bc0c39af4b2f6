// Package events provides a fire-and-forget NATS publisher for forum
// activity events. Event delivery is best-effort derived data: failures are
// logged and dropped, never surfaced to the request that produced them.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Subject constants for every forum event type.
const (
	SubjectReplyPublished = "forum.reply.published"
	SubjectThreadViewed   = "forum.thread.viewed"
)

// ReplyPublished is the payload sent on SubjectReplyPublished. The counter
// worker uses it to reconcile the catalog's denormalized reply counter with
// the ledger's own count.
type ReplyPublished struct {
	ThreadID   string `json:"thread_id"`
	RootItemID string `json:"root_item_id"`
	ReplyID    string `json:"reply_id"`
	AuthorID   string `json:"author_id,omitempty"`
}

// Event is the canonical envelope sent to all forum.* subjects.
type Event struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Publisher publishes forum events to NATS JetStream.
// The zero value and a nil pointer are both safe no-op stubs.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New creates a Publisher using an existing JetStream context.
// Pass js=nil to get a no-op stub (useful in tests and deployments
// without NATS).
func New(js nats.JetStreamContext, log *zap.Logger) *Publisher {
	return &Publisher{js: js, log: log}
}

// Publish sends an event asynchronously (fire-and-forget).
// Failures are logged as warnings and never surface to the caller.
// Safe to call with a nil receiver.
func (p *Publisher) Publish(subject, eventName string, payload any) {
	if p == nil || p.js == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("events: marshal payload failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	ev := Event{
		EventID:    uuid.NewString(),
		EventName:  eventName,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("events: marshal envelope failed", zap.String("event", eventName), zap.Error(err))
		return
	}
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
