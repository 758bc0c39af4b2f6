package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/events"
	"github.com/example/forum-platform/services/forum/internal/catalog"
	"github.com/example/forum-platform/services/forum/internal/ledger"
)

const countersDurable = "forum_counters"

// CountersConsumer reconciles per-thread reply counters from reply-published
// events. Instead of incrementing (the publish pipeline already did a
// best-effort bump), it re-reads the root item's own comment count from the
// ledger and sets the counter to that value, so replays are harmless.
type CountersConsumer struct {
	Store  catalog.Store
	Ledger ledger.API
	Log    *zap.Logger
}

// Start pull-subscribes to reply-published events and processes them in
// batches until ctx is cancelled. Runs in its own goroutine.
func (c *CountersConsumer) Start(ctx context.Context, js nats.JetStreamContext) error {
	sub, err := js.PullSubscribe(events.SubjectReplyPublished, countersDurable)
	if err != nil {
		return err
	}

	batchSize := envInt("WORKER_BATCH_SIZE", 50)
	maxWait := time.Duration(envInt("WORKER_BATCH_INTERVAL_MS", 2000)) * time.Millisecond

	go func() {
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				c.Log.Warn("counters: unsubscribe", zap.Error(err))
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msgs, err := sub.Fetch(batchSize, nats.MaxWait(maxWait))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.Canceled) {
					continue
				}
				c.Log.Warn("counters: fetch", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, m := range msgs {
				if err := c.handle(ctx, m.Data); err != nil {
					c.Log.Warn("counters: handle", zap.Error(err))
					if err := m.Nak(); err != nil {
						c.Log.Warn("counters: nak", zap.Error(err))
					}
					continue
				}
				if err := m.Ack(); err != nil {
					c.Log.Warn("counters: ack", zap.Error(err))
				}
			}
		}
	}()
	return nil
}

func (c *CountersConsumer) handle(ctx context.Context, data []byte) error {
	var ev events.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	var payload events.ReplyPublished
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return err
	}
	if payload.ThreadID == "" || payload.RootItemID == "" {
		// External thread or malformed event, nothing to reconcile.
		return nil
	}

	item, err := c.Ledger.FetchItem(ctx, payload.RootItemID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil
		}
		return err
	}

	err = c.Store.SetReplyCounter(ctx, payload.ThreadID, item.CommentCount)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil
	}
	return err
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
