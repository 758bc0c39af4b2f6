package worker

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/events"
	"github.com/example/forum-platform/services/forum/internal/catalog"
	"github.com/example/forum-platform/services/forum/internal/domain"
	"github.com/example/forum-platform/services/forum/internal/ledger"
)

type countLedger struct {
	ledger.API
	counts map[string]int
}

func (l *countLedger) FetchItem(_ context.Context, id string) (domain.LedgerItem, error) {
	n, ok := l.counts[id]
	if !ok {
		return domain.LedgerItem{}, ledger.ErrNotFound
	}
	return domain.LedgerItem{ID: id, CommentCount: n}, nil
}

func envelope(t *testing.T, payload events.ReplyPublished) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(events.Event{
		EventID:   "ev-1",
		EventName: "reply.published",
		Payload:   raw,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return data
}

func TestHandleReconcilesCounterFromLedger(t *testing.T) {
	store := catalog.NewInMemoryStore()
	rec := store.PutThread(domain.ThreadRecord{
		CommunityID: "c1", RootItemID: "root-1", Visible: true, RepliesCount: 2,
	})
	c := &CountersConsumer{
		Store:  store,
		Ledger: &countLedger{counts: map[string]int{"root-1": 7}},
		Log:    zap.NewNop(),
	}

	data := envelope(t, events.ReplyPublished{ThreadID: rec.ID, RootItemID: "root-1", ReplyID: "r1"})
	if err := c.handle(context.Background(), data); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got, err := store.GetThread(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetThread: %v", err)
	}
	if got.RepliesCount != 7 {
		t.Fatalf("expected counter set to 7, got %d", got.RepliesCount)
	}
}

func TestHandleSkipsExternalAndMissing(t *testing.T) {
	store := catalog.NewInMemoryStore()
	c := &CountersConsumer{
		Store:  store,
		Ledger: &countLedger{counts: map[string]int{}},
		Log:    zap.NewNop(),
	}

	// No thread id means the reply targeted an external thread.
	if err := c.handle(context.Background(), envelope(t, events.ReplyPublished{RootItemID: "root-x"})); err != nil {
		t.Fatalf("external thread must be skipped: %v", err)
	}
	// Root item gone from the ledger.
	if err := c.handle(context.Background(), envelope(t, events.ReplyPublished{ThreadID: "t1", RootItemID: "gone"})); err != nil {
		t.Fatalf("missing root item must be skipped: %v", err)
	}
	// Thread row deleted since the event was queued.
	c.Ledger = &countLedger{counts: map[string]int{"root-y": 3}}
	if err := c.handle(context.Background(), envelope(t, events.ReplyPublished{ThreadID: "t-gone", RootItemID: "root-y"})); err != nil {
		t.Fatalf("missing catalog row must be skipped: %v", err)
	}
}

func TestHandleRejectsMalformedEnvelope(t *testing.T) {
	c := &CountersConsumer{Store: catalog.NewInMemoryStore(), Ledger: &countLedger{}, Log: zap.NewNop()}
	if err := c.handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected error for malformed envelope")
	}
}
