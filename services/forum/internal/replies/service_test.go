package replies

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/forum-platform/services/forum/internal/catalog"
	"github.com/example/forum-platform/services/forum/internal/domain"
	"github.com/example/forum-platform/services/forum/internal/ledger"
)

// publishOnlyLedger records the publish call and returns the created item.
type publishOnlyLedger struct {
	lastRoot    string
	lastFeed    string
	lastPayload string
	fail        bool
}

func (p *publishOnlyLedger) FetchItem(context.Context, string) (domain.LedgerItem, error) {
	return domain.LedgerItem{}, ledger.ErrNotFound
}
func (p *publishOnlyLedger) FetchItemsBatch(context.Context, []string) ([]domain.LedgerItem, error) {
	return nil, nil
}
func (p *publishOnlyLedger) FetchFeedItems(context.Context, string, string, int) (ledger.FeedPage, error) {
	return ledger.FeedPage{}, nil
}
func (p *publishOnlyLedger) FetchComments(context.Context, string, string, int) (ledger.FeedPage, error) {
	return ledger.FeedPage{}, nil
}

func (p *publishOnlyLedger) PublishComment(_ context.Context, rootItemID, feedRef, payloadURI string) (domain.LedgerItem, error) {
	if p.fail {
		return domain.LedgerItem{}, errors.New("rejected")
	}
	p.lastRoot, p.lastFeed, p.lastPayload = rootItemID, feedRef, payloadURI
	return domain.LedgerItem{
		ID:        "new-reply",
		Author:    domain.Author{Address: "0xme", Username: "me"},
		Content:   "published",
		ParentID:  rootItemID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// stubEncoder captures the encoded content and tags.
type stubEncoder struct {
	content string
	tags    []string
	fail    bool
}

func (e *stubEncoder) EncodeTextPayload(_ context.Context, content string, tags []string) (string, error) {
	if e.fail {
		return "", errors.New("storage down")
	}
	e.content, e.tags = content, tags
	return "store://payload-1", nil
}

// brokenCounterStore fails only the counter increment.
type brokenCounterStore struct{ *catalog.InMemoryStore }

func (brokenCounterStore) IncrementReplyCounter(context.Context, string) error {
	return errors.New("catalog down")
}

func newPublishService(store catalog.Store, lg *publishOnlyLedger, enc *stubEncoder) *Service {
	return &Service{Catalog: store, Ledger: lg, Encoder: enc, Log: zap.NewNop()}
}

func input() PublishInput {
	return PublishInput{
		Content:         "nice point",
		ThreadID:        "thread-1",
		RootItemID:      "root-1",
		FeedRef:         "feed-1",
		ReplyToItemID:   "item-7",
		ReplyToUsername: "bob",
		AuthorAddr:      "0xme",
	}
}

func TestComposeContent_PrependsMention(t *testing.T) {
	got := ComposeContent("nice point", "bob")
	if got != "@bob nice point" {
		t.Fatalf("expected '@bob nice point', got %q", got)
	}
}

func TestComposeContent_NoDoublePrepend(t *testing.T) {
	got := ComposeContent("@bob nice point", "bob")
	if got != "@bob nice point" {
		t.Fatalf("expected unchanged content, got %q", got)
	}
}

func TestComposeContent_NoTarget(t *testing.T) {
	if got := ComposeContent("hello", ""); got != "hello" {
		t.Fatalf("expected unchanged content, got %q", got)
	}
}

func TestBuildReplyTags(t *testing.T) {
	tags := BuildReplyTags("item-7", "bob")
	if len(tags) != 2 || tags[0] != "replyTo:item-7" || tags[1] != "replyToUser:bob" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if tags := BuildReplyTags("", ""); tags != nil {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestPublish_FullPipeline(t *testing.T) {
	store := catalog.NewInMemoryStore()
	rec := store.PutThread(domain.ThreadRecord{ID: "thread-1", CommunityID: "c1", RootItemID: "root-1", Visible: true})
	lg := &publishOnlyLedger{}
	enc := &stubEncoder{}
	svc := newPublishService(store, lg, enc)

	reply, err := svc.Publish(context.Background(), input())
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	svc.Drain()

	if enc.content != "@bob nice point" {
		t.Fatalf("expected mention prepended in payload, got %q", enc.content)
	}
	if len(enc.tags) != 2 || enc.tags[1] != "replyToUser:bob" {
		t.Fatalf("expected explicit markers, got %v", enc.tags)
	}
	if lg.lastRoot != "root-1" {
		t.Fatalf("structural parent must be the root item, got %q", lg.lastRoot)
	}
	if lg.lastPayload != "store://payload-1" {
		t.Fatalf("expected encoded payload uri, got %q", lg.lastPayload)
	}
	if reply.ID != "new-reply" {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	got, _ := store.GetThread(context.Background(), rec.ID)
	if got.RepliesCount != 1 {
		t.Fatalf("expected counter bumped to 1, got %d", got.RepliesCount)
	}
}

func TestPublish_MissingSession(t *testing.T) {
	svc := newPublishService(catalog.NewInMemoryStore(), &publishOnlyLedger{}, &stubEncoder{})
	in := input()
	in.AuthorAddr = ""

	_, err := svc.Publish(context.Background(), in)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestPublish_EncoderFailureBeforeWrite(t *testing.T) {
	lg := &publishOnlyLedger{}
	svc := newPublishService(catalog.NewInMemoryStore(), lg, &stubEncoder{fail: true})

	_, err := svc.Publish(context.Background(), input())
	if err == nil {
		t.Fatal("expected encode failure")
	}
	if lg.lastRoot != "" {
		t.Fatal("no ledger write may happen after an encode failure")
	}
}

func TestPublish_LedgerWriteFailure(t *testing.T) {
	store := catalog.NewInMemoryStore()
	rec := store.PutThread(domain.ThreadRecord{ID: "thread-1", RootItemID: "root-1"})
	svc := newPublishService(store, &publishOnlyLedger{fail: true}, &stubEncoder{})

	_, err := svc.Publish(context.Background(), input())
	if err == nil {
		t.Fatal("expected ledger write failure")
	}
	svc.Drain()

	got, _ := store.GetThread(context.Background(), rec.ID)
	if got.RepliesCount != 0 {
		t.Fatalf("no counter update may happen after a failed write, got %d", got.RepliesCount)
	}
}

func TestPublish_CounterFailureIsSwallowed(t *testing.T) {
	store := brokenCounterStore{catalog.NewInMemoryStore()}
	svc := newPublishService(store, &publishOnlyLedger{}, &stubEncoder{})

	reply, err := svc.Publish(context.Background(), input())
	if err != nil {
		t.Fatalf("counter failure must not fail the publish: %v", err)
	}
	svc.Drain()
	if reply.ID != "new-reply" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestPublish_ExternalThreadSkipsCounter(t *testing.T) {
	svc := newPublishService(brokenCounterStore{catalog.NewInMemoryStore()}, &publishOnlyLedger{}, &stubEncoder{})
	in := input()
	in.ThreadID = ""

	if _, err := svc.Publish(context.Background(), in); err != nil {
		t.Fatalf("publish: %v", err)
	}
	svc.Drain()
}
