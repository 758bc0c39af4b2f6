// Package replies implements the reply publication pipeline: compose,
// publish to the ledger, then update the catalog's denormalized counter as
// a detached best-effort side effect.
package replies

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/events"
	"github.com/example/forum-platform/services/forum/internal/catalog"
	"github.com/example/forum-platform/services/forum/internal/domain"
	"github.com/example/forum-platform/services/forum/internal/ledger"
	"github.com/example/forum-platform/services/forum/internal/payload"
)

// ErrNoSession reports a publish attempt without an authenticated author.
// Returned before any write is attempted.
var ErrNoSession = errors.New("replies: missing authenticated session")

// counterTimeout bounds the detached counter update so it cannot leak a
// goroutine when the catalog hangs.
const counterTimeout = 10 * time.Second

type Service struct {
	Catalog catalog.Store
	Ledger  ledger.API
	Encoder payload.Encoder
	Events  *events.Publisher
	Log     *zap.Logger

	inflight sync.WaitGroup
}

// PublishInput describes one reply to publish. ThreadID may be empty for
// external threads with no catalog record; the counter update is skipped
// then. AuthorAddr comes from the authenticated session.
type PublishInput struct {
	Content         string
	ThreadID        string
	RootItemID      string
	FeedRef         string
	ReplyToItemID   string
	ReplyToUsername string
	AuthorAddr      string
}

// ComposeContent prepends the @mention when replying to someone, unless the
// author already typed it. The mention is what lets readers of rendered
// content recover the relationship.
func ComposeContent(content, replyToUsername string) string {
	if replyToUsername == "" {
		return content
	}
	if strings.HasPrefix(strings.TrimSpace(content), "@"+replyToUsername) {
		return content
	}
	return "@" + replyToUsername + " " + content
}

// BuildReplyTags produces the explicit reply-context markers. The precise
// id-level encoding is preferred on read over the mention heuristic.
func BuildReplyTags(replyToItemID, replyToUsername string) []string {
	var tags []string
	if replyToItemID != "" {
		tags = append(tags, domain.TagReplyTo+replyToItemID)
	}
	if replyToUsername != "" {
		tags = append(tags, domain.TagReplyToUser+replyToUsername)
	}
	return tags
}

// Publish writes one reply to the ledger and returns it as a domain Reply.
// The ledger write is the source of truth: a catalog counter failure after
// a committed write is logged and swallowed, never rolled back and never
// surfaced as a publish failure.
func (s *Service) Publish(ctx context.Context, in PublishInput) (domain.Reply, error) {
	if strings.TrimSpace(in.AuthorAddr) == "" {
		return domain.Reply{}, ErrNoSession
	}
	if strings.TrimSpace(in.RootItemID) == "" {
		return domain.Reply{}, fmt.Errorf("replies: root item id required")
	}

	content := ComposeContent(in.Content, in.ReplyToUsername)
	tags := BuildReplyTags(in.ReplyToItemID, in.ReplyToUsername)

	uri, err := s.Encoder.EncodeTextPayload(ctx, content, tags)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("replies: encode payload: %w", err)
	}

	// The structural parent is always the thread's root item, never the
	// reply being answered: the ledger keeps a flat one-level structure.
	item, err := s.Ledger.PublishComment(ctx, in.RootItemID, in.FeedRef, uri)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("replies: ledger write: %w", err)
	}

	s.afterPublish(in, item)
	return domain.ToReply(item), nil
}

// afterPublish fires the detached side effects: the catalog counter bump
// and the activity event. Neither can fail the publish; the caller's
// context does not cancel them.
func (s *Service) afterPublish(in PublishInput, item domain.LedgerItem) {
	s.Events.Publish(events.SubjectReplyPublished, "reply.published", events.ReplyPublished{
		ThreadID:   in.ThreadID,
		RootItemID: in.RootItemID,
		ReplyID:    item.ID,
		AuthorID:   in.AuthorAddr,
	})

	if in.ThreadID == "" {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		if err := s.Catalog.IncrementReplyCounter(ctx, in.ThreadID); err != nil {
			s.Log.Warn("replies: counter increment failed",
				zap.String("thread", in.ThreadID), zap.Error(err))
		}
	}()
}

// Drain waits for detached counter updates to finish. Called on shutdown
// and by tests.
func (s *Service) Drain() {
	s.inflight.Wait()
}
