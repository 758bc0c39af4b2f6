package ledger

import (
	"context"

	"github.com/example/forum-platform/services/forum/internal/domain"
)

// API is the port for the external content ledger. Items are immutable once
// fetched; batch fetch returns only the items that exist.
type API interface {
	FetchItem(ctx context.Context, id string) (domain.LedgerItem, error)
	FetchItemsBatch(ctx context.Context, ids []string) ([]domain.LedgerItem, error)
	FetchFeedItems(ctx context.Context, feedRef, cursor string, pageSize int) (FeedPage, error)
	FetchComments(ctx context.Context, rootItemID, cursor string, pageSize int) (FeedPage, error)
	PublishComment(ctx context.Context, rootItemID, feedRef, payloadURI string) (domain.LedgerItem, error)
}
