package catalog

import (
	"context"
	"errors"

	"github.com/example/forum-platform/services/forum/internal/domain"
)

// ErrNotFound reports a catalog row that does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Filters narrows a thread listing. Empty fields are ignored. Slug filters
// are only meaningful for catalog-indexed listings.
type Filters struct {
	CategorySlug string
	TagSlug      string
	VisibleOnly  bool
}

// Page is offset/limit pagination for catalog-indexed listings.
type Page struct {
	Limit  int
	Offset int
}

// Store defines all catalog persistence operations. The engine never
// assumes the catalog is reachable; every method can fail.
type Store interface {
	// QueryThreads returns thread records for a community in recency order.
	QueryThreads(ctx context.Context, communityID string, f Filters, p Page) ([]domain.ThreadRecord, error)

	// QueryCategories and QueryTags return community-scoped reference data
	// ordered by name.
	QueryCategories(ctx context.Context, communityID string) ([]domain.Category, error)
	QueryTags(ctx context.Context, communityID string) ([]domain.Tag, error)

	// GetThread resolves a thread by catalog id or slug.
	GetThread(ctx context.Context, idOrSlug string) (domain.ThreadRecord, error)

	// GetThreadByRootItem resolves a thread by its ledger root item id.
	GetThreadByRootItem(ctx context.Context, rootItemID string) (domain.ThreadRecord, error)

	// IncrementReplyCounter bumps the denormalized reply counter. Callers
	// treat failures as best-effort: log and drop.
	IncrementReplyCounter(ctx context.Context, threadID string) error

	// SetReplyCounter overwrites the denormalized counter, used by the
	// reconcile worker to converge on the ledger's own count.
	SetReplyCounter(ctx context.Context, threadID string, count int) error
}
