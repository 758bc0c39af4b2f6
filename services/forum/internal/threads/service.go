// Package threads implements the dual-source thread listing: catalog
// records merged with their ledger root items into unified thread views.
package threads

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/example/forum-platform/internal/platform/events"
	"github.com/example/forum-platform/services/forum/internal/catalog"
	"github.com/example/forum-platform/services/forum/internal/domain"
	"github.com/example/forum-platform/services/forum/internal/ledger"
)

// DefaultPageSize is the thread listing page size.
const DefaultPageSize = 10

// maxReplyPages bounds how many ledger pages a single reply listing will
// walk. 20 pages of 50 covers any realistic thread.
const (
	maxReplyPages  = 20
	replyFetchPage = 50
)

// ErrThreadNotFound reports an unknown thread id or slug.
var ErrThreadNotFound = errors.New("threads: not found")

type Service struct {
	Catalog catalog.Store
	Ledger  ledger.API
	Events  *events.Publisher
	// AppID is this system's originating-application identifier; ledger
	// items published by other apps are marked as foreign-origin.
	AppID string
	Log   *zap.Logger
}

// ListOptions selects one of two mutually exclusive listing modes.
// ShowAll switches to ledger-direct mode (cursor pagination, cross-origin
// content, no category/tag filters); otherwise the catalog-indexed mode is
// used (offset pagination, filters supported).
type ListOptions struct {
	Limit        int
	Offset       int
	Cursor       string
	ShowAll      bool
	VisibleOnly  bool
	CategorySlug string
	TagSlug      string
}

// Result is a thread listing outcome. Success=false means the backing
// store was unreachable and the whole call is retryable; individual bad
// items never fail the page, they are dropped and counted.
type Result struct {
	Success    bool            `json:"success"`
	Threads    []domain.Thread `json:"threads"`
	NextCursor string          `json:"next_cursor,omitempty"`
	PrevCursor string          `json:"prev_cursor,omitempty"`
	Dropped    int             `json:"-"`
	Error      string          `json:"error,omitempty"`
}

// CommunityPage bundles a thread listing with the community's
// classification reference data.
type CommunityPage struct {
	Result
	Categories []domain.Category `json:"categories"`
	Tags       []domain.Tag      `json:"tags"`
}

func failed(err error) Result {
	return Result{Success: false, Threads: []domain.Thread{}, Error: err.Error()}
}

// List returns one page of threads for a community. The community id is
// also the community's ledger feed reference.
func (s *Service) List(ctx context.Context, communityID string, opts ListOptions) Result {
	if opts.Limit <= 0 {
		opts.Limit = DefaultPageSize
	}
	if opts.ShowAll {
		return s.listLedgerDirect(ctx, communityID, opts)
	}
	return s.listCatalogIndexed(ctx, communityID, opts)
}

// listCatalogIndexed queries the catalog first, then batch-resolves the
// referenced ledger root items in a single round trip.
func (s *Service) listCatalogIndexed(ctx context.Context, communityID string, opts ListOptions) Result {
	recs, err := s.Catalog.QueryThreads(ctx, communityID, catalog.Filters{
		CategorySlug: opts.CategorySlug,
		TagSlug:      opts.TagSlug,
		VisibleOnly:  opts.VisibleOnly,
	}, catalog.Page{Limit: opts.Limit, Offset: opts.Offset})
	if err != nil {
		s.Log.Error("threads: catalog query failed", zap.String("community", communityID), zap.Error(err))
		return failed(err)
	}

	rootIDs := make([]string, 0, len(recs))
	for _, rec := range recs {
		if rec.RootItemID != "" {
			rootIDs = append(rootIDs, rec.RootItemID)
		}
	}
	items, err := s.Ledger.FetchItemsBatch(ctx, rootIDs)
	if err != nil {
		s.Log.Error("threads: ledger batch fetch failed", zap.Int("ids", len(rootIDs)), zap.Error(err))
		return failed(err)
	}
	byID := make(map[string]domain.LedgerItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	res := Result{Success: true, Threads: make([]domain.Thread, 0, len(recs))}
	for _, rec := range recs {
		item, ok := byID[rec.RootItemID]
		if !ok || (item.Author.Address == "" && item.Author.Username == "") {
			// Unresolvable or author-less items are unrenderable; drop the
			// pair rather than failing the page.
			s.Log.Warn("threads: dropping thread with missing root item",
				zap.String("thread", rec.ID), zap.String("root_item", rec.RootItemID))
			res.Dropped++
			continue
		}
		res.Threads = append(res.Threads, domain.ToThread(rec, item))
	}
	return res
}

// listLedgerDirect walks the community feed on the ledger and overlays
// catalog records where they exist. Content the catalog has never seen
// shows up as synthesized external threads.
func (s *Service) listLedgerDirect(ctx context.Context, communityID string, opts ListOptions) Result {
	page, err := s.Ledger.FetchFeedItems(ctx, communityID, opts.Cursor, opts.Limit)
	if err != nil {
		s.Log.Error("threads: ledger feed fetch failed", zap.String("feed", communityID), zap.Error(err))
		return failed(err)
	}

	res := Result{
		Success:    true,
		Threads:    make([]domain.Thread, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		PrevCursor: page.PrevCursor,
	}
	for _, item := range page.Items {
		rec, err := s.Catalog.GetThreadByRootItem(ctx, item.ID)
		switch {
		case err == nil:
			res.Threads = append(res.Threads, domain.ToThread(rec, item))
		case errors.Is(err, catalog.ErrNotFound):
			res.Threads = append(res.Threads, domain.ToExternalThread(item, s.AppID))
		default:
			// Catalog trouble degrades the item to an external view; the
			// ledger content is still worth showing.
			s.Log.Warn("threads: catalog lookup failed, degrading to external",
				zap.String("item", item.ID), zap.Error(err))
			res.Threads = append(res.Threads, domain.ToExternalThread(item, s.AppID))
		}
	}
	return res
}

// Page assembles a full community page: the thread listing plus category
// and tag reference data, fetched concurrently. Reference-data failures
// degrade to empty lists and never fail the page.
func (s *Service) Page(ctx context.Context, communityID string, opts ListOptions) CommunityPage {
	var (
		wg         sync.WaitGroup
		categories []domain.Category
		tags       []domain.Tag
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		if categories, err = s.Catalog.QueryCategories(ctx, communityID); err != nil {
			s.Log.Warn("threads: categories fetch failed", zap.Error(err))
			categories = nil
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if tags, err = s.Catalog.QueryTags(ctx, communityID); err != nil {
			s.Log.Warn("threads: tags fetch failed", zap.Error(err))
			tags = nil
		}
	}()

	listing := s.List(ctx, communityID, opts)
	wg.Wait()

	if categories == nil {
		categories = []domain.Category{}
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	return CommunityPage{Result: listing, Categories: categories, Tags: tags}
}

// Thread resolves a single thread by catalog id, slug, or external id.
// A catalog record whose ledger item is gone still yields a display-only
// thread built from catalog fields alone.
func (s *Service) Thread(ctx context.Context, idOrSlug string) (domain.Thread, error) {
	if itemID, ok := strings.CutPrefix(idOrSlug, domain.ExternalThreadPrefix); ok {
		item, err := s.Ledger.FetchItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, ledger.ErrNotFound) {
				return domain.Thread{}, ErrThreadNotFound
			}
			return domain.Thread{}, err
		}
		return domain.ToExternalThread(item, s.AppID), nil
	}

	rec, err := s.Catalog.GetThread(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return domain.Thread{}, ErrThreadNotFound
		}
		return domain.Thread{}, err
	}

	item, err := s.Ledger.FetchItem(ctx, rec.RootItemID)
	if err != nil {
		s.Log.Warn("threads: root item unresolvable, serving catalog-only view",
			zap.String("thread", rec.ID), zap.String("root_item", rec.RootItemID), zap.Error(err))
		return domain.ToCatalogThread(rec), nil
	}

	s.Events.Publish(events.SubjectThreadViewed, "thread.viewed", map[string]any{
		"thread_id": rec.ID, "community_id": rec.CommunityID,
	})
	return domain.ToThread(rec, item), nil
}

// Replies returns the full flat reply stream for a root item in
// chronological order, with display parents attached.
func (s *Service) Replies(ctx context.Context, rootItemID string) ([]domain.Reply, error) {
	var items []domain.LedgerItem
	cursor := ""
	for page := 0; page < maxReplyPages; page++ {
		fp, err := s.Ledger.FetchComments(ctx, rootItemID, cursor, replyFetchPage)
		if err != nil {
			return nil, err
		}
		items = append(items, fp.Items...)
		if fp.NextCursor == "" || len(fp.Items) == 0 {
			break
		}
		cursor = fp.NextCursor
	}

	replies := make([]domain.Reply, 0, len(items))
	for _, item := range items {
		// The ledger enforces a flat structure; anything else is not a
		// reply to this thread.
		if item.ParentID != rootItemID {
			continue
		}
		replies = append(replies, domain.ToReply(item))
	}
	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].Item.CreatedAt.Before(replies[j].Item.CreatedAt)
	})
	return domain.AttachDisplayParents(replies), nil
}
