package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/forum-platform/services/forum/internal/domain"
)

// InMemoryStore is a development and test implementation.
type InMemoryStore struct {
	mu         sync.RWMutex
	threads    map[string]domain.ThreadRecord
	categories map[string]domain.Category
	tags       map[string]domain.Tag
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		threads:    make(map[string]domain.ThreadRecord),
		categories: make(map[string]domain.Category),
		tags:       make(map[string]domain.Tag),
	}
}

// PutThread inserts or replaces a record, generating id and timestamps when
// absent. Returns the stored record.
func (s *InMemoryStore) PutThread(rec domain.ThreadRecord) domain.ThreadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	s.threads[rec.ID] = rec
	return rec
}

func (s *InMemoryStore) PutCategory(c domain.Category) domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.ID] = c
	return c
}

func (s *InMemoryStore) PutTag(t domain.Tag) domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tags[t.ID] = t
	return t
}

func (s *InMemoryStore) QueryThreads(_ context.Context, communityID string, f Filters, p Page) ([]domain.ThreadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 10
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	var recs []domain.ThreadRecord
	for _, rec := range s.threads {
		if rec.CommunityID != communityID {
			continue
		}
		if f.VisibleOnly && !rec.Visible {
			continue
		}
		if f.CategorySlug != "" && (rec.Category == nil || rec.Category.Slug != f.CategorySlug) {
			continue
		}
		if f.TagSlug != "" && !hasTagSlug(rec.Tags, f.TagSlug) {
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID > recs[j].ID
	})

	if p.Offset >= len(recs) {
		return []domain.ThreadRecord{}, nil
	}
	recs = recs[p.Offset:]
	if len(recs) > p.Limit {
		recs = recs[:p.Limit]
	}
	return recs, nil
}

func (s *InMemoryStore) QueryCategories(_ context.Context, communityID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Category
	for _, c := range s.categories {
		if c.CommunityID == communityID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) QueryTags(_ context.Context, communityID string) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Tag
	for _, t := range s.tags {
		if t.CommunityID == communityID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryStore) GetThread(_ context.Context, idOrSlug string) (domain.ThreadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.threads[idOrSlug]; ok {
		return rec, nil
	}
	for _, rec := range s.threads {
		if rec.Slug != "" && strings.EqualFold(rec.Slug, idOrSlug) {
			return rec, nil
		}
	}
	return domain.ThreadRecord{}, ErrNotFound
}

func (s *InMemoryStore) GetThreadByRootItem(_ context.Context, rootItemID string) (domain.ThreadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.threads {
		if rec.RootItemID == rootItemID {
			return rec, nil
		}
	}
	return domain.ThreadRecord{}, ErrNotFound
}

func (s *InMemoryStore) IncrementReplyCounter(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.threads[threadID]
	if !ok {
		return ErrNotFound
	}
	rec.RepliesCount++
	rec.UpdatedAt = time.Now().UTC()
	s.threads[threadID] = rec
	return nil
}

func (s *InMemoryStore) SetReplyCounter(_ context.Context, threadID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.threads[threadID]
	if !ok {
		return ErrNotFound
	}
	if count < 0 {
		count = 0
	}
	rec.RepliesCount = count
	rec.UpdatedAt = time.Now().UTC()
	s.threads[threadID] = rec
	return nil
}

func hasTagSlug(tags []domain.Tag, slug string) bool {
	for _, t := range tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}
