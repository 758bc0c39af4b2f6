package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/forum-platform/services/forum/internal/domain"
)

// PostgresStore is the production Postgres-backed catalog.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const threadColumns = `t.id, t.community_id, t.root_item_id, t.author_address, t.visible,
t.slug, COALESCE(t.title,''), COALESCE(t.summary,''), t.replies_count, t.created_at, t.updated_at`

func (s *PostgresStore) QueryThreads(ctx context.Context, communityID string, f Filters, p Page) ([]domain.ThreadRecord, error) {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 10
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := `SELECT ` + threadColumns + `
FROM community_threads t
WHERE t.community_id = $1`
	args := []any{communityID}

	if f.VisibleOnly {
		q += ` AND t.visible`
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		q += fmt.Sprintf(` AND EXISTS (
  SELECT 1 FROM thread_categories tc
  JOIN categories c ON c.id = tc.category_id
  WHERE tc.thread_id = t.id AND c.slug = $%d)`, len(args))
	}
	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		q += fmt.Sprintf(` AND EXISTS (
  SELECT 1 FROM thread_tags tt
  JOIN tags tg ON tg.id = tt.tag_id
  WHERE tt.thread_id = t.id AND tg.slug = $%d)`, len(args))
	}

	args = append(args, p.Limit, p.Offset)
	q += fmt.Sprintf(` ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	recs, err := s.scanThreads(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if err := s.loadClassifications(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *PostgresStore) QueryCategories(ctx context.Context, communityID string) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, community_id, name, slug, COALESCE(color,''), COALESCE(description,'')
FROM categories WHERE community_id = $1 ORDER BY name`, communityID)
	if err != nil {
		return nil, fmt.Errorf("catalog: query categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.CommunityID, &c.Name, &c.Slug, &c.Color, &c.Description); err != nil {
			return nil, fmt.Errorf("catalog: scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) QueryTags(ctx context.Context, communityID string) ([]domain.Tag, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, community_id, name, slug FROM tags WHERE community_id = $1 ORDER BY name`, communityID)
	if err != nil {
		return nil, fmt.Errorf("catalog: query tags: %w", err)
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.CommunityID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("catalog: scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetThread(ctx context.Context, idOrSlug string) (domain.ThreadRecord, error) {
	return s.getOne(ctx, `SELECT `+threadColumns+`
FROM community_threads t WHERE t.id::text = $1 OR t.slug = $1`, idOrSlug)
}

func (s *PostgresStore) GetThreadByRootItem(ctx context.Context, rootItemID string) (domain.ThreadRecord, error) {
	return s.getOne(ctx, `SELECT `+threadColumns+`
FROM community_threads t WHERE t.root_item_id = $1`, rootItemID)
}

func (s *PostgresStore) IncrementReplyCounter(ctx context.Context, threadID string) error {
	tag, err := s.db.Exec(ctx, `
UPDATE community_threads SET replies_count = replies_count + 1, updated_at = now()
WHERE id::text = $1`, threadID)
	if err != nil {
		return fmt.Errorf("catalog: increment counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetReplyCounter(ctx context.Context, threadID string, count int) error {
	if count < 0 {
		count = 0
	}
	tag, err := s.db.Exec(ctx, `
UPDATE community_threads SET replies_count = $2, updated_at = now()
WHERE id::text = $1`, threadID, count)
	if err != nil {
		return fmt.Errorf("catalog: set counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) getOne(ctx context.Context, q string, arg any) (domain.ThreadRecord, error) {
	var rec domain.ThreadRecord
	err := s.db.QueryRow(ctx, q, arg).Scan(
		&rec.ID, &rec.CommunityID, &rec.RootItemID, &rec.AuthorAddr, &rec.Visible,
		&rec.Slug, &rec.Title, &rec.Summary, &rec.RepliesCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ThreadRecord{}, ErrNotFound
		}
		return domain.ThreadRecord{}, fmt.Errorf("catalog: get thread: %w", err)
	}
	recs := []domain.ThreadRecord{rec}
	if err := s.loadClassifications(ctx, recs); err != nil {
		return domain.ThreadRecord{}, err
	}
	return recs[0], nil
}

func (s *PostgresStore) scanThreads(ctx context.Context, q string, args ...any) ([]domain.ThreadRecord, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query threads: %w", err)
	}
	defer rows.Close()

	var out []domain.ThreadRecord
	for rows.Next() {
		var rec domain.ThreadRecord
		if err := rows.Scan(
			&rec.ID, &rec.CommunityID, &rec.RootItemID, &rec.AuthorAddr, &rec.Visible,
			&rec.Slug, &rec.Title, &rec.Summary, &rec.RepliesCount, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan thread: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// loadClassifications attaches the category and tags for each record in one
// round trip per table.
func (s *PostgresStore) loadClassifications(ctx context.Context, recs []domain.ThreadRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, len(recs))
	byID := make(map[string]*domain.ThreadRecord, len(recs))
	for i := range recs {
		ids[i] = recs[i].ID
		byID[recs[i].ID] = &recs[i]
	}

	rows, err := s.db.Query(ctx, `
SELECT tc.thread_id::text, c.id, c.community_id, c.name, c.slug, COALESCE(c.color,''), COALESCE(c.description,'')
FROM thread_categories tc
JOIN categories c ON c.id = tc.category_id
WHERE tc.thread_id::text = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("catalog: load categories: %w", err)
	}
	for rows.Next() {
		var threadID string
		var c domain.Category
		if err := rows.Scan(&threadID, &c.ID, &c.CommunityID, &c.Name, &c.Slug, &c.Color, &c.Description); err != nil {
			rows.Close()
			return fmt.Errorf("catalog: scan thread category: %w", err)
		}
		if rec := byID[threadID]; rec != nil {
			cat := c
			rec.Category = &cat
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(ctx, `
SELECT tt.thread_id::text, tg.id, tg.community_id, tg.name, tg.slug
FROM thread_tags tt
JOIN tags tg ON tg.id = tt.tag_id
WHERE tt.thread_id::text = ANY($1)
ORDER BY tg.name`, ids)
	if err != nil {
		return fmt.Errorf("catalog: load tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var threadID string
		var t domain.Tag
		if err := rows.Scan(&threadID, &t.ID, &t.CommunityID, &t.Name, &t.Slug); err != nil {
			return fmt.Errorf("catalog: scan thread tag: %w", err)
		}
		if rec := byID[threadID]; rec != nil {
			rec.Tags = append(rec.Tags, t)
		}
	}
	return rows.Err()
}
