package ledger

import (
	"time"

	"github.com/example/forum-platform/services/forum/internal/domain"
)

// Item is the wire representation of a ledger content unit.
type Item struct {
	ID      string `json:"id"`
	Author  struct {
		Address  string `json:"address"`
		Username string `json:"username"`
		Picture  string `json:"picture,omitempty"`
	} `json:"author"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	ParentID string   `json:"parent_id,omitempty"`
	FeedRef  string   `json:"feed_ref,omitempty"`
	App      struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"app"`
	Stats struct {
		Comments int `json:"comments"`
	} `json:"stats"`
	Timestamp time.Time `json:"timestamp"`
}

type itemResponse struct {
	Item Item `json:"item"`
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

type batchResponse struct {
	Items []Item `json:"items"`
}

type feedResponse struct {
	Items      []Item `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
	PrevCursor string `json:"prev_cursor,omitempty"`
}

type publishRequest struct {
	RootItemID string `json:"root_item_id"`
	FeedRef    string `json:"feed_ref"`
	PayloadURI string `json:"payload_uri"`
}

// FeedPage carries one page of feed items converted to domain entities.
type FeedPage struct {
	Items      []domain.LedgerItem
	NextCursor string
	PrevCursor string
}

// ToDomain converts a wire item into the engine's entity.
func (it Item) ToDomain() domain.LedgerItem {
	return domain.LedgerItem{
		ID: it.ID,
		Author: domain.Author{
			Address:  it.Author.Address,
			Username: it.Author.Username,
			Picture:  it.Author.Picture,
		},
		Content:      it.Content,
		Tags:         it.Tags,
		ParentID:     it.ParentID,
		FeedRef:      it.FeedRef,
		AppID:        it.App.ID,
		AppName:      it.App.Name,
		CommentCount: it.Stats.Comments,
		CreatedAt:    it.Timestamp,
	}
}

func toDomainItems(items []Item) []domain.LedgerItem {
	out := make([]domain.LedgerItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.ToDomain())
	}
	return out
}
