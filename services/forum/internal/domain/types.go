package domain

import "time"

// Author is the ledger's notion of who wrote an item. Address is the stable
// identity; Username is the display handle readers see and may be namespaced
// ("org/name").
type Author struct {
	Address  string `json:"address"`
	Username string `json:"username"`
	Picture  string `json:"picture,omitempty"`
}

// LedgerItem is an immutable content unit from the external ledger.
// For comments ParentID is always the thread's root item; the ledger
// enforces a flat one-level structure.
type LedgerItem struct {
	ID           string    `json:"id"`
	Author       Author    `json:"author"`
	Content      string    `json:"content"`
	Tags         []string  `json:"tags,omitempty"`
	ParentID     string    `json:"parent_id,omitempty"`
	FeedRef      string    `json:"feed_ref,omitempty"`
	AppID        string    `json:"app_id,omitempty"`
	AppName      string    `json:"app_name,omitempty"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Category is community-scoped reference data. Slug uniqueness within a
// community is enforced by the catalog store.
type Category struct {
	ID          string `json:"id"`
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tag is community-scoped reference data.
type Tag struct {
	ID          string `json:"id"`
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
}

// Classification is a thread's optional category plus its tags.
type Classification struct {
	RootItemID string    `json:"root_item_id,omitempty"`
	Category   *Category `json:"category,omitempty"`
	Tags       []Tag     `json:"tags"`
}

// ThreadRecord is the catalog's mutable row for a thread. It references the
// ledger root item but can outlive it.
type ThreadRecord struct {
	ID           string    `json:"id"`
	CommunityID  string    `json:"community_id"`
	RootItemID   string    `json:"root_item_id"`
	AuthorAddr   string    `json:"author_address"`
	Visible      bool      `json:"visible"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	RepliesCount int       `json:"replies_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Category     *Category `json:"category,omitempty"`
	Tags         []Tag     `json:"tags,omitempty"`
}

// Thread is the unified query-time view over one root ledger item and its
// optional catalog record. Never persisted; rebuilt on every query.
type Thread struct {
	ID             string         `json:"id"`
	CommunityID    string         `json:"community_id"`
	Author         Author         `json:"author"`
	RootItem       LedgerItem     `json:"root_item"`
	RepliesCount   int            `json:"replies_count"`
	Visible        bool           `json:"visible"`
	Title          string         `json:"title"`
	Summary        string         `json:"summary"`
	Slug           string         `json:"slug"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Classification Classification `json:"classification"`
	// App labels foreign-origin content ("external" threads published by
	// another application on the shared ledger).
	App string `json:"app,omitempty"`
	// DisplayOnly marks a thread built from catalog fields alone because
	// the ledger root item could not be resolved. Not interaction-ready.
	DisplayOnly bool `json:"display_only,omitempty"`
}

// ReplyContext is the inferred "replying to" relationship for one reply.
// Either field may be empty; the explicit tag encoding can carry both.
type ReplyContext struct {
	ReplyToItemID   string `json:"reply_to_item_id,omitempty"`
	ReplyToUsername string `json:"reply_to_username,omitempty"`
}

// Reply is a ledger comment on a thread's root item, enriched with its
// inferred context. DisplayParentID is the presentation-only pointer
// computed by LinkReplies; the structural parent is always the root item.
type Reply struct {
	ID              string        `json:"id"`
	Item            LedgerItem    `json:"item"`
	Context         *ReplyContext `json:"context,omitempty"`
	DisplayParentID string        `json:"display_parent_id,omitempty"`
}
