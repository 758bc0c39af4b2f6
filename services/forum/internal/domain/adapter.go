package domain

import (
	"strings"
)

// ExternalThreadPrefix namespaces ids of threads synthesized from ledger
// items the catalog has no record of, so they can never collide with a
// catalog-backed id.
const ExternalThreadPrefix = "external-"

// DefaultAppName labels foreign-origin content whose publishing app did not
// record a name.
const DefaultAppName = "Other app"

const (
	maxTitleRunes   = 120
	maxSummaryRunes = 280
)

// TitleAndSummary derives a display title and summary from raw item
// content: the first non-empty line truncated to a title, the remainder
// truncated to a summary.
func TitleAndSummary(content string) (title, summary string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ""
	}
	line, rest, _ := strings.Cut(content, "\n")
	title = truncateRunes(strings.TrimSpace(line), maxTitleRunes)
	summary = truncateRunes(strings.TrimSpace(rest), maxSummaryRunes)
	return title, summary
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ToThread merges a catalog record with its resolved ledger root item.
// Identity, visibility, slug, timestamps and classification come from the
// catalog; author, content and reply count come from the ledger. Title and
// summary are derived from the item content, falling back to the catalog's
// own fields for content-less items.
func ToThread(rec ThreadRecord, item LedgerItem) Thread {
	title, summary := TitleAndSummary(item.Content)
	if title == "" {
		title = rec.Title
	}
	if summary == "" {
		summary = rec.Summary
	}
	return Thread{
		ID:           rec.ID,
		CommunityID:  rec.CommunityID,
		Author:       item.Author,
		RootItem:     item,
		RepliesCount: item.CommentCount,
		Visible:      rec.Visible,
		Title:        title,
		Summary:      summary,
		Slug:         rec.Slug,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		Classification: Classification{
			RootItemID: rec.RootItemID,
			Category:   rec.Category,
			Tags:       tagsOrEmpty(rec.Tags),
		},
	}
}

// ToExternalThread synthesizes a thread for a ledger root item the catalog
// does not know about (cross-posted from another app). ownAppID is this
// system's originating-application identifier; items from other apps carry
// their app name.
func ToExternalThread(item LedgerItem, ownAppID string) Thread {
	title, summary := TitleAndSummary(item.Content)
	t := Thread{
		ID:             ExternalThreadPrefix + item.ID,
		CommunityID:    item.FeedRef,
		Author:         item.Author,
		RootItem:       item,
		RepliesCount:   item.CommentCount,
		Visible:        true,
		Title:          title,
		Summary:        summary,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.CreatedAt,
		Classification: Classification{Tags: []Tag{}},
	}
	if item.AppID != "" && item.AppID != ownAppID {
		t.App = item.AppName
		if t.App == "" {
			t.App = DefaultAppName
		}
	}
	return t
}

// ToCatalogThread builds a display-only thread from catalog fields alone,
// for records whose ledger root item could not be resolved. The root item
// is a placeholder with zeroed statistics; the thread-level counter falls
// back to the catalog's denormalized value.
func ToCatalogThread(rec ThreadRecord) Thread {
	return Thread{
		ID:          rec.ID,
		CommunityID: rec.CommunityID,
		Author:      Author{Address: rec.AuthorAddr, Username: "unknown"},
		RootItem: LedgerItem{
			ID:      rec.RootItemID,
			Content: rec.Summary,
		},
		RepliesCount: rec.RepliesCount,
		Visible:      rec.Visible,
		Title:        rec.Title,
		Summary:      rec.Summary,
		Slug:         rec.Slug,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		Classification: Classification{
			RootItemID: rec.RootItemID,
			Category:   rec.Category,
			Tags:       tagsOrEmpty(rec.Tags),
		},
		DisplayOnly: true,
	}
}

// ToReply wraps a ledger comment with its inferred reply context.
func ToReply(item LedgerItem) Reply {
	return Reply{
		ID:      item.ID,
		Item:    item,
		Context: ResolveReplyContext(item),
	}
}

func tagsOrEmpty(tags []Tag) []Tag {
	if tags == nil {
		return []Tag{}
	}
	return tags
}
