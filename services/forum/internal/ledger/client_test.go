package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "")
}

func TestFetchItem_OK(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/items/item-1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{
			"id":      "item-1",
			"author":  map[string]any{"address": "0xabc", "username": "alice"},
			"content": "hello",
			"stats":   map[string]any{"comments": 3},
		}})
	})

	item, err := c.FetchItem(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("fetch item: %v", err)
	}
	if item.ID != "item-1" || item.Author.Username != "alice" || item.CommentCount != 3 {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestFetchItem_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchItem(context.Background(), "gone")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchItemsBatch_MissingItemsAbsent(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.IDs) != 3 {
			t.Fatalf("expected 3 ids, got %d", len(req.IDs))
		}
		// Only two of the three requested ids exist.
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []map[string]any{
			{"id": "a", "author": map[string]any{"username": "alice"}},
			{"id": "c", "author": map[string]any{"username": "carol"}},
		}})
	})

	items, err := c.FetchItemsBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestFetchItemsBatch_Empty(t *testing.T) {
	c := New("http://unused", "")
	items, err := c.FetchItemsBatch(context.Background(), nil)
	if err != nil || items != nil {
		t.Fatalf("expected nil/nil for empty ids, got %v/%v", items, err)
	}
}

func TestFetchFeedItems_Cursors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cursor"); got != "cur-1" {
			t.Fatalf("expected cursor 'cur-1', got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Fatalf("expected limit '10', got %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":       []map[string]any{{"id": "a"}},
			"next_cursor": "cur-2",
			"prev_cursor": "cur-0",
		})
	})

	page, err := c.FetchFeedItems(context.Background(), "feed-1", "cur-1", 10)
	if err != nil {
		t.Fatalf("feed: %v", err)
	}
	if page.NextCursor != "cur-2" || page.PrevCursor != "cur-0" {
		t.Fatalf("unexpected cursors: %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "a" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
}

func TestFetchComments_Path(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/items/root-1/comments" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{"id": "c1", "parent_id": "root-1"}},
		})
	})

	page, err := c.FetchComments(context.Background(), "root-1", "", 50)
	if err != nil {
		t.Fatalf("comments: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ParentID != "root-1" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestPublishComment_SendsStructuralParent(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RootItemID string `json:"root_item_id"`
			FeedRef    string `json:"feed_ref"`
			PayloadURI string `json:"payload_uri"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.RootItemID != "root-1" || req.PayloadURI != "store://p1" {
			t.Fatalf("unexpected publish request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"item": map[string]any{
			"id": "new-1", "parent_id": req.RootItemID,
		}})
	})

	item, err := c.PublishComment(context.Background(), "root-1", "feed-1", "store://p1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if item.ParentID != "root-1" {
		t.Fatalf("expected structural parent root-1, got %q", item.ParentID)
	}
}

func TestPublishComment_WriteFailure(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"rejected"}`))
	})

	_, err := c.PublishComment(context.Background(), "root-1", "feed-1", "store://p1")
	if err == nil {
		t.Fatal("expected error for rejected publish")
	}
}
