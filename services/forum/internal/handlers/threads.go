package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/services/forum/internal/threads"
)

// ListThreads handles GET /v1/communities/{community_id}/threads.
//
// Query params: limit, offset, cursor, show_all, category, tag, all.
// show_all switches to ledger-direct mode; category/tag filters only apply
// in catalog-indexed mode and are rejected when combined with show_all.
func ListThreads(svc *threads.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		communityID := strings.TrimSpace(chi.URLParam(r, "community_id"))
		if communityID == "" {
			api.BadRequest(w, "MISSING_ID", "community_id is required", rid, nil)
			return
		}

		q := r.URL.Query()
		opts := threads.ListOptions{
			Limit:        parseInt(q.Get("limit"), threads.DefaultPageSize, 1, 100),
			Offset:       parseInt(q.Get("offset"), 0, 0, 1_000_000),
			Cursor:       strings.TrimSpace(q.Get("cursor")),
			ShowAll:      parseBool(q.Get("show_all")),
			VisibleOnly:  !parseBool(q.Get("all")),
			CategorySlug: strings.TrimSpace(q.Get("category")),
			TagSlug:      strings.TrimSpace(q.Get("tag")),
		}
		if opts.ShowAll && (opts.CategorySlug != "" || opts.TagSlug != "") {
			api.BadRequest(w, "INVALID_FILTERS", "category/tag filters require catalog-indexed mode", rid, nil)
			return
		}

		page := svc.Page(r.Context(), communityID, opts)
		if !page.Success {
			api.Upstream(w, "UPSTREAM_UNAVAILABLE", page.Error, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, page)
	}
}

// GetThread handles GET /v1/threads/{thread_id}; thread_id may be a catalog
// id, a slug, or an external-prefixed ledger item id.
func GetThread(svc *threads.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		threadID := strings.TrimSpace(chi.URLParam(r, "thread_id"))
		if threadID == "" {
			api.BadRequest(w, "MISSING_ID", "thread_id is required", rid, nil)
			return
		}

		th, err := svc.Thread(r.Context(), threadID)
		if err != nil {
			if errors.Is(err, threads.ErrThreadNotFound) {
				api.NotFound(w, "NOT_FOUND", "thread not found", rid)
				return
			}
			api.Upstream(w, "UPSTREAM_UNAVAILABLE", "thread lookup failed", rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, th)
	}
}
