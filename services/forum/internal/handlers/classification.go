package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/services/forum/internal/catalog"
	"github.com/example/forum-platform/services/forum/internal/domain"
)

// ListCategories handles GET /v1/communities/{community_id}/categories.
func ListCategories(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		communityID := strings.TrimSpace(chi.URLParam(r, "community_id"))
		if communityID == "" {
			api.BadRequest(w, "MISSING_ID", "community_id is required", rid, nil)
			return
		}

		categories, err := store.QueryCategories(r.Context(), communityID)
		if err != nil {
			api.Upstream(w, "UPSTREAM_UNAVAILABLE", "category fetch failed", rid)
			return
		}
		if categories == nil {
			categories = []domain.Category{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
	}
}

// ListTags handles GET /v1/communities/{community_id}/tags.
func ListTags(store catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		communityID := strings.TrimSpace(chi.URLParam(r, "community_id"))
		if communityID == "" {
			api.BadRequest(w, "MISSING_ID", "community_id is required", rid, nil)
			return
		}

		tags, err := store.QueryTags(r.Context(), communityID)
		if err != nil {
			api.Upstream(w, "UPSTREAM_UNAVAILABLE", "tag fetch failed", rid)
			return
		}
		if tags == nil {
			tags = []domain.Tag{}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"tags": tags})
	}
}
