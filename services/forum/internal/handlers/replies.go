package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/forum-platform/internal/platform/api"
	"github.com/example/forum-platform/internal/platform/auth"
	"github.com/example/forum-platform/internal/platform/httpserver"
	"github.com/example/forum-platform/services/forum/internal/domain"
	"github.com/example/forum-platform/services/forum/internal/replies"
	"github.com/example/forum-platform/services/forum/internal/threads"
)

type createReplyReq struct {
	Content         string `json:"content"`
	ReplyToItemID   string `json:"reply_to_item_id,omitempty"`
	ReplyToUsername string `json:"reply_to_username,omitempty"`
}

type repliesResponse struct {
	Replies []domain.Reply `json:"replies"`
	Count   int            `json:"count"`
}

// ListReplies handles GET /v1/threads/{thread_id}/replies. Replies come
// back in chronological order with display-parent ids attached.
func ListReplies(svc *threads.Service) http.HandlerFunc {
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
		if th.DisplayOnly {
			// No resolvable root item, so there is nothing to list.
			api.WriteJSON(w, http.StatusOK, repliesResponse{Replies: []domain.Reply{}})
			return
		}

		list, err := svc.Replies(r.Context(), th.RootItem.ID)
		if err != nil {
			api.Upstream(w, "UPSTREAM_UNAVAILABLE", "reply fetch failed", rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, repliesResponse{Replies: list, Count: len(list)})
	}
}

// CreateReply handles POST /v1/threads/{thread_id}/replies. Requires an
// authenticated session; the precondition is checked before any write.
func CreateReply(tsvc *threads.Service, rsvc *replies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok || strings.TrimSpace(uid) == "" {
			api.Unauthorized(w, "AUTH_MISSING", "Missing auth", rid)
			return
		}

		threadID := strings.TrimSpace(chi.URLParam(r, "thread_id"))
		if threadID == "" {
			api.BadRequest(w, "MISSING_ID", "thread_id is required", rid, nil)
			return
		}

		var req createReplyReq
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			api.BadRequest(w, "MISSING_CONTENT", "content is required", rid, nil)
			return
		}

		th, err := tsvc.Thread(r.Context(), threadID)
		if err != nil {
			if errors.Is(err, threads.ErrThreadNotFound) {
				api.NotFound(w, "NOT_FOUND", "thread not found", rid)
				return
			}
			api.Upstream(w, "UPSTREAM_UNAVAILABLE", "thread lookup failed", rid)
			return
		}
		if th.DisplayOnly {
			api.Conflict(w, "THREAD_DISPLAY_ONLY", "thread has no resolvable root item", rid, nil)
			return
		}

		in := replies.PublishInput{
			Content:         req.Content,
			RootItemID:      th.RootItem.ID,
			FeedRef:         th.RootItem.FeedRef,
			ReplyToItemID:   req.ReplyToItemID,
			ReplyToUsername: req.ReplyToUsername,
			AuthorAddr:      uid,
		}
		// External threads have no catalog record, hence no counter row.
		if !strings.HasPrefix(th.ID, domain.ExternalThreadPrefix) {
			in.ThreadID = th.ID
		}

		reply, err := rsvc.Publish(r.Context(), in)
		if err != nil {
			if errors.Is(err, replies.ErrNoSession) {
				api.Unauthorized(w, "AUTH_MISSING", "Missing auth", rid)
				return
			}
			api.Upstream(w, "LEDGER_WRITE_FAILED", err.Error(), rid)
			return
		}
		api.WriteJSON(w, http.StatusCreated, reply)
	}
}
