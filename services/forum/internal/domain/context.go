package domain

import (
	"regexp"
	"strings"
)

// Tag markers for the explicit reply-context encoding. Writers emit both
// markers when they know the target; readers prefer them over the mention
// heuristic.
const (
	TagReplyTo     = "replyTo:"
	TagReplyToUser = "replyToUser:"
)

// mentionPattern matches a leading @handle. Slash supports namespaced
// handles ("org/name").
var mentionPattern = regexp.MustCompile(`^@([A-Za-z0-9_/-]+)`)

// ResolveReplyContext extracts the reply-to reference from a single ledger
// item. Explicit tag markers win; otherwise a leading @mention in the
// content is used; otherwise nil. Pure and tolerant of absent metadata.
func ResolveReplyContext(item LedgerItem) *ReplyContext {
	var ctx ReplyContext
	for _, tag := range item.Tags {
		switch {
		case strings.HasPrefix(tag, TagReplyTo):
			ctx.ReplyToItemID = strings.TrimPrefix(tag, TagReplyTo)
		case strings.HasPrefix(tag, TagReplyToUser):
			ctx.ReplyToUsername = strings.TrimPrefix(tag, TagReplyToUser)
		}
	}
	if ctx.ReplyToItemID != "" || ctx.ReplyToUsername != "" {
		return &ctx
	}

	m := mentionPattern.FindStringSubmatch(strings.TrimSpace(item.Content))
	if m == nil {
		return nil
	}
	return &ReplyContext{ReplyToUsername: m[1]}
}
