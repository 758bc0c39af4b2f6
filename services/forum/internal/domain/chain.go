package domain

// maxLinkScan bounds the backward search per reply so pathologically large
// threads stay O(n * maxLinkScan) instead of O(n²).
const maxLinkScan = 500

// LinkReplies computes the display-parent pointer for each reply in a
// chronologically ascending sequence. A reply whose context names a target
// username is linked to the nearest prior reply written by that username;
// ties (several prior replies by the same author) resolve to the most
// recent one. Replies with no context, or no matching prior author, stay
// unlinked and render flat.
//
// This is a heuristic over a structurally flat comment log, not a real
// tree: it can mislink when a user is mentioned by name after having since
// replied again.
func LinkReplies(replies []Reply) map[string]string {
	parents := make(map[string]string)
	for i, r := range replies {
		if r.Context == nil || r.Context.ReplyToUsername == "" {
			continue
		}
		target := r.Context.ReplyToUsername
		lo := 0
		if i > maxLinkScan {
			lo = i - maxLinkScan
		}
		for j := i - 1; j >= lo; j-- {
			if replies[j].Item.Author.Username == target {
				parents[r.ID] = replies[j].ID
				break
			}
		}
	}
	return parents
}

// AttachDisplayParents applies LinkReplies to the slice in place and
// returns it.
func AttachDisplayParents(replies []Reply) []Reply {
	parents := LinkReplies(replies)
	for i := range replies {
		replies[i].DisplayParentID = parents[replies[i].ID]
	}
	return replies
}
