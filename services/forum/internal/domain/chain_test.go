package domain

import (
	"fmt"
	"testing"
)

func reply(id, username, content string) Reply {
	return ToReply(LedgerItem{ID: id, Author: Author{Username: username}, Content: content})
}

func TestLinkReplies_NearestPriorAuthor(t *testing.T) {
	// A by alice, B by bob mentioning alice, C by alice, D by carol
	// mentioning alice. B links to A; D links to C, not A.
	replies := []Reply{
		reply("a", "alice", "first"),
		reply("b", "bob", "@alice good call"),
		reply("c", "alice", "thanks"),
		reply("d", "carol", "@alice what about tags?"),
	}

	parents := LinkReplies(replies)
	if parents["b"] != "a" {
		t.Fatalf("expected b -> a, got %q", parents["b"])
	}
	if parents["d"] != "c" {
		t.Fatalf("expected d -> c (nearest prior alice), got %q", parents["d"])
	}
}

func TestLinkReplies_NoContextStaysFlat(t *testing.T) {
	replies := []Reply{
		reply("a", "alice", "first"),
		reply("b", "bob", "plain answer"),
	}
	parents := LinkReplies(replies)
	if len(parents) != 0 {
		t.Fatalf("expected no links, got %v", parents)
	}
}

func TestLinkReplies_NoMatchingPriorAuthor(t *testing.T) {
	replies := []Reply{
		reply("a", "alice", "first"),
		reply("b", "bob", "@dave are you here?"),
	}
	parents := LinkReplies(replies)
	if _, ok := parents["b"]; ok {
		t.Fatalf("expected b unlinked, got %q", parents["b"])
	}
}

func TestLinkReplies_MentionOfSelfLaterInThread(t *testing.T) {
	// A mention never links forward: the target must appear before.
	replies := []Reply{
		reply("a", "bob", "@alice ping"),
		reply("b", "alice", "here"),
	}
	parents := LinkReplies(replies)
	if len(parents) != 0 {
		t.Fatalf("expected no links, got %v", parents)
	}
}

func TestLinkReplies_ExplicitTagUsernameWins(t *testing.T) {
	replies := []Reply{
		reply("a", "alice", "first"),
		reply("b", "bob", "second"),
		ToReply(LedgerItem{
			ID:      "c",
			Author:  Author{Username: "carol"},
			Content: "@bob actually for alice",
			Tags:    []string{"replyToUser:alice"},
		}),
	}
	parents := LinkReplies(replies)
	if parents["c"] != "a" {
		t.Fatalf("expected c -> a via explicit tag, got %q", parents["c"])
	}
}

func TestLinkReplies_ScanBounded(t *testing.T) {
	// alice replies once at the very start, then a long run of others, then
	// a mention of alice far beyond the scan window: must stay unlinked.
	replies := []Reply{reply("a", "alice", "start")}
	for i := 0; i < maxLinkScan+10; i++ {
		replies = append(replies, reply(fmt.Sprintf("f%d", i), "filler", "noise"))
	}
	replies = append(replies, reply("z", "bob", "@alice still there?"))

	parents := LinkReplies(replies)
	if _, ok := parents["z"]; ok {
		t.Fatalf("expected scan bound to leave z unlinked, got %q", parents["z"])
	}
}

func TestAttachDisplayParents(t *testing.T) {
	replies := AttachDisplayParents([]Reply{
		reply("a", "alice", "first"),
		reply("b", "bob", "@alice yes"),
	})
	if replies[1].DisplayParentID != "a" {
		t.Fatalf("expected display parent 'a', got %q", replies[1].DisplayParentID)
	}
	if replies[0].DisplayParentID != "" {
		t.Fatalf("expected root reply unlinked, got %q", replies[0].DisplayParentID)
	}
}
