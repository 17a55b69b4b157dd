package service

import (
	"context"
	"errors"
	"testing"

	"bandstand/internal/domain"
	"bandstand/internal/domain/services"
)

func TestAddComment_BroadcastsToRoom(t *testing.T) {
	e := newEnv()
	setlist := e.mustCreateSetlist(context.Background(), "alice", "Friday Show")
	e.events.calls = nil

	comment, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "opener feels slow"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.ID == "" {
		t.Error("comment has no id")
	}

	events := e.events.events()
	if len(events) != 1 || events[0] != "new-comment" {
		t.Errorf("broadcasts = %v, want [new-comment]", events)
	}
}

func TestAddComment_ReplyNotifiesParentAuthor(t *testing.T) {
	e := newEnv()
	setlist, err := e.setlistSvc.CreateSetlist(context.Background(), "alice", &services.CreateSetlistRequest{
		Title:    "Friday Show",
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("CreateSetlist: %v", err)
	}

	parent, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "thoughts?"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	e.events.calls = nil

	if _, err := e.commentSvc.AddComment(context.Background(), "bob", setlist.ID, &services.AddCommentRequest{
		Content:         "swap songs 2 and 3",
		ParentCommentID: &parent.ID,
	}); err != nil {
		t.Fatalf("reply: %v", err)
	}

	events := e.events.events()
	if len(events) != 2 || events[0] != "new-comment" || events[1] != "notification" {
		t.Fatalf("broadcasts = %v, want [new-comment notification]", events)
	}
	if e.events.calls[1].Target != "alice" {
		t.Errorf("notification target = %s, want alice", e.events.calls[1].Target)
	}
}

func TestAddComment_SelfReplyDoesNotNotify(t *testing.T) {
	e := newEnv()
	setlist := e.mustCreateSetlist(context.Background(), "alice", "Friday Show")

	parent, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "note to self"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	e.events.calls = nil

	if _, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{
		Content:         "done",
		ParentCommentID: &parent.ID,
	}); err != nil {
		t.Fatalf("reply: %v", err)
	}

	events := e.events.events()
	if len(events) != 1 || events[0] != "new-comment" {
		t.Errorf("broadcasts = %v, want [new-comment]", events)
	}
}

func TestAddComment_ParentMustBelongToSetlist(t *testing.T) {
	e := newEnv()
	first := e.mustCreateSetlist(context.Background(), "alice", "Friday Show")
	second := e.mustCreateSetlist(context.Background(), "alice", "Saturday Show")

	parent, err := e.commentSvc.AddComment(context.Background(), "alice", first.ID, &services.AddCommentRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	_, err = e.commentSvc.AddComment(context.Background(), "alice", second.ID, &services.AddCommentRequest{
		Content:         "cross-thread reply",
		ParentCommentID: &parent.ID,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestListComments_NestsRepliesOneLevel(t *testing.T) {
	e := newEnv()
	setlist := e.mustCreateSetlist(context.Background(), "alice", "Friday Show")

	first, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "first"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "second"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{
		Content:         "reply to first",
		ParentCommentID: &first.ID,
	}); err != nil {
		t.Fatalf("reply: %v", err)
	}

	thread, err := e.commentSvc.ListComments(context.Background(), "alice", setlist.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}

	if len(thread) != 2 {
		t.Fatalf("top-level comments = %d, want 2", len(thread))
	}
	if thread[0].Content != "first" || thread[1].Content != "second" {
		t.Errorf("order = %q, %q", thread[0].Content, thread[1].Content)
	}
	if len(thread[0].Replies) != 1 || thread[0].Replies[0].Content != "reply to first" {
		t.Errorf("replies = %+v", thread[0].Replies)
	}
	if len(thread[1].Replies) != 0 {
		t.Errorf("second comment has replies: %+v", thread[1].Replies)
	}
}

func TestListComments_RepliesSurviveThreadGrowth(t *testing.T) {
	e := newEnv()
	setlist := e.mustCreateSetlist(context.Background(), "alice", "Friday Show")

	first, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "comment 0"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{
		Content:         "early reply",
		ParentCommentID: &first.ID,
	}); err != nil {
		t.Fatalf("reply: %v", err)
	}
	// More top-level comments arrive after the reply.
	for i := 1; i < 6; i++ {
		if _, err := e.commentSvc.AddComment(context.Background(), "alice", setlist.ID, &services.AddCommentRequest{Content: "later comment"}); err != nil {
			t.Fatalf("AddComment: %v", err)
		}
	}

	thread, err := e.commentSvc.ListComments(context.Background(), "alice", setlist.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(thread) != 6 {
		t.Fatalf("top-level comments = %d, want 6", len(thread))
	}
	if len(thread[0].Replies) != 1 || thread[0].Replies[0].Content != "early reply" {
		t.Errorf("first comment replies = %+v, want the early reply attached", thread[0].Replies)
	}
}

func TestDeleteComment_AuthorOrSetlistCreator(t *testing.T) {
	e := newEnv()
	setlist, err := e.setlistSvc.CreateSetlist(context.Background(), "alice", &services.CreateSetlistRequest{
		Title:    "Friday Show",
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("CreateSetlist: %v", err)
	}

	fromBob, err := e.commentSvc.AddComment(context.Background(), "bob", setlist.ID, &services.AddCommentRequest{Content: "drop the ballad"})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	// A third user cannot delete someone else's comment.
	if err := e.commentSvc.DeleteComment(context.Background(), "carol", setlist.ID, fromBob.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want forbidden", err)
	}
	// The setlist creator can.
	if err := e.commentSvc.DeleteComment(context.Background(), "alice", setlist.ID, fromBob.ID); err != nil {
		t.Errorf("creator delete: %v", err)
	}
}
