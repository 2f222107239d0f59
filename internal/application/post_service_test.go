package application

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestPostService(posts *fakePostRepo) *PostService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewPostService(posts, logger, nil, "")
}

func TestPostUpdateRequiresAuthor(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	p, err := svc.Create(context.Background(), "author-1", PostInput{Title: "Hello", Content: "First."})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(context.Background(), "intruder", p.ID, PostInput{Title: "Hijacked"}); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("got %v, want ErrNotPostOwner", err)
	}

	got, err := svc.Update(context.Background(), "author-1", p.ID, PostInput{Title: "Hello, again"})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if got.Title != "Hello, again" || got.Content != "First." {
		t.Fatalf("partial update wrong: %+v", got)
	}
}

func TestPostDeleteRequiresAuthor(t *testing.T) {
	posts := newFakePostRepo()
	svc := newTestPostService(posts)
	p, _ := svc.Create(context.Background(), "author-1", PostInput{Title: "Hello", Content: "x"})

	if err := svc.Delete(context.Background(), "intruder", p.ID); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("got %v, want ErrNotPostOwner", err)
	}
	if err := svc.Delete(context.Background(), "author-1", p.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("got %v, want ErrPostNotFound", err)
	}
}

func TestClapCapsPerReader(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	p, _ := svc.Create(context.Background(), "author-1", PostInput{Title: "Hello", Content: "x"})

	total, err := svc.Clap(context.Background(), "reader-1", p.ID, 30)
	if err != nil || total != 30 {
		t.Fatalf("first clap = %d, %v", total, err)
	}
	// Only 20 left before the cap.
	total, err = svc.Clap(context.Background(), "reader-1", p.ID, 30)
	if err != nil || total != MaxClapsPerUser {
		t.Fatalf("second clap = %d, %v, want %d", total, err, MaxClapsPerUser)
	}
	// At the cap further claps are no-ops.
	total, err = svc.Clap(context.Background(), "reader-1", p.ID, 1)
	if err != nil || total != MaxClapsPerUser {
		t.Fatalf("capped clap = %d, %v", total, err)
	}
	// The cap is per reader, not per post.
	total, err = svc.Clap(context.Background(), "reader-2", p.ID, 10)
	if err != nil || total != MaxClapsPerUser+10 {
		t.Fatalf("second reader = %d, %v", total, err)
	}
}

func TestClapClampsDelta(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	p, _ := svc.Create(context.Background(), "author-1", PostInput{Title: "Hello", Content: "x"})

	// Zero and negative deltas count as one clap.
	if total, err := svc.Clap(context.Background(), "reader-1", p.ID, 0); err != nil || total != 1 {
		t.Fatalf("zero delta = %d, %v", total, err)
	}
	// Oversized deltas clamp to the cap.
	if total, err := svc.Clap(context.Background(), "reader-2", p.ID, 10_000); err != nil || total != 1+MaxClapsPerUser {
		t.Fatalf("oversized delta = %d, %v", total, err)
	}
}

func TestClapUnknownPost(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	if _, err := svc.Clap(context.Background(), "reader-1", "missing", 1); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("got %v, want ErrPostNotFound", err)
	}
}

func TestDeleteCommentPermissions(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	p, _ := svc.Create(context.Background(), "author-1", PostInput{Title: "Hello", Content: "x"})
	c, err := svc.AddComment(context.Background(), "commenter", p.ID, "nice one")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	// A third party can delete nothing.
	if err := svc.DeleteComment(context.Background(), "stranger", c.ID); !errors.Is(err, ErrNotPostOwner) {
		t.Fatalf("stranger: got %v, want ErrNotPostOwner", err)
	}
	// The comment author can delete their own comment.
	if err := svc.DeleteComment(context.Background(), "commenter", c.ID); err != nil {
		t.Fatalf("comment author delete: %v", err)
	}

	// The post author moderates comments on their post.
	c2, _ := svc.AddComment(context.Background(), "commenter", p.ID, "another")
	if err := svc.DeleteComment(context.Background(), "author-1", c2.ID); err != nil {
		t.Fatalf("post author delete: %v", err)
	}
	if err := svc.DeleteComment(context.Background(), "author-1", c2.ID); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("got %v, want ErrCommentNotFound", err)
	}
}

func TestAddCommentUnknownPost(t *testing.T) {
	svc := newTestPostService(newFakePostRepo())
	if _, err := svc.AddComment(context.Background(), "commenter", "missing", "hi"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("got %v, want ErrPostNotFound", err)
	}
}
