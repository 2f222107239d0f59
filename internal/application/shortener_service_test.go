package application

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestShortener(urls *fakeShortURLRepo) *ShortenerService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewShortenerService(urls, nil, logger, "http://short.test")
}

func TestShortenGeneratesSlug(t *testing.T) {
	urls := newFakeShortURLRepo()
	svc := newTestShortener(urls)

	su, err := svc.Shorten(context.Background(), "https://example.com/post/42")
	if err != nil {
		t.Fatalf("shorten: %v", err)
	}
	if len(su.Slug) != 8 {
		t.Fatalf("slug %q, want 8 chars", su.Slug)
	}
	if su.ShortURL != "http://short.test/u/"+su.Slug {
		t.Fatalf("short url %q", su.ShortURL)
	}
	got, err := svc.Resolve(context.Background(), su.Slug)
	if err != nil || got != "https://example.com/post/42" {
		t.Fatalf("resolve = %q, %v", got, err)
	}
}

func TestShortenRejectsInvalidURL(t *testing.T) {
	svc := newTestShortener(newFakeShortURLRepo())
	for _, raw := range []string{"", "not a url", "ftp://example.com/x", "https://", "javascript:alert(1)"} {
		if _, err := svc.Shorten(context.Background(), raw); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Shorten(%q) = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestShortenRetriesOnSlugCollision(t *testing.T) {
	urls := newFakeShortURLRepo()
	urls.failDups = slugTries - 1
	svc := newTestShortener(urls)

	su, err := svc.Shorten(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("shorten should survive %d collisions: %v", slugTries-1, err)
	}
	if su.Slug == "" {
		t.Fatal("empty slug")
	}
}

func TestShortenGivesUpAfterRetries(t *testing.T) {
	urls := newFakeShortURLRepo()
	urls.failDups = slugTries
	svc := newTestShortener(urls)

	if _, err := svc.Shorten(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if len(urls.bySlug) != 0 {
		t.Fatal("no rows should be written on failure")
	}
}

func TestResolveUnknownSlug(t *testing.T) {
	svc := newTestShortener(newFakeShortURLRepo())
	if _, err := svc.Resolve(context.Background(), strings.Repeat("x", 8)); !errors.Is(err, ErrSlugNotFound) {
		t.Fatalf("got %v, want ErrSlugNotFound", err)
	}
}
