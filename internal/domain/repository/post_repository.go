package repository

import (
	"context"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
)

// PostRepository defines post and comment persistence.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error

	// Clap atomically adds delta claps on behalf of userID and returns the
	// new total. The per-user count is capped in a single statement.
	Clap(ctx context.Context, postID, userID string, delta, perUserCap int) (int, error)

	CreateComment(ctx context.Context, c *entity.Comment) error
	ListComments(ctx context.Context, postID string) ([]*entity.Comment, error)
	GetComment(ctx context.Context, id string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// StoryRepository defines short-form story persistence.
type StoryRepository interface {
	Create(ctx context.Context, s *entity.Story) error
	GetByID(ctx context.Context, id string) (*entity.Story, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Story, error)
	Update(ctx context.Context, s *entity.Story) error
	Delete(ctx context.Context, id string) error
	Clap(ctx context.Context, storyID, userID string, delta, perUserCap int) (int, error)
}

// FollowRepository persists follower relations.
type FollowRepository interface {
	// Toggle follows when not following and unfollows otherwise; returns
	// the resulting state (true = now following).
	Toggle(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

// ShortURLRepository persists slug -> URL mappings.
type ShortURLRepository interface {
	// Create relies on the unique index on slug; returns ErrDuplicateSlug
	// on collision so callers can retry with a fresh slug.
	Create(ctx context.Context, u *entity.ShortURL) error
	GetBySlug(ctx context.Context, slug string) (*entity.ShortURL, error)
}
