package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	"github.com/inkwellhq/inkwell/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (author_id, title, content, image_url)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at, updated_at
	`, p.AuthorID, p.Title, p.Content, p.ImageURL)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

const postSelect = `
	SELECT p.id, p.author_id, p.title, p.content, COALESCE(p.image_url, ''),
	       p.claps, p.created_at, p.updated_at, u.name, COALESCE(u.avatar_url, '')
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &p.ImageURL,
		&p.Claps, &p.CreatedAt, &p.UpdatedAt, &p.AuthorName, &p.AuthorAvatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, postSelect+`
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, postSelect+`
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, authorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]*entity.Post, error) {
	out := make([]*entity.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	p.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $1, content = $2, image_url = NULLIF($3, ''), updated_at = $4
		WHERE id = $5
	`, p.Title, p.Content, p.ImageURL, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Clap records up to perUserCap claps per user per post and bumps the post
// total by however many were actually granted, in one round trip.
func (r *PostRepository) Clap(ctx context.Context, postID, userID string, delta, perUserCap int) (int, error) {
	// CTEs read the pre-statement snapshot, so "old" sees the count before
	// the upsert and the difference is exactly what was granted this call.
	var total int
	err := r.pool.QueryRow(ctx, `
		WITH old AS (
			SELECT count FROM post_claps WHERE post_id = $1 AND user_id = $2
		), up AS (
			INSERT INTO post_claps (post_id, user_id, count)
			VALUES ($1, $2, LEAST($3, $4))
			ON CONFLICT (post_id, user_id) DO UPDATE
			SET count = LEAST(post_claps.count + $3, $4)
			RETURNING count
		)
		UPDATE posts
		SET claps = claps + (SELECT count FROM up) - COALESCE((SELECT count FROM old), 0)
		WHERE id = $1
		RETURNING claps
	`, postID, userID, delta, perUserCap).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PostRepository) CreateComment(ctx context.Context, c *entity.Comment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, c.PostID, c.AuthorID, c.Content)
	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, c.updated_at,
	       u.name, COALESCE(u.avatar_url, '')
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

func scanComment(row pgx.Row) (*entity.Comment, error) {
	c := &entity.Comment{}
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content,
		&c.CreatedAt, &c.UpdatedAt, &c.AuthorName, &c.AuthorAvatar); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	rows, err := r.pool.Query(ctx, commentSelect+`
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*entity.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostRepository) GetComment(ctx context.Context, id string) (*entity.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
}

func (r *PostRepository) DeleteComment(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
