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

type StoryRepository struct {
	pool *pgxpool.Pool
}

func NewStoryRepository(pool *pgxpool.Pool) *StoryRepository {
	return &StoryRepository{pool: pool}
}

func (r *StoryRepository) Create(ctx context.Context, s *entity.Story) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO stories (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, s.AuthorID, s.Title, s.Content)
	return row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func scanStory(row pgx.Row) (*entity.Story, error) {
	s := &entity.Story{}
	if err := row.Scan(&s.ID, &s.AuthorID, &s.Title, &s.Content, &s.Claps,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *StoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	return scanStory(r.pool.QueryRow(ctx, `
		SELECT id, author_id, title, content, claps, created_at, updated_at
		FROM stories WHERE id = $1
	`, id))
}

func (r *StoryRepository) List(ctx context.Context, limit, offset int) ([]*entity.Story, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, author_id, title, content, claps, created_at, updated_at
		FROM stories
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*entity.Story, 0)
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StoryRepository) Update(ctx context.Context, s *entity.Story) error {
	s.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE stories
		SET title = $1, content = $2, updated_at = $3
		WHERE id = $4
	`, s.Title, s.Content, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *StoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *StoryRepository) Clap(ctx context.Context, storyID, userID string, delta, perUserCap int) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		WITH old AS (
			SELECT count FROM story_claps WHERE story_id = $1 AND user_id = $2
		), up AS (
			INSERT INTO story_claps (story_id, user_id, count)
			VALUES ($1, $2, LEAST($3, $4))
			ON CONFLICT (story_id, user_id) DO UPDATE
			SET count = LEAST(story_claps.count + $3, $4)
			RETURNING count
		)
		UPDATE stories
		SET claps = claps + (SELECT count FROM up) - COALESCE((SELECT count FROM old), 0)
		WHERE id = $1
		RETURNING claps
	`, storyID, userID, delta, perUserCap).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

var _ repository.StoryRepository = (*StoryRepository)(nil)
