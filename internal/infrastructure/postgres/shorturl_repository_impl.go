package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	"github.com/inkwellhq/inkwell/internal/domain/repository"
)

type ShortURLRepository struct {
	pool *pgxpool.Pool
}

func NewShortURLRepository(pool *pgxpool.Pool) *ShortURLRepository {
	return &ShortURLRepository{pool: pool}
}

func (r *ShortURLRepository) Create(ctx context.Context, u *entity.ShortURL) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO short_urls (slug, original_url, short_url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, u.Slug, u.OriginalURL, u.ShortURL)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *ShortURLRepository) GetBySlug(ctx context.Context, slug string) (*entity.ShortURL, error) {
	u := &entity.ShortURL{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, slug, original_url, short_url, created_at
		FROM short_urls
		WHERE slug = $1
	`, slug)
	if err := row.Scan(&u.ID, &u.Slug, &u.OriginalURL, &u.ShortURL, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

var _ repository.ShortURLRepository = (*ShortURLRepository)(nil)
