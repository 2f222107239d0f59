package application

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	repo "github.com/inkwellhq/inkwell/internal/domain/repository"
)

var (
	ErrInvalidURL   = errors.New("invalid url")
	ErrSlugNotFound = errors.New("short url not found")
)

const (
	// slugTries bounds retries when a generated slug collides.
	slugTries    = 3
	slugCacheTTL = time.Hour
)

// ShortenerService mints short slugs for URLs and resolves them, with a
// Redis cache in front of the slug table on the read path.
type ShortenerService struct {
	URLs    repo.ShortURLRepository
	Redis   *redis.Client
	Logger  *logrus.Logger
	BaseURL string
}

func NewShortenerService(urls repo.ShortURLRepository, rdb *redis.Client, logger *logrus.Logger, baseURL string) *ShortenerService {
	return &ShortenerService{URLs: urls, Redis: rdb, Logger: logger, BaseURL: baseURL}
}

func slugCacheKey(slug string) string { return "shorturl:" + slug }

// Shorten validates the URL, generates an xid-based slug and stores the
// mapping. A slug collision retries with a fresh id.
func (s *ShortenerService) Shorten(ctx context.Context, rawURL string) (*entity.ShortURL, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	var lastErr error
	for i := 0; i < slugTries; i++ {
		slug := xid.New().String()[12:] // trailing 8 chars carry the random component
		su := &entity.ShortURL{
			Slug:        slug,
			OriginalURL: rawURL,
			ShortURL:    s.BaseURL + "/u/" + slug,
		}
		if err := s.URLs.Create(ctx, su); err != nil {
			if errors.Is(err, repo.ErrDuplicateSlug) {
				lastErr = err
				continue
			}
			return nil, err
		}
		if s.Redis != nil {
			if cerr := s.Redis.Set(ctx, slugCacheKey(slug), rawURL, slugCacheTTL).Err(); cerr != nil && s.Logger != nil {
				s.Logger.WithError(cerr).WithField("slug", slug).Warn("short url cache set failed")
			}
		}
		return su, nil
	}
	return nil, lastErr
}

// Resolve returns the original URL for a slug, consulting the cache first.
func (s *ShortenerService) Resolve(ctx context.Context, slug string) (string, error) {
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, slugCacheKey(slug)).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}
	su, err := s.URLs.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrSlugNotFound
		}
		return "", err
	}
	if s.Redis != nil {
		if cerr := s.Redis.Set(ctx, slugCacheKey(slug), su.OriginalURL, slugCacheTTL).Err(); cerr != nil && s.Logger != nil {
			s.Logger.WithError(cerr).WithField("slug", slug).Warn("short url cache set failed")
		}
	}
	return su.OriginalURL, nil
}
