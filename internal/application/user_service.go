package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	repo "github.com/inkwellhq/inkwell/internal/domain/repository"
	"github.com/inkwellhq/inkwell/pkg/helpers"
)

// profileCacheTTL bounds staleness of the redis profile cache; writes also
// invalidate eagerly.
const profileCacheTTL = 10 * time.Minute

func profileCacheKey(userID string) string { return "profile:" + userID }

// profileDoc is the subset of a user that may live in redis. Password
// hashes, one-time codes and verification tokens never leave postgres.
type profileDoc struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Username      string          `json:"username"`
	AvatarURL     string          `json:"avatar_url"`
	Provider      entity.Provider `json:"provider"`
	EmailVerified bool            `json:"email_verified"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func profileDocFrom(u *entity.User) profileDoc {
	return profileDoc{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Username:      u.Username,
		AvatarURL:     u.AvatarURL,
		Provider:      u.Provider,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (d profileDoc) user() *entity.User {
	return &entity.User{
		ID:            d.ID,
		Email:         d.Email,
		Name:          d.Name,
		Username:      d.Username,
		AvatarURL:     d.AvatarURL,
		Provider:      d.Provider,
		EmailVerified: d.EmailVerified,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// UserService covers profile reads and writes, avatar storage, follower
// relations, and the user search index.
type UserService struct {
	Users        repo.UserRepository
	Follows      repo.FollowRepository
	GCS          *storage.Client
	GCSBucket    string
	Redis        *redis.Client
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(users repo.UserRepository, follows repo.FollowRepository, gcs *storage.Client, gcsBucket string, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{
		Users:        users,
		Follows:      follows,
		GCS:          gcs,
		GCSBucket:    gcsBucket,
		Redis:        rdb,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if s.Redis != nil {
		var cached profileDoc
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileCacheKey(userID), &cached); err == nil && ok {
			return cached.user(), nil
		}
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileCacheKey(userID), profileDocFrom(u), profileCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache set failed")
		}
	}
	return u, nil
}

func (s *UserService) dropCachedProfile(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileCacheKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("profile cache invalidation failed")
	}
}

type UpdateProfileInput struct {
	Name      string
	Username  string
	AvatarURL string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Username != "" {
		u.Username = helpers.NormalizeUsername(in.Username)
	}
	if in.AvatarURL != "" {
		u.AvatarURL = in.AvatarURL
	}
	if err := s.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	s.dropCachedProfile(ctx, userID)
	_ = s.IndexUser(ctx, u)
	return u, nil
}

// UploadAvatar stores the image in GCS under avatars/<userID>/ and points the
// profile at the resulting public URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	s.dropCachedProfile(ctx, userID)
	_ = s.IndexUser(ctx, u)
	return url, nil
}

// EnsureAvatar gives users without an avatar a generated gradient one.
// Without GCS the image cannot be hosted, so the profile is left as-is.
func (s *UserService) EnsureAvatar(ctx context.Context, u *entity.User) {
	if u.AvatarURL != "" || s.GCS == nil || s.GCSBucket == "" {
		return
	}
	png, err := helpers.GenerateAvatar()
	if err != nil {
		return
	}
	objectPath := "avatars/" + u.ID + "/generated.png"
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, "image/png", bytes.NewReader(png))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("generated avatar upload failed")
		}
		return
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("saving generated avatar failed")
	}
	s.dropCachedProfile(ctx, u.ID)
}

// ToggleFollow flips the follower relation and reports the resulting state.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == followeeID {
		return false, errors.New("cannot follow yourself")
	}
	if _, err := s.Users.GetByID(ctx, followeeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return s.Follows.Toggle(ctx, followerID, followeeID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return s.Follows.IsFollowing(ctx, followerID, followeeID)
}

// DeleteAccount removes the user row (content rows cascade) and its search
// document.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.dropCachedProfile(ctx, userID)
	if s.ES != nil && s.ESUsersIndex != "" {
		req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: userID}
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if res, err := req.Do(c, s.ES); err == nil {
			_ = res.Body.Close()
		}
	}
	return nil
}

// IndexUser writes the profile document to the users index. Index failures
// are logged, never surfaced; search lags rather than breaking writes.
func (s *UserService) IndexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"username":   u.Username,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// SearchUsers runs a multi_match over name, username and email.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "username^2", "email"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
