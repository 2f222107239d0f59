package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	repo "github.com/inkwellhq/inkwell/internal/domain/repository"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotPostOwner    = errors.New("not the post owner")
)

// MaxClapsPerUser caps how many claps a single reader can give one piece.
const MaxClapsPerUser = 50

// PostService covers article CRUD, claps, comments and the posts search
// index.
type PostService struct {
	Posts        repo.PostRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESPostsIndex string
}

func NewPostService(posts repo.PostRepository, logger *logrus.Logger, es *elasticsearch.Client, esPostsIndex string) *PostService {
	return &PostService{Posts: posts, Logger: logger, ES: es, ESPostsIndex: esPostsIndex}
}

type PostInput struct {
	Title    string
	Content  string
	ImageURL string
}

func (s *PostService) Create(ctx context.Context, authorID string, in PostInput) (*entity.Post, error) {
	p := &entity.Post{
		AuthorID: authorID,
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	_ = s.indexPost(ctx, p)
	return p, nil
}

func (s *PostService) Get(ctx context.Context, id string) (*entity.Post, error) {
	p, err := s.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PostService) List(ctx context.Context, limit, offset int) ([]*entity.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Posts.List(ctx, limit, offset)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Posts.ListByAuthor(ctx, authorID, limit, offset)
}

// Update lets only the author edit the post.
func (s *PostService) Update(ctx context.Context, userID, postID string, in PostInput) (*entity.Post, error) {
	p, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != userID {
		return nil, ErrNotPostOwner
	}
	if in.Title != "" {
		p.Title = in.Title
	}
	if in.Content != "" {
		p.Content = in.Content
	}
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	if err := s.Posts.Update(ctx, p); err != nil {
		return nil, err
	}
	_ = s.indexPost(ctx, p)
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	p, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != userID {
		return ErrNotPostOwner
	}
	if err := s.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	if s.ES != nil && s.ESPostsIndex != "" {
		req := esapi.DeleteRequest{Index: s.ESPostsIndex, DocumentID: postID}
		c, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if res, derr := req.Do(c, s.ES); derr == nil {
			_ = res.Body.Close()
		}
	}
	return nil
}

// Clap adds up to delta claps from userID and returns the new total. The
// per-user cap is enforced in the repository in one atomic statement.
func (s *PostService) Clap(ctx context.Context, userID, postID string, delta int) (int, error) {
	if delta <= 0 {
		delta = 1
	}
	if delta > MaxClapsPerUser {
		delta = MaxClapsPerUser
	}
	total, err := s.Posts.Clap(ctx, postID, userID, delta, MaxClapsPerUser)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return total, nil
}

func (s *PostService) AddComment(ctx context.Context, userID, postID, content string) (*entity.Comment, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	c := &entity.Comment{PostID: postID, AuthorID: userID, Content: content}
	if err := s.Posts.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostService) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	return s.Posts.ListComments(ctx, postID)
}

// DeleteComment allows the comment author or the post author to remove it.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID string) error {
	c, err := s.Posts.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if c.AuthorID != userID {
		p, perr := s.Posts.GetByID(ctx, c.PostID)
		if perr != nil || p.AuthorID != userID {
			return ErrNotPostOwner
		}
	}
	return s.Posts.DeleteComment(ctx, commentID)
}

func (s *PostService) indexPost(ctx context.Context, p *entity.Post) error {
	if s.ES == nil || s.ESPostsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         p.ID,
		"author_id":  p.AuthorID,
		"title":      p.Title,
		"content":    p.Content,
		"image_url":  p.ImageURL,
		"claps":      p.Claps,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESPostsIndex, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
	return nil
}

// SearchPosts runs a multi_match over title and content.
func (s *PostService) SearchPosts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESPostsIndex), s.ES.Search.WithBody(bytes.NewReader(b)))
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
