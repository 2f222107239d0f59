package application

import (
	"context"
	"errors"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	repo "github.com/inkwellhq/inkwell/internal/domain/repository"
)

var (
	ErrStoryNotFound = errors.New("story not found")
	ErrNotStoryOwner = errors.New("not the story owner")
)

// StoryService covers short-form stories. Same shape as posts, no comments
// and no search index.
type StoryService struct {
	Stories repo.StoryRepository
}

func NewStoryService(stories repo.StoryRepository) *StoryService {
	return &StoryService{Stories: stories}
}

type StoryInput struct {
	Title   string
	Content string
}

func (s *StoryService) Create(ctx context.Context, authorID string, in StoryInput) (*entity.Story, error) {
	st := &entity.Story{AuthorID: authorID, Title: in.Title, Content: in.Content}
	if err := s.Stories.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StoryService) Get(ctx context.Context, id string) (*entity.Story, error) {
	st, err := s.Stories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return st, nil
}

func (s *StoryService) List(ctx context.Context, limit, offset int) ([]*entity.Story, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Stories.List(ctx, limit, offset)
}

func (s *StoryService) Update(ctx context.Context, userID, storyID string, in StoryInput) (*entity.Story, error) {
	st, err := s.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if st.AuthorID != userID {
		return nil, ErrNotStoryOwner
	}
	if in.Title != "" {
		st.Title = in.Title
	}
	if in.Content != "" {
		st.Content = in.Content
	}
	if err := s.Stories.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StoryService) Delete(ctx context.Context, userID, storyID string) error {
	st, err := s.Get(ctx, storyID)
	if err != nil {
		return err
	}
	if st.AuthorID != userID {
		return ErrNotStoryOwner
	}
	return s.Stories.Delete(ctx, storyID)
}

func (s *StoryService) Clap(ctx context.Context, userID, storyID string, delta int) (int, error) {
	if delta <= 0 {
		delta = 1
	}
	if delta > MaxClapsPerUser {
		delta = MaxClapsPerUser
	}
	total, err := s.Stories.Clap(ctx, storyID, userID, delta, MaxClapsPerUser)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrStoryNotFound
		}
		return 0, err
	}
	return total, nil
}
