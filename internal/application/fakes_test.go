package application

import (
	"context"
	"strconv"
	"time"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
	repo "github.com/inkwellhq/inkwell/internal/domain/repository"
)

// In-memory repository fakes backing the service tests. They mirror the
// postgres implementations' contract, including the duplicate-key errors
// the unique indexes would raise.

type fakeUserRepo struct {
	users  map[string]*entity.User // by id
	nextID int
	// getByEmailErr, when set, is returned from GetByEmail to simulate a
	// database outage.
	getByEmailErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
		if ex.Username == u.Username {
			return repo.ErrDuplicateUsername
		}
	}
	f.nextID++
	u.ID = "user-" + strconv.Itoa(f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if f.getByEmailErr != nil {
		return nil, f.getByEmailErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	ex, ok := f.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, other := range f.users {
		if id != u.ID && other.Username == u.Username {
			return repo.ErrDuplicateUsername
		}
	}
	// Mirror the postgres UPDATE column list: verification state, provider,
	// and created_at are never written by Update.
	ex.Email = u.Email
	ex.Name = u.Name
	ex.Username = u.Username
	ex.AvatarURL = u.AvatarURL
	ex.Password = u.Password
	ex.EmailVerified = u.EmailVerified
	ex.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) SetVerificationCode(_ context.Context, id, code string, expiresAt time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.VerificationCode = code
	u.CodeExpiresAt = expiresAt
	return nil
}

func (f *fakeUserRepo) GetByEmailAndCode(_ context.Context, email, code string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email && u.VerificationCode != "" && u.VerificationCode == code && u.CodeExpiresAt.After(time.Now()) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeUserRepo) ClearVerificationCode(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.VerificationCode = ""
	u.CodeExpiresAt = time.Time{}
	return nil
}

func (f *fakeUserRepo) VerifyEmailByToken(_ context.Context, token string) error {
	for _, u := range f.users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			u.EmailVerified = true
			u.VerificationToken = ""
			return nil
		}
	}
	return repo.ErrNotFound
}

type fakePendingRepo struct {
	byEmail map[string]*entity.PendingUser
	nextID  int
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{byEmail: map[string]*entity.PendingUser{}}
}

func (f *fakePendingRepo) Upsert(_ context.Context, p *entity.PendingUser) error {
	if ex, ok := f.byEmail[p.Email]; ok {
		ex.VerificationCode = p.VerificationCode
		ex.CodeExpiresAt = p.CodeExpiresAt
		*p = *ex
		return nil
	}
	f.nextID++
	p.ID = "pending-" + strconv.Itoa(f.nextID)
	p.CreatedAt = time.Now()
	cp := *p
	f.byEmail[p.Email] = &cp
	return nil
}

func (f *fakePendingRepo) GetByEmail(_ context.Context, email string) (*entity.PendingUser, error) {
	p, ok := f.byEmail[email]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePendingRepo) RedeemCode(_ context.Context, email, code string) (*entity.PendingUser, error) {
	p, ok := f.byEmail[email]
	if !ok || p.VerificationCode == "" || p.VerificationCode != code || !p.CodeExpiresAt.After(time.Now()) {
		return nil, repo.ErrNotFound
	}
	p.Verified = true
	p.VerificationCode = ""
	cp := *p
	return &cp, nil
}

func (f *fakePendingRepo) Delete(_ context.Context, email string) error {
	delete(f.byEmail, email)
	return nil
}

// fakeMail records enqueued jobs and can simulate a broker outage.
type fakeMail struct {
	jobs []any
	fail bool
}

func (f *fakeMail) PublishJSON(_ context.Context, body any) error {
	if f.fail {
		return errBrokerDown
	}
	f.jobs = append(f.jobs, body)
	return nil
}

var errBrokerDown = &brokerErr{}

type brokerErr struct{}

func (*brokerErr) Error() string { return "broker down" }

type fakeShortURLRepo struct {
	bySlug   map[string]*entity.ShortURL
	failDups int // number of Creates to reject with ErrDuplicateSlug
	nextID   int
}

func newFakeShortURLRepo() *fakeShortURLRepo {
	return &fakeShortURLRepo{bySlug: map[string]*entity.ShortURL{}}
}

func (f *fakeShortURLRepo) Create(_ context.Context, u *entity.ShortURL) error {
	if f.failDups > 0 {
		f.failDups--
		return repo.ErrDuplicateSlug
	}
	if _, ok := f.bySlug[u.Slug]; ok {
		return repo.ErrDuplicateSlug
	}
	f.nextID++
	u.ID = "url-" + strconv.Itoa(f.nextID)
	u.CreatedAt = time.Now()
	cp := *u
	f.bySlug[u.Slug] = &cp
	return nil
}

func (f *fakeShortURLRepo) GetBySlug(_ context.Context, slug string) (*entity.ShortURL, error) {
	u, ok := f.bySlug[slug]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakePostRepo struct {
	posts    map[string]*entity.Post
	comments map[string]*entity.Comment
	claps    map[string]int // postID + "/" + userID -> count
	nextID   int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    map[string]*entity.Post{},
		comments: map[string]*entity.Comment{},
		claps:    map[string]int{},
	}
}

func (f *fakePostRepo) Create(_ context.Context, p *entity.Post) error {
	f.nextID++
	p.ID = "post-" + strconv.Itoa(f.nextID)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepo) List(_ context.Context, limit, offset int) ([]*entity.Post, error) {
	var out []*entity.Post
	for _, p := range f.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePostRepo) ListByAuthor(_ context.Context, authorID string, limit, offset int) ([]*entity.Post, error) {
	var out []*entity.Post
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePostRepo) Update(_ context.Context, p *entity.Post) error {
	ex, ok := f.posts[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	*ex = *p
	ex.UpdatedAt = time.Now()
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.posts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) Clap(_ context.Context, postID, userID string, delta, perUserCap int) (int, error) {
	p, ok := f.posts[postID]
	if !ok {
		return 0, repo.ErrNotFound
	}
	key := postID + "/" + userID
	have := f.claps[key]
	granted := delta
	if have+granted > perUserCap {
		granted = perUserCap - have
	}
	if granted < 0 {
		granted = 0
	}
	f.claps[key] = have + granted
	p.Claps += granted
	return p.Claps, nil
}

func (f *fakePostRepo) CreateComment(_ context.Context, c *entity.Comment) error {
	if _, ok := f.posts[c.PostID]; !ok {
		return repo.ErrNotFound
	}
	f.nextID++
	c.ID = "comment-" + strconv.Itoa(f.nextID)
	c.CreatedAt = time.Now()
	cp := *c
	f.comments[c.ID] = &cp
	return nil
}

func (f *fakePostRepo) ListComments(_ context.Context, postID string) ([]*entity.Comment, error) {
	var out []*entity.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePostRepo) GetComment(_ context.Context, id string) (*entity.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakePostRepo) DeleteComment(_ context.Context, id string) error {
	if _, ok := f.comments[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}
