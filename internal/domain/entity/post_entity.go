package entity

import "time"

// Post is a full-length article authored by a user.
type Post struct {
	ID        string
	AuthorID  string
	Title     string
	Content   string
	ImageURL  string
	Claps     int
	CreatedAt time.Time
	UpdatedAt time.Time

	// AuthorName/AuthorAvatar are denormalized on reads for list views.
	AuthorName   string
	AuthorAvatar string
}

// Story is a short-form post. Same lifecycle as Post, no comments.
type Story struct {
	ID        string
	AuthorID  string
	Title     string
	Content   string
	Claps     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment belongs to a post.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	AuthorName   string
	AuthorAvatar string
}
