package entity

import "time"

// ShortURL maps a slug to its original URL.
type ShortURL struct {
	ID          string
	Slug        string
	OriginalURL string
	ShortURL    string
	CreatedAt   time.Time
}
