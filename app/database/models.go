package database

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// News represents an article record in the database
type News struct {
	ID            int
	Title         string
	Category      string
	Importance    string // "normal" or "high"
	Summary       string
	Content       string // rich HTML from the admin editor
	ImageURL      *string
	ReporterName  string
	ReporterEmail string
	Tags          string // comma-delimited
	IsPinned      bool
	Views         int
	PublishedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Comment represents a reader comment on an article
type Comment struct {
	ID        string // UUID
	NewsID    int
	Nickname  string
	Password  string
	Content   string
	CreatedAt time.Time
}

// CommentWithNews is a comment joined with its article reference,
// used by the admin dashboard
type CommentWithNews struct {
	Comment
	NewsTitle    string
	NewsCategory string
}

// AppRanking represents one app-store ranking entry for a platform
type AppRanking struct {
	ID        int
	Platform  string
	Rank      int
	Title     string
	Publisher string
	IconURL   string
	Link      string
	Category  string
	CreatedAt time.Time
}
