package database

import (
	"time"
)

// NewsFields holds the mutable attributes of an article, supplied on
// create and fully overwritten on update.
type NewsFields struct {
	Title         string
	Category      string
	Importance    string
	Summary       string
	Content       string
	ImageURL      *string
	ReporterName  string
	ReporterEmail string
	Tags          string
	IsPinned      bool
	PublishedAt   time.Time
}

// ListOrder selects the sort column for article listings.
type ListOrder int

const (
	OrderByPublishedAt ListOrder = iota
	OrderByCreatedAt
)

// ListOptions describes an article listing query. Category "ALL" or ""
// means no category filter. A non-nil PublishedBefore excludes articles
// whose publish time is after the given cutoff.
type ListOptions struct {
	Category        string
	PublishedBefore *time.Time
	Order           ListOrder
	Limit           int
	Offset          int
}

type NewsRepository interface {
	Get(id int) (*News, error)
	List(opts ListOptions) ([]News, error)
	Search(query string) ([]News, error)
	Popular(limit int) ([]News, error)
	Count() (int, error)
	SumViews() (int, error)
	CountViewsSince(t time.Time) (int, error)

	Create(fields NewsFields) (int, error)
	Update(id int, fields NewsFields) error
	Delete(id int) error
	SetPinned(id int, pinned bool) error
	RecordView(id int) error

	ImageURLs() ([]string, error)
}

type CommentRepository interface {
	Get(id string) (*Comment, error)
	ListForNews(newsID int) ([]Comment, error)
	Recent(limit int) ([]CommentWithNews, error)

	Create(newsID int, nickname, password, content string) (*Comment, error)
	Delete(id string) error
}

// RankingEntry is one incoming ranking row from the ingestion endpoint.
type RankingEntry struct {
	Rank      int
	Title     string
	Publisher string
	IconURL   string
	Link      string
	Category  string
}

type RankingRepository interface {
	List(platform string) ([]AppRanking, error)
	ListFiltered(platform string, categories []string) ([]AppRanking, error)

	Replace(platform string, entries []RankingEntry) error
}
