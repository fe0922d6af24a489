package api

import (
	"time"

	"github.com/indisnews/trendit-server/app/database"
	"github.com/indisnews/trendit-server/app/storage"
)

// Handler holds the dependencies for all HTTP handlers. Secrets arrive
// here at construction time so tests can supply arbitrary values.
type Handler struct {
	newsRepo      database.NewsRepository
	commentRepo   database.CommentRepository
	rankingRepo   database.RankingRepository
	imageStore    storage.ImageStore
	adminPassword string
	rankingSecret string
	baseURL       string
	siteTitle     string
	siteDesc      string
}

// --- Request payloads ---

type SaveNewsRequest struct {
	Title         string `json:"title" binding:"required"`
	Category      string `json:"category" binding:"required"`
	Importance    string `json:"importance" binding:"omitempty,oneof=normal high"`
	Summary       string `json:"summary"`
	Content       string `json:"content"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	ReporterName  string `json:"reporterName"`
	ReporterEmail string `json:"reporterEmail"`
	Tags          string `json:"tags"`
	PublishedAt   string `json:"publishedAt"` // RFC3339 or datetime-local; empty means publish now
	IsPinned      bool   `json:"isPinned"`
}

type SetPinnedRequest struct {
	// The pinned value the caller last observed; the handler stores its
	// negation. Concurrent togglers race (last write wins).
	Current *bool `json:"current" binding:"required"`
}

type CreateCommentRequest struct {
	NewsID   int    `json:"newsId" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
	Password string `json:"password" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

type DeleteCommentRequest struct {
	Password string `json:"password" binding:"required"`
}

type RankingItem struct {
	Rank      int    `json:"rank"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	IconURL   string `json:"iconUrl"`
	Link      string `json:"link"`
	Category  string `json:"category"`
}

type IngestRankingRequest struct {
	Platform  string        `json:"platform"`
	SecretKey string        `json:"secretKey"`
	Items     []RankingItem `json:"items"`
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type DeleteImageRequest struct {
	URL string `json:"url" binding:"required"`
}

// --- Response payloads ---

type NewsListItem struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Importance   string    `json:"importance"`
	Summary      string    `json:"summary"`
	ImageURL     *string   `json:"imageUrl"`
	ReporterName string    `json:"reporterName"`
	IsPinned     bool      `json:"isPinned"`
	Views        int       `json:"views"`
	PublishedAt  time.Time `json:"publishedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

type NewsListResponse struct {
	News     []NewsListItem `json:"news"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	NewsID    int       `json:"newsId"`
	Nickname  string    `json:"nickname"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type RelatedNewsItem struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type NewsDetailResponse struct {
	ID            int               `json:"id"`
	Title         string            `json:"title"`
	Category      string            `json:"category"`
	Importance    string            `json:"importance"`
	Summary       []string          `json:"summary"`
	Content       string            `json:"content"`
	ImageURL      *string           `json:"imageUrl"`
	ReporterName  string            `json:"reporterName"`
	ReporterEmail string            `json:"reporterEmail"`
	Tags          []string          `json:"tags"`
	Views         int               `json:"views"`
	PublishedAt   time.Time         `json:"publishedAt"`
	CreatedAt     time.Time         `json:"createdAt"`
	Related       []RelatedNewsItem `json:"related"`
	Comments      []CommentResponse `json:"comments"`
}

type AdminNewsListItem struct {
	NewsListItem
	Scheduled bool `json:"scheduled"`
}

type AdminNewsListResponse struct {
	News       []AdminNewsListItem `json:"news"`
	TotalCount int                 `json:"totalCount"`
	TotalPages int                 `json:"totalPages"`
	Page       int                 `json:"page"`
}

type RecentCommentItem struct {
	CommentResponse
	NewsTitle    string `json:"newsTitle"`
	NewsCategory string `json:"newsCategory"`
}

type DashboardResponse struct {
	TotalNews      int                 `json:"totalNews"`
	TotalViews     int                 `json:"totalViews"`
	TodayViews     int                 `json:"todayViews"`
	RecentComments []RecentCommentItem `json:"recentComments"`
}

type RankingResponse struct {
	Platform  string `json:"platform"`
	Rank      int    `json:"rank"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	IconURL   string `json:"iconUrl"`
	Link      string `json:"link"`
	Category  string `json:"category"`
}
