package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/indisnews/trendit-server/app/cfg"
	"github.com/indisnews/trendit-server/app/database"
	"github.com/indisnews/trendit-server/app/news"
	"github.com/indisnews/trendit-server/app/storage"
)

const relatedNewsCount = 15

func NewHandler(newsRepo database.NewsRepository, commentRepo database.CommentRepository,
	rankingRepo database.RankingRepository, imageStore storage.ImageStore, c *cfg.Cfg) *Handler {
	return &Handler{
		newsRepo:      newsRepo,
		commentRepo:   commentRepo,
		rankingRepo:   rankingRepo,
		imageStore:    imageStore,
		adminPassword: c.AdminPassword,
		rankingSecret: c.RankingSecret,
		baseURL:       c.BaseUrl,
		siteTitle:     c.SiteTitle,
		siteDesc:      c.SiteDescription,
	}
}

func toListItem(n database.News) NewsListItem {
	return NewsListItem{
		ID:           n.ID,
		Title:        n.Title,
		Category:     n.Category,
		Importance:   n.Importance,
		Summary:      n.Summary,
		ImageURL:     n.ImageURL,
		ReporterName: n.ReporterName,
		IsPinned:     n.IsPinned,
		Views:        n.Views,
		PublishedAt:  n.PublishedAt,
		CreatedAt:    n.CreatedAt,
	}
}

func toCommentResponse(c database.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		NewsID:    c.NewsID,
		Nickname:  c.Nickname,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// ListNews serves the paged public listing. Scheduled articles are
// excluded via the fixed-offset reference time cutoff.
func (h *Handler) ListNews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	category := c.DefaultQuery("category", database.CategoryAll)

	pagination := news.NewPagination(page, news.PublicPageSize)
	cutoff := news.ReferenceNow(time.Now())

	list, err := h.newsRepo.List(database.ListOptions{
		Category:        category,
		PublishedBefore: &cutoff,
		Order:           database.OrderByPublishedAt,
		Limit:           pagination.Limit(),
		Offset:          pagination.Offset(),
	})
	if err != nil {
		slog.Error("Database error", "operation", "list_news", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, NewsListResponse{
		News:     lo.Map(list, func(n database.News, _ int) NewsListItem { return toListItem(n) }),
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	})
}

// ListAllNews serves the unpaged creation-ordered listing used by the
// "all news" and category pages. Publish time is not checked here.
func (h *Handler) ListAllNews(c *gin.Context) {
	category := c.DefaultQuery("category", database.CategoryAll)

	list, err := h.newsRepo.List(database.ListOptions{
		Category: category,
		Order:    database.OrderByCreatedAt,
	})
	if err != nil {
		slog.Error("Database error", "operation", "list_all_news", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, NewsListResponse{
		News: lo.Map(list, func(n database.News, _ int) NewsListItem { return toListItem(n) }),
		Page: 1,
	})
}

// GetNewsDetail records one view event and serves the article. Serving is
// not gated on publish time: a scheduled article is reachable by direct
// link before going live.
func (h *Handler) GetNewsDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.newsRepo.RecordView(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Database error", "operation", "record_view", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	n, err := h.newsRepo.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_news", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	related, err := h.newsRepo.List(database.ListOptions{
		Order: database.OrderByCreatedAt,
		Limit: relatedNewsCount + 1,
	})
	if err != nil {
		slog.Error("Database error", "operation", "related_news", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	relatedItems := lo.FilterMap(related, func(r database.News, _ int) (RelatedNewsItem, bool) {
		if r.ID == n.ID {
			return RelatedNewsItem{}, false
		}
		return RelatedNewsItem{ID: r.ID, Title: r.Title, Category: r.Category}, true
	})
	if len(relatedItems) > relatedNewsCount {
		relatedItems = relatedItems[:relatedNewsCount]
	}

	comments, err := h.commentRepo.ListForNews(id)
	if err != nil {
		slog.Error("Database error", "operation", "list_comments", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, NewsDetailResponse{
		ID:            n.ID,
		Title:         n.Title,
		Category:      n.Category,
		Importance:    n.Importance,
		Summary:       news.SplitSummaryLines(n.Summary),
		Content:       news.CleanContent(n.Content),
		ImageURL:      n.ImageURL,
		ReporterName:  n.ReporterName,
		ReporterEmail: n.ReporterEmail,
		Tags:          news.SplitTags(n.Tags),
		Views:         n.Views,
		PublishedAt:   n.PublishedAt,
		CreatedAt:     n.CreatedAt,
		Related:       relatedItems,
		Comments:      lo.Map(comments, func(cm database.Comment, _ int) CommentResponse { return toCommentResponse(cm) }),
	})
}

func (h *Handler) SearchNews(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		c.JSON(http.StatusOK, NewsListResponse{News: []NewsListItem{}})
		return
	}

	list, err := h.newsRepo.Search(keyword)
	if err != nil {
		slog.Error("Database error", "operation", "search_news", "query", keyword, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, NewsListResponse{
		News: lo.Map(list, func(n database.News, _ int) NewsListItem { return toListItem(n) }),
	})
}

func (h *Handler) GetPopularNews(c *gin.Context) {
	list, err := h.newsRepo.Popular(5)
	if err != nil {
		slog.Error("Database error", "operation", "popular_news", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, NewsListResponse{
		News: lo.Map(list, func(n database.News, _ int) NewsListItem { return toListItem(n) }),
	})
}

// rankingCategoryLabels maps a ranking page filter value to the stored
// category labels it matches.
var rankingCategoryLabels = map[string][]string{
	"game":    {"게임"},
	"finance": {"금융"},
	"social":  {"소셜"},
	"enter":   {"엔터"},
	"life":    {"생활", "라이프", "쇼핑"},
}

func (h *Handler) ListRankings(c *gin.Context) {
	platform := strings.ToLower(strings.TrimSpace(c.DefaultQuery("platform", "google")))
	category := c.DefaultQuery("category", "all")

	rankings, err := h.rankingRepo.ListFiltered(platform, rankingCategoryLabels[category])
	if err != nil {
		slog.Error("Database error", "operation", "list_rankings", "platform", platform, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, lo.Map(rankings, func(a database.AppRanking, _ int) RankingResponse {
		return RankingResponse{
			Platform:  a.Platform,
			Rank:      a.Rank,
			Title:     a.Title,
			Publisher: a.Publisher,
			IconURL:   a.IconURL,
			Link:      a.Link,
			Category:  a.Category,
		}
	}))
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	if _, err := h.newsRepo.Get(req.NewsID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "News not found"})
			return
		}
		slog.Error("Database error", "operation", "get_news", "id", req.NewsID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	comment, err := h.commentRepo.Create(req.NewsID, req.Nickname, req.Password, req.Content)
	if err != nil {
		slog.Error("Database error", "operation", "create_comment", "news_id", req.NewsID, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, toCommentResponse(*comment))
}

// DeleteComment removes a comment when the supplied password matches the
// comment's own password or the administrator master password.
func (h *Handler) DeleteComment(c *gin.Context) {
	id := c.Param("id")

	var req DeleteCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	comment, err := h.commentRepo.Get(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
			return
		}
		slog.Error("Database error", "operation", "get_comment", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if comment.Password != req.Password && req.Password != h.adminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Password mismatch"})
		return
	}

	if err := h.commentRepo.Delete(id); err != nil {
		slog.Error("Database error", "operation", "delete_comment", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// IngestRankings atomically replaces all ranking rows for one platform.
// The secret is checked before payload validation, like the gate order
// the crawler relies on.
func (h *Handler) IngestRankings(c *gin.Context) {
	var req IngestRankingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	if req.SecretKey != h.rankingSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if req.Platform == "" || len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	platform := strings.ToLower(strings.TrimSpace(req.Platform))

	entries := lo.Map(req.Items, func(item RankingItem, _ int) database.RankingEntry {
		category := item.Category
		if category == "" {
			category = "기타"
		}
		return database.RankingEntry{
			Rank:      item.Rank,
			Title:     item.Title,
			Publisher: item.Publisher,
			IconURL:   item.IconURL,
			Link:      item.Link,
			Category:  category,
		}
	})

	if err := h.rankingRepo.Replace(platform, entries); err != nil {
		slog.Error("Database error", "operation", "replace_rankings", "platform", platform, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(entries),
		"platform": platform,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if newsCount, err := h.newsRepo.Count(); err == nil {
		health["news"] = newsCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	if req.Password != h.adminPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false})
		return
	}

	c.SetCookie(AdminSessionCookie, "true", adminSessionMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) AdminLogout(c *gin.Context) {
	c.SetCookie(AdminSessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
