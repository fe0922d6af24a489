package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/indisnews/trendit-server/app/database"
	"github.com/indisnews/trendit-server/app/news"
)

const maxImageSize = 10 << 20 // 10 MiB

// publishedAtLayouts covers the formats the admin editor submits:
// a full RFC3339 timestamp or the bare datetime-local value.
var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parsePublishedAt turns the submitted publish time into a timestamp.
// An empty value means immediate publication.
func parsePublishedAt(value string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return now, nil
	}

	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized publish time %q", value)
}

func (h *Handler) newsFieldsFromRequest(req SaveNewsRequest) (database.NewsFields, error) {
	publishedAt, err := parsePublishedAt(req.PublishedAt, time.Now())
	if err != nil {
		return database.NewsFields{}, err
	}

	importance := req.Importance
	if importance == "" {
		importance = "normal"
	}

	var imageURL *string
	if req.ThumbnailURL != "" {
		imageURL = &req.ThumbnailURL
	}

	return database.NewsFields{
		Title:         req.Title,
		Category:      req.Category,
		Importance:    importance,
		Summary:       req.Summary,
		Content:       req.Content,
		ImageURL:      imageURL,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
		Tags:          req.Tags,
		IsPinned:      req.IsPinned,
		PublishedAt:   publishedAt,
	}, nil
}

// AdminDashboard serves the site totals and the latest comments.
func (h *Handler) AdminDashboard(c *gin.Context) {
	totalNews, err := h.newsRepo.Count()
	if err != nil {
		slog.Error("Database error", "operation", "news_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	totalViews, err := h.newsRepo.SumViews()
	if err != nil {
		slog.Error("Database error", "operation", "sum_views", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	now := time.Now().In(time.Local)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayViews, err := h.newsRepo.CountViewsSince(midnight)
	if err != nil {
		slog.Error("Database error", "operation", "today_views", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	recent, err := h.commentRepo.Recent(10)
	if err != nil {
		slog.Error("Database error", "operation", "recent_comments", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		TotalNews:  totalNews,
		TotalViews: totalViews,
		TodayViews: todayViews,
		RecentComments: lo.Map(recent, func(cm database.CommentWithNews, _ int) RecentCommentItem {
			return RecentCommentItem{
				CommentResponse: toCommentResponse(cm.Comment),
				NewsTitle:       cm.NewsTitle,
				NewsCategory:    cm.NewsCategory,
			}
		}),
	})
}

// AdminListNews pages through all articles by creation time, including
// future-dated ones. Each row carries the scheduled flag, recomputed
// against the current time on every request.
func (h *Handler) AdminListNews(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pagination := news.NewPagination(page, news.AdminPageSize)

	totalCount, err := h.newsRepo.Count()
	if err != nil {
		slog.Error("Database error", "operation", "news_count", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	list, err := h.newsRepo.List(database.ListOptions{
		Order:  database.OrderByCreatedAt,
		Limit:  pagination.Limit(),
		Offset: pagination.Offset(),
	})
	if err != nil {
		slog.Error("Database error", "operation", "admin_list_news", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	now := time.Now()

	c.JSON(http.StatusOK, AdminNewsListResponse{
		News: lo.Map(list, func(n database.News, _ int) AdminNewsListItem {
			return AdminNewsListItem{
				NewsListItem: toListItem(n),
				Scheduled:    news.IsScheduled(n.PublishedAt, now),
			}
		}),
		TotalCount: totalCount,
		TotalPages: pagination.TotalPages(totalCount),
		Page:       pagination.Page,
	})
}

// AdminGetNews loads one article for the edit form.
func (h *Handler) AdminGetNews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	n, err := h.newsRepo.Get(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Database error", "operation", "admin_get_news", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, n)
}

func (h *Handler) AdminCreateNews(c *gin.Context) {
	var req SaveNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, err := h.newsFieldsFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.newsRepo.Create(fields)
	if err != nil {
		slog.Error("Database error", "operation", "create_news", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Info("News created", "id", id, "title", fields.Title)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) AdminUpdateNews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	var req SaveNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields, err := h.newsFieldsFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.newsRepo.Update(id, fields); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Database error", "operation", "update_news", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// AdminDeleteNews removes the stored image first, then the row. A storage
// failure aborts before the row delete; the reconciliation task cleans up
// whatever half-state remains.
func (h *Handler) AdminDeleteNews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	n, err := h.newsRepo.Get(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Database error", "operation", "get_news", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if n.ImageURL != nil {
		name, err := h.imageStore.ObjectNameFromURL(*n.ImageURL)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := h.imageStore.Delete(c.Request.Context(), name); err != nil {
			slog.Error("Image delete failed", "id", id, "object", name, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image delete failed"})
			return
		}
	}

	if err := h.newsRepo.Delete(id); err != nil {
		slog.Error("Database error", "operation", "delete_news", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Info("News deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminSetPinned flips the pinned flag based on the value the caller last
// observed, not the stored one.
func (h *Handler) AdminSetPinned(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	var req SetPinnedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Current == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	pinned := !*req.Current
	if err := h.newsRepo.SetPinned(id, pinned); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Database error", "operation", "set_pinned", "id", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isPinned": pinned})
}

func (h *Handler) AdminUploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File missing"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("Upload read failed", "filename", file.Filename, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Error("Upload read failed", "filename", file.Filename, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(file.Filename), ".")
	name := fmt.Sprintf("editor_%d_%d.%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.imageStore.Upload(c.Request.Context(), name, contentType, data)
	if err != nil {
		slog.Error("Image upload failed", "object", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) AdminDeleteImage(c *gin.Context) {
	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Data"})
		return
	}

	name, err := h.imageStore.ObjectNameFromURL(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.imageStore.Delete(c.Request.Context(), name); err != nil {
		slog.Error("Image delete failed", "object", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
