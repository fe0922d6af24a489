package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/indisnews/trendit-server/app/database"
)

func adminRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "true"})
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv()
	env.news = newFakeNewsStore(sampleNews(1, "One"), sampleNews(2, "Two"))
	env.news.news[1].Views = 3
	env.news.news[2].Views = 7
	env.comments.recent = []database.CommentWithNews{
		{
			Comment:      database.Comment{ID: "c1", NewsID: 1, Nickname: "reader", Content: "hi"},
			NewsTitle:    "One",
			NewsCategory: "IT",
		},
	}
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("GET", "/admin/dashboard", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp DashboardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	assert.Equal(t, 2, resp.TotalNews)
	assert.Equal(t, 10, resp.TotalViews)
	assert.Equal(t, 1, len(resp.RecentComments))
	assert.Equal(t, "One", resp.RecentComments[0].NewsTitle)
}

func TestAdminListNewsMarksScheduled(t *testing.T) {
	env := newTestEnv()

	live := sampleNews(1, "Live")
	scheduled := sampleNews(2, "Scheduled")
	scheduled.PublishedAt = time.Now().Add(48 * time.Hour)
	env.news = newFakeNewsStore(live, scheduled)
	env.news.listResult = []database.News{scheduled, live}
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("GET", "/admin/news", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp AdminNewsListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	assert.Equal(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, true, resp.News[0].Scheduled)
	assert.Equal(t, false, resp.News[1].Scheduled)

	// Admin pages use the smaller page size and creation order
	opts := env.news.listOpts[0]
	assert.Equal(t, database.OrderByCreatedAt, opts.Order)
	assert.Equal(t, 10, opts.Limit)
	if opts.PublishedBefore != nil {
		t.Error("admin listing must include future-dated articles")
	}
}

func TestAdminCreateNews(t *testing.T) {
	env := newTestEnv()

	body := `{"title":"Fresh","category":"AI","importance":"high","publishedAt":"2026-09-01T10:00"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, len(env.news.news))

	created := env.news.news[1]
	assert.Equal(t, "Fresh", created.Title)
	assert.Equal(t, "high", created.Importance)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), created.PublishedAt)
}

func TestAdminCreateNewsDefaultsImportance(t *testing.T) {
	env := newTestEnv()

	body := `{"title":"Plain","category":"IT"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "normal", env.news.news[1].Importance)
	// Empty publish time means immediate publication
	if env.news.news[1].PublishedAt.IsZero() {
		t.Error("expected publish time to default to now")
	}
}

func TestAdminCreateNewsMissingTitle(t *testing.T) {
	env := newTestEnv()

	body := `{"category":"IT"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(env.news.news))
}

func TestAdminCreateNewsBadPublishTime(t *testing.T) {
	env := newTestEnv()

	body := `{"title":"Bad","category":"IT","publishedAt":"tomorrow"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(env.news.news))
}

func TestAdminUpdateNews(t *testing.T) {
	env := newTestEnv()
	env.news = newFakeNewsStore(sampleNews(1, "Old title"))
	env = rebuildRouter(env)

	body := `{"title":"New title","category":"IT"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("PUT", "/admin/news/1", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "New title", env.news.news[1].Title)
}

func TestAdminUpdateMissingNews(t *testing.T) {
	env := newTestEnv()

	body := `{"title":"New title","category":"IT"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("PUT", "/admin/news/7", strings.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminDeleteNewsWithImage(t *testing.T) {
	env := newTestEnv()

	n := sampleNews(1, "Illustrated")
	imageURL := "https://storage.example.com/storage/v1/object/public/news-images/editor_1_2.png"
	n.ImageURL = &imageURL
	env.news = newFakeNewsStore(n)
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("DELETE", "/admin/news/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, len(env.news.news))

	// Exactly one storage delete, for the decoded object name
	assert.Equal(t, []string{"editor_1_2.png"}, env.images.deleted)
}

func TestAdminDeleteNewsWithoutImage(t *testing.T) {
	env := newTestEnv()
	env.news = newFakeNewsStore(sampleNews(1, "Plain"))
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("DELETE", "/admin/news/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, len(env.news.news))
	assert.Equal(t, 0, len(env.images.deleted))
}

func TestAdminDeleteNewsStorageFailureKeepsRow(t *testing.T) {
	env := newTestEnv()

	n := sampleNews(1, "Illustrated")
	imageURL := "https://storage.example.com/storage/v1/object/public/news-images/editor_1_2.png"
	n.ImageURL = &imageURL
	env.news = newFakeNewsStore(n)
	env.images.err = io.ErrUnexpectedEOF
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("DELETE", "/admin/news/1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, len(env.news.news))
}

func TestAdminSetPinnedFlipsObservedValue(t *testing.T) {
	env := newTestEnv()
	env.news = newFakeNewsStore(sampleNews(1, "Pinnable"))
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news/1/pinned",
		strings.NewReader(`{"current":false}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.news.news[1].IsPinned)

	// The stored value is the negation of what the caller observed, even
	// if that no longer matches the row
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news/1/pinned",
		strings.NewReader(`{"current":false}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, env.news.news[1].IsPinned)
}

func TestAdminSetPinnedMissingBody(t *testing.T) {
	env := newTestEnv()
	env.news = newFakeNewsStore(sampleNews(1, "Pinnable"))
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("POST", "/admin/news/1/pinned", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUploadImage(t *testing.T) {
	env := newTestEnv()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest("POST", "/admin/images", &buf)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "true"})
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, len(env.images.uploaded))
	if !strings.HasSuffix(env.images.uploaded[0], ".png") {
		t.Errorf("expected generated name to keep the extension, got %q", env.images.uploaded[0])
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !strings.Contains(resp["url"], "/news-images/") {
		t.Errorf("expected public image URL, got %q", resp["url"])
	}
}

func TestAdminDeleteImage(t *testing.T) {
	env := newTestEnv()

	body := `{"url":"https://storage.example.com/storage/v1/object/public/news-images/editor_9.png"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("DELETE", "/admin/images", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"editor_9.png"}, env.images.deleted)
}

func TestAdminDeleteImageForeignURL(t *testing.T) {
	env := newTestEnv()

	body := `{"url":"https://elsewhere.example.com/pic.png"}`

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, adminRequest("DELETE", "/admin/images", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, len(env.images.deleted))
}
