package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/indisnews/trendit-server/app/cfg"
	"github.com/indisnews/trendit-server/app/database"
	"github.com/indisnews/trendit-server/app/storage"
)

var (
	_ database.NewsRepository    = (*fakeNewsStore)(nil)
	_ database.CommentRepository = (*fakeCommentStore)(nil)
	_ database.RankingRepository = (*fakeRankingStore)(nil)
	_ storage.ImageStore         = (*fakeImages)(nil)
)

type fakeNewsStore struct {
	news       map[int]*database.News
	nextID     int
	viewEvents []int
	listOpts   []database.ListOptions
	listResult []database.News
	err        error
}

func newFakeNewsStore(articles ...database.News) *fakeNewsStore {
	s := &fakeNewsStore{news: make(map[int]*database.News), nextID: 1}
	for i := range articles {
		n := articles[i]
		s.news[n.ID] = &n
		if n.ID >= s.nextID {
			s.nextID = n.ID + 1
		}
	}
	return s
}

func (f *fakeNewsStore) Get(id int) (*database.News, error) {
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.news[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNewsStore) List(opts database.ListOptions) ([]database.News, error) {
	f.listOpts = append(f.listOpts, opts)
	return f.listResult, f.err
}

func (f *fakeNewsStore) Search(query string) ([]database.News, error) {
	return f.listResult, f.err
}

func (f *fakeNewsStore) Popular(limit int) ([]database.News, error) {
	return f.listResult, f.err
}

func (f *fakeNewsStore) Count() (int, error) {
	return len(f.news), f.err
}

func (f *fakeNewsStore) SumViews() (int, error) {
	sum := 0
	for _, n := range f.news {
		sum += n.Views
	}
	return sum, f.err
}

func (f *fakeNewsStore) CountViewsSince(t time.Time) (int, error) {
	return len(f.viewEvents), f.err
}

func (f *fakeNewsStore) Create(fields database.NewsFields) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	id := f.nextID
	f.nextID++
	f.news[id] = &database.News{
		ID:            id,
		Title:         fields.Title,
		Category:      fields.Category,
		Importance:    fields.Importance,
		Summary:       fields.Summary,
		Content:       fields.Content,
		ImageURL:      fields.ImageURL,
		ReporterName:  fields.ReporterName,
		ReporterEmail: fields.ReporterEmail,
		Tags:          fields.Tags,
		IsPinned:      fields.IsPinned,
		PublishedAt:   fields.PublishedAt,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	return id, nil
}

func (f *fakeNewsStore) Update(id int, fields database.NewsFields) error {
	n, ok := f.news[id]
	if !ok {
		return database.ErrNotFound
	}
	n.Title = fields.Title
	n.Category = fields.Category
	n.Importance = fields.Importance
	n.Summary = fields.Summary
	n.Content = fields.Content
	n.ImageURL = fields.ImageURL
	n.ReporterName = fields.ReporterName
	n.ReporterEmail = fields.ReporterEmail
	n.Tags = fields.Tags
	n.IsPinned = fields.IsPinned
	n.PublishedAt = fields.PublishedAt
	n.UpdatedAt = time.Now()
	return nil
}

func (f *fakeNewsStore) Delete(id int) error {
	if _, ok := f.news[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.news, id)
	return nil
}

func (f *fakeNewsStore) SetPinned(id int, pinned bool) error {
	n, ok := f.news[id]
	if !ok {
		return database.ErrNotFound
	}
	n.IsPinned = pinned
	return nil
}

func (f *fakeNewsStore) RecordView(id int) error {
	if f.err != nil {
		return f.err
	}
	n, ok := f.news[id]
	if !ok {
		return database.ErrNotFound
	}
	n.Views++
	f.viewEvents = append(f.viewEvents, id)
	return nil
}

func (f *fakeNewsStore) ImageURLs() ([]string, error) {
	var urls []string
	for _, n := range f.news {
		if n.ImageURL != nil {
			urls = append(urls, *n.ImageURL)
		}
	}
	return urls, f.err
}

type fakeCommentStore struct {
	comments map[string]*database.Comment
	recent   []database.CommentWithNews
	err      error
}

func newFakeCommentStore(comments ...database.Comment) *fakeCommentStore {
	s := &fakeCommentStore{comments: make(map[string]*database.Comment)}
	for i := range comments {
		c := comments[i]
		s.comments[c.ID] = &c
	}
	return s
}

func (f *fakeCommentStore) Get(id string) (*database.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCommentStore) ListForNews(newsID int) ([]database.Comment, error) {
	var list []database.Comment
	for _, c := range f.comments {
		if c.NewsID == newsID {
			list = append(list, *c)
		}
	}
	return list, f.err
}

func (f *fakeCommentStore) Recent(limit int) ([]database.CommentWithNews, error) {
	return f.recent, f.err
}

func (f *fakeCommentStore) Create(newsID int, nickname, password, content string) (*database.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := &database.Comment{
		ID:        fmt.Sprintf("comment-%d", len(f.comments)+1),
		NewsID:    newsID,
		Nickname:  nickname,
		Password:  password,
		Content:   content,
		CreatedAt: time.Now(),
	}
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeCommentStore) Delete(id string) error {
	if _, ok := f.comments[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

type fakeRankingStore struct {
	rankings map[string][]database.AppRanking
	err      error
}

func newFakeRankingStore() *fakeRankingStore {
	return &fakeRankingStore{rankings: make(map[string][]database.AppRanking)}
}

func (f *fakeRankingStore) List(platform string) ([]database.AppRanking, error) {
	return f.rankings[platform], f.err
}

func (f *fakeRankingStore) ListFiltered(platform string, categories []string) ([]database.AppRanking, error) {
	if len(categories) == 0 {
		return f.rankings[platform], f.err
	}
	var filtered []database.AppRanking
	for _, r := range f.rankings[platform] {
		for _, c := range categories {
			if strings.Contains(r.Category, c) {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered, f.err
}

func (f *fakeRankingStore) Replace(platform string, entries []database.RankingEntry) error {
	if f.err != nil {
		return f.err
	}
	rows := make([]database.AppRanking, len(entries))
	for i, e := range entries {
		rows[i] = database.AppRanking{
			ID:        i + 1,
			Platform:  platform,
			Rank:      e.Rank,
			Title:     e.Title,
			Publisher: e.Publisher,
			IconURL:   e.IconURL,
			Link:      e.Link,
			Category:  e.Category,
		}
	}
	f.rankings[platform] = rows
	return nil
}

type fakeImages struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeImages) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploaded = append(f.uploaded, name)
	return "https://storage.example.com/storage/v1/object/public/news-images/" + name, nil
}

func (f *fakeImages) Delete(ctx context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeImages) List(ctx context.Context) ([]string, error) {
	return f.uploaded, f.err
}

func (f *fakeImages) ObjectNameFromURL(rawURL string) (string, error) {
	marker := "/news-images/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return "", fmt.Errorf("image URL %q does not contain bucket marker", rawURL)
	}
	return rawURL[idx+len(marker):], nil
}

const testAdminPassword = "admin-secret"

type testEnv struct {
	news     *fakeNewsStore
	comments *fakeCommentStore
	rankings *fakeRankingStore
	images   *fakeImages
	router   *gin.Engine
}

func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		news:     newFakeNewsStore(),
		comments: newFakeCommentStore(),
		rankings: newFakeRankingStore(),
		images:   &fakeImages{},
	}

	return rebuildRouter(env)
}

// rebuildRouter rewires the router after a test swaps one of the fakes.
func rebuildRouter(env *testEnv) *testEnv {
	handler := NewHandler(env.news, env.comments, env.rankings, env.images, &cfg.Cfg{
		AdminPassword:   testAdminPassword,
		RankingSecret:   "crawler-secret",
		BaseUrl:         "https://www.trendit.ai.kr",
		SiteTitle:       "Trend IT",
		SiteDescription: "IT news",
	})

	r := gin.New()
	setupRoutes(r, handler, testAdminPassword)
	env.router = r

	return env
}
