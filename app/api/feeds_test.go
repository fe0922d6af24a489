package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/indisnews/trendit-server/app/database"
)

func feedArticles() []database.News {
	published := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	return []database.News{
		{
			ID:            1,
			Title:         "AI chips & the <next> wave",
			Category:      "AI",
			Summary:       "Chips are getting faster",
			ReporterName:  "Kim",
			ReporterEmail: "kim@trendit.ai.kr",
			PublishedAt:   published,
			UpdatedAt:     published,
		},
		{
			ID:          2,
			Title:       "Untitled beat",
			Summary:     "No category on this one",
			PublishedAt: published.Add(-time.Hour),
			UpdatedAt:   published.Add(-time.Hour),
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	env := newTestEnv()
	env.news.listResult = feedArticles()
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/rss.xml", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Header().Get("Content-Type"), "text/xml") {
		t.Errorf("unexpected content type %q", w.Header().Get("Content-Type"))
	}

	feed := w.Body.String()

	if !strings.Contains(feed, `<rss version="2.0"`) {
		t.Error("missing rss root element")
	}
	if !strings.Contains(feed, "<title>Trend IT</title>") {
		t.Error("missing channel title")
	}
	if !strings.Contains(feed, "<language>ko</language>") {
		t.Error("missing channel language")
	}

	// Titles go out raw inside CDATA, not entity-escaped
	if !strings.Contains(feed, "<title><![CDATA[AI chips & the <next> wave]]></title>") {
		t.Error("expected CDATA-wrapped item title")
	}

	if !strings.Contains(feed, "<link>https://www.trendit.ai.kr/news/AI/1</link>") {
		t.Error("missing article link")
	}
	if !strings.Contains(feed, `<guid isPermaLink="true">https://www.trendit.ai.kr/news/AI/1</guid>`) {
		t.Error("missing permalink guid")
	}
	if !strings.Contains(feed, "<author>kim@trendit.ai.kr (Kim)</author>") {
		t.Error("missing author element")
	}

	// Articles without category or reporter fall back to defaults
	if !strings.Contains(feed, "<link>https://www.trendit.ai.kr/news/general/2</link>") {
		t.Error("missing fallback category segment")
	}
	if !strings.Contains(feed, "<author>editor@trendit.ai.kr (TrendIT)</author>") {
		t.Error("missing fallback author")
	}

	if !strings.Contains(feed, "<pubDate>Thu, 20 Aug 2026 09:00:00 +0000</pubDate>") {
		t.Error("missing RFC1123Z publish date")
	}
}

func TestRSSFeedExcludesScheduledArticles(t *testing.T) {
	env := newTestEnv()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/rss.xml", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	opts := env.news.listOpts[0]
	if opts.PublishedBefore == nil {
		t.Fatal("feed listing must filter by publish time")
	}
	// Unlike the paged listing, the feed cutoff is plain wall-clock now
	if time.Until(*opts.PublishedBefore) > time.Minute {
		t.Errorf("feed cutoff %v is in the future", opts.PublishedBefore)
	}
	assert.Equal(t, rssItemLimit, opts.Limit)
}

func TestGenerateSitemap(t *testing.T) {
	env := newTestEnv()
	env.news.listResult = feedArticles()
	env = rebuildRouter(env)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/sitemap.xml", nil)
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	sitemap := w.Body.String()

	if !strings.Contains(sitemap, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Error("missing urlset root element")
	}

	// Static routes come first with top priority
	if !strings.Contains(sitemap, "<loc>https://www.trendit.ai.kr</loc>") {
		t.Error("missing home route")
	}
	if !strings.Contains(sitemap, "<loc>https://www.trendit.ai.kr/news/AI</loc>") {
		t.Error("missing category route")
	}
	if !strings.Contains(sitemap, "<priority>1.0</priority>") {
		t.Error("missing static route priority")
	}
	if !strings.Contains(sitemap, "<changefreq>hourly</changefreq>") {
		t.Error("missing static route change frequency")
	}

	// Article URLs follow with their update time as lastmod
	if !strings.Contains(sitemap, "<loc>https://www.trendit.ai.kr/news/AI/1</loc>") {
		t.Error("missing article URL")
	}
	if !strings.Contains(sitemap, "<lastmod>2026-08-20T09:00:00Z</lastmod>") {
		t.Error("missing article lastmod")
	}
	if !strings.Contains(sitemap, "<priority>0.8</priority>") {
		t.Error("missing article priority")
	}

	assert.Equal(t, sitemapItemLimit, env.news.listOpts[0].Limit)
}
