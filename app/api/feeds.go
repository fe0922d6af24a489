package api

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/indisnews/trendit-server/app/database"
)

const (
	rssItemLimit     = 100
	sitemapItemLimit = 5000
)

// articleLink builds the public URL of an article. Articles without a
// category fall back to the "general" segment.
func (h *Handler) articleLink(n database.News) string {
	return fmt.Sprintf("%s/news/%s/%d", h.baseURL, cmp.Or(n.Category, "general"), n.ID)
}

// GetRSSFeed serves the RSS 2.0 feed of published articles. Future-dated
// articles are excluded here even though regular listings may show them.
func (h *Handler) GetRSSFeed(c *gin.Context) {
	now := time.Now()

	list, err := h.newsRepo.List(database.ListOptions{
		PublishedBefore: &now,
		Order:           database.OrderByPublishedAt,
		Limit:           rssItemLimit,
	})
	if err != nil {
		slog.Error("Database error", "operation", "rss_feed", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/xml; charset=utf-8")
	c.String(http.StatusOK, h.generateRSS(list, now))
}

func (h *Handler) generateRSS(list []database.News, now time.Time) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	writeElement(&buf, "title", h.siteTitle, 4)
	writeElement(&buf, "link", h.baseURL, 4)
	writeElement(&buf, "description", h.siteDesc, 4)
	writeElement(&buf, "language", "ko", 4)
	writeElement(&buf, "lastBuildDate", now.UTC().Format(time.RFC1123Z), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(h.baseURL+"/rss.xml")))

	for _, n := range list {
		h.writeRSSItem(&buf, n)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

func (h *Handler) writeRSSItem(buf *bytes.Buffer, n database.News) {
	link := h.articleLink(n)

	buf.WriteString("    <item>\n")

	buf.WriteString("      <title><![CDATA[")
	buf.WriteString(n.Title)
	buf.WriteString("]]></title>\n")

	writeElement(buf, "link", link, 6)

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"true\">%s</guid>\n",
		html.EscapeString(link)))

	buf.WriteString("      <description><![CDATA[")
	buf.WriteString(n.Summary)
	buf.WriteString("]]></description>\n")

	writeElement(buf, "pubDate", n.PublishedAt.UTC().Format(time.RFC1123Z), 6)

	author := fmt.Sprintf("%s (%s)",
		cmp.Or(n.ReporterEmail, "editor@trendit.ai.kr"),
		cmp.Or(n.ReporterName, "TrendIT"))
	writeElement(buf, "author", author, 6)

	writeElement(buf, "category", cmp.Or(n.Category, "General"), 6)

	buf.WriteString("    </item>\n")
}

// sitemapRoutes are the static pages listed ahead of the article URLs.
var sitemapRoutes = []string{
	"",
	"/news/AI",
	"/news/IT",
	"/news/Tech",
	"/news/Stock",
	"/news/Coin",
}

// GetSitemap serves the sitemap of static routes and published articles.
func (h *Handler) GetSitemap(c *gin.Context) {
	now := time.Now()

	list, err := h.newsRepo.List(database.ListOptions{
		PublishedBefore: &now,
		Order:           database.OrderByPublishedAt,
		Limit:           sitemapItemLimit,
	})
	if err != nil {
		slog.Error("Database error", "operation", "sitemap", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/xml; charset=utf-8")
	c.String(http.StatusOK, h.generateSitemap(list, now))
}

func (h *Handler) generateSitemap(list []database.News, now time.Time) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	buf.WriteString("\n")

	for _, route := range sitemapRoutes {
		writeSitemapURL(&buf, h.baseURL+route, now, "hourly", "1.0")
	}

	for _, n := range list {
		writeSitemapURL(&buf, h.articleLink(n), n.UpdatedAt, "daily", "0.8")
	}

	buf.WriteString("</urlset>")

	return buf.String()
}

func writeSitemapURL(buf *bytes.Buffer, loc string, lastMod time.Time, changeFreq, priority string) {
	buf.WriteString("  <url>\n")
	writeElement(buf, "loc", loc, 4)
	writeElement(buf, "lastmod", lastMod.UTC().Format(time.RFC3339), 4)
	writeElement(buf, "changefreq", changeFreq, 4)
	writeElement(buf, "priority", priority, 4)
	buf.WriteString("  </url>\n")
}

func writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
