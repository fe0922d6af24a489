package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, adminPassword string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	// Routes
	setupRoutes(r, handler, adminPassword)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, adminPassword string) {
	// Public site endpoints
	r.GET("/api/news", handler.ListNews)
	r.GET("/api/news/all", handler.ListAllNews)
	r.GET("/api/news/:id", handler.GetNewsDetail)
	r.GET("/api/search", handler.SearchNews)
	r.GET("/api/popular", handler.GetPopularNews)
	r.GET("/api/rankings", handler.ListRankings)

	// Comments
	r.POST("/api/comments", handler.CreateComment)
	r.DELETE("/api/comments/:id", handler.DeleteComment)

	// Ranking ingestion (crawler-facing, shared secret in payload)
	r.POST("/api/rankings", handler.IngestRankings)

	// Syndication
	r.GET("/rss.xml", handler.GetRSSFeed)
	r.GET("/sitemap.xml", handler.GetSitemap)

	// Health endpoint
	r.GET("/health", handler.GetHealth)

	// Admin session (outside the gated prefix, like the login page)
	r.POST("/admin-login", handler.AdminLogin)
	r.POST("/admin-logout", handler.AdminLogout)

	// Admin endpoints behind the access gate
	admin := r.Group("/admin")
	admin.Use(adminGateMiddleware(adminPassword))
	{
		admin.GET("/dashboard", handler.AdminDashboard)
		admin.GET("/news", handler.AdminListNews)
		admin.GET("/news/:id", handler.AdminGetNews)
		admin.POST("/news", handler.AdminCreateNews)
		admin.PUT("/news/:id", handler.AdminUpdateNews)
		admin.DELETE("/news/:id", handler.AdminDeleteNews)
		admin.POST("/news/:id/pinned", handler.AdminSetPinned)
		admin.POST("/images", handler.AdminUploadImage)
		admin.DELETE("/images", handler.AdminDeleteImage)
	}

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
