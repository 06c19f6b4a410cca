package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterOptions struct {
	Store          CatalogStore
	Summarizer     ReviewSummarizer
	// Uploader is nil when no storage bucket is configured.
	Uploader       ImageUploader
	MetricsHandler http.Handler
	SummaryLimiter gin.HandlerFunc
	AdminPassword  string
	AllowedOrigins []string
	Logger         *zap.Logger
}

func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(opts.Logger), cors.New(corsConfig(opts.AllowedOrigins)))

	healthHandler := NewHealthHandler()
	router.GET("/health", healthHandler.IsHealthy)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	catalogHandler := NewCatalogHandler(opts.Store, opts.Logger)
	mangaHandler := NewMangaHandler(opts.Store, opts.Summarizer, opts.Logger)
	summaryHandler := NewSummaryHandler(opts.Summarizer, opts.Logger)

	api := router.Group("/api")
	api.GET("/home", catalogHandler.Home)
	api.GET("/manga", catalogHandler.ListManga)
	api.GET("/manga/:slug", mangaHandler.GetManga)
	api.POST("/manga/:slug/reviews", mangaHandler.SubmitReview)
	api.GET("/genres", catalogHandler.ListGenres)
	api.GET("/categories", catalogHandler.ListCategories)
	api.GET("/news", catalogHandler.ListNews)
	api.GET("/news/:slug", catalogHandler.GetNews)
	api.GET("/pages/:slug", catalogHandler.GetPage)

	summaries := []gin.HandlerFunc{summaryHandler.Summarize}
	if opts.SummaryLimiter != nil {
		summaries = append([]gin.HandlerFunc{opts.SummaryLimiter}, summaries...)
	}
	api.POST("/summaries", summaries...)

	router.GET("/manga/:slug", mangaHandler.RenderManga)

	admin := router.Group("/admin", AdminAuthMiddleware(opts.AdminPassword))
	NewAdminHandler(opts.Store, opts.Logger).RegisterRoutes(admin)
	if opts.Uploader != nil {
		admin.POST("/uploads", NewUploadHandler(opts.Uploader, opts.Logger).UploadImage)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", adminPasswordHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
	}
	return config
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
