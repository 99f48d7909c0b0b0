// Package server exposes fetched articles over a read-only JSON API for
// previewing content without building the site.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sitecontent/internal/logger"
)

// RequestIDHeader carries the request id in requests and responses.
const RequestIDHeader = "X-Request-ID"

// NewServer creates the router with every route configured.
func NewServer(handler *Handler, log *logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.Discard()
	}

	r := gin.New()

	r.Use(requestID())
	r.Use(requestLogger(log))
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/articles", handler.ListArticles)
	r.GET("/articles/*id", handler.GetArticle)
	r.GET("/categories", handler.ListCategories)
	r.GET("/categories/:slug", handler.GetCategory)
	r.GET("/health", handler.Health)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "sitecontent preview",
			"source":  handler.articles.Source(),
			"endpoints": map[string]string{
				"articles":   "/articles?category=<slug>&tag=<tag>",
				"article":    "/articles/<id>",
				"categories": "/categories?lang=<bcp47>",
				"category":   "/categories/<slug>",
				"health":     "/health",
			},
		})
	})
}

// requestID tags every request with an id, keeping one supplied by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		level := slog.LevelInfo

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		log.Log(c.Request.Context(), level, "request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP())
	}
}
