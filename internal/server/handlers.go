package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"sitecontent/internal/articles"
	"sitecontent/internal/category"
	"sitecontent/internal/logger"
	"sitecontent/internal/models"
)

// ArticleSource is the part of articles.Fetcher the handlers use.
type ArticleSource interface {
	FetchAll(ctx context.Context) ([]models.ArticleSummary, error)
	FetchByID(ctx context.Context, id string) (*models.ArticleDetail, bool)
	Source() string
}

var _ ArticleSource = (*articles.Fetcher)(nil)

// Handler serves the preview routes.
type Handler struct {
	articles ArticleSource
	lang     language.Tag
	logger   *logger.Logger
}

// CategoryInfo is one entry of the category listing.
type CategoryInfo struct {
	models.Category

	Count int    `json:"count"`
	URL   string `json:"url"`
}

// NewHandler creates a handler. lang orders category labels when a request
// does not ask for a language.
func NewHandler(src ArticleSource, lang language.Tag, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}

	return &Handler{
		articles: src,
		lang:     lang,
		logger:   log.With("component", "preview"),
	}
}

// ListArticles returns every article, optionally filtered by category slug
// and tag.
func (h *Handler) ListArticles(c *gin.Context) {
	list, ok := h.fetchAll(c)
	if !ok {
		return
	}

	if slug := c.Query("category"); slug != "" {
		list = articles.FilterByCategory(list, slug)
	}

	if tag := c.Query("tag"); tag != "" {
		list = filterByTag(list, tag)
	}

	c.Header("X-Total-Count", strconv.Itoa(len(list)))
	c.JSON(http.StatusOK, gin.H{
		"source":   h.articles.Source(),
		"count":    len(list),
		"articles": list,
	})
}

// GetArticle returns one article with its body. Collection ids may contain
// slashes, so the id is the rest of the path.
func (h *Handler) GetArticle(c *gin.Context) {
	id := strings.TrimPrefix(c.Param("id"), "/")

	detail, ok := h.articles.FetchByID(c.Request.Context(), id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found", "id": id})

		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListCategories returns every category with its article count, ordered by
// label for the requested language.
func (h *Handler) ListCategories(c *gin.Context) {
	lang := h.lang

	if q := c.Query("lang"); q != "" {
		tag, err := language.Parse(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid language tag", "lang": q})

			return
		}

		lang = tag
	}

	list, ok := h.fetchAll(c)
	if !ok {
		return
	}

	groups := articles.CategoryIndex(list)

	counts := make(map[string]int, len(groups))
	cats := make([]models.Category, 0, len(groups))

	for _, g := range groups {
		counts[g.Category.Slug] = len(g.Articles)
		cats = append(cats, g.Category)
	}

	category.SortByLabel(cats, lang)

	out := make([]CategoryInfo, 0, len(cats))
	for _, cat := range cats {
		out = append(out, CategoryInfo{
			Category: cat,
			Count:    counts[cat.Slug],
			URL:      "/categories/" + category.PathEscape(cat.Slug),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":      len(out),
		"categories": out,
	})
}

// GetCategory returns the articles filed under one category slug.
func (h *Handler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")

	list, ok := h.fetchAll(c)
	if !ok {
		return
	}

	for _, g := range articles.CategoryIndex(list) {
		if g.Category.Slug == slug {
			c.JSON(http.StatusOK, gin.H{
				"category": g.Category,
				"count":    len(g.Articles),
				"articles": g.Articles,
			})

			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "category not found", "slug": slug})
}

// Health reports the active source.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"source":    h.articles.Source(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// fetchAll writes a 502 response and reports false when the fetch fails.
func (h *Handler) fetchAll(c *gin.Context) ([]models.ArticleSummary, bool) {
	list, err := h.articles.FetchAll(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to fetch articles",
			"request_id", c.GetString("request_id"),
			"error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch articles"})

		return nil, false
	}

	return list, true
}

func filterByTag(list []models.ArticleSummary, tag string) []models.ArticleSummary {
	out := make([]models.ArticleSummary, 0, len(list))

	for _, a := range list {
		for _, t := range a.Tags {
			if t == tag {
				out = append(out, a)

				break
			}
		}
	}

	return out
}
