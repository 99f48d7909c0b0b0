// Package articles turns provider records into the article lists and details
// consumed by page rendering.
package articles

import (
	"context"
	"errors"
	"fmt"

	"sitecontent/internal/category"
	"sitecontent/internal/logger"
	"sitecontent/internal/models"
	"sitecontent/internal/provider"
	"sitecontent/pkg/utils"
)

// Defaults applied by New for zero option values.
const (
	DefaultEndpoint = "articles"
	DefaultPageSize = 100
	DefaultMaxPages = 1000
)

// Options configures a Fetcher.
type Options struct {
	Endpoint string
	PageSize int
	// MaxPages bounds the page requests of one full fetch.
	MaxPages int
	OrderBy  string
	Logger   *logger.Logger
}

// Fetcher reads articles from a single provider. It holds no per-call state
// and is safe for concurrent use.
type Fetcher struct {
	provider provider.Provider
	opts     Options
	logger   *logger.Logger
}

// CategoryGroup is one category with the articles filed under it.
type CategoryGroup struct {
	Category models.Category         `json:"category"`
	Articles []models.ArticleSummary `json:"articles"`
}

// cursor tracks the position of one full fetch.
type cursor struct {
	offset int
	limit  int
}

func (c *cursor) advance() {
	c.offset += c.limit
}

// New creates a fetcher for p.
func New(p provider.Provider, opts Options) *Fetcher {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}

	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}

	if opts.OrderBy == "" {
		opts.OrderBy = provider.OrderPublishedDesc
	}

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Fetcher{
		provider: p,
		opts:     opts,
		logger:   log.With("component", "fetcher", "provider", p.Name()),
	}
}

// Source names the active provider.
func (f *Fetcher) Source() string {
	return f.provider.Name()
}

// FetchAll retrieves every article, newest first. Provider failures are
// returned; a partial list never is.
func (f *Fetcher) FetchAll(ctx context.Context) ([]models.ArticleSummary, error) {
	records, err := f.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ArticleSummary, len(records))
	for i, r := range records {
		out[i] = mapSummary(r.raw, r.id)
	}

	return out, nil
}

// FetchByID retrieves one article. Not-found and every provider failure
// report false; failures are logged.
func (f *Fetcher) FetchByID(ctx context.Context, id string) (*models.ArticleDetail, bool) {
	if id == "" {
		return nil, false
	}

	raw, err := f.provider.Get(ctx, f.opts.Endpoint, id)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			f.logger.Debug("article not found", "id", id)
		} else {
			f.logger.Warn("failed to fetch article", "id", id, "error", err)
		}

		return nil, false
	}

	if raw == nil {
		return nil, false
	}

	return mapDetail(*raw, utils.FirstNonEmpty(raw.ID, raw.Slug, id)), true
}

// Slugs returns the non-empty article slugs in fetch order.
func (f *Fetcher) Slugs(ctx context.Context) ([]string, error) {
	records, err := f.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(records))

	for _, r := range records {
		if slug, ok := utils.CoerceTrimmed(r.raw.Slug); ok {
			slugs = append(slugs, slug)
		}
	}

	return slugs, nil
}

// FindBySlug scans the full collection for the first article with slug.
// It returns provider.ErrNotFound when none matches.
func (f *Fetcher) FindBySlug(ctx context.Context, slug string) (*models.ArticleDetail, error) {
	records, err := f.fetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if s, ok := utils.CoerceTrimmed(r.raw.Slug); ok && s == slug {
			return mapDetail(r.raw, r.id), nil
		}
	}

	return nil, fmt.Errorf("slug %q: %w", slug, provider.ErrNotFound)
}

// CategoryIndex groups articles by category slug, categories in first-seen
// order and articles in input order.
func CategoryIndex(articles []models.ArticleSummary) []CategoryGroup {
	var groups []CategoryGroup

	index := make(map[string]int)

	for _, a := range articles {
		for _, c := range a.Categories {
			i, ok := index[c.Slug]
			if !ok {
				i = len(groups)
				index[c.Slug] = i
				groups = append(groups, CategoryGroup{Category: c})
			}

			groups[i].Articles = append(groups[i].Articles, a)
		}
	}

	return groups
}

// FilterByCategory returns the articles filed under slug.
func FilterByCategory(articles []models.ArticleSummary, slug string) []models.ArticleSummary {
	out := make([]models.ArticleSummary, 0)

	for _, a := range articles {
		if a.HasCategory(slug) {
			out = append(out, a)
		}
	}

	return out
}

// Categories returns the distinct categories of articles in first-seen order.
func Categories(articles []models.ArticleSummary) []models.Category {
	var raw []any

	for _, a := range articles {
		for _, c := range a.Categories {
			raw = append(raw, c)
		}
	}

	return category.Normalize(raw)
}

type record struct {
	id  string
	raw models.RawArticle
}

// fetchRecords pages through the provider. It stops on an empty page, then
// once the reported total is reached, and fails after MaxPages requests
// without either signal.
func (f *Fetcher) fetchRecords(ctx context.Context) ([]record, error) {
	cur := cursor{limit: f.opts.PageSize}

	var records []record

	seen := make(map[string]struct{})
	received := 0

	for page := 0; ; page++ {
		if page >= f.opts.MaxPages {
			return nil, &ProviderProtocolError{
				Provider: f.provider.Name(),
				Offset:   cur.offset,
				Reason:   fmt.Sprintf("pagination did not terminate within %d pages", f.opts.MaxPages),
			}
		}

		res, err := f.provider.List(ctx, provider.ListQuery{
			Endpoint: f.opts.Endpoint,
			Limit:    cur.limit,
			Offset:   cur.offset,
			OrderBy:  f.opts.OrderBy,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s at offset %d: %w", f.opts.Endpoint, cur.offset, err)
		}

		if res == nil {
			return nil, &ProviderProtocolError{Provider: f.provider.Name(), Offset: cur.offset, Reason: "empty response"}
		}

		if len(res.Items) == 0 {
			break
		}

		for i, raw := range res.Items {
			id, ok := resolveID(raw)
			if !ok {
				return nil, &ProviderProtocolError{
					Provider: f.provider.Name(),
					Offset:   cur.offset,
					Reason:   fmt.Sprintf("record %d has neither id nor slug", i),
				}
			}

			if _, dup := seen[id]; dup {
				f.logger.Warn("duplicate article id, keeping first", "id", id, "offset", cur.offset)

				continue
			}

			seen[id] = struct{}{}
			records = append(records, record{id: id, raw: raw})
		}

		received += len(res.Items)

		f.logger.Debug("page received",
			"offset", cur.offset,
			"items", len(res.Items),
			"received", received)

		if res.TotalCount != nil && received >= *res.TotalCount {
			break
		}

		cur.advance()
	}

	f.logger.Info("articles fetched", "count", len(records))

	return records, nil
}
