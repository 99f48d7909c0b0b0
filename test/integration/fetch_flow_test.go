package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"sitecontent/internal/articles"
	"sitecontent/internal/config"
	"sitecontent/internal/formatter"
	"sitecontent/internal/logger"
	"sitecontent/pkg/metadata"
)

func TestFetchFlow_FallbackJSON(t *testing.T) {
	cfg, err := config.FromOptions(config.Options{
		FallbackPath: filepath.Join("..", "fixtures", "sampleArticles.json"),
		PageSize:     2,
	})
	if err != nil {
		t.Fatalf("FromOptions failed: %v", err)
	}

	fetcher, err := articles.NewFromConfig(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if fetcher.Source() != "json" {
		t.Fatalf("source = %q, want json", fetcher.Source())
	}

	list, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("got %d articles, want 3", len(list))
	}

	// Newest first; the undated-by-publishedAt record sorts by its date field.
	wantIDs := []string{"welcome", "go-basics", "http-clients"}
	for i, id := range wantIDs {
		if list[i].ID != id {
			t.Errorf("article %d = %s, want %s", i, list[i].ID, id)
		}
	}

	if list[2].PublishedAt == nil || *list[2].PublishedAt != "2024-02-20" {
		t.Errorf("publishedAt fallback to date failed: %v", list[2].PublishedAt)
	}

	groups := articles.CategoryIndex(list)
	if len(groups) != 3 {
		t.Fatalf("got %d categories, want 3", len(groups))
	}

	if groups[1].Category.Slug != "programming" || len(groups[1].Articles) != 2 {
		t.Errorf("programming group = %+v", groups[1])
	}

	report, err := formatter.Report(list, fetcher.Source(), time.Now())
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if ok, err := metadata.Verify(report); !ok {
		t.Errorf("report does not verify: %v", err)
	}

	detail, ok := fetcher.FetchByID(context.Background(), "go-basics")
	if !ok {
		t.Fatal("FetchByID failed")
	}

	if detail.QuizURL == nil || detail.Body == nil {
		t.Errorf("detail fields missing: %+v", detail)
	}

	if len(detail.Headings) != 1 || detail.Headings[0].Text != "変数" {
		t.Errorf("headings from HTML body = %+v", detail.Headings)
	}
}

func TestFetchFlow_Collection(t *testing.T) {
	cfg, err := config.FromOptions(config.Options{
		FallbackPath: filepath.Join("..", "fixtures", "articles"),
	})
	if err != nil {
		t.Fatalf("FromOptions failed: %v", err)
	}

	fetcher, err := articles.NewFromConfig(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	ctx := context.Background()

	slugs, err := fetcher.Slugs(ctx)
	if err != nil {
		t.Fatalf("Slugs failed: %v", err)
	}

	if len(slugs) != 2 || slugs[0] != "guides/deploying-sites" || slugs[1] != "intro" {
		t.Errorf("slugs = %v", slugs)
	}

	detail, err := fetcher.FindBySlug(ctx, "intro")
	if err != nil {
		t.Fatalf("FindBySlug failed: %v", err)
	}

	if len(detail.Headings) != 2 || detail.Headings[0].ID != "first-steps" {
		t.Errorf("headings = %+v", detail.Headings)
	}

	list, err := fetcher.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	groups := articles.CategoryIndex(list)
	if len(groups) != 1 || groups[0].Category.Slug != "Guides" || len(groups[0].Articles) != 2 {
		t.Errorf("groups = %+v", groups)
	}
}

// fakeCMS serves n generated records the way the microCMS list API does.
func fakeCMS(t *testing.T, n int, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-MICROCMS-API-KEY") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		if r.URL.Path != "/api/v1/articles" {
			http.NotFound(w, r)

			return
		}

		calls.Add(1)

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		contents := []map[string]any{}
		for i := offset; i < n && i < offset+limit; i++ {
			contents = append(contents, map[string]any{
				"id":       fmt.Sprintf("post-%03d", i),
				"title":    fmt.Sprintf("Post %d", i),
				"category": map[string]any{"id": "cat", "name": "Category"},
			})
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"contents":   contents,
			"totalCount": n,
			"offset":     offset,
			"limit":      limit,
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func TestFetchFlow_Remote(t *testing.T) {
	var calls atomic.Int32

	server := fakeCMS(t, 250, &calls)

	cfg, err := config.FromOptions(config.Options{
		ServiceDomain: "test",
		APIKey:        "secret",
		BaseURL:       server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("FromOptions failed: %v", err)
	}

	fetcher, err := articles.NewFromConfig(cfg, logger.Discard())
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}

	if fetcher.Source() != "microcms" {
		t.Fatalf("source = %q, want microcms", fetcher.Source())
	}

	list, err := fetcher.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if len(list) != 250 {
		t.Errorf("got %d articles, want 250", len(list))
	}

	if calls.Load() != 3 {
		t.Errorf("got %d page requests, want 3", calls.Load())
	}

	if _, ok := fetcher.FetchByID(context.Background(), "post-001"); ok {
		t.Error("detail route is not served, FetchByID must report not found")
	}
}
