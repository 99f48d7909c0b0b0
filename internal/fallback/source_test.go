package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sitecontent/internal/models"
	"sitecontent/internal/provider"
)

const sampleJSON = `{
  "contents": [
    {"id": "old", "slug": "old-post", "title": "Old", "publishedAt": "2023-01-10T00:00:00Z"},
    {"id": "new", "slug": "new-post", "title": "New", "publishedAt": "2024-05-01T09:00:00Z", "category": ["News"]},
    {"id": "undated", "title": "Undated"},
    {"id": "mid", "title": "Mid", "date": "2023-06-15"}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}

func ids(items []models.RawArticle) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, _ := it.ID.(string)
		out = append(out, s)
	}

	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func TestParseJSON_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr error
	}{
		{"wrapped", `{"contents": [{"id": "a"}, {"id": "b"}]}`, 2, nil},
		{"bare array", `[{"id": "a"}]`, 1, nil},
		{"empty file", "  ", 0, nil},
		{"object without contents", `{"items": []}`, 0, ErrInvalidJSON},
		{"scalar", `"hello"`, 0, ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON([]byte(tt.in))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != tt.want {
				t.Errorf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"contents": [`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParseJSON_KeepsNumbers(t *testing.T) {
	got, err := ParseJSON([]byte(`[{"id": 7}]`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}

	if n, ok := got[0].ID.(json.Number); !ok || n.String() != "7" {
		t.Errorf("id = %#v, want json.Number 7", got[0].ID)
	}
}

func TestJSONSource_ListOrderingAndPaging(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample.json", sampleJSON)
	src := NewJSONSource(path)
	ctx := context.Background()

	first, err := src.List(ctx, provider.ListQuery{Limit: 2, OrderBy: provider.OrderPublishedDesc})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if got := ids(first.Items); !equalStrings(got, []string{"new", "mid"}) {
		t.Errorf("first page = %v", got)
	}

	if first.TotalCount == nil || *first.TotalCount != 4 {
		t.Errorf("TotalCount = %v, want 4", first.TotalCount)
	}

	second, err := src.List(ctx, provider.ListQuery{Limit: 2, Offset: 2, OrderBy: provider.OrderPublishedDesc})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if got := ids(second.Items); !equalStrings(got, []string{"old", "undated"}) {
		t.Errorf("second page = %v", got)
	}

	beyond, err := src.List(ctx, provider.ListQuery{Limit: 2, Offset: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(beyond.Items) != 0 {
		t.Errorf("expected empty page past the end, got %v", ids(beyond.Items))
	}
}

func TestJSONSource_AscendingAndFileOrder(t *testing.T) {
	src := NewJSONSource(writeFile(t, t.TempDir(), "sample.json", sampleJSON))
	ctx := context.Background()

	asc, err := src.List(ctx, provider.ListQuery{Limit: 10, OrderBy: provider.OrderPublishedAsc})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if got := ids(asc.Items); !equalStrings(got, []string{"old", "mid", "new", "undated"}) {
		t.Errorf("ascending = %v", got)
	}

	plain, err := src.List(ctx, provider.ListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if got := ids(plain.Items); !equalStrings(got, []string{"old", "new", "undated", "mid"}) {
		t.Errorf("file order = %v", got)
	}
}

func TestJSONSource_InvalidQuery(t *testing.T) {
	src := NewJSONSource("")

	for _, q := range []provider.ListQuery{{Limit: 0}, {Limit: 10, Offset: -1}} {
		if _, err := src.List(context.Background(), q); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("List(%+v) error = %v, want ErrInvalidQuery", q, err)
		}
	}
}

func TestJSONSource_Get(t *testing.T) {
	src := NewJSONSource(writeFile(t, t.TempDir(), "sample.json", sampleJSON))
	ctx := context.Background()

	raw, err := src.Get(ctx, "articles", "new")
	if err != nil {
		t.Fatalf("Get by id failed: %v", err)
	}

	if raw.Title != "New" {
		t.Errorf("title = %v", raw.Title)
	}

	raw, err = src.Get(ctx, "articles", "old-post")
	if err != nil {
		t.Fatalf("Get by slug failed: %v", err)
	}

	if raw.ID != "old" {
		t.Errorf("id = %v", raw.ID)
	}

	if _, err := src.Get(ctx, "articles", "nope"); !errors.Is(err, provider.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestJSONSource_EmptyPath(t *testing.T) {
	src := NewJSONSource("")

	res, err := src.List(context.Background(), provider.ListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(res.Items) != 0 || res.TotalCount == nil || *res.TotalCount != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestJSONSource_MissingFile(t *testing.T) {
	src := NewJSONSource(filepath.Join(t.TempDir(), "missing.json"))

	if _, err := src.List(context.Background(), provider.ListQuery{Limit: 10}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestJSONSource_LoadsOnce(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sample.json", sampleJSON)
	src := NewJSONSource(path)
	ctx := context.Background()

	if _, err := src.List(ctx, provider.ListQuery{Limit: 1}); err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	res, err := src.List(ctx, provider.ListQuery{Limit: 10})
	if err != nil {
		t.Fatalf("second List should use loaded records: %v", err)
	}

	if len(res.Items) != 4 {
		t.Errorf("expected 4 records, got %d", len(res.Items))
	}
}

func TestJSONSource_CanceledContext(t *testing.T) {
	src := NewJSONSource("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.List(ctx, provider.ListQuery{Limit: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"2024-05-01T09:00:00Z", false},
		{"2024-05-01T09:00:00.123+09:00", false},
		{"2024-05-01", false},
		{"2024-05-01 09:30", false},
		{"2024-05-01 09:30:15", false},
		{"", true},
		{"yesterday", true},
	}

	for _, tt := range tests {
		if got := ParseTime(tt.in); got.IsZero() != tt.zero {
			t.Errorf("ParseTime(%q) = %v, zero want %v", tt.in, got, tt.zero)
		}
	}
}
