package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"sitecontent/internal/models"
	"sitecontent/pkg/metadata"
)

func TestFormatMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name: "Basic table formatting",
			input: `
| Header 1 | Header 2 |
| --- | --- |
| val 1 | val 2 |
`,
			expected: `
| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |
`,
		},
		{
			name: "Fix excessive dashes",
			input: `
| Col A | Col B |
| ---------------------- | ---------------------------------- |
| A | B |
`,
			expected: `
| Col A | Col B |
| ----- | ----- |
| A     | B     |
`,
		},
		{
			name: "Mixed content",
			input: `
# Title

| H1 | H2 |
| -- | -- |
| v1 | v2 |

Text after table.
`,
			expected: `
# Title

| H1  | H2  |
| --- | --- |
| v1  | v2  |

Text after table.
`,
		},
		{
			name: "Mixed CJK and ASCII",
			input: `
| Date | Title |
| --- | --- |
| 2025-01-01 | お知らせ：サイト公開 |
| 2025-01-02 | Short text |
`,
			// お知らせ (8) + ： (2) + サイト公開 (10) = 20 columns.
			expected: `
| Date       | Title                |
| ---------- | -------------------- |
| 2025-01-01 | お知らせ：サイト公開 |
| 2025-01-02 | Short text           |
`,
		},
		{
			name: "Escaped pipe stays in its cell",
			input: `
| Key | Value |
| --- | --- |
| a\|b | c |
`,
			expected: `
| Key  | Value |
| ---- | ----- |
| a\|b | c     |
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMarkdown(strings.TrimSpace(tt.input))

			if strings.TrimSpace(got) != strings.TrimSpace(tt.expected) {
				t.Errorf("FormatMarkdown() = \n%v\nwant \n%v", got, tt.expected)
			}
		})
	}
}

func sampleArticles() []models.ArticleSummary {
	published := "2024-01-01"

	return []models.ArticleSummary{
		{
			ID:          "a1",
			Title:       "日本語",
			Categories:  []models.Category{{Label: "News", Slug: "news"}},
			Tags:        []string{"go"},
			PublishedAt: &published,
		},
	}
}

func TestTable(t *testing.T) {
	want := strings.Join([]string{
		"| ID  | Title  | Categories | Tags | Published  |",
		"| --- | ------ | ---------- | ---- | ---------- |",
		"| a1  | 日本語 | News       | go   | 2024-01-01 |",
	}, "\n")

	if got := Table(sampleArticles()); got != want {
		t.Errorf("Table() =\n%s\nwant\n%s", got, want)
	}
}

func TestTable_EscapesCells(t *testing.T) {
	got := Table([]models.ArticleSummary{{ID: "x", Title: "A | B\nsecond line"}})

	if !strings.Contains(got, `A \| B second line`) {
		t.Errorf("cell not escaped:\n%s", got)
	}

	if strings.Count(got, "\n") != 2 {
		t.Errorf("expected three lines, got:\n%s", got)
	}
}

func TestTable_Empty(t *testing.T) {
	got := Table(nil)

	if strings.Count(got, "\n") != 1 {
		t.Errorf("expected header and separator only, got:\n%s", got)
	}
}

func TestReport(t *testing.T) {
	generated := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	report, err := Report(sampleArticles(), "json", generated)
	if err != nil {
		t.Fatalf("Report failed: %v", err)
	}

	if !strings.HasPrefix(report, "# Articles\n\n1 articles from json.") {
		t.Errorf("unexpected report start:\n%s", report)
	}

	ok, err := metadata.Verify(report)
	if err != nil || !ok {
		t.Fatalf("report does not verify: %v", err)
	}

	if !strings.Contains(report, "## Categories\n\n| Category | Slug | Articles |\n| -------- | ---- | -------- |\n| News     | news | 1        |") {
		t.Errorf("category table missing or unaligned:\n%s", report)
	}

	meta, _ := metadata.Extract(report)

	want, _ := metadata.Fingerprint(sampleArticles())
	if meta.Fingerprint != want || meta.Count != 1 || meta.Source != "json" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteJSON(&buf, sampleArticles()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}

	if decoded[0]["title"] != "日本語" {
		t.Errorf("title = %v", decoded[0]["title"])
	}

	if _, ok := decoded[0]["description"]; ok {
		t.Error("absent description must be omitted")
	}
}
