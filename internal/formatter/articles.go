package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"sitecontent/internal/models"
	"sitecontent/pkg/metadata"
	"sitecontent/pkg/utils"
)

var tableHeader = []string{"ID", "Title", "Categories", "Tags", "Published"}

// Table renders articles as an aligned Markdown table.
func Table(articles []models.ArticleSummary) string {
	table := make([][]string, 0, len(articles)+2)
	table = append(table, tableHeader, make([]string, len(tableHeader)))

	for _, a := range articles {
		labels := make([]string, 0, len(a.Categories))
		for _, c := range a.Categories {
			labels = append(labels, c.Label)
		}

		table = append(table, []string{
			escapeCell(a.ID),
			escapeCell(a.Title),
			escapeCell(strings.Join(labels, ", ")),
			escapeCell(strings.Join(a.Tags, ", ")),
			escapeCell(deref(a.PublishedAt)),
		})
	}

	return strings.Join(alignRows(table, 1), "\n")
}

// Report renders a signed Markdown report of articles fetched from source.
func Report(articles []models.ArticleSummary, source string, generatedAt time.Time) (string, error) {
	fingerprint, err := metadata.Fingerprint(articles)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "# Articles\n\n%d articles from %s.\n\n", len(articles), source)
	sb.WriteString(Table(articles))
	writeCategoryCounts(&sb, articles)

	return metadata.Sign(FormatMarkdown(sb.String()), metadata.Metadata{
		Source:      source,
		Count:       len(articles),
		GeneratedAt: generatedAt,
		Fingerprint: fingerprint,
	}), nil
}

// writeCategoryCounts appends an unaligned table of categories in first-seen
// order with their article counts.
func writeCategoryCounts(sb *strings.Builder, articles []models.ArticleSummary) {
	var order []models.Category

	counts := make(map[string]int)

	for _, a := range articles {
		for _, c := range a.Categories {
			if _, ok := counts[c.Slug]; !ok {
				order = append(order, c)
			}

			counts[c.Slug]++
		}
	}

	if len(order) == 0 {
		return
	}

	sb.WriteString("\n\n## Categories\n\n| Category | Slug | Articles |\n| --- | --- | --- |\n")

	for _, c := range order {
		fmt.Fprintf(sb, "| %s | %s | %d |\n", escapeCell(c.Label), escapeCell(c.Slug), counts[c.Slug])
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(utils.NormalizeWhitespace(s), "|", `\|`)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
