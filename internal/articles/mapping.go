package articles

import (
	"strings"

	"sitecontent/internal/category"
	"sitecontent/internal/models"
	"sitecontent/pkg/utils"
)

// resolveID returns the record's id, or its slug when the id is missing.
func resolveID(raw models.RawArticle) (string, bool) {
	id := utils.FirstNonEmpty(raw.ID, raw.Slug)

	return id, id != ""
}

func mapSummary(raw models.RawArticle, id string) models.ArticleSummary {
	title, _ := utils.CoerceTrimmed(raw.Title)

	return models.ArticleSummary{
		ID:          id,
		Slug:        utils.OptionalString(raw.Slug),
		Title:       title,
		Description: utils.OptionalString(raw.Description),
		Categories:  category.Normalize(raw.Category),
		Tags:        category.Labels(raw.Tags),
		Levels:      category.Labels(raw.Levels),
		QuizURL:     utils.OptionalString(raw.QuizURL),
		PublishedAt: firstOptional(raw.PublishedAt, raw.Date),
		UpdatedAt:   utils.OptionalString(raw.UpdatedAt),
	}
}

func mapDetail(raw models.RawArticle, id string) *models.ArticleDetail {
	b := body(raw.Body)

	return &models.ArticleDetail{
		ArticleSummary: mapSummary(raw, id),
		Body:           b,
		CreatedAt:      utils.OptionalString(raw.CreatedAt),
		RevisedAt:      utils.OptionalString(raw.RevisedAt),
		Headings:       outline(raw, b),
	}
}

func firstOptional(values ...any) *string {
	if s := utils.FirstNonEmpty(values...); s != "" {
		return &s
	}

	return nil
}

// body keeps surrounding whitespace, which is significant in Markdown.
func body(v any) *string {
	s, ok := utils.Coerce(v)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}

	return &s
}
