// Package models defines the article records exchanged between providers,
// the fetcher and page-rendering code.
package models

// Category is a normalized category or tag reference.
// Slug is stored verbatim; it is escaped only when a URL is built.
type Category struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
}

// CategoryRef is the object shape a CMS returns for a referenced category.
type CategoryRef struct {
	ID   string `json:"id,omitempty" yaml:"id,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Slug string `json:"slug,omitempty" yaml:"slug,omitempty"`
}

// RawArticle is a provider record. Every field is optional and loosely typed;
// values are coerced when the record is mapped to a summary or detail.
type RawArticle struct {
	ID          any `json:"id" yaml:"id"`
	Slug        any `json:"slug" yaml:"slug"`
	Title       any `json:"title" yaml:"title"`
	Description any `json:"description" yaml:"description"`
	Body        any `json:"body" yaml:"body"`
	Category    any `json:"category" yaml:"category"`
	Tags        any `json:"tags" yaml:"tags"`
	Levels      any `json:"levels" yaml:"levels"`
	QuizURL     any `json:"quizUrl" yaml:"quizUrl"`
	Date        any `json:"date" yaml:"date"`
	PublishedAt any `json:"publishedAt" yaml:"publishedAt"`
	RevisedAt   any `json:"revisedAt" yaml:"revisedAt"`
	CreatedAt   any `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   any `json:"updatedAt" yaml:"updatedAt"`

	// Headings is filled by sources that hold Markdown bodies.
	Headings []Heading `json:"-" yaml:"-"`
}

// ArticleSummary is the list-page view of an article.
type ArticleSummary struct {
	ID          string     `json:"id"`
	Slug        *string    `json:"slug,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Categories  []Category `json:"categories"`
	Tags        []string   `json:"tags"`
	Levels      []string   `json:"levels"`
	QuizURL     *string    `json:"quizUrl,omitempty"`
	PublishedAt *string    `json:"publishedAt,omitempty"`
	UpdatedAt   *string    `json:"updatedAt,omitempty"`
}

// PrimaryCategory returns the first category, if any.
func (a ArticleSummary) PrimaryCategory() (Category, bool) {
	if len(a.Categories) == 0 {
		return Category{}, false
	}

	return a.Categories[0], true
}

// HasCategory reports whether the article is filed under slug.
func (a ArticleSummary) HasCategory(slug string) bool {
	for _, c := range a.Categories {
		if c.Slug == slug {
			return true
		}
	}

	return false
}

// Heading is a section heading found in a Markdown or HTML body.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id,omitempty"`
	Text  string `json:"text"`
}

// ArticleDetail is the single-article view, including the body.
type ArticleDetail struct {
	ArticleSummary

	Body      *string   `json:"body,omitempty"`
	CreatedAt *string   `json:"createdAt,omitempty"`
	RevisedAt *string   `json:"revisedAt,omitempty"`
	Headings  []Heading `json:"headings,omitempty"`
}
