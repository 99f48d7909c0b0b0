package category

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"sitecontent/internal/models"
)

// SortByLabel orders categories by label using the collation rules of lang.
// Ties fall back to slug so the order is deterministic.
func SortByLabel(cats []models.Category, lang language.Tag) {
	col := collate.New(lang)

	slices.SortStableFunc(cats, func(a, b models.Category) int {
		if c := col.CompareString(a.Label, b.Label); c != 0 {
			return c
		}

		return col.CompareString(a.Slug, b.Slug)
	})
}
