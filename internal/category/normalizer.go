// Package category converts loosely shaped category and tag values into an
// ordered, slug-unique list of models.Category.
//
// Accepted shapes are nil, a string, an object with optional id/name/slug
// fields (map or models.CategoryRef), raw JSON, or a sequence of any of
// these. Anything else is coerced to its string form. Slugs are kept
// verbatim and compared case-sensitively; use PathEscape when building URLs.
package category

import (
	"encoding/json"
	"net/url"
	"reflect"
	"strings"

	"sitecontent/internal/models"
	"sitecontent/pkg/utils"
)

// Normalize returns the categories described by v, in input order,
// deduplicated by slug with the first occurrence kept.
func Normalize(v any) []models.Category {
	items := elements(v)
	out := make([]models.Category, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		c, ok := normalizeItem(item)
		if !ok {
			continue
		}

		if _, dup := seen[c.Slug]; dup {
			continue
		}

		seen[c.Slug] = struct{}{}
		out = append(out, c)
	}

	return out
}

// NormalizeOne returns the first category of Normalize(v).
func NormalizeOne(v any) (models.Category, bool) {
	list := Normalize(v)
	if len(list) == 0 {
		return models.Category{}, false
	}

	return list[0], true
}

// Labels returns the labels of Normalize(v). It is used for plain string
// lists such as tags and levels, where label and slug coincide.
func Labels(v any) []string {
	list := Normalize(v)
	out := make([]string, 0, len(list))

	for _, c := range list {
		out = append(out, c.Label)
	}

	return out
}

// PathEscape encodes a slug for use as a single URL path segment.
func PathEscape(slug string) string {
	return url.PathEscape(slug)
}

// elements expands the top level of v into the items to normalize.
// Nested sequences are not flattened further; normalizeItem drops them.
func elements(v any) []any {
	if raw, ok := v.(json.RawMessage); ok {
		v = decodeRaw(raw)
	}

	if v == nil {
		return nil
	}

	if _, ok := v.([]byte); ok {
		return []any{v}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}

	out := make([]any, 0, rv.Len())
	for i := range rv.Len() {
		out = append(out, rv.Index(i).Interface())
	}

	return out
}

func decodeRaw(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}

	return v
}

func normalizeItem(item any) (models.Category, bool) {
	switch val := item.(type) {
	case nil:
		return models.Category{}, false
	case string:
		return fromString(val)
	case json.RawMessage:
		return normalizeItem(decodeRaw(val))
	case models.CategoryRef:
		return fromFields(val.ID, val.Name, val.Slug)
	case *models.CategoryRef:
		if val == nil {
			return models.Category{}, false
		}

		return fromFields(val.ID, val.Name, val.Slug)
	case models.Category:
		return fromFields(nil, val.Label, val.Slug)
	case map[string]any:
		return fromFields(val["id"], val["name"], val["slug"])
	case map[string]string:
		return fromFields(val["id"], val["name"], val["slug"])
	case map[any]any:
		return fromFields(val["id"], val["name"], val["slug"])
	}

	s, ok := utils.Coerce(item)
	if !ok {
		return models.Category{}, false
	}

	return fromString(s)
}

func fromString(s string) (models.Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Category{}, false
	}

	return models.Category{Label: s, Slug: s}, true
}

func fromFields(id, name, slug any) (models.Category, bool) {
	label := utils.FirstNonEmpty(name, slug, id)
	if label == "" {
		return models.Category{}, false
	}

	return models.Category{
		Label: label,
		Slug:  utils.FirstNonEmpty(slug, id, label),
	}, true
}
