// Package fallback serves article records from local files when no CMS is
// configured. Records are loaded once, on first use, and kept in memory.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"sitecontent/internal/models"
	"sitecontent/internal/provider"
	"sitecontent/pkg/utils"
)

// ErrInvalidQuery is returned for negative offsets or non-positive limits.
var ErrInvalidQuery = errors.New("invalid list query")

// loader reads every record from the backing files.
type loader func() ([]models.RawArticle, error)

// store holds the records of one source and answers provider queries.
type store struct {
	name string
	load loader

	once    sync.Once
	records []models.RawArticle
	err     error
}

func (s *store) Name() string {
	return s.name
}

func (s *store) all() ([]models.RawArticle, error) {
	s.once.Do(func() {
		s.records, s.err = s.load()
		if s.err != nil {
			s.err = fmt.Errorf("failed to load %s content: %w", s.name, s.err)
		}
	})

	return s.records, s.err
}

// List returns one page. The endpoint is ignored; a local source holds a
// single collection.
func (s *store) List(ctx context.Context, q provider.ListQuery) (*provider.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if q.Offset < 0 || q.Limit <= 0 {
		return nil, fmt.Errorf("%w: offset=%d limit=%d", ErrInvalidQuery, q.Offset, q.Limit)
	}

	records, err := s.all()
	if err != nil {
		return nil, err
	}

	ordered := orderRecords(records, q.OrderBy)
	total := len(ordered)

	start := min(q.Offset, total)
	end := min(start+q.Limit, total)

	items := make([]models.RawArticle, end-start)
	copy(items, ordered[start:end])

	return &provider.ListResult{
		Items:      items,
		TotalCount: &total,
	}, nil
}

// Get finds a record by id, falling back to its slug.
func (s *store) Get(ctx context.Context, _ string, id string) (*models.RawArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := s.all()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if recID, ok := utils.CoerceTrimmed(records[i].ID); ok && recID == id {
			raw := records[i]

			return &raw, nil
		}
	}

	for i := range records {
		if slug, ok := utils.CoerceTrimmed(records[i].Slug); ok && slug == id {
			raw := records[i]

			return &raw, nil
		}
	}

	return nil, provider.ErrNotFound
}

// orderRecords sorts a copy of records by an order expression such as
// "-publishedAt". Records without the field sort last. An empty expression
// keeps file order.
func orderRecords(records []models.RawArticle, orderBy string) []models.RawArticle {
	out := make([]models.RawArticle, len(records))
	copy(out, records)

	field := strings.TrimPrefix(orderBy, "-")
	if field == "" {
		return out
	}

	desc := strings.HasPrefix(orderBy, "-")

	keys := make([]time.Time, len(out))
	for i := range out {
		keys[i] = ParseTime(sortValue(out[i], field))
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]

		switch {
		case ka.IsZero() && kb.IsZero():
			return false
		case ka.IsZero():
			return false
		case kb.IsZero():
			return true
		case desc:
			return ka.After(kb)
		default:
			return ka.Before(kb)
		}
	})

	sorted := make([]models.RawArticle, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}

	return sorted
}

func sortValue(raw models.RawArticle, field string) string {
	switch field {
	case "publishedAt":
		return utils.FirstNonEmpty(raw.PublishedAt, raw.Date)
	case "updatedAt":
		return utils.FirstNonEmpty(raw.UpdatedAt)
	case "createdAt":
		return utils.FirstNonEmpty(raw.CreatedAt)
	case "revisedAt":
		return utils.FirstNonEmpty(raw.RevisedAt)
	case "date":
		return utils.FirstNonEmpty(raw.Date)
	}

	return ""
}

// ParseTime reads the date layouts found in front matter and CMS exports.
// It returns the zero time when nothing matches.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.DateOnly,
		"2006-01-02 15:04",
		time.DateTime,
	} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}

	return time.Time{}
}
