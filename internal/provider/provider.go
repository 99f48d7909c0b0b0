// Package provider defines the contract every article source satisfies,
// remote CMS or local fallback.
package provider

import (
	"context"
	"errors"

	"sitecontent/internal/models"
)

// ErrNotFound is returned by Get when the requested record does not exist.
var ErrNotFound = errors.New("content not found")

// Orderings understood by providers. A leading "-" means descending.
const (
	OrderPublishedDesc = "-publishedAt"
	OrderPublishedAsc  = "publishedAt"
	OrderUpdatedDesc   = "-updatedAt"
)

// ListQuery describes one page request.
type ListQuery struct {
	Endpoint string
	Limit    int
	Offset   int
	OrderBy  string
}

// ListResult is one page of records. TotalCount is nil when the provider
// does not report it.
type ListResult struct {
	Items      []models.RawArticle
	TotalCount *int
}

// Provider is a capability-limited source of raw article records.
type Provider interface {
	List(ctx context.Context, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, endpoint, id string) (*models.RawArticle, error)
	Name() string
}
