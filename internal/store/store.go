// Package store persists categories and articles and serves the read
// queries. Two backends implement Store: SQLite (default) and Postgres,
// selected by the store.driver config key.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/procwatch/procurement-cli/internal/model"
)

// ArticleFilter specifies criteria for searching stored articles.
// Substring filters are case-insensitive; ProcurementMethod is a
// case-insensitive exact match. Date bounds are YYYY-MM-DD strings
// compared against millisecond epoch columns, the end bound inclusive of
// the whole day.
type ArticleFilter struct {
	Title             string
	CategoryID        *int64
	ProjectName       string
	PurchaseName      string
	DistrictName      string
	SupplierName      string
	ProcurementMethod string

	PublishDateStart string
	PublishDateEnd   string
	BidOpeningStart  string
	BidOpeningEnd    string

	BudgetMin   *float64
	BudgetMax   *float64
	ContractMin *float64
	ContractMax *float64

	Page    int
	PerPage int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Normalize clamps pagination to sane bounds.
func (f *ArticleFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}
}

// Store is the persistence interface shared by the crawler and the read
// API.
type Store interface {
	// Migrate creates tables and indexes if absent. Safe to re-run.
	Migrate(ctx context.Context) error

	// UpsertCategory inserts the category if its code is unseen and
	// returns the stored row (with local ID) either way. Existing rows
	// are never modified.
	UpsertCategory(ctx context.Context, cat model.Category) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	// UpsertArticle writes the merged article keyed by article_api_id.
	// Listing-backed columns are overwritten; enrichment columns keep
	// their stored value when the incoming value is NULL.
	UpsertArticle(ctx context.Context, art model.Article) error
	GetArticle(ctx context.Context, articleAPIID string) (*model.Article, error)
	SearchArticles(ctx context.Context, filter ArticleFilter) ([]model.Article, int, error)

	Close() error
}

// dayMillis converts a YYYY-MM-DD date to a millisecond epoch. With
// endOfDay the result points at the last millisecond of that day, so a
// range end bound includes the whole day.
func dayMillis(date string, endOfDay bool) (int64, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, eris.Wrapf(err, "store: parse date %q", date)
	}
	ms := t.UnixMilli()
	if endOfDay {
		ms += 24*60*60*1000 - 1
	}
	return ms, nil
}
