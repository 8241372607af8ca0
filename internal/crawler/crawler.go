package crawler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/procwatch/procurement-cli/internal/model"
	"github.com/procwatch/procurement-cli/internal/portal"
	"github.com/procwatch/procurement-cli/internal/store"
)

// ListingSource fetches one page of a category listing.
type ListingSource interface {
	FetchListingPage(ctx context.Context, req portal.ListingRequest) (*portal.ListingPage, error)
}

// Portal is the slice of the portal client the crawler depends on.
// *portal.Client satisfies it.
type Portal interface {
	ListingSource
	FetchCategoryTree(ctx context.Context, parentID, siteID int64) ([]portal.TreeNode, error)
	FetchDetail(ctx context.Context, articleID string) (*model.Detail, error)
}

// Config holds the static crawl parameters and limits. Zero-valued
// limits mean unlimited.
type Config struct {
	ParentID              int64
	SiteID                int64
	CodePrefix            string
	PageSize              int
	IsGov                 bool
	IsProvince            bool
	ExcludeDistrictPrefix []string

	MaxCategories          int
	MaxPagesPerCategory    int
	MaxArticlesPerCategory int

	PageDelay   time.Duration
	DetailDelay time.Duration
}

// Crawler sequences categories, pages, items, detail fetches, and
// upserts. Execution is strictly sequential; the delays between requests
// are the self-throttle against the upstream portal.
type Crawler struct {
	portal Portal
	store  store.Store
	cfg    Config
}

// New builds a Crawler.
func New(p Portal, st store.Store, cfg Config) *Crawler {
	return &Crawler{portal: p, store: st, cfg: cfg}
}

// Run executes one full crawl. Failures at the item or category level
// are logged and skipped; only an empty category sync is terminal. The
// returned stats are valid even when an error is returned.
func (c *Crawler) Run(ctx context.Context) (*model.CrawlStats, error) {
	stats := &model.CrawlStats{}
	log := zap.L().With(zap.String("run_id", uuid.New().String()))

	log.Info("crawl starting",
		zap.Int("max_categories", c.cfg.MaxCategories),
		zap.Int("max_pages_per_category", c.cfg.MaxPagesPerCategory),
		zap.Int("max_articles_per_category", c.cfg.MaxArticlesPerCategory),
	)

	categories := c.syncCategories(ctx, log)
	if len(categories) == 0 {
		return stats, eris.New("crawler: no categories available, nothing to crawl")
	}
	log.Info("categories synced", zap.Int("count", len(categories)))

	for i, cat := range categories {
		if c.cfg.MaxCategories > 0 && stats.CategoriesProcessed >= c.cfg.MaxCategories {
			log.Info("category cap reached", zap.Int("max_categories", c.cfg.MaxCategories))
			break
		}
		if ctx.Err() != nil {
			return stats, eris.Wrap(ctx.Err(), "crawler: run cancelled")
		}

		log.Info("processing category",
			zap.Int("index", i+1),
			zap.Int("total", len(categories)),
			zap.String("category", cat.Name),
			zap.Int64("category_id", cat.ID),
		)

		c.processCategory(ctx, log, cat, stats)
		stats.CategoriesProcessed++
	}

	log.Info("crawl finished",
		zap.Int("categories_processed", stats.CategoriesProcessed),
		zap.Int("articles_considered", stats.ArticlesConsidered),
		zap.Int("details_fetched", stats.DetailsFetched),
		zap.Int("articles_saved", stats.ArticlesSaved),
	)
	return stats, nil
}

// syncCategories fetches the tree, extracts matching categories, and
// upserts each one. The returned set is the categories as stored, local
// IDs included, so the rest of the run works purely with persisted
// identifiers. Returns nil when the tree cannot be fetched or decoded.
func (c *Crawler) syncCategories(ctx context.Context, log *zap.Logger) []model.Category {
	nodes, err := c.portal.FetchCategoryTree(ctx, c.cfg.ParentID, c.cfg.SiteID)
	if err != nil {
		log.Error("category tree fetch failed", zap.Error(err))
		return nil
	}

	extracted := ExtractCategories(nodes, c.cfg.CodePrefix)
	log.Info("categories extracted", zap.Int("count", len(extracted)))

	var stored []model.Category
	for _, cat := range extracted {
		row, err := c.store.UpsertCategory(ctx, cat)
		if err != nil {
			log.Error("category upsert failed",
				zap.String("category_code", cat.CategoryCode),
				zap.Error(err),
			)
			continue
		}
		stored = append(stored, *row)
	}
	return stored
}

// processCategory runs the paginator and the per-item detail/merge/
// persist sequence for one category. Every failure inside is scoped to
// its item and logged.
func (c *Crawler) processCategory(ctx context.Context, log *zap.Logger, cat model.Category, stats *model.CrawlStats) {
	items := CollectListings(ctx, c.portal, cat, ListingOptions{
		PageSize:              c.cfg.PageSize,
		MaxPages:              c.cfg.MaxPagesPerCategory,
		PageDelay:             c.cfg.PageDelay,
		IsGov:                 c.cfg.IsGov,
		IsProvince:            c.cfg.IsProvince,
		ExcludeDistrictPrefix: c.cfg.ExcludeDistrictPrefix,
	})
	if len(items) == 0 {
		log.Info("no articles listed", zap.String("category", cat.Name))
		return
	}

	if c.cfg.MaxArticlesPerCategory > 0 && len(items) > c.cfg.MaxArticlesPerCategory {
		log.Info("limiting detail processing",
			zap.String("category", cat.Name),
			zap.Int("listed", len(items)),
			zap.Int("limit", c.cfg.MaxArticlesPerCategory),
		)
		items = items[:c.cfg.MaxArticlesPerCategory]
	}
	stats.ArticlesConsidered += len(items)

	for _, item := range items {
		if item.ArticleID == "" {
			log.Warn("skipping list item without article id", zap.String("category", cat.Name))
			continue
		}

		detail, err := c.portal.FetchDetail(ctx, item.ArticleID)
		if err != nil {
			log.Warn("detail fetch failed",
				zap.String("article_id", item.ArticleID),
				zap.Error(err),
			)
			detail = nil
		} else {
			stats.DetailsFetched++
		}

		merged := Merge(item, detail)
		merged.CategoryID = cat.ID
		merged.CrawlTimestamp = time.Now().Unix()

		if err := c.store.UpsertArticle(ctx, merged); err != nil {
			log.Error("article upsert failed",
				zap.String("article_id", item.ArticleID),
				zap.Error(err),
			)
			continue
		}
		stats.ArticlesSaved++

		if detail != nil && !sleep(ctx, c.cfg.DetailDelay) {
			return
		}
	}
}
