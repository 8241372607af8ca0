package crawler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/procwatch/procurement-cli/internal/model"
	"github.com/procwatch/procurement-cli/internal/portal"
)

// ListingOptions configures a paginated traversal of one category.
type ListingOptions struct {
	PageSize              int
	MaxPages              int // 0 = unlimited
	PageDelay             time.Duration
	IsGov                 bool
	IsProvince            bool
	ExcludeDistrictPrefix []string
}

// CollectListings fetches every page of a category listing until one of
// the termination conditions holds: upstream reports failure, the item
// container is missing, a page comes back empty, the page cap is hit, or
// the reported total page count is reached. A transport or decode error
// aborts the traversal; items accumulated so far are still returned.
func CollectListings(ctx context.Context, src ListingSource, cat model.Category, opts ListingOptions) []model.ListItem {
	var items []model.ListItem
	pageNo := 1

	log := zap.L().With(
		zap.String("category", cat.Name),
		zap.String("category_code", cat.CategoryCode),
	)

	for {
		page, err := src.FetchListingPage(ctx, portal.ListingRequest{
			CategoryCode:          cat.CategoryCode,
			PathName:              cat.PathName,
			PageNo:                pageNo,
			PageSize:              opts.PageSize,
			IsGov:                 opts.IsGov,
			IsProvince:            opts.IsProvince,
			ExcludeDistrictPrefix: opts.ExcludeDistrictPrefix,
		})
		if err != nil {
			var appErr *portal.ApplicationError
			var decErr *portal.DecodeError
			switch {
			case errors.As(err, &appErr):
				log.Warn("listing page rejected by upstream",
					zap.Int("page", pageNo),
					zap.String("upstream_error", appErr.Message),
				)
			case errors.As(err, &decErr):
				log.Error("listing page has unexpected shape",
					zap.Int("page", pageNo),
					zap.Error(err),
				)
			default:
				log.Error("listing page fetch failed",
					zap.Int("page", pageNo),
					zap.Error(err),
				)
			}
			return items
		}

		if len(page.Items) == 0 {
			log.Info("listing exhausted", zap.Int("page", pageNo), zap.Int("items", len(items)))
			return items
		}
		items = append(items, page.Items...)

		log.Info("listing page fetched",
			zap.Int("page", page.Current),
			zap.Int("pages", page.Pages),
			zap.Int("page_items", len(page.Items)),
			zap.Int("total", page.Total),
		)

		if opts.MaxPages > 0 && page.Current >= opts.MaxPages {
			log.Info("listing page cap reached", zap.Int("max_pages", opts.MaxPages))
			return items
		}
		if page.Current >= page.Pages {
			return items
		}

		pageNo = page.Current + 1
		if !sleep(ctx, opts.PageDelay) {
			return items
		}
	}
}

// sleep pauses for d, returning false if the context ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
