package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/procwatch/procurement-cli/internal/crawler"
	"github.com/procwatch/procurement-cli/internal/portal"
)

var (
	crawlMaxCategories int
	crawlMaxPages      int
	crawlMaxArticles   int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run one full crawl of the portal",
	Long:  "Syncs the category tree, walks every category's listing pages, enriches each article with a detail fetch, and upserts the merged records. Re-runs converge to the same stored state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		client := portal.NewClient(portal.Options{
			BaseURL:        cfg.Portal.BaseURL,
			UserAgent:      cfg.Portal.UserAgent,
			Timeout:        time.Duration(cfg.Portal.TimeoutSecs) * time.Second,
			ListingTimeout: time.Duration(cfg.Portal.ListingTimeoutSecs) * time.Second,
			RateLimit:      rate.Limit(cfg.Portal.RateLimit),
		})

		crawlCfg := crawler.Config{
			ParentID:               cfg.Portal.ParentID,
			SiteID:                 cfg.Portal.SiteID,
			CodePrefix:             cfg.Portal.CodePrefix,
			PageSize:               cfg.Portal.PageSize,
			IsGov:                  cfg.Portal.IsGov,
			IsProvince:             cfg.Portal.IsProvince,
			ExcludeDistrictPrefix:  cfg.Portal.ExcludeDistrictPrefix,
			MaxCategories:          cfg.Crawl.MaxCategories,
			MaxPagesPerCategory:    cfg.Crawl.MaxPagesPerCategory,
			MaxArticlesPerCategory: cfg.Crawl.MaxArticlesPerCategory,
			PageDelay:              time.Duration(cfg.Portal.PageDelayMs) * time.Millisecond,
			DetailDelay:            time.Duration(cfg.Portal.DetailDelayMs) * time.Millisecond,
		}
		if cmd.Flags().Changed("max-categories") {
			crawlCfg.MaxCategories = crawlMaxCategories
		}
		if cmd.Flags().Changed("max-pages") {
			crawlCfg.MaxPagesPerCategory = crawlMaxPages
		}
		if cmd.Flags().Changed("max-articles") {
			crawlCfg.MaxArticlesPerCategory = crawlMaxArticles
		}

		stats, err := crawler.New(client, st, crawlCfg).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "crawl run")
		}

		zap.L().Info("crawl summary",
			zap.Int("categories_processed", stats.CategoriesProcessed),
			zap.Int("articles_considered", stats.ArticlesConsidered),
			zap.Int("details_fetched", stats.DetailsFetched),
			zap.Int("articles_saved", stats.ArticlesSaved),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	crawlCmd.Flags().IntVar(&crawlMaxCategories, "max-categories", 0, "category cap, 0 = unlimited")
	crawlCmd.Flags().IntVar(&crawlMaxPages, "max-pages", 0, "per-category page cap, 0 = unlimited")
	crawlCmd.Flags().IntVar(&crawlMaxArticles, "max-articles", 0, "per-category article cap, 0 = unlimited")
	rootCmd.AddCommand(crawlCmd)
}
