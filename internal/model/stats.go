package model

// CrawlStats aggregates the run-level counters the orchestrator reports
// at the end of a crawl.
type CrawlStats struct {
	CategoriesProcessed int `json:"categories_processed"`
	ArticlesConsidered  int `json:"articles_considered"`
	DetailsFetched      int `json:"details_fetched"`
	ArticlesSaved       int `json:"articles_saved"`
}
