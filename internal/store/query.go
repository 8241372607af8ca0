package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/procwatch/procurement-cli/internal/model"
)

// articleColumns is the column order used by both backends for article
// selects and scans.
var articleColumns = []string{
	"id", "article_api_id", "category_id", "title", "author",
	"publish_date", "district_name", "project_name", "purchase_name",
	"budget_price", "procurement_method", "supplier_name",
	"total_contract_amount", "bid_opening_time", "html_content",
	"text_content", "attachment_count", "crawl_timestamp",
}

// articleConditions translates an ArticleFilter into squirrel predicates
// shared by the search and count queries.
func articleConditions(f ArticleFilter) ([]sq.Sqlizer, error) {
	var conds []sq.Sqlizer

	like := func(col, keyword string) {
		conds = append(conds, sq.Expr("LOWER("+col+") LIKE LOWER(?)", "%"+keyword+"%"))
	}

	if f.Title != "" {
		like("title", f.Title)
	}
	if f.CategoryID != nil {
		conds = append(conds, sq.Eq{"category_id": *f.CategoryID})
	}
	if f.ProjectName != "" {
		like("project_name", f.ProjectName)
	}
	if f.PurchaseName != "" {
		like("purchase_name", f.PurchaseName)
	}
	if f.DistrictName != "" {
		like("district_name", f.DistrictName)
	}
	if f.SupplierName != "" {
		like("supplier_name", f.SupplierName)
	}
	if f.ProcurementMethod != "" {
		conds = append(conds, sq.Expr("LOWER(procurement_method) = LOWER(?)", f.ProcurementMethod))
	}

	dateCond := func(col, date string, endOfDay bool, op string) error {
		if date == "" {
			return nil
		}
		ms, err := dayMillis(date, endOfDay)
		if err != nil {
			return err
		}
		if op == ">=" {
			conds = append(conds, sq.GtOrEq{col: ms})
		} else {
			conds = append(conds, sq.LtOrEq{col: ms})
		}
		return nil
	}

	if err := dateCond("publish_date", f.PublishDateStart, false, ">="); err != nil {
		return nil, err
	}
	if err := dateCond("publish_date", f.PublishDateEnd, true, "<="); err != nil {
		return nil, err
	}
	if err := dateCond("bid_opening_time", f.BidOpeningStart, false, ">="); err != nil {
		return nil, err
	}
	if err := dateCond("bid_opening_time", f.BidOpeningEnd, true, "<="); err != nil {
		return nil, err
	}

	if f.BudgetMin != nil {
		conds = append(conds, sq.GtOrEq{"budget_price": *f.BudgetMin})
	}
	if f.BudgetMax != nil {
		conds = append(conds, sq.LtOrEq{"budget_price": *f.BudgetMax})
	}
	if f.ContractMin != nil {
		conds = append(conds, sq.GtOrEq{"total_contract_amount": *f.ContractMin})
	}
	if f.ContractMax != nil {
		conds = append(conds, sq.LtOrEq{"total_contract_amount": *f.ContractMax})
	}

	return conds, nil
}

// buildArticleSearch renders the paginated search query and the matching
// count query in the given placeholder format.
func buildArticleSearch(f ArticleFilter, format sq.PlaceholderFormat) (searchSQL string, searchArgs []any, countSQL string, countArgs []any, err error) {
	f.Normalize()

	conds, err := articleConditions(f)
	if err != nil {
		return "", nil, "", nil, err
	}

	search := sq.Select(articleColumns...).
		From("articles").
		OrderBy("publish_date DESC").
		Limit(uint64(f.PerPage)).
		Offset(uint64((f.Page - 1) * f.PerPage)).
		PlaceholderFormat(format)
	count := sq.Select("COUNT(*)").From("articles").PlaceholderFormat(format)

	for _, c := range conds {
		search = search.Where(c)
		count = count.Where(c)
	}

	searchSQL, searchArgs, err = search.ToSql()
	if err != nil {
		return "", nil, "", nil, err
	}
	countSQL, countArgs, err = count.ToSql()
	if err != nil {
		return "", nil, "", nil, err
	}
	return searchSQL, searchArgs, countSQL, countArgs, nil
}

// scannable is satisfied by both database/sql and pgx rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanArticle scans one row in articleColumns order.
func scanArticle(row scannable, a *model.Article) error {
	return row.Scan(
		&a.ID, &a.ArticleAPIID, &a.CategoryID, &a.Title, &a.Author,
		&a.PublishDate, &a.DistrictName, &a.ProjectName, &a.PurchaseName,
		&a.BudgetPrice, &a.ProcurementMethod, &a.SupplierName,
		&a.TotalContractAmount, &a.BidOpeningTime, &a.HTMLContent,
		&a.TextContent, &a.AttachmentCount, &a.CrawlTimestamp,
	)
}
