package model

// ListItem is an article as it appears in one page of a category listing.
// Every field except the external ID may be absent upstream, so they are
// pointers: nil means "the listing did not carry this field".
type ListItem struct {
	ArticleID    string   `json:"articleId"`
	Title        *string  `json:"title"`
	PublishDate  *int64   `json:"publishDate"`
	DistrictName *string  `json:"districtName"`
	ProjectName  *string  `json:"projectName"`
	PurchaseName *string  `json:"purchaseName"`
	BudgetPrice  *float64 `json:"budgetPrice"`
}

// Detail is the per-article enrichment record fetched from the detail
// endpoint. It repeats the listing fields (the detail endpoint may carry
// fresher values) and adds the enrichment-only fields.
type Detail struct {
	ArticleID           string   `json:"articleId"`
	Title               *string  `json:"title"`
	Author              *string  `json:"author"`
	PublishDate         *int64   `json:"publishDate"`
	DistrictName        *string  `json:"districtName"`
	ProjectName         *string  `json:"projectName"`
	PurchaseName        *string  `json:"purchaseName"`
	BudgetPrice         *float64 `json:"budgetPrice"`
	ProcurementMethod   *string  `json:"procurementMethod"`
	SupplierName        *string  `json:"supplierName"`
	TotalContractAmount *float64 `json:"totalContractAmount"`
	BidOpeningTime      *int64   `json:"bidOpeningTime"`
	HTMLContent         *string  `json:"htmlContent"`
	TextContent         *string  `json:"textContent"`
	AttachmentCount     *int64   `json:"attachmentCount"`
}

// Article is the merged list+detail record as persisted. ArticleAPIID is
// the upstream natural key; CategoryID references the owning category's
// local row.
type Article struct {
	ID                  int64    `json:"id"`
	ArticleAPIID        string   `json:"article_api_id"`
	CategoryID          int64    `json:"category_id"`
	Title               *string  `json:"title"`
	Author              *string  `json:"author"`
	PublishDate         *int64   `json:"publish_date"`
	DistrictName        *string  `json:"district_name"`
	ProjectName         *string  `json:"project_name"`
	PurchaseName        *string  `json:"purchase_name"`
	BudgetPrice         *float64 `json:"budget_price"`
	ProcurementMethod   *string  `json:"procurement_method"`
	SupplierName        *string  `json:"supplier_name"`
	TotalContractAmount *float64 `json:"total_contract_amount"`
	BidOpeningTime      *int64   `json:"bid_opening_time"`
	HTMLContent         *string  `json:"html_content,omitempty"`
	TextContent         *string  `json:"text_content,omitempty"`
	AttachmentCount     *int64   `json:"attachment_count"`
	CrawlTimestamp      int64    `json:"crawl_timestamp"`
}
