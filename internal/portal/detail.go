package portal

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/procwatch/procurement-cli/internal/model"
)

const detailPath = "/portal/detail"

// wireDetail is the detail payload as sent by the portal. Older article
// types carry the HTML body under "content" instead of "htmlContent".
type wireDetail struct {
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
	Content             *string  `json:"content"`
	TextContent         *string  `json:"textContent"`
	AttachmentCount     *int64   `json:"attachmentCount"`
}

// FetchDetail fetches the enrichment record for one article. The payload
// lives under result.data on most article types and directly under
// result on the rest.
func (c *Client) FetchDetail(ctx context.Context, articleID string) (*model.Detail, error) {
	query := url.Values{
		"articleId": {articleID},
		"timestamp": {strconv.FormatInt(time.Now().UnixMilli(), 10)},
	}

	var env envelope
	if err := c.getJSON(ctx, detailPath, query, c.opts.Timeout, &env); err != nil {
		return nil, err
	}
	if err := env.appError(); err != nil {
		return nil, err
	}
	if env.Result == nil {
		return nil, &DecodeError{Err: errMissingResult}
	}

	payload := *env.Result
	var wrapped struct {
		Data *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Data != nil {
		payload = *wrapped.Data
	}

	var wire wireDetail
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, &DecodeError{BodyPrefix: prefix(payload), Err: err}
	}

	html := wire.HTMLContent
	if html == nil {
		html = wire.Content
	}

	return &model.Detail{
		ArticleID:           articleID,
		Title:               wire.Title,
		Author:              wire.Author,
		PublishDate:         wire.PublishDate,
		DistrictName:        wire.DistrictName,
		ProjectName:         wire.ProjectName,
		PurchaseName:        wire.PurchaseName,
		BudgetPrice:         wire.BudgetPrice,
		ProcurementMethod:   wire.ProcurementMethod,
		SupplierName:        wire.SupplierName,
		TotalContractAmount: wire.TotalContractAmount,
		BidOpeningTime:      wire.BidOpeningTime,
		HTMLContent:         html,
		TextContent:         wire.TextContent,
		AttachmentCount:     wire.AttachmentCount,
	}, nil
}
