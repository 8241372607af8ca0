package portal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/procwatch/procurement-cli/internal/model"
)

const listingPath = "/portal/category"

// ListingRequest describes one page request against a category listing.
type ListingRequest struct {
	CategoryCode          string
	PathName              string
	PageNo                int
	PageSize              int
	IsGov                 bool
	IsProvince            bool
	ExcludeDistrictPrefix []string
}

// ListingPage is one decoded, normalized page of a category listing.
// Pages is always usable: when the server omits it, it is derived from
// Total and Size.
type ListingPage struct {
	Items   []model.ListItem
	Current int
	Total   int
	Size    int
	Pages   int
}

type listingBody struct {
	PageNo                int      `json:"pageNo"`
	PageSize              int      `json:"pageSize"`
	CategoryCode          string   `json:"categoryCode"`
	PathName              string   `json:"pathName,omitempty"`
	IsGov                 bool     `json:"isGov"`
	ExcludeDistrictPrefix []string `json:"excludeDistrictPrefix"`
	IsProvince            bool     `json:"isProvince"`
	Timestamp             int64    `json:"_t"`
}

// listingContainer mirrors result.data. The item array appears under
// "records" on newer portal versions and "data" on older ones; pointer
// slices distinguish "absent" from "empty".
type listingContainer struct {
	Records *[]model.ListItem `json:"records"`
	Data    *[]model.ListItem `json:"data"`
	Current int               `json:"current"`
	Total   int               `json:"total"`
	Size    int               `json:"size"`
	Pages   int               `json:"pages"`
}

// FetchListingPage requests one page of a category listing.
// An envelope with success=false yields an ApplicationError; a result
// without a recognizable item container yields a DecodeError.
func (c *Client) FetchListingPage(ctx context.Context, req ListingRequest) (*ListingPage, error) {
	body := listingBody{
		PageNo:                req.PageNo,
		PageSize:              req.PageSize,
		CategoryCode:          req.CategoryCode,
		PathName:              req.PathName,
		IsGov:                 req.IsGov,
		ExcludeDistrictPrefix: req.ExcludeDistrictPrefix,
		IsProvince:            req.IsProvince,
		Timestamp:             time.Now().UnixMilli(),
	}

	var env envelope
	if err := c.postJSON(ctx, listingPath, body, c.opts.ListingTimeout, &env); err != nil {
		return nil, err
	}
	if err := env.appError(); err != nil {
		return nil, err
	}
	if env.Result == nil {
		return nil, &DecodeError{Err: errMissingResult}
	}

	var result struct {
		Data *json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(*env.Result, &result); err != nil || result.Data == nil {
		return nil, &DecodeError{BodyPrefix: prefix(*env.Result), Err: errMissingResult}
	}

	var container listingContainer
	if err := json.Unmarshal(*result.Data, &container); err != nil {
		return nil, &DecodeError{BodyPrefix: prefix(*result.Data), Err: err}
	}

	items := container.Records
	if items == nil {
		items = container.Data
	}
	if items == nil {
		return nil, &DecodeError{BodyPrefix: prefix(*result.Data), Err: errMissingResult}
	}

	page := &ListingPage{
		Items:   *items,
		Current: container.Current,
		Total:   container.Total,
		Size:    container.Size,
		Pages:   container.Pages,
	}
	if page.Current == 0 {
		page.Current = req.PageNo
	}
	if page.Size == 0 {
		page.Size = req.PageSize
	}
	if page.Pages == 0 && page.Size > 0 {
		page.Pages = (page.Total + page.Size - 1) / page.Size
	}
	return page, nil
}
