package portal

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

const treePath = "/admin/category/home/categoryTreeFind"

// TreeNode is one node of the decoded category tree. The walk over the
// tree lives in the crawler package; this type is the decode boundary.
type TreeNode struct {
	ID       *int64     `json:"id"`
	Name     string     `json:"name"`
	Code     string     `json:"code"`
	ParentID *int64     `json:"parentId"`
	Children []TreeNode `json:"children"`
}

// FetchCategoryTree fetches the full category tree for the given scope.
// A payload without the expected result.data array yields a DecodeError.
func (c *Client) FetchCategoryTree(ctx context.Context, parentID, siteID int64) ([]TreeNode, error) {
	query := url.Values{
		"parentId": {strconv.FormatInt(parentID, 10)},
		"siteId":   {strconv.FormatInt(siteID, 10)},
	}

	var env envelope
	if err := c.getJSON(ctx, treePath, query, c.opts.Timeout, &env); err != nil {
		return nil, err
	}
	if err := env.appError(); err != nil {
		return nil, err
	}
	if env.Result == nil {
		return nil, &DecodeError{Err: errMissingResult}
	}

	var result struct {
		Data []TreeNode `json:"data"`
	}
	if err := json.Unmarshal(*env.Result, &result); err != nil {
		return nil, &DecodeError{BodyPrefix: prefix(*env.Result), Err: err}
	}
	if result.Data == nil {
		return nil, &DecodeError{BodyPrefix: prefix(*env.Result), Err: errMissingResult}
	}
	return result.Data, nil
}
