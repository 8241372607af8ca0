// Package model holds the domain records shared by the portal client,
// the crawler, and the store.
package model

// Category is one node of the upstream procurement taxonomy that matched
// the tenant code prefix during tree extraction.
type Category struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CategoryCode   string `json:"category_code"`
	PathName       string `json:"path_name"`
	SourceID       *int64 `json:"source_id,omitempty"`
	ParentSourceID *int64 `json:"parent_source_id,omitempty"`
}
