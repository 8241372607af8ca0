// Package crawler drives the ingestion pipeline: category tree
// extraction, paginated listing traversal, per-article detail
// enrichment, merge, and idempotent persistence.
package crawler

import (
	"strings"

	"go.uber.org/zap"

	"github.com/procwatch/procurement-cli/internal/model"
	"github.com/procwatch/procurement-cli/internal/portal"
)

// ExtractCategories walks the decoded category tree depth-first and
// returns, in tree order, every node whose code carries the given
// prefix. Unnamed nodes are skipped entirely; non-matching nodes still
// contribute their name to the materialized path of matching
// descendants.
func ExtractCategories(nodes []portal.TreeNode, codePrefix string) []model.Category {
	var out []model.Category

	var walk func(nodes []portal.TreeNode, path []string)
	walk = func(nodes []portal.TreeNode, path []string) {
		for _, node := range nodes {
			if node.Name == "" {
				zap.L().Debug("skipping unnamed category node", zap.String("code", node.Code))
				continue
			}
			nodePath := append(path, node.Name)

			if node.Code != "" && strings.HasPrefix(node.Code, codePrefix) {
				out = append(out, model.Category{
					Name:           node.Name,
					CategoryCode:   node.Code,
					PathName:       "/" + strings.Join(nodePath, "/"),
					SourceID:       node.ID,
					ParentSourceID: node.ParentID,
				})
			}

			// Matches may nest, so recurse regardless.
			if len(node.Children) > 0 {
				walk(node.Children, nodePath)
			}
		}
	}
	walk(nodes, nil)

	return out
}
