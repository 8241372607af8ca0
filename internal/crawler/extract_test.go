package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procwatch/procurement-cli/internal/portal"
)

func i64(v int64) *int64 { return &v }

func TestExtractCategories_PathConstruction(t *testing.T) {
	tree := []portal.TreeNode{
		{ID: i64(1), Name: "Root", Code: "600007", Children: []portal.TreeNode{
			{ID: i64(2), Name: "A", Code: "600008", ParentID: i64(1), Children: []portal.TreeNode{
				{ID: i64(3), Name: "B", Code: "110-X", ParentID: i64(2)},
				{ID: i64(4), Name: "C", Code: "200-Y", ParentID: i64(2)},
			}},
		}},
	}

	cats := ExtractCategories(tree, "110-")
	require.Len(t, cats, 1)
	assert.Equal(t, "B", cats[0].Name)
	assert.Equal(t, "110-X", cats[0].CategoryCode)
	assert.Equal(t, "/Root/A/B", cats[0].PathName)
	require.NotNil(t, cats[0].SourceID)
	assert.Equal(t, int64(3), *cats[0].SourceID)
	require.NotNil(t, cats[0].ParentSourceID)
	assert.Equal(t, int64(2), *cats[0].ParentSourceID)
}

func TestExtractCategories_NestedMatches(t *testing.T) {
	tree := []portal.TreeNode{
		{Name: "Outer", Code: "110-1", Children: []portal.TreeNode{
			{Name: "Inner", Code: "110-2"},
		}},
	}

	cats := ExtractCategories(tree, "110-")
	require.Len(t, cats, 2)
	assert.Equal(t, "/Outer", cats[0].PathName)
	assert.Equal(t, "/Outer/Inner", cats[1].PathName)
}

func TestExtractCategories_SkipsUnnamedNodes(t *testing.T) {
	tree := []portal.TreeNode{
		{Name: "", Code: "110-1", Children: []portal.TreeNode{
			// Unreachable: parent skipped entirely.
			{Name: "Child", Code: "110-2"},
		}},
		{Name: "Kept", Code: "110-3"},
	}

	cats := ExtractCategories(tree, "110-")
	require.Len(t, cats, 1)
	assert.Equal(t, "Kept", cats[0].Name)
}

func TestExtractCategories_TreeOrder(t *testing.T) {
	tree := []portal.TreeNode{
		{Name: "Z", Code: "110-9"},
		{Name: "A", Code: "110-1"},
	}

	cats := ExtractCategories(tree, "110-")
	require.Len(t, cats, 2)
	assert.Equal(t, "Z", cats[0].Name)
	assert.Equal(t, "A", cats[1].Name)
}

func TestExtractCategories_Empty(t *testing.T) {
	assert.Empty(t, ExtractCategories(nil, "110-"))
	assert.Empty(t, ExtractCategories([]portal.TreeNode{{Name: "X", Code: "200-1"}}, "110-"))
}
