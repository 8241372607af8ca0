package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpsert(t *testing.T) {
	sql, err := BuildUpsert(UpsertConfig{
		Table:        "articles",
		Columns:      []string{"article_api_id", "title", "author"},
		ConflictKeys: []string{"article_api_id"},
		GuardCols:    []string{"author"},
	})
	require.NoError(t, err)

	assert.Contains(t, sql, `INSERT INTO "articles" ("article_api_id", "title", "author") VALUES ($1, $2, $3)`)
	assert.Contains(t, sql, `ON CONFLICT ("article_api_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"title" = EXCLUDED."title"`)
	assert.Contains(t, sql, `"author" = COALESCE(EXCLUDED."author", "articles"."author")`)
	// The conflict key itself is never part of the SET list.
	assert.NotContains(t, sql, `"article_api_id" = EXCLUDED`)
}

func TestBuildUpsert_SchemaQualifiedTable(t *testing.T) {
	sql, err := BuildUpsert(UpsertConfig{
		Table:        "public.articles",
		Columns:      []string{"id", "title"},
		ConflictKeys: []string{"id"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `INSERT INTO "public"."articles"`)
}

func TestBuildUpsert_Errors(t *testing.T) {
	_, err := BuildUpsert(UpsertConfig{Table: "t", ConflictKeys: []string{"id"}})
	require.Error(t, err)

	_, err = BuildUpsert(UpsertConfig{Table: "t", Columns: []string{"id"}})
	require.Error(t, err)

	// All columns are conflict keys: nothing left to update.
	_, err = BuildUpsert(UpsertConfig{
		Table:        "t",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
	})
	require.Error(t, err)
}
