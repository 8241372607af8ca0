package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig defines the parameters for an INSERT ... ON CONFLICT
// statement.
type UpsertConfig struct {
	Table        string   // target table
	Columns      []string // all columns being inserted
	ConflictKeys []string // columns forming the unique constraint
	GuardCols    []string // columns updated via COALESCE(EXCLUDED.col, table.col)
}

// BuildUpsert renders an INSERT ... ON CONFLICT DO UPDATE statement with
// $n placeholders. Non-conflict columns are overwritten from EXCLUDED;
// columns listed in GuardCols keep their stored value when the incoming
// value is NULL.
func BuildUpsert(cfg UpsertConfig) (string, error) {
	if len(cfg.Columns) == 0 {
		return "", eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return "", eris.New("db: upsert: no conflict keys specified")
	}

	conflictSet := make(map[string]bool, len(cfg.ConflictKeys))
	for _, k := range cfg.ConflictKeys {
		conflictSet[k] = true
	}
	guardSet := make(map[string]bool, len(cfg.GuardCols))
	for _, g := range cfg.GuardCols {
		guardSet[g] = true
	}

	placeholders := make([]string, len(cfg.Columns))
	for i := range cfg.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var setClauses []string
	for _, col := range cfg.Columns {
		if conflictSet[col] {
			continue
		}
		quoted := pgx.Identifier{col}.Sanitize()
		if guardSet[col] {
			setClauses = append(setClauses, fmt.Sprintf(
				"%s = COALESCE(EXCLUDED.%s, %s.%s)",
				quoted, quoted, sanitizeTable(cfg.Table), quoted,
			))
		} else {
			setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", quoted, quoted))
		}
	}
	if len(setClauses) == 0 {
		return "", eris.New("db: upsert: no updatable columns")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		sanitizeTable(cfg.Table),
		quoteAndJoin(cfg.Columns),
		strings.Join(placeholders, ", "),
		quoteAndJoin(cfg.ConflictKeys),
		strings.Join(setClauses, ", "),
	)
	return sql, nil
}

// sanitizeTable handles schema-qualified table names like "public.articles".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
