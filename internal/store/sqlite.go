package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/procwatch/procurement-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode and foreign key enforcement.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS categories (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL,
	category_code    TEXT NOT NULL UNIQUE,
	path_name        TEXT,
	source_id        INTEGER,
	parent_source_id INTEGER
);

CREATE TABLE IF NOT EXISTS articles (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	article_api_id        TEXT NOT NULL UNIQUE,
	category_id           INTEGER NOT NULL,
	title                 TEXT,
	author                TEXT,
	publish_date          INTEGER,
	district_name         TEXT,
	project_name          TEXT,
	purchase_name         TEXT,
	budget_price          REAL,
	procurement_method    TEXT,
	supplier_name         TEXT,
	total_contract_amount REAL,
	bid_opening_time      INTEGER,
	html_content          TEXT,
	text_content          TEXT,
	attachment_count      INTEGER,
	crawl_timestamp       INTEGER NOT NULL,
	FOREIGN KEY (category_id) REFERENCES categories (id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_cat_category_code ON categories(category_code);
CREATE INDEX IF NOT EXISTS idx_cat_name ON categories(name);
CREATE UNIQUE INDEX IF NOT EXISTS idx_art_article_api_id ON articles(article_api_id);
CREATE INDEX IF NOT EXISTS idx_art_category_id ON articles(category_id);
CREATE INDEX IF NOT EXISTS idx_art_title ON articles(title);
CREATE INDEX IF NOT EXISTS idx_art_publish_date ON articles(publish_date);
CREATE INDEX IF NOT EXISTS idx_art_district_name ON articles(district_name);
CREATE INDEX IF NOT EXISTS idx_art_project_name ON articles(project_name);
CREATE INDEX IF NOT EXISTS idx_art_purchase_name ON articles(purchase_name);
CREATE INDEX IF NOT EXISTS idx_art_procurement_method ON articles(procurement_method);
CREATE INDEX IF NOT EXISTS idx_art_supplier_name ON articles(supplier_name);
CREATE INDEX IF NOT EXISTS idx_art_budget_price ON articles(budget_price);
CREATE INDEX IF NOT EXISTS idx_art_total_contract_amount ON articles(total_contract_amount);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCategory(ctx context.Context, cat model.Category) (*model.Category, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, category_code, path_name, source_id, parent_source_id)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(category_code) DO NOTHING`,
		cat.Name, cat.CategoryCode, cat.PathName, cat.SourceID, cat.ParentSourceID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert category %s", cat.CategoryCode)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category_code, path_name, source_id, parent_source_id
		 FROM categories WHERE category_code = ?`,
		cat.CategoryCode,
	)
	stored, err := scanCategory(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: reload category %s", cat.CategoryCode)
	}
	return stored, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, category_code, path_name, source_id, parent_source_id
		 FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list categories")
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category")
		}
		cats = append(cats, *c)
	}
	return cats, eris.Wrap(rows.Err(), "sqlite: list categories iterate")
}

const sqliteArticleUpsert = `
INSERT INTO articles (
	article_api_id, category_id, title, author, publish_date,
	district_name, project_name, purchase_name, budget_price,
	procurement_method, supplier_name, total_contract_amount,
	bid_opening_time, html_content, text_content,
	attachment_count, crawl_timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(article_api_id) DO UPDATE SET
	category_id           = excluded.category_id,
	title                 = excluded.title,
	publish_date          = excluded.publish_date,
	district_name         = excluded.district_name,
	project_name          = excluded.project_name,
	purchase_name         = excluded.purchase_name,
	budget_price          = excluded.budget_price,
	author                = COALESCE(excluded.author, articles.author),
	procurement_method    = COALESCE(excluded.procurement_method, articles.procurement_method),
	supplier_name         = COALESCE(excluded.supplier_name, articles.supplier_name),
	total_contract_amount = COALESCE(excluded.total_contract_amount, articles.total_contract_amount),
	bid_opening_time      = COALESCE(excluded.bid_opening_time, articles.bid_opening_time),
	html_content          = COALESCE(excluded.html_content, articles.html_content),
	text_content          = COALESCE(excluded.text_content, articles.text_content),
	attachment_count      = COALESCE(excluded.attachment_count, articles.attachment_count),
	crawl_timestamp       = excluded.crawl_timestamp
`

func (s *SQLiteStore) UpsertArticle(ctx context.Context, art model.Article) error {
	_, err := s.db.ExecContext(ctx, sqliteArticleUpsert,
		art.ArticleAPIID, art.CategoryID, art.Title, art.Author, art.PublishDate,
		art.DistrictName, art.ProjectName, art.PurchaseName, art.BudgetPrice,
		art.ProcurementMethod, art.SupplierName, art.TotalContractAmount,
		art.BidOpeningTime, art.HTMLContent, art.TextContent,
		art.AttachmentCount, art.CrawlTimestamp,
	)
	return eris.Wrapf(err, "sqlite: upsert article %s", art.ArticleAPIID)
}

func (s *SQLiteStore) GetArticle(ctx context.Context, articleAPIID string) (*model.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, article_api_id, category_id, title, author, publish_date,
		        district_name, project_name, purchase_name, budget_price,
		        procurement_method, supplier_name, total_contract_amount,
		        bid_opening_time, html_content, text_content,
		        attachment_count, crawl_timestamp
		 FROM articles WHERE article_api_id = ?`,
		articleAPIID,
	)

	var a model.Article
	err := scanArticle(row, &a)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get article %s", articleAPIID)
	}
	return &a, nil
}

func (s *SQLiteStore) SearchArticles(ctx context.Context, filter ArticleFilter) ([]model.Article, int, error) {
	searchSQL, searchArgs, countSQL, countArgs, err := buildArticleSearch(filter, sq.Question)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: build search")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count articles")
	}

	rows, err := s.db.QueryContext(ctx, searchSQL, searchArgs...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: search articles")
	}
	defer rows.Close()

	var arts []model.Article
	for rows.Next() {
		var a model.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan article")
		}
		arts = append(arts, a)
	}
	return arts, total, eris.Wrap(rows.Err(), "sqlite: search articles iterate")
}

func scanCategory(row scannable) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CategoryCode, &c.PathName, &c.SourceID, &c.ParentSourceID); err != nil {
		return nil, err
	}
	return &c, nil
}
