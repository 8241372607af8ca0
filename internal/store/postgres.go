package store

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/procwatch/procurement-cli/internal/db"
	"github.com/procwatch/procurement-cli/internal/model"
)

// PostgresStore implements Store using a pgx pool.
type PostgresStore struct {
	pool          db.Pool
	articleUpsert string
}

// PoolTuning holds optional connection pool sizing.
type PoolTuning struct {
	MaxConns int32
	MinConns int32
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, tuning *PoolTuning) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if tuning != nil {
		if tuning.MaxConns > 0 {
			maxConns = tuning.MaxConns
		}
		if tuning.MinConns > 0 {
			minConns = tuning.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return NewPostgresWithPool(pool)
}

// NewPostgresWithPool wraps an existing pool. Tests pass a pgxmock pool.
func NewPostgresWithPool(pool db.Pool) (*PostgresStore, error) {
	upsert, err := db.BuildUpsert(db.UpsertConfig{
		Table: "articles",
		Columns: []string{
			"article_api_id", "category_id", "title", "author", "publish_date",
			"district_name", "project_name", "purchase_name", "budget_price",
			"procurement_method", "supplier_name", "total_contract_amount",
			"bid_opening_time", "html_content", "text_content",
			"attachment_count", "crawl_timestamp",
		},
		ConflictKeys: []string{"article_api_id"},
		GuardCols: []string{
			"author", "procurement_method", "supplier_name",
			"total_contract_amount", "bid_opening_time",
			"html_content", "text_content", "attachment_count",
		},
	})
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, articleUpsert: upsert}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS categories (
	id               BIGSERIAL PRIMARY KEY,
	name             TEXT NOT NULL,
	category_code    TEXT NOT NULL UNIQUE,
	path_name        TEXT,
	source_id        BIGINT,
	parent_source_id BIGINT
);

CREATE TABLE IF NOT EXISTS articles (
	id                    BIGSERIAL PRIMARY KEY,
	article_api_id        TEXT NOT NULL UNIQUE,
	category_id           BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	title                 TEXT,
	author                TEXT,
	publish_date          BIGINT,
	district_name         TEXT,
	project_name          TEXT,
	purchase_name         TEXT,
	budget_price          DOUBLE PRECISION,
	procurement_method    TEXT,
	supplier_name         TEXT,
	total_contract_amount DOUBLE PRECISION,
	bid_opening_time      BIGINT,
	html_content          TEXT,
	text_content          TEXT,
	attachment_count      INTEGER,
	crawl_timestamp       BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_cat_name ON categories(name);
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertCategory(ctx context.Context, cat model.Category) (*model.Category, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO categories (name, category_code, path_name, source_id, parent_source_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (category_code) DO NOTHING`,
		cat.Name, cat.CategoryCode, cat.PathName, cat.SourceID, cat.ParentSourceID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert category %s", cat.CategoryCode)
	}

	row := s.pool.QueryRow(ctx,
		`SELECT id, name, category_code, path_name, source_id, parent_source_id
		 FROM categories WHERE category_code = $1`,
		cat.CategoryCode,
	)
	stored, err := scanCategory(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: reload category %s", cat.CategoryCode)
	}
	return stored, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, category_code, path_name, source_id, parent_source_id
		 FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list categories")
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan category")
		}
		cats = append(cats, *c)
	}
	return cats, eris.Wrap(rows.Err(), "postgres: list categories iterate")
}

func (s *PostgresStore) UpsertArticle(ctx context.Context, art model.Article) error {
	_, err := s.pool.Exec(ctx, s.articleUpsert,
		art.ArticleAPIID, art.CategoryID, art.Title, art.Author, art.PublishDate,
		art.DistrictName, art.ProjectName, art.PurchaseName, art.BudgetPrice,
		art.ProcurementMethod, art.SupplierName, art.TotalContractAmount,
		art.BidOpeningTime, art.HTMLContent, art.TextContent,
		art.AttachmentCount, art.CrawlTimestamp,
	)
	return eris.Wrapf(err, "postgres: upsert article %s", art.ArticleAPIID)
}

func (s *PostgresStore) GetArticle(ctx context.Context, articleAPIID string) (*model.Article, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, article_api_id, category_id, title, author, publish_date,
		        district_name, project_name, purchase_name, budget_price,
		        procurement_method, supplier_name, total_contract_amount,
		        bid_opening_time, html_content, text_content,
		        attachment_count, crawl_timestamp
		 FROM articles WHERE article_api_id = $1`,
		articleAPIID,
	)

	var a model.Article
	err := scanArticle(row, &a)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get article %s", articleAPIID)
	}
	return &a, nil
}

func (s *PostgresStore) SearchArticles(ctx context.Context, filter ArticleFilter) ([]model.Article, int, error) {
	searchSQL, searchArgs, countSQL, countArgs, err := buildArticleSearch(filter, sq.Dollar)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: build search")
	}

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "postgres: count articles")
	}

	rows, err := s.pool.Query(ctx, searchSQL, searchArgs...)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: search articles")
	}
	defer rows.Close()

	var arts []model.Article
	for rows.Next() {
		var a model.Article
		if err := scanArticle(rows, &a); err != nil {
			return nil, 0, eris.Wrap(err, "postgres: scan article")
		}
		arts = append(arts, a)
	}
	return arts, total, eris.Wrap(rows.Err(), "postgres: search articles iterate")
}
