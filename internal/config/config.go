// Package config loads application configuration from config.yaml, the
// environment (PROCURE_ prefix), and defaults, and initializes the
// global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Portal PortalConfig `yaml:"portal" mapstructure:"portal"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Crawl  CrawlConfig  `yaml:"crawl" mapstructure:"crawl"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PortalConfig configures the upstream portal client and request pacing.
type PortalConfig struct {
	BaseURL               string   `yaml:"base_url" mapstructure:"base_url"`
	ParentID              int64    `yaml:"parent_id" mapstructure:"parent_id"`
	SiteID                int64    `yaml:"site_id" mapstructure:"site_id"`
	CodePrefix            string   `yaml:"code_prefix" mapstructure:"code_prefix"`
	PageSize              int      `yaml:"page_size" mapstructure:"page_size"`
	TimeoutSecs           int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ListingTimeoutSecs    int      `yaml:"listing_timeout_secs" mapstructure:"listing_timeout_secs"`
	PageDelayMs           int      `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	DetailDelayMs         int      `yaml:"detail_delay_ms" mapstructure:"detail_delay_ms"`
	RateLimit             float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	UserAgent             string   `yaml:"user_agent" mapstructure:"user_agent"`
	IsGov                 bool     `yaml:"is_gov" mapstructure:"is_gov"`
	IsProvince            bool     `yaml:"is_province" mapstructure:"is_province"`
	ExcludeDistrictPrefix []string `yaml:"exclude_district_prefix" mapstructure:"exclude_district_prefix"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional Postgres connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// CrawlConfig holds the static crawl limits. Zero means unlimited.
type CrawlConfig struct {
	MaxCategories          int `yaml:"max_categories" mapstructure:"max_categories"`
	MaxPagesPerCategory    int `yaml:"max_pages_per_category" mapstructure:"max_pages_per_category"`
	MaxArticlesPerCategory int `yaml:"max_articles_per_category" mapstructure:"max_articles_per_category"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROCURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Defaults returns the default configuration values keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"portal.base_url":                "https://zfcg.czt.zj.gov.cn",
		"portal.parent_id":               600007,
		"portal.site_id":                 110,
		"portal.code_prefix":             "110-",
		"portal.page_size":               15,
		"portal.timeout_secs":            10,
		"portal.listing_timeout_secs":    20,
		"portal.page_delay_ms":           1000,
		"portal.detail_delay_ms":         500,
		"portal.rate_limit":              5.0,
		"portal.user_agent":              "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"portal.is_gov":                  true,
		"portal.is_province":             true,
		"portal.exclude_district_prefix": []string{"90", "006011"},
		"store.driver":                   "sqlite",
		"store.database_url":             "procurement_data.db",
		"crawl.max_categories":           0,
		"crawl.max_pages_per_category":   0,
		"crawl.max_articles_per_category": 0,
		"server.port":                    5000,
		"log.level":                      "info",
		"log.format":                     "json",
	}
}

// Default returns the configuration with every key at its default value.
func Default() *Config {
	v := viper.New()
	for key, val := range Defaults() {
		v.SetDefault(key, val)
	}
	var cfg Config
	// Defaults() only contains decodable values.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
