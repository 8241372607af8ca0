package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chtemp moves the test into an empty dir so no config.yaml is found.
func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://zfcg.czt.zj.gov.cn", cfg.Portal.BaseURL)
	assert.Equal(t, int64(600007), cfg.Portal.ParentID)
	assert.Equal(t, int64(110), cfg.Portal.SiteID)
	assert.Equal(t, "110-", cfg.Portal.CodePrefix)
	assert.Equal(t, 15, cfg.Portal.PageSize)
	assert.Equal(t, 10, cfg.Portal.TimeoutSecs)
	assert.Equal(t, 20, cfg.Portal.ListingTimeoutSecs)
	assert.Equal(t, 1000, cfg.Portal.PageDelayMs)
	assert.Equal(t, 500, cfg.Portal.DetailDelayMs)
	assert.True(t, cfg.Portal.IsGov)
	assert.True(t, cfg.Portal.IsProvince)
	assert.Equal(t, []string{"90", "006011"}, cfg.Portal.ExcludeDistrictPrefix)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "procurement_data.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 0, cfg.Crawl.MaxCategories)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
portal:
  page_size: 30
  code_prefix: "120-"
store:
  driver: postgres
  database_url: postgres://localhost/procurement
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Portal.PageSize)
	assert.Equal(t, "120-", cfg.Portal.CodePrefix)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, int64(600007), cfg.Portal.ParentID)
	assert.Equal(t, 1000, cfg.Portal.PageDelayMs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PROCURE_STORE_DRIVER", "postgres")
	t.Setenv("PROCURE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("PROCURE_SERVER_PORT", "3000")
	t.Setenv("PROCURE_CRAWL_MAX_CATEGORIES", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Crawl.MaxCategories)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 15, cfg.Portal.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
