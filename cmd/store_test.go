package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procwatch/procurement-cli/internal/config"
	"github.com/procwatch/procurement-cli/internal/store"
)

func TestInitStoreSQLite(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })

	cfg = config.Default()
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "cmd.db")

	st, err := initStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	assert.IsType(t, &store.SQLiteStore{}, st)
	require.NoError(t, st.Migrate(context.Background()))
}

func TestInitStoreUnknownDriver(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })

	cfg = config.Default()
	cfg.Store.Driver = "oracle"

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}
