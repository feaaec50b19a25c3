package iocache

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cache.db")
}

func TestCacheStoreSQLite(t *testing.T) {
	store, err := NewCacheStore(schema.SQLiteBackend, tempDBPath(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	t.Run("miss", func(t *testing.T) {
		_, _, _, err := store.Get("absent")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set("k1", []byte(`{"dps":{}}`), 1, 100))
		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"dps":{}}`), value)
		assert.Equal(t, 1, version)
		assert.Equal(t, int64(100), ts)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, store.Set("k1", []byte("v2"), 2, 200))
		value, version, ts, err := store.Get("k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), value)
		assert.Equal(t, 2, version)
		assert.Equal(t, int64(200), ts)
	})

	t.Run("status", func(t *testing.T) {
		require.NoError(t, store.Set("k2", []byte("v"), 1, 50))
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, time.Unix(200, 0), status.LastEntryTime)
		assert.Equal(t, time.Unix(50, 0), status.OldestEntryTime)
		assert.Positive(t, status.TableSizeBytes)
	})
}

func TestCacheStoreReopen(t *testing.T) {
	path := tempDBPath(t)
	store, err := NewCacheStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", []byte("v"), 1, 1))
	require.NoError(t, store.Close())

	reopened, err := NewCacheStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	value, _, _, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}

func TestCacheStoreNone(t *testing.T) {
	store, err := NewCacheStore(schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStoreUnsupported(t *testing.T) {
	_, err := NewCacheStore(schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}

func TestMigrateCache(t *testing.T) {
	path := tempDBPath(t)

	up, err := MigrateCache(schema.SQLiteBackend, path, -1)
	require.NoError(t, err)
	assert.True(t, up.Changed)
	assert.Equal(t, uint(1), up.To)

	again, err := MigrateCache(schema.SQLiteBackend, path, -1)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, uint(1), again.To)

	down, err := MigrateCache(schema.SQLiteBackend, path, 0)
	require.NoError(t, err)
	assert.True(t, down.Changed)
	assert.Equal(t, uint(1), down.From)

	_, err = MigrateCache(schema.NoneBackend, "", -1)
	assert.Error(t, err)
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`engine_cache`", quoteTableName("engine_cache", schema.MySQLBackend))
	assert.Equal(t, `"engine_cache"`, quoteTableName("engine_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"engine_cache"`, quoteTableName("engine_cache", schema.SQLiteBackend))
}

func TestInitAndCloseStores(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}

		require.NoError(t, InitStores(schema.SQLiteBackend, tempDBPath(t)))
		require.NoError(t, InitStores(schema.SQLiteBackend, tempDBPath(t)))
		assert.NotNil(t, Manager.GetEngineStore())
		CloseStores()
		CloseStores()
	})

	t.Run("disabled", func(t *testing.T) {
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}

		require.NoError(t, InitStores("", ""))
		assert.Nil(t, Manager.GetEngineStore())
		CloseStores()
	})
}

func TestClearCache(t *testing.T) {
	path := tempDBPath(t)
	store, err := NewCacheStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""), "missing file is fine")
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.DatabaseBackend("oracle"), "", ""))
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "sqlite", Connected: true, TableSizeBytes: 4096})
	assert.Contains(t, buf.String(), "Total Entries: 0")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes")
	assert.NotContains(t, buf.String(), "Last Entry")

	buf.Reset()
	PrintMigrationResult(&buf, MigrationResult{From: 0, To: 1, Changed: true})
	assert.Equal(t, "Successfully migrated from version 0 to version 1\n", buf.String())
}
