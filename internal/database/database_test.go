package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/health-helper/internal/config"
	"github.com/vladimiradmaev/health-helper/internal/database/migrations"
)

func TestOpenSQLiteRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "test.db")
	db, err := Open(config.DBConfig{Driver: "sqlite", Path: path})
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("kv_entries"))
	assert.True(t, db.Migrator().HasTable(&User{}))

	var records []migrations.MigrationRecord
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)

	// second run is a no-op
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Find(&records).Error)
	assert.Len(t, records, 2)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestDefaultMigrationOrder(t *testing.T) {
	m, err := migrations.Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_create_kv_entries", "002_index_kv_entries_updated_at"}, m.IDs())
}
