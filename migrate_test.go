package mokjang_sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMemDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestMigrationStatus(t *testing.T) {
	db := newMemDB(t)

	before, err := MigrationStatus(db)
	require.NoError(t, err)
	require.Len(t, before, len(Models()))
	for _, s := range before {
		assert.False(t, s.Exists, s.Table)
	}

	require.NoError(t, Migrate(db))
	after, err := MigrationStatus(db)
	require.NoError(t, err)
	for _, s := range after {
		assert.True(t, s.Exists, s.Table)
	}
}

func TestTableSchema(t *testing.T) {
	db := newMemDB(t)
	require.NoError(t, Migrate(db))

	cols, err := TableSchema(db, "mj_meeting")
	require.NoError(t, err)
	byName := map[string]ColumnInfo{}
	for _, c := range cols {
		byName[c.Column] = c
	}
	require.Contains(t, byName, "id")
	assert.True(t, byName["id"].PrimaryKey)
	require.Contains(t, byName, "host_id")
	assert.True(t, byName["host_id"].InDB)
	assert.NotEmpty(t, byName["host_id"].SQLType)

	_, err = TableSchema(db, "im_room")
	assert.Error(t, err)
}
