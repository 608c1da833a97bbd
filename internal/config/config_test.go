package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MOKJANG_DATABASE_DRIVER", "SQLite")
	t.Setenv("MOKJANG_DATABASE_DSN", ":memory:")
	t.Setenv("MOKJANG_APP_PORT", "9000")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mokjang", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestLoad_YamlFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "app:\n  port: \"7000\"\n  debug: true\ndatabase:\n  driver: postgres\n  dsn: host=db user=mj\nredis:\n  addr: redis:6379\n  db: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.App.Port)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=mj", cfg.Database.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestDialector(t *testing.T) {
	for _, drv := range []string{"mysql", "postgres", "sqlite"} {
		d, err := DatabaseConfig{Driver: drv, DSN: "x"}.Dialector()
		require.NoError(t, err, drv)
		assert.Equal(t, drv, d.Name())
	}
	_, err := DatabaseConfig{Driver: "oracle", DSN: "x"}.Dialector()
	assert.Error(t, err)
	_, err = DatabaseConfig{Driver: "mysql"}.Dialector()
	assert.Error(t, err)
}

func TestOpenDB_Sqlite(t *testing.T) {
	db, err := OpenDB(DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, sqlDB.Ping())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MOKJANG_TEST_DOTENV=from-file\n"), 0o644))
	t.Setenv("MOKJANG_TEST_DOTENV", "")
	os.Unsetenv("MOKJANG_TEST_DOTENV")

	loaded := LoadDotEnv(dir)
	assert.Equal(t, []string{filepath.Join(dir, ".env")}, loaded)
	assert.Equal(t, "from-file", os.Getenv("MOKJANG_TEST_DOTENV"))
}
