package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	s, err := NewStore(db)
	require.NoError(t, err)
	return s
}

func TestLanguage_DefaultAndSet(t *testing.T) {
	s := newStore(t)

	lang, err := s.Language()
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, lang)

	require.NoError(t, s.SetLanguage("en"))
	require.NoError(t, s.SetLanguage("zh"))
	lang, err = s.Language()
	require.NoError(t, err)
	assert.Equal(t, "zh", lang)

	assert.Error(t, s.SetLanguage("  "))
}

func TestRecentLocations(t *testing.T) {
	s := newStore(t)

	locs, err := s.RecentLocations()
	require.NoError(t, err)
	assert.Empty(t, locs)

	for _, l := range []string{"Cafe A", "  Church  ", "", "Park", "Cafe A"} {
		require.NoError(t, s.AddRecentLocation(l))
	}
	locs, err = s.RecentLocations()
	require.NoError(t, err)
	assert.Equal(t, []string{"Cafe A", "Park", "Church"}, locs)

	for _, l := range []string{"L1", "L2", "L3", "L4"} {
		require.NoError(t, s.AddRecentLocation(l))
	}
	locs, err = s.RecentLocations()
	require.NoError(t, err)
	assert.Equal(t, []string{"L4", "L3", "L2", "L1", "Cafe A"}, locs)
}

func TestPushRecent(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, pushRecent([]string{"a", "b", "c"}, "b", 5))
	assert.Equal(t, []string{"x", "a"}, pushRecent([]string{"a", "b", "c"}, "x", 2))
}
