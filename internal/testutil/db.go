package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sitecraft.dev/forumservice/internal/entity"
)

// NewTestDB opens an isolated in-memory sqlite database with the full
// schema migrated. Connection pool is pinned to one so every statement
// sees the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Category{},
		&entity.Thread{},
		&entity.Reply{},
		&entity.Vote{},
		&entity.ModerationLog{},
	))

	return db
}
