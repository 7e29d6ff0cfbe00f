// Package modeltest opens throwaway sqlite stores for tests.
package modeltest

import (
	"context"
	"testing"

	"approcciala/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, model.InstallDB(db))
	return db
}

func NewStore(t testing.TB) *model.Store {
	t.Helper()
	return model.NewStore(NewDB(t))
}

// NewUser inserts an account (and through its hook, a profile).
func NewUser(t testing.TB, store *model.Store, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}
