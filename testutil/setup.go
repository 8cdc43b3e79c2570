package testutil

import (
	"strings"
	"testing"

	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/config"
	dbadapter "github.com/kasuganosora/osupanel/db"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/privilege"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate.
// It requires no external services; each call gets a fresh database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{
		Mode:       dbadapter.ModeSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupTestCache creates LocalCache and LocalPubSub (no Redis required).
func SetupTestCache(t *testing.T) (cache.Cache, cache.PubSub) {
	t.Helper()
	b, err := cache.Open(config.CacheConfig{}) // empty RedisAddr → local backend
	require.NoError(t, err, "SetupTestCache: Open")
	t.Cleanup(func() { _ = b.Close() })
	return b.Cache, b.PubSub
}

// CreateUser inserts an account with the given name and privilege mask.
// The password hash is a placeholder; auth tests set a real one.
func CreateUser(t *testing.T, db *gorm.DB, username string, mask privilege.Privileges) *model.User {
	t.Helper()
	u := &model.User{
		Username:     username,
		UsernameSafe: strings.ReplaceAll(strings.ToLower(strings.TrimSpace(username)), " ", "_"),
		Email:        strings.ToLower(username) + "@example.com",
		PasswordMD5:  "x",
		Privileges:   mask,
		Country:      "JP",
	}
	require.NoError(t, db.Create(u).Error, "CreateUser")
	return u
}
