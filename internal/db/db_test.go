package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/staybook/staybook-api/internal/db"
	"github.com/staybook/staybook-api/internal/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "app.db")

	database, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer database.Close()

	assert.FileExists(t, path)
}

func TestMigrationsCreateTables(t *testing.T) {
	database := dbtest.New(t)

	for _, table := range []string{"users", "listings", "bookings"} {
		var name string
		err := database.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	version, err := db.MigrationVersion(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	database := dbtest.New(t)

	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))
}

func TestMigrateDown(t *testing.T) {
	database := dbtest.New(t)

	require.NoError(t, db.MigrateDown(database.DB, "sqlite"))

	version, err := db.MigrationVersion(database.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var count int
	err = database.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'bookings'`)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCheck(t *testing.T) {
	database := dbtest.New(t)

	_, err := database.Exec(`INSERT INTO users (id, phone_number, created_at) VALUES ($1, $2, CURRENT_TIMESTAMP)`, "u-1", "5551234567")
	require.NoError(t, err)

	health, err := db.Check(context.Background(), database)
	require.NoError(t, err)
	assert.Equal(t, 1, health.Users)
	assert.Equal(t, "sqlite", health.Driver)
}
