package mysql

import (
	"context"
	"testing"

	mysqlinfra "cafe-service/internal/infra/mysql"
	"cafe-service/internal/util"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB returns a schema-initialised in-memory SQLite database with
// foreign keys enforced. A single connection keeps the memory DB alive.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := mysqlinfra.Open(sqlite.Open("file::memory:?_foreign_keys=on"), util.NopLogger())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysqlinfra.InitSchema(context.Background(), db))
	return db
}
