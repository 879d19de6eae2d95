// Package repotest opens isolated sqlite databases for repository tests.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/migrate"
)

// NewDB returns a migrated in-memory database private to t, seeded with the
// ISO country reference rows.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	if err := migrate.AutoMigrate(ctx, conn); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	if _, err := migrate.SeedISOCountries(ctx, conn); err != nil {
		t.Fatalf("seed sqlite: %v", err)
	}
	return conn
}
