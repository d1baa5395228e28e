package storage

import (
	"context"
	"os"
	"testing"

	"github.com/folio-cms/folio/storage/model"
)

func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
}

// exerciseSettingsStore runs a create/upsert/delete cycle against a live backend
func exerciseSettingsStore(t *testing.T, store *SettingsStorage) {
	t.Helper()
	ctx := context.Background()
	key := "integration.check"
	value := "1"

	_, _ = store.Delete(ctx, key)
	if err := store.Save(ctx, &model.Setting{Key: key, Value: &value, Type: model.SettingTypeBoolean}); err != nil {
		t.Fatalf("Failed to save setting: %v", err)
	}
	if err := store.Upsert(ctx, []model.Setting{{Key: key, Value: &value, Type: model.SettingTypeInteger, Group: "integration"}}); err != nil {
		t.Fatalf("Failed to upsert setting: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Failed to get setting: %v", err)
	}
	if got.Type != model.SettingTypeInteger || got.Group != "integration" {
		t.Fatalf("Upsert did not replace columns: %+v", got)
	}
	removed, err := store.Delete(ctx, key)
	if err != nil || !removed {
		t.Fatalf("Failed to delete setting: removed=%v err=%v", removed, err)
	}
}

// TestSQLiteConnection tests connecting to a SQLite database
func TestSQLiteConnection(t *testing.T) {
	requireIntegration(t)

	config := Config{
		Driver:  DriverSQLite,
		DataDir: t.TempDir(),
	}

	db, err := Connect(config)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get SQL DB: %v", err)
	}

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("Failed to ping SQLite database: %v", err)
	}
}

// TestMySQLStorage runs the settings store against a MySQL database
func TestMySQLStorage(t *testing.T) {
	requireIntegration(t)

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("Skipping MySQL test. Set MYSQL_DSN environment variable")
	}

	s, err := NewStorage(Config{Driver: DriverMySQL, DSN: dsn})
	if err != nil {
		t.Fatalf("Failed to create MySQL storage: %v", err)
	}
	defer s.Close()

	exerciseSettingsStore(t, s.SettingsStorage())
}

// TestPostgresStorage runs the settings store against a PostgreSQL database
func TestPostgresStorage(t *testing.T) {
	requireIntegration(t)

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping PostgreSQL test. Set POSTGRES_DSN environment variable")
	}

	s, err := NewStorage(Config{Driver: DriverPostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL storage: %v", err)
	}
	defer s.Close()

	exerciseSettingsStore(t, s.SettingsStorage())
}
