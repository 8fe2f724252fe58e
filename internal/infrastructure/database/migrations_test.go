package database

import (
	"context"
	"embed"
	"testing"
	"time"
)

//go:embed testdata/*.sql
var testMigrationsFS embed.FS

// useTestMigrations swaps in the fixture schema files for one test.
func useTestMigrations(t *testing.T) {
	t.Helper()

	origFS := MigrationsFS
	origDir := MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})

	MigrationsFS = testMigrationsFS
	MigrationsDir = "testdata"
}

func TestMigrate(t *testing.T) {
	useTestMigrations(t)

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	var tableName string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='zone_snapshots'",
	).Scan(&tableName)
	if err != nil {
		t.Fatalf("table zone_snapshots not created: %v", err)
	}

	// The second migration adds the source column.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO zone_snapshots (device_id, zone, status, source) VALUES (?, ?, ?, ?)",
		"acurus-main", 1, "{}", "command",
	); err != nil {
		t.Fatalf("insert with migrated column error = %v", err)
	}

	var applied int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations",
	).Scan(&applied); err != nil {
		t.Fatalf("counting applied migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied migrations = %d, want 2", applied)
	}

	// Re-running must be a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations",
	).Scan(&applied); err != nil {
		t.Fatalf("counting applied migrations: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied migrations after rerun = %d, want 2", applied)
	}
}

func TestMigrate_NoMigrations(t *testing.T) {
	origFS := MigrationsFS
	origDir := MigrationsDir
	t.Cleanup(func() {
		MigrationsFS = origFS
		MigrationsDir = origDir
	})

	var emptyFS embed.FS
	MigrationsFS = emptyFS
	MigrationsDir = "."

	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() with no migrations error = %v", err)
	}
}

func TestLoadMigrations_SkipsDownFiles(t *testing.T) {
	useTestMigrations(t)

	migrations, err := loadMigrations()
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}

	// testdata carries two up files and one down file.
	if len(migrations) != 2 {
		t.Fatalf("loaded %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != "20260830_110000" || migrations[1].Version != "20260830_113000" {
		t.Errorf("migrations out of order: %s, %s", migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "zone_snapshots" {
		t.Errorf("first migration name = %q, want %q", migrations[0].Name, "zone_snapshots")
	}
}

func TestParseUpFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantName    string
		wantOk      bool
	}{
		{
			filename:    "20260830_110000_zone_snapshots.up.sql",
			wantVersion: "20260830_110000",
			wantName:    "zone_snapshots",
			wantOk:      true,
		},
		{
			filename:    "20260830_113000_add_source_column.up.sql",
			wantVersion: "20260830_113000",
			wantName:    "add_source_column",
			wantOk:      true,
		},
		{filename: "20260830_110000_zone_snapshots.down.sql", wantOk: false},
		{filename: "20260830_110000_zone_snapshots.sql", wantOk: false},
		{filename: "readme.txt", wantOk: false},
		{filename: "invalid.up.sql", wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseUpFilename(tt.filename)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
		})
	}
}
