package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	plaid "github.com/goliatone/go-plaid"
	_ "github.com/mattn/go-sqlite3"
)

func TestFilesystems_ReturnsPostgresAndSQLite(t *testing.T) {
	filesystems, err := Filesystems()
	if err != nil {
		t.Fatalf("filesystems: %v", err)
	}
	if len(filesystems) != 2 {
		t.Fatalf("expected 2 filesystems, got %d", len(filesystems))
	}

	var postgresFound bool
	var sqliteFound bool
	for _, entry := range filesystems {
		matches, globErr := fs.Glob(entry.FS, "*.up.sql")
		if globErr != nil {
			t.Fatalf("glob %s: %v", entry.Dialect, globErr)
		}
		if len(matches) == 0 {
			t.Fatalf("expected %s migration files, got none", entry.Dialect)
		}
		switch entry.Dialect {
		case DialectPostgres:
			postgresFound = true
			if entry.Path != "data/sql/migrations" {
				t.Fatalf("unexpected postgres path %q", entry.Path)
			}
		case DialectSQLite:
			sqliteFound = true
			if entry.Path != "data/sql/migrations/sqlite" {
				t.Fatalf("unexpected sqlite path %q", entry.Path)
			}
		}
	}

	if !postgresFound {
		t.Fatalf("expected postgres filesystem")
	}
	if !sqliteFound {
		t.Fatalf("expected sqlite filesystem")
	}
}

func TestFilesystems_RejectsDialectWithoutUpMigrations(t *testing.T) {
	source := fstest.MapFS{
		"data/sql/migrations/00001_x.up.sql":          {Data: []byte("SELECT 1;")},
		"data/sql/migrations/sqlite/00001_x.down.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := Filesystems(source); err == nil || !strings.Contains(err.Error(), "sqlite") {
		t.Fatalf("expected sqlite filesystem error, got %v", err)
	}
}

func TestRegister_UsesValidationTargets(t *testing.T) {
	var calls []string
	reg, err := Register(context.Background(), func(_ context.Context, dialect string, label string, _ fs.FS) error {
		calls = append(calls, dialect+":"+label)
		return nil
	}, WithValidationTargets(" SQLite "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(calls))
	}
	if calls[0] != DialectSQLite+":go-plaid" {
		t.Fatalf("expected sqlite registration with default label, got %q", calls[0])
	}
	if reg.SourceLabel != "go-plaid" {
		t.Fatalf("unexpected source label %q", reg.SourceLabel)
	}
}

func TestRegister_CustomLabelAndFilesystems(t *testing.T) {
	custom := fstest.MapFS{"00001_custom.up.sql": {Data: []byte("SELECT 1;")}}
	var labels []string
	_, err := Register(context.Background(), func(_ context.Context, dialect string, label string, fsys fs.FS) error {
		if _, err := fs.Stat(fsys, "00001_custom.up.sql"); err != nil {
			t.Fatalf("expected custom filesystem for %s: %v", dialect, err)
		}
		labels = append(labels, label)
		return nil
	},
		WithDialectSourceLabel("billing"),
		WithFilesystems(FilesystemSpec{Dialect: "postgresql", Path: "custom", FS: custom}),
	)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(labels) != 1 || labels[0] != "billing" {
		t.Fatalf("expected one postgres registration labelled billing, got %v", labels)
	}
}

func TestRegister_RequiresRegisterFunc(t *testing.T) {
	if _, err := Register(context.Background(), nil); err == nil {
		t.Fatalf("expected missing register function error")
	}
}

func TestDialectForDriver(t *testing.T) {
	cases := map[string]string{
		"postgres":   DialectPostgres,
		"PostgreSQL": DialectPostgres,
		"pgx":        DialectPostgres,
		"sqlite3":    DialectSQLite,
		" sqlite ":   DialectSQLite,
		"mysql":      "",
	}
	for driver, want := range cases {
		if got := DialectForDriver(driver); got != want {
			t.Fatalf("driver %q: expected %q, got %q", driver, want, got)
		}
	}
}

func TestActivityMigrationPairs_ExistForBothDialects(t *testing.T) {
	root := plaid.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_plaid_activity_entries.up.sql",
		"data/sql/migrations/00001_plaid_activity_entries.down.sql",
		"data/sql/migrations/00002_plaid_activity_error_code_index.up.sql",
		"data/sql/migrations/00002_plaid_activity_error_code_index.down.sql",
		"data/sql/migrations/sqlite/00001_plaid_activity_entries.up.sql",
		"data/sql/migrations/sqlite/00001_plaid_activity_entries.down.sql",
		"data/sql/migrations/sqlite/00002_plaid_activity_error_code_index.up.sql",
		"data/sql/migrations/sqlite/00002_plaid_activity_error_code_index.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteActivityMigrations_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-plaid-activity?mode=memory&cache=shared&_foreign_keys=on")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	sqliteMigrations, err := fs.Sub(plaid.GetMigrationsFS(), "data/sql/migrations/sqlite")
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}
	ctx := context.Background()

	for _, migration := range []string{
		"00001_plaid_activity_entries.up.sql",
		"00002_plaid_activity_error_code_index.up.sql",
	} {
		if err := execSQLMigration(ctx, db, sqliteMigrations, migration); err != nil {
			t.Fatalf("apply migration %s: %v", migration, err)
		}
	}

	insert := `INSERT INTO plaid_activity_entries (id, operation, method, path, status) VALUES (?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(ctx, insert, "a1", "connect.get", "POST", "connect/get", "ok"); err != nil {
		t.Fatalf("insert activity row: %v", err)
	}
	if _, err := db.ExecContext(ctx, insert, "a2", "connect.get", "POST", "connect/get", "pending"); err == nil {
		t.Fatalf("expected status check constraint violation")
	}

	var metadata string
	if err := db.QueryRowContext(ctx, `SELECT metadata FROM plaid_activity_entries WHERE id = ?`, "a1").Scan(&metadata); err != nil {
		t.Fatalf("select metadata default: %v", err)
	}
	if metadata != "{}" {
		t.Fatalf("expected empty json metadata default, got %q", metadata)
	}

	if err := assertSQLiteObjectCount(ctx, db, "index", "idx_plaid_activity_entries_error_code", 1); err != nil {
		t.Fatalf("%v", err)
	}

	for _, migration := range []string{
		"00002_plaid_activity_error_code_index.down.sql",
		"00001_plaid_activity_entries.down.sql",
	} {
		if err := execSQLMigration(ctx, db, sqliteMigrations, migration); err != nil {
			t.Fatalf("rollback migration %s: %v", migration, err)
		}
	}
	if err := assertSQLiteObjectCount(ctx, db, "table", "plaid_activity_entries", 0); err != nil {
		t.Fatalf("%v", err)
	}
}

func assertSQLiteObjectCount(ctx context.Context, db *sql.DB, kind string, name string, want int) error {
	var count int
	if err := db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?`,
		kind,
		name,
	).Scan(&count); err != nil {
		return fmt.Errorf("query sqlite_master for %s %s: %w", kind, name, err)
	}
	if count != want {
		return fmt.Errorf("expected %s %s count=%d, got %d", kind, name, want, count)
	}
	return nil
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
