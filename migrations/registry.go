package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	plaid "github.com/goliatone/go-plaid"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const (
	defaultSourceLabel = "go-plaid"
	migrationsPath     = "data/sql/migrations"
)

// FilesystemSpec points at the migration files of one dialect.
type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

// RegisterFunc hands one dialect filesystem to the host migrator, usually
// persistence.Client.RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			r.SourceLabel = trimmed
		}
	}
}

// WithValidationTargets limits registration to the named dialects.
func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if next := dedupe(targets); len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

// WithFilesystems replaces the embedded filesystems, for hosts that ship an
// extended copy of the schema.
func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		copied := make([]FilesystemSpec, 0, len(filesystems))
		for _, fsys := range filesystems {
			dialect := DialectForDriver(fsys.Dialect)
			if dialect == "" || fsys.FS == nil {
				continue
			}
			copied = append(copied, FilesystemSpec{Dialect: dialect, Path: fsys.Path, FS: fsys.FS})
		}
		if len(copied) > 0 {
			r.Filesystems = copied
		}
	}
}

// DialectForDriver maps a database/sql driver name onto a migration dialect.
// Unknown drivers return "".
func DialectForDriver(driver string) string {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres
	case "sqlite", "sqlite3":
		return DialectSQLite
	default:
		return ""
	}
}

// Filesystems resolves the postgres tree and its sqlite subdirectory from
// source, defaulting to the embedded migrations. Each dialect must carry at
// least one *.up.sql file.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := plaid.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}

	base, basePath, err := migrationsRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	filesystems := []FilesystemSpec{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: pathJoin(basePath, "sqlite"), FS: sqliteFS},
	}
	for _, fsys := range filesystems {
		matches, globErr := fs.Glob(fsys.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", fsys.Dialect, fsys.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", fsys.Dialect, fsys.Path)
		}
	}
	return filesystems, nil
}

// Register calls registerFn once per targeted dialect.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}

	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems

	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	switch {
	case len(reg.ValidationTargets) == 0:
		return reg, fmt.Errorf("migrations: validation targets are required")
	case strings.TrimSpace(reg.SourceLabel) == "":
		return reg, fmt.Errorf("migrations: source label is required")
	case len(reg.Filesystems) == 0:
		return reg, fmt.Errorf("migrations: filesystems are required")
	case registerFn == nil:
		return reg, fmt.Errorf("migrations: register function is required")
	}

	for _, fsys := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, fsys.Dialect) {
			continue
		}
		if err := registerFn(ctx, fsys.Dialect, reg.SourceLabel, fsys.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", fsys.Dialect, fsys.Path, err)
		}
	}
	return reg, nil
}

func migrationsRoot(root fs.FS) (fs.FS, string, error) {
	if _, statErr := fs.Stat(root, migrationsPath); statErr == nil {
		sub, err := fs.Sub(root, migrationsPath)
		if err != nil {
			return nil, "", fmt.Errorf("migrations: resolve %s: %w", migrationsPath, err)
		}
		return sub, migrationsPath, nil
	}

	entries, err := fs.ReadDir(root, ".")
	if err != nil {
		return nil, "", fmt.Errorf("migrations: %s not found: %w", migrationsPath, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			return root, ".", nil
		}
	}
	return nil, "", fmt.Errorf("migrations: %s not found", migrationsPath)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(strings.ToLower(value))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func pathJoin(base string, suffix string) string {
	if base == "." {
		return suffix
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(suffix, "/")
}
