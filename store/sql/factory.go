package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	plaidmigrations "github.com/goliatone/go-plaid/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config describes the database backing the activity store. It satisfies the
// go-persistence-bun configuration contract.
type Config struct {
	Driver         string        `koanf:"driver" json:"driver"`
	DSN            string        `koanf:"dsn" json:"dsn"`
	Debug          bool          `koanf:"debug" json:"debug"`
	PingTimeout    time.Duration `koanf:"ping_timeout" json:"ping_timeout"`
	OtelIdentifier string        `koanf:"otel_identifier" json:"otel_identifier"`
	AutoMigrate    bool          `koanf:"auto_migrate" json:"auto_migrate"`
}

func (c Config) GetDebug() bool {
	return c.Debug
}

func (c Config) GetDriver() string {
	return normalizeDriver(c.Driver)
}

func (c Config) GetServer() string {
	return strings.TrimSpace(c.DSN)
}

func (c Config) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c Config) GetOtelIdentifier() string {
	if strings.TrimSpace(c.OtelIdentifier) == "" {
		return "go-plaid"
	}
	return strings.TrimSpace(c.OtelIdentifier)
}

// Open connects to postgres (lib/pq) or sqlite (mattn/go-sqlite3) and, when
// AutoMigrate is set, applies the embedded migrations for that dialect.
func Open(ctx context.Context, cfg Config) (*persistence.Client, error) {
	driver := cfg.GetDriver()
	dsn := cfg.GetServer()
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}

	var dialect schema.Dialect
	switch driver {
	case DriverPostgres:
		dialect = pgdialect.New()
	case DriverSQLite:
		dialect = sqlitedialect.New()
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}
	if !cfg.AutoMigrate {
		return client, nil
	}
	if err := Migrate(ctx, client, driver); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Migrate registers the embedded migrations for driver and applies them.
func Migrate(ctx context.Context, client *persistence.Client, driver string) error {
	if client == nil {
		return fmt.Errorf("sqlstore: persistence client is required")
	}
	dialect := plaidmigrations.DialectForDriver(driver)
	if dialect == "" {
		return fmt.Errorf("sqlstore: no migrations for driver %q", driver)
	}
	_, err := plaidmigrations.Register(ctx, func(_ context.Context, target string, _ string, fsys fs.FS) error {
		if target != dialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, plaidmigrations.WithValidationTargets(dialect))
	if err != nil {
		return fmt.Errorf("sqlstore: register migrations: %w", err)
	}
	if err := client.Migrate(ctx); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

type RepositoryFactory struct {
	db            *bun.DB
	activityStore *ActivityStore
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	return newRepositoryFactory(client)
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	return newRepositoryFactory(db)
}

func newRepositoryFactory(candidate any) (*RepositoryFactory, error) {
	db, err := resolveBunDB(candidate)
	if err != nil {
		return nil, err
	}
	activityStore, err := NewActivityStore(db)
	if err != nil {
		return nil, err
	}
	return &RepositoryFactory{db: db, activityStore: activityStore}, nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) ActivityStore() *ActivityStore {
	if f == nil {
		return nil
	}
	return f.activityStore
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: bun db is required")
		}
		return typed, nil
	case *persistence.Client:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: persistence client is required")
		}
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

func normalizeDriver(driver string) string {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	case "sqlite", "sqlite3":
		return DriverSQLite
	default:
		return strings.TrimSpace(strings.ToLower(driver))
	}
}
