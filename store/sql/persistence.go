package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/appnigma/go-integrations-client/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// PersistenceConfig satisfies the go-persistence-bun config contract.
type PersistenceConfig struct {
	Driver      string
	Server      string
	Debug       bool
	PingTimeout time.Duration
}

func (c PersistenceConfig) GetDebug() bool {
	return c.Debug
}

func (c PersistenceConfig) GetDriver() string {
	return c.Driver
}

func (c PersistenceConfig) GetServer() string {
	return c.Server
}

func (c PersistenceConfig) GetPingTimeout() time.Duration {
	if c.PingTimeout <= 0 {
		return 5 * time.Second
	}
	return c.PingTimeout
}

func (c PersistenceConfig) GetOtelIdentifier() string {
	return "appnigma-integrations-client"
}

// SQLiteConfig returns a config for a sqlite database file. A path of
// ":memory:" opens a private in-memory database.
func SQLiteConfig(path string) PersistenceConfig {
	path = strings.TrimSpace(path)
	dsn := "file:" + path + "?_foreign_keys=on"
	if path == ":memory:" {
		dsn = fmt.Sprintf("file:appnigma-%d?mode=memory&cache=shared&_foreign_keys=on", time.Now().UnixNano())
	}
	return PersistenceConfig{Driver: DriverSQLite, Server: dsn}
}

// Open connects to the configured database, registers the embedded
// migrations for its dialect and applies them.
func Open(ctx context.Context, cfg PersistenceConfig) (*persistence.Client, error) {
	driver, dialectName, dialect, err := resolveDialect(strings.TrimSpace(cfg.Driver))
	if err != nil {
		return nil, err
	}
	cfg.Driver = driver
	sqlDB, err := sql.Open(driver, cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if dialectName == migrations.DialectSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlstore: new persistence client: %w", err)
	}

	_, err = migrations.Register(ctx, dialectName, func(_ context.Context, set migrations.Set) error {
		client.RegisterSQLMigrations(set.FS)
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return client, nil
}

func resolveDialect(driver string) (string, string, schema.Dialect, error) {
	switch driver {
	case DriverSQLite, "sqlite":
		return DriverSQLite, migrations.DialectSQLite, sqlitedialect.New(), nil
	case DriverPostgres, "pg":
		return DriverPostgres, migrations.DialectPostgres, pgdialect.New(), nil
	default:
		return "", "", nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}
