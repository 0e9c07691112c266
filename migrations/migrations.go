// Package migrations embeds the schema migrations of every supported SQL
// family and applies them with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Skryldev/entry-catalog/db"
)

//go:embed sqlite3/*.sql postgres/*.sql mysql/*.sql
var files embed.FS

// New returns a migrator for the database identified by driverName and dsn.
// It opens its own connection; the returned close function releases it.
func New(driverName, dsn string, logger *slog.Logger) (*migrate.Migrate, func(), error) {
	dialect, err := db.LookupDialect(driverName)
	if err != nil {
		return nil, nil, err
	}
	family := dialect.Family()

	src, err := iofs.New(files, family)
	if err != nil {
		return nil, nil, fmt.Errorf("migrations: source %s: %w", family, err)
	}

	sqldb, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("migrations: open: %w", err)
	}

	target, err := withInstance(sqldb, family)
	if err != nil {
		_ = src.Close()
		_ = sqldb.Close()
		return nil, nil, fmt.Errorf("migrations: %s driver: %w", family, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, family, target)
	if err != nil {
		_ = src.Close()
		_ = sqldb.Close()
		return nil, nil, fmt.Errorf("migrations: init: %w", err)
	}
	m.Log = &migrateLogger{logger: logger}

	closeFn := func() {
		_, _ = m.Close()
		_ = sqldb.Close()
	}
	return m, closeFn, nil
}

// Up applies every pending migration. Running it on an up-to-date schema is
// a no-op.
func Up(driverName, dsn string, logger *slog.Logger) error {
	m, closeFn, err := New(driverName, dsn, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

func withInstance(sqldb *sql.DB, family string) (database.Driver, error) {
	switch family {
	case "sqlite3":
		return migratesqlite.WithInstance(sqldb, &migratesqlite.Config{})
	case "postgres":
		return migratepg.WithInstance(sqldb, &migratepg.Config{})
	case "mysql":
		return migratemysql.WithInstance(sqldb, &migratemysql.Config{})
	}
	return nil, fmt.Errorf("no migrations for %q", family)
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool { return false }
