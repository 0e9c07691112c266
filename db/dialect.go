package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	// database/sql driver registration for the remaining dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// ─────────────────────────────────────────────────────────────────────────────
// Dialect interface
// ─────────────────────────────────────────────────────────────────────────────

// Dialect captures the SQL differences repositories need to know about.
// Implement Dialect to add support for a new database without modifying the
// repositories.
type Dialect interface {
	// Name is the configured driver name, e.g. "sqlite3", "pgx", "mysql".
	Name() string

	// Driver is the database/sql driver to open. It differs from Name when
	// the dialect registers its own driver variant.
	Driver() string

	// Family groups drivers that speak the same SQL ("sqlite3", "postgres",
	// "mysql"). Migrations are selected by family.
	Family() string

	// Placeholder returns the bind parameter marker for the n-th (1-based)
	// argument.
	Placeholder(n int) string

	// SupportsReturning reports whether INSERT/UPDATE ... RETURNING is available.
	SupportsReturning() bool

	// Fold wraps a column expression so it compares case-insensitively with a
	// pattern lowered by FoldCase.
	Fold(expr string) string
}

// FoldCase is the Go side of Dialect.Fold: Unicode lower-casing.
func FoldCase(s string) string { return strings.ToLower(s) }

// ─────────────────────────────────────────────────────────────────────────────
// Dialect registry
// ─────────────────────────────────────────────────────────────────────────────

var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]Dialect)
)

// RegisterDialect adds a Dialect to the registry.
// Panics if a dialect with the same name is already registered.
func RegisterDialect(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	if _, ok := dialects[d.Name()]; ok {
		panic(fmt.Sprintf("db: dialect %q already registered", d.Name()))
	}
	dialects[d.Name()] = d
}

// LookupDialect returns the registered Dialect by driver name or an error.
func LookupDialect(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("db: driver %q not supported", name)
	}
	return d, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in dialects
// ─────────────────────────────────────────────────────────────────────────────

// sqliteDriver is mattn/go-sqlite3 with a fold() SQL function on every
// connection. The built-in LOWER() only folds ASCII.
const sqliteDriver = "sqlite3_fold"

// SQLiteDialect is the mattn/go-sqlite3 adapter.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string            { return "sqlite3" }
func (SQLiteDialect) Driver() string          { return sqliteDriver }
func (SQLiteDialect) Family() string          { return "sqlite3" }
func (SQLiteDialect) Placeholder(int) string  { return "?" }
func (SQLiteDialect) SupportsReturning() bool { return true }
func (SQLiteDialect) Fold(expr string) string { return "fold(" + expr + ")" }

// PostgresDialect serves both lib/pq ("postgres") and pgx ("pgx").
type PostgresDialect struct {
	DriverName string
}

func (d PostgresDialect) Name() string           { return d.DriverName }
func (d PostgresDialect) Driver() string         { return d.DriverName }
func (PostgresDialect) Family() string           { return "postgres" }
func (PostgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (PostgresDialect) SupportsReturning() bool  { return true }
func (PostgresDialect) Fold(expr string) string  { return "LOWER(" + expr + ")" }

// MySQLDialect is the go-sql-driver/mysql adapter. DSNs must carry
// parseTime=true so timestamp columns scan into time.Time.
type MySQLDialect struct{}

func (MySQLDialect) Name() string            { return "mysql" }
func (MySQLDialect) Driver() string          { return "mysql" }
func (MySQLDialect) Family() string          { return "mysql" }
func (MySQLDialect) Placeholder(int) string  { return "?" }
func (MySQLDialect) SupportsReturning() bool { return false }
func (MySQLDialect) Fold(expr string) string { return "LOWER(" + expr + ")" }

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", FoldCase, true)
		},
	})

	RegisterDialect(SQLiteDialect{})
	RegisterDialect(PostgresDialect{DriverName: "postgres"})
	RegisterDialect(PostgresDialect{DriverName: "pgx"})
	RegisterDialect(MySQLDialect{})
}
