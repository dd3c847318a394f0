package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertQuery returns an INSERT that updates the non-key columns when the key already exists
	UpsertQuery(table string, keyColumns, columns []string) string

	// InsertIgnoreQuery returns an INSERT that silently skips rows whose key already exists
	InsertIgnoreQuery(table string, columns []string) string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// insertPrefix builds "INSERT INTO table (a, b) VALUES (?, ?)"
func insertPrefix(verb, table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return verb + " INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
}

// nonKeyColumns returns columns that are not part of the key
func nonKeyColumns(keyColumns, columns []string) []string {
	keys := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		keys[k] = true
	}
	var rest []string
	for _, c := range columns {
		if !keys[c] {
			rest = append(rest, c)
		}
	}
	return rest
}

// onConflictUpsert is shared by SQLite and PostgreSQL, which use the same syntax
func onConflictUpsert(table string, keyColumns, columns []string) string {
	updates := make([]string, 0, len(columns))
	for _, c := range nonKeyColumns(keyColumns, columns) {
		updates = append(updates, c+" = excluded."+c)
	}
	return insertPrefix("INSERT", table, columns) +
		" ON CONFLICT (" + strings.Join(keyColumns, ", ") + ") DO UPDATE SET " + strings.Join(updates, ", ")
}
