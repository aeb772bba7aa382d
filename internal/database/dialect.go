package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Driver names accepted in Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

// dialect is what differs between the two stores.
type dialect struct {
	driver string

	// columns expands the {id}, {blob} and {float} markers in the schema
	columns *strings.Replacer

	// numbered drivers take $1, $2 placeholders and return inserted ids
	// through RETURNING rather than LastInsertId
	numbered bool

	// init runs once after the pool opens
	init []string

	duplicate func(error) bool
}

var sqliteDialect = &dialect{
	driver: DriverSQLite,
	columns: strings.NewReplacer(
		"{id}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{blob}", "BLOB",
		"{float}", "REAL",
	),
	init: []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	},
	duplicate: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

var postgresDialect = &dialect{
	driver: DriverPostgres,
	columns: strings.NewReplacer(
		"{id}", "BIGSERIAL PRIMARY KEY",
		"{blob}", "BYTEA",
		"{float}", "DOUBLE PRECISION",
	),
	numbered: true,
	duplicate: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
	},
}

// dialectFor maps a configured driver name to its dialect. An empty name
// means SQLite.
func dialectFor(driver string) (*dialect, error) {
	switch driver {
	case "", DriverSQLite:
		return sqliteDialect, nil
	case DriverPostgres:
		return postgresDialect, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// schema expands the column markers of a CREATE statement.
func (d *dialect) schema(stmt string) string {
	return d.columns.Replace(stmt)
}

// rebind rewrites ? placeholders for numbered drivers. Store queries never
// carry a literal question mark.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// insertQuery rebinds an INSERT and, for numbered drivers, asks for the new id.
func (d *dialect) insertQuery(query string) string {
	q := d.rebind(query)
	if d.numbered {
		q += " RETURNING id"
	}
	return q
}

func (d *dialect) isDuplicate(err error) bool {
	return err != nil && d.duplicate(err)
}
