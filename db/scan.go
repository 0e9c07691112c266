package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Time returns a sql.Scanner that stores a timestamp column into dst as UTC.
//
// Drivers disagree on how timestamps come back: lib/pq, pgx and MySQL (with
// parseTime) return time.Time, while sqlite returns text whenever the column
// type is unknown to it, as with RETURNING clauses.
func Time(dst *time.Time) sql.Scanner { return timeScanner{dst: dst} }

type timeScanner struct{ dst *time.Time }

func (s timeScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		return fmt.Errorf("db: cannot scan NULL into time.Time")
	}
	return fmt.Errorf("db: cannot scan %T into time.Time", src)
}

func (s timeScanner) parse(v string) error {
	for _, layout := range append([]string{time.RFC3339Nano}, sqlite3.SQLiteTimestampFormats...) {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("db: cannot parse %q as a timestamp", v)
}
