// Package analytics computes the dashboard's descriptive statistics in an
// embedded DuckDB database. Unparseable cells are stored as NULL so SQL
// aggregates skip them, matching how the charts treat bad data.
package analytics

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb"
)

// Options tunes the embedded database.
type Options struct {
	Threads     int
	MemoryLimit string
}

func (o Options) withDefaults() Options {
	if o.Threads <= 0 {
		o.Threads = 4
	}
	if o.MemoryLimit == "" {
		o.MemoryLimit = "512MB"
	}
	return o
}

// Store holds the experiment data in an in-memory DuckDB instance.
type Store struct {
	db *sql.DB
}

// Open creates the in-memory database and its tables.
func Open(opts Options) (*Store, error) {
	opts = opts.withDefaults()

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)

	ddl := []string{
		`CREATE TABLE env_readings (
			school      VARCHAR NOT NULL,
			ts          TIMESTAMP,
			temperature DOUBLE,
			humidity    DOUBLE,
			ph          DOUBLE,
			ec          DOUBLE
		)`,
		`CREATE TABLE growth_records (
			school       VARCHAR,
			individual   VARCHAR,
			leaf_count   DOUBLE,
			shoot_length DOUBLE,
			root_length  DOUBLE,
			fresh_weight DOUBLE,
			target_ec    DOUBLE
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating tables: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
