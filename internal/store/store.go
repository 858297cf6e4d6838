// Package store persists children, activity results and event logs in a
// local SQLite file. Statements are built with ent's SQL builders and run
// through an ent driver over the pure Go modernc driver.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	_ "modernc.org/sqlite"
)

const (
	dbEnv  = "AUTISMART_DB"
	dbFile = "autismart.db"
)

// Tuned for a single local user. WAL keeps the TUI responsive while the
// CLI reads history in another process. The driver applies these to every
// pooled connection.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequence
}

// Open connects to the database at dsn and brings its schema up to date.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, drv: drv, seq: &sequence{drv: drv}}, nil
}

// withPragmas appends the connection pragmas to dsn's query string.
func withPragmas(dsn string) string {
	q := make(url.Values)
	q["_pragma"] = pragmas
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + q.Encode()
}

// DB exposes the raw handle for diagnostics and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) ChildRepo() ChildRepo { return &childRepo{drv: s.drv} }

func (s *Store) ActivityRepo() ActivityRepo { return &activityRepo{drv: s.drv, seq: s.seq} }

func (s *Store) EventRepo() EventRepo { return &eventRepo{drv: s.drv, seq: s.seq} }

func (s *Store) SnapshotRepo() SnapshotRepo { return &snapshotRepo{drv: s.drv} }

// Path picks the database file: configured if set, else $AUTISMART_DB,
// else autismart.db under the XDG data home. The parent directory is
// created.
func Path(configured string) (string, error) {
	p, err := pickPath(configured)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return p, nil
}

func pickPath(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if p := os.Getenv(dbEnv); p != "" {
		return p, nil
	}
	if data := os.Getenv("XDG_DATA_HOME"); data != "" {
		return filepath.Join(data, "autismart", dbFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "autismart", dbFile), nil
}

func exec(ctx context.Context, drv *entsql.Driver, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// query calls scan once per result row.
func query(ctx context.Context, drv *entsql.Driver, q string, args []any, scan func(*entsql.Rows) error) error {
	var rows entsql.Rows
	if err := drv.Query(ctx, q, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(&rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
