package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ItemStore/internal/items"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 30 * time.Second

	pgUndefinedTable = "42P01"
)

type dialect struct {
	driver  string
	schema  []string
	insert  string
	clear   string
	selectQ string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		schema: []string{
			`PRAGMA journal_mode=WAL;`,
			`CREATE TABLE IF NOT EXISTS item_backup (
				name TEXT PRIMARY KEY,
				id INTEGER NOT NULL,
				saved_at INTEGER NOT NULL
			);`,
		},
		insert:  `INSERT INTO item_backup (name, id, saved_at) VALUES (?, ?, ?)`,
		clear:   `DELETE FROM item_backup`,
		selectQ: `SELECT name, id FROM item_backup ORDER BY name ASC`,
	}

	postgresDialect = dialect{
		driver: "pgx",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS item_backup (
				name TEXT PRIMARY KEY,
				id BIGINT NOT NULL,
				saved_at TIMESTAMPTZ NOT NULL
			)`,
		},
		insert:  `INSERT INTO item_backup (name, id, saved_at) VALUES ($1, $2, $3)`,
		clear:   `DELETE FROM item_backup`,
		selectQ: `SELECT name, id FROM item_backup ORDER BY name ASC`,
	}
)

// DBSink keeps the latest snapshot in a single table. Each Save replaces the
// table contents inside one transaction.
type DBSink struct {
	db *sql.DB
	d  dialect
}

func openDB(ctx context.Context, d dialect, dsn string) (*DBSink, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.driver == "sqlite" {
		// one writer at a time; the WAL pragma is per connection anyway
		db.SetMaxOpenConns(1)
	}

	s := &DBSink{db: db, d: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *DBSink) migrate(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		for _, stmt := range s.d.schema {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		return nil
	})
}

func (s *DBSink) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *DBSink) Save(ctx context.Context, snapshot []items.Item) error {
	savedAt := time.Now().UTC()

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, s.d.clear); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, s.d.insert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range snapshot {
			if _, err := stmt.ExecContext(ctx, it.Name, int64(it.ID), s.timestamp(savedAt)); err != nil {
				return fmt.Errorf("insert %q: %w", it.Name, err)
			}
		}

		return tx.Commit()
	})
}

func (s *DBSink) Load(ctx context.Context) ([]items.Item, error) {
	var out []items.Item

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, s.d.selectQ)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]items.Item, 0, 64)
		for rows.Next() {
			var (
				name string
				id   int64
			)
			if err := rows.Scan(&name, &id); err != nil {
				return err
			}
			out = append(out, items.Item{Name: name, ID: uint64(id)})
		}
		return rows.Err()
	})

	if isUndefinedTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBSink) Close() error {
	return s.db.Close()
}

func (s *DBSink) timestamp(t time.Time) any {
	if s.d.driver == "sqlite" {
		return t.Unix()
	}
	return t
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
