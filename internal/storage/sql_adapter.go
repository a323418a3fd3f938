package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var upsertStatements = map[string]string{
	DriverSQLite: `
		INSERT INTO tasks (namespace, id, title, sort_order, done)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (namespace, id) DO UPDATE
		SET title = excluded.title, sort_order = excluded.sort_order, done = excluded.done`,
	DriverMySQL: `
		INSERT INTO tasks (namespace, id, title, sort_order, done)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		title = VALUES(title), sort_order = VALUES(sort_order), done = VALUES(done)`,
}

// SQLAdapter stores records in the tasks table of a SQLite or MySQL database.
type SQLAdapter struct {
	db     *sql.DB
	upsert string
}

func NewSQLAdapter(db *sql.DB, driver string) (*SQLAdapter, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	upsert, ok := upsertStatements[driver]
	if !ok {
		return nil, fmt.Errorf("storage: unsupported sql driver %q", driver)
	}
	return &SQLAdapter{db: db, upsert: upsert}, nil
}

func OpenSQLite(ctx context.Context, path string) (*SQLAdapter, error) {
	return openSQL(ctx, DriverSQLite, path)
}

func OpenMySQL(ctx context.Context, dsn string) (*SQLAdapter, error) {
	return openSQL(ctx, DriverMySQL, dsn)
}

func openSQL(ctx context.Context, driver, dsn string) (*SQLAdapter, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := MigrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	adapter, err := NewSQLAdapter(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return adapter, nil
}

func (a *SQLAdapter) Close() error {
	return a.db.Close()
}

func (a *SQLAdapter) ReadAll(ctx context.Context, namespace string) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, title, sort_order, done
		FROM tasks WHERE namespace = ?
		ORDER BY sort_order ASC`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *SQLAdapter) WriteOne(ctx context.Context, namespace, id string, rec Record) error {
	_, err := a.db.ExecContext(ctx, a.upsert, namespace, id, rec.Title, rec.Order, boolInt(rec.Done))
	return err
}

func (a *SQLAdapter) DeleteOne(ctx context.Context, namespace, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM tasks WHERE namespace = ? AND id = ?`, namespace, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var out Record
	var done int
	if err := s.Scan(&out.ID, &out.Title, &out.Order, &done); err != nil {
		return Record{}, err
	}
	out.Done = done == 1
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
