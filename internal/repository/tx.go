package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type namedQueryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// withTx runs fn inside a transaction, rolling back on any error.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// namedGet runs a named query and scans the single returned row into dest.
func namedGet(ctx context.Context, q namedQueryer, dest interface{}, query string, arg interface{}) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return sqlx.GetContext(ctx, q, dest, q.Rebind(bound), args...)
}

func pageClause(page, size int) (int, int, string) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size, fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
}
