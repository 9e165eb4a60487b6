package database

import (
	"context"
	"database/sql"

	"limslite-service/internal/pkg/exceptions"
)

// WithTransaction runs fn inside one transaction. The transaction is rolled
// back when fn fails or panics and committed otherwise.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return exceptions.ErrPostgresDBTransaction(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return exceptions.ErrPostgresDBTransaction(err)
	}
	committed = true
	return nil
}
