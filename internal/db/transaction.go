package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTransaction runs fn in one immediate-mode SQLite transaction. Any
// error or panic from fn rolls back the whole ingest step.
func (db *DB) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(tx); err != nil {
			return fmt.Errorf("transaction error: %w", err)
		}
		return nil
	})
}

// WithTx lets repositories run inside fn
func WithTx(tx *gorm.DB) *DB {
	return &DB{DB: tx}
}
