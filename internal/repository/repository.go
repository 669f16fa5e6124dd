package repository

import (
	"context"

	"gorm.io/gorm"
)

// conn returns tx when the caller is inside a transaction, otherwise the base handle.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
