package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// TxManager runs units of work in a database transaction carried by the context
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager over db
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx executes fn inside a transaction. Repositories called with the
// context passed to fn join the transaction. A nested call reuses the outer
// transaction through a savepoint.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return GetDB(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// GetDB returns the transaction bound to ctx, or root when there is none
func GetDB(ctx context.Context, root *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return root.WithContext(ctx)
}
