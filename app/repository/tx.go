package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a unit of work inside a single database transaction.
// Every repository handed to fn is bound to that transaction, so a
// "read cart, decide, mutate cart/order/membership" sequence either commits
// as a whole or rolls back as a whole.
type TxManager interface {
	InTx(ctx context.Context, fn func(r *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager on top of a GORM handle
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) InTx(ctx context.Context, fn func(r *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
