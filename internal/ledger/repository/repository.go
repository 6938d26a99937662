package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups the ledger repositories over one database handle.
// Inside Transaction every repository handed to fn shares the same transaction.
type Repository interface {
	Accounts() AccountRepository
	Stocks() StockRepository
	Orders() OrderRepository
	Holdings() HoldingRepository
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Accounts() AccountRepository {
	return NewAccountRepository(r.db)
}

func (r *repository) Stocks() StockRepository {
	return NewStockRepository(r.db)
}

func (r *repository) Orders() OrderRepository {
	return NewOrderRepository(r.db)
}

func (r *repository) Holdings() HoldingRepository {
	return NewHoldingRepository(r.db)
}

func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}
