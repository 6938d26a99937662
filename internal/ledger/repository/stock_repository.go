package repository

import (
	"context"

	"golang-stock-ledger/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	GetOrCreate(ctx context.Context, stock *entity.Stock) (*entity.Stock, bool, error)
	FindBySymbol(ctx context.Context, symbol string) (*entity.Stock, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

// GetOrCreate inserts stock unless its symbol is already registered, in which
// case the stored row is returned untouched.
func (r *stockRepository) GetOrCreate(ctx context.Context, stock *entity.Stock) (*entity.Stock, bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoNothing: true,
		}).
		Create(stock)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return stock, true, nil
	}

	existing, err := r.FindBySymbol(ctx, stock.Symbol)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *stockRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Stock, error) {
	var stock entity.Stock
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}
