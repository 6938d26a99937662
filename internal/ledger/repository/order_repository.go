package repository

import (
	"context"

	"golang-stock-ledger/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByAccount(ctx context.Context, accountID uint, limit int) ([]entity.Order, error)
	DeleteByAccount(ctx context.Context, accountID uint) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// FindByAccount returns the most recent orders of an account first.
func (r *orderRepository) FindByAccount(ctx context.Context, accountID uint, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	query := r.db.WithContext(ctx).
		Preload("Stock").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) DeleteByAccount(ctx context.Context, accountID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&entity.Order{})
	return result.RowsAffected, result.Error
}
