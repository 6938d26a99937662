package repository

import (
	"context"

	"golang-stock-ledger/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HoldingRepository interface {
	Create(ctx context.Context, holding *entity.Holding) error
	FindLotsForUpdate(ctx context.Context, accountID, stockID uint) ([]entity.Holding, error)
	FindByAccount(ctx context.Context, accountID uint) ([]entity.Holding, error)
	SumQuantityByStock(ctx context.Context, stockID uint) (int64, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int64) error
	Delete(ctx context.Context, ids ...uint) error
	DeleteByAccount(ctx context.Context, accountID uint) (int64, error)
	CountNonPositive(ctx context.Context) (int64, error)
	CountOrphans(ctx context.Context) (int64, error)
}

type holdingRepository struct {
	db *gorm.DB
}

func NewHoldingRepository(db *gorm.DB) HoldingRepository {
	return &holdingRepository{db: db}
}

func (r *holdingRepository) Create(ctx context.Context, holding *entity.Holding) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(holding).Error
}

// FindLotsForUpdate locks and returns the lots an account holds of one stock,
// highest price first and oldest first among equal prices.
func (r *holdingRepository) FindLotsForUpdate(ctx context.Context, accountID, stockID uint) ([]entity.Holding, error) {
	var lots []entity.Holding
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account_id = ? AND stock_id = ?", accountID, stockID).
		Order("price DESC").
		Order("id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *holdingRepository) FindByAccount(ctx context.Context, accountID uint) ([]entity.Holding, error) {
	var holdings []entity.Holding
	err := r.db.WithContext(ctx).
		Joins("JOIN stocks ON stocks.id = holdings.stock_id").
		Preload("Stock").
		Where("holdings.account_id = ?", accountID).
		Order("stocks.symbol ASC").
		Order("holdings.price DESC").
		Order("holdings.id ASC").
		Find(&holdings).Error
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

// SumQuantityByStock sums the lots of a stock over every account.
func (r *holdingRepository) SumQuantityByStock(ctx context.Context, stockID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.Holding{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("stock_id = ?", stockID).
		Scan(&total).Error
	return total, err
}

func (r *holdingRepository) UpdateQuantity(ctx context.Context, id uint, quantity int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Holding{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *holdingRepository) Delete(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entity.Holding{}).Error
}

func (r *holdingRepository) DeleteByAccount(ctx context.Context, accountID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&entity.Holding{})
	return result.RowsAffected, result.Error
}

func (r *holdingRepository) CountNonPositive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Holding{}).Where("quantity <= 0").Count(&count).Error
	return count, err
}

// CountOrphans counts lots with no BUY order of the same account and stock behind them.
func (r *holdingRepository) CountOrphans(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Holding{}).
		Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.account_id = holdings.account_id AND orders.stock_id = holdings.stock_id AND orders.type = ?)", entity.OrderTypeBuy).
		Count(&count).Error
	return count, err
}
