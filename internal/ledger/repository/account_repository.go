package repository

import (
	"context"

	"golang-stock-ledger/internal/entity"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	GetOrCreate(ctx context.Context, username string, initialBalance decimal.Decimal) (*entity.Account, bool, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*entity.Account, error)
	UpdateAmount(ctx context.Context, id uint, amount decimal.Decimal) error
	CountNegativeBalances(ctx context.Context) (int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// GetOrCreate returns the account of username, creating it with initialBalance
// when it does not exist yet. The bool is true when the account was created.
func (r *accountRepository) GetOrCreate(ctx context.Context, username string, initialBalance decimal.Decimal) (*entity.Account, bool, error) {
	account := &entity.Account{Username: username, Amount: initialBalance}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).
		Create(account)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return account, true, nil
	}

	existing, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	var account entity.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uint) (*entity.Account, error) {
	var account entity.Account
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) UpdateAmount(ctx context.Context, id uint, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&entity.Account{}).
		Where("id = ?", id).
		Update("amount", amount).Error
}

func (r *accountRepository) CountNegativeBalances(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Account{}).Where("amount < 0").Count(&count).Error
	return count, err
}
