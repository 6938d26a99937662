package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one lot: a quantity of a stock acquired at a single price.
// Lots bought at different times are kept apart, even at the same price.
type Holding struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	AccountID uint            `gorm:"not null;index:idx_holdings_account_stock" json:"account_id"`
	StockID   uint            `gorm:"not null;index:idx_holdings_account_stock" json:"stock_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"price"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	Stock     Stock           `gorm:"foreignKey:StockID" json:"stock"`
}

func (Holding) TableName() string {
	return "holdings"
}

// CostBasis is the lot valued at acquisition price.
func (h Holding) CostBasis() decimal.Decimal {
	return h.Price.Mul(decimal.NewFromInt(h.Quantity))
}
