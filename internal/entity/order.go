package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderType string

const (
	OrderTypeBuy  OrderType = "BUY"
	OrderTypeSell OrderType = "SELL"
)

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	return t == OrderTypeBuy || t == OrderTypeSell
}

// Order is an append-only log entry written once per executed trade.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Reference     string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"reference"`
	AccountID     uint            `gorm:"not null;index" json:"account_id"`
	StockID       uint            `gorm:"not null;index" json:"stock_id"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"price"`
	Type          OrderType       `gorm:"type:varchar(4);not null" json:"type"`
	QuoteSnapshot datatypes.JSON  `json:"quote_snapshot,omitempty" swaggertype:"object"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	Stock         Stock           `gorm:"foreignKey:StockID" json:"stock"`
}

func (Order) TableName() string {
	return "orders"
}

// Total is quantity times price.
func (o Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Quantity))
}
