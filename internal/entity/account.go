package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a trading principal with a cash balance.
type Account struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Username  string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"username"`
	Amount    decimal.Decimal `gorm:"type:numeric(16,4);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
