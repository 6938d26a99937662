package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeEvent is published on the trade stream after a trade committed.
type TradeEvent struct {
	Reference  string          `json:"reference"`
	Username   string          `json:"username"`
	Symbol     string          `json:"symbol"`
	Type       OrderType       `json:"type"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Total      decimal.Decimal `json:"total"`
	Balance    decimal.Decimal `json:"balance"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// AuditAlert is published when the periodic audit finds rows breaking a rule.
type AuditAlert struct {
	Check      string    `json:"check"`
	Count      int64     `json:"count"`
	Detail     string    `json:"detail"`
	DetectedAt time.Time `json:"detected_at"`
}
