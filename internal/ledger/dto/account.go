package dto

import (
	"time"

	"golang-stock-ledger/internal/entity"

	"github.com/shopspring/decimal"
)

// LoginRequest is the DTO for opening (or reopening) an account.
type LoginRequest struct {
	Username string `json:"username"`
}

// PlaceOrderRequest is the DTO for a buy or sell.
type PlaceOrderRequest struct {
	Type     string          `json:"type" example:"BUY"`
	Symbol   string          `json:"symbol" example:"F"`
	Quantity int64           `json:"quantity" example:"1"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"16.68"`
}

// AccountResponse is the DTO for API responses containing account details.
type AccountResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
	CreatedAt time.Time       `json:"created_at"`
}

// HoldingResponse is the DTO for one lot held by an account.
type HoldingResponse struct {
	ID       uint            `json:"id"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price" swaggertype:"string"`
	Value    decimal.Decimal `json:"value" swaggertype:"string"`
}

// OrderResponse is the DTO for one executed order.
type OrderResponse struct {
	ID        uint            `json:"id"`
	Reference string          `json:"reference"`
	Type      string          `json:"type"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price" swaggertype:"string"`
	Total     decimal.Decimal `json:"total" swaggertype:"string"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeResponse is returned after a successful buy or sell.
type TradeResponse struct {
	Order   OrderResponse   `json:"order"`
	Account AccountResponse `json:"account"`
}

// ResetResponse is returned after an account was reset.
type ResetResponse struct {
	Account         AccountResponse `json:"account"`
	OrdersDeleted   int64           `json:"orders_deleted"`
	HoldingsDeleted int64           `json:"holdings_deleted"`
}

// QuoteResponse pairs a registered stock with its current quote.
type QuoteResponse struct {
	Stock entity.Stock `json:"stock"`
	Quote Quote        `json:"quote"`
}

func NewAccountResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Amount:    account.Amount,
		CreatedAt: account.CreatedAt,
	}
}

func NewHoldingResponse(holding *entity.Holding) HoldingResponse {
	return HoldingResponse{
		ID:       holding.ID,
		Symbol:   holding.Stock.Symbol,
		Name:     holding.Stock.Name,
		Quantity: holding.Quantity,
		Price:    holding.Price,
		Value:    holding.CostBasis(),
	}
}

func NewOrderResponse(order *entity.Order) OrderResponse {
	return OrderResponse{
		ID:        order.ID,
		Reference: order.Reference,
		Type:      string(order.Type),
		Symbol:    order.Stock.Symbol,
		Quantity:  order.Quantity,
		Price:     order.Price,
		Total:     order.Total(),
		CreatedAt: order.CreatedAt,
	}
}
