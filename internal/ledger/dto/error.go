package dto

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ErrorKind identifies a business failure of the ledger.
type ErrorKind string

const (
	KindEmptySymbol              ErrorKind = "EMPTY_SYMBOL"
	KindSymbolNotFound           ErrorKind = "SYMBOL_NOT_FOUND"
	KindQuoteUnavailable         ErrorKind = "QUOTE_UNAVAILABLE"
	KindNegativeOrZeroQuantity   ErrorKind = "NEGATIVE_OR_ZERO_QUANTITY"
	KindPriceChanged             ErrorKind = "PRICE_CHANGED"
	KindInsufficientMarketSize   ErrorKind = "INSUFFICIENT_MARKET_SIZE"
	KindInsufficientFunds        ErrorKind = "INSUFFICIENT_FUNDS"
	KindInsufficientHoldings     ErrorKind = "INSUFFICIENT_HOLDINGS"
	KindInternalConsistencyError ErrorKind = "INTERNAL_CONSISTENCY_ERROR"
	KindInvalidUsername          ErrorKind = "INVALID_USERNAME"
	KindInvalidOrderType         ErrorKind = "INVALID_ORDER_TYPE"
	KindAccountNotFound          ErrorKind = "ACCOUNT_NOT_FOUND"
)

// TradeError is the typed failure returned by the ledger operations.
// Two TradeErrors match under errors.Is when their kinds are equal.
type TradeError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrEmptySymbol              = &TradeError{Kind: KindEmptySymbol, Message: "empty symbol is not allowed"}
	ErrSymbolNotFound           = &TradeError{Kind: KindSymbolNotFound, Message: "cannot find stock symbol"}
	ErrQuoteUnavailable         = &TradeError{Kind: KindQuoteUnavailable, Message: "quote provider unavailable"}
	ErrNegativeOrZeroQuantity   = &TradeError{Kind: KindNegativeOrZeroQuantity, Message: "only positive quantity is allowed"}
	ErrPriceChanged             = &TradeError{Kind: KindPriceChanged, Message: "price changed, please refetch the quote"}
	ErrInsufficientMarketSize   = &TradeError{Kind: KindInsufficientMarketSize, Message: "not enough stocks in the market"}
	ErrInsufficientFunds        = &TradeError{Kind: KindInsufficientFunds, Message: "not enough money"}
	ErrInsufficientHoldings     = &TradeError{Kind: KindInsufficientHoldings, Message: "not enough stocks held"}
	ErrInternalConsistencyError = &TradeError{Kind: KindInternalConsistencyError, Message: "holdings are inconsistent"}
	ErrInvalidUsername          = &TradeError{Kind: KindInvalidUsername, Message: "username must be 3 to 32 characters of a-z, A-Z, 0-9 or _"}
	ErrInvalidOrderType         = &TradeError{Kind: KindInvalidOrderType, Message: "order type must be BUY or SELL"}
	ErrAccountNotFound          = &TradeError{Kind: KindAccountNotFound, Message: "account not found"}
)

func (e *TradeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

func (e *TradeError) Is(target error) bool {
	t, ok := target.(*TradeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Withf returns a copy of e carrying a more specific message.
func (e *TradeError) Withf(format string, args ...interface{}) *TradeError {
	return &TradeError{Kind: e.Kind, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// Wrap returns a copy of e with err as its cause.
func (e *TradeError) Wrap(err error) *TradeError {
	return &TradeError{Kind: e.Kind, Message: e.Message, Err: err}
}

// KindOf returns the kind of the first TradeError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
