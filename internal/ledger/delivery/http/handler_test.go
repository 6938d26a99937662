package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLedgerService struct {
	buyErr   error
	sellErr  error
	quoteErr error
	lastBuy  decimal.Decimal
}

func (s *stubLedgerService) Login(_ context.Context, username string) (*entity.Account, error) {
	if username == "x" {
		return nil, dto.ErrInvalidUsername
	}
	return &entity.Account{ID: 1, Username: username, Amount: decimal.NewFromInt(100000)}, nil
}

func (s *stubLedgerService) ResolveAndQuote(_ context.Context, symbol string) (*entity.Stock, *dto.Quote, error) {
	if s.quoteErr != nil {
		return nil, nil, s.quoteErr
	}
	return &entity.Stock{ID: 1, Symbol: symbol}, &dto.Quote{Symbol: symbol, Ask: decimal.RequireFromString("16.68")}, nil
}

func (s *stubLedgerService) ValidateTrade(_ context.Context, _ entity.OrderType, stock *entity.Stock, _ int64, _ decimal.Decimal, _ *dto.Quote) (*entity.Stock, error) {
	return stock, nil
}

func (s *stubLedgerService) Buy(_ context.Context, username, symbol string, quantity int64, price decimal.Decimal) (*entity.Order, *entity.Account, error) {
	s.lastBuy = price
	if s.buyErr != nil {
		return nil, nil, s.buyErr
	}
	return &entity.Order{ID: 7, Reference: "ref-7", Type: entity.OrderTypeBuy, Quantity: quantity, Price: price, Stock: entity.Stock{Symbol: symbol}},
		&entity.Account{ID: 1, Username: username, Amount: decimal.RequireFromString("99983.32")}, nil
}

func (s *stubLedgerService) Sell(_ context.Context, username, symbol string, quantity int64, price decimal.Decimal) (*entity.Order, *entity.Account, error) {
	if s.sellErr != nil {
		return nil, nil, s.sellErr
	}
	return &entity.Order{ID: 8, Type: entity.OrderTypeSell, Quantity: quantity, Price: price, Stock: entity.Stock{Symbol: symbol}},
		&entity.Account{ID: 1, Username: username}, nil
}

func (s *stubLedgerService) BuyStock(context.Context, *entity.Account, *entity.Stock, int64, decimal.Decimal, *dto.Quote) (*entity.Order, error) {
	return nil, errors.New("not used")
}

func (s *stubLedgerService) SellStock(context.Context, *entity.Account, *entity.Stock, int64, decimal.Decimal, *dto.Quote) (*entity.Order, error) {
	return nil, errors.New("not used")
}

func (s *stubLedgerService) Reset(_ context.Context, username string) (*dto.ResetResponse, error) {
	return &dto.ResetResponse{Account: dto.AccountResponse{Username: username}, OrdersDeleted: 3, HoldingsDeleted: 2}, nil
}

func (s *stubLedgerService) GetAccount(_ context.Context, username string) (*entity.Account, error) {
	if username == "ghost" {
		return nil, dto.ErrAccountNotFound
	}
	return &entity.Account{ID: 1, Username: username}, nil
}

func (s *stubLedgerService) GetHoldings(context.Context, string) ([]entity.Holding, error) {
	return []entity.Holding{{ID: 1, Quantity: 2, Price: decimal.RequireFromString("16.68"), Stock: entity.Stock{Symbol: "F"}}}, nil
}

func (s *stubLedgerService) GetOrders(context.Context, string, int) ([]entity.Order, error) {
	return nil, nil
}

func newTestServer(svc *stubLedgerService) *echo.Echo {
	e := echo.New()
	log := logger.NewNop()
	RegisterMiddlewares(e, log)
	api := e.Group("/api/v1")
	NewAccountHandler(svc, log).RegisterRoutes(api.Group("/accounts"))
	NewQuoteHandler(svc, log).RegisterRoutes(api.Group("/quotes"))
	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPlaceOrderBuy(t *testing.T) {
	svc := &stubLedgerService{}
	e := newTestServer(svc)

	rec := doRequest(e, http.MethodPost, "/api/v1/accounts/alice/orders", `{"type":"buy","symbol":"F","quantity":1,"price":"16.68"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.True(t, svc.lastBuy.Equal(decimal.RequireFromString("16.68")))

	var resp dto.TradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BUY", resp.Order.Type)
	assert.Equal(t, "F", resp.Order.Symbol)
	assert.True(t, resp.Account.Amount.Equal(decimal.RequireFromString("99983.32")))
}

func TestPlaceOrderErrors(t *testing.T) {
	tests := []struct {
		name   string
		svc    *stubLedgerService
		body   string
		status int
		kind   dto.ErrorKind
	}{
		{name: "price changed", svc: &stubLedgerService{buyErr: dto.ErrPriceChanged}, body: `{"type":"BUY","symbol":"F","quantity":1,"price":16.6}`, status: http.StatusConflict, kind: dto.KindPriceChanged},
		{name: "insufficient funds", svc: &stubLedgerService{buyErr: dto.ErrInsufficientFunds}, body: `{"type":"BUY","symbol":"F","quantity":1,"price":"16.68"}`, status: http.StatusUnprocessableEntity, kind: dto.KindInsufficientFunds},
		{name: "insufficient holdings", svc: &stubLedgerService{sellErr: dto.ErrInsufficientHoldings.Withf("only 2 F held")}, body: `{"type":"SELL","symbol":"F","quantity":3,"price":"16.67"}`, status: http.StatusUnprocessableEntity, kind: dto.KindInsufficientHoldings},
		{name: "quote unavailable", svc: &stubLedgerService{buyErr: dto.ErrQuoteUnavailable.Wrap(errors.New("timeout"))}, body: `{"type":"BUY","symbol":"F","quantity":1,"price":"1"}`, status: http.StatusServiceUnavailable, kind: dto.KindQuoteUnavailable},
		{name: "invalid order type", svc: &stubLedgerService{}, body: `{"type":"HOLD","symbol":"F","quantity":1,"price":"1"}`, status: http.StatusBadRequest, kind: dto.KindInvalidOrderType},
		{name: "unclassified error", svc: &stubLedgerService{buyErr: errors.New("connection reset")}, body: `{"type":"BUY","symbol":"F","quantity":1,"price":"1"}`, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(newTestServer(tt.svc), http.MethodPost, "/api/v1/accounts/alice/orders", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, string(tt.kind), resp.Kind)
			assert.NotEmpty(t, resp.Error)
			assert.NotContains(t, resp.Error, "connection reset")
		})
	}
}

func TestPlaceOrderInvalidPayload(t *testing.T) {
	rec := doRequest(newTestServer(&stubLedgerService{}), http.MethodPost, "/api/v1/accounts/alice/orders", `{"quantity":"many"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountRoutes(t *testing.T) {
	e := newTestServer(&stubLedgerService{})

	rec := doRequest(e, http.MethodPost, "/api/v1/accounts", `{"username":"alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/accounts", `{"username":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(dto.KindInvalidUsername), decodeError(t, rec).Kind)

	rec = doRequest(e, http.MethodGet, "/api/v1/accounts/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/accounts/alice/holdings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var holdings []dto.HoldingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holdings))
	require.Len(t, holdings, 1)
	assert.True(t, holdings[0].Value.Equal(decimal.RequireFromString("33.36")))

	rec = doRequest(e, http.MethodGet, "/api/v1/accounts/alice/orders?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doRequest(e, http.MethodGet, "/api/v1/accounts/alice/orders?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/accounts/alice/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reset dto.ResetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.Equal(t, int64(3), reset.OrdersDeleted)
}

func TestGetQuote(t *testing.T) {
	rec := doRequest(newTestServer(&stubLedgerService{}), http.MethodGet, "/api/v1/quotes/F", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "F", resp.Stock.Symbol)
	assert.True(t, resp.Quote.Ask.Equal(decimal.RequireFromString("16.68")))

	rec = doRequest(newTestServer(&stubLedgerService{quoteErr: dto.ErrSymbolNotFound}), http.MethodGet, "/api/v1/quotes/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Cannot find stock symbol", decodeError(t, rec).Error)
}

func TestTradeErrorMessagesCoverEveryKind(t *testing.T) {
	kinds := []dto.ErrorKind{
		dto.KindEmptySymbol, dto.KindSymbolNotFound, dto.KindQuoteUnavailable,
		dto.KindNegativeOrZeroQuantity, dto.KindPriceChanged, dto.KindInsufficientMarketSize,
		dto.KindInsufficientFunds, dto.KindInsufficientHoldings, dto.KindInternalConsistencyError,
		dto.KindInvalidUsername, dto.KindInvalidOrderType, dto.KindAccountNotFound,
	}
	for _, kind := range kinds {
		_, ok := tradeErrorMessages[kind]
		assert.True(t, ok, kind)
	}
}
