package http

import (
	"net/http"
	"strconv"
	"strings"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/internal/ledger/service"
	"golang-stock-ledger/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AccountHandler handles HTTP requests for accounts and their trades.
type AccountHandler struct {
	ledgerService service.LedgerService
	logger        *logger.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerService service.LedgerService, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService, logger: logger}
}

// RegisterRoutes registers the account routes to the Echo group.
func (h *AccountHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Login)
	g.GET("/:username", h.GetAccount)
	g.GET("/:username/holdings", h.GetHoldings)
	g.GET("/:username/orders", h.GetOrders)
	g.POST("/:username/orders", h.PlaceOrder)
	g.POST("/:username/reset", h.Reset)
}

// Login godoc
// @Summary Open an account
// @Description Returns the account of the username, opening it with the initial balance on first use
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account  body    dto.LoginRequest   true    "Account to open"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accounts [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	account, err := h.ledgerService.Login(c.Request().Context(), req.Username)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

// GetAccount godoc
// @Summary Get an account
// @Description Get the balance of an account
// @Tags accounts
// @Produce  json
// @Param   username  path    string true    "Username"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accounts/{username} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	account, err := h.ledgerService.GetAccount(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.NewAccountResponse(account))
}

// GetHoldings godoc
// @Summary List holdings
// @Description List the lots held by an account, one entry per lot
// @Tags accounts
// @Produce  json
// @Param   username  path    string true    "Username"
// @Success 200 {array} dto.HoldingResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accounts/{username}/holdings [get]
func (h *AccountHandler) GetHoldings(c echo.Context) error {
	holdings, err := h.ledgerService.GetHoldings(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	response := make([]dto.HoldingResponse, 0, len(holdings))
	for i := range holdings {
		response = append(response, dto.NewHoldingResponse(&holdings[i]))
	}
	return c.JSON(http.StatusOK, response)
}

// GetOrders godoc
// @Summary List orders
// @Description List the most recent orders of an account
// @Tags accounts
// @Produce  json
// @Param   username  path    string true    "Username"
// @Param   limit     query   int    false   "Maximum number of orders"
// @Success 200 {array} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accounts/{username}/orders [get]
func (h *AccountHandler) GetOrders(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
		}
		limit = parsed
	}

	orders, err := h.ledgerService.GetOrders(c.Request().Context(), c.Param("username"), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		response = append(response, dto.NewOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, response)
}

// PlaceOrder godoc
// @Summary Buy or sell a stock
// @Description Executes a trade at the quoted price. The price must equal the current ask for a BUY or bid for a SELL.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   username  path    string                 true    "Username"
// @Param   order     body    dto.PlaceOrderRequest  true    "Order to place"
// @Success 201 {object} dto.TradeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accounts/{username}/orders [post]
func (h *AccountHandler) PlaceOrder(c echo.Context) error {
	var req dto.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	ctx := c.Request().Context()
	username := c.Param("username")

	var (
		order   *entity.Order
		account *entity.Account
		err     error
	)
	switch entity.OrderType(strings.ToUpper(req.Type)) {
	case entity.OrderTypeBuy:
		order, account, err = h.ledgerService.Buy(ctx, username, req.Symbol, req.Quantity, req.Price)
	case entity.OrderTypeSell:
		order, account, err = h.ledgerService.Sell(ctx, username, req.Symbol, req.Quantity, req.Price)
	default:
		err = dto.ErrInvalidOrderType
	}
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, dto.TradeResponse{
		Order:   dto.NewOrderResponse(order),
		Account: dto.NewAccountResponse(account),
	})
}

// Reset godoc
// @Summary Reset an account
// @Description Deletes every order and lot of the account and restores the initial balance
// @Tags accounts
// @Produce  json
// @Param   username  path    string true    "Username"
// @Success 200 {object} dto.ResetResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /accounts/{username}/reset [post]
func (h *AccountHandler) Reset(c echo.Context) error {
	result, err := h.ledgerService.Reset(c.Request().Context(), c.Param("username"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}
