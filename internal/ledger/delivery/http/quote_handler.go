package http

import (
	"net/http"

	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/internal/ledger/service"
	"golang-stock-ledger/pkg/logger"

	"github.com/labstack/echo/v4"
)

// QuoteHandler handles HTTP requests for quotes.
type QuoteHandler struct {
	ledgerService service.LedgerService
	logger        *logger.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(ledgerService service.LedgerService, logger *logger.Logger) *QuoteHandler {
	return &QuoteHandler{ledgerService: ledgerService, logger: logger}
}

// RegisterRoutes registers the quote routes to the Echo group.
func (h *QuoteHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:symbol", h.GetQuote)
}

// GetQuote godoc
// @Summary Get a quote
// @Description Fetches the live quote of a symbol and registers the stock on first sight
// @Tags quotes
// @Produce  json
// @Param   symbol  path    string true    "Stock symbol"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /quotes/{symbol} [get]
func (h *QuoteHandler) GetQuote(c echo.Context) error {
	stock, quote, err := h.ledgerService.ResolveAndQuote(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.QuoteResponse{Stock: *stock, Quote: *quote})
}
