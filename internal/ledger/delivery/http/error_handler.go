package http

import (
	"net/http"

	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/pkg/logger"

	"github.com/labstack/echo/v4"
)

type errorMessage struct {
	status  int
	message string
}

// tradeErrorMessages maps each failure kind to the status and message shown to users.
var tradeErrorMessages = map[dto.ErrorKind]errorMessage{
	dto.KindEmptySymbol:              {http.StatusBadRequest, "Empty symbol is not allowed"},
	dto.KindSymbolNotFound:           {http.StatusNotFound, "Cannot find stock symbol"},
	dto.KindQuoteUnavailable:         {http.StatusServiceUnavailable, "Cannot connect to the quote provider"},
	dto.KindNegativeOrZeroQuantity:   {http.StatusBadRequest, "Only positive quantity number is allowed"},
	dto.KindPriceChanged:             {http.StatusConflict, "Price changes, please refetch new price"},
	dto.KindInsufficientMarketSize:   {http.StatusConflict, "There is not enough stocks in the market"},
	dto.KindInsufficientFunds:        {http.StatusUnprocessableEntity, "You do not have enough money"},
	dto.KindInsufficientHoldings:     {http.StatusUnprocessableEntity, "You do not have enough stocks"},
	dto.KindInternalConsistencyError: {http.StatusInternalServerError, "Trade could not be settled"},
	dto.KindInvalidUsername:          {http.StatusBadRequest, "Username must be 3 to 32 letters, digits or underscores"},
	dto.KindInvalidOrderType:         {http.StatusBadRequest, "Order type must be BUY or SELL"},
	dto.KindAccountNotFound:          {http.StatusNotFound, "Account not found"},
}

// respondError writes err as an ErrorResponse. Errors without a kind are
// logged and reported as an internal error.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	ctx := c.Request().Context()
	if kind, ok := dto.KindOf(err); ok {
		if msg, found := tradeErrorMessages[kind]; found {
			if msg.status >= http.StatusInternalServerError {
				log.ErrorContext(ctx, "Request failed", logger.ErrorField(err), logger.StringField("kind", string(kind)))
			}
			return c.JSON(msg.status, dto.ErrorResponse{Error: msg.message, Kind: string(kind)})
		}
	}

	log.ErrorContext(ctx, "Request failed", logger.ErrorField(err), logger.StringField("path", c.Path()))
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
}
