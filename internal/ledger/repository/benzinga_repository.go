package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-ledger/internal/ledger/config"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// QuoteRepository fetches live quotes from the market data provider.
type QuoteRepository interface {
	FetchQuote(ctx context.Context, symbol string) (*dto.Quote, error)
}

type benzingaRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

func NewBenzingaRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	limit := rate.Inf
	if cfg.Benzinga.MaxRequestPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.Benzinga.MaxRequestPerMinute))
	}
	timeout := cfg.Benzinga.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &benzingaRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestLimiter: rate.NewLimiter(limit, 1),
	}
}

// FetchQuote returns the quote of symbol. Unknown and empty symbols come back
// as a Quote carrying the matching marker; transport failures are
// ErrQuoteUnavailable.
func (r *benzingaRepository) FetchQuote(ctx context.Context, symbol string) (*dto.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return &dto.Quote{EmptySymbol: true, Detail: "empty symbol"}, nil
	}

	endpoint := strings.TrimRight(r.cfg.Benzinga.BaseURL, "/") + "/" + url.PathEscape(symbol)
	fields := []zap.Field{
		zap.String("url", endpoint),
		zap.String("symbol", symbol),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to Benzinga API", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from Benzinga API", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(err)
	}

	var payload dto.BenzingaQuoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		fields = append(fields, zap.Int("status_code", resp.StatusCode), zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to decode Benzinga response", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(err)
	}

	// the provider answers unknown symbols with an error body, sometimes on a non-200 status
	hasMarker := payload.Status != nil || payload.Message != nil
	if resp.StatusCode != http.StatusOK && !hasMarker {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from Benzinga API", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	quote, err := payload.ToQuote()
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Received malformed quote from Benzinga API", fields...)
		return nil, dto.ErrQuoteUnavailable.Wrap(err)
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	quote.Raw = json.RawMessage(body)
	quote.FetchedAt = time.Now().UTC()

	r.log.DebugContext(ctx, "Benzinga quote fetched", fields...)
	return quote, nil
}
