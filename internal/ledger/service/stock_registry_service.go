package service

import (
	"context"
	"time"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/internal/ledger/repository"
	"golang-stock-ledger/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// StockRegistryService turns quotes into registered stocks.
type StockRegistryService interface {
	Resolve(ctx context.Context, quote *dto.Quote) (*entity.Stock, error)
}

// NewStockRegistryService creates a new stock registry. Registered stocks are
// kept in memory for cacheTTL; a non-positive TTL keeps them forever.
func NewStockRegistryService(stockRepo repository.StockRepository, cacheTTL time.Duration, logger *logger.Logger) StockRegistryService {
	if cacheTTL <= 0 {
		cacheTTL = cache.NoExpiration
	}
	return &stockRegistryService{
		stockRepo:     stockRepo,
		logger:        logger,
		inmemoryCache: cache.New(cacheTTL, 10*time.Minute),
	}
}

type stockRegistryService struct {
	stockRepo     repository.StockRepository
	logger        *logger.Logger
	inmemoryCache *cache.Cache
}

// Resolve validates quote and returns the stock it describes, registering the
// symbol on first sight. Metadata of an existing stock is never refreshed.
func (s *stockRegistryService) Resolve(ctx context.Context, quote *dto.Quote) (*entity.Stock, error) {
	if quote == nil || quote.NotFound {
		return nil, dto.ErrSymbolNotFound
	}
	if quote.EmptySymbol {
		return nil, dto.ErrEmptySymbol
	}
	// some listings resolve with blank descriptive fields and cannot be traded
	if quote.Industry == "" || quote.Exchange == "" {
		return nil, dto.ErrSymbolNotFound.Withf("cannot find stock symbol %s", quote.Symbol)
	}

	if cached, ok := s.inmemoryCache.Get(quote.Symbol); ok {
		stock := cached.(entity.Stock)
		return &stock, nil
	}

	stock, created, err := s.stockRepo.GetOrCreate(ctx, &entity.Stock{
		Symbol:   quote.Symbol,
		Name:     quote.Name,
		Industry: quote.Industry,
		Exchange: quote.Exchange,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to register stock", logger.ErrorField(err), logger.StringField("symbol", quote.Symbol))
		return nil, err
	}
	if created {
		s.logger.InfoContext(ctx, "Registered new stock", logger.StringField("symbol", stock.Symbol), logger.StringField("exchange", stock.Exchange))
	}

	s.inmemoryCache.SetDefault(stock.Symbol, *stock)
	return stock, nil
}
