package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/ledger/config"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/internal/ledger/repository"
	"golang-stock-ledger/pkg/logger"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.Stock{}, &entity.Account{}, &entity.Order{}, &entity.Holding{}))
	return db
}

type fakeQuoteRepository struct {
	mu     sync.Mutex
	quotes map[string]*dto.Quote
	err    error
	calls  int
}

func newFakeQuoteRepository(quotes ...*dto.Quote) *fakeQuoteRepository {
	r := &fakeQuoteRepository{quotes: make(map[string]*dto.Quote)}
	for _, q := range quotes {
		r.quotes[q.Symbol] = q
	}
	return r
}

func (r *fakeQuoteRepository) FetchQuote(_ context.Context, symbol string) (*dto.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return &dto.Quote{EmptySymbol: true}, nil
	}
	q, ok := r.quotes[symbol]
	if !ok {
		return &dto.Quote{Symbol: symbol, NotFound: true}, nil
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuoteRepository) set(q *dto.Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.Symbol] = q
}

type fakeEventRepository struct {
	mu     sync.Mutex
	trades []entity.TradeEvent
	alerts []entity.AuditAlert
	err    error
}

func (r *fakeEventRepository) PublishTrade(_ context.Context, event *entity.TradeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.trades = append(r.trades, *event)
	return nil
}

func (r *fakeEventRepository) PublishAuditAlert(_ context.Context, alert *entity.AuditAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *fakeEventRepository) tradeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trades)
}

func fordQuote() *dto.Quote {
	return &dto.Quote{
		Symbol:   "F",
		Name:     "Ford Motor Company",
		Industry: "Auto Manufacturing",
		Exchange: "NYSE",
		Ask:      decimal.RequireFromString("16.68"),
		AskSize:  22,
		Bid:      decimal.RequireFromString("16.67"),
		BidSize:  6,
	}
}

type ledgerFixture struct {
	db      *gorm.DB
	repo    repository.Repository
	quotes  *fakeQuoteRepository
	events  *fakeEventRepository
	service LedgerService
}

func newLedgerFixture(t *testing.T, initialBalance string, scope string, quotes ...*dto.Quote) *ledgerFixture {
	t.Helper()
	db := newTestDB(t)
	repo := repository.NewRepository(db)
	quoteRepo := newFakeQuoteRepository(quotes...)
	eventRepo := &fakeEventRepository{}
	log := logger.NewNop()

	registry := NewStockRegistryService(repo.Stocks(), 0, log)
	svc := NewLedgerService(repo, quoteRepo, eventRepo, registry, LedgerOptions{
		InitialBalance: decimal.RequireFromString(initialBalance),
		SellScope:      scope,
	}, log)

	return &ledgerFixture{db: db, repo: repo, quotes: quoteRepo, events: eventRepo, service: svc}
}

func defaultFixture(t *testing.T) *ledgerFixture {
	return newLedgerFixture(t, "100000", config.SellScopeAccount, fordQuote())
}
