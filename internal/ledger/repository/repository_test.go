package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang-stock-ledger/internal/entity"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.Stock{}, &entity.Account{}, &entity.Order{}, &entity.Holding{}))
	return db
}

func TestAccountRepositoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))

	account, created, err := repo.GetOrCreate(ctx, "alice", decimal.NewFromInt(100000))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, account.ID)

	again, created, err := repo.GetOrCreate(ctx, "alice", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, account.ID, again.ID)
	assert.True(t, again.Amount.Equal(decimal.NewFromInt(100000)))

	_, err = repo.FindByUsername(ctx, "bob")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestAccountRepositoryUpdateAmount(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(newTestDB(t))

	account, _, err := repo.GetOrCreate(ctx, "alice", decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateAmount(ctx, account.ID, decimal.RequireFromString("-0.50")))

	locked, err := repo.FindByIDForUpdate(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, locked.Amount.Equal(decimal.RequireFromString("-0.5")))

	count, err := repo.CountNegativeBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStockRepositoryGetOrCreateKeepsMetadata(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(newTestDB(t))

	stock, created, err := repo.GetOrCreate(ctx, &entity.Stock{Symbol: "F", Name: "Ford Motor Company", Industry: "Auto Manufacturing", Exchange: "NYSE"})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.GetOrCreate(ctx, &entity.Stock{Symbol: "F", Name: "Ford", Industry: "Autos", Exchange: "NASDAQ"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stock.ID, again.ID)
	assert.Equal(t, "Ford Motor Company", again.Name)
	assert.Equal(t, "NYSE", again.Exchange)
}

func TestHoldingRepositoryLots(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewRepository(db)

	account, _, err := repo.Accounts().GetOrCreate(ctx, "alice", decimal.NewFromInt(1000))
	require.NoError(t, err)
	ford, _, err := repo.Stocks().GetOrCreate(ctx, &entity.Stock{Symbol: "F", Industry: "Auto", Exchange: "NYSE"})
	require.NoError(t, err)
	apple, _, err := repo.Stocks().GetOrCreate(ctx, &entity.Stock{Symbol: "AAPL", Industry: "Tech", Exchange: "NASDAQ"})
	require.NoError(t, err)

	for _, h := range []entity.Holding{
		{AccountID: account.ID, StockID: ford.ID, Quantity: 5, Price: decimal.NewFromInt(8)},
		{AccountID: account.ID, StockID: ford.ID, Quantity: 5, Price: decimal.NewFromInt(10)},
		{AccountID: account.ID, StockID: ford.ID, Quantity: 2, Price: decimal.NewFromInt(10)},
		{AccountID: account.ID, StockID: apple.ID, Quantity: 1, Price: decimal.NewFromInt(100)},
	} {
		h := h
		require.NoError(t, repo.Holdings().Create(ctx, &h))
	}

	var lots []entity.Holding
	err = repo.Transaction(ctx, func(tx Repository) error {
		var err error
		lots, err = tx.Holdings().FindLotsForUpdate(ctx, account.ID, ford.ID)
		return err
	})
	require.NoError(t, err)
	require.Len(t, lots, 3)
	assert.Equal(t, int64(5), lots[0].Quantity)
	assert.True(t, lots[0].Price.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(2), lots[1].Quantity)
	assert.True(t, lots[2].Price.Equal(decimal.NewFromInt(8)))

	total, err := repo.Holdings().SumQuantityByStock(ctx, ford.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	holdings, err := repo.Holdings().FindByAccount(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 4)
	assert.Equal(t, "AAPL", holdings[0].Stock.Symbol)
	assert.Equal(t, "F", holdings[1].Stock.Symbol)

	require.NoError(t, repo.Holdings().UpdateQuantity(ctx, lots[0].ID, 0))
	nonPositive, err := repo.Holdings().CountNonPositive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), nonPositive)

	// no BUY order backs any of these lots
	orphans, err := repo.Holdings().CountOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), orphans)

	require.NoError(t, repo.Holdings().Delete(ctx, lots[0].ID, lots[1].ID))
	deleted, err := repo.Holdings().DeleteByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	account, _, err := repo.Accounts().GetOrCreate(ctx, "alice", decimal.NewFromInt(1000))
	require.NoError(t, err)
	stock, _, err := repo.Stocks().GetOrCreate(ctx, &entity.Stock{Symbol: "F", Industry: "Auto", Exchange: "NYSE"})
	require.NoError(t, err)

	for i, ref := range []string{"ref-1", "ref-2", "ref-3"} {
		require.NoError(t, repo.Orders().Create(ctx, &entity.Order{
			Reference: ref,
			AccountID: account.ID,
			StockID:   stock.ID,
			Quantity:  int64(i + 1),
			Price:     decimal.RequireFromString("16.68"),
			Type:      entity.OrderTypeBuy,
		}))
	}

	orders, err := repo.Orders().FindByAccount(ctx, account.ID, 2)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ref-3", orders[0].Reference)
	assert.Equal(t, "F", orders[0].Stock.Symbol)

	deleted, err := repo.Orders().DeleteByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	account, _, err := repo.Accounts().GetOrCreate(ctx, "alice", decimal.NewFromInt(1000))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.Accounts().UpdateAmount(ctx, account.ID, decimal.Zero); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := repo.Accounts().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, reloaded.Amount.Equal(decimal.NewFromInt(1000)))
}
