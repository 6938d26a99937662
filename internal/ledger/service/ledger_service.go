package service

import (
	"context"
	"errors"
	"regexp"

	"golang-stock-ledger/internal/entity"
	"golang-stock-ledger/internal/ledger/config"
	"golang-stock-ledger/internal/ledger/dto"
	"golang-stock-ledger/internal/ledger/repository"
	"golang-stock-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^\w{3,32}$`)

const defaultOrderHistoryLimit = 50

// LedgerOptions holds the trading rules the ledger runs with.
type LedgerOptions struct {
	InitialBalance decimal.Decimal
	SellScope      string
}

// LedgerService settles buy and sell trades against accounts and their lots.
type LedgerService interface {
	Login(ctx context.Context, username string) (*entity.Account, error)
	ResolveAndQuote(ctx context.Context, symbol string) (*entity.Stock, *dto.Quote, error)
	ValidateTrade(ctx context.Context, orderType entity.OrderType, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*entity.Stock, error)
	Buy(ctx context.Context, username, symbol string, quantity int64, price decimal.Decimal) (*entity.Order, *entity.Account, error)
	Sell(ctx context.Context, username, symbol string, quantity int64, price decimal.Decimal) (*entity.Order, *entity.Account, error)
	BuyStock(ctx context.Context, account *entity.Account, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*entity.Order, error)
	SellStock(ctx context.Context, account *entity.Account, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*entity.Order, error)
	Reset(ctx context.Context, username string) (*dto.ResetResponse, error)
	GetAccount(ctx context.Context, username string) (*entity.Account, error)
	GetHoldings(ctx context.Context, username string) ([]entity.Holding, error)
	GetOrders(ctx context.Context, username string, limit int) ([]entity.Order, error)
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	repo repository.Repository,
	quoteRepo repository.QuoteRepository,
	eventRepo repository.EventRepository,
	registry StockRegistryService,
	opts LedgerOptions,
	logger *logger.Logger,
) LedgerService {
	if opts.SellScope == "" {
		opts.SellScope = config.SellScopeAccount
	}
	return &ledgerService{
		repo:      repo,
		quoteRepo: quoteRepo,
		eventRepo: eventRepo,
		registry:  registry,
		opts:      opts,
		logger:    logger,
	}
}

type ledgerService struct {
	repo      repository.Repository
	quoteRepo repository.QuoteRepository
	eventRepo repository.EventRepository
	registry  StockRegistryService
	opts      LedgerOptions
	logger    *logger.Logger
}

// Login returns the account of username, opening it with the initial balance on first use.
func (s *ledgerService) Login(ctx context.Context, username string) (*entity.Account, error) {
	if !usernamePattern.MatchString(username) {
		return nil, dto.ErrInvalidUsername
	}

	account, created, err := s.repo.Accounts().GetOrCreate(ctx, username, s.opts.InitialBalance)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get or create account", logger.ErrorField(err), logger.StringField("username", username))
		return nil, err
	}
	if created {
		s.logger.InfoContext(ctx, "Opened new account", logger.StringField("username", username), logger.StringField("amount", account.Amount.String()))
	}
	return account, nil
}

// ResolveAndQuote fetches the live quote of symbol and returns the registered stock with it.
func (s *ledgerService) ResolveAndQuote(ctx context.Context, symbol string) (*entity.Stock, *dto.Quote, error) {
	quote, err := s.quoteRepo.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	stock, err := s.registry.Resolve(ctx, quote)
	if err != nil {
		return nil, nil, err
	}
	return stock, quote, nil
}

// ValidateTrade checks a requested trade against the market: the quantity
// must be positive, the price must equal the quote's ask (BUY) or bid (SELL),
// and that side must offer at least quantity shares. A nil quote is fetched.
func (s *ledgerService) ValidateTrade(ctx context.Context, orderType entity.OrderType, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*entity.Stock, error) {
	if _, err := s.validateTrade(ctx, orderType, stock, quantity, price, quote); err != nil {
		return nil, err
	}
	return stock, nil
}

func (s *ledgerService) validateTrade(ctx context.Context, orderType entity.OrderType, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*dto.Quote, error) {
	if !orderType.Valid() {
		return nil, dto.ErrInvalidOrderType
	}
	if stock == nil {
		return nil, dto.ErrSymbolNotFound
	}
	if quantity <= 0 {
		return nil, dto.ErrNegativeOrZeroQuantity
	}

	if quote == nil {
		fetched, err := s.quoteRepo.FetchQuote(ctx, stock.Symbol)
		if err != nil {
			return nil, err
		}
		quote = fetched
	}
	if quote.NotFound {
		return nil, dto.ErrSymbolNotFound
	}
	if quote.EmptySymbol {
		return nil, dto.ErrEmptySymbol
	}

	marketPrice, marketSize := quote.Side(orderType)
	if !marketPrice.IsPositive() {
		return nil, dto.ErrQuoteUnavailable.Withf("no %s price quoted for %s", sideName(orderType), stock.Symbol)
	}
	if !marketPrice.Equal(price) {
		return nil, dto.ErrPriceChanged.Withf("price changed from %s to %s, please refetch the quote", price.String(), marketPrice.String())
	}
	if marketSize < quantity {
		return nil, dto.ErrInsufficientMarketSize.Withf("only %d %s available in the market", marketSize, stock.Symbol)
	}
	return quote, nil
}

func sideName(orderType entity.OrderType) string {
	if orderType == entity.OrderTypeBuy {
		return "ask"
	}
	return "bid"
}

func (s *ledgerService) Buy(ctx context.Context, username, symbol string, quantity int64, price decimal.Decimal) (*entity.Order, *entity.Account, error) {
	account, err := s.Login(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	stock, quote, err := s.ResolveAndQuote(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	order, err := s.BuyStock(ctx, account, stock, quantity, price, quote)
	if err != nil {
		return nil, nil, err
	}
	return order, account, nil
}

func (s *ledgerService) Sell(ctx context.Context, username, symbol string, quantity int64, price decimal.Decimal) (*entity.Order, *entity.Account, error) {
	account, err := s.Login(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	stock, quote, err := s.ResolveAndQuote(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	order, err := s.SellStock(ctx, account, stock, quantity, price, quote)
	if err != nil {
		return nil, nil, err
	}
	return order, account, nil
}

// BuyStock debits the account, appends a BUY order and opens a new lot, all
// in one transaction. On success account.Amount holds the new balance.
func (s *ledgerService) BuyStock(ctx context.Context, account *entity.Account, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*entity.Order, error) {
	quote, err := s.validateTrade(ctx, entity.OrderTypeBuy, stock, quantity, price, quote)
	if err != nil {
		return nil, err
	}

	cost := price.Mul(decimal.NewFromInt(quantity))
	if cost.GreaterThan(account.Amount) {
		return nil, dto.ErrInsufficientFunds
	}

	order := s.newOrder(account, stock, entity.OrderTypeBuy, quantity, price, quote)
	var balance decimal.Decimal
	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		locked, err := tx.Accounts().FindByIDForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		// the balance may have moved since the snapshot was read
		if cost.GreaterThan(locked.Amount) {
			return dto.ErrInsufficientFunds
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Holdings().Create(ctx, &entity.Holding{
			AccountID: locked.ID,
			StockID:   stock.ID,
			Quantity:  quantity,
			Price:     price,
		}); err != nil {
			return err
		}

		balance = locked.Amount.Sub(cost)
		return tx.Accounts().UpdateAmount(ctx, locked.ID, balance)
	})
	if err != nil {
		s.logTradeFailure(ctx, entity.OrderTypeBuy, account, stock, err)
		return nil, err
	}

	account.Amount = balance
	order.Stock = *stock
	s.logger.InfoContext(ctx, "Trade executed",
		logger.StringField("type", string(order.Type)),
		logger.StringField("username", account.Username),
		logger.StringField("symbol", stock.Symbol),
		logger.Int64Field("quantity", quantity),
		logger.StringField("price", price.String()),
	)
	s.publishTrade(ctx, account, order)
	return order, nil
}

// SellStock credits the account, appends a SELL order and consumes the
// account's lots of stock highest price first, all in one transaction.
func (s *ledgerService) SellStock(ctx context.Context, account *entity.Account, stock *entity.Stock, quantity int64, price decimal.Decimal, quote *dto.Quote) (*entity.Order, error) {
	quote, err := s.validateTrade(ctx, entity.OrderTypeSell, stock, quantity, price, quote)
	if err != nil {
		return nil, err
	}

	order := s.newOrder(account, stock, entity.OrderTypeSell, quantity, price, quote)
	proceeds := price.Mul(decimal.NewFromInt(quantity))
	var balance decimal.Decimal
	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		locked, err := tx.Accounts().FindByIDForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		lots, err := tx.Holdings().FindLotsForUpdate(ctx, locked.ID, stock.ID)
		if err != nil {
			return err
		}

		available := sumLots(lots)
		if s.opts.SellScope == config.SellScopeGlobal {
			if available, err = tx.Holdings().SumQuantityByStock(ctx, stock.ID); err != nil {
				return err
			}
		}
		if available < quantity {
			return dto.ErrInsufficientHoldings.Withf("only %d %s held", available, stock.Symbol)
		}

		plan := selectLots(lots, quantity)
		if plan.Remaining > 0 {
			return dto.ErrInternalConsistencyError.Withf("lots of %s are short by %d", stock.Symbol, plan.Remaining)
		}
		if err := tx.Holdings().Delete(ctx, plan.Deleted...); err != nil {
			return err
		}
		for _, lot := range plan.Reduced {
			if err := tx.Holdings().UpdateQuantity(ctx, lot.ID, lot.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		balance = locked.Amount.Add(proceeds)
		return tx.Accounts().UpdateAmount(ctx, locked.ID, balance)
	})
	if err != nil {
		s.logTradeFailure(ctx, entity.OrderTypeSell, account, stock, err)
		return nil, err
	}

	account.Amount = balance
	order.Stock = *stock
	s.logger.InfoContext(ctx, "Trade executed",
		logger.StringField("type", string(order.Type)),
		logger.StringField("username", account.Username),
		logger.StringField("symbol", stock.Symbol),
		logger.Int64Field("quantity", quantity),
		logger.StringField("price", price.String()),
	)
	s.publishTrade(ctx, account, order)
	return order, nil
}

// Reset deletes every order and lot of the account and restores the initial balance.
func (s *ledgerService) Reset(ctx context.Context, username string) (*dto.ResetResponse, error) {
	account, err := s.Login(ctx, username)
	if err != nil {
		return nil, err
	}

	var ordersDeleted, holdingsDeleted int64
	err = s.repo.Transaction(ctx, func(tx repository.Repository) error {
		locked, err := tx.Accounts().FindByIDForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}
		if ordersDeleted, err = tx.Orders().DeleteByAccount(ctx, locked.ID); err != nil {
			return err
		}
		if holdingsDeleted, err = tx.Holdings().DeleteByAccount(ctx, locked.ID); err != nil {
			return err
		}
		return tx.Accounts().UpdateAmount(ctx, locked.ID, s.opts.InitialBalance)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to reset account", logger.ErrorField(err), logger.StringField("username", username))
		return nil, err
	}

	account.Amount = s.opts.InitialBalance
	s.logger.InfoContext(ctx, "Account reset",
		logger.StringField("username", username),
		logger.Int64Field("orders_deleted", ordersDeleted),
		logger.Int64Field("holdings_deleted", holdingsDeleted),
	)
	return &dto.ResetResponse{
		Account:         dto.NewAccountResponse(account),
		OrdersDeleted:   ordersDeleted,
		HoldingsDeleted: holdingsDeleted,
	}, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, username string) (*entity.Account, error) {
	if !usernamePattern.MatchString(username) {
		return nil, dto.ErrInvalidUsername
	}
	account, err := s.repo.Accounts().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, dto.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *ledgerService) GetHoldings(ctx context.Context, username string) ([]entity.Holding, error) {
	account, err := s.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.Holdings().FindByAccount(ctx, account.ID)
}

func (s *ledgerService) GetOrders(ctx context.Context, username string, limit int) ([]entity.Order, error) {
	account, err := s.GetAccount(ctx, username)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultOrderHistoryLimit
	}
	return s.repo.Orders().FindByAccount(ctx, account.ID, limit)
}

func (s *ledgerService) newOrder(account *entity.Account, stock *entity.Stock, orderType entity.OrderType, quantity int64, price decimal.Decimal, quote *dto.Quote) *entity.Order {
	return &entity.Order{
		Reference:     uuid.NewString(),
		AccountID:     account.ID,
		StockID:       stock.ID,
		Quantity:      quantity,
		Price:         price,
		Type:          orderType,
		QuoteSnapshot: datatypes.JSON(quote.Snapshot()),
	}
}

func (s *ledgerService) logTradeFailure(ctx context.Context, orderType entity.OrderType, account *entity.Account, stock *entity.Stock, err error) {
	if kind, ok := dto.KindOf(err); ok && kind != dto.KindInternalConsistencyError {
		s.logger.WarnContext(ctx, "Trade rejected",
			logger.StringField("type", string(orderType)),
			logger.StringField("username", account.Username),
			logger.StringField("symbol", stock.Symbol),
			logger.StringField("kind", string(kind)),
		)
		return
	}
	s.logger.ErrorContext(ctx, "Failed to settle trade",
		logger.ErrorField(err),
		logger.StringField("type", string(orderType)),
		logger.StringField("username", account.Username),
		logger.StringField("symbol", stock.Symbol),
	)
}

// publishTrade emits the trade after commit. A failed publish is logged and
// never undoes the trade.
func (s *ledgerService) publishTrade(ctx context.Context, account *entity.Account, order *entity.Order) {
	event := &entity.TradeEvent{
		Reference:  order.Reference,
		Username:   account.Username,
		Symbol:     order.Stock.Symbol,
		Type:       order.Type,
		Quantity:   order.Quantity,
		Price:      order.Price,
		Total:      order.Total(),
		Balance:    account.Amount,
		ExecutedAt: order.CreatedAt,
	}
	if err := s.eventRepo.PublishTrade(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish trade event", logger.ErrorField(err), logger.StringField("reference", order.Reference))
	}
}
