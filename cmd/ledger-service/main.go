package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-ledger/internal/ledger/config"
	delivery "golang-stock-ledger/internal/ledger/delivery/http"
	_ "golang-stock-ledger/internal/ledger/docs"
	"golang-stock-ledger/internal/ledger/repository"
	"golang-stock-ledger/internal/ledger/service"
	"golang-stock-ledger/pkg/logger"
	"golang-stock-ledger/pkg/postgres"
	"golang-stock-ledger/pkg/redis"
	"golang-stock-ledger/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ledger service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Ledger Service", logger.Field("name", cfg.App.Name))

	initialBalance, err := cfg.Ledger.Balance()
	if err != nil {
		appLogger.Fatal("Invalid ledger configuration", logger.ErrorField(err))
	}
	sellScope, err := cfg.Ledger.Scope()
	if err != nil {
		appLogger.Fatal("Invalid ledger configuration", logger.ErrorField(err))
	}

	db, err := postgres.NewDB(cfg.Database.Postgres())
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	redisClient, err := redis.NewClient(cfg.Redis.Client())
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	repo := repository.NewRepository(db.DB)
	quoteRepo := repository.NewBenzingaRepository(cfg, appLogger)
	eventRepo := repository.NewEventRepository(redisClient.Client, cfg.Redis.StreamMaxLen)

	// Initialize services
	registrySvc := service.NewStockRegistryService(repo.Stocks(), cfg.Ledger.StockCacheTTL, appLogger)
	ledgerSvc := service.NewLedgerService(repo, quoteRepo, eventRepo, registrySvc, service.LedgerOptions{
		InitialBalance: initialBalance,
		SellScope:      sellScope,
	}, appLogger)
	auditSvc := service.NewAuditService(repo, eventRepo, appLogger)

	if cfg.Audit.Enabled {
		utils.GoSafe(func() {
			if err := auditSvc.Start(ctx, cfg.Audit.Schedule, cfg.Audit.Timeout); err != nil {
				appLogger.Error("Ledger audit not started", logger.ErrorField(err))
			}
		})
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	delivery.RegisterMiddlewares(e, appLogger)

	apiV1 := e.Group("/api/v1")
	accountHandler := delivery.NewAccountHandler(ledgerSvc, appLogger)
	accountHandler.RegisterRoutes(apiV1.Group("/accounts"))

	quoteHandler := delivery.NewQuoteHandler(ledgerSvc, appLogger)
	quoteHandler.RegisterRoutes(apiV1.Group("/quotes"))

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Ledger API
// @version 1.0
// @description Trade settlement ledger: accounts, quotes, buy and sell orders.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "ledger-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-ledger.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ledger-service CLI: %s\n", err)
		os.Exit(1)
	}
}
