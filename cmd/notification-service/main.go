package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-ledger/internal/notifier/config"
	"golang-stock-ledger/internal/notifier/delivery/consumer"
	"golang-stock-ledger/internal/notifier/service"
	"golang-stock-ledger/pkg/common"
	"golang-stock-ledger/pkg/logger"
	"golang-stock-ledger/pkg/redis"
	"golang-stock-ledger/pkg/telegram"

	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the notification service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Notification Service", logger.Field("name", cfg.App.Name))

	redisClient, err := redis.NewClient(cfg.Redis.Client())
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// MKSTREAM creates the stream if it doesn't exist
	for _, stream := range []string{common.RedisStreamTradeExecuted, common.RedisStreamAuditAlert} {
		if err := redisClient.XGroupCreateMkStream(ctx, stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err), logger.StringField("stream", stream))
			}
		}
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken == "" {
		appLogger.Warn("Telegram bot token not configured, notifications will only be logged")
		notifier = telegram.NewLogNotifier(appLogger)
	} else {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	notificationSvc := service.NewNotificationService(cfg, redisClient.Client, notifier, appLogger)

	redisConsumer := consumer.NewRedisConsumer(cfg, notificationSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Notification service started. Waiting for ledger events...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down notification service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Notification service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "notification-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-notifier.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing notification-service CLI: %s\n", err)
		os.Exit(1)
	}
}
