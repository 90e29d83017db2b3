package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-shop-orders/internal/audit"
	"github.com/ariefcatur/go-shop-orders/internal/config"
	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/logx"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.LogLevel, cfg.ServiceName+"-audit")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("audit consumer exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("audit consumer stopped")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	if cfg.MigrationsAuto {
		if err := postgres.Migrate(db); err != nil {
			return err
		}
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := audit.NewService(audit.NewPgStore(db), rdb, logger)

	topic := cfg.KafkaTopic
	if topic == "" {
		topic = orders.TopicOrderLifecycle
	}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, topic, cfg.AuditWorkers, logger)
	logger.Info("audit consumer started",
		zap.String("group", cfg.AuditGroup),
		zap.String("topic", topic),
		zap.Int("workers", cfg.AuditWorkers))
	return cons.Start(ctx, svc.HandleOrderEvent)
}
