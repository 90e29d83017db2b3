package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-orders/internal/auth"
	"github.com/ariefcatur/go-shop-orders/internal/catalog"
	"github.com/ariefcatur/go-shop-orders/internal/checkout"
	"github.com/ariefcatur/go-shop-orders/internal/config"
	"github.com/ariefcatur/go-shop-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-orders/internal/kafka"
	"github.com/ariefcatur/go-shop-orders/internal/logx"
	"github.com/ariefcatur/go-shop-orders/internal/orders"
	"github.com/ariefcatur/go-shop-orders/internal/postgres"
	"github.com/ariefcatur/go-shop-orders/internal/redisx"
	"github.com/ariefcatur/go-shop-orders/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logx.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api exit", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
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
	cache := redisx.NewJSONCache(rdb)

	// Kafka producer
	topic := cfg.KafkaTopic
	if topic == "" {
		topic = orders.TopicOrderLifecycle
	}
	prodCtx, stopProducer := context.WithCancel(context.Background())
	prod := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, logger)
	prod.Start(prodCtx)

	// Domain
	products := catalog.NewCachedManager(catalog.NewService(catalog.NewPgStore(db)), cache, cfg.CacheTTL, logger)
	orderMgr := orders.NewCachedManager(orders.NewService(orders.NewPgStore(db)), cache, cfg.CacheTTL, logger)
	flow := checkout.NewService(products, orderMgr, orders.NewEmitter(prod, cfg.ServiceName), logger)
	userSvc := users.NewService(users.NewPgStore(db), cache, cfg.CacheTTL, logger)
	iss := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// HTTP
	router := httpx.NewRouter()
	httpx.NewUsersHandler(userSvc, iss, logger).Register(router)
	router.Group(func(r chi.Router) {
		r.Use(httpx.RequireBearer(iss))
		httpx.NewProductsHandler(products, logger).Register(r)
		httpx.NewOrdersHandler(orderMgr, logger).Register(r)
		httpx.NewTransactionsHandler(flow, logger).Register(r)
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	// in-flight requests are done; flush pending events
	stopProducer()
	prod.WaitClosed()
	return err
}
