package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"

	"github.com/lborres/kalma"
	fiberadapter "github.com/lborres/kalma/adapters/fiber"
	firestoreadapter "github.com/lborres/kalma/adapters/firestore"
	pgxadapter "github.com/lborres/kalma/adapters/pgx"
	redisadapter "github.com/lborres/kalma/adapters/redis"
	stripeadapter "github.com/lborres/kalma/adapters/stripe"
	"github.com/lborres/kalma/config"
	"github.com/lborres/kalma/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		lg.Fatal("could not open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	var ledger kalma.EventLedger
	if cfg.RedisAddr != "" {
		rdb, err := redisadapter.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			lg.Fatal("could not connect to redis", "error", err)
		}
		defer rdb.Close()
		ledger = redisadapter.NewLedger(rdb, 0)
	}

	var billing kalma.BillingGateway
	if cfg.BillingEnabled() {
		billing = stripeadapter.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	}

	app := fiber.New(fiber.Config{
		AppName:      "kalma",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	k, err := kalma.New(kalma.Config{
		Database: store,
		HTTP: fiberadapter.New(app, fiberadapter.Options{
			Logger:         lg,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		}),
		Billing:       billing,
		BillingConfig: cfg.Billing,
		EventLedger:   ledger,
		Logger:        lg,
		BasePath:      cfg.BasePath,
	})
	if err != nil {
		lg.Fatal("could not create kalma instance", "error", err)
	}

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			lg.Error("shutdown failed", "error", err)
		}
	}()

	lg.Info("listening", "addr", cfg.HTTPAddr, "basePath", k.BasePath, "store", cfg.StoreDriver)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		lg.Error("app.Listen", "error", err)
	}
}

// openStore creates the configured storage backend and returns its closer
func openStore(ctx context.Context, cfg *config.Config) (kalma.StorageAdapter, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store := pgxadapter.New(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	default:
		var opts []option.ClientOption
		if cfg.FirebaseAdminKey != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseAdminKey)))
		}
		client, err := gcfirestore.NewClient(ctx, cfg.FirestoreProject(), opts...)
		if err != nil {
			return nil, nil, err
		}
		return firestoreadapter.New(client), func() { _ = client.Close() }, nil
	}
}
