package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"knife-atelier/internal/bot"
	"knife-atelier/internal/cart"
	"knife-atelier/internal/config"
	"knife-atelier/internal/configurator"
	"knife-atelier/internal/consent"
	"knife-atelier/internal/content"
	"knife-atelier/internal/gateway"
	"knife-atelier/internal/mailrelay"
	"knife-atelier/internal/quote"
	"knife-atelier/internal/storage"
	"knife-atelier/internal/storage/postgres"
	"knife-atelier/internal/storage/redis"
	"knife-atelier/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Fatal("Service stopped with error", zap.Error(err))
	}
	zapLogger.Info("Service shutdown gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	kv, limiter, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	pricing := configurator.NewPricingConfig(cfg.Pricing)

	carts := cart.NewSessions(cart.NewKVPersister(kv), logger)
	options := content.NewClient(cfg.Content.BaseURL, cfg.HTTPRequestTimeout, cfg.Content.PlaceholderImage, logger)
	relay := mailrelay.NewClient(cfg.MailRelay.URL, cfg.HTTPRequestTimeout, logger)
	quotes := quote.NewService(relay, limiter, cfg.Quote.RateLimit, cfg.Quote.RateWindow, logger,
		quote.WithIPLimit(cfg.Quote.IPRateLimit))
	consents := consent.NewStore(kv, logger)

	gw := gateway.NewGateway(cfg.HTTPAddr, carts, quotes, consents, logger)
	if err := gw.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(gw.Start)
	g.Go(func() error { return carts.RunSweeper(ctx, cfg.SessionSweep, cfg.SessionIdle) })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return gw.Shutdown(shutdownCtx)
	})

	if cfg.TelegramToken != "" {
		api, err := bot.NewBotAPI(cfg.TelegramToken, logger)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		tgBot := bot.New(api, carts, options, pricing, cfg.AdminIDs, logger)
		g.Go(func() error { return tgBot.Start(ctx) })
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	return g.Wait()
}

// openStorage picks the cart and consent backend. Quote rate limiting uses
// Redis whenever REDIS_ADDR is set and falls back to process memory.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KV, quote.RateLimiter, func(), error) {
	memory := storage.NewMemory()
	var (
		kv      storage.KV        = memory
		limiter quote.RateLimiter = memory
		closers []func()
	)

	if cfg.Redis.Addr != "" {
		rdb := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.CartTTL)
		if err := rdb.WaitReady(ctx, logger); err != nil {
			rdb.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		limiter = rdb
		closers = append(closers, rdb.Close)
		if cfg.StorageBackend == config.BackendRedis {
			kv = rdb
		}
	}

	if cfg.StorageBackend == config.BackendPostgres {
		pg, err := postgres.NewPostgresStorage(ctx, cfg.Database, logger)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, nil, fmt.Errorf("failed to init PostgreSQL storage: %w", err)
		}
		kv = pg
		closers = append(closers, func() {
			if err := pg.Close(); err != nil {
				logger.Warn("Failed to close PostgreSQL storage", zap.Error(err))
			}
		})
	}

	logger.Info("Storage ready", zap.String("backend", cfg.StorageBackend))
	return kv, limiter, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}
