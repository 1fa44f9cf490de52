package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/lojabot/internal/bot"
	"github.com/m3rciful/lojabot/internal/catalog"
	"github.com/m3rciful/lojabot/internal/config"
	"github.com/m3rciful/lojabot/internal/database"
	"github.com/m3rciful/lojabot/internal/logger"
	"github.com/m3rciful/lojabot/internal/telegram"
	"github.com/m3rciful/lojabot/internal/telegram/middleware"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("lojabot: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv(configEnvVar)
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	app := bot.New(cfg, store)

	rateExclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		rateExclude[kind] = struct{}{}
	}

	startedAt := time.Now()
	appLog := logger.L.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return telegram.Run(ctx, telegram.RunOptions{
		Config:   cfg,
		Registry: telegram.NewRegistry(),
		Middlewares: []telegram.Middleware{
			{Name: "recover", Use: middleware.Recover},
			{Name: "rate_limit", Use: middleware.RateLimit(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  rateExclude,
			})},
			{Name: "logging", Use: middleware.Logging},
		},
		Setup: app.Setup,
		OnStart: func(ctx context.Context, _ telegram.Runtime) error {
			appLog.Info("app ready",
				slog.String("event", "ready"),
				slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(context.Context, telegram.Runtime) error {
			appLog.Info("shutting down...",
				slog.String("event", "shutdown"),
			)
			return nil
		},
	})
}

func buildStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := database.RunMigrations(cfg.Storage.Database); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		db, err := database.Connect(cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		return catalog.NewPostgresStore(db), nil
	default:
		return catalog.NewFileStore(cfg.Storage.File.Path, cfg.Storage.File.BackupDir), nil
	}
}
