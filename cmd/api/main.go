package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Picces04/ToyStore-Client/internal/api"
	"github.com/Picces04/ToyStore-Client/internal/auth"
	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/blog"
	"github.com/Picces04/ToyStore-Client/internal/catalog"
	"github.com/Picces04/ToyStore-Client/internal/config"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kafka"
	"github.com/Picces04/ToyStore-Client/internal/infrastructure/kv"
	"github.com/Picces04/ToyStore-Client/internal/logger"
	"github.com/Picces04/ToyStore-Client/internal/storefront"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("addr", cfg.HTTPServerAddr).
		Str("backend", cfg.Backend.BaseURL).
		Str("storage", cfg.Storage.Driver).
		Bool("sealed", cfg.Storage.SealKey != "").
		Bool("broker", cfg.Broker.Enabled).
		Msg("starting storefront api")

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	client, err := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	var publisher kafka.ActivityPublisher = kafka.NopPublisher{}
	if cfg.Broker.Enabled {
		async := kafka.NewAsyncPublisher(kafka.NewProducer(cfg.Broker.Brokers, cfg.Broker.Topic), 0, log)
		publisher = async
		g.Go(func() error { return async.Run(gctx) })
		log.Info().Strs("brokers", cfg.Broker.Brokers).Str("topic", cfg.Broker.Topic).Msg("publishing activity")
	}

	registry := storefront.NewRegistry(storefront.Deps{
		Fetcher:   client,
		Storage:   storage,
		Publisher: publisher,
		Catalog:   catalog.Options{PageSize: cfg.Catalog.PageSize, WindowSize: cfg.Catalog.Window},
		Blog:      blog.Options{PageSize: cfg.Blog.PageSize, WindowSize: cfg.Catalog.Window},
		Log:       log,
	}, cfg.Visitor.IdleTTL)

	handlers := api.NewHandlers(registry, client, storage, api.Options{
		ListingQuickAdd: cfg.Features.ListingQuickAdd,
		LatestPosts:     cfg.Blog.Latest,
		BestSellersTopN: cfg.BestSellers.TopN,
		MaxListSize:     cfg.Catalog.PageSize,
	}, log)

	server := &http.Server{
		Addr: cfg.HTTPServerAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Handlers:       handlers,
			VisitorTokens:  auth.NewVisitorTokens(cfg.Visitor.Secret, cfg.Visitor.TTL),
			CookieName:     cfg.Visitor.CookieName,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Log:            log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return registry.Run(gctx) })

	return g.Wait()
}

// openStorage connects the configured session storage backend and wraps it
// for sealing when a seal key is set.
func openStorage(ctx context.Context, cfg config.Config, log zerolog.Logger) (kv.Backend, func(), error) {
	var (
		storage kv.Backend
		closeFn = func() {}
	)

	switch cfg.Storage.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		storage = kv.NewRedis(client, cfg.Storage.Redis.Prefix, cfg.Visitor.TTL)
		closeFn = func() { _ = client.Close() }
	case "postgres":
		db, err := kv.ConnectPostgres(ctx, cfg.Storage.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := kv.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		storage = kv.NewPostgres(db, cfg.Visitor.TTL)
		closeFn = func() { _ = db.Close() }
	default:
		storage = kv.NewMemory()
	}

	if cfg.Storage.SealKey != "" {
		key, err := kv.ParseSealKey(cfg.Storage.SealKey)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		sealed, err := kv.NewSealed(storage, key)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		storage = sealed
	}
	return storage, closeFn, nil
}
