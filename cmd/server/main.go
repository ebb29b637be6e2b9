// Command server runs the marketplace API.
//
// @title                       Marketplace API
// @version                     1.0
// @description                 Client accounts, sessions and service requests for the marketplace.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/taskbridge/marketplace-api/internal/api"
	"github.com/taskbridge/marketplace-api/internal/api/handler"
	"github.com/taskbridge/marketplace-api/internal/core/domain"
	"github.com/taskbridge/marketplace-api/internal/core/ports"
	"github.com/taskbridge/marketplace-api/internal/core/service"
	"github.com/taskbridge/marketplace-api/internal/infrastructure/config"
	mongostore "github.com/taskbridge/marketplace-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskbridge/marketplace-api/internal/infrastructure/db/redis"
	"github.com/taskbridge/marketplace-api/internal/infrastructure/queue"
	s3store "github.com/taskbridge/marketplace-api/internal/infrastructure/storage/s3"
	"github.com/taskbridge/marketplace-api/pkg/logger"
)

const (
	serviceName     = "marketplace-api"
	shutdownTimeout = 10 * time.Second
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Version: version,
	})

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	clients := mongostore.NewAccountRepository(db, domain.KindClient)
	vendors := mongostore.NewAccountRepository(db, domain.KindVendor)
	requests := mongostore.NewRequestRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"clients":  clients.EnsureIndexes,
		"vendors":  vendors.EnsureIndexes,
		"requests": requests.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	accounts := ports.AccountRepositories{
		domain.KindClient: clients,
		domain.KindVendor: vendors,
	}

	// --- Background repair of client request lists ---
	dispatcher := queue.NewDispatcher(clients, queue.Options{
		Workers:     cfg.Backrefs.Workers,
		MaxAttempts: cfg.Backrefs.MaxAttempts,
		Backoff:     cfg.Backrefs.Backoff,
	}, logger.Component("backrefs"))
	dispatcher.Start(ctx)

	// --- Core services ---
	revoker := redisstore.NewRevocationStore(rdb)
	tokens := service.NewTokenService(accounts, service.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
	})
	authService := service.NewAuthService(domain.KindClient, accounts, tokens, logger.Component("auth"),
		service.WithRegistrationGuard(redisstore.NewRegistrationGuard(rdb, 0)),
		service.WithSessionRevoker(revoker),
	)
	requestService := service.NewRequestService(requests, clients, dispatcher, logger.Component("requests"))

	deps := api.Dependencies{
		Logger:   log,
		Auth:     authService,
		Requests: requestService,
		Tokens:   tokens,
		Revoker:  revoker,
		Cookies: handler.CookieOptions{
			HTTPOnly: cfg.Cookie.HTTPOnly,
			Secure:   cfg.Cookie.Secure,
			SameSite: cfg.Cookie.SameSiteMode(),
			Domain:   cfg.Cookie.Domain,
			Path:     cfg.Cookie.Path,
		},
		Checks: map[string]func(context.Context) error{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
	}

	if cfg.S3.Bucket != "" {
		presigner, err := s3store.New(ctx, s3store.Config{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
			TTL:      cfg.S3.PresignTTL,
		})
		if err != nil {
			return err
		}
		deps.Attachments = presigner
	} else {
		log.Info().Msg("S3_BUCKET not set, attachment uploads disabled")
	}

	e := api.NewRouter(deps)

	// Start server in background.
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error.
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
