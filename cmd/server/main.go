// Command server runs the SIP-KPBJ session and authorization API.
//
// @title                       SIP-KPBJ API
// @version                     1.0
// @description                 Session authentication and role authorization for the SIP-KPBJ procurement monitoring dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  CookieAuth
// @in                          header
// @name                        Cookie
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/sip-kpbj/api/internal/api"
	"github.com/sip-kpbj/api/internal/api/cookie"
	"github.com/sip-kpbj/api/internal/core/ports"
	"github.com/sip-kpbj/api/internal/core/service"
	mongodb "github.com/sip-kpbj/api/internal/infrastructure/db/mongo"
	redisdb "github.com/sip-kpbj/api/internal/infrastructure/db/redis"
	"github.com/sip-kpbj/api/internal/infrastructure/queue"
	"github.com/sip-kpbj/api/internal/pkg/config"
	"github.com/sip-kpbj/api/internal/pkg/token"
	"github.com/sip-kpbj/api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sip-kpbj-api",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer dcancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	userRepo := mongodb.NewUserRepository(db)
	eventRepo := mongodb.NewEventRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("auth event indexes: %w", err)
	}

	var rdb *goredis.Client
	if cfg.Session.Revocation {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	if _, err := service.SeedAdmin(ctx, userRepo, service.AdminSeed{
		Email:     cfg.Admin.Email,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}, log); err != nil {
		return err
	}

	// --- Audit trail ---
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, service.NewEventService(eventRepo, userRepo, log), log)
	dispatcher.Start(ctx)

	// --- Sessions ---
	codec, err := token.NewCodec(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	opts := []service.SessionOption{service.WithEventSink(dispatcher)}
	if rdb != nil {
		opts = append(opts, service.WithDenylist(redisdb.NewDenylist(rdb)))
	} else {
		log.Warn().Msg("session revocation disabled: logout only clears the cookie")
	}
	var sessions ports.SessionService = service.NewSessionService(userRepo, codec, service.SessionConfig{
		ShortTTL: cfg.Session.ShortTTL,
		LongTTL:  cfg.Session.LongTTL,
	}, log, opts...)

	e := api.NewRouter(api.Deps{
		Log:      log,
		Sessions: sessions,
		Users:    service.NewUserService(userRepo, log),
		Cookie: cookie.Jar{
			Secure:   cfg.Cookie.Secure,
			SameSite: cfg.Cookie.SameSiteMode(),
			Domain:   cfg.Cookie.Domain,
		},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Mongo:          db,
		Redis:          rdb,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, cleaning up")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}
