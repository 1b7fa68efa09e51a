// Command server runs the discovery and matching HTTP API.
//
// @title        Match API
// @version      1.0
// @description  Candidate discovery, swipes, matches, messaging, blocks, reports and push tokens.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey UserID
// @in                         header
// @name                       X-User-ID
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-match-backend/internal/config"
	httpapi "github.com/tbourn/go-match-backend/internal/http"
	"github.com/tbourn/go-match-backend/internal/notify"
	"github.com/tbourn/go-match-backend/internal/observability"
	"github.com/tbourn/go-match-backend/internal/repo"
	"github.com/tbourn/go-match-backend/internal/sysutil"
)

var version = "dev"

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logger := sysutil.ConfigureLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, nil)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(cfg.DB, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	queue, err := newQueue(ctx, cfg.Notify)
	if err != nil {
		log.Fatal().Err(err).Str("queue", cfg.Notify.Queue).Msg("notification queue")
	}
	dispatcher := notify.NewDispatcher(queue, notify.DBProfiles{DB: db},
		notify.Options{
			Buffer:  cfg.Notify.Buffer,
			Workers: cfg.Notify.Workers,
			Logger:  &logger,
		},
		notify.NewEmailSender(cfg.Notify),
		notify.NewPushSender(db, cfg.Notify),
	)
	dispatcher.Start()

	go purgeIdempotency(ctx, db, purgeInterval)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, dispatcher, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("db", cfg.DB.Driver).
			Str("queue", cfg.Notify.Queue).
			Str("version", version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shCtx); err != nil {
		log.Error().Err(err).Msg("notify shutdown")
	}
	if err := observability.WithDeadline(shutdownOTel, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newQueue picks the notification queue backend.
func newQueue(ctx context.Context, cfg config.NotifyConfig) (notify.Queue, error) {
	if cfg.Queue != "redis" {
		return notify.NewMemoryQueue(cfg.Buffer), nil
	}
	q := notify.NewRedisQueue(notify.NewRedisClient(cfg.Redis), cfg.Redis.QueueKey)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := q.Ping(pingCtx); err != nil {
		return nil, err
	}
	return q, nil
}

// purgeIdempotency drops expired idempotency records until ctx ends.
func purgeIdempotency(ctx context.Context, db *gorm.DB, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("idempotency purged")
			}
		}
	}
}
