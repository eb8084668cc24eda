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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/donation-marketplace/internal/config"
	"github.com/iliyamo/donation-marketplace/internal/database"
	"github.com/iliyamo/donation-marketplace/internal/handler"
	"github.com/iliyamo/donation-marketplace/internal/logger"
	"github.com/iliyamo/donation-marketplace/internal/middleware"
	"github.com/iliyamo/donation-marketplace/internal/queue"
	"github.com/iliyamo/donation-marketplace/internal/repository"
	"github.com/iliyamo/donation-marketplace/internal/router"
	"github.com/iliyamo/donation-marketplace/internal/service"
	"github.com/iliyamo/donation-marketplace/internal/session"
	"github.com/iliyamo/donation-marketplace/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	var sessionStore session.Store
	if rdb != nil {
		defer rdb.Close()
		sessionStore = session.NewRedisStore(rdb, "session")
	} else {
		log.Warn().Msg("redis unavailable: using in-memory sessions, rate limit and cache disabled")
		sessionStore = session.NewMemoryStore()
	}
	sessions := session.NewManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL)

	images, err := newImageStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	users := repository.NewUserRepo(db)
	interests := repository.NewInterestRepo(db)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitURL, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.NotificationLog, interests, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("listing consumer stopped")
			}
		}()
	}

	accounts := service.NewAccounts(users, cfg.BcryptCost)
	market := service.NewMarketplace(service.Deps{
		Users:     users,
		Listings:  repository.NewDonationRepo(db),
		Cart:      repository.NewCartRepo(db),
		Interests: interests,
		Chat:      repository.NewChatRepo(db),
		Images:    images,
		Events:    events,
		Log:       log,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(log))
	e.Use(middleware.LoadSession(sessions, accounts, log))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	cacheCfg := config.LoadCacheConfig()
	router.RegisterRoutes(e,
		handler.NewHealthHandler(db),
		handler.NewAuthHandler(accounts, sessions, cfg.CookieSecure, log))
	router.RegisterMarket(e,
		handler.NewMarketHandler(market, cfg.Storage.PublicURL, log),
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.InvalidateCache(cacheCfg, rdb, log))
	if cfg.Storage.Driver != "s3" {
		router.RegisterUploads(e, cfg.Storage.PublicURL, cfg.Storage.UploadDir)
	}

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return e.Shutdown(shutdownCtx)
}

func newImageStore(ctx context.Context, sc config.StorageConfig) (storage.ImageStore, error) {
	switch sc.Driver {
	case "s3":
		s, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    sc.S3Bucket,
			Region:    sc.S3Region,
			Endpoint:  sc.S3Endpoint,
			AccessKey: sc.S3AccessKey,
			SecretKey: sc.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return s, nil
	case "fs", "":
		s, err := storage.NewFileStore(sc.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("file storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", sc.Driver)
	}
}
