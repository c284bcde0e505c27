package main // Entry point of the Open Day reservation server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/openday-seat-reservation/internal/config"
	"github.com/iliyamo/openday-seat-reservation/internal/database"
	"github.com/iliyamo/openday-seat-reservation/internal/handler"
	"github.com/iliyamo/openday-seat-reservation/internal/logging"
	"github.com/iliyamo/openday-seat-reservation/internal/memstore"
	"github.com/iliyamo/openday-seat-reservation/internal/middleware"
	"github.com/iliyamo/openday-seat-reservation/internal/queue"
	"github.com/iliyamo/openday-seat-reservation/internal/repository"
	"github.com/iliyamo/openday-seat-reservation/internal/router"
	"github.com/iliyamo/openday-seat-reservation/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, seats, closeStore := openStore(ctx, cfg)
	defer closeStore()

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	var opts []service.Option
	qcfg := config.LoadQueueConfig()
	if qcfg.Enabled {
		opts = append(opts, service.WithPublisher(queue.NewPublisher(qcfg.URL, qcfg.Queue)))
		if qcfg.ConsumerEnabled {
			consumer := &queue.Consumer{URL: qcfg.URL, Queue: qcfg.Queue, LogDir: qcfg.LogDir}
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Error().Err(err).Msg("reservation consumer stopped")
				}
			}()
		}
	}
	svc := service.NewReservationService(settings, seats, opts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echomw.CORS())

	router.RegisterRoutes(e)
	router.RegisterAPI(e, handler.NewReservationHandler(svc), config.LoadCacheConfig(), config.LoadRateLimitConfig(), rdb)
	router.RegisterStatic(e, cfg.StaticDir)

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	svc.Wait()
}

// openStore returns the settings and seat stores for the configured
// driver plus a function releasing them.
func openStore(ctx context.Context, cfg config.Config) (service.SettingsStore, service.SeatStore, func()) {
	if cfg.StoreDriver == config.StoreMemory {
		logging.Warn().Msg("using in-memory store; reservations are lost on restart")
		store := memstore.NewSeeded(6, 10)
		return store, store, func() {}
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logging.Fatal().Err(err).Str("host", cfg.DBHost).Msg("database connection failed")
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			logging.Fatal().Err(err).Msg("database migration failed")
		}
	}
	return repository.NewSettingsRepo(db), repository.NewSeatRepo(db), closer(db)
}

func closer(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing database")
		}
	}
}
