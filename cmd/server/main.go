package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's bundled middleware

	"github.com/iliyamo/train-ticket-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/train-ticket-reservation/internal/database"   // MySQL pool and schema bootstrap
	"github.com/iliyamo/train-ticket-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/train-ticket-reservation/internal/middleware" // auth, logging, rate limit, cache
	"github.com/iliyamo/train-ticket-reservation/internal/queue"      // booking log consumer
	"github.com/iliyamo/train-ticket-reservation/internal/repository" // data access
	"github.com/iliyamo/train-ticket-reservation/internal/router"     // Internal router setup
	"github.com/iliyamo/train-ticket-reservation/internal/service"    // booking publisher
	"github.com/iliyamo/train-ticket-reservation/pkg/logger"          // structured logging
)

func main() {
	cfg := config.Load() // Load environment config
	log := logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.IsProd()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	schema := database.NewManager(db)
	defer schema.Close()
	if err := schema.EnsureReady(ctx); err != nil {
		log.WithError(err).Fatal("schema bootstrap failed")
	}

	// Redis is optional: without it rate limiting and caching pass through.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	publisher := service.NewBookingPublisher(cfg.AMQPURL, cfg.BookingQueue)
	defer publisher.Close()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORS())

	router.RegisterRoutes(e, handler.NewHealthHandler(schema))
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), log),
		cfg.JWTSecret, limit)
	schedules := repository.NewScheduleRepo(db)
	router.RegisterSchedules(e,
		handler.NewScheduleHandler(schedules, middleware.NewCacheInvalidator(rdb, cacheCfg.Prefix), log),
		cfg.JWTSecret, cache)
	router.RegisterBookings(e, handler.NewBookingHandler(schedules, publisher, log), cfg.JWTSecret, limit)

	if cfg.ConsumerEnabled {
		out, err := queue.NewBookingLog(cfg.BookingLogDir)
		if err != nil {
			log.WithError(err).Fatal("booking log unavailable")
		}
		consumer := queue.NewConsumer(queue.ConsumerConfig{URL: cfg.AMQPURL, Queue: cfg.BookingQueue}, out, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("booking consumer stopped")
			}
		}()
	}

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Infof("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("server stopped")
}
