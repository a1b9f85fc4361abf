package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/fullindescription/VL-rebrand/internal/checkout"
	"github.com/fullindescription/VL-rebrand/internal/config"
	"github.com/fullindescription/VL-rebrand/internal/database"
	"github.com/fullindescription/VL-rebrand/internal/handler"
	"github.com/fullindescription/VL-rebrand/internal/listing"
	"github.com/fullindescription/VL-rebrand/internal/logging"
	"github.com/fullindescription/VL-rebrand/internal/middleware"
	"github.com/fullindescription/VL-rebrand/internal/queue"
	"github.com/fullindescription/VL-rebrand/internal/repository"
	"github.com/fullindescription/VL-rebrand/internal/router"
	"github.com/fullindescription/VL-rebrand/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("could not read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := session.NewRegistry(cfg.SessionTTL, log)
	go registry.RunJanitor(ctx, time.Minute)

	var (
		booker   checkout.Booker
		bookings *handler.BookingHandler
		db       *sql.DB
	)
	switch cfg.CheckoutMode {
	case config.CheckoutLedger:
		db, err = database.Open(ctx, cfg)
		if err != nil {
			log.WithError(err).Fatal("database unavailable")
		}
		defer db.Close()
		repo := repository.NewBookingRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		booker = checkout.NewLedgerBooker(repo)
		bookings = &handler.BookingHandler{Bookings: repo}
	default:
		booker = checkout.NewHTTPBooker(cfg.CheckoutURL, nil, cfg.CheckoutTimeout)
	}

	var publisher checkout.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)
		sink, closer, err := queue.OpenBookingLog(".")
		if err != nil {
			log.WithError(err).Fatal("booking log unavailable")
		}
		defer closer.Close()
		go queue.NewConsumer(cfg.RabbitURL, sink, log).Run(ctx)
	} else {
		log.Info("RABBITMQ_URL not set, booking events disabled")
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and listing cache disabled")
	} else {
		defer rdb.Close()
	}

	listings := listing.NewClient(cfg.ListingBaseURL, nil, log)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(io.Discard)
	e.Use(echomw.Recover(), echomw.RequestID(), logging.RequestLogger(log))

	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.API{
		Secret:   cfg.JWTSecret,
		Registry: registry,
		Sessions: &handler.SessionHandler{Registry: registry, Secret: cfg.JWTSecret, TTL: cfg.SessionTTL},
		Listings: &handler.ListingHandler{Source: listings},
		Cart:     &handler.CartHandler{},
		Flow:     &handler.FlowHandler{Listings: listings},
		Checkout: &handler.CheckoutHandler{Submitter: checkout.NewSubmitter(booker, publisher, log)},
		Bookings: bookings,

		RateLimit:    middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		ListingCache: middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "checkout": cfg.CheckoutMode}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
