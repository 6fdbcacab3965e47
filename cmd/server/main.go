package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumispa/booking-system/internal/api"
	"github.com/lumispa/booking-system/internal/api/metrics"
	"github.com/lumispa/booking-system/internal/core/ports"
	"github.com/lumispa/booking-system/internal/core/service"
	"github.com/lumispa/booking-system/internal/infrastructure/auth"
	"github.com/lumispa/booking-system/internal/infrastructure/config"
	mongodb "github.com/lumispa/booking-system/internal/infrastructure/db/mongo"
	redisdb "github.com/lumispa/booking-system/internal/infrastructure/db/redis"
	"github.com/lumispa/booking-system/internal/infrastructure/resilience"
	"github.com/lumispa/booking-system/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// @title           Booking System API
// @version         1.0
// @description     Session, registration and service catalog backend for the booking mobile client.
// @host            localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting booking system")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	accountRepo := mongodb.NewAccountRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	catalogRepo := mongodb.NewCatalogRepository(db, log)
	for _, idx := range []interface {
		EnsureIndexes(context.Context) error
	}{accountRepo, profileRepo, catalogRepo} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	gateway := auth.NewGateway(accountRepo, log)
	directory := resilience.WrapProfileDirectory(profileRepo)
	sessionStore := redisdb.NewSessionStore(rdb)

	controller := service.NewSessionController(gateway, directory, sessionStore, log)
	if err := controller.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("session controller start failed")
	}
	defer controller.Close()

	transitions, unsubscribe := controller.Subscribe()
	defer unsubscribe()
	go func() {
		for sess := range transitions {
			metrics.SessionTransitionsTotal.WithLabelValues(string(sess.State)).Inc()
		}
	}()

	registrar := service.NewRegistrar(gateway, profileRepo, log)
	if cfg.Admin.Email != "" {
		err := registrar.EnsureAdmin(ctx, ports.RegistrationInput{
			FullName: cfg.Admin.FullName,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("admin bootstrap failed")
		}
	}

	catalog, err := service.NewCatalogView(ctx, catalogRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog live query failed")
	}
	defer catalog.Close()

	e := api.NewRouter(api.RouterConfig{
		Sessions:  controller,
		Registrar: registrar,
		Catalog:   catalog,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
