package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avorontsov/identity-service/internal/config"
	"github.com/avorontsov/identity-service/internal/events"
	"github.com/avorontsov/identity-service/internal/httpserver"
	"github.com/avorontsov/identity-service/internal/logging"
	"github.com/avorontsov/identity-service/internal/middleware"
	"github.com/avorontsov/identity-service/internal/repo"
	"github.com/avorontsov/identity-service/internal/search"
	"github.com/avorontsov/identity-service/internal/service"
	"github.com/avorontsov/identity-service/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	keys, err := tokens.LoadKeys([]byte(cfg.PrivateKeyPEM), cfg.PrivateKeyFile, []byte(cfg.RefreshSecret))
	if err != nil {
		log.Fatalf("key material error: %v", err)
	}
	tokenSvc := tokens.NewTokenService(keys)

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	var userIndex *search.UserIndex
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		userIndex = &search.UserIndex{ES: esClient, Index: cfg.ESIndex}
	}

	gormRepo := repo.GormRepo{DB: db}

	deps := httpserver.Deps{
		Auth: middleware.NewAuth(tokenSvc, gormRepo),
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:   gormRepo,
				Tokens: tokenSvc,
				Events: producer,
				Search: userIndex,
			},
			CookieDomain: cfg.CookieDomain,
		},
		UserHandler: &httpserver.UserHTTP{
			Svc: &service.UserService{
				Repo:   gormRepo,
				Events: producer,
				Search: userIndex,
			},
		},
		TenantHandler: &httpserver.TenantHTTP{
			Svc: &service.TenantService{
				Repo:   gormRepo,
				Events: producer,
			},
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.HTTPErrorHandler = httpserver.NewHTTPErrorHandler()

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	logger.Info("server started", "addr", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
