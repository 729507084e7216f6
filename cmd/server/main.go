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

	"github.com/mrvvsreddy/school-p1/internal/config"
	"github.com/mrvvsreddy/school-p1/internal/db"
	"github.com/mrvvsreddy/school-p1/internal/es"
	"github.com/mrvvsreddy/school-p1/internal/logging"
	"github.com/mrvvsreddy/school-p1/internal/middleware"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
	"github.com/mrvvsreddy/school-p1/internal/ratelimit"
	"github.com/mrvvsreddy/school-p1/internal/router"
	"github.com/mrvvsreddy/school-p1/internal/token"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	ctx := context.Background()
	database, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	var brokers []string
	if cfg.KAFKA_ADDRESS != "" {
		brokers = []string{cfg.KAFKA_ADDRESS}
	}
	producer, err := mykafka.NewProducer(brokers)
	if err != nil {
		log.Fatalf("kafka init: %v", err)
	}
	defer producer.Close()

	deps := router.Deps{
		DB:          database,
		Tokens:      token.NewService([]byte(cfg.JWT_SECRET), time.Duration(cfg.TOKEN_TTL_HOURS)*time.Hour),
		Guard:       ratelimit.New(),
		Producer:    producer,
		NoticeIndex: "notices",
	}

	// search stays off when ES_URL is unset; everything else keeps working
	if cfg.ES_URL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			logger.Error("elasticsearch unavailable, search disabled", "error", err)
		} else {
			deps.ES = esClient
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(
		echomw.Recover(),
		echomw.RequestID(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.ALLOWED_ORIGINS,
			AllowCredentials: true,
		}),
		middleware.SecurityHeaders(),
		middleware.RequestLogger(logger),
	)

	router.Register(e, deps)

	srv := &http.Server{
		Addr:         ":" + cfg.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
