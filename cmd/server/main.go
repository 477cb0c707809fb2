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
	"github.com/labstack/echo/v4/middleware"

	"github.com/lovit-shop/backend/internal/config"
	"github.com/lovit-shop/backend/internal/es"
	"github.com/lovit-shop/backend/internal/handlers"
	"github.com/lovit-shop/backend/internal/logging"
	loggingmw "github.com/lovit-shop/backend/internal/middleware/logging"
	"github.com/lovit-shop/backend/internal/mykafka"
	"github.com/lovit-shop/backend/internal/service/order"
	httpserver "github.com/lovit-shop/backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	logger := logging.New(configuration.LOG_LEVEL)

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	var searchHandler *handlers.SearchHandler
	productHandler := &handlers.ProductHandler{DB: db, Producer: producer, Index: "products"}
	if configuration.ES_URL != "" {
		client, err := es.NewClient(configuration)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
		productHandler.ES = client
		searchHandler = &handlers.SearchHandler{ES: client, Index: "products"}
	} else {
		searchHandler = &handlers.SearchHandler{Index: "products"}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:              db,
		JWTSecret:       jwtSecret,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: producer},
		UserHandler:     &handlers.UserHandler{DB: db},
		ProductHandler:  productHandler,
		OrderHandler:    &handlers.OrderHandler{DB: db, Producer: producer, Orders: &order.Service{DB: db}},
		CartHandler:     &handlers.CartHandler{DB: db, Producer: producer},
		WishlistHandler: &handlers.WishlistHandler{DB: db},
		SearchHandler:   searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.HTTP_PORT,
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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
