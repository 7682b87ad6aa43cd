package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/pos_engine/internal/activity"
	"github.com/Skotchmaster/pos_engine/internal/catalog"
	"github.com/Skotchmaster/pos_engine/internal/config"
	"github.com/Skotchmaster/pos_engine/internal/es"
	"github.com/Skotchmaster/pos_engine/internal/events"
	"github.com/Skotchmaster/pos_engine/internal/handlers"
	"github.com/Skotchmaster/pos_engine/internal/logging"
	"github.com/Skotchmaster/pos_engine/internal/mykafka"
	"github.com/Skotchmaster/pos_engine/internal/repo"
	"github.com/Skotchmaster/pos_engine/internal/session"
	"github.com/Skotchmaster/pos_engine/internal/settlement"
	"github.com/Skotchmaster/pos_engine/internal/tables"
	"github.com/Skotchmaster/pos_engine/internal/tabs"
	httpserver "github.com/Skotchmaster/pos_engine/internal/transport/http"
)

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	jwtSecret := []byte(configuration.JWT_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS}, configuration.ACTIVITY_TOPIC)
	}

	var indexer *es.Indexer
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(es.Config{
			URL:      configuration.ES_URL,
			Username: configuration.ES_USER,
			Password: configuration.ES_PASSWORD,
		})
		if err != nil {
			log.Fatal(err)
		}
		indexer = &es.Indexer{ES: esClient, Index: es.TransactionIndex}
	}

	var cache *redis.Client
	if configuration.REDIS_ADDR != "" {
		cache = redis.NewClient(&redis.Options{Addr: configuration.REDIS_ADDR})
	}

	var provider catalog.Provider = catalog.Static{}
	if configuration.CATALOG_PATH != "" {
		snap, err := catalog.LoadFile(configuration.CATALOG_PATH)
		if err != nil {
			log.Fatal(err)
		}
		provider = catalog.Static{Data: snap}
	}

	bus := events.NewBus()
	defer bus.Close()

	act := &activity.Logger{Producer: prod, Log: logger}

	sessions := session.NewStore(
		&repo.SessionRepo{DB: db},
		cache,
		bus,
		logger,
		time.Duration(configuration.SESSION_FLUSH_MS)*time.Millisecond,
	)

	tabRepo := &repo.TabRepo{DB: db}
	tabSvc := &tabs.Service{Repo: tabRepo, Sessions: sessions, Bus: bus, Activity: act, Log: logger}
	tableSvc := &tables.Coordinator{Tables: &repo.TableRepo{DB: db}, Tabs: tabRepo, Bus: bus, Log: logger}
	stockRepo := &repo.StockRepo{DB: db}

	settleSvc := &settlement.Service{
		Transactions:   &repo.TransactionRepo{DB: db},
		Stock:          stockRepo,
		Settings:       &repo.SettingsRepo{DB: db},
		Tabs:           tabRepo,
		Tables:         tableSvc,
		Sessions:       sessions,
		Catalog:        provider,
		Indexer:        indexer,
		Activity:       act,
		Bus:            bus,
		Log:            logger,
		ManagerPINHash: configuration.MANAGER_PIN_HASH,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		JWTSecret:       jwtSecret,
		CartHandler:     &handlers.CartHandler{Sessions: sessions},
		TabHandler:      &handlers.TabHandler{Svc: tabSvc},
		TableHandler:    &handlers.TableHandler{Svc: tableSvc},
		CheckoutHandler: &handlers.CheckoutHandler{Svc: settleSvc},
		CatalogHandler:  &handlers.CatalogHandler{Catalog: provider, Stock: stockRepo},
		SearchHandler:   &handlers.SearchHandler{Indexer: indexer},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
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

	sessions.Shutdown(ctx)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
