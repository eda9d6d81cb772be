// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/imi-ledger/internal/config"
	"github.com/javajoker/imi-ledger/internal/database"
	"github.com/javajoker/imi-ledger/internal/gateway"
	"github.com/javajoker/imi-ledger/internal/i18n"
	"github.com/javajoker/imi-ledger/internal/metrics"
	"github.com/javajoker/imi-ledger/internal/router"
	"github.com/javajoker/imi-ledger/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		log.Fatal("Failed to initialize i18n:", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Encryption gateway
	vault, closeStore, err := newVault(cfg)
	if err != nil {
		log.Fatal("Failed to initialize encryption gateway:", err)
	}
	defer closeStore()
	go vault.Run(ctx)

	payer, err := services.NewPayer(cfg.Payment)
	if err != nil {
		log.Fatal("Failed to initialize payment provider:", err)
	}

	var publisher services.FactPublisher = services.LogPublisher{}
	if cfg.PubSub.Enabled() {
		pub, err := services.NewPubSubPublisher(ctx, cfg.PubSub.ProjectID, cfg.PubSub.Topic)
		if err != nil {
			log.Fatal("Failed to initialize pubsub publisher:", err)
		}
		defer pub.Close()
		publisher = pub
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ledger := services.NewLedger(db, vault, services.LedgerOptions{
		StrictTransitions: cfg.Ledger.StrictTransitions,
		Payer:             payer,
		Publisher:         publisher,
		Metrics:           metrics.NewLedgerMetrics(registry),
	})

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(db, cfg, ledger, registry)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

func newVault(cfg *config.Config) (*gateway.Vault, func(), error) {
	key, err := cfg.Gateway.Key()
	if err != nil {
		return nil, nil, err
	}

	if cfg.Gateway.Store != "redis" {
		vault, err := gateway.NewVault(key, gateway.NewMemoryStore())
		return vault, func() {}, err
	}

	store, err := gateway.NewRedisStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Gateway.KeyPrefix)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("redis ciphertext store unreachable: %w", err)
	}

	vault, err := gateway.NewVault(key, store)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return vault, func() { store.Close() }, nil
}
