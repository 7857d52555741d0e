// cmd/shopfloor/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/api/routes"
	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/queue"
	"github.com/fawad-mazhar/shopfloor/internal/session"
	"github.com/fawad-mazhar/shopfloor/internal/storage/leveldb"
	"github.com/fawad-mazhar/shopfloor/internal/storage/postgres"
	"github.com/fawad-mazhar/shopfloor/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL client
	db, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize LevelDB client
	cache, err := leveldb.NewClient(cfg.LevelDB)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cache.Close()

	// Initialize NATS client
	bus, err := queue.NewNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer bus.Close()

	// Batch builds run on the worker pool
	pool := worker.NewPool(cfg.Worker.MaxWorkers, time.Duration(cfg.Worker.WorkTimeout)*time.Second)
	pool.Start(ctx)

	svc := session.NewService(db, cache, bus, pool)

	// Apply edit events arriving on the bus
	moves, err := bus.ConsumeMoves(ctx)
	if err != nil {
		log.Fatalf("Failed to subscribe to moves: %v", err)
	}
	go func() {
		if err := svc.Listen(ctx, moves); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Move listener stopped with error: %v", err)
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      routes.SetupRouter(cfg, svc),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server stopped with error: %v", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received shutdown signal: %v", sig)
	case <-ctx.Done():
	}

	// Initiate shutdown
	shutdownTimeout := time.Duration(cfg.Worker.ShutdownTimeout) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	cancel()
	pool.Stop()

	log.Println("Shopfloor shutdown complete")
}
