package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/openpic/openpic/internal/config"
	"github.com/openpic/openpic/internal/database/postgres"
	"github.com/openpic/openpic/internal/ingest"
	"github.com/openpic/openpic/internal/ledger"
	"github.com/openpic/openpic/internal/queue"
	"github.com/openpic/openpic/internal/storage"
	"github.com/openpic/openpic/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingestion coordinator",
	Long: `Start the ingestion coordinator server.
The server handles batch upload reservations, upload confirmations, selfie
intake and match polling, and runs the background reconciler that
re-enqueues stuck records.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	fmt.Printf("Connecting to PostgreSQL database...\n")
	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}
	fmt.Printf("Connected to Redis at %s\n", cfg.Redis.Addr)

	store, err := storage.NewS3Store(context.Background(), cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	fmt.Printf("Object storage ready (bucket %s)\n", cfg.Storage.Bucket)

	photoRepo := postgres.NewPhotoRepository(pool)
	selfieRepo := postgres.NewSelfieRepository(pool)
	gate := ledger.NewRedisGate(rdb, cfg.Ledger)
	producer := queue.NewRedisProducer(rdb, cfg.Queues)

	coordinator := ingest.NewCoordinator(gate, photoRepo, selfieRepo, store, producer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler := ingest.NewReconciler(photoRepo, selfieRepo, producer, cfg.Reconciler)
	go reconciler.Run(ctx)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(coordinator, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting ingestion coordinator on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
