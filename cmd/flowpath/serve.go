package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/ostryzhko/flowpath/internal/adapters/http"
	"github.com/ostryzhko/flowpath/internal/adapters/memory"
	"github.com/ostryzhko/flowpath/internal/adapters/postgres"
	redisAdapter "github.com/ostryzhko/flowpath/internal/adapters/redis"
	"github.com/ostryzhko/flowpath/internal/config"
	"github.com/ostryzhko/flowpath/internal/logging"
	"github.com/ostryzhko/flowpath/pkg/persistence/middleware"
	"github.com/ostryzhko/flowpath/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workflow HTTP server",
	Long:  `Starts the REST API over the configured workflow store.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if err := runServe(configPath); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := logging.New(level)

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpAdapter.NewHandler(store, httpAdapter.WithLogger(logger)),
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", srv.Addr, "store", cfg.Store.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		logger.Info("starting shutdown", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return err
			}
		}
		logger.Info("server stopped")
	}
	return nil
}

func buildStore(cfg config.Config) (ports.WorkflowStore, func(), error) {
	store, cleanup, err := buildBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	key, err := cfg.Store.DecodeEncryptionKey()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if key != nil {
		wrap := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		store = wrap(store)
	}
	return store, cleanup, nil
}

func buildBackend(cfg config.Config) (ports.WorkflowStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.New(), func() {}, nil
	case config.BackendRedis:
		var opts []redisAdapter.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(cfg.Redis.Prefix))
		}
		store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return store, func() { _ = store.Close() }, nil
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.CreateSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
