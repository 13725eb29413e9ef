package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tomlord1122/todo-api/internal/config"
	"github.com/Tomlord1122/todo-api/internal/database"
	"github.com/Tomlord1122/todo-api/internal/logger"
	"github.com/Tomlord1122/todo-api/internal/repository"
	"github.com/Tomlord1122/todo-api/internal/server"
	"github.com/Tomlord1122/todo-api/internal/service"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var store string

	serve := func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(store)
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg, log)
	}

	root := &cobra.Command{
		Use:          "todo-api",
		Short:        "Todo list API over GraphQL and REST",
		SilenceUsage: true,
		RunE:         serve,
	}
	root.PersistentFlags().StringVar(&store, "store", "", "storage backend: mongo or postgres (overrides STORE_DRIVER)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the todo table or indexes and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(store)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cfg, log)
		},
	})

	return root
}

// loadConfig reads the environment, applies the --store override and sets up logging.
func loadConfig(store string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if store != "" {
		cfg.StoreDriver = store
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	return cfg, logger.Init(cfg.LogLevel, cfg.LogFormat), nil
}

// openStore connects the configured backend and returns its connection and
// todo repository.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (database.Service, repository.TodoRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := database.NewPostgres(cfg.Postgres.DSN(), cfg.Postgres.Database, log)
		if err != nil {
			return nil, nil, err
		}
		return pg, repository.NewGormTodoRepository(pg.DB()), nil
	default:
		mongoDB, err := database.NewMongo(ctx, database.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Timeout:  cfg.MongoTimeout,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return mongoDB, repository.NewMongoTodoRepository(mongoDB.Collection()), nil
	}
}

func runMigrate(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	dbService, _, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbService.Close(context.Background()); err != nil {
			log.Error("Error closing database connection", "error", err)
		}
	}()

	if err := dbService.Migrate(ctx); err != nil {
		return err
	}
	log.Info("Migration complete", "store", cfg.StoreDriver)
	return nil
}

func runServer(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	dbService, todoRepo, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	// Serving continues without the indexes or table; calls that need them
	// fail with a storage error until a later migrate succeeds.
	if err := dbService.Migrate(ctx); err != nil {
		log.Error("Startup migration failed", "store", cfg.StoreDriver, "error", err)
	}

	todoService := service.NewTodoService(todoRepo)

	apiServer, err := server.NewServer(cfg.Port, todoService, dbService, log)
	if err != nil {
		_ = dbService.Close(context.Background())
		return err
	}

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, log, done)

	log.Info("Starting server", "addr", apiServer.Addr, "store", cfg.StoreDriver)
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		_ = dbService.Close(context.Background())
		return fmt.Errorf("http server ListenAndServe: %w", err)
	}

	<-done
	log.Info("Graceful shutdown complete.")
	return nil
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, log *slog.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("Server forced to shutdown with error", "error", err)
	}

	log.Info("Closing database connection...")
	if err := dbService.Close(ctxTimeout); err != nil {
		log.Error("Error closing database connection", "error", err)
	} else {
		log.Info("Database connection closed.")
	}

	log.Info("Server exiting")

	done <- true
}
