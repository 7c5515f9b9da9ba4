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

	"progress/internal/api"
	"progress/internal/config"
	"progress/internal/migration"
	"progress/internal/repository"
	"progress/internal/repository/postgres"
	"progress/internal/service"
	"progress/internal/upstream"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the progress page over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(os.Stdout)
	cfg := loadConfig()
	logger.Info("application starting", "config", map[string]interface{}{
		"port":     cfg.Port,
		"upstream": cfg.UpstreamURL,
		"fetch_db": cfg.DBConn != "",
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	client := upstream.NewClient(cfg.UpstreamURL, &http.Client{Timeout: cfg.FetchTimeout}, logger)
	svc := service.NewService(client, repo, logger)
	h := api.NewHandler(svc, cfg.SiteTitle, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openRepository connects the fetch log when DB_CONN is set and falls back to
// a no-op log otherwise.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Repository, func(), error) {
	if cfg.DBConn == "" {
		logger.Info("DB_CONN not set, fetch log disabled")
		return repository.Nop{}, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBConn)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	if err := migration.Run(ctx, pool); err != nil {
		pool.Close()
		logger.Error("migrations failed", "error", err)
		return nil, nil, err
	}

	return postgres.NewRepo(pool), pool.Close, nil
}
